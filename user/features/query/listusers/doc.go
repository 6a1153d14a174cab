// Package listusers implements the paginated user list query with a
// cache-aside read path.
package listusers
