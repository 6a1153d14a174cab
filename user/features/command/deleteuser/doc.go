// Package deleteuser implements the soft-delete user use case.
package deleteuser
