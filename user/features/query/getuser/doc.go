// Package getuser implements the single-user lookup query.
package getuser
