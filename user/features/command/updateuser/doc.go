// Package updateuser implements the update user use case.
package updateuser
