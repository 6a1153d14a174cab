// Package createuser implements the create user use case.
package createuser
