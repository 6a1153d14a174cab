// Package allevents implements the global event feed query.
package allevents
