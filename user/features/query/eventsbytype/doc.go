// Package eventsbytype implements the type-filtered event feed query.
package eventsbytype
