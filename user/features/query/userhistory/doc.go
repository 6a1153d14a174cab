// Package userhistory implements the audit trail query for a single user.
package userhistory
