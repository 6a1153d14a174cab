// Package useratversion implements point-in-time reconstruction of a user.
package useratversion
