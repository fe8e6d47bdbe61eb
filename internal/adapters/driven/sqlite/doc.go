// Package sqlite provides the client-local login state store backed by SQLite.
//
// One database file holds the accounts, sealed session tokens, local values
// and pending CAS/OAuth states of every server the user has logged in to.
package sqlite
