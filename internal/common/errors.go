// Package common defines sentinel errors shared by the sync pipeline layers.
// Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Session errors. Both are pipeline-fatal: scraping never starts.
	ErrNotAuthenticated     = errors.New("not authenticated: no stored credentials")
	ErrAuthenticationFailed = errors.New("portal rejected the credentials")

	// Vault errors.
	ErrWrongPassphrase = errors.New("wrong vault passphrase")

	// Record-level errors. These degrade to empty or partial results.
	ErrNavigation = errors.New("navigation failed")
	ErrParse      = errors.New("parse failed")

	// Scheduler errors.
	ErrSyncInProgress = errors.New("Sync already in progress")
)
