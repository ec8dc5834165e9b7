package domain

import "errors"

// Error kinds recognized across the pipeline. Boundaries decide the
// externally visible behavior: the HTTP layer maps them to status
// codes, the synchronizer maps them to ledger outcomes.
var (
	// ErrUnauthorized marks a webhook whose signature could not be
	// verified. Permanent; never retried from this side.
	ErrUnauthorized = errors.New("webhook signature rejected")

	// ErrMalformedPayload marks a request body that could not be
	// parsed as the expected shape. Permanent client error.
	ErrMalformedPayload = errors.New("malformed payload")

	// ErrScopeDenied marks an upstream 403: the shop's granted scopes
	// do not cover the requested resource. Expected during bulk sync
	// for shops installed before elevated scopes were granted.
	ErrScopeDenied = errors.New("access scope denied")

	// ErrShopNotFound marks a lookup for a shop that does not exist
	// or has been uninstalled. Inactive shops are indistinguishable
	// from missing ones everywhere outside the session store.
	ErrShopNotFound = errors.New("shop not found")
)
