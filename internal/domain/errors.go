package domain

import "errors"

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists indicates a unique key collided.
	ErrAlreadyExists = errors.New("already exists")
	// ErrOutOfStock indicates a scanned code matched an item with no stock left.
	ErrOutOfStock = errors.New("out of stock")
	// ErrLookupFailed indicates the catalog lookup could not be completed.
	ErrLookupFailed = errors.New("lookup failed")
	// ErrSubmissionFailed indicates the sale could not be recorded.
	ErrSubmissionFailed = errors.New("submission failed")
	// ErrValidationRejected indicates a local precondition was not met.
	ErrValidationRejected = errors.New("validation rejected")
	// ErrBusy indicates another call is still outstanding for the same session.
	ErrBusy = errors.New("operation already in progress")
	// ErrInsufficientStock indicates stock changed between scan and checkout.
	ErrInsufficientStock = errors.New("insufficient stock")
)
