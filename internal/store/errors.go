package store

import "errors"

// Low-level database operation errors. Repository methods wrap the driver
// error with one of these so callers can match them with [errors.Is].
var (
	// ErrBuildingSQLQuery is returned when squirrel cannot render a query.
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrExecutingQuery is returned when a SELECT fails.
	ErrExecutingQuery = errors.New("error executing sql query")

	// ErrExecutingStatement is returned when an INSERT, UPDATE or DELETE
	// fails.
	ErrExecutingStatement = errors.New("failed to executing statement")

	// ErrScanningRow is returned when a row cannot be scanned.
	ErrScanningRow = errors.New("failed to scan entry row")

	// ErrScanningRows is returned when row iteration fails mid-result-set.
	ErrScanningRows = errors.New("failed to scan entry rows")

	// ErrEncodingEntry is returned when an entry cannot be converted to or
	// from its stored payload.
	ErrEncodingEntry = errors.New("failed to encode entry payload")
)
