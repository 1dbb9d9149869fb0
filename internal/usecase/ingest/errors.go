package ingest

import "errors"

var (
	// ErrJobInProgress is returned when a run is requested while the
	// previous run is still executing. The due run is skipped, not queued.
	ErrJobInProgress = errors.New("scrape job already in progress")

	// ErrBatchAborted signals that a batch save stopped early after too
	// many consecutive persistence failures.
	ErrBatchAborted = errors.New("batch aborted after consecutive save failures")
)
