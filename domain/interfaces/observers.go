package interfaces

import "time"

// LedgerObserver receives the ledger's consistency signals for metrics
type LedgerObserver interface {
	// VersionConflict is called each time a conditional save loses a race
	VersionConflict(operation string)

	// RetriesExhausted is called when an operation gives up after conflicts
	RetriesExhausted(operation string)

	// OperationFinished is called once per ledger operation with its final error
	OperationFinished(operation string, duration time.Duration, err error)
}
