package revocation

import (
	"github.com/pkg/errors"
)

var (
	ErrInvalidIndex    = errors.New("invalid registry index")
	ErrCapacityInvalid = errors.New("registry capacity must be positive")
	ErrDuplicateIndex  = errors.New("registry index already used")

	ErrNonMonotonicTimestamp = errors.New("delta timestamp is not after the latest delta")
	ErrDeltaOrderMismatch    = errors.New("deltas are not adjacent")
	ErrStaleBase             = errors.New("delta does not start at the witness accumulator")

	ErrRegistryFull = errors.New("registry has no free index")

	ErrMissingRevocationState = errors.New("no revocation state for claimed timestamp")
	ErrTimestampOutOfRange    = errors.New("timestamp outside of requested non-revocation interval")
	ErrAccumulatorMismatch    = errors.New("proof accumulator does not match registry state")

	ErrIndexNotIssued = errors.New("index not issued at target timestamp")
	ErrNotIssued      = errors.New("index is not currently issued")

	ErrNoDataInRange = errors.New("no deltas at or before requested timestamp")
	ErrItemNotFound  = errors.New("item not found")
)

// ErrorKind groups errors by how a caller is expected to react to them.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindStructural
	KindOrdering
	KindCapacity
	KindVerification
	KindConsistency
	KindNotFound
)

var kinds = map[error]ErrorKind{
	ErrInvalidIndex:           KindStructural,
	ErrCapacityInvalid:        KindStructural,
	ErrDuplicateIndex:         KindStructural,
	ErrNonMonotonicTimestamp:  KindOrdering,
	ErrDeltaOrderMismatch:     KindOrdering,
	ErrStaleBase:              KindOrdering,
	ErrRegistryFull:           KindCapacity,
	ErrMissingRevocationState: KindVerification,
	ErrTimestampOutOfRange:    KindVerification,
	ErrAccumulatorMismatch:    KindVerification,
	ErrIndexNotIssued:         KindConsistency,
	ErrNotIssued:              KindConsistency,
	ErrNoDataInRange:          KindNotFound,
	ErrItemNotFound:           KindNotFound,
}

// Kind classifies err by the first sentinel it wraps.
func Kind(err error) ErrorKind {
	if err == nil {
		return KindUnknown
	}

	for sentinel, kind := range kinds {
		if errors.Is(err, sentinel) {
			return kind
		}
	}

	return KindUnknown
}

// Retryable reports whether re-fetching state and trying again can succeed.
func Retryable(err error) bool {
	return Kind(err) == KindOrdering
}

func (r ErrorKind) String() string {
	switch r {
	case KindStructural:
		return "structural"
	case KindOrdering:
		return "ordering"
	case KindCapacity:
		return "capacity"
	case KindVerification:
		return "verification"
	case KindConsistency:
		return "consistency"
	case KindNotFound:
		return "not found"
	}
	return "unknown"
}
