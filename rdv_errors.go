package rendezvous

import (
	"errors"
	"fmt"
)

var (
	// ErrIntegrity classifies faults where the identifier data itself is
	// inconsistent. Proceeding past one would misroute data.
	ErrIntegrity = errors.New("integrity fault")

	// ErrMalformedLayout classifies layout descriptors whose shape or
	// contents are inconsistent.
	ErrMalformedLayout = errors.New("malformed layout descriptor")

	// ErrUnsupported classifies valid inputs describing a topology the
	// caller asked not to handle.
	ErrUnsupported = errors.New("unsupported topology")

	// ErrUnmatchedID is returned when an incoming identifier is absent from
	// the local identifier set.
	ErrUnmatchedID = fmt.Errorf("%w: unmatched identifier", ErrIntegrity)

	// ErrDuplicateID is returned when the local identifier set contains the
	// same identifier twice.
	ErrDuplicateID = fmt.Errorf("%w: duplicate local identifier", ErrIntegrity)
)

// UnmatchedIDError reports an incoming identifier with no local owner.
type UnmatchedIDError struct {
	GID           GID
	IncomingIndex int
}

func (e *UnmatchedIDError) Error() string {
	return fmt.Sprintf("incomingIds[%d] = %d not found in local identifier set", e.IncomingIndex, e.GID)
}

func (e *UnmatchedIDError) Unwrap() error { return ErrUnmatchedID }

// DuplicateIDError reports two local slots holding the same identifier.
type DuplicateIDError struct {
	GID        GID
	FirstSlot  int
	SecondSlot int
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("localIds[%d] and localIds[%d] both hold %d", e.FirstSlot, e.SecondSlot, e.GID)
}

func (e *DuplicateIDError) Unwrap() error { return ErrDuplicateID }

// LayoutError reports the array, index and values of a violated layout
// invariant. Index is -1 when the violation concerns the array as a whole.
type LayoutError struct {
	Array    string
	Index    int
	Expected string
	Actual   int64
	Reason   string
}

func (e *LayoutError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("%s: %s: expected %s, got %d", e.Array, e.Reason, e.Expected, e.Actual)
	}
	return fmt.Sprintf("%s[%d]: %s: expected %s, got %d", e.Array, e.Index, e.Reason, e.Expected, e.Actual)
}

func (e *LayoutError) Unwrap() error { return ErrMalformedLayout }

// UnsupportedTopologyError reports a sender group count other than the one
// required with WithSenderGroups.
type UnsupportedTopologyError struct {
	SenderGroups int
	Required     int
}

func (e *UnsupportedTopologyError) Error() string {
	return fmt.Sprintf("%d sender groups, only %d supported", e.SenderGroups, e.Required)
}

func (e *UnsupportedTopologyError) Unwrap() error { return ErrUnsupported }
