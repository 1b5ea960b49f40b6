package engine

import (
	"errors"
	"fmt"
)

// ============================================================================
// ERRORS — Contract violations only
// ============================================================================
// Absence of data is never an error here: empty tables aggregate to empty
// results, empty groups are valid, and entities missing from a population
// lookup are dropped, not raised. The only hard failures are contract
// violations — unknown field names, unsupported operations, bad arguments.
// ============================================================================

// ErrNotFound is returned by RankOf when the entity is absent from the
// aggregate table.
var ErrNotFound = errors.New("entity not found")

// UnknownFieldError reports a field name the engine does not recognize for
// the requested role.
type UnknownFieldError struct {
	Field string
	Kind  string // "dimension" or "measure"
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("unknown %s field %q", e.Kind, e.Field)
}

// UnsupportedOpError reports an aggregation operation name the engine does
// not implement.
type UnsupportedOpError struct {
	Op Op
}

func (e *UnsupportedOpError) Error() string {
	return fmt.Sprintf("unsupported aggregation op %q", string(e.Op))
}

// InvalidArgumentError reports a structurally invalid call, such as a
// negative top-N size.
type InvalidArgumentError struct {
	Reason string
}

func (e *InvalidArgumentError) Error() string {
	return "invalid argument: " + e.Reason
}
