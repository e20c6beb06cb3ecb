package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyRecords is returned when a report is requested for no records at all.
var ErrEmptyRecords = errors.New("no records to group")

// ParseError is returned when identifier text cannot be turned into identifiers.
type ParseError struct {
	Input  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse identifiers %q: %s", e.Input, e.Reason)
}

// DraftProblem is one rejected draft inside a batch.
type DraftProblem struct {
	Index  int
	Source string
	Reason string
}

// ValidationError means the whole batch was discarded.
type ValidationError struct {
	Problems []DraftProblem
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Problems))
	for _, p := range e.Problems {
		if p.Source != "" {
			parts = append(parts, fmt.Sprintf("#%d (%s): %s", p.Index, p.Source, p.Reason))
		} else {
			parts = append(parts, fmt.Sprintf("#%d: %s", p.Index, p.Reason))
		}
	}
	return fmt.Sprintf("batch rejected, %d invalid record(s): %s", len(e.Problems), strings.Join(parts, "; "))
}

// LookupMissError lists identifiers that are not in the store.
type LookupMissError struct {
	Missing []Identifier
}

func (e *LookupMissError) Error() string {
	labels := make([]string, 0, len(e.Missing))
	for _, id := range e.Missing {
		labels = append(labels, id.String())
	}
	return fmt.Sprintf("not found in store: %s", strings.Join(labels, ", "))
}
