package models

import "fmt"

// DecodeError marks a file that could not be decoded: unsupported format,
// malformed structure, or corruption beyond the out-of-order tolerance.
// Fatal to that file only; sibling files in a batch proceed.
type DecodeError struct {
	Format string
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode %s: %s: %v", e.Format, e.Reason, e.Err)
	}
	return fmt.Sprintf("decode %s: %s", e.Format, e.Reason)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// ValidationError marks input that decoded structurally but is semantically
// unusable: zero trackpoints, missing timestamps, degenerate segment
// geometry. Fatal to that unit of work only.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation: " + e.Reason
}

// GeocodeError wraps a reverse-geocoding failure. Always non-fatal: the
// orchestrator maps it to absent location fields at exactly one point.
type GeocodeError struct {
	Err error
}

func (e *GeocodeError) Error() string {
	return fmt.Sprintf("geocode: %v", e.Err)
}

func (e *GeocodeError) Unwrap() error { return e.Err }
