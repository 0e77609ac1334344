// Package fsterrors provides the structured error type raised by the
// fststore read/write engine. It is a narrowed adaptation of the
// category-plus-detail error idiom used across this codebase
// (pkg/nebulaerrors): instead of a general-purpose ErrorType covering an
// entire ETL pipeline, Kind enumerates exactly the failure modes the file
// format can produce (spec §7).
package fsterrors

import (
	"errors"
	"fmt"
)

// Kind categorizes a fsterrors.Error for callers that want to branch on
// failure mode (e.g. treat a corrupt file differently from a bad row range).
type Kind string

const (
	// OpenRead is returned when a file cannot be opened for reading.
	OpenRead Kind = "open_read"
	// OpenWrite is returned when a file cannot be opened for writing.
	OpenWrite Kind = "open_write"
	// NotFstFile is returned when the table header hash does not match —
	// the file is not a recognizable store, or its start is corrupt.
	NotFstFile Kind = "not_fst_file"
	// DamagedHeader is returned when the key index, chunkset header, or
	// column-names hash does not match.
	DamagedHeader Kind = "damaged_header"
	// DamagedChunkIndex is returned when the chunk index or data chunk
	// header hash does not match.
	DamagedChunkIndex Kind = "damaged_chunk_index"
	// UnsupportedVersion is returned when the file's versionMax exceeds
	// the version this engine understands.
	UnsupportedVersion Kind = "unsupported_version"
	// NoData is returned when a write is attempted with zero rows.
	NoData Kind = "no_data"
	// NoColumns is returned when a write is attempted with zero columns.
	NoColumns Kind = "no_columns"
	// ColumnNotFound is returned when a column selection names a column
	// absent from the stored column-name vector.
	ColumnNotFound Kind = "column_not_found"
	// BadRange is returned when the requested row range is invalid.
	BadRange Kind = "bad_range"
	// UnknownColumnType is returned when a column's wire type code is not
	// recognized by this engine, on either the read or write path.
	UnknownColumnType Kind = "unknown_column_type"
	// CodecError is returned when a block compressor/decompressor fails.
	CodecError Kind = "codec_error"
	// WriteError is returned when the final I/O flush of a write fails;
	// the file may be left in a corrupt, partially written state.
	WriteError Kind = "write_error"
)

// Error is the structured error type raised by fststore. Details carries
// free-form key/value context (file path, column name, expected/actual
// hash, etc.) for logging and debugging without encoding it into Message.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
	Details map[string]any
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fstore: %s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("fstore: %s: %s", e.Kind, e.Message)
}

// Unwrap enables errors.Is/errors.As to see through to Cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithDetail attaches a key/value pair and returns the receiver, so calls
// can be chained at the construction site.
func (e *Error) WithDetail(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any, 4)
	}
	e.Details[key] = value
	return e
}

// New creates an Error of the given kind with no wrapped cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates an Error of the given kind that wraps err as its cause.
// Returns a nil *Error if err is nil.
func Wrap(err error, kind Kind, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Message: message, Cause: err}
}

// Is reports whether err is a *Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}
