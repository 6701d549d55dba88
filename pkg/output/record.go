// Package output provides JSONL output for CLI listings.
//
// Each line is a self-contained record envelope carrying a key, an error or
// a final summary, so output can be piped and parsed line by line.
package output

import (
	"encoding/json"
	"errors"
	"time"
)

// Record types, named simpleindex.<type>.v<version>.
const (
	TypeKey     = "simpleindex.key.v1"
	TypeError   = "simpleindex.error.v1"
	TypeSummary = "simpleindex.summary.v1"
)

// Record is the envelope for all JSONL output. Type determines how to
// interpret Data.
type Record struct {
	Type string    `json:"type"`
	TS   time.Time `json:"ts"`

	// JobID correlates every record of one command invocation.
	JobID    string          `json:"job_id"`
	Provider string          `json:"provider"`
	Data     json.RawMessage `json:"data"`
}

// KeyRecord is one matching object name.
type KeyRecord struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
}

// ErrorRecord describes a failed operation.
type ErrorRecord struct {
	// Code is a machine-readable error code (see provider.Code).
	Code    string `json:"code"`
	Message string `json:"message"`
	Bucket  string `json:"bucket,omitempty"`

	// Prefix is the prefix being listed when the error occurred.
	Prefix  string `json:"prefix,omitempty"`
	Details any    `json:"details,omitempty"`
}

// SummaryRecord closes a listing.
type SummaryRecord struct {
	Bucket  string `json:"bucket"`
	Prefix  string `json:"prefix,omitempty"`
	Pattern string `json:"pattern"`

	// Keys is the number of key records emitted.
	Keys int64 `json:"keys"`

	Duration      time.Duration `json:"duration_ns"`
	DurationHuman string        `json:"duration"`
}

// ErrWriterClosed is returned when writing to a closed writer.
var ErrWriterClosed = errors.New("writer is closed")

// WriteError wraps errors that occur during write operations.
type WriteError struct {
	Op  string // "marshal_data", "marshal_record" or "write"
	Err error
}

func (e *WriteError) Error() string {
	return "output: " + e.Op + ": " + e.Err.Error()
}

func (e *WriteError) Unwrap() error {
	return e.Err
}
