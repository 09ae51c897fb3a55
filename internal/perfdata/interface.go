// Package perfdata defines the performance record layout and the append-only
// sqlite store records are flushed into.
package perfdata

import (
	"context"
	"fmt"
	"unicode/utf8"
)

const (
	// TableName is the dataset every store keeps its records in.
	TableName = "performance_data"

	// MaxOperationBytes is the fixed width of the operation column.
	MaxOperationBytes = 50
)

// Record is one row of the performance dataset.
type Record struct {
	Operation string
	TimeSec   float64
	MemoryMB  float64
	Counts    int64
}

func (r Record) String() string {
	return fmt.Sprintf("operation=%q time_sec=%.6f memory_mb=%.3f counts=%d",
		r.Operation, r.TimeSec, r.MemoryMB, r.Counts)
}

// Appender persists records in the order given.
type Appender interface {
	Append(ctx context.Context, records []Record) error
}

// TruncateOperation cuts op to at most MaxOperationBytes bytes without
// splitting a multi-byte character.
func TruncateOperation(op string) string {
	if len(op) <= MaxOperationBytes {
		return op
	}

	cut := MaxOperationBytes
	for cut > 0 && !utf8.RuneStart(op[cut]) {
		cut--
	}

	return op[:cut]
}
