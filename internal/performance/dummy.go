package performance

import (
	"context"

	"codeberg.org/mutker/perfmon/internal/perfdata"
)

const dummyOperation = "dummy"

// DummyMonitor measures nothing. It lets code wrap regions unconditionally
// while monitoring is switched off.
type DummyMonitor struct {
	operation string
}

func NewDummy(operation string) *DummyMonitor {
	if operation == "" {
		operation = dummyOperation
	}

	return &DummyMonitor{operation: operation}
}

func (d *DummyMonitor) Operation() string {
	return d.operation
}

func (d *DummyMonitor) Enter() Monitor {
	return d
}

func (*DummyMonitor) Exit(error) {}

func (*DummyMonitor) Child(operation string, _ ...Option) Monitor {
	return NewDummy(operation)
}

func (*DummyMonitor) Records() []perfdata.Record {
	return nil
}

func (*DummyMonitor) Flush(context.Context) error {
	return nil
}

func (*DummyMonitor) String() string {
	return "<DummyMonitor>"
}
