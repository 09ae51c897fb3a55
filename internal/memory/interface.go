// Package memory samples the resident memory of operating system processes.
package memory

// Sampler reports the resident set size of a process.
//
// Implementations must return an error carrying ErrAccessDenied when the
// caller is not allowed to inspect the process, so that callers can tell a
// permanent permission problem apart from a transient failure.
type Sampler interface {
	RSS(pid int32) (uint64, error)
}

// SamplerFunc adapts a function to the Sampler interface.
type SamplerFunc func(pid int32) (uint64, error)

func (f SamplerFunc) RSS(pid int32) (uint64, error) {
	return f(pid)
}
