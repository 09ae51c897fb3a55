package memory

import "codeberg.org/mutker/perfmon/internal/errors"

const (
	ErrAccessDenied    = errors.ErrorCode("memory_access_denied")
	ErrProcessNotFound = errors.ErrorCode("memory_process_not_found")
	ErrSampleFailed    = errors.ErrorCode("memory_sample_failed")
)

// IsAccessDenied reports whether err was caused by missing permission to
// inspect the sampled process.
func IsAccessDenied(err error) bool {
	return errors.HasCode(err, ErrAccessDenied)
}
