package performance

import "codeberg.org/mutker/perfmon/internal/errors"

const (
	ErrInvalidConfig = errors.ErrorCode("performance_invalid_config")
	ErrFlushFailed   = errors.ErrorCode("performance_flush_failed")
	ErrPanic         = errors.ErrorCode("performance_panic")
)
