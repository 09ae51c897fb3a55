package memory

import (
	"io/fs"
	"os"

	"codeberg.org/mutker/perfmon/internal/errors"
	"github.com/shirou/gopsutil/v3/process"
)

// ProcessSampler reads RSS through gopsutil.
type ProcessSampler struct{}

func NewProcessSampler() *ProcessSampler {
	return &ProcessSampler{}
}

func (*ProcessSampler) RSS(pid int32) (uint64, error) {
	proc, err := process.NewProcess(pid)
	if err != nil {
		return 0, classify(pid, err)
	}

	info, err := proc.MemoryInfo()
	if err != nil {
		return 0, classify(pid, err)
	}

	return info.RSS, nil
}

// CurrentPID returns the id of the calling process.
func CurrentPID() int32 {
	return int32(os.Getpid()) //nolint:gosec // pids fit in int32 on supported platforms
}

func classify(pid int32, err error) error {
	errFactory := errors.New()

	switch {
	case errors.Is(err, fs.ErrPermission):
		return errFactory.Wrap(ErrAccessDenied, err).WithData(pid)
	case errors.Is(err, process.ErrorProcessNotRunning), errors.Is(err, fs.ErrNotExist):
		return errFactory.Wrap(ErrProcessNotFound, err).WithData(pid)
	default:
		return errFactory.Wrap(ErrSampleFailed, err).WithData(pid)
	}
}
