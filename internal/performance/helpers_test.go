package performance

import (
	"time"

	"codeberg.org/mutker/perfmon/internal/errors"
	"codeberg.org/mutker/perfmon/internal/memory"
)

type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 10, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

// fakeSampler returns the queued RSS values in order and counts calls.
type fakeSampler struct {
	values []uint64
	err    error
	calls  int
	pids   []int32
}

func (s *fakeSampler) RSS(pid int32) (uint64, error) {
	s.calls++
	s.pids = append(s.pids, pid)
	if s.err != nil {
		return 0, s.err
	}
	if len(s.values) == 0 {
		return 0, nil
	}
	v := s.values[0]
	s.values = s.values[1:]
	return v, nil
}

func accessDenied() error {
	return errors.New().New(memory.ErrAccessDenied).WithData("pid 1")
}

// cycle enters m, advances the clock by d and exits.
func cycle(m Monitor, clock *fakeClock, d time.Duration) {
	m.Enter()
	clock.Advance(d)
	m.Exit(nil)
}
