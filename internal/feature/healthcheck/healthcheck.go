// Package healthcheck reports whether the service and its backing
// stores answer.
package healthcheck

import (
	"context"
	"math"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	StatusOK    = "OK"
	StatusError = "ERROR"
)

type ServiceStatus struct {
	Name         string  `json:"name"`
	Status       string  `json:"status"`
	ResponseTime float64 `json:"response_time"` // seconds
	ErrorMessage *string `json:"error_message,omitempty"`
}

type Report struct {
	Result []ServiceStatus `json:"result"`
}

// Probe checks one dependency. Check never fails; problems are reported
// through the returned status.
type Probe interface {
	Check(ctx context.Context) ServiceStatus
}

// timed runs fn and turns its outcome into a status.
func timed(ctx context.Context, name string, fn func(context.Context) error) ServiceStatus {
	start := time.Now()
	err := fn(ctx)
	st := ServiceStatus{Name: name, Status: StatusOK, ResponseTime: round5(time.Since(start))}
	if err != nil {
		msg := err.Error()
		st.Status = StatusError
		st.ErrorMessage = &msg
	}
	return st
}

func round5(d time.Duration) float64 {
	return math.Round(d.Seconds()*1e5) / 1e5
}

type UseCase struct {
	probes  []Probe
	timeout time.Duration
}

// NewUseCase checks probes in the given order; timeout <= 0 leaves each
// probe bounded only by the caller's context.
func NewUseCase(timeout time.Duration, probes ...Probe) *UseCase {
	return &UseCase{probes: probes, timeout: timeout}
}

// Check runs every probe concurrently. Results keep the probe order.
func (u *UseCase) Check(ctx context.Context) (*Report, error) {
	out := make([]ServiceStatus, len(u.probes))
	var g errgroup.Group
	for i, p := range u.probes {
		g.Go(func() error {
			pctx := ctx
			if u.timeout > 0 {
				var cancel context.CancelFunc
				pctx, cancel = context.WithTimeout(ctx, u.timeout)
				defer cancel()
			}
			out[i] = p.Check(pctx)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &Report{Result: out}, nil
}
