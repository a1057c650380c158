// SPDX-License-Identifier: MIT

package health

import (
	"context"
	"errors"
	"fmt"

	"github.com/ManuGH/clusterview/internal/resilience"
)

// FuncChecker adapts a probe function. A failing critical probe is unhealthy;
// a failing optional one only degrades the instance.
type FuncChecker struct {
	name     string
	critical bool
	probe    func(ctx context.Context) error
}

// NewFuncChecker wraps probe under name.
func NewFuncChecker(name string, critical bool, probe func(ctx context.Context) error) *FuncChecker {
	return &FuncChecker{name: name, critical: critical, probe: probe}
}

func (c *FuncChecker) Name() string { return c.name }

func (c *FuncChecker) Check(ctx context.Context) CheckResult {
	err := c.probe(ctx)
	if err == nil {
		return CheckResult{Status: StatusHealthy}
	}
	status := StatusDegraded
	if c.critical {
		status = StatusUnhealthy
	}
	msg := ""
	if errors.Is(err, context.DeadlineExceeded) {
		msg = "probe timed out"
	}
	return CheckResult{Status: status, Message: msg, Error: err.Error()}
}

// BreakerChecker reports the state of a group of circuit breakers, one per
// upstream host. Open breakers degrade the instance; the process keeps serving
// the hosts that still answer.
type BreakerChecker struct {
	name     string
	breakers func() []*resilience.CircuitBreaker
}

// NewBreakerChecker reports on the breakers returned by list at check time.
func NewBreakerChecker(name string, list func() []*resilience.CircuitBreaker) *BreakerChecker {
	return &BreakerChecker{name: name, breakers: list}
}

func (c *BreakerChecker) Name() string { return c.name }

func (c *BreakerChecker) Check(_ context.Context) CheckResult {
	breakers := c.breakers()
	if len(breakers) == 0 {
		return CheckResult{Status: StatusHealthy, Message: "not configured (optional)"}
	}

	open := 0
	var last error
	for _, b := range breakers {
		if b.State() == resilience.StateClosed {
			continue
		}
		open++
		if err := b.LastError(); err != nil {
			last = fmt.Errorf("%s: %w", b.Name(), err)
		}
	}

	if open == 0 {
		return CheckResult{Status: StatusHealthy, Message: fmt.Sprintf("%d upstream(s) closed", len(breakers))}
	}
	res := CheckResult{
		Status:  StatusDegraded,
		Message: fmt.Sprintf("%d of %d upstream(s) tripped", open, len(breakers)),
	}
	if last != nil {
		res.Error = last.Error()
	}
	return res
}
