package service

import "context"

// Metrics receives token lifecycle events. internal/auth/metrics provides
// the OpenTelemetry implementation.
type Metrics interface {
	LoginSucceeded(ctx context.Context)
	LoginFailed(ctx context.Context)
	RefreshSucceeded(ctx context.Context)
	RefreshFailed(ctx context.Context)
	LoggedOut(ctx context.Context)
	BlacklistPurged(ctx context.Context, n int64)
}

type nopMetrics struct{}

func (nopMetrics) LoginSucceeded(context.Context)         {}
func (nopMetrics) LoginFailed(context.Context)            {}
func (nopMetrics) RefreshSucceeded(context.Context)       {}
func (nopMetrics) RefreshFailed(context.Context)          {}
func (nopMetrics) LoggedOut(context.Context)              {}
func (nopMetrics) BlacklistPurged(context.Context, int64) {}

func metricsOrNop(m Metrics) Metrics {
	if m == nil {
		return nopMetrics{}
	}
	return m
}
