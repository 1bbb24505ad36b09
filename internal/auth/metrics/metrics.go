// Package metrics counts token lifecycle events with OpenTelemetry.
package metrics

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const ScopeName = "github.com/aussiebroadwan/novastudy/internal/auth"

var ErrNilMeter = errors.New("nil meter")

var (
	outcomeOK     = metric.WithAttributes(attribute.String("outcome", "ok"))
	outcomeFailed = metric.WithAttributes(attribute.String("outcome", "failed"))
)

// Metrics implements service.Metrics and httpx.RejectionRecorder.
type Metrics struct {
	logins     metric.Int64Counter
	refreshes  metric.Int64Counter
	logouts    metric.Int64Counter
	rejections metric.Int64Counter
	purged     metric.Int64Counter
}

func New(meter metric.Meter) (*Metrics, error) {
	if meter == nil {
		return nil, ErrNilMeter
	}

	var (
		m   Metrics
		err error
	)
	counters := []struct {
		dst  *metric.Int64Counter
		name string
		help string
	}{
		{&m.logins, "auth_logins_total", "Login attempts by outcome."},
		{&m.refreshes, "auth_refreshes_total", "Access token refreshes by outcome."},
		{&m.logouts, "auth_logouts_total", "Completed logouts."},
		{&m.rejections, "auth_pipeline_rejections_total", "Requests turned away by the auth pipeline, by reason."},
		{&m.purged, "auth_blacklist_purged_total", "Expired blacklist rows deleted."},
	}
	for _, c := range counters {
		*c.dst, err = meter.Int64Counter(c.name, metric.WithDescription(c.help))
		if err != nil {
			return nil, fmt.Errorf("create counter %s: %w", c.name, err)
		}
	}
	return &m, nil
}

func (m *Metrics) LoginSucceeded(ctx context.Context)   { m.logins.Add(ctx, 1, outcomeOK) }
func (m *Metrics) LoginFailed(ctx context.Context)      { m.logins.Add(ctx, 1, outcomeFailed) }
func (m *Metrics) RefreshSucceeded(ctx context.Context) { m.refreshes.Add(ctx, 1, outcomeOK) }
func (m *Metrics) RefreshFailed(ctx context.Context)    { m.refreshes.Add(ctx, 1, outcomeFailed) }
func (m *Metrics) LoggedOut(ctx context.Context)        { m.logouts.Add(ctx, 1) }

func (m *Metrics) BlacklistPurged(ctx context.Context, n int64) {
	m.purged.Add(ctx, n)
}

func (m *Metrics) RecordRejection(ctx context.Context, reason string) {
	m.rejections.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}
