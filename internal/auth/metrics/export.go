package metrics

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// Exporter owns the SDK meter provider the counters record into and serves
// the collected values in Prometheus text exposition format.
type Exporter struct {
	reader   *sdkmetric.ManualReader
	provider *sdkmetric.MeterProvider
}

func NewExporter() *Exporter {
	reader := sdkmetric.NewManualReader()
	return &Exporter{
		reader:   reader,
		provider: sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)),
	}
}

// Meter is the meter to pass to New.
func (e *Exporter) Meter() metric.Meter { return e.provider.Meter(ScopeName) }

// Shutdown flushes and stops the provider. Later collections fail.
func (e *Exporter) Shutdown(ctx context.Context) error { return e.provider.Shutdown(ctx) }

// Handler serves GET /metrics.
func (e *Exporter) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := e.Render(r.Context())
		if err != nil {
			http.Error(w, "metrics unavailable", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
		_, _ = w.Write([]byte(body))
	})
}

// Render collects every counter recorded so far. Instruments that have not
// been used yet are left out.
func (e *Exporter) Render(ctx context.Context) (string, error) {
	var rm metricdata.ResourceMetrics
	if err := e.reader.Collect(ctx, &rm); err != nil {
		return "", fmt.Errorf("collect metrics: %w", err)
	}

	var all []metricdata.Metrics
	for _, sm := range rm.ScopeMetrics {
		all = append(all, sm.Metrics...)
	}
	slices.SortFunc(all, func(a, b metricdata.Metrics) int { return strings.Compare(a.Name, b.Name) })

	var b strings.Builder
	for _, m := range all {
		sum, ok := m.Data.(metricdata.Sum[int64])
		if !ok {
			continue
		}
		writeSum(&b, m.Name, m.Description, sum)
	}
	return b.String(), nil
}

func writeSum(b *strings.Builder, name, help string, sum metricdata.Sum[int64]) {
	kind := "gauge"
	if sum.IsMonotonic {
		kind = "counter"
	}

	b.WriteString("# HELP ")
	b.WriteString(name)
	b.WriteByte(' ')
	b.WriteString(escapeHelp(help))
	b.WriteByte('\n')
	b.WriteString("# TYPE ")
	b.WriteString(name)
	b.WriteByte(' ')
	b.WriteString(kind)
	b.WriteByte('\n')

	lines := make([]string, 0, len(sum.DataPoints))
	for _, dp := range sum.DataPoints {
		lines = append(lines, name+labels(dp)+" "+strconv.FormatInt(dp.Value, 10))
	}
	slices.Sort(lines)
	for _, line := range lines {
		b.WriteString(line)
		b.WriteByte('\n')
	}
}

func labels(dp metricdata.DataPoint[int64]) string {
	if dp.Attributes.Len() == 0 {
		return ""
	}

	parts := make([]string, 0, dp.Attributes.Len())
	for _, kv := range dp.Attributes.ToSlice() {
		parts = append(parts, string(kv.Key)+`="`+escapeLabel(kv.Value.Emit())+`"`)
	}
	return "{" + strings.Join(parts, ",") + "}"
}

func escapeHelp(help string) string {
	help = strings.ReplaceAll(help, `\`, `\\`)
	return strings.ReplaceAll(help, "\n", `\n`)
}

func escapeLabel(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `"`, `\"`)
	return strings.ReplaceAll(v, "\n", `\n`)
}
