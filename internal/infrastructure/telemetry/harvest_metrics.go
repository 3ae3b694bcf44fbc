package telemetry

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/pentol/backend/internal/domain/shared"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys
var (
	AttrOutcome  = attribute.Key("outcome")
	AttrStatusTo = attribute.Key("status_to")
	AttrFormat   = attribute.Key("format")
	AttrSink     = attribute.Key("sink")
)

// OutcomeOK labels an operation that succeeded
const OutcomeOK = "ok"

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = errors.New("telemetry: meter cannot be nil")

// Outcome turns an operation result into a low-cardinality label:
// "ok", the lowercased domain error code, or "error".
func Outcome(err error) string {
	if err == nil {
		return OutcomeOK
	}
	var de *shared.DomainError
	if errors.As(err, &de) {
		return strings.ToLower(de.Code)
	}
	return "error"
}

// HarvestMetrics counts harvest workflow activity. A nil *HarvestMetrics is
// valid and records nothing.
type HarvestMetrics struct {
	recordsSubmitted *Counter
	photosUploaded   *Counter
	transitions      *Counter
	spbCreated       *Counter
	spbRecords       *Counter
	spbShipped       *Counter
	exports          *Counter
	exportRows       *Counter
	exportDuration   *Histogram
}

// NewHarvestMetrics registers the harvest instruments on meter.
func NewHarvestMetrics(meter metric.Meter) (*HarvestMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	m := &HarvestMetrics{}
	counters := []struct {
		dst         **Counter
		name        string
		description string
		unit        string
	}{
		{&m.recordsSubmitted, "pentol_harvest_records_submitted_total", "Harvest input submissions", "{records}"},
		{&m.photosUploaded, "pentol_harvest_photos_uploaded_total", "Harvest photo uploads", "{photos}"},
		{&m.transitions, "pentol_harvest_transitions_total", "Approval state transitions attempted", "{transitions}"},
		{&m.spbCreated, "pentol_spb_created_total", "Delivery batches created", "{batches}"},
		{&m.spbRecords, "pentol_spb_records_total", "Harvest records attached to delivery batches", "{records}"},
		{&m.spbShipped, "pentol_spb_shipped_total", "Delivery batches shipped", "{batches}"},
		{&m.exports, "pentol_report_exports_total", "Report exports attempted", "{exports}"},
		{&m.exportRows, "pentol_report_export_rows_total", "Rows written to report exports", "{rows}"},
	}
	for _, c := range counters {
		counter, err := NewCounter(meter, c.name, c.description, c.unit)
		if err != nil {
			return nil, err
		}
		*c.dst = counter
	}

	var err error
	m.exportDuration, err = NewHistogram(meter, HistogramOpts{
		Name:        "pentol_report_export_duration_seconds",
		Description: "Time spent building report exports",
		Unit:        "s",
		Boundaries:  DurationBuckets,
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// RecordSubmission counts one harvest input attempt.
func (m *HarvestMetrics) RecordSubmission(ctx context.Context, err error) {
	if m == nil {
		return
	}
	m.recordsSubmitted.Inc(ctx, AttrOutcome.String(Outcome(err)))
}

// RecordPhotoUpload counts one photo upload attempt.
func (m *HarvestMetrics) RecordPhotoUpload(ctx context.Context, err error) {
	if m == nil {
		return
	}
	m.photosUploaded.Inc(ctx, AttrOutcome.String(Outcome(err)))
}

// RecordTransition counts one approval transition attempt toward status.
func (m *HarvestMetrics) RecordTransition(ctx context.Context, status string, err error) {
	if m == nil {
		return
	}
	m.transitions.Inc(ctx,
		AttrStatusTo.String(status),
		AttrOutcome.String(Outcome(err)),
	)
}

// RecordSpbCreated counts a batch creation and the records it claimed.
func (m *HarvestMetrics) RecordSpbCreated(ctx context.Context, records int, err error) {
	if m == nil {
		return
	}
	outcome := AttrOutcome.String(Outcome(err))
	m.spbCreated.Inc(ctx, outcome)
	if err == nil && records > 0 {
		m.spbRecords.Add(ctx, int64(records))
	}
}

// RecordSpbShipped counts one shipment attempt.
func (m *HarvestMetrics) RecordSpbShipped(ctx context.Context, err error) {
	if m == nil {
		return
	}
	m.spbShipped.Inc(ctx, AttrOutcome.String(Outcome(err)))
}

// RecordExport counts an export, its rows and its duration.
func (m *HarvestMetrics) RecordExport(ctx context.Context, format, sink string, rows int, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	formatAttr := AttrFormat.String(format)
	m.exports.Inc(ctx, formatAttr, AttrSink.String(sink), AttrOutcome.String(Outcome(err)))
	m.exportDuration.RecordDuration(ctx, elapsed, formatAttr)
	if err == nil && rows > 0 {
		m.exportRows.Add(ctx, int64(rows), formatAttr)
	}
}
