package report

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pentol/backend/internal/application/policy"
	"github.com/pentol/backend/internal/domain/identity"
	"github.com/pentol/backend/internal/domain/organization"
	"github.com/pentol/backend/internal/domain/report"
	"github.com/pentol/backend/internal/domain/shared"
	"github.com/pentol/backend/internal/infrastructure/logger"
	"github.com/pentol/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// ExportService streams report rows into spreadsheet or paginated documents
type ExportService struct {
	reports   report.Repository
	org       organization.Repository
	documents DocumentBuilder
	sink      ArtifactSink
	policy    *policy.Policy
	batchSize int
	maxRows   int
	location  *time.Location
	now       func() time.Time
	logger    *zap.Logger
	metrics   *telemetry.HarvestMetrics
}

// ExportServiceOption configures an ExportService
type ExportServiceOption func(*ExportService)

// WithSink publishes finished exports instead of returning them inline
func WithSink(sink ArtifactSink) ExportServiceOption {
	return func(s *ExportService) {
		s.sink = sink
	}
}

// WithMaxRows refuses exports above n rows; zero means unlimited
func WithMaxRows(n int) ExportServiceOption {
	return func(s *ExportService) {
		s.maxRows = n
	}
}

// NewExportService creates a new ExportService
func NewExportService(
	reports report.Repository,
	org organization.Repository,
	documents DocumentBuilder,
	p *policy.Policy,
	batchSize int,
	loc *time.Location,
	logger *zap.Logger,
	opts ...ExportServiceOption,
) *ExportService {
	if p == nil {
		p = policy.Default()
	}
	if loc == nil {
		loc = time.UTC
	}
	if batchSize <= 0 {
		batchSize = shared.DefaultPageSize
	}
	s := &ExportService{
		reports:   reports,
		org:       org,
		documents: documents,
		policy:    p,
		batchSize: batchSize,
		location:  loc,
		now:       time.Now,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetMetrics sets the workflow metrics instance for recording exports
func (s *ExportService) SetMetrics(m *telemetry.HarvestMetrics) {
	s.metrics = m
}

func (s *ExportService) sinkLabel() string {
	if s.sink == nil {
		return "inline"
	}
	return "published"
}

// exportScope is the profiling scope label: one division or the whole estate
func exportScope(divisi *uuid.UUID) string {
	if divisi == nil {
		return "estate"
	}
	return "divisi"
}

// Export renders the period ending on the requested date
func (s *ExportService) Export(ctx context.Context, actor *identity.Profile, req ExportRequest) (_ *ExportResult, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "report", "export")
	defer span.End()

	format := report.Format(req.Format)
	if req.Format == "" {
		format = report.FormatXLSX
	}
	started := time.Now()
	rows := 0
	defer func() {
		s.metrics.RecordExport(ctx, string(format), s.sinkLabel(), rows, time.Since(started), err)
		telemetry.SetAttribute(span, telemetry.SpanAttrRowCount, rows)
		telemetry.RecordError(span, err)
	}()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrFormat, string(format),
		telemetry.SpanAttrPeriod, req.Period,
	)

	if err := actor.Authorize(identity.ActionExportReports); err != nil {
		return nil, err
	}
	if !format.IsValid() {
		return nil, shared.NewValidationError(fmt.Sprintf("unknown export format %q", req.Format)).
			WithDetail("field", "format")
	}
	period, err := parsePeriod(req.Period)
	if err != nil {
		return nil, err
	}
	now := s.now()
	ref, err := shared.ParseCalendarDate("date", req.Date, now, s.location)
	if err != nil {
		return nil, err
	}
	requested, err := parseOptionalID("divisi_id", req.DivisiID)
	if err != nil {
		return nil, err
	}
	divisi, err := actor.ResolveDivision(requested)
	if err != nil {
		return nil, err
	}
	gang, err := parseOptionalID("gang_id", req.GangID)
	if err != nil {
		return nil, err
	}

	scopeName := ""
	if divisi != nil {
		err := s.policy.Read(ctx, "export.divisi", func(ctx context.Context) error {
			d, err := s.org.FindDivisi(ctx, *divisi)
			if err != nil {
				return err
			}
			scopeName = d.Name
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	start, end := period.Range(ref)
	writer, err := s.documents.NewWriter(format, DocumentMeta{
		Title:      report.Title(scopeName),
		ScopeName:  scopeName,
		Period:     period,
		StartDate:  start,
		EndDate:    end,
		ExportedAt: now.In(s.location),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s writer: %w", format, err)
	}
	defer writer.Close()

	filter := report.Filter{StartDate: start, EndDate: end, DivisiID: divisi, GangID: gang}
	var data []byte
	var finishErr error
	telemetry.WithProfilingLabels(ctx, telemetry.OperationLabels("export.render", map[string]string{
		telemetry.ProfilingLabelFormat: string(format),
		telemetry.ProfilingLabelScope:  exportScope(divisi),
	}), func(ctx context.Context) {
		err = s.policy.Write(ctx, func(ctx context.Context) error {
			return s.reports.StreamRecords(ctx, filter, s.batchSize, func(batch []report.DenormalizedRow) error {
				rows += len(batch)
				if s.maxRows > 0 && rows > s.maxRows {
					return shared.NewValidationError(fmt.Sprintf("export exceeds %d rows, narrow the period", s.maxRows)).
						WithDetail("max_rows", s.maxRows)
				}
				return writer.WriteRows(report.ToExportRows(batch, s.location))
			})
		})
		if err != nil {
			return
		}
		data, finishErr = writer.Finish(ctx)
	})
	if err != nil {
		return nil, err
	}
	if finishErr != nil {
		logger.For(ctx, s.logger).Error("Failed to render export", zap.String("format", string(format)), zap.Error(finishErr))
		if shared.IsTransient(finishErr) {
			return nil, finishErr
		}
		return nil, fmt.Errorf("finish %s export: %w", format, finishErr)
	}

	result := &ExportResult{
		FileName:    report.FileName(report.ScopeSlug(scopeName), period, ref, format),
		ContentType: format.ContentType(),
		Rows:        rows,
		Size:        len(data),
		Data:        data,
	}
	if s.sink != nil {
		location, err := s.sink.Publish(ctx, result.FileName, result.ContentType, data)
		if err != nil {
			logger.For(ctx, s.logger).Error("Failed to publish export", zap.String("file", result.FileName), zap.Error(err))
			return nil, shared.NewTransientError("failed to publish export", err)
		}
		result.Location = location
		result.Data = nil
		telemetry.AddEvent(span, "artifact_published", "location", location)
	}

	logger.For(ctx, s.logger).Info("Report exported",
		zap.String("actor", actor.ID.String()),
		zap.String("file", result.FileName),
		zap.Int("rows", rows),
		zap.Int("bytes", result.Size),
		zap.Bool("published", result.Location != ""),
	)
	return result, nil
}
