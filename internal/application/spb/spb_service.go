package spb

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pentol/backend/internal/application/policy"
	"github.com/pentol/backend/internal/domain/harvest"
	"github.com/pentol/backend/internal/domain/identity"
	"github.com/pentol/backend/internal/domain/shared"
	"github.com/pentol/backend/internal/domain/spb"
	"github.com/pentol/backend/internal/infrastructure/logger"
	"github.com/pentol/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// SpbService batches approved harvest records onto delivery notes
type SpbService struct {
	notes       spb.Repository
	records     harvest.Repository
	policy      *policy.Policy
	location    *time.Location
	maxPageSize int
	now         func() time.Time
	logger      *zap.Logger
	metrics     *telemetry.HarvestMetrics
}

// NewSpbService creates a new SpbService. SPB numbers are dated in loc.
func NewSpbService(
	notes spb.Repository,
	records harvest.Repository,
	p *policy.Policy,
	loc *time.Location,
	maxPageSize int,
	logger *zap.Logger,
) *SpbService {
	if p == nil {
		p = policy.Default()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &SpbService{
		notes:       notes,
		records:     records,
		policy:      p,
		location:    loc,
		maxPageSize: maxPageSize,
		now:         time.Now,
		logger:      logger,
	}
}

// SetMetrics sets the workflow metrics instance for recording batches
func (s *SpbService) SetMetrics(m *telemetry.HarvestMetrics) {
	s.metrics = m
}

// CreateSpb creates a delivery note carrying every requested record, or nothing.
func (s *SpbService) CreateSpb(ctx context.Context, actor *identity.Profile, req CreateRequest) (_ *SpbResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "spb", "create")
	defer span.End()
	claimed := 0
	defer func() {
		s.metrics.RecordSpbCreated(ctx, claimed, err)
		telemetry.RecordError(span, err)
	}()

	if err := actor.Authorize(identity.ActionCreateSpb); err != nil {
		return nil, err
	}
	batch, err := spb.NewRequest(req.RecordIDs, req.DriverName, req.TruckPlate, actor.ID)
	if err != nil {
		return nil, err
	}
	telemetry.SetAttribute(span, telemetry.SpanAttrBatchSize, len(batch.RecordIDs))

	now := s.now().In(s.location)
	note := &spb.SPB{
		BaseEntity: shared.NewBaseEntityAt(now),
		DriverName: batch.DriverName,
		TruckPlate: batch.TruckPlate,
		CreatedBy:  batch.CreatedBy,
		Status:     spb.StatusCreated,
	}

	telemetry.WithProfilingLabels(ctx, telemetry.OperationLabels("spb.create", nil), func(ctx context.Context) {
		err = s.policy.Write(ctx, func(ctx context.Context) error {
			return s.notes.CreateWithRecords(ctx, note, batch.RecordIDs)
		})
	})
	if err != nil {
		logger.For(ctx, s.logger).Warn("SPB creation failed",
			zap.String("actor", actor.ID.String()),
			zap.Int("records", len(batch.RecordIDs)),
			zap.Error(err),
		)
		return nil, err
	}

	claimed = len(batch.RecordIDs)
	telemetry.SetAttribute(span, telemetry.SpanAttrSpbID, note.ID.String())
	logger.For(ctx, s.logger).Info("SPB created",
		zap.String("spb_id", note.ID.String()),
		zap.String("nomor_spb", note.NomorSPB),
		zap.String("truck_plate", note.TruckPlate),
		zap.Int("records", len(batch.RecordIDs)),
		zap.String("actor", actor.ID.String()),
	)
	resp := ToSpbResponse(note)
	return &resp, nil
}

// Ship marks a created note as shipped
func (s *SpbService) Ship(ctx context.Context, actor *identity.Profile, id uuid.UUID) (_ *SpbResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "spb", "ship",
		telemetry.WithAttribute(telemetry.SpanAttrSpbID, id.String()),
	)
	defer span.End()
	defer func() {
		s.metrics.RecordSpbShipped(ctx, err)
		telemetry.RecordError(span, err)
	}()

	if err := actor.Authorize(identity.ActionShipSpb); err != nil {
		return nil, err
	}

	var note *spb.SPB
	err = s.policy.Write(ctx, func(ctx context.Context) error {
		var err error
		note, err = s.notes.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := note.Ship(s.now().UTC()); err != nil {
			return err
		}
		ok, err := s.notes.MarkShipped(ctx, note)
		if err != nil {
			return err
		}
		if !ok {
			return shared.NewConflictError(fmt.Sprintf("SPB %s was shipped by another user", note.NomorSPB)).
				WithDetail("id", id.String()).
				WithDetail("expected", string(spb.StatusCreated))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.For(ctx, s.logger).Info("SPB shipped",
		zap.String("spb_id", id.String()),
		zap.String("nomor_spb", note.NomorSPB),
		zap.String("actor", actor.ID.String()),
	)
	resp := ToSpbResponse(note)
	return &resp, nil
}

// Get returns a note with its records and totals
func (s *SpbService) Get(ctx context.Context, id uuid.UUID) (*SpbDetail, error) {
	var (
		note  *spb.SPB
		lines []spb.Line
	)
	err := s.policy.Read(ctx, "spb.get", func(ctx context.Context) error {
		var err error
		if note, err = s.notes.FindByID(ctx, id); err != nil {
			return err
		}
		lines, err = s.notes.Lines(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	if lines == nil {
		lines = []spb.Line{}
	}
	return &SpbDetail{
		SpbResponse: ToSpbResponse(note),
		Lines:       lines,
		Totals:      spb.SumLines(lines),
	}, nil
}

// List returns delivery notes, newest first by default
func (s *SpbService) List(ctx context.Context, req ListRequest) (*shared.Paginated[SpbResponse], error) {
	filter := spb.ListFilter{
		Status:    spb.Status(req.Status),
		SortBy:    req.SortBy,
		SortOrder: req.SortOrder,
	}
	if req.Status != "" && !filter.Status.IsValid() {
		return nil, shared.NewValidationError(fmt.Sprintf("unknown SPB status %q", req.Status)).
			WithDetail("field", "status")
	}
	now := s.now()
	if req.StartDate != "" {
		start, err := shared.ParseCalendarDate("start_date", req.StartDate, now, s.location)
		if err != nil {
			return nil, err
		}
		start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, s.location)
		filter.StartDate = &start
	}
	if req.EndDate != "" {
		end, err := shared.ParseCalendarDate("end_date", req.EndDate, now, s.location)
		if err != nil {
			return nil, err
		}
		end = time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, s.location)
		filter.EndDate = &end
	}
	page := shared.Pagination{Page: req.Page, PageSize: req.PageSize}.Normalize(s.maxPageSize)

	var (
		notes []spb.SPB
		total int64
	)
	err := s.policy.Read(ctx, "spb.list", func(ctx context.Context) error {
		var err error
		notes, total, err = s.notes.List(ctx, filter, page)
		return err
	})
	if err != nil {
		return nil, err
	}

	items := make([]SpbResponse, len(notes))
	for i := range notes {
		items[i] = ToSpbResponse(&notes[i])
	}
	out := shared.NewPaginated(items, total, page.Page, page.PageSize)
	return &out, nil
}

// ListRestan returns approved records still waiting for a delivery note, oldest first
func (s *SpbService) ListRestan(ctx context.Context, actor *identity.Profile, divisiID *uuid.UUID) ([]harvest.RestanItem, error) {
	if actor == nil || !(actor.Role.Can(identity.ActionCreateSpb) || actor.Role.Can(identity.ActionViewReports)) {
		return nil, shared.NewPermissionError("role may not view restan")
	}
	scope, err := actor.ResolveDivision(divisiID)
	if err != nil {
		return nil, err
	}

	var items []harvest.RestanItem
	err = s.policy.Read(ctx, "spb.restan", func(ctx context.Context) error {
		var err error
		items, err = s.records.ListRestan(ctx, scope)
		return err
	})
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []harvest.RestanItem{}
	}
	return items, nil
}
