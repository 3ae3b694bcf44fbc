package harvest

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/pentol/backend/internal/application/policy"
	"github.com/pentol/backend/internal/domain/harvest"
	"github.com/pentol/backend/internal/domain/identity"
	"github.com/pentol/backend/internal/domain/shared"
	"github.com/pentol/backend/internal/infrastructure/logger"
	"github.com/pentol/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// PhotoProcessor decodes an uploaded image and re-encodes it for storage
type PhotoProcessor interface {
	// Process returns the encoded image and its content type
	Process(r io.Reader) ([]byte, string, error)
}

// PhotoStorage stores processed photos
type PhotoStorage interface {
	Upload(ctx context.Context, storageKey string, data []byte, contentType string) error
}

// InputService records harvest input from the field
type InputService struct {
	records   harvest.Repository
	processor PhotoProcessor
	photos    PhotoStorage
	policy    *policy.Policy
	location  *time.Location
	now       func() time.Time
	logger    *zap.Logger
	metrics   *telemetry.HarvestMetrics
}

// InputServiceOption configures an InputService
type InputServiceOption func(*InputService)

// WithPhotos enables photo upload
func WithPhotos(processor PhotoProcessor, storage PhotoStorage) InputServiceOption {
	return func(s *InputService) {
		s.processor = processor
		s.photos = storage
	}
}

// WithInputClock overrides the clock, for tests
func WithInputClock(now func() time.Time) InputServiceOption {
	return func(s *InputService) {
		s.now = now
	}
}

// NewInputService creates a new InputService. Dates without an explicit value
// default to today in loc.
func NewInputService(
	records harvest.Repository,
	p *policy.Policy,
	loc *time.Location,
	logger *zap.Logger,
	opts ...InputServiceOption,
) *InputService {
	if p == nil {
		p = policy.Default()
	}
	if loc == nil {
		loc = time.UTC
	}
	s := &InputService{
		records:  records,
		policy:   p,
		location: loc,
		now:      time.Now,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetMetrics sets the workflow metrics instance for recording submissions
func (s *InputService) SetMetrics(m *telemetry.HarvestMetrics) {
	s.metrics = m
}

// SubmitInput fans the form out into one record per (block, harvester) pair and
// inserts them all in one transaction.
func (s *InputService) SubmitInput(ctx context.Context, actor *identity.Profile, req InputRequest) (_ *InputResult, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "harvest", "submit_input")
	defer span.End()
	defer func() {
		s.metrics.RecordSubmission(ctx, err)
		telemetry.RecordError(span, err)
	}()

	if err := actor.Authorize(identity.ActionInputHarvest); err != nil {
		return nil, err
	}
	if actor.DivisiID == nil {
		return nil, shared.NewValidationError("profile has no division assigned").WithDetail("field", "divisi_id")
	}

	now := s.now()
	tanggal, err := shared.ParseCalendarDate("tanggal", req.Tanggal, now, s.location)
	if err != nil {
		return nil, err
	}

	records, err := harvest.FanOut(harvest.Input{
		Tanggal:    tanggal,
		DivisiID:   *actor.DivisiID,
		BlokIDs:    req.BlokIDs,
		PemanenIDs: req.PemanenIDs,
		TPHID:      req.TPHID,
		Rotasi:     req.Rotasi,
		NomorPanen: req.NomorPanen,
		JumlahJJG:  req.JumlahJJG,
		BJR:        req.BJR,
		Brondolan:  req.Brondolan,
		Quality:    req.quality(),
		Keterangan: req.Keterangan,
		FotoURL:    req.FotoURL,
		CreatedBy:  actor.ID,
		Submit:     req.Submit,
	}, now.UTC())
	if err != nil {
		return nil, err
	}
	telemetry.SetAttribute(span, telemetry.SpanAttrBatchSize, len(records))

	if err := s.policy.Write(ctx, func(ctx context.Context) error {
		return s.records.CreateBatch(ctx, records)
	}); err != nil {
		logger.For(ctx, s.logger).Error("Failed to save harvest input",
			zap.String("actor", actor.ID.String()),
			zap.Int("records", len(records)),
			zap.Error(err),
		)
		return nil, err
	}

	logger.For(ctx, s.logger).Info("Harvest input recorded",
		zap.String("actor", actor.ID.String()),
		zap.String("divisi_id", actor.DivisiID.String()),
		zap.String("tanggal", tanggal.Format(shared.CalendarLayout)),
		zap.Int("records", len(records)),
		zap.String("status", records[0].Status.String()),
	)

	result := &InputResult{Count: len(records), Records: make([]RecordResponse, len(records))}
	for i, r := range records {
		result.Records[i] = ToRecordResponse(r)
	}
	return result, nil
}

// UploadPhoto downscales and re-encodes a harvest photo, stores it and returns
// the key to reference from foto_url.
func (s *InputService) UploadPhoto(ctx context.Context, actor *identity.Profile, r io.Reader) (_ *PhotoResult, err error) {
	defer func() { s.metrics.RecordPhotoUpload(ctx, err) }()

	if err := actor.Authorize(identity.ActionInputHarvest); err != nil {
		return nil, err
	}
	if s.processor == nil || s.photos == nil {
		return nil, shared.NewDomainError(shared.CodeNotConfigured, "photo storage is not configured")
	}

	data, contentType, err := s.processor.Process(r)
	if err != nil {
		return nil, shared.NewValidationError("photo could not be decoded").
			WithDetail("field", "file").
			WithCause(err)
	}

	now := s.now()
	scope := "none"
	if actor.DivisiID != nil {
		scope = actor.DivisiID.String()
	}
	key := fmt.Sprintf("harvest-photos/%s/%s/%s%s",
		scope,
		shared.CalendarDay(now, s.location).Format(shared.CalendarLayout),
		uuid.New().String(),
		extensionFor(contentType),
	)

	if err := s.policy.Write(ctx, func(ctx context.Context) error {
		return s.photos.Upload(ctx, key, data, contentType)
	}); err != nil {
		return nil, shared.NewTransientError("failed to store photo", err)
	}

	logger.For(ctx, s.logger).Info("Harvest photo stored",
		zap.String("actor", actor.ID.String()),
		zap.String("key", key),
		zap.Int("bytes", len(data)),
	)
	return &PhotoResult{Key: key, ContentType: contentType, Size: len(data)}, nil
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/webp":
		return ".webp"
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	}
	return ""
}
