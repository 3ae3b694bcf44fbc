package harvest

import (
	"context"
	"errors"
	"fmt"
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

// MaxBulkSize caps the ids accepted by one bulk transition
const MaxBulkSize = 200

// ApprovalService moves harvest records through the approval workflow
type ApprovalService struct {
	records     harvest.Repository
	policy      *policy.Policy
	maxPageSize int
	now         func() time.Time
	logger      *zap.Logger
	metrics     *telemetry.HarvestMetrics
}

// NewApprovalService creates a new ApprovalService
func NewApprovalService(records harvest.Repository, p *policy.Policy, maxPageSize int, logger *zap.Logger) *ApprovalService {
	if p == nil {
		p = policy.Default()
	}
	return &ApprovalService{
		records:     records,
		policy:      p,
		maxPageSize: maxPageSize,
		now:         time.Now,
		logger:      logger,
	}
}

// SetMetrics sets the workflow metrics instance for recording transitions
func (s *ApprovalService) SetMetrics(m *telemetry.HarvestMetrics) {
	s.metrics = m
}

// lifecycleRank orders statuses along the workflow
func lifecycleRank(s harvest.Status) int {
	switch s {
	case harvest.StatusDraft:
		return 0
	case harvest.StatusSubmitted:
		return 1
	}
	return 2
}

func (s *ApprovalService) authorizeTransition(actor *identity.Profile, to harvest.Status) error {
	if to == harvest.StatusSubmitted {
		return actor.Authorize(identity.ActionInputHarvest)
	}
	return actor.Authorize(identity.ActionApprove)
}

// Transition moves one record from -> to as a conditional write.
//
// A missing record is NOT_FOUND. A disallowed edge, or a record that has not yet
// reached from, is INVALID_STATE. A record that already moved past from, or that
// another writer moved first, is CONCURRENCY_CONFLICT with details naming the
// current and expected status.
func (s *ApprovalService) Transition(
	ctx context.Context,
	actor *identity.Profile,
	id uuid.UUID,
	from, to harvest.Status,
	reason string,
) (result *TransitionResult, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "approval", "transition")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrRecordID, id.String(),
		telemetry.SpanAttrStatusTo, to.String(),
	)
	defer func() {
		s.metrics.RecordTransition(ctx, to.String(), err)
		telemetry.RecordError(span, err)
	}()

	if err := s.authorizeTransition(actor, to); err != nil {
		return nil, err
	}
	telemetry.SetAttribute(span, telemetry.SpanAttrActorRole, actor.Role.String())
	if err := harvest.ValidateTransition(from, to); err != nil {
		return nil, err
	}

	err = s.policy.Write(ctx, func(ctx context.Context) error {
		record, err := s.records.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := s.checkOwnership(actor, record, to); err != nil {
			return err
		}
		if record.Status != from {
			return statusMismatch(record, from)
		}
		if err := record.TransitionTo(to, actor.ID, reason, s.now().UTC()); err != nil {
			return err
		}

		ok, err := s.records.UpdateStatus(ctx, record, from)
		if err != nil {
			return err
		}
		if !ok {
			return conflictError(id, s.currentStatus(ctx, id), from)
		}
		result = &TransitionResult{ID: id, Status: to.String()}
		return nil
	})
	if err != nil {
		logger.For(ctx, s.logger).Warn("Harvest record transition failed",
			zap.String("record_id", id.String()),
			zap.String("from", from.String()),
			zap.String("to", to.String()),
			zap.String("actor", actor.ID.String()),
			zap.Error(err),
		)
		return nil, err
	}

	logger.For(ctx, s.logger).Info("Harvest record transitioned",
		zap.String("record_id", id.String()),
		zap.String("from", from.String()),
		zap.String("to", to.String()),
		zap.String("actor", actor.ID.String()),
		zap.String("role", actor.Role.String()),
	)
	return result, nil
}

// checkOwnership pins submitters to their own records and approvers to their division
func (s *ApprovalService) checkOwnership(actor *identity.Profile, record *harvest.Record, to harvest.Status) error {
	if to == harvest.StatusSubmitted {
		if record.CreatedBy != actor.ID {
			return shared.NewPermissionError("only the creating clerk can submit a record")
		}
		return nil
	}
	divisi := record.DivisiID
	_, err := actor.ResolveDivision(&divisi)
	return err
}

func statusMismatch(record *harvest.Record, expected harvest.Status) error {
	if lifecycleRank(record.Status) <= lifecycleRank(expected) {
		return shared.NewInvalidStateError(
			fmt.Sprintf("harvest record is %s, expected %s", record.Status, expected),
			record.ID.String(),
		).WithDetail("current", record.Status.String()).WithDetail("expected", expected.String())
	}
	return conflictError(record.ID, record.Status, expected)
}

func conflictError(id uuid.UUID, current, expected harvest.Status) error {
	err := shared.NewConflictError(fmt.Sprintf("harvest record %s was changed by another reviewer", id)).
		WithDetail("id", id.String()).
		WithDetail("expected", expected.String())
	if current != "" {
		err = err.WithDetail("current", current.String())
	}
	return err
}

// currentStatus reads the status after a lost race; empty when it cannot be read
func (s *ApprovalService) currentStatus(ctx context.Context, id uuid.UUID) harvest.Status {
	record, err := s.records.FindByID(ctx, id)
	if err != nil {
		return ""
	}
	return record.Status
}

// Submit sends a draft to the approval queue
func (s *ApprovalService) Submit(ctx context.Context, actor *identity.Profile, id uuid.UUID) (*TransitionResult, error) {
	return s.Transition(ctx, actor, id, harvest.StatusDraft, harvest.StatusSubmitted, "")
}

// Approve accepts a submitted record
func (s *ApprovalService) Approve(ctx context.Context, actor *identity.Profile, id uuid.UUID) (*TransitionResult, error) {
	return s.Transition(ctx, actor, id, harvest.StatusSubmitted, harvest.StatusApproved, "")
}

// Reject refuses a submitted record, keeping the reason for the clerk
func (s *ApprovalService) Reject(ctx context.Context, actor *identity.Profile, id uuid.UUID, reason string) (*TransitionResult, error) {
	return s.Transition(ctx, actor, id, harvest.StatusSubmitted, harvest.StatusRejected, reason)
}

// BulkTransition applies submitted -> to to each id independently. Failures of
// one id never affect the others.
func (s *ApprovalService) BulkTransition(
	ctx context.Context,
	actor *identity.Profile,
	ids []uuid.UUID,
	to harvest.Status,
	reason string,
) (*BulkResult, error) {
	if to != harvest.StatusApproved && to != harvest.StatusRejected {
		return nil, shared.NewValidationError(fmt.Sprintf("bulk transition to %s is not supported", to))
	}
	if err := actor.Authorize(identity.ActionApprove); err != nil {
		return nil, err
	}
	ctx, span := telemetry.StartServiceSpan(ctx, "approval", "bulk_transition")
	defer span.End()

	ids = shared.UniqueIDs(ids)
	telemetry.SetAttributes(span,
		telemetry.SpanAttrStatusTo, to.String(),
		telemetry.SpanAttrBatchSize, len(ids),
	)
	if len(ids) == 0 {
		return nil, shared.NewValidationError("at least one record id is required").WithDetail("field", "ids")
	}
	if len(ids) > MaxBulkSize {
		return nil, shared.NewValidationError(fmt.Sprintf("at most %d records per bulk request", MaxBulkSize)).
			WithDetail("field", "ids")
	}

	result := &BulkResult{Outcomes: make([]BulkOutcome, 0, len(ids))}
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			telemetry.RecordError(span, err)
			return nil, shared.NewTransientError("bulk transition interrupted", err)
		}
		res, err := s.Transition(ctx, actor, id, harvest.StatusSubmitted, to, reason)
		if err != nil {
			result.Failed++
			result.Outcomes = append(result.Outcomes, failedOutcome(id, err))
			continue
		}
		result.Succeeded++
		result.Outcomes = append(result.Outcomes, BulkOutcome{ID: id, OK: true, Status: res.Status})
	}
	telemetry.AddEvent(span, "bulk_transition_completed",
		"succeeded", result.Succeeded,
		"failed", result.Failed,
	)
	return result, nil
}

func failedOutcome(id uuid.UUID, err error) BulkOutcome {
	outcome := BulkOutcome{ID: id, Message: err.Error()}
	var de *shared.DomainError
	if errors.As(err, &de) {
		outcome.Code = de.Code
		outcome.Message = de.Message
		outcome.Details = de.Details
	} else {
		outcome.Code = "INTERNAL_ERROR"
	}
	return outcome
}

// PendingQueue lists submitted records oldest first, within the approver's division
func (s *ApprovalService) PendingQueue(
	ctx context.Context,
	actor *identity.Profile,
	divisiID *uuid.UUID,
	page shared.Pagination,
) (*shared.Paginated[RecordResponse], error) {
	if err := actor.Authorize(identity.ActionApprove); err != nil {
		return nil, err
	}
	scope, err := actor.ResolveDivision(divisiID)
	if err != nil {
		return nil, err
	}
	page = page.Normalize(s.maxPageSize)

	var (
		records []harvest.Record
		total   int64
	)
	err = s.policy.Read(ctx, "approval.pending", func(ctx context.Context) error {
		var err error
		records, total, err = s.records.List(ctx, harvest.QueueFilter{
			Status:   harvest.StatusSubmitted,
			DivisiID: scope,
		}, page)
		return err
	})
	if err != nil {
		return nil, err
	}

	out := shared.NewPaginated(ToRecordResponses(records), total, page.Page, page.PageSize)
	return &out, nil
}

// GetRecord returns one record visible to the actor
func (s *ApprovalService) GetRecord(ctx context.Context, actor *identity.Profile, id uuid.UUID) (*RecordResponse, error) {
	var record *harvest.Record
	err := s.policy.Read(ctx, "harvest.get", func(ctx context.Context) error {
		var err error
		record, err = s.records.FindByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	divisi := record.DivisiID
	if _, err := actor.ResolveDivision(&divisi); err != nil {
		return nil, err
	}
	resp := ToRecordResponse(record)
	return &resp, nil
}
