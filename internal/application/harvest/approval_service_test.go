package harvest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pentol/backend/internal/domain/harvest"
	"github.com/pentol/backend/internal/domain/identity"
	"github.com/pentol/backend/internal/domain/shared"
	"github.com/pentol/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
)

func approver(role identity.Role, divisi *uuid.UUID) *identity.Profile {
	return &identity.Profile{ID: uuid.New(), Role: role, DivisiID: divisi}
}

func submittedRecord(divisi uuid.UUID) harvest.Record {
	return harvest.Record{
		BaseEntity: shared.BaseEntity{ID: uuid.New(), CreatedAt: time.Now(), UpdatedAt: time.Now()},
		DivisiID:   divisi,
		Status:     harvest.StatusSubmitted,
		CreatedBy:  uuid.New(),
	}
}

func TestApprovalService_Approve(t *testing.T) {
	divisi := uuid.New()
	rec := submittedRecord(divisi)
	repo := newMemoryRepository(rec)
	svc := NewApprovalService(repo, nil, 100, zap.NewNop())
	actor := approver(identity.RoleMandor, &divisi)

	res, err := svc.Approve(context.Background(), actor, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "approved", res.Status)

	stored, err := repo.FindByID(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.Equal(t, harvest.StatusApproved, stored.Status)
	require.NotNil(t, stored.ApprovedBy)
	assert.Equal(t, actor.ID, *stored.ApprovedBy)
	assert.NotNil(t, stored.ApprovedAt)
}

func TestApprovalService_Reject_StoresReason(t *testing.T) {
	divisi := uuid.New()
	rec := submittedRecord(divisi)
	repo := newMemoryRepository(rec)
	svc := NewApprovalService(repo, nil, 100, zap.NewNop())

	_, err := svc.Reject(context.Background(), approver(identity.RoleAsisten, &divisi), rec.ID, "jjg tidak sesuai")
	require.NoError(t, err)

	stored, _ := repo.FindByID(context.Background(), rec.ID)
	assert.Equal(t, harvest.StatusRejected, stored.Status)
	assert.Equal(t, "jjg tidak sesuai", stored.KeteranganReview)
}

func TestApprovalService_ConcurrentApproveAndReject(t *testing.T) {
	divisi := uuid.New()
	rec := submittedRecord(divisi)
	repo := newMemoryRepository(rec)
	svc := NewApprovalService(repo, nil, 100, zap.NewNop())

	var (
		wg   sync.WaitGroup
		errs = make([]error, 2)
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, errs[0] = svc.Approve(context.Background(), approver(identity.RoleMandor, &divisi), rec.ID)
	}()
	go func() {
		defer wg.Done()
		_, errs[1] = svc.Reject(context.Background(), approver(identity.RoleAsisten, &divisi), rec.ID, "late")
	}()
	wg.Wait()

	successes, conflicts := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			successes++
		case shared.HasCode(err, shared.CodeConflict):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, conflicts)

	stored, _ := repo.FindByID(context.Background(), rec.ID)
	assert.True(t, stored.Status.IsTerminal())
}

func TestApprovalService_Transition_Errors(t *testing.T) {
	divisi := uuid.New()

	t.Run("forbidden role", func(t *testing.T) {
		rec := submittedRecord(divisi)
		svc := NewApprovalService(newMemoryRepository(rec), nil, 100, zap.NewNop())
		_, err := svc.Approve(context.Background(), approver(identity.RoleKraniPanen, &divisi), rec.ID)
		assert.True(t, shared.HasCode(err, shared.CodeForbidden))
	})

	t.Run("not found", func(t *testing.T) {
		svc := NewApprovalService(newMemoryRepository(), nil, 100, zap.NewNop())
		_, err := svc.Approve(context.Background(), approver(identity.RoleMandor, &divisi), uuid.New())
		assert.True(t, shared.HasCode(err, shared.CodeNotFound))
	})

	t.Run("already approved is a conflict", func(t *testing.T) {
		rec := submittedRecord(divisi)
		rec.Status = harvest.StatusApproved
		svc := NewApprovalService(newMemoryRepository(rec), nil, 100, zap.NewNop())

		_, err := svc.Reject(context.Background(), approver(identity.RoleMandor, &divisi), rec.ID, "")
		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, shared.CodeConflict, de.Code)
		assert.Equal(t, "approved", de.Details["current"])
		assert.Equal(t, "submitted", de.Details["expected"])
	})

	t.Run("draft cannot be approved", func(t *testing.T) {
		rec := submittedRecord(divisi)
		rec.Status = harvest.StatusDraft
		svc := NewApprovalService(newMemoryRepository(rec), nil, 100, zap.NewNop())

		_, err := svc.Approve(context.Background(), approver(identity.RoleMandor, &divisi), rec.ID)
		assert.True(t, shared.HasCode(err, shared.CodeState))
	})

	t.Run("disallowed edge", func(t *testing.T) {
		svc := NewApprovalService(newMemoryRepository(), nil, 100, zap.NewNop())
		_, err := svc.Transition(context.Background(), approver(identity.RoleRegionalGM, nil),
			uuid.New(), harvest.StatusApproved, harvest.StatusRejected, "")
		assert.True(t, shared.HasCode(err, shared.CodeState))
	})

	t.Run("other division", func(t *testing.T) {
		rec := submittedRecord(uuid.New())
		svc := NewApprovalService(newMemoryRepository(rec), nil, 100, zap.NewNop())
		_, err := svc.Approve(context.Background(), approver(identity.RoleMandor, &divisi), rec.ID)
		assert.True(t, shared.HasCode(err, shared.CodeForbidden))
	})
}

func TestApprovalService_LostRaceReportsCurrentStatus(t *testing.T) {
	divisi := uuid.New()
	rec := submittedRecord(divisi)
	repo := new(MockHarvestRepository)
	svc := NewApprovalService(repo, nil, 100, zap.NewNop())

	won := rec
	won.Status = harvest.StatusRejected
	repo.On("FindByID", mock.Anything, rec.ID).Return(&rec, nil).Once()
	repo.On("UpdateStatus", mock.Anything, mock.Anything, harvest.StatusSubmitted).Return(false, nil)
	repo.On("FindByID", mock.Anything, rec.ID).Return(&won, nil).Once()

	_, err := svc.Approve(context.Background(), approver(identity.RoleMandor, &divisi), rec.ID)
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, shared.CodeConflict, de.Code)
	assert.Equal(t, "rejected", de.Details["current"])
	repo.AssertExpectations(t)
}

func TestApprovalService_Submit(t *testing.T) {
	divisi := uuid.New()
	clerk := &identity.Profile{ID: uuid.New(), Role: identity.RoleKraniPanen, DivisiID: &divisi}
	rec := submittedRecord(divisi)
	rec.Status = harvest.StatusDraft
	rec.CreatedBy = clerk.ID
	repo := newMemoryRepository(rec)
	svc := NewApprovalService(repo, nil, 100, zap.NewNop())

	other := &identity.Profile{ID: uuid.New(), Role: identity.RoleKraniPanen, DivisiID: &divisi}
	_, err := svc.Submit(context.Background(), other, rec.ID)
	assert.True(t, shared.HasCode(err, shared.CodeForbidden))

	res, err := svc.Submit(context.Background(), clerk, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "submitted", res.Status)
}

func TestApprovalService_BulkTransition(t *testing.T) {
	divisi := uuid.New()
	ok1 := submittedRecord(divisi)
	ok2 := submittedRecord(divisi)
	done := submittedRecord(divisi)
	done.Status = harvest.StatusApproved
	repo := newMemoryRepository(ok1, ok2, done)
	svc := NewApprovalService(repo, nil, 100, zap.NewNop())
	missing := uuid.New()

	res, err := svc.BulkTransition(context.Background(), approver(identity.RoleEstateManager, nil),
		[]uuid.UUID{ok1.ID, done.ID, missing, ok2.ID, ok1.ID}, harvest.StatusApproved, "")
	require.NoError(t, err)
	assert.Equal(t, 2, res.Succeeded)
	assert.Equal(t, 2, res.Failed)
	require.Len(t, res.Outcomes, 4)
	assert.True(t, res.Outcomes[0].OK)
	assert.Equal(t, shared.CodeConflict, res.Outcomes[1].Code)
	assert.Equal(t, shared.CodeNotFound, res.Outcomes[2].Code)
	assert.True(t, res.Outcomes[3].OK)
}

func TestApprovalService_BulkTransition_Validation(t *testing.T) {
	svc := NewApprovalService(newMemoryRepository(), nil, 100, zap.NewNop())
	actor := approver(identity.RoleEstateManager, nil)

	_, err := svc.BulkTransition(context.Background(), actor, nil, harvest.StatusApproved, "")
	assert.True(t, shared.HasCode(err, shared.CodeValidation))

	_, err = svc.BulkTransition(context.Background(), actor, []uuid.UUID{uuid.New()}, harvest.StatusSubmitted, "")
	assert.True(t, shared.HasCode(err, shared.CodeValidation))

	_, err = svc.BulkTransition(context.Background(), approver(identity.RoleKraniBuah, nil),
		[]uuid.UUID{uuid.New()}, harvest.StatusApproved, "")
	assert.True(t, shared.HasCode(err, shared.CodeForbidden))

	tooMany := make([]uuid.UUID, MaxBulkSize+1)
	for i := range tooMany {
		tooMany[i] = uuid.New()
	}
	_, err = svc.BulkTransition(context.Background(), actor, tooMany, harvest.StatusApproved, "")
	assert.True(t, shared.HasCode(err, shared.CodeValidation))
}

func TestApprovalService_PendingQueue_ScopesToDivision(t *testing.T) {
	divisi := uuid.New()
	repo := new(MockHarvestRepository)
	svc := NewApprovalService(repo, nil, 100, zap.NewNop())

	repo.On("List", mock.Anything, harvest.QueueFilter{Status: harvest.StatusSubmitted, DivisiID: &divisi},
		shared.Pagination{Page: 1, PageSize: 100}).
		Return([]harvest.Record{submittedRecord(divisi)}, int64(1), nil)

	page, err := svc.PendingQueue(context.Background(), approver(identity.RoleMandor, &divisi), nil,
		shared.Pagination{Page: 0, PageSize: 1000})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
	assert.Len(t, page.Items, 1)
	repo.AssertExpectations(t)
}

func TestApprovalService_GetRecord(t *testing.T) {
	divisi := uuid.New()
	rec := submittedRecord(divisi)
	svc := NewApprovalService(newMemoryRepository(rec), nil, 100, zap.NewNop())

	got, err := svc.GetRecord(context.Background(), approver(identity.RoleMandor, &divisi), rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, got.ID)

	other := uuid.New()
	_, err = svc.GetRecord(context.Background(), approver(identity.RoleMandor, &other), rec.ID)
	assert.True(t, shared.HasCode(err, shared.CodeForbidden))
}

func TestApprovalService_RecordsTransitionMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() { _ = provider.Shutdown(context.Background()) }()
	metrics, err := telemetry.NewHarvestMetrics(provider.Meter("test"))
	require.NoError(t, err)

	divisi := uuid.New()
	rec := submittedRecord(divisi)
	svc := NewApprovalService(newMemoryRepository(rec), nil, 100, zap.NewNop())
	svc.SetMetrics(metrics)
	actor := approver(identity.RoleMandor, &divisi)

	_, err = svc.Approve(context.Background(), actor, rec.ID)
	require.NoError(t, err)
	_, err = svc.Approve(context.Background(), actor, rec.ID)
	require.Error(t, err)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	outcomes := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "pentol_harvest_transitions_total" {
				continue
			}
			for _, dp := range m.Data.(metricdata.Sum[int64]).DataPoints {
				outcome, _ := dp.Attributes.Value(telemetry.AttrOutcome)
				outcomes[outcome.AsString()] += dp.Value
			}
		}
	}
	assert.Equal(t, int64(1), outcomes["ok"])
	assert.Equal(t, int64(1), outcomes["concurrency_conflict"])
}
