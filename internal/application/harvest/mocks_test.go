package harvest

import (
	"context"
	"io"
	"sync"

	"github.com/google/uuid"
	"github.com/pentol/backend/internal/domain/harvest"
	"github.com/pentol/backend/internal/domain/shared"
	"github.com/stretchr/testify/mock"
)

// MockHarvestRepository is a mock implementation of harvest.Repository
type MockHarvestRepository struct {
	mock.Mock
}

func (m *MockHarvestRepository) CreateBatch(ctx context.Context, records []*harvest.Record) error {
	args := m.Called(ctx, records)
	return args.Error(0)
}

func (m *MockHarvestRepository) FindByID(ctx context.Context, id uuid.UUID) (*harvest.Record, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*harvest.Record), args.Error(1)
}

func (m *MockHarvestRepository) UpdateStatus(ctx context.Context, r *harvest.Record, from harvest.Status) (bool, error) {
	args := m.Called(ctx, r, from)
	return args.Bool(0), args.Error(1)
}

func (m *MockHarvestRepository) List(ctx context.Context, filter harvest.QueueFilter, page shared.Pagination) ([]harvest.Record, int64, error) {
	args := m.Called(ctx, filter, page)
	return args.Get(0).([]harvest.Record), args.Get(1).(int64), args.Error(2)
}

func (m *MockHarvestRepository) ListRestan(ctx context.Context, divisiID *uuid.UUID) ([]harvest.RestanItem, error) {
	args := m.Called(ctx, divisiID)
	return args.Get(0).([]harvest.RestanItem), args.Error(1)
}

// memoryRepository keeps records in a map and applies conditional updates under a lock
type memoryRepository struct {
	mu      sync.Mutex
	records map[uuid.UUID]harvest.Record
}

func newMemoryRepository(records ...harvest.Record) *memoryRepository {
	repo := &memoryRepository{records: make(map[uuid.UUID]harvest.Record)}
	for _, r := range records {
		repo.records[r.ID] = r
	}
	return repo
}

func (m *memoryRepository) CreateBatch(ctx context.Context, records []*harvest.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range records {
		m.records[r.ID] = *r
	}
	return nil
}

func (m *memoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*harvest.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.records[id]
	if !ok {
		return nil, shared.NewNotFoundError("harvest_record", id)
	}
	return &r, nil
}

func (m *memoryRepository) UpdateStatus(ctx context.Context, r *harvest.Record, from harvest.Status) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.records[r.ID]
	if !ok || stored.Status != from {
		return false, nil
	}
	m.records[r.ID] = *r
	return true, nil
}

func (m *memoryRepository) List(ctx context.Context, filter harvest.QueueFilter, page shared.Pagination) ([]harvest.Record, int64, error) {
	return nil, 0, nil
}

func (m *memoryRepository) ListRestan(ctx context.Context, divisiID *uuid.UUID) ([]harvest.RestanItem, error) {
	return nil, nil
}

type fakeProcessor struct {
	err error
}

func (f fakeProcessor) Process(r io.Reader) ([]byte, string, error) {
	if f.err != nil {
		return nil, "", f.err
	}
	data, err := io.ReadAll(r)
	return data, "image/webp", err
}

type fakePhotoStorage struct {
	keys []string
}

func (f *fakePhotoStorage) Upload(ctx context.Context, storageKey string, data []byte, contentType string) error {
	f.keys = append(f.keys, storageKey)
	return nil
}
