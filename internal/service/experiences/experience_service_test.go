package experiences

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/Domenick1991/bookit/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockExperienceRepository struct {
	mock.Mock
}

func (m *MockExperienceRepository) List(ctx context.Context) ([]domain.Experience, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Experience), args.Error(1)
}

func (m *MockExperienceRepository) GetByID(ctx context.Context, id string) (*domain.Experience, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Experience), args.Error(1)
}

func (m *MockExperienceRepository) ReserveSlot(ctx context.Context, experienceID, slotID string) error {
	return m.Called(ctx, experienceID, slotID).Error(0)
}

func (m *MockExperienceRepository) ListOrphanedSlots(ctx context.Context, bookedBefore time.Time) ([]domain.OrphanedSlot, error) {
	args := m.Called(ctx, bookedBefore)
	return args.Get(0).([]domain.OrphanedSlot), args.Error(1)
}

func (m *MockExperienceRepository) ReleaseOrphanedSlot(ctx context.Context, experienceID, slotID string) (bool, error) {
	args := m.Called(ctx, experienceID, slotID)
	return args.Bool(0), args.Error(1)
}

func (m *MockExperienceRepository) Create(ctx context.Context, experience *domain.Experience) error {
	return m.Called(ctx, experience).Error(0)
}

func (m *MockExperienceRepository) Reset(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) GetExperiences(ctx context.Context) ([]domain.Experience, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Experience), args.Error(1)
}

func (m *MockCache) SetExperiences(ctx context.Context, experiences []domain.Experience) error {
	return m.Called(ctx, experiences).Error(0)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const experienceID = "6f1c2f4e-3f7e-4a53-9d5c-1b2a3c4d5e6f"

func TestExperienceService_List_CacheHit(t *testing.T) {
	repo := &MockExperienceRepository{}
	cache := &MockCache{}
	service := NewExperienceService(discardLogger(), repo, cache)
	ctx := context.Background()

	cached := []domain.Experience{{ID: experienceID, Title: "Scuba Diving in Bali"}}
	cache.On("GetExperiences", ctx).Return(cached, nil).Once()

	list, err := service.List(ctx)

	assert.NoError(t, err)
	assert.Equal(t, cached, list)
	repo.AssertNotCalled(t, "List", mock.Anything)
	cache.AssertExpectations(t)
}

func TestExperienceService_List_CacheMissStripsSlots(t *testing.T) {
	repo := &MockExperienceRepository{}
	cache := &MockCache{}
	service := NewExperienceService(discardLogger(), repo, cache)
	ctx := context.Background()

	fromStore := []domain.Experience{{ID: experienceID, Title: "Scuba", Slots: []domain.Slot{{ID: "s"}}}}
	want := []domain.Experience{{ID: experienceID, Title: "Scuba"}}

	cache.On("GetExperiences", ctx).Return(nil, nil).Once()
	repo.On("List", ctx).Return(fromStore, nil).Once()
	cache.On("SetExperiences", ctx, want).Return(nil).Once()

	list, err := service.List(ctx)

	assert.NoError(t, err)
	assert.Equal(t, want, list)
	repo.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestExperienceService_List_CacheErrorsFallBackToStore(t *testing.T) {
	repo := &MockExperienceRepository{}
	cache := &MockCache{}
	service := NewExperienceService(discardLogger(), repo, cache)
	ctx := context.Background()

	fromStore := []domain.Experience{{ID: experienceID}}
	cache.On("GetExperiences", ctx).Return(nil, errors.New("redis down")).Once()
	repo.On("List", ctx).Return(fromStore, nil).Once()
	cache.On("SetExperiences", ctx, fromStore).Return(errors.New("redis down")).Once()

	list, err := service.List(ctx)

	assert.NoError(t, err)
	assert.Equal(t, fromStore, list)
}

func TestExperienceService_List_StoreError(t *testing.T) {
	repo := &MockExperienceRepository{}
	service := NewExperienceService(discardLogger(), repo, nil)
	ctx := context.Background()

	repo.On("List", ctx).Return(nil, errors.New("boom")).Once()

	list, err := service.List(ctx)

	assert.Nil(t, list)
	assert.ErrorIs(t, err, domain.ErrStoreFault)
}

func TestExperienceService_GetByID(t *testing.T) {
	repo := &MockExperienceRepository{}
	service := NewExperienceService(discardLogger(), repo, nil)
	ctx := context.Background()

	exp := &domain.Experience{ID: experienceID, Slots: []domain.Slot{{ID: "s", IsBooked: true}}}
	repo.On("GetByID", ctx, experienceID).Return(exp, nil).Once()

	got, err := service.GetByID(ctx, experienceID)
	assert.NoError(t, err)
	assert.Equal(t, exp, got)

	_, err = service.GetByID(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	missing := "9e8d7c6b-5a49-4382-b1a0-f9e8d7c6b5a4"
	repo.On("GetByID", ctx, missing).Return(nil, domain.ErrExperienceNotFound).Once()
	_, err = service.GetByID(ctx, missing)
	assert.ErrorIs(t, err, domain.ErrExperienceNotFound)

	broken := "2c3d4e5f-6071-4829-b0c1-d2e3f4051627"
	repo.On("GetByID", ctx, broken).Return(nil, errors.New("boom")).Once()
	_, err = service.GetByID(ctx, broken)
	assert.ErrorIs(t, err, domain.ErrStoreFault)

	repo.AssertExpectations(t)
}
