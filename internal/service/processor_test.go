package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fjcero/ClearGDPR/internal/model"
	"github.com/fjcero/ClearGDPR/internal/testutil"
)

// MockProcessorStore mocks the ProcessorStore interface
type MockProcessorStore struct {
	mock.Mock
}

func (m *MockProcessorStore) Upsert(ctx context.Context, processor model.Processor) error {
	args := m.Called(ctx, processor)
	return args.Error(0)
}

func (m *MockProcessorStore) GetByID(ctx context.Context, id string) (model.Processor, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Processor), args.Error(1)
}

func (m *MockProcessorStore) List(ctx context.Context) ([]model.Processor, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.Processor), args.Error(1)
}

func TestProcessors_SyncFromJSON(t *testing.T) {
	ctx := context.Background()

	t.Run("upserts every seed entry", func(t *testing.T) {
		store := &MockProcessorStore{}
		store.On("Upsert", mock.Anything, model.Processor{
			ID:          "p1",
			Name:        "Analytics Corp",
			LogoURL:     "https://example.com/logo.png",
			Description: "usage analytics",
		}).Return(nil)
		store.On("Upsert", mock.Anything, model.Processor{ID: "p2", Name: "Mailer Inc"}).Return(nil)

		s := NewProcessors(store, testutil.MakeNoopLogger())
		err := s.SyncFromJSON(ctx, `[
			{"id":"p1","name":"Analytics Corp","logo_url":"https://example.com/logo.png","description":"usage analytics"},
			{"id":"p2","name":"Mailer Inc"}
		]`)
		require.NoError(t, err)
		store.AssertNumberOfCalls(t, "Upsert", 2)
	})

	t.Run("empty seed is a no-op", func(t *testing.T) {
		store := &MockProcessorStore{}
		s := NewProcessors(store, testutil.MakeNoopLogger())

		err := s.SyncFromJSON(ctx, `[]`)
		require.NoError(t, err)
		store.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
	})

	t.Run("rejects malformed JSON", func(t *testing.T) {
		store := &MockProcessorStore{}
		s := NewProcessors(store, testutil.MakeNoopLogger())

		err := s.SyncFromJSON(ctx, `{"id":"p1"`)
		require.Error(t, err)
	})

	t.Run("rejects entries without id", func(t *testing.T) {
		store := &MockProcessorStore{}
		s := NewProcessors(store, testutil.MakeNoopLogger())

		err := s.SyncFromJSON(ctx, `[{"name":"Analytics Corp"}]`)
		require.Error(t, err)
	})

	t.Run("rejects entries without name", func(t *testing.T) {
		store := &MockProcessorStore{}
		s := NewProcessors(store, testutil.MakeNoopLogger())

		err := s.SyncFromJSON(ctx, `[{"id":"p1"}]`)
		require.Error(t, err)
	})
}

func TestProcessors_List(t *testing.T) {
	ctx := context.Background()

	store := &MockProcessorStore{}
	processors := []model.Processor{
		{ID: "p1", Name: "Analytics Corp"},
		{ID: "p2", Name: "Mailer Inc"},
	}
	store.On("List", mock.Anything).Return(processors, nil)

	s := NewProcessors(store, testutil.MakeNoopLogger())
	got, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, processors, got)
}
