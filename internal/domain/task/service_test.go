package task

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

// MockRepository is a mock implementation of the Repository interface for testing
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) List(ctx context.Context, since *time.Time) ([]Remote, error) {
	args := m.Called(ctx, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Remote), args.Error(1)
}

func (m *MockRepository) Get(ctx context.Context, id int64) (*Remote, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Remote), args.Error(1)
}

func (m *MockRepository) Create(ctx context.Context, p Payload) (int64, error) {
	args := m.Called(ctx, p)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) Update(ctx context.Context, id int64, p Payload) error {
	args := m.Called(ctx, id, p)
	return args.Error(0)
}

func (m *MockRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func newTestService(repo Repository) *Service {
	s := NewService(repo, slog.Default())
	s.now = func() time.Time { return time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC) }
	return s
}

func TestService_Create(t *testing.T) {
	tests := []struct {
		name     string
		input    Payload
		expected Payload
		err      error
	}{
		{
			name:  "defaults are filled",
			input: Payload{Title: "  Write report  "},
			expected: Payload{
				Title:     "Write report",
				Priority:  PriorityMedium,
				CreatedAt: "2024-06-01T09:00:00.000Z",
			},
		},
		{
			name: "dates are normalized",
			input: Payload{
				Title:     "Call",
				Priority:  PriorityHigh,
				DueDate:   ptr("2024-06-03"),
				CreatedAt: "2024-05-31T12:00:00+02:00",
			},
			expected: Payload{
				Title:     "Call",
				Priority:  PriorityHigh,
				DueDate:   ptr("2024-06-03T00:00:00.000Z"),
				CreatedAt: "2024-05-31T10:00:00.000Z",
			},
		},
		{name: "empty title", input: Payload{Title: " "}, err: ErrInvalidTitle},
		{name: "bad priority", input: Payload{Title: "x", Priority: "asap"}, err: ErrInvalidPriority},
		{name: "bad due date", input: Payload{Title: "x", DueDate: ptr("soon")}, err: ErrInvalidDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			repo := new(MockRepository)
			svc := newTestService(repo)
			if tt.err == nil {
				repo.On("Create", mock.Anything, tt.expected).Return(int64(17), nil)
			}

			// Act
			id, err := svc.Create(context.Background(), tt.input)

			// Assert
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, int64(17), id)
			repo.AssertExpectations(t)
		})
	}
}

func TestService_Update(t *testing.T) {
	current := &Remote{ID: 4, Payload: Payload{
		Title:       "Old",
		Description: ptr("keep me"),
		Priority:    PriorityLow,
		CreatedAt:   "2024-01-01T00:00:00.000Z",
	}}

	t.Run("partial update merges fields", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newTestService(repo)
		repo.On("Get", mock.Anything, int64(4)).Return(current, nil)
		repo.On("Update", mock.Anything, int64(4), mock.MatchedBy(func(p Payload) bool {
			return p.Title == "New" && p.IsCompleted && *p.Description == "keep me" && p.Priority == PriorityLow
		})).Return(nil)

		done := true
		err := svc.Update(context.Background(), 4, UpdateRequest{Title: ptr("New"), IsCompleted: &done})

		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("missing task", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newTestService(repo)
		repo.On("Get", mock.Anything, int64(9)).Return(nil, ErrNotFound)

		err := svc.Update(context.Background(), 9, UpdateRequest{Title: ptr("x")})

		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("invalid patch", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newTestService(repo)
		repo.On("Get", mock.Anything, int64(4)).Return(current, nil)

		err := svc.Update(context.Background(), 4, UpdateRequest{Priority: ptr(Priority("now"))})

		assert.ErrorIs(t, err, ErrInvalidPriority)
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestService_Delete(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(repo)
	repo.On("Delete", mock.Anything, int64(3)).Return(nil).Once()
	repo.On("Delete", mock.Anything, int64(8)).Return(errors.New("db down")).Once()

	assert.NoError(t, svc.Delete(context.Background(), 3))
	assert.ErrorContains(t, svc.Delete(context.Background(), 8), "db down")
}

func TestService_List(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(repo)
	since := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	want := []Remote{{ID: 1, Payload: Payload{Title: "a"}}}
	repo.On("List", mock.Anything, &since).Return(want, nil)

	got, err := svc.List(context.Background(), &since)

	require.NoError(t, err)
	assert.Equal(t, want, got)
}
