package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"crmapi/internal/model"
	"crmapi/internal/repository"
	repoMocks "crmapi/internal/repository/mocks"
)

func newTimeEntryFixture(now time.Time) (*repoMocks.MockTimeEntryRepository, TimeEntryService) {
	repo := new(repoMocks.MockTimeEntryRepository)
	svc := &timeEntryService{entries: repo, now: func() time.Time { return now }}
	return repo, svc
}

func TestTimeEntryService_Create(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	t.Run("derives duration", func(t *testing.T) {
		repo, svc := newTimeEntryFixture(start)
		repo.On("Create", ctx, mock.MatchedBy(func(e *model.TimeEntry) bool {
			return e.UserID == "u1" && e.DurationSeconds == 5400 && e.EndedAt != nil
		})).Return(&model.TimeEntry{ID: "e1", DurationSeconds: 5400}, nil)

		e, err := svc.Create(ctx, principal, TimeEntryInput{StartedAt: start, EndedAt: start.Add(90 * time.Minute)})
		require.NoError(t, err)
		assert.Equal(t, int64(5400), e.DurationSeconds)
	})

	t.Run("end before start", func(t *testing.T) {
		_, svc := newTimeEntryFixture(start)
		_, err := svc.Create(ctx, principal, TimeEntryInput{StartedAt: start, EndedAt: start})
		var verr *ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, "endedAt", verr.Fields[0].Field)
	})
}

func TestTimeEntryService_Timer(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 2, 11, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		setupMocks func(repo *repoMocks.MockTimeEntryRepository)
		run        func(svc TimeEntryService) (*model.TimeEntry, error)
		wantErr    error
		check      func(t *testing.T, e *model.TimeEntry)
	}{
		{
			name: "start opens a timer",
			setupMocks: func(repo *repoMocks.MockTimeEntryRepository) {
				repo.On("FindRunning", ctx, "t1", "u1").Return(nil, sql.ErrNoRows)
				repo.On("Create", ctx, mock.MatchedBy(func(e *model.TimeEntry) bool {
					return e.EndedAt == nil && e.StartedAt.Equal(now)
				})).Return(&model.TimeEntry{ID: "e1", StartedAt: now}, nil)
			},
			run: func(svc TimeEntryService) (*model.TimeEntry, error) {
				return svc.Start(ctx, principal, StartTimerInput{Description: "calls"})
			},
			check: func(t *testing.T, e *model.TimeEntry) {
				assert.True(t, e.Running())
			},
		},
		{
			name: "start with a running timer",
			setupMocks: func(repo *repoMocks.MockTimeEntryRepository) {
				repo.On("FindRunning", ctx, "t1", "u1").Return(&model.TimeEntry{ID: "e0"}, nil)
			},
			run: func(svc TimeEntryService) (*model.TimeEntry, error) {
				return svc.Start(ctx, principal, StartTimerInput{})
			},
			wantErr: ErrConflict,
		},
		{
			name: "start loses a race",
			setupMocks: func(repo *repoMocks.MockTimeEntryRepository) {
				repo.On("FindRunning", ctx, "t1", "u1").Return(nil, sql.ErrNoRows)
				repo.On("Create", ctx, mock.Anything).Return(nil, repository.ErrDuplicate)
			},
			run: func(svc TimeEntryService) (*model.TimeEntry, error) {
				return svc.Start(ctx, principal, StartTimerInput{})
			},
			wantErr: ErrConflict,
		},
		{
			name: "stop closes the timer",
			setupMocks: func(repo *repoMocks.MockTimeEntryRepository) {
				repo.On("FindRunning", ctx, "t1", "u1").Return(&model.TimeEntry{ID: "e1", StartedAt: now.Add(-time.Hour)}, nil)
				repo.On("Update", ctx, mock.MatchedBy(func(e *model.TimeEntry) bool {
					return e.EndedAt != nil && e.DurationSeconds == 3600
				})).Return(&model.TimeEntry{ID: "e1", DurationSeconds: 3600}, nil)
			},
			run: func(svc TimeEntryService) (*model.TimeEntry, error) {
				return svc.Stop(ctx, principal)
			},
			check: func(t *testing.T, e *model.TimeEntry) {
				assert.Equal(t, int64(3600), e.DurationSeconds)
			},
		},
		{
			name: "stop without a timer",
			setupMocks: func(repo *repoMocks.MockTimeEntryRepository) {
				repo.On("FindRunning", ctx, "t1", "u1").Return(nil, sql.ErrNoRows)
			},
			run: func(svc TimeEntryService) (*model.TimeEntry, error) {
				return svc.Stop(ctx, principal)
			},
			wantErr: ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, svc := newTimeEntryFixture(now)
			tt.setupMocks(repo)

			e, err := tt.run(svc)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			if tt.check != nil {
				tt.check(t, e)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestTimeEntryService_OwnerOnly(t *testing.T) {
	ctx := context.Background()
	repo, svc := newTimeEntryFixture(time.Now())
	repo.On("FindByID", ctx, "t1", "e1").Return(&model.TimeEntry{ID: "e1", UserID: "u2"}, nil)

	desc := "edited"
	_, err := svc.Update(ctx, principal, "e1", UpdateTimeEntryInput{Description: &desc})
	assert.ErrorIs(t, err, ErrForbidden)

	err = svc.Delete(ctx, principal, "e1")
	assert.ErrorIs(t, err, ErrForbidden)
	repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
}

func TestTimeEntryService_Summary(t *testing.T) {
	ctx := context.Background()
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	repo, svc := newTimeEntryFixture(time.Now())
	repo.On("Summary", ctx, repository.TimeEntryFilter{TenantID: "t1", UserID: "u1", From: from, To: to}).Return(nil, nil)

	sums, err := svc.Summary(ctx, principal, from, to)
	require.NoError(t, err)
	assert.NotNil(t, sums)
	assert.Empty(t, sums)

	_, err = svc.Summary(ctx, principal, to, from)
	var verr *ValidationError
	assert.True(t, errors.As(err, &verr))
}
