package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/case-workflow/internal/domain"
	"github.com/spec-kit/case-workflow/internal/repository"
)

var t0 = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func TestDoDiscardsWritesOnError(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	boom := errors.New("boom")

	var caseID string
	err := store.Do(ctx, func(ctx context.Context, s repository.Stores) error {
		c := domain.NewInquiry(domain.CaseCore{Subject: "s", CustomerID: "cu"}, domain.InquiryDetails{}, t0)
		require.NoError(t, s.Cases.Create(ctx, c))
		caseID = c.ID
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = store.Stores().Cases.GetByID(ctx, caseID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestDoCommitsOnSuccess(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	var caseID string
	require.NoError(t, store.Do(ctx, func(ctx context.Context, s repository.Stores) error {
		c := domain.NewInquiry(domain.CaseCore{Subject: "s", CustomerID: "cu"}, domain.InquiryDetails{Channel: "email"}, t0)
		if err := s.Cases.Create(ctx, c); err != nil {
			return err
		}
		caseID = c.ID
		_, err := s.Assignments.Open(ctx, c.ID, "agent-1", t0)
		return err
	}))

	got, err := store.Stores().Cases.GetByID(ctx, caseID)
	require.NoError(t, err)
	assert.Equal(t, "email", got.Details.Inquiry.Channel)

	got.Details.Inquiry.Channel = "mutated"
	again, err := store.Stores().Cases.GetByID(ctx, caseID)
	require.NoError(t, err)
	assert.Equal(t, "email", again.Details.Inquiry.Channel)

	active, err := store.Stores().Assignments.GetActive(ctx, caseID)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, "agent-1", active.HandlerID)
}

func TestAssignmentsAllowOneActive(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	repo := store.Stores().Assignments

	first, err := repo.Open(ctx, "c1", "h1", t0)
	require.NoError(t, err)
	_, err = repo.Open(ctx, "c1", "h2", t0)
	require.Error(t, err)

	require.NoError(t, repo.Close(ctx, first.ID, t0.Add(time.Minute)))
	assert.ErrorIs(t, repo.Close(ctx, first.ID, t0.Add(time.Minute)), repository.ErrNotFound)

	_, err = repo.Open(ctx, "c1", "h2", t0.Add(time.Minute))
	require.NoError(t, err)

	history, err := repo.ListByCase(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "h1", history[0].HandlerID)
	assert.False(t, history[0].Active())
	assert.True(t, history[1].Active())
}

func TestAdjustLoad(t *testing.T) {
	store := NewStore()
	store.PutHandler(domain.Handler{ID: "h1", PoolID: "bo", Capacity: 1, Active: true})
	ctx := context.Background()
	repo := store.Stores().Handlers

	require.NoError(t, repo.AdjustLoad(ctx, "h1", 1))
	assert.ErrorIs(t, repo.AdjustLoad(ctx, "h1", 1), repository.ErrCapacityExceeded)
	require.NoError(t, repo.AdjustLoad(ctx, "h1", -5))

	h, err := repo.GetByID(ctx, "h1")
	require.NoError(t, err)
	assert.Equal(t, 0, h.Load)

	assert.ErrorIs(t, repo.AdjustLoad(ctx, "missing", 1), repository.ErrNotFound)
}

func TestDocumentationUpsertKeepsIdentity(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	repo := store.Stores().Documentation

	doc := &domain.Documentation{AssignmentID: "a1", CaseID: "c1", Problem: "p", Solution: "s", CreatedAt: t0, UpdatedAt: t0}
	require.NoError(t, repo.Save(ctx, doc))
	firstID := doc.ID

	update := &domain.Documentation{AssignmentID: "a1", CaseID: "c1", Problem: "p2", Solution: "s2", CreatedAt: t0.Add(time.Hour), UpdatedAt: t0.Add(time.Hour)}
	require.NoError(t, repo.Save(ctx, update))

	got, err := repo.GetForAssignment(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, firstID, got.ID)
	assert.Equal(t, t0, got.CreatedAt)
	assert.Equal(t, "p2", got.Problem)

	none, err := repo.GetForAssignment(ctx, "a2")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestListResolvedFiltersWindow(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	repo := store.Stores().Cases

	mk := func(category domain.CaseCategory, closedAt *time.Time) {
		c := &domain.Case{Category: category, State: domain.CaseStateOpen, CreatedAt: t0, UpdatedAt: t0}
		if closedAt != nil {
			c.State = domain.CaseStateClosed
			c.ClosedAt = closedAt
		}
		require.NoError(t, repo.Create(ctx, c))
	}
	inWindow := t0.Add(2 * time.Hour)
	late := t0.Add(48 * time.Hour)
	mk(domain.CategoryInquiry, &inWindow)
	mk(domain.CategoryInquiry, &late)
	mk(domain.CategoryInquiry, nil)
	mk(domain.CategoryRequest, &inWindow)

	got, err := repo.ListResolved(ctx, domain.CategoryInquiry, t0, t0.Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, inWindow, *got[0].ClosedAt)
}

func TestNotificationResponse(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	repo := store.Stores().Notifications

	first := &domain.ExternalNotification{CaseID: "c1", DestinationArea: "it", SentAt: t0}
	second := &domain.ExternalNotification{CaseID: "c1", DestinationArea: "legal", SentAt: t0.Add(time.Hour)}
	require.NoError(t, repo.Save(ctx, first))
	require.NoError(t, repo.Save(ctx, second))

	latest, err := repo.LatestForCase(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "legal", latest.DestinationArea)

	require.NoError(t, repo.RecordResponse(ctx, latest.ID, "done", t0.Add(2*time.Hour)))
	latest, err = repo.LatestForCase(ctx, "c1")
	require.NoError(t, err)
	require.NotNil(t, latest.Response)
	assert.Equal(t, "done", *latest.Response)

	assert.ErrorIs(t, repo.RecordResponse(ctx, "nope", "x", t0), repository.ErrNotFound)
}

func TestConcurrentUnitsOfWorkSerialize(t *testing.T) {
	store := NewStore()
	store.PutHandler(domain.Handler{ID: "h1", PoolID: "bo", Active: true})
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.Do(ctx, func(ctx context.Context, s repository.Stores) error {
				return s.Handlers.AdjustLoad(ctx, "h1", 1)
			})
		}()
	}
	wg.Wait()

	h, err := store.Stores().Handlers.GetByID(ctx, "h1")
	require.NoError(t, err)
	assert.Equal(t, 50, h.Load)
}

func TestDoHonoursCancelledContext(t *testing.T) {
	store := NewStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := store.Do(ctx, func(context.Context, repository.Stores) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}
