package calendar

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/campoverde/backoffice/internal/shared"
)

type memoryEventRepo struct {
	events map[int64]*Event
	nextID int64
}

func newMemoryEventRepo() *memoryEventRepo {
	return &memoryEventRepo{events: make(map[int64]*Event)}
}

func (r *memoryEventRepo) Insert(ctx context.Context, e *Event) (int64, error) {
	r.nextID++
	copied := *e
	copied.ID = r.nextID
	copied.UserIDs = append([]int64(nil), e.UserIDs...)
	r.events[copied.ID] = &copied
	return copied.ID, nil
}

func (r *memoryEventRepo) Get(ctx context.Context, id int64) (*Event, error) {
	e, ok := r.events[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *e
	copied.UserIDs = append([]int64(nil), e.UserIDs...)
	return &copied, nil
}

func (r *memoryEventRepo) ListAll(ctx context.Context, from, to *time.Time) ([]Event, error) {
	var out []Event
	for _, e := range r.events {
		out = append(out, *e)
	}
	return out, nil
}

func (r *memoryEventRepo) ListForUser(ctx context.Context, userID int64, from, to *time.Time) ([]Event, error) {
	var out []Event
	for _, e := range r.events {
		if e.VisibleTo(userID) {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (r *memoryEventRepo) Update(ctx context.Context, e *Event) error {
	if _, ok := r.events[e.ID]; !ok {
		return shared.ErrNotFound
	}
	copied := *e
	copied.UserIDs = append([]int64(nil), e.UserIDs...)
	r.events[e.ID] = &copied
	return nil
}

func (r *memoryEventRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := r.events[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.events, id)
	return nil
}

var (
	adminID    = shared.Identity{UserID: 1, Role: shared.RoleAdmin}
	creatorID  = shared.Identity{UserID: 2, Role: shared.RoleUser}
	assigneeID = shared.Identity{UserID: 3, Role: shared.RoleUser}
	strangerID = shared.Identity{UserID: 4, Role: shared.RoleUser}
)

func seedEvent(t *testing.T, svc *Service) *Event {
	t.Helper()
	event, err := svc.Create(context.Background(), creatorID, CreateEventRequest{
		Title:   "Harvest delivery",
		Start:   time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
		End:     time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC),
		UserIDs: []int64{assigneeID.UserID},
	})
	require.NoError(t, err)
	return event
}

func TestEventVisibility(t *testing.T) {
	repo := newMemoryEventRepo()
	svc := NewService(repo)
	event := seedEvent(t, svc)

	for _, identity := range []shared.Identity{adminID, creatorID, assigneeID} {
		got, err := svc.Get(context.Background(), identity, event.ID)
		require.NoError(t, err)
		require.Equal(t, event.ID, got.ID)
	}

	// Unrelated users cannot even learn the event exists.
	_, err := svc.Get(context.Background(), strangerID, event.ID)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestEventListScoping(t *testing.T) {
	repo := newMemoryEventRepo()
	svc := NewService(repo)
	seedEvent(t, svc)

	all, err := svc.List(context.Background(), adminID, nil, nil)
	require.NoError(t, err)
	require.Len(t, all, 1)

	mine, err := svc.List(context.Background(), assigneeID, nil, nil)
	require.NoError(t, err)
	require.Len(t, mine, 1)

	none, err := svc.List(context.Background(), strangerID, nil, nil)
	require.NoError(t, err)
	require.Empty(t, none)
}

func TestEventUpdatePermissions(t *testing.T) {
	repo := newMemoryEventRepo()
	svc := NewService(repo)
	event := seedEvent(t, svc)

	title := "Rescheduled"
	for _, identity := range []shared.Identity{adminID, creatorID, assigneeID} {
		_, err := svc.Update(context.Background(), identity, event.ID, UpdateEventRequest{Title: &title})
		require.NoError(t, err)
	}

	_, err := svc.Update(context.Background(), strangerID, event.ID, UpdateEventRequest{Title: &title})
	require.ErrorIs(t, err, shared.ErrPermissionDenied)
}

func TestEventDeletePermissions(t *testing.T) {
	repo := newMemoryEventRepo()
	svc := NewService(repo)
	event := seedEvent(t, svc)

	err := svc.Delete(context.Background(), strangerID, event.ID)
	require.ErrorIs(t, err, shared.ErrPermissionDenied)

	require.NoError(t, svc.Delete(context.Background(), creatorID, event.ID))

	_, err = svc.Get(context.Background(), creatorID, event.ID)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestEventUpdateReplacesAssignees(t *testing.T) {
	repo := newMemoryEventRepo()
	svc := NewService(repo)
	event := seedEvent(t, svc)

	updated, err := svc.Update(context.Background(), creatorID, event.ID, UpdateEventRequest{
		UserIDs: []int64{strangerID.UserID},
	})
	require.NoError(t, err)
	require.Equal(t, []int64{strangerID.UserID}, updated.UserIDs)

	// The replaced assignee loses access; the new one gains it.
	_, err = svc.Get(context.Background(), assigneeID, event.ID)
	require.ErrorIs(t, err, shared.ErrNotFound)
	_, err = svc.Get(context.Background(), strangerID, event.ID)
	require.NoError(t, err)
}
