package calendar

import (
	"context"
	"time"

	"github.com/campoverde/backoffice/internal/shared"
)

// RepositoryPort is the persistence surface the service depends on.
type RepositoryPort interface {
	Insert(ctx context.Context, e *Event) (int64, error)
	Get(ctx context.Context, id int64) (*Event, error)
	ListAll(ctx context.Context, from, to *time.Time) ([]Event, error)
	ListForUser(ctx context.Context, userID int64, from, to *time.Time) ([]Event, error)
	Update(ctx context.Context, e *Event) error
	Delete(ctx context.Context, id int64) error
}

type Service struct {
	repo RepositoryPort
}

func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, identity shared.Identity, req CreateEventRequest) (*Event, error) {
	event := &Event{
		Title:       req.Title,
		Description: req.Description,
		Start:       req.Start,
		End:         req.End,
		AllDay:      req.AllDay,
		TextColor:   req.TextColor,
		CreatedBy:   identity.UserID,
		UserIDs:     req.UserIDs,
	}
	id, err := s.repo.Insert(ctx, event)
	if err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

// Get enforces visibility: admins see everything, other users only events
// they created or are assigned to.
func (s *Service) Get(ctx context.Context, identity shared.Identity, id int64) (*Event, error) {
	event, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !identity.IsAdmin() && !event.VisibleTo(identity.UserID) {
		return nil, shared.ErrNotFound
	}
	return event, nil
}

func (s *Service) List(ctx context.Context, identity shared.Identity, from, to *time.Time) ([]Event, error) {
	if identity.IsAdmin() {
		return s.repo.ListAll(ctx, from, to)
	}
	return s.repo.ListForUser(ctx, identity.UserID, from, to)
}

func (s *Service) Update(ctx context.Context, identity shared.Identity, id int64, req UpdateEventRequest) (*Event, error) {
	event, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canModify(identity, event) {
		return nil, shared.ErrPermissionDenied
	}
	if req.Title != nil {
		event.Title = *req.Title
	}
	if req.Description != nil {
		event.Description = req.Description
	}
	if req.Start != nil {
		event.Start = *req.Start
	}
	if req.End != nil {
		event.End = *req.End
	}
	if req.AllDay != nil {
		event.AllDay = *req.AllDay
	}
	if req.TextColor != nil {
		event.TextColor = req.TextColor
	}
	if req.UserIDs != nil {
		event.UserIDs = req.UserIDs
	}
	if err := s.repo.Update(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

func (s *Service) Delete(ctx context.Context, identity shared.Identity, id int64) error {
	event, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if !canModify(identity, event) {
		return shared.ErrPermissionDenied
	}
	return s.repo.Delete(ctx, id)
}

// canModify allows admins, the creator and assignees.
func canModify(identity shared.Identity, event *Event) bool {
	return identity.IsAdmin() || event.VisibleTo(identity.UserID)
}
