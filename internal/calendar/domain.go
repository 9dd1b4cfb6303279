package calendar

import "time"

// Event is a scheduled entry on the shared team calendar. Events can be
// assigned to other users; assignees see and may edit the event.
type Event struct {
	ID          int64     `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Description *string   `json:"description,omitempty" db:"description"`
	Start       time.Time `json:"start" db:"start_at"`
	End         time.Time `json:"end" db:"end_at"`
	AllDay      bool      `json:"all_day" db:"all_day"`
	TextColor   *string   `json:"text_color,omitempty" db:"text_color"`
	CreatedBy   int64     `json:"created_by" db:"created_by"`
	UserIDs     []int64   `json:"user_ids"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// VisibleTo reports whether the given user may read or modify the event.
func (e *Event) VisibleTo(userID int64) bool {
	if e.CreatedBy == userID {
		return true
	}
	for _, id := range e.UserIDs {
		if id == userID {
			return true
		}
	}
	return false
}

type CreateEventRequest struct {
	Title       string    `json:"title" validate:"required,max=200"`
	Description *string   `json:"description,omitempty"`
	Start       time.Time `json:"start" validate:"required"`
	End         time.Time `json:"end" validate:"required"`
	AllDay      bool      `json:"all_day"`
	TextColor   *string   `json:"text_color,omitempty" validate:"omitempty,max=20"`
	UserIDs     []int64   `json:"user_ids,omitempty"`
}

type UpdateEventRequest struct {
	Title       *string    `json:"title,omitempty" validate:"omitempty,max=200"`
	Description *string    `json:"description,omitempty"`
	Start       *time.Time `json:"start,omitempty"`
	End         *time.Time `json:"end,omitempty"`
	AllDay      *bool      `json:"all_day,omitempty"`
	TextColor   *string    `json:"text_color,omitempty" validate:"omitempty,max=20"`
	UserIDs     []int64    `json:"user_ids,omitempty"`
}
