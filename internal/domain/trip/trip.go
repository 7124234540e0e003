package trip

import (
	"errors"
	"time"

	"github.com/roamplan/tripplanner/internal/utils"
)

type Status string

const (
	StatusPlanned   Status = "planned"
	StatusOngoing   Status = "ongoing"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPlanned, StatusOngoing, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

var (
	ErrNotFound       = errors.New("trip not found")
	ErrDateOrder      = errors.New("end_date must not be before start_date")
	ErrNegativeBudget = errors.New("budget must be non-negative")
	ErrBadStatus      = errors.New("status must be one of planned, ongoing, completed, cancelled")
)

type Trip struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	Title       string     `json:"title"`
	Destination string     `json:"destination"`
	StartDate   utils.Date `json:"start_date"`
	EndDate     utils.Date `json:"end_date"`
	Description string     `json:"description"`
	Budget      float64    `json:"budget"`
	Status      Status     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Validate enforces the invariants that hold for every stored trip,
// whether it arrived via create or via a merged update.
func (t *Trip) Validate() error {
	if t.EndDate.Before(t.StartDate.Time) {
		return ErrDateOrder
	}

	if t.Budget < 0 {
		return ErrNegativeBudget
	}

	if !t.Status.Valid() {
		return ErrBadStatus
	}

	return nil
}

type CreateTripRequest struct {
	Title       string     `json:"title" binding:"required,min=1,max=200"`
	Destination string     `json:"destination" binding:"required,min=1,max=200"`
	StartDate   utils.Date `json:"start_date" binding:"required"`
	EndDate     utils.Date `json:"end_date" binding:"required"`
	Description string     `json:"description" binding:"omitempty,max=2000"`
	Budget      *float64   `json:"budget"`
	Status      Status     `json:"status" binding:"omitempty,oneof=planned ongoing completed cancelled"`
}

// pointer fields: nil means "leave as is"
type UpdateTripRequest struct {
	Title       *string     `json:"title" binding:"omitempty,min=1,max=200"`
	Destination *string     `json:"destination" binding:"omitempty,min=1,max=200"`
	StartDate   *utils.Date `json:"start_date"`
	EndDate     *utils.Date `json:"end_date"`
	Description *string     `json:"description" binding:"omitempty,max=2000"`
	Budget      *float64    `json:"budget"`
	Status      *Status     `json:"status" binding:"omitempty,oneof=planned ongoing completed cancelled"`
}
