package activity

import (
	"errors"
	"time"

	"github.com/roamplan/tripplanner/internal/utils"
)

type Category string

const (
	CategorySightseeing   Category = "sightseeing"
	CategoryDining        Category = "dining"
	CategoryAdventure     Category = "adventure"
	CategoryShopping      Category = "shopping"
	CategoryRelaxation    Category = "relaxation"
	CategoryTransport     Category = "transport"
	CategoryAccommodation Category = "accommodation"
	CategoryOther         Category = "other"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityMustDo Priority = "must-do"
)

var (
	ErrNotFound       = errors.New("activity not found")
	ErrDateOutOfRange = errors.New("activity_date must be within the trip dates")
	ErrTimeOrder      = errors.New("end_time must be after start_time")
	ErrNegativeCost   = errors.New("cost must be non-negative")
)

type Activity struct {
	ID               string           `json:"id"`
	TripID           string           `json:"trip_id"`
	Title            string           `json:"title"`
	Description      string           `json:"description"`
	Location         string           `json:"location"`
	ActivityDate     utils.Date       `json:"activity_date"`
	StartTime        *utils.ClockTime `json:"start_time"`
	EndTime          *utils.ClockTime `json:"end_time"`
	Cost             float64          `json:"cost"`
	Category         Category         `json:"category"`
	BookingReference string           `json:"booking_reference"`
	BookingURL       string           `json:"booking_url"`
	Notes            string           `json:"notes"`
	IsBooked         bool             `json:"is_booked"`
	Priority         Priority         `json:"priority"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// Validate checks the invariants against the owning trip's date range.
func (a *Activity) Validate(tripStart, tripEnd utils.Date) error {
	if a.ActivityDate.Before(tripStart.Time) || a.ActivityDate.After(tripEnd.Time) {
		return ErrDateOutOfRange
	}

	if a.StartTime != nil && a.EndTime != nil && !a.EndTime.After(a.StartTime.Time) {
		return ErrTimeOrder
	}

	if a.Cost < 0 {
		return ErrNegativeCost
	}

	return nil
}

type CreateActivityRequest struct {
	Title            string           `json:"title" binding:"required,min=1,max=200"`
	Description      string           `json:"description" binding:"omitempty,max=2000"`
	Location         string           `json:"location" binding:"omitempty,max=200"`
	ActivityDate     utils.Date       `json:"activity_date" binding:"required"`
	StartTime        *utils.ClockTime `json:"start_time"`
	EndTime          *utils.ClockTime `json:"end_time"`
	Cost             *float64         `json:"cost"`
	Category         Category         `json:"category" binding:"omitempty,oneof=sightseeing dining adventure shopping relaxation transport accommodation other"`
	BookingReference string           `json:"booking_reference" binding:"omitempty,max=100"`
	BookingURL       string           `json:"booking_url" binding:"omitempty,max=500"`
	Notes            string           `json:"notes" binding:"omitempty,max=2000"`
	IsBooked         bool             `json:"is_booked"`
	Priority         Priority         `json:"priority" binding:"omitempty,oneof=low medium high must-do"`
}

type UpdateActivityRequest struct {
	Title            *string          `json:"title" binding:"omitempty,min=1,max=200"`
	Description      *string          `json:"description" binding:"omitempty,max=2000"`
	Location         *string          `json:"location" binding:"omitempty,max=200"`
	ActivityDate     *utils.Date      `json:"activity_date"`
	StartTime        *utils.ClockTime `json:"start_time"`
	EndTime          *utils.ClockTime `json:"end_time"`
	Cost             *float64         `json:"cost"`
	Category         *Category        `json:"category" binding:"omitempty,oneof=sightseeing dining adventure shopping relaxation transport accommodation other"`
	BookingReference *string          `json:"booking_reference" binding:"omitempty,max=100"`
	BookingURL       *string          `json:"booking_url" binding:"omitempty,max=500"`
	Notes            *string          `json:"notes" binding:"omitempty,max=2000"`
	IsBooked         *bool            `json:"is_booked"`
	Priority         *Priority        `json:"priority" binding:"omitempty,oneof=low medium high must-do"`
}

// ListFilter narrows an activity listing; nil fields are ignored.
type ListFilter struct {
	Date     *utils.Date
	Category *Category
	Priority *Priority
	IsBooked *bool
}
