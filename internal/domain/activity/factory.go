package activity

import (
	"time"

	"github.com/google/uuid"
)

func NewFromCreateRequest(tripID string, req CreateActivityRequest) Activity {
	now := time.Now().UTC()

	priority := req.Priority

	if priority == "" {
		priority = PriorityMedium
	}

	cost := 0.0

	if req.Cost != nil {
		cost = *req.Cost
	}

	return Activity{
		ID:               uuid.NewString(),
		TripID:           tripID,
		Title:            req.Title,
		Description:      req.Description,
		Location:         req.Location,
		ActivityDate:     req.ActivityDate,
		StartTime:        req.StartTime,
		EndTime:          req.EndTime,
		Cost:             cost,
		Category:         req.Category,
		BookingReference: req.BookingReference,
		BookingURL:       req.BookingURL,
		Notes:            req.Notes,
		IsBooked:         req.IsBooked,
		Priority:         priority,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// ApplyUpdate merges the non-nil fields of req onto a and refreshes the
// update timestamp. Callers must Validate the merged result.
func (a *Activity) ApplyUpdate(req UpdateActivityRequest) {
	if req.Title != nil {
		a.Title = *req.Title
	}

	if req.Description != nil {
		a.Description = *req.Description
	}

	if req.Location != nil {
		a.Location = *req.Location
	}

	if req.ActivityDate != nil {
		a.ActivityDate = *req.ActivityDate
	}

	if req.StartTime != nil {
		a.StartTime = req.StartTime
	}

	if req.EndTime != nil {
		a.EndTime = req.EndTime
	}

	if req.Cost != nil {
		a.Cost = *req.Cost
	}

	if req.Category != nil {
		a.Category = *req.Category
	}

	if req.BookingReference != nil {
		a.BookingReference = *req.BookingReference
	}

	if req.BookingURL != nil {
		a.BookingURL = *req.BookingURL
	}

	if req.Notes != nil {
		a.Notes = *req.Notes
	}

	if req.IsBooked != nil {
		a.IsBooked = *req.IsBooked
	}

	if req.Priority != nil {
		a.Priority = *req.Priority
	}

	a.UpdatedAt = time.Now().UTC()
}
