package trip

import (
	"time"

	"github.com/google/uuid"
)

func NewFromCreateRequest(userID string, req CreateTripRequest) Trip {
	now := time.Now().UTC()

	status := req.Status

	if status == "" {
		status = StatusPlanned
	}

	budget := 0.0

	if req.Budget != nil {
		budget = *req.Budget
	}

	return Trip{
		ID:          uuid.NewString(),
		UserID:      userID,
		Title:       req.Title,
		Destination: req.Destination,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Description: req.Description,
		Budget:      budget,
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// ApplyUpdate merges the non-nil fields of req onto t and refreshes the
// update timestamp. Callers must Validate the merged result.
func (t *Trip) ApplyUpdate(req UpdateTripRequest) {
	if req.Title != nil {
		t.Title = *req.Title
	}

	if req.Destination != nil {
		t.Destination = *req.Destination
	}

	if req.StartDate != nil {
		t.StartDate = *req.StartDate
	}

	if req.EndDate != nil {
		t.EndDate = *req.EndDate
	}

	if req.Description != nil {
		t.Description = *req.Description
	}

	if req.Budget != nil {
		t.Budget = *req.Budget
	}

	if req.Status != nil {
		t.Status = *req.Status
	}

	t.UpdatedAt = time.Now().UTC()
}
