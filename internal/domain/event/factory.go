package event

import (
	"time"

	"github.com/google/uuid"
)

// A factory to build an Event from the incoming DTO. The sanitizer has
// already run on free-text fields by the time this is called.

func NewFromCreateRequest(artistID string, req CreateEventRequest) Event {
	now := time.Now().UTC()

	return Event{
		ID:          uuid.NewString(),
		ArtistID:    artistID,
		Title:       req.Title,
		Description: req.Description,
		EventDate:   req.EventDate,
		Venue:       req.Venue,
		City:        req.City,
		EntryType:   req.EntryType,
		Price:       req.Price,
		TicketURL:   req.TicketURL,
		FlyerURL:    req.FlyerURL,
		Status:      StatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
