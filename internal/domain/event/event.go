package event

import (
	"errors"
	"time"
)

const (
	EntryTipJar  = "gorra"
	EntryFree    = "gratuito"
	EntryBenefit = "beneficio"
	EntryPaid    = "arancelado"

	StatusActive    = "active"
	StatusCancelled = "cancelled"
	StatusPostponed = "postponed"
)

var ErrNotFound = errors.New("event not found")

type Event struct {
	ID          string    `json:"id"`
	ArtistID    string    `json:"artistId"`
	ArtistName  string    `json:"artistName,omitempty"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	EventDate   time.Time `json:"eventDate"`
	Venue       string    `json:"venue"`
	City        string    `json:"city"`
	EntryType   string    `json:"entryType,omitempty"`
	Price       *float64  `json:"price,omitempty"`
	TicketURL   *string   `json:"ticketUrl,omitempty"`
	FlyerURL    *string   `json:"flyerUrl,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// with pointers if optional, it will be nil
type BillboardFilter struct {
	City   *string
	Genre  *string
	Limit  int
	Offset int
}

type CreateEventRequest struct {
	Title       string    `json:"title" binding:"required,min=3,max=100"`
	Description string    `json:"description" binding:"omitempty,max=500"`
	EventDate   time.Time `json:"eventDate" binding:"required"`
	Venue       string    `json:"venue" binding:"required,min=3,max=100"`
	City        string    `json:"city" binding:"required,min=3,max=50"`
	EntryType   string    `json:"entryType" binding:"omitempty,oneof=gorra gratuito beneficio arancelado"`
	Price       *float64  `json:"price" binding:"omitempty,gte=0"`
	TicketURL   *string   `json:"ticketUrl" binding:"omitempty,url"`
	FlyerURL    *string   `json:"flyerUrl" binding:"omitempty,url"`
}

// a full update payload, might switch to a patch which optionally provides means for partial updates.
type UpdateEventRequest struct {
	Title       string    `json:"title" binding:"required,min=3,max=100"`
	Description string    `json:"description" binding:"omitempty,max=500"`
	EventDate   time.Time `json:"eventDate" binding:"required"`
	Venue       string    `json:"venue" binding:"required,min=3,max=100"`
	City        string    `json:"city" binding:"required,min=3,max=50"`
	EntryType   string    `json:"entryType" binding:"omitempty,oneof=gorra gratuito beneficio arancelado"`
	Price       *float64  `json:"price" binding:"omitempty,gte=0"`
	TicketURL   *string   `json:"ticketUrl" binding:"omitempty,url"`
	FlyerURL    *string   `json:"flyerUrl" binding:"omitempty,url"`
	Status      string    `json:"status" binding:"omitempty,oneof=active cancelled postponed"`
}
