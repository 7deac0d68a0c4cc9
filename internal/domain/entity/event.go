package entity

import (
	"time"
)

type Category string

const (
	CategoryConference Category = "conference"
	CategoryWorkshop   Category = "workshop"
	CategorySeminar    Category = "seminar"
	CategoryMeetup     Category = "meetup"
	CategoryParty      Category = "party"
	CategorySports     Category = "sports"
	CategoryOther      Category = "other"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryConference, CategoryWorkshop, CategorySeminar, CategoryMeetup,
		CategoryParty, CategorySports, CategoryOther:
		return true
	}
	return false
}

// Event is a scheduled gathering with an optional participant cap.
// CurrentParticipants always equals the number of registration rows.
type Event struct {
	ID                  int64      `json:"id"`
	Title               string     `json:"title"`
	Description         *string    `json:"description"`
	Category            Category   `json:"category"`
	Location            *string    `json:"location"`
	StartDate           time.Time  `json:"start_date"`
	EndDate             *time.Time `json:"end_date"`
	OrganizerID         UserID     `json:"organizer_id"`
	MaxParticipants     *int       `json:"max_participants"`
	CurrentParticipants int        `json:"current_participants"`
	IsPublished         bool       `json:"is_published"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           *time.Time `json:"updated_at"`
}

// Full reports whether no seat is left.
func (e *Event) Full() bool {
	return e.MaxParticipants != nil && e.CurrentParticipants >= *e.MaxParticipants
}

// EventPatch is a partial update. Title, Category, StartDate and
// IsPublished must not be set to null.
type EventPatch struct {
	Title           Optional[string]    `json:"title"`
	Description     Optional[string]    `json:"description"`
	Category        Optional[Category]  `json:"category"`
	Location        Optional[string]    `json:"location"`
	StartDate       Optional[time.Time] `json:"start_date"`
	EndDate         Optional[time.Time] `json:"end_date"`
	MaxParticipants Optional[int]       `json:"max_participants"`
	IsPublished     Optional[bool]      `json:"is_published"`
}

// Apply copies every present member of p onto e.
func (p EventPatch) Apply(e *Event) {
	if p.Title.Set {
		e.Title = p.Title.Value
	}
	if p.Description.Set {
		e.Description = p.Description.Ptr()
	}
	if p.Category.Set {
		e.Category = p.Category.Value
	}
	if p.Location.Set {
		e.Location = p.Location.Ptr()
	}
	if p.StartDate.Set {
		e.StartDate = p.StartDate.Value
	}
	if p.EndDate.Set {
		e.EndDate = p.EndDate.Ptr()
	}
	if p.MaxParticipants.Set {
		e.MaxParticipants = p.MaxParticipants.Ptr()
	}
	if p.IsPublished.Set {
		e.IsPublished = p.IsPublished.Value
	}
}

// EventFilter narrows the public event listing. Zero values mean no filter.
type EventFilter struct {
	Category Category
	Location string // case-insensitive substring
	DateFrom *time.Time
	DateTo   *time.Time
}
