package models

import "time"

// Event is a row of the school calendar.
type Event struct {
	ID              int64     `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	Date            time.Time `json:"date"`
	Category        string    `json:"category"` // holiday, celebration, custom
	Tags            []string  `json:"tags"`
	IsPublicHoliday bool      `json:"is_public_holiday"`
	CreatedBy       string    `json:"created_by"`
	CreatedAt       time.Time `json:"created_at"`
}

// HolidayEvent is the read-only view of a public holiday handed to the
// answering pipeline.
type HolidayEvent struct {
	Title           string    `json:"title"`
	Date            time.Time `json:"date"`
	Description     string    `json:"description"`
	IsPublicHoliday bool      `json:"is_public_holiday"`
	Category        string    `json:"category"`
	Tags            []string  `json:"tags"`
}

// DisplayDate renders the date the way answers show it, e.g. "December 25, 2025".
func (h HolidayEvent) DisplayDate() string {
	return h.Date.Format("January 02, 2006")
}

// Holiday converts a calendar event to its holiday view.
func (e Event) Holiday() HolidayEvent {
	return HolidayEvent{
		Title:           e.Title,
		Date:            e.Date,
		Description:     e.Description,
		IsPublicHoliday: e.IsPublicHoliday,
		Category:        e.Category,
		Tags:            e.Tags,
	}
}
