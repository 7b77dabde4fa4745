package domain

import "time"

// Entry is a customer record. Code and Phone are both unique.
type Entry struct {
	ID        uint      `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Place     string    `json:"place"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type EntryFilter struct {
	Query string
	Page  Page
}
