package domain

import "time"

// DefaultFAQCategory is used when an entry is saved without a category.
const DefaultFAQCategory = "General"

// FAQ is a knowledge-base entry. Inactive entries are visible to staff only.
type FAQ struct {
	ID        int64
	Question  string
	Answer    string
	Category  string
	IsActive  bool
	CreatedAt time.Time
}
