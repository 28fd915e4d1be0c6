package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Item is a single lost or found report.
type Item struct {
	ID          string    `json:"id"`
	Kind        string    `json:"kind"`
	Name        string    `json:"name"`
	Description string    `json:"desc"`
	Date        string    `json:"date"`
	Location    string    `json:"location"`
	HasPhoto    bool      `json:"has_photo,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Item kinds. Each kind is its own collection with its own id namespace.
const (
	KindLost  = "lost"
	KindFound = "found"
)

// DefaultDescription is stored when a report is submitted without a description.
const DefaultDescription = "no description"

// DateLayout is the calendar date format used for report dates.
const DateLayout = "2006-01-02"

// ErrInvalidItem is returned when a report is missing required fields.
var ErrInvalidItem = errors.New("invalid item")

// ValidKind reports whether kind names one of the two collections.
func ValidKind(kind string) bool {
	return kind == KindLost || kind == KindFound
}

// NewItemInput holds the fields a reporter submits.
type NewItemInput struct {
	Kind        string `json:"kind"`
	Name        string `json:"name"`
	Description string `json:"desc"`
	Date        string `json:"date"`
	Location    string `json:"location"`
}

// Normalize trims all fields and applies the description default.
func (in *NewItemInput) Normalize() {
	in.Kind = strings.TrimSpace(in.Kind)
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	in.Date = strings.TrimSpace(in.Date)
	in.Location = strings.TrimSpace(in.Location)
	if in.Description == "" {
		in.Description = DefaultDescription
	}
}

// Validate normalizes the input and checks that type, name, date and
// location are present.
func (in *NewItemInput) Validate() error {
	in.Normalize()

	if !ValidKind(in.Kind) {
		return fmt.Errorf("%w: type must be %q or %q", ErrInvalidItem, KindLost, KindFound)
	}
	if in.Name == "" {
		return fmt.Errorf("%w: name required", ErrInvalidItem)
	}
	if in.Location == "" {
		return fmt.Errorf("%w: location required", ErrInvalidItem)
	}
	if in.Date == "" {
		return fmt.Errorf("%w: date required", ErrInvalidItem)
	}
	if _, err := time.Parse(DateLayout, in.Date); err != nil {
		return fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalidItem)
	}
	return nil
}
