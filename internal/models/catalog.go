package models

import (
	"errors"
	"regexp"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var colorPattern = regexp.MustCompile(`^#[0-9A-F]{6}$`)

// ErrInvalidColor rejects tag colors that are not '#' plus six uppercase
// hex digits.
var ErrInvalidColor = errors.New("color must be # followed by six uppercase hex digits")

// ValidColor reports whether value is a '#' followed by six uppercase hex
// digits.
func ValidColor(value string) bool {
	return colorPattern.MatchString(value)
}

// Tag is immutable reference data managed by the bulk loader.
type Tag struct {
	ID    uuid.UUID `gorm:"type:varchar(36);primarykey" json:"id"`
	Name  string    `gorm:"size:25;uniqueIndex;not null" json:"name"`
	Color string    `gorm:"size:7;not null" json:"color"`
	Slug  string    `gorm:"size:50;uniqueIndex;not null" json:"slug"`
}

func (t *Tag) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if !ValidColor(t.Color) {
		return ErrInvalidColor
	}
	return nil
}

// Ingredient is immutable reference data. Name alone is not unique; the
// loader deduplicates on (name, measurement_unit).
type Ingredient struct {
	ID              uuid.UUID `gorm:"type:varchar(36);primarykey" json:"id"`
	Name            string    `gorm:"size:200;not null;index" json:"name"`
	MeasurementUnit string    `gorm:"size:30;not null" json:"measurement_unit"`
}

func (i *Ingredient) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
