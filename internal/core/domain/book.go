package domain

import (
	"fmt"
	"time"
)

// BookCondition is the physical state of the library's copies.
type BookCondition string

const (
	ConditionExcellent BookCondition = "excellent"
	ConditionGood      BookCondition = "good"
	ConditionFair      BookCondition = "fair"
	ConditionPoor      BookCondition = "poor"
)

// Book is a catalogue title together with its copy counts.
// Version is bumped by the store on every successful save.
type Book struct {
	ID              string        `json:"id" bson:"_id" yaml:"id"`
	Title           string        `json:"title" bson:"title" yaml:"title"`
	Author          string        `json:"author" bson:"author" yaml:"author"`
	ISBN            string        `json:"isbn" bson:"isbn" yaml:"isbn"`
	Publisher       string        `json:"publisher" bson:"publisher" yaml:"publisher"`
	PublicationYear int           `json:"publication_year" bson:"publication_year" yaml:"publication_year"`
	Genre           string        `json:"genre" bson:"genre" yaml:"genre"`
	Description     string        `json:"description" bson:"description" yaml:"description"`
	TotalCopies     int           `json:"total_copies" bson:"total_copies" yaml:"total_copies"`
	AvailableCopies int           `json:"available_copies" bson:"available_copies" yaml:"available_copies"`
	ShelfLocation   string        `json:"shelf_location" bson:"shelf_location" yaml:"shelf_location"`
	Condition       BookCondition `json:"condition" bson:"condition" yaml:"condition"`
	Tags            []string      `json:"tags" bson:"tags" yaml:"tags"`
	AverageRating   float64       `json:"average_rating" bson:"average_rating" yaml:"average_rating"`
	CreatedAt       time.Time     `json:"created_at" bson:"created_at" yaml:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at" bson:"updated_at" yaml:"updated_at"`
	Version         int64         `json:"-" bson:"version" yaml:"-"`
}

// Validate checks the copy-count invariant 0 <= available <= total.
func (b *Book) Validate() error {
	if b.AvailableCopies < 0 || b.TotalCopies < 0 || b.AvailableCopies > b.TotalCopies {
		return fmt.Errorf("book %s: available copies %d outside [0, %d]", b.ID, b.AvailableCopies, b.TotalCopies)
	}
	return nil
}

// CheckedOut is the number of copies currently issued.
func (b *Book) CheckedOut() int {
	return b.TotalCopies - b.AvailableCopies
}
