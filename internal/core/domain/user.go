package domain

import "time"

const (
	RoleAdmin     = "admin"
	RoleLibrarian = "librarian"
	RoleStudent   = "student"
	RoleFaculty   = "faculty"
)

// User is a library patron or staff member.
type User struct {
	ID            string    `json:"id" bson:"_id" yaml:"id"`
	Email         string    `json:"email" bson:"email" yaml:"email"`
	Name          string    `json:"name" bson:"name" yaml:"name"`
	Role          string    `json:"role" bson:"role" yaml:"role"`
	Phone         string    `json:"phone,omitempty" bson:"phone,omitempty" yaml:"phone"`
	LibraryCardID string    `json:"library_card_id" bson:"library_card_id" yaml:"library_card_id"`
	Active        bool      `json:"is_active" bson:"is_active" yaml:"is_active"`
	CreatedAt     time.Time `json:"created_at" bson:"created_at" yaml:"created_at"`
}

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleLibrarian, RoleStudent, RoleFaculty:
		return true
	}
	return false
}
