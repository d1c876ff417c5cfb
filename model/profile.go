// model/profile.go
package model

import "time"

// Role is the operational role assigned to a user profile.
type Role string

const (
	RolePatient        Role = "patient"
	RoleCorporateAdmin Role = "corporateAdmin"
	RoleAdmin          Role = "admin"
	RoleDoctor         Role = "doctor"
	RoleFranchiseAdmin Role = "franchiseAdmin"
	RoleLabExecutive   Role = "labExecutive"
	RolePhlebotomist   Role = "phlebotomist"

	// RoleUnresolved marks a session whose profile has not been fetched yet
	// or could not be fetched.
	RoleUnresolved Role = "unresolved"
)

type Profile struct {
	Principal     string    `json:"principal"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone"`
	Role          Role      `json:"role"`
	Active        bool      `json:"active"`
	SharedProfile bool      `json:"shared_profile"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
