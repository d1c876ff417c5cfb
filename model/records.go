// model/records.go
package model

import "time"

type Service struct {
	ID          string `json:"id"`
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Subcategory string `json:"subcategory,omitempty"`
	Price       Money  `json:"price"`
	Description string `json:"description,omitempty"`
}

type Customer struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Phone            string    `json:"phone"`
	Email            string    `json:"email"`
	ReferralCode     string    `json:"referral_code,omitempty"`
	WalletBalance    Money     `json:"wallet_balance"`
	PrimaryPatientID string    `json:"primary_patient_id,omitempty"`
	Status           string    `json:"status"`
	CreatedAt        time.Time `json:"created_at"`
}

type Patient struct {
	ID                string   `json:"id"`
	CustomerID        string   `json:"customer_id"`
	Name              string   `json:"name"`
	DOB               string   `json:"dob"`
	Gender            string   `json:"gender"`
	Relationship      string   `json:"relationship"`
	BloodGroup        string   `json:"blood_group,omitempty"`
	ChronicConditions []string `json:"chronic_conditions,omitempty"`
	EmergencyContact  string   `json:"emergency_contact,omitempty"`
	IsPrimary         bool     `json:"is_primary"`
}

type Vital struct {
	ID         string    `json:"id"`
	PatientID  string    `json:"patient_id"`
	Type       string    `json:"type"` // e.g. "bloodPressure", "glucose"
	Reading    string    `json:"reading"`
	Unit       string    `json:"unit"`
	Status     string    `json:"status"` // "normal", "elevated", "critical"
	RecordedAt time.Time `json:"recorded_at"`
}

type Booking struct {
	ID          string     `json:"id"`
	Reference   string     `json:"reference"`
	CustomerID  string     `json:"customer_id,omitempty"`
	PatientID   string     `json:"patient_id,omitempty"`
	Items       []CartItem `json:"items"`
	TotalPrice  Money      `json:"total_price"`
	Address     string     `json:"address"`
	Status      string     `json:"status"`
	ScheduledAt time.Time  `json:"scheduled_at"`
}

// BookingRequest is the payload of the booking mutation issued at checkout.
type BookingRequest struct {
	Reference    string     `json:"reference"`
	CustomerName string     `json:"customer_name"`
	Phone        string     `json:"phone"`
	Address      string     `json:"address"`
	PatientID    string     `json:"patient_id,omitempty"`
	Items        []CartItem `json:"items"`
	TotalPrice   Money      `json:"total_price"`
}

type SampleCollection struct {
	ID          string    `json:"id"`
	BookingID   string    `json:"booking_id"`
	PatientName string    `json:"patient_name"`
	Address     string    `json:"address"`
	Status      string    `json:"status"` // "assigned", "collected", "delivered"
	ScheduledAt time.Time `json:"scheduled_at"`
}

type HealthPackage struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Price     Money    `json:"price"`
	ListPrice Money    `json:"list_price"`
	Active    bool     `json:"active"`
	TestIDs   []string `json:"test_ids,omitempty"`
}
