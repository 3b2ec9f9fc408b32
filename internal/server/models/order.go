package models

import "time"

// Order statuses.
const (
	OrderStatusPending = "pending"
)

// Order is a purchase request for a car placed by a visitor.
type Order struct {
	ID        string
	FromID    string
	Name      string
	Email     string
	AutoName  string
	Number    string
	Comment   string
	Status    string
	CreatedAt time.Time
}
