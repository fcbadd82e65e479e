package domain

import "time"

// RequestStatus is the lifecycle state of a company request.
type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "pending"
	RequestStatusAccepted RequestStatus = "accepted"
	RequestStatusRejected RequestStatus = "rejected"
	RequestStatusOnGoing  RequestStatus = "on_going"
)

// Request is a work request filed by a company. Read-only from the company-auth surface.
type Request struct {
	ID          int64         `json:"id"`
	CompanyID   int64         `json:"-"`
	Priority    string        `json:"priority"`
	Description string        `json:"description"`
	Long        *float64      `json:"long"`
	Lat         *float64      `json:"lat"`
	Status      RequestStatus `json:"status"`
	CreatedAt   time.Time     `json:"-"`
}
