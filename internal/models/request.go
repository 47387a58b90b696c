package models

import "time"

// RequestStatus defines lifecycle states for resource requests.
type RequestStatus string

const (
	// RequestStatusPending indicates the request is awaiting review.
	RequestStatusPending RequestStatus = "pending"
	// RequestStatusApproved indicates the request was granted and stock debited.
	RequestStatusApproved RequestStatus = "approved"
	// RequestStatusRejected indicates the request was denied.
	RequestStatusRejected RequestStatus = "rejected"
)

// Valid reports whether s is a known status.
func (s RequestStatus) Valid() bool {
	switch s {
	case RequestStatusPending, RequestStatusApproved, RequestStatusRejected:
		return true
	}
	return false
}

// Request is a user-submitted ask for a quantity of a resource.
type Request struct {
	ID                uint          `gorm:"primaryKey" json:"id"`
	UserID            uint          `gorm:"not null;index" json:"user_id"`
	User              *User         `gorm:"foreignKey:UserID" json:"user,omitempty"`
	ResourceID        uint          `gorm:"not null;index" json:"resource_id"`
	Resource          *Resource     `gorm:"foreignKey:ResourceID" json:"resource,omitempty"`
	QuantityRequested int           `gorm:"not null" json:"quantity_requested"`
	Purpose           string        `gorm:"type:text;not null" json:"purpose"`
	Status            RequestStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	RejectionReason   *string       `gorm:"type:text" json:"rejection_reason"`
	ReviewedByUserID  *uint         `json:"reviewed_by_user_id"`
	Reviewer          *User         `gorm:"foreignKey:ReviewedByUserID" json:"reviewer,omitempty"`
	ReviewedAt        *time.Time    `json:"reviewed_at"`
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at"`
}

// IsPending reports whether the request still awaits review.
func (r *Request) IsPending() bool {
	return r.Status == RequestStatusPending
}

// RequestStats holds dashboard counters.
type RequestStats struct {
	TotalRequests       int64 `json:"total_requests"`
	PendingRequests     int64 `json:"pending_requests"`
	ApprovedRequests    int64 `json:"approved_requests"`
	RejectedRequests    int64 `json:"rejected_requests"`
	TotalResources      int64 `json:"total_resources"`
	OutOfStockResources int64 `json:"out_of_stock_resources"`
}
