package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Request is the generic envelope. Exactly one specialization, selected by
// Type, is attached. Rows are never deleted; cancellation is a status.
type Request struct {
	BaseModel
	Title           string        `gorm:"not null"`
	Description     string
	Type            RequestType   `gorm:"type:varchar(32);not null;index"`
	Status          RequestStatus `gorm:"type:varchar(32);not null;default:'PENDING';index"`
	RequesterID     string        `gorm:"type:uuid;not null;index"`
	ReviewerID      *string       `gorm:"type:uuid"`
	DepartmentID    string        `gorm:"type:uuid;not null;index"`
	RejectionReason string
	CompletedAt     *time.Time

	Requester  *User       `gorm:"foreignKey:RequesterID"`
	Department *Department `gorm:"foreignKey:DepartmentID"`

	JobRequest                *JobRequest                `gorm:"foreignKey:RequestID"`
	VenueRequest              *VenueRequest              `gorm:"foreignKey:RequestID"`
	TransportRequest          *TransportRequest          `gorm:"foreignKey:RequestID"`
	ReturnableResourceRequest *ReturnableResourceRequest `gorm:"foreignKey:RequestID"`
	SupplyRequest             *SupplyRequest             `gorm:"foreignKey:RequestID"`
}

// SpecializationCount returns how many specialization records are attached.
func (r *Request) SpecializationCount() int {
	n := 0
	if r.JobRequest != nil {
		n++
	}
	if r.VenueRequest != nil {
		n++
	}
	if r.TransportRequest != nil {
		n++
	}
	if r.ReturnableResourceRequest != nil {
		n++
	}
	if r.SupplyRequest != nil {
		n++
	}
	return n
}

// HasSpecializationFor reports whether the record matching Type is attached.
func (r *Request) HasSpecializationFor() bool {
	switch r.Type {
	case RequestTypeJob:
		return r.JobRequest != nil
	case RequestTypeVenue:
		return r.VenueRequest != nil
	case RequestTypeTransport:
		return r.TransportRequest != nil
	case RequestTypeResourceBorrow:
		return r.ReturnableResourceRequest != nil
	case RequestTypeResourceSupply:
		return r.SupplyRequest != nil
	}
	return false
}

type JobRequest struct {
	BaseModel
	RequestID   string `gorm:"type:uuid;not null;uniqueIndex"`
	JobType     string `gorm:"not null"`
	Location    string
	AssignedTo  *string `gorm:"type:uuid"`
	StartDate   *time.Time
	EndDate     *time.Time
	Attachments datatypes.JSON `gorm:"type:jsonb"`
}

type VenueRequest struct {
	BaseModel
	RequestID string    `gorm:"type:uuid;not null;uniqueIndex"`
	VenueID   string    `gorm:"type:uuid;not null;index"`
	StartTime time.Time `gorm:"not null"`
	EndTime   time.Time `gorm:"not null"`
	Purpose   string
	Attendees int

	Venue *Venue `gorm:"foreignKey:VenueID"`
}

type TransportRequest struct {
	BaseModel
	RequestID         string    `gorm:"type:uuid;not null;uniqueIndex"`
	VehicleID         string    `gorm:"type:uuid;not null;index"`
	Destination       string    `gorm:"not null"`
	Passengers        int       `gorm:"not null;default:1"`
	DateAndTimeNeeded time.Time `gorm:"not null;index"`
	InProgress        bool      `gorm:"not null;default:false"`

	Vehicle *Vehicle `gorm:"foreignKey:VehicleID"`
}

// PromotableAt reports whether the sweep should mark the transport in progress.
func (t *TransportRequest) PromotableAt(parent RequestStatus, now time.Time) bool {
	return parent == RequestStatusApproved &&
		!t.InProgress &&
		!t.DateAndTimeNeeded.After(now)
}

// ReturnableResourceRequest tracks a borrowed item.
// IsOverdue is only ever true while IsReturned is false and InProgress is true.
type ReturnableResourceRequest struct {
	BaseModel
	RequestID         string    `gorm:"type:uuid;not null;uniqueIndex"`
	ItemID            string    `gorm:"type:uuid;not null;index"`
	Quantity          int       `gorm:"not null;default:1"`
	DateAndTimeNeeded time.Time `gorm:"not null;index"`
	ReturnDateAndTime time.Time `gorm:"not null;index"`
	InProgress        bool      `gorm:"not null;default:false"`
	IsReturned        bool      `gorm:"not null;default:false"`
	IsOverdue         bool      `gorm:"not null;default:false"`
	ReturnCondition   string

	Item *Item `gorm:"foreignKey:ItemID"`
}

// PromotableAt: approved, needed-by reached (inclusive), not yet in progress
// and still inside the return window.
func (r *ReturnableResourceRequest) PromotableAt(parent RequestStatus, now time.Time) bool {
	return parent == RequestStatusApproved &&
		!r.InProgress &&
		!r.DateAndTimeNeeded.After(now) &&
		r.ReturnDateAndTime.After(now)
}

// OverdueAt: approved, in progress, not returned, not yet flagged and past the return time.
func (r *ReturnableResourceRequest) OverdueAt(parent RequestStatus, now time.Time) bool {
	return parent == RequestStatusApproved &&
		r.InProgress &&
		!r.IsReturned &&
		!r.IsOverdue &&
		r.ReturnDateAndTime.Before(now)
}

type SupplyRequest struct {
	BaseModel
	RequestID    string          `gorm:"type:uuid;not null;uniqueIndex"`
	SupplyItemID string          `gorm:"type:uuid;not null;index"`
	Quantity     decimal.Decimal `gorm:"type:numeric(14,3);not null"`

	SupplyItem *SupplyItem `gorm:"foreignKey:SupplyItemID"`
}
