package dto

import (
	"time"

	"campusreq_backend/internal/models"

	"github.com/shopspring/decimal"
)

// Actor is the authenticated caller as seen by services.
type Actor struct {
	UserID       string
	Role         models.UserRole
	DepartmentID string
}

func (a Actor) IsAdmin() bool {
	return a.Role == models.UserRoleAdmin
}

// IsStaffOf reports whether the actor reviews requests of departmentID.
func (a Actor) IsStaffOf(departmentID string) bool {
	return a.Role == models.UserRoleStaff && a.DepartmentID != "" && a.DepartmentID == departmentID
}

// ---------------- Requests ----------------

// CreateRequestRequest carries exactly one specialization payload matching Type.
type CreateRequestRequest struct {
	Title        string             `json:"title" validate:"required,max=200"`
	Description  string             `json:"description" validate:"omitempty,max=5000"`
	Type         models.RequestType `json:"type" validate:"required,request_type"`
	DepartmentID string             `json:"department_id" validate:"required,uuid"`

	Job       *JobPayload       `json:"job,omitempty"`
	Venue     *VenuePayload     `json:"venue,omitempty"`
	Transport *TransportPayload `json:"transport,omitempty"`
	Borrow    *BorrowPayload    `json:"borrow,omitempty"`
	Supply    *SupplyPayload    `json:"supply,omitempty"`
}

type JobPayload struct {
	JobType     string   `json:"job_type" validate:"required,max=100"`
	Location    string   `json:"location" validate:"omitempty,max=200"`
	Attachments []string `json:"attachments" validate:"omitempty,dive,url"`
}

type VenuePayload struct {
	VenueID   string    `json:"venue_id" validate:"required,uuid"`
	StartTime time.Time `json:"start_time" validate:"required"`
	EndTime   time.Time `json:"end_time" validate:"required,gtfield=StartTime"`
	Purpose   string    `json:"purpose" validate:"omitempty,max=500"`
	Attendees int       `json:"attendees" validate:"min=0"`
}

type TransportPayload struct {
	VehicleID         string    `json:"vehicle_id" validate:"required,uuid"`
	Destination       string    `json:"destination" validate:"required,max=300"`
	Passengers        int       `json:"passengers" validate:"min=1"`
	DateAndTimeNeeded time.Time `json:"date_and_time_needed" validate:"required"`
}

type BorrowPayload struct {
	ItemID            string    `json:"item_id" validate:"required,uuid"`
	Quantity          int       `json:"quantity" validate:"min=1"`
	DateAndTimeNeeded time.Time `json:"date_and_time_needed" validate:"required"`
	ReturnDateAndTime time.Time `json:"return_date_and_time" validate:"required,gtfield=DateAndTimeNeeded"`
}

type SupplyPayload struct {
	SupplyItemID string          `json:"supply_item_id" validate:"required,uuid"`
	Quantity     decimal.Decimal `json:"quantity"`
}

// TransitionRequest moves a request to Status with the payload that edge needs.
type TransitionRequest struct {
	Status          models.RequestStatus `json:"status" validate:"required,request_status"`
	StartDate       *time.Time           `json:"start_date,omitempty"`
	EndDate         *time.Time           `json:"end_date,omitempty"`
	Reason          string               `json:"reason" validate:"omitempty,max=1000"`
	Returned        bool                 `json:"returned"`
	ReturnCondition string               `json:"return_condition" validate:"omitempty,max=500"`
}

type RequestListQuery struct {
	Type         models.RequestType   `form:"type" validate:"omitempty,request_type"`
	Status       models.RequestStatus `form:"status" validate:"omitempty,request_status"`
	DepartmentID string               `form:"department_id" validate:"omitempty,uuid"`
	Mine         bool                 `form:"mine"`
	Page         int                  `form:"page" validate:"omitempty,min=1"`
	PageSize     int                  `form:"page_size" validate:"omitempty,min=1,max=100"`
}

type ExportQuery struct {
	From         time.Time `form:"from" time_format:"2006-01-02"`
	To           time.Time `form:"to" time_format:"2006-01-02"`
	DepartmentID string    `form:"department_id" validate:"omitempty,uuid"`
}

type CalendarQuery struct {
	DepartmentID string    `form:"department_id" validate:"omitempty,uuid"`
	From         time.Time `form:"from" time_format:"2006-01-02"`
	To           time.Time `form:"to" time_format:"2006-01-02"`
}

// ---------------- Responses ----------------

type RequestResponse struct {
	ID              string               `json:"id"`
	Title           string               `json:"title"`
	Description     string               `json:"description,omitempty"`
	Type            models.RequestType   `json:"type"`
	Status          models.RequestStatus `json:"status"`
	RequesterID     string               `json:"requester_id"`
	RequesterName   string               `json:"requester_name,omitempty"`
	ReviewerID      *string              `json:"reviewer_id,omitempty"`
	DepartmentID    string               `json:"department_id"`
	DepartmentName  string               `json:"department_name,omitempty"`
	RejectionReason string               `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time            `json:"created_at"`
	UpdatedAt       time.Time            `json:"updated_at"`
	CompletedAt     *time.Time           `json:"completed_at,omitempty"`

	Job       *JobResponse       `json:"job,omitempty"`
	Venue     *VenueResponse     `json:"venue,omitempty"`
	Transport *TransportResponse `json:"transport,omitempty"`
	Borrow    *BorrowResponse    `json:"borrow,omitempty"`
	Supply    *SupplyResponse    `json:"supply,omitempty"`
}

type JobResponse struct {
	JobType    string     `json:"job_type"`
	Location   string     `json:"location,omitempty"`
	AssignedTo *string    `json:"assigned_to,omitempty"`
	StartDate  *time.Time `json:"start_date,omitempty"`
	EndDate    *time.Time `json:"end_date,omitempty"`
}

type VenueResponse struct {
	VenueID   string    `json:"venue_id"`
	VenueName string    `json:"venue_name,omitempty"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Purpose   string    `json:"purpose,omitempty"`
	Attendees int       `json:"attendees"`
}

type TransportResponse struct {
	VehicleID         string    `json:"vehicle_id"`
	VehicleName       string    `json:"vehicle_name,omitempty"`
	Destination       string    `json:"destination"`
	Passengers        int       `json:"passengers"`
	DateAndTimeNeeded time.Time `json:"date_and_time_needed"`
	InProgress        bool      `json:"in_progress"`
}

type BorrowResponse struct {
	ItemID            string    `json:"item_id"`
	ItemName          string    `json:"item_name,omitempty"`
	Quantity          int       `json:"quantity"`
	DateAndTimeNeeded time.Time `json:"date_and_time_needed"`
	ReturnDateAndTime time.Time `json:"return_date_and_time"`
	InProgress        bool      `json:"in_progress"`
	IsReturned        bool      `json:"is_returned"`
	IsOverdue         bool      `json:"is_overdue"`
	ReturnCondition   string    `json:"return_condition,omitempty"`
}

type SupplyResponse struct {
	SupplyItemID string          `json:"supply_item_id"`
	ItemName     string          `json:"item_name,omitempty"`
	Unit         string          `json:"unit,omitempty"`
	Quantity     decimal.Decimal `json:"quantity"`
}

type RequestListResponse struct {
	Requests   []*RequestResponse `json:"requests"`
	Total      int64              `json:"total"`
	Page       int                `json:"page"`
	PageSize   int                `json:"page_size"`
	TotalPages int                `json:"total_pages"`
}

type AllowedTransitionsResponse struct {
	Current models.RequestStatus   `json:"current"`
	Allowed []models.RequestStatus `json:"allowed"`
}
