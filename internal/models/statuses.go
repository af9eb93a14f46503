package models

type RequestType string
type RequestStatus string
type VehicleStatus string
type NotificationType string
type RecipientType string
type UserRole string

const (
	RequestTypeJob            RequestType = "JOB"
	RequestTypeVenue          RequestType = "VENUE"
	RequestTypeTransport      RequestType = "TRANSPORT"
	RequestTypeResourceBorrow RequestType = "RESOURCE-BORROW"
	RequestTypeResourceSupply RequestType = "RESOURCE-SUPPLY"

	RequestStatusPending    RequestStatus = "PENDING"
	RequestStatusApproved   RequestStatus = "APPROVED"
	RequestStatusReviewed   RequestStatus = "REVIEWED"
	RequestStatusInProgress RequestStatus = "IN_PROGRESS"
	RequestStatusCompleted  RequestStatus = "COMPLETED"
	RequestStatusRejected   RequestStatus = "REJECTED"
	RequestStatusCancelled  RequestStatus = "CANCELLED"

	VehicleStatusAvailable   VehicleStatus = "AVAILABLE"
	VehicleStatusInUse       VehicleStatus = "IN_USE"
	VehicleStatusMaintenance VehicleStatus = "MAINTENANCE"

	NotificationTypeWarning  NotificationType = "WARNING"
	NotificationTypeReminder NotificationType = "REMINDER"
	NotificationTypeInfo     NotificationType = "INFO"

	RecipientTypeUser       RecipientType = "user"
	RecipientTypeDepartment RecipientType = "department"

	UserRoleUser  UserRole = "user"
	UserRoleStaff UserRole = "staff"
	UserRoleAdmin UserRole = "admin"
)

var RequestTypes = []RequestType{
	RequestTypeJob,
	RequestTypeVenue,
	RequestTypeTransport,
	RequestTypeResourceBorrow,
	RequestTypeResourceSupply,
}

var RequestStatuses = []RequestStatus{
	RequestStatusPending,
	RequestStatusApproved,
	RequestStatusReviewed,
	RequestStatusInProgress,
	RequestStatusCompleted,
	RequestStatusRejected,
	RequestStatusCancelled,
}

func (t RequestType) Valid() bool {
	for _, v := range RequestTypes {
		if v == t {
			return true
		}
	}
	return false
}

func (s RequestStatus) Valid() bool {
	for _, v := range RequestStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// Terminal statuses have no outgoing transitions.
func (s RequestStatus) Terminal() bool {
	switch s {
	case RequestStatusCompleted, RequestStatusRejected, RequestStatusCancelled:
		return true
	}
	return false
}

// ResourceTypeRequest is the Notification.ResourceType of request deep links.
const ResourceTypeRequest = "request"
