package dto

import "time"

// ReconcileResult summarises one sweep.
type ReconcileResult struct {
	RanAt                time.Time `json:"ran_at"`
	PromotedReturnables  []string  `json:"promoted_returnables"`
	PromotedTransports   []string  `json:"promoted_transports"`
	VehiclesInUse        []string  `json:"vehicles_in_use"`
	Overdue              []string  `json:"overdue"`
	NotificationsCreated int       `json:"notifications_created"`
	NotificationFailures int       `json:"notification_failures"`
	Broadcasts           int       `json:"broadcasts"`
	BroadcastFailed      bool      `json:"broadcast_failed"`
}

func (r *ReconcileResult) Changed() bool {
	return len(r.PromotedReturnables)+len(r.PromotedTransports)+len(r.Overdue) > 0
}
