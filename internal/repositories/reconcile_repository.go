package repositories

import (
	"time"

	"campusreq_backend/internal/models"

	"gorm.io/gorm"
)

// ReconcileRepository holds the sweep's guarded bulk updates. Each method is a
// single UPDATE ... RETURNING whose WHERE clause excludes rows already flagged,
// so repeating a call with the same `now` changes nothing.
//
// Candidates are picked with FOR UPDATE OF r: the parent row lock serializes
// the sweep with interactive transitions, and a parent that left APPROVED
// while the sweep waited is re-checked and skipped.
type ReconcileRepository interface {
	PromoteReturnables(db *gorm.DB, now time.Time) ([]string, error)
	PromoteTransports(db *gorm.DB, now time.Time) ([]PromotedTransport, error)
	FlagOverdueReturnables(db *gorm.DB, now time.Time) ([]OverdueReturnable, error)
}

type PromotedTransport struct {
	RequestID string
	VehicleID string
}

// OverdueReturnable carries what the notification pass needs about a newly flagged request.
type OverdueReturnable struct {
	RequestID            string
	Title                string
	RequesterID          string
	DepartmentID         string
	ReviewerID           *string
	DepartmentReviewerID *string
	ItemID               string
	ReturnDateAndTime    time.Time
}

type reconcileRepository struct{}

func NewReconcileRepository() ReconcileRepository {
	return &reconcileRepository{}
}

const promoteReturnablesSQL = `
WITH candidates AS (
  SELECT rr.id
  FROM returnable_resource_requests AS rr
  JOIN requests AS r ON r.id = rr.request_id
  WHERE r.status = ?
    AND rr.in_progress = false
    AND rr.date_and_time_needed <= ?
    AND rr.return_date_and_time > ?
  FOR UPDATE OF r
)
UPDATE returnable_resource_requests AS rr
SET in_progress = true, updated_at = ?
FROM candidates AS c
WHERE rr.id = c.id
RETURNING rr.request_id`

const promoteTransportsSQL = `
WITH candidates AS (
  SELECT tr.id
  FROM transport_requests AS tr
  JOIN requests AS r ON r.id = tr.request_id
  WHERE r.status = ?
    AND tr.in_progress = false
    AND tr.date_and_time_needed <= ?
  FOR UPDATE OF r
)
UPDATE transport_requests AS tr
SET in_progress = true, updated_at = ?
FROM candidates AS c
WHERE tr.id = c.id
RETURNING tr.request_id, tr.vehicle_id`

const flagOverdueSQL = `
WITH candidates AS (
  SELECT rr.id
  FROM returnable_resource_requests AS rr
  JOIN requests AS r ON r.id = rr.request_id
  WHERE r.status = ?
    AND rr.in_progress = true
    AND rr.is_returned = false
    AND rr.is_overdue = false
    AND rr.return_date_and_time < ?
  FOR UPDATE OF r
)
UPDATE returnable_resource_requests AS rr
SET is_overdue = true, updated_at = ?
FROM candidates AS c, requests AS r
JOIN departments AS d ON d.id = r.department_id
WHERE rr.id = c.id
  AND r.id = rr.request_id
RETURNING rr.request_id, r.title, r.requester_id, r.department_id, r.reviewer_id,
          d.reviewer_id AS department_reviewer_id, rr.item_id, rr.return_date_and_time`

func (r *reconcileRepository) PromoteReturnables(db *gorm.DB, now time.Time) ([]string, error) {
	var ids []string
	err := db.Raw(promoteReturnablesSQL, models.RequestStatusApproved, now, now, now).Scan(&ids).Error
	return ids, err
}

func (r *reconcileRepository) PromoteTransports(db *gorm.DB, now time.Time) ([]PromotedTransport, error) {
	var rows []PromotedTransport
	err := db.Raw(promoteTransportsSQL, models.RequestStatusApproved, now, now).Scan(&rows).Error
	return rows, err
}

func (r *reconcileRepository) FlagOverdueReturnables(db *gorm.DB, now time.Time) ([]OverdueReturnable, error) {
	var rows []OverdueReturnable
	err := db.Raw(flagOverdueSQL, models.RequestStatusApproved, now, now).Scan(&rows).Error
	return rows, err
}
