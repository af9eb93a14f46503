package repositories

import (
	"errors"
	"time"

	"campusreq_backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrRequestNotFound = errors.New("request not found")
	// ErrStaleStatus is returned when the guarded status update matched no row.
	ErrStaleStatus = errors.New("request status changed concurrently")
)

type RequestRepository interface {
	// Create inserts the envelope and its specialization in one statement tree.
	Create(db *gorm.DB, request *models.Request) error
	FindByID(db *gorm.DB, id string) (*models.Request, error)
	// FindByIDForUpdate re-reads the envelope and its specialization with row
	// locks held until the surrounding transaction ends.
	FindByIDForUpdate(db *gorm.DB, id string) (*models.Request, error)
	List(db *gorm.DB, filter RequestFilter) ([]models.Request, int64, error)
	// UpdateStatus sets status plus extra columns only if the row is still in `from`.
	UpdateStatus(db *gorm.DB, id string, from, to models.RequestStatus, fields map[string]interface{}) error
	// SaveSpecialization persists a specialization record (job, venue, transport, returnable, supply).
	SaveSpecialization(db *gorm.DB, spec interface{}) error
	FindBookings(db *gorm.DB, filter BookingFilter) ([]models.Request, error)
}

type RequestFilter struct {
	Type         models.RequestType
	Status       models.RequestStatus
	DepartmentID string
	RequesterID  string
	CreatedFrom  time.Time
	CreatedTo    time.Time
	Page         int
	PageSize     int
	// Unpaged returns every match, used by exports.
	Unpaged bool
}

// BookingFilter selects approved venue and transport requests for calendar feeds.
// From and To are both required.
type BookingFilter struct {
	DepartmentID string
	From         time.Time
	To           time.Time
}

type requestRepository struct{}

func NewRequestRepository() RequestRepository {
	return &requestRepository{}
}

func preloadSpecializations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("JobRequest").
		Preload("VenueRequest").
		Preload("VenueRequest.Venue").
		Preload("TransportRequest").
		Preload("TransportRequest.Vehicle").
		Preload("ReturnableResourceRequest").
		Preload("ReturnableResourceRequest.Item").
		Preload("SupplyRequest").
		Preload("SupplyRequest.SupplyItem")
}

func (r *requestRepository) Create(db *gorm.DB, request *models.Request) error {
	return db.Create(request).Error
}

func (r *requestRepository) FindByID(db *gorm.DB, id string) (*models.Request, error) {
	var request models.Request
	err := preloadSpecializations(db).
		Preload("Requester").
		Preload("Department").
		First(&request, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}
	return &request, nil
}

func (r *requestRepository) FindByIDForUpdate(db *gorm.DB, id string) (*models.Request, error) {
	lock := func(db *gorm.DB) *gorm.DB {
		return db.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var request models.Request
	err := db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("JobRequest", lock).
		Preload("VenueRequest", lock).
		Preload("VenueRequest.Venue").
		Preload("TransportRequest", lock).
		Preload("TransportRequest.Vehicle").
		Preload("ReturnableResourceRequest", lock).
		Preload("ReturnableResourceRequest.Item").
		Preload("SupplyRequest", lock).
		Preload("SupplyRequest.SupplyItem").
		First(&request, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}
	return &request, nil
}

func (r *requestRepository) List(db *gorm.DB, filter RequestFilter) ([]models.Request, int64, error) {
	var (
		requests []models.Request
		total    int64
	)

	query := db.Model(&models.Request{})
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.DepartmentID != "" {
		query = query.Where("department_id = ?", filter.DepartmentID)
	}
	if filter.RequesterID != "" {
		query = query.Where("requester_id = ?", filter.RequesterID)
	}
	if !filter.CreatedFrom.IsZero() {
		query = query.Where("created_at >= ?", filter.CreatedFrom)
	}
	if !filter.CreatedTo.IsZero() {
		query = query.Where("created_at < ?", filter.CreatedTo)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = preloadSpecializations(query.Preload("Requester").Preload("Department")).Order("created_at DESC")
	if !filter.Unpaged {
		page, pageSize := normalizePage(filter.Page, filter.PageSize)
		query = query.Offset((page - 1) * pageSize).Limit(pageSize)
	}

	err := query.Find(&requests).Error
	return requests, total, err
}

func (r *requestRepository) UpdateStatus(db *gorm.DB, id string, from, to models.RequestStatus, fields map[string]interface{}) error {
	updates := map[string]interface{}{"status": to, "updated_at": time.Now()}
	for k, v := range fields {
		updates[k] = v
	}

	result := db.Model(&models.Request{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStaleStatus
	}
	return nil
}

func (r *requestRepository) SaveSpecialization(db *gorm.DB, spec interface{}) error {
	return db.Omit(clause.Associations).Save(spec).Error
}

func (r *requestRepository) FindBookings(db *gorm.DB, filter BookingFilter) ([]models.Request, error) {
	var requests []models.Request

	query := db.Model(&models.Request{}).
		Where("status = ?", models.RequestStatusApproved).
		Where("type IN ?", []models.RequestType{models.RequestTypeVenue, models.RequestTypeTransport})
	if filter.DepartmentID != "" {
		query = query.Where("department_id = ?", filter.DepartmentID)
	}
	// bookings overlapping [From, To)
	query = query.Where(`id IN (
		SELECT request_id FROM venue_requests WHERE end_time > ? AND start_time < ?
		UNION
		SELECT request_id FROM transport_requests WHERE date_and_time_needed >= ? AND date_and_time_needed < ?
	)`, filter.From, filter.To, filter.From, filter.To)

	err := query.
		Preload("VenueRequest").
		Preload("VenueRequest.Venue").
		Preload("TransportRequest").
		Preload("TransportRequest.Vehicle").
		Order("created_at").
		Find(&requests).Error
	return requests, err
}
