package services

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"campusreq_backend/internal/models"
	"campusreq_backend/internal/repositories"
	"campusreq_backend/internal/services/dto"
	"campusreq_backend/pkg/apperrors"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

const exportSheet = "Requests"

var exportHeaders = []string{
	"ID", "Title", "Type", "Status", "Department", "Requester",
	"Created", "Completed", "Details", "Overdue",
}

type ExportService interface {
	// ExportRequests renders requests created in [From, To) as an xlsx workbook.
	ExportRequests(ctx context.Context, db *gorm.DB, actor dto.Actor, query dto.ExportQuery) (*bytes.Buffer, string, error)
}

type exportService struct {
	requestRepo repositories.RequestRepository
}

func NewExportService(requestRepo repositories.RequestRepository) ExportService {
	return &exportService{requestRepo: requestRepo}
}

func (s *exportService) ExportRequests(ctx context.Context, db *gorm.DB, actor dto.Actor, query dto.ExportQuery) (*bytes.Buffer, string, error) {
	filter := repositories.RequestFilter{
		DepartmentID: query.DepartmentID,
		CreatedFrom:  query.From,
		CreatedTo:    query.To,
		Unpaged:      true,
	}
	switch {
	case actor.IsAdmin():
	case actor.Role == models.UserRoleStaff && actor.DepartmentID != "":
		filter.DepartmentID = actor.DepartmentID
	default:
		return nil, "", apperrors.ErrInsufficientPermissions()
	}
	if !query.From.IsZero() && !query.To.IsZero() && !query.To.After(query.From) {
		return nil, "", apperrors.NewBadRequestError("to must be after from")
	}

	requests, _, err := s.requestRepo.List(withContext(db, ctx), filter)
	if err != nil {
		return nil, "", apperrors.DatabaseError(err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if _, err := f.NewSheet(exportSheet); err != nil {
		return nil, "", apperrors.InternalError(err)
	}
	_ = f.DeleteSheet("Sheet1")

	_ = f.SetColWidth(exportSheet, "A", "A", 38)
	_ = f.SetColWidth(exportSheet, "B", "B", 32)
	_ = f.SetColWidth(exportSheet, "C", "H", 18)
	_ = f.SetColWidth(exportSheet, "I", "I", 48)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
	})
	for i, h := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(exportSheet, cell, h)
		_ = f.SetCellStyle(exportSheet, cell, cell, headerStyle)
	}

	for i := range requests {
		r := &requests[i]
		row := []interface{}{
			r.ID,
			r.Title,
			string(r.Type),
			string(r.Status),
			departmentName(r),
			requesterName(r),
			r.CreatedAt.UTC().Format(time.RFC3339),
			completedAt(r),
			requestDetails(r),
			overdueFlag(r),
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return nil, "", apperrors.InternalError(err)
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, "", apperrors.InternalError(err)
	}

	filename := fmt.Sprintf("requests_%s.xlsx", time.Now().UTC().Format("20060102_150405"))
	return buf, filename, nil
}

func departmentName(r *models.Request) string {
	if r.Department != nil {
		return r.Department.Name
	}
	return r.DepartmentID
}

func requesterName(r *models.Request) string {
	if r.Requester != nil {
		return r.Requester.Name
	}
	return r.RequesterID
}

func completedAt(r *models.Request) string {
	if r.CompletedAt == nil {
		return ""
	}
	return r.CompletedAt.UTC().Format(time.RFC3339)
}

func overdueFlag(r *models.Request) string {
	if rr := r.ReturnableResourceRequest; rr != nil && rr.IsOverdue {
		return "yes"
	}
	return ""
}

func requestDetails(r *models.Request) string {
	switch {
	case r.JobRequest != nil:
		return fmt.Sprintf("%s at %s", r.JobRequest.JobType, r.JobRequest.Location)
	case r.VenueRequest != nil:
		v := r.VenueRequest
		name := v.VenueID
		if v.Venue != nil {
			name = v.Venue.Name
		}
		return fmt.Sprintf("%s %s to %s", name, v.StartTime.UTC().Format(time.RFC3339), v.EndTime.UTC().Format(time.RFC3339))
	case r.TransportRequest != nil:
		t := r.TransportRequest
		return fmt.Sprintf("to %s, %d passengers, %s", t.Destination, t.Passengers, t.DateAndTimeNeeded.UTC().Format(time.RFC3339))
	case r.ReturnableResourceRequest != nil:
		rr := r.ReturnableResourceRequest
		name := rr.ItemID
		if rr.Item != nil {
			name = rr.Item.Name
		}
		return fmt.Sprintf("%d x %s until %s", rr.Quantity, name, rr.ReturnDateAndTime.UTC().Format(time.RFC3339))
	case r.SupplyRequest != nil:
		sr := r.SupplyRequest
		name, unit := sr.SupplyItemID, ""
		if sr.SupplyItem != nil {
			name, unit = sr.SupplyItem.Name, sr.SupplyItem.Unit
		}
		return fmt.Sprintf("%s %s %s", sr.Quantity.String(), unit, name)
	}
	return ""
}
