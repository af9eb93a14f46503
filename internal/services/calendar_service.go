package services

import (
	"context"
	"fmt"
	"time"

	"campusreq_backend/internal/models"
	"campusreq_backend/internal/repositories"
	"campusreq_backend/internal/services/dto"
	"campusreq_backend/pkg/apperrors"

	ics "github.com/arran4/golang-ical"
	"gorm.io/gorm"
)

const (
	calendarProductID = "-//campusreq//bookings//EN"
	// default window when the caller gives none
	calendarLookBack  = 7 * 24 * time.Hour
	calendarLookAhead = 90 * 24 * time.Hour
	// transports carry only a departure time
	transportSlot = time.Hour
)

type CalendarService interface {
	// Bookings renders approved venue and transport requests as an iCalendar feed.
	Bookings(ctx context.Context, db *gorm.DB, actor dto.Actor, query dto.CalendarQuery) (string, error)
}

type calendarService struct {
	requestRepo repositories.RequestRepository
	clock       func() time.Time
}

func NewCalendarService(requestRepo repositories.RequestRepository) CalendarService {
	return &calendarService{requestRepo: requestRepo, clock: time.Now}
}

func (s *calendarService) Bookings(ctx context.Context, db *gorm.DB, actor dto.Actor, query dto.CalendarQuery) (string, error) {
	now := s.clock()
	from, to := query.From, query.To
	if from.IsZero() {
		from = now.Add(-calendarLookBack)
	}
	if to.IsZero() {
		to = now.Add(calendarLookAhead)
	}
	if !to.After(from) {
		return "", apperrors.NewBadRequestError("to must be after from")
	}

	departmentID := query.DepartmentID
	if departmentID == "" && !actor.IsAdmin() {
		departmentID = actor.DepartmentID
	}

	requests, err := s.requestRepo.FindBookings(withContext(db, ctx), repositories.BookingFilter{
		DepartmentID: departmentID,
		From:         from,
		To:           to,
	})
	if err != nil {
		return "", apperrors.DatabaseError(err)
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(calendarProductID)

	for i := range requests {
		addBooking(cal, &requests[i], now)
	}
	return cal.Serialize(), nil
}

func addBooking(cal *ics.Calendar, r *models.Request, stamp time.Time) {
	var (
		start, end time.Time
		location   string
		summary    string
	)

	switch {
	case r.VenueRequest != nil:
		v := r.VenueRequest
		start, end = v.StartTime, v.EndTime
		location = v.VenueID
		if v.Venue != nil {
			location = v.Venue.Name
			if v.Venue.Location != "" {
				location = fmt.Sprintf("%s, %s", v.Venue.Name, v.Venue.Location)
			}
		}
		summary = r.Title
	case r.TransportRequest != nil:
		t := r.TransportRequest
		start, end = t.DateAndTimeNeeded, t.DateAndTimeNeeded.Add(transportSlot)
		location = t.Destination
		summary = r.Title
		if t.Vehicle != nil {
			summary = fmt.Sprintf("%s (%s)", r.Title, t.Vehicle.Name)
		}
	default:
		return
	}

	event := cal.AddEvent(r.ID + "@campusreq")
	event.SetCreatedTime(r.CreatedAt)
	event.SetDtStampTime(stamp)
	event.SetModifiedAt(r.UpdatedAt)
	event.SetStartAt(start)
	event.SetEndAt(end)
	event.SetSummary(summary)
	event.SetLocation(location)
	if r.Description != "" {
		event.SetDescription(r.Description)
	}
}
