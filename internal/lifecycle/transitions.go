// Package lifecycle holds the request status table: for each request type
// and current status, which statuses may follow and who may move there.
package lifecycle

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"campusreq_backend/internal/models"
)

type Actor string

const (
	ActorRequester Actor = "requester"
	ActorReviewer  Actor = "reviewer"
	// ActorAdmin may take any reviewer edge.
	ActorAdmin Actor = "admin"
)

var (
	ErrUnknownType            = errors.New("unknown request type")
	ErrTerminalStatus         = errors.New("request is in a terminal status")
	ErrTransitionNotAllowed   = errors.New("transition not allowed")
	ErrActorNotAllowed        = errors.New("actor may not perform this transition")
	ErrMissingStartDate       = errors.New("start date is required")
	ErrMissingReason          = errors.New("rejection reason is required")
	ErrNotReturned            = errors.New("item must be returned before completion")
	ErrMissingReturnCondition = errors.New("return condition is required")
	ErrResourceInUse          = errors.New("request is already in progress")
)

type Rule struct {
	To     models.RequestStatus
	Actors []Actor
}

var (
	reviewer  = []Actor{ActorReviewer}
	requester = []Actor{ActorRequester}
)

// pendingRules apply to every type.
var pendingRules = []Rule{
	{To: models.RequestStatusApproved, Actors: reviewer},
	{To: models.RequestStatusRejected, Actors: reviewer},
	{To: models.RequestStatusCancelled, Actors: requester},
}

var table = map[models.RequestType]map[models.RequestStatus][]Rule{
	models.RequestTypeJob: {
		models.RequestStatusPending: append([]Rule{
			{To: models.RequestStatusReviewed, Actors: reviewer},
		}, pendingRules...),
		models.RequestStatusReviewed: {
			{To: models.RequestStatusApproved, Actors: reviewer},
			{To: models.RequestStatusRejected, Actors: reviewer},
		},
		models.RequestStatusApproved: {
			{To: models.RequestStatusInProgress, Actors: reviewer},
			{To: models.RequestStatusCompleted, Actors: reviewer},
		},
		models.RequestStatusInProgress: {
			{To: models.RequestStatusCompleted, Actors: reviewer},
		},
	},
	models.RequestTypeVenue: {
		models.RequestStatusPending: pendingRules,
		models.RequestStatusApproved: {
			{To: models.RequestStatusCompleted, Actors: reviewer},
			{To: models.RequestStatusCancelled, Actors: reviewer},
		},
	},
	models.RequestTypeTransport: {
		models.RequestStatusPending: pendingRules,
		models.RequestStatusApproved: {
			{To: models.RequestStatusCompleted, Actors: reviewer},
			{To: models.RequestStatusCancelled, Actors: reviewer},
		},
	},
	models.RequestTypeResourceBorrow: {
		models.RequestStatusPending: pendingRules,
		models.RequestStatusApproved: {
			{To: models.RequestStatusCompleted, Actors: reviewer},
			{To: models.RequestStatusCancelled, Actors: reviewer},
		},
	},
	models.RequestTypeResourceSupply: {
		models.RequestStatusPending: pendingRules,
		models.RequestStatusApproved: {
			{To: models.RequestStatusCompleted, Actors: reviewer},
		},
	},
}

// Rules returns the outgoing edges for (t, from). Terminal statuses have none.
func Rules(t models.RequestType, from models.RequestStatus) []Rule {
	byStatus, ok := table[t]
	if !ok {
		return nil
	}
	return byStatus[from]
}

// Next lists the statuses actor may move a request of type t to from `from`.
func Next(t models.RequestType, from models.RequestStatus, actor Actor) []models.RequestStatus {
	var out []models.RequestStatus
	for _, rule := range Rules(t, from) {
		if rule.allows(actor) {
			out = append(out, rule.To)
		}
	}
	return out
}

func (r Rule) allows(actor Actor) bool {
	for _, a := range r.Actors {
		if a == actor || (actor == ActorAdmin && a == ActorReviewer) {
			return true
		}
	}
	return false
}

// CanTransition checks the table only; payload checks live in Validate.
func CanTransition(t models.RequestType, from, to models.RequestStatus, actor Actor) error {
	if _, ok := table[t]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownType, t)
	}
	if from.Terminal() {
		return fmt.Errorf("%w: %s", ErrTerminalStatus, from)
	}
	for _, rule := range Rules(t, from) {
		if rule.To != to {
			continue
		}
		if !rule.allows(actor) {
			return fmt.Errorf("%w: %s cannot move %s %s -> %s", ErrActorNotAllowed, actor, t, from, to)
		}
		return nil
	}
	return fmt.Errorf("%w: %s %s -> %s", ErrTransitionNotAllowed, t, from, to)
}

// Transition describes one attempted status change with its payload.
// IsReturned and InProgress reflect the specialization after the payload is applied.
type Transition struct {
	Type  models.RequestType
	From  models.RequestStatus
	To    models.RequestStatus
	Actor Actor

	StartDate       *time.Time
	Reason          string
	IsReturned      bool
	ReturnCondition string
	InProgress      bool
}

// Validate checks the table and the payload each edge requires.
func Validate(tr Transition) error {
	if err := CanTransition(tr.Type, tr.From, tr.To, tr.Actor); err != nil {
		return err
	}

	switch tr.To {
	case models.RequestStatusInProgress:
		if tr.StartDate == nil || tr.StartDate.IsZero() {
			return ErrMissingStartDate
		}
	case models.RequestStatusRejected:
		if strings.TrimSpace(tr.Reason) == "" {
			return ErrMissingReason
		}
	case models.RequestStatusCompleted:
		if tr.Type == models.RequestTypeResourceBorrow {
			if !tr.IsReturned {
				return ErrNotReturned
			}
			if strings.TrimSpace(tr.ReturnCondition) == "" {
				return ErrMissingReturnCondition
			}
		}
	case models.RequestStatusCancelled:
		if tr.Type == models.RequestTypeResourceBorrow && tr.InProgress {
			return ErrResourceInUse
		}
	}
	return nil
}
