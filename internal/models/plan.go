package models

import (
	"fmt"
	"strings"
	"time"
)

type PlanStatus string

const (
	PlanStatusPending   PlanStatus = "pending"
	PlanStatusConfirmed PlanStatus = "confirmed"
	PlanStatusRejected  PlanStatus = "rejected"
)

// allowedTransitions holds every status change a plan may go through.
// Resubmission returns a plan to pending from any state.
var allowedTransitions = map[PlanStatus]map[PlanStatus]bool{
	PlanStatusPending: {
		PlanStatusPending:   true,
		PlanStatusConfirmed: true,
		PlanStatusRejected:  true,
	},
	PlanStatusConfirmed: {
		PlanStatusPending: true,
	},
	PlanStatusRejected: {
		PlanStatusPending: true,
	},
}

// CanTransition reports whether a plan in status from may move to status to.
func CanTransition(from, to PlanStatus) bool {
	next, ok := allowedTransitions[from]
	if !ok {
		return false
	}
	return next[to]
}

func (s PlanStatus) Valid() bool {
	_, ok := allowedTransitions[s]
	return ok
}

func (s PlanStatus) Label() string {
	switch s {
	case PlanStatusPending:
		return "Pending confirmation"
	case PlanStatusConfirmed:
		return "Confirmed"
	case PlanStatusRejected:
		return "Rejected"
	default:
		return string(s)
	}
}

// ParsePlanStatus accepts the status name case-insensitively.
func ParsePlanStatus(s string) (PlanStatus, error) {
	status := PlanStatus(strings.ToLower(strings.TrimSpace(s)))
	if !status.Valid() {
		return "", fmt.Errorf("invalid plan status %q (must be pending, confirmed or rejected)", s)
	}
	return status, nil
}

type PlanKind string

const (
	PlanKindVegetation PlanKind = "vegetation_maintenance"
	PlanKindPavement   PlanKind = "pavement_improvement"
	PlanKindGeneral    PlanKind = "general_maintenance"
)

func (k PlanKind) Label() string {
	switch k {
	case PlanKindVegetation:
		return "Vegetation maintenance"
	case PlanKindPavement:
		return "Pavement improvement"
	case PlanKindGeneral:
		return "General maintenance"
	default:
		return string(k)
	}
}

func ParsePlanKind(s string) (PlanKind, error) {
	if strings.TrimSpace(s) == "" {
		return PlanKindVegetation, nil
	}
	kind := PlanKind(strings.ToLower(strings.TrimSpace(s)))
	switch kind {
	case PlanKindVegetation, PlanKindPavement, PlanKindGeneral:
		return kind, nil
	}
	return "", fmt.Errorf("invalid plan kind %q", s)
}

type Contact struct {
	Name  string `json:"name,omitempty"`
	Phone string `json:"phone,omitempty"`
}

type WorkPlan struct {
	ID               string     `json:"id"`
	Number           string     `json:"number"`
	WorkType         string     `json:"work_type"`
	Kind             PlanKind   `json:"kind"`
	Highway          string     `json:"highway,omitempty"`
	Status           PlanStatus `json:"status"`
	Activities       []Activity `json:"activities"`
	RejectionComment string     `json:"rejection_comment,omitempty"`
	InExternalSystem bool       `json:"in_external_system"`
	KmStart          string     `json:"km_start,omitempty"`
	KmEnd            string     `json:"km_end,omitempty"`
	FixedWork        bool       `json:"fixed_work"`
	MobileWork       bool       `json:"mobile_work"`
	Urgent           bool       `json:"urgent"`
	Supervision      Contact    `json:"supervision"`
	Contractor       Contact    `json:"contractor"`
	Signage          Contact    `json:"signage"`
	SubmittedBy      string     `json:"submitted_by,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// Title is the label used when a plan is presented to a reviewer.
func (p WorkPlan) Title() string {
	if p.Number == "" {
		return p.Kind.Label()
	}
	return fmt.Sprintf("%s %s", p.Kind.Label(), p.Number)
}

// Clone returns a deep copy of the plan.
func (p WorkPlan) Clone() WorkPlan {
	out := p
	if p.Activities != nil {
		out.Activities = make([]Activity, len(p.Activities))
		for i, a := range p.Activities {
			out.Activities[i] = a.Clone()
		}
	}
	return out
}

// StatusChange is one entry of a plan's status history.
type StatusChange struct {
	PlanID    string     `json:"plan_id"`
	Status    PlanStatus `json:"status"`
	Comment   string     `json:"comment,omitempty"`
	ChangedAt time.Time  `json:"changed_at"`
}
