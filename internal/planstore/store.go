// Package planstore owns the collection of submitted work plans and keeps
// the derived availability in step with it.
package planstore

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/roadplan/internal/availability"
	"github.com/julianstephens/roadplan/internal/logger"
	"github.com/julianstephens/roadplan/internal/models"
	"github.com/julianstephens/roadplan/internal/validation"
)

var (
	ErrPlanNotFound      = errors.New("plan not found")
	ErrActivityNotFound  = errors.New("activity not found")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// Repository persists plans between sessions.
type Repository interface {
	SavePlan(plan models.WorkPlan) error
	GetAllPlans() ([]models.WorkPlan, error)
}

type Option func(*Store)

// WithRepository writes every mutation through to repo before it is applied.
func WithRepository(repo Repository) Option {
	return func(s *Store) { s.repo = repo }
}

// WithClock overrides the time source used for plan timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Store holds the plan collection. Every successful mutation ends with a
// full recompute of the derived availability; a failed one changes nothing.
type Store struct {
	mu    sync.RWMutex
	repo  Repository
	now   func() time.Time
	plans []models.WorkPlan
	index map[string]int
	avail availability.Availability
}

func New(opts ...Option) *Store {
	s := &Store{
		now:   time.Now,
		index: make(map[string]int),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.recompute()
	return s
}

// Load builds a store from the plans already held by repo.
func Load(repo Repository, opts ...Option) (*Store, error) {
	plans, err := repo.GetAllPlans()
	if err != nil {
		return nil, fmt.Errorf("failed to load plans: %w", err)
	}

	s := New(append([]Option{WithRepository(repo)}, opts...)...)
	sort.SliceStable(plans, func(i, j int) bool {
		return plans[i].CreatedAt.Before(plans[j].CreatedAt)
	})
	for _, p := range plans {
		s.index[p.ID] = len(s.plans)
		s.plans = append(s.plans, p)
	}
	s.recompute()
	logger.Debug("plan store loaded", "plans", len(s.plans))
	return s, nil
}

func (s *Store) recompute() {
	s.avail = availability.Derive(s.plans)
}

// commit persists plan and then applies it in memory.
func (s *Store) commit(plan models.WorkPlan) error {
	if s.repo != nil {
		if err := s.repo.SavePlan(plan); err != nil {
			return fmt.Errorf("failed to save plan %s: %w", plan.ID, err)
		}
	}
	if i, ok := s.index[plan.ID]; ok {
		s.plans[i] = plan
	} else {
		s.index[plan.ID] = len(s.plans)
		s.plans = append(s.plans, plan)
	}
	s.recompute()
	return nil
}

func (s *Store) lookup(id string) (models.WorkPlan, error) {
	i, ok := s.index[id]
	if !ok {
		return models.WorkPlan{}, fmt.Errorf("%w: %s", ErrPlanNotFound, id)
	}
	return s.plans[i].Clone(), nil
}

// Submit records a new plan as pending. The plan needs at least one activity.
func (s *Store) Submit(plan models.WorkPlan) (models.WorkPlan, error) {
	if result := validation.ValidatePlan(plan.Activities); !result.OK() {
		logger.Debug("plan submission refused", "reason", result.Kind)
		return models.WorkPlan{}, result.Err()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p := plan.Clone()
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if _, exists := s.index[p.ID]; exists {
		return models.WorkPlan{}, fmt.Errorf("plan %s already exists", p.ID)
	}
	if p.Kind == "" {
		p.Kind = models.PlanKindVegetation
	}
	assignActivityIDs(p.Activities)
	p.Status = models.PlanStatusPending
	p.RejectionComment = ""
	p.InExternalSystem = false
	p.CreatedAt = s.now()
	p.UpdatedAt = p.CreatedAt

	if err := s.commit(p); err != nil {
		return models.WorkPlan{}, err
	}
	logger.Info("plan submitted", "plan", p.ID, "number", p.Number, "activities", len(p.Activities))
	return p.Clone(), nil
}

// Resubmit replaces an existing plan's editable fields and returns it to
// pending, clearing any rejection comment and the external system mark.
// Allowed from every status. An empty kind keeps the current one.
func (s *Store) Resubmit(id string, updated models.WorkPlan) (models.WorkPlan, error) {
	if result := validation.ValidatePlan(updated.Activities); !result.OK() {
		logger.Debug("plan resubmission refused", "plan", id, "reason", result.Kind)
		return models.WorkPlan{}, result.Err()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.lookup(id)
	if err != nil {
		return models.WorkPlan{}, err
	}

	p := updated.Clone()
	p.ID = current.ID
	if p.Kind == "" {
		p.Kind = current.Kind
	}
	// The external system mark belongs to the confirmed version.
	p.InExternalSystem = false
	p.CreatedAt = current.CreatedAt
	if p.SubmittedBy == "" {
		p.SubmittedBy = current.SubmittedBy
	}
	assignActivityIDs(p.Activities)
	p.Status = models.PlanStatusPending
	p.RejectionComment = ""
	p.UpdatedAt = s.now()

	if err := s.commit(p); err != nil {
		return models.WorkPlan{}, err
	}
	logger.Info("plan resubmitted", "plan", p.ID, "previous_status", current.Status)
	return p.Clone(), nil
}

// Approve confirms a pending plan, blocking its activity dates.
func (s *Store) Approve(id string) (models.WorkPlan, error) {
	return s.transition(id, models.PlanStatusConfirmed, func(p *models.WorkPlan) {
		p.RejectionComment = ""
	})
}

// Reject refuses a pending plan with an optional comment for the provider.
func (s *Store) Reject(id, comment string) (models.WorkPlan, error) {
	return s.transition(id, models.PlanStatusRejected, func(p *models.WorkPlan) {
		p.RejectionComment = comment
	})
}

func (s *Store) transition(id string, to models.PlanStatus, apply func(*models.WorkPlan)) (models.WorkPlan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.lookup(id)
	if err != nil {
		return models.WorkPlan{}, err
	}
	// Review decisions only apply to pending plans.
	if p.Status != models.PlanStatusPending || !models.CanTransition(p.Status, to) {
		return models.WorkPlan{}, fmt.Errorf("%w: plan %s is %s, cannot become %s", ErrInvalidTransition, id, p.Status, to)
	}

	from := p.Status
	p.Status = to
	apply(&p)
	p.UpdatedAt = s.now()

	if err := s.commit(p); err != nil {
		return models.WorkPlan{}, err
	}
	logger.Info("plan status changed", "plan", p.ID, "from", from, "status", to)
	return p.Clone(), nil
}

// ToggleExternalSystem flips whether a confirmed plan has been entered in
// the external operations system.
func (s *Store) ToggleExternalSystem(id string) (models.WorkPlan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.lookup(id)
	if err != nil {
		return models.WorkPlan{}, err
	}
	if p.Status != models.PlanStatusConfirmed {
		return models.WorkPlan{}, fmt.Errorf("%w: plan %s is %s, only confirmed plans are tracked externally", ErrInvalidTransition, id, p.Status)
	}

	p.InExternalSystem = !p.InExternalSystem
	p.UpdatedAt = s.now()

	if err := s.commit(p); err != nil {
		return models.WorkPlan{}, err
	}
	logger.Info("plan external flag toggled", "plan", p.ID, "in_external_system", p.InExternalSystem)
	return p.Clone(), nil
}

// Plan returns a copy of the plan with the given id.
func (s *Store) Plan(id string) (models.WorkPlan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lookup(id)
}

// Plans returns copies of every plan in submission order.
func (s *Store) Plans() []models.WorkPlan {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.WorkPlan, len(s.plans))
	for i, p := range s.plans {
		out[i] = p.Clone()
	}
	return out
}

// PlansByStatus returns the plans currently in status.
func (s *Store) PlansByStatus(status models.PlanStatus) []models.WorkPlan {
	var out []models.WorkPlan
	for _, p := range s.Plans() {
		if p.Status == status {
			out = append(out, p)
		}
	}
	return out
}

// Availability returns a copy of the derived blocked dates and weekly counts.
func (s *Store) Availability() availability.Availability {
	return availability.Availability{
		BlockedDates: s.BlockedDates(),
		WeeklyCounts: s.WeeklyCounts(),
	}
}

func (s *Store) BlockedDates() models.DaySet {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(models.DaySet, s.avail.BlockedDates.Len())
	for k := range s.avail.BlockedDates {
		out.Add(k)
	}
	return out
}

func (s *Store) WeeklyCounts() map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]int, len(s.avail.WeeklyCounts))
	for k, v := range s.avail.WeeklyCounts {
		out[k] = v
	}
	return out
}

// blockedExcluding derives blocked dates from every plan except id.
func (s *Store) blockedExcluding(id string) models.DaySet {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if id == "" {
		out := make(models.DaySet, s.avail.BlockedDates.Len())
		for k := range s.avail.BlockedDates {
			out.Add(k)
		}
		return out
	}
	others := make([]models.WorkPlan, 0, len(s.plans))
	for _, p := range s.plans {
		if p.ID != id {
			others = append(others, p)
		}
	}
	return availability.Derive(others).BlockedDates
}

func assignActivityIDs(activities []models.Activity) {
	for i := range activities {
		if activities[i].ID == "" {
			activities[i].ID = uuid.New().String()
		}
	}
}
