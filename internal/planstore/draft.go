package planstore

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/julianstephens/roadplan/internal/logger"
	"github.com/julianstephens/roadplan/internal/models"
	"github.com/julianstephens/roadplan/internal/validation"
)

// Draft is a provider's editable plan. Activities are validated as they
// are added; nothing reaches the store until Submit.
type Draft struct {
	store      *Store
	planID     string
	header     models.WorkPlan
	activities []models.Activity
}

// NewDraft starts a draft for a brand new plan.
func (s *Store) NewDraft(header models.WorkPlan) *Draft {
	h := header.Clone()
	h.Activities = nil
	return &Draft{store: s, header: h}
}

// EditDraft starts a draft pre-filled from an existing plan. Submitting it resubmits the plan.
func (s *Store) EditDraft(id string) (*Draft, error) {
	p, err := s.Plan(id)
	if err != nil {
		return nil, err
	}
	activities := p.Activities
	p.Activities = nil
	return &Draft{store: s, planID: id, header: p, activities: activities}, nil
}

// PlanID is the id of the plan being edited, empty for a new plan.
func (d *Draft) PlanID() string {
	return d.planID
}

func (d *Draft) Header() models.WorkPlan {
	return d.header.Clone()
}

// SetHeader replaces the plan-level fields. Activities are kept.
func (d *Draft) SetHeader(h models.WorkPlan) {
	d.header = h.Clone()
	d.header.Activities = nil
}

// Activities returns copies of the draft's activities in order.
func (d *Draft) Activities() []models.Activity {
	out := make([]models.Activity, len(d.activities))
	for i, a := range d.activities {
		out[i] = a.Clone()
	}
	return out
}

// BlockedDates are the days unavailable to this draft. A plan being edited
// does not block its own dates.
func (d *Draft) BlockedDates() models.DaySet {
	return d.store.blockedExcluding(d.planID)
}

func (d *Draft) validate(a models.Activity) error {
	result := validation.ValidateActivity(a, d.BlockedDates())
	if !result.OK() {
		logger.Debug("activity refused", "kind", result.Kind, "description", a.Description)
		return result.Err()
	}
	return nil
}

// AddActivity validates a and appends it, assigning an id when absent.
func (d *Draft) AddActivity(a models.Activity) (models.Activity, error) {
	a = a.Clone()
	if err := d.validate(a); err != nil {
		return models.Activity{}, err
	}
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	for _, existing := range d.activities {
		if existing.ID == a.ID {
			return models.Activity{}, fmt.Errorf("activity %s already in draft", a.ID)
		}
	}
	d.activities = append(d.activities, a)
	return a.Clone(), nil
}

// UpdateActivity replaces the activity with the same id after validating it.
func (d *Draft) UpdateActivity(a models.Activity) error {
	i := d.find(a.ID)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrActivityNotFound, a.ID)
	}
	a = a.Clone()
	if err := d.validate(a); err != nil {
		return err
	}
	d.activities[i] = a
	return nil
}

func (d *Draft) RemoveActivity(id string) error {
	i := d.find(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrActivityNotFound, id)
	}
	d.activities = append(d.activities[:i], d.activities[i+1:]...)
	return nil
}

func (d *Draft) find(id string) int {
	for i, a := range d.activities {
		if a.ID == id {
			return i
		}
	}
	return -1
}

// Submit hands the draft to the store: a new plan is submitted, an edited
// one is resubmitted. The draft stays usable if the store refuses it.
func (d *Draft) Submit() (models.WorkPlan, error) {
	plan := d.header.Clone()
	plan.Activities = d.Activities()

	if d.planID == "" {
		p, err := d.store.Submit(plan)
		if err != nil {
			return models.WorkPlan{}, err
		}
		d.planID = p.ID
		return p, nil
	}
	return d.store.Resubmit(d.planID, plan)
}
