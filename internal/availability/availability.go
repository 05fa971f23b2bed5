// Package availability derives the calendar state implied by a set of work
// plans: which days are taken by confirmed plans and how many confirmed
// plans start in each week.
package availability

import (
	"github.com/julianstephens/roadplan/internal/models"
	"github.com/julianstephens/roadplan/internal/utils"
)

type Availability struct {
	BlockedDates models.DaySet
	WeeklyCounts map[string]int
}

// Derive recomputes blocked dates and weekly confirmed counts from scratch.
// Only confirmed plans contribute. Activities missing an endpoint are skipped.
func Derive(plans []models.WorkPlan) Availability {
	out := Availability{
		BlockedDates: models.NewDaySet(),
		WeeklyCounts: make(map[string]int),
	}

	for _, plan := range plans {
		if plan.Status != models.PlanStatusConfirmed {
			continue
		}
		for _, activity := range plan.Activities {
			for _, key := range activity.Period.DayKeys() {
				out.BlockedDates.Add(key)
			}
		}
		if bucket, ok := PlanWeekBucket(plan); ok {
			out.WeeklyCounts[bucket]++
		}
	}

	return out
}

// PlanWeekBucket returns the week bucket of the plan's first activity start.
// Later activities never move a plan to another week.
func PlanWeekBucket(plan models.WorkPlan) (string, bool) {
	if len(plan.Activities) == 0 {
		return "", false
	}
	from := plan.Activities[0].Period.From
	if from == "" {
		return "", false
	}
	day, err := utils.ParseDay(from)
	if err != nil {
		return "", false
	}
	return utils.WeekBucket(day), true
}

// Equal reports whether two derivations hold the same sets and counts.
func (a Availability) Equal(b Availability) bool {
	if a.BlockedDates.Len() != b.BlockedDates.Len() || len(a.WeeklyCounts) != len(b.WeeklyCounts) {
		return false
	}
	for k := range a.BlockedDates {
		if !b.BlockedDates.Has(k) {
			return false
		}
	}
	for k, v := range a.WeeklyCounts {
		if b.WeeklyCounts[k] != v {
			return false
		}
	}
	return true
}
