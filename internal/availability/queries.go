package availability

import (
	"fmt"
	"sort"
	"time"

	"github.com/julianstephens/roadplan/internal/constants"
	"github.com/julianstephens/roadplan/internal/models"
	"github.com/julianstephens/roadplan/internal/utils"
)

// Filter narrows plan queries. Empty fields match everything.
type Filter struct {
	Status   models.PlanStatus
	WorkType string
}

func (f Filter) Match(plan models.WorkPlan) bool {
	if f.Status != "" && plan.Status != f.Status {
		return false
	}
	if f.WorkType != "" && plan.WorkType != f.WorkType {
		return false
	}
	return true
}

// WeekCount is one row of the weekly dashboard.
type WeekCount struct {
	Bucket string
	Year   int
	Week   int
	Count  int
}

// SortedBuckets orders week counts by year then week number.
// Malformed bucket keys sort last, by key.
func SortedBuckets(counts map[string]int) []WeekCount {
	rows := make([]WeekCount, 0, len(counts))
	var bad []WeekCount
	for bucket, n := range counts {
		year, week, err := utils.ParseWeekBucket(bucket)
		if err != nil {
			bad = append(bad, WeekCount{Bucket: bucket, Count: n})
			continue
		}
		rows = append(rows, WeekCount{Bucket: bucket, Year: year, Week: week, Count: n})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Year != rows[j].Year {
			return rows[i].Year < rows[j].Year
		}
		return rows[i].Week < rows[j].Week
	})
	sort.Slice(bad, func(i, j int) bool { return bad[i].Bucket < bad[j].Bucket })
	return append(rows, bad...)
}

// PlansForWeek returns the confirmed plans counted in the given week bucket.
func PlansForWeek(plans []models.WorkPlan, bucket string) []models.WorkPlan {
	var out []models.WorkPlan
	for _, plan := range plans {
		if plan.Status != models.PlanStatusConfirmed {
			continue
		}
		if b, ok := PlanWeekBucket(plan); ok && b == bucket {
			out = append(out, plan)
		}
	}
	return out
}

// PlansForDate returns plans matching f with any activity covering day.
func PlansForDate(plans []models.WorkPlan, day string, f Filter) []models.WorkPlan {
	var out []models.WorkPlan
	for _, plan := range plans {
		if !f.Match(plan) {
			continue
		}
		if planCovers(plan, day) {
			out = append(out, plan)
		}
	}
	return out
}

func planCovers(plan models.WorkPlan, day string) bool {
	for _, activity := range plan.Activities {
		if !activity.Period.Complete() {
			continue
		}
		// Day keys compare chronologically as strings.
		if activity.Period.From <= day && day <= activity.Period.To {
			return true
		}
	}
	return false
}

// CalendarDay is one cell of a month grid.
type CalendarDay struct {
	Day     string
	InMonth bool
	Plans   []models.WorkPlan
}

// CalendarMonth builds a Sunday-first grid for month (YYYY-MM), starting at the
// week containing the 1st and ending on the last day of the month.
func CalendarMonth(plans []models.WorkPlan, month string, f Filter) ([]CalendarDay, error) {
	first, err := time.Parse(constants.MonthFormat, month)
	if err != nil {
		return nil, fmt.Errorf("invalid month %q (expected YYYY-MM): %w", month, err)
	}
	last := first.AddDate(0, 1, -1)
	start := first.AddDate(0, 0, -int(first.Weekday()))

	var grid []CalendarDay
	for _, d := range utils.DaysBetween(start, last) {
		key := utils.DayKey(d)
		grid = append(grid, CalendarDay{
			Day:     key,
			InMonth: d.Month() == first.Month(),
			Plans:   PlansForDate(plans, key, f),
		})
	}
	return grid, nil
}

// UniqueWorkTypes lists the distinct non-empty work types, sorted.
func UniqueWorkTypes(plans []models.WorkPlan) []string {
	seen := make(map[string]bool)
	var out []string
	for _, plan := range plans {
		if plan.WorkType == "" || seen[plan.WorkType] {
			continue
		}
		seen[plan.WorkType] = true
		out = append(out, plan.WorkType)
	}
	sort.Strings(out)
	return out
}
