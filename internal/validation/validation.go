package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/julianstephens/roadplan/internal/models"
	"github.com/julianstephens/roadplan/internal/utils"
)

// FailureKind identifies why an activity or plan was refused
type FailureKind string

const (
	KindMissingRequiredFields FailureKind = "missing_required_fields"
	KindInvalidDateRange      FailureKind = "invalid_date_range"
	KindIncompleteDailyFields FailureKind = "incomplete_daily_fields"
	KindDateRangeBlocked      FailureKind = "date_range_blocked"
	KindNoActivities          FailureKind = "no_activities"
)

var (
	ErrMissingRequiredFields = errors.New("missing required fields")
	ErrInvalidDateRange      = errors.New("invalid date range")
	ErrIncompleteDailyFields = errors.New("incomplete daily fields")
	ErrDateRangeBlocked      = errors.New("date range blocked")
	ErrNoActivities          = errors.New("no activities")
)

var sentinels = map[FailureKind]error{
	KindMissingRequiredFields: ErrMissingRequiredFields,
	KindInvalidDateRange:      ErrInvalidDateRange,
	KindIncompleteDailyFields: ErrIncompleteDailyFields,
	KindDateRangeBlocked:      ErrDateRangeBlocked,
	KindNoActivities:          ErrNoActivities,
}

// IncompleteDay describes one day of an activity lacking required data
type IncompleteDay struct {
	Day     string   // YYYY-MM-DD format
	Label   string   // DD/MM/YYYY format
	Missing []string // empty when no detail was recorded at all
}

// Result is the outcome of a validation. The zero value means success.
type Result struct {
	Kind           FailureKind
	Title          string
	Message        string
	IncompleteDays []IncompleteDay
	BlockedDays    []string // YYYY-MM-DD format
}

// OK returns true if the validation passed
func (r Result) OK() bool {
	return r.Kind == ""
}

// Err converts a failed result into an error wrapping the matching sentinel.
func (r Result) Err() error {
	if r.OK() {
		return nil
	}
	return &Error{Result: r}
}

// IncompleteLabels returns the display labels of the incomplete days, in range order.
func (r Result) IncompleteLabels() []string {
	labels := make([]string, len(r.IncompleteDays))
	for i, d := range r.IncompleteDays {
		labels[i] = d.Label
	}
	return labels
}

// FormatReport returns a human-readable report of the outcome
func (r Result) FormatReport() string {
	if r.OK() {
		return "Activity is valid."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s\n", r.Title, r.Message)
	for _, d := range r.IncompleteDays {
		if len(d.Missing) == 0 {
			fmt.Fprintf(&b, "- %s: no details recorded\n", d.Label)
			continue
		}
		fmt.Fprintf(&b, "- %s: %s\n", d.Label, strings.Join(d.Missing, ", "))
	}
	for _, day := range r.BlockedDays {
		fmt.Fprintf(&b, "- %s is already taken by a confirmed plan\n", utils.LabelForKey(day))
	}
	return b.String()
}

// Error carries a failed Result through error returns.
type Error struct {
	Result Result
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Result.Title, e.Result.Message)
}

func (e *Error) Unwrap() error {
	return sentinels[e.Result.Kind]
}

// AsResult extracts the Result from err, if it carries one.
func AsResult(err error) (Result, bool) {
	var verr *Error
	if errors.As(err, &verr) {
		return verr.Result, true
	}
	return Result{}, false
}

// ValidateActivity decides whether a candidate activity may join a draft plan.
// Checks run in order and stop at the first failing step; the daily field
// step inspects every day before failing so all problem days are reported.
func ValidateActivity(a models.Activity, blocked models.DaySet) Result {
	if strings.TrimSpace(a.Description) == "" || !a.Period.Complete() {
		return Result{
			Kind:    KindMissingRequiredFields,
			Title:   "Required fields",
			Message: "Fill in the activity description and period before adding it.",
		}
	}

	days := a.Period.Days()
	if len(days) == 0 {
		return Result{
			Kind:    KindInvalidDateRange,
			Title:   "Invalid period",
			Message: fmt.Sprintf("The period %s - %s is not a valid date range.", a.Period.From, a.Period.To),
		}
	}

	var incomplete []IncompleteDay
	for _, day := range days {
		key := utils.DayKey(day)
		detail, ok := a.DailyDetails[key]
		if !ok {
			incomplete = append(incomplete, IncompleteDay{Day: key, Label: utils.DayLabel(day)})
			continue
		}
		if missing := detail.MissingFields(); len(missing) > 0 {
			incomplete = append(incomplete, IncompleteDay{Day: key, Label: utils.DayLabel(day), Missing: missing})
		}
	}
	if len(incomplete) > 0 {
		r := Result{
			Kind:           KindIncompleteDailyFields,
			Title:          "Incomplete daily details",
			IncompleteDays: incomplete,
		}
		r.Message = fmt.Sprintf("Fill in every required field for: %s.", strings.Join(r.IncompleteLabels(), ", "))
		return r
	}

	var taken []string
	for _, day := range days {
		if key := utils.DayKey(day); blocked.Has(key) {
			taken = append(taken, key)
		}
	}
	if len(taken) > 0 {
		return Result{
			Kind:        KindDateRangeBlocked,
			Title:       "Blocked dates",
			Message:     "One or more of the selected dates are already blocked by an approved plan.",
			BlockedDays: taken,
		}
	}

	return Result{}
}

// ValidatePlan checks a plan may be submitted.
func ValidatePlan(activities []models.Activity) Result {
	if len(activities) == 0 {
		return Result{
			Kind:    KindNoActivities,
			Title:   "Submission error",
			Message: "Add at least one activity to the plan.",
		}
	}
	return Result{}
}
