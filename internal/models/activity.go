package models

import (
	"time"

	"github.com/julianstephens/roadplan/internal/utils"
)

// DateRange holds canonical day keys (YYYY-MM-DD). An empty endpoint is unset.
type DateRange struct {
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`
}

func NewDateRange(from, to time.Time) DateRange {
	return DateRange{From: utils.DayKey(from), To: utils.DayKey(to)}
}

// Complete reports whether both endpoints are set.
func (r DateRange) Complete() bool {
	return r.From != "" && r.To != ""
}

// Days walks the range inclusively. It returns nil when the range is
// incomplete, unparseable or inverted.
func (r DateRange) Days() []time.Time {
	if !r.Complete() {
		return nil
	}
	from, err := utils.ParseDay(r.From)
	if err != nil {
		return nil
	}
	to, err := utils.ParseDay(r.To)
	if err != nil {
		return nil
	}
	return utils.DaysBetween(from, to)
}

// DayKeys is Days rendered as canonical keys.
func (r DateRange) DayKeys() []string {
	days := r.Days()
	if days == nil {
		return nil
	}
	keys := make([]string, len(days))
	for i, d := range days {
		keys[i] = utils.DayKey(d)
	}
	return keys
}

type Activity struct {
	ID                   string                 `json:"id"`
	Description          string                 `json:"description"`
	Period               DateRange              `json:"period"`
	PkStart              string                 `json:"pk_start,omitempty"`
	PkEnd                string                 `json:"pk_end,omitempty"`
	Direction            string                 `json:"direction,omitempty"`
	Profile              string                 `json:"profile,omitempty"`
	InterventionLocation string                 `json:"intervention_location,omitempty"`
	Restrictions         string                 `json:"restrictions,omitempty"`
	Scheme               string                 `json:"scheme,omitempty"`
	Notes                string                 `json:"notes,omitempty"`
	DailyDetails         map[string]DailyDetail `json:"daily_details,omitempty"` // keyed by YYYY-MM-DD
}

func (a Activity) Clone() Activity {
	out := a
	if a.DailyDetails != nil {
		out.DailyDetails = make(map[string]DailyDetail, len(a.DailyDetails))
		for k, d := range a.DailyDetails {
			out.DailyDetails[k] = d.Clone()
		}
	}
	return out
}

// SetDailyDetail stores a detail under the canonical key for day.
func (a *Activity) SetDailyDetail(day time.Time, d DailyDetail) {
	if a.DailyDetails == nil {
		a.DailyDetails = make(map[string]DailyDetail)
	}
	a.DailyDetails[utils.DayKey(day)] = d
}

// DailyDetail looks up the detail recorded for day.
func (a Activity) DailyDetail(day time.Time) (DailyDetail, bool) {
	d, ok := a.DailyDetails[utils.DayKey(day)]
	return d, ok
}
