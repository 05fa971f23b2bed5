package models

import (
	"strings"

	"github.com/julianstephens/roadplan/internal/constants"
)

type DailyDetail struct {
	FullDay              bool     `json:"full_day"`
	TimeStart            string   `json:"time_start,omitempty"` // HH:MM format
	TimeEnd              string   `json:"time_end,omitempty"`   // HH:MM format
	ProfileType          string   `json:"profile_type,omitempty"`
	WorkTypes            []string `json:"work_types,omitempty"`
	PkStart              string   `json:"pk_start,omitempty"`
	PkEnd                string   `json:"pk_end,omitempty"`
	KmStart              string   `json:"km_start,omitempty"`
	KmEnd                string   `json:"km_end,omitempty"`
	Directions           []string `json:"directions,omitempty"`
	Lanes                []string `json:"lanes,omitempty"`
	RefCode              string   `json:"ref_code,omitempty"`
	OtherLocations       []string `json:"other_locations,omitempty"`
	InterventionLocation string   `json:"intervention_location,omitempty"`
	Restrictions         string   `json:"restrictions,omitempty"`
	Scheme               string   `json:"scheme,omitempty"`
	Notes                string   `json:"notes,omitempty"`
	ResponsibleName      string   `json:"responsible_name,omitempty"`
	ResponsibleContact   string   `json:"responsible_contact,omitempty"`
}

// Names of the per-day fields that must be filled before an activity is accepted.
const (
	FieldTimeStart            = "time_start"
	FieldTimeEnd              = "time_end"
	FieldPkStart              = "pk_start"
	FieldPkEnd                = "pk_end"
	FieldKmStart              = "km_start"
	FieldKmEnd                = "km_end"
	FieldDirections           = "directions"
	FieldProfileType          = "profile_type"
	FieldWorkTypes            = "work_types"
	FieldInterventionLocation = "intervention_location"
	FieldRestrictions         = "restrictions"
	FieldScheme               = "scheme"
	FieldNotes                = "notes"
)

// SetFullDay toggles the full-day flag. Turning it on fills the whole-day
// window; turning it off clears the times so they must be entered again.
func (d *DailyDetail) SetFullDay(on bool) {
	d.FullDay = on
	if on {
		d.TimeStart = constants.FullDayStart
		d.TimeEnd = constants.FullDayEnd
		return
	}
	d.TimeStart = ""
	d.TimeEnd = ""
}

// MissingFields returns the required fields that are empty after trimming,
// in a stable order. Full-day entries are exempt from the time window.
func (d DailyDetail) MissingFields() []string {
	var missing []string
	check := func(name, value string) {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}
	checkList := func(name string, values []string) {
		for _, v := range values {
			if strings.TrimSpace(v) != "" {
				return
			}
		}
		missing = append(missing, name)
	}

	if !d.FullDay {
		check(FieldTimeStart, d.TimeStart)
		check(FieldTimeEnd, d.TimeEnd)
	}
	check(FieldPkStart, d.PkStart)
	check(FieldPkEnd, d.PkEnd)
	check(FieldKmStart, d.KmStart)
	check(FieldKmEnd, d.KmEnd)
	checkList(FieldDirections, d.Directions)
	check(FieldProfileType, d.ProfileType)
	checkList(FieldWorkTypes, d.WorkTypes)
	check(FieldInterventionLocation, d.InterventionLocation)
	check(FieldRestrictions, d.Restrictions)
	check(FieldScheme, d.Scheme)
	check(FieldNotes, d.Notes)
	return missing
}

func (d DailyDetail) Clone() DailyDetail {
	out := d
	out.WorkTypes = cloneStrings(d.WorkTypes)
	out.Directions = cloneStrings(d.Directions)
	out.Lanes = cloneStrings(d.Lanes)
	out.OtherLocations = cloneStrings(d.OtherLocations)
	return out
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s...)
}
