// Package plandoc reads and writes work plans as YAML documents, the format
// providers use to prepare a submission outside the TUI.
package plandoc

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/julianstephens/roadplan/internal/models"
	"github.com/julianstephens/roadplan/internal/planstore"
	"github.com/julianstephens/roadplan/internal/utils"
)

// Document is the on-disk shape of a plan.
type Document struct {
	Number      string        `yaml:"number"`
	WorkType    string        `yaml:"work_type"`
	Kind        string        `yaml:"kind,omitempty"`
	Highway     string        `yaml:"highway,omitempty"`
	KmStart     string        `yaml:"km_start,omitempty"`
	KmEnd       string        `yaml:"km_end,omitempty"`
	FixedWork   bool          `yaml:"fixed_work,omitempty"`
	MobileWork  bool          `yaml:"mobile_work,omitempty"`
	Urgent      bool          `yaml:"urgent,omitempty"`
	Supervision ContactDoc    `yaml:"supervision,omitempty"`
	Contractor  ContactDoc    `yaml:"contractor,omitempty"`
	Signage     ContactDoc    `yaml:"signage,omitempty"`
	Activities  []ActivityDoc `yaml:"activities"`

	fullDayStart, fullDayEnd string
}

// SetFullDayWindow overrides the times stored on full-day entries.
func (d *Document) SetFullDayWindow(start, end string) {
	d.fullDayStart, d.fullDayEnd = start, end
}

type ContactDoc struct {
	Name  string `yaml:"name,omitempty"`
	Phone string `yaml:"phone,omitempty"`
}

type ActivityDoc struct {
	ID                   string            `yaml:"id,omitempty"`
	Description          string            `yaml:"description"`
	From                 string            `yaml:"from"` // YYYY-MM-DD format
	To                   string            `yaml:"to"`   // YYYY-MM-DD format
	PkStart              string            `yaml:"pk_start,omitempty"`
	PkEnd                string            `yaml:"pk_end,omitempty"`
	Direction            string            `yaml:"direction,omitempty"`
	Profile              string            `yaml:"profile,omitempty"`
	InterventionLocation string            `yaml:"intervention_location,omitempty"`
	Restrictions         string            `yaml:"restrictions,omitempty"`
	Scheme               string            `yaml:"scheme,omitempty"`
	Notes                string            `yaml:"notes,omitempty"`
	Defaults             *DayDoc           `yaml:"defaults,omitempty"` // applied to every day in the period
	Days                 map[string]DayDoc `yaml:"days,omitempty"`     // per-day overrides, keyed by YYYY-MM-DD
}

type DayDoc struct {
	FullDay              *bool    `yaml:"full_day,omitempty"` // unset inherits from defaults
	TimeStart            string   `yaml:"time_start,omitempty"` // HH:MM format
	TimeEnd              string   `yaml:"time_end,omitempty"`   // HH:MM format
	ProfileType          string   `yaml:"profile_type,omitempty"`
	WorkTypes            []string `yaml:"work_types,omitempty"`
	PkStart              string   `yaml:"pk_start,omitempty"`
	PkEnd                string   `yaml:"pk_end,omitempty"`
	KmStart              string   `yaml:"km_start,omitempty"`
	KmEnd                string   `yaml:"km_end,omitempty"`
	Directions           []string `yaml:"directions,omitempty"`
	Lanes                []string `yaml:"lanes,omitempty"`
	RefCode              string   `yaml:"ref_code,omitempty"`
	OtherLocations       []string `yaml:"other_locations,omitempty"`
	InterventionLocation string   `yaml:"intervention_location,omitempty"`
	Restrictions         string   `yaml:"restrictions,omitempty"`
	Scheme               string   `yaml:"scheme,omitempty"`
	Notes                string   `yaml:"notes,omitempty"`
	ResponsibleName      string   `yaml:"responsible_name,omitempty"`
	ResponsibleContact   string   `yaml:"responsible_contact,omitempty"`
}

// Decode parses a YAML plan document. Unknown keys are rejected.
func Decode(r io.Reader) (*Document, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("plan document is empty")
		}
		return nil, fmt.Errorf("parsing plan document: %w", err)
	}
	return &doc, nil
}

// Load reads a plan document from path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading plan document: %w", err)
	}
	return Decode(bytes.NewReader(data))
}

// Header converts the plan-level fields.
func (d *Document) Header() (models.WorkPlan, error) {
	kind, err := models.ParsePlanKind(d.Kind)
	if err != nil {
		return models.WorkPlan{}, err
	}
	return models.WorkPlan{
		Number:      d.Number,
		WorkType:    d.WorkType,
		Kind:        kind,
		Highway:     d.Highway,
		KmStart:     d.KmStart,
		KmEnd:       d.KmEnd,
		FixedWork:   d.FixedWork,
		MobileWork:  d.MobileWork,
		Urgent:      d.Urgent,
		Supervision: models.Contact(d.Supervision),
		Contractor:  models.Contact(d.Contractor),
		Signage:     models.Contact(d.Signage),
	}, nil
}

// Activities converts every activity, expanding defaults over the period.
func (d *Document) Activities() ([]models.Activity, error) {
	out := make([]models.Activity, 0, len(d.Activities))
	for i, ad := range d.Activities {
		a, err := ad.toModel()
		if err != nil {
			return nil, fmt.Errorf("activity %d: %w", i+1, err)
		}
		if d.fullDayStart != "" && d.fullDayEnd != "" {
			for key, detail := range a.DailyDetails {
				if detail.FullDay {
					detail.TimeStart, detail.TimeEnd = d.fullDayStart, d.fullDayEnd
					a.DailyDetails[key] = detail
				}
			}
		}
		out = append(out, a)
	}
	return out, nil
}

func (ad ActivityDoc) toModel() (models.Activity, error) {
	a := models.Activity{
		ID:                   ad.ID,
		Description:          ad.Description,
		Period:               models.DateRange{From: ad.From, To: ad.To},
		PkStart:              ad.PkStart,
		PkEnd:                ad.PkEnd,
		Direction:            ad.Direction,
		Profile:              ad.Profile,
		InterventionLocation: ad.InterventionLocation,
		Restrictions:         ad.Restrictions,
		Scheme:               ad.Scheme,
		Notes:                ad.Notes,
	}

	for _, field := range []*string{&a.Period.From, &a.Period.To} {
		if *field == "" {
			continue
		}
		day, err := utils.ParseDay(*field)
		if err != nil {
			return models.Activity{}, err
		}
		*field = utils.DayKey(day)
	}

	if ad.Defaults != nil {
		for _, day := range a.Period.Days() {
			a.SetDailyDetail(day, ad.Defaults.toModel())
		}
	}
	for key, dd := range ad.Days {
		day, err := utils.ParseDay(key)
		if err != nil {
			return models.Activity{}, fmt.Errorf("days: %w", err)
		}
		detail := dd.toModel()
		if ad.Defaults != nil {
			detail = merge(ad.Defaults.toModel(), dd)
		}
		a.SetDailyDetail(day, detail)
	}
	return a, nil
}

func (dd DayDoc) toModel() models.DailyDetail {
	d := models.DailyDetail{
		TimeStart:            dd.TimeStart,
		TimeEnd:              dd.TimeEnd,
		ProfileType:          dd.ProfileType,
		WorkTypes:            dd.WorkTypes,
		PkStart:              dd.PkStart,
		PkEnd:                dd.PkEnd,
		KmStart:              dd.KmStart,
		KmEnd:                dd.KmEnd,
		Directions:           dd.Directions,
		Lanes:                dd.Lanes,
		RefCode:              dd.RefCode,
		OtherLocations:       dd.OtherLocations,
		InterventionLocation: dd.InterventionLocation,
		Restrictions:         dd.Restrictions,
		Scheme:               dd.Scheme,
		Notes:                dd.Notes,
		ResponsibleName:      dd.ResponsibleName,
		ResponsibleContact:   dd.ResponsibleContact,
	}
	if dd.FullDay != nil && *dd.FullDay {
		d.SetFullDay(true)
	}
	return d.Clone()
}

// merge overlays the set fields of override onto base. A day that gives its
// own times without a full_day key is no longer full-day.
func merge(base models.DailyDetail, override DayDoc) models.DailyDetail {
	str := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	list := func(dst *[]string, v []string) {
		if len(v) > 0 {
			*dst = v
		}
	}

	out := base.Clone()
	switch {
	case override.FullDay != nil:
		out.SetFullDay(*override.FullDay)
	case override.TimeStart != "" || override.TimeEnd != "":
		out.SetFullDay(false)
	}
	if !out.FullDay {
		str(&out.TimeStart, override.TimeStart)
		str(&out.TimeEnd, override.TimeEnd)
	}
	str(&out.ProfileType, override.ProfileType)
	list(&out.WorkTypes, override.WorkTypes)
	str(&out.PkStart, override.PkStart)
	str(&out.PkEnd, override.PkEnd)
	str(&out.KmStart, override.KmStart)
	str(&out.KmEnd, override.KmEnd)
	list(&out.Directions, override.Directions)
	list(&out.Lanes, override.Lanes)
	str(&out.RefCode, override.RefCode)
	list(&out.OtherLocations, override.OtherLocations)
	str(&out.InterventionLocation, override.InterventionLocation)
	str(&out.Restrictions, override.Restrictions)
	str(&out.Scheme, override.Scheme)
	str(&out.Notes, override.Notes)
	str(&out.ResponsibleName, override.ResponsibleName)
	str(&out.ResponsibleContact, override.ResponsibleContact)
	return out
}

// Fill loads the document into a draft, adding activities in order. It
// stops at the first activity the draft refuses.
func Fill(doc *Document, draft *planstore.Draft) error {
	header, err := doc.Header()
	if err != nil {
		return err
	}
	activities, err := doc.Activities()
	if err != nil {
		return err
	}

	// Activities already in the draft are replaced by the document's.
	for _, existing := range draft.Activities() {
		if err := draft.RemoveActivity(existing.ID); err != nil {
			return err
		}
	}

	current := draft.Header()
	header.SubmittedBy = current.SubmittedBy
	// An edited plan keeps its kind unless the document names one.
	if d := strings.TrimSpace(doc.Kind); d == "" && current.Kind != "" {
		header.Kind = current.Kind
	}
	draft.SetHeader(header)
	for i, a := range activities {
		if _, err := draft.AddActivity(a); err != nil {
			return fmt.Errorf("activity %d (%s): %w", i+1, a.Description, err)
		}
	}
	return nil
}

// FromPlan renders a stored plan as a document, one day entry per detail.
func FromPlan(p models.WorkPlan) *Document {
	doc := &Document{
		Number:      p.Number,
		WorkType:    p.WorkType,
		Kind:        string(p.Kind),
		Highway:     p.Highway,
		KmStart:     p.KmStart,
		KmEnd:       p.KmEnd,
		FixedWork:   p.FixedWork,
		MobileWork:  p.MobileWork,
		Urgent:      p.Urgent,
		Supervision: ContactDoc(p.Supervision),
		Contractor:  ContactDoc(p.Contractor),
		Signage:     ContactDoc(p.Signage),
	}
	for _, a := range p.Activities {
		ad := ActivityDoc{
			ID:                   a.ID,
			Description:          a.Description,
			From:                 a.Period.From,
			To:                   a.Period.To,
			PkStart:              a.PkStart,
			PkEnd:                a.PkEnd,
			Direction:            a.Direction,
			Profile:              a.Profile,
			InterventionLocation: a.InterventionLocation,
			Restrictions:         a.Restrictions,
			Scheme:               a.Scheme,
			Notes:                a.Notes,
		}
		if len(a.DailyDetails) > 0 {
			ad.Days = make(map[string]DayDoc, len(a.DailyDetails))
			for key, d := range a.DailyDetails {
				ad.Days[key] = DayDoc{
					FullDay:              fullDay(d.FullDay),
					TimeStart:            d.TimeStart,
					TimeEnd:              d.TimeEnd,
					ProfileType:          d.ProfileType,
					WorkTypes:            d.WorkTypes,
					PkStart:              d.PkStart,
					PkEnd:                d.PkEnd,
					KmStart:              d.KmStart,
					KmEnd:                d.KmEnd,
					Directions:           d.Directions,
					Lanes:                d.Lanes,
					RefCode:              d.RefCode,
					OtherLocations:       d.OtherLocations,
					InterventionLocation: d.InterventionLocation,
					Restrictions:         d.Restrictions,
					Scheme:               d.Scheme,
					Notes:                d.Notes,
					ResponsibleName:      d.ResponsibleName,
					ResponsibleContact:   d.ResponsibleContact,
				}
			}
		}
		doc.Activities = append(doc.Activities, ad)
	}
	return doc
}

// Encode writes doc as YAML.
func Encode(w io.Writer, doc *Document) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding plan document: %w", err)
	}
	return enc.Close()
}

func fullDay(on bool) *bool {
	if !on {
		return nil
	}
	return &on
}
