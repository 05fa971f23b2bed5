package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/roadplan/internal/models"
	"github.com/julianstephens/roadplan/internal/storage"
)

const planColumns = `id, number, work_type, kind, highway, status, rejection_comment,
	in_external_system, km_start, km_end, fixed_work, mobile_work, urgent,
	supervision_name, supervision_phone, contractor_name, contractor_phone,
	signage_name, signage_phone, submitted_by, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *Store) SavePlan(p models.WorkPlan) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var prevStatus string
	err = tx.QueryRow("SELECT status FROM plans WHERE id = ?", p.ID).Scan(&prevStatus)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("reading previous status: %w", err)
	}
	statusChanged := errors.Is(err, sql.ErrNoRows) || prevStatus != string(p.Status)

	_, err = tx.Exec(`
		INSERT INTO plans (`+planColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			number = excluded.number,
			work_type = excluded.work_type,
			kind = excluded.kind,
			highway = excluded.highway,
			status = excluded.status,
			rejection_comment = excluded.rejection_comment,
			in_external_system = excluded.in_external_system,
			km_start = excluded.km_start,
			km_end = excluded.km_end,
			fixed_work = excluded.fixed_work,
			mobile_work = excluded.mobile_work,
			urgent = excluded.urgent,
			supervision_name = excluded.supervision_name,
			supervision_phone = excluded.supervision_phone,
			contractor_name = excluded.contractor_name,
			contractor_phone = excluded.contractor_phone,
			signage_name = excluded.signage_name,
			signage_phone = excluded.signage_phone,
			submitted_by = excluded.submitted_by,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at`,
		p.ID, p.Number, p.WorkType, string(p.Kind), p.Highway, string(p.Status), p.RejectionComment,
		p.InExternalSystem, p.KmStart, p.KmEnd, p.FixedWork, p.MobileWork, p.Urgent,
		p.Supervision.Name, p.Supervision.Phone, p.Contractor.Name, p.Contractor.Phone,
		p.Signage.Name, p.Signage.Phone, p.SubmittedBy,
		p.CreatedAt.Format(time.RFC3339Nano), p.UpdatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("saving plan: %w", err)
	}

	// Activities are replaced wholesale; daily details cascade.
	if _, err := tx.Exec("DELETE FROM activities WHERE plan_id = ?", p.ID); err != nil {
		return fmt.Errorf("clearing activities: %w", err)
	}

	actStmt, err := tx.Prepare(`
		INSERT INTO activities (plan_id, id, position, description, date_from, date_to,
			pk_start, pk_end, direction, profile, intervention_location, restrictions, scheme, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer actStmt.Close()

	dayStmt, err := tx.Prepare(`
		INSERT INTO daily_details (plan_id, activity_id, day, full_day, time_start, time_end,
			profile_type, work_types, pk_start, pk_end, km_start, km_end, directions, lanes,
			ref_code, other_locations, intervention_location, restrictions, scheme, notes,
			responsible_name, responsible_contact)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer dayStmt.Close()

	for i, a := range p.Activities {
		if _, err := actStmt.Exec(p.ID, a.ID, i, a.Description, a.Period.From, a.Period.To,
			a.PkStart, a.PkEnd, a.Direction, a.Profile, a.InterventionLocation,
			a.Restrictions, a.Scheme, a.Notes); err != nil {
			return fmt.Errorf("saving activity %s: %w", a.ID, err)
		}
		for day, d := range a.DailyDetails {
			workTypes, err := storage.EncodeList(d.WorkTypes)
			if err != nil {
				return err
			}
			directions, err := storage.EncodeList(d.Directions)
			if err != nil {
				return err
			}
			lanes, err := storage.EncodeList(d.Lanes)
			if err != nil {
				return err
			}
			others, err := storage.EncodeList(d.OtherLocations)
			if err != nil {
				return err
			}
			if _, err := dayStmt.Exec(p.ID, a.ID, day, d.FullDay, d.TimeStart, d.TimeEnd,
				d.ProfileType, workTypes, d.PkStart, d.PkEnd, d.KmStart, d.KmEnd, directions, lanes,
				d.RefCode, others, d.InterventionLocation, d.Restrictions, d.Scheme, d.Notes,
				d.ResponsibleName, d.ResponsibleContact); err != nil {
				return fmt.Errorf("saving daily detail %s/%s: %w", a.ID, day, err)
			}
		}
	}

	if statusChanged {
		if _, err := tx.Exec(
			"INSERT INTO plan_status_history (plan_id, status, comment, changed_at) VALUES (?, ?, ?, ?)",
			p.ID, string(p.Status), p.RejectionComment, p.UpdatedAt.Format(time.RFC3339Nano),
		); err != nil {
			return fmt.Errorf("recording status change: %w", err)
		}
	}

	return tx.Commit()
}

func (s *Store) GetPlan(id string) (models.WorkPlan, error) {
	row := s.db.QueryRow("SELECT "+planColumns+" FROM plans WHERE id = ?", id)
	p, err := scanPlan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.WorkPlan{}, fmt.Errorf("plan %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return models.WorkPlan{}, err
	}

	activities, err := s.loadActivities("WHERE plan_id = ?", id)
	if err != nil {
		return models.WorkPlan{}, err
	}
	details, err := s.loadDetails("WHERE plan_id = ?", id)
	if err != nil {
		return models.WorkPlan{}, err
	}
	return storage.Assemble([]models.WorkPlan{p}, activities, details)[0], nil
}

func (s *Store) GetAllPlans() ([]models.WorkPlan, error) {
	rows, err := s.db.Query("SELECT " + planColumns + " FROM plans ORDER BY created_at, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var plans []models.WorkPlan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		plans = append(plans, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	activities, err := s.loadActivities("")
	if err != nil {
		return nil, err
	}
	details, err := s.loadDetails("")
	if err != nil {
		return nil, err
	}
	return storage.Assemble(plans, activities, details), nil
}

func (s *Store) GetPlanHistory(id string) ([]models.StatusChange, error) {
	rows, err := s.db.Query(
		"SELECT plan_id, status, comment, changed_at FROM plan_status_history WHERE plan_id = ? ORDER BY id",
		id,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var history []models.StatusChange
	for rows.Next() {
		var c models.StatusChange
		var status, changedAt string
		if err := rows.Scan(&c.PlanID, &status, &c.Comment, &changedAt); err != nil {
			return nil, err
		}
		c.Status = models.PlanStatus(status)
		if c.ChangedAt, err = time.Parse(time.RFC3339Nano, changedAt); err != nil {
			return nil, fmt.Errorf("parsing changed_at: %w", err)
		}
		history = append(history, c)
	}
	return history, rows.Err()
}

func scanPlan(row rowScanner) (models.WorkPlan, error) {
	var p models.WorkPlan
	var kind, status, createdAt, updatedAt string
	err := row.Scan(
		&p.ID, &p.Number, &p.WorkType, &kind, &p.Highway, &status, &p.RejectionComment,
		&p.InExternalSystem, &p.KmStart, &p.KmEnd, &p.FixedWork, &p.MobileWork, &p.Urgent,
		&p.Supervision.Name, &p.Supervision.Phone, &p.Contractor.Name, &p.Contractor.Phone,
		&p.Signage.Name, &p.Signage.Phone, &p.SubmittedBy, &createdAt, &updatedAt,
	)
	if err != nil {
		return models.WorkPlan{}, err
	}
	p.Kind = models.PlanKind(kind)
	p.Status = models.PlanStatus(status)
	if p.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return models.WorkPlan{}, fmt.Errorf("parsing created_at: %w", err)
	}
	if p.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return models.WorkPlan{}, fmt.Errorf("parsing updated_at: %w", err)
	}
	return p, nil
}

func (s *Store) loadActivities(where string, args ...any) (map[string][]models.Activity, error) {
	rows, err := s.db.Query(`
		SELECT plan_id, id, description, date_from, date_to, pk_start, pk_end, direction,
			profile, intervention_location, restrictions, scheme, notes
		FROM activities `+where+` ORDER BY plan_id, position`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string][]models.Activity)
	for rows.Next() {
		var planID string
		var a models.Activity
		if err := rows.Scan(&planID, &a.ID, &a.Description, &a.Period.From, &a.Period.To,
			&a.PkStart, &a.PkEnd, &a.Direction, &a.Profile, &a.InterventionLocation,
			&a.Restrictions, &a.Scheme, &a.Notes); err != nil {
			return nil, err
		}
		out[planID] = append(out[planID], a)
	}
	return out, rows.Err()
}

func (s *Store) loadDetails(where string, args ...any) (map[[2]string]map[string]models.DailyDetail, error) {
	rows, err := s.db.Query(`
		SELECT plan_id, activity_id, day, full_day, time_start, time_end, profile_type,
			work_types, pk_start, pk_end, km_start, km_end, directions, lanes, ref_code,
			other_locations, intervention_location, restrictions, scheme, notes,
			responsible_name, responsible_contact
		FROM daily_details `+where, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[[2]string]map[string]models.DailyDetail)
	for rows.Next() {
		var planID, activityID, day string
		var workTypes, directions, lanes, others string
		var d models.DailyDetail
		if err := rows.Scan(&planID, &activityID, &day, &d.FullDay, &d.TimeStart, &d.TimeEnd,
			&d.ProfileType, &workTypes, &d.PkStart, &d.PkEnd, &d.KmStart, &d.KmEnd,
			&directions, &lanes, &d.RefCode, &others, &d.InterventionLocation,
			&d.Restrictions, &d.Scheme, &d.Notes, &d.ResponsibleName, &d.ResponsibleContact); err != nil {
			return nil, err
		}
		var err error
		if d.WorkTypes, err = storage.DecodeList(workTypes); err != nil {
			return nil, err
		}
		if d.Directions, err = storage.DecodeList(directions); err != nil {
			return nil, err
		}
		if d.Lanes, err = storage.DecodeList(lanes); err != nil {
			return nil, err
		}
		if d.OtherLocations, err = storage.DecodeList(others); err != nil {
			return nil, err
		}
		key := [2]string{planID, activityID}
		if out[key] == nil {
			out[key] = make(map[string]models.DailyDetail)
		}
		out[key][day] = d
	}
	return out, rows.Err()
}
