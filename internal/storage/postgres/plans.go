package postgres

import (
	"database/sql"
	"errors"
	"fmt"

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
	err = tx.QueryRow("SELECT status FROM plans WHERE id = $1", p.ID).Scan(&prevStatus)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("reading previous status: %w", err)
	}
	statusChanged := errors.Is(err, sql.ErrNoRows) || prevStatus != string(p.Status)

	_, err = tx.Exec(`
		INSERT INTO plans (`+planColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)
		ON CONFLICT(id) DO UPDATE SET
			number = EXCLUDED.number,
			work_type = EXCLUDED.work_type,
			kind = EXCLUDED.kind,
			highway = EXCLUDED.highway,
			status = EXCLUDED.status,
			rejection_comment = EXCLUDED.rejection_comment,
			in_external_system = EXCLUDED.in_external_system,
			km_start = EXCLUDED.km_start,
			km_end = EXCLUDED.km_end,
			fixed_work = EXCLUDED.fixed_work,
			mobile_work = EXCLUDED.mobile_work,
			urgent = EXCLUDED.urgent,
			supervision_name = EXCLUDED.supervision_name,
			supervision_phone = EXCLUDED.supervision_phone,
			contractor_name = EXCLUDED.contractor_name,
			contractor_phone = EXCLUDED.contractor_phone,
			signage_name = EXCLUDED.signage_name,
			signage_phone = EXCLUDED.signage_phone,
			submitted_by = EXCLUDED.submitted_by,
			created_at = EXCLUDED.created_at,
			updated_at = EXCLUDED.updated_at`,
		p.ID, p.Number, p.WorkType, string(p.Kind), p.Highway, string(p.Status), p.RejectionComment,
		p.InExternalSystem, p.KmStart, p.KmEnd, p.FixedWork, p.MobileWork, p.Urgent,
		p.Supervision.Name, p.Supervision.Phone, p.Contractor.Name, p.Contractor.Phone,
		p.Signage.Name, p.Signage.Phone, p.SubmittedBy,
		p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("saving plan: %w", err)
	}

	// Activities are replaced wholesale; daily details cascade.
	if _, err := tx.Exec("DELETE FROM activities WHERE plan_id = $1", p.ID); err != nil {
		return fmt.Errorf("clearing activities: %w", err)
	}

	actStmt, err := tx.Prepare(`
		INSERT INTO activities (plan_id, id, position, description, date_from, date_to,
			pk_start, pk_end, direction, profile, intervention_location, restrictions, scheme, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`)
	if err != nil {
		return err
	}
	defer actStmt.Close()

	dayStmt, err := tx.Prepare(`
		INSERT INTO daily_details (plan_id, activity_id, day, full_day, time_start, time_end,
			profile_type, work_types, pk_start, pk_end, km_start, km_end, directions, lanes,
			ref_code, other_locations, intervention_location, restrictions, scheme, notes,
			responsible_name, responsible_contact)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)`)
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
			"INSERT INTO plan_status_history (plan_id, status, comment, changed_at) VALUES ($1, $2, $3, $4)",
			p.ID, string(p.Status), p.RejectionComment, p.UpdatedAt,
		); err != nil {
			return fmt.Errorf("recording status change: %w", err)
		}
	}

	return tx.Commit()
}

func (s *Store) GetPlan(id string) (models.WorkPlan, error) {
	row := s.db.QueryRow("SELECT "+planColumns+" FROM plans WHERE id = $1", id)
	p, err := scanPlan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.WorkPlan{}, fmt.Errorf("plan %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return models.WorkPlan{}, err
	}

	activities, err := s.loadActivities("WHERE plan_id = $1", id)
	if err != nil {
		return models.WorkPlan{}, err
	}
	details, err := s.loadDetails("WHERE plan_id = $1", id)
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
		"SELECT plan_id, status, comment, changed_at FROM plan_status_history WHERE plan_id = $1 ORDER BY id",
		id,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var history []models.StatusChange
	for rows.Next() {
		var c models.StatusChange
		var status string
		if err := rows.Scan(&c.PlanID, &status, &c.Comment, &c.ChangedAt); err != nil {
			return nil, err
		}
		c.Status = models.PlanStatus(status)
		history = append(history, c)
	}
	return history, rows.Err()
}

func scanPlan(row rowScanner) (models.WorkPlan, error) {
	var p models.WorkPlan
	var kind, status string
	err := row.Scan(
		&p.ID, &p.Number, &p.WorkType, &kind, &p.Highway, &status, &p.RejectionComment,
		&p.InExternalSystem, &p.KmStart, &p.KmEnd, &p.FixedWork, &p.MobileWork, &p.Urgent,
		&p.Supervision.Name, &p.Supervision.Phone, &p.Contractor.Name, &p.Contractor.Phone,
		&p.Signage.Name, &p.Signage.Phone, &p.SubmittedBy, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return models.WorkPlan{}, err
	}
	p.Kind = models.PlanKind(kind)
	p.Status = models.PlanStatus(status)
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
