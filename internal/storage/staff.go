package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"karkhana/internal/core"
)

func (r *SQLiteRepository) CreateStaff(ctx context.Context, s core.Staff) (core.Staff, error) {
	if err := s.Validate(); err != nil {
		return core.Staff{}, fmt.Errorf("validate staff: %w", err)
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO staff (name, role, daily_rate_paise, phone) VALUES (?, ?, ?, ?)`,
		s.Name, s.Role, s.DailyRate.Paise, s.Phone)
	if err != nil {
		return core.Staff{}, fmt.Errorf("insert staff: %w", err)
	}
	s.ID, err = res.LastInsertId()
	if err != nil {
		return core.Staff{}, fmt.Errorf("last insert id: %w", err)
	}
	return s, nil
}

func (r *SQLiteRepository) GetStaff(ctx context.Context, id int64) (core.Staff, error) {
	var s core.Staff
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, role, daily_rate_paise, phone FROM staff WHERE id = ?`, id).
		Scan(&s.ID, &s.Name, &s.Role, &s.DailyRate.Paise, &s.Phone)
	if err == sql.ErrNoRows {
		return core.Staff{}, fmt.Errorf("staff %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return core.Staff{}, fmt.Errorf("get staff: %w", err)
	}
	return s, nil
}

func (r *SQLiteRepository) ListStaff(ctx context.Context) ([]core.Staff, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, role, daily_rate_paise, phone FROM staff ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("list staff: %w", err)
	}
	defer rows.Close()

	var out []core.Staff
	for rows.Next() {
		var s core.Staff
		if err := rows.Scan(&s.ID, &s.Name, &s.Role, &s.DailyRate.Paise, &s.Phone); err != nil {
			return nil, fmt.Errorf("scan staff: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) UpdateStaff(ctx context.Context, id int64, s core.Staff) (core.Staff, error) {
	if err := s.Validate(); err != nil {
		return core.Staff{}, fmt.Errorf("validate staff: %w", err)
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE staff SET name = ?, role = ?, daily_rate_paise = ?, phone = ? WHERE id = ?`,
		s.Name, s.Role, s.DailyRate.Paise, s.Phone, id)
	if err != nil {
		return core.Staff{}, fmt.Errorf("update staff: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.Staff{}, fmt.Errorf("staff %d: %w", id, ErrNotFound)
	}
	s.ID = id
	return s, nil
}

func (r *SQLiteRepository) DeleteStaff(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM staff WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete staff: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("staff %d: %w", id, ErrNotFound)
	}
	return nil
}

// MarkAttendance records or overwrites the status for one staff member on
// one day. One row per (staff, date) is enforced by the schema.
func (r *SQLiteRepository) MarkAttendance(ctx context.Context, a core.Attendance) (core.Attendance, error) {
	if err := a.Validate(); err != nil {
		return core.Attendance{}, fmt.Errorf("validate attendance: %w", err)
	}
	if _, err := r.GetStaff(ctx, a.StaffID); err != nil {
		return core.Attendance{}, err
	}
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO staff_attendance (staff_id, date, status) VALUES (?, ?, ?)
		ON CONFLICT (staff_id, date) DO UPDATE SET status = excluded.status`,
		a.StaffID, formatDate(a.Date), a.Status)
	if err != nil {
		return core.Attendance{}, fmt.Errorf("mark attendance: %w", err)
	}
	if id, err := res.LastInsertId(); err == nil && id > 0 {
		a.ID = id
	}
	return a, nil
}

// ListAttendance returns attendance rows for one staff member between from
// and to, inclusive.
func (r *SQLiteRepository) ListAttendance(ctx context.Context, staffID int64, from, to time.Time) ([]core.Attendance, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, staff_id, date, status FROM staff_attendance
		WHERE staff_id = ? AND date >= ? AND date <= ?
		ORDER BY date`,
		staffID, formatDate(from), formatDate(to))
	if err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	defer rows.Close()

	var out []core.Attendance
	for rows.Next() {
		var a core.Attendance
		var dateStr string
		if err := rows.Scan(&a.ID, &a.StaffID, &dateStr, &a.Status); err != nil {
			return nil, fmt.Errorf("scan attendance: %w", err)
		}
		if a.Date, err = parseDate(dateStr); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) CreateAdvance(ctx context.Context, a core.Advance) (core.Advance, error) {
	if err := a.Validate(); err != nil {
		return core.Advance{}, fmt.Errorf("validate advance: %w", err)
	}
	if _, err := r.GetStaff(ctx, a.StaffID); err != nil {
		return core.Advance{}, err
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO staff_advances (staff_id, amount_paise, date, notes) VALUES (?, ?, ?, ?)`,
		a.StaffID, a.Amount.Paise, formatDate(a.Date), a.Notes)
	if err != nil {
		return core.Advance{}, fmt.Errorf("insert advance: %w", err)
	}
	a.ID, err = res.LastInsertId()
	if err != nil {
		return core.Advance{}, fmt.Errorf("last insert id: %w", err)
	}
	return a, nil
}

func (r *SQLiteRepository) ListAdvances(ctx context.Context, staffID int64, from, to time.Time) ([]core.Advance, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, staff_id, amount_paise, date, notes FROM staff_advances
		WHERE staff_id = ? AND date >= ? AND date <= ?
		ORDER BY date, id`,
		staffID, formatDate(from), formatDate(to))
	if err != nil {
		return nil, fmt.Errorf("list advances: %w", err)
	}
	defer rows.Close()

	var out []core.Advance
	for rows.Next() {
		var a core.Advance
		var dateStr string
		if err := rows.Scan(&a.ID, &a.StaffID, &a.Amount.Paise, &dateStr, &a.Notes); err != nil {
			return nil, fmt.Errorf("scan advance: %w", err)
		}
		if a.Date, err = parseDate(dateStr); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) DeleteAdvance(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM staff_advances WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete advance: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("advance %d: %w", id, ErrNotFound)
	}
	return nil
}
