package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/crewpay/internal/database"
	"github.com/iliyamo/crewpay/internal/model"
)

// CalculationRepo mirrors the `monthly_calculations` table.
type CalculationRepo struct{ DB database.DBTX }

func NewCalculationRepo(db database.DBTX) *CalculationRepo { return &CalculationRepo{DB: db} }

const calculationColumns = `id, profile_id, month, year, total_flight_hours, flight_pay, basic_salary,
	housing_allowance, transportation_allowance, total_salary, created_at, updated_at`

func scanCalculation(s rowScanner, m *model.MonthlyCalculation) error {
	return s.Scan(&m.ID, &m.ProfileID, &m.Month, &m.Year, &m.TotalFlightHours, &m.FlightPay, &m.BasicSalary,
		&m.HousingAllowance, &m.TransportationAllowance, &m.TotalSalary, &m.CreatedAt, &m.UpdatedAt)
}

// ListByProfile returns the profile's calculations, newest period first.
// A positive year restricts the listing to that year.
func (r *CalculationRepo) ListByProfile(ctx context.Context, profileID string, year int) ([]model.MonthlyCalculation, error) {
	q := "SELECT " + calculationColumns + " FROM monthly_calculations WHERE profile_id = ?"
	args := []any{profileID}
	if year > 0 {
		q += " AND year = ?"
		args = append(args, year)
	}
	q += " ORDER BY year DESC, month DESC"

	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.MonthlyCalculation, 0)
	for rows.Next() {
		var m model.MonthlyCalculation
		if err := scanCalculation(rows, &m); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByIDAndProfile fetches a calculation only if it belongs to profileID.
func (r *CalculationRepo) GetByIDAndProfile(ctx context.Context, id, profileID string) (*model.MonthlyCalculation, error) {
	var m model.MonthlyCalculation
	err := scanCalculation(r.DB.QueryRowContext(ctx,
		"SELECT "+calculationColumns+" FROM monthly_calculations WHERE id = ? AND profile_id = ?", id, profileID), &m)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

// Create inserts a calculation.  A second row for the same profile and
// period yields ErrConflict.
func (r *CalculationRepo) Create(ctx context.Context, m *model.MonthlyCalculation) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO monthly_calculations (id, profile_id, month, year, total_flight_hours, flight_pay, basic_salary,
		 housing_allowance, transportation_allowance, total_salary, created_at, updated_at)
		 VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
		m.ID, m.ProfileID, m.Month, m.Year, m.TotalFlightHours, m.FlightPay, m.BasicSalary,
		m.HousingAllowance, m.TransportationAllowance, m.TotalSalary, m.CreatedAt, m.UpdatedAt)
	if _, ok := duplicateKey(err); ok {
		return ErrConflict
	}
	return err
}

// Update rewrites a calculation owned by m.ProfileID.
func (r *CalculationRepo) Update(ctx context.Context, m *model.MonthlyCalculation) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE monthly_calculations SET month=?, year=?, total_flight_hours=?, flight_pay=?, basic_salary=?,
		 housing_allowance=?, transportation_allowance=?, total_salary=?, updated_at=?
		 WHERE id=? AND profile_id=?`,
		m.Month, m.Year, m.TotalFlightHours, m.FlightPay, m.BasicSalary,
		m.HousingAllowance, m.TransportationAllowance, m.TotalSalary, m.UpdatedAt, m.ID, m.ProfileID)
	if err != nil {
		if _, ok := duplicateKey(err); ok {
			return ErrConflict
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteByIDAndProfile removes a calculation owned by profileID.
func (r *CalculationRepo) DeleteByIDAndProfile(ctx context.Context, id, profileID string) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM monthly_calculations WHERE id=? AND profile_id=?", id, profileID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
