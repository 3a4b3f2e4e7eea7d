package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/crewpay/internal/database"
	"github.com/iliyamo/crewpay/internal/model"
)

// FlightRepo mirrors the `flights` table.  Every query carries the owning
// profile id so a row of another profile is indistinguishable from a
// missing row.
type FlightRepo struct{ DB database.DBTX }

func NewFlightRepo(db database.DBTX) *FlightRepo { return &FlightRepo{DB: db} }

const flightColumns = `id, profile_id, date, flight_number, sector, reporting_time, debriefing_time,
	hours, pay, is_outbound, is_turnaround, is_layover, is_asby, month, year, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFlight(s rowScanner, f *model.Flight) error {
	return s.Scan(&f.ID, &f.ProfileID, &f.Date, &f.FlightNumber, &f.Sector, &f.ReportingTime, &f.DebriefingTime,
		&f.Hours, &f.Pay, &f.IsOutbound, &f.IsTurnaround, &f.IsLayover, &f.IsASBY, &f.Month, &f.Year,
		&f.CreatedAt, &f.UpdatedAt)
}

// ListByProfile returns the profile's flights ordered by date.  Non-zero
// filter fields narrow the result to one month and/or year.
func (r *FlightRepo) ListByProfile(ctx context.Context, profileID string, f model.FlightFilter) ([]model.Flight, error) {
	var (
		where = []string{"profile_id = ?"}
		args  = []any{profileID}
	)
	if f.Year > 0 {
		where = append(where, "year = ?")
		args = append(args, f.Year)
	}
	if f.Month > 0 {
		where = append(where, "month = ?")
		args = append(args, f.Month)
	}
	q := "SELECT " + flightColumns + " FROM flights WHERE " + strings.Join(where, " AND ") + " ORDER BY date, id"
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Flight, 0)
	for rows.Next() {
		var fl model.Flight
		if err := scanFlight(rows, &fl); err != nil {
			return nil, err
		}
		out = append(out, fl)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByIDAndProfile fetches a flight only if it belongs to profileID.
func (r *FlightRepo) GetByIDAndProfile(ctx context.Context, id, profileID string) (*model.Flight, error) {
	var fl model.Flight
	err := scanFlight(r.DB.QueryRowContext(ctx,
		"SELECT "+flightColumns+" FROM flights WHERE id = ? AND profile_id = ?", id, profileID), &fl)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &fl, nil
}

// Create inserts a flight.  Month and Year are taken from Date.
func (r *FlightRepo) Create(ctx context.Context, f *model.Flight) error {
	f.SyncPeriod()
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO flights (id, profile_id, date, flight_number, sector, reporting_time, debriefing_time,
		 hours, pay, is_outbound, is_turnaround, is_layover, is_asby, month, year, created_at, updated_at)
		 VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		f.ID, f.ProfileID, f.Date, f.FlightNumber, f.Sector, f.ReportingTime, f.DebriefingTime,
		f.Hours, f.Pay, f.IsOutbound, f.IsTurnaround, f.IsLayover, f.IsASBY, f.Month, f.Year, f.CreatedAt, f.UpdatedAt)
	return err
}

// Update rewrites every mutable column of a flight owned by f.ProfileID.
// It returns ErrNotFound when no row matches id and owner.
func (r *FlightRepo) Update(ctx context.Context, f *model.Flight) error {
	f.SyncPeriod()
	res, err := r.DB.ExecContext(ctx,
		`UPDATE flights SET date=?, flight_number=?, sector=?, reporting_time=?, debriefing_time=?,
		 hours=?, pay=?, is_outbound=?, is_turnaround=?, is_layover=?, is_asby=?, month=?, year=?, updated_at=?
		 WHERE id=? AND profile_id=?`,
		f.Date, f.FlightNumber, f.Sector, f.ReportingTime, f.DebriefingTime,
		f.Hours, f.Pay, f.IsOutbound, f.IsTurnaround, f.IsLayover, f.IsASBY, f.Month, f.Year, f.UpdatedAt,
		f.ID, f.ProfileID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteByIDAndProfile removes a flight owned by profileID.
func (r *FlightRepo) DeleteByIDAndProfile(ctx context.Context, id, profileID string) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM flights WHERE id=? AND profile_id=?", id, profileID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
