package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/crewpay/internal/database"
	"github.com/iliyamo/crewpay/internal/model"
	"github.com/iliyamo/crewpay/internal/repository"
)

const (
	minCalculationYear = 1970
	maxCalculationYear = 2100
)

// CalculationInput carries writable fields of a monthly calculation.
type CalculationInput struct {
	Month                   *int     `json:"month"`
	Year                    *int     `json:"year"`
	TotalFlightHours        *float64 `json:"total_flight_hours"`
	FlightPay               *float64 `json:"flight_pay"`
	BasicSalary             *float64 `json:"basic_salary"`
	HousingAllowance        *float64 `json:"housing_allowance"`
	TransportationAllowance *float64 `json:"transportation_allowance"`
	TotalSalary             *float64 `json:"total_salary"`
}

func (in CalculationInput) apply(m *model.MonthlyCalculation) error {
	if in.Month != nil {
		if *in.Month < 1 || *in.Month > 12 {
			return invalid("month must be between 1 and 12")
		}
		m.Month = *in.Month
	}
	if in.Year != nil {
		if *in.Year < minCalculationYear || *in.Year > maxCalculationYear {
			return invalid("year is out of range")
		}
		m.Year = *in.Year
	}
	amounts := []struct {
		src *float64
		dst *float64
	}{
		{in.TotalFlightHours, &m.TotalFlightHours},
		{in.FlightPay, &m.FlightPay},
		{in.BasicSalary, &m.BasicSalary},
		{in.HousingAllowance, &m.HousingAllowance},
		{in.TransportationAllowance, &m.TransportationAllowance},
		{in.TotalSalary, &m.TotalSalary},
	}
	for _, a := range amounts {
		if a.src == nil {
			continue
		}
		if *a.src < 0 {
			return invalid("amounts must not be negative")
		}
		*a.dst = *a.src
	}
	return nil
}

// CalculationService is the scoped gateway for monthly calculations.
type CalculationService struct {
	db     database.DBTX
	stores repository.Stores
	binder *Binder
	now    func() time.Time
}

func NewCalculationService(db database.DBTX, stores repository.Stores, binder *Binder) *CalculationService {
	return &CalculationService{db: db, stores: stores, binder: binder, now: func() time.Time { return time.Now().UTC() }}
}

// List returns the caller's calculations, newest month first.  year of 0
// means every year.
func (s *CalculationService) List(ctx context.Context, callerID string, year int) ([]model.MonthlyCalculation, error) {
	p, ok, err := s.binder.scope(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []model.MonthlyCalculation{}, nil
	}
	return s.stores.Calculations(s.db).ListByProfile(ctx, p.ID, year)
}

func (s *CalculationService) Get(ctx context.Context, callerID, id string) (*model.MonthlyCalculation, error) {
	p, ok, err := s.binder.scope(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, repository.ErrNotFound
	}
	return s.stores.Calculations(s.db).GetByIDAndProfile(ctx, id, p.ID)
}

// Create stores a calculation for the caller.  A second calculation for the
// same month and year yields repository.ErrConflict.
func (s *CalculationService) Create(ctx context.Context, callerID string, in CalculationInput) (*model.MonthlyCalculation, error) {
	if in.Month == nil || in.Year == nil {
		return nil, invalid("month and year are required")
	}
	p, ok, err := s.binder.scope(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, repository.ErrNotFound
	}
	now := s.now()
	m := &model.MonthlyCalculation{ID: uuid.NewString(), ProfileID: p.ID, CreatedAt: now, UpdatedAt: now}
	if err := in.apply(m); err != nil {
		return nil, err
	}
	if err := s.stores.Calculations(s.db).Create(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *CalculationService) Update(ctx context.Context, callerID, id string, in CalculationInput) (*model.MonthlyCalculation, error) {
	m, err := s.Get(ctx, callerID, id)
	if err != nil {
		return nil, err
	}
	if err := in.apply(m); err != nil {
		return nil, err
	}
	m.UpdatedAt = s.now()
	if err := s.stores.Calculations(s.db).Update(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// Replace is Update for a full payload; month and year are required.
func (s *CalculationService) Replace(ctx context.Context, callerID, id string, in CalculationInput) (*model.MonthlyCalculation, error) {
	if in.Month == nil || in.Year == nil {
		return nil, invalid("month and year are required")
	}
	return s.Update(ctx, callerID, id, in)
}

func (s *CalculationService) Delete(ctx context.Context, callerID, id string) error {
	p, ok, err := s.binder.scope(ctx, callerID)
	if err != nil {
		return err
	}
	if !ok {
		return repository.ErrNotFound
	}
	return s.stores.Calculations(s.db).DeleteByIDAndProfile(ctx, id, p.ID)
}
