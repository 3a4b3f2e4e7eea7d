package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/crewpay/internal/database"
	"github.com/iliyamo/crewpay/internal/model"
	"github.com/iliyamo/crewpay/internal/repository"
)

// FlightInput carries writable flight fields.  Nil fields are required on
// create and left unchanged on update.  The owner, month and year are not
// client-writable.
type FlightInput struct {
	Date           *model.Date `json:"date"`
	FlightNumber   *string     `json:"flight_number"`
	Sector         *string     `json:"sector"`
	ReportingTime  *string     `json:"reporting_time"`
	DebriefingTime *string     `json:"debriefing_time"`
	Hours          *float64    `json:"hours"`
	Pay            *float64    `json:"pay"`
	IsOutbound     *bool       `json:"is_outbound"`
	IsTurnaround   *bool       `json:"is_turnaround"`
	IsLayover      *bool       `json:"is_layover"`
	IsASBY         *bool       `json:"is_asby"`
}

func (in FlightInput) validateCreate() error {
	var missing []string
	if in.Date == nil {
		missing = append(missing, "date")
	}
	if in.FlightNumber == nil || strings.TrimSpace(*in.FlightNumber) == "" {
		missing = append(missing, "flight_number")
	}
	if in.Sector == nil || strings.TrimSpace(*in.Sector) == "" {
		missing = append(missing, "sector")
	}
	if in.ReportingTime == nil {
		missing = append(missing, "reporting_time")
	}
	if in.DebriefingTime == nil {
		missing = append(missing, "debriefing_time")
	}
	if in.Hours == nil {
		missing = append(missing, "hours")
	}
	if in.Pay == nil {
		missing = append(missing, "pay")
	}
	if len(missing) > 0 {
		return invalid("missing fields: " + strings.Join(missing, ", "))
	}
	return nil
}

func (in FlightInput) apply(f *model.Flight) error {
	if in.Date != nil {
		f.Date = *in.Date
	}
	if in.FlightNumber != nil {
		f.FlightNumber = strings.TrimSpace(*in.FlightNumber)
	}
	if in.Sector != nil {
		f.Sector = strings.TrimSpace(*in.Sector)
	}
	if in.ReportingTime != nil {
		f.ReportingTime = strings.TrimSpace(*in.ReportingTime)
	}
	if in.DebriefingTime != nil {
		f.DebriefingTime = strings.TrimSpace(*in.DebriefingTime)
	}
	if in.Hours != nil {
		if *in.Hours < 0 {
			return invalid("hours must not be negative")
		}
		f.Hours = *in.Hours
	}
	if in.Pay != nil {
		if *in.Pay < 0 {
			return invalid("pay must not be negative")
		}
		f.Pay = *in.Pay
	}
	if in.IsOutbound != nil {
		f.IsOutbound = *in.IsOutbound
	}
	if in.IsTurnaround != nil {
		f.IsTurnaround = *in.IsTurnaround
	}
	if in.IsLayover != nil {
		f.IsLayover = *in.IsLayover
	}
	if in.IsASBY != nil {
		f.IsASBY = *in.IsASBY
	}
	if f.FlightNumber == "" || f.Sector == "" {
		return invalid("flight_number and sector must not be blank")
	}
	f.SyncPeriod()
	return nil
}

// FlightService is the scoped gateway for flights.
type FlightService struct {
	db     database.DBTX
	stores repository.Stores
	binder *Binder
	now    func() time.Time
}

func NewFlightService(db database.DBTX, stores repository.Stores, binder *Binder) *FlightService {
	return &FlightService{db: db, stores: stores, binder: binder, now: func() time.Time { return time.Now().UTC() }}
}

// List returns the caller's flights; an unbound caller gets an empty slice.
func (s *FlightService) List(ctx context.Context, callerID string, filter model.FlightFilter) ([]model.Flight, error) {
	p, ok, err := s.binder.scope(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []model.Flight{}, nil
	}
	return s.stores.Flights(s.db).ListByProfile(ctx, p.ID, filter)
}

// Get returns one of the caller's flights.
func (s *FlightService) Get(ctx context.Context, callerID, id string) (*model.Flight, error) {
	p, ok, err := s.binder.scope(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, repository.ErrNotFound
	}
	return s.stores.Flights(s.db).GetByIDAndProfile(ctx, id, p.ID)
}

// Create logs a flight for the caller's profile.
func (s *FlightService) Create(ctx context.Context, callerID string, in FlightInput) (*model.Flight, error) {
	if err := in.validateCreate(); err != nil {
		return nil, err
	}
	p, ok, err := s.binder.scope(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, repository.ErrNotFound
	}
	now := s.now()
	f := &model.Flight{ID: uuid.NewString(), ProfileID: p.ID, CreatedAt: now, UpdatedAt: now}
	if err := in.apply(f); err != nil {
		return nil, err
	}
	if err := s.stores.Flights(s.db).Create(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

// Update changes one of the caller's flights.
func (s *FlightService) Update(ctx context.Context, callerID, id string, in FlightInput) (*model.Flight, error) {
	f, err := s.Get(ctx, callerID, id)
	if err != nil {
		return nil, err
	}
	if err := in.apply(f); err != nil {
		return nil, err
	}
	f.UpdatedAt = s.now()
	if err := s.stores.Flights(s.db).Update(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

// Replace is Update for a full payload: every field required on create
// must be present.
func (s *FlightService) Replace(ctx context.Context, callerID, id string, in FlightInput) (*model.Flight, error) {
	if err := in.validateCreate(); err != nil {
		return nil, err
	}
	return s.Update(ctx, callerID, id, in)
}

// Delete removes one of the caller's flights.
func (s *FlightService) Delete(ctx context.Context, callerID, id string) error {
	p, ok, err := s.binder.scope(ctx, callerID)
	if err != nil {
		return err
	}
	if !ok {
		return repository.ErrNotFound
	}
	return s.stores.Flights(s.db).DeleteByIDAndProfile(ctx, id, p.ID)
}
