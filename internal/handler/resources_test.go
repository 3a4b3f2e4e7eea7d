package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/iliyamo/crewpay/internal/model"
	"github.com/iliyamo/crewpay/internal/repository"
	"github.com/iliyamo/crewpay/internal/service"
)

type fakeFlights struct {
	filter   model.FlightFilter
	items    []model.Flight
	err      error
	replaced bool
}

func (f *fakeFlights) List(_ context.Context, _ string, filter model.FlightFilter) ([]model.Flight, error) {
	f.filter = filter
	return f.items, f.err
}

func (f *fakeFlights) Get(_ context.Context, _, id string) (*model.Flight, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &model.Flight{ID: id}, nil
}

func (f *fakeFlights) Create(_ context.Context, callerID string, _ service.FlightInput) (*model.Flight, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &model.Flight{ID: "f1", ProfileID: callerID}, nil
}

func (f *fakeFlights) Update(ctx context.Context, callerID, id string, in service.FlightInput) (*model.Flight, error) {
	return f.Get(ctx, callerID, id)
}

func (f *fakeFlights) Replace(ctx context.Context, callerID, id string, in service.FlightInput) (*model.Flight, error) {
	f.replaced = true
	return f.Get(ctx, callerID, id)
}

func (f *fakeFlights) Delete(context.Context, string, string) error { return f.err }

func withID(id string) func(echo.Context, *http.Request) {
	return func(c echo.Context, _ *http.Request) {
		c.Set("user_id", "c1")
		c.SetParamNames("id")
		c.SetParamValues(id)
	}
}

func TestFlights_ListIsNeverNull(t *testing.T) {
	h := NewFlightHandler(&fakeFlights{}, nil)
	rec := do(h.List, http.MethodGet, "", asCaller("c1"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestFlights_ListFilters(t *testing.T) {
	svc := &fakeFlights{}
	h := NewFlightHandler(svc, nil)

	rec := do(h.List, http.MethodGet, "", func(c echo.Context, _ *http.Request) {
		c.QueryParams().Set("month", "3")
		c.QueryParams().Set("year", "2025")
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.FlightFilter{Month: 3, Year: 2025}, svc.filter)

	rec = do(h.List, http.MethodGet, "", func(c echo.Context, _ *http.Request) {
		c.QueryParams().Set("month", "march")
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(h.List, http.MethodGet, "", func(c echo.Context, _ *http.Request) {
		c.QueryParams().Set("month", "13")
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFlights_ErrorMapping(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{repository.ErrNotFound, http.StatusNotFound},
		{&service.ValidationError{Message: "missing fields: date"}, http.StatusBadRequest},
		{errors.New("db gone"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		h := NewFlightHandler(&fakeFlights{err: tc.err}, nil)
		assert.Equal(t, tc.code, do(h.Get, http.MethodGet, "", withID("f9")).Code, tc.err.Error())
		assert.Equal(t, tc.code, do(h.Delete, http.MethodDelete, "", withID("f9")).Code, tc.err.Error())
	}
}

func TestFlights_InternalErrorIsLoggedNotLeaked(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	h := NewFlightHandler(&fakeFlights{err: errors.New("dial tcp 10.0.0.3:3306")}, zap.New(core))

	rec := do(h.Get, http.MethodGet, "", withID("f9"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal error"}`, rec.Body.String())
	assert.Equal(t, 1, logs.Len())
}

func TestFlights_PutReplacesPatchUpdates(t *testing.T) {
	svc := &fakeFlights{}
	h := NewFlightHandler(svc, nil)

	assert.Equal(t, http.StatusOK, do(h.Update, http.MethodPatch, `{"sector":"DXB-BOM"}`, withID("f1")).Code)
	assert.False(t, svc.replaced)
	assert.Equal(t, http.StatusOK, do(h.Update, http.MethodPut, `{"sector":"DXB-BOM"}`, withID("f1")).Code)
	assert.True(t, svc.replaced)
}

func TestFlights_Create(t *testing.T) {
	h := NewFlightHandler(&fakeFlights{}, nil)
	rec := do(h.Create, http.MethodPost, `{"date":"2025-03-14","user":"someone-else"}`, asCaller("c1"))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"user":"c1"`)

	rec = do(h.Create, http.MethodPost, `{"date":"14/03/2025"}`, asCaller("c1"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

type fakeCalcs struct{ err error }

func (f fakeCalcs) List(context.Context, string, int) ([]model.MonthlyCalculation, error) {
	return nil, f.err
}
func (f fakeCalcs) Get(context.Context, string, string) (*model.MonthlyCalculation, error) {
	return nil, f.err
}
func (f fakeCalcs) Create(context.Context, string, service.CalculationInput) (*model.MonthlyCalculation, error) {
	return nil, f.err
}
func (f fakeCalcs) Update(context.Context, string, string, service.CalculationInput) (*model.MonthlyCalculation, error) {
	return nil, f.err
}
func (f fakeCalcs) Replace(context.Context, string, string, service.CalculationInput) (*model.MonthlyCalculation, error) {
	return nil, f.err
}
func (f fakeCalcs) Delete(context.Context, string, string) error { return f.err }

func TestCalculations_DuplicatePeriodIsConflict(t *testing.T) {
	h := NewCalculationHandler(fakeCalcs{err: repository.ErrConflict}, nil)
	rec := do(h.Create, http.MethodPost, `{"month":5,"year":2025}`, asCaller("c1"))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.JSONEq(t, `{"error":"`+periodTaken+`"}`, rec.Body.String())
}

func TestCalculations_List(t *testing.T) {
	h := NewCalculationHandler(fakeCalcs{}, nil)
	rec := do(h.List, http.MethodGet, "", asCaller("c1"))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = do(h.List, http.MethodGet, "", func(c echo.Context, _ *http.Request) {
		c.QueryParams().Set("year", "last")
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

type fakeProfiles struct{ err error }

func (f fakeProfiles) List(context.Context, string) ([]model.Profile, error) { return nil, f.err }
func (f fakeProfiles) Get(context.Context, string, string) (*model.Profile, error) {
	return nil, f.err
}
func (f fakeProfiles) Create(context.Context, string, service.ProfileInput) (*model.Profile, error) {
	return nil, f.err
}
func (f fakeProfiles) Update(context.Context, string, string, service.ProfileInput) (*model.Profile, error) {
	return nil, f.err
}
func (f fakeProfiles) Replace(context.Context, string, string, service.ProfileInput) (*model.Profile, error) {
	return nil, f.err
}
func (f fakeProfiles) Delete(context.Context, string, string) error { return f.err }

func TestProfiles_CreateWhenBound(t *testing.T) {
	h := NewProfileHandler(fakeProfiles{err: service.ErrProfileExists}, nil)
	rec := do(h.Create, http.MethodPost, `{"airline":"EK","position":"CCM"}`, asCaller("c1"))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.JSONEq(t, `{"error":"Profile already exists"}`, rec.Body.String())

	h = NewProfileHandler(fakeProfiles{err: repository.ErrNotFound}, nil)
	assert.Equal(t, http.StatusNotFound, do(h.Get, http.MethodGet, "", withID("other")).Code)
	assert.JSONEq(t, `[]`, do(NewProfileHandler(fakeProfiles{}, nil).List, http.MethodGet, "", asCaller("c1")).Body.String())
}

type fakeSettings struct{ err error }

func (f fakeSettings) List(context.Context, string) ([]model.UserSettings, error) { return nil, f.err }
func (f fakeSettings) Get(context.Context, string, string) (*model.UserSettings, error) {
	return nil, f.err
}
func (f fakeSettings) Create(context.Context, string, service.SettingsInput) (*model.UserSettings, error) {
	return nil, f.err
}
func (f fakeSettings) Update(context.Context, string, string, service.SettingsInput) (*model.UserSettings, error) {
	return nil, f.err
}
func (f fakeSettings) Delete(context.Context, string, string) error { return f.err }

func TestSettings_SecondDocumentIsConflict(t *testing.T) {
	h := NewSettingsHandler(fakeSettings{err: repository.ErrConflict}, nil)
	rec := do(h.Create, http.MethodPost, `{"settings":{"theme":"dark"}}`, asCaller("c1"))
	assert.Equal(t, http.StatusConflict, rec.Code)

	h = NewSettingsHandler(fakeSettings{}, nil)
	assert.Equal(t, http.StatusNoContent, do(h.Delete, http.MethodDelete, "", withID("s1")).Code)
}

func TestHealth(t *testing.T) {
	rec := do(Health, http.MethodGet, "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}
