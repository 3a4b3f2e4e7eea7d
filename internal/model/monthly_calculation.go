package model

import "time"

// MonthlyCalculation stores the salary breakdown for one profile and one
// calendar month.  (ProfileID, Month, Year) is unique.
type MonthlyCalculation struct {
	ID                      string    `json:"id"`
	ProfileID               string    `json:"user"`
	Month                   int       `json:"month"`
	Year                    int       `json:"year"`
	TotalFlightHours        float64   `json:"total_flight_hours"`
	FlightPay               float64   `json:"flight_pay"`
	BasicSalary             float64   `json:"basic_salary"`
	HousingAllowance        float64   `json:"housing_allowance"`
	TransportationAllowance float64   `json:"transportation_allowance"`
	TotalSalary             float64   `json:"total_salary"`
	CreatedAt               time.Time `json:"created_at"`
	UpdatedAt               time.Time `json:"updated_at"`
}
