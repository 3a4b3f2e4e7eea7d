package model

import "time"

// Flight is a single logged duty.  Month and Year are denormalised from
// Date so monthly listings stay index-only.
type Flight struct {
	ID             string    `json:"id"`
	ProfileID      string    `json:"user"`
	Date           Date      `json:"date"`
	FlightNumber   string    `json:"flight_number"`
	Sector         string    `json:"sector"`
	ReportingTime  string    `json:"reporting_time"`
	DebriefingTime string    `json:"debriefing_time"`
	Hours          float64   `json:"hours"`
	Pay            float64   `json:"pay"`
	IsOutbound     bool      `json:"is_outbound"`
	IsTurnaround   bool      `json:"is_turnaround"`
	IsLayover      bool      `json:"is_layover"`
	IsASBY         bool      `json:"is_asby"`
	Month          int       `json:"month"`
	Year           int       `json:"year"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// SyncPeriod copies the month and year of Date into the denormalised columns.
func (f *Flight) SyncPeriod() {
	f.Month = int(f.Date.Month())
	f.Year = f.Date.Year()
}

// FlightFilter narrows a flight listing.  Zero values mean "any".
type FlightFilter struct {
	Month int
	Year  int
}
