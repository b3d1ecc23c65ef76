package domain

import "time"

type FlightStatus string

const (
	FlightStatusOnTime    FlightStatus = "ON_TIME"
	FlightStatusDelayed   FlightStatus = "DELAYED"
	FlightStatusDeparted  FlightStatus = "DEPARTED"
	FlightStatusCancelled FlightStatus = "CANCELLED"
)

func (s FlightStatus) Valid() bool {
	switch s {
	case FlightStatusOnTime, FlightStatusDelayed, FlightStatusDeparted, FlightStatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further booking activity is allowed on the flight.
func (s FlightStatus) Terminal() bool {
	return s == FlightStatusDeparted || s == FlightStatusCancelled
}

type Flight struct {
	Number        string
	DepartureTime time.Time
	FareCents     int64
	Status        FlightStatus
	Delay         time.Duration
	// ReportedStatus is nil until the airline has issued a status update for the flight.
	ReportedStatus *FlightStatus
	ReportedAt     *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ActualDeparture is the scheduled departure shifted by the reported delay.
func (f *Flight) ActualDeparture() time.Time {
	return f.DepartureTime.Add(f.Delay)
}

func (f *Flight) StatusReported() bool {
	return f.ReportedStatus != nil
}
