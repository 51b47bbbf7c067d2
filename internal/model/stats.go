package model

// AdminStats is the administrator dashboard aggregate.
type AdminStats struct {
	TotalClinicians   int            `json:"total_clinicians"`
	TotalPatients     int            `json:"total_patients"`
	TotalAppointments int            `json:"total_appointments"`
	Upcoming          []*Appointment `json:"upcoming"`
}
