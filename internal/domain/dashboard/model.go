package dashboard

// PatientStats summarizes a patient's appointment history.
type PatientStats struct {
	TotalAppointments     int `json:"total_appointments"`
	CompletedAppointments int `json:"completed_appointments"`
	UpcomingCount         int `json:"upcoming_count"`
}

// DoctorStats summarizes a doctor's workload.
type DoctorStats struct {
	TodayAppointments   int `json:"today_appointments"`
	PendingAppointments int `json:"pending_appointments"`
	TotalPatients       int `json:"total_patients"`
}

// AdminStats summarizes the whole clinic.
type AdminStats struct {
	TotalUsers        int `json:"total_users"`
	TotalDoctors      int `json:"total_doctors"`
	TotalPatients     int `json:"total_patients"`
	TotalAppointments int `json:"total_appointments"`
	TodayAppointments int `json:"today_appointments"`
}
