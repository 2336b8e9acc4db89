package auth

// Claims representa la información extraída del token de un caregiver.
type Claims struct {
	CaregiverID string
	Email       string
	Role        string
}
