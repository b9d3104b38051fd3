package auth

// Claims es la identidad extraída del token del staff.
type Claims struct {
	UserID   string
	Email    string
	TenantID string
}
