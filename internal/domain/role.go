package domain

// Role names carried in the user record and the token's role claim.
const (
	RoleUser  = "User"
	RoleAdmin = "Admin"
)
