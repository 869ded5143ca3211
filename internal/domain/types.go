package domain

// ID is used across domain entities.
type ID int64

// Roles known to the back office.
const (
	RoleAdmin    = "admin"
	RoleAcademic = "academic"
	RoleStudent  = "student"
	RoleFinance  = "finance"
)

// RequestContext carries authenticated user info when available.
type RequestContext struct {
	UserID ID     `json:"userId"`
	Role   string `json:"role"`
	Token  string `json:"-"`
}
