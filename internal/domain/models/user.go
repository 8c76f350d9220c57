package models

// User roles. The authoritative enumeration includes the
// business-intelligence role; older rows carrying only the original three
// values remain valid.
const (
	RoleAdmin                = "admin"
	RoleTrader               = "trader"
	RoleBusinessIntelligence = "business_intelligence"
	RoleGuest                = "guest"
)

// User is an API account. TraderName optionally links the account to a
// Trader row for trader-scoped dashboard views.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	Role         string
	TraderName   string
	Activo       bool
}

// ValidRole reports whether r is one of the known role values.
func ValidRole(r string) bool {
	switch r {
	case RoleAdmin, RoleTrader, RoleBusinessIntelligence, RoleGuest:
		return true
	}
	return false
}
