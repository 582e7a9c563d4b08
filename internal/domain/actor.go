package domain

type Role string

const (
	RoleCustomer Role = "CUSTOMER"
	RoleManager  Role = "MANAGER"
	RoleAdmin    Role = "ADMIN"
)

// Actor is the authenticated identity performing an operation. Identity
// management itself lives outside this service; the transport layer hands us
// the resolved claims.
type Actor struct {
	ID    int64
	Email string
	Role  Role
}

func (a Actor) Elevated() bool {
	return a.Role == RoleManager || a.Role == RoleAdmin
}

// CanAccess is the single ownership predicate used by every booking-scoped
// operation: customers reach only their own bookings, elevated roles reach all.
func (a Actor) CanAccess(b *Booking) bool {
	if a.Elevated() {
		return true
	}
	return b != nil && b.CustomerID == a.ID
}
