package sessions

import (
	"encoding/gob"

	"github.com/donatewisely/donatewisely/internal/auth"
	"github.com/donatewisely/donatewisely/internal/email"
	"github.com/google/uuid"
)

func init() {
	// scs gob-encodes session values.
	gob.Register(User{})
}

// User is the snapshot of the logged in user kept in the session. It is
// taken at login and not refreshed when the user is modified.
type User struct {
	ID            uuid.UUID     `json:"id"`
	Email         email.Address `json:"email"`
	FirstName     string        `json:"fName"`
	LastName      string        `json:"lName"`
	Role          auth.Role     `json:"userRole"`
	Provider      auth.Provider `json:"provider"`
	EmailVerified bool          `json:"emailVerified"`
}

func UserFrom(u auth.User) User {
	return User{
		ID:            u.ID,
		Email:         u.Email,
		FirstName:     u.FirstName,
		LastName:      u.LastName,
		Role:          u.Role,
		Provider:      u.Provider,
		EmailVerified: u.EmailVerified,
	}
}

func (u User) IsPartner() bool {
	return u.Role == auth.RolePartner
}
