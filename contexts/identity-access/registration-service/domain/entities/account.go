package entities

import "time"

// RegistrationClass is the terminal class an address registers under.
type RegistrationClass string

const (
	ClassUser     RegistrationClass = "user"
	ClassInstance RegistrationClass = "instance"
)

// Account holds the profile recorded at registration time. User accounts
// carry the fields subscription eligibility reads (age, location);
// instance accounts carry the organization profile.
type Account struct {
	Address      string
	Class        RegistrationClass
	DisplayName  string
	Organization string
	Age          int
	Location     string
	Contact      string
	RegisteredAt time.Time
}
