package checkout

import (
	"context"
	"strings"
)

// Contact holds the delivery contact of an order.
type Contact struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Location string `json:"location"`
}

// Missing returns the names of blank fields, in form order.
func (c Contact) Missing() []string {
	var missing []string
	for _, f := range []struct {
		name  string
		value string
	}{
		{"name", c.Name},
		{"email", c.Email},
		{"phone", c.Phone},
		{"location", c.Location},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

func (c Contact) trimmed() Contact {
	return Contact{
		Name:     strings.TrimSpace(c.Name),
		Email:    strings.TrimSpace(c.Email),
		Phone:    strings.TrimSpace(c.Phone),
		Location: strings.TrimSpace(c.Location),
	}
}

// Account is a known identity. Its contact comes from the account and is not
// editable during checkout.
type Account struct {
	UserID  string
	Contact Contact
}

// IdentityProvider reports the identity attached to ctx, if any.
type IdentityProvider interface {
	Identity(ctx context.Context) (Account, bool)
}

// Anonymous never knows the caller.
type Anonymous struct{}

func (Anonymous) Identity(context.Context) (Account, bool) { return Account{}, false }
