package auth

import (
	"context"
	"errors"

	"github.com/Skotchmaster/storefront/internal/hash"
)

var ErrAccountNotFound = errors.New("account not found")

type Account struct {
	Subject
	PasswordHash string
}

type AccountFinder interface {
	FindByUsername(ctx context.Context, username string) (Account, error)
}

type Credentials struct {
	Accounts AccountFinder
}

// Validate reports whether username and password match a stored account.
// Unknown usernames still pay for one bcrypt comparison.
func (c *Credentials) Validate(ctx context.Context, username, password string) (Subject, bool, error) {
	acc, err := c.Accounts.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			hash.BurnCompare(password)
			return Subject{}, false, nil
		}
		return Subject{}, false, err
	}
	if !hash.CheckPassword(acc.PasswordHash, password) {
		return Subject{}, false, nil
	}
	return acc.Subject, true, nil
}
