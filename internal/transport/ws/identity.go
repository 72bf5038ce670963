package ws

import (
	"errors"
	"net/url"
)

var ErrMissingIdentity = errors.New("missing_identity")

// Identity is everything one connection is parameterised by. A change of any field means a new connection.
type Identity struct {
	CashierID string
	Token     string
	SessionID string
}

func (id Identity) Validate() error {
	if id.CashierID == "" || id.Token == "" {
		return ErrMissingIdentity
	}
	return nil
}

func (id Identity) dialURL(base string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("cashierId", id.CashierID)
	q.Set("token", id.Token)
	q.Set("type", "cashier")
	if id.SessionID != "" {
		q.Set("s", id.SessionID)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
