package handlers

import (
	"encoding/json"

	"accounthub/internal/domain/user"
)

// Email normalizes itself while decoding, so the email binding rule and
// everything downstream see the canonical trimmed, lower-cased form.
type Email string

func (e *Email) UnmarshalJSON(b []byte) error {
	var s string

	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}

	*e = Email(user.NormalizeEmail(s))

	return nil
}
