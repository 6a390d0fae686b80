package domain

import "time"

type Customer struct {
	ID               string
	FirstName        string
	LastName         string
	Email            string
	Region           string
	RegistrationDate time.Time
	CreatedAt        time.Time
	UpdatedAt        *time.Time
}

// CustomerFilter narrows a customer listing. Zero values mean "don't care".
type CustomerFilter struct {
	// Name matches as a case-insensitive substring of first or last name.
	Name string
	// Region matches case-insensitively but exactly.
	Region string
	// RegisteredFrom/RegisteredTo bound the registration date, inclusive.
	RegisteredFrom *time.Time
	RegisteredTo   *time.Time
}

// IsZero reports whether the filter would match everything.
func (f CustomerFilter) IsZero() bool {
	return f.Name == "" && f.Region == "" && f.RegisteredFrom == nil && f.RegisteredTo == nil
}
