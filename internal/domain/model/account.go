package model

import "time"

// Account is a monitored VPS account. ID is assigned by the store on creation and
// never changes. Observational fields are nil/empty until the first successful scrape.
type Account struct {
	ID     int64
	Name   string
	Ops    string // Operator tag.
	Cookie string // Raw session cookie; sensitive.

	ValidUntil   *time.Time
	IP           string
	Location     string
	CreationDate *time.Time
	CookieStatus CookieStatus
	UpdateTime   *time.Time
}

// NewAccount holds the operator-supplied fields for creating an Account.
type NewAccount struct {
	Name   string
	Ops    string
	Cookie string
}

// AccountUpdate is a partial update. Nil fields are left unchanged.
type AccountUpdate struct {
	Name   *string
	Ops    *string
	Cookie *string
}

// IsEmpty reports whether the update changes nothing.
func (u AccountUpdate) IsEmpty() bool {
	return u.Name == nil && u.Ops == nil && u.Cookie == nil
}

// Snapshot is the observational data recorded by a successful scrape.
type Snapshot struct {
	ValidUntil   *time.Time
	IP           string
	Location     string
	CreationDate *time.Time
	ObservedAt   time.Time
}

// WithSnapshot returns a copy of a with s merged in. ValidUntil and IP are always
// overwritten. Location and CreationDate are sticky: an absent new value keeps the
// previously stored one, so a transient extraction miss cannot erase known data.
func (a Account) WithSnapshot(s Snapshot) Account {
	a.ValidUntil = s.ValidUntil
	a.IP = s.IP
	a.Location = mergeString(a.Location, s.Location)
	a.CreationDate = mergeTime(a.CreationDate, s.CreationDate)
	a.CookieStatus = CookieStatusNormal
	observed := s.ObservedAt
	a.UpdateTime = &observed
	return a
}

// WithFailure returns a copy of a marked invalid at observedAt. All other
// observational fields are left untouched.
func (a Account) WithFailure(observedAt time.Time) Account {
	a.CookieStatus = CookieStatusInvalid
	a.UpdateTime = &observedAt
	return a
}

func mergeString(old, next string) string {
	if next == "" {
		return old
	}
	return next
}

func mergeTime(old, next *time.Time) *time.Time {
	if next == nil {
		return old
	}
	return next
}
