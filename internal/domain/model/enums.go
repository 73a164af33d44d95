package model

// CookieStatus is the credential health classification of a monitored account.
type CookieStatus string

const (
	// CookieStatusNormal means the last scrape extracted every required field.
	CookieStatusNormal CookieStatus = "Normal"
	// CookieStatusInvalid means the last scrape failed at transport, extraction, or date parsing.
	CookieStatusInvalid CookieStatus = "Invalid"
)

// Valid reports whether s is one of the known statuses.
func (s CookieStatus) Valid() bool {
	return s == CookieStatusNormal || s == CookieStatusInvalid
}
