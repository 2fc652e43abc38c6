package models

import "github.com/lib/pq"

// Center represents a clinical site that hosts shifts.
type Center struct {
	ID                string         `db:"id" json:"id"`
	Code              string         `db:"code" json:"code"`
	Name              string         `db:"name" json:"name"`
	AllowedShiftCodes pq.StringArray `db:"allowed_shift_codes" json:"allowed_shift_codes"`
	Active            bool           `db:"active" json:"active"`
}

// AllowsShiftCode reports whether the center's catalog accepts the shift code.
func (c Center) AllowsShiftCode(code string) bool {
	for _, allowed := range c.AllowedShiftCodes {
		if allowed == code {
			return true
		}
	}
	return false
}

// CenterFilter narrows center listings.
type CenterFilter struct {
	Search   string
	Active   *bool
	Page     int
	PageSize int
}
