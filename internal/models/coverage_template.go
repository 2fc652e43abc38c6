package models

// CoverageTemplate declares the minimum staffing required for a (center, shift)
// pair on every calendar day of any schedule.
type CoverageTemplate struct {
	ID          string `db:"id" json:"id"`
	CenterID    string `db:"center_id" json:"center_id"`
	ShiftID     string `db:"shift_id" json:"shift_id"`
	MinDoctors  int    `db:"min_doctors" json:"min_doctors"`
	Mandatory   bool   `db:"mandatory" json:"mandatory"`
}

// CoverageTemplateFilter narrows coverage template listings.
type CoverageTemplateFilter struct {
	CenterID string
	ShiftID  string
	Page     int
	PageSize int
}
