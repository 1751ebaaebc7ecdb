package model

// MostUsedNone is the sentinel reported when a category has no rows.
const MostUsedNone = "N/A"

// StatsGroup is one bucket of a category: totals at 2-decimal precision,
// percentage share of the category total.
type StatsGroup struct {
	Key        string  `json:"key"`
	Total      float64 `json:"total"`
	Trips      int64   `json:"trips"`
	Percentage float64 `json:"percentage"`
}

// CategoryStats is always fully populated; an empty match set yields zero
// totals and the MostUsedNone label, never a nil shape.
type CategoryStats struct {
	Groups   []StatsGroup `json:"groups"`
	Total    float64      `json:"total"`
	Trips    int64        `json:"trips"`
	MostUsed string       `json:"most_used"`
}

type Stats struct {
	ReportCount int64         `json:"report_count"`
	Haul        CategoryStats `json:"haul"`
	Materials   CategoryStats `json:"materials"`
	Water       CategoryStats `json:"water"`
	Machinery   CategoryStats `json:"machinery"`
	Personnel   CategoryStats `json:"personnel"`
}
