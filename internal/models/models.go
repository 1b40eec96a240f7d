package models

import "time"

// RosterLimit is the maximum number of players a lineup may hold.
const RosterLimit = 12

// SalaryCap is the league salary cap used for over-cap flagging.
const SalaryCap = 1_463_000.0

// Player represents one athlete in the imported catalog.
// Salary and the percentile fields are optional: nil means the value was
// absent from the import, which is distinct from zero.
type Player struct {
	AthleteID       string   `json:"athleteId"`
	Name            string   `json:"name"`
	Team            string   `json:"team,omitempty"`
	Position        string   `json:"position,omitempty"`
	ContractType    string   `json:"contractType,omitempty"`
	Salary          *float64 `json:"salary,omitempty"`
	TsPercentile    *float64 `json:"tsPercentile,omitempty"`
	UsagePercentile *float64 `json:"usagePercentile,omitempty"`
	DefPercentile   *float64 `json:"defPercentile,omitempty"`
	AstPercentile   *float64 `json:"astPercentile,omitempty"`
}

// Aggregates holds the derived salary/percentile statistics for a lineup.
// A nil *Aggregates means "no analytics" (empty roster), never zeros.
type Aggregates struct {
	TotalSalary float64 `json:"totalSalary"`
	AvgTs       float64 `json:"avgTs"`
	AvgUsage    float64 `json:"avgUsage"`
	AvgDef      float64 `json:"avgDef"`
	AvgAst      float64 `json:"avgAst"`
	OverCap     bool    `json:"overCap"`
	Composition string  `json:"composition"`
	RosterMeta  string  `json:"rosterMeta"`
}

// Snapshot is an immutable published lineup, retrievable by ID only.
type Snapshot struct {
	ID          string    `json:"id"`
	Lineup      []Player  `json:"lineup"`
	CreatedAt   time.Time `json:"createdAt"`
	CreatedBy   string    `json:"createdBy"`
	TotalSalary float64   `json:"totalSalary"`
}
