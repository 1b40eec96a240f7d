package analytics

import "github.com/websteralycia/WNBA-Lineup-Lab/internal/models"

// Label thresholds for the informational composition/meta labels.
const (
	usageThreshold = 0.70
	defThreshold   = 0.70
)

// Compute derives the aggregate statistics for a lineup. It returns nil for
// an empty lineup, which callers must render as "no analytics", not zeros.
//
// Every mean divides by the member count even when individual percentile
// fields are absent (absent counts as 0 in the numerator). That matches the
// observed behavior of the importer's consumers and is kept as-is; changing
// the divisor would shift every published total retroactively.
func Compute(members []models.Player) *models.Aggregates {
	if len(members) == 0 {
		return nil
	}

	agg := &models.Aggregates{}
	for _, p := range members {
		agg.TotalSalary += deref(p.Salary)
		agg.AvgTs += deref(p.TsPercentile)
		agg.AvgUsage += deref(p.UsagePercentile)
		agg.AvgDef += deref(p.DefPercentile)
		agg.AvgAst += deref(p.AstPercentile)
	}

	n := float64(len(members))
	agg.AvgTs /= n
	agg.AvgUsage /= n
	agg.AvgDef /= n
	agg.AvgAst /= n

	agg.OverCap = agg.TotalSalary > models.SalaryCap
	agg.Composition = compositionLabel(agg.AvgUsage)
	agg.RosterMeta = rosterMetaLabel(agg.AvgDef)
	return agg
}

// TotalSalary sums member salaries, treating a missing salary as 0. This is
// the figure stored on published snapshots.
func TotalSalary(members []models.Player) float64 {
	var total float64
	for _, p := range members {
		total += deref(p.Salary)
	}
	return total
}

func compositionLabel(avgUsage float64) string {
	if avgUsage > usageThreshold {
		return "Volume-oriented"
	}
	return "Efficiency-oriented"
}

func rosterMetaLabel(avgDef float64) string {
	if avgDef > defThreshold {
		return "Defense-first"
	}
	return "Offense-leaning"
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
