package contracts

// Pipeline stage names used in logs, run history and error records.
//
// Flow:
//   FETCH → METRICS → SCORING → RANKING → EXPORT

// Stage represents a pipeline stage.
type Stage string

const (
	// StageFetch collects the fund list and NAV histories into the cache.
	StageFetch Stage = "FETCH"

	// StageMetrics computes per-fund metric bundles.
	StageMetrics Stage = "METRICS"

	// StageScoring normalizes metrics within cohorts and applies
	// strategy weights.
	StageScoring Stage = "SCORING"

	// StageRanking orders scored funds and selects the top N.
	StageRanking Stage = "RANKING"

	// StageExport writes recommendation reports.
	StageExport Stage = "EXPORT"
)

// StageOrder lists the stages in execution order.
var StageOrder = []Stage{
	StageFetch,
	StageMetrics,
	StageScoring,
	StageRanking,
	StageExport,
}
