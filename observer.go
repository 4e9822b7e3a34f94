package copac

import "time"

// Pipeline stage names reported to a StageObserver, in emission order.
const (
	StageKNN      = "knn"
	StageCorrDim  = "corr_dim"
	StageGrouping = "grouping"
	StageTriu     = "triu"
	StageTril     = "tril"
	StageDBSCAN   = "dbscan"
)

// StageObserver receives wall-clock timings for the pipeline stages.
// It is injected via Config.Observer and defaults to nil (no observation);
// the library itself keeps no ambient instrumentation state. The triu,
// tril, and dbscan stages run once per dimension group, so their reported
// durations are totals accumulated across groups.
type StageObserver interface {
	ObserveStage(stage string, elapsed time.Duration)
}

// StageObserverFunc adapts a plain function into a StageObserver.
type StageObserverFunc func(stage string, elapsed time.Duration)

func (f StageObserverFunc) ObserveStage(stage string, elapsed time.Duration) { f(stage, elapsed) }

// observe is the nil-safe emission helper used by the orchestrator.
func observe(obs StageObserver, stage string, elapsed time.Duration) {
	if obs != nil {
		obs.ObserveStage(stage, elapsed)
	}
}
