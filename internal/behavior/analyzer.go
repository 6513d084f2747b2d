// Package behavior scores answer telemetry for cheating likelihood. The
// output is a heuristic triage signal for downstream consumers — it proves
// nothing either way and must never gate anything stronger than certificate
// eligibility.
package behavior

import (
	"github.com/montanaflynn/stats"
	"github.com/prooftalent/assessment-backend/internal/model"
)

// Suspicion contributions. The formula is additive and clamped to [0, 1]:
// each heuristic fires independently and adds its weight.
const (
	weightLowVariance      = 0.3 // unnaturally consistent timing
	weightHighSwitching    = 0.4 // excessive answer switching
	weightFastCompletion   = 0.3 // implausibly fast completion
	switchRatioLimit       = 0.5 // switches allowed per question before firing
	fastCompletionFraction = 0.3 // of the expected total time
)

// Params are the tunable thresholds, loaded from configuration.
type Params struct {
	// VarianceFloor is the population-variance floor below which timing is
	// considered bot-like. Only applied with two or more observations —
	// a single timing has no variance to speak of.
	VarianceFloor float64

	// FlagThreshold is the likelihood at or above which a session is flagged.
	FlagThreshold float64

	// ExpectedSecondsPerQuestion anchors the fast-completion check.
	ExpectedSecondsPerQuestion float64
}

// Analyzer is a state-free scorer; one instance serves all sessions
// concurrently.
type Analyzer struct {
	params Params
}

// New creates an Analyzer with the given thresholds.
func New(params Params) *Analyzer {
	return &Analyzer{params: params}
}

// Analyze computes the suspicion score for one session's telemetry.
// Pure function of its input; safe to call from any goroutine.
func (a *Analyzer) Analyze(t *model.AnswerTelemetry) model.BehaviorReport {
	n := len(t.AnswerTimes)
	if n == 0 {
		return model.BehaviorReport{}
	}

	times := stats.Float64Data(t.AnswerTimes)
	avg, _ := stats.Mean(times)
	variance, _ := stats.PopulationVariance(times)

	suspicion := 0.0

	if n >= 2 && variance < a.params.VarianceFloor {
		suspicion += weightLowVariance
	}

	totalSwitches := float64(t.TotalSwitches())
	if totalSwitches > switchRatioLimit*float64(n) {
		suspicion += weightHighSwitching
	}

	totalTime, _ := stats.Sum(times)
	if totalTime < fastCompletionFraction*float64(n)*a.params.ExpectedSecondsPerQuestion {
		suspicion += weightFastCompletion
	}

	likelihood := clamp01(suspicion)

	return model.BehaviorReport{
		CheatingLikelihood: likelihood,
		IsFlagged:          likelihood >= a.params.FlagThreshold,
		AverageTime:        avg,
		TimeConsistency:    timeConsistency(variance),
		SwitchFrequency:    totalSwitches / float64(n),
		PatternDeviation:   patternDeviation(times, avg),
	}
}

func timeConsistency(variance float64) float64 {
	c := 1.0 / (1.0 + variance)
	if c > 1 {
		return 1
	}
	return c
}

func patternDeviation(times stats.Float64Data, avg float64) float64 {
	if len(times) < 2 || avg == 0 {
		return 0
	}
	min, _ := stats.Min(times)
	max, _ := stats.Max(times)
	return (max - min) / avg
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
