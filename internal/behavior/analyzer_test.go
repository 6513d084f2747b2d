package behavior

import (
	"math"
	"testing"

	"github.com/prooftalent/assessment-backend/internal/model"
)

func defaultParams() Params {
	return Params{
		VarianceFloor:              1.0,
		FlagThreshold:              0.5,
		ExpectedSecondsPerQuestion: 30,
	}
}

func telemetry(times []float64, switches []int) *model.AnswerTelemetry {
	return &model.AnswerTelemetry{
		AnswerTimes:  times,
		SwitchCounts: switches,
		SessionStart: 1000,
		SessionEnd:   2000,
	}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestCleanTelemetryScoresZero(t *testing.T) {
	a := New(defaultParams())

	// Variance well above floor, no switching, human-paced times.
	report := a.Analyze(telemetry([]float64{20, 35, 28}, []int{0, 1, 0}))

	if report.CheatingLikelihood != 0 {
		t.Errorf("cheating_likelihood = %v, want 0", report.CheatingLikelihood)
	}
	if report.IsFlagged {
		t.Error("clean telemetry was flagged")
	}
}

func TestAdditiveFormula(t *testing.T) {
	a := New(defaultParams())

	cases := []struct {
		name     string
		times    []float64
		switches []int
		want     float64
	}{
		{
			// Population variance of {25,25,25} is 0 < floor; times are slow
			// enough and switching is low, so only the variance term fires.
			name:     "flat timing only",
			times:    []float64{25, 25, 25},
			switches: []int{0, 0, 0},
			want:     0.3,
		},
		{
			// 9 switches > 0.5*3; variance above floor; total 75s >= 27s.
			name:     "excessive switching only",
			times:    []float64{20, 25, 30},
			switches: []int{3, 3, 3},
			want:     0.4,
		},
		{
			// Total 6s < 0.3*3*30 = 27s; variance of {1,2,3} is 2/3 < 1.0,
			// so the variance term fires too.
			name:     "fast completion plus low variance",
			times:    []float64{1, 2, 3},
			switches: []int{0, 0, 0},
			want:     0.6,
		},
		{
			// All three heuristics fire; sum exceeds 1 and is clamped.
			name:     "everything fires clamps to one",
			times:    []float64{1, 1, 1},
			switches: []int{5, 5, 5},
			want:     1.0,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			report := a.Analyze(telemetry(tc.times, tc.switches))
			if !almostEqual(report.CheatingLikelihood, tc.want) {
				t.Errorf("cheating_likelihood = %v, want %v", report.CheatingLikelihood, tc.want)
			}
		})
	}
}

func TestSwitchContributionIncorporated(t *testing.T) {
	a := New(defaultParams())

	// All-correct answers with switch_counts [3,3,3]: 9 > 0.5*3, so the 0.4
	// contribution must be present regardless of the other terms.
	with := a.Analyze(telemetry([]float64{20, 25, 30}, []int{3, 3, 3}))
	without := a.Analyze(telemetry([]float64{20, 25, 30}, []int{0, 0, 0}))

	if diff := with.CheatingLikelihood - without.CheatingLikelihood; !almostEqual(diff, 0.4) {
		t.Errorf("switching contribution = %v, want 0.4", diff)
	}
	if with.CheatingLikelihood < 0.4 {
		t.Errorf("cheating_likelihood = %v, want >= 0.4", with.CheatingLikelihood)
	}
}

func TestFlagThreshold(t *testing.T) {
	a := New(defaultParams())

	// 0.3 + 0.4 = 0.7 >= 0.5 threshold.
	flagged := a.Analyze(telemetry([]float64{25, 25, 25}, []int{3, 3, 3}))
	if !flagged.IsFlagged {
		t.Errorf("likelihood %v >= 0.5 not flagged", flagged.CheatingLikelihood)
	}

	// 0.4 alone stays under the default threshold.
	under := a.Analyze(telemetry([]float64{20, 25, 30}, []int{3, 3, 3}))
	if under.IsFlagged {
		t.Errorf("likelihood %v < 0.5 was flagged", under.CheatingLikelihood)
	}
}

func TestSingleQuestionSkipsVarianceCheck(t *testing.T) {
	a := New(defaultParams())

	// One observation has no meaningful variance; a lone human-paced answer
	// must not be treated as bot-like.
	report := a.Analyze(telemetry([]float64{20}, []int{0}))
	if report.CheatingLikelihood != 0 {
		t.Errorf("cheating_likelihood = %v, want 0", report.CheatingLikelihood)
	}
	if report.IsFlagged {
		t.Error("single-question session flagged")
	}
}

func TestEmptyTelemetry(t *testing.T) {
	a := New(defaultParams())

	report := a.Analyze(telemetry(nil, nil))
	if report.CheatingLikelihood != 0 || report.IsFlagged {
		t.Errorf("empty telemetry produced %+v", report)
	}
}

func TestInformationalMetrics(t *testing.T) {
	a := New(defaultParams())

	report := a.Analyze(telemetry([]float64{10, 20, 30}, []int{1, 0, 2}))

	if !almostEqual(report.AverageTime, 20) {
		t.Errorf("average_time = %v, want 20", report.AverageTime)
	}
	if !almostEqual(report.SwitchFrequency, 1) {
		t.Errorf("switch_frequency = %v, want 1", report.SwitchFrequency)
	}
	if !almostEqual(report.PatternDeviation, 1) {
		t.Errorf("pattern_deviation = %v, want (30-10)/20 = 1", report.PatternDeviation)
	}
}
