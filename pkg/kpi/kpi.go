// Package kpi computes the three reconciliation health indicators
// (RCR, DQCS, REI) from execution outcomes and rule metadata. Every
// function here is pure: no I/O, no clock, every input supplied by the
// caller, so the formulas stay testable against the exact inputs they
// were derived from.
package kpi

import "github.com/3FramesLab/recon-kg-engine/pkg/models"

const (
	rcrHealthyThreshold = 90.0
	rcrWarningThreshold = 80.0

	dqcsGoodThreshold       = 0.85
	dqcsAcceptableThreshold = 0.7

	dqcsHighConfidence   = 0.9
	dqcsMediumConfidence = 0.8
)

// ComputeRCR computes the Reconciliation Coverage Rate: the share of
// source records that found a match. 0 when totalSourceCount is 0.
func ComputeRCR(matchedCount, totalSourceCount int) models.RCR {
	var rate float64
	if totalSourceCount > 0 {
		rate = float64(matchedCount) / float64(totalSourceCount) * 100
	}

	return models.RCR{
		CoverageRate:     rate,
		MatchedCount:     matchedCount,
		TotalSourceCount: totalSourceCount,
		Status:           rcrStatus(rate),
	}
}

func rcrStatus(rate float64) string {
	switch {
	case rate >= rcrHealthyThreshold:
		return models.RCRStatusHealthy
	case rate >= rcrWarningThreshold:
		return models.RCRStatusWarning
	default:
		return models.RCRStatusCritical
	}
}

// ComputeDQCS computes the Data Quality Confidence Score: the mean
// match confidence across matchConfidences (one entry per matched
// record), plus a high/medium/low breakdown of the same values.
func ComputeDQCS(matchConfidences []float64) models.DQCS {
	var sum float64
	var high, medium, low int

	for _, c := range matchConfidences {
		sum += c
		switch {
		case c >= dqcsHighConfidence:
			high++
		case c >= dqcsMediumConfidence:
			medium++
		default:
			low++
		}
	}

	var mean float64
	if len(matchConfidences) > 0 {
		mean = sum / float64(len(matchConfidences))
	}

	return models.DQCS{
		OverallConfidenceScore: mean,
		HighCount:              high,
		MediumCount:            medium,
		LowCount:               low,
		Status:                 dqcsStatus(mean),
	}
}

func dqcsStatus(mean float64) string {
	switch {
	case mean >= dqcsGoodThreshold:
		return models.DQCSStatusGood
	case mean >= dqcsAcceptableThreshold:
		return models.DQCSStatusAcceptable
	default:
		return models.DQCSStatusPoor
	}
}

// REIInput bundles every value ComputeREI needs; all are supplied by
// the caller, no database is consulted.
type REIInput struct {
	MatchedCount     int
	TotalSourceCount int
	ActiveRules      int
	TotalRules       int
	ExecutionTimeMs  int64
}

// ComputeREI computes the Reconciliation Efficiency Index: a product
// of match success rate, rule utilization, and a speed factor relative
// to a size-scaled target time, clamped to [0, 100].
func ComputeREI(in REIInput) models.REI {
	successRate := percentage(in.MatchedCount, in.TotalSourceCount)
	ruleUtilization := percentage(in.ActiveRules, in.TotalRules)

	// target_time_ms = (total_source_count / 1000) * 1000: both divisions
	// in the formula are real-valued, not integer-truncated — truncating
	// would silently round the target down to the nearest 1000ms bucket.
	targetTimeMs := float64(in.TotalSourceCount) / 1000 * 1000
	speedFactor := 100.0
	if in.ExecutionTimeMs > 0 {
		speedFactor = targetTimeMs / float64(in.ExecutionTimeMs) * 100
	}

	index := successRate * ruleUtilization * speedFactor / 10000
	index = clamp(index, 0, 100)

	return models.REI{
		EfficiencyIndex:  index,
		MatchSuccessRate: successRate,
		RuleUtilization:  ruleUtilization,
		SpeedFactor:      speedFactor,
	}
}

func percentage(part, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

func clamp(v, lo, hi float64) float64 {
	switch {
	case v < lo:
		return lo
	case v > hi:
		return hi
	default:
		return v
	}
}
