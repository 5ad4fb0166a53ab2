package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/3FramesLab/recon-kg-engine/pkg/executor"
	"github.com/3FramesLab/recon-kg-engine/pkg/kpi"
	"github.com/3FramesLab/recon-kg-engine/pkg/models"
	"github.com/3FramesLab/recon-kg-engine/pkg/storage"
)

var (
	executeRulesetID string
	executeLimit     int
)

// evidenceSampleSize bounds how many matched/unmatched records from each
// rule are kept in the drill-down evidence file; the full sets already
// live in the result file itself.
const evidenceSampleSize = 20

func sampleRecords(records []map[string]any, limit int) []map[string]any {
	if len(records) <= limit {
		return records
	}
	return records[:limit]
}

var executeCmd = &cobra.Command{
	Use:   "execute",
	Short: "Execute a ruleset's rules against the configured source/target databases",
	RunE:  runExecute,
}

func init() {
	executeCmd.Flags().StringVar(&executeRulesetID, "ruleset", "", "ruleset ID to execute (required)")
	executeCmd.Flags().IntVar(&executeLimit, "limit", 0, "per-rule key row limit (0 uses the executor default)")
	_ = executeCmd.MarkFlagRequired("ruleset")
}

func runExecute(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	rulesetStore := storage.NewRulesetRepo(storage.New(cfg.StorageRoot, logger))
	ruleset, err := rulesetStore.Load(executeRulesetID)
	if err != nil {
		return fmt.Errorf("load ruleset %q: %w", executeRulesetID, err)
	}

	sourceConn, err := openConnection(ctx, cfg.SourceDB)
	if err != nil {
		return fmt.Errorf("connect to source database: %w", err)
	}
	defer sourceConn.Close()

	targetConn, err := openConnection(ctx, cfg.TargetDB)
	if err != nil {
		return fmt.Errorf("connect to target database: %w", err)
	}
	defer targetConn.Close()

	exec := executor.New(logger)

	result := &models.ReconciliationResult{
		RulesetID:          ruleset.RulesetID,
		ExecutionID:        uuid.New().String(),
		ExecutionTimestamp: time.Now(),
	}

	activeRules := 0
	var confidences []float64
	confidenceDistribution := make([]map[string]any, 0, len(ruleset.Rules))
	evidenceSamples := make([]map[string]any, 0, len(ruleset.Rules))

	for _, rule := range ruleset.Rules {
		outcome, err := exec.Execute(ctx, rule, sourceConn, targetConn, executeLimit)
		if err != nil {
			return fmt.Errorf("execute rule %s: %w", rule.RuleID, err)
		}

		result.MatchedCount += outcome.MatchedCount
		result.UnmatchedSourceCount += outcome.UnmatchedSourceCount
		result.UnmatchedTargetCount += outcome.UnmatchedTargetCount
		result.ExecutionTimeMs += outcome.ExecutionTimeMs
		result.GeneratedSQL = append(result.GeneratedSQL, outcome.GeneratedSQL...)
		result.RuleErrors = append(result.RuleErrors, outcome.RuleErrors...)

		if len(outcome.RuleErrors) == 0 {
			activeRules++
			for i := 0; i < outcome.MatchedCount; i++ {
				confidences = append(confidences, rule.Confidence)
			}
		}

		confidenceDistribution = append(confidenceDistribution, map[string]any{
			"rule_id":       rule.RuleID,
			"confidence":    rule.Confidence,
			"matched_count": outcome.MatchedCount,
		})
		evidenceSamples = append(evidenceSamples, map[string]any{
			"rule_id":          rule.RuleID,
			"matched_sample":   sampleRecords(outcome.MatchedRecords, evidenceSampleSize),
			"unmatched_source": sampleRecords(outcome.UnmatchedSource, evidenceSampleSize),
			"unmatched_target": sampleRecords(outcome.UnmatchedTarget, evidenceSampleSize),
		})
	}

	resultStore := storage.NewResultRepo(storage.New(cfg.StorageRoot, logger))
	if err := resultStore.Save(result); err != nil {
		return fmt.Errorf("save result: %w", err)
	}

	totalSourceCount := result.MatchedCount + result.UnmatchedSourceCount
	rcr := kpi.ComputeRCR(result.MatchedCount, totalSourceCount)

	dqcs := kpi.ComputeDQCS(confidences)

	rei := kpi.ComputeREI(kpi.REIInput{
		MatchedCount:     result.MatchedCount,
		TotalSourceCount: totalSourceCount,
		ActiveRules:      activeRules,
		TotalRules:       len(ruleset.Rules),
		ExecutionTimeMs:  result.ExecutionTimeMs,
	})

	lineage := models.KPILineage{
		RulesetID:   ruleset.RulesetID,
		ExecutionID: result.ExecutionID,
		Timestamp:   result.ExecutionTimestamp,
	}
	rcr.KPILineage = lineage
	dqcs.KPILineage = lineage
	rei.KPILineage = lineage

	kpiStore := storage.NewKPIRepo(storage.New(cfg.StorageRoot, logger))
	ts := result.ExecutionTimestamp.Format("20060102_150405")
	if err := kpiStore.SaveResult(ruleset.RulesetID, ts, map[string]any{"rcr": rcr, "dqcs": dqcs, "rei": rei}); err != nil {
		return fmt.Errorf("save kpi result: %w", err)
	}
	if err := kpiStore.SaveEvidence(ruleset.RulesetID, ts, map[string]any{
		"confidence_distribution": confidenceDistribution,
		"rule_samples":            evidenceSamples,
	}); err != nil {
		return fmt.Errorf("save kpi evidence: %w", err)
	}

	if len(result.RuleErrors) > 0 {
		logger.Warn("execution completed with rule errors",
			zap.String("ruleset_id", ruleset.RulesetID), zap.Int("error_count", len(result.RuleErrors)))
	}

	fmt.Printf("executed %s: matched=%d unmatched_source=%d unmatched_target=%d rcr=%.2f dqcs=%.3f rei=%.2f\n",
		ruleset.RulesetID, result.MatchedCount, result.UnmatchedSourceCount, result.UnmatchedTargetCount,
		rcr.CoverageRate, dqcs.OverallConfidenceScore, rei.EfficiencyIndex)
	return nil
}
