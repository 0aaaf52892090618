package advisory

import (
	"fmt"
	"time"

	"solana-pump-monitor/internal/models"
)

// Merge combines the heuristic result with the optional advisory verdict
// into the final finding.
//
// The heuristic verdict is the baseline. The advisory only overrides the
// headline confidence and classification when it is strictly MORE confident
// than the heuristic; a less confident advisory is carried in the finding
// for the report but never weakens the deterministic result. The override
// appends a reason so the final reason list explains the headline numbers.
func Merge(heuristic models.HeuristicResult, verdict *models.AdvisoryVerdict) models.Finding {
	finding := models.Finding{
		HeuristicResult: heuristic,
		Advisory:        verdict,
		CreatedAt:       time.Now().UTC(),
	}

	if verdict == nil {
		return finding
	}

	if verdict.Confidence > heuristic.Confidence {
		finding.Confidence = verdict.Confidence
		finding.IsPumpDump = verdict.IsPumpDump
		summary := verdict.Summary
		if summary == "" {
			summary = "no summary provided"
		}
		finding.Reasons = append(append([]string{}, heuristic.Reasons...),
			fmt.Sprintf("AI analysis: %s", summary))
	}
	return finding
}
