package social

import (
	"strings"

	"solana-pump-monitor/internal/constants"
	"solana-pump-monitor/internal/models"
)

// Quick-scan scoring. Three independent signals, each worth a fixed slice;
// two of the three already clear the high-signal bar.
const (
	addressMentionWeight = 0.4
	hypeWeight           = 0.3
	urgencyWeight        = 0.3
	highSignalThreshold  = 0.6

	maxHighSignalSample = 3
)

// ScoredPost pairs a post with its quick-scan pump score.
type ScoredPost struct {
	Post  models.Post
	Score float64
}

// ScorePost runs the keyword quick scan over one post. It is a cheap
// pre-filter that runs before any LLM involvement, so a flood of posts costs
// nothing but string scans.
func ScorePost(p models.Post) float64 {
	text := strings.ToLower(p.Text)

	score := 0.0
	if containsAny(text, constants.AddressMentionKeywords) {
		score += addressMentionWeight
	}
	if containsAny(text, constants.HypeKeywords) {
		score += hypeWeight
	}
	if containsAny(text, constants.UrgencyKeywords) {
		score += urgencyWeight
	}
	return score
}

// Scan scores every post and aggregates the social side of the correlation
// input: the mean score over all posts and the high-signal subset.
func Scan(posts []models.Post) (models.SocialSummary, []ScoredPost) {
	scored := make([]ScoredPost, 0, len(posts))
	summary := models.SocialSummary{}

	var sum float64
	for _, p := range posts {
		score := ScorePost(p)
		scored = append(scored, ScoredPost{Post: p, Score: score})
		sum += score

		if score >= highSignalThreshold {
			summary.HighSignalPosts++
			if len(summary.HighSignalSample) < maxHighSignalSample {
				summary.HighSignalSample = append(summary.HighSignalSample, p)
			}
		}
	}
	if len(posts) > 0 {
		summary.AveragePumpScore = sum / float64(len(posts))
	}
	return summary, scored
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}
