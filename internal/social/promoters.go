package social

import (
	"sort"
	"strings"

	"solana-pump-monitor/internal/models"
)

// Pump-indicator weights for promoter profiling. Heavier weights go to the
// phrases with the least innocent uses.
var indicatorWeights = []struct {
	keywords []string
	weight   int
}{
	{[]string{"100x", "1000x"}, 3},
	{[]string{"don't miss", "hurry"}, 3},
	{[]string{"🚀"}, 2},
	{[]string{"moon"}, 2},
	{[]string{"gem"}, 1},
	{[]string{"early"}, 1},
}

// BuildPromoters groups posts by author and ranks the authors by a
// follower-weighted pump-indicator score. The follower factor is bucketed
// and capped so a huge account cannot dominate purely on reach.
func BuildPromoters(posts []models.Post) []models.Promoter {
	byUser := make(map[string]*models.Promoter)
	var order []string

	for _, p := range posts {
		username := p.Author.UserName
		if username == "" {
			username = models.UnknownAddress
		}

		promoter, ok := byUser[username]
		if !ok {
			promoter = &models.Promoter{
				Username:    username,
				DisplayName: p.Author.Name,
				Followers:   p.Author.Followers,
				IsVerified:  p.Author.IsVerified,
			}
			byUser[username] = promoter
			order = append(order, username)
		}

		promoter.Posts = append(promoter.Posts, p)
		promoter.PumpIndicators += indicatorScore(p.Text)
	}

	out := make([]models.Promoter, 0, len(byUser))
	for _, username := range order {
		promoter := byUser[username]
		promoter.InfluenceScore = influenceScore(promoter.PumpIndicators, promoter.Followers)
		out = append(out, *promoter)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].InfluenceScore != out[j].InfluenceScore {
			return out[i].InfluenceScore > out[j].InfluenceScore
		}
		return out[i].Username < out[j].Username
	})
	return out
}

func indicatorScore(text string) int {
	lower := strings.ToLower(text)
	score := 0
	for _, group := range indicatorWeights {
		for _, kw := range group.keywords {
			if strings.Contains(lower, kw) {
				score += group.weight
				break
			}
		}
	}
	return score
}

// influenceScore combines pump indicators with a bucketed follower factor:
// one bucket per hundred followers, floored at 1 and capped at 10.
func influenceScore(indicators, followers int) float64 {
	factor := (followers + 1) / 100
	if factor < 1 {
		factor = 1
	}
	if factor > 10 {
		factor = 10
	}
	return float64(indicators*factor) / 10
}
