package social

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-pump-monitor/internal/models"
)

func authoredPost(user string, followers int, text string) models.Post {
	return models.Post{
		Text:   text,
		Author: models.PostAuthor{UserName: user, Name: user, Followers: followers},
	}
}

func TestBuildPromoters_GroupsAndScores(t *testing.T) {
	posts := []models.Post{
		authoredPost("shiller", 1200, "100x gem 🚀 don't miss"),
		authoredPost("shiller", 1200, "moon time, get in early"),
		authoredPost("quiet", 50, "interesting tokenomics thread"),
	}

	promoters := BuildPromoters(posts)
	require.Len(t, promoters, 2)

	top := promoters[0]
	assert.Equal(t, "shiller", top.Username)
	assert.Len(t, top.Posts, 2)
	// Post 1: 100x(3) + don't miss(3) + rocket(2) + gem(1) = 9.
	// Post 2: moon(2) + early(1) = 3.
	assert.Equal(t, 12, top.PumpIndicators)
	// 1200 followers buckets to the factor cap of 10.
	assert.InDelta(t, 12.0, top.InfluenceScore, 1e-9)

	assert.Equal(t, "quiet", promoters[1].Username)
	assert.Zero(t, promoters[1].PumpIndicators)
	assert.Zero(t, promoters[1].InfluenceScore)
}

func TestBuildPromoters_FollowerFactorBuckets(t *testing.T) {
	// One indicator point each, different audience sizes.
	cases := []struct {
		followers int
		want      float64
	}{
		{0, 0.2},    // factor floors at 1
		{99, 0.2},   // (99+1)/100 = 1
		{250, 0.4},  // factor 2
		{5000, 2.0}, // factor capped at 10
	}
	for _, tc := range cases {
		promoters := BuildPromoters([]models.Post{
			authoredPost("user", tc.followers, "🚀"),
		})
		require.Len(t, promoters, 1)
		assert.InDelta(t, tc.want, promoters[0].InfluenceScore, 1e-9, "followers=%d", tc.followers)
	}
}

func TestBuildPromoters_MissingUsername(t *testing.T) {
	promoters := BuildPromoters([]models.Post{{Text: "100x soon"}})

	require.Len(t, promoters, 1)
	assert.Equal(t, models.UnknownAddress, promoters[0].Username)
}

func TestBuildPromoters_SortedByInfluence(t *testing.T) {
	posts := []models.Post{
		authoredPost("small", 10, "100x"),
		authoredPost("big", 100000, "100x"),
		authoredPost("medium", 300, "100x"),
	}

	promoters := BuildPromoters(posts)
	require.Len(t, promoters, 3)
	assert.Equal(t, "big", promoters[0].Username)
	assert.Equal(t, "medium", promoters[1].Username)
	assert.Equal(t, "small", promoters[2].Username)
}
