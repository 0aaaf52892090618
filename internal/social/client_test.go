package social

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-pump-monitor/internal/models"
)

func newTestSocialClient(serverURL string) *Client {
	return NewClient(ClientConfig{
		APIKey:            "test-key",
		BaseURL:           serverURL,
		MaxRetries:        0,
		RetryBackoff:      time.Millisecond,
		RequestsPerSecond: 10000, // don't slow the test down
	})
}

func TestClient_RequiresAPIKey(t *testing.T) {
	client := NewClient(ClientConfig{})

	_, err := client.SearchRecent(context.Background(), []string{"solana gem"})
	assert.ErrorIs(t, err, ErrNoAPIKey)
}

func TestClient_DeduplicatesAcrossQueries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("X-API-Key"))
		assert.Equal(t, "Latest", r.URL.Query().Get("queryType"))

		// Both queries return the same post plus one unique each.
		query := r.URL.Query().Get("query")
		resp := searchResponse{Tweets: []models.Post{
			{ID: "shared", Text: "seen from both queries"},
			{ID: "unique-" + query, Text: "only from " + query},
		}}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := newTestSocialClient(server.URL)

	posts, err := client.SearchRecent(context.Background(), []string{"q1", "q2"})
	require.NoError(t, err)
	assert.Len(t, posts, 3)
}

func TestClient_FailingQuerySkipped(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("query") == "bad" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(searchResponse{Tweets: []models.Post{{ID: "1", Text: "ok"}}})
	}))
	defer server.Close()

	client := newTestSocialClient(server.URL)

	posts, err := client.SearchRecent(context.Background(), []string{"bad", "good"})
	require.NoError(t, err)
	assert.Len(t, posts, 1)
}

func TestClient_PostCapStopsSearch(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		tweets := make([]models.Post, 60)
		for i := range tweets {
			tweets[i] = models.Post{ID: fmt.Sprintf("call%d-post%d", calls, i)}
		}
		_ = json.NewEncoder(w).Encode(searchResponse{Tweets: tweets})
	}))
	defer server.Close()

	client := newTestSocialClient(server.URL)

	posts, err := client.SearchRecent(context.Background(), []string{"a", "b", "c", "d"})
	require.NoError(t, err)

	// 60 + 60 reaches the cap on the second query; c and d never run.
	assert.Len(t, posts, 100)
	assert.Equal(t, 2, calls)
}

func TestClient_SearchTokenQueryVariants(t *testing.T) {
	var queries []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		queries = append(queries, r.URL.Query().Get("query"))
		_ = json.NewEncoder(w).Encode(searchResponse{})
	}))
	defer server.Close()

	client := newTestSocialClient(server.URL)

	_, err := client.SearchToken(context.Background(), "EPjFWdd5AufqSsqeM2qN1xzybapC8G4wEGGkZwyTDt1v")
	require.NoError(t, err)

	require.Len(t, queries, 4)
	assert.Equal(t, "EPjFWdd5AufqSsqeM2qN1xzybapC8G4wEGGkZwyTDt1v", queries[0])
	assert.Equal(t, "contract EPjFWdd5", queries[1])
	assert.Equal(t, "CA: EPjFWdd5", queries[2])
	assert.Equal(t, "address: EPjFWdd5", queries[3])
}
