// internal/store/history_search.go
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8/esapi"

	"signal-engine/internal/common/database"
	"signal-engine/internal/common/errors"
	"signal-engine/internal/common/logger"
	"signal-engine/internal/models"
)

// HistorySearch serves producer-history lookups from the search index.
// It is optional: when no index is configured the engine falls back to
// the postgres history table.
type HistorySearch struct {
	es     *database.ElasticsearchClient
	index  string
	logger logger.Logger
}

func NewHistorySearch(es *database.ElasticsearchClient, index string, log logger.Logger) *HistorySearch {
	return &HistorySearch{
		es:     es,
		index:  index,
		logger: log.WithFields(map[string]interface{}{"component": "history-search"}),
	}
}

type historyHit struct {
	Source struct {
		ID          string    `json:"id"`
		Title       string    `json:"title"`
		TopicID     string    `json:"topicId"`
		PublishedAt time.Time `json:"publishedAt"`
	} `json:"_source"`
}

type historyResponse struct {
	Hits struct {
		Hits []historyHit `json:"hits"`
	} `json:"hits"`
}

// RecentVideos returns the show's published videos since the cutoff,
// newest first.
func (h *HistorySearch) RecentVideos(ctx context.Context, showID string, since time.Time, limit int) ([]models.ProducerVideo, error) {
	queryBody := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"filter": []interface{}{
					map[string]interface{}{
						"term": map[string]interface{}{"showId": showID},
					},
					map[string]interface{}{
						"range": map[string]interface{}{
							"publishedAt": map[string]interface{}{"gte": since.Format(time.RFC3339)},
						},
					},
				},
			},
		},
		"sort": []interface{}{
			map[string]interface{}{"publishedAt": map[string]interface{}{"order": "desc"}},
		},
	}

	body, _ := json.Marshal(queryBody)
	req := esapi.SearchRequest{
		Index: []string{h.index},
		Body:  strings.NewReader(string(body)),
		Size:  &limit,
	}

	res, err := req.Do(ctx, h.es.Client)
	if err != nil {
		return nil, errors.NewHistorySearchFailedError(err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, errors.NewHistorySearchFailedError(fmt.Errorf("search returned %s", res.Status()))
	}

	var parsed historyResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, errors.NewHistorySearchFailedError(err)
	}

	videos := make([]models.ProducerVideo, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		videos = append(videos, models.ProducerVideo{
			ID:          hit.Source.ID,
			Title:       hit.Source.Title,
			TopicID:     hit.Source.TopicID,
			PublishedAt: hit.Source.PublishedAt,
		})
	}
	return videos, nil
}
