// internal/store/knowledge/elasticsearch.go
package knowledge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	apperrors "insurance-agent/internal/common/errors"
	"insurance-agent/internal/models"
)

// ESSearcher runs lexical knowledge queries against an elasticsearch index
// whose documents carry content and metadata fields.
type ESSearcher struct {
	client *elasticsearch.Client
	index  string
}

func NewESSearcher(client *elasticsearch.Client, index string) *ESSearcher {
	if index == "" {
		index = DefaultTable
	}
	return &ESSearcher{client: client, index: index}
}

type esSearchResponse struct {
	Hits struct {
		Hits []struct {
			ID     string  `json:"_id"`
			Score  float64 `json:"_score"`
			Source struct {
				Content  string                 `json:"content"`
				Metadata map[string]interface{} `json:"metadata"`
			} `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

func buildLexicalQuery(query string) map[string]interface{} {
	return map[string]interface{}{
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  query,
				"fields": []string{"content^2", "metadata.*"},
				"type":   "best_fields",
			},
		},
	}
}

func (s *ESSearcher) LexicalSearch(ctx context.Context, query string, limit int) ([]models.KnowledgeChunk, error) {
	body, err := json.Marshal(buildLexicalQuery(query))
	if err != nil {
		return nil, err
	}

	req := esapi.SearchRequest{
		Index: []string{s.index},
		Body:  bytes.NewReader(body),
		Size:  &limit,
	}
	res, err := req.Do(ctx, s.client)
	if err != nil {
		return nil, apperrors.NewSearchQueryFailedError(s.index, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, apperrors.NewSearchQueryFailedError(s.index, fmt.Errorf("search failed: %s", res.Status()))
	}

	var parsed esSearchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, apperrors.NewSearchQueryFailedError(s.index, err)
	}

	chunks := make([]models.KnowledgeChunk, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		chunks = append(chunks, models.KnowledgeChunk{
			ID:       hit.ID,
			Content:  hit.Source.Content,
			Metadata: flatten(hit.Source.Metadata),
		})
	}
	return chunks, nil
}
