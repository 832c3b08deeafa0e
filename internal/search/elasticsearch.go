package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"gotrip/internal/config"
	"gotrip/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"
)

// MaxHits bounds the number of ids a catalog search returns.
const MaxHits = 500

// ElasticsearchClient indexes catalog services for full-text search.
type ElasticsearchClient struct {
	client *elasticsearch.Client
	config config.ElasticsearchConfig
}

// serviceDocument is the indexed projection of a catalog service
type serviceDocument struct {
	ID          string   `json:"id"`
	Kind        string   `json:"kind"`
	Name        string   `json:"name"`
	Summary     string   `json:"summary"`
	Description string   `json:"description"`
	City        string   `json:"city"`
	Country     string   `json:"country"`
	Languages   []string `json:"languages"`
	Price       float64  `json:"price"`
	Rating      float64  `json:"rating"`
	IsActive    bool     `json:"is_active"`
	UpdatedAt   string   `json:"updated_at"`
}

func NewElasticsearchClient(ctx context.Context, cfg config.ElasticsearchConfig) (*ElasticsearchClient, error) {
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses:     []string{cfg.URL},
		Username:      cfg.Username,
		Password:      cfg.Password,
		RetryOnStatus: []int{502, 503, 504, 429},
		MaxRetries:    cfg.MaxRetries,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Elasticsearch client: %w", err)
	}

	client := &ElasticsearchClient{client: es, config: cfg}

	if err := client.ensureIndex(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure index exists: %w", err)
	}

	return client, nil
}

func (c *ElasticsearchClient) ensureIndex(ctx context.Context) error {
	res, err := esapi.IndicesExistsRequest{Index: []string{c.config.Index}}.Do(ctx, c.client)
	if err != nil {
		return fmt.Errorf("failed to check index existence: %w", err)
	}
	res.Body.Close()

	if res.StatusCode == http.StatusOK {
		slog.Info("Elasticsearch index already exists", "index", c.config.Index)
		return nil
	}

	text := func(boost bool) map[string]any {
		field := map[string]any{"type": "text", "analyzer": "catalog_analyzer"}
		if boost {
			field["fields"] = map[string]any{"keyword": map[string]any{"type": "keyword", "ignore_above": 256}}
		}
		return field
	}
	mapping := map[string]any{
		"settings": map[string]any{
			"number_of_shards":   1,
			"number_of_replicas": 0,
			"analysis": map[string]any{
				"analyzer": map[string]any{
					"catalog_analyzer": map[string]any{
						"type":      "custom",
						"tokenizer": "standard",
						"filter":    []string{"lowercase", "asciifolding", "english_stop", "english_stemmer"},
					},
				},
				"filter": map[string]any{
					"english_stop":    map[string]any{"type": "stop", "stopwords": "_english_"},
					"english_stemmer": map[string]any{"type": "stemmer", "language": "english"},
				},
			},
		},
		"mappings": map[string]any{
			"properties": map[string]any{
				"id":          map[string]any{"type": "keyword"},
				"kind":        map[string]any{"type": "keyword"},
				"name":        text(true),
				"summary":     text(false),
				"description": text(false),
				"city":        text(true),
				"country":     map[string]any{"type": "keyword"},
				"languages":   map[string]any{"type": "keyword"},
				"price":       map[string]any{"type": "scaled_float", "scaling_factor": 100},
				"rating":      map[string]any{"type": "float"},
				"is_active":   map[string]any{"type": "boolean"},
				"updated_at":  map[string]any{"type": "date"},
			},
		},
	}

	body, err := json.Marshal(mapping)
	if err != nil {
		return fmt.Errorf("failed to marshal mapping: %w", err)
	}

	createRes, err := esapi.IndicesCreateRequest{Index: c.config.Index, Body: bytes.NewReader(body)}.Do(ctx, c.client)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	defer createRes.Body.Close()

	if createRes.IsError() {
		return fmt.Errorf("failed to create index: %s", createRes.String())
	}

	slog.Info("Created Elasticsearch index", "index", c.config.Index)
	return nil
}

// IndexService upserts the service document. Inactive services are removed.
func (c *ElasticsearchClient) IndexService(ctx context.Context, s *models.Service) error {
	if !s.IsActive {
		return c.DeleteService(ctx, s.ID)
	}

	doc := serviceDocument{
		ID:          s.ID.String(),
		Kind:        string(s.Kind),
		Name:        s.Name,
		Summary:     s.Summary,
		Description: s.Description,
		City:        s.City,
		Country:     s.Country,
		Languages:   s.Languages,
		Price:       s.Price,
		Rating:      s.Rating,
		IsActive:    s.IsActive,
		UpdatedAt:   s.UpdatedAt.UTC().Format(time.RFC3339),
	}
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal service: %w", err)
	}

	res, err := esapi.IndexRequest{
		Index:      c.config.Index,
		DocumentID: doc.ID,
		Body:       bytes.NewReader(body),
		Refresh:    "wait_for",
	}.Do(ctx, c.client)
	if err != nil {
		return fmt.Errorf("failed to index service: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("indexing error: %s", res.String())
	}
	return nil
}

func (c *ElasticsearchClient) DeleteService(ctx context.Context, id uuid.UUID) error {
	res, err := esapi.DeleteRequest{
		Index:      c.config.Index,
		DocumentID: id.String(),
		Refresh:    "wait_for",
	}.Do(ctx, c.client)
	if err != nil {
		return fmt.Errorf("failed to delete service: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("delete error: %s", res.String())
	}
	return nil
}

// SearchIDs returns ids of active services of the kind matching the text, best match first.
func (c *ElasticsearchClient) SearchIDs(ctx context.Context, kind models.ServiceKind, text string) ([]uuid.UUID, error) {
	body, err := json.Marshal(map[string]any{
		"query":   buildSearchQuery(kind, text),
		"sort":    []map[string]any{{"_score": map[string]any{"order": "desc"}}, {"id": map[string]any{"order": "asc"}}},
		"size":    MaxHits,
		"_source": []string{"id"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search query: %w", err)
	}

	res, err := esapi.SearchRequest{
		Index: []string{c.config.Index},
		Body:  bytes.NewReader(body),
	}.Do(ctx, c.client)
	if err != nil {
		return nil, fmt.Errorf("failed to execute search: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("search error: %s", res.String())
	}

	var response struct {
		Hits struct {
			Hits []struct {
				Source struct {
					ID string `json:"id"`
				} `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(response.Hits.Hits))
	for _, hit := range response.Hits.Hits {
		id, err := uuid.Parse(hit.Source.ID)
		if err != nil {
			slog.Warn("Skipping search hit with invalid id", "id", hit.Source.ID)
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func buildSearchQuery(kind models.ServiceKind, text string) map[string]any {
	return map[string]any{
		"bool": map[string]any{
			"must": []map[string]any{{
				"multi_match": map[string]any{
					"query":     text,
					"fields":    []string{"name^3", "city^2", "summary", "description"},
					"fuzziness": "AUTO",
				},
			}},
			"filter": []map[string]any{
				{"term": map[string]any{"kind": string(kind)}},
				{"term": map[string]any{"is_active": true}},
			},
		},
	}
}

func (c *ElasticsearchClient) HealthCheck(ctx context.Context) error {
	res, err := esapi.ClusterHealthRequest{
		WaitForStatus: "yellow",
		Timeout:       10 * time.Second,
	}.Do(ctx, c.client)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("health check error: %s", res.String())
	}
	return nil
}
