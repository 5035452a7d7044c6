package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/Skotchmaster/artesan_shop/internal/logging"
	"github.com/Skotchmaster/artesan_shop/internal/models"
	"github.com/Skotchmaster/artesan_shop/internal/repo"
	"github.com/Skotchmaster/artesan_shop/internal/storage"
)

// document is what goes into the index. Images stay out.
type document struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
}

// Service searches the catalog in Elasticsearch when a client is configured
// and in the database otherwise.
type Service struct {
	ES    *elasticsearch.Client
	Index string
	Store *storage.Manager
}

func New(es *elasticsearch.Client, index string, store *storage.Manager) *Service {
	return &Service{ES: es, Index: index, Store: store}
}

func (s *Service) Search(ctx context.Context, query string, from, size int) (int64, []models.Product, error) {
	query = strings.TrimSpace(query)
	if s.ES != nil {
		total, products, err := s.searchES(ctx, query, from, size)
		if err == nil {
			return total, products, nil
		}
		logging.FromContext(ctx).Warn("es_search_failed_fallback_db", "error", err)
	}
	return s.Store.SearchProducts(ctx, query, from, size)
}

func (s *Service) searchES(ctx context.Context, query string, from, size int) (int64, []models.Product, error) {
	body := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     query,
				"fields":    []string{"name^2", "description"},
				"fuzziness": "AUTO",
			},
		},
		"from": from,
		"size": size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, err
	}

	res, err := s.ES.Search(
		s.ES.Search.WithContext(ctx),
		s.ES.Search.WithIndex(s.Index),
		s.ES.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("search: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, nil, fmt.Errorf("search: %s", res.Status())
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source document `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, fmt.Errorf("decode: %w", err)
	}

	// hits are resolved against the store so stock and images are current;
	// documents of deleted products are dropped from the total as well
	total := r.Hits.Total.Value
	products := make([]models.Product, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		p, err := s.Store.ProductByID(ctx, hit.Source.ID)
		if errors.Is(err, repo.ErrNotFound) {
			total--
			continue
		}
		if err != nil {
			return 0, nil, err
		}
		products = append(products, *p)
	}
	return max(total, int64(len(products))), products, nil
}

func (s *Service) IndexProduct(ctx context.Context, p *models.Product) error {
	if s.ES == nil {
		return nil
	}
	data, err := json.Marshal(document{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Stock:       p.Stock,
	})
	if err != nil {
		return err
	}

	res, err := s.ES.Index(s.Index, bytes.NewReader(data),
		s.ES.Index.WithContext(ctx),
		s.ES.Index.WithDocumentID(p.ID),
		s.ES.Index.WithRefresh("true"),
	)
	if err != nil {
		return fmt.Errorf("index: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return fmt.Errorf("index: %s: %s", res.Status(), body)
	}
	return nil
}

func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	if s.ES == nil {
		return nil
	}
	res, err := s.ES.Delete(s.Index, id, s.ES.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("delete: %s", res.Status())
	}
	return nil
}

// Reindex pushes the whole catalog, used at startup to seed a fresh index.
func (s *Service) Reindex(ctx context.Context) (int, error) {
	if s.ES == nil {
		return 0, nil
	}
	products, err := s.Store.Products(ctx)
	if err != nil {
		return 0, err
	}
	for i := range products {
		if err := s.IndexProduct(ctx, &products[i]); err != nil {
			return i, err
		}
	}
	return len(products), nil
}
