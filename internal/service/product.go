package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Skotchmaster/artesan_shop/internal/imagecodec"
	"github.com/Skotchmaster/artesan_shop/internal/imagestore"
	"github.com/Skotchmaster/artesan_shop/internal/logging"
	"github.com/Skotchmaster/artesan_shop/internal/models"
	"github.com/Skotchmaster/artesan_shop/internal/mykafka"
	"github.com/Skotchmaster/artesan_shop/internal/repo"
	"github.com/Skotchmaster/artesan_shop/internal/storage"
)

type ProductInput struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
}

func validateProduct(p *models.Product) error {
	switch {
	case strings.TrimSpace(p.Name) == "":
		return fmt.Errorf("%w: name is required", ErrValidation)
	case p.Price <= 0:
		return fmt.Errorf("%w: price must be greater than zero", ErrValidation)
	case p.Stock < 0:
		return fmt.Errorf("%w: stock cannot be negative", ErrValidation)
	}
	return nil
}

type ProductService struct {
	Store  *storage.Manager
	Events mykafka.Publisher
	// Images is nil when images live in the products row.
	Images imagestore.Store
	Index  Indexer
}

func NewProductService(store *storage.Manager, events mykafka.Publisher, images imagestore.Store, index Indexer) *ProductService {
	return &ProductService{Store: store, Events: events, Images: images, Index: index}
}

func (s *ProductService) Create(ctx context.Context, in ProductInput) (*models.Product, error) {
	p := &models.Product{
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		Price:       in.Price,
		Stock:       in.Stock,
	}
	if err := validateProduct(p); err != nil {
		return nil, err
	}
	if err := s.Store.SaveProduct(ctx, p); err != nil {
		return nil, err
	}

	reindex(ctx, s.Index, p)
	publish(ctx, s.Events, mykafka.TopicProduct, p.ID, map[string]any{
		"type":      "product_created",
		"productID": p.ID,
		"name":      p.Name,
	})
	return p, nil
}

// Update replaces every editable field.
func (s *ProductService) Update(ctx context.Context, id string, in ProductInput) (*models.Product, error) {
	return s.Patch(ctx, id, ProductPatch{
		Name:        &in.Name,
		Description: &in.Description,
		Price:       &in.Price,
		Stock:       &in.Stock,
	})
}

// ProductPatch holds optional edits; nil fields keep the stored value.
type ProductPatch struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Stock       *int     `json:"stock"`
}

func (pp ProductPatch) apply(p *models.Product) {
	if pp.Name != nil {
		p.Name = strings.TrimSpace(*pp.Name)
	}
	if pp.Description != nil {
		p.Description = strings.TrimSpace(*pp.Description)
	}
	if pp.Price != nil {
		p.Price = *pp.Price
	}
	if pp.Stock != nil {
		p.Stock = *pp.Stock
	}
}

// Patch applies pp to the current row inside one transaction, so a stock
// change made meanwhile is never overwritten by a stale copy.
func (s *ProductService) Patch(ctx context.Context, id string, pp ProductPatch) (*models.Product, error) {
	var out *models.Product
	err := s.Store.Atomic(ctx, func(st *storage.Store) error {
		p, err := findProduct(ctx, st, id)
		if err != nil {
			return err
		}
		pp.apply(p)
		if err := validateProduct(p); err != nil {
			return err
		}
		if err := st.Products.Update(ctx, p); err != nil {
			return err
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	reindex(ctx, s.Index, out)
	publish(ctx, s.Events, mykafka.TopicProduct, out.ID, map[string]any{
		"type":      "product_updated",
		"productID": out.ID,
		"name":      out.Name,
	})
	return out, nil
}

func findProduct(ctx context.Context, st *storage.Store, id string) (*models.Product, error) {
	p, err := st.Products.FindByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, fmt.Errorf("%w: product %s", ErrNotFound, id)
	}
	return p, err
}

func (s *ProductService) Get(ctx context.Context, id string) (*models.Product, error) {
	p, err := s.Store.ProductByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, fmt.Errorf("%w: product %s", ErrNotFound, id)
	}
	return p, err
}

func (s *ProductService) List(ctx context.Context) ([]models.Product, error) {
	return s.Store.Products(ctx)
}

func (s *ProductService) Page(ctx context.Context, offset, limit int) (int64, []models.Product, error) {
	return s.Store.ProductPage(ctx, offset, limit)
}

func (s *ProductService) Count(ctx context.Context) (int64, error) {
	return s.Store.ProductCount(ctx)
}

// Delete removes the product; its cart line goes with it through the
// foreign key cascade.
func (s *ProductService) Delete(ctx context.Context, id string) error {
	p, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.Store.DeleteProduct(ctx, id); err != nil {
		return err
	}
	if p.ImageKey != nil && s.Images != nil {
		if err := s.Images.Delete(ctx, *p.ImageKey); err != nil {
			logging.FromContext(ctx).Warn("image_delete_failed", "product_id", id, "error", err)
		}
	}

	unindex(ctx, s.Index, id)
	publish(ctx, s.Events, mykafka.TopicProduct, id, map[string]any{
		"type":      "product_deleted",
		"productID": id,
	})
	return nil
}

// UpdateStock overwrites the stock level.
func (s *ProductService) UpdateStock(ctx context.Context, id string, stock int) (*models.Product, error) {
	return s.mutateStock(ctx, id, func(p *models.Product) error {
		p.Stock = stock
		return nil
	})
}

// DecreaseStock takes n units out of stock.
func (s *ProductService) DecreaseStock(ctx context.Context, id string, n int) (*models.Product, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: quantity must be greater than zero", ErrValidation)
	}
	return s.mutateStock(ctx, id, func(p *models.Product) error {
		if p.Stock < n {
			return fmt.Errorf("%w: only %d left of %s", ErrInsufficientStock, p.Stock, p.Name)
		}
		p.Stock -= n
		return nil
	})
}

func (s *ProductService) mutateStock(ctx context.Context, id string, mutate func(p *models.Product) error) (*models.Product, error) {
	var out *models.Product
	err := s.Store.Atomic(ctx, func(st *storage.Store) error {
		p, err := findProduct(ctx, st, id)
		if err != nil {
			return err
		}
		if err := mutate(p); err != nil {
			return err
		}
		if err := validateProduct(p); err != nil {
			return err
		}
		if err := st.Products.Update(ctx, p); err != nil {
			return err
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	reindex(ctx, s.Index, out)
	publish(ctx, s.Events, mykafka.TopicProduct, out.ID, map[string]any{
		"type":      "product_stock_changed",
		"productID": out.ID,
		"stock":     out.Stock,
	})
	return out, nil
}

// SetImage normalizes raw and stores it either in the row or in the image
// store, replacing any previous image. Only the image columns are written.
func (s *ProductService) SetImage(ctx context.Context, id string, raw []byte) (*models.Product, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	data, err := imagecodec.Normalize(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	var encoded, key *string
	if s.Images == nil {
		b64 := imagecodec.ToBase64(data)
		encoded = &b64
	} else {
		k := imagestore.ProductKey(id)
		if err := s.Images.Save(ctx, k, data); err != nil {
			return nil, fmt.Errorf("save image: %w", err)
		}
		key = &k
	}

	var out *models.Product
	err = s.Store.Atomic(ctx, func(st *storage.Store) error {
		if err := st.Products.UpdateImage(ctx, id, encoded, key); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return fmt.Errorf("%w: product %s", ErrNotFound, id)
			}
			return err
		}
		p, err := findProduct(ctx, st, id)
		out = p
		return err
	})
	if err != nil {
		return nil, err
	}

	reindex(ctx, s.Index, out)
	publish(ctx, s.Events, mykafka.TopicProduct, out.ID, map[string]any{
		"type":      "product_image_updated",
		"productID": out.ID,
	})
	return out, nil
}

// SetImageBase64 accepts the Base64 form clients upload in JSON bodies.
func (s *ProductService) SetImageBase64(ctx context.Context, id, encoded string) (*models.Product, error) {
	raw, err := imagecodec.FromBase64(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return s.SetImage(ctx, id, raw)
}

// Image returns the product's JPEG, or the placeholder when it has none.
func (s *ProductService) Image(ctx context.Context, id string) ([]byte, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	switch {
	case p.ImageBase64 != nil && *p.ImageBase64 != "":
		data, err := imagecodec.FromBase64(*p.ImageBase64)
		if err == nil {
			return data, nil
		}
		logging.FromContext(ctx).Warn("image_decode_failed", "product_id", id, "error", err)
	case p.ImageKey != nil && s.Images != nil:
		data, err := s.Images.Load(ctx, *p.ImageKey)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, imagestore.ErrNotFound) {
			return nil, fmt.Errorf("load image: %w", err)
		}
	}
	return imagecodec.Placeholder(), nil
}
