package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Skotchmaster/artesan_shop/internal/models"
	"github.com/Skotchmaster/artesan_shop/internal/mykafka"
	"github.com/Skotchmaster/artesan_shop/internal/repo"
	"github.com/Skotchmaster/artesan_shop/internal/storage"
)

type ReceiptLine struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unit_price"`
	Quantity  int     `json:"quantity"`
	Subtotal  float64 `json:"subtotal"`
}

// Receipt summarizes a checkout. Stock is not decremented and nothing is
// persisted besides emptying the cart.
type Receipt struct {
	Lines     []ReceiptLine `json:"lines"`
	Items     int           `json:"items"`
	Total     float64       `json:"total"`
	CreatedAt time.Time     `json:"created_at"`
}

type CartService struct {
	Store  *storage.Manager
	Events mykafka.Publisher
}

func NewCartService(store *storage.Manager, events mykafka.Publisher) *CartService {
	return &CartService{Store: store, Events: events}
}

// AddToCart adds qty units, failing when the line would exceed live stock.
func (s *CartService) AddToCart(ctx context.Context, productID string, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("%w: quantity must be greater than zero", ErrValidation)
	}

	var total int
	err := s.Store.Atomic(ctx, func(st *storage.Store) error {
		p, err := st.Products.FindByID(ctx, productID)
		if errors.Is(err, repo.ErrNotFound) {
			return fmt.Errorf("%w: product %s", ErrNotFound, productID)
		}
		if err != nil {
			return err
		}

		line, err := st.Cart.FindByProductID(ctx, productID)
		switch {
		case errors.Is(err, repo.ErrNotFound):
			if qty > p.Stock {
				return fmt.Errorf("%w: only %d left of %s", ErrInsufficientStock, p.Stock, p.Name)
			}
			total = qty
			return st.Cart.Insert(ctx, productID, qty)
		case err != nil:
			return err
		}

		total = line.Quantity + qty
		if total > p.Stock {
			return fmt.Errorf("%w: only %d left of %s", ErrInsufficientStock, p.Stock, p.Name)
		}
		return st.Cart.UpdateQuantity(ctx, productID, total)
	})
	if err != nil {
		return err
	}

	publish(ctx, s.Events, mykafka.TopicCart, productID, map[string]any{
		"type":      "cart_item_added",
		"productID": productID,
		"added":     qty,
		"quantity":  total,
	})
	return nil
}

// UpdateQuantity overwrites the line quantity; qty <= 0 removes the line.
func (s *CartService) UpdateQuantity(ctx context.Context, productID string, qty int) error {
	if qty <= 0 {
		return s.RemoveFromCart(ctx, productID)
	}

	err := s.Store.Atomic(ctx, func(st *storage.Store) error {
		if _, err := st.Cart.FindByProductID(ctx, productID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return fmt.Errorf("%w: product %s is not in the cart", ErrNotFound, productID)
			}
			return err
		}
		p, err := st.Products.FindByID(ctx, productID)
		if err != nil {
			return err
		}
		if qty > p.Stock {
			return fmt.Errorf("%w: only %d left of %s", ErrInsufficientStock, p.Stock, p.Name)
		}
		return st.Cart.UpdateQuantity(ctx, productID, qty)
	})
	if err != nil {
		return err
	}

	publish(ctx, s.Events, mykafka.TopicCart, productID, map[string]any{
		"type":      "cart_item_updated",
		"productID": productID,
		"quantity":  qty,
	})
	return nil
}

func (s *CartService) RemoveFromCart(ctx context.Context, productID string) error {
	if err := s.Store.RemoveFromCart(ctx, productID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return fmt.Errorf("%w: product %s is not in the cart", ErrNotFound, productID)
		}
		return err
	}

	publish(ctx, s.Events, mykafka.TopicCart, productID, map[string]any{
		"type":      "cart_item_removed",
		"productID": productID,
	})
	return nil
}

func (s *CartService) GetCart(ctx context.Context) ([]models.CartItem, error) {
	return s.Store.Cart(ctx)
}

func (s *CartService) GetCartTotal(ctx context.Context) (float64, error) {
	items, err := s.Store.Cart(ctx)
	if err != nil {
		return 0, err
	}
	var total float64
	for _, it := range items {
		total += it.TotalPrice()
	}
	return total, nil
}

func (s *CartService) GetCartItemCount(ctx context.Context) (int, error) {
	return s.Store.CartItemCount(ctx)
}

func (s *CartService) ClearCart(ctx context.Context) error {
	if err := s.Store.ClearCart(ctx); err != nil {
		return err
	}
	publish(ctx, s.Events, mykafka.TopicCart, "", map[string]any{"type": "cart_cleared"})
	return nil
}

// Checkout verifies every line against live stock and empties the cart.
func (s *CartService) Checkout(ctx context.Context) (*Receipt, error) {
	receipt := &Receipt{CreatedAt: time.Now().UTC()}

	err := s.Store.Atomic(ctx, func(st *storage.Store) error {
		items, err := st.Cart.ListWithProducts(ctx)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return fmt.Errorf("%w: cart is empty", ErrValidation)
		}

		for _, it := range items {
			if it.Quantity > it.Product.Stock {
				return fmt.Errorf("%w: only %d left of %s", ErrInsufficientStock, it.Product.Stock, it.Product.Name)
			}
			sub := it.TotalPrice()
			receipt.Lines = append(receipt.Lines, ReceiptLine{
				ProductID: it.ProductID,
				Name:      it.Product.Name,
				UnitPrice: it.Product.Price,
				Quantity:  it.Quantity,
				Subtotal:  sub,
			})
			receipt.Items += it.Quantity
			receipt.Total += sub
		}
		return st.Cart.Clear(ctx)
	})
	if err != nil {
		return nil, err
	}

	publish(ctx, s.Events, mykafka.TopicCart, "", map[string]any{
		"type":  "checkout_completed",
		"items": receipt.Items,
		"total": receipt.Total,
	})
	return receipt, nil
}
