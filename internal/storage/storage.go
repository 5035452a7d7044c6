package storage

import (
	"context"
	"errors"
	"strings"
	"sync"

	"gorm.io/gorm"

	"github.com/Skotchmaster/artesan_shop/internal/database"
	"github.com/Skotchmaster/artesan_shop/internal/models"
	"github.com/Skotchmaster/artesan_shop/internal/repo"
)

// Store groups the per-table accessors bound to one connection or transaction.
type Store struct {
	Users    *repo.UserRepo
	Products *repo.ProductRepo
	Cart     *repo.CartRepo
	Session  *repo.SessionRepo
}

func newStore(db *gorm.DB) *Store {
	return &Store{
		Users:    &repo.UserRepo{DB: db},
		Products: &repo.ProductRepo{DB: db},
		Cart:     &repo.CartRepo{DB: db},
		Session:  &repo.SessionRepo{DB: db},
	}
}

// Manager is the single entry point to persisted state. Every call holds mu,
// so cart and stock mutations never interleave.
type Manager struct {
	mu    sync.Mutex
	db    *gorm.DB
	store *Store
}

func New(db *gorm.DB) *Manager {
	return &Manager{db: db, store: newStore(db)}
}

func Open(ctx context.Context, opts database.Options) (*Manager, error) {
	db, err := database.Open(ctx, opts)
	if err != nil {
		return nil, err
	}
	return New(db), nil
}

func (m *Manager) DB() *gorm.DB {
	return m.db
}

func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return database.Close(m.db)
}

// Atomic runs fn inside one transaction while holding the store lock. fn must
// use the Store it is given and never call back into the Manager.
func (m *Manager) Atomic(ctx context.Context, fn func(s *Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(newStore(tx))
	})
}

func (m *Manager) locked(fn func(s *Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(m.store)
}

// users

func (m *Manager) SaveUser(ctx context.Context, u *models.User) error {
	return m.locked(func(s *Store) error { return s.Users.Create(ctx, u) })
}

func (m *Manager) UpdateUser(ctx context.Context, u *models.User) error {
	return m.locked(func(s *Store) error { return s.Users.Update(ctx, u) })
}

func (m *Manager) DeleteUser(ctx context.Context, id string) error {
	return m.locked(func(s *Store) error { return s.Users.Delete(ctx, id) })
}

func (m *Manager) Users(ctx context.Context) (users []models.User, err error) {
	err = m.locked(func(s *Store) error {
		users, err = s.Users.List(ctx)
		return err
	})
	return users, err
}

func (m *Manager) UserCount(ctx context.Context) (n int64, err error) {
	err = m.locked(func(s *Store) error {
		n, err = s.Users.Count(ctx)
		return err
	})
	return n, err
}

func (m *Manager) UserByID(ctx context.Context, id string) (u *models.User, err error) {
	err = m.locked(func(s *Store) error {
		u, err = s.Users.FindByID(ctx, id)
		return err
	})
	return u, err
}

func (m *Manager) FindUserByUsername(ctx context.Context, username string) (u *models.User, err error) {
	err = m.locked(func(s *Store) error {
		u, err = s.Users.FindByUsername(ctx, username)
		return err
	})
	return u, err
}

func (m *Manager) UsernameExists(ctx context.Context, username string) (ok bool, err error) {
	err = m.locked(func(s *Store) error {
		ok, err = s.Users.UsernameExists(ctx, username)
		return err
	})
	return ok, err
}

func (m *Manager) EmailExists(ctx context.Context, email string) (ok bool, err error) {
	err = m.locked(func(s *Store) error {
		ok, err = s.Users.EmailExists(ctx, email)
		return err
	})
	return ok, err
}

// SearchUsers matches name or email; a blank query lists everyone.
func (m *Manager) SearchUsers(ctx context.Context, q string) (users []models.User, err error) {
	q = strings.TrimSpace(q)
	err = m.locked(func(s *Store) error {
		if q == "" {
			users, err = s.Users.List(ctx)
		} else {
			users, err = s.Users.Search(ctx, q)
		}
		return err
	})
	return users, err
}

// session

func (m *Manager) SetCurrentUser(ctx context.Context, u *models.User) error {
	return m.locked(func(s *Store) error {
		if u == nil {
			return s.Session.Clear(ctx)
		}
		return s.Session.Set(ctx, u.ID)
	})
}

// CurrentUser returns nil, nil when nobody is logged in.
func (m *Manager) CurrentUser(ctx context.Context) (u *models.User, err error) {
	err = m.locked(func(s *Store) error {
		id, err := s.Session.CurrentUserID(ctx)
		if err != nil || id == "" {
			return err
		}
		u, err = s.Users.FindByID(ctx, id)
		if errors.Is(err, repo.ErrNotFound) {
			u = nil
			return nil
		}
		return err
	})
	return u, err
}

// products

func (m *Manager) SaveProduct(ctx context.Context, p *models.Product) error {
	return m.locked(func(s *Store) error { return s.Products.Create(ctx, p) })
}

func (m *Manager) UpdateProduct(ctx context.Context, p *models.Product) error {
	return m.locked(func(s *Store) error { return s.Products.Update(ctx, p) })
}

func (m *Manager) DeleteProduct(ctx context.Context, id string) error {
	return m.locked(func(s *Store) error { return s.Products.Delete(ctx, id) })
}

func (m *Manager) Products(ctx context.Context) (items []models.Product, err error) {
	err = m.locked(func(s *Store) error {
		items, err = s.Products.List(ctx)
		return err
	})
	return items, err
}

func (m *Manager) ProductPage(ctx context.Context, offset, limit int) (total int64, items []models.Product, err error) {
	err = m.locked(func(s *Store) error {
		total, items, err = s.Products.Page(ctx, offset, limit)
		return err
	})
	return total, items, err
}

func (m *Manager) SearchProducts(ctx context.Context, q string, offset, limit int) (total int64, items []models.Product, err error) {
	err = m.locked(func(s *Store) error {
		total, items, err = s.Products.Search(ctx, q, offset, limit)
		return err
	})
	return total, items, err
}

func (m *Manager) ProductByID(ctx context.Context, id string) (p *models.Product, err error) {
	err = m.locked(func(s *Store) error {
		p, err = s.Products.FindByID(ctx, id)
		return err
	})
	return p, err
}

func (m *Manager) ProductCount(ctx context.Context) (n int64, err error) {
	err = m.locked(func(s *Store) error {
		n, err = s.Products.Count(ctx)
		return err
	})
	return n, err
}

// cart

// AddToCart inserts the line or bumps an existing one by quantity.
func (m *Manager) AddToCart(ctx context.Context, productID string, quantity int) error {
	return m.Atomic(ctx, func(s *Store) error {
		existing, err := s.Cart.FindByProductID(ctx, productID)
		switch {
		case err == nil:
			return s.Cart.UpdateQuantity(ctx, productID, existing.Quantity+quantity)
		case errors.Is(err, repo.ErrNotFound):
			return s.Cart.Insert(ctx, productID, quantity)
		default:
			return err
		}
	})
}

func (m *Manager) UpdateCartQuantity(ctx context.Context, productID string, quantity int) error {
	return m.locked(func(s *Store) error { return s.Cart.UpdateQuantity(ctx, productID, quantity) })
}

func (m *Manager) RemoveFromCart(ctx context.Context, productID string) error {
	return m.locked(func(s *Store) error { return s.Cart.Delete(ctx, productID) })
}

func (m *Manager) Cart(ctx context.Context) (items []models.CartItem, err error) {
	err = m.locked(func(s *Store) error {
		items, err = s.Cart.ListWithProducts(ctx)
		return err
	})
	return items, err
}

func (m *Manager) CartLineByProductID(ctx context.Context, productID string) (item *models.CartItem, err error) {
	err = m.locked(func(s *Store) error {
		item, err = s.Cart.FindByProductID(ctx, productID)
		return err
	})
	return item, err
}

func (m *Manager) CartItemCount(ctx context.Context) (n int, err error) {
	err = m.locked(func(s *Store) error {
		n, err = s.Cart.ItemCount(ctx)
		return err
	})
	return n, err
}

func (m *Manager) ClearCart(ctx context.Context) error {
	return m.locked(func(s *Store) error { return s.Cart.Clear(ctx) })
}

// ClearAll drops the cart and the session. Users and products stay.
func (m *Manager) ClearAll(ctx context.Context) error {
	return m.Atomic(ctx, func(s *Store) error {
		if err := s.Cart.Clear(ctx); err != nil {
			return err
		}
		return s.Session.Clear(ctx)
	})
}
