package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/artesan_shop/internal/database"
	"github.com/Skotchmaster/artesan_shop/internal/models"
	"github.com/Skotchmaster/artesan_shop/internal/mykafka"
	"github.com/Skotchmaster/artesan_shop/internal/storage"
)

type testEnv struct {
	store    *storage.Manager
	events   *mykafka.Recorder
	auth     *AuthService
	products *ProductService
	cart     *CartService
	index    *fakeIndex
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store, err := storage.Open(context.Background(), database.Options{Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	rec := &mykafka.Recorder{}
	idx := newFakeIndex()
	return &testEnv{
		store:    store,
		events:   rec,
		auth:     NewAuthService(store, rec),
		products: NewProductService(store, rec, nil, idx),
		cart:     NewCartService(store, rec),
		index:    idx,
	}
}

func (e *testEnv) product(t *testing.T, name string, price float64, stock int) *models.Product {
	t.Helper()
	p, err := e.products.Create(context.Background(), ProductInput{Name: name, Description: name + " hecha a mano", Price: price, Stock: stock})
	require.NoError(t, err)
	return p
}

func (e *testEnv) user(t *testing.T, username string) *models.User {
	t.Helper()
	u, err := e.auth.Register(context.Background(), RegisterInput{
		Name:     "User " + username,
		Email:    username + "@example.com",
		Username: username,
		Password: "secret1",
	})
	require.NoError(t, err)
	return u
}

type fakeIndex struct {
	mu      sync.Mutex
	docs    map[string]models.Product
	deleted []string
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{docs: map[string]models.Product{}}
}

func (f *fakeIndex) IndexProduct(_ context.Context, p *models.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.docs[p.ID] = *p
	return nil
}

func (f *fakeIndex) DeleteProduct(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.docs, id)
	f.deleted = append(f.deleted, id)
	return nil
}
