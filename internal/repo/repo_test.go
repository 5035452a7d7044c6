package repo

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/artesan_shop/internal/database"
	"github.com/Skotchmaster/artesan_shop/internal/models"
)

func openDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(context.Background(), database.Options{Driver: "sqlite", Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

func TestTranslate(t *testing.T) {
	assert.NoError(t, translate(nil))
	assert.ErrorIs(t, translate(gorm.ErrRecordNotFound), ErrNotFound)
	assert.ErrorIs(t, translate(gorm.ErrDuplicatedKey), ErrConflict)
	assert.ErrorIs(t, translate(errors.New("UNIQUE constraint failed: users.email")), ErrConflict)
	assert.ErrorIs(t, translate(errors.New("FOREIGN KEY constraint failed")), ErrConflict)

	other := errors.New("disk I/O error")
	assert.Equal(t, other, translate(other))
}

func TestLikePattern(t *testing.T) {
	assert.Equal(t, "%bolso%", likePattern("bolso"))
	assert.Equal(t, `%50\%%`, likePattern("50%"))
	assert.Equal(t, `%a\_b%`, likePattern("a_b"))
	assert.Equal(t, `%c:\\x%`, likePattern(`c:\x`))
}

func TestUserRepo_UniqueUsername(t *testing.T) {
	ctx := context.Background()
	users := &UserRepo{DB: openDB(t)}

	require.NoError(t, users.Create(ctx, &models.User{Name: "Ana", Email: "ana@x.co", Username: "ana", PasswordHash: "h", Role: models.RoleUser}))
	err := users.Create(ctx, &models.User{Name: "Ana 2", Email: "other@x.co", Username: "ana", PasswordHash: "h", Role: models.RoleUser})
	assert.ErrorIs(t, err, ErrConflict)

	ok, err := users.EmailExists(ctx, "ana@x.co")
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = users.FindByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, users.Delete(ctx, "missing"), ErrNotFound)
}

func TestSessionRepo_SingleRow(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	users := &UserRepo{DB: db}
	sessions := &SessionRepo{DB: db}

	a := &models.User{Name: "A", Email: "a@x.co", Username: "a", PasswordHash: "h", Role: models.RoleUser}
	b := &models.User{Name: "B", Email: "b@x.co", Username: "b", PasswordHash: "h", Role: models.RoleAdmin}
	require.NoError(t, users.Create(ctx, a))
	require.NoError(t, users.Create(ctx, b))

	id, err := sessions.CurrentUserID(ctx)
	require.NoError(t, err)
	assert.Empty(t, id)

	require.NoError(t, sessions.Set(ctx, a.ID))
	require.NoError(t, sessions.Set(ctx, b.ID))

	id, err = sessions.CurrentUserID(ctx)
	require.NoError(t, err)
	assert.Equal(t, b.ID, id)

	var rows int64
	require.NoError(t, db.Model(&models.Session{}).Count(&rows).Error)
	assert.EqualValues(t, 1, rows)

	require.NoError(t, sessions.Clear(ctx))
	id, err = sessions.CurrentUserID(ctx)
	require.NoError(t, err)
	assert.Empty(t, id)
}

func TestCartRepo(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	products := &ProductRepo{DB: db}
	cart := &CartRepo{DB: db}

	p := &models.Product{Name: "Mochila", Description: "wayuu", Price: 120, Stock: 3}
	require.NoError(t, products.Create(ctx, p))

	require.NoError(t, cart.Insert(ctx, p.ID, 2))
	assert.ErrorIs(t, cart.Insert(ctx, p.ID, 1), ErrConflict)
	assert.ErrorIs(t, cart.Insert(ctx, "ghost", 1), ErrConflict)

	items, err := cart.ListWithProducts(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Mochila", items[0].Product.Name)
	assert.InDelta(t, 240.0, items[0].TotalPrice(), 1e-9)

	n, err := cart.ItemCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	assert.ErrorIs(t, cart.UpdateQuantity(ctx, "ghost", 1), ErrNotFound)
	assert.ErrorIs(t, cart.Delete(ctx, "ghost"), ErrNotFound)

	require.NoError(t, products.Delete(ctx, p.ID))
	n, err = cart.ItemCount(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestProductRepo_SearchEscapesWildcards(t *testing.T) {
	ctx := context.Background()
	products := &ProductRepo{DB: openDB(t)}

	require.NoError(t, products.Create(ctx, &models.Product{Name: "Bolso 100%", Description: "lana", Price: 10, Stock: 1}))
	require.NoError(t, products.Create(ctx, &models.Product{Name: "Bolso 1000", Description: "fique", Price: 10, Stock: 1}))

	total, items, err := products.Search(ctx, "100%", 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, "Bolso 100%", items[0].Name)

	total, _, err = products.Search(ctx, "bolso", 0, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
}
