package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/artesan_shop/internal/mykafka"
)

func TestAddToCart_RespectsStock(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	bag := env.product(t, "Mochila wayuu", 120000, 3)

	err := env.cart.AddToCart(ctx, bag.ID, 5)
	require.ErrorIs(t, err, ErrInsufficientStock)
	assert.Equal(t, KindInsufficientStock, KindOf(err))

	require.NoError(t, env.cart.AddToCart(ctx, bag.ID, 3))
	err = env.cart.AddToCart(ctx, bag.ID, 1)
	require.ErrorIs(t, err, ErrInsufficientStock)

	n, err := env.cart.GetCartItemCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestAddToCart_IncrementsExistingLine(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	bag := env.product(t, "Mochila", 10, 10)

	require.NoError(t, env.cart.AddToCart(ctx, bag.ID, 2))
	require.NoError(t, env.cart.AddToCart(ctx, bag.ID, 3))

	items, err := env.cart.GetCart(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Quantity)
	assert.Equal(t, "Mochila", items[0].Product.Name)

	ev, ok := env.events.Last(mykafka.TopicCart)
	require.True(t, ok)
	assert.Equal(t, "cart_item_added", ev.Data["type"])
	assert.EqualValues(t, 5, ev.Data["quantity"])
}

func TestAddToCart_RejectsBadInput(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	bag := env.product(t, "Mochila", 10, 10)

	assert.ErrorIs(t, env.cart.AddToCart(ctx, bag.ID, 0), ErrValidation)
	assert.ErrorIs(t, env.cart.AddToCart(ctx, bag.ID, -2), ErrValidation)
	assert.ErrorIs(t, env.cart.AddToCart(ctx, "missing", 1), ErrNotFound)
}

func TestUpdateQuantity_ZeroRemovesLine(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	bag := env.product(t, "Mochila", 10, 10)
	hat := env.product(t, "Sombrero vueltiao", 20, 10)

	require.NoError(t, env.cart.AddToCart(ctx, bag.ID, 2))
	require.NoError(t, env.cart.AddToCart(ctx, hat.ID, 4))

	require.NoError(t, env.cart.UpdateQuantity(ctx, bag.ID, 0))

	items, err := env.cart.GetCart(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, hat.ID, items[0].ProductID)

	n, err := env.cart.GetCartItemCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestUpdateQuantity_ValidatesAgainstLiveStock(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	bag := env.product(t, "Mochila", 10, 5)

	require.NoError(t, env.cart.AddToCart(ctx, bag.ID, 1))
	require.NoError(t, env.cart.UpdateQuantity(ctx, bag.ID, 5))

	_, err := env.products.UpdateStock(ctx, bag.ID, 2)
	require.NoError(t, err)

	err = env.cart.UpdateQuantity(ctx, bag.ID, 3)
	require.ErrorIs(t, err, ErrInsufficientStock)

	require.ErrorIs(t, env.cart.UpdateQuantity(ctx, "missing", 1), ErrNotFound)
}

func TestCartTotals(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	bag := env.product(t, "Mochila", 12.5, 10)
	hat := env.product(t, "Sombrero", 20, 10)

	require.NoError(t, env.cart.AddToCart(ctx, bag.ID, 2))
	require.NoError(t, env.cart.AddToCart(ctx, hat.ID, 1))

	total, err := env.cart.GetCartTotal(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 45.0, total, 1e-9)

	require.NoError(t, env.cart.RemoveFromCart(ctx, hat.ID))
	total, err = env.cart.GetCartTotal(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 25.0, total, 1e-9)

	assert.ErrorIs(t, env.cart.RemoveFromCart(ctx, hat.ID), ErrNotFound)

	require.NoError(t, env.cart.ClearCart(ctx))
	n, err := env.cart.GetCartItemCount(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCheckout(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.cart.Checkout(ctx)
	require.ErrorIs(t, err, ErrValidation)

	bag := env.product(t, "Mochila", 10, 3)
	hat := env.product(t, "Sombrero", 5, 3)
	require.NoError(t, env.cart.AddToCart(ctx, bag.ID, 2))
	require.NoError(t, env.cart.AddToCart(ctx, hat.ID, 1))

	receipt, err := env.cart.Checkout(ctx)
	require.NoError(t, err)
	assert.Len(t, receipt.Lines, 2)
	assert.Equal(t, 3, receipt.Items)
	assert.InDelta(t, 25.0, receipt.Total, 1e-9)

	items, err := env.cart.GetCart(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)

	// checkout is a stub: stock is untouched
	p, err := env.products.Get(ctx, bag.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, p.Stock)
}

func TestCheckout_FailsWhenStockDropped(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	bag := env.product(t, "Mochila", 10, 3)
	require.NoError(t, env.cart.AddToCart(ctx, bag.ID, 3))

	_, err := env.products.DecreaseStock(ctx, bag.ID, 2)
	require.NoError(t, err)

	_, err = env.cart.Checkout(ctx)
	require.ErrorIs(t, err, ErrInsufficientStock)

	n, err := env.cart.GetCartItemCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestDeleteProduct_CascadesToCart(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	bag := env.product(t, "Mochila", 10, 3)
	require.NoError(t, env.cart.AddToCart(ctx, bag.ID, 1))

	require.NoError(t, env.products.Delete(ctx, bag.ID))

	items, err := env.cart.GetCart(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
}
