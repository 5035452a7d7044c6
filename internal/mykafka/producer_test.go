package mykafka

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProducer_NeedsBrokers(t *testing.T) {
	_, err := NewProducer(nil)
	assert.Error(t, err)

	p, err := NewProducer([]string{"localhost:9092"})
	require.NoError(t, err)
	assert.NoError(t, p.Close())
}

func TestProducer_RejectsUnencodableEvent(t *testing.T) {
	p, err := NewProducer([]string{"localhost:9092"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })

	err = p.PublishEvent(context.Background(), TopicUser, "k", map[string]any{"bad": make(chan int)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "json.Marshal")
}

func TestRecorder(t *testing.T) {
	var r Recorder
	ctx := context.Background()

	require.NoError(t, r.PublishEvent(ctx, TopicCart, "p1", map[string]any{"type": "cart_item_added", "quantity": 2}))
	require.NoError(t, r.PublishEvent(ctx, TopicUser, "u1", map[string]any{"type": "user_logged_in"}))

	assert.Len(t, r.Events(""), 2)
	last, ok := r.Last(TopicCart)
	require.True(t, ok)
	assert.Equal(t, "p1", last.Key)
	assert.Equal(t, "cart_item_added", last.Data["type"])
	assert.EqualValues(t, 2, last.Data["quantity"])

	_, ok = r.Last(TopicProduct)
	assert.False(t, ok)
}

func TestNop(t *testing.T) {
	var p Publisher = Nop{}
	assert.NoError(t, p.PublishEvent(context.Background(), TopicProduct, "x", nil))
}
