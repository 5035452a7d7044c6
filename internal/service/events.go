package service

import (
	"context"
	"time"

	"github.com/Skotchmaster/artesan_shop/internal/logging"
	"github.com/Skotchmaster/artesan_shop/internal/models"
	"github.com/Skotchmaster/artesan_shop/internal/mykafka"
)

const publishTimeout = 5 * time.Second

// Indexer mirrors catalog changes into a search backend.
type Indexer interface {
	IndexProduct(ctx context.Context, p *models.Product) error
	DeleteProduct(ctx context.Context, id string) error
}

// publish is best effort: a broker outage never fails the operation that
// produced the event.
func publish(ctx context.Context, p mykafka.Publisher, topic, key string, event map[string]any) {
	if p == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := p.PublishEvent(ctx, topic, key, event); err != nil {
		logging.FromContext(ctx).Error("kafka_publish_failed",
			"topic", topic,
			"type", event["type"],
			"error", err,
		)
	}
}

func reindex(ctx context.Context, idx Indexer, p *models.Product) {
	if idx == nil {
		return
	}
	if err := idx.IndexProduct(ctx, p); err != nil {
		logging.FromContext(ctx).Warn("search_index_failed", "product_id", p.ID, "error", err)
	}
}

func unindex(ctx context.Context, idx Indexer, id string) {
	if idx == nil {
		return
	}
	if err := idx.DeleteProduct(ctx, id); err != nil {
		logging.FromContext(ctx).Warn("search_unindex_failed", "product_id", id, "error", err)
	}
}
