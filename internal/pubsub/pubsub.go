package pubsub

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/message"
)

// Topics published by the drafting engine
const (
	// TopicPricingUpdated carries the recomputed PricingBreakdown after every
	// draft mutation and after commit reconciliation.
	TopicPricingUpdated = "pricing.updated"
	// TopicStockWarning carries advisory stock shortfall warnings.
	TopicStockWarning = "stock.warning"
)

// Publisher defines the interface for publishing engine events
type Publisher interface {
	// Publish publishes an event
	Publish(ctx context.Context, topic string, msg *message.Message) error
	// Close closes the publisher
	Close() error
}

// Subscriber defines the interface for subscribing to engine events
type Subscriber interface {
	// Subscribe starts consuming events
	Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error)
	// Close closes the subscriber
	Close() error
}

// PubSub combines both Publisher and Subscriber interfaces
type PubSub interface {
	Publisher
	Subscriber
}
