package gateway

import (
	"context"

	"github.com/amirhossein-jamali/payment-gateway/internal/domain/entity"
)

// EventPublisher ships committed transaction lifecycle events to other systems
type EventPublisher interface {
	Publish(ctx context.Context, event entity.TransactionEvent) error
	Close() error
}
