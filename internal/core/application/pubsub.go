package application

import (
	"context"

	"github.com/tdex-network/aawalletd/internal/core/application/pubsub"
	"github.com/tdex-network/aawalletd/internal/core/ports"
)

type PubSubService interface {
	SecurePubSub() ports.SecurePubSub
	AddWebhook(ctx context.Context, event, endpoint, secret string) (string, error)
	RemoveWebhook(ctx context.Context, id string) error
	ListWebhooks(ctx context.Context, event string) ([]ports.Subscription, error)
	Close()
}

func NewPubSubService(pubsubSvc ports.SecurePubSub) PubSubService {
	return pubsub.NewService(pubsubSvc)
}
