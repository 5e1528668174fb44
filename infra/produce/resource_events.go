package produce

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

const resourceExchange = "resource_exchange"

type ResourceEvent struct {
	ResourceType string    `json:"resourceType"`
	ResourceID   uuid.UUID `json:"resourceId"`
	Action       string    `json:"action"`
	Detail       string    `json:"detail,omitempty"`
	OccurredAt   time.Time `json:"occurredAt"`
}

type ResourceEventService struct {
	channel *amqp.Channel
}

func InitResourceEventService(channel *amqp.Channel) *ResourceEventService {
	return &ResourceEventService{
		channel: channel,
	}
}

func (s *ResourceEventService) PublishServerEvent(ctx context.Context, serverID uuid.UUID, action, detail string) error {
	return s.publish(ctx, "resource.server."+action, ResourceEvent{
		ResourceType: "server",
		ResourceID:   serverID,
		Action:       action,
		Detail:       detail,
		OccurredAt:   time.Now().UTC(),
	})
}

func (s *ResourceEventService) PublishVolumeEvent(ctx context.Context, volumeID uuid.UUID, action, detail string) error {
	return s.publish(ctx, "resource.volume."+action, ResourceEvent{
		ResourceType: "volume",
		ResourceID:   volumeID,
		Action:       action,
		Detail:       detail,
		OccurredAt:   time.Now().UTC(),
	})
}

func (s *ResourceEventService) PublishFloatingipEvent(ctx context.Context, floatingipID uuid.UUID, action, detail string) error {
	return s.publish(ctx, "resource.floatingip."+action, ResourceEvent{
		ResourceType: "floatingip",
		ResourceID:   floatingipID,
		Action:       action,
		Detail:       detail,
		OccurredAt:   time.Now().UTC(),
	})
}

func (s *ResourceEventService) publish(ctx context.Context, routingKey string, event ResourceEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal resource event: %w", err)
	}

	err = s.channel.PublishWithContext(
		ctx,
		resourceExchange, // exchange
		routingKey,       // routing key
		false,            // mandatory
		false,            // immediate
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)

	if err != nil {
		return fmt.Errorf("failed to publish resource event: %w", err)
	}

	return nil
}
