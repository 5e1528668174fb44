package produce

import amqp "github.com/rabbitmq/amqp091-go"

type Produce struct {
	ResourceEvents *ResourceEventService
}

func InitProduce(channel *amqp.Channel) *Produce {
	resourceEvents := InitResourceEventService(channel)
	if resourceEvents == nil {
		panic("Failed to initialize resource event service")
	}

	return &Produce{
		ResourceEvents: resourceEvents,
	}
}
