package event

import (
	"context"
	"strconv"

	"github.com/RobinsonKrusoe/intershop/internal/domain"
	"github.com/RobinsonKrusoe/intershop/pkg/kafka"
	"github.com/RobinsonKrusoe/intershop/pkg/logger"
)

// Topics carrying shop domain events.
const (
	TopicCatalog = "shop.catalog.events"
	TopicCart    = "shop.cart.events"
)

// Event types.
const (
	TypeProductCreated = "product.created"
	TypeCartUpdated    = "cart.updated"
	TypeOrderPlaced    = "order.placed"
)

const source = "intershop"

// Publisher emits shop domain events. Publishing is best-effort; callers log
// failures and carry on.
type Publisher interface {
	ProductCreated(ctx context.Context, product *domain.Product) error
	CartUpdated(ctx context.Context, orderID, productID int64, action domain.CartAction) error
	OrderPlaced(ctx context.Context, view *domain.OrderView) error
}

// ProductCreatedPayload is the data payload of a product.created event.
type ProductCreatedPayload struct {
	ProductID int64  `json:"product_id"`
	Title     string `json:"title"`
	Price     int64  `json:"price"`
}

// CartUpdatedPayload is the data payload of a cart.updated event.
type CartUpdatedPayload struct {
	OrderID   int64             `json:"order_id"`
	ProductID int64             `json:"product_id"`
	Action    domain.CartAction `json:"action"`
}

// OrderPlacedPayload is the data payload of an order.placed event.
type OrderPlacedPayload struct {
	OrderID   int64 `json:"order_id"`
	Total     int64 `json:"total"`
	LineCount int   `json:"line_count"`
}

// KafkaPublisher publishes domain events through the shared Kafka producer.
type KafkaPublisher struct {
	producer *kafka.Producer
}

// NewKafkaPublisher creates a Kafka-backed domain event publisher.
func NewKafkaPublisher(producer *kafka.Producer) *KafkaPublisher {
	return &KafkaPublisher{producer: producer}
}

// ProductCreated publishes a product.created event to the catalog topic.
func (p *KafkaPublisher) ProductCreated(ctx context.Context, product *domain.Product) error {
	payload := ProductCreatedPayload{
		ProductID: product.ID,
		Title:     product.Title,
		Price:     product.Price,
	}
	return p.publish(ctx, TopicCatalog, TypeProductCreated, product.ID, "product", payload)
}

// CartUpdated publishes a cart.updated event to the cart topic.
func (p *KafkaPublisher) CartUpdated(ctx context.Context, orderID, productID int64, action domain.CartAction) error {
	payload := CartUpdatedPayload{
		OrderID:   orderID,
		ProductID: productID,
		Action:    action,
	}
	return p.publish(ctx, TopicCart, TypeCartUpdated, orderID, "order", payload)
}

// OrderPlaced publishes an order.placed event to the cart topic.
func (p *KafkaPublisher) OrderPlaced(ctx context.Context, view *domain.OrderView) error {
	payload := OrderPlacedPayload{
		OrderID:   view.ID,
		Total:     view.Total,
		LineCount: len(view.Lines),
	}
	return p.publish(ctx, TopicCart, TypeOrderPlaced, view.ID, "order", payload)
}

func (p *KafkaPublisher) publish(ctx context.Context, topic, eventType string, aggregateID int64, aggregateType string, data any) error {
	evt, err := kafka.NewEvent(eventType, strconv.FormatInt(aggregateID, 10), aggregateType, source, data)
	if err != nil {
		return err
	}

	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		evt = evt.WithCorrelationID(id)
	}

	return p.producer.Publish(ctx, topic, evt)
}
