package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/Sandanitin/AJ-Mana-Style/internal/cart"
	"github.com/Sandanitin/AJ-Mana-Style/internal/domain"
	pkgkafka "github.com/Sandanitin/AJ-Mana-Style/pkg/kafka"
	"github.com/Sandanitin/AJ-Mana-Style/pkg/logger"
)

// Kafka topics for storefront events.
var (
	TopicCartUpdated     = pkgkafka.Topic("cart", "updated")
	TopicWishlistUpdated = pkgkafka.Topic("wishlist", "updated")
	TopicOrderPlaced     = pkgkafka.Topic("order", "placed")
)

// Aggregate types.
const (
	AggregateTypeSession = "session"
	AggregateTypeOrder   = "order"
)

// SourceStorefront identifies events emitted by this service.
const SourceStorefront = "storefront"

// CartUpdatedData is the payload for a cart.updated event.
type CartUpdatedData struct {
	SessionID   string          `json:"session_id"`
	Operation   string          `json:"operation"`
	Items       []LineData      `json:"items"`
	ItemCount   int             `json:"item_count"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// LineData is one cart line within cart events.
type LineData struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

// WishlistUpdatedData is the payload for a wishlist.updated event.
type WishlistUpdatedData struct {
	SessionID  string   `json:"session_id"`
	Operation  string   `json:"operation"`
	ProductIDs []string `json:"product_ids"`
}

// OrderPlacedData is the payload for an order.placed event.
type OrderPlacedData struct {
	SessionID     string          `json:"session_id"`
	OrderID       string          `json:"order_id"`
	PaymentMethod string          `json:"payment_method"`
	Email         string          `json:"email"`
	ItemCount     int             `json:"item_count"`
	Amount        decimal.Decimal `json:"amount"`
	CouponCode    string          `json:"coupon_code,omitempty"`
}

// Publisher sends an event envelope to a topic.
type Publisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// Producer publishes storefront domain events.
type Producer struct {
	kafka  Publisher
	logger *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(kafka Publisher, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// ContainerObserver returns a cart.Observer that publishes the collection a
// mutation touched. Publish failures are logged and dropped.
func (p *Producer) ContainerObserver() cart.Observer {
	return func(ctx context.Context, s cart.Snapshot) {
		var err error
		switch s.Op {
		case "add_to_wishlist", "remove_from_wishlist":
			err = p.PublishWishlistUpdated(ctx, s)
		case "move_to_cart", "reload":
			if err = p.PublishCartUpdated(ctx, s); err == nil {
				err = p.PublishWishlistUpdated(ctx, s)
			}
		default:
			err = p.PublishCartUpdated(ctx, s)
		}
		if err != nil {
			p.logger.ErrorContext(ctx, "failed to publish container event",
				slog.String("session_id", s.Session),
				slog.String("operation", s.Op),
				slog.String("error", err.Error()),
			)
		}
	}
}

// PublishCartUpdated publishes a cart.updated event.
func (p *Producer) PublishCartUpdated(ctx context.Context, s cart.Snapshot) error {
	items := make([]LineData, len(s.Cart))
	for i, item := range s.Cart {
		items[i] = LineData{
			ProductID: item.ID.String(),
			Name:      item.Name,
			Price:     item.Price,
			Quantity:  item.Quantity,
		}
	}

	data := CartUpdatedData{
		SessionID:   s.Session,
		Operation:   s.Op,
		Items:       items,
		ItemCount:   s.Cart.Count(),
		TotalAmount: s.Cart.Total(),
	}

	return p.publish(ctx, TopicCartUpdated, s.Session, AggregateTypeSession, data)
}

// PublishWishlistUpdated publishes a wishlist.updated event.
func (p *Producer) PublishWishlistUpdated(ctx context.Context, s cart.Snapshot) error {
	ids := make([]string, len(s.Wishlist))
	for i, item := range s.Wishlist {
		ids[i] = item.ID.String()
	}

	data := WishlistUpdatedData{
		SessionID:  s.Session,
		Operation:  s.Op,
		ProductIDs: ids,
	}

	return p.publish(ctx, TopicWishlistUpdated, s.Session, AggregateTypeSession, data)
}

// PublishOrderPlaced publishes an order.placed event.
func (p *Producer) PublishOrderPlaced(ctx context.Context, session, orderID, method string, payload domain.OrderPayload) error {
	data := OrderPlacedData{
		SessionID:     session,
		OrderID:       orderID,
		PaymentMethod: method,
		Email:         payload.CustomerInfo.Email,
		ItemCount:     payload.CartItems.Count(),
		Amount:        payload.Amount,
	}
	if payload.AppliedCoupon != nil {
		data.CouponCode = payload.AppliedCoupon.Code
	}

	return p.publish(ctx, TopicOrderPlaced, orderID, AggregateTypeOrder, data)
}

func (p *Producer) publish(ctx context.Context, topic, aggregateID, aggregateType string, data any) error {
	event, err := pkgkafka.NewEvent(topic, SourceStorefront, data,
		pkgkafka.ForAggregate(aggregateType, aggregateID),
		pkgkafka.CorrelatedWith(logger.CorrelationIDFromContext(ctx)),
		pkgkafka.WithMetadata("session_id", logger.SessionIDFromContext(ctx)),
	)
	if err != nil {
		return err
	}

	if err := p.kafka.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published event",
		slog.String("topic", topic),
		slog.String("aggregate_id", aggregateID),
	)
	return nil
}

// Discard is a Publisher that drops every event. It is used when Kafka is
// not configured.
type Discard struct{}

// Publish drops the event.
func (Discard) Publish(context.Context, string, *pkgkafka.Event) error { return nil }
