package event

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Sandanitin/AJ-Mana-Style/internal/cart"
	"github.com/Sandanitin/AJ-Mana-Style/internal/domain"
	pkgkafka "github.com/Sandanitin/AJ-Mana-Style/pkg/kafka"
	"github.com/Sandanitin/AJ-Mana-Style/pkg/logger"
)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, topic string, event *pkgkafka.Event) error {
	return m.Called(ctx, topic, event).Error(0)
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func snapshot(op string) cart.Snapshot {
	return cart.Snapshot{
		Session: "sess-1",
		Op:      op,
		Cart: domain.Cart{{
			Product:  domain.Product{ID: "p1", Name: "Kanchi", Price: decimal.NewFromInt(1200)},
			Quantity: 2,
		}},
		Wishlist: domain.Wishlist{{Product: domain.Product{ID: "w1"}}},
	}
}

func TestPublishCartUpdated(t *testing.T) {
	pub := new(mockPublisher)
	var got *pkgkafka.Event
	pub.On("Publish", mock.Anything, TopicCartUpdated, mock.Anything).
		Run(func(args mock.Arguments) { got = args.Get(2).(*pkgkafka.Event) }).
		Return(nil)

	p := NewProducer(pub, newTestLogger())
	ctx := logger.WithCorrelationID(context.Background(), "corr-1")
	require.NoError(t, p.PublishCartUpdated(ctx, snapshot("add_to_cart")))

	require.NotNil(t, got)
	assert.Equal(t, "sess-1", got.AggregateID)
	assert.Equal(t, SourceStorefront, got.Source)
	assert.Equal(t, "corr-1", got.CorrelationID)

	var data CartUpdatedData
	require.NoError(t, got.UnmarshalData(&data))
	assert.Equal(t, 2, data.ItemCount)
	assert.Equal(t, "2400", data.TotalAmount.String())
	assert.Equal(t, "add_to_cart", data.Operation)
	require.Len(t, data.Items, 1)
	assert.Equal(t, "p1", data.Items[0].ProductID)
}

func TestContainerObserver_RoutesByOperation(t *testing.T) {
	tests := []struct {
		op     string
		topics []string
	}{
		{"add_to_cart", []string{TopicCartUpdated}},
		{"clear_cart", []string{TopicCartUpdated}},
		{"add_to_wishlist", []string{TopicWishlistUpdated}},
		{"remove_from_wishlist", []string{TopicWishlistUpdated}},
		{"move_to_cart", []string{TopicCartUpdated, TopicWishlistUpdated}},
	}
	for _, tt := range tests {
		t.Run(tt.op, func(t *testing.T) {
			pub := new(mockPublisher)
			for _, topic := range tt.topics {
				pub.On("Publish", mock.Anything, topic, mock.Anything).Return(nil).Once()
			}

			NewProducer(pub, newTestLogger()).ContainerObserver()(context.Background(), snapshot(tt.op))

			pub.AssertExpectations(t)
			pub.AssertNumberOfCalls(t, "Publish", len(tt.topics))
		})
	}
}

func TestContainerObserver_SwallowsPublishErrors(t *testing.T) {
	pub := new(mockPublisher)
	pub.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("broker down"))

	observe := NewProducer(pub, newTestLogger()).ContainerObserver()
	assert.NotPanics(t, func() { observe(context.Background(), snapshot("add_to_cart")) })
}

func TestPublishOrderPlaced(t *testing.T) {
	pub := new(mockPublisher)
	var got *pkgkafka.Event
	pub.On("Publish", mock.Anything, TopicOrderPlaced, mock.Anything).
		Run(func(args mock.Arguments) { got = args.Get(2).(*pkgkafka.Event) }).
		Return(nil)

	payload := domain.OrderPayload{
		Amount:        decimal.RequireFromString("2832.00"),
		CustomerInfo:  domain.CustomerInfo{Email: "meera@example.com"},
		CartItems:     snapshot("").Cart,
		AppliedCoupon: &domain.AppliedCoupon{Code: "DIWALI10"},
	}

	p := NewProducer(pub, newTestLogger())
	require.NoError(t, p.PublishOrderPlaced(context.Background(), "sess-1", "ORD-42", domain.PaymentMethodCOD, payload))

	var data OrderPlacedData
	require.NoError(t, got.UnmarshalData(&data))
	assert.Equal(t, "ORD-42", got.AggregateID)
	assert.Equal(t, "cod", data.PaymentMethod)
	assert.Equal(t, "DIWALI10", data.CouponCode)
	assert.Equal(t, 2, data.ItemCount)
}

func TestDiscard(t *testing.T) {
	p := NewProducer(Discard{}, newTestLogger())
	assert.NoError(t, p.PublishCartUpdated(context.Background(), snapshot("add_to_cart")))
}
