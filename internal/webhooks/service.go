package webhooks

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/harvestlane/veggiebox-backend/internal/orders"
	pkgerrors "github.com/harvestlane/veggiebox-backend/pkg/errors"
	"github.com/harvestlane/veggiebox-backend/pkg/logger"
	"github.com/harvestlane/veggiebox-backend/pkg/redis"
	"github.com/harvestlane/veggiebox-backend/pkg/shopify"
)

// Webhook topics as the platform names them.
const (
	TopicOrderCreated   = "orders/create"
	TopicOrderFulfilled = "orders/fulfilled"
)

// OrderIngester is the slice of the order service webhook processing needs.
type OrderIngester interface {
	Ingest(ctx context.Context, src shopify.Order) (*orders.Order, bool, error)
	RemoveFulfilled(ctx context.Context, id int64, orderNumber string) error
}

// FulfilledEvent is the payload of an order-fulfilled delivery.
type FulfilledEvent struct {
	ID          int64 `json:"id"`
	OrderNumber int64 `json:"order_number"`
}

// Service handles platform webhook deliveries. HandleOrderCreated returns as
// soon as the delivery is accepted; storage and tagging run detached so the
// sender's timeout is never at the mercy of downstream calls.
type Service interface {
	HandleOrderCreated(ctx context.Context, payload shopify.Order) error
	HandleOrderFulfilled(ctx context.Context, event FulfilledEvent) error
}

type service struct {
	ingester OrderIngester
	dedupe   redis.DedupeStore
	ttl      time.Duration
	logg     *logger.Logger

	// process is swapped in tests to run the detached work inline.
	process func(ctx context.Context, payload shopify.Order)
}

func NewService(ingester OrderIngester, dedupe redis.DedupeStore, ttl time.Duration, logg *logger.Logger) (Service, error) {
	if ingester == nil {
		return nil, fmt.Errorf("order ingester required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	s := &service{ingester: ingester, dedupe: dedupe, ttl: ttl, logg: logg}
	s.process = func(ctx context.Context, payload shopify.Order) {
		go s.ingest(ctx, payload)
	}
	return s, nil
}

// HandleOrderCreated guards against redelivery, then hands the payload off
// for detached processing. A nil return means the delivery was accepted, not
// that the order is stored yet.
func (s *service) HandleOrderCreated(ctx context.Context, payload shopify.Order) error {
	if payload.ID == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	if s.dedupe != nil {
		key := s.dedupe.WebhookKey(TopicOrderCreated, strconv.FormatInt(payload.ID, 10))
		fresh, err := s.dedupe.SetNX(ctx, key, time.Now().UTC().Format(time.RFC3339), s.ttl)
		if err != nil {
			// The guard is best effort; a redis outage must not drop orders.
			s.logg.Error(ctx, "webhook dedupe check failed", err)
		} else if !fresh {
			s.logg.Info(s.logg.WithOrderID(ctx, payload.ID), "duplicate webhook delivery skipped")
			return nil
		}
	}

	s.process(context.WithoutCancel(ctx), payload)
	return nil
}

func (s *service) ingest(ctx context.Context, payload shopify.Order) {
	ctx = s.logg.WithOrderID(ctx, payload.ID)
	order, inserted, err := s.ingester.Ingest(ctx, payload)
	if err != nil {
		s.logg.Error(ctx, "webhook order ingestion failed", err)
		return
	}
	if !inserted {
		s.logg.Info(ctx, "webhook order already stored")
		return
	}
	s.logg.Info(s.logg.WithDeliveryDay(ctx, order.Delivered), "webhook order stored")
}

// HandleOrderFulfilled deletes the stored order matching the event.
func (s *service) HandleOrderFulfilled(ctx context.Context, event FulfilledEvent) error {
	if event.ID == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	orderNumber := ""
	if event.OrderNumber != 0 {
		orderNumber = strconv.FormatInt(event.OrderNumber, 10)
	}
	if err := s.ingester.RemoveFulfilled(ctx, event.ID, orderNumber); err != nil {
		return err
	}
	s.logg.Info(s.logg.WithOrderID(ctx, event.ID), "fulfilled order removed")
	return nil
}
