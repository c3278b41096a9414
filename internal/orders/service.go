package orders

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/harvestlane/veggiebox-backend/internal/delivery"
	pkgerrors "github.com/harvestlane/veggiebox-backend/pkg/errors"
	"github.com/harvestlane/veggiebox-backend/pkg/logger"
	"github.com/harvestlane/veggiebox-backend/pkg/shopify"
)

// OrderTagger pushes delivery-day tags back onto platform orders.
type OrderTagger interface {
	UpdateOrderTags(ctx context.Context, orderID int64, tags string) error
}

// OrderSearcher runs the platform's order search and detail lookup.
type OrderSearcher interface {
	SearchOrders(ctx context.Context, query string) ([]shopify.OrderSummary, error)
	OrderDetail(ctx context.Context, gid string) (*shopify.OrderDetail, error)
}

// ImportResult reports what one upload batch did. Total is the number of
// orders stored for the day after the batch, imports included.
type ImportResult struct {
	Imported int    `json:"imported"`
	Skipped  int    `json:"skipped"`
	Total    int64  `json:"total"`
	Day      string `json:"delivered"`
}

// Service defines order-level operations beyond repository reads.
type Service interface {
	ImportCSV(ctx context.Context, r io.Reader, day string) (*ImportResult, error)
	ImportXLSX(ctx context.Context, r io.Reader, day string) (*ImportResult, error)
	Create(ctx context.Context, order Order) (*Order, error)
	Edit(ctx context.Context, order Order) error
	Delete(ctx context.Context, id int64, orderNumber string) error
	Get(ctx context.Context, id int64) (*Order, error)
	ListByDay(ctx context.Context, day string, sources []string) ([]Order, error)
	Days(ctx context.Context) ([]string, error)
	ReassignDay(ctx context.Context, ids []int64, day string) (int64, error)
	Ingest(ctx context.Context, src shopify.Order) (*Order, bool, error)
	RemoveFulfilled(ctx context.Context, id int64, orderNumber string) error
	Search(ctx context.Context, query string) ([]shopify.OrderSummary, error)
	SearchDetail(ctx context.Context, gid string) (*shopify.OrderDetail, error)
}

type service struct {
	repo        Repository
	resolver    *delivery.Resolver
	tagger      OrderTagger
	searcher    OrderSearcher
	logg        *logger.Logger
	concurrency int
	now         func() time.Time
}

// NewService builds an order service with the required dependencies.
func NewService(repo Repository, resolver *delivery.Resolver, tagger OrderTagger, searcher OrderSearcher, logg *logger.Logger, concurrency int) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if resolver == nil {
		return nil, fmt.Errorf("delivery resolver required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if concurrency <= 0 {
		concurrency = 4
	}
	return &service{
		repo:        repo,
		resolver:    resolver,
		tagger:      tagger,
		searcher:    searcher,
		logg:        logg,
		concurrency: concurrency,
		now:         time.Now,
	}, nil
}

func (s *service) ImportCSV(ctx context.Context, r io.Reader, day string) (*ImportResult, error) {
	if err := validateDay(day); err != nil {
		return nil, err
	}
	batch, err := ParseCSV(r, day, s.now())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "parse csv upload")
	}
	return s.insertBatch(ctx, day, batch)
}

func (s *service) ImportXLSX(ctx context.Context, r io.Reader, day string) (*ImportResult, error) {
	if err := validateDay(day); err != nil {
		return nil, err
	}
	batch, err := ParseXLSX(r, day, s.resolver)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "parse spreadsheet upload")
	}
	return s.insertBatch(ctx, day, batch)
}

// insertBatch stores one import batch with bounded concurrency and gathers
// every row error before reporting, so the response reflects the complete
// outcome of the upload.
func (s *service) insertBatch(ctx context.Context, day string, batch []Order) (*ImportResult, error) {
	result := &ImportResult{Day: day}
	if len(batch) == 0 {
		if total, err := s.repo.Count(ctx, day); err == nil {
			result.Total = total
		}
		return result, nil
	}

	var mu sync.Mutex
	var rowErrs error
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(s.concurrency)

	for _, order := range batch {
		order := order
		group.Go(func() error {
			inserted, err := s.repo.Insert(groupCtx, order)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				rowErrs = multierr.Append(rowErrs, fmt.Errorf("order %d: %w", order.ID, err))
				return nil
			}
			if inserted {
				result.Imported++
			} else {
				result.Skipped++
			}
			return nil
		})
	}
	_ = group.Wait()

	if rowErrs != nil {
		return result, pkgerrors.Wrap(pkgerrors.CodeStorage, rowErrs, "import batch partially failed")
	}
	if total, err := s.repo.Count(ctx, day); err == nil {
		result.Total = total
	}
	return result, nil
}

func (s *service) Create(ctx context.Context, order Order) (*Order, error) {
	if order.ID == 0 {
		order.ID = s.now().Unix()
	}
	if order.OrderNumber == "" {
		order.OrderNumber = fmt.Sprintf("%d", order.ID)
	}
	if strings.TrimSpace(order.Delivered) == "" {
		order.Delivered = delivery.NoDeliveryDate
	}
	ensureLists(&order)

	inserted, err := s.repo.Insert(ctx, order)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "insert order")
	}
	if !inserted {
		return nil, pkgerrors.New(pkgerrors.CodeDuplicate, "order already exists").
			WithDetails(map[string]any{"id": order.ID})
	}
	return &order, nil
}

func (s *service) Edit(ctx context.Context, order Order) error {
	if order.ID == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if strings.TrimSpace(order.Delivered) == "" {
		order.Delivered = delivery.NoDeliveryDate
	}
	ensureLists(&order)
	if err := s.repo.Update(ctx, order); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "update order")
	}
	return nil
}

func (s *service) Delete(ctx context.Context, id int64, orderNumber string) error {
	if id == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if err := s.repo.Remove(ctx, id, orderNumber); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "delete order")
	}
	return nil
}

func (s *service) Get(ctx context.Context, id int64) (*Order, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "find order")
	}
	return order, nil
}

func (s *service) ListByDay(ctx context.Context, day string, sources []string) ([]Order, error) {
	if err := validateDay(day); err != nil {
		return nil, err
	}
	list, err := s.repo.FindByDay(ctx, day, sources)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "list orders")
	}
	return list, nil
}

func (s *service) Days(ctx context.Context) ([]string, error) {
	days, err := s.repo.DeliveryDays(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "list delivery days")
	}
	return days, nil
}

func (s *service) ReassignDay(ctx context.Context, ids []int64, day string) (int64, error) {
	if len(ids) == 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "order ids required")
	}
	if err := validateDay(day); err != nil {
		return 0, err
	}
	count, err := s.repo.ReassignDay(ctx, ids, day)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "reassign delivery day")
	}
	return count, nil
}

// Ingest normalizes a webhook payload, stores it if absent and tags the
// platform order with its delivery day. The tag update is best-effort: a
// failure is logged but never unwinds the stored record.
func (s *service) Ingest(ctx context.Context, src shopify.Order) (*Order, bool, error) {
	order := FromPlatform(src, s.resolver)
	inserted, err := s.repo.Insert(ctx, order)
	if err != nil {
		return nil, false, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "store webhook order")
	}
	if inserted && s.tagger != nil && order.Delivered != delivery.NoDeliveryDate {
		if err := s.tagger.UpdateOrderTags(ctx, order.ID, order.Delivered); err != nil {
			s.logg.Error(s.logg.WithOrderID(ctx, order.ID), "tagging platform order failed", err)
		}
	}
	return &order, inserted, nil
}

func (s *service) RemoveFulfilled(ctx context.Context, id int64, orderNumber string) error {
	if err := s.repo.Remove(ctx, id, orderNumber); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "remove fulfilled order")
	}
	return nil
}

func (s *service) Search(ctx context.Context, query string) ([]shopify.OrderSummary, error) {
	if s.searcher == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "platform search unavailable")
	}
	if strings.TrimSpace(query) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "search query required")
	}
	return s.searcher.SearchOrders(ctx, query)
}

func (s *service) SearchDetail(ctx context.Context, gid string) (*shopify.OrderDetail, error) {
	if s.searcher == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "platform search unavailable")
	}
	if strings.TrimSpace(gid) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order gid required")
	}
	return s.searcher.OrderDetail(ctx, gid)
}

func ensureLists(order *Order) {
	if order.Including == nil {
		order.Including = []string{}
	}
	if order.Addons == nil {
		order.Addons = []string{}
	}
	if order.Removed == nil {
		order.Removed = []string{}
	}
}

func validateDay(day string) error {
	if strings.TrimSpace(day) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "delivery day required")
	}
	return nil
}
