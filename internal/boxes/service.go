package boxes

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	pkgerrors "github.com/harvestlane/veggiebox-backend/pkg/errors"
	"github.com/harvestlane/veggiebox-backend/pkg/logger"
	"github.com/harvestlane/veggiebox-backend/pkg/shopify"
)

// ProductFetcher looks up catalog products on the platform.
type ProductFetcher interface {
	FetchProducts(ctx context.Context, title string) ([]shopify.Product, error)
}

// DuplicateResult reports the outcome of copying boxes between days.
type DuplicateResult struct {
	Created int      `json:"created"`
	Skipped []string `json:"skipped"`
}

// ToggleResult reports how many boxes an active-flag change touched.
type ToggleResult struct {
	Updated int64 `json:"updated"`
}

// Service defines box-level operations beyond repository reads.
type Service interface {
	AddBox(ctx context.Context, day, productTitle string, seedFromCore bool) (*Box, error)
	RemoveBox(ctx context.Context, id primitive.ObjectID) error
	RemoveBoxesForDay(ctx context.Context, day string) (int64, error)
	DuplicateBoxes(ctx context.Context, fromDay, toDay string) (*DuplicateResult, error)
	AddProduct(ctx context.Context, boxID primitive.ObjectID, list string, product Product) (*Product, error)
	RemoveProduct(ctx context.Context, boxID primitive.ObjectID, list string, productID primitive.ObjectID) error
	ToggleActive(ctx context.Context, boxID *primitive.ObjectID, day string, active bool) (*ToggleResult, error)
	BoxesForDay(ctx context.Context, day string) ([]Box, error)
	DeliveryDays(ctx context.Context) ([]string, error)
	CoreBox(ctx context.Context) (*Box, error)
	CreateCoreBox(ctx context.Context, productTitle string) (*Box, error)
	DeleteCoreBox(ctx context.Context) error
}

type service struct {
	repo    Repository
	fetcher ProductFetcher
	logg    *logger.Logger
}

// NewService builds a box service with the required dependencies.
func NewService(repo Repository, fetcher ProductFetcher, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("boxes repository required")
	}
	if fetcher == nil {
		return nil, fmt.Errorf("product fetcher required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, fetcher: fetcher, logg: logg}, nil
}

// AddBox creates a box for the given delivery day from a platform catalog
// lookup. The lookup must match exactly one product; a box already present
// for the same day and product is a soft rejection reporting the existing
// box's SKU back to the caller.
func (s *service) AddBox(ctx context.Context, day, productTitle string, seedFromCore bool) (*Box, error) {
	if strings.TrimSpace(day) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery day required")
	}
	if strings.TrimSpace(productTitle) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product title required")
	}

	products, err := s.fetcher.FetchProducts(ctx, productTitle)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no matching product on platform")
	}
	if len(products) > 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "more than one matching product on platform").
			WithDetails(map[string]any{"matches": len(products)})
	}

	box, err := s.boxFromProduct(day, products[0])
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByDayAndProduct(ctx, day, box.ShopifyProductID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "check existing box")
	}
	if existing != nil {
		return existing, pkgerrors.New(pkgerrors.CodeDuplicate,
			fmt.Sprintf("box %s already exists for %s", existing.ShopifySKU, day)).
			WithDetails(map[string]any{"sku": existing.ShopifySKU})
	}

	if seedFromCore {
		core, err := s.repo.FindByDayAndProduct(ctx, CoreBoxDay, box.ShopifyProductID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "load core box")
		}
		if core == nil {
			core, err = s.coreBox(ctx)
			if err != nil {
				return nil, err
			}
		}
		if core != nil {
			box.IncludedProducts = cloneProducts(core.IncludedProducts)
			box.AddOnProducts = cloneProducts(core.AddOnProducts)
		}
	}

	id, err := s.repo.Insert(ctx, box)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "insert box")
	}
	box.ID = id
	return &box, nil
}

func (s *service) RemoveBox(ctx context.Context, id primitive.ObjectID) error {
	if id.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation, "box id required")
	}
	if err := s.repo.DeleteByID(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "delete box")
	}
	return nil
}

func (s *service) RemoveBoxesForDay(ctx context.Context, day string) (int64, error) {
	if strings.TrimSpace(day) == "" {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "delivery day required")
	}
	count, err := s.repo.DeleteByDay(ctx, day)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "delete boxes for day")
	}
	return count, nil
}

// DuplicateBoxes copies every box from one delivery day to another, skipping
// SKUs already present on the target day. The per-box inserts run
// concurrently but the call gathers every result before returning.
func (s *service) DuplicateBoxes(ctx context.Context, fromDay, toDay string) (*DuplicateResult, error) {
	if strings.TrimSpace(fromDay) == "" || strings.TrimSpace(toDay) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "source and target delivery days required")
	}
	if fromDay == toDay {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "source and target days must differ")
	}

	source, err := s.repo.FindByDay(ctx, fromDay)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "load source boxes")
	}
	target, err := s.repo.FindByDay(ctx, toDay)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "load target boxes")
	}
	existing := make(map[string]bool, len(target))
	for _, box := range target {
		existing[box.ShopifySKU] = true
	}

	result := &DuplicateResult{Skipped: []string{}}
	var mu sync.Mutex
	var opErrs error
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(4)

	for _, box := range source {
		box := box
		if existing[box.ShopifySKU] {
			result.Skipped = append(result.Skipped, box.ShopifySKU)
			continue
		}
		group.Go(func() error {
			copied := box
			copied.ID = primitive.NewObjectID()
			copied.Delivered = toDay
			copied.IncludedProducts = cloneProducts(box.IncludedProducts)
			copied.AddOnProducts = cloneProducts(box.AddOnProducts)

			_, err := s.repo.Insert(groupCtx, copied)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				opErrs = multierr.Append(opErrs, fmt.Errorf("box %s: %w", box.ShopifySKU, err))
				return nil
			}
			result.Created++
			return nil
		})
	}
	_ = group.Wait()

	if opErrs != nil {
		return result, pkgerrors.Wrap(pkgerrors.CodeStorage, opErrs, "duplicate boxes partially failed")
	}
	return result, nil
}

func (s *service) AddProduct(ctx context.Context, boxID primitive.ObjectID, list string, product Product) (*Product, error) {
	field, err := ProductField(list)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product list")
	}
	if strings.TrimSpace(product.ShopifyTitle) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product title required")
	}
	if product.ID.IsZero() {
		product.ID = primitive.NewObjectID()
	}
	if err := s.repo.PushProduct(ctx, boxID, field, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "add product to box")
	}
	return &product, nil
}

func (s *service) RemoveProduct(ctx context.Context, boxID primitive.ObjectID, list string, productID primitive.ObjectID) error {
	field, err := ProductField(list)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product list")
	}
	if err := s.repo.PullProduct(ctx, boxID, field, productID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "remove product from box")
	}
	return nil
}

// ToggleActive flips the active flag on one box, or on every box for the
// delivery day when no box id is supplied.
func (s *service) ToggleActive(ctx context.Context, boxID *primitive.ObjectID, day string, active bool) (*ToggleResult, error) {
	if boxID != nil && !boxID.IsZero() {
		if err := s.repo.SetActiveByID(ctx, *boxID, active); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "toggle box")
		}
		return &ToggleResult{Updated: 1}, nil
	}
	if strings.TrimSpace(day) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "box id or delivery day required")
	}
	count, err := s.repo.SetActiveByDay(ctx, day, active)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "toggle boxes for day")
	}
	return &ToggleResult{Updated: count}, nil
}

func (s *service) BoxesForDay(ctx context.Context, day string) ([]Box, error) {
	if strings.TrimSpace(day) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery day required")
	}
	list, err := s.repo.FindByDay(ctx, day)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "list boxes")
	}
	return list, nil
}

func (s *service) DeliveryDays(ctx context.Context) ([]string, error) {
	days, err := s.repo.DeliveryDays(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "list delivery days")
	}
	return days, nil
}

func (s *service) CoreBox(ctx context.Context) (*Box, error) {
	return s.coreBox(ctx)
}

func (s *service) coreBox(ctx context.Context) (*Box, error) {
	list, err := s.repo.FindByDay(ctx, CoreBoxDay)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "load core box")
	}
	if len(list) == 0 {
		return nil, nil
	}
	return &list[0], nil
}

// CreateCoreBox creates the singular template box from a catalog lookup.
func (s *service) CreateCoreBox(ctx context.Context, productTitle string) (*Box, error) {
	existing, err := s.coreBox(ctx)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, pkgerrors.New(pkgerrors.CodeDuplicate, "core box already exists").
			WithDetails(map[string]any{"sku": existing.ShopifySKU})
	}
	return s.AddBox(ctx, CoreBoxDay, productTitle, false)
}

func (s *service) DeleteCoreBox(ctx context.Context) error {
	if _, err := s.repo.DeleteByDay(ctx, CoreBoxDay); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "delete core box")
	}
	return nil
}

// boxFromProduct shapes a platform product into a box document. Prices come
// in as decimal strings and are stored in minor currency units.
func (s *service) boxFromProduct(day string, product shopify.Product) (Box, error) {
	box := Box{
		Delivered:        day,
		ShopifyTitle:     product.Title,
		ShopifyHandle:    product.Handle,
		ShopifySKU:       product.Title,
		ShopifyProductID: product.ID,
		IncludedProducts: []Product{},
		AddOnProducts:    []Product{},
		Active:           true,
	}
	if len(product.Variants) > 0 {
		variant := product.Variants[0]
		box.ShopifyVariantID = variant.ID
		if variant.SKU != "" {
			box.ShopifySKU = variant.SKU
		}
		price, err := decimal.NewFromString(variant.Price)
		if err != nil {
			return Box{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "parse variant price")
		}
		box.ShopifyPrice = int(price.Mul(decimal.NewFromInt(100)).IntPart())
	}
	return box, nil
}

func cloneProducts(products []Product) []Product {
	cloned := make([]Product, 0, len(products))
	for _, p := range products {
		fresh := p
		fresh.ID = primitive.NewObjectID()
		cloned = append(cloned, fresh)
	}
	return cloned
}
