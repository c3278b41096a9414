package boxes

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	pkgerrors "github.com/harvestlane/veggiebox-backend/pkg/errors"
	"github.com/harvestlane/veggiebox-backend/pkg/logger"
	"github.com/harvestlane/veggiebox-backend/pkg/shopify"
)

type stubBoxRepo struct {
	mu   sync.Mutex
	docs map[primitive.ObjectID]Box
}

func newStubBoxRepo() *stubBoxRepo {
	return &stubBoxRepo{docs: map[primitive.ObjectID]Box{}}
}

func (s *stubBoxRepo) Insert(ctx context.Context, box Box) (primitive.ObjectID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if box.ID.IsZero() {
		box.ID = primitive.NewObjectID()
	}
	s.docs[box.ID] = box
	return box.ID, nil
}

func (s *stubBoxRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*Box, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if box, ok := s.docs[id]; ok {
		return &box, nil
	}
	return nil, nil
}

func (s *stubBoxRepo) FindByDay(ctx context.Context, day string) ([]Box, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := []Box{}
	for _, box := range s.docs {
		if box.Delivered == day {
			result = append(result, box)
		}
	}
	return result, nil
}

func (s *stubBoxRepo) FindByDayAndProduct(ctx context.Context, day string, productID int64) (*Box, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, box := range s.docs {
		if box.Delivered == day && box.ShopifyProductID == productID {
			return &box, nil
		}
	}
	return nil, nil
}

func (s *stubBoxRepo) DeleteByID(ctx context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, id)
	return nil
}

func (s *stubBoxRepo) DeleteByDay(ctx context.Context, day string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	for id, box := range s.docs {
		if box.Delivered == day {
			delete(s.docs, id)
			count++
		}
	}
	return count, nil
}

func (s *stubBoxRepo) PushProduct(ctx context.Context, boxID primitive.ObjectID, field string, product Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	box := s.docs[boxID]
	if field == "included_products" {
		box.IncludedProducts = append(box.IncludedProducts, product)
	} else {
		box.AddOnProducts = append(box.AddOnProducts, product)
	}
	s.docs[boxID] = box
	return nil
}

func (s *stubBoxRepo) PullProduct(ctx context.Context, boxID primitive.ObjectID, field string, productID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	box := s.docs[boxID]
	filter := func(list []Product) []Product {
		kept := []Product{}
		for _, p := range list {
			if p.ID != productID {
				kept = append(kept, p)
			}
		}
		return kept
	}
	if field == "included_products" {
		box.IncludedProducts = filter(box.IncludedProducts)
	} else {
		box.AddOnProducts = filter(box.AddOnProducts)
	}
	s.docs[boxID] = box
	return nil
}

func (s *stubBoxRepo) SetActiveByID(ctx context.Context, id primitive.ObjectID, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	box := s.docs[id]
	box.Active = active
	s.docs[id] = box
	return nil
}

func (s *stubBoxRepo) SetActiveByDay(ctx context.Context, day string, active bool) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	for id, box := range s.docs {
		if box.Delivered == day {
			box.Active = active
			s.docs[id] = box
			count++
		}
	}
	return count, nil
}

func (s *stubBoxRepo) DeliveryDays(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := map[string]bool{}
	days := []string{}
	for _, box := range s.docs {
		if box.Delivered == CoreBoxDay || seen[box.Delivered] {
			continue
		}
		seen[box.Delivered] = true
		days = append(days, box.Delivered)
	}
	return days, nil
}

type stubFetcher struct {
	products []shopify.Product
	err      error
}

func (s *stubFetcher) FetchProducts(ctx context.Context, title string) ([]shopify.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	matched := []shopify.Product{}
	for _, p := range s.products {
		if title == "" || p.Title == title {
			matched = append(matched, p)
		}
	}
	return matched, nil
}

func mediumBoxProduct() shopify.Product {
	return shopify.Product{
		ID:     101,
		Title:  "Medium Box",
		Handle: "medium-box",
		Variants: []shopify.Variant{
			{ID: 201, ProductID: 101, SKU: "Medium Box", Price: "45.00"},
		},
	}
}

func newTestBoxService(t *testing.T, repo Repository, fetcher ProductFetcher) Service {
	t.Helper()
	svc, err := NewService(repo, fetcher, logger.New(logger.Options{ServiceName: "test"}))
	require.NoError(t, err)
	return svc
}

func TestAddBoxStoresPriceInCents(t *testing.T) {
	repo := newStubBoxRepo()
	svc := newTestBoxService(t, repo, &stubFetcher{products: []shopify.Product{mediumBoxProduct()}})

	box, err := svc.AddBox(context.Background(), "Thu Jan 07 2021", "Medium Box", false)
	require.NoError(t, err)
	assert.Equal(t, 4500, box.ShopifyPrice)
	assert.Equal(t, "Medium Box", box.ShopifySKU)
	assert.True(t, box.Active)
	require.NotNil(t, box.IncludedProducts)
}

func TestAddBoxTwiceLeavesOneBoxAndReportsSKU(t *testing.T) {
	repo := newStubBoxRepo()
	svc := newTestBoxService(t, repo, &stubFetcher{products: []shopify.Product{mediumBoxProduct()}})

	_, err := svc.AddBox(context.Background(), "Thu Jan 07 2021", "Medium Box", false)
	require.NoError(t, err)

	existing, err := svc.AddBox(context.Background(), "Thu Jan 07 2021", "Medium Box", false)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeDuplicate, typed.Code())
	assert.Contains(t, typed.Message(), "Medium Box")
	require.NotNil(t, existing)
	assert.Len(t, repo.docs, 1)
}

func TestAddBoxSameProductDifferentDayAllowed(t *testing.T) {
	repo := newStubBoxRepo()
	svc := newTestBoxService(t, repo, &stubFetcher{products: []shopify.Product{mediumBoxProduct()}})

	_, err := svc.AddBox(context.Background(), "Thu Jan 07 2021", "Medium Box", false)
	require.NoError(t, err)
	_, err = svc.AddBox(context.Background(), "Sat Jan 09 2021", "Medium Box", false)
	require.NoError(t, err)
	assert.Len(t, repo.docs, 2)
}

func TestAddBoxRejectsAmbiguousLookup(t *testing.T) {
	fetcher := &stubFetcher{products: []shopify.Product{mediumBoxProduct(), mediumBoxProduct()}}
	svc := newTestBoxService(t, newStubBoxRepo(), fetcher)

	_, err := svc.AddBox(context.Background(), "Thu Jan 07 2021", "Medium Box", false)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestAddBoxRejectsNoMatch(t *testing.T) {
	svc := newTestBoxService(t, newStubBoxRepo(), &stubFetcher{})
	_, err := svc.AddBox(context.Background(), "Thu Jan 07 2021", "Mystery Box", false)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestAddBoxSeedsFromCoreWithFreshIDs(t *testing.T) {
	repo := newStubBoxRepo()
	coreProduct := Product{ID: primitive.NewObjectID(), ShopifyTitle: "Carrots"}
	_, err := repo.Insert(context.Background(), Box{
		Delivered:        CoreBoxDay,
		ShopifySKU:       "Core",
		IncludedProducts: []Product{coreProduct},
		AddOnProducts:    []Product{},
	})
	require.NoError(t, err)

	svc := newTestBoxService(t, repo, &stubFetcher{products: []shopify.Product{mediumBoxProduct()}})
	box, err := svc.AddBox(context.Background(), "Thu Jan 07 2021", "Medium Box", true)
	require.NoError(t, err)

	require.Len(t, box.IncludedProducts, 1)
	assert.Equal(t, "Carrots", box.IncludedProducts[0].ShopifyTitle)
	assert.NotEqual(t, coreProduct.ID, box.IncludedProducts[0].ID)
}

func TestDuplicateBoxesSkipsExistingSKUs(t *testing.T) {
	repo := newStubBoxRepo()
	ctx := context.Background()
	_, err := repo.Insert(ctx, Box{Delivered: "Thu Jan 07 2021", ShopifySKU: "Medium Box", ShopifyProductID: 101})
	require.NoError(t, err)
	_, err = repo.Insert(ctx, Box{Delivered: "Thu Jan 07 2021", ShopifySKU: "Large Box", ShopifyProductID: 102})
	require.NoError(t, err)
	_, err = repo.Insert(ctx, Box{Delivered: "Sat Jan 09 2021", ShopifySKU: "Large Box", ShopifyProductID: 102})
	require.NoError(t, err)

	svc := newTestBoxService(t, repo, &stubFetcher{})
	result, err := svc.DuplicateBoxes(ctx, "Thu Jan 07 2021", "Sat Jan 09 2021")
	require.NoError(t, err)

	assert.Equal(t, 1, result.Created)
	assert.Equal(t, []string{"Large Box"}, result.Skipped)

	target, err := repo.FindByDay(ctx, "Sat Jan 09 2021")
	require.NoError(t, err)
	assert.Len(t, target, 2)
}

func TestDuplicateBoxesRejectsSameDay(t *testing.T) {
	svc := newTestBoxService(t, newStubBoxRepo(), &stubFetcher{})
	_, err := svc.DuplicateBoxes(context.Background(), "Thu Jan 07 2021", "Thu Jan 07 2021")
	require.Error(t, err)
}

func TestToggleActiveByDayOnlyTouchesThatDay(t *testing.T) {
	repo := newStubBoxRepo()
	ctx := context.Background()
	thuID, err := repo.Insert(ctx, Box{Delivered: "Thu Jan 07 2021", ShopifySKU: "Medium Box", Active: true})
	require.NoError(t, err)
	satID, err := repo.Insert(ctx, Box{Delivered: "Sat Jan 09 2021", ShopifySKU: "Medium Box", Active: true})
	require.NoError(t, err)

	svc := newTestBoxService(t, repo, &stubFetcher{})
	result, err := svc.ToggleActive(ctx, nil, "Thu Jan 07 2021", false)
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.Updated)

	thu, err := repo.FindByID(ctx, thuID)
	require.NoError(t, err)
	assert.False(t, thu.Active)
	sat, err := repo.FindByID(ctx, satID)
	require.NoError(t, err)
	assert.True(t, sat.Active)
}

func TestAddProductGeneratesID(t *testing.T) {
	repo := newStubBoxRepo()
	ctx := context.Background()
	boxID, err := repo.Insert(ctx, Box{Delivered: "Thu Jan 07 2021", ShopifySKU: "Medium Box"})
	require.NoError(t, err)

	svc := newTestBoxService(t, repo, &stubFetcher{})
	product, err := svc.AddProduct(ctx, boxID, ListIncluded, Product{ShopifyTitle: "Carrots"})
	require.NoError(t, err)
	assert.False(t, product.ID.IsZero())

	_, err = svc.AddProduct(ctx, boxID, "bogus", Product{ShopifyTitle: "Carrots"})
	require.Error(t, err)
}

func TestCreateCoreBoxIsSingular(t *testing.T) {
	repo := newStubBoxRepo()
	svc := newTestBoxService(t, repo, &stubFetcher{products: []shopify.Product{mediumBoxProduct()}})

	_, err := svc.CreateCoreBox(context.Background(), "Medium Box")
	require.NoError(t, err)

	_, err = svc.CreateCoreBox(context.Background(), "Medium Box")
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeDuplicate, pkgerrors.As(err).Code())
}
