package orders

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/harvestlane/veggiebox-backend/pkg/errors"
	"github.com/harvestlane/veggiebox-backend/pkg/logger"
	"github.com/harvestlane/veggiebox-backend/pkg/shopify"
)

type stubRepo struct {
	mu        sync.Mutex
	docs      map[int64]Order
	insertErr error
}

func newStubRepo() *stubRepo {
	return &stubRepo{docs: map[int64]Order{}}
}

func (s *stubRepo) Insert(ctx context.Context, order Order) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.insertErr != nil {
		return false, s.insertErr
	}
	if _, exists := s.docs[order.ID]; exists {
		return false, nil
	}
	s.docs[order.ID] = order
	return true, nil
}

func (s *stubRepo) Update(ctx context.Context, order Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[order.ID] = order
	return nil
}

func (s *stubRepo) Remove(ctx context.Context, id int64, orderNumber string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.docs[id]; ok {
		if orderNumber == "" || existing.OrderNumber == orderNumber {
			delete(s.docs, id)
		}
	}
	return nil
}

func (s *stubRepo) FindByID(ctx context.Context, id int64) (*Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if order, ok := s.docs[id]; ok {
		return &order, nil
	}
	return nil, nil
}

func (s *stubRepo) FindByDay(ctx context.Context, day string, sources []string) ([]Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := []Order{}
	for _, order := range s.docs {
		if order.Delivered != day {
			continue
		}
		if len(sources) > 0 {
			match := false
			for _, src := range sources {
				if order.Source == src {
					match = true
				}
			}
			if !match {
				continue
			}
		}
		result = append(result, order)
	}
	return result, nil
}

func (s *stubRepo) DeliveryDays(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := map[string]bool{}
	days := []string{}
	for _, order := range s.docs {
		if !seen[order.Delivered] {
			seen[order.Delivered] = true
			days = append(days, order.Delivered)
		}
	}
	return days, nil
}

func (s *stubRepo) ReassignDay(ctx context.Context, ids []int64, day string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	for _, id := range ids {
		if order, ok := s.docs[id]; ok && order.Delivered != day {
			order.Delivered = day
			s.docs[id] = order
			count++
		}
	}
	return count, nil
}

func (s *stubRepo) Count(ctx context.Context, day string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	for _, order := range s.docs {
		if day == "" || order.Delivered == day {
			count++
		}
	}
	return count, nil
}

type stubTagger struct {
	mu    sync.Mutex
	calls map[int64]string
	err   error
}

func (s *stubTagger) UpdateOrderTags(ctx context.Context, orderID int64, tags string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.calls == nil {
		s.calls = map[int64]string{}
	}
	s.calls[orderID] = tags
	return s.err
}

func newTestService(t *testing.T, repo Repository, tagger OrderTagger) Service {
	t.Helper()
	svc, err := NewService(repo, testResolver(t), tagger, nil, logger.New(logger.Options{ServiceName: "test"}), 4)
	require.NoError(t, err)
	return svc
}

func TestImportCSVTwiceIsIdempotent(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(t, repo, nil)
	impl := svc.(*service)
	impl.now = func() time.Time { return time.Unix(1609890000, 0) }

	input := csvHeader + "\n" +
		"Jo,,,,,,jo@x.com,Medium Box,,,,30\n" +
		"Sam,,,,,,sam@x.com,Large Box,,,,40\n"

	first, err := svc.ImportCSV(context.Background(), strings.NewReader(input), "Thu Jan 07 2021")
	require.NoError(t, err)
	assert.Equal(t, 2, first.Imported)
	assert.Equal(t, 0, first.Skipped)

	second, err := svc.ImportCSV(context.Background(), strings.NewReader(input), "Thu Jan 07 2021")
	require.NoError(t, err)
	assert.Equal(t, 0, second.Imported)
	assert.Equal(t, 2, second.Skipped)
	assert.Equal(t, int64(2), second.Total)
	assert.Len(t, repo.docs, 2)
}

func TestImportCSVGathersRowErrors(t *testing.T) {
	repo := newStubRepo()
	repo.insertErr = errors.New("write refused")
	svc := newTestService(t, repo, nil)

	input := csvHeader + "\nJo,,,,,,jo@x.com,Medium Box,,,,30\n"
	_, err := svc.ImportCSV(context.Background(), strings.NewReader(input), "Thu Jan 07 2021")
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeStorage, typed.Code())
}

func TestIngestStoresAndTags(t *testing.T) {
	repo := newStubRepo()
	tagger := &stubTagger{}
	svc := newTestService(t, repo, tagger)

	src := shopify.Order{
		ID:             4711,
		OrderNumber:    1001,
		NoteAttributes: []shopify.NoteAttribute{{Name: "Delivery Date", Value: "Thu Jan 07 2021"}},
		LineItems:      []shopify.LineItem{{Title: "Medium Box"}},
	}

	order, inserted, err := svc.Ingest(context.Background(), src)
	require.NoError(t, err)
	assert.True(t, inserted)
	assert.Equal(t, "Thu Jan 07 2021", tagger.calls[4711])
	assert.Equal(t, "Medium Box", order.SKU)

	// Redelivery of the same webhook is a no-op and does not re-tag.
	tagger.calls = nil
	_, inserted, err = svc.Ingest(context.Background(), src)
	require.NoError(t, err)
	assert.False(t, inserted)
	assert.Empty(t, tagger.calls)
}

func TestIngestTagFailureDoesNotUnwindStore(t *testing.T) {
	repo := newStubRepo()
	tagger := &stubTagger{err: errors.New("platform down")}
	svc := newTestService(t, repo, tagger)

	_, inserted, err := svc.Ingest(context.Background(), shopify.Order{
		ID:             5,
		NoteAttributes: []shopify.NoteAttribute{{Name: "Delivery Date", Value: "Thu Jan 07 2021"}},
	})
	require.NoError(t, err)
	assert.True(t, inserted)
	assert.Len(t, repo.docs, 1)
}

func TestCreateRejectsDuplicate(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(t, repo, nil)

	created, err := svc.Create(context.Background(), Order{ID: 1, SKU: "Medium Box", Delivered: "Thu Jan 07 2021"})
	require.NoError(t, err)
	require.NotNil(t, created)

	_, err = svc.Create(context.Background(), Order{ID: 1, SKU: "Medium Box"})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeDuplicate, pkgerrors.As(err).Code())
}

func TestCreateAssignsSentinelDay(t *testing.T) {
	svc := newTestService(t, newStubRepo(), nil)

	created, err := svc.Create(context.Background(), Order{ID: 7, SKU: "Medium Box"})
	require.NoError(t, err)
	assert.Equal(t, "No delivery date", created.Delivered)
	require.NotNil(t, created.Addons)
}

func TestReassignDay(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(t, repo, nil)

	for id := int64(1); id <= 3; id++ {
		_, err := svc.Create(context.Background(), Order{ID: id, SKU: "Medium Box", Delivered: "Thu Jan 07 2021"})
		require.NoError(t, err)
	}

	count, err := svc.ReassignDay(context.Background(), []int64{1, 2}, "Sat Jan 09 2021")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	moved, err := svc.ListByDay(context.Background(), "Sat Jan 09 2021", nil)
	require.NoError(t, err)
	assert.Len(t, moved, 2)
}

func TestSearchRequiresQuery(t *testing.T) {
	svc := newTestService(t, newStubRepo(), nil)
	_, err := svc.Search(context.Background(), "  ")
	require.Error(t, err)
}

func TestSearchDetailRequiresSearcher(t *testing.T) {
	svc := newTestService(t, newStubRepo(), nil)
	_, err := svc.SearchDetail(context.Background(), "gid://platform/Order/1")
	require.Error(t, err)
}
