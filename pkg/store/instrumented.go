package store

import (
	"context"
	"time"

	"github.com/marmos91/dataroom/pkg/metrics"
)

// instrumentedStore decorates an ItemStore with operation metrics.
type instrumentedStore struct {
	inner   ItemStore
	metrics metrics.StoreMetrics
}

// WithMetrics wraps inner so that every operation is recorded in m.
//
// A nil m returns inner unchanged.
func WithMetrics(inner ItemStore, m metrics.StoreMetrics) ItemStore {
	if m == nil {
		return inner
	}
	return &instrumentedStore{inner: inner, metrics: m}
}

func (s *instrumentedStore) observe(op string, start time.Time, err error) {
	s.metrics.RecordOperation(op, time.Since(start), err)
}

func (s *instrumentedStore) Initialize(ctx context.Context) error {
	start := time.Now()
	err := s.inner.Initialize(ctx)
	s.observe("Initialize", start, err)
	return err
}

func (s *instrumentedStore) GetAllItems(ctx context.Context) ([]Item, error) {
	start := time.Now()
	items, err := s.inner.GetAllItems(ctx)
	s.observe("GetAllItems", start, err)
	if err == nil {
		s.metrics.SetItemCount(int64(len(items)))
	}
	return items, err
}

func (s *instrumentedStore) GetItemByID(ctx context.Context, id string) (Item, error) {
	start := time.Now()
	item, err := s.inner.GetItemByID(ctx, id)
	s.observe("GetItemByID", start, err)
	return item, err
}

func (s *instrumentedStore) GetItemsByParent(ctx context.Context, parentID string) ([]Item, error) {
	start := time.Now()
	items, err := s.inner.GetItemsByParent(ctx, parentID)
	s.observe("GetItemsByParent", start, err)
	return items, err
}

func (s *instrumentedStore) GetItemsByType(ctx context.Context, itemType ItemType) ([]Item, error) {
	start := time.Now()
	items, err := s.inner.GetItemsByType(ctx, itemType)
	s.observe("GetItemsByType", start, err)
	return items, err
}

func (s *instrumentedStore) GetItemsByName(ctx context.Context, name string) ([]Item, error) {
	start := time.Now()
	items, err := s.inner.GetItemsByName(ctx, name)
	s.observe("GetItemsByName", start, err)
	return items, err
}

func (s *instrumentedStore) CreateItem(ctx context.Context, item Item) (Item, error) {
	start := time.Now()
	created, err := s.inner.CreateItem(ctx, item)
	s.observe("CreateItem", start, err)
	return created, err
}

func (s *instrumentedStore) UpdateItem(ctx context.Context, id string, update ItemUpdate) (Item, error) {
	start := time.Now()
	updated, err := s.inner.UpdateItem(ctx, id, update)
	s.observe("UpdateItem", start, err)
	return updated, err
}

func (s *instrumentedStore) DeleteItem(ctx context.Context, id string) error {
	start := time.Now()
	err := s.inner.DeleteItem(ctx, id)
	s.observe("DeleteItem", start, err)
	return err
}

func (s *instrumentedStore) DeleteItemsInParent(ctx context.Context, parentID string) error {
	start := time.Now()
	err := s.inner.DeleteItemsInParent(ctx, parentID)
	s.observe("DeleteItemsInParent", start, err)
	return err
}

func (s *instrumentedStore) DeleteItems(ctx context.Context, ids []string) error {
	start := time.Now()
	err := s.inner.DeleteItems(ctx, ids)
	s.observe("DeleteItems", start, err)
	return err
}

func (s *instrumentedStore) Healthcheck(ctx context.Context) error {
	return s.inner.Healthcheck(ctx)
}

func (s *instrumentedStore) Close() error {
	return s.inner.Close()
}
