// Package dataroom implements the folder and file services of the data room.
//
// Services sit on top of a store.ItemStore and enforce what the store does
// not: naming rules, sibling name uniqueness, parent existence, upload
// limits and cascading folder deletion. Every operation reports its outcome
// through a Result envelope instead of a Go error; failures carry an
// ErrorKind and a human-readable message.
package dataroom

import (
	"context"
	"fmt"
	"time"

	"github.com/marmos91/dataroom/internal/logger"
	"github.com/marmos91/dataroom/pkg/store"
)

// DataRoom bundles the folder and file services over one store.
type DataRoom struct {
	Folders *FolderService
	Files   *FileService

	store store.ItemStore
}

// New creates both services over s. They share options and mutation locks.
func New(s store.ItemStore, opts Options) *DataRoom {
	core := newService(s, opts)
	return &DataRoom{
		Folders: &FolderService{core},
		Files:   &FileService{core},
		store:   s,
	}
}

// Initialize prepares the underlying store. It is the only entry point that
// reports failure as a Go error.
func (d *DataRoom) Initialize(ctx context.Context) error {
	if err := d.store.Initialize(ctx); err != nil {
		return fmt.Errorf("failed to initialize item store: %w", err)
	}
	return nil
}

// Healthcheck reports whether the underlying store is usable.
func (d *DataRoom) Healthcheck(ctx context.Context) error {
	return d.store.Healthcheck(ctx)
}

// Close releases the underlying store.
func (d *DataRoom) Close() error {
	return d.store.Close()
}

// service holds the state shared by FolderService and FileService.
type service struct {
	store store.ItemStore
	opts  Options
	locks *mutationLocks
}

func newService(s store.ItemStore, opts Options) *service {
	opts.ApplyDefaults()
	return &service{
		store: s,
		opts:  opts,
		locks: newMutationLocks(opts.SerializeMutations),
	}
}

// call runs fn and converts its outcome into a Result.
//
// Errors are classified into the service taxonomy and a panic inside fn is
// reported as a storage failure. Every call is recorded in the service
// metrics.
func call[T any](s *service, op string, fn func() (T, error)) (res Result[T]) {
	start := time.Now()

	defer func() {
		if p := recover(); p != nil {
			logger.Error("%s: recovered from panic: %v", op, p)
			res = Result[T]{Error: fmt.Sprintf("unexpected failure: %v", p), Kind: KindStorage}
		}

		outcome := "success"
		if !res.Success {
			outcome = string(res.Kind)
		}
		s.opts.Metrics.RecordCall(op, outcome, time.Since(start))
	}()

	data, err := fn()
	if err != nil {
		e := classify(err)
		if e.Kind == KindStorage {
			logger.Error("%s: %s", op, e.Message)
		} else {
			logger.Debug("%s rejected: %s", op, e.Message)
		}
		return Result[T]{Error: e.Message, Kind: e.Kind}
	}

	return Result[T]{Success: true, Data: data}
}

// siblings returns the children of parentID, wrapping store failures.
func (s *service) siblings(ctx context.Context, parentID string) ([]store.Item, error) {
	items, err := s.store.GetItemsByParent(ctx, parentID)
	if err != nil {
		return nil, storageError("list items", err)
	}
	return items, nil
}

// requireParent checks that a non-root parentID names an existing folder.
func (s *service) requireParent(ctx context.Context, parentID string) error {
	if parentID == store.RootID {
		return nil
	}

	item, err := s.store.GetItemByID(ctx, parentID)
	if err != nil {
		return storageError("load parent folder", err)
	}
	if item == nil || item.Type() != store.ItemTypeFolder {
		return notFound("Parent folder not found")
	}
	return nil
}

// lookup loads id and returns it only if it has the wanted type.
func (s *service) lookup(ctx context.Context, id string, want store.ItemType) (store.Item, error) {
	item, err := s.store.GetItemByID(ctx, id)
	if err != nil {
		return nil, storageError("load item", err)
	}
	if item == nil || item.Type() != want {
		return nil, nil
	}
	return item, nil
}

// rename applies the shared rename sequence to an item of type want.
//
// The stored name is trimmed. The item keeps its parent and every other
// field; only UpdatedAt moves.
func (s *service) rename(ctx context.Context, id, name string, want store.ItemType, missing string) (store.Item, error) {
	item, err := s.lookup(ctx, id, want)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, notFound(missing)
	}

	subject := subjectOf(want)
	if err := validateName(name, subject); err != nil {
		return nil, err
	}

	parentID := item.Meta().ParentID
	unlock := s.locks.lockParent(parentID)
	defer unlock()

	siblings, err := s.siblings(ctx, parentID)
	if err != nil {
		return nil, err
	}
	if err := checkDuplicate(name, parentID, siblings, id); err != nil {
		return nil, err
	}

	trimmed := trimName(name)
	updated, err := s.store.UpdateItem(ctx, id, store.ItemUpdate{Name: &trimmed})
	if err != nil {
		if store.IsNotFound(err) {
			return nil, notFound(missing)
		}
		return nil, storageError("rename item", err)
	}

	logger.Info("renamed %s %s to %q", want, id, trimmed)
	return updated, nil
}
