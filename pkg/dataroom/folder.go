package dataroom

import (
	"context"
	"slices"

	"github.com/marmos91/dataroom/internal/logger"
	"github.com/marmos91/dataroom/pkg/store"
)

// FolderContents is one level of the hierarchy.
type FolderContents struct {
	// Folders are the child folders, sorted by name ignoring case
	Folders []*store.Folder `json:"folders"`

	// Files are the child files, sorted by name ignoring case
	Files []*store.File `json:"files"`

	// TotalItems is the number of direct children
	TotalItems int `json:"totalItems"`
}

// FolderService manages folders.
type FolderService struct {
	*service
}

// NewFolderService creates a standalone folder service over s.
func NewFolderService(s store.ItemStore, opts Options) *FolderService {
	return &FolderService{newService(s, opts)}
}

// CreateFolder creates a folder named name under parentID (store.RootID for
// the top level).
//
// The name is validated, then checked against the existing children of
// parentID, then a non-root parent must resolve to a folder. The stored
// name is trimmed.
func (s *FolderService) CreateFolder(ctx context.Context, name, parentID string) Result[*store.Folder] {
	return call(s.service, "CreateFolder", func() (*store.Folder, error) {
		if err := validateName(name, subjectOf(store.ItemTypeFolder)); err != nil {
			return nil, err
		}

		unlock := s.locks.lockParent(parentID)
		defer unlock()

		siblings, err := s.siblings(ctx, parentID)
		if err != nil {
			return nil, err
		}
		if err := checkDuplicate(name, parentID, siblings, ""); err != nil {
			return nil, err
		}
		if err := s.requireParent(ctx, parentID); err != nil {
			return nil, err
		}

		created, err := s.store.CreateItem(ctx, &store.Folder{ItemMeta: store.ItemMeta{
			Name:     trimName(name),
			ParentID: parentID,
		}})
		if err != nil {
			return nil, storageError("create folder", err)
		}

		logger.Info("created folder %q (%s)", created.Meta().Name, created.Meta().ID)
		return store.AsFolder(created), nil
	})
}

// UpdateFolder renames a folder. Descendants are not touched.
func (s *FolderService) UpdateFolder(ctx context.Context, id, name string) Result[*store.Folder] {
	return call(s.service, "UpdateFolder", func() (*store.Folder, error) {
		updated, err := s.rename(ctx, id, name, store.ItemTypeFolder, "Folder not found")
		if err != nil {
			return nil, err
		}
		return store.AsFolder(updated), nil
	})
}

// DeleteFolder removes a folder and every descendant.
//
// The folder id comes first in DeletedIDs, followed by the descendants in
// the order the walk found them. When a deletion fails midway the result is
// a storage failure whose DeletedIDs lists the items already removed.
func (s *FolderService) DeleteFolder(ctx context.Context, id string) DeleteResult {
	var deleted []string

	res := call(s.service, "DeleteFolder", func() ([]string, error) {
		unlock := s.locks.lockTree()
		defer unlock()

		folder, err := s.lookup(ctx, id, store.ItemTypeFolder)
		if err != nil {
			return nil, err
		}
		if folder == nil {
			return nil, notFound("Folder not found")
		}

		ids, err := s.collectSubtree(ctx, id)
		if err != nil {
			return nil, err
		}

		if s.opts.TransactionalCascade {
			if err := s.store.DeleteItems(ctx, ids); err != nil {
				return nil, storageError("delete folder", err)
			}
			deleted = ids
		} else {
			for _, itemID := range ids {
				if err := s.store.DeleteItem(ctx, itemID); err != nil {
					return nil, storageError("delete item "+itemID, err)
				}
				deleted = append(deleted, itemID)
			}
		}

		s.opts.Metrics.RecordCascade(len(deleted))
		logger.Info("deleted folder %s and %d descendant(s)", id, len(deleted)-1)
		return deleted, nil
	})

	out := DeleteResult{Success: res.Success, Error: res.Error, Kind: res.Kind}
	if res.Success {
		out.DeletedIDs = res.Data
	} else if len(deleted) > 0 {
		out.DeletedIDs = deleted
		logger.Warn("folder %s partially deleted: %d item(s) removed", id, len(deleted))
	}
	if out.DeletedIDs == nil {
		out.DeletedIDs = []string{}
	}
	return out
}

// collectSubtree returns rootID and all of its descendants.
//
// The walk is iterative so arbitrarily deep trees cannot exhaust the stack.
// Each item is visited at most once even if the parent links form a cycle.
func (s *FolderService) collectSubtree(ctx context.Context, rootID string) ([]string, error) {
	var ids []string
	visited := map[string]struct{}{}
	stack := []string{rootID}

	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if _, seen := visited[current]; seen {
			continue
		}
		visited[current] = struct{}{}
		ids = append(ids, current)

		children, err := s.siblings(ctx, current)
		if err != nil {
			return nil, err
		}
		for _, child := range children {
			stack = append(stack, child.Meta().ID)
		}
	}

	return ids, nil
}

// GetFolderContents lists the direct children of folderID (store.RootID for
// the top level).
//
// An id that names no folder yields empty contents.
func (s *FolderService) GetFolderContents(ctx context.Context, folderID string) Result[FolderContents] {
	return call(s.service, "GetFolderContents", func() (FolderContents, error) {
		children, err := s.siblings(ctx, folderID)
		if err != nil {
			return FolderContents{}, err
		}

		contents := FolderContents{
			Folders:    []*store.Folder{},
			Files:      []*store.File{},
			TotalItems: len(children),
		}
		for _, child := range children {
			switch v := child.(type) {
			case *store.Folder:
				contents.Folders = append(contents.Folders, v)
			case *store.File:
				contents.Files = append(contents.Files, v)
			}
		}

		slices.SortFunc(contents.Folders, func(a, b *store.Folder) int { return compareNames(&a.ItemMeta, &b.ItemMeta) })
		slices.SortFunc(contents.Files, func(a, b *store.File) int { return compareNames(&a.ItemMeta, &b.ItemMeta) })

		return contents, nil
	})
}

// GetFolderByID returns the folder with the given id.
func (s *FolderService) GetFolderByID(ctx context.Context, id string) Result[*store.Folder] {
	return call(s.service, "GetFolderByID", func() (*store.Folder, error) {
		item, err := s.lookup(ctx, id, store.ItemTypeFolder)
		if err != nil {
			return nil, err
		}
		if item == nil {
			return nil, notFound("Folder not found")
		}
		return store.AsFolder(item), nil
	})
}

// GetBreadcrumbs returns the folders from the top level down to id,
// inclusive.
func (s *FolderService) GetBreadcrumbs(ctx context.Context, id string) Result[[]*store.Folder] {
	return call(s.service, "GetBreadcrumbs", func() ([]*store.Folder, error) {
		path := []*store.Folder{}
		visited := map[string]struct{}{}

		for current := id; current != store.RootID; {
			if _, seen := visited[current]; seen {
				logger.Warn("parent cycle detected at folder %s", current)
				break
			}
			visited[current] = struct{}{}

			item, err := s.lookup(ctx, current, store.ItemTypeFolder)
			if err != nil {
				return nil, err
			}
			if item == nil {
				if current == id {
					return nil, notFound("Folder not found")
				}
				return nil, notFound("Parent folder not found")
			}

			path = append(path, store.AsFolder(item))
			current = item.Meta().ParentID
		}

		slices.Reverse(path)
		return path, nil
	})
}
