package dataroom

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
	"github.com/marmos91/dataroom/internal/logger"
	"github.com/marmos91/dataroom/pkg/store"
)

// UploadRequest describes a document to store.
type UploadRequest struct {
	// Name is the display name of the file
	Name string

	// MimeType is the media type declared by the uploader
	MimeType string

	// Content is the raw document. Only MaxFileSize+1 bytes are ever read.
	Content io.Reader
}

// FileService manages files.
type FileService struct {
	*service
}

// NewFileService creates a standalone file service over s.
func NewFileService(s store.ItemStore, opts Options) *FileService {
	return &FileService{newService(s, opts)}
}

// UploadFile stores req as a new file under parentID (store.RootID for the
// top level).
//
// Checks run in order: declared media type, size, content sniffing (when
// enabled), name rules, sibling uniqueness, parent existence. The content is
// stored base64 encoded and Size records the decoded length.
func (s *FileService) UploadFile(ctx context.Context, req UploadRequest, parentID string) Result[*store.File] {
	return call(s.service, "UploadFile", func() (*store.File, error) {
		if !s.allowed(req.MimeType) {
			return nil, invalid(s.unsupportedTypeMessage(req.MimeType))
		}

		data, err := s.readContent(req.Content)
		if err != nil {
			return nil, err
		}

		if s.opts.VerifyContentType {
			detected := mimetype.Detect(data)
			if !slices.ContainsFunc(s.opts.AllowedMimeTypes, detected.Is) {
				return nil, invalid(fmt.Sprintf("File content does not match its declared type (detected %s)", detected.String()))
			}
		}

		if err := validateName(req.Name, subjectOf(store.ItemTypeFile)); err != nil {
			return nil, err
		}

		unlock := s.locks.lockParent(parentID)
		defer unlock()

		siblings, err := s.siblings(ctx, parentID)
		if err != nil {
			return nil, err
		}
		if err := checkDuplicate(req.Name, parentID, siblings, ""); err != nil {
			return nil, err
		}
		if err := s.requireParent(ctx, parentID); err != nil {
			return nil, err
		}

		created, err := s.store.CreateItem(ctx, &store.File{
			ItemMeta: store.ItemMeta{
				Name:     trimName(req.Name),
				ParentID: parentID,
			},
			MimeType: req.MimeType,
			Size:     int64(len(data)),
			Content:  base64.StdEncoding.EncodeToString(data),
		})
		if err != nil {
			return nil, storageError("upload file", err)
		}

		s.opts.Metrics.RecordUpload(int64(len(data)))
		logger.Info("uploaded file %q (%s, %s)", created.Meta().Name, created.Meta().ID, FormatSize(int64(len(data))))
		return store.AsFile(created), nil
	})
}

func (s *FileService) allowed(mimeType string) bool {
	return slices.ContainsFunc(s.opts.AllowedMimeTypes, func(allowed string) bool {
		return strings.EqualFold(allowed, mimeType)
	})
}

func (s *FileService) unsupportedTypeMessage(mimeType string) string {
	if len(s.opts.AllowedMimeTypes) == 1 && s.opts.AllowedMimeTypes[0] == MimeTypePDF {
		return "Only PDF files are supported"
	}
	return fmt.Sprintf("Unsupported file type %q", mimeType)
}

// readContent reads r up to the size limit and rejects anything larger.
func (s *FileService) readContent(r io.Reader) ([]byte, error) {
	if r == nil {
		return []byte{}, nil
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, io.LimitReader(r, s.opts.MaxFileSize+1)); err != nil {
		return nil, invalid(fmt.Sprintf("Failed to read file content: %v", err))
	}
	if int64(buf.Len()) > s.opts.MaxFileSize {
		return nil, invalid("File size must be less than " + sizeLimit(s.opts.MaxFileSize))
	}
	return buf.Bytes(), nil
}

// sizeLimit renders a byte limit the way upload errors show it: whole
// mebibytes as "10MB", anything else in IEC units.
func sizeLimit(limit int64) string {
	const mib = 1024 * 1024
	if limit%mib == 0 {
		return fmt.Sprintf("%dMB", limit/mib)
	}
	return humanize.IBytes(uint64(limit))
}

// UpdateFileName renames a file. Its content is not touched.
func (s *FileService) UpdateFileName(ctx context.Context, id, name string) Result[*store.File] {
	return call(s.service, "UpdateFileName", func() (*store.File, error) {
		updated, err := s.rename(ctx, id, name, store.ItemTypeFile, "File not found")
		if err != nil {
			return nil, err
		}
		return store.AsFile(updated), nil
	})
}

// DeleteFile removes a single file. Folder ids are rejected as not found.
func (s *FileService) DeleteFile(ctx context.Context, id string) Result[string] {
	return call(s.service, "DeleteFile", func() (string, error) {
		item, err := s.lookup(ctx, id, store.ItemTypeFile)
		if err != nil {
			return "", err
		}
		if item == nil {
			return "", notFound("File not found")
		}

		unlock := s.locks.lockParent(item.Meta().ParentID)
		defer unlock()

		if err := s.store.DeleteItem(ctx, id); err != nil {
			return "", storageError("delete file", err)
		}

		logger.Info("deleted file %s", id)
		return id, nil
	})
}

// GetFileByID returns the file with the given id, content included.
func (s *FileService) GetFileByID(ctx context.Context, id string) Result[*store.File] {
	return call(s.service, "GetFileByID", func() (*store.File, error) {
		item, err := s.lookup(ctx, id, store.ItemTypeFile)
		if err != nil {
			return nil, err
		}
		if item == nil {
			return nil, notFound("File not found")
		}
		return store.AsFile(item), nil
	})
}

// GetFileContent returns the base64 payload of a file. Use DecodeContent to
// recover the document bytes.
func (s *FileService) GetFileContent(ctx context.Context, id string) Result[string] {
	return call(s.service, "GetFileContent", func() (string, error) {
		item, err := s.lookup(ctx, id, store.ItemTypeFile)
		if err != nil {
			return "", err
		}
		if item == nil {
			return "", notFound("File not found")
		}
		return store.AsFile(item).Content, nil
	})
}

// DecodeContent turns a stored payload back into document bytes.
func DecodeContent(encoded string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode file content: %w", err)
	}
	return data, nil
}

// FormatSize renders a byte count for display, e.g. "1.5 KiB".
func FormatSize(size int64) string {
	if size <= 0 {
		return "0 B"
	}
	return humanize.IBytes(uint64(size))
}
