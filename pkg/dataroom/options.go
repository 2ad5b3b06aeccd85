package dataroom

import (
	"time"

	"github.com/marmos91/dataroom/pkg/metrics"
)

const (
	// DefaultMaxFileSize is the largest accepted upload, in decoded bytes.
	DefaultMaxFileSize int64 = 10 * 1024 * 1024

	// MimeTypePDF is the only media type accepted by default.
	MimeTypePDF = "application/pdf"
)

// Options tunes the folder and file services.
//
// The zero value is usable: ApplyDefaults fills every unset field.
type Options struct {
	// MaxFileSize is the upper bound for uploads, in decoded bytes.
	// Default: DefaultMaxFileSize
	MaxFileSize int64

	// AllowedMimeTypes lists the declared media types accepted on upload.
	// Default: [application/pdf]
	AllowedMimeTypes []string

	// VerifyContentType sniffs uploaded bytes and rejects payloads whose
	// detected type is not in AllowedMimeTypes.
	VerifyContentType bool

	// TransactionalCascade removes a folder subtree with a single
	// ItemStore.DeleteItems call instead of one DeleteItem per item.
	TransactionalCascade bool

	// SerializeMutations guards the check-then-create sequences against
	// concurrent callers in the same process. Without it, two racing
	// creations of the same name may both succeed.
	SerializeMutations bool

	// Metrics records service calls. Nil disables recording.
	Metrics metrics.ServiceMetrics
}

// ApplyDefaults fills zero-valued fields.
func (o *Options) ApplyDefaults() {
	if o.MaxFileSize <= 0 {
		o.MaxFileSize = DefaultMaxFileSize
	}
	if len(o.AllowedMimeTypes) == 0 {
		o.AllowedMimeTypes = []string{MimeTypePDF}
	}
	if o.Metrics == nil {
		o.Metrics = noopMetrics{}
	}
}

type noopMetrics struct{}

func (noopMetrics) RecordCall(string, string, time.Duration) {}
func (noopMetrics) RecordCascade(int)                        {}
func (noopMetrics) RecordUpload(int64)                       {}
