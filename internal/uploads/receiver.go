package uploads

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
)

const (
	FieldName = "avatar"

	DefaultMaxBytes = 2 << 20
	formOverhead    = 1 << 20
	memoryThreshold = 1 << 20
)

var allowedTypes = []string{"image/jpeg", "image/png", "image/webp"}

// Upload describes a file that has been completely written to storage.
type Upload struct {
	Ref         string
	Name        string
	Size        int64
	ContentType string
}

type Receiver struct {
	storage  Storage
	maxBytes int64
	logger   *zap.Logger
	now      func() time.Time
}

func NewReceiver(storage Storage, maxBytes int64, logger *zap.Logger) *Receiver {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Receiver{
		storage:  storage,
		maxBytes: maxBytes,
		logger:   logger,
		now:      time.Now,
	}
}

func (rc *Receiver) MaxBytes() int64 { return rc.maxBytes }

func (rc *Receiver) Storage() Storage { return rc.storage }

// Receive parses the request form and stores the avatar file when one is
// present. It returns nil without error when the request carries no file.
// Other form values stay available on r after the call.
func (rc *Receiver) Receive(w http.ResponseWriter, r *http.Request) (*Upload, error) {
	r.Body = http.MaxBytesReader(w, r.Body, rc.maxBytes+formOverhead)

	if err := r.ParseMultipartForm(memoryThreshold); err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			return nil, &UploadError{Reason: TooLarge, Limit: rc.maxBytes, Err: err}
		}
		return nil, &UploadError{Reason: Malformed, Err: err}
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File[FieldName]
	switch {
	case len(files) == 0:
		return nil, nil
	case len(files) > 1:
		return nil, &UploadError{Reason: Malformed, Err: fmt.Errorf("%d files in field %q", len(files), FieldName)}
	}

	fh := files[0]
	if fh.Size > rc.maxBytes {
		return nil, &UploadError{Reason: TooLarge, Limit: rc.maxBytes}
	}
	if declared := fh.Header.Get("Content-Type"); declared != "" && !declaredAllowed(declared) {
		return nil, &UploadError{Reason: UnsupportedType, Err: fmt.Errorf("declared type %q", declared)}
	}

	return rc.store(r.Context(), fh)
}

func (rc *Receiver) store(ctx context.Context, fh *multipart.FileHeader) (*Upload, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, &UploadError{Reason: Malformed, Err: err}
	}
	defer f.Close()

	detected, err := mimetype.DetectReader(f)
	if err != nil {
		return nil, &UploadError{Reason: Malformed, Err: err}
	}
	if !mimetype.EqualsAny(detected.String(), allowedTypes...) {
		return nil, &UploadError{Reason: UnsupportedType, Err: fmt.Errorf("content looks like %s", detected.String())}
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewind upload: %w", err)
	}

	name := fmt.Sprintf("%d-%s", rc.now().UnixMilli(), SafeName(fh.Filename))
	ref, err := rc.storage.Save(ctx, name, f)
	if err != nil {
		return nil, fmt.Errorf("save upload: %w", err)
	}

	rc.logger.Debug("avatar stored",
		zap.String("ref", ref),
		zap.Int64("size", fh.Size),
		zap.String("type", detected.String()),
	)

	return &Upload{
		Ref:         ref,
		Name:        name,
		Size:        fh.Size,
		ContentType: detected.String(),
	}, nil
}

func declaredAllowed(declared string) bool {
	mediaType, _, err := mime.ParseMediaType(declared)
	if err != nil {
		return false
	}
	return mimetype.EqualsAny(mediaType, allowedTypes...)
}
