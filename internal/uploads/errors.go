package uploads

import "fmt"

type Reason int

const (
	TooLarge Reason = iota + 1
	UnsupportedType
	Malformed
)

func (r Reason) String() string {
	switch r {
	case TooLarge:
		return "too_large"
	case UnsupportedType:
		return "unsupported_type"
	case Malformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// UploadError rejects an upload before any business logic runs.
type UploadError struct {
	Reason Reason
	Limit  int64
	Err    error
}

func (e *UploadError) Error() string {
	switch e.Reason {
	case TooLarge:
		return fmt.Sprintf("Upload rejected: file exceeds %s", formatBytes(e.Limit))
	case UnsupportedType:
		return "Upload rejected: only JPEG, PNG and WebP images are allowed"
	default:
		return "Upload rejected: malformed multipart body"
	}
}

func (e *UploadError) Unwrap() error { return e.Err }

func formatBytes(n int64) string {
	const mib = 1 << 20
	if n > 0 && n%mib == 0 {
		return fmt.Sprintf("%d MB", n/mib)
	}
	return fmt.Sprintf("%d bytes", n)
}
