// Package uploads receives avatar images and keeps them in managed storage.
package uploads

import (
	"context"
	"io"
	"path"
	"regexp"
	"strings"
	"time"
)

// RefPrefix starts every reference to a managed file. References outside it
// (default or placeholder assets) are never deleted.
const RefPrefix = "/uploads/"

// Object is a stored file as seen by the orphan sweep.
type Object struct {
	Ref     string
	ModTime time.Time
}

// Storage persists uploaded files. Save must not return before the file is
// completely written. Delete of an absent file is not an error.
type Storage interface {
	Save(ctx context.Context, name string, r io.Reader) (string, error)
	Delete(ctx context.Context, ref string) error
	List(ctx context.Context) ([]Object, error)
	Managed(ref string) bool
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

const maxNameLen = 100

// SafeName reduces an uploaded file name to a single path element made of
// portable characters.
func SafeName(filename string) string {
	name := path.Base(strings.ReplaceAll(filename, `\`, "/"))
	name = unsafeChars.ReplaceAllString(name, "_")
	name = strings.TrimLeft(name, ".")
	if len(name) > maxNameLen {
		name = name[len(name)-maxNameLen:]
	}
	if name == "" || name == "_" {
		return "avatar"
	}
	return name
}

// nameFromRef returns the file name a managed reference points at, or false
// when ref is not a plain managed reference.
func nameFromRef(ref string) (string, bool) {
	if !strings.HasPrefix(ref, RefPrefix) {
		return "", false
	}
	name := strings.TrimPrefix(ref, RefPrefix)
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", false
	}
	return name, true
}

func refFor(name string) string {
	return RefPrefix + name
}
