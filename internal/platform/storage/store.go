// Package storage abstracts the file store used for application uploads.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Store is the narrow file-store contract consumed by the submission flow.
type Store interface {
	Write(ctx context.Context, name string, r io.Reader) error
	Delete(ctx context.Context, name string) error
	Exists(ctx context.Context, name string) (bool, error)
	// List returns all stored names under the given prefix.
	List(ctx context.Context, prefix string) ([]string, error)
}

// ApplicationPrefix is the namespace that holds one application's uploads.
func ApplicationPrefix(applicationID int64) string {
	return fmt.Sprintf("applications/%d", applicationID)
}

// ApplicationFilePath builds the storage name for an uploaded file,
// namespaced by application id so concurrent submissions cannot collide.
func ApplicationFilePath(applicationID int64, filename string) string {
	return path.Join(ApplicationPrefix(applicationID), SanitizeFilename(filename))
}

// SanitizeFilename strips any path components from a client-supplied filename
// and normalizes it to NFC so equivalent unicode spellings map to one name.
func SanitizeFilename(name string) string {
	name = norm.NFC.String(name)
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == ".." || name == "/" || name == "" {
		return "upload"
	}
	return name
}
