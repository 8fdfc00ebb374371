package service

import (
	"path"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/tnqbao/gau-drive-service/entity"
)

const maxNameLength = 255

// ResolveStoragePath builds the blob location for a new file. Only the direct
// parent's name is used, so same-named folders in different branches share a
// directory; the blob store resolves any key collision.
func ResolveStoragePath(root string, ownerID uuid.UUID, parent *entity.Entry, filename string) string {
	segments := make([]string, 0, 4)
	if root != "" {
		segments = append(segments, root)
	}
	segments = append(segments, "user_"+ownerID.String())
	if parent != nil {
		segments = append(segments, parent.Name)
	}
	segments = append(segments, filename)
	return path.Join(segments...)
}

// ValidateName checks a user-supplied entry name. The length limit counts
// characters, not bytes.
func ValidateName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return ErrInvalidName
	case !utf8.ValidString(name):
		return ErrInvalidName
	case utf8.RuneCountInString(name) > maxNameLength:
		return ErrInvalidName
	case name == "." || name == "..":
		return ErrInvalidName
	case strings.ContainsAny(name, "/\\\x00"):
		return ErrInvalidName
	}
	return nil
}
