package attachments

import (
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

const maxExtLen = 10

// newID is swapped in tests.
var newID = uuid.NewString

// Prefix is the object-store folder holding every file of one branch week.
// Deleting a week removes everything under it.
func Prefix(branchID int, weekID string) string {
	return fmt.Sprintf("gb%03d/%s", branchID, weekID)
}

// NewKey returns a fresh storage key for a file uploaded to a branch week.
// The user's file name contributes only its sanitised extension.
func NewKey(branchID int, weekID, originalName string) string {
	return Prefix(branchID, weekID) + "/" + newID() + SafeExt(originalName)
}

// SafeExt lower-cases the extension of name and strips anything outside
// [a-z0-9.], keeping at most 10 characters.
func SafeExt(name string) string {
	ext := strings.ToLower(path.Ext(strings.TrimSpace(name)))
	var b strings.Builder
	for _, r := range ext {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	out := b.String()
	if len(out) > maxExtLen {
		out = out[:maxExtLen]
	}
	if out == "." {
		return ""
	}
	return out
}

// DisplayName is the name shown for an uploaded file: the original file
// name in NFC form with any client-side directory stripped.
func DisplayName(original string) string {
	name := norm.NFC.String(strings.TrimSpace(original))
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	if name == "" {
		return fallbackName
	}
	return name
}

// Upload pairs a display name with a freshly generated key.
func Upload(branchID int, weekID, originalName string) Ref {
	return Ref{
		Name: DisplayName(originalName),
		Path: NewKey(branchID, weekID, originalName),
	}
}

// FieldPhoto pairs a display name with a key under the branch's field
// survey folder, field/gbNNN/<uuid><ext>.
func FieldPhoto(branchID int, originalName string) Ref {
	return Ref{
		Name: DisplayName(originalName),
		Path: fmt.Sprintf("field/gb%03d/%s%s", branchID, newID(), SafeExt(originalName)),
	}
}
