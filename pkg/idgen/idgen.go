// Package idgen provides ID generation utilities for the application.
// It encapsulates the ID generation implementation, making it easy to change
// the underlying ID generation strategy in the future.
package idgen

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rs/xid"
)

// NewID generates a new globally unique, sortable identifier.
// Returns a 20-character string using xid format.
func NewID() string {
	return xid.New().String()
}

// NewSessionID generates a unique ID for wizard export sessions.
func NewSessionID() string {
	return NewID()
}

// NewRequestID generates a unique ID for HTTP request tracking.
func NewRequestID() string {
	return NewID()
}

// NewSecureSecret generates a cryptographically secure random string of specified length.
// Uses URL-safe base64 encoding. Useful for JWT secrets and other security tokens.
func NewSecureSecret(length int) string {
	byteLength := (length*3 + 3) / 4
	bytes := make([]byte, byteLength)

	if _, err := rand.Read(bytes); err != nil {
		// Fallback should never happen with crypto/rand, but just in case
		return "please-generate-a-secure-random-secret"
	}

	encoded := base64.URLEncoding.EncodeToString(bytes)
	if len(encoded) > length {
		encoded = encoded[:length]
	}
	return encoded
}

// NewConfigID generates an ID for a saved print configuration.
// Uses the creation timestamp in milliseconds, matching the ordering
// expectation of the saved-configuration list (newest first).
func NewConfigID(t time.Time) string {
	return strconv.FormatInt(t.UnixMilli(), 10)
}

// NewCopyID derives the ID of a duplicated page from its source page ID.
// The timestamp suffix keeps repeated duplications of the same page unique.
func NewCopyID(pageID string, t time.Time) string {
	return fmt.Sprintf("%s_copy_%d", pageID, t.UnixMilli())
}

// PartID derives the ID of the n-th slice page generated from an over-tall
// capture of pageID. Numbering starts at 2: the first slice keeps the
// original page's ID.
func PartID(pageID string, n int) string {
	return fmt.Sprintf("%s_part_%d", pageID, n)
}

// PartPrefix returns the ID prefix shared by all slice pages of pageID.
func PartPrefix(pageID string) string {
	return pageID + "_part_"
}

// IsPartOf reports whether id is a slice page generated from pageID.
func IsPartOf(id, pageID string) bool {
	return strings.HasPrefix(id, PartPrefix(pageID))
}

var partSuffix = regexp.MustCompile(`_part_\d+$`)

// IsPartID reports whether id names a slice page generated by a split.
func IsPartID(id string) bool {
	return partSuffix.MatchString(id)
}

var syntheticSuffix = regexp.MustCompile(`_(part|copy)_\d+$`)

// BaseID strips the synthetic part and copy suffixes from a page ID,
// returning the underlying catalog page. Suffixes can stack: a slice of a
// duplicated page carries both.
func BaseID(id string) string {
	for {
		next := syntheticSuffix.ReplaceAllString(id, "")
		if next == id {
			return id
		}
		id = next
	}
}
