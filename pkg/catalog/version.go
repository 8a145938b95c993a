package catalog

import (
	"encoding/hex"
	"strings"

	"github.com/JadonKrys/file-catalog/pkg/db/models"
	"golang.org/x/crypto/blake2b"
)

// Tag computes the version tag of a record: BLAKE2b-256 over its canonical
// JSON, identifier included.
func Tag(md models.Metadata) (string, error) {
	data, err := models.Canonical(md)
	if err != nil {
		return "", err
	}
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// ParseTags extracts the tags from If-Match style header values. Quotes
// and weak prefixes are stripped; a list may be comma separated.
func ParseTags(values ...string) []string {
	var tags []string
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			part = strings.TrimSpace(part)
			part = strings.TrimPrefix(part, "W/")
			part = strings.Trim(part, `"`)
			if part != "" {
				tags = append(tags, part)
			}
		}
	}
	return tags
}

// tagMatches reports whether current is among the presented tags. An empty
// presentation never matches.
func tagMatches(current string, presented []string) bool {
	for _, tag := range presented {
		if strings.EqualFold(tag, current) {
			return true
		}
	}
	return false
}
