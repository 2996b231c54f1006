package project

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var (
	slugInvalidChars    = regexp.MustCompile(`[^a-z0-9-]`)
	slugRepeatedHyphens = regexp.MustCompile(`-+`)
)

// GenerateSlug derives a URL slug from title and suffixes it with the unix time of at.
func GenerateSlug(title string, at time.Time) string {
	slug := strings.Map(lowerASCII, title)
	slug = strings.ReplaceAll(slug, " ", "-")
	slug = slugInvalidChars.ReplaceAllString(slug, "")
	slug = slugRepeatedHyphens.ReplaceAllString(slug, "-")
	return fmt.Sprintf("%s-%d", slug, at.Unix())
}

// lowerASCII folds A-Z only; any other rune is left for the character filter to drop.
func lowerASCII(r rune) rune {
	if 'A' <= r && r <= 'Z' {
		return r + ('a' - 'A')
	}
	return r
}
