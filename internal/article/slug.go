package article

import (
	"regexp"
	"strings"
	"time"
)

var (
	// Word characters, whitespace, hyphens, and the CJK ideograph range are
	// kept; everything else is stripped. Ideographs are allow-listed so titles
	// such as "Hello, World! 你好" keep their readable form in URLs.
	slugInvalidChars = regexp.MustCompile(`[^\w\s\x{4e00}-\x{9fa5}-]`)
	slugSeparators   = regexp.MustCompile(`[\s_-]+`)
)

// Slugify derives a URL- and filesystem-safe identifier from a title.
// The transformation is deterministic: lowercase, trim, strip disallowed
// characters, collapse separator runs into single hyphens, and trim leading
// and trailing hyphens. An input that strips down to nothing yields "";
// rejecting that case is the caller's responsibility.
func Slugify(title string) string {
	s := strings.ToLower(strings.TrimSpace(title))
	s = slugInvalidChars.ReplaceAllString(s, "")
	s = slugSeparators.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// Filename maps a slug to its canonical file name.
func Filename(slug string) string {
	return slug + ".md"
}

var timestampSanitizer = strings.NewReplacer(":", "-", ".", "-")

// TimestampedFilename disambiguates a colliding slug with an ISO timestamp
// whose colons and dots are replaced by hyphens, e.g.
// "hello-world-2026-08-30T12-04-05-123Z.md".
func TimestampedFilename(slug string, now time.Time) string {
	ts := timestampSanitizer.Replace(now.UTC().Format("2006-01-02T15:04:05.000Z"))
	return slug + "-" + ts + ".md"
}

// Stem returns the file name without its ".md" extension.
func Stem(filename string) string {
	return strings.TrimSuffix(filename, ".md")
}
