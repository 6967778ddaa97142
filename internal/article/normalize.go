package article

import (
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	// DefaultCategory is the fallback bucket for articles published without
	// an explicit category.
	DefaultCategory = "其他"

	defaultWordsPerMinute = 200
	dateLayout            = "2006-01-02"
	excerptRuneLimit      = 200
)

// NormalizerConfig tunes defaulting behaviour. Zero values fall back to the
// package defaults; Clock defaults to time.Now so tests can pin "now".
type NormalizerConfig struct {
	DefaultCategory string
	WordsPerMinute  int
	Clock           func() time.Time
}

// Normalizer validates raw, possibly partial metadata and fills defaults.
// It is a pure function of its inputs and the injected clock.
type Normalizer struct {
	category string
	wpm      int
	clock    func() time.Time
}

// NewNormalizer builds a Normalizer from the supplied configuration.
func NewNormalizer(cfg NormalizerConfig) *Normalizer {
	category := strings.TrimSpace(cfg.DefaultCategory)
	if category == "" {
		category = DefaultCategory
	}
	wpm := cfg.WordsPerMinute
	if wpm <= 0 {
		wpm = defaultWordsPerMinute
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Normalizer{category: category, wpm: wpm, clock: clock}
}

// Normalize produces complete metadata for the given body. A missing or
// whitespace-only title or body fails with field-keyed validation errors.
func (n *Normalizer) Normalize(meta Metadata, body string) (Metadata, error) {
	errs := validation.Errors{}
	if strings.TrimSpace(meta.Title) == "" {
		errs["title"] = validation.NewError("blog.article.title_required", "title is required")
	}
	if strings.TrimSpace(body) == "" {
		errs["content"] = validation.NewError("blog.article.content_required", "content is required")
	}
	if len(errs) > 0 {
		return Metadata{}, errs
	}

	out := meta.Clone()
	out.Title = strings.TrimSpace(meta.Title)
	if strings.TrimSpace(out.Date) == "" {
		out.Date = n.clock().UTC().Format(dateLayout)
	}
	if strings.TrimSpace(out.Category) == "" {
		out.Category = n.category
	}
	if out.Tags == nil {
		out.Tags = []string{}
	}
	if out.ReadTime <= 0 {
		out.ReadTime = EstimateReadTime(body, n.wpm)
	}
	return out, nil
}

// EstimateReadTime computes reading minutes from the body's word count,
// rounded up, with a floor of one minute for non-empty content.
func EstimateReadTime(body string, wordsPerMinute int) int {
	if wordsPerMinute <= 0 {
		wordsPerMinute = defaultWordsPerMinute
	}
	words := len(strings.Fields(body))
	if words == 0 {
		return 0
	}
	minutes := (words + wordsPerMinute - 1) / wordsPerMinute
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}

// DefaultExcerpt derives a listing excerpt from the body when the author
// did not supply one.
func DefaultExcerpt(body string) string {
	trimmed := strings.TrimSpace(body)
	runes := []rune(trimmed)
	if len(runes) <= excerptRuneLimit {
		return trimmed
	}
	return string(runes[:excerptRuneLimit]) + "..."
}
