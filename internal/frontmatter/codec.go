// Package frontmatter serializes article metadata and Markdown bodies into
// delimited text documents and parses them back. The encoder emits one
// canonical convention (double-quoted strings, bracketed tag lists) so every
// writer in the system produces byte-identical frontmatter for the same
// metadata; the decoder accepts any YAML frontmatter block.
package frontmatter

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	adrg "github.com/adrg/frontmatter"

	"github.com/Allenwdk/OxygenBlog/internal/article"
)

const delimiter = "---"

// ErrMalformedDocument indicates the document lacks the two delimiter lines
// that bound its metadata block, or the block is not parseable.
var ErrMalformedDocument = errors.New("frontmatter: malformed document")

// envelope mirrors article.Metadata for YAML decoding while collecting
// unknown keys into Custom so forward-compatible fields survive a rewrite.
type envelope struct {
	Title       string         `yaml:"title"`
	Date        string         `yaml:"date"`
	Category    string         `yaml:"category"`
	Tags        []string       `yaml:"tags"`
	ReadTime    int            `yaml:"readTime"`
	Excerpt     string         `yaml:"excerpt"`
	Slug        string         `yaml:"slug"`
	Draft       bool           `yaml:"draft"`
	PublishedAt string         `yaml:"publishedAt"`
	CreatedAt   string         `yaml:"createdAt"`
	UpdatedAt   string         `yaml:"updatedAt"`
	Custom      map[string]any `yaml:",inline"`
}

// Encode renders metadata and body as a frontmatter document. Known fields
// appear in a fixed order; extra keys follow in sorted order. The output is
// valid YAML frontmatter, so Decode (or any YAML reader) round-trips it.
func Encode(body string, meta article.Metadata, extra map[string]any) []byte {
	var buf bytes.Buffer
	buf.WriteString(delimiter)
	buf.WriteByte('\n')

	writePair(&buf, "title", quote(meta.Title))
	writePair(&buf, "date", quote(meta.Date))
	writePair(&buf, "category", quote(meta.Category))
	writePair(&buf, "tags", formatTags(meta.Tags))
	writePair(&buf, "readTime", strconv.Itoa(meta.ReadTime))
	writePair(&buf, "excerpt", quote(meta.Excerpt))
	if meta.Slug != "" {
		writePair(&buf, "slug", quote(meta.Slug))
	}
	writePair(&buf, "draft", strconv.FormatBool(meta.Draft))
	if meta.PublishedAt != "" {
		writePair(&buf, "publishedAt", quote(meta.PublishedAt))
	}
	if meta.CreatedAt != "" {
		writePair(&buf, "createdAt", quote(meta.CreatedAt))
	}
	if meta.UpdatedAt != "" {
		writePair(&buf, "updatedAt", quote(meta.UpdatedAt))
	}

	keys := make([]string, 0, len(extra))
	for key := range extra {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		writePair(&buf, key, formatValue(extra[key]))
	}

	buf.WriteString(delimiter)
	buf.WriteByte('\n')
	buf.WriteByte('\n')
	buf.WriteString(body)

	return buf.Bytes()
}

// Decode splits a frontmatter document into metadata, preserved unknown
// keys, and the raw body. Documents without both delimiter lines fail with
// ErrMalformedDocument.
func Decode(data []byte) (article.Metadata, map[string]any, string, error) {
	if err := checkDelimiters(data); err != nil {
		return article.Metadata{}, nil, "", err
	}

	var env envelope
	rest, err := adrg.Parse(bytes.NewReader(data), &env)
	if err != nil {
		return article.Metadata{}, nil, "", fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}

	meta := article.Metadata{
		Title:       env.Title,
		Date:        env.Date,
		Category:    env.Category,
		Tags:        env.Tags,
		ReadTime:    env.ReadTime,
		Excerpt:     env.Excerpt,
		Slug:        env.Slug,
		Draft:       env.Draft,
		PublishedAt: env.PublishedAt,
		CreatedAt:   env.CreatedAt,
		UpdatedAt:   env.UpdatedAt,
	}

	body := strings.TrimPrefix(string(rest), "\n")
	return meta, env.Custom, body, nil
}

// checkDelimiters enforces the structural contract before handing the data
// to the YAML parser: the first line opens the block and a later line closes
// it.
func checkDelimiters(data []byte) error {
	lines := strings.Split(string(data), "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != delimiter {
		return ErrMalformedDocument
	}
	for _, line := range lines[1:] {
		if strings.TrimSpace(line) == delimiter {
			return nil
		}
	}
	return ErrMalformedDocument
}

func writePair(buf *bytes.Buffer, key, value string) {
	buf.WriteString(key)
	buf.WriteString(": ")
	buf.WriteString(value)
	buf.WriteByte('\n')
}

func quote(value string) string {
	return strconv.Quote(value)
}

func formatTags(tags []string) string {
	if len(tags) == 0 {
		return "[]"
	}
	quoted := make([]string, len(tags))
	for i, tag := range tags {
		quoted[i] = quote(tag)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

// formatValue renders preserved unknown keys. Scalars keep their YAML type;
// anything else degrades to a quoted string representation.
func formatValue(value any) string {
	switch v := value.(type) {
	case nil:
		return quote("")
	case string:
		return quote(v)
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case []string:
		return formatTags(v)
	case []any:
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = formatValue(item)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return quote(fmt.Sprint(v))
	}
}
