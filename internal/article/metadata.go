package article

// Metadata captures the frontmatter fields carried by every article file.
// Timestamp fields (PublishedAt, CreatedAt, UpdatedAt) are set by the publish
// workflow, never by callers.
type Metadata struct {
	Title       string   `json:"title" yaml:"title"`
	Date        string   `json:"date" yaml:"date"`
	Category    string   `json:"category" yaml:"category"`
	Tags        []string `json:"tags" yaml:"tags"`
	ReadTime    int      `json:"readTime" yaml:"readTime"`
	Excerpt     string   `json:"excerpt" yaml:"excerpt"`
	Slug        string   `json:"slug,omitempty" yaml:"slug"`
	Draft       bool     `json:"draft" yaml:"draft"`
	PublishedAt string   `json:"publishedAt,omitempty" yaml:"publishedAt"`
	CreatedAt   string   `json:"createdAt,omitempty" yaml:"createdAt"`
	UpdatedAt   string   `json:"updatedAt,omitempty" yaml:"updatedAt"`
}

// Clone returns a copy of the metadata with its tag slice detached so callers
// can mutate the result without aliasing the original.
func (m Metadata) Clone() Metadata {
	out := m
	out.Tags = append([]string(nil), m.Tags...)
	return out
}

// Record pairs normalized metadata with the raw Markdown body. One record is
// persisted per file in the content store.
type Record struct {
	Metadata Metadata
	Body     string
}

// Summary is the listing projection returned when enumerating stored
// articles; missing frontmatter fields are backfilled with defaults.
type Summary struct {
	Filename    string   `json:"filename"`
	Title       string   `json:"title"`
	Date        string   `json:"date"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`
	Excerpt     string   `json:"excerpt"`
	ReadTime    int      `json:"readTime"`
	Slug        string   `json:"slug"`
	PublishedAt string   `json:"publishedAt,omitempty"`
	CreatedAt   string   `json:"createdAt,omitempty"`
	Size        int64    `json:"size"`
}
