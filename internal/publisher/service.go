// Package publisher orchestrates the article publish workflow: normalize
// metadata, derive the slug and filename, resolve collisions, encode
// frontmatter, and persist through a content store.
package publisher

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/Allenwdk/OxygenBlog/internal/article"
	"github.com/Allenwdk/OxygenBlog/internal/frontmatter"
	"github.com/Allenwdk/OxygenBlog/internal/history"
	"github.com/Allenwdk/OxygenBlog/internal/logging"
	"github.com/Allenwdk/OxygenBlog/internal/store"
	"github.com/Allenwdk/OxygenBlog/pkg/interfaces"
)

const (
	// DefaultContentDir mirrors the content layout of the published site.
	DefaultContentDir = "src/content/blogs"
	// DefaultDraftsDir is the namespace holding draft=true records; drafts
	// never mix with published files.
	DefaultDraftsDir = "src/content/blogs/drafts"

	timestampLayout = "2006-01-02T15:04:05.000Z"
	dateLayout      = "2006-01-02"
)

var ErrStoreRequired = errors.New("publisher: content store is required")

// ServiceConfig encapsulates the dependencies of the publish workflow.
type ServiceConfig struct {
	Store      interfaces.ContentStore
	Normalizer *article.Normalizer
	History    history.Recorder
	Logger     interfaces.Logger
	Clock      func() time.Time
	ContentDir string
	DraftsDir  string
	Backend    string
}

// Service runs publish requests to completion. Every entry point returns a
// structured result or an error from the workflow taxonomy; nothing panics
// across a single request.
type Service struct {
	store      interfaces.ContentStore
	norm       *article.Normalizer
	history    history.Recorder
	logger     interfaces.Logger
	clock      func() time.Time
	contentDir string
	draftsDir  string
	backend    string
}

// NewService builds a Service from the supplied configuration.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Store == nil {
		return nil, ErrStoreRequired
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	norm := cfg.Normalizer
	if norm == nil {
		norm = article.NewNormalizer(article.NormalizerConfig{Clock: clock})
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NoOp()
	}
	contentDir := strings.Trim(cfg.ContentDir, "/")
	if contentDir == "" {
		contentDir = DefaultContentDir
	}
	draftsDir := strings.Trim(cfg.DraftsDir, "/")
	if draftsDir == "" {
		draftsDir = contentDir + "/drafts"
	}
	return &Service{
		store:      cfg.Store,
		norm:       norm,
		history:    cfg.History,
		logger:     logger,
		clock:      clock,
		contentDir: contentDir,
		draftsDir:  draftsDir,
		backend:    cfg.Backend,
	}, nil
}

// Request carries the editor's form state for a publish or draft save.
type Request struct {
	Metadata article.Metadata
	Content  string
}

// UpdateRequest replaces an existing article in full. The caller must name
// the exact stored filename.
type UpdateRequest struct {
	Filename string
	Metadata article.Metadata
	Content  string
}

// Result reports where an article landed.
type Result struct {
	Filename string `json:"filename"`
	Path     string `json:"path"`
	Title    string `json:"title"`
	Slug     string `json:"slug,omitempty"`
	URL      string `json:"url,omitempty"`
}

// Publish runs the full workflow for a new article. A prior record with the
// same slug never gets silently overwritten; the new file receives a
// timestamp-suffixed name instead.
func (s *Service) Publish(ctx context.Context, req Request) (*Result, error) {
	return s.publish(ctx, req, nil)
}

func (s *Service) publish(ctx context.Context, req Request, extra map[string]any) (*Result, error) {
	meta, slug, err := s.prepare(req)
	if err != nil {
		return nil, err
	}

	filename := article.Filename(slug)
	exists, err := s.slugTaken(ctx, slug)
	if err != nil {
		return nil, err
	}
	if exists {
		filename = article.TimestampedFilename(slug, s.clock())
	}

	meta.Slug = slug
	meta.Draft = false
	meta.PublishedAt = s.now()

	doc := frontmatter.Encode(req.Content, meta, extra)
	path := s.contentDir + "/" + filename
	if err := s.store.Create(ctx, path, doc, "Add new article: "+meta.Title); err != nil {
		s.record(ctx, history.OperationPublish, filename, slug, meta.Title, false, err)
		return nil, fmt.Errorf("publisher: write %s: %w", filename, err)
	}

	s.record(ctx, history.OperationPublish, filename, slug, meta.Title, true, nil)
	logging.WithArticleContext(s.logger, path, slug).Info("publisher.published", "title", meta.Title)

	return &Result{
		Filename: filename,
		Path:     path,
		Title:    meta.Title,
		Slug:     slug,
		URL:      "/blogs/" + slug,
	}, nil
}

// SaveDraft persists an unpublished article into the drafts namespace with a
// unique timestamped filename.
func (s *Service) SaveDraft(ctx context.Context, req Request) (*Result, error) {
	meta, slug, err := s.prepare(req)
	if err != nil {
		return nil, err
	}

	filename := article.TimestampedFilename(slug, s.clock())
	meta.Draft = true
	meta.CreatedAt = s.now()

	doc := frontmatter.Encode(req.Content, meta, nil)
	path := s.draftsDir + "/" + filename
	if err := s.store.Create(ctx, path, doc, "Save draft: "+meta.Title); err != nil {
		s.record(ctx, history.OperationDraft, filename, slug, meta.Title, false, err)
		return nil, fmt.Errorf("publisher: write draft %s: %w", filename, err)
	}

	s.record(ctx, history.OperationDraft, filename, slug, meta.Title, true, nil)
	logging.WithArticleContext(s.logger, path, slug).Info("publisher.draft_saved", "title", meta.Title)

	return &Result{Filename: filename, Path: path, Title: meta.Title}, nil
}

// Update replaces the named article's body and metadata in full. The stored
// slug and original publish timestamp survive the rewrite; a filename that
// does not exist fails with the store's NotFoundError and leaves the store
// unchanged.
func (s *Service) Update(ctx context.Context, req UpdateRequest) (*Result, error) {
	if strings.TrimSpace(req.Filename) == "" {
		return nil, validation.Errors{
			"filename": validation.NewError("blog.publish.filename_required", "filename is required"),
		}
	}

	meta, err := s.norm.Normalize(req.Metadata, req.Content)
	if err != nil {
		return nil, err
	}

	path := s.contentDir + "/" + req.Filename
	existing, err := s.store.Read(ctx, path)
	if err != nil {
		s.record(ctx, history.OperationUpdate, req.Filename, "", meta.Title, false, err)
		return nil, fmt.Errorf("publisher: update %s: %w", req.Filename, err)
	}

	var extra map[string]any
	if prior, priorExtra, _, decodeErr := frontmatter.Decode(existing.Content); decodeErr == nil {
		meta.Slug = prior.Slug
		meta.PublishedAt = prior.PublishedAt
		meta.CreatedAt = prior.CreatedAt
		extra = priorExtra
	}
	if meta.Slug == "" {
		meta.Slug = article.Slugify(meta.Title)
	}
	meta.Draft = false
	meta.UpdatedAt = s.now()

	doc := frontmatter.Encode(req.Content, meta, extra)
	if err := s.store.Update(ctx, path, doc, "Update article: "+meta.Title, existing.Revision); err != nil {
		s.record(ctx, history.OperationUpdate, req.Filename, meta.Slug, meta.Title, false, err)
		return nil, fmt.Errorf("publisher: update %s: %w", req.Filename, err)
	}

	s.record(ctx, history.OperationUpdate, req.Filename, meta.Slug, meta.Title, true, nil)
	return &Result{Filename: req.Filename, Path: path, Title: meta.Title, Slug: meta.Slug}, nil
}

// Delete removes a published article by its exact filename.
func (s *Service) Delete(ctx context.Context, filename string) error {
	if strings.TrimSpace(filename) == "" {
		return validation.Errors{
			"filename": validation.NewError("blog.publish.filename_required", "filename is required"),
		}
	}
	path := s.contentDir + "/" + filename
	if err := s.store.Delete(ctx, path, "Delete article: "+filename); err != nil {
		s.record(ctx, history.OperationDelete, filename, "", "", false, err)
		return fmt.Errorf("publisher: delete %s: %w", filename, err)
	}
	s.record(ctx, history.OperationDelete, filename, "", "", true, nil)
	return nil
}

// List returns summaries for every published article. Files whose
// frontmatter cannot be parsed are skipped with a warning rather than
// failing the whole listing.
func (s *Service) List(ctx context.Context) ([]article.Summary, error) {
	return s.listDir(ctx, s.contentDir)
}

// ListDrafts returns summaries for the drafts namespace.
func (s *Service) ListDrafts(ctx context.Context) ([]article.Summary, error) {
	return s.listDir(ctx, s.draftsDir)
}

// PromoteDraft publishes a stored draft and removes it from the drafts
// namespace. The transition is a copy+delete across namespaces, not an
// in-place flag flip.
func (s *Service) PromoteDraft(ctx context.Context, draftFilename string) (*Result, error) {
	if strings.TrimSpace(draftFilename) == "" {
		return nil, validation.Errors{
			"filename": validation.NewError("blog.publish.filename_required", "filename is required"),
		}
	}

	draftPath := s.draftsDir + "/" + draftFilename
	file, err := s.store.Read(ctx, draftPath)
	if err != nil {
		return nil, fmt.Errorf("publisher: promote %s: %w", draftFilename, err)
	}

	meta, extra, body, err := frontmatter.Decode(file.Content)
	if err != nil {
		return nil, fmt.Errorf("publisher: promote %s: %w", draftFilename, err)
	}
	meta.Draft = false
	meta.UpdatedAt = ""

	result, err := s.publish(ctx, Request{Metadata: meta, Content: body}, extra)
	if err != nil {
		return nil, err
	}

	if err := s.store.Delete(ctx, draftPath, "Remove promoted draft: "+draftFilename); err != nil {
		// The article is already live; a dangling draft is an inconvenience,
		// not a failed publish.
		s.logger.Warn("publisher.promote_cleanup_failed", "draft", draftPath, "error", err)
	}
	s.record(ctx, history.OperationPromote, result.Filename, result.Slug, result.Title, true, nil)
	return result, nil
}

func (s *Service) prepare(req Request) (article.Metadata, string, error) {
	meta, err := s.norm.Normalize(req.Metadata, req.Content)
	if err != nil {
		return article.Metadata{}, "", err
	}
	slug := article.Slugify(meta.Title)
	if slug == "" {
		return article.Metadata{}, "", validation.Errors{
			"title": validation.NewError("blog.publish.slug_empty", "title does not produce a usable slug"),
		}
	}
	return meta, slug, nil
}

// slugTaken scans the published namespace for a record already owning the
// slug, either by exact filename stem or by the slug stored in its
// frontmatter (covering earlier timestamp-suffixed disambiguations).
func (s *Service) slugTaken(ctx context.Context, slug string) (bool, error) {
	entries, err := s.store.List(ctx, s.contentDir)
	if err != nil {
		return false, fmt.Errorf("publisher: list existing articles: %w", err)
	}

	for _, entry := range entries {
		stem := article.Stem(entry.Name)
		if stem == slug {
			return true, nil
		}
		if !strings.HasPrefix(stem, slug+"-") {
			continue
		}
		file, err := s.store.Read(ctx, entry.Path)
		if err != nil {
			if store.IsNotFound(err) {
				continue
			}
			return false, fmt.Errorf("publisher: inspect %s: %w", entry.Name, err)
		}
		meta, _, _, decodeErr := frontmatter.Decode(file.Content)
		if decodeErr != nil {
			s.logger.Debug("publisher.skip_unparsable", "path", entry.Path, "error", decodeErr)
			continue
		}
		if meta.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (s *Service) listDir(ctx context.Context, dir string) ([]article.Summary, error) {
	entries, err := s.store.List(ctx, dir)
	if err != nil {
		return nil, fmt.Errorf("publisher: list %s: %w", dir, err)
	}

	summaries := make([]article.Summary, 0, len(entries))
	for _, entry := range entries {
		file, err := s.store.Read(ctx, entry.Path)
		if err != nil {
			s.logger.Warn("publisher.list_read_failed", "path", entry.Path, "error", err)
			continue
		}
		meta, _, body, err := frontmatter.Decode(file.Content)
		if err != nil {
			s.logger.Warn("publisher.list_unparsable", "path", entry.Path, "error", err)
			continue
		}
		summaries = append(summaries, s.summarize(entry, meta, body))
	}
	return summaries, nil
}

// summarize backfills listing fields the stored frontmatter left out, the
// way the site's index backfills them at render time.
func (s *Service) summarize(entry interfaces.StoreEntry, meta article.Metadata, body string) article.Summary {
	title := meta.Title
	if strings.TrimSpace(title) == "" {
		title = article.Stem(entry.Name)
	}
	date := meta.Date
	if strings.TrimSpace(date) == "" {
		date = s.clock().UTC().Format(dateLayout)
	}
	category := meta.Category
	if strings.TrimSpace(category) == "" {
		category = article.DefaultCategory
	}
	tags := meta.Tags
	if tags == nil {
		tags = []string{}
	}
	excerpt := meta.Excerpt
	if strings.TrimSpace(excerpt) == "" {
		excerpt = article.DefaultExcerpt(body)
	}
	readTime := meta.ReadTime
	if readTime <= 0 {
		readTime = article.EstimateReadTime(body, 0)
		if readTime == 0 {
			readTime = 1
		}
	}
	slug := meta.Slug
	if slug == "" {
		slug = article.Slugify(title)
	}
	return article.Summary{
		Filename:    entry.Name,
		Title:       title,
		Date:        date,
		Category:    category,
		Tags:        tags,
		Excerpt:     excerpt,
		ReadTime:    readTime,
		Slug:        slug,
		PublishedAt: meta.PublishedAt,
		CreatedAt:   meta.CreatedAt,
		Size:        entry.Size,
	}
}

func (s *Service) now() string {
	return s.clock().UTC().Format(timestampLayout)
}

// record appends a history event when a recorder is configured. Recording
// failures are warnings; they never affect the publish outcome.
func (s *Service) record(ctx context.Context, op history.Operation, filename, slug, title string, success bool, cause error) {
	if s.history == nil {
		return
	}
	event := history.Event{
		Operation: op,
		Filename:  filename,
		Slug:      slug,
		Title:     title,
		Backend:   s.backend,
		Success:   success,
	}
	if cause != nil {
		event.Detail = cause.Error()
	}
	if err := s.history.Record(ctx, event); err != nil {
		s.logger.Warn("publisher.history_record_failed", "filename", filename, "error", err)
	}
}
