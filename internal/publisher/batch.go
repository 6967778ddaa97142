package publisher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/Allenwdk/OxygenBlog/internal/article"
	"github.com/Allenwdk/OxygenBlog/internal/frontmatter"
	"github.com/Allenwdk/OxygenBlog/internal/history"
	"github.com/Allenwdk/OxygenBlog/internal/logging"
	"github.com/Allenwdk/OxygenBlog/internal/store"
	"github.com/Allenwdk/OxygenBlog/pkg/interfaces"
)

// DefaultWriteDelay spaces out remote writes so consecutive commits do not
// race each other on the remote branch.
const DefaultWriteDelay = time.Second

// DirectoryEnsurer is implemented by stores that need explicit directory
// creation before files can land in them (the GitHub contents API).
type DirectoryEnsurer interface {
	EnsureDirectory(ctx context.Context, dir string) error
}

// WorkflowDispatcher is implemented by stores that can trigger a remote
// deployment after content changes.
type WorkflowDispatcher interface {
	DispatchWorkflow(ctx context.Context, workflowID string) error
}

// BatchConfig drives a bulk upload run over a local source directory.
type BatchConfig struct {
	Store      interfaces.ContentStore
	Normalizer *article.Normalizer
	History    history.Recorder
	Logger     interfaces.Logger
	Clock      func() time.Time

	// ContentDir is the remote root; each file lands under its category
	// subdirectory.
	ContentDir string
	// WriteDelay is the pause between consecutive uploads.
	WriteDelay time.Duration
	// WorkflowID names the deployment workflow to dispatch after at least
	// one successful upload; empty disables the dispatch.
	WorkflowID string
	// TempDir overrides where intermediate files are staged.
	TempDir string
}

// BatchPublisher uploads prepared Markdown files from a local directory into
// the content store, one commit per file.
type BatchPublisher struct {
	store      interfaces.ContentStore
	norm       *article.Normalizer
	history    history.Recorder
	logger     interfaces.Logger
	clock      func() time.Time
	contentDir string
	delay      time.Duration
	workflowID string
	tempDir    string
}

// NewBatchPublisher builds a BatchPublisher from the supplied configuration.
func NewBatchPublisher(cfg BatchConfig) (*BatchPublisher, error) {
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
	delay := cfg.WriteDelay
	if delay <= 0 {
		delay = DefaultWriteDelay
	}
	tempDir := cfg.TempDir
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	return &BatchPublisher{
		store:      cfg.Store,
		norm:       norm,
		history:    cfg.History,
		logger:     logger,
		clock:      clock,
		contentDir: contentDir,
		delay:      delay,
		workflowID: cfg.WorkflowID,
		tempDir:    tempDir,
	}, nil
}

// FileResult reports the outcome for a single source file.
type FileResult struct {
	File    string `json:"file"`
	Path    string `json:"path,omitempty"`
	Title   string `json:"title,omitempty"`
	Updated bool   `json:"updated,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Ok reports whether the file uploaded successfully.
func (r FileResult) Ok() bool { return r.Error == "" }

// Report aggregates a batch run.
type Report struct {
	Total     int          `json:"total"`
	Succeeded int          `json:"succeeded"`
	Failed    int          `json:"failed"`
	Results   []FileResult `json:"results"`
}

// PublishDirectory uploads every .md file found directly under sourceDir.
// Files are processed in name order; a failure on one file is recorded and
// the run continues with the next.
func (b *BatchPublisher) PublishDirectory(ctx context.Context, sourceDir string) (*Report, error) {
	entries, err := os.ReadDir(sourceDir)
	if err != nil {
		return nil, fmt.Errorf("publisher: read source directory %s: %w", sourceDir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		files = append(files, entry.Name())
	}
	sort.Strings(files)

	report := &Report{Total: len(files)}
	for i, name := range files {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		result := b.publishFile(ctx, filepath.Join(sourceDir, name))
		result.File = name
		if result.Ok() {
			report.Succeeded++
		} else {
			report.Failed++
		}
		report.Results = append(report.Results, result)

		if i < len(files)-1 {
			select {
			case <-ctx.Done():
				return report, ctx.Err()
			case <-time.After(b.delay):
			}
		}
	}

	if report.Succeeded > 0 {
		b.dispatch(ctx)
	}
	return report, nil
}

// PublishFile uploads a single prepared Markdown file and dispatches the
// deployment workflow on success.
func (b *BatchPublisher) PublishFile(ctx context.Context, path string) (*Report, error) {
	result := b.publishFile(ctx, path)
	result.File = filepath.Base(path)
	report := &Report{Total: 1, Results: []FileResult{result}}
	if result.Ok() {
		report.Succeeded = 1
		b.dispatch(ctx)
	} else {
		report.Failed = 1
	}
	return report, nil
}

func (b *BatchPublisher) publishFile(ctx context.Context, path string) FileResult {
	raw, err := os.ReadFile(path)
	if err != nil {
		return FileResult{Error: fmt.Sprintf("read source file: %v", err)}
	}

	meta, extra, body, err := frontmatter.Decode(raw)
	if err != nil {
		return FileResult{Error: fmt.Sprintf("parse frontmatter: %v", err)}
	}
	if strings.TrimSpace(meta.Title) == "" {
		meta.Title = article.Stem(filepath.Base(path))
	}

	meta, err = b.norm.Normalize(meta, body)
	if err != nil {
		return FileResult{Error: err.Error()}
	}
	slug := article.Slugify(meta.Title)
	if slug == "" {
		return FileResult{Error: "title does not produce a usable slug"}
	}
	meta.Slug = slug
	meta.Draft = false
	if meta.PublishedAt == "" {
		meta.PublishedAt = b.clock().UTC().Format(timestampLayout)
	}

	doc := frontmatter.Encode(body, meta, extra)

	staged, err := b.stage(doc)
	if err != nil {
		return FileResult{Error: err.Error()}
	}
	defer os.Remove(staged)

	content, err := os.ReadFile(staged)
	if err != nil {
		return FileResult{Error: fmt.Sprintf("read staged file: %v", err)}
	}

	remoteDir := b.contentDir + "/" + meta.Category
	if ensurer, ok := b.store.(DirectoryEnsurer); ok {
		if err := ensurer.EnsureDirectory(ctx, remoteDir); err != nil {
			b.record(ctx, article.Filename(slug), slug, meta.Title, false, err)
			return FileResult{Title: meta.Title, Error: fmt.Sprintf("ensure directory %s: %v", remoteDir, err)}
		}
	}

	filename := article.Filename(slug)
	remotePath := remoteDir + "/" + filename
	updated, err := b.upsert(ctx, remotePath, content, "Add new article: "+meta.Title)
	if err != nil {
		b.record(ctx, filename, slug, meta.Title, false, err)
		return FileResult{Title: meta.Title, Path: remotePath, Error: err.Error()}
	}

	b.record(ctx, filename, slug, meta.Title, true, nil)
	logging.WithArticleContext(b.logger, remotePath, slug).Info("publisher.batch_uploaded",
		"title", meta.Title,
		"updated", updated,
	)
	return FileResult{Title: meta.Title, Path: remotePath, Updated: updated}
}

// stage writes the encoded document to a temporary file. Callers must remove
// the returned path; every exit path of publishFile does.
func (b *BatchPublisher) stage(doc []byte) (string, error) {
	tmp, err := os.CreateTemp(b.tempDir, "publish-*.md")
	if err != nil {
		return "", fmt.Errorf("stage temp file: %w", err)
	}
	if _, err := tmp.Write(doc); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("stage temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("stage temp file: %w", err)
	}
	return tmp.Name(), nil
}

// upsert creates the remote file, or replaces it when it already exists.
// Bulk uploads intentionally overwrite: re-running a batch refreshes the
// published copies instead of accumulating timestamped duplicates.
func (b *BatchPublisher) upsert(ctx context.Context, path string, content []byte, message string) (bool, error) {
	existing, err := b.store.Read(ctx, path)
	if err != nil {
		if store.IsNotFound(err) {
			return false, b.store.Create(ctx, path, content, message)
		}
		return false, err
	}
	return true, b.store.Update(ctx, path, content, "Update article: "+strings.TrimPrefix(message, "Add new article: "), existing.Revision)
}

func (b *BatchPublisher) dispatch(ctx context.Context) {
	if b.workflowID == "" {
		return
	}
	dispatcher, ok := b.store.(WorkflowDispatcher)
	if !ok {
		return
	}
	if err := dispatcher.DispatchWorkflow(ctx, b.workflowID); err != nil {
		// Content is already committed; the site will pick it up on the next
		// scheduled build even if this dispatch fails.
		b.logger.Warn("publisher.workflow_dispatch_failed", "workflow", b.workflowID, "error", err)
		return
	}
	b.logger.Info("publisher.workflow_dispatched", "workflow", b.workflowID)
}

func (b *BatchPublisher) record(ctx context.Context, filename, slug, title string, success bool, cause error) {
	if b.history == nil {
		return
	}
	event := history.Event{
		Operation: history.OperationPublish,
		Filename:  filename,
		Slug:      slug,
		Title:     title,
		Backend:   "batch",
		Success:   success,
	}
	if cause != nil {
		event.Detail = cause.Error()
	}
	if err := b.history.Record(ctx, event); err != nil {
		b.logger.Warn("publisher.history_record_failed", "filename", filename, "error", err)
	}
}
