package store

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Allenwdk/OxygenBlog/internal/logging"
	"github.com/Allenwdk/OxygenBlog/pkg/interfaces"
)

const (
	defaultBaseURL   = "https://api.github.com"
	defaultUserAgent = "OxygenBlog/1.0"
	defaultBranch    = "main"

	defaultEnsureAttempts = 3
	defaultEnsureBackoff  = 500 * time.Millisecond
)

// GitHubConfig carries the settings required to reach a repository's
// contents API. Owner, Repo, and Token are mandatory; construction fails
// fast when any is missing so callers never attempt an unauthenticated call.
type GitHubConfig struct {
	Owner      string
	Repo       string
	Branch     string
	Token      string
	BaseURL    string
	UserAgent  string
	HTTPClient *http.Client

	// EnsureAttempts and EnsureBackoff bound the retry loop used when a
	// category directory has to be created before the first write into it.
	EnsureAttempts int
	EnsureBackoff  time.Duration
}

// GitHub is a content store backed by a Git-hosted repository's contents
// API. Every write is a commit on the configured branch.
type GitHub struct {
	owner          string
	repo           string
	branch         string
	token          string
	baseURL        string
	userAgent      string
	client         *http.Client
	ensureAttempts int
	ensureBackoff  time.Duration
	logger         interfaces.Logger
}

var _ interfaces.ContentStore = (*GitHub)(nil)

// NewGitHub validates the configuration and builds a GitHub store.
func NewGitHub(cfg GitHubConfig, logger interfaces.Logger) (*GitHub, error) {
	if strings.TrimSpace(cfg.Owner) == "" {
		return nil, errors.New("store: github owner is required")
	}
	if strings.TrimSpace(cfg.Repo) == "" {
		return nil, errors.New("store: github repository is required")
	}
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, errors.New("store: github token is required")
	}

	branch := strings.TrimSpace(cfg.Branch)
	if branch == "" {
		branch = defaultBranch
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	userAgent := strings.TrimSpace(cfg.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	client := cfg.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	attempts := cfg.EnsureAttempts
	if attempts <= 0 {
		attempts = defaultEnsureAttempts
	}
	backoff := cfg.EnsureBackoff
	if backoff <= 0 {
		backoff = defaultEnsureBackoff
	}
	if logger == nil {
		logger = logging.NoOp()
	}

	return &GitHub{
		owner:          cfg.Owner,
		repo:           cfg.Repo,
		branch:         branch,
		token:          cfg.Token,
		baseURL:        baseURL,
		userAgent:      userAgent,
		client:         client,
		ensureAttempts: attempts,
		ensureBackoff:  backoff,
		logger:         logging.WithStoreContext(logger, "github"),
	}, nil
}

type contentResponse struct {
	Name    string `json:"name"`
	Path    string `json:"path"`
	SHA     string `json:"sha"`
	Size    int64  `json:"size"`
	Type    string `json:"type"`
	Content string `json:"content"`
}

type putRequest struct {
	Message string `json:"message"`
	Content string `json:"content"`
	Branch  string `json:"branch"`
	SHA     string `json:"sha,omitempty"`
}

type deleteRequest struct {
	Message string `json:"message"`
	SHA     string `json:"sha"`
	Branch  string `json:"branch"`
}

// Create commits a new file. The remote treats PUT without a sha as a
// create; writing an existing path this way surfaces a revision conflict.
func (s *GitHub) Create(ctx context.Context, path string, content []byte, message string) error {
	return s.put(ctx, path, content, message, "")
}

// Read fetches the file and its blob sha, the revision identifier required
// for a later Update or Delete.
func (s *GitHub) Read(ctx context.Context, path string) (*interfaces.StoredFile, error) {
	info, err := s.getContent(ctx, path)
	if err != nil {
		return nil, err
	}
	raw, err := decodeContent(info.Content)
	if err != nil {
		return nil, fmt.Errorf("store: decode %s: %w", path, err)
	}
	return &interfaces.StoredFile{
		Path:     path,
		Content:  raw,
		Revision: info.SHA,
		Size:     info.Size,
	}, nil
}

// Update commits a replacement for an existing file. The revision must be
// the current blob sha; omitting it or sending a stale value is rejected by
// the remote and surfaced as a RevisionConflictError.
func (s *GitHub) Update(ctx context.Context, path string, content []byte, message, revision string) error {
	return s.put(ctx, path, content, message, revision)
}

func (s *GitHub) Delete(ctx context.Context, path string, message string) error {
	info, err := s.getContent(ctx, path)
	if err != nil {
		return err
	}
	payload := deleteRequest{Message: message, SHA: info.SHA, Branch: s.branch}
	resp, err := s.do(ctx, http.MethodDelete, s.contentURL(path), payload)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return s.apiError(resp, path)
	}
	s.logger.Debug("store.github.deleted", "path", path)
	return nil
}

// List enumerates markdown files directly under dir. A directory the remote
// has never seen lists as empty rather than failing, mirroring the "404 is
// safe to create" read contract.
func (s *GitHub) List(ctx context.Context, dir string) ([]interfaces.StoreEntry, error) {
	resp, err := s.do(ctx, http.MethodGet, s.contentURL(dir)+"?ref="+url.QueryEscape(s.branch), nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return []interfaces.StoreEntry{}, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, s.apiError(resp, dir)
	}

	var listing []contentResponse
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, fmt.Errorf("store: decode listing %s: %w", dir, err)
	}

	entries := make([]interfaces.StoreEntry, 0, len(listing))
	for _, item := range listing {
		if item.Type != "file" || !strings.HasSuffix(item.Name, ".md") {
			continue
		}
		entries = append(entries, interfaces.StoreEntry{
			Path:     item.Path,
			Name:     item.Name,
			Size:     item.Size,
			Revision: item.SHA,
		})
	}
	return entries, nil
}

func (s *GitHub) Exists(ctx context.Context, path string) (bool, error) {
	resp, err := s.do(ctx, http.MethodGet, s.contentURL(path)+"?ref="+url.QueryEscape(s.branch), nil)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	switch {
	case resp.StatusCode == http.StatusOK:
		return true, nil
	case resp.StatusCode == http.StatusNotFound:
		return false, nil
	default:
		return false, s.apiError(resp, path)
	}
}

// EnsureDirectory makes sure dir exists on the remote before the first real
// write into it. The contents API has no empty-directory concept, so a
// placeholder file is committed and existence is re-checked with a bounded
// backoff to ride out the remote's eventual-consistency window.
func (s *GitHub) EnsureDirectory(ctx context.Context, dir string) error {
	exists, err := s.Exists(ctx, dir)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	placeholder := joinStorePath(dir, ".gitkeep")
	message := fmt.Sprintf("Create category directory: %s", dir)
	if err := s.Create(ctx, placeholder, []byte("# Auto-created directory\n"), message); err != nil {
		// Another writer may have created the directory between the check
		// and the commit; a conflict here means the directory now exists.
		if !IsRevisionConflict(err) {
			return err
		}
	}

	for attempt := 1; attempt <= s.ensureAttempts; attempt++ {
		exists, err := s.Exists(ctx, dir)
		if err != nil {
			return err
		}
		if exists {
			return nil
		}
		if attempt == s.ensureAttempts {
			break
		}
		s.logger.Debug("store.github.ensure_retry", "dir", dir, "attempt", attempt)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.ensureBackoff * time.Duration(attempt)):
		}
	}
	return fmt.Errorf("store: directory %s not visible after %d attempts", dir, s.ensureAttempts)
}

// DispatchWorkflow triggers the repository workflow identified by
// workflowID on the configured branch. Used as a fire-and-forget redeploy
// signal after a successful publish batch.
func (s *GitHub) DispatchWorkflow(ctx context.Context, workflowID string) error {
	endpoint := fmt.Sprintf("%s/repos/%s/%s/actions/workflows/%s/dispatches",
		s.baseURL, url.PathEscape(s.owner), url.PathEscape(s.repo), url.PathEscape(workflowID))
	resp, err := s.do(ctx, http.MethodPost, endpoint, map[string]string{"ref": s.branch})
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return s.apiError(resp, workflowID)
	}
	s.logger.Info("store.github.workflow_dispatched", "workflow", workflowID, "ref", s.branch)
	return nil
}

func (s *GitHub) put(ctx context.Context, path string, content []byte, message, revision string) error {
	payload := putRequest{
		Message: message,
		Content: base64.StdEncoding.EncodeToString(content),
		Branch:  s.branch,
		SHA:     revision,
	}
	resp, err := s.do(ctx, http.MethodPut, s.contentURL(path), payload)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated {
		s.logger.Debug("store.github.written", "path", path, "bytes", len(content))
		return nil
	}
	return s.apiError(resp, path)
}

func (s *GitHub) getContent(ctx context.Context, path string) (*contentResponse, error) {
	resp, err := s.do(ctx, http.MethodGet, s.contentURL(path)+"?ref="+url.QueryEscape(s.branch), nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, &NotFoundError{Path: path}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, s.apiError(resp, path)
	}

	var info contentResponse
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("store: decode %s: %w", path, err)
	}
	return &info, nil
}

func (s *GitHub) do(ctx context.Context, method, endpoint string, payload any) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("store: encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("store: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("User-Agent", s.userAgent)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &TransportError{Message: truncateMessage(err.Error())}
	}
	return resp, nil
}

// apiError maps a non-2xx response onto the store error taxonomy. 409 and
// the contents API's 422 "sha" rejections are revision conflicts; anything
// else is a transport failure carrying the bounded remote message.
func (s *GitHub) apiError(resp *http.Response, path string) error {
	message := readAPIMessage(resp.Body)
	switch resp.StatusCode {
	case http.StatusConflict:
		return &RevisionConflictError{Path: path, Message: message}
	case http.StatusUnprocessableEntity:
		if strings.Contains(strings.ToLower(message), "sha") {
			return &RevisionConflictError{Path: path, Message: message}
		}
	}
	return &TransportError{Status: resp.StatusCode, Message: message}
}

func readAPIMessage(body io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil {
		return ""
	}
	var decoded struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &decoded); err == nil && decoded.Message != "" {
		return truncateMessage(decoded.Message)
	}
	return truncateMessage(strings.TrimSpace(string(data)))
}

func (s *GitHub) contentURL(path string) string {
	escaped := make([]string, 0, 4)
	for _, segment := range strings.Split(strings.Trim(path, "/"), "/") {
		if segment == "" {
			continue
		}
		escaped = append(escaped, url.PathEscape(segment))
	}
	return fmt.Sprintf("%s/repos/%s/%s/contents/%s",
		s.baseURL, url.PathEscape(s.owner), url.PathEscape(s.repo), strings.Join(escaped, "/"))
}

func decodeContent(encoded string) ([]byte, error) {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '\n', '\r', ' ', '\t':
			return -1
		}
		return r
	}, encoded)
	return base64.StdEncoding.DecodeString(cleaned)
}
