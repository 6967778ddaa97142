package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Allenwdk/OxygenBlog/internal/article"
	"github.com/Allenwdk/OxygenBlog/internal/history"
	"github.com/Allenwdk/OxygenBlog/internal/logging"
	"github.com/Allenwdk/OxygenBlog/internal/markdown"
	"github.com/Allenwdk/OxygenBlog/internal/publisher"
	"github.com/Allenwdk/OxygenBlog/internal/store"
)

func newTestAPI(t *testing.T) (*httptest.Server, *publisher.Service, *history.MemoryRecorder) {
	t.Helper()
	local, err := store.NewLocal(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("NewLocal() error = %v", err)
	}
	recorder := history.NewMemoryRecorder()
	svc, err := publisher.NewService(publisher.ServiceConfig{
		Store:   local,
		History: recorder,
		Clock:   func() time.Time { return time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC) },
	})
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}

	api := NewBlogAPI(
		WithPublishService(svc),
		WithRenderer(markdown.NewRenderer(markdown.Options{})),
		WithHistory(recorder),
	)
	mux := http.NewServeMux()
	api.Register(mux)

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, svc, recorder
}

func postJSON(t *testing.T, url string, payload any) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

func TestPublishEndpoint(t *testing.T) {
	server, svc, _ := newTestAPI(t)

	resp := postJSON(t, server.URL+"/api/blogs/publish", map[string]any{
		"title":   "API Driven Post",
		"content": "# Heading\n\nBody.",
		"tags":    []string{"api"},
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	body := decodeBody[publishResponse](t, resp)
	if !body.Success || body.Result == nil {
		t.Fatalf("body = %+v", body)
	}
	if body.Result.Filename != "api-driven-post.md" {
		t.Errorf("filename = %q", body.Result.Filename)
	}

	summaries, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(summaries) != 1 || summaries[0].Slug != "api-driven-post" {
		t.Errorf("summaries = %+v", summaries)
	}
}

func TestPublishEndpointValidation(t *testing.T) {
	server, _, _ := newTestAPI(t)

	resp := postJSON(t, server.URL+"/api/blogs/publish", map[string]any{
		"content": "body without title",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	body := decodeBody[errorResponse](t, resp)
	if body.Error != "validation_failed" {
		t.Errorf("error = %q", body.Error)
	}
	if _, ok := body.Issues["title"]; !ok {
		t.Errorf("issues = %v", body.Issues)
	}
}

func TestDraftLifecycleEndpoints(t *testing.T) {
	server, _, _ := newTestAPI(t)

	resp := postJSON(t, server.URL+"/api/blogs/publish", map[string]any{
		"title":       "Draft First",
		"content":     "body",
		"saveAsDraft": true,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("draft status = %d", resp.StatusCode)
	}
	created := decodeBody[publishResponse](t, resp)

	listResp, err := http.Get(server.URL + "/api/blogs/drafts")
	if err != nil {
		t.Fatalf("GET drafts: %v", err)
	}
	drafts := decodeBody[[]article.Summary](t, listResp)
	if len(drafts) != 1 {
		t.Fatalf("drafts = %+v", drafts)
	}

	promoteResp := postJSON(t, server.URL+"/api/blogs/drafts/"+created.Result.Filename+"/promote", struct{}{})
	if promoteResp.StatusCode != http.StatusOK {
		t.Fatalf("promote status = %d", promoteResp.StatusCode)
	}
	promoted := decodeBody[publishResponse](t, promoteResp)
	if promoted.Result.Filename != "draft-first.md" {
		t.Errorf("promoted filename = %q", promoted.Result.Filename)
	}

	listResp, err = http.Get(server.URL + "/api/blogs/drafts")
	if err != nil {
		t.Fatalf("GET drafts: %v", err)
	}
	drafts = decodeBody[[]article.Summary](t, listResp)
	if len(drafts) != 0 {
		t.Errorf("drafts after promote = %+v", drafts)
	}
}

func TestUpdateAndDeleteEndpoints(t *testing.T) {
	server, svc, _ := newTestAPI(t)
	ctx := context.Background()

	result, err := svc.Publish(ctx, publisher.Request{
		Metadata: article.Metadata{Title: "Mutable"},
		Content:  "v1",
	})
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	payload, _ := json.Marshal(map[string]any{"title": "Mutable", "content": "v2"})
	req, err := http.NewRequest(http.MethodPut, server.URL+"/api/blogs/publish/"+result.Filename, bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("PUT: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update status = %d", resp.StatusCode)
	}
	resp.Body.Close()

	req, _ = http.NewRequest(http.MethodDelete, server.URL+"/api/blogs/publish/"+result.Filename, nil)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete status = %d", resp.StatusCode)
	}
	resp.Body.Close()

	req, _ = http.NewRequest(http.MethodDelete, server.URL+"/api/blogs/publish/"+result.Filename, nil)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("second DELETE: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("second delete status = %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestPreviewEndpoint(t *testing.T) {
	server, _, _ := newTestAPI(t)

	resp := postJSON(t, server.URL+"/api/blogs/preview", map[string]any{
		"content": "# Title\n\n**bold**",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	body := decodeBody[previewResponse](t, resp)
	if !bytes.Contains([]byte(body.HTML), []byte("<h1")) {
		t.Errorf("html = %q", body.HTML)
	}
	if !bytes.Contains([]byte(body.HTML), []byte("<strong>bold</strong>")) {
		t.Errorf("html = %q", body.HTML)
	}
}

func TestHistoryEndpoint(t *testing.T) {
	server, svc, _ := newTestAPI(t)

	if _, err := svc.Publish(context.Background(), publisher.Request{
		Metadata: article.Metadata{Title: "Recorded"},
		Content:  "body",
	}); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	resp, err := http.Get(server.URL + "/api/blogs/history?limit=5")
	if err != nil {
		t.Fatalf("GET history: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	events := decodeBody[[]history.Event](t, resp)
	if len(events) != 1 || events[0].Operation != history.OperationPublish {
		t.Errorf("events = %+v", events)
	}

	badResp, err := http.Get(server.URL + "/api/blogs/history?limit=zero")
	if err != nil {
		t.Fatalf("GET history: %v", err)
	}
	badResp.Body.Close()
	if badResp.StatusCode != http.StatusBadRequest {
		t.Errorf("invalid limit status = %d", badResp.StatusCode)
	}
}

func TestMapErrorTaxonomy(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"not found", &store.NotFoundError{Path: "x.md"}, http.StatusNotFound},
		{"conflict", &store.RevisionConflictError{Path: "x.md"}, http.StatusConflict},
		{"transport", &store.TransportError{Status: 500, Message: "boom"}, http.StatusBadGateway},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, _ := mapError(tc.err)
			if status != tc.status {
				t.Errorf("mapError() status = %d, want %d", status, tc.status)
			}
		})
	}
}

type contextCapturingRecorder struct {
	fields map[string]any
}

func (r *contextCapturingRecorder) Record(ctx context.Context, _ history.Event) error {
	r.fields = logging.ContextFields(ctx)
	return nil
}

func (r *contextCapturingRecorder) Recent(context.Context, int) ([]history.Event, error) {
	return nil, nil
}

func TestHandlersAnnotateContext(t *testing.T) {
	local, err := store.NewLocal(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("NewLocal() error = %v", err)
	}
	recorder := &contextCapturingRecorder{}
	svc, err := publisher.NewService(publisher.ServiceConfig{
		Store:   local,
		History: recorder,
	})
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}

	api := NewBlogAPI(WithPublishService(svc))
	mux := http.NewServeMux()
	api.Register(mux)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	resp := postJSON(t, server.URL+"/api/blogs/publish", map[string]any{
		"title":   "Context Fields",
		"content": "body",
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	if recorder.fields["http_method"] != http.MethodPost {
		t.Errorf("http_method = %v", recorder.fields["http_method"])
	}
	if recorder.fields["http_path"] != "/api/blogs/publish" {
		t.Errorf("http_path = %v", recorder.fields["http_path"])
	}
}
