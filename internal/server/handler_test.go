package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"jobassist/internal/ai"
	"jobassist/internal/config"
	"jobassist/internal/errors"
	"jobassist/internal/scrape"
	"jobassist/internal/types"
)

type fakeProvider struct {
	posting   types.JobPostingOutput
	questions types.ContactQuestionsOutput
	plan      types.LearningPlanOutput
	err       error
	available bool

	postingInput   types.JobPostingInput
	questionsInput types.ContactQuestionsInput
}

func (f *fakeProvider) AnalyzeJobPosting(ctx context.Context, input types.JobPostingInput) (types.JobPostingOutput, *ai.TokenUsage, error) {
	f.postingInput = input
	return f.posting, &ai.TokenUsage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15}, f.err
}

func (f *fakeProvider) SuggestQuestions(ctx context.Context, input types.ContactQuestionsInput) (types.ContactQuestionsOutput, *ai.TokenUsage, error) {
	f.questionsInput = input
	return f.questions, nil, f.err
}

func (f *fakeProvider) BuildLearningPlan(ctx context.Context, input types.LearningPlanInput) (types.LearningPlanOutput, *ai.TokenUsage, error) {
	return f.plan, nil, f.err
}

func (f *fakeProvider) GetModelInfo(ctx context.Context) *ai.ModelInfo {
	return &ai.ModelInfo{Name: "fake-model", Available: f.available}
}

func (f *fakeProvider) Close() error { return nil }

type stubFetcher struct {
	page *scrape.Page
	err  error
	urls []string
}

func (s *stubFetcher) Fetch(ctx context.Context, rawURL string) (*scrape.Page, error) {
	s.urls = append(s.urls, rawURL)
	return s.page, s.err
}

func newTestServer(t *testing.T, provider ai.AIProvider) *Server {
	t.Helper()
	cfg := &config.Config{Scrape: config.ScrapeConfig{ProfilePath: "props.pageProps.profile"}}
	s := NewServer(cfg, ServerConfig{Version: "test", MaxRequestSize: 1 << 20}, nil)
	s.providers.factory = func(op string) (ai.AIProvider, error) { return provider, nil }
	return s
}

func postJSON(t *testing.T, handler http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("Failed to decode response %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestAnalyzePostingHandler(t *testing.T) {
	provider := &fakeProvider{posting: types.JobPostingOutput{
		Sections: []types.Section{{Title: "자격요건", Content: "Go 3년 이상"}},
	}}
	mux := newTestServer(t, provider).setupRoutes(nil)

	rec := postJSON(t, mux, "/analyze-posting", `{"jobDescription": "Backend Engineer"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	out := decodeBody[types.JobPostingOutput](t, rec)
	if len(out.Sections) != 1 || out.Sections[0].Title != "자격요건" {
		t.Errorf("Expected provider sections, got %+v", out.Sections)
	}
	if provider.postingInput.JobDescription != "Backend Engineer" {
		t.Errorf("Expected job description passed through, got %q", provider.postingInput.JobDescription)
	}
}

func TestAnalyzePostingFromURL(t *testing.T) {
	provider := &fakeProvider{posting: types.JobPostingOutput{Sections: []types.Section{{Title: "t", Content: "c"}}}}
	s := newTestServer(t, provider)
	fetcher := &stubFetcher{page: &scrape.Page{Text: "Platform Engineer\nKubernetes"}}
	s.fetcher = fetcher
	mux := s.setupRoutes(nil)

	rec := postJSON(t, mux, "/analyze-posting", `{"url": "https://jobs.example.com/42"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if provider.postingInput.JobDescription != "Platform Engineer\nKubernetes" {
		t.Errorf("Expected fetched page text, got %q", provider.postingInput.JobDescription)
	}
	if provider.postingInput.SourceURL != "https://jobs.example.com/42" {
		t.Errorf("Expected source URL, got %q", provider.postingInput.SourceURL)
	}
	if len(fetcher.urls) != 1 {
		t.Errorf("Expected one fetch, got %v", fetcher.urls)
	}
}

func TestHandlersRejectBadRequests(t *testing.T) {
	mux := newTestServer(t, &fakeProvider{}).setupRoutes(nil)

	tests := []struct {
		name string
		path string
		body string
	}{
		{"posting without text or url", "/analyze-posting", `{"jobDescription": "  "}`},
		{"posting with invalid JSON", "/analyze-posting", `{"jobDescription":`},
		{"questions without contacts", "/suggest-questions", `{"contacts": []}`},
		{"questions with nameless contact", "/suggest-questions", `{"contacts": [{"role": "CTO"}]}`},
		{"plan without resume", "/learning-plan", `{"jobDescription": "SRE"}`},
		{"plan without job description", "/learning-plan", `{"resume": "Go developer"}`},
		{"import without url", "/profile/import", `{"path": "data"}`},
		{"too many question lists", "/extract/questions", `{"text": "[]", "count": 101}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postJSON(t, mux, tt.path, tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("Expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
			resp := decodeBody[ErrorResponse](t, rec)
			if resp.Error == "" {
				t.Error("Expected error title in response")
			}
		})
	}
}

func TestHandlerRequiresJSONContentType(t *testing.T) {
	mux := newTestServer(t, &fakeProvider{}).setupRoutes(nil)

	req := httptest.NewRequest(http.MethodPost, "/extract/sections", strings.NewReader(`{"text": "x"}`))
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", rec.Code)
	}
}

func TestSuggestQuestionsHandler(t *testing.T) {
	provider := &fakeProvider{questions: types.ContactQuestionsOutput{
		Questions: [][]string{{"How did you start?"}, {}},
	}}
	mux := newTestServer(t, provider).setupRoutes(nil)

	rec := postJSON(t, mux, "/suggest-questions",
		`{"contacts": [{"name": "Kim", "role": "SRE"}, "Lee"], "targetJob": "Platform Engineer"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	if len(provider.questionsInput.Contacts) != 2 {
		t.Fatalf("Expected 2 contacts, got %+v", provider.questionsInput.Contacts)
	}
	if provider.questionsInput.Contacts[1].Name != "Lee" {
		t.Errorf("Expected bare string contact, got %+v", provider.questionsInput.Contacts[1])
	}
	if provider.questionsInput.TargetJob != "Platform Engineer" {
		t.Errorf("Expected target job, got %q", provider.questionsInput.TargetJob)
	}

	out := decodeBody[types.ContactQuestionsOutput](t, rec)
	if len(out.Questions) != 2 {
		t.Errorf("Expected 2 question lists, got %v", out.Questions)
	}
}

func TestLearningPlanHandler(t *testing.T) {
	provider := &fakeProvider{plan: types.LearningPlanOutput{
		Steps:    []types.Section{{Title: "상세 내용", Content: "raw"}},
		Fallback: true,
	}}
	mux := newTestServer(t, provider).setupRoutes(nil)

	rec := postJSON(t, mux, "/learning-plan", `{"resume": "Go developer", "jobDescription": "SRE"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	out := decodeBody[types.LearningPlanOutput](t, rec)
	if !out.Fallback || len(out.Steps) != 1 {
		t.Errorf("Expected fallback plan to pass through, got %+v", out)
	}
}

func TestAIFailureStatus(t *testing.T) {
	tests := []struct {
		name        string
		providerErr error
		factoryErr  error
		expected    int
		code        string
	}{
		{
			name:        "provider failure",
			providerErr: errors.NewAIError(errors.ErrCodeAIServiceFailed, "Gemini request failed", nil),
			expected:    http.StatusBadGateway,
			code:        errors.ErrCodeAIServiceFailed,
		},
		{
			name:        "provider timeout",
			providerErr: errors.NewAIError(errors.ErrCodeAITimeout, "Gemini request timed out", nil),
			expected:    http.StatusGatewayTimeout,
			code:        errors.ErrCodeAITimeout,
		},
		{
			name:       "missing key",
			factoryErr: errors.NewConfigError(errors.ErrCodeMissingAPIKey, "AI API key is required", nil),
			expected:   http.StatusServiceUnavailable,
			code:       errors.ErrCodeMissingAPIKey,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, &fakeProvider{err: tt.providerErr})
			if tt.factoryErr != nil {
				s.providers.factory = func(op string) (ai.AIProvider, error) { return nil, tt.factoryErr }
			}

			rec := postJSON(t, s.setupRoutes(nil), "/analyze-posting", `{"jobDescription": "SRE"}`)
			if rec.Code != tt.expected {
				t.Errorf("Expected %d, got %d", tt.expected, rec.Code)
			}
			if resp := decodeBody[ErrorResponse](t, rec); resp.Code != tt.code {
				t.Errorf("Expected code %s, got %q", tt.code, resp.Code)
			}
		})
	}
}

func TestExtractSectionsHandler(t *testing.T) {
	mux := newTestServer(t, &fakeProvider{}).setupRoutes(nil)

	tests := []struct {
		name     string
		text     string
		fallback bool
		reason   string
		title    string
	}{
		{"fenced array", "```json\n[{\"title\":\"업무\",\"content\":\"API 개발\"}]\n```", false, "", "업무"},
		{"prose", "그냥 텍스트", true, "parse", "상세 내용"},
		{"single object", `{"title":"a","content":"b"}`, true, "shape", "상세 내용"},
		{"no usable entries", `[{"title":"a"}]`, true, "empty", "상세 내용"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, _ := json.Marshal(types.ExtractSectionsInput{Text: tt.text})
			rec := postJSON(t, mux, "/extract/sections", string(body))
			if rec.Code != http.StatusOK {
				t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
			}

			out := decodeBody[ExtractSectionsResponse](t, rec)
			if out.Fallback != tt.fallback || out.Reason != tt.reason {
				t.Errorf("Expected fallback=%v reason=%q, got %v %q", tt.fallback, tt.reason, out.Fallback, out.Reason)
			}
			if len(out.Sections) == 0 || out.Sections[0].Title != tt.title {
				t.Errorf("Expected first title %q, got %+v", tt.title, out.Sections)
			}
		})
	}
}

func TestExtractQuestionsHandler(t *testing.T) {
	mux := newTestServer(t, &fakeProvider{}).setupRoutes(nil)

	rec := postJSON(t, mux, "/extract/questions",
		`{"text": "[[\"a\",\"b\"],{\"questions\":[\"c\"]},[\"d\"]]", "count": 2}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	out := decodeBody[ExtractQuestionsResponse](t, rec)
	if len(out.Questions) != 2 {
		t.Fatalf("Expected exactly 2 lists, got %v", out.Questions)
	}
	if out.Questions[1][0] != "c" {
		t.Errorf("Expected alias list at position 1, got %v", out.Questions[1])
	}
}

func TestProfileMapHandler(t *testing.T) {
	mux := newTestServer(t, &fakeProvider{}).setupRoutes(nil)

	rec := postJSON(t, mux, "/profile/map",
		`{"profile": {"name": "Haneul Kim"}, "skills": {"tools": ["Git"], "languages": ["Go"]}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	out := decodeBody[types.CanonicalProfile](t, rec)
	if out.Name != "Haneul Kim" {
		t.Errorf("Expected name, got %q", out.Name)
	}
	if len(out.Skills) != 2 || out.Skills[0] != "Go" {
		t.Errorf("Expected skills in category order, got %v", out.Skills)
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte(`"certificates":[]`)) {
		t.Errorf("Expected empty certificates array, got %s", rec.Body.String())
	}

	rec = postJSON(t, mux, "/profile/map", `["not", "an", "object"]`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("Expected 422 for non-object profile, got %d", rec.Code)
	}
}

func TestProfileImportHandler(t *testing.T) {
	s := newTestServer(t, &fakeProvider{})
	s.fetcher = &stubFetcher{page: &scrape.Page{
		NextData: `{"props":{"pageProps":{"profile":{"profile":{"localizedName":"김하늘"}}}}}`,
	}}
	mux := s.setupRoutes(nil)

	rec := postJSON(t, mux, "/profile/import", `{"url": "https://example.com/@haneul"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if out := decodeBody[types.CanonicalProfile](t, rec); out.Name != "김하늘" {
		t.Errorf("Expected imported name, got %q", out.Name)
	}

	s = newTestServer(t, &fakeProvider{})
	s.fetcher = &stubFetcher{page: &scrape.Page{Text: "no data here"}}
	rec = postJSON(t, s.setupRoutes(nil), "/profile/import", `{"url": "https://example.com/x"}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("Expected 422 without embedded data, got %d", rec.Code)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"plain error", context.Canceled, http.StatusInternalServerError},
		{"validation", errors.NewValidationError(errors.ErrCodeInvalidRequest, "bad", nil), http.StatusBadRequest},
		{"fetch failure", errors.NewScrapeError(errors.ErrCodeFetchFailed, "down", nil), http.StatusBadGateway},
		{"network timeout", errors.NewNetworkError(errors.ErrCodeNetworkTimeout, "slow", nil), http.StatusGatewayTimeout},
		{"invalid config", errors.NewConfigError(errors.ErrCodeInvalidConfig, "bad", nil), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := statusFor(tt.err); got != tt.expected {
				t.Errorf("Expected %d, got %d", tt.expected, got)
			}
		})
	}
}
