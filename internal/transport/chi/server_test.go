package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/kailas-cloud/profilematch/internal/domain"
	healthuc "github.com/kailas-cloud/profilematch/internal/usecase/health"
	"github.com/kailas-cloud/profilematch/internal/usecase/recommend"
	"github.com/kailas-cloud/profilematch/internal/usecase/retrieval"
)

// --- Mocks ---

type mockChatter struct {
	reply       recommend.Reply
	err         error
	gotMessage  string
	gotHistory  []domain.Turn
	calledTimes int
}

func (m *mockChatter) Chat(_ context.Context, message string, history []domain.Turn) (recommend.Reply, error) {
	m.calledTimes++
	m.gotMessage = message
	m.gotHistory = history
	return m.reply, m.err
}

type mockFinder struct {
	result   retrieval.Result
	err      error
	profiles map[string]domain.Profile
	gotQuery string
}

func (m *mockFinder) Retrieve(_ context.Context, query string) (retrieval.Result, error) {
	m.gotQuery = query
	return m.result, m.err
}

func (m *mockFinder) Get(_ context.Context, id string) (domain.Profile, error) {
	p, ok := m.profiles[id]
	if !ok {
		return domain.Profile{}, fmt.Errorf("profile %q: %w", id, domain.ErrNotFound)
	}
	return p, nil
}

type mockHealth struct {
	report healthuc.Report
}

func (m *mockHealth) Check(_ context.Context) healthuc.Report { return m.report }

func newTestRouter(c Chatter, f ProfileFinder, h HealthReporter) http.Handler {
	r := chi.NewRouter()
	NewServer(c, f, h, nil).Register(r)
	return r
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, http.NoBody)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	return resp
}

// --- Chat ---

func TestChat_HappyPath(t *testing.T) {
	chat := &mockChatter{reply: recommend.Reply{
		Text: "Try Ada.",
		Profiles: []domain.Profile{
			{ID: "p1", Slug: "ada", Name: "Ada", Handle: "@ada", Bio: "not exposed"},
		},
		Strategy: retrieval.StrategyVector,
	}}
	h := newTestRouter(chat, &mockFinder{}, &mockHealth{})

	rr := do(t, h, http.MethodPost, "/api/chat",
		`{"message":"math tutor","history":[{"role":"user","content":"hi"},{"role":"ai","content":"hello"}]}`)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp ChatResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Reply != "Try Ada." {
		t.Errorf("unexpected reply: %q", resp.Reply)
	}
	want := ProfileSummary{ID: "p1", Slug: "ada", Name: "Ada", Handle: "@ada"}
	if len(resp.Profiles) != 1 || resp.Profiles[0] != want {
		t.Errorf("unexpected profiles: %+v", resp.Profiles)
	}
	if chat.gotMessage != "math tutor" {
		t.Errorf("unexpected message: %q", chat.gotMessage)
	}
	if len(chat.gotHistory) != 2 || chat.gotHistory[1].Role != "ai" {
		t.Errorf("history must reach the service unnormalized, got %+v", chat.gotHistory)
	}
}

func TestChat_EmptyProfilesEncodeAsArray(t *testing.T) {
	h := newTestRouter(&mockChatter{reply: recommend.Reply{Text: "none"}}, &mockFinder{}, &mockHealth{})

	rr := do(t, h, http.MethodPost, "/api/chat", `{"message":"hi"}`)
	if !strings.Contains(rr.Body.String(), `"profiles":[]`) {
		t.Errorf("expected empty profiles array, got %s", rr.Body.String())
	}
}

func TestChat_InvalidJSON(t *testing.T) {
	chat := &mockChatter{}
	h := newTestRouter(chat, &mockFinder{}, &mockHealth{})

	rr := do(t, h, http.MethodPost, "/api/chat", `{"message":`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	if resp := decodeError(t, rr); resp.Code != CodeBadRequest {
		t.Errorf("expected %s, got %s", CodeBadRequest, resp.Code)
	}
	if chat.calledTimes != 0 {
		t.Error("service must not run on a malformed body")
	}
}

func TestChat_ValidationFailed(t *testing.T) {
	chat := &mockChatter{err: fmt.Errorf("%w: message is required", domain.ErrInput)}
	h := newTestRouter(chat, &mockFinder{}, &mockHealth{})

	rr := do(t, h, http.MethodPost, "/api/chat", `{"message":"  "}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	resp := decodeError(t, rr)
	if resp.Code != CodeValidationFailed {
		t.Errorf("expected %s, got %s", CodeValidationFailed, resp.Code)
	}
	if resp.Message != domain.ErrInput.Error() {
		t.Errorf("expected sentinel message, got %q", resp.Message)
	}
}

func TestChat_InternalErrorHidesDetails(t *testing.T) {
	chat := &mockChatter{err: fmt.Errorf("complete: %w: 401 bad key sk-secret", domain.ErrProviderUnavailable)}
	h := newTestRouter(chat, &mockFinder{}, &mockHealth{})

	rr := do(t, h, http.MethodPost, "/api/chat", `{"message":"math tutor"}`)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	if strings.Contains(rr.Body.String(), "sk-secret") {
		t.Error("internal details leaked to the client")
	}
	if resp := decodeError(t, rr); resp.Code != CodeInternalError || resp.Message != "internal error" {
		t.Errorf("unexpected error response: %+v", resp)
	}
}

// --- Profiles ---

func TestSearchProfiles(t *testing.T) {
	finder := &mockFinder{result: retrieval.Result{
		Profiles: []domain.Profile{{ID: "p2", Name: "Bob"}, {ID: "p1", Name: "Ada"}},
		Strategy: retrieval.StrategyLexical,
	}}
	h := newTestRouter(&mockChatter{}, finder, &mockHealth{})

	rr := do(t, h, http.MethodGet, "/api/profiles/search?q=math+tutor", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var resp SearchResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Strategy != "lexical" {
		t.Errorf("expected strategy lexical, got %q", resp.Strategy)
	}
	if len(resp.Profiles) != 2 || resp.Profiles[0].ID != "p2" {
		t.Errorf("expected ranked order preserved, got %+v", resp.Profiles)
	}
	if finder.gotQuery != "math tutor" {
		t.Errorf("unexpected query: %q", finder.gotQuery)
	}
}

func TestSearchProfiles_BlankQuery(t *testing.T) {
	finder := &mockFinder{err: fmt.Errorf("%w: query is required", domain.ErrInput)}
	h := newTestRouter(&mockChatter{}, finder, &mockHealth{})

	rr := do(t, h, http.MethodGet, "/api/profiles/search", "")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestGetProfile(t *testing.T) {
	finder := &mockFinder{profiles: map[string]domain.Profile{
		"p1": {ID: "p1", Name: "Ada", Stats: map[string]int64{"followers": 10}, Vector: []float32{1, 2}},
	}}
	h := newTestRouter(&mockChatter{}, finder, &mockHealth{})

	rr := do(t, h, http.MethodGet, "/api/profiles/p1", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var resp ProfileResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.ID != "p1" || resp.Stats["followers"] != 10 {
		t.Errorf("unexpected profile: %+v", resp)
	}
	if resp.Tags == nil {
		t.Error("expected tags to encode as an empty array")
	}
}

func TestGetProfile_NotFound(t *testing.T) {
	h := newTestRouter(&mockChatter{}, &mockFinder{}, &mockHealth{})

	rr := do(t, h, http.MethodGet, "/api/profiles/missing", "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
	if resp := decodeError(t, rr); resp.Code != CodeProfileNotFound {
		t.Errorf("expected %s, got %s", CodeProfileNotFound, resp.Code)
	}
}

// --- Health ---

func TestHealthCheck(t *testing.T) {
	tests := []struct {
		name   string
		report healthuc.Report
		want   int
	}{
		{"healthy", healthuc.Report{Status: healthuc.Healthy, Checks: map[string]healthuc.CheckResult{"database": healthuc.CheckOK}}, http.StatusOK},
		{"degraded", healthuc.Report{Status: healthuc.Degraded, Checks: map[string]healthuc.CheckResult{"chat": healthuc.CheckError}}, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestRouter(&mockChatter{}, &mockFinder{}, &mockHealth{report: tt.report})
			rr := do(t, h, http.MethodGet, "/health", "")
			if rr.Code != tt.want {
				t.Errorf("expected %d, got %d", tt.want, rr.Code)
			}
			var resp HealthResponse
			if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Status != string(tt.report.Status) {
				t.Errorf("expected status %q, got %q", tt.report.Status, resp.Status)
			}
		})
	}
}

func TestMetricsRoute(t *testing.T) {
	h := newTestRouter(&mockChatter{}, &mockFinder{}, &mockHealth{})
	rr := do(t, h, http.MethodGet, "/metrics", "")
	if rr.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rr.Code)
	}
}

func TestSafeDomainMessage(t *testing.T) {
	if got := safeDomainMessage(errors.New("dial tcp 10.0.0.1:6379")); got != "internal error" {
		t.Errorf("expected generic message, got %q", got)
	}
	if got := safeDomainMessage(fmt.Errorf("x: %w", domain.ErrNotFound)); got != domain.ErrNotFound.Error() {
		t.Errorf("expected sentinel message, got %q", got)
	}
}
