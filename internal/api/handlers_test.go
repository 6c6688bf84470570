package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gofiber/fiber"
	"github.com/rs/zerolog"

	"github.com/Equat-ion/titles/internal/account"
	"github.com/Equat-ion/titles/internal/addons"
	"github.com/Equat-ion/titles/internal/catalog"
	"github.com/Equat-ion/titles/internal/posters"
	"github.com/Equat-ion/titles/internal/settings"
	"github.com/Equat-ion/titles/internal/stremio"
)

type testEnv struct {
	app   *fiber.App
	store *settings.Store
	url   string
}

// newTestEnv wires the full handler stack against one fake upstream server.
func newTestEnv(t *testing.T, backend http.Handler, loggedIn bool) *testEnv {
	t.Helper()
	server := httptest.NewServer(backend)
	t.Cleanup(server.Close)

	store, err := settings.Open(filepath.Join(t.TempDir(), "settings.json"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if loggedIn {
		if err := store.SaveAuthKey("test-key"); err != nil {
			t.Fatalf("SaveAuthKey() error = %v", err)
		}
	}

	log := zerolog.Nop()
	hc := &http.Client{Timeout: 5 * time.Second}
	client := stremio.NewClient(server.URL, hc, &log)

	accounts := account.NewService(client, store, &log)
	addonSvc := addons.NewService(client, store, hc, &log)
	aggregator := catalog.NewAggregator(addonSvc, hc, 20, 4, &log)
	cache := posters.New(t.TempDir(), hc, 0, &log)

	app := fiber.New()
	RegisterRoutes(app, NewHandlers(accounts, addonSvc, aggregator, cache, store, &log))

	return &testEnv{app: app, store: store, url: server.URL}
}

func (e *testEnv) do(t *testing.T, method, target, body string) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := e.app.Test(req, 5000)
	if err != nil {
		t.Fatalf("%s %s: %v", method, target, err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response body: %v", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		t.Fatalf("decode response %s: %v", data, err)
	}
}

func collectionResult(ids ...string) string {
	items := make([]string, len(ids))
	for i, id := range ids {
		items[i] = fmt.Sprintf(`{"transportUrl":"https://addons.example/%s/manifest.json","manifest":{"id":"%s","name":"Addon %s"}}`, id, id, id)
	}
	return `{"result":{"addons":[` + strings.Join(items, ",") + `]}}`
}

// --- session -------------------------------------------------------------------

func TestStatusLoggedOut(t *testing.T) {
	env := newTestEnv(t, http.NotFoundHandler(), false)

	resp := env.do(t, "GET", "/api/status", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var got struct {
		LoggedIn bool   `json:"loggedIn"`
		Email    string `json:"email"`
	}
	decodeBody(t, resp, &got)
	if got.LoggedIn {
		t.Error("loggedIn = true, want false")
	}
	if got.Email != "" {
		t.Errorf("email = %q, want empty", got.Email)
	}
}

func TestStatusLoggedIn(t *testing.T) {
	env := newTestEnv(t, http.NotFoundHandler(), true)
	if err := env.store.SaveUser("u1", "user@example.com"); err != nil {
		t.Fatalf("SaveUser() error = %v", err)
	}

	resp := env.do(t, "GET", "/api/status", "")

	var got struct {
		LoggedIn bool   `json:"loggedIn"`
		Email    string `json:"email"`
	}
	decodeBody(t, resp, &got)
	if !got.LoggedIn {
		t.Error("loggedIn = false, want true")
	}
	if got.Email != "user@example.com" {
		t.Errorf("email = %q, want user@example.com", got.Email)
	}
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/login" {
			t.Errorf("upstream path = %s, want /api/login", r.URL.Path)
		}
		io.WriteString(w, `{"result":{"authKey":"key-123","user":{"_id":"u1","email":"user@example.com"}}}`)
	}), false)

	resp := env.do(t, "POST", "/api/session", `{"email":"user@example.com","password":"hunter2"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var got struct {
		Email string `json:"email"`
	}
	decodeBody(t, resp, &got)
	if got.Email != "user@example.com" {
		t.Errorf("email = %q, want user@example.com", got.Email)
	}
	if key := env.store.AuthKey(); key != "key-123" {
		t.Errorf("stored auth key = %q, want key-123", key)
	}
}

func TestLoginBadCredentials(t *testing.T) {
	env := newTestEnv(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"error":"Wrong email or password"}`)
	}), false)

	resp := env.do(t, "POST", "/api/session", `{"email":"user@example.com","password":"wrong"}`)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusUnauthorized)
	}

	var got struct {
		Error  string `json:"error"`
		Reason string `json:"reason"`
	}
	decodeBody(t, resp, &got)
	if got.Error != "Invalid email or password" {
		t.Errorf("error = %q, want %q", got.Error, "Invalid email or password")
	}
	if got.Reason != "bad_credentials" {
		t.Errorf("reason = %q, want bad_credentials", got.Reason)
	}
}

func TestLoginValidation(t *testing.T) {
	env := newTestEnv(t, http.NotFoundHandler(), false)

	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"invalid JSON", `{`, "invalid JSON body"},
		{"missing email", `{"password":"hunter2"}`, "email and password are required"},
		{"missing password", `{"email":"user@example.com"}`, "email and password are required"},
		{"blank email", `{"email":"   ","password":"hunter2"}`, "email and password are required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := env.do(t, "POST", "/api/session", tt.body)
			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
			}

			var got struct {
				Error string `json:"error"`
			}
			decodeBody(t, resp, &got)
			if got.Error != tt.wantErr {
				t.Errorf("error = %q, want %q", got.Error, tt.wantErr)
			}
		})
	}
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"result":{"success":true}}`)
	}), true)

	resp := env.do(t, "DELETE", "/api/session", "")
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusNoContent)
	}
	if env.store.IsLoggedIn() {
		t.Error("session survived logout")
	}
}

func TestLogoutSurvivesRemoteFailure(t *testing.T) {
	env := newTestEnv(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}), true)

	resp := env.do(t, "DELETE", "/api/session", "")
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusNoContent)
	}
	if env.store.IsLoggedIn() {
		t.Error("local session must be cleared even when the remote call fails")
	}
}

func TestGetUserWithoutSession(t *testing.T) {
	env := newTestEnv(t, http.NotFoundHandler(), false)

	resp := env.do(t, "GET", "/api/user", "")
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusNoContent)
	}
}

func TestGetUser(t *testing.T) {
	env := newTestEnv(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"result":{"user":{"_id":"u1","email":"user@example.com"}}}`)
	}), true)

	resp := env.do(t, "GET", "/api/user", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var got stremio.User
	decodeBody(t, resp, &got)
	if got.ID != "u1" || got.Email != "user@example.com" {
		t.Errorf("user = %+v", got)
	}
}

// --- addon collection ------------------------------------------------------------

func TestGetAddonsRequiresSession(t *testing.T) {
	env := newTestEnv(t, http.NotFoundHandler(), false)

	resp := env.do(t, "GET", "/api/addons", "")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusUnauthorized)
	}

	var got struct {
		Error string `json:"error"`
	}
	decodeBody(t, resp, &got)
	if got.Error == "" {
		t.Error("error body is empty")
	}
}

func TestGetAddons(t *testing.T) {
	env := newTestEnv(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, collectionResult("first", "second"))
	}), true)

	resp := env.do(t, "GET", "/api/addons", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var got struct {
		Addons []stremio.Descriptor `json:"addons"`
	}
	decodeBody(t, resp, &got)
	if len(got.Addons) != 2 {
		t.Fatalf("addons = %d, want 2", len(got.Addons))
	}
	if got.Addons[0].Manifest.ID != "first" {
		t.Errorf("first addon = %s, want first", got.Addons[0].Manifest.ID)
	}
}

func TestSetAddons(t *testing.T) {
	saved := make(chan []byte, 1)
	env := newTestEnv(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		saved <- body
		io.WriteString(w, `{"result":{"success":true}}`)
	}), true)

	body := `{"addons":[{"transportUrl":"https://addons.example/one/manifest.json","manifest":{"id":"one","name":"One"}}]}`
	resp := env.do(t, "PUT", "/api/addons", body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	select {
	case data := <-saved:
		var req struct {
			AuthKey string               `json:"authKey"`
			Addons  []stremio.Descriptor `json:"addons"`
		}
		if err := json.Unmarshal(data, &req); err != nil {
			t.Fatalf("decode upstream body: %v", err)
		}
		if req.AuthKey != "test-key" {
			t.Errorf("authKey = %q, want test-key", req.AuthKey)
		}
		if len(req.Addons) != 1 || req.Addons[0].Manifest.ID != "one" {
			t.Errorf("saved addons = %+v", req.Addons)
		}
	default:
		t.Fatal("collection was never saved upstream")
	}
}

func TestToggleAddon(t *testing.T) {
	env := newTestEnv(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/addonCollectionGet":
			io.WriteString(w, collectionResult("first", "second"))
		case "/api/addonCollectionSet":
			io.WriteString(w, `{"result":{"success":true}}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}), true)

	resp := env.do(t, "POST", "/api/addons/toggle", `{"index":1,"enabled":false}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var got struct {
		Addons []stremio.Descriptor `json:"addons"`
	}
	decodeBody(t, resp, &got)
	if len(got.Addons) != 2 {
		t.Fatalf("addons = %d, want 2", len(got.Addons))
	}
	if got.Addons[1].Enabled() {
		t.Error("addon 1 still enabled after toggle")
	}
	if !got.Addons[0].Enabled() {
		t.Error("addon 0 was toggled as well")
	}
}

func TestToggleAddonIndexOutOfRange(t *testing.T) {
	env := newTestEnv(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, collectionResult("only"))
	}), true)

	for _, body := range []string{`{"index":5,"enabled":true}`, `{"index":-1,"enabled":true}`} {
		resp := env.do(t, "POST", "/api/addons/toggle", body)
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("toggle %s: status = %d, want %d", body, resp.StatusCode, http.StatusBadRequest)
		}
	}
}

func TestRemoveAddon(t *testing.T) {
	env := newTestEnv(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/addonCollectionGet":
			io.WriteString(w, collectionResult("first", "second"))
		case "/api/addonCollectionSet":
			io.WriteString(w, `{"result":{"success":true}}`)
		}
	}), true)

	resp := env.do(t, "POST", "/api/addons/remove", `{"index":0}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var got struct {
		Addons []stremio.Descriptor `json:"addons"`
	}
	decodeBody(t, resp, &got)
	if len(got.Addons) != 1 {
		t.Fatalf("addons = %d, want 1", len(got.Addons))
	}
	if got.Addons[0].Manifest.ID != "second" {
		t.Errorf("remaining addon = %s, want second", got.Addons[0].Manifest.ID)
	}
}

// --- catalogs ----------------------------------------------------------------------

func TestGetCatalogs(t *testing.T) {
	addonBase := new(string)
	env := newTestEnv(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/addonCollectionGet":
			fmt.Fprintf(w, `{"result":{"addons":[{"transportUrl":"%s/manifest.json","manifest":{"id":"cinemeta","name":"Cinemeta","types":["movie"],"resources":["catalog"],"catalogs":[{"type":"movie","id":"top","name":"Top Movies"}]}}]}}`, *addonBase)
		case "/catalog/movie/top.json":
			io.WriteString(w, `{"metas":[{"id":"tt0111161","name":"The Shawshank Redemption","type":"movie"}]}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}), true)
	*addonBase = env.url

	resp := env.do(t, "GET", "/api/catalogs/movie", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var sections []catalog.Section
	decodeBody(t, resp, &sections)
	if len(sections) != 1 {
		t.Fatalf("sections = %d, want 1", len(sections))
	}
	if sections[0].CatalogName != "Top Movies" || sections[0].AddonName != "Cinemeta" {
		t.Errorf("section = %s by %s", sections[0].CatalogName, sections[0].AddonName)
	}
	if len(sections[0].Items) != 1 || sections[0].Items[0].ID != "tt0111161" {
		t.Errorf("items = %+v", sections[0].Items)
	}
}

func TestGetCatalogsEmptyWhenLoggedOut(t *testing.T) {
	env := newTestEnv(t, http.NotFoundHandler(), false)

	resp := env.do(t, "GET", "/api/catalogs/movie", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	data, _ := io.ReadAll(resp.Body)
	if strings.TrimSpace(string(data)) != "[]" {
		t.Errorf("body = %s, want []", data)
	}
}

func TestGetCatalogPage(t *testing.T) {
	env := newTestEnv(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/catalog/movie/top/skip=40.json" {
			t.Errorf("upstream path = %s, want /catalog/movie/top/skip=40.json", r.URL.Path)
		}
		io.WriteString(w, `{"metas":[{"id":"tt41","name":"Forty-first","type":"movie"}]}`)
	}), true)

	params := url.Values{}
	params.Set("transportUrl", env.url+"/manifest.json")
	params.Set("type", "movie")
	params.Set("id", "top")
	params.Set("skip", "40")

	resp := env.do(t, "GET", "/api/catalog?"+params.Encode(), "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var got struct {
		Metas []stremio.MetaPreview `json:"metas"`
	}
	decodeBody(t, resp, &got)
	if len(got.Metas) != 1 || got.Metas[0].ID != "tt41" {
		t.Errorf("metas = %+v", got.Metas)
	}
}

func TestGetCatalogPageValidation(t *testing.T) {
	env := newTestEnv(t, http.NotFoundHandler(), true)

	tests := []struct {
		name   string
		target string
	}{
		{"missing transportUrl", "/api/catalog?type=movie&id=top"},
		{"missing type", "/api/catalog?transportUrl=https%3A%2F%2Fa&id=top"},
		{"missing id", "/api/catalog?transportUrl=https%3A%2F%2Fa&type=movie"},
		{"negative skip", "/api/catalog?transportUrl=https%3A%2F%2Fa&type=movie&id=top&skip=-1"},
		{"non-numeric skip", "/api/catalog?transportUrl=https%3A%2F%2Fa&type=movie&id=top&skip=abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := env.do(t, "GET", tt.target, "")
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
			}
		})
	}
}

// --- settings ------------------------------------------------------------------------

func TestSettingsRoundTrip(t *testing.T) {
	env := newTestEnv(t, http.NotFoundHandler(), false)

	resp := env.do(t, "GET", "/api/settings", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var got struct {
		UpdateFrequency string `json:"updateFrequency"`
	}
	decodeBody(t, resp, &got)
	if got.UpdateFrequency != "never" {
		t.Errorf("default updateFrequency = %q, want never", got.UpdateFrequency)
	}

	resp = env.do(t, "PUT", "/api/settings", `{"updateFrequency":"week"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	decodeBody(t, resp, &got)
	if got.UpdateFrequency != "week" {
		t.Errorf("updated updateFrequency = %q, want week", got.UpdateFrequency)
	}

	if f := env.store.UpdateFrequency(); f != settings.FreqWeek {
		t.Errorf("stored frequency = %q, want week", f)
	}
}

func TestUpdateSettingsRejectsUnknownFrequency(t *testing.T) {
	env := newTestEnv(t, http.NotFoundHandler(), false)

	resp := env.do(t, "PUT", "/api/settings", `{"updateFrequency":"yearly"}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}

	var got struct {
		Error string `json:"error"`
	}
	decodeBody(t, resp, &got)
	if !strings.Contains(got.Error, "never, day, week, month") {
		t.Errorf("error = %q", got.Error)
	}
}

// --- poster cache ----------------------------------------------------------------------

func TestPosterRequiresURL(t *testing.T) {
	env := newTestEnv(t, http.NotFoundHandler(), false)

	resp := env.do(t, "GET", "/api/poster", "")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}
}

func TestPosterServedThroughCache(t *testing.T) {
	var hits int32
	env := newTestEnv(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Write([]byte("jpeg-bytes"))
	}), false)

	params := url.Values{}
	params.Set("url", env.url+"/poster.jpg")
	target := "/api/poster?" + params.Encode()

	for i := 0; i < 2; i++ {
		resp := env.do(t, "GET", target, "")
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
		}
		if ct := resp.Header.Get("Content-Type"); ct != "image/jpeg" {
			t.Errorf("Content-Type = %q, want image/jpeg", ct)
		}
		data, _ := io.ReadAll(resp.Body)
		if string(data) != "jpeg-bytes" {
			t.Errorf("body = %q", data)
		}
	}

	if n := atomic.LoadInt32(&hits); n != 1 {
		t.Errorf("upstream hits = %d, want 1", n)
	}
}

func TestCacheStatsAndClear(t *testing.T) {
	env := newTestEnv(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("jpeg-bytes"))
	}), false)

	params := url.Values{}
	params.Set("url", env.url+"/poster.jpg")
	env.do(t, "GET", "/api/poster?"+params.Encode(), "")

	resp := env.do(t, "GET", "/api/cache/stats", "")
	var stats struct {
		FileCount int `json:"fileCount"`
	}
	decodeBody(t, resp, &stats)
	if stats.FileCount != 1 {
		t.Errorf("fileCount = %d, want 1", stats.FileCount)
	}

	resp = env.do(t, "POST", "/api/cache/clear", "")
	var cleared struct {
		Removed int `json:"removed"`
	}
	decodeBody(t, resp, &cleared)
	if cleared.Removed != 1 {
		t.Errorf("removed = %d, want 1", cleared.Removed)
	}

	resp = env.do(t, "GET", "/api/cache/stats", "")
	decodeBody(t, resp, &stats)
	if stats.FileCount != 0 {
		t.Errorf("fileCount after clear = %d, want 0", stats.FileCount)
	}
}

// --- error mapping ----------------------------------------------------------------------

func TestRespondErrorStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{
			"auth error",
			&stremio.AuthError{Reason: stremio.ReasonBadCredentials, Message: "Invalid email or password"},
			http.StatusUnauthorized,
		},
		{
			"auth error wrapping a timeout",
			&stremio.AuthError{Reason: stremio.ReasonTimeout, Message: "Request timed out. Please try again.", Err: stremio.ErrTimeout},
			http.StatusUnauthorized,
		},
		{
			"not authenticated",
			fmt.Errorf("get addon collection: %w", stremio.ErrNotAuthenticated),
			http.StatusUnauthorized,
		},
		{
			"timeout",
			fmt.Errorf("api login: %w", stremio.ErrTimeout),
			http.StatusGatewayTimeout,
		},
		{
			"connection",
			fmt.Errorf("api login: %w", stremio.ErrConnection),
			http.StatusBadGateway,
		},
		{
			"server error",
			fmt.Errorf("api login: %w", &stremio.ServerError{Status: 503}),
			http.StatusBadGateway,
		},
		{
			"protocol error",
			fmt.Errorf("api login: %w", &stremio.ProtocolError{Message: "response has no result"}),
			http.StatusBadGateway,
		},
		{
			"unclassified",
			errors.New("boom"),
			http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := respondErrorStatus(tt.err); got != tt.want {
				t.Errorf("respondErrorStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}
