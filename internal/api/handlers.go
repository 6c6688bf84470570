package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strconv"
	"strings"
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

// Handlers groups the HTTP handlers for the local control API.
type Handlers struct {
	accounts *account.Service
	addons   *addons.Service
	catalogs *catalog.Aggregator
	posters  *posters.Cache
	store    *settings.Store
	log      *zerolog.Logger
}

// NewHandlers creates a new Handlers instance wired to the given dependencies.
func NewHandlers(accounts *account.Service, addonSvc *addons.Service, catalogs *catalog.Aggregator, cache *posters.Cache, store *settings.Store, log *zerolog.Logger) *Handlers {
	return &Handlers{
		accounts: accounts,
		addons:   addonSvc,
		catalogs: catalogs,
		posters:  cache,
		store:    store,
		log:      log,
	}
}

// --- request / response types ------------------------------------------------

type statusResponse struct {
	LoggedIn bool   `json:"loggedIn"`
	Email    string `json:"email,omitempty"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Email string `json:"email"`
}

type collectionPayload struct {
	Addons []stremio.Descriptor `json:"addons"`
}

type toggleRequest struct {
	Index   int  `json:"index"`
	Enabled bool `json:"enabled"`
}

type removeRequest struct {
	Index int `json:"index"`
}

type settingsResponse struct {
	UpdateFrequency string    `json:"updateFrequency"`
	LastUpdate      time.Time `json:"lastUpdate"`
}

type updateSettingsRequest struct {
	UpdateFrequency string `json:"updateFrequency"`
}

// --- session endpoints ---------------------------------------------------------

// HandleStatus handles GET /api/status.
// It reports whether a session exists and for which account.
func (h *Handlers) HandleStatus(c *fiber.Ctx) {
	resp := statusResponse{
		LoggedIn: h.accounts.IsLoggedIn(),
		Email:    h.accounts.StoredEmail(),
	}

	out, _ := json.Marshal(resp)
	c.Set("Content-Type", "application/json")
	c.Send(out)
}

// HandleLogin handles POST /api/session.
// It authenticates against the remote API and persists the session.
func (h *Handlers) HandleLogin(c *fiber.Ctx) {
	var req loginRequest
	if err := json.Unmarshal([]byte(c.Body()), &req); err != nil {
		c.Status(http.StatusBadRequest)
		c.Set("Content-Type", "application/json")
		c.SendString(`{"error":"invalid JSON body"}`)
		return
	}

	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		c.Status(http.StatusBadRequest)
		c.Set("Content-Type", "application/json")
		c.SendString(`{"error":"email and password are required"}`)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	user, err := h.accounts.Login(ctx, req.Email, req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}

	out, _ := json.Marshal(sessionResponse{Email: user.Email})
	c.Set("Content-Type", "application/json")
	c.Send(out)
}

// HandleLogout handles DELETE /api/session.
// The local session is cleared even when the remote call fails.
func (h *Handlers) HandleLogout(c *fiber.Ctx) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := h.accounts.Logout(ctx); err != nil {
		h.respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// HandleGetUser handles GET /api/user.
// It returns the remote account profile, or 204 when no session exists.
func (h *Handlers) HandleGetUser(c *fiber.Ctx) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	user, err := h.accounts.User(ctx)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if user == nil {
		c.Status(http.StatusNoContent)
		return
	}

	out, _ := json.Marshal(user)
	c.Set("Content-Type", "application/json")
	c.Send(out)
}

// --- addon collection endpoints ------------------------------------------------

// HandleGetAddons handles GET /api/addons.
// It returns the account's addon collection as stored upstream.
func (h *Handlers) HandleGetAddons(c *fiber.Ctx) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	col, err := h.addons.Collection(ctx)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if col == nil {
		col = []stremio.Descriptor{}
	}

	out, _ := json.Marshal(collectionPayload{Addons: col})
	c.Set("Content-Type", "application/json")
	c.Send(out)
}

// HandleSetAddons handles PUT /api/addons.
// The body replaces the whole upstream collection.
func (h *Handlers) HandleSetAddons(c *fiber.Ctx) {
	var req collectionPayload
	if err := json.Unmarshal([]byte(c.Body()), &req); err != nil {
		c.Status(http.StatusBadRequest)
		c.Set("Content-Type", "application/json")
		c.SendString(`{"error":"invalid JSON body"}`)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := h.addons.SetCollection(ctx, req.Addons); err != nil {
		h.respondError(c, err)
		return
	}

	c.Set("Content-Type", "application/json")
	c.SendString(`{"success":true}`)
}

// HandleToggleAddon handles POST /api/addons/toggle.
// It fetches the collection, flips one addon's enabled flag and saves.
func (h *Handlers) HandleToggleAddon(c *fiber.Ctx) {
	var req toggleRequest
	if err := json.Unmarshal([]byte(c.Body()), &req); err != nil {
		c.Status(http.StatusBadRequest)
		c.Set("Content-Type", "application/json")
		c.SendString(`{"error":"invalid JSON body"}`)
		return
	}

	h.mutateCollection(c, req.Index, func(col []stremio.Descriptor) []stremio.Descriptor {
		if req.Enabled {
			return addons.Enable(col, req.Index)
		}
		return addons.Disable(col, req.Index)
	})
}

// HandleRemoveAddon handles POST /api/addons/remove.
// It fetches the collection, drops one addon and saves.
func (h *Handlers) HandleRemoveAddon(c *fiber.Ctx) {
	var req removeRequest
	if err := json.Unmarshal([]byte(c.Body()), &req); err != nil {
		c.Status(http.StatusBadRequest)
		c.Set("Content-Type", "application/json")
		c.SendString(`{"error":"invalid JSON body"}`)
		return
	}

	h.mutateCollection(c, req.Index, func(col []stremio.Descriptor) []stremio.Descriptor {
		return addons.Remove(col, req.Index)
	})
}

// mutateCollection runs one fetch-mutate-save cycle and responds with the
// updated collection.
func (h *Handlers) mutateCollection(c *fiber.Ctx, index int, mutate func([]stremio.Descriptor) []stremio.Descriptor) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	col, err := h.addons.Collection(ctx)
	if err != nil {
		h.respondError(c, err)
		return
	}

	if index < 0 || index >= len(col) {
		c.Status(http.StatusBadRequest)
		c.Set("Content-Type", "application/json")
		c.SendString(`{"error":"index out of range"}`)
		return
	}

	col = mutate(col)

	if err := h.addons.SetCollection(ctx, col); err != nil {
		h.respondError(c, err)
		return
	}

	out, _ := json.Marshal(collectionPayload{Addons: col})
	c.Set("Content-Type", "application/json")
	c.Send(out)
}

// --- catalog endpoints -----------------------------------------------------------

// HandleGetCatalogs handles GET /api/catalogs/:type.
// It aggregates the first page of every matching catalog across all
// enabled addons. Failures degrade to missing sections, never to an error.
func (h *Handlers) HandleGetCatalogs(c *fiber.Ctx) {
	contentType := c.Params("type")

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	sections := h.catalogs.FetchAllForType(ctx, contentType)
	if sections == nil {
		sections = []catalog.Section{}
	}

	out, _ := json.Marshal(sections)
	c.Set("Content-Type", "application/json")
	c.Send(out)
}

// HandleGetCatalogPage handles GET /api/catalog.
// It fetches a single catalog page, skipping the given number of items.
func (h *Handlers) HandleGetCatalogPage(c *fiber.Ctx) {
	transportURL := c.Query("transportUrl")
	contentType := c.Query("type")
	id := c.Query("id")

	if transportURL == "" || contentType == "" || id == "" {
		c.Status(http.StatusBadRequest)
		c.Set("Content-Type", "application/json")
		c.SendString(`{"error":"transportUrl, type and id are required"}`)
		return
	}

	skip := 0
	if v := c.Query("skip"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			c.Status(http.StatusBadRequest)
			c.Set("Content-Type", "application/json")
			c.SendString(`{"error":"skip must be a non-negative integer"}`)
			return
		}
		skip = n
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	ref := catalog.Ref{
		TransportURL: transportURL,
		CatalogType:  contentType,
		CatalogID:    id,
	}
	metas := h.catalogs.FetchCatalog(ctx, ref, skip)
	if metas == nil {
		metas = []stremio.MetaPreview{}
	}

	out, _ := json.Marshal(map[string]interface{}{"metas": metas})
	c.Set("Content-Type", "application/json")
	c.Send(out)
}

// --- settings endpoints ----------------------------------------------------------

// HandleGetSettings handles GET /api/settings.
func (h *Handlers) HandleGetSettings(c *fiber.Ctx) {
	resp := settingsResponse{
		UpdateFrequency: string(h.store.UpdateFrequency()),
		LastUpdate:      h.store.LastUpdate(),
	}

	out, _ := json.Marshal(resp)
	c.Set("Content-Type", "application/json")
	c.Send(out)
}

// HandleUpdateSettings handles PUT /api/settings.
func (h *Handlers) HandleUpdateSettings(c *fiber.Ctx) {
	var req updateSettingsRequest
	if err := json.Unmarshal([]byte(c.Body()), &req); err != nil {
		c.Status(http.StatusBadRequest)
		c.Set("Content-Type", "application/json")
		c.SendString(`{"error":"invalid JSON body"}`)
		return
	}

	freq := settings.Frequency(req.UpdateFrequency)
	switch freq {
	case settings.FreqNever, settings.FreqDay, settings.FreqWeek, settings.FreqMonth:
	default:
		c.Status(http.StatusBadRequest)
		c.Set("Content-Type", "application/json")
		c.SendString(`{"error":"updateFrequency must be one of: never, day, week, month"}`)
		return
	}

	if err := h.store.SetUpdateFrequency(freq); err != nil {
		h.respondError(c, err)
		return
	}

	h.HandleGetSettings(c)
}

// --- poster cache endpoints --------------------------------------------------------

// HandlePoster handles GET /api/poster.
// It serves the cached image for ?url=, downloading it on a miss.
func (h *Handlers) HandlePoster(c *fiber.Ctx) {
	url := c.Query("url")
	if url == "" {
		c.Status(http.StatusBadRequest)
		c.Set("Content-Type", "application/json")
		c.SendString(`{"error":"url is required"}`)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	path, err := h.posters.Fetch(ctx, url)
	if err != nil {
		h.respondError(c, err)
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.Set("Content-Type", "image/jpeg")
	c.Send(data)
}

// HandleCacheStats handles GET /api/cache/stats.
func (h *Handlers) HandleCacheStats(c *fiber.Ctx) {
	stats, err := h.posters.Stats()
	if err != nil {
		h.respondError(c, err)
		return
	}

	out, _ := json.Marshal(stats)
	c.Set("Content-Type", "application/json")
	c.Send(out)
}

// HandleCacheClear handles POST /api/cache/clear.
func (h *Handlers) HandleCacheClear(c *fiber.Ctx) {
	removed, err := h.posters.Clear()
	if err != nil {
		h.respondError(c, err)
		return
	}

	out, _ := json.Marshal(map[string]interface{}{"removed": removed})
	c.Set("Content-Type", "application/json")
	c.Send(out)
}

// --- helpers -----------------------------------------------------------------

// respondErrorStatus maps an error from the core services onto an HTTP
// status code.
func respondErrorStatus(err error) int {
	var authErr *stremio.AuthError
	var srvErr *stremio.ServerError
	var protoErr *stremio.ProtocolError

	switch {
	case errors.As(err, &authErr):
		return http.StatusUnauthorized
	case errors.Is(err, stremio.ErrNotAuthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, stremio.ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, stremio.ErrConnection):
		return http.StatusBadGateway
	case errors.As(err, &srvErr), errors.As(err, &protoErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the JSON error body for err with its mapped status.
func (h *Handlers) respondError(c *fiber.Ctx, err error) {
	status := respondErrorStatus(err)

	body := map[string]string{"error": err.Error()}
	var authErr *stremio.AuthError
	if errors.As(err, &authErr) {
		body["reason"] = string(authErr.Reason)
	}

	if status >= http.StatusInternalServerError {
		h.log.Error().Err(err).Int("status", status).Msg("request failed")
	}

	out, _ := json.Marshal(body)
	c.Status(status)
	c.Set("Content-Type", "application/json")
	c.Send(out)
}
