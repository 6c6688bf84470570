package api

import (
	"github.com/gofiber/fiber"
)

// RegisterRoutes wires the control API onto the given fiber app.
func RegisterRoutes(app *fiber.App, h *Handlers) {
	// --- session ---------------------------------------------------------------

	app.Get("/api/status", h.HandleStatus)
	app.Post("/api/session", h.HandleLogin)
	app.Delete("/api/session", h.HandleLogout)
	app.Get("/api/user", h.HandleGetUser)

	// --- addon collection --------------------------------------------------------

	app.Get("/api/addons", h.HandleGetAddons)
	app.Put("/api/addons", h.HandleSetAddons)
	app.Post("/api/addons/toggle", h.HandleToggleAddon)
	app.Post("/api/addons/remove", h.HandleRemoveAddon)

	// --- catalogs ----------------------------------------------------------------

	app.Get("/api/catalogs/:type", h.HandleGetCatalogs)
	app.Get("/api/catalog", h.HandleGetCatalogPage)

	// --- settings ----------------------------------------------------------------

	app.Get("/api/settings", h.HandleGetSettings)
	app.Put("/api/settings", h.HandleUpdateSettings)

	// --- poster cache ------------------------------------------------------------

	app.Get("/api/poster", h.HandlePoster)
	app.Get("/api/cache/stats", h.HandleCacheStats)
	app.Post("/api/cache/clear", h.HandleCacheClear)
}
