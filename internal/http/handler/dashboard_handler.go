package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/linkpro/linkpro/internal/app/service"
	"github.com/linkpro/linkpro/internal/http/middleware"
	"go.uber.org/zap"
)

// DashboardDeps groups dependencies required by dashboard handlers.
type DashboardDeps struct {
	Logger   *zap.Logger
	Identity *service.IdentityService
	Hub      *service.RefreshHub
}

// DashboardHandler serves the analytics dashboard backed by per-owner
// refresh schedulers.
type DashboardHandler struct {
	logger   *zap.Logger
	identity *service.IdentityService
	hub      *service.RefreshHub
}

// NewDashboardHandler creates a dashboard handler with the provided dependencies.
func NewDashboardHandler(deps DashboardDeps) *DashboardHandler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardHandler{
		logger:   logger,
		identity: deps.Identity,
		hub:      deps.Hub,
	}
}

// Register wires dashboard routes onto the provided router.
func (h *DashboardHandler) Register(router fiber.Router) {
	dashboard := router.Group("/api/dashboard", middleware.RequireUser(h.identity))
	{
		dashboard.Get("/", h.Summary)
		dashboard.Post("/refresh", h.Refresh)
	}
}

type dashboardResponse struct {
	service.Summary
	RefreshedAt time.Time `json:"refreshed_at"`
}

// Summary handles GET /api/dashboard. Reading keeps the owner's scheduler
// alive; the first read starts it.
func (h *DashboardHandler) Summary(c *fiber.Ctx) error {
	user := middleware.UserFromCtx(c)

	summary, refreshedAt := h.hub.Get(user.ID).Snapshot()
	return c.JSON(dashboardResponse{
		Summary:     summary,
		RefreshedAt: refreshedAt,
	})
}

// Refresh handles POST /api/dashboard/refresh. Triggering while a refresh is
// already pending is harmless: wakes coalesce.
func (h *DashboardHandler) Refresh(c *fiber.Ctx) error {
	user := middleware.UserFromCtx(c)

	h.hub.Get(user.ID).Wake()
	return c.SendStatus(fiber.StatusAccepted)
}
