package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/linkpro/linkpro/internal/app/service"
	"github.com/linkpro/linkpro/internal/http/middleware"
	"go.uber.org/zap"
)

// LinkDeps groups dependencies required by link handlers.
type LinkDeps struct {
	Logger   *zap.Logger
	Identity *service.IdentityService
	Links    *service.LinkService
}

// LinkHandler implements the authenticated link management endpoints.
type LinkHandler struct {
	logger   *zap.Logger
	identity *service.IdentityService
	links    *service.LinkService
}

// NewLinkHandler creates a link handler with the provided dependencies.
func NewLinkHandler(deps LinkDeps) *LinkHandler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LinkHandler{
		logger:   logger,
		identity: deps.Identity,
		links:    deps.Links,
	}
}

// Register wires link routes onto the provided router.
func (h *LinkHandler) Register(router fiber.Router) {
	links := router.Group("/api/links", middleware.RequireUser(h.identity))
	{
		links.Get("/", h.ListLinks)
		links.Post("/", h.CreateLink)
		links.Delete("/:id", h.DeleteLink)
	}
}

type createLinkRequest struct {
	Platform    string `json:"platform"`
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// ListLinks handles GET /api/links, ordered by creation time.
func (h *LinkHandler) ListLinks(c *fiber.Ctx) error {
	user := middleware.UserFromCtx(c)

	links, err := h.links.ListByOwner(c.UserContext(), user.ID)
	if err != nil {
		return writeError(c, h.logger, err)
	}

	return c.JSON(fiber.Map{"links": newLinkResponses(links)})
}

// CreateLink handles POST /api/links.
func (h *LinkHandler) CreateLink(c *fiber.Ctx) error {
	user := middleware.UserFromCtx(c)

	var req createLinkRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	link, err := h.links.CreateLink(c.UserContext(), user.ID, req.Platform, req.URL, req.Title, req.Description)
	if err != nil {
		return writeError(c, h.logger, err)
	}

	return c.Status(fiber.StatusCreated).JSON(newLinkResponse(link))
}

// DeleteLink handles DELETE /api/links/:id. Only the owner may delete; the
// link's click history is retained.
func (h *LinkHandler) DeleteLink(c *fiber.Ctx) error {
	user := middleware.UserFromCtx(c)

	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "missing link id",
		})
	}

	if err := h.links.DeleteLink(c.UserContext(), id, user.ID); err != nil {
		return writeError(c, h.logger, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
