package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/linkpro/linkpro/internal/app/model"
	"github.com/linkpro/linkpro/internal/app/repository"
	"github.com/linkpro/linkpro/internal/app/service"
	"go.uber.org/zap"
)

// ProfileDeps groups dependencies required by public profile handlers.
type ProfileDeps struct {
	Logger *zap.Logger
	Users  repository.UserRepository
	Links  *service.LinkService
}

// ProfileHandler implements the public discovery endpoints: user search,
// profile pages and the platform catalog.
type ProfileHandler struct {
	logger *zap.Logger
	users  repository.UserRepository
	links  *service.LinkService
}

// NewProfileHandler creates a profile handler with the provided dependencies.
func NewProfileHandler(deps ProfileDeps) *ProfileHandler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfileHandler{
		logger: logger,
		users:  deps.Users,
		links:  deps.Links,
	}
}

// Register wires profile routes onto the provided router.
func (h *ProfileHandler) Register(router fiber.Router) {
	router.Get("/api/search", h.Search)
	router.Get("/api/profiles/:username", h.Profile)
	router.Get("/api/platforms", h.Platforms)
}

type searchResult struct {
	User  publicUserResponse `json:"user"`
	Links []linkResponse     `json:"links"`
}

// Search handles GET /api/search?q=. Matching is a case-insensitive
// substring test against name and username; an empty query returns no
// results rather than everybody. Each hit carries the user's links so the
// result cards can render without extra round trips.
func (h *ProfileHandler) Search(c *fiber.Ctx) error {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		return c.JSON(fiber.Map{"results": []searchResult{}})
	}

	users, err := h.users.Search(c.UserContext(), query)
	if err != nil {
		return writeError(c, h.logger, err)
	}

	results := make([]searchResult, 0, len(users))
	for i := range users {
		links, err := h.links.ListByOwner(c.UserContext(), users[i].ID)
		if err != nil {
			return writeError(c, h.logger, err)
		}
		results = append(results, searchResult{
			User:  newPublicUserResponse(&users[i]),
			Links: newLinkResponses(links),
		})
	}
	return c.JSON(fiber.Map{"results": results})
}

// Profile handles GET /api/profiles/:username, the public link-in-bio page.
func (h *ProfileHandler) Profile(c *fiber.Ctx) error {
	username := c.Params("username")

	user, err := h.users.GetByUsername(c.UserContext(), username)
	if err != nil {
		return writeError(c, h.logger, err)
	}

	links, err := h.links.ListByOwner(c.UserContext(), user.ID)
	if err != nil {
		return writeError(c, h.logger, err)
	}

	return c.JSON(fiber.Map{
		"user":  newPublicUserResponse(user),
		"links": newLinkResponses(links),
	})
}

// Platforms handles GET /api/platforms and returns the supported catalog.
func (h *ProfileHandler) Platforms(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"platforms": model.Platforms})
}
