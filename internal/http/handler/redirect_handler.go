package handler

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/linkpro/linkpro/internal/app/apperrors"
	"github.com/linkpro/linkpro/internal/app/model"
	"github.com/linkpro/linkpro/internal/app/repository"
	"github.com/linkpro/linkpro/internal/app/service"
	"github.com/linkpro/linkpro/internal/app/token"
	"github.com/linkpro/linkpro/internal/http/view"
	"go.uber.org/zap"
)

// RedirectDeps groups dependencies required by the public visit flow.
type RedirectDeps struct {
	Logger           *zap.Logger
	Users            repository.UserRepository
	Links            *service.LinkService
	Tokens           *token.RedirectSigner
	CountdownSeconds int
}

// RedirectHandler implements the public countdown and visit endpoints.
type RedirectHandler struct {
	logger           *zap.Logger
	users            repository.UserRepository
	links            *service.LinkService
	tokens           *token.RedirectSigner
	countdownSeconds int
}

// NewRedirectHandler creates a redirect handler with the provided dependencies.
func NewRedirectHandler(deps RedirectDeps) *RedirectHandler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	countdown := deps.CountdownSeconds
	if countdown <= 0 {
		countdown = 3
	}
	return &RedirectHandler{
		logger:           logger,
		users:            deps.Users,
		links:            deps.Links,
		tokens:           deps.Tokens,
		countdownSeconds: countdown,
	}
}

// Register wires visit routes onto the provided router.
func (h *RedirectHandler) Register(router fiber.Router) {
	router.Get("/health", h.Health)
	router.Get("/u/:username/:platform", h.Countdown)
	router.Get("/u/:username/:platform/_go/:token", h.Go)
}

// Health is a simple endpoint so we know the service is running.
func (h *RedirectHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"service": "linkpro",
		"status":  "ok",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

// Countdown handles GET /u/:username/:platform and renders the interstitial
// page. The visit is not counted until the final hop.
func (h *RedirectHandler) Countdown(c *fiber.Ctx) error {
	username := c.Params("username")
	platform := c.Params("platform")

	link, loadErr := h.loadLink(c, username, platform)
	if loadErr != nil {
		return c.Status(loadErr.StatusCode).JSON(fiber.Map{
			"error": loadErr.Message,
		})
	}

	tok, err := h.tokens.Issue(link.ID)
	if err != nil {
		h.logger.Error("failed to issue redirect token", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to prepare redirect",
		})
	}

	var icon string
	if p, ok := model.PlatformByName(link.Platform); ok {
		icon = p.Icon
	}

	continueURL := fmt.Sprintf("/u/%s/%s/_go/%s", username, platform, tok)
	html, err := view.RenderRedirectPage(view.RedirectPageData{
		Title:            "Continue to " + link.Platform,
		Username:         username,
		Platform:         link.Platform,
		PlatformIcon:     icon,
		LinkTitle:        link.Title,
		TargetURL:        link.URL,
		ContinueURL:      continueURL,
		CountdownSeconds: h.countdownSeconds,
	})
	if err != nil {
		h.logger.Error("failed to render redirect page", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to render page",
		})
	}

	return c.
		Type("html", "utf-8").
		SendString(html)
}

// Go handles the final hop: it verifies the token, records the visit and
// issues the redirect. The counter increment and click log entry are
// persisted together before the redirect leaves.
func (h *RedirectHandler) Go(c *fiber.Ctx) error {
	username := c.Params("username")
	platform := c.Params("platform")
	tok := c.Params("token")

	link, loadErr := h.loadLink(c, username, platform)
	if loadErr != nil {
		return c.Status(loadErr.StatusCode).JSON(fiber.Map{
			"error": loadErr.Message,
		})
	}

	if err := h.tokens.Validate(link.ID, tok); err != nil {
		if errors.Is(err, token.ErrInvalidToken) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		h.logger.Error("failed to validate redirect token", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to validate token",
		})
	}

	updated, err := h.links.RecordVisit(c.UserContext(), link.ID, c.Get("User-Agent"), c.Get("Referer"))
	if err != nil {
		return writeError(c, h.logger, err)
	}

	h.logger.Debug("visit recorded",
		zap.String("link_id", updated.ID),
		zap.String("platform", updated.Platform),
		zap.Int64("clicks", updated.Clicks),
	)
	return c.Redirect(updated.URL, fiber.StatusFound)
}

type linkLoadError struct {
	StatusCode int
	Message    string
}

func (h *RedirectHandler) loadLink(c *fiber.Ctx, username, platform string) (*model.ProfileLink, *linkLoadError) {
	if username == "" || platform == "" {
		return nil, &linkLoadError{
			StatusCode: fiber.StatusBadRequest,
			Message:    "missing username or platform",
		}
	}

	ctx := c.UserContext()

	user, err := h.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, &linkLoadError{
				StatusCode: fiber.StatusNotFound,
				Message:    "profile not found",
			}
		}
		h.logger.Error("failed to load profile", zap.Error(err), zap.String("username", username))
		return nil, &linkLoadError{
			StatusCode: fiber.StatusInternalServerError,
			Message:    "internal server error",
		}
	}

	link, err := h.links.GetByOwnerAndPlatform(ctx, user.ID, platform)
	if err != nil {
		status := errorStatus(err)
		if status == fiber.StatusNotFound {
			return nil, &linkLoadError{
				StatusCode: fiber.StatusNotFound,
				Message:    "link not found",
			}
		}
		h.logger.Error("failed to load link", zap.Error(err), zap.String("platform", platform))
		return nil, &linkLoadError{
			StatusCode: fiber.StatusInternalServerError,
			Message:    "internal server error",
		}
	}

	return link, nil
}
