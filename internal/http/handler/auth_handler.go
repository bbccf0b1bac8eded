package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/linkpro/linkpro/internal/app/service"
	"github.com/linkpro/linkpro/internal/http/middleware"
	"go.uber.org/zap"
)

// AuthDeps groups dependencies required by auth handlers.
type AuthDeps struct {
	Logger   *zap.Logger
	Identity *service.IdentityService
	Sessions *service.SessionController
}

// AuthHandler implements registration, login and session endpoints.
type AuthHandler struct {
	logger   *zap.Logger
	identity *service.IdentityService
	sessions *service.SessionController
}

// NewAuthHandler creates an auth handler with the provided dependencies.
func NewAuthHandler(deps AuthDeps) *AuthHandler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{
		logger:   logger,
		identity: deps.Identity,
		sessions: deps.Sessions,
	}
}

// Register wires auth routes onto the provided router.
func (h *AuthHandler) Register(router fiber.Router) {
	auth := router.Group("/api/auth")
	{
		auth.Post("/register", h.Signup)
		auth.Post("/login", h.Login)
		auth.Post("/logout", h.Logout)
		auth.Get("/session", h.Session)
	}

	me := router.Group("/api/me", middleware.RequireUser(h.identity))
	{
		me.Patch("/theme", h.UpdateTheme)
	}
}

type signupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	State string        `json:"state"`
	User  *userResponse `json:"user,omitempty"`
	Token string        `json:"token,omitempty"`
}

// Signup handles POST /api/auth/register and signs the new user in.
func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var req signupRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	user, tok, err := h.sessions.Signup(c.UserContext(), req.Username, req.Email, req.Name, req.Password)
	if err != nil {
		return writeError(c, h.logger, err)
	}

	resp := newUserResponse(user)
	return c.Status(fiber.StatusCreated).JSON(sessionResponse{
		State: service.SessionAuthenticated.String(),
		User:  &resp,
		Token: tok,
	})
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	user, tok, err := h.sessions.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return writeError(c, h.logger, err)
	}

	resp := newUserResponse(user)
	return c.JSON(sessionResponse{
		State: service.SessionAuthenticated.String(),
		User:  &resp,
		Token: tok,
	})
}

// Logout handles POST /api/auth/logout. Logging out while anonymous is fine.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if err := h.sessions.Logout(c.UserContext()); err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(sessionResponse{State: service.SessionAnonymous.String()})
}

// Session handles GET /api/auth/session and reports the current session.
func (h *AuthHandler) Session(c *fiber.Ctx) error {
	state, user := h.sessions.Current()
	resp := sessionResponse{State: state.String()}
	if user != nil {
		u := newUserResponse(user)
		resp.User = &u
	}
	return c.JSON(resp)
}

type themeRequest struct {
	Theme string `json:"theme"`
}

// UpdateTheme handles PATCH /api/me/theme.
func (h *AuthHandler) UpdateTheme(c *fiber.Ctx) error {
	user := middleware.UserFromCtx(c)

	var req themeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	updated, err := h.identity.UpdateTheme(c.UserContext(), user.ID, req.Theme)
	if err != nil {
		return writeError(c, h.logger, err)
	}

	// Keep the controller's cached user in sync with the new theme.
	if _, err := h.sessions.RefreshUser(c.UserContext()); err != nil {
		h.logger.Warn("failed to refresh session user after theme change", zap.Error(err))
	}

	return c.JSON(newUserResponse(updated))
}
