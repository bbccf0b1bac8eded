package handler

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/linkpro/linkpro/internal/app/apperrors"
	"github.com/linkpro/linkpro/internal/app/model"
	"github.com/linkpro/linkpro/internal/app/token"
	"go.uber.org/zap"
)

// errorStatus maps domain errors onto HTTP status codes. Every domain error
// carries a safe, user-displayable message.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, apperrors.ErrDuplicateEmail),
		errors.Is(err, apperrors.ErrDuplicateUsername):
		return fiber.StatusConflict
	case errors.Is(err, apperrors.ErrUserNotFound),
		errors.Is(err, apperrors.ErrLinkNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, apperrors.ErrInvalidCredentials),
		errors.Is(err, token.ErrInvalidToken):
		return fiber.StatusUnauthorized
	case errors.Is(err, apperrors.ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, apperrors.ErrStorageUnavailable):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

func writeError(c *fiber.Ctx, logger *zap.Logger, err error) error {
	status := errorStatus(err)
	message := err.Error()
	if status == fiber.StatusInternalServerError {
		logger.Error("unhandled request error",
			zap.String("path", c.Path()),
			zap.Error(err),
		)
		message = "internal server error"
	}
	return c.Status(status).JSON(fiber.Map{"error": message})
}

// userResponse is the authenticated view of a user.
type userResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Theme     string    `json:"theme"`
	CreatedAt time.Time `json:"created_at"`
}

func newUserResponse(u *model.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Name:      u.Name,
		Theme:     u.Theme,
		CreatedAt: u.CreatedAt,
	}
}

// publicUserResponse is the view exposed on public profiles; it omits the
// email address.
type publicUserResponse struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Theme    string `json:"theme"`
}

func newPublicUserResponse(u *model.User) publicUserResponse {
	return publicUserResponse{
		Username: u.Username,
		Name:     u.Name,
		Theme:    u.Theme,
	}
}

type linkResponse struct {
	ID          string    `json:"id"`
	Platform    string    `json:"platform"`
	URL         string    `json:"url"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Clicks      int64     `json:"clicks"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func newLinkResponse(l *model.ProfileLink) linkResponse {
	return linkResponse{
		ID:          l.ID,
		Platform:    l.Platform,
		URL:         l.URL,
		Title:       l.Title,
		Description: l.Description,
		Clicks:      l.Clicks,
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
	}
}

func newLinkResponses(links []model.ProfileLink) []linkResponse {
	out := make([]linkResponse, 0, len(links))
	for i := range links {
		out = append(out, newLinkResponse(&links[i]))
	}
	return out
}
