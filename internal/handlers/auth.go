package handlers

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"kanban/internal/config"
	"kanban/internal/mail"
	"kanban/internal/platform/session"
)

const (
	refreshCookieName = "refresh_token"
	refreshCookiePath = "/auth/refresh"
)

// TokenResponse is the login/refresh response body. The refresh token
// travels only in the scoped cookie, never in the body.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func setRefreshCookie(c *fiber.Ctx, cfg *config.Config, token string, expires time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     refreshCookieName,
		Value:    token,
		Path:     refreshCookiePath,
		Domain:   cfg.CookieDomain,
		Expires:  expires,
		Secure:   cfg.CookieSecure,
		HTTPOnly: true,
		SameSite: cfg.CookieSameSite,
	})
}

func clearRefreshCookie(c *fiber.Ctx, cfg *config.Config) {
	c.Cookie(&fiber.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     refreshCookiePath,
		Domain:   cfg.CookieDomain,
		Expires:  time.Now().Add(-time.Hour),
		Secure:   cfg.CookieSecure,
		HTTPOnly: true,
		SameSite: cfg.CookieSameSite,
	})
}

// clientOrigin keys the lockout guard. Only the socket peer address is
// used; forwarded-for headers can be rotated freely by the caller and
// must not split lockout entries.
func clientOrigin(c *fiber.Ctx) string {
	return c.IP()
}

func Register(c *fiber.Ctx) error {
	cfg := c.Locals("config").(*config.Config)
	sessions := c.Locals("sessions").(*session.Service)

	type RegisterInput struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	var input RegisterInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid input"})
	}

	err := config.Validate.Struct(input)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	user, err := sessions.Register(input.Email, input.Password)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrPolicyViolation):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Password does not meet the minimum policy"})
		case errors.Is(err, session.ErrEmailTaken):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": "Email already registered"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	if cfg.HasMailer() {
		message := mail.Email{
			Subject: "Welcome to Kanban",
			Body:    "Your account has been created. You can sign in now.",
			From:    fmt.Sprintf("Kanban <no-reply@%s>", cfg.MailgunDomain),
			To:      []string{user.Email},
		}

		mailer := mail.NewMailer(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunAPIBase)
		if err := mailer.SendMail(&message); err != nil {
			log.Warnf("failed to send registration email: %v", err)
		}
	}

	return c.JSON(fiber.Map{
		"id":          user.ID,
		"email":       user.Email,
		"is_verified": user.IsVerified,
	})
}

func Login(c *fiber.Ctx) error {
	cfg := c.Locals("config").(*config.Config)
	sessions := c.Locals("sessions").(*session.Service)

	type LoginInput struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	var input LoginInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid input"})
	}

	err := config.Validate.Struct(input)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	_, tokens, err := sessions.Login(input.Email, input.Password, clientOrigin(c))
	if err != nil {
		var locked *session.LockedError
		switch {
		case errors.As(err, &locked):
			return c.Status(fiber.StatusLocked).JSON(fiber.Map{
				"message":      "Temporarily locked due to failed login attempts",
				"locked_until": locked.Until,
			})
		case errors.Is(err, session.ErrInvalidCredentials):
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid credentials"})
		case errors.Is(err, session.ErrInactiveUser):
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "Inactive user"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	setRefreshCookie(c, cfg, tokens.RefreshToken, tokens.RefreshExpiresAt)

	return c.JSON(TokenResponse{
		AccessToken: tokens.AccessToken,
		TokenType:   "bearer",
	})
}

func RefreshToken(c *fiber.Ctx) error {
	cfg := c.Locals("config").(*config.Config)
	sessions := c.Locals("sessions").(*session.Service)

	tokens, err := sessions.Refresh(c.Cookies(refreshCookieName))
	if err != nil {
		switch {
		case errors.Is(err, session.ErrMissingToken), errors.Is(err, session.ErrInvalidToken):
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid refresh token"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	setRefreshCookie(c, cfg, tokens.RefreshToken, tokens.RefreshExpiresAt)

	return c.JSON(TokenResponse{
		AccessToken: tokens.AccessToken,
		TokenType:   "bearer",
	})
}

func Logout(c *fiber.Ctx) error {
	cfg := c.Locals("config").(*config.Config)
	sessions := c.Locals("sessions").(*session.Service)

	sessions.Logout(c.Cookies(refreshCookieName))
	clearRefreshCookie(c, cfg)

	return c.SendStatus(fiber.StatusNoContent)
}
