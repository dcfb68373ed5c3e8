package handlers

import (
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

const flashCookie = "flash"

// Flash is a one-shot message shown on the next rendered page.
type Flash struct {
	Level   string
	Message string
}

func setFlash(c *fiber.Ctx, level, message string) {
	if message == "" {
		return
	}
	c.Cookie(&fiber.Cookie{
		Name:     flashCookie,
		Value:    url.QueryEscape(level + "|" + message),
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// popFlash reads the pending message and expires the cookie.
func popFlash(c *fiber.Ctx) *Flash {
	raw := c.Cookies(flashCookie)
	if raw == "" {
		return nil
	}
	c.Cookie(&fiber.Cookie{
		Name:    flashCookie,
		Value:   "",
		Path:    "/",
		Expires: time.Unix(0, 0),
	})

	v, err := url.QueryUnescape(raw)
	if err != nil {
		return nil
	}
	level, message, ok := strings.Cut(v, "|")
	if !ok {
		return nil
	}
	return &Flash{Level: level, Message: message}
}
