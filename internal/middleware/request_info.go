package middleware

import (
	"net"
	"strings"

	"github.com/gofiber/fiber/v2"
)

const ClientIPContextKey = "client_ip"

// RequestInfo resolves the caller's IP once per request. When proxyHeader is set
// (e.g. CF-Connecting-IP behind Cloudflare) its first valid address wins.
func RequestInfo(proxyHeader string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ip := c.IP()
		if proxyHeader != "" {
			raw := strings.TrimSpace(strings.Split(c.Get(proxyHeader), ",")[0])
			if net.ParseIP(raw) != nil {
				ip = raw
			}
		}
		c.Locals(ClientIPContextKey, ip)
		return c.Next()
	}
}

func ClientIP(c *fiber.Ctx) string {
	if ip, ok := c.Locals(ClientIPContextKey).(string); ok && ip != "" {
		return ip
	}
	return c.IP()
}
