package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
)

func Logger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start_time := time.Now()

		request_attrs := []slog.Attr{
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.String("ip", c.IP()),
		}

		err := c.Next()

		response_time := time.Since(start_time)
		status_code := c.Response().StatusCode()

		response_attrs := []slog.Attr{
			slog.Int("status_code", status_code),
			slog.Duration("response_time", response_time),
		}

		all_attrs := append(request_attrs, response_attrs...)

		if err != nil {
			slog.LogAttrs(context.Background(), slog.LevelError, "Request error", all_attrs...)
		} else {
			slog.LogAttrs(context.Background(), slog.LevelInfo, "Request processed", all_attrs...)
		}

		return err
	}
}
