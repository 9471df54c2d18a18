package api

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"

	"github.com/insightdelivered/statement-extractor/internal/logger"
)

// RequestLogger logs one line per request and puts log into the request's
// user context so the pipeline logs through it.
func RequestLogger(log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		c.SetUserContext(logger.WithContext(c.UserContext(), log))

		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status = statusOf(err)
		}
		log.Info().
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("duration", time.Since(start)).
			Str("remote_addr", c.IP()).
			Msg("HTTP request")
		return err
	}
}

// Recovery turns a panic in a handler into an error for ErrorHandler and
// logs the panic value.
func Recovery(log zerolog.Logger) fiber.Handler {
	return recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c *fiber.Ctx, e interface{}) {
			log.Error().
				Interface("error", e).
				Str("method", c.Method()).
				Str("path", c.Path()).
				Msg("Panic recovered")
		},
	})
}

// CORS allows browser clients on other origins.
func CORS() fiber.Handler {
	return cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Content-Type",
		MaxAge:       3600,
	})
}

// ErrorHandler renders every error as {"success":false,"error":...}.
// Errors that are not *fiber.Error never leak their text.
func ErrorHandler(c *fiber.Ctx, err error) error {
	msg := "Internal server error"
	var fe *fiber.Error
	if errors.As(err, &fe) {
		msg = fe.Message
	}
	return c.Status(statusOf(err)).JSON(ErrorResponse{Success: false, Error: msg})
}

func statusOf(err error) int {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return fiber.StatusInternalServerError
}
