package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/Ki11erRabbit/jwt-pizza-service/internal/errs"
	"github.com/Ki11erRabbit/jwt-pizza-service/internal/factory"
	"github.com/Ki11erRabbit/jwt-pizza-service/internal/http/middleware"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
	// ReportURL points at the factory's report when fulfilment failed.
	ReportURL string `json:"reportUrl,omitempty"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// requestIDFromCtx extracts request_id previously stored by middleware.RequestID.
func requestIDFromCtx(c *fiber.Ctx) string {
	if s, ok := c.Locals(middleware.RequestIDLocalKey).(string); ok {
		return s
	}
	return ""
}

// writeError writes a standardized JSON error response. message must be
// safe to show to clients.
func writeError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(errorPayload{
		RequestID: requestIDFromCtx(c),
		Error:     errorEnvelope{Code: code, Message: message},
	})
}

// ErrorHandler returns a Fiber global error handler that standardizes error
// responses. Classified errors keep their code and message, everything
// else becomes an opaque internal error.
func ErrorHandler(log zerolog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			switch fe.Code {
			case fiber.StatusBadRequest:
				return writeError(c, fe.Code, errs.CodeBadRequest, "bad request")
			case fiber.StatusNotFound:
				return writeError(c, fe.Code, errs.CodeNotFound, "unknown endpoint")
			case fiber.StatusMethodNotAllowed:
				return writeError(c, fe.Code, "METHOD_NOT_ALLOWED", "method not allowed")
			case fiber.StatusRequestEntityTooLarge:
				return writeError(c, fe.Code, "PAYLOAD_TOO_LARGE", "payload too large")
			}
			if fe.Code < fiber.StatusInternalServerError {
				return writeError(c, fe.Code, errs.CodeBadRequest, fe.Message)
			}
		}

		var appErr *errs.Error
		if errors.As(err, &appErr) {
			status := errs.StatusOf(appErr)
			if status >= fiber.StatusInternalServerError {
				log.Error().Err(err).Str("request_id", requestIDFromCtx(c)).Str("path", c.Path()).Msg("request failed")
			}
			payload := errorPayload{
				RequestID: requestIDFromCtx(c),
				Error:     errorEnvelope{Code: appErr.Code, Message: appErr.Message},
			}
			var factoryErr *factory.Error
			if errors.As(err, &factoryErr) {
				payload.ReportURL = factoryErr.ReportURL
			}
			return c.Status(status).JSON(payload)
		}

		log.Error().Err(err).Str("request_id", requestIDFromCtx(c)).Str("path", c.Path()).Msg("unhandled error")
		return writeError(c, fiber.StatusInternalServerError, errs.CodeInternal, "internal server error")
	}
}
