package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// ContextKeyRequestID is the echo context key under which the request id is stored.
const ContextKeyRequestID = "request_id"

// HeaderRequestID is the inbound/outbound correlation header.
const HeaderRequestID = "X-Request-ID"

// RequestID assigns each request a correlation id. An id supplied by the
// caller in X-Request-ID is honored so ids survive hops through the gateway.
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rid := c.Request().Header.Get(HeaderRequestID)
			if rid == "" {
				rid = uuid.NewString()
			}
			c.Set(ContextKeyRequestID, rid)
			c.Response().Header().Set(HeaderRequestID, rid)
			return next(c)
		}
	}
}
