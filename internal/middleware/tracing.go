package middleware

import (
	"fmt"

	"communityhub/internal/observability"

	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// TracingMiddleware adds OpenTelemetry tracing to requests
func TracingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := otel.GetTextMapPropagator().Extract(c.UserContext(), propagation.HeaderCarrier(c.GetReqHeaders()))

		span, ctx := observability.NewSpan(ctx, fmt.Sprintf("%s %s", c.Method(), c.Path()),
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", c.Method()),
				attribute.String("http.path", c.Path()),
				attribute.String("http.ip", c.IP()),
				attribute.String("http.user_agent", c.Get("User-Agent")),
			),
		)
		defer span.End()

		c.Locals("traceID", span.TraceID())
		if requestID, ok := c.Locals("requestid").(string); ok {
			span.AddAttributes(attribute.String("request.id", requestID))
		}
		c.Set("X-Trace-ID", span.TraceID())
		c.SetUserContext(ctx)

		err := c.Next()

		// Route is only resolved once the handler chain has matched.
		span.AddAttributes(
			attribute.String("http.route", c.Route().Path),
			attribute.Int("http.status_code", c.Response().StatusCode()),
		)
		if err != nil {
			span.SetError(err)
		}
		if userID, ok := c.Locals("userID").(string); ok {
			span.AddAttributes(attribute.String("user.id", userID))
		}

		return err
	}
}
