package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/LerianStudio/lib-resilience/resilience"
	"github.com/LerianStudio/lib-resilience/resilience/circuitbreaker"
	"github.com/LerianStudio/lib-resilience/resilience/faultinject"
	"github.com/LerianStudio/lib-resilience/resilience/ratelimit"
)

// RespondCircuitOpen writes a 503 with the breaker diagnostic headers and
// the structured OpenError body.
func RespondCircuitOpen(c *fiber.Ctx, openErr *circuitbreaker.OpenError) error {
	return respondCoded(c, fiber.StatusServiceUnavailable, openErr)
}

// RespondRateLimited writes a 429 with Retry-After and quota headers and the
// structured rate-limit error body.
func RespondRateLimited(c *fiber.Ctx, rlErr *ratelimit.Error) error {
	return respondCoded(c, fiber.StatusTooManyRequests, rlErr)
}

// RespondFault writes an injected fault using the status the fault simulates.
func RespondFault(c *fiber.Ctx, faultErr *faultinject.FaultError) error {
	return respondCoded(c, faultStatus(faultErr), faultErr)
}

func respondCoded(c *fiber.Ctx, status int, err resilience.Coded) error {
	for key, value := range err.Headers() {
		c.Set(key, value)
	}

	return c.Status(status).JSON(err)
}

// faultStatus maps a fault kind to the HTTP status it simulates. The status
// param of an http-error fault wins when present.
func faultStatus(faultErr *faultinject.FaultError) int {
	switch faultinject.Kind(faultErr.Kind) {
	case faultinject.KindTimeout:
		return fiber.StatusGatewayTimeout
	case faultinject.KindRateLimitExceeded:
		return fiber.StatusTooManyRequests
	case faultinject.KindHTTPError:
		if status, ok := faultErr.Params["status"].(int); ok && status >= 100 {
			return status
		}

		return fiber.StatusInternalServerError
	default:
		return fiber.StatusServiceUnavailable
	}
}
