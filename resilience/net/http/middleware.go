package http

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	constant "github.com/LerianStudio/lib-resilience/resilience/constants"

	"github.com/LerianStudio/lib-resilience/resilience"
	"github.com/LerianStudio/lib-resilience/resilience/circuitbreaker"
	"github.com/LerianStudio/lib-resilience/resilience/faultinject"
	"github.com/LerianStudio/lib-resilience/resilience/ratelimit"
)

// requestContext builds the operation context, carrying the caller's
// correlation id when the request supplies one.
func requestContext(c *fiber.Ctx) context.Context {
	return resilience.ContextWithCorrelationID(c.UserContext(), c.Get(constant.HeaderCorrelationID))
}

// CircuitBreakerMiddleware guards each route path with its own breaker from
// the registry. Open-circuit rejections render as 503 with diagnostic
// headers; handler errors propagate unchanged after being recorded.
func CircuitBreakerMiddleware(registry *circuitbreaker.Registry, cfg circuitbreaker.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		breaker, err := registry.GetBreaker(c.Path(), cfg)
		if err != nil {
			return err
		}

		_, err = breaker.Execute(requestContext(c), func(_ context.Context) (any, error) {
			return nil, c.Next()
		})

		var openErr *circuitbreaker.OpenError
		if errors.As(err, &openErr) {
			return RespondCircuitOpen(c, openErr)
		}

		return err
	}
}

// RateLimitMiddleware enforces a fixed-window quota per route path. Allowed
// requests carry the quota headers; rejected ones render as 429 and mark the
// scope rate-limited in the manager.
func RateLimitMiddleware(manager *ratelimit.Manager, store ratelimit.QuotaStore, limit int, window time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		scope := c.Path()

		decision, err := store.Allow(requestContext(c), scope, limit, window)
		if err != nil {
			return err
		}

		c.Set(constant.HeaderRateLimitRemaining, strconv.Itoa(decision.Remaining))
		c.Set(constant.HeaderRateLimitReset, strconv.FormatInt(decision.Reset.Unix(), 10))

		if !decision.Allowed {
			state := manager.StateFor(scope)
			state.SetRetryAfterDate(decision.Reset)
			state.RecordFailure()

			rlErr := ratelimit.NewError(state.EffectiveDelay(), decision.Remaining, decision.Reset,
				c.Get(constant.HeaderCorrelationID))

			return RespondRateLimited(c, rlErr)
		}

		manager.RecordSuccess(scope)

		return c.Next()
	}
}

// FaultInjectionMiddleware short-circuits requests while an api-category
// fault is active, so calling layers can exercise their failure handling
// against deterministic errors.
func FaultInjectionMiddleware(registry *faultinject.Registry) fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := registry.Err(requestContext(c), faultinject.CategoryAPI)
		if err == nil {
			return c.Next()
		}

		var faultErr *faultinject.FaultError
		if errors.As(err, &faultErr) {
			return RespondFault(c, faultErr)
		}

		return err
	}
}
