package router

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	jwtware "github.com/gofiber/jwt/v2"
	"github.com/rs/zerolog"

	"github.com/wichananm65/eco-marketplace/internal/auth"
	"github.com/wichananm65/eco-marketplace/internal/interface/http/handler"
)

// Handlers are the protected route groups mounted behind JWT auth.
type Handlers struct {
	Cart     *handler.CartHandler
	Checkout *handler.CheckoutHandler
	Order    *handler.OrderHandler
}

// New builds the fiber app: CORS, request logging, a public health check and
// the JWT protected buyer API.
func New(jwtSecret string, log zerolog.Logger, h Handlers) *fiber.App {
	app := fiber.New(fiber.Config{AppName: "eco-marketplace"})
	setupCORS(app)
	app.Use(requestLogger(log))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	app.Use(jwtware.New(jwtware.Config{
		SigningKey: []byte(jwtSecret),
		ContextKey: auth.ContextKey,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Debug().Err(err).Str("path", c.Path()).Msg("jwt rejected")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized", "code": "UNAUTHORIZED"})
		},
	}))

	h.Cart.RegisterProtectedRoutes(app)
	h.Checkout.RegisterProtectedRoutes(app)
	h.Order.RegisterProtectedRoutes(app)
	return app
}

func setupCORS(app *fiber.App) {
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
}

func requestLogger(log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		log.Info().
			Str("method", c.Method()).
			Str("url", c.OriginalURL()).
			Int("status", c.Response().StatusCode()).
			Dur("latency", time.Since(start)).
			Msg("request")
		return err
	}
}
