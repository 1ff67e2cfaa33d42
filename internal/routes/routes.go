package routes

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/savora-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/savora-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/savora-backend/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

type Handlers struct {
	Auth         *handlers.AuthHandler
	Health       *handlers.HealthHandler
	Categories   *handlers.CategoryHandler
	Recipes      *handlers.RecipeHandler
	Interactions *handlers.InteractionHandler
	Profiles     *handlers.ProfileHandler
}

// Options tunes the rate limits; zero values use the defaults.
type Options struct {
	APIRequestsPerMinute  int
	AuthRequestsPerMinute int
}

func Setup(app *fiber.App, cfg *config.Config, h Handlers, opts Options) {
	if opts.APIRequestsPerMinute == 0 {
		opts.APIRequestsPerMinute = 60
	}
	if opts.AuthRequestsPerMinute == 0 {
		opts.AuthRequestsPerMinute = 10
	}

	protected := middleware.JWTProtected(cfg)
	optional := middleware.OptionalIdentity(cfg)

	api := app.Group("/api")

	// General API rate limiter, per IP
	api.Use(perIPLimiter(opts.APIRequestsPerMinute))

	api.Get("/health", h.Health.Check)
	api.Get("/categories", h.Categories.List)

	// Auth: stricter limit
	auth := api.Group("/auth")
	auth.Use(perIPLimiter(opts.AuthRequestsPerMinute))
	auth.Post("/register", h.Auth.Register)
	auth.Post("/login", h.Auth.Login)
	auth.Post("/refresh", h.Auth.Refresh)
	auth.Post("/logout", protected, h.Auth.Logout)

	// Recipes
	api.Get("/recipes", optional, h.Recipes.List)
	api.Get("/recipes/:id", optional, h.Recipes.Get)
	api.Post("/recipes", protected, h.Recipes.Create)
	api.Put("/recipes/:id", protected, h.Recipes.Update)
	api.Delete("/recipes/:id", protected, h.Recipes.Delete)

	// Likes and comments
	api.Get("/recipes/:id/likes", optional, h.Interactions.LikeInfo)
	api.Post("/recipes/:id/like", protected, h.Interactions.ToggleLike)
	api.Get("/recipes/:id/comments", optional, h.Interactions.ListComments)
	api.Post("/recipes/:id/comments", protected, h.Interactions.AddComment)
	api.Put("/comments/:id", protected, h.Interactions.UpdateComment)
	api.Delete("/comments/:id", protected, h.Interactions.DeleteComment)

	// Signed-in user
	me := api.Group("/me", protected)
	me.Get("/profile", h.Profiles.Me)
	me.Put("/profile", h.Profiles.UpdateMe)
	me.Get("/recipes", h.Recipes.Mine)
	me.Get("/dashboard", h.Profiles.Dashboard)

	api.Get("/usernames/:username/available", protected, h.Profiles.UsernameAvailable)

	// Public profiles
	api.Get("/profiles/:username", optional, h.Profiles.Page)
	api.Get("/profiles/:username/stats", h.Profiles.Stats)
}

func perIPLimiter(max int) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:               max,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	})
}
