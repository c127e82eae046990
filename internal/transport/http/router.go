package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"

	"github.com/ashif1996/recipe-nest/internal/application/category"
	"github.com/ashif1996/recipe-nest/internal/application/contact"
	"github.com/ashif1996/recipe-nest/internal/application/otp"
	"github.com/ashif1996/recipe-nest/internal/application/recipe"
	"github.com/ashif1996/recipe-nest/internal/application/user"
	"github.com/ashif1996/recipe-nest/internal/config"
	"github.com/ashif1996/recipe-nest/internal/infrastructure/dynamo"
	jwtinfra "github.com/ashif1996/recipe-nest/internal/infrastructure/jwt"
	"github.com/ashif1996/recipe-nest/internal/infrastructure/mail"
	s3infra "github.com/ashif1996/recipe-nest/internal/infrastructure/s3"
	"github.com/ashif1996/recipe-nest/internal/transport/http/handler"
	appmiddleware "github.com/ashif1996/recipe-nest/internal/transport/http/middleware"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	UserRepo     *dynamo.UserRepo
	RecipeRepo   *dynamo.RecipeRepo
	CategoryRepo *dynamo.CategoryRepo
	OTPRepo      *dynamo.OTPRepo
	S3Store      *s3infra.Store
	Mailer       mail.Mailer
	JWTProvider  *jwtinfra.Provider
}

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	var authMw func(http.Handler) http.Handler
	if deps.JWTProvider != nil {
		authMw = appmiddleware.Auth(deps.JWTProvider)
	} else {
		authMw = func(next http.Handler) http.Handler { return next }
	}

	// 5 requests/second, burst of 10 — applied to sensitive public endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	otpSvc := otp.NewService(otp.ServiceDeps{
		Store:       deps.OTPRepo,
		Mailer:      deps.Mailer,
		TTL:         cfg.OTPTTL,
		SendTimeout: cfg.OTPSendTimeout,
	})
	userSvc := user.NewService(user.ServiceDeps{
		Users:      deps.UserRepo,
		Recipes:    deps.RecipeRepo,
		Categories: deps.CategoryRepo,
		Signer:     deps.JWTProvider,
	})
	recipeSvc := recipe.NewService(recipe.ServiceDeps{
		Recipes:    deps.RecipeRepo,
		Categories: deps.CategoryRepo,
		Images:     deps.S3Store,
	})
	categorySvc := category.NewService(category.ServiceDeps{
		Categories: deps.CategoryRepo,
		Images:     deps.S3Store,
	})
	contactSvc := contact.NewService(contact.ServiceDeps{
		Mailer:    deps.Mailer,
		Recipient: cfg.ContactRecipient,
	})

	healthH := handler.NewHealthHandler()
	homeH := handler.NewHomeHandler(recipeSvc, categorySvc)
	otpH := handler.NewOTPHandler(otpSvc)
	userH := handler.NewUserHandler(userSvc)
	recipeH := handler.NewRecipeHandler(recipeSvc)
	categoryH := handler.NewCategoryHandler(categorySvc)
	contactH := handler.NewContactHandler(contactSvc)

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health-check", healthH.Ping)
		r.Get("/home", homeH.Get)

		r.With(sensitiveRL.Limit).Post("/otp/send", otpH.Send)
		r.With(sensitiveRL.Limit).Post("/otp/verify", otpH.Verify)
		r.With(sensitiveRL.Limit).Post("/users", userH.Signup)
		r.With(sensitiveRL.Limit).Post("/users/login", userH.Login)
		r.With(sensitiveRL.Limit).Post("/contact", contactH.Send)

		r.Get("/recipes", recipeH.List)
		r.Get("/recipes/highlights", recipeH.Highlights)
		r.Get("/recipes/{id}", recipeH.Get)
		r.Get("/categories", categoryH.List)
		r.Get("/categories/{id}", categoryH.Get)

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(authMw)

			r.Get("/users/me", userH.Me)
			r.Get("/users/me/favourites", userH.ListFavourites)
			r.Post("/users/me/favourites/{id}", userH.AddFavourite)
			r.Delete("/users/me/favourites/{id}", userH.RemoveFavourite)

			r.Post("/recipes", recipeH.Create)
			r.Put("/recipes/{id}", recipeH.Update)
			r.Post("/categories", categoryH.Create)
			r.Put("/categories/{id}", categoryH.Update)
		})
	})

	return r
}
