package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/fastygo/eventhub/api/handler"
)

type Handlers struct {
	Auth         *apiHandler.AuthHandler
	Event        *apiHandler.EventHandler
	Registration *apiHandler.RegistrationHandler
	User         *apiHandler.UserHandler
	Health       *apiHandler.HealthHandler
	// Metrics is mounted on /metrics when set.
	Metrics fasthttp.RequestHandler
}

type Options struct {
	// IdentityLogin mounts POST /api/v1/auth/identity.
	IdentityLogin bool
}

func New(handlers Handlers, authMiddleware func(fasthttp.RequestHandler) fasthttp.RequestHandler, opts Options) *router.Router {
	r := router.New()
	r.SaveMatchedRoutePath = true

	r.GET("/health", handlers.Health.Check)
	if handlers.Metrics != nil {
		r.GET("/metrics", handlers.Metrics)
	}

	v1 := r.Group("/api/v1")

	// Auth routes
	v1.POST("/auth/register", handlers.Auth.SignUp)
	v1.POST("/auth/login", handlers.Auth.Login)
	if opts.IdentityLogin {
		v1.POST("/auth/identity", handlers.Auth.IdentityLogin)
	}
	v1.GET("/auth/me", authMiddleware(handlers.Auth.Me))

	// Events
	v1.GET("/events", handlers.Event.ListEvents)
	v1.GET("/events/{id}", handlers.Event.GetEvent)
	v1.POST("/events", authMiddleware(handlers.Event.CreateEvent))
	v1.PUT("/events/{id}", authMiddleware(handlers.Event.UpdateEvent))
	v1.DELETE("/events/{id}", authMiddleware(handlers.Event.DeleteEvent))
	v1.GET("/events/{id}/activity", authMiddleware(handlers.Event.ListActivity))
	v1.GET("/me/events", authMiddleware(handlers.Event.ListRegistered))

	// Registrations
	v1.POST("/events/{id}/register", authMiddleware(handlers.Registration.Register))
	v1.DELETE("/events/{id}/register", authMiddleware(handlers.Registration.Unregister))

	// Users
	v1.GET("/users", authMiddleware(handlers.User.ListUsers))
	v1.GET("/users/{id}", authMiddleware(handlers.User.GetUser))
	v1.PUT("/users/{id}", authMiddleware(handlers.User.UpdateUser))
	v1.DELETE("/users/{id}", authMiddleware(handlers.User.DeleteUser))

	return r
}
