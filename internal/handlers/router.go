package handlers

import (
	"net/http"

	"github.com/sga-edu/sgaauth/internal/handlers/middleware"
	"github.com/sga-edu/sgaauth/internal/logger"
	"github.com/sga-edu/sgaauth/internal/models"
)

// chain applies middlewares in the given order: m1(m2(...(h)))
func chain(h http.Handler, mds ...func(next http.Handler) http.Handler) http.Handler {
	for i := len(mds) - 1; i >= 0; i-- {
		h = mds[i](h)
	}
	return h
}

func NewRouter(
	authService authService,
	userService userService,
	log logger.Logger,
) http.Handler {
	authHandler := NewAuth(authService)
	userHandler := NewUser(userService)

	withAuth := middleware.Auth(authService)
	adminOnly := middleware.RequireRole(models.RoleAdministrador)

	api := http.NewServeMux()

	api.Handle("POST /login", http.HandlerFunc(authHandler.login))
	// Logout is deliberately not behind the auth middleware: an already
	// invalidated token must still log out successfully (idempotence)
	api.Handle("POST /logout", http.HandlerFunc(authHandler.logout))
	api.Handle("GET /verify", withAuth(http.HandlerFunc(authHandler.verify)))

	api.Handle("GET /users", chain(http.HandlerFunc(userHandler.list), withAuth, adminOnly))
	api.Handle("POST /users", chain(http.HandlerFunc(userHandler.create), withAuth, adminOnly))
	api.Handle("PUT /users/{id}", chain(http.HandlerFunc(userHandler.update), withAuth, adminOnly))
	api.Handle("DELETE /users/{id}", chain(http.HandlerFunc(userHandler.deactivate), withAuth, adminOnly))

	api.Handle("POST /change-password", withAuth(http.HandlerFunc(userHandler.changePassword)))

	root := http.NewServeMux()
	root.Handle("/api/", http.StripPrefix("/api", api))

	return chain(root,
		middleware.Logger(log),
	)
}
