package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vaultpass/keysmith-go/internal/handler"
	"github.com/vaultpass/keysmith-go/internal/middleware"
)

// routes holds everything the router mounts. Clients is nil when the
// database is unavailable.
type routes struct {
	Generator *handler.GeneratorHandler
	Clients   *handler.ClientHandler
	Health    http.HandlerFunc
	Limiter   func(http.Handler) http.Handler
	JWTSecret string
}

// newRouter builds the HTTP router. Remote generation and key pairs spend
// the server's entropy key and CPU, so they are only mounted behind client
// auth; without a client registry they are not mounted at all.
func newRouter(rt routes) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)

	r.Get("/health", rt.Health)
	r.Post("/api/v1/generate", rt.Generator.HandleGenerate)

	if rt.Clients == nil {
		return r
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.ClientAuth(rt.JWTSecret))
		r.Use(rt.Limiter)
		r.Post("/api/v1/generate/remote", rt.Generator.HandleGenerateRemote)
		r.Post("/api/v1/keypair", rt.Generator.HandleGenerateKeyPair)
	})

	r.Group(func(r chi.Router) {
		r.Use(rt.Limiter)
		r.Post("/api/v1/clients", rt.Clients.HandleRegister)
		r.Post("/api/v1/clients/token", rt.Clients.HandleToken)
	})

	return r
}
