// Package chi provides punq integration for the Chi router.
//
// This package provides middleware for creating request-scoped child
// containers and type-safe handler wrappers for resolving controllers.
//
// Example usage:
//
//	container := punq.New()
//	container.MustRegister(punq.TypeOf[*UserService]())
//
//	r := chi.NewRouter()
//	r.Use(punqchi.ContainerMiddleware(container))
//
//	r.Get("/users/{id}", punqchi.Handle((*UserController).GetByID))
package chi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/bobthemighty/punq"
)

type contextKey struct{}

// ErrNoContainer is returned by FromContext when no request-scoped
// container has been attached, usually because ContainerMiddleware is not
// installed on the route.
var ErrNoContainer = errors.New("no container in request context")

// NewContext returns a context carrying the container.
func NewContext(ctx context.Context, c *punq.Container) context.Context {
	return context.WithValue(ctx, contextKey{}, c)
}

// FromContext retrieves the request-scoped container attached by
// ContainerMiddleware.
func FromContext(ctx context.Context) (*punq.Container, error) {
	c, ok := ctx.Value(contextKey{}).(*punq.Container)
	if !ok {
		return nil, ErrNoContainer
	}
	return c, nil
}

// Config holds the configuration for the container middleware.
type Config struct {
	// ErrorHandler is called when request scope setup fails.
	// If nil, a default handler returning 500 Internal Server Error is used.
	ErrorHandler func(http.ResponseWriter, *http.Request, error)

	// Middlewares are functions that run against the request-scoped
	// container before the handler. They can register per-request services
	// such as the authenticated user.
	Middlewares []func(*punq.Container, *http.Request) error
}

// Option configures the container middleware.
type Option func(*Config)

// WithErrorHandler sets the error handler for request scope setup failures.
func WithErrorHandler(h func(http.ResponseWriter, *http.Request, error)) Option {
	return func(c *Config) {
		c.ErrorHandler = h
	}
}

// WithMiddleware adds a function that runs against the request-scoped
// container. Multiple middlewares are executed in the order they are added.
func WithMiddleware(mw func(*punq.Container, *http.Request) error) Option {
	return func(c *Config) {
		c.Middlewares = append(c.Middlewares, mw)
	}
}

func defaultConfig() *Config {
	return &Config{
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			slog.Error("failed to set up request container", "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		},
		Middlewares: nil,
	}
}

// ContainerMiddleware creates a Chi middleware that derives a child
// container from parent for each request. The current *http.Request is
// registered on the child, so request-scoped services can depend on it.
// The child is attached to the request context and can be retrieved with
// FromContext.
//
// Registrations made on the child shadow the parent for the duration of
// the request and are discarded with it.
func ContainerMiddleware(parent *punq.Container, opts ...Option) func(http.Handler) http.Handler {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scope := parent.Child()

			if _, err := scope.Register(punq.TypeOf[*http.Request](), punq.WithInstance(r)); err != nil {
				cfg.ErrorHandler(w, r, err)
				return
			}

			for _, mw := range cfg.Middlewares {
				if err := mw(scope, r); err != nil {
					cfg.ErrorHandler(w, r, err)
					return
				}
			}

			next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), scope)))
		})
	}
}

// HandlerOption configures the Handle wrapper.
type HandlerOption func(*handlerConfig)

type handlerConfig struct {
	onError func(http.ResponseWriter, *http.Request, error)
}

// WithHandlerError sets the hook invoked when the controller cannot be
// produced: the request carries no container (ErrNoContainer, usually a
// missing ContainerMiddleware) or resolution itself fails. The default
// logs the error and responds 500.
func WithHandlerError(h func(http.ResponseWriter, *http.Request, error)) HandlerOption {
	return func(c *handlerConfig) {
		c.onError = h
	}
}

// Handle wraps a controller method as an http.HandlerFunc. On every
// request the controller type T is resolved from the container attached
// to the request context, then the method is invoked on it, so the
// controller and its whole dependency graph are rebuilt per request
// unless registered as singletons.
//
// Panic recovery is deliberately not Handle's job; mount chi's
// middleware.Recoverer for that.
//
// Example:
//
//	r.Get("/users/{id}", punqchi.Handle((*UserController).GetByID))
func Handle[T any](method func(T, http.ResponseWriter, *http.Request), opts ...HandlerOption) http.HandlerFunc {
	cfg := handlerConfig{
		onError: func(w http.ResponseWriter, r *http.Request, err error) {
			slog.Error("failed to resolve controller", "error", err, "path", r.URL.Path)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		},
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return func(w http.ResponseWriter, r *http.Request) {
		scope, err := FromContext(r.Context())
		if err != nil {
			cfg.onError(w, r, err)
			return
		}

		controller, err := punq.Resolve[T](scope)
		if err != nil {
			cfg.onError(w, r, err)
			return
		}

		method(controller, w, r)
	}
}
