// Package web exposes the catalog over HTTP with gin. Handlers resolve each
// request to a rendered view or a redirect; views are returned as JSON
// documents naming the view and its data.
package web

import (
	"context"
	"log/slog"
	"net/http"

	"locallibrary/pkg/catalog"
	"locallibrary/pkg/circuitbreaker"
	"locallibrary/pkg/metrics"

	"github.com/gin-gonic/gin"
)

// Pinger reports whether the database answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	svc     *catalog.Service
	log     *slog.Logger
	db      Pinger
	breaker *circuitbreaker.CircuitBreaker
}

type Deps struct {
	Service *catalog.Service
	Logger  *slog.Logger
	DB      Pinger
	Breaker *circuitbreaker.CircuitBreaker
	// Metrics is optional; without it /metrics is not served.
	Metrics *metrics.Metrics
}

func NewHandler(d Deps) *Handler {
	return &Handler{svc: d.Service, log: d.Logger, db: d.DB, breaker: d.Breaker}
}

// NewRouter builds the engine with every catalog and operational route.
func NewRouter(d Deps) *gin.Engine {
	h := NewHandler(d)

	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), AccessLog(d.Logger, d.Metrics))

	r.GET("/manage/health", h.Health)
	if d.Metrics != nil {
		r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))
	}

	r.GET("/", func(c *gin.Context) { c.Redirect(http.StatusFound, "/catalog") })

	cat := r.Group("/catalog")
	cat.GET("", h.handle(h.index))

	cat.GET("/author/create", h.handle(h.authorCreateGet))
	cat.POST("/author/create", h.handle(h.authorCreatePost))
	cat.GET("/author/:id/delete", h.handle(h.authorDeleteGet))
	cat.POST("/author/:id/delete", h.handle(h.authorDeletePost))
	cat.GET("/author/:id/update", h.handle(h.authorUpdateGet))
	cat.POST("/author/:id/update", h.handle(h.authorUpdatePost))
	cat.GET("/author/:id", h.handle(h.authorDetail))
	cat.GET("/authors", h.handle(h.authorList))

	cat.GET("/book/create", h.handle(h.bookCreateGet))
	cat.POST("/book/create", h.handle(h.bookCreatePost))
	cat.GET("/book/:id/delete", h.handle(h.bookDeleteGet))
	cat.POST("/book/:id/delete", h.handle(h.bookDeletePost))
	cat.GET("/book/:id/update", h.handle(h.bookUpdateGet))
	cat.POST("/book/:id/update", h.handle(h.bookUpdatePost))
	cat.GET("/book/:id", h.handle(h.bookDetail))
	cat.GET("/books", h.handle(h.bookList))

	cat.GET("/genre/create", h.handle(h.genreCreateGet))
	cat.POST("/genre/create", h.handle(h.genreCreatePost))
	cat.GET("/genre/:id/delete", h.handle(h.genreDeleteGet))
	cat.POST("/genre/:id/delete", h.handle(h.genreDeletePost))
	cat.GET("/genre/:id/update", h.handle(h.genreUpdateGet))
	cat.POST("/genre/:id/update", h.handle(h.genreUpdatePost))
	cat.GET("/genre/:id", h.handle(h.genreDetail))
	cat.GET("/genres", h.handle(h.genreList))

	cat.GET("/bookinstance/create", h.handle(h.instanceCreateGet))
	cat.POST("/bookinstance/create", h.handle(h.instanceCreatePost))
	cat.GET("/bookinstance/:id/delete", h.handle(h.instanceDeleteGet))
	cat.POST("/bookinstance/:id/delete", h.handle(h.instanceDeletePost))
	cat.GET("/bookinstance/:id/update", h.handle(h.instanceUpdateGet))
	cat.POST("/bookinstance/:id/update", h.handle(h.instanceUpdatePost))
	cat.GET("/bookinstance/:id", h.handle(h.instanceDetail))
	cat.GET("/bookinstances", h.handle(h.instanceList))

	return r
}
