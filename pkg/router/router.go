package router

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

type HandlerFunc[Request, Response any] func(ctx context.Context, req Request) (*Response, error)
type MiddlewareFunc func(ctx context.Context) error

// Router binds typed handlers onto gin. The context given to every handler is
// derived from the base context, which carries configs, logger, and database.
type Router struct {
	Inner gin.IRouter
	ctx   context.Context
}

func New(ctx context.Context) *Router {
	gin.SetMode(gin.ReleaseMode)
	return &Router{
		Inner: gin.New(),
		ctx:   ctx,
	}
}

func GET[Request, Response any](r *Router, pattern string, handler HandlerFunc[Request, Response]) {
	r.Inner.GET(pattern, wrapHandler(r, handler))
}

func POST[Request, Response any](r *Router, pattern string, handler HandlerFunc[Request, Response]) {
	r.Inner.POST(pattern, wrapHandler(r, handler))
}

func PUT[Request, Response any](r *Router, pattern string, handler HandlerFunc[Request, Response]) {
	r.Inner.PUT(pattern, wrapHandler(r, handler))
}

func DELETE[Request, Response any](r *Router, pattern string, handler HandlerFunc[Request, Response]) {
	r.Inner.DELETE(pattern, wrapHandler(r, handler))
}

func (r *Router) Use(middleware MiddlewareFunc) {
	r.Inner.Use(wrapMiddleware(r, middleware))
}

func (r *Router) Group(pattern string) *Router {
	return &Router{
		Inner: r.Inner.Group(pattern),
		ctx:   r.ctx,
	}
}

func (r *Router) Handler() http.Handler {
	return r.Inner.(*gin.Engine)
}
