package handler

import (
	"context"
	"strings"
)

type HandlerFunc func(ctx context.Context, req Request) Response

type route struct {
	method  string
	prefix  string
	handler HandlerFunc
}

// Router matches method and path prefix in registration order. The first
// match wins, so /helados/ routes are registered before /helados.
type Router struct {
	routes   []route
	fallback HandlerFunc
}

func NewRouter(h *HTTPHandler) *Router {
	return &Router{
		routes: []route{
			{method: "POST", prefix: "/helados", handler: h.Create},
			{method: "GET", prefix: "/helados/", handler: h.GetOne},
			{method: "GET", prefix: "/helados", handler: h.GetAll},
			{method: "PUT", prefix: "/helados/", handler: h.Update},
			{method: "DELETE", prefix: "/helados/", handler: h.Delete},
		},
		fallback: NotFound,
	}
}

func (r *Router) Dispatch(ctx context.Context, req Request) Response {
	for _, rt := range r.routes {
		if req.Method == rt.method && strings.HasPrefix(req.Path, rt.prefix) {
			return rt.handler(ctx, req)
		}
	}
	return r.fallback(ctx, req)
}
