package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strconv"

	"github.com/rl1809/helados/internal/core/domain"
	"github.com/rl1809/helados/internal/core/service"
)

const (
	StatusOK            = "HTTP/1.1 200 OK\r\nContent-Type: application/json\r\n\r\n"
	StatusNotFound      = "HTTP/1.1 404 NOT FOUND\r\n\r\n"
	StatusInternalError = "HTTP/1.1 500 INTERNAL ERROR\r\n\r\n"
)

const (
	bodyCreated       = "Helado created"
	bodyUpdated       = "Helado updated"
	bodyDeleted       = "Helado deleted"
	bodyNotFound      = "Helado not found"
	bodyInternalError = "Internal error"
	bodyRouteNotFound = "404 not found"
)

// Response is a status line, including its trailing blank line, and a body.
type Response struct {
	StatusLine string
	Body       string
}

func (r Response) Bytes() []byte {
	return []byte(r.StatusLine + r.Body)
}

var (
	internalError = Response{StatusLine: StatusInternalError, Body: bodyInternalError}
	notFound      = Response{StatusLine: StatusNotFound, Body: bodyNotFound}
)

type HTTPHandler struct {
	heladoService *service.HeladoService
}

func NewHTTPHandler(heladoService *service.HeladoService) *HTTPHandler {
	return &HTTPHandler{heladoService: heladoService}
}

func (h *HTTPHandler) Create(ctx context.Context, req Request) Response {
	helado, err := parseBody(req.Body)
	if err != nil {
		log.Printf("create: invalid body: %v", err)
		return internalError
	}

	id, err := h.heladoService.Create(ctx, helado)
	if err != nil {
		log.Printf("create: %v", err)
		return internalError
	}

	log.Printf("created helado %d", id)
	return ok(bodyCreated)
}

func (h *HTTPHandler) GetOne(ctx context.Context, req Request) Response {
	id, err := parseID(req.ID)
	if err != nil {
		log.Printf("get: invalid id %q: %v", req.ID, err)
		return internalError
	}

	helado, err := h.heladoService.Get(ctx, id)
	if errors.Is(err, service.ErrNotFound) {
		return notFound
	}
	if err != nil {
		log.Printf("get: %v", err)
		return internalError
	}

	return okJSON(helado)
}

func (h *HTTPHandler) GetAll(ctx context.Context, req Request) Response {
	helados, err := h.heladoService.List(ctx)
	if err != nil {
		log.Printf("list: %v", err)
		return internalError
	}

	return okJSON(helados)
}

// Update reports success for ids that do not exist.
func (h *HTTPHandler) Update(ctx context.Context, req Request) Response {
	id, err := parseID(req.ID)
	if err != nil {
		log.Printf("update: invalid id %q: %v", req.ID, err)
		return internalError
	}

	helado, err := parseBody(req.Body)
	if err != nil {
		log.Printf("update: invalid body: %v", err)
		return internalError
	}

	if err := h.heladoService.Update(ctx, id, helado); err != nil {
		log.Printf("update: %v", err)
		return internalError
	}

	return ok(bodyUpdated)
}

func (h *HTTPHandler) Delete(ctx context.Context, req Request) Response {
	id, err := parseID(req.ID)
	if err != nil {
		log.Printf("delete: invalid id %q: %v", req.ID, err)
		return internalError
	}

	err = h.heladoService.Delete(ctx, id)
	if errors.Is(err, service.ErrNotFound) {
		return notFound
	}
	if err != nil {
		log.Printf("delete: %v", err)
		return internalError
	}

	return ok(bodyDeleted)
}

func NotFound(ctx context.Context, req Request) Response {
	return Response{StatusLine: StatusNotFound, Body: bodyRouteNotFound}
}

// parseID accepts the range of a signed 32-bit integer, the width of the id column.
func parseID(segment string) (int64, error) {
	return strconv.ParseInt(segment, 10, 32)
}

func parseBody(body string) (domain.Helado, error) {
	var helado domain.Helado
	err := json.Unmarshal([]byte(body), &helado)
	return helado, err
}

func ok(body string) Response {
	return Response{StatusLine: StatusOK, Body: body}
}

func okJSON(data interface{}) Response {
	body, err := json.Marshal(data)
	if err != nil {
		log.Printf("encode response: %v", err)
		return internalError
	}
	return ok(string(body))
}
