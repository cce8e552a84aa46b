package handler

import (
	"context"
	"errors"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/rl1809/helados/internal/core/domain"
	"github.com/rl1809/helados/internal/core/service"
)

const grpcServiceName = "helados.HeladoService"

type IDRequest struct {
	ID int64 `json:"id"`
}

type UpdateRequest struct {
	ID     int64          `json:"id"`
	Helado *domain.Helado `json:"helado"`
}

type ListRequest struct{}

type HeladoList struct {
	Helados []domain.Helado `json:"helados"`
}

type Ack struct {
	ID      int64  `json:"id,omitempty"`
	Message string `json:"message"`
}

type HeladoServiceServer interface {
	Create(ctx context.Context, req *domain.Helado) (*Ack, error)
	Get(ctx context.Context, req *IDRequest) (*domain.Helado, error)
	List(ctx context.Context, req *ListRequest) (*HeladoList, error)
	Update(ctx context.Context, req *UpdateRequest) (*Ack, error)
	Delete(ctx context.Context, req *IDRequest) (*Ack, error)
}

type GRPCHandler struct {
	heladoService *service.HeladoService
}

func NewGRPCHandler(heladoService *service.HeladoService) *GRPCHandler {
	return &GRPCHandler{heladoService: heladoService}
}

func (h *GRPCHandler) Create(ctx context.Context, req *domain.Helado) (*Ack, error) {
	id, err := h.heladoService.Create(ctx, *req)
	if err != nil {
		return nil, toStatus(err)
	}
	return &Ack{ID: id, Message: bodyCreated}, nil
}

func (h *GRPCHandler) Get(ctx context.Context, req *IDRequest) (*domain.Helado, error) {
	helado, err := h.heladoService.Get(ctx, req.ID)
	if err != nil {
		return nil, toStatus(err)
	}
	return helado, nil
}

func (h *GRPCHandler) List(ctx context.Context, req *ListRequest) (*HeladoList, error) {
	helados, err := h.heladoService.List(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return &HeladoList{Helados: helados}, nil
}

func (h *GRPCHandler) Update(ctx context.Context, req *UpdateRequest) (*Ack, error) {
	if req.Helado == nil {
		return nil, status.Error(codes.InvalidArgument, "missing helado")
	}
	if err := h.heladoService.Update(ctx, req.ID, *req.Helado); err != nil {
		return nil, toStatus(err)
	}
	return &Ack{ID: req.ID, Message: bodyUpdated}, nil
}

func (h *GRPCHandler) Delete(ctx context.Context, req *IDRequest) (*Ack, error) {
	if err := h.heladoService.Delete(ctx, req.ID); err != nil {
		return nil, toStatus(err)
	}
	return &Ack{ID: req.ID, Message: bodyDeleted}, nil
}

func toStatus(err error) error {
	if errors.Is(err, service.ErrNotFound) {
		return status.Error(codes.NotFound, bodyNotFound)
	}
	return status.Error(codes.Internal, bodyInternalError)
}

func RegisterHeladoServiceServer(s grpc.ServiceRegistrar, srv HeladoServiceServer) {
	s.RegisterService(&heladoServiceDesc, srv)
}

var heladoServiceDesc = grpc.ServiceDesc{
	ServiceName: grpcServiceName,
	HandlerType: (*HeladoServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Create", Handler: unaryHandler("Create", HeladoServiceServer.Create)},
		{MethodName: "Get", Handler: unaryHandler("Get", HeladoServiceServer.Get)},
		{MethodName: "List", Handler: unaryHandler("List", HeladoServiceServer.List)},
		{MethodName: "Update", Handler: unaryHandler("Update", HeladoServiceServer.Update)},
		{MethodName: "Delete", Handler: unaryHandler("Delete", HeladoServiceServer.Delete)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "helados",
}

// FullMethod returns the invocation path of a HeladoService method.
func FullMethod(method string) string {
	return "/" + grpcServiceName + "/" + method
}

func unaryHandler[Req, Resp any](method string, call func(HeladoServiceServer, context.Context, *Req) (*Resp, error)) func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, status.Error(codes.InvalidArgument, err.Error())
		}
		if interceptor == nil {
			return call(srv.(HeladoServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(method)}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(HeladoServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}
