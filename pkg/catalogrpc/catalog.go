// Package catalogrpc describes the catalog existence service shared by the
// command API (server) and its peers (clients). Requests and responses are
// protobuf well-known wrappers, so no generated message types are needed.
package catalogrpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "marketplace.catalog.v1.CatalogService"

const (
	ShopExistsMethod   = "/" + ServiceName + "/ShopExists"
	ReviewExistsMethod = "/" + ServiceName + "/ReviewExists"
)

// CatalogServiceServer is the server API for CatalogService.
type CatalogServiceServer interface {
	ShopExists(ctx context.Context, shopID *wrapperspb.StringValue) (*wrapperspb.BoolValue, error)
	ReviewExists(ctx context.Context, reviewID *wrapperspb.StringValue) (*wrapperspb.BoolValue, error)
}

// CatalogServiceClient is the client API for CatalogService.
type CatalogServiceClient interface {
	ShopExists(ctx context.Context, shopID *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.BoolValue, error)
	ReviewExists(ctx context.Context, reviewID *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.BoolValue, error)
}

type catalogServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewCatalogServiceClient(cc grpc.ClientConnInterface) CatalogServiceClient {
	return &catalogServiceClient{cc: cc}
}

func (c *catalogServiceClient) ShopExists(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.BoolValue, error) {
	out := new(wrapperspb.BoolValue)
	if err := c.cc.Invoke(ctx, ShopExistsMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *catalogServiceClient) ReviewExists(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.BoolValue, error) {
	out := new(wrapperspb.BoolValue)
	if err := c.cc.Invoke(ctx, ReviewExistsMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// RegisterCatalogServiceServer registers srv on s.
func RegisterCatalogServiceServer(s grpc.ServiceRegistrar, srv CatalogServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func shopExistsHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CatalogServiceServer).ShopExists(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ShopExistsMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(CatalogServiceServer).ShopExists(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func reviewExistsHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CatalogServiceServer).ReviewExists(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ReviewExistsMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(CatalogServiceServer).ReviewExists(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

// ServiceDesc is the grpc.ServiceDesc for CatalogService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CatalogServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ShopExists", Handler: shopExistsHandler},
		{MethodName: "ReviewExists", Handler: reviewExistsHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "marketplace/catalog/v1/catalog.proto",
}
