// Package grpc exposes the catalog existence checks to peer services.
package grpc

import (
	"context"
	"time"

	"marketplace/application/ports"
	"marketplace/pkg/catalogrpc"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// CatalogServer implements catalogrpc.CatalogServiceServer over a directory.
type CatalogServer struct {
	directory ports.CatalogDirectory
	logger    *zap.Logger
}

// NewCatalogServer creates a new catalog server
func NewCatalogServer(directory ports.CatalogDirectory, logger *zap.Logger) *CatalogServer {
	return &CatalogServer{directory: directory, logger: logger}
}

func (s *CatalogServer) ShopExists(ctx context.Context, req *wrapperspb.StringValue) (*wrapperspb.BoolValue, error) {
	return s.exists(ctx, "shop", req, s.directory.ShopExists)
}

func (s *CatalogServer) ReviewExists(ctx context.Context, req *wrapperspb.StringValue) (*wrapperspb.BoolValue, error) {
	return s.exists(ctx, "review", req, s.directory.ReviewExists)
}

func (s *CatalogServer) exists(
	ctx context.Context,
	kind string,
	req *wrapperspb.StringValue,
	check func(context.Context, string) (bool, error),
) (*wrapperspb.BoolValue, error) {
	id := req.GetValue()
	if id == "" {
		return nil, status.Errorf(codes.InvalidArgument, "%s id is required", kind)
	}

	found, err := check(ctx, id)
	if err != nil {
		s.logger.Error("Existence check failed",
			zap.String("kind", kind),
			zap.String("id", id),
			zap.Error(err),
		)
		return nil, status.Errorf(codes.Unavailable, "%s lookup failed", kind)
	}
	return wrapperspb.Bool(found), nil
}

// NewServer builds a gRPC server serving catalog and the standard health
// service.
func NewServer(catalog *CatalogServer, logger *zap.Logger) *grpc.Server {
	server := grpc.NewServer(grpc.ChainUnaryInterceptor(
		recoveryInterceptor(logger),
		loggingInterceptor(logger),
	))

	catalogrpc.RegisterCatalogServiceServer(server, catalog)

	healthServer := health.NewServer()
	healthServer.SetServingStatus(catalogrpc.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(server, healthServer)

	return server
}

func loggingInterceptor(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		logger.Debug("RPC handled",
			zap.String("method", info.FullMethod),
			zap.String("code", status.Code(err).String()),
			zap.Duration("duration", time.Since(start)),
		)
		return resp, err
	}
}

func recoveryInterceptor(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp interface{}, err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("Panic in RPC handler",
					zap.String("method", info.FullMethod),
					zap.Any("panic", r),
				)
				err = status.Error(codes.Internal, "internal error")
			}
		}()
		return handler(ctx, req)
	}
}
