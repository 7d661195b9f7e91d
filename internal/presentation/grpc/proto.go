package grpc

// proto.go is the hand-maintained service descriptor for
// cardrisk.v1.CardRiskService. Messages travel with the JSON codec
// registered in json_codec.go.

import (
	"context"

	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "cardrisk.v1.CardRiskService"

// CardRiskServiceServer is the server API for CardRiskService.
type CardRiskServiceServer interface {
	ScoreTransaction(context.Context, *ScoreTransactionRequest) (*ScoreTransactionResponse, error)
	GetTransaction(context.Context, *GetTransactionRequest) (*GetTransactionResponse, error)
	ReviewTransaction(context.Context, *ReviewTransactionRequest) (*ReviewTransactionResponse, error)
	GetStatistics(context.Context, *GetStatisticsRequest) (*GetStatisticsResponse, error)
	mustEmbedUnimplementedCardRiskServiceServer()
}

// UnimplementedCardRiskServiceServer provides forward-compatible default implementations.
type UnimplementedCardRiskServiceServer struct{}

func (UnimplementedCardRiskServiceServer) ScoreTransaction(context.Context, *ScoreTransactionRequest) (*ScoreTransactionResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ScoreTransaction not implemented")
}
func (UnimplementedCardRiskServiceServer) GetTransaction(context.Context, *GetTransactionRequest) (*GetTransactionResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetTransaction not implemented")
}
func (UnimplementedCardRiskServiceServer) ReviewTransaction(context.Context, *ReviewTransactionRequest) (*ReviewTransactionResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ReviewTransaction not implemented")
}
func (UnimplementedCardRiskServiceServer) GetStatistics(context.Context, *GetStatisticsRequest) (*GetStatisticsResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetStatistics not implemented")
}
func (UnimplementedCardRiskServiceServer) mustEmbedUnimplementedCardRiskServiceServer() {}

// RegisterCardRiskServiceServer registers the CardRiskServiceServer with the gRPC server.
func RegisterCardRiskServiceServer(s grpclib.ServiceRegistrar, srv CardRiskServiceServer) {
	s.RegisterService(&_CardRiskService_serviceDesc, srv)
}

var _CardRiskService_serviceDesc = grpclib.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CardRiskServiceServer)(nil),
	Methods: []grpclib.MethodDesc{
		{MethodName: "ScoreTransaction", Handler: _CardRiskService_ScoreTransaction_Handler},
		{MethodName: "GetTransaction", Handler: _CardRiskService_GetTransaction_Handler},
		{MethodName: "ReviewTransaction", Handler: _CardRiskService_ReviewTransaction_Handler},
		{MethodName: "GetStatistics", Handler: _CardRiskService_GetStatistics_Handler},
	},
	Streams: []grpclib.StreamDesc{},
}

func _CardRiskService_ScoreTransaction_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpclib.UnaryServerInterceptor) (interface{}, error) {
	req := new(ScoreTransactionRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CardRiskServiceServer).ScoreTransaction(ctx, req)
	}
	info := &grpclib.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/ScoreTransaction"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(CardRiskServiceServer).ScoreTransaction(ctx, req.(*ScoreTransactionRequest))
	}
	return interceptor(ctx, req, info, handler)
}

func _CardRiskService_GetTransaction_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpclib.UnaryServerInterceptor) (interface{}, error) {
	req := new(GetTransactionRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CardRiskServiceServer).GetTransaction(ctx, req)
	}
	info := &grpclib.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/GetTransaction"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(CardRiskServiceServer).GetTransaction(ctx, req.(*GetTransactionRequest))
	}
	return interceptor(ctx, req, info, handler)
}

func _CardRiskService_ReviewTransaction_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpclib.UnaryServerInterceptor) (interface{}, error) {
	req := new(ReviewTransactionRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CardRiskServiceServer).ReviewTransaction(ctx, req)
	}
	info := &grpclib.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/ReviewTransaction"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(CardRiskServiceServer).ReviewTransaction(ctx, req.(*ReviewTransactionRequest))
	}
	return interceptor(ctx, req, info, handler)
}

func _CardRiskService_GetStatistics_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpclib.UnaryServerInterceptor) (interface{}, error) {
	req := new(GetStatisticsRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CardRiskServiceServer).GetStatistics(ctx, req)
	}
	info := &grpclib.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/GetStatistics"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(CardRiskServiceServer).GetStatistics(ctx, req.(*GetStatisticsRequest))
	}
	return interceptor(ctx, req, info, handler)
}
