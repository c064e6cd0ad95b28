package grpc

import (
	"context"

	grpclib "google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "auditeval.v1.Evaluator"

const (
	methodEvaluateAuditCompletion = "EvaluateAuditCompletion"
	methodEvaluateDataSync        = "EvaluateDataSync"
	methodEvaluateNavigationFlow  = "EvaluateNavigationFlow"
	methodGenerateReport          = "GenerateReport"
	methodGetRubricHistory        = "GetRubricHistory"
	methodListResults             = "ListResults"
)

// EvaluatorServer is the server API for the evaluator service. Every method
// exchanges JSON-shaped google.protobuf.Struct messages.
type EvaluatorServer interface {
	EvaluateAuditCompletion(context.Context, *structpb.Struct) (*structpb.Struct, error)
	EvaluateDataSync(context.Context, *structpb.Struct) (*structpb.Struct, error)
	EvaluateNavigationFlow(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GenerateReport(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetRubricHistory(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListResults(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryCall func(EvaluatorServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(method string, call unaryCall) func(srv any, ctx context.Context, dec func(any) error, interceptor grpclib.UnaryServerInterceptor) (any, error) {
	fullMethod := "/" + ServiceName + "/" + method
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpclib.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(EvaluatorServer), ctx, in)
		}
		info := &grpclib.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(EvaluatorServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// EvaluatorServiceDesc describes the evaluator service for grpc.Server.RegisterService.
var EvaluatorServiceDesc = grpclib.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*EvaluatorServer)(nil),
	Methods: []grpclib.MethodDesc{
		{MethodName: methodEvaluateAuditCompletion, Handler: unaryHandler(methodEvaluateAuditCompletion, EvaluatorServer.EvaluateAuditCompletion)},
		{MethodName: methodEvaluateDataSync, Handler: unaryHandler(methodEvaluateDataSync, EvaluatorServer.EvaluateDataSync)},
		{MethodName: methodEvaluateNavigationFlow, Handler: unaryHandler(methodEvaluateNavigationFlow, EvaluatorServer.EvaluateNavigationFlow)},
		{MethodName: methodGenerateReport, Handler: unaryHandler(methodGenerateReport, EvaluatorServer.GenerateReport)},
		{MethodName: methodGetRubricHistory, Handler: unaryHandler(methodGetRubricHistory, EvaluatorServer.GetRubricHistory)},
		{MethodName: methodListResults, Handler: unaryHandler(methodListResults, EvaluatorServer.ListResults)},
	},
	Streams:  []grpclib.StreamDesc{},
	Metadata: "auditeval/v1/evaluator.proto",
}

// RegisterEvaluatorServer registers srv on s.
func RegisterEvaluatorServer(s grpclib.ServiceRegistrar, srv EvaluatorServer) {
	s.RegisterService(&EvaluatorServiceDesc, srv)
}

// EvaluatorClient calls the evaluator service over an existing connection.
type EvaluatorClient struct {
	cc grpclib.ClientConnInterface
}

func NewEvaluatorClient(cc grpclib.ClientConnInterface) *EvaluatorClient {
	return &EvaluatorClient{cc: cc}
}

func (c *EvaluatorClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts ...grpclib.CallOption) (*structpb.Struct, error) {
	if in == nil {
		in = &structpb.Struct{}
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *EvaluatorClient) EvaluateAuditCompletion(ctx context.Context, in *structpb.Struct, opts ...grpclib.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, methodEvaluateAuditCompletion, in, opts...)
}

func (c *EvaluatorClient) EvaluateDataSync(ctx context.Context, in *structpb.Struct, opts ...grpclib.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, methodEvaluateDataSync, in, opts...)
}

func (c *EvaluatorClient) EvaluateNavigationFlow(ctx context.Context, in *structpb.Struct, opts ...grpclib.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, methodEvaluateNavigationFlow, in, opts...)
}

func (c *EvaluatorClient) GenerateReport(ctx context.Context, in *structpb.Struct, opts ...grpclib.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, methodGenerateReport, in, opts...)
}

func (c *EvaluatorClient) GetRubricHistory(ctx context.Context, in *structpb.Struct, opts ...grpclib.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, methodGetRubricHistory, in, opts...)
}

func (c *EvaluatorClient) ListResults(ctx context.Context, in *structpb.Struct, opts ...grpclib.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, methodListResults, in, opts...)
}
