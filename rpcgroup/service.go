// Package rpcgroup runs a sum reduction across worker
// processes that talk to a coordinating process over gRPC.
//
// The coordinator (rank 0) serves a single Contribute
// method. Every other rank calls it once with its partial
// value, and the call blocks until all ranks have
// contributed.
package rpcgroup

import (
	"context"
	"encoding/json"

	"google.golang.org/grpc"
)

const (
	serviceName      = "hpc.ReduceGroup"
	contributeMethod = "/" + serviceName + "/Contribute"
)

type contributeRequest struct {
	Rank    int     `json:"rank"`
	Size    int     `json:"size"`
	Session string  `json:"session"`
	Value   float64 `json:"value"`
}

type contributeResponse struct {
	RunID string `json:"run_id"`
}

type reduceServer interface {
	Contribute(ctx context.Context, req *contributeRequest) (*contributeResponse, error)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*reduceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Contribute",
			Handler:    contributeHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "rpcgroup/service.go",
}

func contributeHandler(srv interface{}, ctx context.Context, dec func(interface{}) error,
	interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(contributeRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(reduceServer).Contribute(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: contributeMethod,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(reduceServer).Contribute(ctx, req.(*contributeRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// jsonCodec replaces protobuf as the wire format, since the
// messages are a handful of scalars.
type jsonCodec struct{}

func (jsonCodec) Marshal(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string {
	return "json"
}
