package handler

import (
	"context"

	"google.golang.org/grpc"
)

const marketServiceName = "mintmarket.v1.Market"

// MarketServer is the server API of the mintmarket.v1.Market service.
type MarketServer interface {
	CreateItem(context.Context, *CreateItemRequest) (*CreateItemResponse, error)
	BuyItemCopy(context.Context, *BuyItemCopyRequest) (*CopyResponse, error)
	CreateToken(context.Context, *CreateTokenRequest) (*TokenResponse, error)
	Resolve(context.Context, *ResolveRequest) (*ResolveResponse, error)
	DestroyCopy(context.Context, *DestroyCopyRequest) (*DestroyCopyResponse, error)
}

func RegisterMarketServer(s grpc.ServiceRegistrar, srv MarketServer) {
	s.RegisterService(&marketServiceDesc, srv)
}

var marketServiceDesc = grpc.ServiceDesc{
	ServiceName: marketServiceName,
	HandlerType: (*MarketServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryMethod("CreateItem", MarketServer.CreateItem),
		unaryMethod("BuyItemCopy", MarketServer.BuyItemCopy),
		unaryMethod("CreateToken", MarketServer.CreateToken),
		unaryMethod("Resolve", MarketServer.Resolve),
		unaryMethod("DestroyCopy", MarketServer.DestroyCopy),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "mintmarket/v1/market",
}

func unaryMethod[Req, Resp any](name string, call func(MarketServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	fullMethod := "/" + marketServiceName + "/" + name

	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(MarketServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(MarketServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// MarketClient calls the mintmarket.v1.Market service over the JSON codec.
type MarketClient struct {
	cc grpc.ClientConnInterface
}

func NewMarketClient(cc grpc.ClientConnInterface) *MarketClient {
	return &MarketClient{cc: cc}
}

func (c *MarketClient) CreateItem(ctx context.Context, in *CreateItemRequest, opts ...grpc.CallOption) (*CreateItemResponse, error) {
	out := new(CreateItemResponse)
	return out, c.invoke(ctx, "CreateItem", in, out, opts)
}

func (c *MarketClient) BuyItemCopy(ctx context.Context, in *BuyItemCopyRequest, opts ...grpc.CallOption) (*CopyResponse, error) {
	out := new(CopyResponse)
	return out, c.invoke(ctx, "BuyItemCopy", in, out, opts)
}

func (c *MarketClient) CreateToken(ctx context.Context, in *CreateTokenRequest, opts ...grpc.CallOption) (*TokenResponse, error) {
	out := new(TokenResponse)
	return out, c.invoke(ctx, "CreateToken", in, out, opts)
}

func (c *MarketClient) Resolve(ctx context.Context, in *ResolveRequest, opts ...grpc.CallOption) (*ResolveResponse, error) {
	out := new(ResolveResponse)
	return out, c.invoke(ctx, "Resolve", in, out, opts)
}

func (c *MarketClient) DestroyCopy(ctx context.Context, in *DestroyCopyRequest, opts ...grpc.CallOption) (*DestroyCopyResponse, error) {
	out := new(DestroyCopyResponse)
	return out, c.invoke(ctx, "DestroyCopy", in, out, opts)
}

func (c *MarketClient) invoke(ctx context.Context, method string, in, out any, opts []grpc.CallOption) error {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(codecName)}, opts...)
	return c.cc.Invoke(ctx, "/"+marketServiceName+"/"+method, in, out, opts...)
}
