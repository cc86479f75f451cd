package handler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type GRPCHandler struct {
	market marketService
	log    *slog.Logger
}

func NewGRPCHandler(market marketService, log *slog.Logger) *GRPCHandler {
	return &GRPCHandler{market: market, log: log.With("handler", "grpc")}
}

func (h *GRPCHandler) CreateItem(ctx context.Context, req *CreateItemRequest) (*CreateItemResponse, error) {
	recipient, err := parseAddress("payout_recipient", req.PayoutRecipient)
	if err != nil {
		return nil, grpcError(err)
	}
	price, err := parseAmount("price", req.Price)
	if err != nil {
		return nil, grpcError(err)
	}

	id, err := h.market.CreateItem(ctx, recipient, price, req.Quantity, req.RoyaltyBps)
	if err != nil {
		return nil, h.fail(ctx, "CreateItem", err)
	}
	return &CreateItemResponse{ItemID: id}, nil
}

func (h *GRPCHandler) BuyItemCopy(ctx context.Context, req *BuyItemCopyRequest) (*CopyResponse, error) {
	buyer, err := callerFrom(ctx)
	if err != nil {
		return nil, grpcError(err)
	}
	payment, err := parseAmount("payment", req.Payment)
	if err != nil {
		return nil, grpcError(err)
	}

	cp, err := h.market.Purchase(ctx, req.RequestID, buyer, req.ItemID, req.MetadataBaseURI, payment)
	if err != nil {
		return nil, h.fail(ctx, "BuyItemCopy", err)
	}
	resp := toCopyResponse(cp)
	return &resp, nil
}

func (h *GRPCHandler) CreateToken(ctx context.Context, req *CreateTokenRequest) (*TokenResponse, error) {
	caller, err := callerFrom(ctx)
	if err != nil {
		return nil, grpcError(err)
	}
	owner, err := parseAddress("owner", req.Owner)
	if err != nil {
		return nil, grpcError(err)
	}

	tok, err := h.market.CreateToken(ctx, caller, owner, req.Name, req.Symbol, req.BaseURI)
	if err != nil {
		return nil, h.fail(ctx, "CreateToken", err)
	}
	resp := toTokenResponse(*tok)
	return &resp, nil
}

func (h *GRPCHandler) Resolve(ctx context.Context, req *ResolveRequest) (*ResolveResponse, error) {
	uri, err := h.market.Resolve(ctx, req.CopyID)
	if err != nil {
		return nil, h.fail(ctx, "Resolve", err)
	}
	return &ResolveResponse{URI: uri}, nil
}

func (h *GRPCHandler) DestroyCopy(ctx context.Context, req *DestroyCopyRequest) (*DestroyCopyResponse, error) {
	caller, err := callerFrom(ctx)
	if err != nil {
		return nil, grpcError(err)
	}

	if err := h.market.DestroyCopy(ctx, caller, req.CopyID); err != nil {
		return nil, h.fail(ctx, "DestroyCopy", err)
	}
	return &DestroyCopyResponse{}, nil
}

func (h *GRPCHandler) fail(ctx context.Context, method string, err error) error {
	st := grpcError(err)
	if status.Code(st) == codes.Internal {
		h.log.ErrorContext(ctx, "rpc failed", "method", method, "error", err)
	}
	return st
}

// AuthInterceptor resolves the bearer token in the authorization metadata
// into the caller address. Calls without one proceed anonymously.
func AuthInterceptor(validator tokenValidator) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		md, _ := metadata.FromIncomingContext(ctx)
		values := md.Get("authorization")
		if len(values) == 0 {
			return handler(ctx, req)
		}

		token := extractBearerToken(values[0])
		if token == "" {
			return nil, status.Error(codes.Unauthenticated, "Unauthenticated: malformed authorization metadata")
		}
		caller, err := validator.Validate(token)
		if err != nil {
			return nil, status.Error(codes.Unauthenticated, fmt.Sprintf("Unauthenticated: %v", err))
		}
		return handler(withCaller(ctx, caller), req)
	}
}

// LoggingInterceptor logs each call with its method, code and duration.
func LoggingInterceptor(logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		level := slog.LevelInfo
		if status.Code(err) == codes.Internal {
			level = slog.LevelError
		}
		logger.LogAttrs(ctx, level, "grpc.request",
			slog.String("method", info.FullMethod),
			slog.String("code", status.Code(err).String()),
			slog.Duration("duration", time.Since(start)),
		)
		return resp, err
	}
}
