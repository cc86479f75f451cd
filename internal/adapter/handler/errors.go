package handler

import (
	"errors"
	"net/http"
	"strconv"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/rl1809/mintmarket/internal/core/domain"
	"github.com/rl1809/mintmarket/internal/core/service"
)

var (
	errUnauthenticated = errors.New("authentication required")
	errBadRequest      = errors.New("bad request")
)

type ErrorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

type errorKind struct {
	target error
	name   string
	status int
	code   codes.Code
}

// errorKinds is checked in order; the first match wins.
var errorKinds = []errorKind{
	{errBadRequest, "BadRequest", http.StatusBadRequest, codes.InvalidArgument},
	{errUnauthenticated, "Unauthenticated", http.StatusUnauthorized, codes.Unauthenticated},
	{domain.ErrInvalidAddress, "InvalidAddress", http.StatusBadRequest, codes.InvalidArgument},
	{domain.ErrInvalidAmount, "InvalidAmount", http.StatusBadRequest, codes.InvalidArgument},
	{domain.ErrQuantityRequired, "QuantityRequired", http.StatusBadRequest, codes.InvalidArgument},
	{domain.ErrQuantityDoesNotExist, "QuantityDoesNotExist", http.StatusNotFound, codes.NotFound},
	{domain.ErrInvalidItemID, "InvalidItemId", http.StatusNotFound, codes.NotFound},
	{domain.ErrItemSoldOut, "ItemSoldOut", http.StatusGone, codes.FailedPrecondition},
	{domain.ErrInsufficientFund, "InsufficientFund", http.StatusPaymentRequired, codes.FailedPrecondition},
	{domain.ErrUnauthorized, "Unauthorized", http.StatusForbidden, codes.PermissionDenied},
	{service.ErrDuplicateRequest, "DuplicateRequest", http.StatusConflict, codes.AlreadyExists},
	{domain.ErrReentrantCall, "ReentrantCall", http.StatusConflict, codes.Aborted},
}

func classify(err error) errorKind {
	for _, k := range errorKinds {
		if errors.Is(err, k.target) {
			return k
		}
	}
	return errorKind{name: "Internal", status: http.StatusInternalServerError, code: codes.Internal}
}

// errorFields extracts the structured fields carried by domain errors.
func errorFields(err error) map[string]string {
	var (
		qReq   *domain.QuantityRequiredError
		qNone  *domain.QuantityDoesNotExistError
		badID  *domain.InvalidItemIDError
		sold   *domain.ItemSoldOutError
		fund   *domain.InsufficientFundError
		denied *domain.UnauthorizedError
	)

	switch {
	case errors.As(err, &qReq):
		return map[string]string{
			"quantity":     strconv.FormatUint(uint64(qReq.Quantity), 10),
			"min_required": strconv.FormatUint(uint64(qReq.MinRequired), 10),
		}
	case errors.As(err, &qNone):
		return map[string]string{"available_quantity": strconv.FormatUint(uint64(qNone.AvailableQuantity), 10)}
	case errors.As(err, &badID):
		return map[string]string{"item_id": strconv.FormatUint(badID.ItemID, 10)}
	case errors.As(err, &sold):
		return map[string]string{
			"quantity": strconv.FormatUint(uint64(sold.Quantity), 10),
			"num_sold": strconv.FormatUint(uint64(sold.NumSold), 10),
		}
	case errors.As(err, &fund):
		return map[string]string{"price": fund.Price.String(), "allowed_fund": fund.AllowedFund.String()}
	case errors.As(err, &denied):
		return map[string]string{"caller": denied.Caller.String()}
	}
	return nil
}

func newErrorResponse(err error) (int, ErrorResponse) {
	k := classify(err)
	msg := err.Error()
	if k.status == http.StatusInternalServerError {
		msg = "internal error"
	}
	return k.status, ErrorResponse{Error: k.name, Message: msg, Fields: errorFields(err)}
}

// grpcError converts a service error into a gRPC status error.
func grpcError(err error) error {
	if err == nil {
		return nil
	}
	k := classify(err)
	msg := err.Error()
	if k.code == codes.Internal {
		msg = "internal error"
	}
	return status.Error(k.code, k.name+": "+msg)
}
