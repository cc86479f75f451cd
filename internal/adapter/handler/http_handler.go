package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

const maxBodyBytes = 1 << 20

type HTTPHandler struct {
	market marketService
	log    *slog.Logger
}

func NewHTTPHandler(market marketService, log *slog.Logger) *HTTPHandler {
	return &HTTPHandler{market: market, log: log.With("handler", "http")}
}

// Routes mounts the API on a chi router behind the given middleware.
func (h *HTTPHandler) Routes(mws ...func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(mws...)

	r.Get("/health", h.HealthCheck)

	r.Route("/api", func(r chi.Router) {
		r.Post("/items", h.CreateItem)
		r.Get("/items/{id}", h.GetItem)
		r.Post("/items/{id}/buy", h.BuyItemCopy)

		r.Get("/copies/{id}", h.GetCopy)
		r.Get("/copies/{id}/uri", h.Resolve)
		r.Delete("/copies/{id}", h.DestroyCopy)

		r.Post("/tokens", h.CreateToken)
		r.Get("/accounts/{address}/tokens", h.UserTokens)
		r.Get("/accounts/{address}/proceeds", h.SellerProceeds)
	})

	return r
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HTTPHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	var req CreateItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	recipient, err := parseAddress("payout_recipient", req.PayoutRecipient)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	price, err := parseAmount("price", req.Price)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	id, err := h.market.CreateItem(r.Context(), recipient, price, req.Quantity, req.RoyaltyBps)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, CreateItemResponse{ItemID: id})
}

func (h *HTTPHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	item, err := h.market.GetItem(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	proceeds, err := h.market.Proceeds(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toItemResponse(item, proceeds))
}

func (h *HTTPHandler) BuyItemCopy(w http.ResponseWriter, r *http.Request) {
	buyer, err := callerFrom(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	itemID, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var req BuyItemCopyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if req.ItemID != 0 && req.ItemID != itemID {
		h.writeError(w, r, fmt.Errorf("%w: item_id %d does not match path id %d", errBadRequest, req.ItemID, itemID))
		return
	}
	payment, err := parseAmount("payment", req.Payment)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	requestID := req.RequestID
	if requestID == "" {
		requestID = r.Header.Get("X-Request-Id")
	}

	cp, err := h.market.Purchase(r.Context(), requestID, buyer, itemID, req.MetadataBaseURI, payment)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toCopyResponse(cp))
}

func (h *HTTPHandler) GetCopy(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	cp, err := h.market.GetCopy(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toCopyResponse(cp))
}

func (h *HTTPHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	uri, err := h.market.Resolve(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, ResolveResponse{URI: uri})
}

func (h *HTTPHandler) DestroyCopy(w http.ResponseWriter, r *http.Request) {
	caller, err := callerFrom(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.market.DestroyCopy(r.Context(), caller, id); err != nil {
		h.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *HTTPHandler) CreateToken(w http.ResponseWriter, r *http.Request) {
	caller, err := callerFrom(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var req CreateTokenRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	owner, err := parseAddress("owner", req.Owner)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	tok, err := h.market.CreateToken(r.Context(), caller, owner, req.Name, req.Symbol, req.BaseURI)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toTokenResponse(*tok))
}

func (h *HTTPHandler) UserTokens(w http.ResponseWriter, r *http.Request) {
	account, err := parseAddress("address", chi.URLParam(r, "address"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	tokens, err := h.market.UserTokens(r.Context(), account)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	resp := TokenListResponse{Tokens: make([]TokenResponse, 0, len(tokens))}
	for _, tok := range tokens {
		resp.Tokens = append(resp.Tokens, toTokenResponse(tok))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *HTTPHandler) SellerProceeds(w http.ResponseWriter, r *http.Request) {
	account, err := parseAddress("address", chi.URLParam(r, "address"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	total, err := h.market.SellerProceeds(r.Context(), account)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, ProceedsResponse{Account: account.String(), Proceeds: total.String()})
}

func (h *HTTPHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := newErrorResponse(err)
	if status >= http.StatusInternalServerError {
		h.log.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, body)
}

func pathID(r *http.Request, name string) (uint64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q is not a valid id", errBadRequest, name, raw)
	}
	return id, nil
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: invalid request body: %v", errBadRequest, err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
