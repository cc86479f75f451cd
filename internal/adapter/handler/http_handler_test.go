package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/mintmarket/internal/core/domain"
)

type httpEnv struct {
	*env
	server *httptest.Server
}

func newHTTPEnv(t *testing.T) *httpEnv {
	t.Helper()
	e := newEnv(t)

	h := NewHTTPHandler(e.svc, discardLog)
	srv := httptest.NewServer(h.Routes(
		RequestID,
		Recovery(discardLog),
		AccessLog(discardLog),
		Auth(e.tokens),
	))
	t.Cleanup(srv.Close)

	return &httpEnv{env: e, server: srv}
}

func (e *httpEnv) do(t *testing.T, method, path, authz string, body any, out any) *http.Response {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, e.server.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func (e *httpEnv) createItem(t *testing.T, price string, quantity uint32) uint64 {
	t.Helper()
	var created CreateItemResponse
	resp := e.do(t, http.MethodPost, "/api/items", "", CreateItemRequest{
		PayoutRecipient: testSeller.String(),
		Price:           price,
		Quantity:        quantity,
		RoyaltyBps:      250,
	}, &created)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return created.ItemID
}

func TestHTTP_HealthCheck(t *testing.T) {
	e := newHTTPEnv(t)

	var body map[string]string
	resp := e.do(t, http.MethodGet, "/health", "", nil, &body)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
	assert.NotEmpty(t, resp.Header.Get("X-Request-Id"))
}

func TestHTTP_CreateAndGetItem(t *testing.T) {
	e := newHTTPEnv(t)

	id := e.createItem(t, "100", 5)
	assert.Equal(t, uint64(1), id)

	var item ItemResponse
	resp := e.do(t, http.MethodGet, "/api/items/1", "", nil, &item)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, ItemResponse{
		ID:              1,
		PayoutRecipient: testSeller.String(),
		Price:           "100",
		Quantity:        5,
		NumSold:         0,
		RoyaltyBps:      250,
		Proceeds:        "0",
	}, item)
}

func TestHTTP_CreateItemErrors(t *testing.T) {
	e := newHTTPEnv(t)

	tests := []struct {
		name   string
		body   any
		status int
		code   string
	}{
		{"zero quantity", CreateItemRequest{PayoutRecipient: testSeller.String(), Price: "1"}, http.StatusBadRequest, "QuantityRequired"},
		{"bad recipient", CreateItemRequest{PayoutRecipient: "0x12", Price: "1", Quantity: 1}, http.StatusBadRequest, "InvalidAddress"},
		{"zero recipient", CreateItemRequest{PayoutRecipient: domain.Address{}.String(), Price: "1", Quantity: 1}, http.StatusBadRequest, "InvalidAddress"},
		{"negative price", CreateItemRequest{PayoutRecipient: testSeller.String(), Price: "-1", Quantity: 1}, http.StatusBadRequest, "InvalidAmount"},
		{"unknown field", map[string]any{"bogus": 1}, http.StatusBadRequest, "BadRequest"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var errResp ErrorResponse
			resp := e.do(t, http.MethodPost, "/api/items", "", tt.body, &errResp)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, tt.code, errResp.Error)
		})
	}

	var errResp ErrorResponse
	e.do(t, http.MethodPost, "/api/items", "", CreateItemRequest{PayoutRecipient: testSeller.String(), Price: "1"}, &errResp)
	assert.Equal(t, map[string]string{"quantity": "0", "min_required": "1"}, errResp.Fields)
}

func TestHTTP_BuyScenario(t *testing.T) {
	e := newHTTPEnv(t)
	itemID := e.createItem(t, "100", 5)
	buyPath := fmt.Sprintf("/api/items/%d/buy", itemID)

	// anonymous purchase is rejected
	resp := e.do(t, http.MethodPost, buyPath, "", BuyItemCopyRequest{MetadataBaseURI: "https://x/meta", Payment: "100"}, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	var cp CopyResponse
	resp = e.do(t, http.MethodPost, buyPath, e.bearer(t, testBuyer), BuyItemCopyRequest{
		MetadataBaseURI: "https://x/meta",
		Payment:         "100",
	}, &cp)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, testBuyer.String(), cp.Owner)
	assert.Equal(t, fmt.Sprintf("https://x/meta/%d", cp.ID), cp.Location)

	var resolved ResolveResponse
	resp = e.do(t, http.MethodGet, fmt.Sprintf("/api/copies/%d/uri", cp.ID), "", nil, &resolved)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, cp.Location, resolved.URI)

	var stored CopyResponse
	resp = e.do(t, http.MethodGet, fmt.Sprintf("/api/copies/%d", cp.ID), "", nil, &stored)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, cp, stored)

	var errResp ErrorResponse
	resp = e.do(t, http.MethodPost, buyPath, e.bearer(t, testSeller), BuyItemCopyRequest{
		MetadataBaseURI: "https://x/meta",
		Payment:         "50",
	}, &errResp)
	assert.Equal(t, http.StatusPaymentRequired, resp.StatusCode)
	assert.Equal(t, "InsufficientFund", errResp.Error)
	assert.Equal(t, map[string]string{"price": "100", "allowed_fund": "50"}, errResp.Fields)

	var item ItemResponse
	e.do(t, http.MethodGet, fmt.Sprintf("/api/items/%d", itemID), "", nil, &item)
	assert.Equal(t, uint32(1), item.NumSold)
	assert.Equal(t, "100", item.Proceeds)
}

func TestHTTP_BuyErrors(t *testing.T) {
	e := newHTTPEnv(t)
	itemID := e.createItem(t, "10", 1)
	authz := e.bearer(t, testBuyer)

	var errResp ErrorResponse
	resp := e.do(t, http.MethodPost, "/api/items/99/buy", authz, BuyItemCopyRequest{Payment: "10"}, &errResp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "QuantityDoesNotExist", errResp.Error)
	assert.Equal(t, "0", errResp.Fields["available_quantity"])

	resp = e.do(t, http.MethodPost, fmt.Sprintf("/api/items/%d/buy", itemID), authz, BuyItemCopyRequest{Payment: "10"}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = e.do(t, http.MethodPost, fmt.Sprintf("/api/items/%d/buy", itemID), authz, BuyItemCopyRequest{Payment: "10"}, &errResp)
	assert.Equal(t, http.StatusGone, resp.StatusCode)
	assert.Equal(t, "ItemSoldOut", errResp.Error)

	resp = e.do(t, http.MethodPost, "/api/items/abc/buy", authz, BuyItemCopyRequest{Payment: "10"}, &errResp)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = e.do(t, http.MethodPost, "/api/items/1/buy", "Bearer garbage", BuyItemCopyRequest{Payment: "10"}, &errResp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHTTP_BuyItemIDMustMatchPath(t *testing.T) {
	e := newHTTPEnv(t)
	first := e.createItem(t, "10", 1)
	second := e.createItem(t, "10", 1)
	authz := e.bearer(t, testBuyer)

	var errResp ErrorResponse
	resp := e.do(t, http.MethodPost, fmt.Sprintf("/api/items/%d/buy", first), authz,
		BuyItemCopyRequest{ItemID: second, Payment: "10"}, &errResp)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "BadRequest", errResp.Error)

	// neither item was touched
	for _, id := range []uint64{first, second} {
		var item ItemResponse
		e.do(t, http.MethodGet, fmt.Sprintf("/api/items/%d", id), "", nil, &item)
		assert.Equal(t, uint32(0), item.NumSold, "item %d", id)
	}

	// a matching body id is accepted
	resp = e.do(t, http.MethodPost, fmt.Sprintf("/api/items/%d/buy", first), authz,
		BuyItemCopyRequest{ItemID: first, Payment: "10"}, nil)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestHTTP_DestroyCopy(t *testing.T) {
	e := newHTTPEnv(t)
	itemID := e.createItem(t, "10", 2)

	var cp CopyResponse
	e.do(t, http.MethodPost, fmt.Sprintf("/api/items/%d/buy", itemID), e.bearer(t, testBuyer), BuyItemCopyRequest{Payment: "10", MetadataBaseURI: "m"}, &cp)
	copyPath := fmt.Sprintf("/api/copies/%d", cp.ID)

	var errResp ErrorResponse
	resp := e.do(t, http.MethodDelete, copyPath, e.bearer(t, testBuyer), nil, &errResp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "Unauthorized", errResp.Error)
	assert.Equal(t, testBuyer.String(), errResp.Fields["caller"])

	resp = e.do(t, http.MethodDelete, copyPath, e.bearer(t, testAdmin), nil, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = e.do(t, http.MethodGet, copyPath+"/uri", "", nil, &errResp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "InvalidItemId", errResp.Error)
}

func TestHTTP_Tokens(t *testing.T) {
	e := newHTTPEnv(t)

	var tok TokenResponse
	resp := e.do(t, http.MethodPost, "/api/tokens", e.bearer(t, testSeller), CreateTokenRequest{
		Owner:   testSeller.String(),
		Name:    "MyCollection",
		Symbol:  "MC",
		BaseURI: "https://y/meta",
	}, &tok)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "MyCollection", tok.Name)
	assert.NotEqual(t, domain.Address{}.String(), tok.Entity)

	var list TokenListResponse
	resp = e.do(t, http.MethodGet, "/api/accounts/"+testSeller.String()+"/tokens", "", nil, &list)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, list.Tokens, 1)
	assert.Equal(t, tok, list.Tokens[0])

	resp = e.do(t, http.MethodGet, "/api/accounts/nope/tokens", "", nil, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHTTP_SellerProceeds(t *testing.T) {
	e := newHTTPEnv(t)

	var p ProceedsResponse
	resp := e.do(t, http.MethodGet, "/api/accounts/"+testSeller.String()+"/proceeds", "", nil, &p)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "0", p.Proceeds)
	assert.True(t, strings.EqualFold(testSeller.String(), p.Account))
}
