// Package handlers implements the JSON-RPC surface of the backend over
// plain HTTP POST and websocket frames. Every request is a single JSON-RPC
// 2.0 object whose method is one of: challenge, login, logout, call, list,
// exists.
package handlers

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/orangerpc/orange/rpc"
)

// Request is a single incoming JSON-RPC 2.0 request.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
}

// Response is the JSON-RPC 2.0 reply to one request.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// loginParams carries the challenge-response handshake fields.
type loginParams struct {
	Username  string `json:"username"`
	Challenge string `json:"challenge"`
	Response  string `json:"response"`
}

// callParams addresses an object method call within a session.
type callParams struct {
	SID    string          `json:"sid"`
	Object string          `json:"object"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params"`
}

// sidParams is the parameter shape of logout, list and exists.
type sidParams struct {
	SID string `json:"sid"`
}

// Handler dispatches decoded JSON-RPC requests to the engine. The login
// limiter bounds handshake attempts across all transports; rate limiting
// is a transport concern, not a core one.
type Handler struct {
	engine       *rpc.Engine
	loginLimiter *rate.Limiter
	logger       *zap.Logger
}

// NewHandler creates the JSON-RPC dispatch handler.
func NewHandler(engine *rpc.Engine, loginLimiter *rate.Limiter, logger *zap.Logger) *Handler {
	return &Handler{
		engine:       engine,
		loginLimiter: loginLimiter,
		logger:       logger,
	}
}

// Dispatch runs one request and builds its response. It never returns an
// error; every failure becomes a JSON-RPC error object.
func (h *Handler) Dispatch(ctx context.Context, req *Request) *Response {
	resp := &Response{JSONRPC: "2.0", ID: req.ID}

	var result any
	var err error

	switch req.Method {
	case "challenge":
		result, err = h.challenge()
	case "login":
		result, err = h.login(req.Params)
	case "logout":
		result, err = h.logout(req.Params)
	case "call":
		return h.call(ctx, req)
	case "list":
		result, err = h.list(req.Params)
	case "exists":
		result, err = h.exists(req.Params)
	default:
		resp.Error = &Error{Code: CodeMethodNotFound, Message: "no such method: " + req.Method}
		return resp
	}

	if err != nil {
		resp.Error = toError(err)
		return resp
	}

	raw, err := json.Marshal(result)
	if err != nil {
		h.logger.Error("could not encode result", zap.Error(err))
		resp.Error = &Error{Code: CodeInternal, Message: "could not encode result"}
		return resp
	}
	resp.Result = raw
	return resp
}

// challenge hands out a random nonce a client may use as its login
// challenge. The server keeps no record of it; the handshake response is
// self-verifying against the stored hash, so any client-chosen challenge
// works equally well.
func (h *Handler) challenge() (any, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return nil, err
	}
	return map[string]string{"challenge": hex.EncodeToString(buf)}, nil
}

func (h *Handler) login(params json.RawMessage) (any, error) {
	if !h.loginLimiter.Allow() {
		h.logger.Warn("login attempt rate limited")
		return nil, errRateLimited
	}

	var p loginParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, errInvalidParams
	}

	token, err := h.engine.Login(p.Username, p.Challenge, p.Response)
	if err != nil {
		return nil, err
	}
	return map[string]string{"sid": token}, nil
}

func (h *Handler) logout(params json.RawMessage) (any, error) {
	var p sidParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, errInvalidParams
	}
	if err := h.engine.Logout(p.SID); err != nil {
		return nil, err
	}
	return map[string]bool{"ok": true}, nil
}

func (h *Handler) call(ctx context.Context, req *Request) *Response {
	resp := &Response{JSONRPC: "2.0", ID: req.ID}

	var p callParams
	if err := json.Unmarshal(req.Params, &p); err != nil {
		resp.Error = toError(errInvalidParams)
		return resp
	}

	result, err := h.engine.Call(ctx, p.SID, p.Object, p.Method, p.Params)
	if err != nil {
		resp.Error = toError(err)
		return resp
	}
	if result == nil {
		result = json.RawMessage(`null`)
	}
	resp.Result = result
	return resp
}

func (h *Handler) list(params json.RawMessage) (any, error) {
	var p sidParams
	if len(params) > 0 {
		// The sid is accepted but unused: list is intentionally open.
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, errInvalidParams
		}
	}
	return h.engine.List(p.SID), nil
}

func (h *Handler) exists(params json.RawMessage) (any, error) {
	var p sidParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, errInvalidParams
	}
	return map[string]bool{"exists": h.engine.SessionExists(p.SID)}, nil
}

// ServeHTTP handles a single JSON-RPC request on POST /rpc.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeResponse(w, h.logger, &Response{
			JSONRPC: "2.0",
			Error:   &Error{Code: CodeParse, Message: "invalid JSON-RPC request"},
		})
		return
	}

	resp := h.Dispatch(r.Context(), &req)
	writeResponse(w, h.logger, resp)
}

func writeResponse(w http.ResponseWriter, logger *zap.Logger, resp *Response) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.Error("could not write response", zap.Error(err))
	}
}
