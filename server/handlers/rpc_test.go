package handlers

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/orangerpc/orange/acl"
	"github.com/orangerpc/orange/object"
	"github.com/orangerpc/orange/rpc"
	"github.com/orangerpc/orange/user"
)

const passwordHash = "5f4dcc3b5aa765d61d8327deb882cf99"

func digest(challenge, hash string) string {
	sum := sha1.Sum([]byte(challenge + hash))
	return hex.EncodeToString(sum[:])
}

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	logger := zap.NewNop()

	users := user.NewStore(logger)
	admin := &user.User{Username: "admin"}
	admin.AddGroup("admin")
	if err := users.Add(admin); err != nil {
		t.Fatal(err)
	}

	creds := user.StaticSource{{Username: "admin", PasswordHash: passwordHash}}
	acls := acl.NewEngine(acl.StaticSource{
		"admin": {
			{Name: "admin.acl", Content: "rpc system * x\n"},
		},
	}, logger)

	engine := rpc.NewEngine(users, creds, acls, logger)

	system := object.NewFuncObject("system")
	system.Register("echo", nil, func(_ context.Context, args json.RawMessage) (json.RawMessage, error) {
		return args, nil
	})
	if err := engine.Register(system); err != nil {
		t.Fatal(err)
	}

	return NewHandler(engine, rate.NewLimiter(rate.Inf, 1), logger)
}

func dispatch(t *testing.T, h *Handler, method string, params any) *Response {
	t.Helper()
	raw, err := json.Marshal(params)
	if err != nil {
		t.Fatal(err)
	}
	return h.Dispatch(context.Background(), &Request{
		JSONRPC: "2.0",
		ID:      json.RawMessage(`1`),
		Method:  method,
		Params:  raw,
	})
}

func loginSID(t *testing.T, h *Handler) string {
	t.Helper()
	resp := dispatch(t, h, "login", loginParams{
		Username:  "admin",
		Challenge: "abc123",
		Response:  digest("abc123", passwordHash),
	})
	if resp.Error != nil {
		t.Fatalf("login failed: %+v", resp.Error)
	}
	var result struct {
		SID string `json:"sid"`
	}
	if err := json.Unmarshal(resp.Result, &result); err != nil {
		t.Fatal(err)
	}
	return result.SID
}

func TestDispatchLoginAndCall(t *testing.T) {
	h := newTestHandler(t)
	sid := loginSID(t, h)
	if sid == "" {
		t.Fatal("expected a session id")
	}

	resp := dispatch(t, h, "call", callParams{
		SID:    sid,
		Object: "system",
		Method: "echo",
		Params: json.RawMessage(`{"n":1}`),
	})
	if resp.Error != nil {
		t.Fatalf("call failed: %+v", resp.Error)
	}
	if string(resp.Result) != `{"n":1}` {
		t.Errorf("unexpected result: %s", resp.Result)
	}
}

func TestDispatchErrorCodes(t *testing.T) {
	h := newTestHandler(t)
	sid := loginSID(t, h)

	tests := []struct {
		name   string
		method string
		params any
		code   int
	}{
		{
			name:   "bad credentials",
			method: "login",
			params: loginParams{Username: "admin", Challenge: "c", Response: "bad"},
			code:   CodeInvalidCredentials,
		},
		{
			name:   "no session",
			method: "call",
			params: callParams{Object: "system", Method: "echo"},
			code:   CodeUnauthorized,
		},
		{
			name:   "unknown object",
			method: "call",
			params: callParams{SID: sid, Object: "missing", Method: "echo"},
			code:   CodeNotFound,
		},
		{
			name:   "unknown object method",
			method: "call",
			params: callParams{SID: sid, Object: "system", Method: "missing"},
			code:   CodeMethodNotFound,
		},
		{
			name:   "unknown rpc method",
			method: "frobnicate",
			params: struct{}{},
			code:   CodeMethodNotFound,
		},
		{
			name:   "logout unknown sid",
			method: "logout",
			params: sidParams{SID: "0123456789abcdef0123456789abcdef"},
			code:   CodeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := dispatch(t, h, tt.method, tt.params)
			if resp.Error == nil {
				t.Fatalf("expected error response, got result %s", resp.Result)
			}
			if resp.Error.Code != tt.code {
				t.Errorf("expected code %d, got %d (%s)", tt.code, resp.Error.Code, resp.Error.Message)
			}
		})
	}
}

func TestDispatchLogoutInvalidatesSession(t *testing.T) {
	h := newTestHandler(t)
	sid := loginSID(t, h)

	if resp := dispatch(t, h, "logout", sidParams{SID: sid}); resp.Error != nil {
		t.Fatalf("logout failed: %+v", resp.Error)
	}

	resp := dispatch(t, h, "exists", sidParams{SID: sid})
	if resp.Error != nil {
		t.Fatalf("exists failed: %+v", resp.Error)
	}
	var result struct {
		Exists bool `json:"exists"`
	}
	if err := json.Unmarshal(resp.Result, &result); err != nil {
		t.Fatal(err)
	}
	if result.Exists {
		t.Error("session must not exist after logout")
	}
}

func TestDispatchListIsOpen(t *testing.T) {
	h := newTestHandler(t)

	// No login, no sid: list still answers.
	resp := h.Dispatch(context.Background(), &Request{JSONRPC: "2.0", ID: json.RawMessage(`1`), Method: "list"})
	if resp.Error != nil {
		t.Fatalf("list failed: %+v", resp.Error)
	}
	var infos []rpc.ObjectInfo
	if err := json.Unmarshal(resp.Result, &infos); err != nil {
		t.Fatal(err)
	}
	if len(infos) != 1 || infos[0].Name != "system" {
		t.Errorf("unexpected list result: %+v", infos)
	}
}

func TestDispatchChallenge(t *testing.T) {
	h := newTestHandler(t)
	resp := h.Dispatch(context.Background(), &Request{JSONRPC: "2.0", ID: json.RawMessage(`1`), Method: "challenge"})
	if resp.Error != nil {
		t.Fatalf("challenge failed: %+v", resp.Error)
	}
	var result struct {
		Challenge string `json:"challenge"`
	}
	if err := json.Unmarshal(resp.Result, &result); err != nil {
		t.Fatal(err)
	}
	if len(result.Challenge) != 32 {
		t.Errorf("expected 32 hex chars, got %q", result.Challenge)
	}
}

func TestLoginRateLimit(t *testing.T) {
	logger := zap.NewNop()
	users := user.NewStore(logger)
	engine := rpc.NewEngine(users, user.StaticSource{}, acl.NewEngine(acl.StaticSource{}, logger), logger)
	h := NewHandler(engine, rate.NewLimiter(0, 0), logger)

	resp := dispatch(t, h, "login", loginParams{Username: "admin"})
	if resp.Error == nil || resp.Error.Code != CodeRateLimited {
		t.Errorf("expected rate-limited error, got %+v", resp.Error)
	}
}

func TestServeHTTP(t *testing.T) {
	h := newTestHandler(t)

	body := `{"jsonrpc":"2.0","id":7,"method":"list"}`
	req := httptest.NewRequest("POST", "/rpc", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var resp Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp.Error != nil {
		t.Fatalf("unexpected error: %+v", resp.Error)
	}
	if string(resp.ID) != "7" {
		t.Errorf("response must echo the request id, got %s", resp.ID)
	}

	// Malformed request body.
	req = httptest.NewRequest("POST", "/rpc", bytes.NewReader([]byte("{broken")))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Error == nil || resp.Error.Code != CodeParse {
		t.Errorf("expected parse error, got %+v", resp.Error)
	}
}

func TestServeWebSocket(t *testing.T) {
	h := newTestHandler(t)

	srv := httptest.NewServer(http.HandlerFunc(h.ServeWebSocket))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("could not dial websocket: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"jsonrpc":"2.0","id":1,"method":"list"}`)); err != nil {
		t.Fatal(err)
	}
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatal(err)
	}

	var resp Response
	if err := json.Unmarshal(data, &resp); err != nil {
		t.Fatalf("invalid response frame: %v", err)
	}
	if resp.Error != nil {
		t.Fatalf("unexpected error: %+v", resp.Error)
	}

	// A malformed frame answers with a parse error and keeps the
	// connection alive.
	if err := conn.WriteMessage(websocket.TextMessage, []byte("{broken")); err != nil {
		t.Fatal(err)
	}
	_, data, err = conn.ReadMessage()
	if err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Error == nil || resp.Error.Code != CodeParse {
		t.Errorf("expected parse error, got %+v", resp.Error)
	}
}
