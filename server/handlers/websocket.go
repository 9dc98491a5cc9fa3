package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// ServeWebSocket upgrades the connection and serves JSON-RPC over it, one
// request per text frame, one response frame per request. The connection
// stays open until the client closes it; a malformed frame gets a parse
// error response and the connection continues.
func (h *Handler) ServeWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("failed to upgrade websocket", zap.Error(err))
		return
	}
	defer conn.Close()

	h.logger.Debug("websocket client connected", zap.String("remote_addr", r.RemoteAddr))

	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return
			}
			h.logger.Debug("websocket read failed", zap.Error(err))
			return
		}

		if messageType != websocket.TextMessage {
			continue
		}

		var req Request
		var resp *Response
		if err := json.Unmarshal(data, &req); err != nil {
			resp = &Response{
				JSONRPC: "2.0",
				Error:   &Error{Code: CodeParse, Message: "invalid JSON-RPC request"},
			}
		} else {
			resp = h.Dispatch(r.Context(), &req)
		}

		out, err := json.Marshal(resp)
		if err != nil {
			h.logger.Error("could not encode websocket response", zap.Error(err))
			continue
		}
		if err := conn.WriteMessage(websocket.TextMessage, out); err != nil {
			h.logger.Debug("websocket write failed", zap.Error(err))
			return
		}
	}
}
