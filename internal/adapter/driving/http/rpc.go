package httphandler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/ericfisherdev/unreadwatch/internal/application"
)

// maxRPCBody caps the size of an inbound method call.
const maxRPCBody = 1 << 20

// Error codes carried in rpcError.Code.
const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeInternalError  = -32603
	codeSignInRequired = -32001
)

type rpcRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// RPC handles one inbound method call. Protocol-level failures are reported
// in the envelope with HTTP 200.
func (h *Handler) RPC(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRPCBody+1))
	if err != nil || len(body) > maxRPCBody {
		writeRPCError(w, nil, codeInvalidRequest, "Request too large.")
		return
	}

	var req rpcRequest
	if err := json.Unmarshal(bytes.TrimSpace(body), &req); err != nil {
		writeRPCError(w, nil, codeParseError, "Parse error.")
		return
	}
	if req.Method == "" || (req.JSONRPC != "" && req.JSONRPC != "2.0") {
		writeRPCError(w, req.ID, codeInvalidRequest, "Invalid request.")
		return
	}

	result, err := h.agent.Call(r.Context(), req.Method, req.Params)
	if err != nil {
		code, message := h.rpcErrorFor(req.Method, err)
		writeRPCError(w, req.ID, code, message)
		return
	}

	raw, err := json.Marshal(result)
	if err != nil {
		h.logger.Error("failed to encode rpc result", "method", req.Method, "error", err)
		writeRPCError(w, req.ID, codeInternalError, "Internal error.")
		return
	}

	writeJSON(w, http.StatusOK, rpcResponse{JSONRPC: "2.0", ID: req.ID, Result: raw})
}

// rpcErrorFor maps application errors to an envelope code and message.
func (h *Handler) rpcErrorFor(method string, err error) (int, string) {
	message := err.Error()
	var me *application.MethodError
	if errors.As(err, &me) {
		message = me.Message
	}

	switch {
	case errors.Is(err, application.ErrMethodNotFound):
		return codeMethodNotFound, message
	case errors.Is(err, application.ErrInvalidParams):
		return codeInvalidParams, message
	case errors.Is(err, application.ErrNotSignedIn):
		return codeSignInRequired, message
	default:
		h.logger.Error("rpc method failed", "method", method, "error", err)
		return codeInternalError, "Internal error."
	}
}

func writeRPCError(w http.ResponseWriter, id json.RawMessage, code int, message string) {
	writeJSON(w, http.StatusOK, rpcResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error:   &rpcError{Code: code, Message: message},
	})
}
