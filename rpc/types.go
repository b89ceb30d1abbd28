package rpc

import (
	"encoding/json"
	"errors"
	"net/http"

	"donorchain/native/donation"
)

const jsonRPCVersion = "2.0"

const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeServerError    = -32000
	codeUnauthorized   = -32001
	codeNotFound       = -32004
	codePaused         = -32010
	codeInvalidAmount  = -32011
	codeAlreadyClaimed = -32012
	codeThreshold      = -32013
	codeTransfer       = -32014
)

type RPCRequest struct {
	JSONRPC string            `json:"jsonrpc"`
	Method  string            `json:"method"`
	Params  []json.RawMessage `json:"params"`
	ID      int               `json:"id"`
}

type RPCResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *RPCError   `json:"error,omitempty"`
}

type RPCError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func writeResult(w http.ResponseWriter, id int, result interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(RPCResponse{JSONRPC: jsonRPCVersion, ID: id, Result: result})
}

func writeError(w http.ResponseWriter, status int, id int, code int, message string, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(RPCResponse{
		JSONRPC: jsonRPCVersion,
		ID:      id,
		Error:   &RPCError{Code: code, Message: message, Data: data},
	})
}

// writeEngineError maps donation engine errors onto JSON-RPC error codes.
func writeEngineError(w http.ResponseWriter, id int, err error) {
	switch {
	case errors.Is(err, donation.ErrOwnerOnly), errors.Is(err, donation.ErrUnauthorized):
		writeError(w, http.StatusForbidden, id, codeUnauthorized, err.Error(), nil)
	case errors.Is(err, donation.ErrNotFound), errors.Is(err, donation.ErrInvalidTokenID):
		writeError(w, http.StatusNotFound, id, codeNotFound, err.Error(), nil)
	case errors.Is(err, donation.ErrContractPaused):
		writeError(w, http.StatusConflict, id, codePaused, err.Error(), nil)
	case errors.Is(err, donation.ErrZeroAmount), errors.Is(err, donation.ErrInvalidAmount), errors.Is(err, donation.ErrInvalidAddress):
		writeError(w, http.StatusBadRequest, id, codeInvalidAmount, err.Error(), nil)
	case errors.Is(err, donation.ErrAlreadyClaimed):
		writeError(w, http.StatusConflict, id, codeAlreadyClaimed, err.Error(), nil)
	case errors.Is(err, donation.ErrInsufficientBalance):
		writeError(w, http.StatusConflict, id, codeThreshold, err.Error(), nil)
	case errors.Is(err, donation.ErrTransferFailed), errors.Is(err, donation.ErrMintFailed):
		writeError(w, http.StatusBadGateway, id, codeTransfer, err.Error(), nil)
	default:
		writeError(w, http.StatusInternalServerError, id, codeServerError, err.Error(), nil)
	}
}

// rejectionReason labels rejected operations for metrics.
func rejectionReason(err error) string {
	switch {
	case errors.Is(err, donation.ErrOwnerOnly), errors.Is(err, donation.ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, donation.ErrNotFound):
		return "not_found"
	case errors.Is(err, donation.ErrContractPaused):
		return "paused"
	case errors.Is(err, donation.ErrZeroAmount):
		return "zero_amount"
	case errors.Is(err, donation.ErrInvalidAmount):
		return "below_minimum"
	case errors.Is(err, donation.ErrAlreadyClaimed):
		return "already_claimed"
	case errors.Is(err, donation.ErrInsufficientBalance):
		return "threshold_not_met"
	case errors.Is(err, donation.ErrTransferFailed):
		return "transfer_failed"
	case errors.Is(err, donation.ErrMintFailed):
		return "mint_failed"
	default:
		return "internal"
	}
}
