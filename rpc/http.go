package rpc

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"donorchain/native/donation"
)

const maxRequestBytes = 1 << 20 // 1 MiB

// Server exposes the donation engine over JSON-RPC, alongside health and
// metrics endpoints.
type Server struct {
	engine *donation.Engine
	logger *slog.Logger
}

func NewServer(engine *donation.Engine, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{engine: engine, logger: logger}
}

// Handler builds the HTTP routing tree.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Post("/", s.handle)
	return r
}

// Start serves the RPC interface on the supplied address and blocks.
func (s *Server) Start(addr string) error {
	s.logger.Info("starting JSON-RPC server", "addr", addr)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return srv.ListenAndServe()
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, 0, codeParseError, "unable to read request body", nil)
		return
	}
	var req RPCRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, 0, codeParseError, "invalid JSON payload", err.Error())
		return
	}
	if req.JSONRPC != "" && req.JSONRPC != jsonRPCVersion {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidRequest, "unsupported jsonrpc version", nil)
		return
	}

	switch req.Method {
	case "donation_submit":
		s.handleSubmit(w, &req)
	case "donation_claimBonus":
		s.handleClaimBonus(w, &req)
	case "donation_setMinimum":
		s.handleSetMinimum(w, &req)
	case "donation_togglePause":
		s.handleTogglePause(w, &req)
	case "donation_withdraw":
		s.handleWithdraw(w, &req)
	case "donation_getDonor":
		s.handleGetDonor(w, &req)
	case "donation_getTransaction":
		s.handleGetTransaction(w, &req)
	case "donation_listByDonor":
		s.handleListByDonor(w, &req)
	case "donation_getStatistics":
		s.handleGetStatistics(w, &req)
	default:
		writeError(w, http.StatusNotFound, req.ID, codeMethodNotFound, "method not found", req.Method)
	}
}
