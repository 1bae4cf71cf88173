// Package rpc serves the marketplace read surface over HTTP: a JSON-RPC
// style POST endpoint backed by the market module, a prometheus metrics
// endpoint and a health probe.
package rpc

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"nftmarket/rpc/modules"
)

type rpcRequest struct {
	ID     json.RawMessage `json:"id,omitempty"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params,omitempty"`
}

type rpcError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

type rpcResponse struct {
	ID     json.RawMessage `json:"id,omitempty"`
	Result interface{}     `json:"result,omitempty"`
	Error  *rpcError       `json:"error,omitempty"`
}

// Server dispatches marketplace RPC methods.
type Server struct {
	market *modules.MarketModule
	admin  *modules.AdminModule
	logger *slog.Logger
}

// NewServer constructs a server around the supplied modules. The admin module
// may be nil, leaving only the read surface routable.
func NewServer(market *modules.MarketModule, admin *modules.AdminModule, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{market: market, admin: admin, logger: logger}
}

// Router builds the HTTP routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Post("/", s.handleRPC)
	return r
}

func (s *Server) handleRPC(w http.ResponseWriter, r *http.Request) {
	var req rpcRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, nil, &rpcError{Code: -32700, Message: "parse error", Data: err.Error()})
		return
	}
	result, merr := s.dispatch(req.Method, req.Params)
	if merr != nil {
		s.logger.Warn("rpc request failed", "method", req.Method, "error", merr.Message)
		s.writeError(w, merr.HTTPStatus, req.ID, &rpcError{Code: merr.Code, Message: merr.Message, Data: merr.Data})
		return
	}
	s.writeJSON(w, http.StatusOK, rpcResponse{ID: req.ID, Result: result})
}

func (s *Server) dispatch(method string, params json.RawMessage) (interface{}, *modules.ModuleError) {
	switch method {
	case "market_getSale":
		return s.market.GetSale(params)
	case "market_listSales":
		return s.market.ListSales(params)
	case "market_currentPrice":
		return s.market.CurrentPrice(params)
	case "market_listEvents":
		return s.market.ListEvents(params)
	case "market_isTrusted":
		return s.market.IsTrusted(params)
	case "market_owner":
		if s.admin == nil {
			break
		}
		return s.admin.Owner()
	case "market_registerContract":
		if s.admin == nil {
			break
		}
		return s.admin.RegisterContract(params)
	case "market_revokeContract":
		if s.admin == nil {
			break
		}
		return s.admin.RevokeContract(params)
	case "market_transferOwnership":
		if s.admin == nil {
			break
		}
		return s.admin.TransferOwnership(params)
	}
	return nil, &modules.ModuleError{HTTPStatus: http.StatusNotFound, Code: -32601, Message: "method not found", Data: method}
}

func (s *Server) writeError(w http.ResponseWriter, status int, id json.RawMessage, rerr *rpcError) {
	if status == 0 {
		status = http.StatusInternalServerError
	}
	s.writeJSON(w, status, rpcResponse{ID: id, Error: rerr})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body rpcResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("failed to encode rpc response", "error", err)
	}
}
