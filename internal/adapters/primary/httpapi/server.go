// Package httpapi is the HTTP boundary of §6's wire protocol: POST / with
// an X-Amz-Target header dispatching into the Router, and the JWKS
// endpoint each pool publishes its signing key under.
package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/antimatter-studios/cognito-local/internal/adapters/secondary/security"
	"github.com/antimatter-studios/cognito-local/internal/core/ports"
	"github.com/antimatter-studios/cognito-local/internal/router"
)

const targetHeader = "X-Amz-Target"

// Server wires the Router and the JWKS endpoint behind an
// otelhttp-instrumented http.Server, mirroring the teacher's gateway
// middleware chain (OTEL at the root, everything else inside).
type Server struct {
	http     *http.Server
	router   *router.Router
	keys     *security.KeyMaterial
	logger   *slog.Logger
}

func NewServer(addr string, r *router.Router, keys *security.KeyMaterial, logger *slog.Logger) *Server {
	s := &Server{router: r, keys: keys, logger: logger}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /", s.handleOperation)
	mux.HandleFunc("GET /{poolId}/.well-known/jwks.json", s.handleJWKS)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	var handler http.Handler = mux
	handler = otelhttp.NewHandler(handler, "cognito-local", otelhttp.WithSpanNameFormatter(func(operation string, r *http.Request) string {
		return r.Method + " " + r.URL.Path
	}))

	s.http = &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) ListenAndServe() error {
	return s.http.ListenAndServe()
}

func (s *Server) Addr() string {
	return s.http.Addr
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// handleOperation implements §6's dispatch: X-Amz-Target names
// "<ServiceName>.<Operation>"; everything up to the last dot is dropped.
func (s *Server) handleOperation(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.NewString()
	ctx := router.NewRequestContext(r.Context(), s.logger, requestID)

	target := r.Header.Get(targetHeader)
	op := target
	if idx := strings.LastIndex(target, "."); idx >= 0 {
		op = target[idx+1:]
	}

	body, err := readBody(r)
	if err != nil {
		writeError(w, &router.WireError{Type: "InvalidParameterException", Message: "could not read request body", Status: http.StatusBadRequest})
		return
	}

	resp, werr := s.router.Route(ctx, ports.OperationName(op), body)
	if werr != nil {
		wireErr, _ := werr.(*router.WireError)
		if wireErr == nil {
			wireErr = router.Translate(werr)
		}
		ctx.Logger.Warn("operation failed", "operation", op, "error", wireErr.Message)
		writeError(w, wireErr)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleJWKS serves the signing key for the named pool. Every pool shares
// the one process-wide keypair (§9), so the path segment is accepted but
// not used to select among multiple keys.
func (s *Server) handleJWKS(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.keys.JWKS())
}

func readBody(r *http.Request) ([]byte, error) {
	defer r.Body.Close()
	return io.ReadAll(r.Body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/x-amz-json-1.1")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, e *router.WireError) {
	w.Header().Set("Content-Type", "application/x-amz-json-1.1")
	w.WriteHeader(e.Status)
	_ = json.NewEncoder(w).Encode(map[string]string{"__type": e.Type, "message": e.Message})
}
