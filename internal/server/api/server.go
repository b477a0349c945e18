package api

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/ykhdr/hashbench/common/http/middleware"
	"github.com/ykhdr/hashbench/internal/hashcrack"
	"github.com/ykhdr/hashbench/internal/hashcrack/search"
	"github.com/ykhdr/hashbench/internal/messages/job"
	"github.com/ykhdr/hashbench/internal/store/jobstore"
	"github.com/ykhdr/hashbench/pkg/api"
)

const shutdownTimeout = 5 * time.Second

type Server struct {
	l       zerolog.Logger
	addr    string
	service *hashcrack.Service
}

func NewServer(addr string, service *hashcrack.Service) *Server {
	return &Server{
		addr:    addr,
		service: service,
		l: log.With().
			Str("domain", "api-server").
			Str("type", "http").
			Logger(),
	}
}

// Router builds the API routes. Searches started through it live as long
// as ctx, not as long as the request that started them.
func (s *Server) Router(ctx context.Context) http.Handler {
	router := mux.NewRouter()
	router.Use(middleware.RecoverMiddleware(s.l))
	router.Use(middleware.LoggingMiddleware(s.l))
	healthRouter := router.NewRoute().Subrouter()
	apiRouter := router.PathPrefix("/api/hash").Subrouter()
	apiRouter.Use(middleware.ApplicationJsonContentTypeMiddleware())
	apiRouter.HandleFunc("/crack", s.handleHashCrack(ctx)).Methods(http.MethodPost)
	apiRouter.HandleFunc("/crack", s.handleCancel).Methods(http.MethodDelete)
	apiRouter.HandleFunc("/status", s.handleHashStatus).Methods(http.MethodGet)
	apiRouter.HandleFunc("/jobs", s.handleJobs).Methods(http.MethodGet)
	apiRouter.HandleFunc("/md5", s.handleMd5).Methods(http.MethodPost)
	healthRouter.HandleFunc("/api/health", s.handleHealth).Methods(http.MethodGet)
	return router
}

// Start serves until ctx is done, then shuts the server down.
func (s *Server) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:    s.addr,
		Handler: s.Router(ctx),
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			s.l.Warn().Err(err).Msg("Api server shutdown failed")
		}
	}()
	s.l.Info().Str("address", s.addr).Msg("Api server is running")
	if err := server.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		s.l.Error().Err(err).Msg("Api server failed")
		return errors.Wrap(err, "api server failed")
	}
	s.l.Debug().Msg("Api server stopped")
	return nil
}

func (s *Server) handleHashCrack(ctx context.Context) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req api.CrackRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.l.Warn().Err(err).Msg("Invalid request")
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		h, err := s.service.BruteForceHash(ctx, req.Hash, req.MaxLength)
		if stderrors.Is(err, search.ErrInvalidInput) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err != nil {
			s.l.Warn().Err(err).Any("request", req).Msg("Failed to start search")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusAccepted)
		s.writeJson(w, api.CrackResponse{SearchId: h.ID()})
	}
}

func (s *Server) handleCancel(w http.ResponseWriter, _ *http.Request) {
	s.service.CancelBruteForce()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHashStatus(w http.ResponseWriter, r *http.Request) {
	searchId := r.URL.Query().Get("searchId")
	if searchId == "" {
		http.Error(w, "Missing searchId", http.StatusBadRequest)
		return
	}
	info, progress, err := s.service.Status(r.Context(), job.Id(searchId))
	if stderrors.Is(err, jobstore.NotFoundErr) {
		http.Error(w, "Search not found", http.StatusNotFound)
		return
	}
	if err != nil {
		s.l.Warn().Err(err).Str("search-id", searchId).Msg("Failed to load search")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	s.writeJson(w, job.ToStatusResponse(info, progress))
}

func (s *Server) handleJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := s.service.Jobs(r.Context())
	if err != nil {
		s.l.Warn().Err(err).Msg("Failed to list jobs")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	resp := make([]api.JobResponse, 0, len(jobs))
	for _, info := range jobs {
		resp = append(resp, api.JobResponse{
			SearchId:       string(info.ID),
			StatusResponse: *job.ToStatusResponse(info, nil),
			CreatedAt:      info.CreatedAt,
		})
	}
	s.writeJson(w, resp)
}

func (s *Server) handleMd5(w http.ResponseWriter, r *http.Request) {
	var req api.Md5Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	s.writeJson(w, api.Md5Response{Hash: s.service.GenerateMd5(req.Input)})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("OK")); err != nil {
		s.l.Warn().Err(err).Msg("Failed to write health response")
	}
}

func (s *Server) writeJson(w http.ResponseWriter, v any) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.l.Warn().Err(err).Msg("Failed to encode response")
	}
}
