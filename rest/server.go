package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/facepay/flowgate/logger"
	"github.com/facepay/flowgate/persistence"
	"github.com/facepay/flowgate/service"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type Server struct {
	http.Server
	Port              int
	executionService  *service.FlowExecutionService
	definitionStorage persistence.DefinitionStorage
}

func NewServer(httpPort int, executionService *service.FlowExecutionService, definitionStorage persistence.DefinitionStorage) (*Server, error) {
	s := &Server{
		Server: http.Server{
			Addr: fmt.Sprintf(":%d", httpPort),
		},
		Port:              httpPort,
		executionService:  executionService,
		definitionStorage: definitionStorage,
	}

	router := mux.NewRouter()
	router.HandleFunc("/flow/start", s.HandleStartFlow).Methods(http.MethodPost)
	router.HandleFunc("/flow/{id}", s.HandleGetSession).Methods(http.MethodGet)
	router.HandleFunc("/flow/{id}/submit", s.HandleSubmit).Methods(http.MethodPost)
	router.HandleFunc("/flow/{id}/back", s.HandleGoBack).Methods(http.MethodPost)
	router.HandleFunc("/flow/{id}/cancel", s.HandleCancel).Methods(http.MethodPost)
	router.HandleFunc("/flow/{id}/ack", s.HandleAckError).Methods(http.MethodPost)
	router.HandleFunc("/definition", s.HandleSaveDefinition).Methods(http.MethodPost)
	router.HandleFunc("/definition/{name}", s.HandleGetDefinition).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	router.Use(loggingMiddleware)
	s.Handler = router
	return s, nil
}

func (s *Server) Start() error {
	logger.Info("starting http server on", zap.Int("port", s.Port))
	if err := s.ListenAndServe(); err != nil {
		return err
	}
	return nil
}

func (s *Server) Stop() error {
	logger.Info("stopping http server")
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	err := s.Shutdown(ctx)
	if err != nil {
		logger.Error("error shutting down http server")
	}
	return nil
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Info(r.RequestURI)
		next.ServeHTTP(w, r)
	})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondOK(w http.ResponseWriter, message string) {
	respondWithJSON(w, http.StatusOK, map[string]string{"message": message})
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}
