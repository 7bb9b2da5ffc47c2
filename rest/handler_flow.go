package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/facepay/flowgate/logger"
	"github.com/facepay/flowgate/model"
	"github.com/facepay/flowgate/persistence"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

func (s *Server) HandleStartFlow(w http.ResponseWriter, r *http.Request) {
	var startReq model.FlowStartRequest
	if err := json.NewDecoder(r.Body).Decode(&startReq); err != nil {
		respondWithError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	defer r.Body.Close()
	snapshot, err := s.executionService.StartFlow(startReq.FlowName, startReq.Input)
	if err != nil {
		var notFound persistence.DefinitionNotFoundError
		if errors.As(err, &notFound) {
			respondWithError(w, http.StatusNotFound, err.Error())
			return
		}
		logger.Error("error starting flow", zap.String("flow", startReq.FlowName), zap.Error(err))
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondWithJSON(w, http.StatusCreated, snapshot)
}

func (s *Server) HandleGetSession(w http.ResponseWriter, r *http.Request) {
	sessionId := mux.Vars(r)["id"]
	snapshot, err := s.executionService.Get(sessionId)
	if err != nil {
		respondWithError(w, http.StatusNotFound, err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, snapshot)
}

func (s *Server) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	sessionId := mux.Vars(r)["id"]
	var submitReq model.StageSubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&submitReq); err != nil {
		respondWithError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	defer r.Body.Close()
	snapshot, err := s.executionService.Submit(r.Context(), sessionId, submitReq.Input)
	if err != nil {
		respondSessionError(w, sessionId, err)
		return
	}
	respondWithJSON(w, http.StatusOK, snapshot)
}

func (s *Server) HandleGoBack(w http.ResponseWriter, r *http.Request) {
	sessionId := mux.Vars(r)["id"]
	snapshot, err := s.executionService.GoBack(sessionId)
	if err != nil {
		respondSessionError(w, sessionId, err)
		return
	}
	respondWithJSON(w, http.StatusOK, snapshot)
}

func (s *Server) HandleCancel(w http.ResponseWriter, r *http.Request) {
	sessionId := mux.Vars(r)["id"]
	if err := s.executionService.Cancel(sessionId); err != nil {
		respondSessionError(w, sessionId, err)
		return
	}
	respondOK(w, "session cancelled")
}

func (s *Server) HandleAckError(w http.ResponseWriter, r *http.Request) {
	sessionId := mux.Vars(r)["id"]
	if err := s.executionService.AckError(sessionId); err != nil {
		respondSessionError(w, sessionId, err)
		return
	}
	respondOK(w, "error acknowledged")
}

func respondSessionError(w http.ResponseWriter, sessionId string, err error) {
	var busy model.BusyError
	if errors.As(err, &busy) {
		respondWithError(w, http.StatusConflict, err.Error())
		return
	}
	var notFound persistence.SessionNotFoundError
	if errors.As(err, &notFound) {
		respondWithError(w, http.StatusNotFound, err.Error())
		return
	}
	var ended model.SessionEndedError
	if errors.As(err, &ended) {
		respondWithError(w, http.StatusGone, err.Error())
		return
	}
	var atEntry model.AtEntryStageError
	if errors.As(err, &atEntry) {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	logger.Error("error handling session request", zap.String("session", sessionId), zap.Error(err))
	respondWithError(w, http.StatusInternalServerError, "internal error")
}
