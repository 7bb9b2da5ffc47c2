package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/facepay/flowgate/flow"
	"github.com/facepay/flowgate/logger"
	"github.com/facepay/flowgate/model"
	"github.com/facepay/flowgate/persistence"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

func (s *Server) HandleSaveDefinition(w http.ResponseWriter, r *http.Request) {
	var def model.FlowDef
	if err := json.NewDecoder(r.Body).Decode(&def); err != nil {
		respondWithError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	defer r.Body.Close()
	if _, err := flow.Compile(&def); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.definitionStorage.SaveDefinition(def); err != nil {
		logger.Error("error saving flow definition", zap.String("flow", def.Name), zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "error saving flow definition")
		return
	}
	respondOK(w, "flow definition saved")
}

func (s *Server) HandleGetDefinition(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	def, err := s.definitionStorage.GetDefinition(name)
	if err != nil {
		var notFound persistence.DefinitionNotFoundError
		if errors.As(err, &notFound) {
			respondWithError(w, http.StatusNotFound, err.Error())
			return
		}
		logger.Error("error reading flow definition", zap.String("flow", name), zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "error reading flow definition")
		return
	}
	respondWithJSON(w, http.StatusOK, def)
}
