package server

import (
	"net/http"

	"github.com/streamio/streamio/constant"
)

type healthBody struct {
	OK      bool   `json:"ok"`
	Version string `json:"version"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, healthBody{OK: true, Version: constant.Version})
}
