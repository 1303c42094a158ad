package server

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/samber/mo"
	"github.com/streamio/streamio/errs"
	"github.com/streamio/streamio/log"
	"github.com/streamio/streamio/source"
)

// maxRequestBody bounds the /extract payload.
const maxRequestBody = 64 << 10

// ExtractRequest is the body of POST /extract.
type ExtractRequest struct {
	ID      string  `json:"id" jsonschema:"required,description=Catalog identifier passed upstream verbatim"`
	Type    string  `json:"type" jsonschema:"required,enum=movie,enum=tv,enum=series"`
	Season  *uint32 `json:"season,omitempty" jsonschema:"description=Required when type is tv"`
	Episode *uint32 `json:"episode,omitempty" jsonschema:"description=Required when type is tv"`
}

// Request converts the body into a resolve request.
func (e ExtractRequest) Request() (source.Request, error) {
	kind, err := source.ParseKind(e.Type)
	if err != nil {
		return source.Request{}, err
	}

	return source.Request{
		ID:      e.ID,
		Kind:    kind,
		Season:  mo.PointerToOption(e.Season),
		Episode: mo.PointerToOption(e.Episode),
	}, nil
}

// ExtractResponse is the reply of POST /extract. Data holds the rewritten playlist.
type ExtractResponse struct {
	OK    bool   `json:"ok"`
	Data  string `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var body ExtractRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody)).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, ExtractResponse{Error: "invalid request body"})
		return
	}

	req, err := body.Request()
	if err != nil {
		writeJSON(w, http.StatusOK, ExtractResponse{Error: err.Error()})
		return
	}

	res, err := s.resolver.Resolve(r.Context(), req, webBase(r))
	switch {
	case err != nil:
		log.WithFields(log.Fields{"request": req.String()}).Warnf("resolve: %s", errs.Detail(err))
		writeJSON(w, http.StatusOK, ExtractResponse{Error: err.Error()})
	case res.Playlist == "":
		writeJSON(w, http.StatusOK, ExtractResponse{Error: "Not found"})
	default:
		writeJSON(w, http.StatusOK, ExtractResponse{OK: true, Data: res.Playlist})
	}
}
