package server

import (
	"encoding/json"
	"net/http"

	"github.com/matzehuels/jumpmat/pkg/buildinfo"
)

type health struct {
	Status string `json:"status"`
	buildinfo.Info
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
