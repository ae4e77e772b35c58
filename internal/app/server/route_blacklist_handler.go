package server

import (
	"net/http"

	"blacklist-api/internal/api/dto"
	"blacklist-api/internal/support"
)

func (s *Server) addToBlacklist(w http.ResponseWriter, r *http.Request) {
	req, err := dto.DecodeBlacklistCreateRequest(http.MaxBytesReader(w, r.Body, maxRequestBodyBytes))
	if err != nil {
		writeUseCaseError(w, r, err)
		return
	}

	resp, err := s.addEmail.Execute(r.Context(), req, support.ClientIP(r))
	if err != nil {
		writeUseCaseError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) checkBlacklist(w http.ResponseWriter, r *http.Request) {
	resp, err := s.checkEmail.Execute(r.Context(), r.PathValue("email"))
	if err != nil {
		writeUseCaseError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
