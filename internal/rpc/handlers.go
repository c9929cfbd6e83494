// Copyright (c) 2025-2026 complex (complex@ft.hn)
// See LICENSE for licensing information

package rpc

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/complex-gh/ethwallet"
)

var (
	errBadRequest       = errors.New("invalid request body")
	errMethodNotAllowed = errors.New("method not allowed")
	errNotFound         = errors.New("not found")
)

// GenerateRequest is the body of POST /generate. Zero values select the
// server defaults.
type GenerateRequest struct {
	Strength   int    `json:"strength,omitempty"`
	Path       string `json:"path,omitempty"`
	Passphrase string `json:"passphrase,omitempty"`
}

// RestoreRequest is the body of POST /restore.
type RestoreRequest struct {
	Mnemonic   string `json:"mnemonic"`
	Path       string `json:"path,omitempty"`
	Passphrase string `json:"passphrase,omitempty"`
}

// DeriveRequest is the body of POST /derive. With Count above 1 the
// response data is a list of Count records starting at Index.
type DeriveRequest struct {
	Mnemonic   string `json:"mnemonic"`
	Index      uint32 `json:"index"`
	Count      int    `json:"count,omitempty"`
	Passphrase string `json:"passphrase,omitempty"`
}

// ValidateRequest is the body of POST /validate.
type ValidateRequest struct {
	Mnemonic string `json:"mnemonic"`
}

// AddressRequest is the body of POST /address.
type AddressRequest struct {
	PrivateKey string `json:"privateKey"`
}

// XPubRequest is the body of POST /xpub.
type XPubRequest struct {
	Mnemonic   string `json:"mnemonic"`
	Account    uint32 `json:"account"`
	Passphrase string `json:"passphrase,omitempty"`
}

func (s *Server) service(passphrase string) *ethwallet.Service {
	if passphrase == "" {
		return s.svc
	}
	return s.svc.WithPassphrase(passphrase)
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := decode(w, r, &req); err != nil {
		respond(w, nil, err)
		return
	}
	rec, err := s.service(req.Passphrase).Generate(req.Strength, req.Path)
	respond(w, rec, err)
}

func (s *Server) handleRestore(w http.ResponseWriter, r *http.Request) {
	var req RestoreRequest
	if err := decode(w, r, &req); err != nil {
		respond(w, nil, err)
		return
	}
	rec, err := s.service(req.Passphrase).Restore(req.Mnemonic, req.Path)
	respond(w, rec, err)
}

func (s *Server) handleDerive(w http.ResponseWriter, r *http.Request) {
	var req DeriveRequest
	if err := decode(w, r, &req); err != nil {
		respond(w, nil, err)
		return
	}
	svc := s.service(req.Passphrase)
	if req.Count > 1 {
		recs, err := svc.DeriveRange(r.Context(), req.Mnemonic, req.Index, req.Count)
		respond(w, recs, err)
		return
	}
	rec, err := svc.DeriveChild(req.Mnemonic, req.Index)
	respond(w, rec, err)
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req ValidateRequest
	if err := decode(w, r, &req); err != nil {
		respond(w, nil, err)
		return
	}
	respond(w, s.svc.Validate(req.Mnemonic), nil)
}

func (s *Server) handleAddress(w http.ResponseWriter, r *http.Request) {
	var req AddressRequest
	if err := decode(w, r, &req); err != nil {
		respond(w, nil, err)
		return
	}
	info, err := s.svc.AddressFromPrivateKey(req.PrivateKey)
	respond(w, info, err)
}

func (s *Server) handleXPub(w http.ResponseWriter, r *http.Request) {
	var req XPubRequest
	if err := decode(w, r, &req); err != nil {
		respond(w, nil, err)
		return
	}
	keys, err := s.service(req.Passphrase).AccountKeys(req.Mnemonic, req.Account)
	respond(w, keys, err)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		writeEnvelope(w, http.StatusMethodNotAllowed, ethwallet.Failure(errMethodNotAllowed))
		return
	}
	respond(w, map[string]string{"status": "ok"}, nil)
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeEnvelope(w, http.StatusNotFound, ethwallet.Failure(fmt.Errorf("%w: %s", errNotFound, r.URL.Path)))
}
