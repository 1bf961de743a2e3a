package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/livp123/netxconf/internal/status"
	"github.com/livp123/netxconf/pkg/errors"
)

// writeLoadError is writeError for documents read back from the store. A
// malformed stored document is a server fault, not a bad request.
func writeLoadError(w http.ResponseWriter, err error) {
	if errors.Is(err, errors.ErrFormat) {
		writeAPIError(w, http.StatusInternalServerError, ErrCodeInternalError, "stored document is malformed: "+err.Error())
		return
	}
	writeError(w, err)
}

func (s *Server) handleBlocked(w http.ResponseWriter, r *http.Request) {
	text, err := s.store.Get(r.Context(), s.cfg.Keys.Messages)
	if err != nil {
		writeError(w, err)
		return
	}
	events := status.ParseBlocked(text, s.now())
	if events == nil {
		events = []status.BlockEvent{}
	}
	writeJSON(w, http.StatusOK, events)
}

func (s *Server) handleIptstate(w http.ResponseWriter, r *http.Request) {
	text, err := s.store.Get(r.Context(), s.cfg.Keys.Iptstate)
	if err != nil {
		writeError(w, err)
		return
	}
	conns := status.ParseIptstate(text)
	if conns == nil {
		conns = []status.Connection{}
	}
	writeJSON(w, http.StatusOK, conns)
}

// interfaceKey resolves the store key of ifName. Names that would step out
// of the interface prefix are rejected.
func (s *Server) interfaceKey(ifName string) (string, error) {
	if ifName == "" || ifName == "." || ifName == ".." || strings.ContainsAny(ifName, `/\`) {
		return "", errors.NewKeyError(ifName)
	}
	return s.cfg.Keys.InterfaceKey(ifName), nil
}

// handleGetInterface returns one interface config as a key/value object.
// handleGetInterface 以键值对象返回网卡配置。
func (s *Server) handleGetInterface(w http.ResponseWriter, r *http.Request) {
	key, err := s.interfaceKey(chi.URLParam(r, "ifName"))
	if err != nil {
		writeError(w, err)
		return
	}
	text, err := s.store.Get(r.Context(), key)
	if err != nil {
		writeError(w, err)
		return
	}
	cfg, err := status.ParseInterface(text)
	if err != nil {
		writeLoadError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

// handlePutInterface stores a key/value object as an interface config.
func (s *Server) handlePutInterface(w http.ResponseWriter, r *http.Request) {
	key, err := s.interfaceKey(chi.URLParam(r, "ifName"))
	if err != nil {
		writeError(w, err)
		return
	}
	var cfg map[string]string
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&cfg); err != nil {
		writeAPIError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid JSON body")
		return
	}
	text, err := status.EncodeInterface(cfg)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.store.Put(r.Context(), key, text); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (s *Server) loadLeases(r *http.Request) ([]status.Lease, error) {
	text, err := s.store.Get(r.Context(), s.cfg.Keys.Leases)
	if err != nil {
		return nil, err
	}
	return status.ParseLeases(text)
}

func (s *Server) handleLeases(w http.ResponseWriter, r *http.Request) {
	s.serveLeases(w, r, func(l []status.Lease) []status.Lease { return l })
}

func (s *Server) handleLatestLeases(w http.ResponseWriter, r *http.Request) {
	s.serveLeases(w, r, status.LatestPerMAC)
}

func (s *Server) handleOnlineLeases(w http.ResponseWriter, r *http.Request) {
	s.serveLeases(w, r, status.Online)
}

func (s *Server) serveLeases(w http.ResponseWriter, r *http.Request, view func([]status.Lease) []status.Lease) {
	leases, err := s.loadLeases(r)
	if err != nil {
		writeLoadError(w, err)
		return
	}
	out := view(leases)
	if out == nil {
		out = []status.Lease{}
	}
	writeJSON(w, http.StatusOK, out)
}

type leaseStatus struct {
	MAC    string `json:"mac"`
	Online bool   `json:"online"`
}

// handleLeaseStatus reports whether a MAC's latest lease is active.
// handleLeaseStatus 报告某个 MAC 的最新租约是否在线。
func (s *Server) handleLeaseStatus(w http.ResponseWriter, r *http.Request) {
	mac := chi.URLParam(r, "mac")
	leases, err := s.loadLeases(r)
	if err != nil {
		writeLoadError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, leaseStatus{MAC: mac, Online: status.StatusForMAC(leases, mac)})
}

func (s *Server) handleNmap(w http.ResponseWriter, r *http.Request) {
	text, err := s.store.Get(r.Context(), s.cfg.Keys.Nmap)
	if err != nil {
		writeError(w, err)
		return
	}
	hosts, err := status.ParseNmap(text)
	if err != nil {
		writeLoadError(w, err)
		return
	}
	if hosts == nil {
		hosts = []status.Host{}
	}
	writeJSON(w, http.StatusOK, hosts)
}

// handleSystem passes the stored system-data JSON through unchanged.
func (s *Server) handleSystem(w http.ResponseWriter, r *http.Request) {
	text, err := s.store.Get(r.Context(), s.cfg.Keys.System)
	if err != nil {
		writeError(w, err)
		return
	}
	if !json.Valid([]byte(text)) {
		writeLoadError(w, errors.NewFormatError(s.cfg.Keys.System+" is not valid JSON"))
		return
	}
	writeJSON(w, http.StatusOK, json.RawMessage(text))
}
