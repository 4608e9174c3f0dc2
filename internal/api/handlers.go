// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ManuGH/vidfetch/internal/quality"
	"github.com/ManuGH/vidfetch/internal/session"
)

const maxBodyBytes = 64 << 10

// sessionView adds the derived flags a UI needs to the raw record.
type sessionView struct {
	session.Session
	Phase        session.Phase `json:"phase"`
	FetchBusy    bool          `json:"fetchBusy"`
	DownloadBusy bool          `json:"downloadBusy"`
}

func viewOf(s session.Session) sessionView {
	return sessionView{
		Session:      s,
		Phase:        s.Phase(),
		FetchBusy:    s.FetchBusy(),
		DownloadBusy: s.DownloadBusy(),
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": s.version})
}

func (s *Server) handleGetSession(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, viewOf(s.ctrl.Snapshot()))
}

func (s *Server) handleSetURL(w http.ResponseWriter, r *http.Request) {
	var body struct {
		URL string `json:"url"`
	}
	if !decode(w, r, &body) {
		return
	}
	s.ctrl.SetURL(r.Context(), body.URL)
	s.respond(w, r, nil)
}

func (s *Server) handleSetFormat(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Format session.Format `json:"format"`
	}
	if !decode(w, r, &body) {
		return
	}
	s.respond(w, r, s.ctrl.SelectFormat(r.Context(), body.Format))
}

func (s *Server) handleSetQuality(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Quality string `json:"quality"`
	}
	var set func(context.Context, string) error
	switch chi.URLParam(r, "kind") {
	case "video":
		set = s.ctrl.SelectVideoQuality
	case "audio":
		set = s.ctrl.SelectAudioQuality
	default:
		writeMessage(w, http.StatusNotFound, "unknown quality kind")
		return
	}
	if !decode(w, r, &body) {
		return
	}
	s.respond(w, r, set(r.Context(), body.Quality))
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r, s.ctrl.RequestInfo(detached(r)))
}

func (s *Server) handleDebug(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r, s.ctrl.RequestDebug(detached(r)))
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r, s.ctrl.RequestDownload(detached(r)))
}

func (s *Server) handleQualities(w http.ResponseWriter, _ *http.Request) {
	caps := s.ctrl.Snapshot().Capabilities()
	writeJSON(w, http.StatusOK, map[string][]quality.Option{
		"video": quality.Options(caps.Video, quality.DescribeVideo),
		"audio": quality.Options(caps.Audio, quality.DescribeAudio),
	})
}

// detached keeps the request's values (request ID, trace) but not its
// cancellation: a remote operation runs to completion once issued, even if
// the HTTP caller goes away.
func detached(r *http.Request) context.Context {
	return context.WithoutCancel(r.Context())
}

// respond writes the error, or the session snapshot on success.
func (s *Server) respond(w http.ResponseWriter, r *http.Request, err error) {
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(s.ctrl.Snapshot()))
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
