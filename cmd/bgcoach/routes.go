package main

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ilyannn/bgvoicecoach/internal/apperr"
	"github.com/ilyannn/bgvoicecoach/internal/asrengine"
	"github.com/ilyannn/bgvoicecoach/internal/coach"
	"github.com/ilyannn/bgvoicecoach/internal/config"
	"github.com/ilyannn/bgvoicecoach/internal/contentstore"
	"github.com/ilyannn/bgvoicecoach/internal/grammar"
	"github.com/ilyannn/bgvoicecoach/internal/ttsengine"
)

const (
	analyzeBodyLimit = 32 * 1024
	defaultBodyLimit = 8 * 1024
)

type deps struct {
	cfg       *config.Config
	store     *contentstore.Store
	detector  *grammar.Detector
	tts       *ttsengine.Engine
	asr       *asrengine.Engine
	wsHandler http.Handler
}

// registerRoutes wires every HTTP endpoint from spec §4.8 to mux.
func registerRoutes(mux *http.ServeMux, d *deps) {
	mux.Handle("/ws/asr", d.wsHandler)

	mux.HandleFunc("GET /tts", d.handleTTS)
	mux.HandleFunc("GET /tts/profiles", d.handleTTSProfiles)

	mux.HandleFunc("GET /content/scenarios", d.handleScenarios)
	mux.HandleFunc("GET /content/grammar/{id}", d.handleGrammarItem)
	mux.HandleFunc("GET /content/drills/{id}", d.handleDrills)
	mux.HandleFunc("POST /content/analyze", d.handleAnalyze)

	mux.HandleFunc("GET /api/config", d.handleGetConfig)
	mux.HandleFunc("POST /api/config/l1", d.handleSetL1)

	mux.HandleFunc("GET /health", d.handleHealth)
}

func (d *deps) handleTTS(w http.ResponseWriter, r *http.Request) {
	text := r.URL.Query().Get("text")
	profile := r.URL.Query().Get("profile")

	res, err := d.tts.Synthesize(r.Context(), text, profile)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "audio/wav")
	if res.SynthesisError {
		w.Header().Set("X-Synthesis-Error", "true")
	}
	w.WriteHeader(http.StatusOK)
	w.Write(res.WAV)
}

func (d *deps) handleTTSProfiles(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ttsengine.Profiles())
}

func (d *deps) handleScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, d.store.ListScenarios())
}

func (d *deps) handleGrammarItem(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	item, ok := d.store.GetItem(id)
	if !ok {
		writeError(w, apperr.Wrap(apperr.ErrNotFound, errors.New("unknown grammar item")))
		return
	}
	l1 := r.URL.Query().Get("l1")
	resp := struct {
		contentstore.GrammarItem
		ContrastiveNote string `json:"contrastive_note,omitempty"`
	}{GrammarItem: item}
	if l1 != "" {
		if note, ok := d.store.ContrastFor(item, l1); ok {
			resp.ContrastiveNote = note
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (d *deps) handleDrills(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	drills := d.store.GetDrills(id)
	if drills == nil {
		if _, ok := d.store.GetItem(id); !ok {
			writeError(w, apperr.Wrap(apperr.ErrNotFound, errors.New("unknown grammar item")))
			return
		}
	}
	writeJSON(w, http.StatusOK, drills)
}

func (d *deps) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, analyzeBodyLimit)
	var req struct {
		Text string `json:"text"`
		L1   string `json:"l1"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.Wrap(apperr.ErrInputValidation, err))
		return
	}
	corrections := d.detector.Detect(req.Text)
	drills := coach.AttachDrills(d.store, corrections)
	writeJSON(w, http.StatusOK, map[string]any{"corrections": corrections, "drills": drills})
}

func (d *deps) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"default_l1_language": d.cfg.DefaultL1Language,
		"supported_l1":        config.SupportedL1,
		"llm_provider":        d.cfg.LLMProvider,
		"tts_default_profile": d.cfg.TTSDefaultProfile,
	})
}

func (d *deps) handleSetL1(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, defaultBodyLimit)
	var req struct {
		L1Language string `json:"l1_language"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.Wrap(apperr.ErrInputValidation, err))
		return
	}
	if !isSupportedL1(req.L1Language) {
		writeError(w, apperr.Wrap(apperr.ErrInputValidation, errors.New("unsupported l1_language")))
		return
	}
	d.cfg.DefaultL1Language = req.L1Language
	writeJSON(w, http.StatusOK, map[string]string{"l1_language": req.L1Language})
}

func (d *deps) handleHealth(w http.ResponseWriter, r *http.Request) {
	asrStatus := "fail"
	if d.asr.Available() {
		asrStatus = "pass"
	}
	checks := map[string]healthCheck{
		"content_store":    {ComponentType: "component", ObservedValue: d.store.Version(), Status: "pass"},
		"tts_binary":       {ComponentType: "component", ObservedValue: d.cfg.TTSBinaryPath, Status: "pass"},
		"asr:availability": {ComponentType: "component", ObservedValue: d.cfg.ASRModelSize, Status: asrStatus},
	}
	overall := "pass"
	for _, c := range checks {
		if c.Status == "fail" {
			overall = "fail"
			break
		}
		if c.Status == "warn" && overall == "pass" {
			overall = "warn"
		}
	}
	status := http.StatusOK
	if overall == "fail" {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]any{"status": overall, "checks": checks})
}

// healthCheck follows the RFC health-check-response-format shape (spec §9
// Open Question (d)): componentType/observedValue/status per component.
type healthCheck struct {
	ComponentType string `json:"componentType"`
	ObservedValue string `json:"observedValue"`
	Status        string `json:"status"`
}

func isSupportedL1(code string) bool {
	for _, s := range config.SupportedL1 {
		if s == code {
			return true
		}
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, apperr.ErrInputValidation):
		status = http.StatusBadRequest
	case errors.Is(err, apperr.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, apperr.ErrTimeout):
		status = http.StatusGatewayTimeout
	case errors.Is(err, apperr.ErrUpstream):
		status = http.StatusBadGateway
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) || errors.Is(err, ttsengine.ErrTextTooLong) {
		status = http.StatusRequestEntityTooLarge
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
