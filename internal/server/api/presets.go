package api

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/jennahenricsson-umain/motion-MBD/internal/sim"
	"github.com/jennahenricsson-umain/motion-MBD/internal/store"
)

// TuningSink receives tunings activated through the API.
type TuningSink interface {
	ApplyTuning(cfg sim.Config)
}

// PresetHandler serves /api/presets and /api/presets/{id}[/activate].
type PresetHandler struct {
	store    *store.Store
	sink     TuningSink
	validate *validator.Validate
	log      logrus.FieldLogger
}

// NewPresetHandler creates a PresetHandler. sink may be nil, in which case
// activation is only recorded in the store.
func NewPresetHandler(s *store.Store, sink TuningSink, log logrus.FieldLogger) *PresetHandler {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &PresetHandler{
		store:    s,
		sink:     sink,
		validate: validator.New(),
		log:      log.WithField("component", "presets"),
	}
}

func (h *PresetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/presets")
	path = strings.Trim(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			h.list(w)
		case http.MethodPost:
			h.create(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	id, action, _ := strings.Cut(path, "/")
	switch action {
	case "":
	case "activate":
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.activate(w, id)
		return
	default:
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.get(w, id)
	case http.MethodPut:
		h.update(w, r, id)
	case http.MethodDelete:
		h.delete(w, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

var errInvalidJSON = errors.New("invalid JSON")

type presetRequest struct {
	Name        string      `json:"name" validate:"required,max=64"`
	Description string      `json:"description" validate:"max=256"`
	Tuning      *sim.Config `json:"tuning"`
}

type presetResponse struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Tuning      sim.Config `json:"tuning"`
	Active      bool       `json:"active"`
	CreatedAt   string     `json:"created_at"`
	UpdatedAt   string     `json:"updated_at"`
}

type listPresetsResponse struct {
	Presets []presetResponse `json:"presets"`
}

func toResponse(p *store.Preset, activeID string) presetResponse {
	return presetResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Tuning:      p.Tuning,
		Active:      p.ID == activeID,
		CreatedAt:   p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   p.UpdatedAt.Format(time.RFC3339),
	}
}

func (h *PresetHandler) activeID() string {
	id, err := h.store.Settings().Get(store.SettingActivePreset)
	if err != nil {
		return ""
	}
	return id
}

// decode reads a preset request. Tuning fields left out of the body keep
// the values of base.
func (h *PresetHandler) decode(r *http.Request, base sim.Config) (presetRequest, error) {
	req := presetRequest{Tuning: &base}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return req, errInvalidJSON
	}
	if req.Tuning == nil {
		req.Tuning = &base
	}
	if err := h.validate.Struct(req); err != nil {
		return req, err
	}
	if err := h.validate.Struct(req.Tuning); err != nil {
		return req, err
	}
	return req, nil
}

func (h *PresetHandler) list(w http.ResponseWriter) {
	presets, err := h.store.Presets().List()
	if err != nil {
		h.log.WithError(err).Error("failed to list presets")
		writeError(w, http.StatusInternalServerError, "Failed to list presets")
		return
	}

	active := h.activeID()
	resp := listPresetsResponse{Presets: make([]presetResponse, 0, len(presets))}
	for _, p := range presets {
		resp.Presets = append(resp.Presets, toResponse(p, active))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *PresetHandler) get(w http.ResponseWriter, id string) {
	p, err := h.store.Presets().GetByID(id)
	if err != nil {
		h.storeError(w, err, "get")
		return
	}
	writeJSON(w, http.StatusOK, toResponse(p, h.activeID()))
}

func (h *PresetHandler) create(w http.ResponseWriter, r *http.Request) {
	req, err := h.decode(r, sim.DefaultConfig())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	p := &store.Preset{
		ID:          uuid.New().String(),
		Name:        req.Name,
		Description: req.Description,
		Tuning:      *req.Tuning,
	}
	if err := h.store.Presets().Create(p); err != nil {
		h.storeError(w, err, "create")
		return
	}

	h.log.WithField("preset", p.Name).Info("preset created")
	writeJSON(w, http.StatusCreated, toResponse(p, ""))
}

func (h *PresetHandler) update(w http.ResponseWriter, r *http.Request, id string) {
	existing, err := h.store.Presets().GetByID(id)
	if err != nil {
		h.storeError(w, err, "get")
		return
	}

	req, err := h.decode(r, existing.Tuning)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	existing.Name = req.Name
	existing.Description = req.Description
	existing.Tuning = *req.Tuning
	if err := h.store.Presets().Update(existing); err != nil {
		h.storeError(w, err, "update")
		return
	}

	active := h.activeID()
	if active == id && h.sink != nil {
		h.sink.ApplyTuning(existing.Tuning)
	}
	writeJSON(w, http.StatusOK, toResponse(existing, active))
}

func (h *PresetHandler) delete(w http.ResponseWriter, id string) {
	if err := h.store.Presets().Delete(id); err != nil {
		h.storeError(w, err, "delete")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *PresetHandler) activate(w http.ResponseWriter, id string) {
	p, err := h.store.Presets().GetByID(id)
	if err != nil {
		h.storeError(w, err, "get")
		return
	}
	if err := h.store.SetActivePreset(id); err != nil {
		h.storeError(w, err, "activate")
		return
	}
	if h.sink != nil {
		h.sink.ApplyTuning(p.Tuning)
	}

	h.log.WithField("preset", p.Name).Info("preset activated")
	writeJSON(w, http.StatusOK, toResponse(p, id))
}

func (h *PresetHandler) storeError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "Preset not found")
	case errors.Is(err, store.ErrConflict):
		writeError(w, http.StatusConflict, "Preset name already exists")
	default:
		h.log.WithError(err).Errorf("failed to %s preset", op)
		writeError(w, http.StatusInternalServerError, "Failed to "+op+" preset")
	}
}
