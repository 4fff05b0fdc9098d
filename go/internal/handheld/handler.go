package handheld

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcdev12/basehaptic/go/internal/models"
	"github.com/mcdev12/basehaptic/go/internal/theme"
	"github.com/rs/zerolog/log"
)

const maxBodyBytes = 64 << 10

type themeRequest struct {
	Team string `json:"team"`
}

type themeResponse struct {
	Team     string          `json:"team"`
	Palette  theme.Palette   `json:"palette"`
	Queued   *bool           `json:"queued,omitempty"`
	Palettes []theme.Palette `json:"palettes,omitempty"`
}

type hapticRequest struct {
	EventType models.EventType `json:"event_type"`
}

type publishResponse struct {
	Queued bool `json:"queued"`
}

// Handler exposes the handheld's controls over HTTP
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the control API with an HTTP mux
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/game", h.HandleGame)
	mux.HandleFunc("/api/theme", h.HandleTheme)
	mux.HandleFunc("/api/haptic", h.HandleHaptic)
}

// HandleGame handles GET and POST /api/game
func (h *Handler) HandleGame(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		g, ok := h.service.LastGame()
		if !ok {
			http.Error(w, "no game published yet", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, g)
	case http.MethodPost:
		var g models.GameSnapshot
		if err := decodeBody(w, r, &g); err != nil {
			http.Error(w, "invalid game snapshot", http.StatusBadRequest)
			return
		}
		g.EventType = models.ParseEventType(string(g.EventType))
		writePublish(w, h.service.PublishGame(g))
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleTheme handles GET and POST /api/theme
func (h *Handler) HandleTheme(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		team := h.service.Team()
		writeJSON(w, http.StatusOK, themeResponse{
			Team:     team,
			Palette:  theme.Lookup(team),
			Palettes: theme.Teams(),
		})
	case http.MethodPost:
		var req themeRequest
		if err := decodeBody(w, r, &req); err != nil {
			http.Error(w, "invalid theme request", http.StatusBadRequest)
			return
		}
		team, queued, err := h.service.SetTeam(req.Team)
		if errors.Is(err, ErrUnknownTeam) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		status := http.StatusAccepted
		if !queued {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, themeResponse{Team: team, Palette: theme.Lookup(team), Queued: &queued})
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleHaptic handles POST /api/haptic
func (h *Handler) HandleHaptic(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req hapticRequest
	if err := decodeBody(w, r, &req); err != nil {
		http.Error(w, "invalid haptic request", http.StatusBadRequest)
		return
	}
	eventType := models.ParseEventType(string(req.EventType))
	if !eventType.IsKnown() {
		http.Error(w, "unknown event_type", http.StatusBadRequest)
		return
	}
	writePublish(w, h.service.PublishHaptic(eventType))
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func writePublish(w http.ResponseWriter, queued bool) {
	status := http.StatusAccepted
	if !queued {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, publishResponse{Queued: queued})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to write response")
	}
}
