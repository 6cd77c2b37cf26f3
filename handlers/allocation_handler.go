package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Dosada05/prize-engine/middleware"
	"github.com/Dosada05/prize-engine/models"
	"github.com/Dosada05/prize-engine/services"
)

type AllocationHandler struct {
	allocationService services.AllocationService
}

func NewAllocationHandler(as services.AllocationService) *AllocationHandler {
	return &AllocationHandler{
		allocationService: as,
	}
}

// allocateInput — тело preview/commit запросов: ростер и каталог целиком,
// предзагруженные вызывающей стороной.
type allocateInput struct {
	Players    []*models.Player        `json:"players"`
	Categories []*models.Category      `json:"categories"`
	Rules      models.RuleConfig       `json:"rule_config"`
	Overrides  []models.ManualDecision `json:"manual_overrides,omitempty"`
}

func (in allocateInput) toRequest(tournamentID string) services.AllocateRequest {
	return services.AllocateRequest{
		TournamentID: tournamentID,
		Players:      in.Players,
		Categories:   in.Categories,
		Rules:        in.Rules,
		Overrides:    in.Overrides,
	}
}

// PreviewHandler обрабатывает POST /tournaments/{tournamentID}/allocation/preview
func (h *AllocationHandler) PreviewHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID := chi.URLParam(r, "tournamentID")

	var input allocateInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.allocationService.Preview(r.Context(), input.toRequest(tournamentID))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"result": result}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// CommitHandler обрабатывает POST /tournaments/{tournamentID}/allocation/commit
func (h *AllocationHandler) CommitHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID := chi.URLParam(r, "tournamentID")

	var input allocateInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	commit, err := h.allocationService.Commit(r.Context(), input.toRequest(tournamentID))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{
		"result":            commit.Result,
		"version":           commit.Version,
		"allocations_count": commit.AllocationsCount,
	}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ApplyOverrideHandler обрабатывает PUT /tournaments/{tournamentID}/allocation/overrides
func (h *AllocationHandler) ApplyOverrideHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID := chi.URLParam(r, "tournamentID")

	var input struct {
		PrizeID  string `json:"prize_id"`
		PlayerID string `json:"player_id"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	// Кто применил пин — из JWT; маршрут закрыт Authenticate, поэтому
	// claims в контексте всегда есть.
	appliedBy, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	decision := models.ManualDecision{
		PrizeID:   input.PrizeID,
		PlayerID:  input.PlayerID,
		Reason:    models.DecisionManualOverride,
		AppliedBy: appliedBy,
	}
	if err := h.allocationService.ApplyOverride(r.Context(), tournamentID, decision); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"decision": decision}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// RemoveOverrideHandler обрабатывает DELETE /tournaments/{tournamentID}/allocation/overrides/{prizeID}
func (h *AllocationHandler) RemoveOverrideHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID := chi.URLParam(r, "tournamentID")
	prizeID := chi.URLParam(r, "prizeID")

	if err := h.allocationService.RemoveOverride(r.Context(), tournamentID, prizeID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AcceptSuggestionHandler обрабатывает POST /tournaments/{tournamentID}/allocation/conflicts/accept
func (h *AllocationHandler) AcceptSuggestionHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID := chi.URLParam(r, "tournamentID")

	var input struct {
		ConflictID string `json:"conflict_id"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	decision, err := h.allocationService.AcceptSuggestion(r.Context(), tournamentID, input.ConflictID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"decision": decision}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// AcceptAllHandler обрабатывает POST /tournaments/{tournamentID}/allocation/conflicts/accept-all
func (h *AllocationHandler) AcceptAllHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID := chi.URLParam(r, "tournamentID")

	accepted, err := h.allocationService.AcceptAllSuggestions(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"accepted": accepted}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetVersionHandler обрабатывает GET /tournaments/{tournamentID}/allocation/versions/{version};
// {version} — номер версии либо литерал "latest".
func (h *AllocationHandler) GetVersionHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID := chi.URLParam(r, "tournamentID")
	raw := chi.URLParam(r, "version")

	var (
		version *models.PublishedVersion
		err     error
	)
	if raw == "latest" {
		version, err = h.allocationService.LatestVersion(r.Context(), tournamentID)
	} else {
		n, convErr := strconv.Atoi(raw)
		if convErr != nil || n < 1 {
			badRequestResponse(w, r, fmt.Errorf("invalid version %q", raw))
			return
		}
		version, err = h.allocationService.GetVersion(r.Context(), tournamentID, n)
	}
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"version": version}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListVersionsHandler обрабатывает GET /tournaments/{tournamentID}/allocation/versions
func (h *AllocationHandler) ListVersionsHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID := chi.URLParam(r, "tournamentID")

	versions, err := h.allocationService.ListVersions(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if versions == nil {
		versions = []models.PublishedVersion{}
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"versions": versions}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
