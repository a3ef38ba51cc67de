package server

import (
	"net/http"
	"strconv"

	"github.com/GuilhermeCostaProenca/t20-os-sub000/internal/game/event"
	"github.com/GuilhermeCostaProenca/t20-os-sub000/internal/game/session"
	"github.com/GuilhermeCostaProenca/t20-os-sub000/internal/game/storage"
)

func (s *Server) handleCreateWorld(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	if err := readJSON(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}

	world, err := s.sessions.CreateWorld(r.Context(), body.Title, body.Description)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toWorldResponse(world))
}

func (s *Server) handleGetWorld(w http.ResponseWriter, r *http.Request) {
	world, err := s.sessions.GetWorld(r.Context(), r.PathValue("worldID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toWorldResponse(world))
}

func (s *Server) handleUpdateWorld(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
	}
	if err := readJSON(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}

	world, err := s.sessions.UpdateWorld(r.Context(), r.PathValue("worldID"), body.Title, body.Description)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toWorldResponse(world))
}

func (s *Server) handleCreateCampaign(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		RulesetID   string `json:"ruleset_id"`
	}
	if err := readJSON(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}

	campaign, err := s.sessions.CreateCampaign(r.Context(), r.PathValue("worldID"), body.Name, body.Description, body.RulesetID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCampaignResponse(campaign))
}

func (s *Server) handleGetCampaign(w http.ResponseWriter, r *http.Request) {
	campaign, err := s.sessions.GetCampaign(r.Context(), r.PathValue("campaignID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCampaignResponse(campaign))
}

func (s *Server) handleUpdateCampaign(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
		RulesetID   *string `json:"ruleset_id"`
	}
	if err := readJSON(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}

	campaign, err := s.sessions.GetCampaign(r.Context(), r.PathValue("campaignID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	updated, err := s.sessions.UpdateCampaign(r.Context(), campaign.WorldID, campaign.ID, body.Name, body.Description, body.RulesetID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCampaignResponse(updated))
}

func (s *Server) handleCreateCharacter(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name      string         `json:"name"`
		Kind      string         `json:"kind"`
		Abilities map[string]int `json:"abilities"`
		HPMax     int            `json:"hp_max"`
		MPMax     int            `json:"mp_max"`
	}
	if err := readJSON(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}

	campaign, err := s.sessions.GetCampaign(r.Context(), r.PathValue("campaignID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	character, err := s.sessions.CreateCharacter(r.Context(), campaign.WorldID, campaign.ID, session.CharacterParams{
		Name:      body.Name,
		Kind:      body.Kind,
		Abilities: body.Abilities,
		HPMax:     body.HPMax,
		MPMax:     body.MPMax,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCharacterResponse(character))
}

func (s *Server) handleGetCharacter(w http.ResponseWriter, r *http.Request) {
	character, err := s.sessions.GetCharacter(r.Context(), r.PathValue("characterID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCharacterResponse(character))
}

func (s *Server) handleUpdateCharacter(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name      *string        `json:"name"`
		Abilities map[string]int `json:"abilities"`
		HPMax     *int           `json:"hp_max"`
		MPMax     *int           `json:"mp_max"`
	}
	if err := readJSON(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}

	character, err := s.sessions.GetCharacter(r.Context(), r.PathValue("characterID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	updated, err := s.sessions.UpdateCharacter(r.Context(), character.WorldID, character.ID, body.Name, body.Abilities, body.HPMax, body.MPMax)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCharacterResponse(updated))
}

func (s *Server) handleListCharacters(w http.ResponseWriter, r *http.Request) {
	characters, err := s.sessions.ListCharacters(r.Context(), r.PathValue("campaignID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]characterResponse, 0, len(characters))
	for _, c := range characters {
		out = append(out, toCharacterResponse(c))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAddNote(w http.ResponseWriter, r *http.Request) {
	var body struct {
		CampaignID string `json:"campaign_id"`
		Text       string `json:"text"`
		Visibility string `json:"visibility"`
	}
	if err := readJSON(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}

	note, err := s.sessions.AddNote(r.Context(), r.PathValue("worldID"), body.CampaignID, body.Text, event.Visibility(body.Visibility))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toEventResponse(note))
}

func (s *Server) handleTimeline(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	var after storage.EventCursor
	if raw := query.Get("after_seq"); raw != "" {
		seq, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			s.writeError(w, r, errInvalidQuery("after_seq"))
			return
		}
		after.Seq = seq
	}

	limit := 0
	if raw := query.Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			s.writeError(w, r, errInvalidQuery("limit"))
			return
		}
		limit = parsed
	}

	events, err := s.sessions.Timeline(r.Context(), r.PathValue("worldID"), after, limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTimelineResponse(events))
}

func (s *Server) handleRebuild(w http.ResponseWriter, r *http.Request) {
	applied, err := s.sessions.Rebuild(r.Context(), r.PathValue("worldID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"events_applied": applied})
}

func (s *Server) handleApplyCondition(w http.ResponseWriter, r *http.Request) {
	var body struct {
		TargetID string `json:"target_id"`
		Name     string `json:"name"`
		Source   string `json:"source"`
	}
	if err := readJSON(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}

	condition, err := s.sessions.ApplyCondition(r.Context(), r.PathValue("worldID"), body.TargetID, body.Name, body.Source)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toConditionResponse(condition))
}

func (s *Server) handleRemoveCondition(w http.ResponseWriter, r *http.Request) {
	err := s.sessions.RemoveCondition(r.Context(), r.PathValue("worldID"), r.PathValue("conditionID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListConditions(w http.ResponseWriter, r *http.Request) {
	conditions, err := s.sessions.ListConditions(r.Context(), r.PathValue("targetID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]conditionResponse, 0, len(conditions))
	for _, c := range conditions {
		out = append(out, toConditionResponse(c))
	}
	writeJSON(w, http.StatusOK, out)
}
