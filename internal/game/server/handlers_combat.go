package server

import (
	"net/http"

	"github.com/GuilhermeCostaProenca/t20-os-sub000/internal/game/combat"
	"github.com/GuilhermeCostaProenca/t20-os-sub000/internal/game/rules"
)

func (s *Server) handleStartCombat(w http.ResponseWriter, r *http.Request) {
	campaign, err := s.sessions.GetCampaign(r.Context(), r.PathValue("campaignID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	started, err := s.combat.Start(r.Context(), campaign.WorldID, campaign.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCombatResponse(started))
}

func (s *Server) handleActiveCombat(w http.ResponseWriter, r *http.Request) {
	active, err := s.combat.Active(r.Context(), r.PathValue("campaignID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCombatResponse(active))
}

func (s *Server) handleGetCombat(w http.ResponseWriter, r *http.Request) {
	found, err := s.combat.Get(r.Context(), r.PathValue("combatID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCombatResponse(found))
}

func (s *Server) handleRoster(w http.ResponseWriter, r *http.Request) {
	roster, err := s.combat.Roster(r.Context(), r.PathValue("combatID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCombatantResponses(roster))
}

func (s *Server) handleRollInitiative(w http.ResponseWriter, r *http.Request) {
	found, err := s.combat.Get(r.Context(), r.PathValue("combatID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	roster, err := s.combat.RollInitiative(r.Context(), found.WorldID, found.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCombatantResponses(roster))
}

func (s *Server) handleNextTurn(w http.ResponseWriter, r *http.Request) {
	found, err := s.combat.Get(r.Context(), r.PathValue("combatID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	advanced, err := s.combat.NextTurn(r.Context(), found.WorldID, found.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCombatResponse(advanced))
}

func (s *Server) handleEndCombat(w http.ResponseWriter, r *http.Request) {
	found, err := s.combat.Get(r.Context(), r.PathValue("combatID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.combat.End(r.Context(), found.WorldID, found.ID); err != nil {
		s.writeError(w, r, err)
		return
	}
	ended, err := s.combat.Get(r.Context(), found.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCombatResponse(ended))
}

type actionRequest struct {
	WorldID    string `json:"world_id"`
	CampaignID string `json:"campaign_id"`
	CombatID   string `json:"combat_id"`
	SessionID  string `json:"session_id"`
	ActorID    string `json:"actor_id"`
	TargetID   string `json:"target_id"`
}

func (a actionRequest) params() combat.ActionParams {
	return combat.ActionParams{
		WorldID:    a.WorldID,
		CampaignID: a.CampaignID,
		CombatID:   a.CombatID,
		SessionID:  a.SessionID,
		ActorID:    a.ActorID,
		TargetID:   a.TargetID,
	}
}

func (s *Server) handleResolveAttack(w http.ResponseWriter, r *http.Request) {
	var body struct {
		actionRequest
		Attack struct {
			Name           string `json:"name"`
			Ability        string `json:"ability"`
			Bonus          int    `json:"bonus"`
			DamageFormula  string `json:"damage_formula"`
			CritRange      int    `json:"crit_range"`
			CritMultiplier int    `json:"crit_multiplier"`
		} `json:"attack"`
	}
	if err := readJSON(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}

	outcome, err := s.combat.ResolveAttack(r.Context(), body.params(), rules.Attack{
		Name:           body.Attack.Name,
		Ability:        body.Attack.Ability,
		Bonus:          body.Attack.Bonus,
		DamageFormula:  body.Attack.DamageFormula,
		CritRange:      body.Attack.CritRange,
		CritMultiplier: body.Attack.CritMultiplier,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"event":            toEventResponse(outcome.Event),
		"d20":              outcome.Roll.D20,
		"modifier":         outcome.Roll.Modifier,
		"total":            outcome.Roll.Total,
		"is_nat20":         outcome.Roll.IsNat20,
		"is_nat1":          outcome.Roll.IsNat1,
		"is_crit_threat":   outcome.Roll.IsCritThreat,
		"damage":           outcome.Damage.Total,
		"damage_detail":    outcome.Damage.Detail,
		"target_hp_before": outcome.TargetHPBefore,
		"target_hp_after":  outcome.TargetHPAfter,
	})
}

func (s *Server) handleResolveSpell(w http.ResponseWriter, r *http.Request) {
	var body struct {
		actionRequest
		Spell struct {
			Name          string   `json:"name"`
			Ability       string   `json:"ability"`
			Bonus         int      `json:"bonus"`
			CostMP        int      `json:"cost_mp"`
			DamageFormula string   `json:"damage_formula"`
			Effects       []string `json:"effects"`
		} `json:"spell"`
	}
	if err := readJSON(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}

	outcome, err := s.combat.ResolveSpell(r.Context(), body.params(), rules.Spell{
		Name:          body.Spell.Name,
		Ability:       body.Spell.Ability,
		Bonus:         body.Spell.Bonus,
		CostMP:        body.Spell.CostMP,
		DamageFormula: body.Spell.DamageFormula,
		Effects:       body.Spell.Effects,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"event":            toEventResponse(outcome.Event),
		"d20":              outcome.Roll.D20,
		"modifier":         outcome.Roll.Modifier,
		"total":            outcome.Roll.Total,
		"cost_mp":          outcome.Roll.CostMP,
		"damage":           outcome.Roll.Damage,
		"damage_detail":    outcome.Roll.DamageDetail,
		"effects":          outcome.Roll.Effects,
		"actor_mp_before":  outcome.ActorMPBefore,
		"actor_mp_after":   outcome.ActorMPAfter,
		"target_hp_before": outcome.TargetHPBefore,
		"target_hp_after":  outcome.TargetHPAfter,
	})
}

func (s *Server) handleResolveSkill(w http.ResponseWriter, r *http.Request) {
	var body struct {
		actionRequest
		Skill struct {
			Name    string `json:"name"`
			Ability string `json:"ability"`
			Bonus   int    `json:"bonus"`
			DC      int    `json:"dc"`
		} `json:"skill"`
	}
	if err := readJSON(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}

	outcome, err := s.combat.ResolveSkill(r.Context(), body.params(), rules.Skill{
		Name:    body.Skill.Name,
		Ability: body.Skill.Ability,
		Bonus:   body.Skill.Bonus,
		DC:      body.Skill.DC,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"event":    toEventResponse(outcome.Event),
		"d20":      outcome.Roll.D20,
		"modifier": outcome.Roll.Modifier,
		"total":    outcome.Roll.Total,
		"dc":       outcome.Roll.DC,
		"success":  outcome.Roll.Success,
	})
}
