package event

// WorldCreatedPayload captures the payload for world.created events.
type WorldCreatedPayload struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// WorldUpdatedPayload captures the payload for world.updated events.
// Nil fields are left untouched by projection.
type WorldUpdatedPayload struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
}

// CampaignCreatedPayload captures the payload for campaign.created events.
type CampaignCreatedPayload struct {
	CampaignID  string `json:"campaign_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	RulesetID   string `json:"ruleset_id,omitempty"`
}

// CampaignUpdatedPayload captures the payload for campaign.updated events.
type CampaignUpdatedPayload struct {
	CampaignID  string  `json:"campaign_id"`
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	RulesetID   *string `json:"ruleset_id,omitempty"`
}

// CharacterCreatedPayload captures the payload for character.created events.
type CharacterCreatedPayload struct {
	CharacterID string         `json:"character_id"`
	CampaignID  string         `json:"campaign_id"`
	Name        string         `json:"name"`
	Kind        string         `json:"kind"`
	Abilities   map[string]int `json:"abilities,omitempty"`
	HPMax       int            `json:"hp_max"`
	MPMax       int            `json:"mp_max"`
}

// CharacterUpdatedPayload captures the payload for character.updated events.
type CharacterUpdatedPayload struct {
	CharacterID string         `json:"character_id"`
	Name        *string        `json:"name,omitempty"`
	Abilities   map[string]int `json:"abilities,omitempty"`
	HPMax       *int           `json:"hp_max,omitempty"`
	MPMax       *int           `json:"mp_max,omitempty"`
}

// CombatStartedPayload captures the payload for combat.started events.
type CombatStartedPayload struct {
	CombatID   string `json:"combat_id"`
	CampaignID string `json:"campaign_id"`
}

// CombatEndedPayload captures the payload for combat.ended events.
type CombatEndedPayload struct {
	CombatID string `json:"combat_id"`
	Rounds   int    `json:"rounds"`
}

// InitiativeRolledPayload captures the payload for combat.initiative_rolled
// events. Position is the 0-based insertion index of the roll within the
// batch; the roll at position 0 resets the combatant roster so replay
// reproduces re-rolls.
type InitiativeRolledPayload struct {
	CombatID    string `json:"combat_id"`
	CombatantID string `json:"combatant_id"`
	Name        string `json:"name"`
	Kind        string `json:"kind"`
	RefID       string `json:"ref_id,omitempty"`
	Position    int    `json:"position"`
	D20         int    `json:"d20"`
	Modifier    int    `json:"modifier"`
	Total       int    `json:"total"`
	HPMax       int    `json:"hp_max"`
	HPCurrent   int    `json:"hp_current"`
	MPMax       int    `json:"mp_max"`
	MPCurrent   int    `json:"mp_current"`
}

// TurnAdvancedPayload captures the payload for combat.turn_advanced events.
type TurnAdvancedPayload struct {
	CombatID          string `json:"combat_id"`
	Round             int    `json:"round"`
	TurnIndex         int    `json:"turn_index"`
	ActiveCombatantID string `json:"active_combatant_id"`
	ActiveName        string `json:"active_name"`
}

// AttackResolvedPayload captures the payload for action.attack_resolved events.
type AttackResolvedPayload struct {
	CombatID       string `json:"combat_id,omitempty"`
	AttackName     string `json:"attack_name"`
	D20            int    `json:"d20"`
	Modifier       int    `json:"modifier"`
	Total          int    `json:"total"`
	IsNat20        bool   `json:"is_nat20"`
	IsNat1         bool   `json:"is_nat1"`
	IsCritThreat   bool   `json:"is_crit_threat"`
	IsCrit         bool   `json:"is_crit"`
	Damage         int    `json:"damage"`
	DamageDetail   string `json:"damage_detail,omitempty"`
	TargetHPBefore int    `json:"target_hp_before"`
	TargetHPAfter  int    `json:"target_hp_after"`
}

// SpellResolvedPayload captures the payload for action.spell_resolved events.
type SpellResolvedPayload struct {
	CombatID       string   `json:"combat_id,omitempty"`
	SpellName      string   `json:"spell_name"`
	D20            int      `json:"d20"`
	Modifier       int      `json:"modifier"`
	Total          int      `json:"total"`
	CostMP         int      `json:"cost_mp"`
	Damage         int      `json:"damage"`
	DamageDetail   string   `json:"damage_detail,omitempty"`
	Effects        []string `json:"effects,omitempty"`
	ActorMPBefore  int      `json:"actor_mp_before"`
	ActorMPAfter   int      `json:"actor_mp_after"`
	TargetHPBefore int      `json:"target_hp_before,omitempty"`
	TargetHPAfter  int      `json:"target_hp_after,omitempty"`
}

// SkillResolvedPayload captures the payload for action.skill_resolved events.
type SkillResolvedPayload struct {
	CombatID  string `json:"combat_id,omitempty"`
	SkillName string `json:"skill_name"`
	D20       int    `json:"d20"`
	Modifier  int    `json:"modifier"`
	Total     int    `json:"total"`
	DC        int    `json:"dc,omitempty"`
	Success   bool   `json:"success"`
}

// ConditionAppliedPayload captures the payload for condition.applied events.
type ConditionAppliedPayload struct {
	ConditionID string `json:"condition_id"`
	Name        string `json:"name"`
	Source      string `json:"source,omitempty"`
}

// ConditionRemovedPayload captures the payload for condition.removed events.
type ConditionRemovedPayload struct {
	ConditionID string `json:"condition_id"`
}

// NoteAddedPayload captures the payload for note.added events.
type NoteAddedPayload struct {
	Text string `json:"text"`
}
