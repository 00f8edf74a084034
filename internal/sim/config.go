// internal/sim/config.go
package sim

import "time"

// Config holds every tunable of the simulation engine. Values are in pixels
// and milliseconds unless noted; speeds are pixels per second.
type Config struct {
	WorldWidth  float64 `json:"world_width"`
	WorldHeight float64 `json:"world_height"`

	// Movement
	BaseSpeed         float64 `json:"base_speed"`
	WalkSpeedFactor   float64 `json:"walk_speed_factor"`
	ArriveThreshold   float64 `json:"arrive_threshold"`
	HeadingJitterProb float64 `json:"heading_jitter_prob"` // per tick

	// Collision
	HitBoxRadius  float64 `json:"hitbox_radius"`
	CollisionPush float64 `json:"collision_push"` // fraction of penetration depth

	// Trap circles
	TrapPushback float64 `json:"trap_pushback"`

	// Social protocol
	RadiusMin           float64 `json:"radius_min"` // interaction radius at aura=0
	RadiusMax           float64 `json:"radius_max"` // interaction radius at aura=1
	PairProb            float64 `json:"pair_prob"`  // per tick per overlapping pair
	JoinProb            float64 `json:"join_prob"`
	EncounterRadius     float64 `json:"encounter_radius"`
	EncounterDurationMS float64 `json:"encounter_duration_ms"`

	DiscussionProb       float64 `json:"discussion_prob"`
	DiscussionCooldownMS float64 `json:"discussion_cooldown_ms"`
	DiscussionDurationMS float64 `json:"discussion_duration_ms"`

	ConverseProb  float64 `json:"converse_prob"`
	ConverseMinMS float64 `json:"converse_min_ms"`
	ConverseMaxMS float64 `json:"converse_max_ms"`

	// Graph gravity (abstract mode)
	GravityStrength      float64 `json:"gravity_strength"`
	GravityWeightCap     float64 `json:"gravity_weight_cap"`
	GravityMinSeparation float64 `json:"gravity_min_separation"`

	// Interaction graph decay, weight-milliseconds removed per second idle.
	DecayRatePerSecond float64 `json:"decay_rate_per_second"`

	// History
	HistoryCap       int           `json:"history_cap"`
	SnapshotInterval time.Duration `json:"-"`

	// Speech
	SpeechDurationMS float64 `json:"speech_duration_ms"`

	// Tick rate of the host loop, ticks per second.
	TickRate int `json:"tick_rate"`
}

// DefaultConfig returns the tuning used by the live visualization.
func DefaultConfig() Config {
	return Config{
		WorldWidth:  1600,
		WorldHeight: 900,

		BaseSpeed:         55,
		WalkSpeedFactor:   1.5,
		ArriveThreshold:   3,
		HeadingJitterProb: 0.01,

		HitBoxRadius:  14,
		CollisionPush: 0.25,

		TrapPushback: 2,

		RadiusMin:           40,
		RadiusMax:           120,
		PairProb:            0.004,
		JoinProb:            0.0015,
		EncounterRadius:     90,
		EncounterDurationMS: 18000,

		DiscussionProb:       0.002,
		DiscussionCooldownMS: 12000,
		DiscussionDurationMS: 15000,

		ConverseProb:  0.003,
		ConverseMinMS: 4000,
		ConverseMaxMS: 12000,

		GravityStrength:      22,
		GravityWeightCap:     30000,
		GravityMinSeparation: 48,

		DecayRatePerSecond: 150,

		HistoryCap:       240,
		SnapshotInterval: 5 * time.Second,

		SpeechDurationMS: 4000,

		TickRate: 30,
	}
}
