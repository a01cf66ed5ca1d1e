package catalog

// GameMode is a player game mode, identified by its namespaced key.
type GameMode string

// Key returns the namespaced key.
func (g GameMode) Key() string { return string(g) }

// Vanilla game modes.
const (
	Survival  GameMode = "minecraft:survival"
	Creative  GameMode = "minecraft:creative"
	Adventure GameMode = "minecraft:adventure"
	Spectator GameMode = "minecraft:spectator"
)

// DimensionType is a kind of world dimension, identified by its namespaced key.
type DimensionType string

// Key returns the namespaced key.
func (d DimensionType) Key() string { return string(d) }

// Vanilla dimension kinds.
const (
	Nether    DimensionType = "minecraft:the_nether"
	Overworld DimensionType = "minecraft:overworld"
	TheEnd    DimensionType = "minecraft:the_end"
)

// DefaultGameModes returns a registry holding the vanilla game modes.
func DefaultGameModes() *Registry[GameMode] {
	r := NewRegistry[GameMode]()
	r.MustRegister(Survival, 0)
	r.MustRegister(Creative, 1)
	r.MustRegister(Adventure, 2)
	r.MustRegister(Spectator, 3)
	return r
}

// DefaultDimensions returns a registry holding the vanilla dimension kinds.
func DefaultDimensions() *Registry[DimensionType] {
	r := NewRegistry[DimensionType]()
	r.MustRegister(Nether, -1)
	r.MustRegister(Overworld, 0)
	r.MustRegister(TheEnd, 1)
	return r
}
