package quadtree

const (
	minSideFloor         = 0.001
	defaultMaxExpansions = 32
)

// Config holds the tree-wide settings shared by every node.
type Config struct {
	// QuadrantCapacity is the number of entities a leaf holds before it
	// tries to subdivide.
	QuadrantCapacity int

	// MinQuadrantSideSize is the smallest XZ side a subdivision may produce.
	MinQuadrantSideSize float32

	// Frozen disables subdivision, merging, expansion and height growth.
	Frozen bool

	// DisableMerge keeps empty quadrants after removals.
	DisableMerge bool

	// MaxExpansions bounds the number of root doublings for a single add.
	MaxExpansions int
}

func DefaultConfig() Config {
	return Config{
		QuadrantCapacity:    8,
		MinQuadrantSideSize: 4,
		MaxExpansions:       defaultMaxExpansions,
	}
}

func (c Config) normalized() Config {
	if c.QuadrantCapacity < 1 {
		c.QuadrantCapacity = 1
	}
	if c.MinQuadrantSideSize < minSideFloor {
		c.MinQuadrantSideSize = minSideFloor
	}
	if c.MaxExpansions <= 0 {
		c.MaxExpansions = defaultMaxExpansions
	}
	return c
}
