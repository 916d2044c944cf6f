package prediction

import "fmt"

// Radius policy names accepted by RadiusConfig.Policy.
const (
	PolicyFixed      = "fixed"
	PolicyDispersion = "dispersion"
)

// Config holds the estimator settings.
type Config struct {
	// Auto re-estimates after every append to the track.
	Auto bool `json:"auto"`
	// Segments is the default vertex count of uncertainty rings.
	Segments int          `json:"segments"`
	Radius   RadiusConfig `json:"radius"`
}

// RadiusConfig selects and tunes the RadiusPolicy.
type RadiusConfig struct {
	Policy string  `json:"policy"`
	Meters float64 `json:"meters"`
	K      float64 `json:"k"`
	MinM   float64 `json:"min_m"`
	MaxM   float64 `json:"max_m"`
}

// SetDefaults applies the fixed 200 m radius and 60 ring segments.
func (c *Config) SetDefaults() {
	if c.Segments == 0 {
		c.Segments = DefaultSegments
	}
	if c.Radius.Policy == "" {
		c.Radius.Policy = PolicyFixed
	}
	if c.Radius.Meters == 0 {
		c.Radius.Meters = DefaultRadiusM
	}
	if c.Radius.Policy == PolicyDispersion && c.Radius.K == 0 {
		c.Radius.K = 2
	}
}

// Validate checks the settings.
func (c Config) Validate() error {
	if c.Segments <= 0 {
		return fmt.Errorf("prediction: segments must be positive")
	}
	if c.Radius.Meters < 0 || c.Radius.MinM < 0 || c.Radius.K < 0 {
		return fmt.Errorf("prediction: radius settings must not be negative")
	}
	if c.Radius.MaxM > 0 && c.Radius.MaxM < c.Radius.MinM {
		return fmt.Errorf("prediction: radius max_m below min_m")
	}
	switch c.Radius.Policy {
	case PolicyFixed, PolicyDispersion:
		return nil
	default:
		return fmt.Errorf("prediction: unknown radius policy %q", c.Radius.Policy)
	}
}

// NewPolicy builds the configured RadiusPolicy. For the dispersion policy
// Meters is the fallback used on short tracks.
func (c RadiusConfig) NewPolicy() RadiusPolicy {
	if c.Policy == PolicyDispersion {
		return DispersionRadius{K: c.K, MinM: c.MinM, MaxM: c.MaxM, Fallback: c.Meters}
	}
	return FixedRadius(c.Meters)
}
