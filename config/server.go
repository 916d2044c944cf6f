package config

// TrackConfig bounds the in-memory observation sequence.
type TrackConfig struct {
	// MaxLen keeps only the most recent observations; zero keeps all.
	MaxLen int `json:"max_len" validate:"gte=0"`
	// SeedSample preloads the synthetic trail from the sample section so the
	// service has something to predict before the first upload.
	SeedSample bool `json:"seed_sample"`
}

// HTTPConfig defines the API listener.
type HTTPConfig struct {
	Addr string `json:"addr" validate:"required,listen_addr"`
	// Token enables bearer authentication on /api routes when set.
	Token string `json:"token"`
}

// SetDefaults applies sane defaults.
func (c *HTTPConfig) SetDefaults() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
}
