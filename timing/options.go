package timing

import "github.com/kbyando/cinema-pipeline/internal/options"

// Config holds the tunables the timing engine's block segmentation and
// linear fit use. Defaults reproduce spec.md §4.8 exactly; the functional
// options below let a caller relax or tighten them for a particular mission
// phase without touching the algorithm itself.
type Config struct {
	// BlockThreshold is the maximum per-packet/boundary quality value that
	// still belongs to a trusted block (spec §4.8 "Block segmentation").
	BlockThreshold int

	// FitOnlyThreshold is the maximum quality value a packet within a
	// trusted block must have to contribute to the block's linear fit.
	FitOnlyThreshold int

	// FitSlopeMin and FitSlopeMax bound the fitted RTC-vs-cycle slope; a fit
	// outside this range tags the whole block QoD=17 (algorithm failed).
	FitSlopeMin, FitSlopeMax float64
}

// DefaultConfig returns the spec-mandated tunables.
func DefaultConfig() Config {
	return Config{
		BlockThreshold:   defaultBlockThreshold,
		FitOnlyThreshold: defaultFitOnlyThreshold,
		FitSlopeMin:      defaultFitSlopeMin,
		FitSlopeMax:      defaultFitSlopeMax,
	}
}

// Opt configures a Config; use with Run's functional-option parameter.
type Opt = options.Option[*Config]

// WithBlockThreshold overrides the trusted-block quality threshold.
func WithBlockThreshold(n int) Opt {
	return options.NoError(func(c *Config) { c.BlockThreshold = n })
}

// WithFitOnlyThreshold overrides the fit-eligible quality threshold.
func WithFitOnlyThreshold(n int) Opt {
	return options.NoError(func(c *Config) { c.FitOnlyThreshold = n })
}

// WithFitSlopeBounds overrides the [min,max] sanity range the fitted slope
// must fall within before a block is trusted.
func WithFitSlopeBounds(min, max float64) Opt {
	return options.NoError(func(c *Config) { c.FitSlopeMin = min; c.FitSlopeMax = max })
}

func newConfig(opts []Opt) (Config, error) {
	cfg := DefaultConfig()
	if err := options.Apply(&cfg, opts...); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
