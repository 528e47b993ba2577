package frame

import "github.com/kbyando/cinema-pipeline/internal/options"

// Config controls how strictly Demux treats conditions spec.md §7 classifies
// as non-fatal warnings. The default (lenient) mode matches spec.md exactly:
// an ASM mismatch or an unrecognized APID degrades to a flagged/UNKNOWN
// result rather than failing the frame. Strict mode exists for callers (e.g.
// a validation pass over newly-commissioned ground-segment software) that
// want those conditions surfaced as hard errors instead.
type Config struct {
	// Strict, when true, turns an ASM mismatch or unsupported APID into an
	// error instead of a lenient warning/KindUnknown fallback.
	Strict bool
}

// Opt configures a Config; use with Demux's functional-option parameter.
type Opt = options.Option[*Config]

// WithStrictDecoding enables strict mode (see Config.Strict).
func WithStrictDecoding() Opt {
	return options.NoError(func(c *Config) { c.Strict = true })
}

func newConfig(opts []Opt) (Config, error) {
	var cfg Config
	if err := options.Apply(&cfg, opts...); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
