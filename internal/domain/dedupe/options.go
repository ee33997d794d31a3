package dedupe

// Option configures a Deduper.
type Option func(*ringDeduper)

// WithMaxSize bounds how many IDs are remembered. Zero or negative keeps
// every ID.
func WithMaxSize(maxSize int) Option {
	return func(d *ringDeduper) {
		d.maxSize = maxSize
	}
}
