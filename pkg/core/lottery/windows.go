package lottery

import "fmt"

// WindowConfig describes how a site's operating hours split into named
// time-of-day windows. Either BucketCount or explicit Buckets must be set;
// explicit buckets win when both are present.
type WindowConfig struct {
	OpenMinute  int
	CloseMinute int
	BucketCount int
	Buckets     []TimeWindow
}

// defaultLabels indexes canonical bucket names by bucket count.
// Golf demand concentrates early, so the morning label always exists.
var defaultLabels = map[int][]string{
	1: {"all day"},
	2: {"morning", "afternoon"},
	3: {"morning", "midday", "afternoon"},
	4: {"morning", "midday", "afternoon", "evening"},
}

// ResolveWindows converts the site's operating-hours configuration into an
// ordered list of contiguous, non-overlapping windows covering the full
// range. The result is deterministic for a given configuration; every
// valid minute-of-day belongs to exactly one window. A malformed
// configuration is a fatal error: the run must not start without windows.
func ResolveWindows(cfg WindowConfig) ([]TimeWindow, error) {
	if len(cfg.Buckets) > 0 {
		return resolveExplicit(cfg)
	}

	if cfg.OpenMinute < 0 || cfg.CloseMinute > 24*60 {
		return nil, fmt.Errorf("operating hours outside the day: open=%d close=%d", cfg.OpenMinute, cfg.CloseMinute)
	}
	if cfg.CloseMinute <= cfg.OpenMinute {
		return nil, fmt.Errorf("close time %d is not after open time %d", cfg.CloseMinute, cfg.OpenMinute)
	}
	labels, ok := defaultLabels[cfg.BucketCount]
	if !ok {
		return nil, fmt.Errorf("unsupported bucket count %d (want 1-4 or explicit buckets)", cfg.BucketCount)
	}

	// Even split; the last bucket absorbs the remainder so the full
	// range stays covered.
	total := cfg.CloseMinute - cfg.OpenMinute
	width := total / cfg.BucketCount

	windows := make([]TimeWindow, cfg.BucketCount)
	start := cfg.OpenMinute
	for i := 0; i < cfg.BucketCount; i++ {
		end := start + width
		if i == cfg.BucketCount-1 {
			end = cfg.CloseMinute
		}
		windows[i] = TimeWindow{Label: labels[i], StartMinute: start, EndMinute: end}
		start = end
	}
	return windows, nil
}

// resolveExplicit validates caller-supplied buckets: contiguous, ordered,
// non-overlapping, covering [open, close).
func resolveExplicit(cfg WindowConfig) ([]TimeWindow, error) {
	buckets := cfg.Buckets
	seen := make(map[string]bool, len(buckets))
	for i, b := range buckets {
		if b.Label == "" {
			return nil, fmt.Errorf("bucket %d has no label", i)
		}
		if seen[b.Label] {
			return nil, fmt.Errorf("duplicate bucket label %q", b.Label)
		}
		seen[b.Label] = true
		if b.EndMinute <= b.StartMinute {
			return nil, fmt.Errorf("bucket %q ends at %d, before its start %d", b.Label, b.EndMinute, b.StartMinute)
		}
		if i > 0 && b.StartMinute != buckets[i-1].EndMinute {
			return nil, fmt.Errorf("gap or overlap between buckets %q and %q", buckets[i-1].Label, b.Label)
		}
	}
	if buckets[0].StartMinute != cfg.OpenMinute {
		return nil, fmt.Errorf("first bucket starts at %d, operating hours open at %d", buckets[0].StartMinute, cfg.OpenMinute)
	}
	if last := buckets[len(buckets)-1]; last.EndMinute != cfg.CloseMinute {
		return nil, fmt.Errorf("last bucket ends at %d, operating hours close at %d", last.EndMinute, cfg.CloseMinute)
	}

	out := make([]TimeWindow, len(buckets))
	copy(out, buckets)
	return out, nil
}
