package parser

// Pass names the extraction pass that ran last.
type Pass string

const (
	PassStrict   Pass = "strict"
	PassFallback Pass = "fallback"
)

// Diagnostics counts what happened to the candidates of one Extract call.
// It is informational only and never changes the result.
type Diagnostics struct {
	Total         int  `json:"total"`
	Kept          int  `json:"kept"`
	SkippedHeader int  `json:"skipped_header"`
	SkippedBanner int  `json:"skipped_banner"`
	NoDate        int  `json:"no_date"`
	NoSignals     int  `json:"no_signals"`
	Strict        int  `json:"strict"`
	Fallback      int  `json:"fallback"`
	Pass          Pass `json:"pass"`
}

func (d *Diagnostics) reject(v Verdict) {
	switch v {
	case RejectHeader:
		d.SkippedHeader++
	case RejectBanner:
		d.SkippedBanner++
	case RejectNoSignals:
		d.NoSignals++
	}
}

// LogArgs returns flat key/value pairs for slog.
func (d Diagnostics) LogArgs() []any {
	return []any{
		"pass", d.Pass,
		"total", d.Total,
		"kept", d.Kept,
		"skipped_header", d.SkippedHeader,
		"skipped_banner", d.SkippedBanner,
		"no_date", d.NoDate,
		"no_signals", d.NoSignals,
		"strict", d.Strict,
		"fallback", d.Fallback,
	}
}
