package clock

import (
	"time"

	"go.uber.org/zap"
)

// Provider resolves "now" in a named IANA timezone. Unknown zone names fall
// back to the configured default zone with a logged warning; resolution never
// fails the calling operation.
type Provider struct {
	defaultLoc *time.Location
	logger     *zap.SugaredLogger

	// NowFunc returns the current UTC instant. Overridable in tests.
	NowFunc func() time.Time
}

// NewProvider creates a clock provider with the given default timezone.
// An invalid default falls back to UTC.
func NewProvider(defaultTimezone string, logger *zap.SugaredLogger) *Provider {
	loc, err := time.LoadLocation(defaultTimezone)
	if err != nil {
		logger.Warnw("invalid default timezone, using UTC", "timezone", defaultTimezone, "error", err)
		loc = time.UTC
	}
	return &Provider{
		defaultLoc: loc,
		logger:     logger,
		NowFunc:    func() time.Time { return time.Now().UTC() },
	}
}

// LocationOf resolves a timezone name, falling back to the default zone.
// An empty name resolves to the default without a warning.
func (p *Provider) LocationOf(timezone string) *time.Location {
	if timezone == "" {
		return p.defaultLoc
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		p.logger.Warnw("unknown timezone, falling back to default", "timezone", timezone, "default", p.defaultLoc.String())
		return p.defaultLoc
	}
	return loc
}

// NowIn returns the current time in the named timezone.
func (p *Provider) NowIn(timezone string) time.Time {
	return p.NowFunc().In(p.LocationOf(timezone))
}

// Default returns the fallback location.
func (p *Provider) Default() *time.Location {
	return p.defaultLoc
}
