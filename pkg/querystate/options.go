package querystate

import (
	"log/slog"
	"time"

	"github.com/querysync-dev/querysync/pkg/schema"
)

// Mode determines how publishes reach the history stack.
type Mode int

const (
	// ModePush adds a new history entry per publish (default).
	// Every committed parameter change is independently back/forward
	// navigable.
	ModePush Mode = iota

	// ModeReplace updates the address without creating history entries.
	// Use for search-as-you-type filters to avoid back-button spam.
	ModeReplace
)

// Option configures a State at construction time.
type Option func(*config)

type config struct {
	defaults map[string]schema.Value
	mode     Mode
	debounce time.Duration
	logger   *slog.Logger
}

// WithDefaults supplies initial values used only when the bootstrapped
// address carries no query string at all. Defaults are trusted verbatim;
// no validation is applied to them.
func WithDefaults(defaults map[string]schema.Value) Option {
	return func(c *config) {
		c.defaults = defaults
	}
}

// WithReplace switches publishes to history-replace mode.
func WithReplace() Option {
	return func(c *config) {
		c.mode = ModeReplace
	}
}

// WithDebounce delays each publish by d, collapsing rapid successive
// mutations into one address write. The store itself always updates
// immediately; only the address lags.
func WithDebounce(d time.Duration) Option {
	return func(c *config) {
		c.debounce = d
	}
}

// WithLogger sets the logger used for dropped-key and publish logging.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}
