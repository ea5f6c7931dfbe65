package session

import "time"

// Reference timings and bounds from the original widget.
const (
	DefaultTickInterval  = 50 * time.Millisecond
	DefaultWelcomeDelay  = 1000 * time.Millisecond
	DefaultPulseDuration = 1000 * time.Millisecond
	DefaultFontMin       = 12
	DefaultFontMax       = 20
	DefaultFontSize      = 14
	DefaultWelcomeText   = "Hello! How can I assist you today?"
)

// Config carries the controller's timing and presentation parameters. Zero
// values are replaced with the reference defaults.
type Config struct {
	// TickInterval is the typing reveal cadence.
	TickInterval time.Duration
	// WelcomeDelay is the pause between opening an empty widget and the
	// welcome reveal starting.
	WelcomeDelay time.Duration
	// PulseDuration is how long the transient new-message flag stays raised.
	PulseDuration time.Duration
	// FontMin and FontMax bound SetFontSize; FontSize is the initial value.
	FontMin  int
	FontMax  int
	FontSize int
	// WelcomeText is the greeting revealed on first open and on NewSession.
	WelcomeText string
}

func (c Config) withDefaults() Config {
	if c.TickInterval <= 0 {
		c.TickInterval = DefaultTickInterval
	}
	if c.WelcomeDelay <= 0 {
		c.WelcomeDelay = DefaultWelcomeDelay
	}
	if c.PulseDuration <= 0 {
		c.PulseDuration = DefaultPulseDuration
	}
	if c.FontMin <= 0 {
		c.FontMin = DefaultFontMin
	}
	if c.FontMax <= 0 {
		c.FontMax = DefaultFontMax
	}
	if c.FontSize <= 0 {
		c.FontSize = DefaultFontSize
	}
	if c.WelcomeText == "" {
		c.WelcomeText = DefaultWelcomeText
	}
	return c
}
