package web

import (
	"errors"
	"fmt"

	"github.com/dmitrymomot/formkit/pkg/form"
)

// Config selects how the demo form validates. Values come from the
// environment through pkg/config.
type Config struct {
	Strategy       string `env:"FORM_STRATEGY" envDefault:"schema"`
	Mode           string `env:"FORM_MODE" envDefault:"onSubmit"`
	ReValidateMode string `env:"FORM_REVALIDATE_MODE" envDefault:"onChange"`
	RemovePolicy   string `env:"FORM_REMOVE_POLICY" envDefault:"protect-first"`
	DefaultLang    string `env:"DEFAULT_LANG" envDefault:"en"`
	MaxLiveForms   int    `env:"FORM_MAX_LIVE" envDefault:"1000"`
}

// DefaultConfig mirrors the environment defaults.
func DefaultConfig() Config {
	return Config{
		Strategy:       form.StrategySchema.String(),
		Mode:           form.OnSubmit.String(),
		ReValidateMode: form.OnChange.String(),
		RemovePolicy:   "protect-first",
		DefaultLang:    "en",
		MaxLiveForms:   1000,
	}
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	_, err := c.settings()
	return err
}

type settings struct {
	strategy   form.Strategy
	mode       form.Mode
	reValidate form.Mode
	policy     form.RemovePolicy
	maxLive    int
}

func (c Config) settings() (settings, error) {
	var (
		s    settings
		err  error
		errs []error
	)
	if s.strategy, err = form.ParseStrategy(c.Strategy); err != nil {
		errs = append(errs, fmt.Errorf("FORM_STRATEGY: %w", err))
	}
	if s.mode, err = form.ParseMode(c.Mode); err != nil {
		errs = append(errs, fmt.Errorf("FORM_MODE: %w", err))
	}
	if s.reValidate, err = form.ParseMode(c.ReValidateMode); err != nil {
		errs = append(errs, fmt.Errorf("FORM_REVALIDATE_MODE: %w", err))
	}
	if s.policy, err = form.ParseRemovePolicy(c.RemovePolicy); err != nil {
		errs = append(errs, fmt.Errorf("FORM_REMOVE_POLICY: %w", err))
	}
	if c.MaxLiveForms < 1 {
		errs = append(errs, fmt.Errorf("%w: FORM_MAX_LIVE must be positive", ErrInvalidConfig))
	}
	s.maxLive = c.MaxLiveForms
	if len(errs) > 0 {
		return settings{}, errors.Join(append([]error{ErrInvalidConfig}, errs...)...)
	}
	return s, nil
}
