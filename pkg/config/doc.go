// Package config loads typed configuration from the environment with
// github.com/caarlos0/env/v11, reading .env files through
// github.com/joho/godotenv.
//
// Load caches one parsed value per config type for the life of the
// process; Parse skips the cache. Configs implementing Validator are
// checked after parsing, so a misspelt FORM_MODE fails at start-up rather
// than on the first request:
//
//	type FormConfig struct {
//		Mode string `env:"FORM_MODE" envDefault:"onSubmit"`
//	}
//
//	func (c FormConfig) Validate() error {
//		_, err := form.ParseMode(c.Mode)
//		return err
//	}
//
//	var cfg FormConfig
//	config.MustLoad(&cfg)
package config
