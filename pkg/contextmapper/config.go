package contextmapper

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config tunes how the mapper recovers from malformed legacy documents
// before handing a schema-valid context to the engine.
type Config struct {
	// MaxRuleDepth caps SegmentRule nesting; rules beyond this depth are
	// truncated rather than mapped, and a warning is logged.
	MaxRuleDepth int `mapstructure:"max_rule_depth"`

	// StrictOperators, when true, turns an unrecognized legacy operator
	// literal into a mapping error. When false (the default), unknown
	// operators are coerced to EQUAL and a warning is logged.
	StrictOperators bool `mapstructure:"strict_operators"`
}

// LoadConfig reads mapper tunables from environment variables prefixed
// FLAGCORE_ and an optional config file, falling back to defaults when
// neither is present.
func LoadConfig() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("FLAGCORE")
	v.AutomaticEnv()

	v.SetConfigName("flagcore")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read mapper config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal mapper config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("max_rule_depth", 32)
	v.SetDefault("strict_operators", false)
}
