package profile

import (
	"fmt"
	"regexp"

	"github.com/matheus3301/wpp-client/internal/config"
)

const DefaultName = "main"

var nameRegexp = regexp.MustCompile(`^[a-z0-9_-]{1,64}$`)

// ValidateName checks that name conforms to profile naming rules.
func ValidateName(name string) error {
	if !nameRegexp.MatchString(name) {
		return fmt.Errorf("invalid profile name %q: must match ^[a-z0-9_-]{1,64}$", name)
	}
	return nil
}

// Resolve picks the active profile name:
// 1. flagOverride (--profile flag)
// 2. default_profile from cfg
// 3. "main"
func Resolve(flagOverride string, cfg *config.Config) string {
	if flagOverride != "" {
		return flagOverride
	}
	if cfg != nil && cfg.DefaultProfile != "" {
		return cfg.DefaultProfile
	}
	return DefaultName
}

// Active is a resolved profile: its name and merged settings.
type Active struct {
	Name     string
	Settings config.Profile
}

// Load reads the config file, selects the profile and resolves its
// settings. A .env file in the working directory is applied first.
func Load(flagOverride string) (Active, error) {
	if err := config.LoadDotEnv(".env"); err != nil {
		return Active{}, err
	}
	cfg, err := config.LoadOrEmpty(ConfigPath())
	if err != nil {
		return Active{}, err
	}
	name := Resolve(flagOverride, cfg)
	if err := ValidateName(name); err != nil {
		return Active{}, err
	}
	settings, err := config.Resolve(cfg, name)
	if err != nil {
		return Active{}, err
	}
	return Active{Name: name, Settings: settings}, nil
}
