package migration

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/charmbracelet/huh"
	"github.com/spf13/viper"

	"github.com/inex/cerb5-to-zendesk/internal/zendesk"
)

const (
	configFileName = "migrator_config"
	configFileExt  = "json"

	defaultRequestsPerMinute = 200
	defaultSpamBucketId      = 4
)

type Config struct {
	Zendesk       ZendeskCfg        `mapstructure:"zendesk" json:"zendesk"`
	Cerb          CerbCfg           `mapstructure:"cerb" json:"cerb"`
	Agents        []Agent           `mapstructure:"agents" json:"agents"`
	EmailRewrites map[string]string `mapstructure:"email_rewrites" json:"email_rewrites"`
}

type ZendeskCfg struct {
	Creds             zendesk.Creds `mapstructure:"api_creds" json:"api_creds"`
	RequestsPerMinute int           `mapstructure:"requests_per_minute" json:"requests_per_minute"`
}

type CerbCfg struct {
	Dsn          string `mapstructure:"dsn" json:"dsn"`
	StoragePath  string `mapstructure:"storage_path" json:"storage_path"`
	SpamBucketId int64  `mapstructure:"spam_bucket_id" json:"spam_bucket_id"`
}

// Agent is one row of the hand-maintained owner mapping: a Cerb5 worker id
// and the Zendesk user it migrates to. Operators edit this in the config
// file; there is no remote lookup for agents.
type Agent struct {
	Name          string `mapstructure:"name" json:"name"`
	CerbWorkerId  int64  `mapstructure:"cerb_worker_id" json:"cerb_worker_id"`
	ZendeskUserId int64  `mapstructure:"zendesk_user_id" json:"zendesk_user_id"`
}

// InitConfig reads the config file, creating one with defaults on first run.
// An empty cfgFile means the default location in the user's home directory.
func InitConfig(cfgFile string) (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("getting home directory: %w", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(home)
		viper.SetConfigType(configFileExt)
		viper.SetConfigName(configFileName)
	}

	setCfgDefaults()

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}

		path := filepath.Join(home, configFileName+"."+configFileExt)
		fmt.Println("Creating default config file at", path)
		if err := viper.WriteConfigAs(path); err != nil {
			return nil, fmt.Errorf("creating default config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return cfg, nil
}

func setCfgDefaults() {
	slog.Debug("setting config defaults")
	viper.SetDefault("zendesk", ZendeskCfg{RequestsPerMinute: defaultRequestsPerMinute})
	viper.SetDefault("cerb", CerbCfg{SpamBucketId: defaultSpamBucketId})
	viper.SetDefault("agents", []Agent{})

	// zendesk refuses users matching its own inbound mail addresses, so those
	// get substituted before validation
	viper.SetDefault("email_rewrites", map[string]string{
		"operations@example.com": "ops@example.com",
	})
}

func (cfg *Config) Validate() error {
	slog.Debug("validating required fields")
	var missing []string

	requiredFields := map[string]string{
		"zendesk.api_creds.token":     cfg.Zendesk.Creds.Token,
		"zendesk.api_creds.username":  cfg.Zendesk.Creds.Username,
		"zendesk.api_creds.subdomain": cfg.Zendesk.Creds.Subdomain,
		"cerb.dsn":                    cfg.Cerb.Dsn,
		"cerb.storage_path":           cfg.Cerb.StoragePath,
	}

	for k, v := range requiredFields {
		if v == "" {
			slog.Warn("missing required config value", "key", k)
			missing = append(missing, k)
		}
	}

	if len(missing) > 0 {
		slog.Error("missing required config values", "missing", missing)
		return fmt.Errorf("missing required config values: %v", missing)
	}

	return nil
}

// RunCredsForm interactively collects the Zendesk credentials and writes them
// back to the config file.
func (cfg *Config) RunCredsForm() error {
	if err := cfg.credsForm().Run(); err != nil {
		return fmt.Errorf("running creds form: %w", err)
	}

	viper.Set("zendesk", cfg.Zendesk)
	if err := viper.WriteConfig(); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

func (cfg *Config) credsForm() *huh.Form {
	return huh.NewForm(
		inputGroup("Zendesk Token", &cfg.Zendesk.Creds.Token, requiredInput, true),
		inputGroup("Zendesk Username", &cfg.Zendesk.Creds.Username, requiredInput, true),
		inputGroup("Zendesk Subdomain", &cfg.Zendesk.Creds.Subdomain, requiredInput, true),
	).WithHeight(3).WithShowHelp(false).WithTheme(huh.ThemeBase16())
}

// inputGroup creates a huh Group with an input field, this is just to make cfg.credsForm prettier.
func inputGroup(title string, value *string, validate func(string) error, inline bool) *huh.Group {
	return huh.NewGroup(
		huh.NewInput().
			Title(title).
			Placeholder(*value).
			Validate(validate).
			Inline(inline).
			Value(value),
	)
}

// Validator for required huh Input fields
func requiredInput(s string) error {
	if s == "" {
		return errors.New("field is required")
	}
	return nil
}
