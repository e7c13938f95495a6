package common

import (
	"fmt"
	"os"
	"time"

	"github.com/flashbots/arcpoll/protocol"
	"github.com/flashbots/arcpoll/store"
	"gopkg.in/yaml.v3"
)

// Config is the YAML configuration shared by the poll binaries.
type Config struct {
	HTTPAddr string `yaml:"http_addr"`
	RPCURL   string `yaml:"rpc_url"`

	LogLevel string `yaml:"log_level"`
	LogJSON  bool   `yaml:"log_json"`

	AllowedOrigins []string `yaml:"allowed_origins"`
	EnablePprof    bool     `yaml:"enable_pprof"`

	Program    *protocol.ProgramConfig `yaml:"program"`
	Encryption EncryptionConfig        `yaml:"encryption"`

	// Postgres enables the persistent reveal archive. Nil keeps reveals in memory.
	Postgres *store.PostgresConfig `yaml:"postgres"`

	// Keypair is a solana-keygen JSON file used by pollctl to sign and submit.
	Keypair string `yaml:"keypair"`
}

// EncryptionConfig selects where the coordinator's public key comes from.
// The first non-empty source wins: StaticKey, KeyURL, then the MXE account.
type EncryptionConfig struct {
	StaticKey string `yaml:"static_key"`
	KeyURL    string `yaml:"key_url"`

	// KeyFromMXE reads the key from the program's MXE account at KeyOffset.
	KeyFromMXE bool `yaml:"key_from_mxe"`
	KeyOffset  int  `yaml:"key_offset"`

	RetryAttempts int           `yaml:"retry_attempts"`
	RetryDelay    time.Duration `yaml:"retry_delay"`
}

// DefaultConfig targets devnet with fallback encryption and an in-memory archive.
func DefaultConfig() *Config {
	return &Config{
		HTTPAddr: ":8080",
		RPCURL:   "https://api.devnet.solana.com",
		LogLevel: "info",
		Program:  protocol.DefaultProgramConfig(),
		Encryption: EncryptionConfig{
			RetryAttempts: 5,
			RetryDelay:    800 * time.Millisecond,
		},
	}
}

// LoadConfig reads a YAML file over DefaultConfig.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes YAML over DefaultConfig and validates the program section.
func ParseConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.Program == nil {
		cfg.Program = protocol.DefaultProgramConfig()
	}
	if err := cfg.Program.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
