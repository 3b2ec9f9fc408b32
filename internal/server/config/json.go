package config

import (
	"encoding/json"
	"os"

	"github.com/silvercar/backend/internal/flagx"
	"github.com/silvercar/backend/internal/timex"
)

// JsonConfig is the DTO for the optional JSON config file. Duration fields
// accept both "15m"-style strings and integer nanoseconds. Absent fields
// leave the corresponding Config value untouched.
type JsonConfig struct {
	HTTPAddr       *string         `json:"http_addr"`
	DatabaseDSN    *string         `json:"database_dsn"`
	PrivateKeyPath *string         `json:"private_key_path"`
	PublicKeyPath  *string         `json:"public_key_path"`
	AccessTokenTTL *timex.Duration `json:"access_token_ttl"`
	ResetTokenTTL  *timex.Duration `json:"reset_token_ttl"`
	HashCost       *int            `json:"hash_cost"`
	SMTPHost       *string         `json:"smtp_host"`
	SMTPPort       *int            `json:"smtp_port"`
	SMTPFrom       *string         `json:"smtp_from"`
	SMTPPassword   *string         `json:"smtp_password"`
	SMTPTimeout    *timex.Duration `json:"smtp_timeout"`
}

// parseJson overlays values from the JSON file named by -c/-config onto cfg.
// If no flag is given, nothing is loaded. An unreadable or invalid file is a
// startup failure and panics, matching the flag parser's behavior.
func parseJson(cfg *Config) {

	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	if c.HTTPAddr != nil {
		cfg.HTTPAddr = *c.HTTPAddr
	}
	if c.DatabaseDSN != nil {
		cfg.DatabaseDSN = *c.DatabaseDSN
	}
	if c.PrivateKeyPath != nil {
		cfg.PrivateKeyPath = *c.PrivateKeyPath
	}
	if c.PublicKeyPath != nil {
		cfg.PublicKeyPath = *c.PublicKeyPath
	}
	if c.AccessTokenTTL != nil {
		cfg.AccessTokenTTL = c.AccessTokenTTL.Duration
	}
	if c.ResetTokenTTL != nil {
		cfg.ResetTokenTTL = c.ResetTokenTTL.Duration
	}
	if c.HashCost != nil {
		cfg.HashCost = *c.HashCost
	}
	if c.SMTPHost != nil {
		cfg.SMTPHost = *c.SMTPHost
	}
	if c.SMTPPort != nil {
		cfg.SMTPPort = *c.SMTPPort
	}
	if c.SMTPFrom != nil {
		cfg.SMTPFrom = *c.SMTPFrom
	}
	if c.SMTPPassword != nil {
		cfg.SMTPPassword = *c.SMTPPassword
	}
	if c.SMTPTimeout != nil {
		cfg.SMTPTimeout = c.SMTPTimeout.Duration
	}
}
