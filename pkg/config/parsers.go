package config

import (
	"flag"
	"os"
	"strings"
)

// Flags holds parsed command-line flag values and which were set.
type Flags struct {
	Addr   string
	DB     string
	Config string
	Set    map[string]bool
}

// Effective is the merged view the rest of the process runs on.
type Effective struct {
	Config  *Config
	Addr    string
	DBPath  string
	Source  string // "flags", "env" or "config"
	EnvUsed bool
}

// ParseCommandFlags parses command-line flags and records which were
// explicitly set so they can win over config and env values.
func ParseCommandFlags() Flags {
	addrPtr := flag.String("addr", ":8080", "HTTP listen address")
	dbPtr := flag.String("db", "./.database", "Pebble DB path")
	cfgPtr := flag.String("config", "./config.yaml", "Path to config file")
	flag.Parse()
	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return Flags{Addr: *addrPtr, DB: *dbPtr, Config: *cfgPtr, Set: set}
}

// ResolveConfigPath prefers an explicitly set flag, then the environment,
// then the flag default.
func ResolveConfigPath(flagVal string, flagSet bool) string {
	if flagSet {
		return flagVal
	}
	if v := os.Getenv("TUNEBOOK_CONFIG"); v != "" {
		return v
	}
	return flagVal
}

// LoadEffective merges config file, environment and flags into the
// effective runtime configuration. A missing config file is not an error;
// a malformed one is.
func LoadEffective(fl Flags) (Effective, error) {
	cfgPath := ResolveConfigPath(fl.Config, fl.Set["config"])

	cfg := &Config{}
	source := "flags"
	if b, err := Load(cfgPath); err == nil {
		cfg = b
		source = "config"
	} else if !os.IsNotExist(err) {
		return Effective{}, err
	}

	envUsed := applyEnv(cfg)
	if envUsed && source != "config" {
		source = "env"
	}

	addr := cfg.Addr()
	if fl.Set["addr"] || (cfg.Server.Address == "" && cfg.Server.Port == 0) {
		addr = fl.Addr
	}
	dbPath := cfg.Storage.DBPath
	if fl.Set["db"] || dbPath == "" {
		dbPath = fl.DB
	}

	return Effective{Config: cfg, Addr: addr, DBPath: dbPath, Source: source, EnvUsed: envUsed}, nil
}

// splitList parses a comma-separated env value into trimmed parts.
func splitList(v string) []string {
	var parts []string
	for _, p := range strings.Split(v, ",") {
		if s := strings.TrimSpace(p); s != "" {
			parts = append(parts, s)
		}
	}
	return parts
}
