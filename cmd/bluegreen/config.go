// Config loading for the bluegreen CLI.
// Implements: docs/ARCHITECTURE § Configuration.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/bluegreen/internal/failflag"
	"github.com/mesh-intelligence/bluegreen/internal/paths"
	"github.com/mesh-intelligence/bluegreen/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"

	envPrefix = "BLUEGREEN"

	// Config keys.
	cfgKeyVariant       = "variant"
	cfgKeyVariantID     = "variant_id"
	cfgKeySchemaCeiling = "schema_ceiling"
	cfgKeyBackend       = "backend"
	cfgKeyDataDir       = "data_dir"
	cfgKeyListen        = "listen"
	cfgKeyPort          = "port"
	cfgKeyForceBad      = "force_bad"
	cfgKeySentinel      = "sentinel_path"
	cfgKeyLogLevel      = "log_level"
	cfgKeyLogFormat     = "log_format"

	// Flag names bound to config keys.
	flagVariant   = "variant"
	flagBackend   = "backend"
	flagDataDir   = "data-dir"
	flagSentinel  = "sentinel-path"
	flagLogLevel  = "log-level"
	flagLogFormat = "log-format"
	flagListen    = "listen"

	defaultVariant   = "blue"
	defaultPort      = 8080
	defaultLogLevel  = "info"
	defaultLogFormat = "json"
)

// flagKeys maps flag names to the config keys they override.
var flagKeys = map[string]string{
	flagVariant:   cfgKeyVariant,
	flagBackend:   cfgKeyBackend,
	flagDataDir:   cfgKeyDataDir,
	flagSentinel:  cfgKeySentinel,
	flagLogLevel:  cfgKeyLogLevel,
	flagLogFormat: cfgKeyLogFormat,
	flagListen:    cfgKeyListen,
}

// legacyEnv lists the unprefixed variables the lab's compose files set.
var legacyEnv = map[string]string{
	cfgKeyDataDir:  "DATA_DIR",
	cfgKeyPort:     "PORT",
	cfgKeyForceBad: "FORCE_BAD",
}

// Config errors.
var (
	errCustomVariant = errors.New("variant_id and schema_ceiling must be set together")
)

// configFile is the structure written to config.yaml by init.
type configFile struct {
	Variant      string `yaml:"variant"`
	Backend      string `yaml:"backend"`
	DataDir      string `yaml:"data_dir,omitempty"`
	Port         int    `yaml:"port"`
	SentinelPath string `yaml:"sentinel_path"`
	LogLevel     string `yaml:"log_level"`
	LogFormat    string `yaml:"log_format"`
}

// defaultConfigFile returns the content init writes on first run.
func defaultConfigFile(dataDir string) configFile {
	return configFile{
		Variant:      defaultVariant,
		Backend:      types.BackendFile,
		DataDir:      dataDir,
		Port:         defaultPort,
		SentinelPath: failflag.DefaultSentinelPath,
		LogLevel:     defaultLogLevel,
		LogFormat:    defaultLogFormat,
	}
}

// loadConfig reads config.yaml from configDir, layers environment variables
// and the flags in fs on top, and returns the merged view. A missing
// config.yaml is not an error.
func loadConfig(configDir string, fs *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetDefault(cfgKeyVariant, defaultVariant)
	v.SetDefault(cfgKeyBackend, types.BackendFile)
	v.SetDefault(cfgKeyPort, defaultPort)
	v.SetDefault(cfgKeyForceBad, false)
	v.SetDefault(cfgKeySentinel, failflag.DefaultSentinelPath)
	v.SetDefault(cfgKeyLogLevel, defaultLogLevel)
	v.SetDefault(cfgKeyLogFormat, defaultLogFormat)

	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	for key, legacy := range legacyEnv {
		if err := v.BindEnv(key, envPrefix+"_"+strings.ToUpper(key), legacy); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	if fs != nil {
		for name, key := range flagKeys {
			if f := fs.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	return v, nil
}

// variantFrom resolves the variant identity and ceiling. A custom variant
// needs both variant_id and schema_ceiling; otherwise the preset named by
// variant is used.
func variantFrom(v *viper.Viper) (types.Variant, error) {
	id := v.GetString(cfgKeyVariantID)
	ceilingSet := v.IsSet(cfgKeySchemaCeiling)

	if id == "" && !ceilingSet {
		return types.LookupVariant(v.GetString(cfgKeyVariant))
	}
	if id == "" || !ceilingSet {
		return types.Variant{}, errCustomVariant
	}

	custom := types.Variant{ID: id, SchemaCeiling: v.GetInt(cfgKeySchemaCeiling)}
	if err := custom.Validate(); err != nil {
		return types.Variant{}, err
	}
	return custom, nil
}

// storeConfigFrom resolves the backend and an absolute data directory.
func storeConfigFrom(v *viper.Viper) (types.Config, error) {
	dataDir, err := paths.ResolveDataDir(v.GetString(cfgKeyDataDir))
	if err != nil {
		return types.Config{}, fmt.Errorf("resolve data dir: %w", err)
	}
	c := types.Config{
		Backend: v.GetString(cfgKeyBackend),
		DataDir: dataDir,
	}
	if err := c.Validate(); err != nil {
		return types.Config{}, fmt.Errorf("%w: %q", err, c.Backend)
	}
	return c, nil
}

// listenAddr returns listen if set, otherwise ":" + port.
func listenAddr(v *viper.Viper) string {
	if addr := v.GetString(cfgKeyListen); addr != "" {
		return addr
	}
	return ":" + strconv.Itoa(v.GetInt(cfgKeyPort))
}

// writeConfigIfMissing creates config.yaml with default values if the file
// does not exist. Reports whether a file was written.
func writeConfigIfMissing(configDir, dataDir string) (bool, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return false, fmt.Errorf("create config directory: %w", err)
	}

	path := filepath.Join(configDir, configFileExt)
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("stat config file: %w", err)
	}

	data, err := yaml.Marshal(defaultConfigFile(dataDir))
	if err != nil {
		return false, fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return false, err
	}
	return true, nil
}
