package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/spf13/viper"
)

type Config struct {
	DatabasePath       string `json:"databasePath" mapstructure:"databasePath"`
	ArchivePath        string `json:"archivePath" mapstructure:"archivePath"`
	ArchiveSheet       string `json:"archiveSheet" mapstructure:"archiveSheet"`
	EntrySheet         string `json:"entrySheet" mapstructure:"entrySheet"`
	ReportTemplatePath string `json:"reportTemplatePath" mapstructure:"reportTemplatePath"`
	ReportDir          string `json:"reportDir" mapstructure:"reportDir"`
	ReportTitle        string `json:"reportTitle" mapstructure:"reportTitle"`
	ProductFilter      string `json:"productFilter" mapstructure:"productFilter"`
	LegacyEncoding     string `json:"legacyEncoding" mapstructure:"legacyEncoding"`
	ListenAddr         string `json:"listenAddr" mapstructure:"listenAddr"`
}

var (
	cfg  = Defaults()
	mu   sync.RWMutex
	path = "./saltbath_config.json"
)

const envPrefix = "SALTBATH"

// Defaults is the configuration used when no file exists.
func Defaults() Config {
	return Config{
		DatabasePath:       "./saltbath.db",
		ArchivePath:        "total.xlsx",
		ArchiveSheet:       "111",
		ReportTemplatePath: "model.xlsx",
		ReportDir:          ".",
		ReportTitle:        "265缸套盐浴报告",
		ProductFilter:      "265",
		ListenAddr:         ":8080",
	}
}

// SetConfigPath changes the file read by LoadConfig and written by SaveConfig.
func SetConfigPath(p string) {
	mu.Lock()
	defer mu.Unlock()
	path = p
}

// LoadConfig reads the config file, overlays SALTBATH_* environment variables and
// fills in defaults. A missing file is not an error.
func LoadConfig() (Config, error) {
	mu.Lock()
	defer mu.Unlock()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	def := Defaults()
	v.SetDefault("databasePath", def.DatabasePath)
	v.SetDefault("archivePath", def.ArchivePath)
	v.SetDefault("archiveSheet", def.ArchiveSheet)
	v.SetDefault("entrySheet", def.EntrySheet)
	v.SetDefault("reportTemplatePath", def.ReportTemplatePath)
	v.SetDefault("reportDir", def.ReportDir)
	v.SetDefault("reportTitle", def.ReportTitle)
	v.SetDefault("productFilter", def.ProductFilter)
	v.SetDefault("legacyEncoding", def.LegacyEncoding)
	v.SetDefault("listenAddr", def.ListenAddr)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("failed to read %s: %w", path, err)
		}
	}

	var tempCfg Config
	if err := v.Unmarshal(&tempCfg); err != nil {
		return cfg, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg = withDefaults(tempCfg)
	return cfg, nil
}

func SaveConfig(newCfg Config) error {
	mu.Lock()
	defer mu.Unlock()

	newCfg = withDefaults(newCfg)
	file, err := json.MarshalIndent(newCfg, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, file, 0644); err != nil {
		return err
	}
	cfg = newCfg
	return nil
}

func GetConfig() Config {
	mu.RLock()
	defer mu.RUnlock()
	return cfg
}

func withDefaults(c Config) Config {
	def := Defaults()
	if c.DatabasePath == "" {
		c.DatabasePath = def.DatabasePath
	}
	if c.ArchiveSheet == "" {
		c.ArchiveSheet = def.ArchiveSheet
	}
	if c.ReportTitle == "" {
		c.ReportTitle = def.ReportTitle
	}
	if c.ProductFilter == "" {
		c.ProductFilter = def.ProductFilter
	}
	if c.ReportDir == "" {
		c.ReportDir = def.ReportDir
	}
	if c.ListenAddr == "" {
		c.ListenAddr = def.ListenAddr
	}
	return c
}
