package cmd

import (
	"errors"
	"opspulse/lib/configuration"
	"opspulse/lib/sysmon"
	"os"

	"dario.cat/mergo"
)

type FetchConfig struct {
	Endpoint string `json:"endpoint"`
	// Select projects each fetched object down to these dotted paths.
	Select         []string `json:"select"`
	RequiredKeys   []string `json:"required_keys"`
	TimeoutSeconds int      `json:"timeout_seconds"`
}

type StockConfig struct {
	Endpoint string `json:"endpoint"`
	ApiKey   string `json:"api_key"`
	// SymbolPattern is the accepted ticker format.
	SymbolPattern  string `json:"symbol_pattern"`
	OutputDir      string `json:"output_dir"`
	TimeoutSeconds int    `json:"timeout_seconds"`
}

type HealthConfig struct {
	Thresholds sysmon.Thresholds `json:"thresholds"`
	DiskPath   string            `json:"disk_path"`
}

type LogsConfig struct {
	Levels     []string `json:"levels"`
	TextOutput string   `json:"text_output"`
	JsonOutput string   `json:"json_output"`
}

type Config struct {
	Fetch  FetchConfig            `json:"fetch"`
	Stock  StockConfig            `json:"stock"`
	Health HealthConfig           `json:"health"`
	Logs   LogsConfig             `json:"logs"`
	Runlog configuration.Database `json:"runlog"`
}

func defaultConfig() Config {
	return Config{
		Fetch: FetchConfig{
			Endpoint:       "https://jsonplaceholder.typicode.com/users",
			Select:         []string{"id", "name", "email", "city=address.city", "company=company.name"},
			TimeoutSeconds: 10,
		},
		Stock: StockConfig{
			Endpoint:       "https://www.alphavantage.co/query",
			ApiKey:         "demo",
			SymbolPattern:  "^[A-Z]{1,5}$",
			TimeoutSeconds: 10,
		},
		Health: HealthConfig{
			Thresholds: sysmon.Thresholds{CPU: 80, Memory: 80, Disk: 90},
			DiskPath:   "/",
		},
		Logs: LogsConfig{
			TextOutput: "log_summary.txt",
			JsonOutput: "log_summary.json",
		},
	}
}

// loadConfig merges the discovered (or explicitly given) config file
// over the built-in defaults. No config file at all is fine.
func loadConfig(path string) (Config, error) {
	out := defaultConfig()

	var fromFile Config
	var err error
	if path != "" {
		fromFile, err = configuration.ReadConfig[Config](path)
	} else {
		fromFile, err = configuration.ReadRecursively[Config]("opspulse.json5")
	}
	if errors.Is(err, os.ErrNotExist) && path == "" {
		return out, nil
	}
	if err != nil {
		return Config{}, err
	}

	err = mergo.Merge(&out, fromFile, mergo.WithOverride)
	if err != nil {
		return Config{}, err
	}
	return out, nil
}
