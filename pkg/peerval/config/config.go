package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/komsit37/peerval/pkg/peerval/types"
)

// Keys shared by viper, flags, and environment variables.
const (
	KeySectorName      = "sector_name"
	KeyTickers         = "tickers"
	KeyStartDate       = "start_date"
	KeyEndDate         = "end_date"
	KeyDataDir         = "data_dir"
	KeyReportPath      = "report_path"
	KeyFMPAPIKey       = "fmp_api_key"
	KeyFMPBaseURL      = "fmp_base_url"
	KeyRequestInterval = "request_interval"
	KeyTimeout         = "timeout"
	KeyHistoryPeriod   = "history_period"
	KeyLogLevel        = "log_level"
	KeyLogPretty       = "log_pretty"
	KeyRefresh         = "refresh"
)

// DefaultTickers is the software & cloud peer set compared when nothing else is given.
var DefaultTickers = []string{
	"MSFT", "ORCL", "SAP", "ADBE", "CRM", "NOW", "INTU", "ADSK",
	"ANSS", "SNOW", "DDOG", "MDB", "TEAM", "SHOP", "PANW", "CRWD",
}

// Config holds application configuration.
type Config struct {
	SectorName      string
	Tickers         []string
	StartDate       string
	EndDate         string
	DataDir         string
	ReportPath      string
	FMPAPIKey       string
	FMPBaseURL      string
	RequestInterval time.Duration
	Timeout         time.Duration
	HistoryPeriod   string
	LogLevel        string
	LogPretty       bool
	Refresh         bool
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeySectorName, "Software & Cloud")
	v.SetDefault(KeyTickers, DefaultTickers)
	v.SetDefault(KeyStartDate, "2021-08-31")
	v.SetDefault(KeyEndDate, "2025-09-19")
	v.SetDefault(KeyDataDir, "data")
	v.SetDefault(KeyReportPath, "reports/peer_comparison.xlsx")
	v.SetDefault(KeyFMPBaseURL, "https://financialmodelingprep.com/api/v3")
	v.SetDefault(KeyRequestInterval, 150*time.Millisecond)
	v.SetDefault(KeyTimeout, 10*time.Second)
	v.SetDefault(KeyHistoryPeriod, "5y")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogPretty, true)
	v.SetDefault(KeyRefresh, false)
}

// Load reads .env, the optional config file, and PEERVAL_* environment
// variables into v, then decodes a Config. An empty file means "peerval.yaml in
// the working directory, if any".
func Load(v *viper.Viper, file string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	SetDefaults(v)
	v.SetEnvPrefix("PEERVAL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv(KeyFMPAPIKey, "PEERVAL_FMP_API_KEY", "FMP_API_KEY"); err != nil {
		return Config{}, fmt.Errorf("bind env: %w", err)
	}

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", file, err)
		}
	} else {
		v.SetConfigName("peerval")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var nf viper.ConfigFileNotFoundError
			if !errors.As(err, &nf) {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := FromViper(v)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// FromViper decodes a Config from v without validation.
func FromViper(v *viper.Viper) Config {
	return Config{
		SectorName:      v.GetString(KeySectorName),
		Tickers:         SplitList(v.Get(KeyTickers)),
		StartDate:       v.GetString(KeyStartDate),
		EndDate:         v.GetString(KeyEndDate),
		DataDir:         v.GetString(KeyDataDir),
		ReportPath:      v.GetString(KeyReportPath),
		FMPAPIKey:       strings.TrimSpace(v.GetString(KeyFMPAPIKey)),
		FMPBaseURL:      v.GetString(KeyFMPBaseURL),
		RequestInterval: v.GetDuration(KeyRequestInterval),
		Timeout:         v.GetDuration(KeyTimeout),
		HistoryPeriod:   v.GetString(KeyHistoryPeriod),
		LogLevel:        v.GetString(KeyLogLevel),
		LogPretty:       v.GetBool(KeyLogPretty),
		Refresh:         v.GetBool(KeyRefresh),
	}
}

// SplitList accepts a []string, []any, or a comma/space separated string and
// returns upper-cased, trimmed, de-duplicated entries in order.
func SplitList(x any) []string {
	var raw []string
	switch t := x.(type) {
	case nil:
	case []string:
		raw = t
	case []any:
		for _, e := range t {
			if e != nil {
				raw = append(raw, fmt.Sprint(e))
			}
		}
	default:
		raw = strings.FieldsFunc(fmt.Sprint(t), func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t' || r == '\n'
		})
	}
	seen := map[string]struct{}{}
	out := make([]string, 0, len(raw))
	for _, s := range raw {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// ValidationError reports an invalid configuration value.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Validate checks dates and required paths.
func (c Config) Validate() error {
	start, ok := types.ParseDate(c.StartDate)
	if !ok {
		return &ValidationError{Field: KeyStartDate, Reason: fmt.Sprintf("%q is not a date", c.StartDate)}
	}
	end, ok := types.ParseDate(c.EndDate)
	if !ok {
		return &ValidationError{Field: KeyEndDate, Reason: fmt.Sprintf("%q is not a date", c.EndDate)}
	}
	if !end.After(start) {
		return &ValidationError{Field: KeyEndDate, Reason: "must be after start_date"}
	}
	if strings.TrimSpace(c.DataDir) == "" {
		return &ValidationError{Field: KeyDataDir, Reason: "must not be empty"}
	}
	if strings.TrimSpace(c.ReportPath) == "" {
		return &ValidationError{Field: KeyReportPath, Reason: "must not be empty"}
	}
	if c.RequestInterval < 0 {
		return &ValidationError{Field: KeyRequestInterval, Reason: "must not be negative"}
	}
	return nil
}

// Start returns the parsed start date.
func (c Config) Start() time.Time {
	t, _ := types.ParseDate(c.StartDate)
	return t
}

// End returns the parsed end date.
func (c Config) End() time.Time {
	t, _ := types.ParseDate(c.EndDate)
	return t
}
