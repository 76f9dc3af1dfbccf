package config

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Settings is the file and environment view of the client configuration.
// Zero values mean "use the client default".
type Settings struct {
	PublicKey   string `mapstructure:"public_key"`
	SecretKey   string `mapstructure:"secret_key"`
	BaseURL     string `mapstructure:"base_url"`
	Host        string `mapstructure:"host"`
	Region      Region `mapstructure:"region"`
	Debug       bool   `mapstructure:"debug"`
	Environment string `mapstructure:"environment"`
	Release     string `mapstructure:"release"`

	BatchMode     bool          `mapstructure:"batch_mode"`
	BatchSize     int           `mapstructure:"batch_size"`
	FlushInterval time.Duration `mapstructure:"flush_interval"`
	QueueCapacity int           `mapstructure:"queue_capacity"`

	Timeout         time.Duration `mapstructure:"timeout"`
	MaxRetries      int           `mapstructure:"max_retries"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// ResolvedBaseURL returns the server URL the settings point at.
func (s *Settings) ResolvedBaseURL() string {
	region := s.Region
	if region == "" {
		region = RegionEU
	}
	return ResolveBaseURL(s.BaseURL, s.Host, region)
}

// Load reads an optional config file and LANGFUSE_* environment variables.
// Environment variables win over the file. path may be empty, in which case
// only the environment is read. Keys map to variables by upper-casing and
// prefixing, so "flush_interval" is read from LANGFUSE_FLUSH_INTERVAL.
func Load(path string) (*Settings, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetDefault("batch_mode", DefaultBatchMode)
	v.SetDefault("region", string(RegionEU))

	cfg := &Settings{}
	bindEnvs(v, cfg)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("langfuse: reading config %s: %w", path, err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("langfuse: decoding config: %w", err)
	}
	return cfg, nil
}

// bindEnvs registers every key of cfg so viper consults the environment for
// keys that appear in no file.
func bindEnvs(v *viper.Viper, cfg any, parts ...string) {
	val := reflect.ValueOf(cfg)
	typ := reflect.TypeOf(cfg)
	if typ.Kind() == reflect.Ptr {
		val = val.Elem()
		typ = typ.Elem()
	}
	for i := 0; i < typ.NumField(); i++ {
		f := typ.Field(i)
		tag := f.Tag.Get("mapstructure")
		if tag == "" {
			tag = strings.ToLower(f.Name)
		}
		key := append(parts, tag)
		if f.Type.Kind() == reflect.Struct && f.Type != reflect.TypeOf(time.Time{}) {
			bindEnvs(v, val.Field(i).Interface(), key...)
			continue
		}
		_ = v.BindEnv(strings.Join(key, "."))
	}
}
