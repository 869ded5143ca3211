package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Env struct {
	AppAddr string `mapstructure:"app_addr"`
	GinMode string `mapstructure:"gin_mode"`

	DBDSN             string        `mapstructure:"db_dsn"`
	DBMaxOpenConns    int           `mapstructure:"db_max_open_conns"`
	DBMaxIdleConns    int           `mapstructure:"db_max_idle_conns"`
	DBConnMaxLifetime time.Duration `mapstructure:"db_conn_max_lifetime"`
	DBConnMaxIdleTime time.Duration `mapstructure:"db_conn_max_idle_time"`

	JWTSecret   string        `mapstructure:"jwt_secret"`
	JWTTTL      time.Duration `mapstructure:"jwt_ttl"`
	CORSOrigins []string      `mapstructure:"cors_allowed_origins"`

	// Upstream APIs consumed by the surveys screen.
	AcademicAPIURL     string        `mapstructure:"academic_api_url"`
	GroupsEndpoint     string        `mapstructure:"groups_endpoint"`
	EvaluationAPIURL   string        `mapstructure:"evaluation_api_url"`
	SurveysEndpoint    string        `mapstructure:"surveys_endpoint"`
	UpstreamTimeout    time.Duration `mapstructure:"upstream_timeout"`
	SearchDebounce     time.Duration `mapstructure:"search_debounce"`
	LoginRatePerMinute int           `mapstructure:"login_rate_per_minute"`

	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// DefaultCORSOrigins are the local front-end dev servers.
var DefaultCORSOrigins = []string{
	"http://localhost:3000",
	"http://127.0.0.1:3000",
	"http://localhost:5173",
	"http://127.0.0.1:5173",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_addr", ":8080")
	v.SetDefault("gin_mode", "")
	v.SetDefault("db_dsn", "root:@tcp(127.0.0.1:3306)/backoffice?parseTime=true&loc=Local&charset=utf8mb4&timeout=5s&readTimeout=30s&writeTimeout=30s")
	v.SetDefault("db_max_open_conns", 25)
	v.SetDefault("db_max_idle_conns", 25)
	v.SetDefault("db_conn_max_lifetime", 10*time.Minute)
	v.SetDefault("db_conn_max_idle_time", 5*time.Minute)
	v.SetDefault("jwt_secret", "super-secret-key-change-me")
	v.SetDefault("jwt_ttl", 24*time.Hour)
	v.SetDefault("cors_allowed_origins", DefaultCORSOrigins)
	v.SetDefault("academic_api_url", "http://127.0.0.1:8001/api")
	v.SetDefault("groups_endpoint", "/groups/list-complete")
	v.SetDefault("evaluation_api_url", "http://127.0.0.1:8002/api")
	v.SetDefault("surveys_endpoint", "/surveys/by-role")
	v.SetDefault("upstream_timeout", 15*time.Second)
	v.SetDefault("search_debounce", 500*time.Millisecond)
	v.SetDefault("login_rate_per_minute", 10)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
}

// Load reads an optional YAML file and overlays environment variables
// (APP_ADDR, DB_DSN, JWT_SECRET, ...). An empty path skips the file.
func Load(path string) (Env, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range v.AllKeys() {
		_ = v.BindEnv(key, strings.ToUpper(key))
	}

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Env{}, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var env Env
	if err := v.Unmarshal(&env); err != nil {
		return Env{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	env.CORSOrigins = splitOrigins(env.CORSOrigins)
	env.AppAddr = strings.TrimSpace(env.AppAddr)
	if env.AppAddr == "" {
		env.AppAddr = ":8080"
	}
	env.GinMode = strings.TrimSpace(env.GinMode)
	return env, nil
}

// splitOrigins accepts both a YAML list and the comma separated
// CORS_ALLOWED_ORIGINS env form.
func splitOrigins(in []string) []string {
	out := []string{}
	for _, item := range in {
		for _, o := range strings.Split(item, ",") {
			o = strings.TrimSpace(o)
			if o != "" {
				out = append(out, o)
			}
		}
	}
	if len(out) == 0 {
		return append([]string(nil), DefaultCORSOrigins...)
	}
	return out
}
