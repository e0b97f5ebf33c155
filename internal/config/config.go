package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Env            string        `mapstructure:"ENV"`
	Port           string        `mapstructure:"PORT"`
	DatabaseURL    string        `mapstructure:"DATABASE_URL"`
	RedisURL       string        `mapstructure:"REDIS_URL"`
	OSRMURL        string        `mapstructure:"OSRM_URL"`
	NominatimURL   string        `mapstructure:"NOMINATIM_URL"`
	AdminKey       string        `mapstructure:"ADMIN_KEY"`
	CORSAllowed    string        `mapstructure:"CORS_ALLOWED_ORIGINS"`
	RequestTimeout time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	LogLevel       string        `mapstructure:"LOG_LEVEL"`

	DispatchEnabled        bool          `mapstructure:"DISPATCH_ENABLED"`
	DispatchInterval       time.Duration `mapstructure:"DISPATCH_INTERVAL"`
	DispatchMaxRadiusKm    float64       `mapstructure:"DISPATCH_MAX_RADIUS_KM"`
	DispatchSeverityWeight float64       `mapstructure:"DISPATCH_SEVERITY_WEIGHT"`

	SimTickInterval       time.Duration `mapstructure:"SIM_TICK_INTERVAL"`
	SimSpeedMultiplier    float64       `mapstructure:"SIM_SPEED_MULTIPLIER"`
	SimArrivalThresholdKm float64       `mapstructure:"SIM_ARRIVAL_THRESHOLD_KM"`
	ServiceTime           time.Duration `mapstructure:"SERVICE_TIME"`

	PositionFlushInterval time.Duration `mapstructure:"POSITION_FLUSH_INTERVAL"`
}

func Load() (Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	_ = v.ReadInConfig()

	v.SetDefault("ENV", "dev")
	v.SetDefault("PORT", "8080")
	v.SetDefault("REQUEST_TIMEOUT", "30s")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")

	v.SetDefault("DISPATCH_ENABLED", true)
	v.SetDefault("DISPATCH_INTERVAL", "10s")
	v.SetDefault("DISPATCH_MAX_RADIUS_KM", 10.0)
	v.SetDefault("DISPATCH_SEVERITY_WEIGHT", 10.0)

	v.SetDefault("SIM_TICK_INTERVAL", "5s")
	v.SetDefault("SIM_SPEED_MULTIPLIER", 1.0)
	v.SetDefault("SIM_ARRIVAL_THRESHOLD_KM", 0.1)
	v.SetDefault("SERVICE_TIME", "30s")

	v.SetDefault("POSITION_FLUSH_INTERVAL", "30s")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
