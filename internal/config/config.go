package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// newEnv loads .env (if any) and returns a viper instance bound to the process environment.
func newEnv(defaults map[string]any) *viper.Viper {
	_ = godotenv.Load() // ignore error if .env not found
	v := viper.New()
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	return v
}

func positiveDuration(v *viper.Viper, key string, fallback time.Duration) time.Duration {
	d := v.GetDuration(key)
	if d <= 0 {
		return fallback
	}
	return d
}

func positiveInt(v *viper.Viper, key string, fallback int) int {
	n := v.GetInt(key)
	if n <= 0 {
		return fallback
	}
	return n
}
