package config

import (
	"time"

	"github.com/spf13/viper"
)

// setting reads key with get when the file or the environment sets it.
// valid rejects values that would break the component reading them; a rejected
// or missing value yields def.
func setting[T any](v *viper.Viper, key string, def T, get func(string) T, valid func(T) bool) T {
	if !v.IsSet(key) {
		return def
	}
	val := get(key)
	if valid != nil && !valid(val) {
		return def
	}
	return val
}

// durationSetting ignores negative durations; zero stays meaningful ("no wait").
func durationSetting(v *viper.Viper, key string, def time.Duration) time.Duration {
	return setting(v, key, def, v.GetDuration, func(d time.Duration) bool { return d >= 0 })
}

func intSetting(v *viper.Viper, key string, def int) int {
	return setting(v, key, def, v.GetInt, nil)
}

// countSetting is for sizes and limits, which must be positive.
func countSetting(v *viper.Viper, key string, def int) int {
	return setting(v, key, def, v.GetInt, func(n int) bool { return n > 0 })
}

// breakerSetting reads gobreaker counters, which are unsigned.
func breakerSetting(v *viper.Viper, key string, def uint32) uint32 {
	n := setting(v, key, int(def), v.GetInt, func(n int) bool { return n > 0 })
	return uint32(n)
}

func rateSetting(v *viper.Viper, key string, def float64) float64 {
	return setting(v, key, def, v.GetFloat64, func(f float64) bool { return f >= 0 && f <= 1 })
}

func stringSetting(v *viper.Viper, key string, def string) string {
	return setting(v, key, def, v.GetString, nil)
}

func stringsSetting(v *viper.Viper, key string, def []string) []string {
	return setting(v, key, def, v.GetStringSlice, nil)
}
