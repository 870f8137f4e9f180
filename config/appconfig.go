package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// AppKey declares a service configuration key. It is read from config
// files, GIGBOARD_<NAME> environment variables and --<name> flags.
type AppKey struct {
	Name string

	// Default also fixes the key's type: string, int, int64 or bool.
	Default any

	Desc string

	// Secret keeps the value out of logs.
	Secret bool
}

// AppConfigValues maps AppKey.Name to its loaded value.
type AppConfigValues map[string]any

// String returns the value of key as a string, or "" when unset.
func (a AppConfigValues) String(key string) string { return cast.ToString(a[key]) }

// Int returns the value of key as an int, or 0 when unset or not numeric.
func (a AppConfigValues) Int(key string) int { return cast.ToInt(a[key]) }

// Int64 is Int for int64 values.
func (a AppConfigValues) Int64(key string) int64 { return cast.ToInt64(a[key]) }

// Bool returns the value of key as a bool, or false when unset.
func (a AppConfigValues) Bool(key string) bool { return cast.ToBool(a[key]) }

// Duration reads key as a Go duration string or as seconds. Unset and
// invalid values yield def.
func (a AppConfigValues) Duration(key string, def time.Duration) time.Duration {
	d, err := parseDurationFlexible(a[key], def)
	if err != nil {
		return def
	}
	return d
}

// loadAppConfig resolves keys with the same precedence as the core config:
// explicit flags, then env, then config files, then defaults. fs must be
// parsed and config files merged into v before it runs.
func loadAppConfig(logger *zap.Logger, v *viper.Viper, fs *pflag.FlagSet, keys []AppKey) AppConfigValues {
	out := make(AppConfigValues, len(keys))
	if len(keys) == 0 {
		return out
	}

	av := viper.New()
	av.SetEnvPrefix(EnvPrefix)
	av.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	av.AutomaticEnv()

	for _, k := range keys {
		def := k.Default
		if v.InConfig(k.Name) {
			def = v.Get(k.Name)
		}
		av.SetDefault(k.Name, def)
		_ = av.BindEnv(k.Name)
		if f := fs.Lookup(k.Name); f != nil && f.Changed {
			_ = av.BindPFlag(k.Name, f)
		}
	}

	// Env and file values may arrive as strings; coerce to the declared type.
	fields := make([]zap.Field, 0, len(keys))
	for _, k := range keys {
		switch k.Default.(type) {
		case int:
			out[k.Name] = av.GetInt(k.Name)
		case int64:
			out[k.Name] = av.GetInt64(k.Name)
		case bool:
			out[k.Name] = av.GetBool(k.Name)
		default:
			out[k.Name] = av.GetString(k.Name)
		}
		if k.Secret {
			fields = append(fields, zap.Bool(k.Name+"_set", out.String(k.Name) != ""))
		} else {
			fields = append(fields, zap.Any(k.Name, out[k.Name]))
		}
	}
	if logger != nil {
		logger.Info("app config loaded", fields...)
	}
	return out
}

// RegisterAppFlags adds a flag per key to fs. Call it before fs is parsed.
func RegisterAppFlags(fs *pflag.FlagSet, keys []AppKey) error {
	for _, k := range keys {
		if fs.Lookup(k.Name) != nil {
			return fmt.Errorf("config key %q conflicts with an existing flag", k.Name)
		}
		switch d := k.Default.(type) {
		case string:
			fs.String(k.Name, d, k.Desc)
		case int:
			fs.Int(k.Name, d, k.Desc)
		case int64:
			fs.Int64(k.Name, d, k.Desc)
		case bool:
			fs.Bool(k.Name, d, k.Desc)
		default:
			return fmt.Errorf("config key %q has unsupported default type %T", k.Name, k.Default)
		}
	}
	return nil
}
