package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// parseDurationFlexible reads a duration from a config value. Strings take
// Go duration syntax ("90s", "2m"); bare numbers, quoted or not, are
// seconds. Nil and empty strings yield def. Non-positive values are errors.
func parseDurationFlexible(raw any, def time.Duration) (time.Duration, error) {
	var d time.Duration
	switch t := raw.(type) {
	case nil:
		return def, nil
	case time.Duration:
		d = t
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return def, nil
		}
		parsed, err := time.ParseDuration(s)
		if err != nil {
			secs, nerr := cast.ToFloat64E(s)
			if nerr != nil {
				return def, fmt.Errorf("cannot parse duration %q", s)
			}
			parsed = seconds(secs)
		}
		d = parsed
	case bool:
		return def, fmt.Errorf("cannot parse duration from %v", t)
	default:
		secs, err := cast.ToFloat64E(t)
		if err != nil {
			return def, fmt.Errorf("cannot parse duration from %T", raw)
		}
		d = seconds(secs)
	}
	if d <= 0 {
		return def, fmt.Errorf("duration must be > 0, got %v", raw)
	}
	return d, nil
}

func seconds(n float64) time.Duration {
	return time.Duration(n * float64(time.Second))
}
