// version/version.go
package version

import (
	"net/http"
	"runtime"
	"runtime/debug"

	"github.com/dalemusser/gigboard/httputil"
)

// Set at build time:
//
//	go build -ldflags "-X github.com/dalemusser/gigboard/pantry/version.Version=1.4.0 \
//	                   -X github.com/dalemusser/gigboard/pantry/version.BuildTime=2024-05-01T10:30:00Z"
//
// Commit falls back to the VCS revision recorded by the Go toolchain.
var (
	Version   = "dev"
	Commit    = ""
	BuildTime = "unknown"
)

// Info is the build description served on /version.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
	GoVersion string `json:"go_version"`
}

// Get returns the build description.
func Get() Info {
	commit := Commit
	if commit == "" {
		commit = "unknown"
		if bi, ok := debug.ReadBuildInfo(); ok {
			for _, s := range bi.Settings {
				if s.Key == "vcs.revision" {
					commit = s.Value
				}
			}
		}
	}
	return Info{
		Version:   Version,
		Commit:    commit,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
	}
}

// Handler serves Get as JSON.
func Handler() http.Handler {
	info := Get()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = httputil.WriteJSON(w, http.StatusOK, info)
	})
}

// String is the one-line form printed by CLIs.
func String() string {
	i := Get()
	return i.Version + " (" + i.Commit + ", built " + i.BuildTime + ")"
}
