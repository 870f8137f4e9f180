// pprof/pprof.go
package pprof

import (
	stdpprof "net/http/pprof"

	"github.com/go-chi/chi/v5"
)

// Mount serves the runtime profiles under /debug/pprof. It adds no access
// control; mount it only where that is acceptable.
func Mount(r chi.Router) {
	r.Route("/debug/pprof", func(r chi.Router) {
		r.Get("/", stdpprof.Index)
		r.Get("/cmdline", stdpprof.Cmdline)
		r.Get("/profile", stdpprof.Profile)
		r.Get("/trace", stdpprof.Trace)
		r.HandleFunc("/symbol", stdpprof.Symbol)
		// heap, goroutine, allocs, block, mutex, threadcreate
		r.Get("/{name}", stdpprof.Index)
	})
}
