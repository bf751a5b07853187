// Package httpapi exposes Mirage's analyses as read-only JSON endpoints,
// adapted from the teacher's server/app.go: the same chi router, Recoverer
// and RealIP middleware, and CORS handling, but backed by a
// storage.Store instead of the teacher's own database/sql connection — it
// has no write path of its own, per SPEC_FULL.md §6.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"mirage/internal/callgraph"
	"mirage/internal/cfgbuild"
	"mirage/internal/exportfmt"
	"mirage/internal/icfg"
	"mirage/internal/pathcache"
	"mirage/internal/pathenum"
	"mirage/internal/storage"
)

// App holds the dependencies every handler reads through: the storage
// trait, an optional call-graph oracle for /api/icfg (nil disables it),
// and the path limits used for on-demand enumeration.
type App struct {
	store  storage.Store
	oracle callgraph.Oracle
	limits pathenum.PathLimits
}

// NewApp builds an App. oracle may be nil; /api/icfg then returns 501.
func NewApp(store storage.Store, oracle callgraph.Oracle, limits pathenum.PathLimits) *App {
	return &App{store: store, oracle: oracle, limits: limits}
}

// Handler returns the HTTP handler: CORS + recovery + the three read-only
// routes of SPEC_FULL.md §6.
func (a *App) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(corsMiddleware)

	r.Route("/api", func(r chi.Router) {
		r.Get("/cfg/{functionID}", a.handleCfg)
		r.Get("/paths/{functionID}", a.handlePaths)
		r.Get("/icfg/{functionID}", a.handleIcfg)
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "mirage query API: see /api/cfg/{id}, /api/paths/{id}, /api/icfg/{id}", http.StatusNotFound)
	})

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func functionID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "functionID"), 10, 64)
}

func (a *App) handleCfg(w http.ResponseWriter, r *http.Request) {
	id, err := functionID(r)
	if err != nil {
		http.Error(w, "invalid function id", http.StatusBadRequest)
		return
	}
	rows, err := a.store.GetCfgBlocks(id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	cfg := cfgbuild.FromStorageBlocks(strconv.FormatInt(id, 10), rows)
	writeJSON(w, exportfmt.ToCfgJSON(entityName(a, id), cfg))
}

func (a *App) handlePaths(w http.ResponseWriter, r *http.Request) {
	id, err := functionID(r)
	if err != nil {
		http.Error(w, "invalid function id", http.StatusBadRequest)
		return
	}
	rows, err := a.store.GetCfgBlocks(id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	cfg := cfgbuild.FromStorageBlocks(strconv.FormatInt(id, 10), rows)
	cache := pathcache.New(a.store)
	paths, cacheHit, err := cache.EnumerateCached(id, cfg, a.limits)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	ctx := pathenum.NewEnumerationContext(cfg)
	hot := pathenum.ComputeHotPaths(ctx, paths, pathenum.DefaultHotpathsOptions())
	scores := make(map[string]float64, len(hot))
	for _, h := range hot {
		scores[h.PathID] = h.HotnessScore
	}

	type pathJSON struct {
		ID     string  `json:"id"`
		Blocks []int64 `json:"blocks"`
		Kind   string  `json:"kind"`
		Score  float64 `json:"hot_path_score"`
	}
	out := struct {
		CacheHit bool       `json:"cache_hit"`
		Paths    []pathJSON `json:"paths"`
	}{CacheHit: cacheHit}
	for _, p := range paths {
		blocks := make([]int64, len(p.Blocks))
		for i, b := range p.Blocks {
			blocks[i] = int64(b)
		}
		out.Paths = append(out.Paths, pathJSON{ID: p.PathID, Blocks: blocks, Kind: p.Kind.String(), Score: scores[p.PathID]})
	}
	writeJSON(w, out)
}

func (a *App) handleIcfg(w http.ResponseWriter, r *http.Request) {
	if a.oracle == nil {
		http.Error(w, "call graph oracle not available", http.StatusNotImplemented)
		return
	}
	id, err := functionID(r)
	if err != nil {
		http.Error(w, "invalid function id", http.StatusBadRequest)
		return
	}
	opts := icfg.DefaultIcfgOptions()
	if d := r.URL.Query().Get("max_depth"); d != "" {
		if n, err := strconv.Atoi(d); err == nil {
			opts.MaxDepth = n
		}
	}
	g, err := icfg.BuildIcfg(a.store, a.oracle, id, opts)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, exportfmt.ToIcfgJSON(g))
}

func entityName(a *App, id int64) string {
	e, err := a.store.GetEntity(id)
	if err != nil {
		return strconv.FormatInt(id, 10)
	}
	return e.Name
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func writeStoreError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, storage.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, storage.ErrSchemaMismatch):
		status = http.StatusConflict
	}
	http.Error(w, err.Error(), status)
}
