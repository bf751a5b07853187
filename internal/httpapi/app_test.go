package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mirage/internal/pathenum"
	"mirage/internal/storage"
)

// sampleBlocks mirrors storage's own bolt_test.go fixture: a diamond CFG
// (entry switch, two arms, one merge/return block).
func sampleBlocks(functionID int64) []storage.CfgBlockData {
	return []storage.CfgBlockData{
		{FunctionID: functionID, BlockID: 0, Kind: "entry", Statements: []string{"if cond"},
			TerminatorKind: "switch_int", TerminatorTargets: []int64{1, 2}, TerminatorLabels: []string{"1", "otherwise"}},
		{FunctionID: functionID, BlockID: 1, Kind: "normal", TerminatorKind: "goto", TerminatorTargets: []int64{3}, TerminatorLabels: []string{"goto"}},
		{FunctionID: functionID, BlockID: 2, Kind: "normal", TerminatorKind: "goto", TerminatorTargets: []int64{3}, TerminatorLabels: []string{"goto"}},
		{FunctionID: functionID, BlockID: 3, Kind: "exit", TerminatorKind: "return"},
	}
}

func openTestStore(t *testing.T) *storage.BoltStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mirage.bolt")
	s, err := storage.OpenBolt(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// fakeOracle is a trivial callgraph.Oracle that reports no callees, enough
// to exercise /api/icfg's single-function (no stitching) path.
type fakeOracle struct{}

func (fakeOracle) Neighbours(int64, string) ([]int64, error) { return nil, nil }
func (fakeOracle) FunctionName(int64) (string, error)        { return "f", nil }

func TestApp_HandleCfg(t *testing.T) {
	store := openTestStore(t)
	require.NoError(t, store.PutCfgBlocks(7, sampleBlocks(7)))
	require.NoError(t, store.PutEntity(storage.Entity{ID: 7, Kind: "function", Name: "pkg.Diamond"}))

	app := NewApp(store, fakeOracle{}, pathenum.DefaultLimits)
	srv := httptest.NewServer(app.Handler())
	t.Cleanup(srv.Close)

	resp, err := http.Get(srv.URL + "/api/cfg/7")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		FunctionName string `json:"function_name"`
		Entry        int64  `json:"entry"`
		Exits        []int64 `json:"exits"`
		Blocks       []any   `json:"blocks"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "pkg.Diamond", body.FunctionName)
	assert.Equal(t, int64(0), body.Entry)
	assert.ElementsMatch(t, []int64{3}, body.Exits)
	assert.Len(t, body.Blocks, 4)
}

func TestApp_HandleCfg_NotFound(t *testing.T) {
	store := openTestStore(t)
	app := NewApp(store, fakeOracle{}, pathenum.DefaultLimits)
	srv := httptest.NewServer(app.Handler())
	t.Cleanup(srv.Close)

	resp, err := http.Get(srv.URL + "/api/cfg/999")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestApp_HandlePaths(t *testing.T) {
	store := openTestStore(t)
	require.NoError(t, store.PutCfgBlocks(7, sampleBlocks(7)))

	app := NewApp(store, fakeOracle{}, pathenum.DefaultLimits)
	srv := httptest.NewServer(app.Handler())
	t.Cleanup(srv.Close)

	resp, err := http.Get(srv.URL + "/api/paths/7")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		CacheHit bool `json:"cache_hit"`
		Paths    []struct {
			ID     string  `json:"id"`
			Blocks []int64 `json:"blocks"`
			Kind   string  `json:"kind"`
		} `json:"paths"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.False(t, body.CacheHit)
	assert.Len(t, body.Paths, 2)
	for _, p := range body.Paths {
		assert.Equal(t, "normal", p.Kind)
		assert.NotEmpty(t, p.ID)
	}
}

func TestApp_HandleIcfg_NoOracle(t *testing.T) {
	store := openTestStore(t)
	require.NoError(t, store.PutCfgBlocks(7, sampleBlocks(7)))

	app := NewApp(store, nil, pathenum.DefaultLimits)
	srv := httptest.NewServer(app.Handler())
	t.Cleanup(srv.Close)

	resp, err := http.Get(srv.URL + "/api/icfg/7")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotImplemented, resp.StatusCode)
}

func TestApp_HandleIcfg(t *testing.T) {
	store := openTestStore(t)
	require.NoError(t, store.PutCfgBlocks(7, sampleBlocks(7)))

	app := NewApp(store, fakeOracle{}, pathenum.DefaultLimits)
	srv := httptest.NewServer(app.Handler())
	t.Cleanup(srv.Close)

	resp, err := http.Get(srv.URL + "/api/icfg/7")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.NotEmpty(t, body)
}

func TestApp_InvalidFunctionID(t *testing.T) {
	store := openTestStore(t)
	app := NewApp(store, fakeOracle{}, pathenum.DefaultLimits)
	srv := httptest.NewServer(app.Handler())
	t.Cleanup(srv.Close)

	resp, err := http.Get(srv.URL + "/api/cfg/not-a-number")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
