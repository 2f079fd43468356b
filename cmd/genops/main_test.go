package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonwraymond/genops/cache"
	"github.com/jonwraymond/genops/config"
	"github.com/jonwraymond/genops/generator"
	"github.com/jonwraymond/genops/health"
	"github.com/jonwraymond/genops/service"
	"github.com/jonwraymond/genops/store"
)

func TestParseFlags(t *testing.T) {
	f, err := parseFlags([]string{
		"--config", "genops.yaml",
		"-o", "resume_rewrite",
		"--input", `{"a":1}`,
		"--prompt", "rewrite",
		"--employment-type", "fulltime,contractor",
	})
	require.NoError(t, err)
	assert.Equal(t, "genops.yaml", f.configPath)
	assert.Equal(t, "resume_rewrite", f.operation)
	assert.Equal(t, `{"a":1}`, f.input)
	assert.Equal(t, "rewrite", f.prompt)
	assert.Equal(t, []string{"fulltime", "contractor"}, f.jobTypes)
	assert.Equal(t, 1, f.page)
	assert.Empty(t, f.serve)
}

func TestParseFlags_Unknown(t *testing.T) {
	_, err := parseFlags([]string{"--nope"})
	assert.Error(t, err)
}

func TestRun_Version(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"--version"}, &out))
	assert.Equal(t, "genops dev (unknown)\n", out.String())
}

func TestWriteResult(t *testing.T) {
	var out bytes.Buffer
	created := time.UnixMilli(1767323045000)
	err := writeResult(&out, cache.Result{
		Entry:  cache.Entry{Key: "k1", Value: json.RawMessage(`{"x":1}`), CreatedAt: created},
		Source: cache.SourceLive,
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"source":"live","key":"k1","createdAt":1767323045000,"result":{"x":1}}`, out.String())
}

func newTestService(t *testing.T) *service.Service {
	t.Helper()
	cfg := config.Default()
	cfg.Generator.Provider = config.ProviderNone
	cfg.Observe.Logging.Enabled = false

	gen := generator.Func(func(_ context.Context, req generator.Request) (json.RawMessage, error) {
		return json.Marshal(map[string]string{"operation": req.Operation})
	})
	svc, err := service.New(context.Background(), cfg,
		service.WithGenerator(gen),
		service.WithStore(store.NewMemory()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close(context.Background()) })
	return svc
}

func TestRunOnce_Generate(t *testing.T) {
	svc := newTestService(t)
	var out bytes.Buffer

	err := runOnce(context.Background(), flags{operation: "summary", input: `{"id":7}`, prompt: "sum"}, svc, &out)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, "live", got["source"])
	assert.Equal(t, map[string]any{"operation": "summary"}, got["result"])
}

func TestRunOnce_JobSearch(t *testing.T) {
	svc := newTestService(t)
	var out bytes.Buffer

	err := runOnce(context.Background(), flags{jobQuery: "go developer", page: 1}, svc, &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), `"operation": "job_search"`)
}

func TestRunOnce_Errors(t *testing.T) {
	svc := newTestService(t)
	var out bytes.Buffer

	err := runOnce(context.Background(), flags{}, svc, &out)
	assert.ErrorContains(t, err, "--operation")

	err = runOnce(context.Background(), flags{operation: "summary", input: "{", prompt: "p"}, svc, &out)
	assert.ErrorContains(t, err, "--input")
	assert.Zero(t, out.Len())
}

func TestNewMux(t *testing.T) {
	agg := health.NewAggregator(health.AggregatorConfig{})
	agg.Register(health.NewCheckerFunc("ok", func(context.Context) health.Result {
		return health.Healthy("fine")
	}))
	mux := newMux(agg)

	for _, path := range []string{"/healthz", "/readyz", "/health", "/metrics"} {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}
