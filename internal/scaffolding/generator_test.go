package scaffolding_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/prime-website/internal/build"
	"github.com/conneroisu/prime-website/internal/config"
	"github.com/conneroisu/prime-website/internal/errors"
	"github.com/conneroisu/prime-website/internal/logging"
	"github.com/conneroisu/prime-website/internal/scaffolding"
	"github.com/conneroisu/prime-website/internal/server"
)

type noopExecutor struct{}

func (noopExecutor) Execute(context.Context, build.Command) (build.Result, error) {
	return build.Result{}, nil
}

func generate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	_, err := scaffolding.NewSiteGenerator().Generate(scaffolding.GenerateOptions{
		Dir: dir, Name: "prime-lot", Port: 8080,
	})
	require.NoError(t, err)
	return dir
}

func TestGenerateWritesEveryFile(t *testing.T) {
	dir := t.TempDir()
	g := scaffolding.NewSiteGenerator()

	written, err := g.Generate(scaffolding.GenerateOptions{Dir: dir, Name: "prime-lot", Port: 8080})
	require.NoError(t, err)
	assert.Len(t, written, len(g.Files()))

	for _, rel := range g.Files() {
		assert.FileExists(t, filepath.Join(dir, rel))
	}

	cfg, err := os.ReadFile(filepath.Join(dir, ".prime.yml"))
	require.NoError(t, err)
	assert.Contains(t, string(cfg), "image: prime-lot")
	assert.Contains(t, string(cfg), `ports: "8080:8080"`)

	view, err := os.ReadFile(filepath.Join(dir, "views", "inventory.html"))
	require.NoError(t, err)
	assert.Contains(t, string(view), "{{range .cars}}")
	assert.NotContains(t, string(view), "[[")
}

func TestGenerateRefusesToOverwrite(t *testing.T) {
	dir := generate(t)
	g := scaffolding.NewSiteGenerator()

	_, err := g.Generate(scaffolding.GenerateOptions{Dir: dir, Name: "prime-lot", Port: 8080})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, err = g.Generate(scaffolding.GenerateOptions{Dir: dir, Name: "prime-lot", Port: 8080, Force: true})
	assert.NoError(t, err)
}

func TestGenerateValidatesOptions(t *testing.T) {
	g := scaffolding.NewSiteGenerator()

	for _, opts := range []scaffolding.GenerateOptions{
		{Dir: t.TempDir(), Name: "Prime Lot", Port: 8080},
		{Dir: t.TempDir(), Name: "", Port: 8080},
		{Dir: t.TempDir(), Name: "lot", Port: 0},
		{Dir: t.TempDir(), Name: "lot", Port: 70000},
	} {
		_, err := g.Generate(opts)
		require.Error(t, err)
		var primeErr *errors.PrimeError
		require.ErrorAs(t, err, &primeErr)
		assert.Equal(t, errors.ErrorTypeValidation, primeErr.Type)
	}
}

func TestGeneratedSiteServes(t *testing.T) {
	dir := generate(t)

	cfg := config.Default().Server
	cfg.SiteDir = dir
	s := server.New(cfg, logging.NewNopLogger())

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Equal(t, 3, strings.Count(body, `<tr class="car">`))
	assert.Contains(t, body, "Toyota")
	assert.Contains(t, body, "$26,900")
	assert.Contains(t, body, "63,100 mi")
}

func TestGeneratedSiteBuilds(t *testing.T) {
	dir := generate(t)

	cfg := config.Default()
	cfg.Build.SourceDir = dir
	cfg.Build.OutputDir = filepath.Join(dir, "dist")

	pipeline := build.NewPipeline(cfg, noopExecutor{}, logging.NewNopLogger())
	task, err := pipeline.Registry().Get(build.DefaultTask)
	require.NoError(t, err)

	metrics, err := build.NewRunner(logging.NewNopLogger()).Run(context.Background(), task)
	require.NoError(t, err)
	assert.Equal(t, 0, metrics.Summary().Failed)

	view, err := os.ReadFile(filepath.Join(dir, "dist", "views", "inventory.html"))
	require.NoError(t, err)
	assert.Contains(t, string(view), `<link rel="stylesheet" href="/css/main.min.css">`)
	assert.Contains(t, string(view), `<script src="/js/main.min.js"></script>`)
	assert.FileExists(t, filepath.Join(dir, "dist", "public", "css", "main.min.css"))

	// The built site serves too.
	serverCfg := config.Default().Server
	serverCfg.SiteDir = filepath.Join(dir, "dist")
	rec := httptest.NewRecorder()
	server.New(serverCfg, logging.NewNopLogger()).Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
