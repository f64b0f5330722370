package build

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/conneroisu/prime-website/internal/config"
	"github.com/conneroisu/prime-website/internal/errors"
	"github.com/conneroisu/prime-website/internal/logging"
)

// fakeExecutor records commands and fails the ones listed in exitCodes.
type fakeExecutor struct {
	mutex     sync.Mutex
	calls     []Command
	exitCodes map[string]int
}

func newFakeExecutor() *fakeExecutor {
	return &fakeExecutor{exitCodes: make(map[string]int)}
}

func (f *fakeExecutor) failWith(commandLine string, code int) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.exitCodes[commandLine] = code
}

func (f *fakeExecutor) Execute(_ context.Context, cmd Command) (Result, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.calls = append(f.calls, cmd)

	code := f.exitCodes[cmd.String()]
	if !cmd.succeeded(code) {
		return Result{ExitCode: code}, errors.ErrCommandFailed(cmd.String(), code, nil)
	}
	return Result{ExitCode: code}, nil
}

func (f *fakeExecutor) commandLines() []string {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	lines := make([]string, 0, len(f.calls))
	for _, c := range f.calls {
		lines = append(lines, c.String())
	}
	return lines
}

// testSite lays out a small site under a temp dir and returns a config that
// builds it into <site>/dist.
func testSite(t *testing.T) *config.Config {
	t.Helper()
	site := t.TempDir()

	files := map[string]string{
		"public/css/a.css":        "body {\n  color: red;\n}\n",
		"public/css/nested/b.css": "/* heading */\nh1 {\n  margin: 0px;\n}\n",
		"public/js/app.js":        "function add(a, b) {\n  return a + b;\n}\n",
		"public/js/util.js":       "// helpers\nvar answer = add(40, 2);\n",
		"views/inventory.html": "<html>\n<head>\n  <!-- build:css -->\n  <link rel=\"stylesheet\" href=\"/css/a.css\">\n" +
			"  <link rel=\"stylesheet\" href=\"/css/nested/b.css\">\n  <!-- endbuild -->\n</head>\n<body>\n" +
			"  <!-- build:js -->\n  <script src=\"/js/app.js\"></script>\n  <!-- endbuild -->\n</body>\n</html>\n",
		"views/partials/row.html": "<tr>{{.make}}</tr>\n",
		"data/cars.json":          `[{"make":"Toyota"},{"make":"Honda"}]`,
		"data/extra/notes.txt":    "lot notes\n",
		"package.json":            `{"name":"prime-website"}`,
		"package-lock.json":       `{"lockfileVersion":3}`,
		"Dockerfile":              "FROM alpine\n",
	}
	for rel, content := range files {
		writeTestFile(t, filepath.Join(site, rel), []byte(content))
	}
	writeTestFile(t, filepath.Join(site, "public/images/logo.png"), testPNG(t))

	cfg := config.Default()
	cfg.Build.SourceDir = site
	cfg.Build.OutputDir = filepath.Join(site, "dist")
	return cfg
}

func writeTestFile(t *testing.T, path string, data []byte) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	for x := 0; x < 32; x++ {
		for y := 0; y < 32; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 8), G: uint8(y * 8), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.NoCompression}
	require.NoError(t, enc.Encode(&buf, img))
	return buf.Bytes()
}

func newTestPipeline(t *testing.T, cfg *config.Config, exec Executor) *Pipeline {
	t.Helper()
	return NewPipeline(cfg, exec, logging.NewNopLogger())
}

func runTask(t *testing.T, p *Pipeline, name string) (*RunMetrics, error) {
	t.Helper()
	task, err := p.Registry().Get(name)
	require.NoError(t, err)
	return NewRunner(logging.NewNopLogger()).Run(context.Background(), task)
}
