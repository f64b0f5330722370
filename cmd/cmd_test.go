package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/prime-website/internal/build"
)

type recordingExecutor struct {
	mutex sync.Mutex
	lines []string
	dirs  []string
}

func (r *recordingExecutor) Execute(_ context.Context, cmd build.Command) (build.Result, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.lines = append(r.lines, cmd.String())
	r.dirs = append(r.dirs, cmd.Dir)
	return build.Result{}, nil
}

// useFakeExecutor swaps the shell executor for a recorder.
func useFakeExecutor(t *testing.T) *recordingExecutor {
	t.Helper()
	rec := &recordingExecutor{}
	old := newExecutor
	newExecutor = func(*cli) build.Executor { return rec }
	t.Cleanup(func() { newExecutor = old })
	return rec
}

// inSite creates a minimal site in a temp dir and makes it the working
// directory.
func inSite(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"public/css/site.css":  "body {\n  margin: 0;\n}\n",
		"public/js/site.js":    "var lot = 'prime';\n",
		"views/inventory.html": "<head><!-- build:css --><link href=\"/css/site.css\"><!-- endbuild --></head>\n",
		"data/cars.json":       `[{"make":"Toyota"}]`,
		"package.json":         `{"name":"site"}`,
		"package-lock.json":    `{}`,
		"Dockerfile":           "FROM alpine\n",
	}
	for rel, content := range files {
		path := filepath.Join(dir, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	t.Chdir(dir)
	return dir
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := NewRootCommand()
	root.SetArgs(args)
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "prime ")

	out, _, err = execute(t, "version", "--format", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"go_version"`)

	_, _, err = execute(t, "version", "--format", "xml")
	assert.Error(t, err)
}

func TestTasksCommand(t *testing.T) {
	inSite(t)
	useFakeExecutor(t)

	out, _, err := execute(t, "tasks")
	require.NoError(t, err)
	assert.Contains(t, out, "build (default)")
	assert.Contains(t, out, "dockerClean")
	assert.Contains(t, out, "best-effort")
	assert.Contains(t, out, "Optimize and copy images")

	out, _, err = execute(t, "tasks", "docker")
	require.NoError(t, err)
	assert.Contains(t, out, "docker (series)\n  build (series)\n    clean\n    assets (parallel)\n")
	assert.Contains(t, out, "copyImages [tolerant]")

	_, _, err = execute(t, "tasks", "deploy")
	assert.Error(t, err)
}

func TestBuildCommandRunsDefaultTask(t *testing.T) {
	dir := inSite(t)
	rec := useFakeExecutor(t)

	_, stderr, err := execute(t, "build")
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(dir, "dist", "public", "css", "main.min.css"))
	assert.FileExists(t, filepath.Join(dir, "dist", "public", "js", "main.min.js"))
	assert.FileExists(t, filepath.Join(dir, "dist", "Dockerfile"))
	assert.Equal(t, []string{"npm install"}, rec.lines)
	assert.Equal(t, []string{"dist"}, rec.dirs)
	assert.Contains(t, stderr, "Starting 'build'...")
	assert.Contains(t, stderr, "Run finished")
}

func TestBuildCommandNamedTasks(t *testing.T) {
	dir := inSite(t)
	rec := useFakeExecutor(t)

	_, _, err := execute(t, "build", "styles", "copyData")
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(dir, "dist", "public", "css", "main.min.css"))
	assert.FileExists(t, filepath.Join(dir, "dist", "data", "cars.json"))
	assert.NoFileExists(t, filepath.Join(dir, "dist", "public", "js", "main.min.js"))
	assert.Empty(t, rec.lines)
}

func TestBuildCommandUnknownTask(t *testing.T) {
	dir := inSite(t)
	useFakeExecutor(t)

	_, _, err := execute(t, "build", "styles", "deploy")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "prime tasks")
	assert.NoDirExists(t, filepath.Join(dir, "dist"))
}

func TestBuildOutputPrecedence(t *testing.T) {
	dir := inSite(t)
	useFakeExecutor(t)
	require.NoError(t, os.WriteFile(".prime.yml", []byte("build:\n  output_dir: from-file\n"), 0o644))

	_, stderr, err := execute(t, "build", "styles")
	require.NoError(t, err)
	assert.Contains(t, stderr, "Using config file:")
	assert.FileExists(t, filepath.Join(dir, "from-file", "public", "css", "main.min.css"))

	t.Setenv("PRIME_BUILD_OUTPUT_DIR", "from-env")
	_, _, err = execute(t, "build", "styles")
	require.NoError(t, err)
	assert.DirExists(t, filepath.Join(dir, "from-env"))

	_, _, err = execute(t, "build", "styles", "--output", "from-flag")
	require.NoError(t, err)
	assert.DirExists(t, filepath.Join(dir, "from-flag"))
}

func TestExplicitConfigFile(t *testing.T) {
	dir := inSite(t)
	useFakeExecutor(t)
	require.NoError(t, os.WriteFile("custom.yml", []byte("build:\n  output_dir: custom-out\n"), 0o644))

	_, _, err := execute(t, "--config", "custom.yml", "build", "scripts")
	require.NoError(t, err)
	assert.DirExists(t, filepath.Join(dir, "custom-out"))

	_, _, err = execute(t, "--config", "missing.yml", "build")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config file")
}

func TestInvalidConfigIsRejected(t *testing.T) {
	inSite(t)
	useFakeExecutor(t)

	_, _, err := execute(t, "build", "--output", ".")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration")

	_, _, err = execute(t, "--log-level", "loud", "tasks")
	assert.Error(t, err)
}

func TestEnvFile(t *testing.T) {
	dir := inSite(t)
	useFakeExecutor(t)
	require.NoError(t, os.WriteFile(".env", []byte("PRIME_BUILD_OUTPUT_DIR=from-dotenv\n"), 0o644))
	t.Cleanup(func() { _ = os.Unsetenv("PRIME_BUILD_OUTPUT_DIR") })

	_, _, err := execute(t, "build", "styles")
	require.NoError(t, err)
	assert.DirExists(t, filepath.Join(dir, "from-dotenv"))
}

func TestFlagNormalization(t *testing.T) {
	inSite(t)
	useFakeExecutor(t)

	_, stderr, err := execute(t, "--log_level", "debug", "build", "styles")
	require.NoError(t, err)
	assert.Contains(t, stderr, "level=DEBUG")
}

func TestInitCommand(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	out, _, err := execute(t, "init", "Lot", "--port", "8080")
	require.NoError(t, err)
	assert.Contains(t, out, "created "+filepath.Join("Lot", "views", "inventory.html"))

	cfg, err := os.ReadFile(filepath.Join(dir, "Lot", ".prime.yml"))
	require.NoError(t, err)
	assert.Contains(t, string(cfg), "image: lot")
	assert.Contains(t, string(cfg), "port: 8080")

	_, _, err = execute(t, "init", "Lot")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, _, err = execute(t, "init", "Lot", "--force", "--name", "prime-lot")
	require.NoError(t, err)
	cfg, err = os.ReadFile(filepath.Join(dir, "Lot", ".prime.yml"))
	require.NoError(t, err)
	assert.Contains(t, string(cfg), "image: prime-lot")
	assert.Contains(t, string(cfg), "port: 3000")
}
