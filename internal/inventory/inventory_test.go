package inventory

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/prime-website/internal/errors"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadJSON(t *testing.T) {
	path := writeFile(t, "cars.json", `[
		{"make": "Toyota", "model": "Corolla", "year": 2019, "price": 15999.5},
		{"make": "Honda", "model": "Civic", "year": 2021, "features": ["sunroof"]}
	]`)

	inv, err := Load(path)
	require.NoError(t, err)
	require.Len(t, inv, 2)

	assert.Equal(t, "Toyota", inv[0]["make"])
	assert.Equal(t, json.Number("2019"), inv[0]["year"])
	assert.Equal(t, json.Number("15999.5"), inv[0]["price"])
	assert.Equal(t, []any{"sunroof"}, inv[1]["features"])
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "cars.yaml", `
- make: Ford
  model: Focus
- make: Mazda
  model: "3"
`)

	inv, err := Load(path)
	require.NoError(t, err)
	require.Len(t, inv, 2)
	assert.Equal(t, "Ford", inv[0]["make"])
	assert.Equal(t, "3", inv[1]["model"])
}

func TestLoadEmptyArray(t *testing.T) {
	inv, err := Load(writeFile(t, "cars.json", `[]`))
	require.NoError(t, err)
	assert.NotNil(t, inv)
	assert.Empty(t, inv)
}

func TestLoadFailures(t *testing.T) {
	testCases := []struct {
		name string
		path func(t *testing.T) string
	}{
		{"missing file", func(t *testing.T) string {
			return filepath.Join(t.TempDir(), "nope.json")
		}},
		{"malformed json", func(t *testing.T) string {
			return writeFile(t, "cars.json", `[{"make": "Toyota",]`)
		}},
		{"object instead of array", func(t *testing.T) string {
			return writeFile(t, "cars.json", `{"make": "Toyota"}`)
		}},
		{"array of scalars", func(t *testing.T) string {
			return writeFile(t, "cars.json", `[1, 2, 3]`)
		}},
		{"null document", func(t *testing.T) string {
			return writeFile(t, "cars.json", `null`)
		}},
		{"trailing data", func(t *testing.T) string {
			return writeFile(t, "cars.json", `[] []`)
		}},
		{"malformed yaml", func(t *testing.T) string {
			return writeFile(t, "cars.yml", "- make: [unclosed\n")
		}},
		{"empty yaml", func(t *testing.T) string {
			return writeFile(t, "cars.yml", "")
		}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path := tc.path(t)
			inv, err := Load(path)

			require.Error(t, err)
			assert.Nil(t, inv)

			var pe *errors.PrimeError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, errors.ErrCodeInventoryLoad, pe.Code)
			assert.Equal(t, path, pe.Path)
		})
	}
}

func TestLoadPermissionDenied(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root ignores file permissions")
	}
	path := writeFile(t, "cars.json", `[]`)
	require.NoError(t, os.Chmod(path, 0o000))

	_, err := Load(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrPermission)
}
