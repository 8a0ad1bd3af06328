package configuration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Endpoint string `json:"endpoint"`
	Timeout  int    `json:"timeout"`
	Nested   struct {
		Key string `json:"key"`
	} `json:"nested"`
}

func TestReadConfig(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		_, err := ReadConfig[testConfig](filepath.Join(dir, "nope.json5"))
		require.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("single layer", func(t *testing.T) {
		path := filepath.Join(dir, "single.json5")
		err := os.WriteFile(path, []byte(`{
			// endpoint for testing
			endpoint: "https://example.com",
			timeout: 10,
		}`), 0644)
		require.NoError(t, err)

		config, err := ReadConfig[testConfig](path)
		require.NoError(t, err)
		require.Equal(t, "https://example.com", config.Endpoint)
		require.Equal(t, 10, config.Timeout)
	})

	t.Run("local overrides win", func(t *testing.T) {
		path := filepath.Join(dir, "layered.json5")
		err := os.WriteFile(path, []byte(`{
			endpoint: "https://example.com",
			timeout: 10,
			nested: { key: "base" },
		}`), 0644)
		require.NoError(t, err)
		err = os.WriteFile(filepath.Join(dir, "layered.local.json5"), []byte(`{
			timeout: 30,
		}`), 0644)
		require.NoError(t, err)

		config, err := ReadConfig[testConfig](path)
		require.NoError(t, err)
		require.Equal(t, "https://example.com", config.Endpoint)
		require.Equal(t, 30, config.Timeout)
		require.Equal(t, "base", config.Nested.Key)
	})

	t.Run("local layer alone is enough", func(t *testing.T) {
		err := os.WriteFile(filepath.Join(dir, "only.local.json5"), []byte(`{
			endpoint: "https://local.example.com",
		}`), 0644)
		require.NoError(t, err)

		config, err := ReadConfig[testConfig](filepath.Join(dir, "only.json5"))
		require.NoError(t, err)
		require.Equal(t, "https://local.example.com", config.Endpoint)
	})

	t.Run("invalid json5 is an error", func(t *testing.T) {
		path := filepath.Join(dir, "broken.json5")
		err := os.WriteFile(path, []byte(`{ endpoint: `), 0644)
		require.NoError(t, err)

		_, err = ReadConfig[testConfig](path)
		require.Error(t, err)
	})
}

func TestReadRecursively(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	err := os.MkdirAll(nested, 0755)
	require.NoError(t, err)

	err = os.WriteFile(filepath.Join(root, "discover.json5"), []byte(`{
		endpoint: "https://found.example.com",
	}`), 0644)
	require.NoError(t, err)

	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(nested))
	defer os.Chdir(cwd)

	config, err := ReadRecursively[testConfig]("discover.json5")
	require.NoError(t, err)
	require.Equal(t, "https://found.example.com", config.Endpoint)

	_, err = ReadRecursively[testConfig]("never-exists.json5")
	require.ErrorIs(t, err, os.ErrNotExist)
}
