package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Brownie44l1/catdog-api/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "absent.yml"))
	for _, key := range []string{"PORT", "DEBUG", "MODEL_PATH", "MODEL_DEFAULT_IMAGE_SIZE", "LABELS_CAT", "LABELS_DOG"} {
		t.Setenv(key, "")
	}

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.False(t, cfg.Debug)
	assert.Equal(t, "modelo_opset17.onnx", cfg.Model.Path)
	assert.Equal(t, model.DefaultImageSize, cfg.Model.DefaultImageSize)
	assert.Equal(t, model.DefaultLabels, cfg.Labels.Labels())
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	file := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(file, []byte(`
port: 9000
model:
  path: /opt/models/classifier.onnx
  intra_op_threads: 2
labels:
  cat: Gato
  dog: Cão
`), 0o644))
	t.Setenv("CONFIG_FILE", file)
	t.Setenv("PORT", "9100")
	t.Setenv("MODEL_LIBRARY_PATH", "/usr/lib/libonnxruntime.so")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Port)
	assert.Equal(t, "/opt/models/classifier.onnx", cfg.Model.Path)
	assert.Equal(t, model.Options{
		LibraryPath:      "/usr/lib/libonnxruntime.so",
		IntraOpThreads:   2,
		DefaultImageSize: model.DefaultImageSize,
	}, cfg.Model.Options())
	assert.Equal(t, model.Labels{Cat: "Gato", Dog: "Cão"}, cfg.Labels.Labels())
}

func TestLoadConfigInvalidFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(file, []byte("port: [unclosed"), 0o644))
	t.Setenv("CONFIG_FILE", file)

	_, err := LoadConfig()
	assert.Error(t, err)
}
