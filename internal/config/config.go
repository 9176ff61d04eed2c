package config

import (
	"errors"
	"os"
	"strings"

	"github.com/Brownie44l1/catdog-api/internal/model"
	"github.com/spf13/viper"
)

const defaultConfigFile = "config/config.yml"

type AppConfig struct {
	Port   int          `mapstructure:"port" yaml:"port"`
	Debug  bool         `mapstructure:"debug" yaml:"debug"`
	Model  ModelConfig  `mapstructure:"model" yaml:"model"`
	Labels LabelsConfig `mapstructure:"labels" yaml:"labels"`
}

type ModelConfig struct {
	Path             string `mapstructure:"path" yaml:"path"`
	LibraryPath      string `mapstructure:"library_path" yaml:"library_path"`
	IntraOpThreads   int    `mapstructure:"intra_op_threads" yaml:"intra_op_threads"`
	DefaultImageSize int    `mapstructure:"default_image_size" yaml:"default_image_size"`
}

type LabelsConfig struct {
	Cat string `mapstructure:"cat" yaml:"cat"`
	Dog string `mapstructure:"dog" yaml:"dog"`
}

func (m ModelConfig) Options() model.Options {
	return model.Options{
		LibraryPath:      m.LibraryPath,
		IntraOpThreads:   m.IntraOpThreads,
		DefaultImageSize: m.DefaultImageSize,
	}
}

func (l LabelsConfig) Labels() model.Labels {
	return model.Labels{Cat: l.Cat, Dog: l.Dog}
}

// LoadConfig reads the YAML file named by CONFIG_FILE (config/config.yml by
// default) if it exists, then applies environment overrides such as
// MODEL_PATH or LABELS_DOG.
func LoadConfig() (*AppConfig, error) {
	v := viper.New()

	v.SetDefault("port", 8080)
	v.SetDefault("debug", false)
	v.SetDefault("model.path", "modelo_opset17.onnx")
	v.SetDefault("model.library_path", "")
	v.SetDefault("model.intra_op_threads", 0)
	v.SetDefault("model.default_image_size", model.DefaultImageSize)
	v.SetDefault("labels.cat", model.DefaultLabels.Cat)
	v.SetDefault("labels.dog", model.DefaultLabels.Dog)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	file := os.Getenv("CONFIG_FILE")
	if file == "" {
		file = defaultConfigFile
	}
	v.SetConfigFile(file)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.Is(err, os.ErrNotExist) && !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var config AppConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}
	return &config, nil
}
