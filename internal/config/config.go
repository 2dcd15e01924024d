// Package config reads the TOML configuration shared by the server and the demo binary.
package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dheeraj221b/cartoonize/internal/asset"
	"github.com/dheeraj221b/cartoonize/internal/model"
	"github.com/dheeraj221b/cartoonize/internal/tensor"
	"github.com/nfnt/resize"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

type Config struct {
	LogLevel zerolog.Level

	AssetPath    string
	ResizeFilter resize.InterpolationFunction

	ModelPath      string
	LibraryPath    string
	Metadata       model.Metadata
	InputChannels  tensor.ChannelOrder
	OutputChannels tensor.ChannelOrder
	Normalization  tensor.Normalization

	OutputDir    string
	OutputFormat string

	Port string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.log_level", "info")
	v.SetDefault("asset.path", "assets/test-image.jpeg")
	v.SetDefault("asset.resize_filter", "nearest")
	v.SetDefault("model.path", "models/cartoongan.onnx")
	v.SetDefault("model.library_path", "")
	v.SetDefault("model.input_name", "input")
	v.SetDefault("model.output_name", "output")
	v.SetDefault("model.width", 224)
	v.SetDefault("model.height", 224)
	v.SetDefault("model.input_channels", "RGB")
	v.SetDefault("model.output_channels", "RGB")
	v.SetDefault("model.mean", []float64{127.5, 127.5, 127.5})
	v.SetDefault("model.scale", []float64{127.5, 127.5, 127.5})
	v.SetDefault("output.dir", "out")
	v.SetDefault("output.format", "png")
	v.SetDefault("server.port", "8080")
}

// Load reads config.toml from dir. A missing file falls back to defaults;
// CARTOONIZE_* environment variables override both, e.g. CARTOONIZE_MODEL_PATH.
func Load(dir string) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(dir)
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.SetEnvPrefix("cartoonize")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("could not read config file: %w", err)
		}
	}

	return parse(v)
}

func parse(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		AssetPath:    v.GetString("asset.path"),
		ModelPath:    v.GetString("model.path"),
		LibraryPath:  v.GetString("model.library_path"),
		OutputDir:    v.GetString("output.dir"),
		OutputFormat: strings.ToLower(v.GetString("output.format")),
		Port:         v.GetString("server.port"),
	}

	switch v.GetString("app.log_level") {
	case "debug":
		cfg.LogLevel = zerolog.DebugLevel
	case "info":
		cfg.LogLevel = zerolog.InfoLevel
	default:
		cfg.LogLevel = zerolog.InfoLevel
	}

	var err error
	if cfg.ResizeFilter, err = asset.ParseFilter(v.GetString("asset.resize_filter")); err != nil {
		return nil, err
	}
	if cfg.InputChannels, err = tensor.ParseChannelOrder(v.GetString("model.input_channels")); err != nil {
		return nil, fmt.Errorf("model.input_channels: %w", err)
	}
	if cfg.OutputChannels, err = tensor.ParseChannelOrder(v.GetString("model.output_channels")); err != nil {
		return nil, fmt.Errorf("model.output_channels: %w", err)
	}

	width, height := v.GetInt("model.width"), v.GetInt("model.height")
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("model dimensions must be positive, got %dx%d", width, height)
	}
	cfg.Metadata = model.NewMetadata(v.GetString("model.input_name"), v.GetString("model.output_name"), width, height)
	if err := cfg.Metadata.Validate(); err != nil {
		return nil, err
	}

	if cfg.Normalization.Mean, err = triple(v, "model.mean"); err != nil {
		return nil, err
	}
	if cfg.Normalization.Scale, err = triple(v, "model.scale"); err != nil {
		return nil, err
	}
	if err := cfg.Normalization.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// triple reads a per-channel [R, G, B] value; a single number applies to all three.
// Environment overrides arrive as comma separated strings.
func triple(v *viper.Viper, key string) ([tensor.Channels]float32, error) {
	var out [tensor.Channels]float32
	var values []string

	switch raw := v.Get(key).(type) {
	case string:
		values = strings.Split(raw, ",")
	case []string:
		values = raw
	case []float64:
		for _, f := range raw {
			values = append(values, strconv.FormatFloat(f, 'g', -1, 64))
		}
	case []any:
		for _, e := range raw {
			values = append(values, fmt.Sprint(e))
		}
	default:
		values = []string{fmt.Sprint(raw)}
	}

	if len(values) == 1 {
		values = []string{values[0], values[0], values[0]}
	}
	if len(values) != tensor.Channels {
		return out, fmt.Errorf("%s needs %d values, got %v", key, tensor.Channels, values)
	}

	for i, s := range values {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 32)
		if err != nil {
			return out, fmt.Errorf("%s[%d]: %w", key, i, err)
		}
		out[i] = float32(f)
	}

	return out, nil
}
