/* ---------------------------------------------------------------------------
** This software is in the public domain, furnished "as is", without technical
** support, and with no warranty, express or implied, as to its usefulness for
** any purpose.
** -------------------------------------------------------------------------*/

// Package config loads the application configuration.
//
// Precedence, highest first: command-line options, POSTPROC_* environment
// variables, the configuration file, defaults.
//
// The engine configuration document (thresholds, tensor layout, area) is
// separate: engine.config_file points at it and it is applied through
// processor.Configure.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the application configuration.
type Config struct {
	Processor string       `mapstructure:"processor"`
	LogLevel  string       `mapstructure:"log_level"`
	HTTP      HTTPConfig   `mapstructure:"http"`
	Model     ModelConfig  `mapstructure:"model"`
	Engine    EngineConfig `mapstructure:"engine"`
	Export    ExportConfig `mapstructure:"export"`
}

// HTTPConfig configures the HTTP surface.
type HTTPConfig struct {
	Addr      string `mapstructure:"addr"`
	StaticDir string `mapstructure:"static_dir"`
}

// ModelConfig selects the TensorFlow Lite model run by /runmodel.
type ModelConfig struct {
	// Family selects the output packer: ssd, yolo or posenet.
	Family  string `mapstructure:"family"`
	Path    string `mapstructure:"path"`
	Labels  string `mapstructure:"labels"`
	Threads int    `mapstructure:"threads"`
	EdgeTPU bool   `mapstructure:"edgetpu"`
}

// EngineConfig configures the post-processing engine.
type EngineConfig struct {
	// ConfigFile is applied at startup when set.
	ConfigFile string `mapstructure:"config_file"`
}

// ExportConfig configures where analysis results and configuration state
// are published. Queue bounds the results waiting to be sent.
type ExportConfig struct {
	MQTT    MQTTConfig    `mapstructure:"mqtt"`
	Timeout time.Duration `mapstructure:"timeout"`
	Queue   int           `mapstructure:"queue"`
}

// MQTTConfig enables the MQTT sink when Broker is set.
type MQTTConfig struct {
	Broker        string `mapstructure:"broker"`
	ClientID      string `mapstructure:"client_id"`
	MetadataTopic string `mapstructure:"metadata_topic"`
	StateTopic    string `mapstructure:"state_topic"`
}

// Options are command line overrides.
type Options struct {
	Processor string
	Addr      string
	ModelPath string
	LogLevel  string
}

// Load reads configPath, or postproc.yaml from the standard locations
// when configPath is empty, and applies opts.
func Load(configPath string, opts Options) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		v.SetConfigName("postproc")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/postproc")

		// Ignore error if config file not found
		_ = v.ReadInConfig()
	}

	v.SetEnvPrefix("POSTPROC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.Processor != "" {
		v.Set("processor", opts.Processor)
	}
	if opts.Addr != "" {
		v.Set("http.addr", opts.Addr)
	}
	if opts.ModelPath != "" {
		v.Set("model.path", opts.ModelPath)
	}
	if opts.LogLevel != "" {
		v.Set("log_level", opts.LogLevel)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("processor", "detection")
	v.SetDefault("log_level", "info")

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.static_dir", "./static")

	v.SetDefault("model.family", "ssd")
	v.SetDefault("model.path", "models/ssd_mobilenet_v2_coco_quant_postprocess.tflite")
	v.SetDefault("model.labels", "models/coco_labels.txt")
	v.SetDefault("model.threads", 4)
	v.SetDefault("model.edgetpu", false)

	v.SetDefault("engine.config_file", "")

	v.SetDefault("export.timeout", 5*time.Second)
	v.SetDefault("export.queue", 16)
	v.SetDefault("export.mqtt.broker", "")
	v.SetDefault("export.mqtt.client_id", "postproc")
	v.SetDefault("export.mqtt.metadata_topic", "postproc/metadata")
	v.SetDefault("export.mqtt.state_topic", "postproc/state")
}

func (c *Config) validate() error {
	switch c.Processor {
	case "detection", "posenet":
	default:
		return fmt.Errorf("unknown processor %q, expected detection or posenet", c.Processor)
	}
	switch c.Model.Family {
	case "ssd", "yolo", "posenet":
	default:
		return fmt.Errorf("unknown model family %q, expected ssd, yolo or posenet", c.Model.Family)
	}
	if c.Model.Threads < 1 {
		return fmt.Errorf("model.threads must be at least 1, got %d", c.Model.Threads)
	}
	if c.Export.Queue < 1 {
		return fmt.Errorf("export.queue must be at least 1, got %d", c.Export.Queue)
	}
	return nil
}
