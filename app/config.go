package app

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config drives window setup and asset resolution. All fields have working
// defaults; a YAML file can override any subset of them.
type Config struct {
	WindowWidth  int    `yaml:"window_width"`
	WindowHeight int    `yaml:"window_height"`
	WindowTitle  string `yaml:"window_title"`

	AssetDir   string  `yaml:"asset_dir"`
	AtlasImage string  `yaml:"atlas_image"`
	Font       string  `yaml:"font"`
	FontSize   float64 `yaml:"font_size"`
	Music      string  `yaml:"music"`

	OverlayText string `yaml:"overlay_text"`
	EnableMusic bool   `yaml:"enable_music"`
	Seed        int64  `yaml:"seed"`
	Debug       bool   `yaml:"debug"`
}

func DefaultConfig() Config {
	return Config{
		WindowWidth:  640,
		WindowHeight: 480,
		WindowTitle:  "Sprite Batch Sample",
		AssetDir:     "assets",
		AtlasImage:   "ravioli_atlas.bmp",
		Font:         "Inter-VariableFont.ttf",
		FontSize:     36,
		Music:        "the_entertainer.ogg",
		OverlayText:  "Hello Sprites!",
		EnableMusic:  true,
		Seed:         0,
	}
}

// LoadConfig returns the defaults overlaid with the YAML file at path.
// An empty path returns the defaults unchanged.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %q: %w", path, err)
	}

	if cfg.WindowWidth <= 0 || cfg.WindowHeight <= 0 {
		return cfg, fmt.Errorf("config %q: window size must be positive", path)
	}
	return cfg, nil
}
