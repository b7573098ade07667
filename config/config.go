package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Config structure
type Config struct {
	Language        string `json:"language"`
	DataDir         string `json:"dataDir"`
	LogDir          string `json:"logDir"`
	CanvasWidth     int    `json:"canvasWidth"`
	CanvasHeight    int    `json:"canvasHeight"`
	HistoryLimit    int    `json:"historyLimit"`    // snapshots kept for undo; 0 keeps all
	AutosaveSeconds int    `json:"autosaveSeconds"` // 0 disables autosave
	RenderWidth     int    `json:"renderWidth"`     // pixel width of rasterized slides
	RenderWorkers   int    `json:"renderWorkers"`
	RenderEngine    string `json:"renderEngine"` // "goppt" or "chrome"
	ChromePath      string `json:"chromePath,omitempty"`
	PDFCompress     bool   `json:"pdfCompress"`
	VersionLimit    int    `json:"versionLimit"` // saved versions kept per deck
	DetailedLog     bool   `json:"detailedLog"`
}

const (
	RenderEngineGoPPT  = "goppt"
	RenderEngineChrome = "chrome"
)

// Default returns the configuration used when no config file exists.
func Default() Config {
	return Config{
		Language:        "English",
		CanvasWidth:     800,
		CanvasHeight:    600,
		HistoryLimit:    100,
		AutosaveSeconds: 30,
		RenderWorkers:   0,
		RenderEngine:    RenderEngineGoPPT,
		PDFCompress:     true,
		VersionLimit:    10,
	}
}

// ApplyDefaults fills zero values that have a non-zero default. Booleans
// are left as they are.
func (c *Config) ApplyDefaults() {
	d := Default()
	if c.Language == "" {
		c.Language = d.Language
	}
	if c.CanvasWidth <= 0 || c.CanvasHeight <= 0 {
		c.CanvasWidth, c.CanvasHeight = d.CanvasWidth, d.CanvasHeight
	}
	if c.HistoryLimit < 0 {
		c.HistoryLimit = 0
	}
	if c.AutosaveSeconds < 0 {
		c.AutosaveSeconds = 0
	}
	if c.RenderEngine == "" {
		c.RenderEngine = d.RenderEngine
	}
	if c.VersionLimit <= 0 {
		c.VersionLimit = d.VersionLimit
	}
}

// Validate reports settings that cannot be used.
func (c Config) Validate() error {
	switch c.RenderEngine {
	case "", RenderEngineGoPPT, RenderEngineChrome:
	default:
		return fmt.Errorf("unknown render engine %q", c.RenderEngine)
	}
	if c.RenderWidth < 0 {
		return fmt.Errorf("renderWidth must not be negative")
	}
	if c.RenderWorkers < 0 {
		return fmt.Errorf("renderWorkers must not be negative")
	}
	return nil
}

// EnvPrefix is the prefix of environment overrides.
const EnvPrefix = "SLIDEDECK_"

// ApplyEnv overrides fields from environment style key/value pairs such as
// SLIDEDECK_CANVAS_WIDTH=900. Unknown keys are ignored; malformed values
// are reported.
func (c *Config) ApplyEnv(env map[string]string) error {
	var errs []string
	setInt := func(key string, dst *int) {
		v, ok := env[EnvPrefix+key]
		if !ok {
			return
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s%s: %v", EnvPrefix, key, err))
			return
		}
		*dst = n
	}
	setBool := func(key string, dst *bool) {
		v, ok := env[EnvPrefix+key]
		if !ok {
			return
		}
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s%s: %v", EnvPrefix, key, err))
			return
		}
		*dst = b
	}
	setString := func(key string, dst *string) {
		if v, ok := env[EnvPrefix+key]; ok {
			*dst = v
		}
	}

	setString("LANGUAGE", &c.Language)
	setString("DATA_DIR", &c.DataDir)
	setString("LOG_DIR", &c.LogDir)
	setString("RENDER_ENGINE", &c.RenderEngine)
	setString("CHROME_PATH", &c.ChromePath)
	setInt("CANVAS_WIDTH", &c.CanvasWidth)
	setInt("CANVAS_HEIGHT", &c.CanvasHeight)
	setInt("HISTORY_LIMIT", &c.HistoryLimit)
	setInt("AUTOSAVE_SECONDS", &c.AutosaveSeconds)
	setInt("RENDER_WIDTH", &c.RenderWidth)
	setInt("RENDER_WORKERS", &c.RenderWorkers)
	setInt("VERSION_LIMIT", &c.VersionLimit)
	setBool("PDF_COMPRESS", &c.PDFCompress)
	setBool("DETAILED_LOG", &c.DetailedLog)

	if len(errs) > 0 {
		return fmt.Errorf("invalid environment overrides: %s", strings.Join(errs, "; "))
	}
	return nil
}
