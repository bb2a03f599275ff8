// Package config resolves runtime settings from defaults, an optional .env
// file, ELLIPSE_* environment variables and command-line flags, in that order.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"ellipse-detector/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

const (
	ModeBatch       = "batch"
	ModeInteractive = "interactive"
	ModeHighGUI     = "highgui"

	EnvPrefix = "ELLIPSE_"
)

type Config struct {
	Image        string `validate:"required"`
	Output       string `validate:"required"`
	Mode         string `validate:"oneof=batch interactive highgui"`
	Strategy     string `validate:"required"`
	Width        int    `validate:"min=16,max=8192"`
	Height       int    `validate:"min=16,max=8192"`
	LogLevel     string `validate:"oneof=debug info warn warning error"`
	LogFile      string
	WindowWidth  int `validate:"min=320"`
	WindowHeight int `validate:"min=240"`
	Report       bool
	Plot         bool
	// Params overrides strategy defaults, as name=value pairs.
	Params map[string]int
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Image:        "IMG_cup.jpg",
		Output:       "results",
		Mode:         ModeInteractive,
		Strategy:     "otsu-ellipse",
		Width:        640,
		Height:       480,
		LogLevel:     "info",
		WindowWidth:  1320,
		WindowHeight: 1080,
		Report:       true,
		Plot:         false,
		Params:       map[string]int{},
	}
}

// Lookup reads one environment value.
type Lookup func(key string) (string, bool)

// Load resolves the configuration for args. envFile may be empty or name a
// missing file; both are ignored.
func Load(args []string, envFile string, lookup Lookup) (Config, error) {
	cfg := Default()

	if envFile != "" {
		values, err := godotenv.Read(envFile)
		switch {
		case err == nil:
			lookup = withFallback(lookup, values)
		case !errors.Is(err, os.ErrNotExist):
			return cfg, fmt.Errorf("read %s: %w", envFile, err)
		}
	}

	if err := applyEnv(&cfg, lookup); err != nil {
		return cfg, err
	}
	if err := applyFlags(&cfg, args); err != nil {
		return cfg, err
	}
	if err := Validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// withFallback prefers the process environment over .env values.
func withFallback(lookup Lookup, file map[string]string) Lookup {
	return func(key string) (string, bool) {
		if v, ok := lookup(key); ok {
			return v, true
		}
		v, ok := file[key]
		return v, ok
	}
}

func applyEnv(cfg *Config, lookup Lookup) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(EnvPrefix + key); ok && v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) error {
		v, ok := lookup(EnvPrefix + key)
		if !ok || v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return models.NewValidationError(EnvPrefix+key, v, "must be an integer")
		}
		*dst = n
		return nil
	}
	boolean := func(key string, dst *bool) error {
		v, ok := lookup(EnvPrefix + key)
		if !ok || v == "" {
			return nil
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return models.NewValidationError(EnvPrefix+key, v, "must be a boolean")
		}
		*dst = b
		return nil
	}

	str("IMAGE", &cfg.Image)
	str("OUTPUT", &cfg.Output)
	str("MODE", &cfg.Mode)
	str("STRATEGY", &cfg.Strategy)
	str("LOG_LEVEL", &cfg.LogLevel)
	str("LOG_FILE", &cfg.LogFile)

	for key, dst := range map[string]*int{
		"WIDTH":         &cfg.Width,
		"HEIGHT":        &cfg.Height,
		"WINDOW_WIDTH":  &cfg.WindowWidth,
		"WINDOW_HEIGHT": &cfg.WindowHeight,
	} {
		if err := num(key, dst); err != nil {
			return err
		}
	}
	if err := boolean("REPORT", &cfg.Report); err != nil {
		return err
	}
	if err := boolean("PLOT", &cfg.Plot); err != nil {
		return err
	}

	if v, ok := lookup(EnvPrefix + "PARAMS"); ok && v != "" {
		for _, pair := range strings.Split(v, ",") {
			if err := setParam(cfg.Params, pair); err != nil {
				return err
			}
		}
	}
	return nil
}

func applyFlags(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("ellipse-detector", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.Image, "image", cfg.Image, "input image path")
	fs.StringVar(&cfg.Output, "output", cfg.Output, "directory for stage images and reports")
	fs.StringVar(&cfg.Mode, "mode", cfg.Mode, "batch, interactive or highgui")
	fs.StringVar(&cfg.Strategy, "strategy", cfg.Strategy, "detection strategy")
	fs.IntVar(&cfg.Width, "width", cfg.Width, "working width")
	fs.IntVar(&cfg.Height, "height", cfg.Height, "working height")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")
	fs.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "rotating log file, empty for console only")
	fs.IntVar(&cfg.WindowWidth, "window-width", cfg.WindowWidth, "interactive window width")
	fs.IntVar(&cfg.WindowHeight, "window-height", cfg.WindowHeight, "interactive window height")
	fs.BoolVar(&cfg.Report, "report", cfg.Report, "write report.json with every save")
	fs.BoolVar(&cfg.Plot, "plot", cfg.Plot, "write candidates.png with every save")
	fs.Func("param", "strategy parameter override name=value, repeatable", func(s string) error {
		return setParam(cfg.Params, s)
	})

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}
	return nil
}

func setParam(params map[string]int, pair string) error {
	name, raw, ok := strings.Cut(strings.TrimSpace(pair), "=")
	if !ok || name == "" {
		return models.NewValidationError("param", pair, "expected name=value")
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return models.NewValidationError(name, raw, "must be an integer")
	}
	params[strings.TrimSpace(name)] = v
	return nil
}

var validate = validator.New()

// Validate checks the struct tags and reports the first failing field.
func Validate(cfg Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return models.NewValidationError(fe.Field(), fe.Value(), "failed "+fe.Tag()+" "+fe.Param())
	}
	return err
}

// OSLookup reads the process environment.
func OSLookup(key string) (string, bool) {
	return os.LookupEnv(key)
}
