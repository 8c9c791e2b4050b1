// Package project locates and loads the lowc.toml build configuration.
package project

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/BurntSushi/toml"

	"lowc/internal/codegen"
)

// Config mirrors lowc.toml.
type Config struct {
	Codegen CodegenConfig `toml:"codegen"`
	Build   BuildConfig   `toml:"build"`

	// Path is the file the configuration was read from, empty for defaults.
	Path string `toml:"-"`
}

type CodegenConfig struct {
	Entry          string `toml:"entry"`
	Start          string `toml:"start"`
	WhileCondition string `toml:"while_condition"`
	TargetTriple   string `toml:"target_triple"`
}

type BuildConfig struct {
	Jobs   int    `toml:"jobs"`
	OutDir string `toml:"out_dir"`
	Cache  bool   `toml:"cache"`
}

func Default() Config {
	def := codegen.DefaultOptions()
	return Config{
		Codegen: CodegenConfig{
			Entry:          def.Entry,
			Start:          def.Start,
			WhileCondition: def.While.String(),
		},
		Build: BuildConfig{Cache: true},
	}
}

// Load reads the configuration at path, or the nearest lowc.toml above
// startDir when path is empty. A missing file yields Default().
func Load(path, startDir string) (Config, error) {
	if path == "" {
		found, ok, err := FindManifest(startDir)
		if err != nil {
			return Config{}, err
		}
		if !ok {
			return Default(), nil
		}
		path = found
	}
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return Config{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	cfg.Path = path
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Codegen.Entry) == "" {
		return fmt.Errorf("[codegen].entry must not be empty")
	}
	if strings.TrimSpace(c.Codegen.Start) == "" {
		return fmt.Errorf("[codegen].start must not be empty")
	}
	if c.Codegen.Entry == c.Codegen.Start {
		return fmt.Errorf("[codegen].entry and [codegen].start must differ, both are %q", c.Codegen.Entry)
	}
	if _, err := codegen.ParseWhileMode(c.Codegen.WhileCondition); err != nil {
		return fmt.Errorf("[codegen]: %w", err)
	}
	if c.Build.Jobs < 0 {
		return fmt.Errorf("[build].jobs must be >= 0, got %d", c.Build.Jobs)
	}
	return nil
}

// Options converts the [codegen] table.
func (c Config) Options() (codegen.Options, error) {
	mode, err := codegen.ParseWhileMode(c.Codegen.WhileCondition)
	if err != nil {
		return codegen.Options{}, err
	}
	return codegen.Options{
		Entry:        c.Codegen.Entry,
		Start:        c.Codegen.Start,
		While:        mode,
		TargetTriple: c.Codegen.TargetTriple,
	}, nil
}

// Jobs is the effective parallelism of the build.
func (c Config) Jobs() int {
	if c.Build.Jobs > 0 {
		return c.Build.Jobs
	}
	return runtime.GOMAXPROCS(0)
}
