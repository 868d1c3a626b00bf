package rthumb

import (
	"encoding"
	"errors"
	"flag"
	"fmt"
	"os"
	"reflect"
	"runtime/debug"
	"slices"
	"time"

	"github.com/ShoshinNikita/rthumb/pkg/rlog"
	"gopkg.in/yaml.v3"
)

type Config struct {
	BuildInfo BuildInfo

	ServerPort int
	ConfigFile string
	PublicURL  string

	LogLevel rlog.Level

	File FileConfig
}

type BuildInfo struct {
	ShortGitHash string
	CommitTime   string
}

// FileConfig is loaded from the YAML file passed with --config flag.
//
//	aliases:
//	  "@frontend/web": ./var/public
//	source_path: "@frontend/web/uploads"
//	thumbnails:
//	  small: { width: 100, height: 100 }
//	  preview: { width: 300, height: 200, mode: inset, background: "#000" }
//	static:
//	  /uploads/: "@frontend/web/uploads"
type FileConfig struct {
	Aliases        map[string]string `yaml:"aliases"`
	BehaviorConfig `yaml:",inline"`
	Thumbnails     Specs `yaml:"thumbnails"`
	// Static maps url prefixes to directories that should be served as is.
	Static map[string]string `yaml:"static"`
}

type flagParams struct {
	// p is a pointer to a value.
	p            any
	defaultValue any
	desc         string
}

func (cfg *Config) getFlagParams() map[string]flagParams {
	return map[string]flagParams{
		"port": {
			p: &cfg.ServerPort, defaultValue: 8080, desc: "Server port",
		},
		"config": {
			p: &cfg.ConfigFile, defaultValue: "", desc: "Path to the YAML config with aliases and thumbnail types, required",
		},
		"public-url": {
			p: &cfg.PublicURL, defaultValue: "", desc: "" +
				"Public url of the server, optional. If it is specified, thumbnail urls\n" +
				"will be absolute, e.g., https://example.com/uploads/small-a.jpg",
		},
		//
		"log-level": {
			p: &cfg.LogLevel, defaultValue: rlog.LevelInfo, desc: "Set the minimal log level. One of: debug, info, warn, error",
		},
	}
}

func ParseConfig() (Config, error) {
	return parseConfig(flag.CommandLine, os.Args[1:])
}

func parseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := Config{
		BuildInfo: readBuildInfo(),
	}

	var printVersion bool
	fs.BoolVar(&printVersion, "version", false, "Print version and exit")

	flags := cfg.getFlagParams()
	for name, params := range flags {
		switch p := params.p.(type) {
		case *bool:
			fs.BoolVar(p, name, params.defaultValue.(bool), params.desc)
		case *int:
			fs.IntVar(p, name, params.defaultValue.(int), params.desc)
		case *string:
			fs.StringVar(p, name, params.defaultValue.(string), params.desc)
		case encoding.TextUnmarshaler:
			fs.TextVar(p, name, params.defaultValue.(encoding.TextMarshaler), params.desc)
		default:
			return Config{}, fmt.Errorf("flag %q has unsupported type: %T", name, p)
		}
	}

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if printVersion {
		cfg.BuildInfo.Print()
		os.Exit(0)
	}

	if cfg.ServerPort == 0 {
		return cfg, errors.New("server port must be > 0")
	}
	if cfg.ConfigFile == "" {
		return cfg, errors.New("config file can't be empty")
	}

	var err error
	cfg.File, err = LoadFile(cfg.ConfigFile)
	if err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadFile reads and validates the YAML config.
func LoadFile(path string) (FileConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return FileConfig{}, fmt.Errorf("couldn't open config file: %w", err)
	}
	defer f.Close()

	var fileCfg FileConfig

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&fileCfg); err != nil {
		return FileConfig{}, fmt.Errorf("couldn't decode config file %q: %w", path, err)
	}

	fileCfg.BehaviorConfig = fileCfg.BehaviorConfig.WithDefaults()
	fileCfg.Thumbnails, err = fileCfg.Thumbnails.Prepare()
	if err != nil {
		return FileConfig{}, fmt.Errorf("invalid config file %q: %w", path, err)
	}
	return fileCfg, nil
}

func readBuildInfo() BuildInfo {
	res := BuildInfo{
		ShortGitHash: "unknown",
		CommitTime:   "unknown",
	}

	info, ok := debug.ReadBuildInfo()
	if !ok {
		return res
	}

	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			res.ShortGitHash = s.Value
			if len(res.ShortGitHash) > 7 {
				res.ShortGitHash = res.ShortGitHash[:7]
			}

		case "vcs.time":
			t, err := time.Parse(time.RFC3339, s.Value)
			if err == nil {
				res.CommitTime = t.UTC().Format("2006-01-02 15:04:05 UTC")
			}
		}
	}
	return res
}

func (info BuildInfo) Print() {
	fmt.Fprintf(os.Stderr, `
           _   _                     _
      _ __| |_| |__  _   _ _ __ ___ | |__
     | '__| __| '_ \| | | | '_ ' _ \| '_ \
     | |  | |_| | | | |_| | | | | | | |_) |
     |_|   \__|_| |_|\__,_|_| |_| |_|_.__/

    Commit Hash: %q
    Commit Time: %q

`,
		info.ShortGitHash,
		info.CommitTime,
	)
}

func (cfg Config) Print() {
	flags := cfg.getFlagParams()

	var (
		names         = make([]string, 0, len(flags))
		maxNameLength int
	)
	for name := range flags {
		if len(name) > maxNameLength {
			maxNameLength = len(name)
		}
		names = append(names, name)
	}
	slices.Sort(names)

	fmt.Fprint(os.Stderr, "    Config:\n\n")
	for _, name := range names {
		fmt.Fprintf(os.Stderr, "        --%-*s = %v\n", maxNameLength, name, reflect.ValueOf(flags[name].p).Elem())
	}
	fmt.Fprint(os.Stderr, "\n")

	fmt.Fprint(os.Stderr, "    Thumbnails:\n\n")
	for _, name := range cfg.File.Thumbnails.Types() {
		spec := cfg.File.Thumbnails[name]
		fmt.Fprintf(os.Stderr, "        %s: %dx%d, %s\n", name, spec.Width, spec.Height, spec.Mode)
	}
	fmt.Fprint(os.Stderr, "\n")
}
