package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/kbukum/servicecore/logger"
)

// FileSystem abstracts the file operations the loader needs.
type FileSystem interface {
	Exists(path string) bool
	LoadEnv(path string) error
}

// OSFileSystem implements FileSystem on the real file system.
type OSFileSystem struct{}

func (OSFileSystem) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// LoadEnv loads a .env file into the process environment. Variables that
// are already set win over the file.
func (OSFileSystem) LoadEnv(path string) error {
	return godotenv.Load(path)
}

// Resolver finds config and env files for a command.
type Resolver struct {
	FileSystem FileSystem
}

// ResolvedFiles contains the resolved config and env file paths. Empty
// means nothing was found.
type ResolvedFiles struct {
	ConfigFile string
	EnvFile    string
}

// ResolveFiles returns the explicit paths from opts, falling back to a
// search of the standard locations.
func (r *Resolver) ResolveFiles(name string, opts LoaderConfig) ResolvedFiles {
	resolved := ResolvedFiles{ConfigFile: opts.ConfigFile, EnvFile: opts.EnvFile}
	if resolved.ConfigFile == "" {
		resolved.ConfigFile = r.first(searchDirs(name), "config.yml", "config.yaml")
	}
	if resolved.EnvFile == "" {
		resolved.EnvFile = r.first(searchDirs(name), ".env."+name, ".env")
	}
	return resolved
}

// first returns the first existing file, trying every name in every
// directory before moving to the next name.
func (r *Resolver) first(dirs []string, names ...string) string {
	for _, name := range names {
		for _, dir := range dirs {
			path := filepath.Join(dir, name)
			if dir == "." {
				path = "./" + name
			}
			if r.FileSystem.Exists(path) {
				return path
			}
		}
	}
	return ""
}

// searchDirs lists candidate directories, most specific first. A name like
// "acme-servicecore" also matches ./cmd/servicecore.
func searchDirs(name string) []string {
	names := []string{name}
	if idx := strings.LastIndex(name, "-"); idx != -1 {
		names = append(names, name[idx+1:])
	}

	var dirs []string
	for _, up := range []string{".", "..", "../.."} {
		for _, n := range names {
			dirs = append(dirs, filepath.Join(up, "cmd", n))
		}
	}
	for _, up := range []string{".", ".."} {
		dirs = append(dirs, filepath.Join(up, "config"))
	}
	return append(dirs, ".")
}

// LoaderConfig holds dependencies and optional overrides.
type LoaderConfig struct {
	FileSystem FileSystem
	ConfigFile string
	EnvFile    string
	// EnvPrefix restricts environment binding to variables starting with
	// PREFIX_; the prefix is stripped before mapping to keys.
	EnvPrefix string
}

// LoaderOption is a functional option for LoadConfig.
type LoaderOption func(*LoaderConfig)

// WithFileSystem sets a custom filesystem for the loader.
func WithFileSystem(fs FileSystem) LoaderOption {
	return func(lc *LoaderConfig) { lc.FileSystem = fs }
}

// WithConfigFile sets an explicit config file path.
func WithConfigFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.ConfigFile = path }
}

// WithEnvFile sets an explicit .env file path.
func WithEnvFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvFile = path }
}

// WithEnvPrefix only binds variables named PREFIX_*.
func WithEnvPrefix(prefix string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvPrefix = strings.ToUpper(strings.TrimSuffix(prefix, "_")) }
}

// LoadConfig loads configuration for the named command into cfg. The YAML
// file is the base; variables from the .env file and the environment are
// layered on top. A config file that exists but cannot be parsed is an
// error. A missing file is not.
func LoadConfig(name string, cfg interface{}, opts ...LoaderOption) error {
	var lc LoaderConfig
	for _, opt := range opts {
		opt(&lc)
	}
	if lc.FileSystem == nil {
		lc.FileSystem = OSFileSystem{}
	}

	resolver := &Resolver{FileSystem: lc.FileSystem}
	files := resolver.ResolveFiles(name, lc)
	log := logger.WithComponent("config")

	v := viper.New()
	if files.ConfigFile != "" {
		if lc.FileSystem.Exists(files.ConfigFile) {
			v.SetConfigFile(files.ConfigFile)
			if err := v.ReadInConfig(); err != nil {
				return fmt.Errorf("failed to read config file %s: %w", files.ConfigFile, err)
			}
			log.Debug("Config file loaded", map[string]interface{}{"file": files.ConfigFile})
		} else {
			log.Warn("Config file not found", map[string]interface{}{"file": files.ConfigFile})
		}
	}

	if files.EnvFile != "" && lc.FileSystem.Exists(files.EnvFile) {
		if err := lc.FileSystem.LoadEnv(files.EnvFile); err != nil {
			log.Warn("Failed to load env file", map[string]interface{}{
				"file":  files.EnvFile,
				"error": err.Error(),
			})
		}
	}
	bindEnv(v, lc.EnvPrefix, os.Environ())

	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("failed to decode config for %s: %w", name, err)
	}
	return nil
}

// bindEnv sets every key variant of each environment variable on v.
func bindEnv(v *viper.Viper, prefix string, environ []string) {
	for _, env := range environ {
		key, value, ok := strings.Cut(env, "=")
		if !ok || key == "" {
			continue
		}
		if prefix != "" {
			rest, found := strings.CutPrefix(key, prefix+"_")
			if !found || rest == "" {
				continue
			}
			key = rest
		}
		for _, variant := range envKeyVariants(key) {
			v.Set(variant, value)
		}
	}
}

// envKeyVariants maps an environment variable name onto every nested key it
// could mean, since underscores separate both sections and words:
//
//	REGISTRY_RUNNING_SERVICES -> registry_running_services,
//	    registry.running.services, registry.running_services,
//	    registry_running.services
func envKeyVariants(envKey string) []string {
	lower := strings.ToLower(envKey)
	parts := strings.Split(lower, "_")
	if len(parts) == 1 {
		return []string{lower}
	}

	seen := make(map[string]bool)
	var variants []string
	add := func(s string) {
		if !seen[s] {
			seen[s] = true
			variants = append(variants, s)
		}
	}

	add(lower)
	add(strings.Join(parts, "."))
	for i := 1; i < len(parts); i++ {
		add(strings.Join(parts[:i], ".") + "." + strings.Join(parts[i:], "_"))
		add(strings.Join(parts[:i], "_") + "." + strings.Join(parts[i:], "."))
	}
	return variants
}
