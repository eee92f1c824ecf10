package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// FileSystem is the slice of os the loader needs. Tests swap it out.
type FileSystem interface {
	Exists(path string) bool
	LoadEnv(path string) error
}

// RealFileSystem reads the local disk.
type RealFileSystem struct{}

func (RealFileSystem) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// LoadEnv exports the file's variables without overwriting ones already set.
func (RealFileSystem) LoadEnv(path string) error {
	return godotenv.Load(path)
}

// Resolver locates config.yml and .env for a service.
type Resolver struct {
	FileSystem FileSystem
}

// ResolvedFiles holds the paths chosen by ResolveFiles. Empty means none found.
type ResolvedFiles struct {
	ConfigFile string
	EnvFile    string
}

// ResolveFiles keeps explicit paths from opts and searches for the rest.
// A service named whisper-gateway is also looked up as gateway.
func (r *Resolver) ResolveFiles(serviceName string, opts LoaderConfig) ResolvedFiles {
	files := ResolvedFiles{ConfigFile: opts.ConfigFile, EnvFile: opts.EnvFile}
	dirs := searchDirs(serviceName)
	if files.ConfigFile == "" {
		files.ConfigFile = r.first(dirs, "config.yml")
	}
	if files.EnvFile == "" {
		files.EnvFile = r.first(dirs, ".env."+serviceName, ".env")
	}
	return files
}

func (r *Resolver) first(dirs []string, names ...string) string {
	for _, name := range names {
		for _, dir := range dirs {
			p := dir + "/" + name
			if r.FileSystem.Exists(p) {
				return p
			}
		}
	}
	return ""
}

// searchDirs lists cmd/<name> for the full and short service name, then
// config/ and the working directory, each tried from up to two parents.
func searchDirs(serviceName string) []string {
	names := []string{serviceName}
	if i := strings.LastIndex(serviceName, "-"); i != -1 {
		names = append(names, serviceName[i+1:])
	}
	var dirs []string
	for _, up := range []string{".", "..", "../.."} {
		for _, n := range names {
			dirs = append(dirs, up+"/cmd/"+n)
		}
	}
	for _, up := range []string{".", ".."} {
		dirs = append(dirs, up+"/config")
	}
	return append(dirs, ".")
}

// LoaderConfig collects LoaderOption settings.
type LoaderConfig struct {
	FileSystem FileSystem
	ConfigFile string
	EnvFile    string
	// EnvPrefix limits env binding to PREFIX_* variables.
	EnvPrefix string
	// EnvAliases maps a bare variable such as MODEL_NAME to a key.
	EnvAliases map[string]string
}

// LoaderOption configures LoadConfig.
type LoaderOption func(*LoaderConfig)

func WithFileSystem(fs FileSystem) LoaderOption {
	return func(lc *LoaderConfig) { lc.FileSystem = fs }
}

func WithConfigFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.ConfigFile = path }
}

func WithEnvFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvFile = path }
}

// WithEnvPrefix restricts env binding to PREFIX_* variables. Case and a
// trailing underscore are normalized.
func WithEnvPrefix(prefix string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvPrefix = strings.TrimSuffix(strings.ToUpper(prefix), "_") }
}

// WithEnvAlias binds one environment variable to a config key. Aliases
// take precedence over the derived variable names.
func WithEnvAlias(env, key string) LoaderOption {
	return func(lc *LoaderConfig) {
		if lc.EnvAliases == nil {
			lc.EnvAliases = make(map[string]string)
		}
		lc.EnvAliases[env] = key
	}
}

// LoadConfig fills cfg from config.yml, then the environment. Every
// mapstructure key of cfg can be overridden by its upper-cased,
// underscore-joined name: dispatch.probe_count reads DISPATCH_PROBE_COUNT.
// A missing config file is not an error.
func LoadConfig(serviceName string, cfg any, opts ...LoaderOption) error {
	lc := LoaderConfig{FileSystem: RealFileSystem{}}
	for _, opt := range opts {
		opt(&lc)
	}
	files := (&Resolver{FileSystem: lc.FileSystem}).ResolveFiles(serviceName, lc)

	v := viper.New()
	if files.ConfigFile != "" && lc.FileSystem.Exists(files.ConfigFile) {
		v.SetConfigFile(files.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read %s: %w", filepath.Clean(files.ConfigFile), err)
		}
	}
	if files.EnvFile != "" && lc.FileSystem.Exists(files.EnvFile) {
		if err := lc.FileSystem.LoadEnv(files.EnvFile); err != nil {
			return fmt.Errorf("load %s: %w", filepath.Clean(files.EnvFile), err)
		}
	}

	for _, key := range structKeys(reflect.TypeOf(cfg), "") {
		if val, ok := os.LookupEnv(envName(lc.EnvPrefix, key)); ok {
			v.Set(key, val)
		}
	}
	for env, key := range lc.EnvAliases {
		if val, ok := os.LookupEnv(env); ok {
			v.Set(key, val)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("decode config for %s: %w", serviceName, err)
	}
	return nil
}

func envName(prefix, key string) string {
	name := strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
	if prefix == "" {
		return name
	}
	return prefix + "_" + name
}

// structKeys lists the dotted mapstructure keys of every leaf field in t.
// Squashed embeds contribute their fields at the parent level.
func structKeys(t reflect.Type, parent string) []string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}
	var keys []string
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name, opts, _ := strings.Cut(f.Tag.Get("mapstructure"), ",")
		if name == "-" {
			continue
		}
		if strings.Contains(opts, "squash") {
			keys = append(keys, structKeys(f.Type, parent)...)
			continue
		}
		if name == "" {
			name = strings.ToLower(f.Name)
		}
		key := name
		if parent != "" {
			key = parent + "." + name
		}
		if nested := structKeys(f.Type, key); len(nested) > 0 && !isLeaf(f.Type) {
			keys = append(keys, nested...)
			continue
		}
		keys = append(keys, key)
	}
	return keys
}

// isLeaf reports struct types that decode from a single scalar.
func isLeaf(t reflect.Type) bool {
	return t.PkgPath() == "time" && t.Name() == "Time"
}
