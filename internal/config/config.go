package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/regioncache/internal/ctxlog"
)

// Loader types understood by the application.
const (
	LoaderHCL    = "hcl"
	LoaderRedis  = "redis"
	LoaderBadger = "badger"
	LoaderHTTP   = "http"
)

// Notifier types understood by the application.
const (
	NotifierLog            = "log"
	NotifierSocketIOHub    = "socketio_hub"
	NotifierSocketIOClient = "socketio_client"
	NotifierWebSocket      = "websocket"
)

// Config is the decoded cache configuration file.
type Config struct {
	StartupRegions []string `hcl:"startup_regions,optional"`
	LoadTimeoutRaw string   `hcl:"load_timeout,optional"`
	DefaultLoader  string   `hcl:"default_loader,optional"`
	RoutesFile     string   `hcl:"routes_file,optional"`

	Loaders   []*LoaderBlock   `hcl:"loader,block"`
	Regions   []*RegionBlock   `hcl:"region,block"`
	Notifiers []*NotifierBlock `hcl:"notifier,block"`

	// LoadTimeout is LoadTimeoutRaw parsed; zero means unbounded.
	LoadTimeout time.Duration
}

// LoaderBlock is a `loader "<type>" "<name>"` block. Which attributes are
// required depends on the type.
type LoaderBlock struct {
	Type string `hcl:"type,label"`
	Name string `hcl:"name,label"`

	Path       string `hcl:"path,optional"`
	Addr       string `hcl:"addr,optional"`
	Key        string `hcl:"key,optional"`
	Prefix     string `hcl:"prefix,optional"`
	URL        string `hcl:"url,optional"`
	TimeoutRaw string `hcl:"timeout,optional"`

	Timeout time.Duration
}

// RegionBlock binds a region to a named loader.
type RegionBlock struct {
	Name   string `hcl:"name,label"`
	Loader string `hcl:"loader"`
}

// NotifierBlock is a `notifier "<type>" "<name>"` block.
type NotifierBlock struct {
	Type string `hcl:"type,label"`
	Name string `hcl:"name,label"`

	Path      string `hcl:"path,optional"`
	URL       string `hcl:"url,optional"`
	Namespace string `hcl:"namespace,optional"`
	Event     string `hcl:"event,optional"`
	Codec     string `hcl:"codec,optional"`
}

// Empty returns a configuration with nothing to start and no notifiers. The
// application still serves its HTTP API with it.
func Empty() *Config {
	return &Config{}
}

// Load reads, decodes and validates the file at path.
func Load(ctx context.Context, path string) (*Config, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Loading configuration.", "path", path)

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, diags)
	}

	cfg, err := decode(file.Body, path)
	if err != nil {
		return nil, err
	}
	cfg.resolvePaths(filepath.Dir(path))

	logger.Debug("Configuration loaded.",
		"startup_regions", len(cfg.StartupRegions),
		"loaders", len(cfg.Loaders),
		"notifiers", len(cfg.Notifiers),
	)
	return cfg, nil
}

// Parse decodes and validates configuration source. Relative paths are kept
// as written.
func Parse(src []byte, filename string) (*Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse config file %s: %w", filename, diags)
	}
	return decode(file.Body, filename)
}

func decode(body hcl.Body, filename string) (*Config, error) {
	var cfg Config
	if diags := gohcl.DecodeBody(body, nil, &cfg); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode config file %s: %w", filename, diags)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", filename, err)
	}
	return &cfg, nil
}

// LoaderByName returns the loader block called name.
func (c *Config) LoaderByName(name string) (*LoaderBlock, bool) {
	for _, l := range c.Loaders {
		if l.Name == name {
			return l, true
		}
	}
	return nil, false
}

// resolvePaths joins relative file paths with dir.
func (c *Config) resolvePaths(dir string) {
	join := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(dir, p)
	}
	c.RoutesFile = join(c.RoutesFile)
	for _, l := range c.Loaders {
		switch l.Type {
		case LoaderHCL, LoaderBadger:
			l.Path = join(l.Path)
		}
	}
}
