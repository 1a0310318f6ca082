package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/specialistvlad/regioncache/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fullConfig = `
startup_regions = ["dept-a", "dept-b"]
load_timeout    = "10s"
default_loader  = "employees"
routes_file     = "notifications.yaml"

loader "hcl" "employees" {
  path = "seed/employees.hcl"
}

loader "redis" "cache" {
  addr = "localhost:6379"
  key  = "employees"
}

loader "badger" "disk" {
  path   = "/var/lib/regioncache"
  prefix = "employees/"
}

loader "http" "api" {
  url     = "http://localhost:8081/employees"
  timeout = "5s"
}

region "dept-b" {
  loader = "cache"
}

notifier "log" "audit" {}

notifier "socketio_hub" "hub" {
  path = "/socket.io/"
}

notifier "websocket" "ws" {
  url   = "ws://localhost:9000/ws"
  codec = "msgpack"
}
`

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(fullConfig), "cache.hcl")
	require.NoError(t, err)

	assert.Equal(t, []string{"dept-a", "dept-b"}, cfg.StartupRegions)
	assert.Equal(t, 10*time.Second, cfg.LoadTimeout)
	assert.Equal(t, "employees", cfg.DefaultLoader)
	assert.Equal(t, "notifications.yaml", cfg.RoutesFile)

	require.Len(t, cfg.Loaders, 4)
	api, ok := cfg.LoaderByName("api")
	require.True(t, ok)
	assert.Equal(t, LoaderHTTP, api.Type)
	assert.Equal(t, 5*time.Second, api.Timeout)

	redis, ok := cfg.LoaderByName("cache")
	require.True(t, ok)
	assert.Equal(t, "localhost:6379", redis.Addr)
	assert.Equal(t, "employees", redis.Key)

	_, ok = cfg.LoaderByName("missing")
	assert.False(t, ok)

	require.Len(t, cfg.Regions, 1)
	assert.Equal(t, &RegionBlock{Name: "dept-b", Loader: "cache"}, cfg.Regions[0])

	require.Len(t, cfg.Notifiers, 3)
	assert.Equal(t, NotifierWebSocket, cfg.Notifiers[2].Type)
	assert.Equal(t, "msgpack", cfg.Notifiers[2].Codec)
}

func TestParseEmpty(t *testing.T) {
	cfg, err := Parse([]byte(""), "empty.hcl")
	require.NoError(t, err)
	assert.Empty(t, cfg.StartupRegions)
	assert.Zero(t, cfg.LoadTimeout)
	assert.Empty(t, cfg.Loaders)
}

func TestParseValidation(t *testing.T) {
	testCases := []struct {
		name    string
		src     string
		wantErr []string
	}{
		{
			name:    "unknown loader type",
			src:     `loader "mysql" "db" {}`,
			wantErr: []string{`loader "db" has unknown type "mysql"`},
		},
		{
			name: "missing required attributes",
			src: `
loader "redis" "r" {}
loader "http" "h" {}
`,
			wantErr: []string{`requires "addr"`, `requires "key"`, `requires "url"`},
		},
		{
			name: "duplicate loader",
			src: `
loader "hcl" "x" { path = "a.hcl" }
loader "hcl" "x" { path = "b.hcl" }
`,
			wantErr: []string{`loader "x" is declared more than once`},
		},
		{
			name:    "unknown default loader",
			src:     `default_loader = "nope"`,
			wantErr: []string{`default_loader refers to unknown loader "nope"`},
		},
		{
			name:    "region with unknown loader",
			src:     `region "dept-a" { loader = "nope" }`,
			wantErr: []string{`region "dept-a" refers to unknown loader "nope"`},
		},
		{
			name:    "bad timeout",
			src:     `load_timeout = "soon"`,
			wantErr: []string{"load_timeout"},
		},
		{
			name:    "negative timeout",
			src:     `load_timeout = "-1s"`,
			wantErr: []string{"load_timeout must not be negative"},
		},
		{
			name:    "empty startup region",
			src:     `startup_regions = ["a", ""]`,
			wantErr: []string{"startup_regions[1] is empty"},
		},
		{
			name:    "unknown notifier",
			src:     `notifier "carrier_pigeon" "p" {}`,
			wantErr: []string{`notifier "p" has unknown type "carrier_pigeon"`},
		},
		{
			name:    "websocket without url",
			src:     `notifier "websocket" "ws" {}`,
			wantErr: []string{`notifier "ws" of type "websocket" requires "url"`},
		},
		{
			name: "bad codec",
			src: `
notifier "socketio_client" "up" {
  url   = "http://x"
  codec = "xml"
}
`,
			wantErr: []string{`unknown codec "xml"`},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.src), "bad.hcl")
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidConfig)
			for _, want := range tc.wantErr {
				assert.ErrorContains(t, err, want)
			}
		})
	}
}

func TestParseSyntaxError(t *testing.T) {
	_, err := Parse([]byte(`startup_regions = [`), "broken.hcl")
	require.Error(t, err)
	assert.ErrorContains(t, err, "failed to parse config file broken.hcl")
}

func TestLoadResolvesRelativePaths(t *testing.T) {
	ctx, _ := testutil.Context(t)
	dir := testutil.WriteFiles(t, map[string]string{
		"cache.hcl": `
routes_file = "notifications.yaml"
loader "hcl" "seed" { path = "seed/employees.hcl" }
loader "badger" "disk" { path = "/abs/data" }
loader "http" "api" { url = "http://localhost/x" }
`,
	})

	cfg, err := Load(ctx, filepath.Join(dir, "cache.hcl"))
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "notifications.yaml"), cfg.RoutesFile)
	seed, _ := cfg.LoaderByName("seed")
	assert.Equal(t, filepath.Join(dir, "seed", "employees.hcl"), seed.Path)
	disk, _ := cfg.LoaderByName("disk")
	assert.Equal(t, "/abs/data", disk.Path)
}

func TestLoadMissingFile(t *testing.T) {
	ctx, _ := testutil.Context(t)
	_, err := Load(ctx, filepath.Join(t.TempDir(), "nope.hcl"))
	require.Error(t, err)
}
