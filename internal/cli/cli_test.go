package cli

import (
	"bytes"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/specialistvlad/regioncache/internal/app"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name           string
		args           []string
		expectExit     bool
		expectErr      bool
		expectedConfig *app.Config
		checkOutput    func(t *testing.T, output string)
	}{
		{
			name: "Happy Path with all flags",
			args: []string{
				"-config", "/etc/regioncache/cache.hcl",
				"--listen=127.0.0.1:9000",
				"--log-level=debug",
				"--log-format=text",
			},
			expectedConfig: &app.Config{
				ConfigPath: "/etc/regioncache/cache.hcl",
				Listen:     "127.0.0.1:9000",
				LogLevel:   "debug",
				LogFormat:  "text",
			},
		},
		{
			name: "Shorthand flag and defaults",
			args: []string{"-c", "cache.hcl"},
			expectedConfig: &app.Config{
				ConfigPath: "cache.hcl",
				Listen:     ":8080",
				LogLevel:   "info",
				LogFormat:  "json",
			},
		},
		{
			name: "Positional argument for path",
			args: []string{"cache.hcl"},
			expectedConfig: &app.Config{
				ConfigPath: "cache.hcl",
				Listen:     ":8080",
				LogLevel:   "info",
				LogFormat:  "json",
			},
		},
		{
			name: "No path runs without a config file",
			args: []string{"--listen="},
			expectedConfig: &app.Config{
				LogLevel:  "info",
				LogFormat: "json",
			},
		},
		{
			name:       "Help flag triggers clean exit",
			args:       []string{"-h"},
			expectExit: true,
			checkOutput: func(t *testing.T, output string) {
				assert.Contains(t, output, "Usage:", "Expected help text to be printed")
			},
		},
		{
			name:      "Invalid log level returns an error",
			args:      []string{"--log-level=foo", "cache.hcl"},
			expectErr: true,
		},
		{
			name:      "Invalid log format returns an error",
			args:      []string{"--log-format=yaml", "cache.hcl"},
			expectErr: true,
		},
		{
			name:      "Extra positional arguments return an error",
			args:      []string{"a.hcl", "b.hcl"},
			expectErr: true,
		},
		{
			name:      "Unknown flag returns an error",
			args:      []string{"--workers=5"},
			expectErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			out := &bytes.Buffer{}
			appConfig, shouldExit, err := Parse(tc.args, out)

			if tc.expectErr {
				require.Error(t, err)
				var exitErr *ExitError
				require.True(t, errors.As(err, &exitErr), "Expected error to be of type ExitError")
				assert.Equal(t, 2, exitErr.Code)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.expectExit, shouldExit)

			if tc.expectedConfig != nil {
				if diff := cmp.Diff(tc.expectedConfig, appConfig); diff != "" {
					t.Errorf("Config mismatch (-want +got):\n%s", diff)
				}
			}

			if tc.checkOutput != nil {
				tc.checkOutput(t, out.String())
			}
		})
	}
}
