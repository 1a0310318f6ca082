package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/specialistvlad/regioncache/internal/notify"
)

// ErrInvalidConfig marks every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}

// validate checks cross references and per-type requirements and fills in the
// parsed durations. All problems are reported together.
func (c *Config) validate() error {
	var errs []error

	if c.LoadTimeoutRaw != "" {
		d, err := parseDuration("load_timeout", c.LoadTimeoutRaw)
		if err != nil {
			errs = append(errs, err)
		}
		c.LoadTimeout = d
	}

	for i, name := range c.StartupRegions {
		if strings.TrimSpace(name) == "" {
			errs = append(errs, invalid("startup_regions[%d] is empty", i))
		}
	}

	loaders := make(map[string]struct{}, len(c.Loaders))
	for _, l := range c.Loaders {
		if _, dup := loaders[l.Name]; dup {
			errs = append(errs, invalid("loader %q is declared more than once", l.Name))
		}
		loaders[l.Name] = struct{}{}
		errs = append(errs, l.validate()...)
	}

	if c.DefaultLoader != "" {
		if _, ok := loaders[c.DefaultLoader]; !ok {
			errs = append(errs, invalid("default_loader refers to unknown loader %q", c.DefaultLoader))
		}
	}

	regions := make(map[string]struct{}, len(c.Regions))
	for _, r := range c.Regions {
		if _, dup := regions[r.Name]; dup {
			errs = append(errs, invalid("region %q is declared more than once", r.Name))
		}
		regions[r.Name] = struct{}{}
		if _, ok := loaders[r.Loader]; !ok {
			errs = append(errs, invalid("region %q refers to unknown loader %q", r.Name, r.Loader))
		}
	}

	notifiers := make(map[string]struct{}, len(c.Notifiers))
	for _, n := range c.Notifiers {
		if _, dup := notifiers[n.Name]; dup {
			errs = append(errs, invalid("notifier %q is declared more than once", n.Name))
		}
		notifiers[n.Name] = struct{}{}
		errs = append(errs, n.validate()...)
	}

	return errors.Join(errs...)
}

func (l *LoaderBlock) validate() []error {
	var errs []error
	require := func(attr, value string) {
		if value == "" {
			errs = append(errs, invalid("loader %q of type %q requires %q", l.Name, l.Type, attr))
		}
	}

	switch l.Type {
	case LoaderHCL:
		require("path", l.Path)
	case LoaderRedis:
		require("addr", l.Addr)
		require("key", l.Key)
	case LoaderBadger:
		require("path", l.Path)
	case LoaderHTTP:
		require("url", l.URL)
		if l.TimeoutRaw != "" {
			d, err := parseDuration(fmt.Sprintf("loader %q timeout", l.Name), l.TimeoutRaw)
			if err != nil {
				errs = append(errs, err)
			}
			l.Timeout = d
		}
	default:
		errs = append(errs, invalid("loader %q has unknown type %q", l.Name, l.Type))
	}
	return errs
}

func (n *NotifierBlock) validate() []error {
	var errs []error

	switch n.Type {
	case NotifierLog, NotifierSocketIOHub:
	case NotifierSocketIOClient, NotifierWebSocket:
		if n.URL == "" {
			errs = append(errs, invalid("notifier %q of type %q requires \"url\"", n.Name, n.Type))
		}
	default:
		errs = append(errs, invalid("notifier %q has unknown type %q", n.Name, n.Type))
	}

	if n.Codec != "" {
		if _, err := notify.CodecByName(n.Codec); err != nil {
			errs = append(errs, invalid("notifier %q: %v", n.Name, err))
		}
	}
	return errs
}

func parseDuration(what, raw string) (time.Duration, error) {
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, invalid("%s: %v", what, err)
	}
	if d < 0 {
		return 0, invalid("%s must not be negative", what)
	}
	return d, nil
}
