// Package config parses and validates the command-line and optional INI
// configuration for both the netstore-server and netstore-client binaries.
package config

import (
	"flag"
	"fmt"
	"net"

	"github.com/netstore-go/netstore/internal/wireerr"
	"gopkg.in/ini.v1"
)

const (
	DefaultMaxSpace int64 = 52428800
	DefaultTimeout        = 5
	MinTimeout            = 1
	MaxTimeout            = 300
	MaxPort               = 65535
)

// Server holds validated server configuration.
type Server struct {
	MulticastAddr string
	CmdPort       int
	SharedFolder  string
	MaxSpace      int64
	Timeout       int
}

// ParseServer parses args (typically os.Args[1:]) into a validated Server
// config. An optional -c PATH supplies defaults from an INI file's
// [netstore] section; a flag given with a value other than its default
// overrides it.
func ParseServer(fs *flag.FlagSet, args []string) (Server, error) {
	var (
		mcast    = fs.String("g", "", "multicast group address (required)")
		port     = fs.Int("p", 0, "command port, 1..65535 (required)")
		folder   = fs.String("f", "", "shared folder path (required)")
		maxSpace = fs.Int64("b", DefaultMaxSpace, "max bytes to share")
		timeout  = fs.Int("t", DefaultTimeout, "per-operation timeout in seconds, 1..300")
		cfgPath  = fs.String("c", "", "optional INI config file overlaying these defaults")
	)
	if err := fs.Parse(args); err != nil {
		return Server{}, fmt.Errorf("%w: %v", wireerr.ErrConfig, err)
	}

	if *cfgPath != "" {
		if err := overlayServerDefaults(*cfgPath, mcast, port, folder, maxSpace, timeout); err != nil {
			return Server{}, err
		}
	}

	cfg := Server{
		MulticastAddr: *mcast,
		CmdPort:       *port,
		SharedFolder:  *folder,
		MaxSpace:      *maxSpace,
		Timeout:       *timeout,
	}
	return cfg, cfg.validate()
}

func (c Server) validate() error {
	if c.MulticastAddr == "" || net.ParseIP(c.MulticastAddr) == nil {
		return fmt.Errorf("%w: -g must be a valid multicast address", wireerr.ErrConfig)
	}
	if c.CmdPort < 1 || c.CmdPort > MaxPort {
		return fmt.Errorf("%w: -p must be in 1..%d", wireerr.ErrConfig, MaxPort)
	}
	if c.SharedFolder == "" {
		return fmt.Errorf("%w: -f is required", wireerr.ErrConfig)
	}
	if c.MaxSpace <= 0 {
		return fmt.Errorf("%w: -b must be > 0", wireerr.ErrConfig)
	}
	if c.Timeout < MinTimeout || c.Timeout > MaxTimeout {
		return fmt.Errorf("%w: -t must be in %d..%d", wireerr.ErrConfig, MinTimeout, MaxTimeout)
	}
	return nil
}

// overlayServerDefaults loads path's [netstore] section and fills in any
// flag that still carries its flag.FlagSet default (empty/zero for -g, -p
// and -f, the package default for -b and -t), before validation runs. A
// flag given on the command line with exactly its default value is
// indistinguishable from "not set", so a non-zero INI value replaces it.
func overlayServerDefaults(path string, mcast *string, port *int, folder *string, maxSpace *int64, timeout *int) error {
	cfg, err := ini.Load(path)
	if err != nil {
		return fmt.Errorf("%w: reading %s: %v", wireerr.ErrConfig, path, err)
	}
	sec := cfg.Section("netstore")
	if *mcast == "" {
		*mcast = sec.Key("group").String()
	}
	if *port == 0 {
		if v, err := sec.Key("port").Int(); err == nil {
			*port = v
		}
	}
	if *folder == "" {
		*folder = sec.Key("folder").String()
	}
	if *maxSpace == DefaultMaxSpace {
		if v, err := sec.Key("max_space").Int64(); err == nil && v != 0 {
			*maxSpace = v
		}
	}
	if *timeout == DefaultTimeout {
		if v, err := sec.Key("timeout").Int(); err == nil && v != 0 {
			*timeout = v
		}
	}
	return nil
}
