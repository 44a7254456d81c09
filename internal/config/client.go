package config

import (
	"flag"
	"fmt"
	"net"

	"github.com/netstore-go/netstore/internal/wireerr"
	"gopkg.in/ini.v1"
)

// Client holds validated client configuration.
type Client struct {
	MulticastAddr string
	CmdPort       int
	OutFolder     string
	Timeout       int
}

// ParseClient parses args into a validated Client config, with the same
// optional -c INI overlay as ParseServer.
func ParseClient(fs *flag.FlagSet, args []string) (Client, error) {
	var (
		mcast   = fs.String("g", "", "multicast group address (required)")
		port    = fs.Int("p", 0, "command port, 1..65535 (required)")
		out     = fs.String("o", "", "output folder for downloads (required)")
		timeout = fs.Int("t", DefaultTimeout, "per-operation timeout in seconds, 1..300")
		cfgPath = fs.String("c", "", "optional INI config file overlaying these defaults")
	)
	if err := fs.Parse(args); err != nil {
		return Client{}, fmt.Errorf("%w: %v", wireerr.ErrConfig, err)
	}

	if *cfgPath != "" {
		if err := overlayClientDefaults(*cfgPath, mcast, port, out, timeout); err != nil {
			return Client{}, err
		}
	}

	cfg := Client{
		MulticastAddr: *mcast,
		CmdPort:       *port,
		OutFolder:     *out,
		Timeout:       *timeout,
	}
	return cfg, cfg.validate()
}

func (c Client) validate() error {
	if c.MulticastAddr == "" || net.ParseIP(c.MulticastAddr) == nil {
		return fmt.Errorf("%w: -g must be a valid multicast address", wireerr.ErrConfig)
	}
	if c.CmdPort < 1 || c.CmdPort > MaxPort {
		return fmt.Errorf("%w: -p must be in 1..%d", wireerr.ErrConfig, MaxPort)
	}
	if c.OutFolder == "" {
		return fmt.Errorf("%w: -o is required", wireerr.ErrConfig)
	}
	if c.Timeout < MinTimeout || c.Timeout > MaxTimeout {
		return fmt.Errorf("%w: -t must be in %d..%d", wireerr.ErrConfig, MinTimeout, MaxTimeout)
	}
	return nil
}

func overlayClientDefaults(path string, mcast *string, port *int, out *string, timeout *int) error {
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
	if *out == "" {
		*out = sec.Key("out_folder").String()
	}
	if *timeout == DefaultTimeout {
		if v, err := sec.Key("timeout").Int(); err == nil && v != 0 {
			*timeout = v
		}
	}
	return nil
}
