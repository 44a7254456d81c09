// Command netstore-client is the interactive netstore client: it joins a
// group's multicast segment and drives discover/search/fetch/upload/
// remove commands typed on stdin (SPEC_FULL.md §4.4).
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/netstore-go/netstore/internal/config"
	"github.com/netstore-go/netstore/internal/netclient"
)

func main() {
	log.SetLevel(log.WarnLevel)

	cfg, err := config.ParseClient(flag.NewFlagSet("netstore-client", flag.ExitOnError), os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := os.MkdirAll(cfg.OutFolder, 0o755); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	cl := netclient.New(cfg, log.StandardLogger(), os.Stdout, os.Stderr)
	if err := cl.Run(context.Background()); err != nil {
		if netclient.Interrupted(err) {
			os.Exit(130)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
