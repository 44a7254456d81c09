// Command netstore-server hosts one shared folder on a netstore group
// and answers discover/search/fetch/upload/remove requests from every
// client on the multicast segment (SPEC_FULL.md §4.3).
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"github.com/netstore-go/netstore/internal/config"
	"github.com/netstore-go/netstore/internal/netserver"
	"github.com/netstore-go/netstore/internal/store"
)

func main() {
	log.SetLevel(log.InfoLevel)

	cfg, err := config.ParseServer(flag.NewFlagSet("netstore-server", flag.ExitOnError), os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	initial, order, err := scanFolder(cfg.SharedFolder)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	st, ok := store.New(cfg.MaxSpace, initial, order)
	if !ok {
		fmt.Fprintf(os.Stderr, "shared folder %s already exceeds -b max space\n", cfg.SharedFolder)
		os.Exit(1)
	}

	srv := netserver.New(cfg, st, log.StandardLogger())
	if err := srv.Run(context.Background()); err != nil {
		if netserver.Interrupted(err) {
			os.Exit(130)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// scanFolder lists cfg.SharedFolder's regular files so the server starts
// up already hosting whatever is on disk, debiting their sizes from the
// free-space budget (SPEC_FULL.md §4.3).
func scanFolder(folder string) (map[string]int64, []string, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, nil, fmt.Errorf("reading shared folder %s: %w", folder, err)
	}
	sizes := make(map[string]int64, len(entries))
	var order []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		name := filepath.Base(e.Name())
		sizes[name] = info.Size()
		order = append(order, name)
	}
	return sizes, order, nil
}
