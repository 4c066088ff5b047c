package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"

	boltcache "github.com/khoward/debtscan/internal/adapters/bbolt"
	fswatch "github.com/khoward/debtscan/internal/adapters/fsnotify"
	"github.com/khoward/debtscan/internal/config"
	"github.com/khoward/debtscan/internal/domain/lang"
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Watch a directory and invalidate cache entries as files change",
	Long: `Watches the directory tree for changes to source files and drops the
cache entry for each changed file, so the next scan re-reads only what
actually moved. Runs until interrupted.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log := cfg.Logger("debtscan")

	dir := projectRoot()
	if len(args) == 1 {
		dir = args[0]
	}

	cachePath := cfg.CachePath(dir)
	cache, err := boltcache.Open(cachePath, log)
	if err != nil {
		return err
	}
	defer cache.Close()

	registry := lang.NewRegistry()
	accept := func(path string) bool {
		return registry.Lookup(filepath.Ext(path)) != nil
	}

	watcher, err := fswatch.NewWatcher(accept)
	if err != nil {
		return err
	}
	err = watcher.Watch(dir, func(path string) {
		if err := cache.Invalidate(path); err != nil {
			log.Warn("invalidate failed", "path", path, "error", err)
			return
		}
		fmt.Printf("invalidated %s\n", path)
	})
	if err != nil {
		return err
	}
	defer watcher.Stop()

	fmt.Printf("watching %s (ctrl-c to stop)\n", dir)
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt)
	<-ch
	return nil
}
