package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	boltcache "github.com/khoward/debtscan/internal/adapters/bbolt"
	"github.com/khoward/debtscan/internal/config"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or reset the fingerprint cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache entry count and location",
	RunE: func(cmd *cobra.Command, args []string) error {
		cache, path, err := openCache()
		if err != nil {
			return err
		}
		defer cache.Close()
		n, err := cache.Len()
		if err != nil {
			return err
		}
		fmt.Printf("%s: %d cached files\n", path, n)
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Drop all cached fingerprints and findings",
	RunE: func(cmd *cobra.Command, args []string) error {
		cache, path, err := openCache()
		if err != nil {
			return err
		}
		defer cache.Close()
		if err := cache.Clear(); err != nil {
			return err
		}
		fmt.Printf("cleared %s\n", path)
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheStatsCmd, cacheClearCmd)
}

func openCache() (*boltcache.Cache, string, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, "", err
	}
	path := cfg.CachePath(projectRoot())
	if _, err := os.Stat(path); err != nil {
		return nil, "", fmt.Errorf("no cache at %s", path)
	}
	cache, err := boltcache.Open(path, cfg.Logger("debtscan"))
	if err != nil {
		return nil, "", err
	}
	return cache, path, nil
}
