// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/litscout/internal/cache"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and maintain the PDF cache",
	Long: `Cache manages the content-addressed artifact store. Use subcommands
to show statistics, list entries, evict stale artifacts, or delete one.`,
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := openCache()
		if err != nil {
			return err
		}
		s := m.Stats()
		fmt.Printf("entries:   %d\n", s.TotalEntries)
		fmt.Printf("cached:    %d\n", s.CachedCount)
		fmt.Printf("extracted: %d\n", s.ExtractedCount)
		fmt.Printf("size:      %.1f MiB\n", float64(s.TotalSizeBytes)/(1<<20))
		return nil
	},
}

var cacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cache entries, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := openCache()
		if err != nil {
			return err
		}
		for _, e := range m.Entries() {
			fmt.Printf("%s  %-10s  %8.1f KiB  %s\n",
				e.ContentKey, e.Status, float64(e.SizeBytes)/(1<<10), e.SourceURL)
		}
		return nil
	},
}

var cacheCleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Evict stale and oversized cache entries",
	Long: `Cleanup removes entries older than the configured age, then evicts
oldest entries until the cache fits the configured size limit.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		m, err := cache.Open(cfg.Cache.Dir, os.Stderr)
		if err != nil {
			return err
		}
		maxAge := time.Duration(cfg.Cache.MaxAgeDays) * 24 * time.Hour
		evicted, err := m.Cleanup(maxAge, cfg.Cache.MaxSizeBytes)
		if err != nil {
			return err
		}
		fmt.Printf("evicted %d entries\n", evicted)
		return nil
	},
}

var cacheDeleteCmd = &cobra.Command{
	Use:   "delete [content-key]",
	Short: "Delete one cache entry and its artifact",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := openCache()
		if err != nil {
			return err
		}
		if !m.Has(args[0]) {
			return fmt.Errorf("no cache entry with key %q", args[0])
		}
		return m.Delete(args[0])
	},
}

func openCache() (*cache.Manager, error) {
	cfg := loadConfig()
	return cache.Open(cfg.Cache.Dir, os.Stderr)
}

func init() {
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheListCmd)
	cacheCmd.AddCommand(cacheCleanupCmd)
	cacheCmd.AddCommand(cacheDeleteCmd)

	rootCmd.AddCommand(cacheCmd)
}
