// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pdiddy/litscout/internal/store"
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Inspect saved search sessions",
	Long: `Store manages the SQLite result store written by search --save. Use
subcommands to list sessions, show one session's results, or run a
full-text search over all stored papers.`,
}

var storeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved search sessions, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		sessions, err := s.ListSearches(context.Background(), limit)
		if err != nil {
			return err
		}
		for _, sum := range sessions {
			fmt.Printf("%4d  %s  %3d results  %s\n",
				sum.ID, sum.CreatedAt.Format("2006-01-02 15:04"), sum.ResultCount, sum.Query)
		}
		return nil
	},
}

var storeShowCmd = &cobra.Command{
	Use:   "show [session-id]",
	Short: "Show one saved session with its results",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid session id %q", args[0])
		}

		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		saved, err := s.GetSearch(context.Background(), id)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(saved)
	},
}

var storeFindCmd = &cobra.Command{
	Use:   "find [query]",
	Short: "Full-text search over stored papers",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		papers, err := s.FindPapers(context.Background(), args[0], limit)
		if err != nil {
			return err
		}
		for i, p := range papers {
			fmt.Printf("%2d. %s\n    %s (%s)\n", i+1, p.Title, p.CanonicalURL, p.Source)
		}
		return nil
	},
}

func openStore() (*store.SQLiteStore, error) {
	cfg := loadConfig()
	return store.Open(cfg.Store)
}

func init() {
	storeListCmd.Flags().Int("limit", 20, "maximum sessions to list")
	storeFindCmd.Flags().Int("limit", 20, "maximum papers to return")

	storeCmd.AddCommand(storeListCmd)
	storeCmd.AddCommand(storeShowCmd)
	storeCmd.AddCommand(storeFindCmd)

	rootCmd.AddCommand(storeCmd)
}
