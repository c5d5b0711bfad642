package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/dekarrin/rosed"
	"github.com/nihei9/lr1gen/cache"
	"github.com/nihei9/lr1gen/config"
	"github.com/spf13/cobra"
)

const defaultCachePath = ".lr1gen/cache.db"

var cacheFlags = struct {
	path    *string
	project *string
}{}

func init() {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage cached parsing tables",
	}
	cacheFlags.path = cmd.PersistentFlags().String("path", "", fmt.Sprintf("cache database path (default the project's one, or %v)", defaultCachePath))
	cacheFlags.project = cmd.PersistentFlags().StringP("project", "p", "", "project file path")

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List cached parsing tables",
		Args:  cobra.NoArgs,
		RunE:  runCacheList,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove every cached parsing table",
		Args:  cobra.NoArgs,
		RunE:  runCacheClear,
	})
	rootCmd.AddCommand(cmd)
}

func openCache() (*cache.Store, error) {
	path := *cacheFlags.path
	if path == "" && *cacheFlags.project != "" {
		p, err := config.Load(*cacheFlags.project)
		if err != nil {
			return nil, err
		}
		path = p.CachePath()
	}
	if path == "" {
		path = defaultCachePath
	}
	return cache.Open(path)
}

func runCacheList(cmd *cobra.Command, args []string) error {
	st, err := openCache()
	if err != nil {
		return err
	}
	defer st.Close()

	entries, err := st.List(context.Background())
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(os.Stdout, "No table is cached.")
		return nil
	}

	data := [][]string{
		{"Name", "Key", "Created"},
	}
	for _, e := range entries {
		data = append(data, []string{e.Name, e.Key, e.Created.Format(time.RFC3339)})
	}
	table := rosed.Edit("").
		InsertTableOpts(0, data, 80, rosed.Options{
			TableHeaders:             true,
			TableBorders:             true,
			NoTrailingLineSeparators: true,
		}).
		String()
	fmt.Fprintln(os.Stdout, table)
	return nil
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	st, err := openCache()
	if err != nil {
		return err
	}
	defer st.Close()

	n, err := st.Clear(context.Background())
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "%v tables removed\n", n)
	return nil
}
