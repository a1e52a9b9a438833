package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/anchorlayout/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the layout and artifact cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())
	cmd.AddCommand(c.cacheInfoCommand())

	return cmd
}

// openCache opens the file cache without creating its directory.
// It returns nil when nothing has been cached yet.
func openCache() (*cache.FileCache, error) {
	dir, err := cache.DefaultDir()
	if err != nil {
		return nil, fmt.Errorf("get cache dir: %w", err)
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, nil
	}
	return cache.NewFileCache(dir)
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached layouts and artifacts",
		RunE: func(cmd *cobra.Command, args []string) error {
			fc, err := openCache()
			if err != nil {
				return err
			}
			if fc == nil {
				c.printInfo("Cache is empty")
				return nil
			}
			defer fc.Close()

			count, err := fc.Clear()
			if err != nil {
				return err
			}
			c.printSuccess("Cleared %d cached entries", count)
			c.printDetail("Directory: %s", fc.Dir())
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := cache.DefaultDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			fmt.Fprintln(c.out, dir)
			return nil
		},
	}
}

// cacheInfoCommand creates the "cache info" subcommand.
func (c *CLI) cacheInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show how much the cache holds",
		RunE: func(cmd *cobra.Command, args []string) error {
			fc, err := openCache()
			if err != nil {
				return err
			}
			if fc == nil {
				c.printInfo("Cache is empty")
				return nil
			}
			defer fc.Close()

			entries, size, err := fc.Usage()
			if err != nil {
				return err
			}
			c.printKeyValue("Directory", fc.Dir())
			c.printKeyValue("Entries", fmt.Sprint(entries))
			c.printKeyValue("Size", formatBytes(size))
			return nil
		},
	}
}

// formatBytes renders n with a binary unit suffix.
func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
