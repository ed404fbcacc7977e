package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	apierrors "github.com/diogo/roomchat/internal/errors"
	"github.com/diogo/roomchat/internal/history"
	"github.com/diogo/roomchat/internal/models"
)

var (
	exportFormatFlag string
	exportOutputFlag string
	exportImagesFlag bool
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect the local message cache",
}

var cacheShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the cached message list",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := commandContext(cmd)
		deps, err := loadDependencies(ctx, depOptions{})
		if err != nil {
			return err
		}
		defer deps.Close()

		msgs, err := deps.Messages.Load(ctx)
		if errors.Is(err, apierrors.ErrCacheMiss) {
			fmt.Fprintln(cmd.OutOrStdout(), "No cached messages")
			return nil
		}
		if err != nil {
			return err
		}

		user, _ := deps.Session.CurrentUser()
		p := newTailPrinter(cmd.OutOrStdout(), user.UID, terminalWidth(cmd.OutOrStdout()))
		p.print(msgs)
		fmt.Fprintf(cmd.OutOrStdout(), "\n%d cached messages (%s driver)\n", len(msgs), deps.Config.Cache.Driver)
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the cached message list",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := commandContext(cmd)
		deps, err := loadDependencies(ctx, depOptions{})
		if err != nil {
			return err
		}
		defer deps.Close()

		if err := deps.Messages.Clear(ctx); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Cache cleared")
		return nil
	},
}

var cacheExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the cached messages as markdown or JSON",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := history.ParseFormat(exportFormatFlag)
		if err != nil {
			return err
		}

		msgs, err := loadCachedMessages(commandContext(cmd))
		if err != nil {
			return err
		}

		opts := history.DefaultExportOptions()
		opts.Format = format
		opts.IncludeImages = exportImagesFlag
		data, err := history.Export(msgs, opts)
		if err != nil {
			return err
		}

		if exportOutputFlag == "" {
			_, err = cmd.OutOrStdout().Write(data)
			return err
		}
		if err := os.WriteFile(exportOutputFlag, data, 0o600); err != nil {
			return fmt.Errorf("failed to write export: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Exported %d messages to %s\n", len(msgs), exportOutputFlag)
		return nil
	},
}

var cacheSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the cached messages by sender or text",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		msgs, err := loadCachedMessages(commandContext(cmd))
		if err != nil {
			return err
		}

		results := history.Search(msgs, args[0])
		if len(results) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "No messages match %q\n", args[0])
			return nil
		}

		now := time.Now()
		for _, r := range results {
			when := "-"
			if !r.Message.CreatedAt.IsZero() {
				when = history.FormatRelativeTime(r.Message.CreatedAt, now)
			}
			user := r.Message.User
			if user == "" {
				user = "unknown"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%-12s %s: %s\n", when, user, r.MatchSnippet)
		}
		return nil
	},
}

// loadCachedMessages reads the cache; a miss is an empty list
func loadCachedMessages(ctx context.Context) ([]models.Message, error) {
	deps, err := loadDependencies(ctx, depOptions{})
	if err != nil {
		return nil, err
	}
	defer deps.Close()

	msgs, err := deps.Messages.Load(ctx)
	if errors.Is(err, apierrors.ErrCacheMiss) {
		return []models.Message{}, nil
	}
	return msgs, err
}

func init() {
	cacheExportCmd.Flags().StringVarP(&exportFormatFlag, "format", "f", "markdown", "Export format: markdown or json")
	cacheExportCmd.Flags().StringVarP(&exportOutputFlag, "output", "o", "", "Write to a file instead of stdout")
	cacheExportCmd.Flags().BoolVar(&exportImagesFlag, "images", false, "Include inline image data")

	cacheCmd.AddCommand(cacheShowCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheExportCmd)
	cacheCmd.AddCommand(cacheSearchCmd)
}
