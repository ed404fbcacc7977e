package commands

import (
	"fmt"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/diogo/roomchat/internal/config"
	"github.com/diogo/roomchat/internal/render"
	"github.com/diogo/roomchat/internal/tui"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change settings",
	Long: `Show or change roomchat settings. Values are stored as JSON in the
config file; ROOMCHAT_* environment variables override them, for example
ROOMCHAT_NATS_URL.

Run without a subcommand to open the interactive settings menu.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _, err := configPaths()
		if err != nil {
			return err
		}
		cfg, err := config.LoadConfigFrom(path)
		if err != nil {
			return err
		}
		if cfg.TUITheme != "" {
			render.SetTUITheme(cfg.TUITheme)
		}
		tui.UpdateTheme()
		return activeTUI.RunSettings(cfg, path)
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _, err := configPaths()
		if err != nil {
			return err
		}
		cfg, err := config.LoadConfigFrom(path)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, "KEY\tVALUE")
		_, _ = fmt.Fprintln(w, "---\t-----")
		for _, key := range config.Keys() {
			value, _ := cfg.Get(key)
			if value == "" {
				value = "-"
			}
			_, _ = fmt.Fprintf(w, "%s\t%s\n", key, value)
		}
		return w.Flush()
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change one setting",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		switch key {
		case "tui_theme":
			if !slices.Contains(render.TUIThemeNames(), value) {
				return fmt.Errorf("unknown theme %q (available: %s)", value, strings.Join(render.TUIThemeNames(), ", "))
			}
		case "markdown.style":
			if !render.IsBuiltinStyle(value) && !strings.HasSuffix(value, ".json") {
				return fmt.Errorf("unknown style %q (available: %s, or a .json style file)", value, strings.Join(render.ThemeNames(), ", "))
			}
		}

		path, _, err := configPaths()
		if err != nil {
			return err
		}
		cfg, err := config.LoadConfigFrom(path)
		if err != nil {
			return err
		}
		if err := cfg.Set(key, value); err != nil {
			return err
		}
		if err := config.SaveConfigTo(path, cfg); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "✓ %s = %s\n", key, value)
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _, err := configPaths()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configPathCmd)
}
