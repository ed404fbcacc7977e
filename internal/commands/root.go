// Package commands provides CLI commands for roomchat.
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/diogo/roomchat/internal/tui"
)

var (
	// Global flags
	configFlag   string
	logLevelFlag string

	// Version info (set at build time)
	Version   = "0.1.0"
	BuildTime = "unknown"
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "roomchat",
	Short: "Terminal client for a shared chat room",
	Long: `roomchat is a terminal chat client for one shared room. Messages live
on a NATS JetStream stream; the latest list is cached locally so the room
shows up instantly while the live subscription catches up.

Examples:
  roomchat login --email me@example.com   Create a local session
  roomchat                                Open the chat screen
  roomchat send "hello"                   Send one message
  roomchat send --image ~/Pictures/a.png  Send one image
  roomchat tail                           Follow the room in the terminal
  roomchat config set nats.url nats://chat.example:4222`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if v, _ := cmd.Flags().GetBool("version"); v {
			fmt.Fprintf(cmd.OutOrStdout(), "roomchat %s (built %s)\n", Version, BuildTime)
			return nil
		}
		return runChat(cmd, false)
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		tui.PrintError(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "Path to the config file (default ~/.roomchat/config.json)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level: debug, info, warn, error, off")
	rootCmd.Flags().BoolP("version", "v", false, "Show version and exit")

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(tailCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(configCmd)
}
