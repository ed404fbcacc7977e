package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/diogo/roomchat/internal/render"
	"github.com/diogo/roomchat/internal/tui"
)

var offlineFlag bool

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Open the chat screen",
	Long: `Open the chat screen for the room.

The cached message list shows up right away and is replaced by the live
list once the subscription delivers it.

Keys:
  Enter    send the draft
  Ctrl+O   send an image from the gallery (/image)
  Ctrl+Y   copy the newest message
  Ctrl+L   log out (/logout)
  Esc      quit`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat(cmd, offlineFlag)
	},
}

func init() {
	chatCmd.Flags().BoolVar(&offlineFlag, "offline", false, "Use an in-memory room instead of NATS")
}

func runChat(cmd *cobra.Command, offline bool) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	deps, err := loadDependencies(ctx, depOptions{backend: true, offline: offline, logToFile: true})
	if err != nil {
		return err
	}
	defer deps.Close()

	if _, ok := deps.Session.CurrentUser(); !ok {
		fmt.Fprintln(cmd.ErrOrStderr(), "Not signed in: messages will be sent without a sender. Run 'roomchat login'.")
	}

	if deps.Config.TUITheme != "" && !render.SetTUITheme(deps.Config.TUITheme) {
		deps.Logger.Warn().Str("theme", deps.Config.TUITheme).Msg("unknown TUI theme, using default")
	}
	tui.UpdateTheme()

	outcome, err := activeTUI.RunChat(ctx, deps.Controller(), deps.RenderOptions())
	if err != nil {
		return err
	}
	if outcome.SignedOut {
		fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
	}
	return nil
}
