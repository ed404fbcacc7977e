package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/diogo/roomchat/internal/media"
)

var sendImageFlag string

var sendCmd = &cobra.Command{
	Use:   "send [text]",
	Short: "Send one message to the room",
	Long: `Send a single text message, or an image with --image.

Images are cropped to 4:3, compressed and sent inline. The first image send
asks for gallery access and remembers the answer.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSend,
}

func init() {
	sendCmd.Flags().StringVarP(&sendImageFlag, "image", "i", "", "Path to an image to send")
}

func runSend(cmd *cobra.Command, args []string) error {
	if sendImageFlag == "" && len(args) == 0 {
		return fmt.Errorf("nothing to send: pass a message or --image")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	deps, err := loadDependencies(ctx, depOptions{backend: true})
	if err != nil {
		return err
	}
	defer deps.Close()

	ctrl := deps.Controller()

	if sendImageFlag != "" {
		sent, err := ctrl.SendImageFile(ctx, sendImageFlag, stdinAsker(cmd.InOrStdin(), cmd.ErrOrStderr()))
		if err != nil {
			return err
		}
		if sent {
			fmt.Fprintln(cmd.OutOrStdout(), "✓ Sent")
		}
		return nil
	}

	if strings.TrimSpace(args[0]) == "" {
		return fmt.Errorf("message is empty")
	}

	// the first send also dials the room
	spin := newSpinner(cmd.ErrOrStderr(), "Sending")
	spin.start()
	if _, err := ctrl.SendMessage(ctx, args[0]); err != nil {
		spin.stopWithError()
		return err
	}
	spin.stopWithSuccess("Sent")
	return nil
}

// stdinAsker prompts for gallery access on the terminal
func stdinAsker(in io.Reader, out io.Writer) media.Asker {
	return func(ctx context.Context) (bool, error) {
		fmt.Fprint(out, "Allow roomchat to read your pictures? [y/N] ")
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return false, err
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true, nil
		default:
			return false, nil
		}
	}
}
