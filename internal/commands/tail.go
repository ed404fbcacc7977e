package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/diogo/roomchat/internal/chat"
	"github.com/diogo/roomchat/internal/models"
	"github.com/diogo/roomchat/internal/render"
)

var tailOnceFlag bool

var tailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Print the room and follow new messages",
	Long: `Print the cached message list, then follow the live room and print
every new message as it arrives. Own messages are right-aligned.`,
	Args: cobra.NoArgs,
	RunE: runTail,
}

func init() {
	tailCmd.Flags().BoolVar(&tailOnceFlag, "once", false, "Exit after the first live snapshot")
}

func runTail(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	deps, err := loadDependencies(ctx, depOptions{backend: true})
	if err != nil {
		return err
	}
	defer deps.Close()

	ctrl := deps.Controller()
	out := cmd.OutOrStdout()
	p := newTailPrinter(out, ctrl.CurrentUser().UID, terminalWidth(out))

	// the subscription dials while the cached list is read and printed
	var (
		g    errgroup.Group
		feed *chat.Feed
	)
	g.Go(func() error {
		var err error
		feed, err = ctrl.Subscribe(ctx)
		return err
	})

	var state chat.State
	if state.ApplyCached(ctrl.LoadCached(ctx)) {
		p.print(state.Messages)
	}

	if err := g.Wait(); err != nil {
		return err
	}
	defer feed.Close()

	for {
		select {
		case <-ctx.Done():
			return nil
		case snap, ok := <-feed.Snapshots():
			if !ok {
				return nil
			}
			state.ApplySnapshot(snap)
			p.print(state.Messages)
			if tailOnceFlag {
				return nil
			}
		}
	}
}

// terminalWidth returns the width of out when it is a terminal
func terminalWidth(out io.Writer) int {
	if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 {
			return w
		}
	}
	return 80
}

// tailPrinter prints each message once, in list order
type tailPrinter struct {
	out     io.Writer
	uid     string
	width   int
	printed map[string]bool
	art     bool
}

func newTailPrinter(out io.Writer, uid string, width int) *tailPrinter {
	f, isFile := out.(*os.File)
	return &tailPrinter{
		out:     out,
		uid:     uid,
		width:   width,
		printed: make(map[string]bool),
		art:     isFile && term.IsTerminal(int(f.Fd())),
	}
}

var (
	tailMineStyle   = lipgloss.NewStyle().Foreground(colorSuccess).Bold(true)
	tailTheirsStyle = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
	tailTimeStyle   = lipgloss.NewStyle().Foreground(colorTextDim)
)

func (p *tailPrinter) print(msgs []models.Message) {
	for _, msg := range msgs {
		if msg.ID != "" {
			if p.printed[msg.ID] {
				continue
			}
			p.printed[msg.ID] = true
		}
		fmt.Fprintln(p.out, p.format(msg))
	}
}

func (p *tailPrinter) format(msg models.Message) string {
	user := msg.User
	if user == "" {
		user = "unknown"
	}

	mine := chat.PlacementFor(msg, p.uid) == chat.Mine
	label := tailTheirsStyle.Render(user)
	if mine {
		label = tailMineStyle.Render(user)
	}
	if !msg.CreatedAt.IsZero() {
		label = tailTimeStyle.Render(msg.CreatedAt.Local().Format("15:04")) + " " + label
	}

	body := msg.Text
	if msg.IsImage() {
		body = "[image] " + msg.Text
		if p.art {
			if art, err := render.ImageFromDataURI(msg.ImageURL, min(p.width/2, 40)); err == nil {
				body = art
			}
		}
	}

	block := label + "\n" + body
	if mine {
		lines := strings.Split(block, "\n")
		for i, line := range lines {
			lines[i] = lipgloss.PlaceHorizontal(p.width, lipgloss.Right, line)
		}
		block = strings.Join(lines, "\n")
	}
	return block
}
