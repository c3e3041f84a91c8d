package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"strings"

	"github.com/spf13/cobra"

	"mic/config"
	"mic/conversation"
	"mic/model"
	"mic/storage"
)

var (
	chatSessionID string
	chatNew       bool
	chatModel     string
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session",
	Long: `Start a line-oriented chat. Each line is routed by its keyword phrase
("web search:", "convert unit:", "schedule meeting:", ...); anything else goes
to the planner. The session is saved after every turn.

Commands inside the chat:
  /model <id>   switch the active model
  /task         show the active task
  /cancel       abandon the active task
  /clear        clear the conversation context
  /quit         leave`,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVar(&chatSessionID, "session", "", "resume the session with this id")
	chatCmd.Flags().BoolVar(&chatNew, "new", false, "start a new session instead of resuming the last one")
	chatCmd.Flags().StringVar(&chatModel, "model", "", "model to use for this session")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	a, err := newApp(ctx, cfg, appOptions{startMCP: true})
	if err != nil {
		return err
	}
	defer a.Close(context.Background())

	session, conv, err := openSession(ctx, a, cfg)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, dimStyle.Render(fmt.Sprintf("session %s (%s), model %s. /quit to leave.",
		session.ID, session.Name, valueOr(conv.ActiveModel(), cfg.DefaultModel))))

	return chatLoop(ctx, a, session, conv, cmd.InOrStdin(), out)
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

// openSession resumes the requested or last session, or starts a new one.
func openSession(ctx context.Context, a *app, cfg *config.Config) (*storage.Session, *conversation.Manager, error) {
	conv := conversation.NewManager(a.models)
	session := &storage.Session{}

	id := chatSessionID
	if id == "" && !chatNew {
		id, _ = a.sessions.LoadCurrentSessionID()
	}
	if id != "" {
		loaded, err := a.sessions.Load(id)
		switch {
		case err == nil:
			session = loaded
			conv.Restore(session.Conversation)
		case chatSessionID != "":
			return nil, nil, err
		default:
			config.DebugLog.Debugf("[CLI] last session %s not resumable: %v", id, err)
		}
	}

	modelID := chatModel
	if modelID == "" && conv.ActiveModel() == "" && a.models.Supports(cfg.DefaultModel) {
		modelID = cfg.DefaultModel
	}
	if modelID != "" {
		if err := switchModel(ctx, a, conv, modelID); err != nil {
			if chatModel != "" {
				return nil, nil, err
			}
			config.DebugLog.Warnf("[CLI] default model unavailable: %v", err)
		}
	} else if m := conv.ActiveModel(); m != "" {
		if err := a.useModel(m); err != nil {
			config.DebugLog.Warnf("[CLI] restoring model %s: %v", m, err)
		}
	}

	if err := saveSession(a, session, conv); err != nil {
		return nil, nil, err
	}
	return session, conv, nil
}

func switchModel(ctx context.Context, a *app, conv *conversation.Manager, id string) error {
	if err := conv.SetActiveModel(ctx, id); err != nil {
		return err
	}
	return a.useModel(id)
}

func saveSession(a *app, session *storage.Session, conv *conversation.Manager) error {
	session.Conversation = conv.Snapshot()
	if err := a.sessions.Save(session); err != nil {
		return err
	}
	return a.sessions.SaveCurrentSessionID(session.ID)
}

func chatLoop(ctx context.Context, a *app, session *storage.Session, conv *conversation.Manager, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	width := terminalWidth()

	for {
		fmt.Fprint(out, userLabel.Render("you> "))
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			quit, err := runSlashCommand(ctx, a, conv, line, out)
			if err != nil {
				fmt.Fprintln(out, errorStyle.Render(err.Error()))
			}
			if quit {
				return nil
			}
			if err := saveSession(a, session, conv); err != nil {
				fmt.Fprintln(out, errorStyle.Render(err.Error()))
			}
			continue
		}

		turnCtx, cancel := context.WithCancel(ctx)
		printTurn(out, a.assistant.Respond(turnCtx, conv, line), width)
		cancel()

		if ctx.Err() != nil {
			return nil
		}
		if err := saveSession(a, session, conv); err != nil {
			fmt.Fprintln(out, errorStyle.Render(err.Error()))
		}
	}
}

func printTurn(out io.Writer, events iter.Seq[model.Event], width int) {
	var text strings.Builder
	flush := func() {
		if rendered := renderMarkdown(text.String(), width); rendered != "" {
			fmt.Fprintln(out, assistantLabel.Render("mic>"))
			fmt.Fprintln(out, rendered)
		}
		text.Reset()
	}

	for e := range events {
		switch e.Type {
		case model.EventToken:
			text.WriteString(e.Content)
		case model.EventToolResult:
			flush()
			fmt.Fprintln(out, toolLabel.Render("["+e.Tool+"]"))
			fmt.Fprintln(out, renderMarkdown(e.Content, width))
		case model.EventError:
			flush()
			fmt.Fprintln(out, errorStyle.Render(e.Content))
		}
	}
	flush()
}

var errUnknownCommand = errors.New("unknown command; try /model, /task, /cancel, /clear or /quit")

func runSlashCommand(ctx context.Context, a *app, conv *conversation.Manager, line string, out io.Writer) (bool, error) {
	fields := strings.Fields(line)
	switch fields[0] {
	case "/quit", "/exit":
		return true, nil
	case "/model":
		if len(fields) < 2 {
			fmt.Fprintf(out, "active model: %s\n", valueOr(conv.ActiveModel(), "(none)"))
			return false, nil
		}
		if err := switchModel(ctx, a, conv, fields[1]); err != nil {
			return false, err
		}
		fmt.Fprintf(out, "switched to %s\n", fields[1])
	case "/task":
		task := conv.CurrentTask()
		if task == nil {
			fmt.Fprintln(out, "no active task")
			return false, nil
		}
		missing, _ := task.NextMissingSlot()
		fmt.Fprintf(out, "%s (%s) filled=%v next=%s\n", task.Name, conv.State(), task.Slots(), valueOr(missing, "-"))
	case "/cancel":
		conv.EndTask()
		fmt.Fprintln(out, "task cancelled")
	case "/clear":
		conv.ClearContext()
		fmt.Fprintln(out, "context cleared")
	default:
		return false, errUnknownCommand
	}
	return false, nil
}
