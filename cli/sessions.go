package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"mic/config"
	"mic/model"
	"mic/storage"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Manage saved chat sessions",
}

func openSessions() (*storage.SessionStorage, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return storage.NewSessionStorage(cfg.DataDir())
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List sessions, most recently used first",
	RunE: func(cmd *cobra.Command, args []string) error {
		sessions, err := openSessions()
		if err != nil {
			return err
		}
		list, err := sessions.List()
		if err != nil {
			return err
		}
		current, _ := sessions.LoadCurrentSessionID()

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tMESSAGES\tTASK\tUPDATED")
		for _, s := range list {
			id := s.ID
			if id == current {
				id += " *"
			}
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", id, s.Name, s.MessageCount, valueOr(s.Task, "-"), s.UpdatedAt.Format("2006-01-02 15:04"))
		}
		return w.Flush()
	},
}

// sessionView is the YAML shape printed by "sessions show".
type sessionView struct {
	storage.SessionMetadata `yaml:",inline"`
	Context                 map[string]any `yaml:"context,omitempty"`
	ActiveTask              *taskView      `yaml:"active_task,omitempty"`
	Messages                []messageView  `yaml:"messages"`
}

type taskView struct {
	Name    string         `yaml:"name"`
	Filled  map[string]any `yaml:"filled"`
	Missing string         `yaml:"next_missing,omitempty"`
}

type messageView struct {
	Role    string `yaml:"role"`
	Content string `yaml:"content"`
}

func newSessionView(s *storage.Session) sessionView {
	view := sessionView{
		SessionMetadata: s.Metadata(),
		Context:         s.Conversation.Context,
	}
	if t := s.Conversation.Task; t != nil {
		missing, _ := t.NextMissingSlot()
		view.ActiveTask = &taskView{Name: t.Name, Filled: t.Slots(), Missing: missing}
	}
	for _, m := range s.Conversation.History {
		view.Messages = append(view.Messages, messageView{Role: m.Role, Content: m.Content})
	}
	return view
}

var sessionsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a session as YAML",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sessions, err := openSessions()
		if err != nil {
			return err
		}
		session, err := sessions.Load(args[0])
		if err != nil {
			return err
		}

		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		if err := enc.Encode(newSessionView(session)); err != nil {
			return fmt.Errorf("failed to encode session: %w", err)
		}
		return enc.Close()
	},
}

var sessionsDeleteCmd = &cobra.Command{
	Use:   "delete <id>...",
	Short: "Delete sessions",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sessions, err := openSessions()
		if err != nil {
			return err
		}
		for _, id := range args {
			if err := sessions.Delete(id); err != nil {
				return err
			}
			config.DebugLog.Debugf("[CLI] deleted session %s", id)
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", id)
		}
		return nil
	},
}

var sessionsRenameCmd = &cobra.Command{
	Use:   "rename <id> <name>",
	Short: "Rename a session",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		sessions, err := openSessions()
		if err != nil {
			return err
		}
		return sessions.Rename(args[0], strings.Join(args[1:], " "))
	},
}

var sessionsExportPath string

var sessionsExportCmd = &cobra.Command{
	Use:   "export <id>",
	Short: "Export a session as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sessions, err := openSessions()
		if err != nil {
			return err
		}
		path := sessionsExportPath
		if path == "" {
			session, err := sessions.Load(args[0])
			if err != nil {
				return err
			}
			path = storage.GenerateExportPath(session.Name, "json")
		}
		if err := sessions.ExportToJSON(args[0], path); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "exported to %s\n", path)
		return nil
	},
}

var sessionsSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search messages across all sessions",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sessions, err := openSessions()
		if err != nil {
			return err
		}
		matches, err := storage.NewSearchIndex(sessions).SearchAllSessions(strings.Join(args, " "))
		if err != nil {
			return err
		}
		if len(matches) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "no matches")
			return nil
		}
		for _, m := range matches {
			label := userLabel
			if m.Role == model.RoleAssistant {
				label = assistantLabel
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s #%d %s\n  %s\n",
				dimStyle.Render(m.SessionID[:8]), m.SessionName, m.MessageIndex, label.Render(m.Role), m.Preview)
		}
		return nil
	},
}

func init() {
	sessionsExportCmd.Flags().StringVarP(&sessionsExportPath, "output", "o", "", "destination file (default ~/Downloads/mic-session-<name>-<time>.json)")
	sessionsCmd.AddCommand(sessionsListCmd, sessionsShowCmd, sessionsDeleteCmd, sessionsRenameCmd, sessionsExportCmd, sessionsSearchCmd)
	rootCmd.AddCommand(sessionsCmd)
}
