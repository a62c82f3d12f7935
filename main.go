package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"askdesk-cli/internal/api"
	"askdesk-cli/internal/chat"
	"askdesk-cli/internal/config"
	"askdesk-cli/internal/display"
	"askdesk-cli/internal/tui"
)

const version = "0.1.0"

var activeProfile string

func main() {
	root := &cobra.Command{
		Use:   "askdesk",
		Short: "AskDesk, the chat assistant for your workspace",
		Long:  "askdesk is a terminal client for the AskDesk assistant.\nRun it without arguments to start an interactive conversation.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return tui.Run(version, activeProfile)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&activeProfile, "profile", "", "configuration profile to use")

	root.AddCommand(
		newLoginCmd(),
		newAskCmd(),
		newSessionsCmd(),
		newStatusCmd(),
		newConfigCmd(),
		newVersionCmd(),
	)

	if err := root.Execute(); err != nil {
		display.Error(err.Error())
		os.Exit(1)
	}
}

func loadClient() (*api.Client, *config.Config, error) {
	cfg, err := config.Load(activeProfile)
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	return api.NewClient(cfg), cfg, nil
}

// ─── login ──────────────────────────────────────────────────────────────────

func newLoginCmd() *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login <server-url>",
		Short: "Authenticate against an AskDesk server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			server := strings.TrimRight(args[0], "/")

			reader := bufio.NewReader(os.Stdin)
			if username == "" {
				fmt.Print("Username/Email: ")
				line, _ := reader.ReadString('\n')
				username = strings.TrimSpace(line)
			}
			if password == "" {
				fmt.Print("Password: ")
				line, _ := reader.ReadString('\n')
				password = strings.TrimSpace(line)
			}
			if username == "" || password == "" {
				return fmt.Errorf("username and password are required")
			}

			client := api.NewClientWithServer(server)
			loginResp, err := client.Login(username, password)
			if err != nil {
				return fmt.Errorf("authentication failed: %w", err)
			}
			display.Success("Authenticated successfully")

			cfg, err := config.Load(activeProfile)
			if err != nil {
				return err
			}
			cfg.Server = server
			cfg.Username = username
			cfg.Token = loginResp.Token
			if err := cfg.Save(); err != nil {
				return err
			}

			display.Info("Server:", server)
			display.Info("User:", username)
			fmt.Println()
			fmt.Printf("  %sNext:%s run %saskdesk%s to start chatting.\n\n",
				display.Dim, display.Reset, display.Cyan, display.Reset)
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "username or email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password")
	return cmd
}

// ─── ask ────────────────────────────────────────────────────────────────────

// askSink prints a one-shot answer to stdout and signals completion.
type askSink struct {
	chat.NopSink
	done     chan struct{}
	rendered string
	failed   bool
	errMsg   string
}

func (s *askSink) AssistantUpdated(_ *chat.Message, rendered string) {
	s.rendered = rendered
}

func (s *askSink) ErrorSurfaced(_ chat.ErrorKind, message string) {
	s.failed = true
	s.errMsg = message
}

func (s *askSink) StatusChanged(status chat.TurnStatus) {
	if status == chat.StatusIdle || status == chat.StatusErrored {
		select {
		case s.done <- struct{}{}:
		default:
		}
	}
}

func newAskCmd() *cobra.Command {
	var sessionID string

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a single question and print the answer",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, cfg, err := loadClient()
			if err != nil {
				return err
			}
			question := strings.Join(args, " ")

			sink := &askSink{done: make(chan struct{}, 1)}
			eng := chat.NewEngine(client, sink, chat.Options{
				ScreenContext: cfg.ScreenContext,
				Renderer:      tui.RenderLive,
			})
			defer eng.Close()
			if sessionID != "" {
				eng.Store().SetSessionID(sessionID)
			}

			if err := eng.Send(question); err != nil {
				return err
			}
			<-sink.done

			if sink.failed {
				return fmt.Errorf("%s", sink.errMsg)
			}
			fmt.Println(sink.rendered)
			if id := eng.Store().SessionID(); id != "" {
				fmt.Printf("%sSession: %s  (continue with: askdesk ask --session %s \"...\")%s\n",
					display.Gray, id, id, display.Reset)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&sessionID, "session", "", "continue an existing session")
	return cmd
}

// ─── sessions ───────────────────────────────────────────────────────────────

func newSessionsCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List recent conversation sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := loadClient()
			if err != nil {
				return err
			}
			sessions, err := client.ListSessions(limit)
			if err != nil {
				return err
			}
			display.Header("Sessions")
			display.SessionTable(sessions)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of sessions to list")
	return cmd
}

// ─── status ─────────────────────────────────────────────────────────────────

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show assistant availability and daily usage",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := loadClient()
			if err != nil {
				return err
			}
			st, err := client.ChatStatus()
			if err != nil {
				return err
			}

			display.Header("AskDesk Status")
			if st.FullName != "" {
				display.Info("Account:", st.FullName)
			} else if st.User != "" {
				display.Info("Account:", st.User)
			}
			if st.Enabled {
				display.Info("Assistant:", display.Green+"enabled"+display.Reset)
			} else {
				display.Info("Assistant:", display.Red+"disabled"+display.Reset)
			}
			if st.DailyLimit > 0 {
				display.Info("Usage:", fmt.Sprintf("%d of %d questions today (%d left)",
					st.DailyUsed, st.DailyLimit, st.DailyRemaining))
			}
			if st.ActiveSessionID != "" {
				display.Info("Active session:", st.ActiveSessionID)
			}
			fmt.Println()
			return nil
		},
	}
}

// ─── config ─────────────────────────────────────────────────────────────────

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show the active configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(activeProfile)
			if err != nil {
				return err
			}

			display.Header("AskDesk Configuration")
			display.Info("Profile:", config.ProfileName(activeProfile))
			display.Info("Server:", orUnset(cfg.Server))
			display.Info("User:", orUnset(cfg.Username))
			if cfg.Token != "" {
				display.Info("Token:", maskToken(cfg.Token))
			} else {
				display.Info("Token:", "(not set)")
			}

			profiles, err := config.ListProfiles()
			if err == nil && len(profiles) > 0 {
				display.Info("Profiles:", strings.Join(profiles, ", "))
			}
			fmt.Println()
			return nil
		},
	}
}

func orUnset(v string) string {
	if v == "" {
		return "(not set)"
	}
	return v
}

func maskToken(token string) string {
	if len(token) <= 8 {
		return "********"
	}
	return token[:4] + "..." + token[len(token)-4:]
}

// ─── version ────────────────────────────────────────────────────────────────

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the client version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("askdesk %s\n", version)
		},
	}
}
