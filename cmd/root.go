package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/huh"
	"github.com/go-logr/logr"
	mtp "github.com/modeltoolsprotocol/go-sdk"
	"github.com/rogersnm/taskmanager/internal/board"
	"github.com/rogersnm/taskmanager/internal/client"
	"github.com/rogersnm/taskmanager/internal/config"
	"github.com/rogersnm/taskmanager/internal/logging"
	"github.com/rogersnm/taskmanager/internal/store"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	dataDir string
	st      store.Store
	cfg     *config.Config
	logger  = logr.Discard()

	flagAPIURL string
	flagLocal  bool
	flagDebug  bool
)

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".taskmanager")
	}
	return filepath.Join(home, ".taskmanager")
}

var rootCmd = &cobra.Command{
	Use:     "taskmanager",
	Short:   "Track tasks through pending, in-progress and completed",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := os.MkdirAll(dataDir, 0755); err != nil {
			return fmt.Errorf("creating data directory: %w", err)
		}

		var err error
		cfg, err = config.Load(dataDir)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if flagLocal {
			cfg.Mode = config.ModeLocal
		}
		if cmd.Flags().Changed("api-url") {
			cfg.APIURL = flagAPIURL
		}
		if flagDebug {
			cfg.Debug = true
		}
		logger = logging.New(os.Stderr, "taskmanager", cfg.Debug)

		// Config commands never touch a store.
		if cmd.Name() == "config" || (cmd.Parent() != nil && cmd.Parent().Name() == "config") {
			return nil
		}

		// The API service always owns a local backend.
		if cmd.Name() == "serve" || cfg.Mode == config.ModeLocal {
			st, err = store.Open(cmd.Context(), cfg.Store, logger.WithName("store"))
			if err != nil {
				return fmt.Errorf("opening store: %w", err)
			}
			return nil
		}
		st = client.New(cfg.APIURL)
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if st == nil {
			return nil
		}
		err := st.Close()
		st = nil
		return err
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", defaultDataDir(), "data directory path")
	rootCmd.PersistentFlags().StringVar(&flagAPIURL, "api-url", config.DefaultAPIURL, "task API base URL (remote mode)")
	rootCmd.PersistentFlags().BoolVar(&flagLocal, "local", false, "use the local store instead of the API")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "enable debug logging")

	mtpOpts := &mtp.DescribeOptions{
		Commands: map[string]*mtp.CommandAnnotation{
			"serve": {
				Examples: []mtp.Example{
					{Description: "Run the API on the default port", Command: "taskmanager serve"},
					{Description: "Run the API backed by SQLite", Command: "TASKMANAGER_STORE_DRIVER=sqlite taskmanager serve --addr :8080"},
				},
			},
			"list": {
				Stdout: &mtp.IODescriptor{
					ContentType: "text/plain",
					Description: "Table of tasks with ID, title, status and last update, newest first",
				},
				Examples: []mtp.Example{
					{Description: "List pending tasks mentioning milk", Command: "taskmanager list --search milk --status pending"},
				},
			},
			"add": {
				Stdin: &mtp.IODescriptor{
					ContentType: "text/markdown",
					Description: "Markdown description for the task",
				},
				Examples: []mtp.Example{
					{Description: "Add a task", Command: "taskmanager add \"Buy milk\""},
					{Description: "Add a task with a piped description", Command: "echo 'Semi-skimmed' | taskmanager add \"Buy milk\""},
				},
			},
			"show": {
				Stdout: &mtp.IODescriptor{
					ContentType: "application/json",
					Description: "The task as JSON, or a styled view with --pretty",
				},
			},
			"edit": {
				Examples: []mtp.Example{
					{Description: "Set a status without prompting", Command: "taskmanager edit <id> --status in-progress"},
				},
			},
			"start": {
				Examples: []mtp.Example{
					{Description: "Start a task", Command: "taskmanager start <id>"},
				},
			},
			"complete": {
				Examples: []mtp.Example{
					{Description: "Complete a task", Command: "taskmanager complete <id>"},
				},
			},
			"delete": {
				Examples: []mtp.Example{
					{Description: "Delete a task (interactive confirm)", Command: "taskmanager delete <id>"},
					{Description: "Delete a task (skip confirm)", Command: "taskmanager delete <id> --force"},
				},
			},
			"export": {
				Stdout: &mtp.IODescriptor{
					ContentType: "application/octet-stream",
					Description: "The filtered task list as JSON, CSV or PDF when --out is not given",
				},
				Examples: []mtp.Example{
					{Description: "Export completed tasks to PDF", Command: "taskmanager export --format pdf --status completed --out done.pdf"},
				},
			},
		},
	}

	mtp.WithDescribe(rootCmd, mtpOpts)
}

func Execute() error {
	err := rootCmd.Execute()
	// PersistentPostRunE is skipped when a command fails.
	if st != nil {
		_ = st.Close()
		st = nil
	}
	return err
}

// newBoard returns a board over the active store that confirms deletions
// interactively.
func newBoard() *board.Board {
	b := board.New(st, logger.WithName("board"))
	b.Confirm = confirmPrompt
	return b
}

func confirmPrompt(msg string) (bool, error) {
	var ok bool
	if err := huh.NewConfirm().Title(msg).Value(&ok).Run(); err != nil {
		return false, err
	}
	return ok, nil
}

func readStdin() string {
	info, err := os.Stdin.Stat()
	if err != nil {
		return ""
	}
	// Only read if stdin is explicitly a pipe (not a terminal, not a socket)
	if info.Mode()&os.ModeNamedPipe == 0 && info.Size() == 0 {
		return ""
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return ""
	}
	return string(data)
}
