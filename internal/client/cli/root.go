// Package cli implements the todokeeper command-line client on top of the
// HTTP API client. The session token is kept in a private file between runs.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/dmitrijs2005/todokeeper/internal/client/api"
	"github.com/dmitrijs2005/todokeeper/internal/client/config"
	"github.com/dmitrijs2005/todokeeper/internal/filex"
	"github.com/spf13/cobra"
)

// ErrNotLoggedIn is returned by commands that need a session when none is stored
// or the stored one was rejected.
var ErrNotLoggedIn = errors.New("not logged in; run `todokeeper login`")

// App is the state shared by all subcommands of one invocation.
type App struct {
	config *config.Config
	client *api.Client
	reader *bufio.Reader
}

type rootFlags struct {
	configFile string
	server     string
	tokenFile  string
}

// NewRootCmd creates the root command for the todokeeper CLI.
func NewRootCmd() *cobra.Command {
	flags := &rootFlags{}
	app := &App{}

	cmd := &cobra.Command{
		Use:           "todokeeper",
		Short:         "todokeeper - a personal todo list client",
		Long:          `todokeeper talks to a todokeeper server: sign up, log in, and manage your todos.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return app.init(cmd, flags)
		},
	}

	cmd.PersistentFlags().StringVar(&flags.configFile, "config", "", "config file path")
	cmd.PersistentFlags().StringVar(&flags.server, "server", "", "server base URL (overrides config)")
	cmd.PersistentFlags().StringVar(&flags.tokenFile, "token-file", "", "session token file (overrides config)")

	cmd.AddCommand(newSignupCmd(app))
	cmd.AddCommand(newLoginCmd(app))
	cmd.AddCommand(newLogoutCmd(app))
	cmd.AddCommand(newWhoamiCmd(app))
	cmd.AddCommand(newTodoCmd(app))

	return cmd
}

func (a *App) init(cmd *cobra.Command, flags *rootFlags) error {
	cfg, err := config.Load(flags.configFile)
	if err != nil {
		return err
	}
	if flags.server != "" {
		cfg.ServerURL = flags.server
	}
	if flags.tokenFile != "" {
		cfg.TokenFile = flags.tokenFile
	}

	a.config = cfg
	a.client = api.NewClient(cfg.ServerURL, cfg.RequestTimeout)
	a.reader = bufio.NewReader(cmd.InOrStdin())
	return nil
}

// authorize loads the stored token into the API client.
func (a *App) authorize() error {
	token, err := filex.ReadSecret(a.config.TokenFile)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrNotLoggedIn
		}
		return fmt.Errorf("read token: %w", err)
	}
	if token == "" {
		return ErrNotLoggedIn
	}
	a.client.SetToken(token)
	return nil
}

// authorized runs fn with a loaded session and turns a 401 into ErrNotLoggedIn.
func (a *App) authorized(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := a.authorize(); err != nil {
		return err
	}
	err := fn(ctx)
	if api.IsUnauthorized(err) {
		return fmt.Errorf("%w (%v)", ErrNotLoggedIn, err)
	}
	return err
}

// prompt returns value if set, otherwise asks for it.
func (a *App) prompt(cmd *cobra.Command, value, label string) (string, error) {
	if value != "" {
		return value, nil
	}
	return GetSimpleText(a.reader, label, cmd.ErrOrStderr())
}
