package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"github.com/vytor/flashdeck/internal/config"
	"github.com/vytor/flashdeck/internal/logger"
	"github.com/vytor/flashdeck/internal/models"
	"github.com/vytor/flashdeck/internal/services"
	"github.com/vytor/flashdeck/internal/storage"
)

// app holds what every subcommand needs once storage is open.
type app struct {
	backend *storage.Backend
	auth    services.AuthService
	decks   services.DeckService
	scope   models.Scope
}

type rootFlags struct {
	user     string
	password string
	logLevel string
}

type appKey struct{}

func appFrom(cmd *cobra.Command) *app {
	return cmd.Context().Value(appKey{}).(*app)
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:          "flashdeck",
		Short:        "Manage flashcard decks and quiz yourself from the terminal",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup(cmd, flags)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a, ok := cmd.Context().Value(appKey{}).(*app); ok {
				a.backend.Close()
			}
		},
	}
	root.SetContext(context.Background())
	root.CompletionOptions.DisableDefaultCmd = true

	pf := root.PersistentFlags()
	pf.StringVarP(&flags.user, "user", "u", "", "account to use; decks of a guest are not saved")
	pf.StringVar(&flags.password, "password", "", "account password (default $FLASHDECK_PASSWORD)")
	pf.StringVar(&flags.logLevel, "log-level", "", "override LOG_LEVEL")

	root.AddCommand(newRegisterCmd(flags), newDecksCmd(), newQuizCmd())
	return root
}

func setup(cmd *cobra.Command, flags *rootFlags) error {
	if cmd.Name() == "help" {
		return nil
	}
	cfg := config.Load()
	if flags.logLevel != "" {
		cfg.LogLevel = flags.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithOutput(cmd.ErrOrStderr()),
		logger.WithPrefix("cli"),
	)
	logger.SetDefault(log)
	ctx := logger.NewContext(cmd.Context(), log)

	backend, err := storage.Open(ctx, cfg)
	if err != nil {
		return err
	}

	a := &app{
		backend: backend,
		auth:    services.NewAuthService(backend.Users, backend.Collections, cfg.BcryptCost),
		decks: services.NewDeckService(backend.Collections, services.DeckServiceOptions{
			Strict:            cfg.StrictStorage,
			GuestStarterDecks: cfg.GuestStarterDecks,
		}),
		scope: models.GuestScopeFor("cli"),
	}
	ctx = context.WithValue(ctx, appKey{}, a)
	cmd.SetContext(ctx)

	if flags.user == "" || cmd.Name() == "register" {
		return nil
	}
	login, err := a.auth.Login(ctx, flags.user, password(flags))
	if err != nil {
		backend.Close()
		return err
	}
	a.scope = login.Scope
	return nil
}

func password(flags *rootFlags) string {
	if flags.password != "" {
		return flags.password
	}
	return os.Getenv("FLASHDECK_PASSWORD")
}
