package cli

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"staybook/internal/adapters/observability"
	"staybook/internal/adapters/probe"
	redisad "staybook/internal/adapters/redis"
	"staybook/internal/adapters/stayapi"
	"staybook/internal/app"
	"staybook/internal/domain"
	"staybook/internal/shared"
	"staybook/internal/storage/prefs"
)

// Env holds the wired services shared by all commands. Built once in the
// root command's PersistentPreRunE so subcommands stay thin.
type Env struct {
	Cfg      shared.Config
	Store    *prefs.Store
	Auth     *app.Auth
	Catalog  *app.Catalog
	Bookings *app.Bookings
	Workflow *app.BookingWorkflow
	Search   *app.Search
}

func (e *Env) init() error {
	e.Cfg = shared.Load()
	log.Logger = observability.NewLogger(e.Cfg.AppEnv, "staybook")
	observability.Serve()

	client, err := stayapi.New(e.Cfg.APIBaseURL, stayapi.Options{
		BookingsUnderAPI: e.Cfg.BookingsUnderAPI,
		Timeout:          e.Cfg.RequestTimeout,
		RPS:              e.Cfg.RateRPS,
	})
	if err != nil {
		return err
	}

	prober, err := probe.New(e.Cfg.APIBaseURL, e.Cfg.ProbeTimeout)
	if err != nil {
		return fmt.Errorf("bad API base URL: %w", err)
	}

	var cache domain.Cache = redisad.Noop{}
	if e.Cfg.RedisAddr != "" {
		cache = redisad.New(e.Cfg.RedisAddr, e.Cfg.RedisPass, e.Cfg.RedisDB)
	}

	store, err := prefs.Open(e.Cfg.PrefsPath)
	if err != nil {
		return fmt.Errorf("open prefs: %w", err)
	}
	e.Store = store

	e.Auth = app.NewAuth(client, store, log.Logger)
	e.Catalog = app.NewCatalog(client, cache, prober, e.Cfg.CacheTTL, e.Cfg.PrefetchWorkers, log.Logger)
	e.Bookings = app.NewBookings(client)
	e.Workflow = app.NewBookingWorkflow(client, prober, log.Logger)
	e.Search = app.NewSearch(store.History())
	return nil
}

func (e *Env) close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

// requireLogin loads the session and fails if nobody is signed in.
func (e *Env) requireLogin(cmd *cobra.Command) (domain.Session, error) {
	sess, err := e.Auth.Current(cmd.Context())
	if err != nil {
		return domain.Session{}, err
	}
	if !sess.LoggedIn {
		return domain.Session{}, fmt.Errorf("not logged in; run `staybook login` first")
	}
	return sess, nil
}

// requireAdmin additionally checks the session role. The server treats these
// routes as admin-only by convention; the client refuses early.
func (e *Env) requireAdmin(cmd *cobra.Command) (domain.Session, error) {
	sess, err := e.requireLogin(cmd)
	if err != nil {
		return domain.Session{}, err
	}
	if !sess.IsAdmin() {
		return domain.Session{}, fmt.Errorf("admin role required")
	}
	return sess, nil
}

func NewRootCmd() *cobra.Command {
	env := &Env{}
	cmd := &cobra.Command{
		Use:   "staybook",
		Short: "Hotel browsing and booking client",
		Long: `staybook is a client for the hotel booking API: browse and search
listings, create bookings, and manage your account from the terminal.

Configuration comes from the environment (API_BASE_URL, PREFS_PATH, ...),
an optional .env file, and an optional YAML file at
~/.config/staybook/config.yaml.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return env.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			env.close()
		},
	}

	cmd.AddCommand(newLoginCmd(env))
	cmd.AddCommand(newRegisterCmd(env))
	cmd.AddCommand(newLogoutCmd(env))
	cmd.AddCommand(newWhoamiCmd(env))
	cmd.AddCommand(newHotelsCmd(env))
	cmd.AddCommand(newBookCmd(env))
	cmd.AddCommand(newBookingsCmd(env))
	cmd.AddCommand(newHistoryCmd(env))
	cmd.AddCommand(newSettingsCmd(env))
	return cmd
}
