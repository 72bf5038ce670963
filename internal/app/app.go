package app

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"cashier-terminal/internal/auth"
	"cashier-terminal/internal/catalog"
	"cashier-terminal/internal/config"
	"cashier-terminal/internal/gameapi"
	"cashier-terminal/internal/metrics"
	"cashier-terminal/internal/prefs"
	"cashier-terminal/internal/printer"
	"cashier-terminal/internal/protocol"
	"cashier-terminal/internal/reports"
	"cashier-terminal/internal/terminal"
	"cashier-terminal/internal/tickets"
	httptransport "cashier-terminal/internal/transport/http"
	"cashier-terminal/internal/transport/ws"
	"cashier-terminal/internal/uistream"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

// App is one cashier terminal: the reconciler, its transport and the local API.
type App struct {
	cfg      config.AppConfig
	store    *prefs.Store
	sessions *auth.Manager
	initial  auth.Session
	socket   *ws.Session
	term     *terminal.Terminal
	printer  *printer.Dispatcher
	stream   *uistream.Buffer
	router   *chi.Mux
}

// New signs the cashier in and wires every component. Failing to establish a
// cashier identity is reported as auth.ErrMissingIdentity.
func New(ctx context.Context, cfg config.AppConfig) (*App, error) {
	m := metrics.New()
	store, err := prefs.Open(ctx, cfg.Prefs)
	if err != nil {
		return nil, err
	}

	api := gameapi.New(cfg.Terminal.GameServerURL, cfg.Terminal.RequestTimeout, m)
	sessions := auth.NewManager(api, store, auth.Credentials{
		Username: cfg.Terminal.Username,
		Password: cfg.Terminal.Password,
	})
	sess, err := sessions.Bootstrap(ctx)
	if err != nil {
		_ = store.Close()
		if errors.Is(err, auth.ErrMissingIdentity) {
			return nil, err
		}
		return nil, errors.Join(auth.ErrMissingIdentity, err)
	}

	a := &App{
		cfg:      cfg,
		store:    store,
		sessions: sessions,
		initial:  sess,
		stream:   uistream.NewBuffer(cfg.Terminal.UIBufferSize),
		socket:   ws.NewSession(ws.Options{URL: cfg.Terminal.SocketURL, Metrics: m}),
		printer:  printer.NewDispatcher(cfg.Print, m),
	}
	a.term = terminal.New(terminal.Options{
		Backend:   api,
		Sender:    a.socket,
		Publisher: a.stream,
		Prefs:     store,
		Metrics:   m,
		Initial:   terminal.NewState(store.SingleMode(ctx, sess.CashierID), store.Stake(ctx, sess.CashierID)),
	})
	bindEvents(a.socket, a.term)
	a.socket.OnStatus(func(up bool) {
		if err := a.term.SetConnected(up); err != nil {
			log.Debug().Err(err).Msg("connection_status_not_delivered")
		}
	})

	cashier := func() reports.Cashier {
		s := sessions.Current()
		return reports.Cashier{ID: s.CashierID, Username: s.Username, FullName: s.FullName}
	}
	a.router = httptransport.NewRouter(httptransport.Deps{
		Terminal: a.term,
		Tickets:  tickets.NewFlow(api, a.term),
		Reports:  reports.NewService(api, a.printer, cashier),
		Catalog:  catalog.NewService(api, func() string { return sessions.Current().CashierID }),
		Sessions: sessions,
		Verifier: api,
		Stream:   a.stream,
		Metrics:  m,
	})
	return a, nil
}

func (a *App) Handler() http.Handler { return a.router }

// Run blocks until ctx ends or a component fails, then shuts the API down.
func (a *App) Run(ctx context.Context) error {
	defer a.store.Close()
	httptransport.LogRoutes(a.router)
	server := &http.Server{
		Addr:              a.cfg.Terminal.HTTPAddr,
		Handler:           a.router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return a.term.Run(gctx) })
	g.Go(func() error { return a.printer.Start(gctx) })
	g.Go(func() error { return a.runTransport(gctx) })
	g.Go(func() error {
		log.Info().Str("addr", a.cfg.Terminal.HTTPAddr).Msg("http_listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.stream.Close()
		return server.Shutdown(shutdownCtx)
	})
	err := g.Wait()
	log.Info().Err(err).Msg("terminal_stopped")
	return err
}

// bindEvents decodes every known server event and hands it to the reconciler.
func bindEvents(socket *ws.Session, term *terminal.Terminal) {
	for _, name := range protocol.Inbound {
		socket.Subscribe(name, func(raw json.RawMessage) {
			ev, err := protocol.Decode(name, raw)
			if err != nil {
				log.Warn().Err(err).Str("event", name).Msg("event_decode_failed")
				return
			}
			if err := term.HandleEvent(ev); err != nil {
				log.Debug().Err(err).Str("event", name).Msg("event_not_delivered")
			}
		})
	}
}

// runTransport keeps the socket up. When the server revokes the session the
// cashier signs in again with the configured credentials.
func (a *App) runTransport(ctx context.Context) error {
	sess := a.initial
	for {
		a.applyIdentity(ctx, sess)
		err := a.socket.Run(ctx)
		if ctx.Err() != nil || !errors.Is(err, ws.ErrUnauthorized) {
			return err
		}
		next, lerr := a.sessions.Login(ctx)
		if lerr != nil {
			log.Error().Err(lerr).Msg("reauthentication_failed")
			return errors.Join(auth.ErrMissingIdentity, lerr)
		}
		sess = next
	}
}

func (a *App) applyIdentity(ctx context.Context, s auth.Session) {
	a.socket.SetIdentity(ws.Identity{CashierID: s.CashierID, Token: s.Token, SessionID: s.SessionID})
	if err := a.term.SetIdentity(ctx, terminal.Identity{CashierID: s.CashierID, SessionID: s.SessionID}); err != nil {
		log.Warn().Err(err).Msg("terminal_identity_not_applied")
	}
}
