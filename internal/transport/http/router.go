package httptransport

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"cashier-terminal/internal/metrics"
	"cashier-terminal/internal/uistream"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

type Deps struct {
	Terminal Terminal
	Tickets  Tickets
	Reports  Reports
	Catalog  Catalog
	Sessions Sessions
	Verifier Verifier
	Stream   *uistream.Buffer
	Metrics  *metrics.Metrics
}

func NewRouter(d Deps) *chi.Mux {
	term := NewTerminalHandlers(d.Terminal)
	tix := NewTicketHandlers(d.Tickets)
	rep := NewReportHandlers(d.Reports)
	cat := NewCatalogHandlers(d.Catalog)
	sess := NewSessionHandlers(d.Sessions, d.Verifier)

	var cashierID func() string
	if d.Sessions != nil {
		cashierID = func() string { return d.Sessions.Current().CashierID }
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)

	r.With(APILogMiddleware(cashierID)).Get("/healthz", sess.Health())
	r.Handle("/metrics", d.Metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(APILogMiddleware(cashierID))

		r.Get("/events", uistream.Handler(d.Stream, func() any { return d.Terminal.Snapshot().View() }))
		r.Get("/state", term.State())
		r.Get("/session", sess.Session())
		r.Post("/session/logout", sess.Logout())

		r.Group(func(r chi.Router) {
			r.Use(BodyCaptureMiddleware(4096))

			r.Post("/selection/{cartela_id}", term.Select())
			r.Delete("/selection/{cartela_id}", term.Deselect())
			r.Put("/settings/single-mode", term.SingleMode())
			r.Put("/settings/stake", term.Stake())
			r.Post("/bets", term.PlaceBet())
			r.Post("/game/start", term.StartGame())
			r.Post("/game/end", term.EndGame())
			r.Post("/game/draw", term.Draw())
			r.Post("/game/refresh", term.Refresh())
			r.Post("/display/refresh", term.RefreshDisplay())
			r.Post("/autodraw/{command}", term.AutoDraw())

			r.Get("/tickets/lookup", tix.Current())
			r.Post("/tickets/lookup", tix.Lookup())
			r.Delete("/tickets/lookup", tix.Clear())
			r.Post("/tickets/confirm", tix.Confirm())

			r.Get("/reports/summary", rep.Summary())
			r.Post("/reports/summary/print", rep.PrintSummary())
			r.Post("/reports/games", rep.Games())
			r.Post("/reports/games/print", rep.PrintResults())
			r.Get("/reports/recall", rep.Recall())
			r.Post("/reports/recall/{ticket}/reprint", rep.Reprint())

			r.Get("/cartelas", cat.Cartelas())
			r.Post("/cartelas", cat.CreateCartela())
			r.Get("/cartelas/generate", cat.Generate())
			r.Put("/cartelas/{id}", cat.UpdateCartela())
			r.Delete("/cartelas/{id}", cat.DeleteCartela())
			r.Patch("/cartelas/{id}/toggle", cat.ToggleCartela())
			r.Get("/win-patterns", cat.WinPatterns())
			r.Post("/win-patterns", cat.CreateWinPattern())
			r.Put("/win-patterns/{id}", cat.UpdateWinPattern())
			r.Delete("/win-patterns/{id}", cat.DeleteWinPattern())
			r.Patch("/win-patterns/{id}/status", cat.ToggleWinPattern())

			r.Post("/verification/verify", sess.Verify())
			r.Post("/verification/lock", sess.Lock())
		})
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		WriteHTTPError(w, http.StatusNotFound, "not_found")
	})
	return r
}

func LogRoutes(r chi.Router) {
	type routeDef struct {
		Method string
		Path   string
	}
	routes := make([]routeDef, 0, 64)
	err := chi.Walk(r, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		routes = append(routes, routeDef{Method: method, Path: route})
		return nil
	})
	if err != nil {
		log.Error().Err(err).Msg("walk routes failed")
		return
	}
	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Path == routes[j].Path {
			return routes[i].Method < routes[j].Method
		}
		return routes[i].Path < routes[j].Path
	})
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Registered routes (%d):\n", len(routes)))
	for _, rt := range routes {
		b.WriteString(fmt.Sprintf("  %-6s %s\n", rt.Method, rt.Path))
	}
	log.Debug().Msg(b.String())
}
