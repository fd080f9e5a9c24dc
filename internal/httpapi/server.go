package httpapi

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/cysense/sensor-dashboard/internal/model"
	"github.com/cysense/sensor-dashboard/internal/state"
	"github.com/cysense/sensor-dashboard/internal/view"
)

// Refresher is the poller capability the API needs: a coalesced,
// non-blocking refresh request.
type Refresher interface {
	TriggerRefresh()
}

// HistoryProvider is the source capability behind the trends and export
// endpoints. History reads run per request and bypass the snapshot cache.
type HistoryProvider interface {
	FetchHistory(ctx context.Context, since, until time.Time) ([]model.HistoryPoint, error)
}

// Options carries the startup-fixed settings for the HTTP surface.
type Options struct {
	Mode     model.Mode
	Window   time.Duration
	Username string
	Password string
}

type API struct {
	state    *state.Holder
	poller   Refresher
	history  HistoryProvider
	sessions *Sessions
	renderer *view.Renderer
	logger   *slog.Logger
	opts     Options
}

func New(holder *state.Holder, poller Refresher, history HistoryProvider, sessions *Sessions, renderer *view.Renderer, logger *slog.Logger, opts Options) *API {
	return &API{
		state:    holder,
		poller:   poller,
		history:  history,
		sessions: sessions,
		renderer: renderer,
		logger:   logger,
		opts:     opts,
	}
}

func (a *API) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RecoverJSON(a.logger))
	r.Use(RequestLogger(a.logger))

	r.Group(func(g chi.Router) {
		g.Use(middleware.Timeout(20 * time.Second))
		g.Get("/healthz", a.health)
		g.Get("/login", a.loginPage)
		g.Post("/login", a.login)
		g.Post("/logout", a.logout)

		g.Group(func(gated chi.Router) {
			gated.Use(a.requireSession)
			gated.Get("/", a.dashboard)
			gated.Post("/refresh", a.refresh)
			gated.Get("/api/snapshot", a.snapshot)
			gated.Get("/api/history", a.historySeries)
			gated.Get("/export.csv", a.exportCSV)
		})
	})

	// Websocket connections outlive the request timeout.
	r.Group(func(g chi.Router) {
		g.Use(a.requireSession)
		g.Get("/api/ws", a.websocket)
	})

	return r
}

func (a *API) health(w http.ResponseWriter, _ *http.Request) {
	v := a.state.Current()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"mode":     a.opts.Mode,
		"has_data": v.HasData,
	})
}

// requireSession is the access gate: a valid session cookie or nothing.
func (a *API) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.sessions.Valid(sessionToken(r)) {
			next.ServeHTTP(w, r)
			return
		}
		if strings.HasPrefix(r.URL.Path, "/api/") {
			writeError(w, http.StatusUnauthorized, "unauthorized", "Login required")
			return
		}
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	})
}

func (a *API) loginPage(w http.ResponseWriter, _ *http.Request) {
	a.renderLogin(w, http.StatusOK, view.LoginPage{})
}

// login compares submitted credentials against the configured pair. A
// rejection is a user-visible failure, not a system error.
func (a *API) login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		a.renderLogin(w, http.StatusBadRequest, view.LoginPage{Error: "Invalid form submission"})
		return
	}
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")
	if username != a.opts.Username || password != a.opts.Password {
		a.logger.Info("login rejected", "username", username)
		a.renderLogin(w, http.StatusUnauthorized, view.LoginPage{Error: "Invalid username or password"})
		return
	}

	token := a.sessions.Issue()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (a *API) logout(w http.ResponseWriter, r *http.Request) {
	a.sessions.Drop(sessionToken(r))
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (a *API) dashboard(w http.ResponseWriter, _ *http.Request) {
	page := view.BuildPage(a.state.Current(), a.opts.Mode, a.opts.Window, time.Now().UTC())
	if err := a.renderer.Dashboard(w, page); err != nil {
		a.logger.Error("dashboard render failed", "err", err)
		a.degraded(w, err)
	}
}

func (a *API) refresh(w http.ResponseWriter, _ *http.Request) {
	a.poller.TriggerRefresh()
	writeJSON(w, http.StatusAccepted, map[string]any{"ok": true})
}

func (a *API) snapshot(w http.ResponseWriter, _ *http.Request) {
	v := a.state.Current()
	payload := map[string]any{
		"mode":     a.opts.Mode,
		"has_data": v.HasData,
	}
	if v.HasData {
		payload["snapshot"] = v.Snapshot
	}
	if v.LastErr != nil {
		payload["last_error"] = v.LastErr.Error()
	}
	writeJSON(w, http.StatusOK, payload)
}

// historyRange maps the dashboard quick filters to a lookback duration.
func historyRange(raw string) (time.Duration, bool) {
	switch raw {
	case "", "24h":
		return 24 * time.Hour, true
	case "12h":
		return 12 * time.Hour, true
	case "7d":
		return 7 * 24 * time.Hour, true
	case "30d":
		return 30 * 24 * time.Hour, true
	}
	return 0, false
}

func (a *API) fetchHistory(w http.ResponseWriter, r *http.Request) ([]model.HistoryPoint, time.Time, time.Time, bool) {
	span, ok := historyRange(r.URL.Query().Get("range"))
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_range", "range must be one of 12h, 24h, 7d, 30d")
		return nil, time.Time{}, time.Time{}, false
	}
	until := time.Now().UTC()
	since := until.Add(-span)
	points, err := a.history.FetchHistory(r.Context(), since, until)
	if err != nil {
		a.logger.Warn("history fetch failed", "err", err)
		writeError(w, http.StatusBadGateway, "history_failed", err.Error())
		return nil, time.Time{}, time.Time{}, false
	}
	return points, since, until, true
}

func (a *API) historySeries(w http.ResponseWriter, r *http.Request) {
	points, since, until, ok := a.fetchHistory(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"since":  since,
		"until":  until,
		"points": points,
	})
}

// exportCSV streams the history window as a CSV attachment, one sample per
// row with empty cells for absent channels.
func (a *API) exportCSV(w http.ResponseWriter, r *http.Request) {
	points, _, until, ok := a.fetchHistory(w, r)
	if !ok {
		return
	}
	filename := "sensor_data_" + until.Format("20060102_150405") + ".csv"
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)

	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"device_name", "timestamp", "temperature", "humidity"})
	for _, p := range points {
		_ = cw.Write([]string{
			p.Device,
			p.CapturedAt.Format("2006-01-02 15:04:05"),
			csvCell(p.Temperature),
			csvCell(p.Humidity),
		})
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		a.logger.Warn("csv export write failed", "err", err)
	}
}

func csvCell(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func (a *API) renderLogin(w http.ResponseWriter, status int, page view.LoginPage) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := a.renderer.Login(w, page); err != nil {
		a.logger.Error("login render failed", "err", err)
		fmt.Fprintln(w, "login temporarily unavailable")
	}
}

// degraded serves a plain status line when the renderer fails, keeping the
// process alive per the no-crash rule for the render loop.
func (a *API) degraded(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, "dashboard temporarily degraded: %v\n", err)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]any{
			"code":    code,
			"message": message,
		},
	})
}

// RunServer starts and gracefully stops the HTTP server with context
// cancellation.
func RunServer(ctx context.Context, server *http.Server, logger *slog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err != nil {
			logger.Error("http server failed", "err", err)
			return err
		}
		return nil
	}
}
