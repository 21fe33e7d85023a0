// Package web provides the HTTP server: the HTML dashboard with its forms,
// the Connect RPC mount, health and metrics.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mmynk/debtbook/internal/balance"
	"github.com/mmynk/debtbook/internal/ledger"
	"github.com/mmynk/debtbook/internal/middleware"
	"github.com/mmynk/debtbook/internal/models"
	"github.com/mmynk/debtbook/internal/storage"
)

// historyLimit caps the entries shown on the history tab.
const historyLimit = 200

var tabs = []string{"debt", "person", "history"}

// Server is the debtbook HTTP server.
type Server struct {
	ledger         *ledger.Ledger
	balances       *balance.Aggregator
	templates      *template.Template
	uploader       Uploader
	rpcPath        string
	rpcHandler     http.Handler
	metricsEnabled bool
}

// NewServer creates a server and parses the embedded templates.
func NewServer(l *ledger.Ledger, balances *balance.Aggregator) (*Server, error) {
	tmpl, err := template.New("").Funcs(funcMap).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Server{ledger: l, balances: balances, templates: tmpl}, nil
}

// SetRPCHandler mounts the Connect handler at path.
func (s *Server) SetRPCHandler(path string, h http.Handler) {
	s.rpcPath = path
	s.rpcHandler = h
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chimw.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	if s.rpcHandler != nil {
		r.With(middleware.CORS).Handle(s.rpcPath+"*", s.rpcHandler)
	}

	r.Get("/", s.handleIndex)
	r.Get("/unpaid", s.handleUnpaidAll)
	r.Get("/unpaid/{borrower}/{lender}", s.handleUnpaidDetails)
	s.mountForms(r)

	return r
}

type indexData struct {
	Title       string
	Tab         string
	Tabs        []string
	Flash       string
	SyncEnabled bool
	Summary     []models.PairBalance
	Debts       []models.DebtView
	People      []models.Person
	History     []models.History
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	data := indexData{
		Title:       "Ledger",
		Tab:         "debt",
		Tabs:        tabs,
		Flash:       r.URL.Query().Get("flash"),
		SyncEnabled: s.uploader != nil,
	}
	if tab := r.URL.Query().Get("tab"); tab != "" {
		data.Tab = tab
	}
	if !validTab(data.Tab) {
		http.Error(w, "unknown tab", http.StatusBadRequest)
		return
	}

	summary, err := s.balances.UnpaidSummary(ctx)
	if err != nil {
		s.serverError(w, "load summary", err)
		return
	}
	data.Summary = summary

	switch data.Tab {
	case "debt":
		data.Debts, err = s.ledger.Debts(ctx)
		if err == nil {
			data.People, err = s.ledger.People(ctx)
		}
	case "person":
		data.People, err = s.ledger.People(ctx)
	case "history":
		data.History, err = s.ledger.History(ctx, historyLimit)
	}
	if err != nil {
		s.serverError(w, "load "+data.Tab, err)
		return
	}

	s.render(ctx, w, "index.html", data)
}

type unpaidDetailsData struct {
	Title    string
	Borrower models.Person
	Lender   models.Person
	Debts    []models.DebtView
	Total    float64
}

func (s *Server) handleUnpaidDetails(w http.ResponseWriter, r *http.Request) {
	borrowerID := chi.URLParam(r, "borrower")
	lenderID := chi.URLParam(r, "lender")

	pair, err := s.balances.UnpaidBetween(r.Context(), borrowerID, lenderID)
	if errors.Is(err, storage.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		s.serverError(w, "load unpaid details", err)
		return
	}

	s.render(r.Context(), w, "unpaid_details.html", unpaidDetailsData{
		Title:    pair.Borrower.Name + " owes " + pair.Lender.Name,
		Borrower: pair.Borrower,
		Lender:   pair.Lender,
		Debts:    pair.Debts,
		Total:    pair.Total,
	})
}

type unpaidAllData struct {
	Title string
	Debts []models.DebtView
}

func (s *Server) handleUnpaidAll(w http.ResponseWriter, r *http.Request) {
	debts, err := s.balances.UnpaidAll(r.Context())
	if err != nil {
		s.serverError(w, "load unpaid debts", err)
		return
	}
	s.render(r.Context(), w, "unpaid_all.html", unpaidAllData{Title: "Unpaid debts", Debts: debts})
}

// ─── Helpers ────────────────────────────────────────────────────────────────

func (s *Server) render(ctx context.Context, w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		slog.ErrorContext(ctx, "Template render failed", "template", name, "error", err)
	}
}

func (s *Server) serverError(w http.ResponseWriter, what string, err error) {
	slog.Error("Request failed", "operation", what, "error", err)
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

func validTab(tab string) bool {
	for _, t := range tabs {
		if t == tab {
			return true
		}
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

var funcMap = template.FuncMap{
	"amount": models.FormatAmount,
	"status": models.StatusLabel,
	"date": func(t time.Time) string {
		return t.Local().Format("2006-01-02")
	},
	"datetime": func(t time.Time) string {
		return t.Local().Format("2006-01-02 15:04:05")
	},
	"person": func(name string) string {
		if strings.TrimSpace(name) == "" {
			return "(deleted)"
		}
		return name
	},
}
