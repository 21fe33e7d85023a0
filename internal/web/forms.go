package web

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mmynk/debtbook/internal/ledger"
	"github.com/mmynk/debtbook/internal/remotesync"
)

// Uploader pushes a database snapshot to remote storage.
type Uploader interface {
	Upload(ctx context.Context, token, message string) (*remotesync.Result, error)
}

// SetUploader enables the snapshot upload form.
func (s *Server) SetUploader(u Uploader) { s.uploader = u }

// mountForms registers the form endpoints behind the dashboard. Each one
// redirects back to the dashboard tab on success.
func (s *Server) mountForms(r chi.Router) {
	r.Post("/people", s.handleAddPerson)
	r.Post("/people/{id}/edit", s.handleEditPerson)
	r.Post("/people/{id}/delete", s.handleDeletePerson)
	r.Post("/debts", s.handleAddDebt)
	r.Post("/debts/{id}/edit", s.handleEditDebt)
	r.Post("/debts/{id}/delete", s.handleDeleteDebt)
	r.Post("/split", s.handleSplitDebt)
	r.Post("/sync", s.handleSync)
}

func (s *Server) handleAddPerson(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}
	res, err := s.ledger.AddPerson(r.Context(), r.PostForm.Get("name"))
	if err != nil {
		formError(w, r, "add person", err)
		return
	}
	redirect(w, r, "person", "Person added: "+res.Person.Name, res.Warning)
}

func (s *Server) handleEditPerson(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}
	res, err := s.ledger.EditPerson(r.Context(), chi.URLParam(r, "id"), r.PostForm.Get("name"))
	if err != nil {
		formError(w, r, "edit person", err)
		return
	}
	redirect(w, r, "person", "Person renamed: "+res.Person.Name, res.Warning)
}

func (s *Server) handleDeletePerson(w http.ResponseWriter, r *http.Request) {
	res, err := s.ledger.DeletePerson(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		formError(w, r, "delete person", err)
		return
	}
	redirect(w, r, "person", "Person deleted: "+res.Person.Name, res.Warning)
}

func (s *Server) handleAddDebt(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}
	in, ok := debtInput(w, r)
	if !ok {
		return
	}
	res, err := s.ledger.AddDebt(r.Context(), in)
	if err != nil {
		formError(w, r, "add debt", err)
		return
	}
	redirect(w, r, "debt", "Debt added.", res.Warning)
}

func (s *Server) handleEditDebt(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}
	in, ok := debtInput(w, r)
	if !ok {
		return
	}
	res, err := s.ledger.EditDebt(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		formError(w, r, "edit debt", err)
		return
	}
	redirect(w, r, "debt", "Debt updated.", res.Warning)
}

func (s *Server) handleDeleteDebt(w http.ResponseWriter, r *http.Request) {
	res, err := s.ledger.DeleteDebt(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		formError(w, r, "delete debt", err)
		return
	}
	redirect(w, r, "debt", "Debt deleted.", res.Warning)
}

func (s *Server) handleSplitDebt(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}
	total, ok := parseAmount(w, r.PostForm.Get("amount"))
	if !ok {
		return
	}

	// Checkbox values arrive as repeated split_names; a free-text field
	// adds comma-separated names that are not in the list yet.
	names := append([]string(nil), r.PostForm["split_names"]...)
	if extra := r.PostForm.Get("new_names"); extra != "" {
		names = append(names, strings.Split(extra, ",")...)
	}

	res, err := s.ledger.SplitDebt(r.Context(), r.PostForm.Get("lender"), total, r.PostForm.Get("reason"), names)
	if err != nil {
		formError(w, r, "split debt", err)
		return
	}
	msg := fmt.Sprintf("Debt split among %d people.", len(res.Debts))
	redirect(w, r, "debt", msg, res.Warning)
}

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}
	if s.uploader == nil {
		http.Error(w, "snapshot upload is not configured", http.StatusServiceUnavailable)
		return
	}

	res, err := s.uploader.Upload(r.Context(), r.PostForm.Get("github_token"), r.PostForm.Get("commit_message"))
	var apiErr *remotesync.APIError
	switch {
	case errors.Is(err, remotesync.ErrNotConfigured):
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	case errors.Is(err, remotesync.ErrMissingToken):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	case errors.As(err, &apiErr):
		slog.WarnContext(r.Context(), "Snapshot upload rejected", "status", apiErr.StatusCode, "error", err)
		http.Error(w, "Failed to upload to GitHub: "+apiErr.Message, http.StatusBadGateway)
		return
	case err != nil:
		s.serverError(w, "upload snapshot", err)
		return
	}
	redirect(w, r, "debt", "Database uploaded to "+res.Path+".", nil)
}

// ─── Helpers ────────────────────────────────────────────────────────────────

func parseForm(w http.ResponseWriter, r *http.Request) bool {
	if err := r.ParseForm(); err != nil {
		slog.ErrorContext(r.Context(), "Parse form error", "error", err, "url", r.URL.Path)
		http.Error(w, "invalid form", http.StatusBadRequest)
		return false
	}
	return true
}

func parseAmount(w http.ResponseWriter, raw string) (float64, bool) {
	amount, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		http.Error(w, "invalid amount", http.StatusUnprocessableEntity)
		return 0, false
	}
	return amount, true
}

func debtInput(w http.ResponseWriter, r *http.Request) (ledger.DebtInput, bool) {
	amount, ok := parseAmount(w, r.PostForm.Get("amount"))
	if !ok {
		return ledger.DebtInput{}, false
	}
	return ledger.DebtInput{
		BorrowerID: r.PostForm.Get("borrower"),
		LenderID:   r.PostForm.Get("lender"),
		Amount:     amount,
		Reason:     r.PostForm.Get("reason"),
		Paid:       r.PostForm.Get("paid") != "",
	}, true
}

// formError writes a plain-text error with a status matching the ledger error.
func formError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ledger.ErrInvalidInput):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, ledger.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, ledger.ErrConflict):
		status = http.StatusConflict
	}
	if status == http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "Form request failed", "operation", op, "error", err)
		http.Error(w, "internal server error", status)
		return
	}
	slog.InfoContext(r.Context(), "Form request rejected", "operation", op, "error", err)
	http.Error(w, err.Error(), status)
}

// redirect sends the browser back to tab with a flash message. A history
// warning is appended to the message.
func redirect(w http.ResponseWriter, r *http.Request, tab, msg string, warning error) {
	if warning != nil {
		msg += " Warning: " + warning.Error()
	}
	q := url.Values{"tab": {tab}, "flash": {msg}}
	http.Redirect(w, r, "/?"+q.Encode(), http.StatusSeeOther)
}
