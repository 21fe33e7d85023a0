// Package service exposes the ledger over Connect RPC.
package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/debtbook/internal/balance"
	"github.com/mmynk/debtbook/internal/ledger"
	"github.com/mmynk/debtbook/internal/remotesync"
	pb "github.com/mmynk/debtbook/pkg/debtbookv1"
)

// Uploader pushes a database snapshot to remote storage.
type Uploader interface {
	Upload(ctx context.Context, token, message string) (*remotesync.Result, error)
}

// LedgerService implements the Connect LedgerService.
type LedgerService struct {
	ledger   *ledger.Ledger
	balances *balance.Aggregator
	uploader Uploader
}

var _ pb.LedgerServiceHandler = (*LedgerService)(nil)

// NewLedgerService creates a LedgerService. uploader may be nil, in which
// case UploadSnapshot fails with FailedPrecondition.
func NewLedgerService(l *ledger.Ledger, balances *balance.Aggregator, uploader Uploader) *LedgerService {
	return &LedgerService{ledger: l, balances: balances, uploader: uploader}
}

// ─── People ─────────────────────────────────────────────────────────────────

// ListPeople returns every person ordered by name.
func (s *LedgerService) ListPeople(ctx context.Context, req *connect.Request[pb.ListPeopleRequest]) (*connect.Response[pb.ListPeopleResponse], error) {
	people, err := s.ledger.People(ctx)
	if err != nil {
		slog.Error("ListPeople failed", "error", err)
		return nil, connectError(err)
	}

	out := make([]*pb.Person, len(people))
	for i := range people {
		out[i] = toPBPerson(&people[i])
	}
	return connect.NewResponse(&pb.ListPeopleResponse{People: out}), nil
}

// AddPerson creates a person.
func (s *LedgerService) AddPerson(ctx context.Context, req *connect.Request[pb.AddPersonRequest]) (*connect.Response[pb.PersonResponse], error) {
	slog.Info("AddPerson request received", "name", req.Msg.Name)

	res, err := s.ledger.AddPerson(ctx, req.Msg.Name)
	if err != nil {
		return nil, connectError(err)
	}

	slog.Info("Person added", "person_id", res.Person.ID)
	return connect.NewResponse(&pb.PersonResponse{
		Person:  toPBPerson(res.Person),
		Warning: warningText(res.Warning),
	}), nil
}

// EditPerson renames a person.
func (s *LedgerService) EditPerson(ctx context.Context, req *connect.Request[pb.EditPersonRequest]) (*connect.Response[pb.PersonResponse], error) {
	slog.Info("EditPerson request received", "person_id", req.Msg.ID, "name", req.Msg.Name)

	res, err := s.ledger.EditPerson(ctx, req.Msg.ID, req.Msg.Name)
	if err != nil {
		return nil, connectError(err)
	}

	return connect.NewResponse(&pb.PersonResponse{
		Person:  toPBPerson(res.Person),
		Warning: warningText(res.Warning),
	}), nil
}

// DeletePerson removes a person. Their debts stay and show an empty name.
func (s *LedgerService) DeletePerson(ctx context.Context, req *connect.Request[pb.DeletePersonRequest]) (*connect.Response[pb.PersonResponse], error) {
	slog.Info("DeletePerson request received", "person_id", req.Msg.ID)

	res, err := s.ledger.DeletePerson(ctx, req.Msg.ID)
	if err != nil {
		return nil, connectError(err)
	}

	return connect.NewResponse(&pb.PersonResponse{
		Person:  toPBPerson(res.Person),
		Warning: warningText(res.Warning),
	}), nil
}

// ─── Debts ──────────────────────────────────────────────────────────────────

// ListDebts returns every debt, newest first.
func (s *LedgerService) ListDebts(ctx context.Context, req *connect.Request[pb.ListDebtsRequest]) (*connect.Response[pb.ListDebtsResponse], error) {
	debts, err := s.ledger.Debts(ctx)
	if err != nil {
		slog.Error("ListDebts failed", "error", err)
		return nil, connectError(err)
	}
	return connect.NewResponse(&pb.ListDebtsResponse{Debts: toPBDebtViews(debts)}), nil
}

// AddDebt records a debt between two existing people.
func (s *LedgerService) AddDebt(ctx context.Context, req *connect.Request[pb.AddDebtRequest]) (*connect.Response[pb.DebtResponse], error) {
	slog.Info("AddDebt request received",
		"borrower_id", req.Msg.BorrowerID,
		"lender_id", req.Msg.LenderID,
		"amount", req.Msg.Amount,
	)

	res, err := s.ledger.AddDebt(ctx, ledger.DebtInput{
		BorrowerID: req.Msg.BorrowerID,
		LenderID:   req.Msg.LenderID,
		Amount:     req.Msg.Amount,
		Reason:     req.Msg.Reason,
		Paid:       req.Msg.Paid,
	})
	if err != nil {
		return nil, connectError(err)
	}

	slog.Info("Debt added", "debt_id", res.Debts[0].ID)
	return connect.NewResponse(&pb.DebtResponse{
		Debt:    toPBDebtView(res.Debts[0]),
		Warning: warningText(res.Warning),
	}), nil
}

// EditDebt replaces every field of a debt.
func (s *LedgerService) EditDebt(ctx context.Context, req *connect.Request[pb.EditDebtRequest]) (*connect.Response[pb.DebtResponse], error) {
	slog.Info("EditDebt request received", "debt_id", req.Msg.ID)

	res, err := s.ledger.EditDebt(ctx, req.Msg.ID, ledger.DebtInput{
		BorrowerID: req.Msg.BorrowerID,
		LenderID:   req.Msg.LenderID,
		Amount:     req.Msg.Amount,
		Reason:     req.Msg.Reason,
		Paid:       req.Msg.Paid,
	})
	if err != nil {
		return nil, connectError(err)
	}

	return connect.NewResponse(&pb.DebtResponse{
		Debt:    toPBDebtView(res.Debts[0]),
		Warning: warningText(res.Warning),
	}), nil
}

// DeleteDebt removes a debt and returns it as it was.
func (s *LedgerService) DeleteDebt(ctx context.Context, req *connect.Request[pb.DeleteDebtRequest]) (*connect.Response[pb.DebtResponse], error) {
	slog.Info("DeleteDebt request received", "debt_id", req.Msg.ID)

	res, err := s.ledger.DeleteDebt(ctx, req.Msg.ID)
	if err != nil {
		return nil, connectError(err)
	}

	return connect.NewResponse(&pb.DebtResponse{
		Debt:    toPBDebtView(res.Debts[0]),
		Warning: warningText(res.Warning),
	}), nil
}

// SplitDebt divides a total equally among names, creating unknown people.
func (s *LedgerService) SplitDebt(ctx context.Context, req *connect.Request[pb.SplitDebtRequest]) (*connect.Response[pb.SplitDebtResponse], error) {
	slog.Info("SplitDebt request received",
		"lender_id", req.Msg.LenderID,
		"total", req.Msg.Total,
		"names_count", len(req.Msg.Names),
	)

	res, err := s.ledger.SplitDebt(ctx, req.Msg.LenderID, req.Msg.Total, req.Msg.Reason, req.Msg.Names)
	if err != nil {
		if len(res.Debts) > 0 {
			slog.Warn("SplitDebt stopped midway",
				"created", len(res.Debts),
				"requested", len(req.Msg.Names),
				"error", err,
			)
		}
		return nil, connectError(err)
	}

	resp := &pb.SplitDebtResponse{
		Debts:   toPBDebtViews(res.Debts),
		Warning: warningText(res.Warning),
	}
	if len(res.Debts) > 0 {
		resp.Share = res.Debts[0].Amount
	}
	return connect.NewResponse(resp), nil
}

// ─── History ────────────────────────────────────────────────────────────────

// ListHistory returns audit entries newest first.
func (s *LedgerService) ListHistory(ctx context.Context, req *connect.Request[pb.ListHistoryRequest]) (*connect.Response[pb.ListHistoryResponse], error) {
	entries, err := s.ledger.History(ctx, req.Msg.Limit)
	if err != nil {
		slog.Error("ListHistory failed", "error", err)
		return nil, connectError(err)
	}

	out := make([]*pb.HistoryEntry, len(entries))
	for i, e := range entries {
		out[i] = toPBHistory(e)
	}
	return connect.NewResponse(&pb.ListHistoryResponse{Entries: out}), nil
}

// ─── Balances ───────────────────────────────────────────────────────────────

// UnpaidSummary returns unpaid totals per (borrower, lender) pair.
func (s *LedgerService) UnpaidSummary(ctx context.Context, req *connect.Request[pb.UnpaidSummaryRequest]) (*connect.Response[pb.UnpaidSummaryResponse], error) {
	summary, err := s.balances.UnpaidSummary(ctx)
	if err != nil {
		slog.Error("UnpaidSummary failed", "error", err)
		return nil, connectError(err)
	}

	out := make([]*pb.PairBalance, len(summary))
	for i, p := range summary {
		out[i] = toPBPairBalance(p)
	}
	return connect.NewResponse(&pb.UnpaidSummaryResponse{Pairs: out}), nil
}

// UnpaidBetween returns the unpaid debts one borrower owes one lender.
func (s *LedgerService) UnpaidBetween(ctx context.Context, req *connect.Request[pb.UnpaidBetweenRequest]) (*connect.Response[pb.UnpaidBetweenResponse], error) {
	pair, err := s.balances.UnpaidBetween(ctx, req.Msg.BorrowerID, req.Msg.LenderID)
	if err != nil {
		return nil, connectError(err)
	}

	return connect.NewResponse(&pb.UnpaidBetweenResponse{
		Borrower: toPBPerson(&pair.Borrower),
		Lender:   toPBPerson(&pair.Lender),
		Debts:    toPBDebtViews(pair.Debts),
		Total:    pair.Total,
	}), nil
}

// UnpaidAll returns every unpaid debt.
func (s *LedgerService) UnpaidAll(ctx context.Context, req *connect.Request[pb.UnpaidAllRequest]) (*connect.Response[pb.UnpaidAllResponse], error) {
	debts, err := s.balances.UnpaidAll(ctx)
	if err != nil {
		slog.Error("UnpaidAll failed", "error", err)
		return nil, connectError(err)
	}
	return connect.NewResponse(&pb.UnpaidAllResponse{Debts: toPBDebtViews(debts)}), nil
}

// ─── Sync ───────────────────────────────────────────────────────────────────

// UploadSnapshot pushes the database file to the configured repository.
func (s *LedgerService) UploadSnapshot(ctx context.Context, req *connect.Request[pb.UploadSnapshotRequest]) (*connect.Response[pb.UploadSnapshotResponse], error) {
	if s.uploader == nil {
		return nil, connectError(remotesync.ErrNotConfigured)
	}

	res, err := s.uploader.Upload(ctx, req.Msg.Token, req.Msg.Message)
	if err != nil {
		slog.Error("UploadSnapshot failed", "error", err)
		return nil, connectError(err)
	}

	return connect.NewResponse(&pb.UploadSnapshotResponse{
		Path:      res.Path,
		CommitSHA: res.CommitSHA,
		Created:   res.Created,
	}), nil
}
