package service

import (
	"errors"

	"connectrpc.com/connect"

	"github.com/mmynk/debtbook/internal/ledger"
	"github.com/mmynk/debtbook/internal/models"
	"github.com/mmynk/debtbook/internal/remotesync"
	"github.com/mmynk/debtbook/internal/storage"
	pb "github.com/mmynk/debtbook/pkg/debtbookv1"
)

// connectError maps domain errors onto Connect codes.
func connectError(err error) *connect.Error {
	var apiErr *remotesync.APIError
	switch {
	case errors.Is(err, ledger.ErrNotFound), errors.Is(err, storage.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, ledger.ErrConflict), errors.Is(err, storage.ErrConflict):
		return connect.NewError(connect.CodeAlreadyExists, err)
	case errors.Is(err, ledger.ErrInvalidInput), errors.Is(err, remotesync.ErrMissingToken):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, remotesync.ErrNotConfigured):
		return connect.NewError(connect.CodeFailedPrecondition, err)
	case errors.As(err, &apiErr):
		return connect.NewError(connect.CodeUnavailable, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}

func warningText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func toPBPerson(p *models.Person) *pb.Person {
	if p == nil {
		return nil
	}
	return &pb.Person{
		ID:        p.ID,
		Name:      p.Name,
		CreatedAt: p.CreatedAt.Unix(),
	}
}

func toPBDebtView(v models.DebtView) *pb.Debt {
	return &pb.Debt{
		ID:           v.ID,
		CreatedAt:    v.CreatedAt.Unix(),
		BorrowerID:   v.BorrowerID,
		BorrowerName: v.BorrowerName,
		LenderID:     v.LenderID,
		LenderName:   v.LenderName,
		Amount:       v.Amount,
		Reason:       v.Reason,
		Paid:         v.Paid,
	}
}

func toPBDebtViews(views []models.DebtView) []*pb.Debt {
	out := make([]*pb.Debt, len(views))
	for i, v := range views {
		out[i] = toPBDebtView(v)
	}
	return out
}

func toPBHistory(h models.History) *pb.HistoryEntry {
	entry := &pb.HistoryEntry{
		ID:        h.ID,
		Action:    string(h.Action),
		Timestamp: h.Timestamp.Unix(),
		Details:   h.Details,
	}
	if h.DebtID != nil {
		entry.DebtID = *h.DebtID
	}
	return entry
}

func toPBPairBalance(p models.PairBalance) *pb.PairBalance {
	return &pb.PairBalance{
		BorrowerID:   p.BorrowerID,
		BorrowerName: p.BorrowerName,
		LenderID:     p.LenderID,
		LenderName:   p.LenderName,
		TotalUnpaid:  p.TotalUnpaid,
		Count:        p.Count,
	}
}
