package debtbookv1

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
)

// LedgerServiceName is the fully-qualified name of the LedgerService service.
const LedgerServiceName = "debtbook.v1.LedgerService"

// Procedure paths, suitable for connect.Request.Spec().Procedure and for
// routing on an http.ServeMux.
const (
	LedgerServiceListPeopleProcedure     = "/debtbook.v1.LedgerService/ListPeople"
	LedgerServiceAddPersonProcedure      = "/debtbook.v1.LedgerService/AddPerson"
	LedgerServiceEditPersonProcedure     = "/debtbook.v1.LedgerService/EditPerson"
	LedgerServiceDeletePersonProcedure   = "/debtbook.v1.LedgerService/DeletePerson"
	LedgerServiceListDebtsProcedure      = "/debtbook.v1.LedgerService/ListDebts"
	LedgerServiceAddDebtProcedure        = "/debtbook.v1.LedgerService/AddDebt"
	LedgerServiceEditDebtProcedure       = "/debtbook.v1.LedgerService/EditDebt"
	LedgerServiceDeleteDebtProcedure     = "/debtbook.v1.LedgerService/DeleteDebt"
	LedgerServiceSplitDebtProcedure      = "/debtbook.v1.LedgerService/SplitDebt"
	LedgerServiceListHistoryProcedure    = "/debtbook.v1.LedgerService/ListHistory"
	LedgerServiceUnpaidSummaryProcedure  = "/debtbook.v1.LedgerService/UnpaidSummary"
	LedgerServiceUnpaidBetweenProcedure  = "/debtbook.v1.LedgerService/UnpaidBetween"
	LedgerServiceUnpaidAllProcedure      = "/debtbook.v1.LedgerService/UnpaidAll"
	LedgerServiceUploadSnapshotProcedure = "/debtbook.v1.LedgerService/UploadSnapshot"
)

// LedgerServiceHandler is implemented by the server.
type LedgerServiceHandler interface {
	ListPeople(context.Context, *connect.Request[ListPeopleRequest]) (*connect.Response[ListPeopleResponse], error)
	AddPerson(context.Context, *connect.Request[AddPersonRequest]) (*connect.Response[PersonResponse], error)
	EditPerson(context.Context, *connect.Request[EditPersonRequest]) (*connect.Response[PersonResponse], error)
	DeletePerson(context.Context, *connect.Request[DeletePersonRequest]) (*connect.Response[PersonResponse], error)
	ListDebts(context.Context, *connect.Request[ListDebtsRequest]) (*connect.Response[ListDebtsResponse], error)
	AddDebt(context.Context, *connect.Request[AddDebtRequest]) (*connect.Response[DebtResponse], error)
	EditDebt(context.Context, *connect.Request[EditDebtRequest]) (*connect.Response[DebtResponse], error)
	DeleteDebt(context.Context, *connect.Request[DeleteDebtRequest]) (*connect.Response[DebtResponse], error)
	SplitDebt(context.Context, *connect.Request[SplitDebtRequest]) (*connect.Response[SplitDebtResponse], error)
	ListHistory(context.Context, *connect.Request[ListHistoryRequest]) (*connect.Response[ListHistoryResponse], error)
	UnpaidSummary(context.Context, *connect.Request[UnpaidSummaryRequest]) (*connect.Response[UnpaidSummaryResponse], error)
	UnpaidBetween(context.Context, *connect.Request[UnpaidBetweenRequest]) (*connect.Response[UnpaidBetweenResponse], error)
	UnpaidAll(context.Context, *connect.Request[UnpaidAllRequest]) (*connect.Response[UnpaidAllResponse], error)
	UploadSnapshot(context.Context, *connect.Request[UploadSnapshotRequest]) (*connect.Response[UploadSnapshotResponse], error)
}

// NewLedgerServiceHandler builds an HTTP handler from the service
// implementation. It returns the path on which to mount the handler and the
// handler itself. The JSON codec is always installed.
func NewLedgerServiceHandler(svc LedgerServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(Codec{})}, opts...)

	handlers := map[string]http.Handler{
		LedgerServiceListPeopleProcedure:     connect.NewUnaryHandler(LedgerServiceListPeopleProcedure, svc.ListPeople, opts...),
		LedgerServiceAddPersonProcedure:      connect.NewUnaryHandler(LedgerServiceAddPersonProcedure, svc.AddPerson, opts...),
		LedgerServiceEditPersonProcedure:     connect.NewUnaryHandler(LedgerServiceEditPersonProcedure, svc.EditPerson, opts...),
		LedgerServiceDeletePersonProcedure:   connect.NewUnaryHandler(LedgerServiceDeletePersonProcedure, svc.DeletePerson, opts...),
		LedgerServiceListDebtsProcedure:      connect.NewUnaryHandler(LedgerServiceListDebtsProcedure, svc.ListDebts, opts...),
		LedgerServiceAddDebtProcedure:        connect.NewUnaryHandler(LedgerServiceAddDebtProcedure, svc.AddDebt, opts...),
		LedgerServiceEditDebtProcedure:       connect.NewUnaryHandler(LedgerServiceEditDebtProcedure, svc.EditDebt, opts...),
		LedgerServiceDeleteDebtProcedure:     connect.NewUnaryHandler(LedgerServiceDeleteDebtProcedure, svc.DeleteDebt, opts...),
		LedgerServiceSplitDebtProcedure:      connect.NewUnaryHandler(LedgerServiceSplitDebtProcedure, svc.SplitDebt, opts...),
		LedgerServiceListHistoryProcedure:    connect.NewUnaryHandler(LedgerServiceListHistoryProcedure, svc.ListHistory, opts...),
		LedgerServiceUnpaidSummaryProcedure:  connect.NewUnaryHandler(LedgerServiceUnpaidSummaryProcedure, svc.UnpaidSummary, opts...),
		LedgerServiceUnpaidBetweenProcedure:  connect.NewUnaryHandler(LedgerServiceUnpaidBetweenProcedure, svc.UnpaidBetween, opts...),
		LedgerServiceUnpaidAllProcedure:      connect.NewUnaryHandler(LedgerServiceUnpaidAllProcedure, svc.UnpaidAll, opts...),
		LedgerServiceUploadSnapshotProcedure: connect.NewUnaryHandler(LedgerServiceUploadSnapshotProcedure, svc.UploadSnapshot, opts...),
	}

	return "/" + LedgerServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h, ok := handlers[r.URL.Path]; ok {
			h.ServeHTTP(w, r)
			return
		}
		http.NotFound(w, r)
	})
}

// LedgerServiceClient is a client for the debtbook.v1.LedgerService service.
type LedgerServiceClient struct {
	listPeople     *connect.Client[ListPeopleRequest, ListPeopleResponse]
	addPerson      *connect.Client[AddPersonRequest, PersonResponse]
	editPerson     *connect.Client[EditPersonRequest, PersonResponse]
	deletePerson   *connect.Client[DeletePersonRequest, PersonResponse]
	listDebts      *connect.Client[ListDebtsRequest, ListDebtsResponse]
	addDebt        *connect.Client[AddDebtRequest, DebtResponse]
	editDebt       *connect.Client[EditDebtRequest, DebtResponse]
	deleteDebt     *connect.Client[DeleteDebtRequest, DebtResponse]
	splitDebt      *connect.Client[SplitDebtRequest, SplitDebtResponse]
	listHistory    *connect.Client[ListHistoryRequest, ListHistoryResponse]
	unpaidSummary  *connect.Client[UnpaidSummaryRequest, UnpaidSummaryResponse]
	unpaidBetween  *connect.Client[UnpaidBetweenRequest, UnpaidBetweenResponse]
	unpaidAll      *connect.Client[UnpaidAllRequest, UnpaidAllResponse]
	uploadSnapshot *connect.Client[UploadSnapshotRequest, UploadSnapshotResponse]
}

// NewLedgerServiceClient constructs a client for the LedgerService served at
// baseURL (for example, http://localhost:8080). The JSON codec is always
// installed.
func NewLedgerServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *LedgerServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(Codec{})}, opts...)
	return &LedgerServiceClient{
		listPeople:     connect.NewClient[ListPeopleRequest, ListPeopleResponse](httpClient, baseURL+LedgerServiceListPeopleProcedure, opts...),
		addPerson:      connect.NewClient[AddPersonRequest, PersonResponse](httpClient, baseURL+LedgerServiceAddPersonProcedure, opts...),
		editPerson:     connect.NewClient[EditPersonRequest, PersonResponse](httpClient, baseURL+LedgerServiceEditPersonProcedure, opts...),
		deletePerson:   connect.NewClient[DeletePersonRequest, PersonResponse](httpClient, baseURL+LedgerServiceDeletePersonProcedure, opts...),
		listDebts:      connect.NewClient[ListDebtsRequest, ListDebtsResponse](httpClient, baseURL+LedgerServiceListDebtsProcedure, opts...),
		addDebt:        connect.NewClient[AddDebtRequest, DebtResponse](httpClient, baseURL+LedgerServiceAddDebtProcedure, opts...),
		editDebt:       connect.NewClient[EditDebtRequest, DebtResponse](httpClient, baseURL+LedgerServiceEditDebtProcedure, opts...),
		deleteDebt:     connect.NewClient[DeleteDebtRequest, DebtResponse](httpClient, baseURL+LedgerServiceDeleteDebtProcedure, opts...),
		splitDebt:      connect.NewClient[SplitDebtRequest, SplitDebtResponse](httpClient, baseURL+LedgerServiceSplitDebtProcedure, opts...),
		listHistory:    connect.NewClient[ListHistoryRequest, ListHistoryResponse](httpClient, baseURL+LedgerServiceListHistoryProcedure, opts...),
		unpaidSummary:  connect.NewClient[UnpaidSummaryRequest, UnpaidSummaryResponse](httpClient, baseURL+LedgerServiceUnpaidSummaryProcedure, opts...),
		unpaidBetween:  connect.NewClient[UnpaidBetweenRequest, UnpaidBetweenResponse](httpClient, baseURL+LedgerServiceUnpaidBetweenProcedure, opts...),
		unpaidAll:      connect.NewClient[UnpaidAllRequest, UnpaidAllResponse](httpClient, baseURL+LedgerServiceUnpaidAllProcedure, opts...),
		uploadSnapshot: connect.NewClient[UploadSnapshotRequest, UploadSnapshotResponse](httpClient, baseURL+LedgerServiceUploadSnapshotProcedure, opts...),
	}
}

func (c *LedgerServiceClient) ListPeople(ctx context.Context, req *connect.Request[ListPeopleRequest]) (*connect.Response[ListPeopleResponse], error) {
	return c.listPeople.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) AddPerson(ctx context.Context, req *connect.Request[AddPersonRequest]) (*connect.Response[PersonResponse], error) {
	return c.addPerson.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) EditPerson(ctx context.Context, req *connect.Request[EditPersonRequest]) (*connect.Response[PersonResponse], error) {
	return c.editPerson.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) DeletePerson(ctx context.Context, req *connect.Request[DeletePersonRequest]) (*connect.Response[PersonResponse], error) {
	return c.deletePerson.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) ListDebts(ctx context.Context, req *connect.Request[ListDebtsRequest]) (*connect.Response[ListDebtsResponse], error) {
	return c.listDebts.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) AddDebt(ctx context.Context, req *connect.Request[AddDebtRequest]) (*connect.Response[DebtResponse], error) {
	return c.addDebt.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) EditDebt(ctx context.Context, req *connect.Request[EditDebtRequest]) (*connect.Response[DebtResponse], error) {
	return c.editDebt.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) DeleteDebt(ctx context.Context, req *connect.Request[DeleteDebtRequest]) (*connect.Response[DebtResponse], error) {
	return c.deleteDebt.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) SplitDebt(ctx context.Context, req *connect.Request[SplitDebtRequest]) (*connect.Response[SplitDebtResponse], error) {
	return c.splitDebt.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) ListHistory(ctx context.Context, req *connect.Request[ListHistoryRequest]) (*connect.Response[ListHistoryResponse], error) {
	return c.listHistory.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) UnpaidSummary(ctx context.Context, req *connect.Request[UnpaidSummaryRequest]) (*connect.Response[UnpaidSummaryResponse], error) {
	return c.unpaidSummary.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) UnpaidBetween(ctx context.Context, req *connect.Request[UnpaidBetweenRequest]) (*connect.Response[UnpaidBetweenResponse], error) {
	return c.unpaidBetween.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) UnpaidAll(ctx context.Context, req *connect.Request[UnpaidAllRequest]) (*connect.Response[UnpaidAllResponse], error) {
	return c.unpaidAll.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) UploadSnapshot(ctx context.Context, req *connect.Request[UploadSnapshotRequest]) (*connect.Response[UploadSnapshotResponse], error) {
	return c.uploadSnapshot.CallUnary(ctx, req)
}
