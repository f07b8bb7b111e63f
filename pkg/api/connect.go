package api

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/emptypb"
)

const (
	// GroupServiceName is the fully-qualified name of the GroupService service.
	GroupServiceName = "vikoba.v1.GroupService"
	// PayoutServiceName is the fully-qualified name of the PayoutService service.
	PayoutServiceName = "vikoba.v1.PayoutService"
)

const (
	GroupServiceCreateGroupProcedure = "/vikoba.v1.GroupService/CreateGroup"
	GroupServiceGetGroupProcedure    = "/vikoba.v1.GroupService/GetGroup"
	GroupServiceListGroupsProcedure  = "/vikoba.v1.GroupService/ListGroups"

	PayoutServiceRecordContributionProcedure  = "/vikoba.v1.PayoutService/RecordContribution"
	PayoutServiceProcessPayoutProcedure       = "/vikoba.v1.PayoutService/ProcessPayout"
	PayoutServiceSkipCycleProcedure           = "/vikoba.v1.PayoutService/SkipCycle"
	PayoutServiceGetStatusProcedure           = "/vikoba.v1.PayoutService/GetStatus"
	PayoutServiceGetCurrentRecipientProcedure = "/vikoba.v1.PayoutService/GetCurrentRecipient"
	PayoutServiceListPayoutsProcedure         = "/vikoba.v1.PayoutService/ListPayouts"
)

// GroupServiceHandler is implemented by the group service.
type GroupServiceHandler interface {
	CreateGroup(context.Context, *connect.Request[CreateGroupRequest]) (*connect.Response[CreateGroupResponse], error)
	GetGroup(context.Context, *connect.Request[GetGroupRequest]) (*connect.Response[GetGroupResponse], error)
	ListGroups(context.Context, *connect.Request[emptypb.Empty]) (*connect.Response[ListGroupsResponse], error)
}

// PayoutServiceHandler is implemented by the payout service.
type PayoutServiceHandler interface {
	RecordContribution(context.Context, *connect.Request[RecordContributionRequest]) (*connect.Response[RecordContributionResponse], error)
	ProcessPayout(context.Context, *connect.Request[ProcessPayoutRequest]) (*connect.Response[ProcessPayoutResponse], error)
	SkipCycle(context.Context, *connect.Request[SkipCycleRequest]) (*connect.Response[SkipCycleResponse], error)
	GetStatus(context.Context, *connect.Request[GetStatusRequest]) (*connect.Response[GetStatusResponse], error)
	GetCurrentRecipient(context.Context, *connect.Request[GetCurrentRecipientRequest]) (*connect.Response[GetCurrentRecipientResponse], error)
	ListPayouts(context.Context, *connect.Request[ListPayoutsRequest]) (*connect.Response[ListPayoutsResponse], error)
}

func withCodec(opts []connect.HandlerOption) []connect.HandlerOption {
	return append([]connect.HandlerOption{connect.WithCodec(JSONCodec{})}, opts...)
}

func route(procedures map[string]http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h, ok := procedures[r.URL.Path]; ok {
			h.ServeHTTP(w, r)
			return
		}
		http.NotFound(w, r)
	})
}

// NewGroupServiceHandler builds an HTTP handler from the service
// implementation. It returns the path on which to mount the handler and the
// handler itself.
func NewGroupServiceHandler(svc GroupServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = withCodec(opts)
	return "/" + GroupServiceName + "/", route(map[string]http.Handler{
		GroupServiceCreateGroupProcedure: connect.NewUnaryHandler(GroupServiceCreateGroupProcedure, svc.CreateGroup, opts...),
		GroupServiceGetGroupProcedure:    connect.NewUnaryHandler(GroupServiceGetGroupProcedure, svc.GetGroup, opts...),
		GroupServiceListGroupsProcedure:  connect.NewUnaryHandler(GroupServiceListGroupsProcedure, svc.ListGroups, opts...),
	})
}

// NewPayoutServiceHandler builds an HTTP handler from the service
// implementation.
func NewPayoutServiceHandler(svc PayoutServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = withCodec(opts)
	return "/" + PayoutServiceName + "/", route(map[string]http.Handler{
		PayoutServiceRecordContributionProcedure:  connect.NewUnaryHandler(PayoutServiceRecordContributionProcedure, svc.RecordContribution, opts...),
		PayoutServiceProcessPayoutProcedure:       connect.NewUnaryHandler(PayoutServiceProcessPayoutProcedure, svc.ProcessPayout, opts...),
		PayoutServiceSkipCycleProcedure:           connect.NewUnaryHandler(PayoutServiceSkipCycleProcedure, svc.SkipCycle, opts...),
		PayoutServiceGetStatusProcedure:           connect.NewUnaryHandler(PayoutServiceGetStatusProcedure, svc.GetStatus, opts...),
		PayoutServiceGetCurrentRecipientProcedure: connect.NewUnaryHandler(PayoutServiceGetCurrentRecipientProcedure, svc.GetCurrentRecipient, opts...),
		PayoutServiceListPayoutsProcedure:         connect.NewUnaryHandler(PayoutServiceListPayoutsProcedure, svc.ListPayouts, opts...),
	})
}

func clientOptions(opts []connect.ClientOption) []connect.ClientOption {
	return append([]connect.ClientOption{connect.WithCodec(JSONCodec{})}, opts...)
}

// GroupServiceClient is a client for the vikoba.v1.GroupService service.
type GroupServiceClient struct {
	createGroup *connect.Client[CreateGroupRequest, CreateGroupResponse]
	getGroup    *connect.Client[GetGroupRequest, GetGroupResponse]
	listGroups  *connect.Client[emptypb.Empty, ListGroupsResponse]
}

// NewGroupServiceClient constructs a client for the GroupService. baseURL
// is the scheme and host, e.g. http://localhost:8080.
func NewGroupServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *GroupServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientOptions(opts)
	return &GroupServiceClient{
		createGroup: connect.NewClient[CreateGroupRequest, CreateGroupResponse](httpClient, baseURL+GroupServiceCreateGroupProcedure, opts...),
		getGroup:    connect.NewClient[GetGroupRequest, GetGroupResponse](httpClient, baseURL+GroupServiceGetGroupProcedure, opts...),
		listGroups:  connect.NewClient[emptypb.Empty, ListGroupsResponse](httpClient, baseURL+GroupServiceListGroupsProcedure, opts...),
	}
}

func (c *GroupServiceClient) CreateGroup(ctx context.Context, req *connect.Request[CreateGroupRequest]) (*connect.Response[CreateGroupResponse], error) {
	return c.createGroup.CallUnary(ctx, req)
}

func (c *GroupServiceClient) GetGroup(ctx context.Context, req *connect.Request[GetGroupRequest]) (*connect.Response[GetGroupResponse], error) {
	return c.getGroup.CallUnary(ctx, req)
}

func (c *GroupServiceClient) ListGroups(ctx context.Context, req *connect.Request[emptypb.Empty]) (*connect.Response[ListGroupsResponse], error) {
	return c.listGroups.CallUnary(ctx, req)
}

// PayoutServiceClient is a client for the vikoba.v1.PayoutService service.
type PayoutServiceClient struct {
	recordContribution  *connect.Client[RecordContributionRequest, RecordContributionResponse]
	processPayout       *connect.Client[ProcessPayoutRequest, ProcessPayoutResponse]
	skipCycle           *connect.Client[SkipCycleRequest, SkipCycleResponse]
	getStatus           *connect.Client[GetStatusRequest, GetStatusResponse]
	getCurrentRecipient *connect.Client[GetCurrentRecipientRequest, GetCurrentRecipientResponse]
	listPayouts         *connect.Client[ListPayoutsRequest, ListPayoutsResponse]
}

// NewPayoutServiceClient constructs a client for the PayoutService.
func NewPayoutServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *PayoutServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientOptions(opts)
	return &PayoutServiceClient{
		recordContribution:  connect.NewClient[RecordContributionRequest, RecordContributionResponse](httpClient, baseURL+PayoutServiceRecordContributionProcedure, opts...),
		processPayout:       connect.NewClient[ProcessPayoutRequest, ProcessPayoutResponse](httpClient, baseURL+PayoutServiceProcessPayoutProcedure, opts...),
		skipCycle:           connect.NewClient[SkipCycleRequest, SkipCycleResponse](httpClient, baseURL+PayoutServiceSkipCycleProcedure, opts...),
		getStatus:           connect.NewClient[GetStatusRequest, GetStatusResponse](httpClient, baseURL+PayoutServiceGetStatusProcedure, opts...),
		getCurrentRecipient: connect.NewClient[GetCurrentRecipientRequest, GetCurrentRecipientResponse](httpClient, baseURL+PayoutServiceGetCurrentRecipientProcedure, opts...),
		listPayouts:         connect.NewClient[ListPayoutsRequest, ListPayoutsResponse](httpClient, baseURL+PayoutServiceListPayoutsProcedure, opts...),
	}
}

func (c *PayoutServiceClient) RecordContribution(ctx context.Context, req *connect.Request[RecordContributionRequest]) (*connect.Response[RecordContributionResponse], error) {
	return c.recordContribution.CallUnary(ctx, req)
}

func (c *PayoutServiceClient) ProcessPayout(ctx context.Context, req *connect.Request[ProcessPayoutRequest]) (*connect.Response[ProcessPayoutResponse], error) {
	return c.processPayout.CallUnary(ctx, req)
}

func (c *PayoutServiceClient) SkipCycle(ctx context.Context, req *connect.Request[SkipCycleRequest]) (*connect.Response[SkipCycleResponse], error) {
	return c.skipCycle.CallUnary(ctx, req)
}

func (c *PayoutServiceClient) GetStatus(ctx context.Context, req *connect.Request[GetStatusRequest]) (*connect.Response[GetStatusResponse], error) {
	return c.getStatus.CallUnary(ctx, req)
}

func (c *PayoutServiceClient) GetCurrentRecipient(ctx context.Context, req *connect.Request[GetCurrentRecipientRequest]) (*connect.Response[GetCurrentRecipientResponse], error) {
	return c.getCurrentRecipient.CallUnary(ctx, req)
}

func (c *PayoutServiceClient) ListPayouts(ctx context.Context, req *connect.Request[ListPayoutsRequest]) (*connect.Response[ListPayoutsResponse], error) {
	return c.listPayouts.CallUnary(ctx, req)
}
