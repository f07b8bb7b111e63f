package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/vikoba/internal/engine"
	"github.com/mmynk/vikoba/internal/middleware"
	"github.com/mmynk/vikoba/pkg/api"
)

var _ api.PayoutServiceHandler = (*PayoutService)(nil)

// PayoutService implements the Connect PayoutService. The actor's role comes
// from the request context populated by middleware.RoleInterceptor.
type PayoutService struct {
	engine *engine.Engine
}

// NewPayoutService creates a new PayoutService backed by the engine.
func NewPayoutService(e *engine.Engine) *PayoutService {
	return &PayoutService{engine: e}
}

// RecordContribution marks a member as paid for the current cycle.
func (s *PayoutService) RecordContribution(ctx context.Context, req *connect.Request[api.RecordContributionRequest]) (*connect.Response[api.RecordContributionResponse], error) {
	slog.Info("RecordContribution request received",
		"group_id", req.Msg.GroupId,
		"member_id", req.Msg.MemberId,
		"cycle", req.Msg.Cycle,
	)

	result, err := s.engine.RecordContribution(ctx, req.Msg.GroupId, req.Msg.MemberId, req.Msg.Amount, req.Msg.Cycle)
	if err != nil {
		slog.Warn("RecordContribution rejected", "group_id", req.Msg.GroupId, "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.RecordContributionResponse{
		Contribution: toAPIContribution(result.Contribution),
		GroupStatus:  string(result.GroupStatus),
		Recorded:     result.Recorded,
	}), nil
}

// ProcessPayout pays the current recipient. Admins may force it while the
// group is still waiting.
func (s *PayoutService) ProcessPayout(ctx context.Context, req *connect.Request[api.ProcessPayoutRequest]) (*connect.Response[api.ProcessPayoutResponse], error) {
	role := middleware.GetRole(ctx)
	slog.Info("ProcessPayout request received", "group_id", req.Msg.GroupId, "role", role)

	payout, err := s.engine.ProcessPayout(ctx, req.Msg.GroupId, role)
	if err != nil {
		slog.Warn("ProcessPayout rejected", "group_id", req.Msg.GroupId, "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.ProcessPayoutResponse{Payout: toAPIPayout(*payout)}), nil
}

// SkipCycle advances a waiting group without a payout. Admin only.
func (s *PayoutService) SkipCycle(ctx context.Context, req *connect.Request[api.SkipCycleRequest]) (*connect.Response[api.SkipCycleResponse], error) {
	role := middleware.GetRole(ctx)
	slog.Info("SkipCycle request received", "group_id", req.Msg.GroupId, "role", role)

	group, err := s.engine.SkipCycle(ctx, req.Msg.GroupId, role)
	if err != nil {
		slog.Warn("SkipCycle rejected", "group_id", req.Msg.GroupId, "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.SkipCycleResponse{Group: toAPIGroup(group)}), nil
}

// GetStatus reports the current cycle and per-member payment state.
func (s *PayoutService) GetStatus(ctx context.Context, req *connect.Request[api.GetStatusRequest]) (*connect.Response[api.GetStatusResponse], error) {
	report, err := s.engine.Status(ctx, req.Msg.GroupId)
	if err != nil {
		slog.Error("GetStatus failed", "group_id", req.Msg.GroupId, "error", err)
		return nil, toConnectError(err)
	}
	return connect.NewResponse(toAPIStatus(report)), nil
}

// GetCurrentRecipient returns the member due to be paid this cycle.
func (s *PayoutService) GetCurrentRecipient(ctx context.Context, req *connect.Request[api.GetCurrentRecipientRequest]) (*connect.Response[api.GetCurrentRecipientResponse], error) {
	group, err := s.engine.GetGroup(ctx, req.Msg.GroupId)
	if err != nil {
		return nil, toConnectError(err)
	}
	member, err := s.engine.CurrentRecipient(ctx, req.Msg.GroupId)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.GetCurrentRecipientResponse{
		Recipient: toAPIMember(member),
		Cycle:     group.CurrentCycle,
	}), nil
}

// ListPayouts returns the payout history ordered by cycle.
func (s *PayoutService) ListPayouts(ctx context.Context, req *connect.Request[api.ListPayoutsRequest]) (*connect.Response[api.ListPayoutsResponse], error) {
	payouts, err := s.engine.PayoutHistory(ctx, req.Msg.GroupId)
	if err != nil {
		slog.Error("ListPayouts failed", "group_id", req.Msg.GroupId, "error", err)
		return nil, toConnectError(err)
	}

	apiPayouts := make([]*api.Payout, len(payouts))
	for i, p := range payouts {
		apiPayouts[i] = toAPIPayout(p)
	}

	slog.Info("ListPayouts successful", "group_id", req.Msg.GroupId, "count", len(payouts))

	return connect.NewResponse(&api.ListPayoutsResponse{Payouts: apiPayouts}), nil
}
