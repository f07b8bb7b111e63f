package service

import (
	"time"

	"github.com/mmynk/vikoba/internal/engine"
	"github.com/mmynk/vikoba/internal/models"
	"github.com/mmynk/vikoba/pkg/api"
)

func unix(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}

func fromUnix(sec int64) time.Time {
	if sec == 0 {
		return time.Time{}
	}
	return time.Unix(sec, 0).UTC()
}

func toAPIMember(m models.Member) *api.Member {
	return &api.Member{
		Id:       m.ID,
		Name:     m.Name,
		JoinedAt: unix(m.JoinedAt),
		Position: m.Position,
	}
}

func toAPIGroup(g *models.Group) *api.Group {
	members := make([]api.Member, len(g.Members))
	for i, m := range g.Members {
		members[i] = *toAPIMember(m)
	}
	return &api.Group{
		Id:                  g.ID,
		Name:                g.Name,
		Members:             members,
		MonthlyContribution: g.MonthlyContribution,
		TotalCycles:         g.TotalCycles,
		CurrentCycle:        g.CurrentCycle,
		Status:              string(g.Status),
		StartDate:           unix(g.StartDate),
		CreatedAt:           g.CreatedAt,
	}
}

func toAPIPayout(p models.Payout) *api.Payout {
	return &api.Payout{
		Id:          p.ID,
		GroupId:     p.GroupID,
		Cycle:       p.Cycle,
		RecipientId: p.RecipientID,
		Amount:      p.Amount,
		Collected:   p.Collected,
		Forced:      p.Forced,
		PaidAt:      unix(p.PaidAt),
	}
}

func toAPIContribution(c models.Contribution) *api.Contribution {
	return &api.Contribution{
		GroupId:  c.GroupID,
		MemberId: c.MemberID,
		Cycle:    c.Cycle,
		Paid:     c.Paid,
		Amount:   c.Amount,
		PaidAt:   unix(c.PaidAt),
	}
}

func toAPIStatus(r *engine.StatusReport) *api.GetStatusResponse {
	resp := &api.GetStatusResponse{
		GroupId:       r.Group.ID,
		Status:        string(r.Status),
		CurrentCycle:  r.Group.CurrentCycle,
		TotalCycles:   r.Group.TotalCycles,
		PotAmount:     r.PotAmount,
		Collected:     r.Collected,
		NextPayoutDue: unix(r.NextPayoutDue),
		Contributions: make([]api.MemberContribution, len(r.Contributions)),
	}
	if r.Recipient != nil {
		resp.Recipient = toAPIMember(*r.Recipient)
	}
	for i, c := range r.Contributions {
		resp.Contributions[i] = api.MemberContribution{
			MemberId: c.Member.ID,
			Name:     c.Member.Name,
			Position: c.Member.Position,
			Paid:     c.Paid,
			Amount:   c.Amount,
		}
	}
	return resp
}
