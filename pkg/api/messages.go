// Package api defines the wire messages and Connect bindings of the Vikoba
// RPC services. Timestamps are Unix seconds; amounts are minor currency units.
package api

type Member struct {
	Id       string `json:"id"`
	Name     string `json:"name,omitempty"`
	JoinedAt int64  `json:"joinedAt,omitempty"`
	Position int    `json:"position"`
}

type Group struct {
	Id                  string   `json:"id"`
	Name                string   `json:"name"`
	Members             []Member `json:"members"`
	MonthlyContribution int64    `json:"monthlyContribution"`
	TotalCycles         int      `json:"totalCycles"`
	CurrentCycle        int      `json:"currentCycle"`
	Status              string   `json:"status"`
	StartDate           int64    `json:"startDate,omitempty"`
	CreatedAt           int64    `json:"createdAt"`
}

type Contribution struct {
	GroupId  string `json:"groupId"`
	MemberId string `json:"memberId"`
	Cycle    int    `json:"cycle"`
	Paid     bool   `json:"paid"`
	Amount   int64  `json:"amount"`
	PaidAt   int64  `json:"paidAt,omitempty"`
}

type Payout struct {
	Id          string `json:"id"`
	GroupId     string `json:"groupId"`
	Cycle       int    `json:"cycle"`
	RecipientId string `json:"recipientId"`
	Amount      int64  `json:"amount"`
	Collected   int64  `json:"collected"`
	Forced      bool   `json:"forced,omitempty"`
	PaidAt      int64  `json:"paidAt"`
}

type MemberContribution struct {
	MemberId string `json:"memberId"`
	Name     string `json:"name,omitempty"`
	Position int    `json:"position"`
	Paid     bool   `json:"paid"`
	Amount   int64  `json:"amount,omitempty"`
}

type NewMember struct {
	Id       string `json:"id,omitempty"`
	Name     string `json:"name"`
	JoinedAt int64  `json:"joinedAt,omitempty"`
}

type CreateGroupRequest struct {
	Name                string      `json:"name"`
	Members             []NewMember `json:"members"`
	MonthlyContribution int64       `json:"monthlyContribution"`
	TotalCycles         int         `json:"totalCycles"`
	StartDate           int64       `json:"startDate,omitempty"`
}

type CreateGroupResponse struct {
	Group *Group `json:"group"`
}

type GetGroupRequest struct {
	GroupId string `json:"groupId"`
}

type GetGroupResponse struct {
	Group *Group `json:"group"`
}

type ListGroupsResponse struct {
	Groups []*Group `json:"groups"`
}

type RecordContributionRequest struct {
	GroupId  string `json:"groupId"`
	MemberId string `json:"memberId"`
	Amount   int64  `json:"amount"`
	Cycle    int    `json:"cycle"`
}

type RecordContributionResponse struct {
	Contribution *Contribution `json:"contribution"`
	GroupStatus  string        `json:"groupStatus"`
	Recorded     bool          `json:"recorded"`
}

type ProcessPayoutRequest struct {
	GroupId string `json:"groupId"`
}

type ProcessPayoutResponse struct {
	Payout *Payout `json:"payout"`
}

type SkipCycleRequest struct {
	GroupId string `json:"groupId"`
}

type SkipCycleResponse struct {
	Group *Group `json:"group"`
}

type GetStatusRequest struct {
	GroupId string `json:"groupId"`
}

type GetStatusResponse struct {
	GroupId       string               `json:"groupId"`
	Status        string               `json:"status"`
	CurrentCycle  int                  `json:"currentCycle"`
	TotalCycles   int                  `json:"totalCycles"`
	Recipient     *Member              `json:"recipient,omitempty"`
	PotAmount     int64                `json:"potAmount"`
	Collected     int64                `json:"collected"`
	NextPayoutDue int64                `json:"nextPayoutDue,omitempty"`
	Contributions []MemberContribution `json:"contributions"`
}

type GetCurrentRecipientRequest struct {
	GroupId string `json:"groupId"`
}

type GetCurrentRecipientResponse struct {
	Recipient *Member `json:"recipient"`
	Cycle     int     `json:"cycle"`
}

type ListPayoutsRequest struct {
	GroupId string `json:"groupId"`
}

type ListPayoutsResponse struct {
	Payouts []*Payout `json:"payouts"`
}
