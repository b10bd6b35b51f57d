package types

// AgentDailyStats is the per-agent daily rollup written alongside call
// records
type AgentDailyStats struct {
	AgentID          string         `json:"agentId" dynamodbav:"AgentID"` // partition key
	Date             string         `json:"date" dynamodbav:"Date"`       // YYYY-MM-DD (sort key)
	CallsHandled     int            `json:"callsHandled" dynamodbav:"CallsHandled"`
	TotalTalkTime    float64        `json:"totalTalkTime" dynamodbav:"TotalTalkTime"` // seconds
	TotalHoldTime    float64        `json:"totalHoldTime" dynamodbav:"TotalHoldTime"`
	TotalWaitTime    float64        `json:"totalWaitTime" dynamodbav:"TotalWaitTime"`
	Dispositions     int            `json:"dispositions" dynamodbav:"Dispositions"`
	ACWExpiries      int            `json:"acwExpiries" dynamodbav:"ACWExpiries"` // countdowns that beat the agent
	CategoryCounts   map[string]int `json:"categoryCounts,omitempty" dynamodbav:"CategoryCounts"`
	SessionStartTime string         `json:"sessionStartTime,omitempty" dynamodbav:"SessionStartTime"` // RFC3339
}
