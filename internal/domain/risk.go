package domain

// ScopeGlobal is the scope value of the run-wide risk report. Any other
// scope value is a contact identity.
const ScopeGlobal = "global"

// RiskFactor is one named, explained contribution to a risk score.
type RiskFactor struct {
	Name         string  `json:"name"`
	Contribution float64 `json:"contribution"`
	Explanation  string  `json:"explanation"`
}

// RiskReport is the scored output of the risk scorer for one scope.
// Score is bounded to [0,100]; Factors lists the nonzero contributions in
// fixed factor order.
type RiskReport struct {
	Scope   string       `json:"scope"`
	Score   float64      `json:"score"`
	Factors []RiskFactor `json:"factors"`
}
