package metrics

const Namespace = "finance_dashboard"

const (
	ResultSuccess  = "success"
	ResultRejected = "rejected"
	ResultError    = "error"
)

const (
	GuardDecisionContinue = "continue"
	GuardDecisionRedirect = "redirect"
)

const (
	LoadUserDetail = "user_detail"
	LoadUserGroups = "user_groups"
)
