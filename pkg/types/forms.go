package types

// IntakeForm is the public submission payload, decoded from the multipart
// form fields with go-playground/form. Website, URL and Homepage are honeypot
// fields: invisible to humans, so any value means an automated sender.
type IntakeForm struct {
	ClientName  string `form:"clientName"`
	ClientEmail string `form:"clientEmail"`
	ClientPhone string `form:"clientPhone"`
	CompanyName string `form:"companyName"`

	ProblemDescription string `form:"problemDescription"`
	CurrentSituation   string `form:"currentSituation"`
	DesiredSolution    string `form:"desiredSolution"`
	KnownAppReferences string `form:"knownAppReferences"`

	BudgetMin          string `form:"budgetMin"`
	BudgetMax          string `form:"budgetMax"`
	DeadlinePreference string `form:"deadlinePreference"`
	Priority           string `form:"priority"`
	Language           string `form:"language"`

	Website  string `form:"website"`
	URL      string `form:"url"`
	Homepage string `form:"homepage"`
}

func (f IntakeForm) HoneypotTripped() bool {
	return f.Website != "" || f.URL != "" || f.Homepage != ""
}
