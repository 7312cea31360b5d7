package usecase

import (
	"strings"
	"time"

	directorydomain "slatrack-backend/internal/directory/domain"
	"slatrack-backend/internal/tracking/domain"
)

// ClassifierRules holds the configured routing rules: the shared mailbox
// address, the company mail domain and the exclusion lists.
type ClassifierRules struct {
	TeamAddress           string
	CompanyDomain         string
	SystemSenders         []string
	SystemSubjectKeywords []string
	SolverSubjectKeywords []string
	SLATargetMinutes      int
}

// ClassifierInput is the raw material of one inbound email.
type ClassifierInput struct {
	From           string
	Recipients     []string
	Subject        string
	BodyPreview    string
	HasAttachments bool
	ReceivedAt     time.Time
}

// Classification is the routing decision for one inbound email.
type Classification struct {
	Scenario            domain.Scenario
	EmployeeEmail       string
	TaggedEmployeeEmail string
	SLATargetMinutes    int
	SLAExempt           bool
}

// Classify maps one inbound email to a routing scenario and a candidate
// responsible employee. Exclusion checks run first and short-circuit:
// exempt emails never reach the matcher. Employees must be given in a
// defined order (directory order, name ascending); the first whose name
// appears in the subject or body wins.
func Classify(in ClassifierInput, rules ClassifierRules, employees []*directorydomain.Employee, active *directorydomain.TeamAssignment) Classification {
	if isSystemEmail(in.From, in.Subject, rules) {
		return Classification{Scenario: domain.ScenarioSystemExcluded, SLAExempt: true}
	}
	if isSolverEmail(in.Subject, in.HasAttachments, rules) {
		return Classification{Scenario: domain.ScenarioSolverExcluded, SLAExempt: true}
	}

	if recipientsInclude(in.Recipients, rules.TeamAddress) {
		if tagged := detectTaggedEmployee(in.Subject, in.BodyPreview, employees); tagged != "" {
			return Classification{
				Scenario:            domain.ScenarioTeamTaggedPerson,
				EmployeeEmail:       tagged,
				TaggedEmployeeEmail: tagged,
				SLATargetMinutes:    rules.SLATargetMinutes,
			}
		}
		if active != nil {
			return Classification{
				Scenario:         domain.ScenarioTeamAssigned,
				EmployeeEmail:    active.EmployeeEmail,
				SLATargetMinutes: rules.SLATargetMinutes,
			}
		}
		return Classification{
			Scenario:         domain.ScenarioTeamUnassigned,
			SLATargetMinutes: rules.SLATargetMinutes,
		}
	}

	return Classification{
		Scenario:         domain.ScenarioDirectPersonal,
		EmployeeEmail:    companyRecipient(in.Recipients, rules.CompanyDomain),
		SLATargetMinutes: rules.SLATargetMinutes,
	}
}

func isSystemEmail(from, subject string, rules ClassifierRules) bool {
	sender := strings.ToLower(strings.TrimSpace(from))
	for _, s := range rules.SystemSenders {
		if sender == strings.ToLower(s) {
			return true
		}
	}
	return containsAnyKeyword(subject, rules.SystemSubjectKeywords)
}

func isSolverEmail(subject string, hasAttachments bool, rules ClassifierRules) bool {
	if !hasAttachments {
		return false
	}
	if strings.TrimSpace(subject) == "" {
		return true
	}
	return containsAnyKeyword(subject, rules.SolverSubjectKeywords)
}

// containsAnyKeyword is plain case-insensitive substring containment,
// not word-boundary matching.
func containsAnyKeyword(text string, keywords []string) bool {
	if text == "" {
		return false
	}
	lower := strings.ToLower(text)
	for _, kw := range keywords {
		if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// detectTaggedEmployee scans subject and body for an employee name.
// First textual match in directory order wins.
func detectTaggedEmployee(subject, bodyPreview string, employees []*directorydomain.Employee) string {
	text := strings.ToLower(subject + " " + bodyPreview)
	for _, e := range employees {
		name := strings.ToLower(strings.TrimSpace(e.Name))
		if name != "" && strings.Contains(text, name) {
			return e.Email
		}
	}
	return ""
}

func recipientsInclude(recipients []string, address string) bool {
	for _, r := range recipients {
		if strings.EqualFold(strings.TrimSpace(r), address) {
			return true
		}
	}
	return false
}

// companyRecipient picks the addressed personal mailbox: the first
// recipient on the company domain.
func companyRecipient(recipients []string, companyDomain string) string {
	suffix := "@" + strings.ToLower(companyDomain)
	for _, r := range recipients {
		addr := strings.ToLower(strings.TrimSpace(r))
		if strings.HasSuffix(addr, suffix) {
			return addr
		}
	}
	return ""
}
