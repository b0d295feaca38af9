// Package findings normalizes lease analysis responses into a flat list of findings.
//
// The analysis backend has answered in several shapes over time (gateway key_findings,
// raw risk_items, and details.v0.explanation_blocks). Extract accepts any mix of them.
package findings

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// MaxItems caps the number of findings shown to the user.
const MaxItems = 5

const (
	// NoRiskMessage is shown when the scan returned no findings.
	NoRiskMessage = "Initial scan completed. No significant risk items identified in basic review."

	// SummaryFallback replaces a summary that is empty after sanitizing.
	SummaryFallback = "Initial scan completed. Please review the identified clauses below."

	defaultRiskTitle   = "Risk Item"
	defaultRiskMessage = "A potential risk was identified."
)

// Severity is the normalized risk level of a finding.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// Label returns the capitalized severity, e.g. "High".
func (s Severity) Label() string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(string(s[:1])) + string(s[1:])
}

// NormalizeSeverity maps free-form severities onto high, medium or low.
func NormalizeSeverity(raw string) Severity {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "high", "critical":
		return SeverityHigh
	case "low":
		return SeverityLow
	default:
		return SeverityMedium
	}
}

// Finding is a single risk item.
type Finding struct {
	Title    string   `json:"title"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
	Action   string   `json:"action,omitempty"`
	RiskCode string   `json:"risk_code,omitempty"`
}

// Anchor returns the identifier used to attach an explanation to the finding.
func (f Finding) Anchor() string {
	if f.RiskCode == "" {
		return "general"
	}
	return f.RiskCode
}

// Overview is the scan-level summary.
type Overview struct {
	AttentionLevel string `json:"attention_level,omitempty"`
	Summary        string `json:"summary,omitempty"`
}

// Status renders the attention level line, or "" when there is none.
func (o Overview) Status() string {
	if o.AttentionLevel == "" {
		return ""
	}
	return fmt.Sprintf("Scan Status: %s (preliminary)", o.AttentionLevel)
}

// Text returns the ASCII-only summary, falling back when nothing printable is left.
// It returns "" when the response carried no summary at all.
func (o Overview) Text() string {
	if o.Summary == "" {
		return ""
	}
	if s := SanitizeSummary(o.Summary); s != "" {
		return s
	}
	return SummaryFallback
}

// SanitizeSummary strips every non-ASCII rune.
func SanitizeSummary(s string) string {
	return strings.Map(func(r rune) rune {
		if r > 0x7F {
			return -1
		}
		return r
	}, s)
}

// Report is the normalized analysis result.
type Report struct {
	Overview *Overview `json:"overview,omitempty"`
	Findings []Finding `json:"findings"`
}

// Empty reports whether no finding was extracted.
func (r Report) Empty() bool {
	return len(r.Findings) == 0
}

// Extract parses an analysis response body.
// Findings are merged in source order, de-duplicated by title (first wins) and capped at MaxItems.
func Extract(body []byte) Report {
	root := gjson.ParseBytes(body)

	var rep Report
	if ov := root.Get("overview"); ov.IsObject() {
		rep.Overview = &Overview{
			AttentionLevel: ov.Get("attention_level").String(),
			Summary:        ov.Get("summary").String(),
		}
	}

	var all []Finding
	if kf := root.Get("key_findings"); kf.IsArray() {
		kf.ForEach(func(_, item gjson.Result) bool {
			title, message := item.Get("title").String(), item.Get("message").String()
			if title == "" || message == "" {
				return true
			}
			all = append(all, Finding{
				Title:    title,
				Message:  message,
				Severity: NormalizeSeverity(first(item, "severity", "intensity")),
				Action:   item.Get("user_action").String(),
				RiskCode: item.Get("risk_code").String(),
			})
			return true
		})
	}

	if ri := root.Get("risk_items"); ri.IsArray() {
		ri.ForEach(func(_, item gjson.Result) bool {
			title := first(item, "description", "risk_code")
			if title == "" {
				title = defaultRiskTitle
			}
			message := item.Get("description").String()
			if message == "" {
				message = defaultRiskMessage
			}
			all = append(all, Finding{
				Title:    title,
				Message:  message,
				Severity: NormalizeSeverity(item.Get("severity").String()),
				RiskCode: item.Get("risk_code").String(),
			})
			return true
		})
	}

	if eb := root.Get("details.v0.explanation_blocks"); eb.IsArray() {
		eb.ForEach(func(_, block gjson.Result) bool {
			all = append(all, Finding{
				Title:    block.Get("title").String(),
				Message:  block.Get("message").String(),
				Severity: NormalizeSeverity(block.Get("severity").String()),
				Action:   block.Get("user_action").String(),
				RiskCode: block.Get("risk_code").String(),
			})
			return true
		})
	}

	rep.Findings = dedupe(all)
	return rep
}

// first returns the first non-empty string among keys.
func first(r gjson.Result, keys ...string) string {
	for _, k := range keys {
		if v := r.Get(k); v.Exists() && v.String() != "" {
			return v.String()
		}
	}
	return ""
}

func dedupe(in []Finding) []Finding {
	seen := make(map[string]bool, len(in))
	out := make([]Finding, 0, min(len(in), MaxItems))
	for _, f := range in {
		if seen[f.Title] {
			continue
		}
		seen[f.Title] = true
		out = append(out, f)
		if len(out) == MaxItems {
			break
		}
	}
	return out
}
