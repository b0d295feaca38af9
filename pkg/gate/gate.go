// Package gate decides whether a visitor may run a lease analysis and which
// page features their plan unlocks.
package gate

import (
	"strings"
	"unicode/utf8"
)

// MinTextLength is the shortest lease text worth analyzing, in characters.
const MinTextLength = 50

// Reason identifies why an analysis was refused.
type Reason string

const (
	ReasonNone            Reason = ""
	ReasonEmptyText       Reason = "empty_text"
	ReasonTextTooShort    Reason = "text_too_short"
	ReasonLoginRequired   Reason = "login_required"
	ReasonUpgradeRequired Reason = "upgrade_required"
)

var messages = map[Reason]string{
	ReasonEmptyText:       "Please paste your lease agreement text before analyzing.",
	ReasonTextTooShort:    "Please provide a longer lease agreement text (at least 50 characters).",
	ReasonLoginRequired:   "Please login first to analyze your lease agreement.",
	ReasonUpgradeRequired: "Please upgrade to a paid plan to use this feature.",
}

// User is the signed-in visitor. A nil *User means signed out.
type User struct {
	ID    string `json:"id,omitempty"`
	Email string `json:"email"`
	Paid  bool   `json:"paid"`
}

// Decision is the outcome of a gate check.
type Decision struct {
	Allowed bool   `json:"allowed"`
	Reason  Reason `json:"reason,omitempty"`
	Message string `json:"message,omitempty"`
	// ShowLogin asks the page to open the login section.
	ShowLogin bool `json:"show_login,omitempty"`
}

func deny(r Reason) Decision {
	return Decision{Reason: r, Message: messages[r], ShowLogin: r == ReasonLoginRequired}
}

// EvaluateAnalyze checks, in order, the text, the login and the plan.
// Text is trimmed before measuring.
func EvaluateAnalyze(text string, user *User) Decision {
	text = strings.TrimSpace(text)
	switch {
	case text == "":
		return deny(ReasonEmptyText)
	case utf8.RuneCountInString(text) < MinTextLength:
		return deny(ReasonTextTooShort)
	case user == nil:
		return deny(ReasonLoginRequired)
	case !user.Paid:
		return deny(ReasonUpgradeRequired)
	}
	return Decision{Allowed: true}
}

// Features describes what the page shows for a visitor.
type Features struct {
	ShowLoginButton bool `json:"show_login_button"`
	ShowUpgradeCTA  bool `json:"show_upgrade_cta"`
	Advanced        bool `json:"advanced"`
}

// FeaturesFor derives page features from the visitor.
func FeaturesFor(user *User) Features {
	if user == nil {
		return Features{ShowLoginButton: true}
	}
	return Features{
		ShowUpgradeCTA: !user.Paid,
		Advanced:       user.Paid,
	}
}
