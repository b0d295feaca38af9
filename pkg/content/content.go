// Package content resolves the explanation copy shown for each disclosure item.
//
// The upstream analysis API delivers a flat content object. Any field that is absent or
// falsy is replaced by a configured fallback so the rendered page is never blank.
package content

import (
	"fmt"
	"strings"

	"github.com/aretw0/unveil/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

// EscapeWindow carries the conditions under which the lease can be exited cheaply.
type EscapeWindow struct {
	Conditions string `json:"conditions" yaml:"conditions" mapstructure:"conditions"`
}

// Content is the content object as delivered by the analysis API.
type Content struct {
	EscapeWindow *EscapeWindow `json:"escape_window,omitempty" yaml:"escape_window,omitempty" mapstructure:"escape_window"`
	Headline     string        `json:"headline,omitempty" yaml:"headline,omitempty" mapstructure:"headline"`
	CoreLogic    string        `json:"core_logic,omitempty" yaml:"core_logic,omitempty" mapstructure:"core_logic"`
	UserActions  []string      `json:"user_actions,omitempty" yaml:"user_actions,omitempty" mapstructure:"user_actions"`
}

// Fallback is the static copy substituted for missing fields.
type Fallback struct {
	EscapeWindow string   `json:"escape_window" yaml:"escape_window" mapstructure:"escape_window"`
	Headline     string   `json:"headline" yaml:"headline" mapstructure:"headline"`
	CoreLogic    string   `json:"core_logic" yaml:"core_logic" mapstructure:"core_logic"`
	UserActions  []string `json:"user_actions" yaml:"user_actions" mapstructure:"user_actions"`
}

// DefaultFallback returns the copy used when the host configures none.
func DefaultFallback() Fallback {
	return Fallback{
		EscapeWindow: "If you cancel before the specified date, it won't automatically renew; if you miss that date, the contract will continue automatically.",
		Headline:     "If you miss a specific time point, the cost of exiting later will increase.",
		CoreLogic:    "If you miss a specific time window, the contract will automatically renew, and by then canceling will cost more than it does now.",
		UserActions: []string{
			"Note the deadline for making a decision and set a reminder",
			"Consider whether to continue before the deadline",
			"Find out what the cost would be if you miss the cancellation window",
		},
	}
}

// Field names reported in Resolved.Substituted.
const (
	FieldEscapeWindow = "escape_window"
	FieldHeadline     = "headline"
	FieldCoreLogic    = "core_logic"
	FieldUserActions  = "user_actions"
)

// Resolved is the display model: every field is populated.
type Resolved struct {
	EscapeWindow string   `json:"escape_window"`
	Headline     string   `json:"headline"`
	CoreLogic    string   `json:"core_logic"`
	UserActions  []string `json:"user_actions"`

	// Substituted lists the fields that were replaced by fallback copy.
	Substituted []string `json:"substituted,omitempty"`
}

// Resolve applies the fallback to every absent or blank field of c.
func Resolve(c Content, fb Fallback) Resolved {
	var r Resolved

	pick := func(field, value, fallback string) string {
		if strings.TrimSpace(value) != "" {
			return value
		}
		r.Substituted = append(r.Substituted, field)
		return fallback
	}

	conditions := ""
	if c.EscapeWindow != nil {
		conditions = c.EscapeWindow.Conditions
	}
	r.EscapeWindow = pick(FieldEscapeWindow, conditions, fb.EscapeWindow)
	r.Headline = pick(FieldHeadline, c.Headline, fb.Headline)
	r.CoreLogic = pick(FieldCoreLogic, c.CoreLogic, fb.CoreLogic)

	for _, a := range c.UserActions {
		if strings.TrimSpace(a) != "" {
			r.UserActions = append(r.UserActions, a)
		}
	}
	if len(r.UserActions) == 0 {
		r.Substituted = append(r.Substituted, FieldUserActions)
		r.UserActions = append([]string(nil), fb.UserActions...)
	}

	return r
}

// Decode converts a loosely typed content object (e.g. decoded JSON) into Content.
// Fields are decoded one by one. A falsy or wrongly shaped field is left absent so Resolve
// substitutes the fallback for it; nothing in raw makes decoding fail.
// A single string under user_actions is accepted as a one-element list.
func Decode(raw map[string]any) Content {
	var c Content
	if raw == nil {
		return c
	}

	var ew EscapeWindow
	if m, ok := raw[FieldEscapeWindow].(map[string]any); ok && strictDecode(m, &ew) {
		c.EscapeWindow = &ew
	}
	c.Headline = decodeText(raw[FieldHeadline])
	c.CoreLogic = decodeText(raw[FieldCoreLogic])
	c.UserActions = decodeList(raw[FieldUserActions])
	return c
}

// strictDecode decodes without type coercion, so false or 0 never turn into copy.
func strictDecode(in, out any) bool {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  out,
		TagName: "mapstructure",
	})
	if err != nil {
		return false
	}
	return decoder.Decode(in) == nil
}

func decodeText(v any) string {
	var s string
	if !strictDecode(v, &s) {
		return ""
	}
	return s
}

func decodeList(v any) []string {
	if s := decodeText(v); s != "" {
		return []string{s}
	}
	items, ok := v.([]any)
	if !ok {
		var list []string
		if strictDecode(v, &list) {
			return list
		}
		return nil
	}
	var list []string
	for _, item := range items {
		if s := decodeText(item); s != "" {
			list = append(list, s)
		}
	}
	return list
}

// Text returns the copy shown for a disclosure item.
// Items without dynamic copy (the cascade items) report false.
func (r Resolved) Text(itemID string) (string, bool) {
	switch itemID {
	case domain.ItemEscapeWindow:
		return r.EscapeWindow, true
	case domain.ItemHeadline:
		return r.Headline, true
	case domain.ItemCoreLogic:
		return r.CoreLogic, true
	case domain.ItemUserActions:
		lines := make([]string, len(r.UserActions))
		for i, a := range r.UserActions {
			lines[i] = "- " + a
		}
		return strings.Join(lines, "\n"), true
	}
	return "", false
}

var titles = map[string]string{
	domain.ItemEscapeWindow: "Escape window",
	domain.ItemHeadline:     "What this means",
	domain.ItemCoreLogic:    "Why it matters",
	domain.ItemUserActions:  "What you can do",
}

// Markdown renders the given items (in order) as a markdown document.
func (r Resolved) Markdown(items []string) string {
	var b strings.Builder
	for _, id := range items {
		text, ok := r.Text(id)
		if !ok {
			continue
		}
		title := titles[id]
		if title == "" {
			title = id
		}
		fmt.Fprintf(&b, "## %s\n\n%s\n\n", title, text)
	}
	return strings.TrimSpace(b.String())
}
