// Package intent turns free-text command words into a normalized intent.
package intent

import "strings"

// Intent is a normalized (action, target) pair derived from user input.
type Intent struct {
	// Action is the normalized verb. It is always set; unparseable input
	// yields "unknown".
	Action string `json:"action"`

	// Target is the package or service the action applies to. Empty for
	// actions that do not need one (update, rollback, list).
	Target string `json:"target,omitempty"`

	// Options carries free-form modifiers. The executor does not consume
	// these today.
	Options map[string]any `json:"options,omitempty"`
}

// ActionUnknown is the action assigned when input cannot be parsed.
const ActionUnknown = "unknown"

// actionAliases maps common verb variations onto canonical actions.
var actionAliases = map[string]string{
	"install":   "install",
	"add":       "install",
	"get":       "install",
	"remove":    "remove",
	"uninstall": "remove",
	"delete":    "remove",
	"update":    "update",
	"upgrade":   "update",
	"search":    "search",
	"find":      "search",
	"list":      "list",
	"show":      "list",
	"rollback":  "rollback",
	"undo":      "rollback",
}

// Parse splits a command string into an Intent. The first word is the
// action (normalized through the alias table, passed through verbatim when
// unrecognized), the second word, if any, is the target.
func Parse(command string) Intent {
	parts := strings.Fields(strings.ToLower(command))
	if len(parts) == 0 {
		return Intent{Action: ActionUnknown, Options: map[string]any{}}
	}

	action := parts[0]
	if canonical, ok := actionAliases[action]; ok {
		action = canonical
	}

	target := ""
	if len(parts) > 1 {
		target = parts[1]
	}

	return Intent{Action: action, Target: target, Options: map[string]any{}}
}
