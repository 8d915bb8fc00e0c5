package tasks

import (
	"fmt"
	"strings"
)

type Action int

const (
	ActionAll Action = iota
	ActionAuto
	ActionNewest
	ActionCatchup
)

var actionNames = []string{
	ActionAll:     "all",
	ActionAuto:    "auto",
	ActionNewest:  "newest",
	ActionCatchup: "catchup",
}

// ActionHelp describes each action for the usage text.
var ActionHelp = []string{
	ActionAll:     "downloads all new episodes, queries for episodes from feeds marked with a question mark (?)",
	ActionAuto:    "downloads only episodes for feeds without (?)",
	ActionNewest:  "downloads at most one new episode from each podcast feed",
	ActionCatchup: "marks all new episodes as seen, without downloading anything",
}

func (a Action) String() string {
	if a < 0 || int(a) >= len(actionNames) {
		return fmt.Sprintf("Action(%d)", int(a))
	}
	return actionNames[a]
}

// Limit is the per-feed cap on new items handed to the reconciler, 0 meaning
// no cap.
func (a Action) Limit() int {
	if a == ActionNewest {
		return 1
	}
	return 0
}

// ActionNames lists the accepted action tokens in display order.
func ActionNames() []string {
	return append([]string(nil), actionNames...)
}

func ParseAction(token string) (Action, error) {
	for i, name := range actionNames {
		if token == name {
			return Action(i), nil
		}
	}
	return 0, fmt.Errorf("unknown action %q, expected one of %s", token, strings.Join(actionNames, ", "))
}
