// Package permissions implements the static role → action lookup table used
// to gate mutations across the application.
package permissions

import "guildhall/internal/models"

// Action tags an operation a role may or may not perform.
type Action string

const (
	// Baseline member actions.
	ActionView      Action = "view"
	ActionCreateOwn Action = "create-own"
	ActionEditOwn   Action = "edit-own"
	ActionDeleteOwn Action = "delete-own"
	ActionVote      Action = "vote"

	// Moderator actions.
	ActionModerateForum Action = "moderate-forum"
	ActionManageTags    Action = "manage-tags"
	ActionManageNews    Action = "manage-news"
	ActionManageEvents  Action = "manage-events"

	// Admin actions.
	ActionManageContent    Action = "manage-content"
	ActionManageUsers      Action = "manage-users"
	ActionManageCategories Action = "manage-categories"
)

var memberActions = []Action{
	ActionView, ActionCreateOwn, ActionEditOwn, ActionDeleteOwn, ActionVote,
}

var moderatorActions = append([]Action{
	ActionModerateForum, ActionManageTags, ActionManageNews, ActionManageEvents,
}, memberActions...)

var adminActions = append([]Action{
	ActionManageContent, ActionManageUsers, ActionManageCategories,
}, moderatorActions...)

// table maps each role to its allowed action set. Admin is listed
// exhaustively rather than special-cased so Actions(RoleAdmin) is complete.
var table = map[models.Role]map[Action]struct{}{
	models.RoleMember:    toSet(memberActions),
	models.RoleModerator: toSet(moderatorActions),
	models.RoleAdmin:     toSet(adminActions),
}

func toSet(actions []Action) map[Action]struct{} {
	set := make(map[Action]struct{}, len(actions))
	for _, a := range actions {
		set[a] = struct{}{}
	}
	return set
}

// Allows reports whether the role may perform the action. Unknown roles and
// unknown actions are denied.
func Allows(role models.Role, action Action) bool {
	set, ok := table[role]
	if !ok {
		return false
	}
	_, ok = set[action]
	return ok
}

// Actions returns the full action set defined for a role.
func Actions(role models.Role) []Action {
	set, ok := table[role]
	if !ok {
		return nil
	}
	out := make([]Action, 0, len(set))
	for a := range set {
		out = append(out, a)
	}
	return out
}

// AllActions lists every action the system defines.
func AllActions() []Action {
	return append([]Action(nil), adminActions...)
}
