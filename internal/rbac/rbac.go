// Package rbac is the pure role/action decision table. It has no side
// effects and no storage access: membership resolution happens in the
// repositories, author-identity checks in the services.
package rbac

import "goalboard/internal/model"

// Action is an operation kind resolved at compile time.
type Action int

const (
	ActionRead Action = iota
	ActionCreate
	ActionUpdate
	ActionDelete
)

var actionNames = map[Action]string{
	ActionRead:   "read",
	ActionCreate: "create",
	ActionUpdate: "update",
	ActionDelete: "delete",
}

func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return "unknown"
}

// EntityKind selects the permission row.
type EntityKind int

const (
	KindBoard EntityKind = iota
	KindCategory
	KindGoal
	KindComment
)

var kindNames = map[EntityKind]string{
	KindBoard:    "board",
	KindCategory: "category",
	KindGoal:     "goal",
	KindComment:  "comment",
}

func (k EntityKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

type ruleKey struct {
	kind   EntityKind
	action Action
}

// rules lists the roles allowed per (kind, action). Creation of boards is
// membership-free (any authenticated user) and is not represented here.
// Comment update/delete is author-gated in the service, not role-gated:
// every member passes this table and the author check decides.
var rules = map[ruleKey][]model.Role{
	{KindBoard, ActionRead}:   {model.RoleOwner, model.RoleWriter, model.RoleReader},
	{KindBoard, ActionUpdate}: {model.RoleOwner},
	{KindBoard, ActionDelete}: {model.RoleOwner},

	{KindCategory, ActionCreate}: {model.RoleOwner, model.RoleWriter},
	{KindCategory, ActionRead}:   {model.RoleOwner, model.RoleWriter, model.RoleReader},
	{KindCategory, ActionUpdate}: {model.RoleOwner, model.RoleWriter},
	{KindCategory, ActionDelete}: {model.RoleOwner, model.RoleWriter},

	{KindGoal, ActionCreate}: {model.RoleOwner, model.RoleWriter},
	{KindGoal, ActionRead}:   {model.RoleOwner, model.RoleWriter, model.RoleReader},
	{KindGoal, ActionUpdate}: {model.RoleOwner, model.RoleWriter},
	{KindGoal, ActionDelete}: {model.RoleOwner, model.RoleWriter},

	{KindComment, ActionCreate}: {model.RoleOwner, model.RoleWriter, model.RoleReader},
	{KindComment, ActionRead}:   {model.RoleOwner, model.RoleWriter, model.RoleReader},
	{KindComment, ActionUpdate}: {model.RoleOwner, model.RoleWriter, model.RoleReader},
	{KindComment, ActionDelete}: {model.RoleOwner, model.RoleWriter, model.RoleReader},
}

// Allowed reports whether role may perform action on kind.
func Allowed(role model.Role, action Action, kind EntityKind) bool {
	allowed, ok := rules[ruleKey{kind: kind, action: action}]
	if !ok {
		return false
	}
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}
