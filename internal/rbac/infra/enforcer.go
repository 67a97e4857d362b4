package infra

import (
	"fmt"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

// Roles come from the access token, so the subject of a request is a role
// name and g only expresses the role hierarchy. A policy domain of "*"
// applies to every company.
const modelText = `[request_definition]
r = sub, dom, obj, act

[policy_definition]
p = sub, dom, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && (p.dom == "*" || r.dom == p.dom) && r.obj == p.obj && r.act == p.act
`

func NewEnforcer(policies, roleHierarchy [][]string) (*casbin.SyncedEnforcer, error) {
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, fmt.Errorf("rbac model: %w", err)
	}
	e, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("rbac enforcer: %w", err)
	}
	if len(policies) > 0 {
		if _, err := e.AddPolicies(policies); err != nil {
			return nil, fmt.Errorf("rbac policies: %w", err)
		}
	}
	if len(roleHierarchy) > 0 {
		if _, err := e.AddGroupingPolicies(roleHierarchy); err != nil {
			return nil, fmt.Errorf("rbac roles: %w", err)
		}
	}
	return e, nil
}
