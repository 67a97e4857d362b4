package rbac

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"go-staffops/internal/domain"
)

func TestRBACService_Enforce(t *testing.T) {
	service, err := NewDefaultService()
	assert.NoError(t, err)

	cases := []struct {
		name    string
		role    string
		action  string
		allowed bool
	}{
		{"employee reads", RoleEmployee, domain.ActionRead, true},
		{"employee writes", RoleEmployee, domain.ActionWrite, true},
		{"employee cannot read all", RoleEmployee, domain.ActionReadAll, false},
		{"empty role is employee", "", domain.ActionRead, true},
		{"lowercase role", "manager", domain.ActionReadAll, true},
		{"admin inherits manager", RoleAdmin, domain.ActionReadAll, true},
		{"super admin inherits employee", RoleSuperAdmin, domain.ActionWrite, true},
		{"unknown role", "GUEST", domain.ActionRead, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			allowed, err := service.Enforce(domain.EnforceRequest{
				Subject:   "emp-1",
				CompanyID: "company-1",
				Role:      tc.role,
				Resource:  domain.ResourceSchedule,
				Action:    tc.action,
			})
			assert.NoError(t, err)
			assert.Equal(t, tc.allowed, allowed)
		})
	}
}

func TestRBACService_UnknownResource(t *testing.T) {
	service, err := NewDefaultService()
	assert.NoError(t, err)

	allowed, err := service.Enforce(domain.EnforceRequest{
		CompanyID: "company-1",
		Role:      RoleSuperAdmin,
		Resource:  "payroll",
		Action:    domain.ActionRead,
	})
	assert.NoError(t, err)
	assert.False(t, allowed)
}
