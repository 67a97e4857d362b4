package rbac

import (
	"strings"

	"github.com/casbin/casbin/v2"
	"go.uber.org/zap"

	"go-staffops/internal/domain"
	"go-staffops/internal/rbac/infra"
)

const (
	RoleEmployee   = "EMPLOYEE"
	RoleManager    = "MANAGER"
	RoleHR         = "HR"
	RoleAdmin      = "ADMIN"
	RoleSuperAdmin = "SUPER_ADMIN"
)

// DefaultPolicies lets every employee read and edit the schedule they can
// see; managers and above see every team of their company.
var DefaultPolicies = [][]string{
	{RoleEmployee, "*", domain.ResourceSchedule, domain.ActionRead},
	{RoleEmployee, "*", domain.ResourceSchedule, domain.ActionWrite},
	{RoleManager, "*", domain.ResourceSchedule, domain.ActionReadAll},
}

var DefaultRoleHierarchy = [][]string{
	{RoleManager, RoleEmployee},
	{RoleHR, RoleManager},
	{RoleAdmin, RoleManager},
	{RoleSuperAdmin, RoleAdmin},
}

//go:generate mockgen -source=rbac_service.go -destination=mock/rbac_service_mock.go -package=mock
type Service interface {
	Enforce(req domain.EnforceRequest) (bool, error)
}

type service struct {
	enforcer *casbin.SyncedEnforcer
	logger   *zap.Logger
}

func NewService(enforcer *casbin.SyncedEnforcer, logger ...*zap.Logger) Service {
	l := zap.L().Named("rbac.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("rbac.service")
	}
	return &service{enforcer: enforcer, logger: l}
}

// NewDefaultService builds the service over DefaultPolicies.
func NewDefaultService(logger ...*zap.Logger) (Service, error) {
	e, err := infra.NewEnforcer(DefaultPolicies, DefaultRoleHierarchy)
	if err != nil {
		return nil, err
	}
	return NewService(e, logger...), nil
}

func normalizeRole(role string) string {
	role = strings.ToUpper(strings.TrimSpace(role))
	if role == "" {
		return RoleEmployee
	}
	return role
}

func (s *service) Enforce(req domain.EnforceRequest) (bool, error) {
	role := normalizeRole(req.Role)

	allowed, err := s.enforcer.Enforce(role, req.CompanyID, req.Resource, req.Action)
	if err != nil {
		s.logger.Error("rbac enforce failed",
			zap.String("role", role),
			zap.String("company_id", req.CompanyID),
			zap.String("resource", req.Resource),
			zap.String("action", req.Action),
			zap.Error(err),
		)
		return false, err
	}

	s.logger.Debug("rbac enforce",
		zap.String("subject", req.Subject),
		zap.String("role", role),
		zap.String("resource", req.Resource),
		zap.String("action", req.Action),
		zap.Bool("allowed", allowed),
	)
	return allowed, nil
}
