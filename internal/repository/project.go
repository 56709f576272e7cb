package repository

import (
	"context"
	"errors"

	"studentconnect/internal/models"

	"gorm.io/gorm"
)

// ProjectFilter narrows project listings.
type ProjectFilter struct {
	Status      models.ProjectStatus
	ProjectType string
	Difficulty  string
	Technology  string
	Recruiting  *bool
	Search      string
	Featured    bool
}

// ProjectStats is an aggregate snapshot of the project catalog.
type ProjectStats struct {
	TotalProjects    int64            `json:"total_projects"`
	ActiveProjects   int64            `json:"active_projects"`
	RecruitingCount  int64            `json:"recruiting_count"`
	TotalTeamMembers int64            `json:"total_team_members"`
	ByType           map[string]int64 `json:"by_type"`
}

// ProjectRepository defines persistence operations for projects, roles,
// applications and team membership.
type ProjectRepository interface {
	Create(ctx context.Context, project *models.Project) error
	GetByID(ctx context.Context, id uint) (*models.Project, error)
	List(ctx context.Context, filter ProjectFilter, limit, offset int) ([]models.Project, int64, error)
	ListByCreator(ctx context.Context, creatorID uint) ([]models.Project, error)
	ListByMember(ctx context.Context, userID uint) ([]models.ProjectMember, error)
	ListFeatured(ctx context.Context, limit int) ([]models.Project, error)
	Update(ctx context.Context, project *models.Project) error
	Delete(ctx context.Context, id uint) error

	AddRole(ctx context.Context, role *models.ProjectRole) error
	Roles(ctx context.Context, projectID uint) ([]models.ProjectRole, error)
	GetRole(ctx context.Context, roleID uint) (*models.ProjectRole, error)
	DeleteRole(ctx context.Context, roleID uint) error

	Apply(ctx context.Context, application *models.ProjectApplication) error
	GetApplication(ctx context.Context, id uint) (*models.ProjectApplication, error)
	Applications(ctx context.Context, projectID uint, status models.ApplicationStatus) ([]models.ProjectApplication, error)
	ApplicationsByUser(ctx context.Context, userID uint) ([]models.ProjectApplication, error)
	Accept(ctx context.Context, application *models.ProjectApplication) error
	Reject(ctx context.Context, applicationID uint) error

	Members(ctx context.Context, projectID uint) ([]models.ProjectMember, error)
	IsMember(ctx context.Context, projectID, userID uint) (bool, error)
	RemoveMember(ctx context.Context, projectID, userID uint) error

	Stats(ctx context.Context) (*ProjectStats, error)
	Types(ctx context.Context) ([]string, error)
	Technologies(ctx context.Context) ([]string, error)
}

type projectRepository struct {
	db *gorm.DB
}

// NewProjectRepository returns a new ProjectRepository implementation.
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &projectRepository{db: db}
}

func (r *projectRepository) Create(ctx context.Context, project *models.Project) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		project.CurrentTeamSize = 1
		if err := tx.Create(project).Error; err != nil {
			return err
		}
		// The creator always holds the first team slot.
		return tx.Create(&models.ProjectMember{
			ProjectID: project.ID,
			UserID:    project.CreatorID,
			RoleTitle: "Creator",
		}).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *projectRepository) GetByID(ctx context.Context, id uint) (*models.Project, error) {
	var project models.Project
	err := r.db.WithContext(ctx).
		Preload("Creator").
		Preload("Roles").
		First(&project, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Project", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &project, nil
}

func (r *projectRepository) List(ctx context.Context, filter ProjectFilter, limit, offset int) ([]models.Project, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Project{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.ProjectType != "" {
		query = query.Where("project_type = ?", filter.ProjectType)
	}
	if filter.Difficulty != "" {
		query = query.Where("difficulty = ?", filter.Difficulty)
	}
	if filter.Technology != "" {
		query = query.Where("tech_stack ILIKE ?", "%"+filter.Technology+"%")
	}
	if filter.Recruiting != nil {
		query = query.Where("is_recruiting = ?", *filter.Recruiting)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("title ILIKE ? OR description ILIKE ?", like, like)
	}
	if filter.Featured {
		query = query.Where("is_featured = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	var projects []models.Project
	if err := query.
		Preload("Creator").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&projects).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return projects, total, nil
}

func (r *projectRepository) ListByCreator(ctx context.Context, creatorID uint) ([]models.Project, error) {
	var projects []models.Project
	err := r.db.WithContext(ctx).
		Where("creator_id = ?", creatorID).
		Order("created_at DESC").
		Find(&projects).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return projects, nil
}

func (r *projectRepository) ListByMember(ctx context.Context, userID uint) ([]models.ProjectMember, error) {
	var memberships []models.ProjectMember
	err := r.db.WithContext(ctx).
		Preload("Project").
		Preload("Project.Creator").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&memberships).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return memberships, nil
}

func (r *projectRepository) ListFeatured(ctx context.Context, limit int) ([]models.Project, error) {
	var projects []models.Project
	err := r.db.WithContext(ctx).
		Preload("Creator").
		Where("is_featured = ?", true).
		Order("created_at DESC").
		Limit(limit).
		Find(&projects).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return projects, nil
}

func (r *projectRepository) Update(ctx context.Context, project *models.Project) error {
	if err := r.db.WithContext(ctx).Save(project).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *projectRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", id).Delete(&models.ProjectMember{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", id).Delete(&models.ProjectApplication{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", id).Delete(&models.ProjectRole{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Project{}, id).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *projectRepository) AddRole(ctx context.Context, role *models.ProjectRole) error {
	if err := r.db.WithContext(ctx).Create(role).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *projectRepository) Roles(ctx context.Context, projectID uint) ([]models.ProjectRole, error) {
	var roles []models.ProjectRole
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at ASC").
		Find(&roles).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return roles, nil
}

func (r *projectRepository) GetRole(ctx context.Context, roleID uint) (*models.ProjectRole, error) {
	var role models.ProjectRole
	err := r.db.WithContext(ctx).First(&role, roleID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Project role", roleID)
		}
		return nil, models.NewInternalError(err)
	}
	return &role, nil
}

func (r *projectRepository) DeleteRole(ctx context.Context, roleID uint) error {
	result := r.db.WithContext(ctx).Delete(&models.ProjectRole{}, roleID)
	if result.Error != nil {
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("Project role", roleID)
	}
	return nil
}

func (r *projectRepository) Apply(ctx context.Context, application *models.ProjectApplication) error {
	if err := r.db.WithContext(ctx).Create(application).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("You have already applied to this project")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *projectRepository) GetApplication(ctx context.Context, id uint) (*models.ProjectApplication, error) {
	var application models.ProjectApplication
	err := r.db.WithContext(ctx).
		Preload("Applicant").
		Preload("Role").
		First(&application, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Application", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &application, nil
}

func (r *projectRepository) Applications(ctx context.Context, projectID uint, status models.ApplicationStatus) ([]models.ProjectApplication, error) {
	query := r.db.WithContext(ctx).
		Preload("Applicant").
		Preload("Role").
		Where("project_id = ?", projectID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var applications []models.ProjectApplication
	if err := query.Order("created_at ASC").Find(&applications).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return applications, nil
}

func (r *projectRepository) ApplicationsByUser(ctx context.Context, userID uint) ([]models.ProjectApplication, error) {
	var applications []models.ProjectApplication
	err := r.db.WithContext(ctx).
		Preload("Project").
		Preload("Role").
		Where("applicant_id = ?", userID).
		Order("created_at DESC").
		Find(&applications).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return applications, nil
}

// Accept marks the application accepted, adds the applicant to the team,
// bumps current_team_size, fills the requested role, and closes recruiting
// when the team reaches capacity. All in one transaction.
func (r *projectRepository) Accept(ctx context.Context, application *models.ProjectApplication) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var project models.Project
		if err := tx.First(&project, application.ProjectID).Error; err != nil {
			return err
		}
		if project.CurrentTeamSize >= project.MaxTeamSize {
			return models.NewValidationError("Project team is already full")
		}

		if err := tx.Model(&models.ProjectApplication{}).
			Where("id = ?", application.ID).
			Update("status", models.ApplicationStatusAccepted).Error; err != nil {
			return err
		}

		roleTitle := ""
		if application.RoleID != nil {
			var role models.ProjectRole
			if err := tx.First(&role, *application.RoleID).Error; err == nil {
				roleTitle = role.Title
				if err := tx.Model(&models.ProjectRole{}).
					Where("id = ?", role.ID).
					Update("is_filled", true).Error; err != nil {
					return err
				}
			}
		}

		if err := tx.Create(&models.ProjectMember{
			ProjectID: application.ProjectID,
			UserID:    application.ApplicantID,
			RoleTitle: roleTitle,
		}).Error; err != nil {
			return err
		}

		updates := map[string]any{
			"current_team_size": gorm.Expr("current_team_size + 1"),
		}
		if project.CurrentTeamSize+1 >= project.MaxTeamSize {
			updates["is_recruiting"] = false
		}
		return tx.Model(&models.Project{}).
			Where("id = ?", application.ProjectID).
			Updates(updates).Error
	})
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			return err
		}
		if isUniqueConstraintError(err) {
			return models.NewConflictError("Applicant is already a team member")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *projectRepository) Reject(ctx context.Context, applicationID uint) error {
	result := r.db.WithContext(ctx).
		Model(&models.ProjectApplication{}).
		Where("id = ?", applicationID).
		Update("status", models.ApplicationStatusRejected)
	if result.Error != nil {
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("Application", applicationID)
	}
	return nil
}

func (r *projectRepository) Members(ctx context.Context, projectID uint) ([]models.ProjectMember, error) {
	var members []models.ProjectMember
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("project_id = ?", projectID).
		Order("created_at ASC").
		Find(&members).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return members, nil
}

func (r *projectRepository) IsMember(ctx context.Context, projectID, userID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ProjectMember{}).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Count(&count).Error
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

// RemoveMember drops the membership row and decrements current_team_size.
// Leaving frees a slot, so recruiting reopens on non-completed projects.
func (r *projectRepository) RemoveMember(ctx context.Context, projectID, userID uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("project_id = ? AND user_id = ?", projectID, userID).
			Delete(&models.ProjectMember{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return models.NewValidationError("Not a member of this project")
		}
		return tx.Model(&models.Project{}).
			Where("id = ? AND current_team_size > 0", projectID).
			Updates(map[string]any{
				"current_team_size": gorm.Expr("current_team_size - 1"),
				"is_recruiting":     gorm.Expr("status != 'completed'"),
			}).Error
	})
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			return err
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *projectRepository) Stats(ctx context.Context) (*ProjectStats, error) {
	var stats ProjectStats
	db := r.db.WithContext(ctx)

	if err := db.Model(&models.Project{}).Count(&stats.TotalProjects).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	if err := db.Model(&models.Project{}).
		Where("status = ?", models.ProjectStatusActive).
		Count(&stats.ActiveProjects).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	if err := db.Model(&models.Project{}).
		Where("is_recruiting = ?", true).
		Count(&stats.RecruitingCount).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	if err := db.Model(&models.ProjectMember{}).Count(&stats.TotalTeamMembers).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	type typeCount struct {
		ProjectType string
		Count       int64
	}
	var rows []typeCount
	if err := db.Model(&models.Project{}).
		Select("project_type, COUNT(*) as count").
		Group("project_type").
		Scan(&rows).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	stats.ByType = make(map[string]int64, len(rows))
	for _, row := range rows {
		stats.ByType[row.ProjectType] = row.Count
	}
	return &stats, nil
}

func (r *projectRepository) Types(ctx context.Context) ([]string, error) {
	var types []string
	err := r.db.WithContext(ctx).
		Model(&models.Project{}).
		Distinct("project_type").
		Where("project_type != ''").
		Order("project_type ASC").
		Pluck("project_type", &types).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return types, nil
}

func (r *projectRepository) Technologies(ctx context.Context) ([]string, error) {
	var stacks []string
	err := r.db.WithContext(ctx).
		Model(&models.Project{}).
		Where("tech_stack != ''").
		Pluck("tech_stack", &stacks).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	// tech_stack is a comma-separated list; split and dedupe in memory.
	seen := make(map[string]struct{})
	var techs []string
	for _, stack := range stacks {
		for _, tech := range splitCSV(stack) {
			if _, ok := seen[tech]; ok {
				continue
			}
			seen[tech] = struct{}{}
			techs = append(techs, tech)
		}
	}
	return techs, nil
}
