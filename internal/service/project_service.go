package service

import (
	"context"
	"fmt"
	"strings"

	"studentconnect/internal/models"
	"studentconnect/internal/repository"
)

type ProjectService struct {
	projectRepo      repository.ProjectRepository
	notificationRepo repository.NotificationRepository
	isAdmin          func(ctx context.Context, userID uint) (bool, error)
}

type CreateProjectInput struct {
	UserID      uint
	Title       string
	Description string
	TechStack   string
	ProjectType string
	Difficulty  string
	GithubURL   string
	DemoURL     string
	MaxTeamSize int
}

type UpdateProjectInput struct {
	UserID      uint
	ProjectID   uint
	Title       *string
	Description *string
	TechStack   *string
	Status      *models.ProjectStatus
	GithubURL   *string
	DemoURL     *string
	IsRecruiting *bool
}

type ApplyInput struct {
	UserID    uint
	ProjectID uint
	RoleID    *uint
	Message   string
}

type ReviewApplicationInput struct {
	ReviewerID    uint
	ProjectID     uint
	ApplicationID uint
	Accept        bool
}

type AddRoleInput struct {
	UserID         uint
	ProjectID      uint
	Title          string
	Description    string
	SkillsRequired string
}

func NewProjectService(
	projectRepo repository.ProjectRepository,
	notificationRepo repository.NotificationRepository,
	isAdmin func(ctx context.Context, userID uint) (bool, error),
) *ProjectService {
	return &ProjectService{
		projectRepo:      projectRepo,
		notificationRepo: notificationRepo,
		isAdmin:          isAdmin,
	}
}

func (s *ProjectService) CreateProject(ctx context.Context, in CreateProjectInput) (*models.Project, error) {
	const maxTitleLen = 150

	if strings.TrimSpace(in.Title) == "" {
		return nil, models.NewValidationError("Title is required")
	}
	if len(in.Title) > maxTitleLen {
		return nil, models.NewValidationError("Title too long (max 150 characters)")
	}
	if in.MaxTeamSize < 1 {
		in.MaxTeamSize = 5
	}
	if in.MaxTeamSize > 50 {
		return nil, models.NewValidationError("max_team_size cannot exceed 50")
	}

	project := &models.Project{
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		TechStack:   in.TechStack,
		ProjectType: in.ProjectType,
		Difficulty:  in.Difficulty,
		Status:      models.ProjectStatusPlanning,
		GithubURL:   in.GithubURL,
		DemoURL:     in.DemoURL,
		MaxTeamSize: in.MaxTeamSize,
		CreatorID:   in.UserID,
	}
	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, err
	}
	return s.projectRepo.GetByID(ctx, project.ID)
}

func (s *ProjectService) GetProject(ctx context.Context, id uint) (*models.Project, error) {
	return s.projectRepo.GetByID(ctx, id)
}

func (s *ProjectService) ListProjects(ctx context.Context, filter repository.ProjectFilter, limit, offset int) ([]models.Project, int64, error) {
	return s.projectRepo.List(ctx, filter, limit, offset)
}

func (s *ProjectService) MyProjects(ctx context.Context, userID uint) ([]models.Project, []models.ProjectMember, error) {
	created, err := s.projectRepo.ListByCreator(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	joined, err := s.projectRepo.ListByMember(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	return created, joined, nil
}

func (s *ProjectService) FeaturedProjects(ctx context.Context, limit int) ([]models.Project, error) {
	return s.projectRepo.ListFeatured(ctx, limit)
}

func (s *ProjectService) UpdateProject(ctx context.Context, in UpdateProjectInput) (*models.Project, error) {
	project, err := s.projectRepo.GetByID(ctx, in.ProjectID)
	if err != nil {
		return nil, err
	}
	if err := s.requireOwner(ctx, project.CreatorID, in.UserID, "update"); err != nil {
		return nil, err
	}

	if in.Title != nil {
		if strings.TrimSpace(*in.Title) == "" {
			return nil, models.NewValidationError("Title cannot be empty")
		}
		project.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		project.Description = *in.Description
	}
	if in.TechStack != nil {
		project.TechStack = *in.TechStack
	}
	if in.Status != nil {
		switch *in.Status {
		case models.ProjectStatusPlanning, models.ProjectStatusActive,
			models.ProjectStatusCompleted, models.ProjectStatusOnHold:
		default:
			return nil, models.NewValidationError("Invalid project status")
		}
		project.Status = *in.Status
		if *in.Status == models.ProjectStatusCompleted {
			project.IsRecruiting = false
		}
	}
	if in.GithubURL != nil {
		project.GithubURL = *in.GithubURL
	}
	if in.DemoURL != nil {
		project.DemoURL = *in.DemoURL
	}
	if in.IsRecruiting != nil {
		if *in.IsRecruiting && project.CurrentTeamSize >= project.MaxTeamSize {
			return nil, models.NewValidationError("Cannot recruit: team is already full")
		}
		project.IsRecruiting = *in.IsRecruiting
	}

	if err := s.projectRepo.Update(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

func (s *ProjectService) DeleteProject(ctx context.Context, projectID, userID uint) error {
	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return err
	}
	if err := s.requireOwner(ctx, project.CreatorID, userID, "delete"); err != nil {
		return err
	}
	return s.projectRepo.Delete(ctx, projectID)
}

func (s *ProjectService) AddRole(ctx context.Context, in AddRoleInput) (*models.ProjectRole, error) {
	project, err := s.projectRepo.GetByID(ctx, in.ProjectID)
	if err != nil {
		return nil, err
	}
	if project.CreatorID != in.UserID {
		return nil, models.NewForbiddenError("Only the creator can add roles")
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, models.NewValidationError("Role title is required")
	}

	role := &models.ProjectRole{
		ProjectID:      in.ProjectID,
		Title:          strings.TrimSpace(in.Title),
		Description:    in.Description,
		SkillsRequired: in.SkillsRequired,
	}
	if err := s.projectRepo.AddRole(ctx, role); err != nil {
		return nil, err
	}
	return role, nil
}

func (s *ProjectService) Roles(ctx context.Context, projectID uint) ([]models.ProjectRole, error) {
	if _, err := s.projectRepo.GetByID(ctx, projectID); err != nil {
		return nil, err
	}
	return s.projectRepo.Roles(ctx, projectID)
}

func (s *ProjectService) DeleteRole(ctx context.Context, projectID, roleID, userID uint) error {
	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return err
	}
	if project.CreatorID != userID {
		return models.NewForbiddenError("Only the creator can remove roles")
	}
	role, err := s.projectRepo.GetRole(ctx, roleID)
	if err != nil {
		return err
	}
	if role.ProjectID != projectID {
		return models.NewValidationError("Role belongs to a different project")
	}
	return s.projectRepo.DeleteRole(ctx, roleID)
}

func (s *ProjectService) Apply(ctx context.Context, in ApplyInput) (*models.ProjectApplication, error) {
	project, err := s.projectRepo.GetByID(ctx, in.ProjectID)
	if err != nil {
		return nil, err
	}
	if project.CreatorID == in.UserID {
		return nil, models.NewValidationError("You cannot apply to your own project")
	}
	if !project.IsRecruiting {
		return nil, models.NewValidationError("Project is not recruiting")
	}
	if project.CurrentTeamSize >= project.MaxTeamSize {
		return nil, models.NewValidationError("Project team is already full")
	}

	isMember, err := s.projectRepo.IsMember(ctx, in.ProjectID, in.UserID)
	if err != nil {
		return nil, err
	}
	if isMember {
		return nil, models.NewConflictError("You are already a team member")
	}

	if in.RoleID != nil {
		role, err := s.projectRepo.GetRole(ctx, *in.RoleID)
		if err != nil {
			return nil, err
		}
		if role.ProjectID != in.ProjectID {
			return nil, models.NewValidationError("Role belongs to a different project")
		}
		if role.IsFilled {
			return nil, models.NewValidationError("Role is already filled")
		}
	}

	application := &models.ProjectApplication{
		ProjectID:   in.ProjectID,
		ApplicantID: in.UserID,
		RoleID:      in.RoleID,
		Message:     in.Message,
		Status:      models.ApplicationStatusPending,
	}
	if err := s.projectRepo.Apply(ctx, application); err != nil {
		return nil, err
	}

	if s.notificationRepo != nil {
		_ = s.notificationRepo.Create(ctx, &models.Notification{
			UserID: project.CreatorID,
			Type:   models.NotificationTypeApplication,
			Title:  "New project application",
			Body:   fmt.Sprintf("Someone applied to join %q", project.Title),
		})
	}
	return application, nil
}

func (s *ProjectService) Applications(ctx context.Context, projectID, userID uint, status models.ApplicationStatus) ([]models.ProjectApplication, error) {
	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project.CreatorID != userID {
		return nil, models.NewForbiddenError("Only the creator can review applications")
	}
	return s.projectRepo.Applications(ctx, projectID, status)
}

func (s *ProjectService) MyApplications(ctx context.Context, userID uint) ([]models.ProjectApplication, error) {
	return s.projectRepo.ApplicationsByUser(ctx, userID)
}

// ReviewApplication accepts or rejects a pending application. Accepting
// adds the applicant to the team; both outcomes notify the applicant.
func (s *ProjectService) ReviewApplication(ctx context.Context, in ReviewApplicationInput) (*models.ProjectApplication, error) {
	project, err := s.projectRepo.GetByID(ctx, in.ProjectID)
	if err != nil {
		return nil, err
	}
	if project.CreatorID != in.ReviewerID {
		return nil, models.NewForbiddenError("Only the creator can review applications")
	}

	application, err := s.projectRepo.GetApplication(ctx, in.ApplicationID)
	if err != nil {
		return nil, err
	}
	if application.ProjectID != in.ProjectID {
		return nil, models.NewValidationError("Application belongs to a different project")
	}
	if application.Status != models.ApplicationStatusPending {
		return nil, models.NewValidationError("Application has already been reviewed")
	}

	if in.Accept {
		if err := s.projectRepo.Accept(ctx, application); err != nil {
			return nil, err
		}
		application.Status = models.ApplicationStatusAccepted
	} else {
		if err := s.projectRepo.Reject(ctx, application.ID); err != nil {
			return nil, err
		}
		application.Status = models.ApplicationStatusRejected
	}

	if s.notificationRepo != nil {
		body := fmt.Sprintf("Your application to %q was accepted", project.Title)
		if !in.Accept {
			body = fmt.Sprintf("Your application to %q was declined", project.Title)
		}
		_ = s.notificationRepo.Create(ctx, &models.Notification{
			UserID: application.ApplicantID,
			Type:   models.NotificationTypeApplication,
			Title:  "Application reviewed",
			Body:   body,
		})
	}
	return application, nil
}

func (s *ProjectService) Members(ctx context.Context, projectID uint) ([]models.ProjectMember, error) {
	if _, err := s.projectRepo.GetByID(ctx, projectID); err != nil {
		return nil, err
	}
	return s.projectRepo.Members(ctx, projectID)
}

func (s *ProjectService) Leave(ctx context.Context, projectID, userID uint) error {
	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return err
	}
	if project.CreatorID == userID {
		return models.NewValidationError("The creator cannot leave; delete the project instead")
	}
	return s.projectRepo.RemoveMember(ctx, projectID, userID)
}

func (s *ProjectService) Stats(ctx context.Context) (*repository.ProjectStats, error) {
	return s.projectRepo.Stats(ctx)
}

func (s *ProjectService) Types(ctx context.Context) ([]string, error) {
	return s.projectRepo.Types(ctx)
}

func (s *ProjectService) Technologies(ctx context.Context) ([]string, error) {
	return s.projectRepo.Technologies(ctx)
}

func (s *ProjectService) requireOwner(ctx context.Context, creatorID, userID uint, action string) error {
	if creatorID == userID {
		return nil
	}
	if s.isAdmin != nil {
		admin, err := s.isAdmin(ctx, userID)
		if err != nil {
			return err
		}
		if admin {
			return nil
		}
	}
	return models.NewForbiddenError("Only the creator can " + action + " a project")
}
