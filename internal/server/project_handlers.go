package server

import (
	"studentconnect/internal/models"
	"studentconnect/internal/repository"
	"studentconnect/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetProjects handles GET /api/projects
func (s *Server) GetProjects(c *fiber.Ctx) error {
	page := parsePagination(c, 20)
	filter := repository.ProjectFilter{
		Status:      models.ProjectStatus(c.Query("status")),
		ProjectType: c.Query("type"),
		Difficulty:  c.Query("difficulty"),
		Technology:  c.Query("technology"),
		Search:      c.Query("search"),
		Featured:    c.QueryBool("featured"),
	}
	if c.Query("recruiting") != "" {
		recruiting := c.QueryBool("recruiting")
		filter.Recruiting = &recruiting
	}

	projects, total, err := s.projectService.ListProjects(c.Context(), filter, page.Limit, page.Offset)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(fiber.Map{
		"projects": projects,
		"total":    total,
	})
}

// GetFeaturedProjects handles GET /api/projects/featured
func (s *Server) GetFeaturedProjects(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 5)

	projects, err := s.projectService.FeaturedProjects(c.Context(), limit)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(projects)
}

// GetProjectStats handles GET /api/projects/stats
func (s *Server) GetProjectStats(c *fiber.Ctx) error {
	stats, err := s.projectService.Stats(c.Context())
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(stats)
}

// GetProjectTypes handles GET /api/projects/types
func (s *Server) GetProjectTypes(c *fiber.Ctx) error {
	types, err := s.projectService.Types(c.Context())
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(types)
}

// GetProjectTechnologies handles GET /api/projects/technologies
func (s *Server) GetProjectTechnologies(c *fiber.Ctx) error {
	technologies, err := s.projectService.Technologies(c.Context())
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(technologies)
}

// GetProject handles GET /api/projects/:id
func (s *Server) GetProject(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	project, err := s.projectService.GetProject(c.Context(), id)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(project)
}

// CreateProject handles POST /api/projects
func (s *Server) CreateProject(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		TechStack   string `json:"tech_stack"`
		ProjectType string `json:"project_type"`
		Difficulty  string `json:"difficulty"`
		GithubURL   string `json:"github_url"`
		DemoURL     string `json:"demo_url"`
		MaxTeamSize int    `json:"max_team_size"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	project, err := s.projectService.CreateProject(c.Context(), service.CreateProjectInput{
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		TechStack:   req.TechStack,
		ProjectType: req.ProjectType,
		Difficulty:  req.Difficulty,
		GithubURL:   req.GithubURL,
		DemoURL:     req.DemoURL,
		MaxTeamSize: req.MaxTeamSize,
	})
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.Status(fiber.StatusCreated).JSON(project)
}

// GetMyProjects handles GET /api/projects/mine
func (s *Server) GetMyProjects(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	created, joined, err := s.projectService.MyProjects(c.Context(), userID)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(fiber.Map{
		"created": created,
		"joined":  joined,
	})
}

// UpdateProject handles PUT /api/projects/:id
func (s *Server) UpdateProject(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Title        *string               `json:"title"`
		Description  *string               `json:"description"`
		TechStack    *string               `json:"tech_stack"`
		Status       *models.ProjectStatus `json:"status"`
		GithubURL    *string               `json:"github_url"`
		DemoURL      *string               `json:"demo_url"`
		IsRecruiting *bool                 `json:"is_recruiting"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	project, err := s.projectService.UpdateProject(c.Context(), service.UpdateProjectInput{
		UserID:       userID,
		ProjectID:    id,
		Title:        req.Title,
		Description:  req.Description,
		TechStack:    req.TechStack,
		Status:       req.Status,
		GithubURL:    req.GithubURL,
		DemoURL:      req.DemoURL,
		IsRecruiting: req.IsRecruiting,
	})
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(project)
}

// DeleteProject handles DELETE /api/projects/:id
func (s *Server) DeleteProject(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.projectService.DeleteProject(c.Context(), id, userID); err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(fiber.Map{"message": "Project deleted"})
}

// GetProjectRoles handles GET /api/projects/:id/roles
func (s *Server) GetProjectRoles(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	roles, err := s.projectService.Roles(c.Context(), id)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(roles)
}

// AddProjectRole handles POST /api/projects/:id/roles
func (s *Server) AddProjectRole(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Title          string `json:"title"`
		Description    string `json:"description"`
		SkillsRequired string `json:"skills_required"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	role, err := s.projectService.AddRole(c.Context(), service.AddRoleInput{
		UserID:         userID,
		ProjectID:      id,
		Title:          req.Title,
		Description:    req.Description,
		SkillsRequired: req.SkillsRequired,
	})
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.Status(fiber.StatusCreated).JSON(role)
}

// DeleteProjectRole handles DELETE /api/projects/:id/roles/:roleId
func (s *Server) DeleteProjectRole(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	roleID, err := s.parseID(c, "roleId")
	if err != nil {
		return nil
	}

	if err := s.projectService.DeleteRole(c.Context(), id, roleID, userID); err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(fiber.Map{"message": "Role removed"})
}

// ApplyToProject handles POST /api/projects/:id/apply
func (s *Server) ApplyToProject(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		RoleID  *uint  `json:"role_id"`
		Message string `json:"message"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	application, err := s.projectService.Apply(c.Context(), service.ApplyInput{
		UserID:    userID,
		ProjectID: id,
		RoleID:    req.RoleID,
		Message:   req.Message,
	})
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.Status(fiber.StatusCreated).JSON(application)
}

// GetProjectApplications handles GET /api/projects/:id/applications?status=pending
func (s *Server) GetProjectApplications(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	status := models.ApplicationStatus(c.Query("status"))

	applications, err := s.projectService.Applications(c.Context(), id, userID, status)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(applications)
}

// GetMyApplications handles GET /api/projects/applications/mine
func (s *Server) GetMyApplications(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	applications, err := s.projectService.MyApplications(c.Context(), userID)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(applications)
}

// AcceptApplication handles POST /api/projects/:id/applications/:applicationId/accept
func (s *Server) AcceptApplication(c *fiber.Ctx) error {
	return s.reviewApplication(c, true)
}

// RejectApplication handles POST /api/projects/:id/applications/:applicationId/reject
func (s *Server) RejectApplication(c *fiber.Ctx) error {
	return s.reviewApplication(c, false)
}

func (s *Server) reviewApplication(c *fiber.Ctx, accept bool) error {
	userID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	applicationID, err := s.parseID(c, "applicationId")
	if err != nil {
		return nil
	}

	application, err := s.projectService.ReviewApplication(c.Context(), service.ReviewApplicationInput{
		ReviewerID:    userID,
		ProjectID:     id,
		ApplicationID: applicationID,
		Accept:        accept,
	})
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(application)
}

// GetProjectMembers handles GET /api/projects/:id/members
func (s *Server) GetProjectMembers(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	members, err := s.projectService.Members(c.Context(), id)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(members)
}

// LeaveProject handles DELETE /api/projects/:id/members/me
func (s *Server) LeaveProject(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.projectService.Leave(c.Context(), id, userID); err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(fiber.Map{"message": "Left project"})
}
