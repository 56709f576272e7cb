package server

import (
	"strings"

	"studentconnect/internal/models"
	"studentconnect/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetAllUsers handles GET /api/users?search=...
func (s *Server) GetAllUsers(c *fiber.Ctx) error {
	page := parsePagination(c, 20)
	search := strings.TrimSpace(c.Query("search"))

	users, total, err := s.userService.ListUsers(c.Context(), search, page.Limit, page.Offset)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(fiber.Map{
		"users": users,
		"total": total,
	})
}

// GetUserProfile handles GET /api/users/:id
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	user, err := s.userService.GetUserByID(c.Context(), id)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(user)
}

// GetMyProfile handles GET /api/users/me
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	user, err := s.userService.GetUserByID(c.Context(), userID)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(user)
}

// UpdateMyProfile handles PUT /api/users/me
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var req struct {
		Username     string  `json:"username"`
		FirstName    *string `json:"first_name"`
		LastName     *string `json:"last_name"`
		Bio          *string `json:"bio"`
		College      *string `json:"college"`
		Major        *string `json:"major"`
		Year         *int    `json:"year"`
		AvatarURL    *string `json:"avatar_url"`
		GithubURL    *string `json:"github_url"`
		LinkedinURL  *string `json:"linkedin_url"`
		PortfolioURL *string `json:"portfolio_url"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.UpdateProfile(c.Context(), service.UpdateProfileInput{
		UserID:       userID,
		Username:     req.Username,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Bio:          req.Bio,
		College:      req.College,
		Major:        req.Major,
		Year:         req.Year,
		AvatarURL:    req.AvatarURL,
		GithubURL:    req.GithubURL,
		LinkedinURL:  req.LinkedinURL,
		PortfolioURL: req.PortfolioURL,
	})
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(user)
}

// DeactivateMyAccount handles DELETE /api/users/me
func (s *Server) DeactivateMyAccount(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	if err := s.userService.DeactivateAccount(c.Context(), userID); err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	if err := s.revokeCurrentToken(c); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	return c.JSON(fiber.Map{"message": "Account deactivated"})
}

// GetUserCommunities handles GET /api/users/:id/communities
func (s *Server) GetUserCommunities(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	memberships, err := s.communityService.MyCommunities(c.Context(), userID)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(memberships)
}

// GetUserProjects handles GET /api/users/:id/projects
func (s *Server) GetUserProjects(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	created, joined, err := s.projectService.MyProjects(c.Context(), userID)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(fiber.Map{
		"created": created,
		"joined":  joined,
	})
}

// GetUserEvents handles GET /api/users/:id/events
func (s *Server) GetUserEvents(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	attending, organizing, err := s.eventService.MyEvents(c.Context(), userID)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(fiber.Map{
		"attending":  attending,
		"organizing": organizing,
	})
}

// PromoteToAdmin handles POST /api/users/:id/promote-admin (admin only)
// Admin check is enforced by AdminRequired middleware on the route.
func (s *Server) PromoteToAdmin(c *fiber.Ctx) error {
	targetID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	target, err := s.userService.SetAdmin(c.Context(), targetID, true)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(fiber.Map{"message": "User promoted to admin", "user": target})
}

// DemoteFromAdmin handles POST /api/users/:id/demote-admin (admin only)
// Admin check is enforced by AdminRequired middleware on the route.
func (s *Server) DemoteFromAdmin(c *fiber.Ctx) error {
	targetID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if strings.EqualFold(s.config.Env, "development") && targetID == 1 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("cannot demote protected development root admin user"))
	}

	target, err := s.userService.SetAdmin(c.Context(), targetID, false)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(fiber.Map{"message": "User demoted from admin", "user": target})
}
