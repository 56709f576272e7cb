package server

import (
	"studentconnect/internal/models"
	"studentconnect/internal/repository"
	"studentconnect/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetTutorials handles GET /api/tutorials with optional category,
// difficulty, source and search query filters.
func (s *Server) GetTutorials(c *fiber.Ctx) error {
	filter := repository.TutorialFilter{
		Category:   c.Query("category"),
		Difficulty: c.Query("difficulty"),
		Source:     models.TutorialSource(c.Query("source")),
		Search:     c.Query("search"),
	}

	page := parsePagination(c, 20)
	tutorials, total, err := s.tutorialService.ListTutorials(c.Context(), filter, page.Limit, page.Offset)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(fiber.Map{
		"tutorials": tutorials,
		"total":     total,
	})
}

// GetPopularTutorials handles GET /api/tutorials/popular
func (s *Server) GetPopularTutorials(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 10)
	if limit <= 0 || limit > maxPaginationLimit {
		limit = 10
	}

	tutorials, err := s.tutorialService.PopularTutorials(c.Context(), limit)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(tutorials)
}

// GetRecentTutorials handles GET /api/tutorials/recent
func (s *Server) GetRecentTutorials(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 10)
	if limit <= 0 || limit > maxPaginationLimit {
		limit = 10
	}

	tutorials, err := s.tutorialService.RecentTutorials(c.Context(), limit)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(tutorials)
}

// GetTutorialCategories handles GET /api/tutorials/categories
func (s *Server) GetTutorialCategories(c *fiber.Ctx) error {
	categories, err := s.tutorialService.Categories(c.Context())
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(categories)
}

// GetTutorialStats handles GET /api/tutorials/stats
func (s *Server) GetTutorialStats(c *fiber.Ctx) error {
	stats, err := s.tutorialService.Stats(c.Context())
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(stats)
}

// GetTutorial handles GET /api/tutorials/:id and records the view.
func (s *Server) GetTutorial(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	tutorial, err := s.tutorialService.GetTutorial(c.Context(), id)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(tutorial)
}

// CreateTutorial handles POST /api/tutorials
func (s *Server) CreateTutorial(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var req struct {
		Title            string `json:"title"`
		Description      string `json:"description"`
		Content          string `json:"content"`
		Category         string `json:"category"`
		Difficulty       string `json:"difficulty"`
		Tags             string `json:"tags"`
		EstimatedMinutes int    `json:"estimated_minutes"`
	}
	if parseErr := c.BodyParser(&req); parseErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	tutorial, err := s.tutorialService.CreateTutorial(c.Context(), service.CreateTutorialInput{
		UserID:           userID,
		Title:            req.Title,
		Description:      req.Description,
		Content:          req.Content,
		Category:         req.Category,
		Difficulty:       req.Difficulty,
		Tags:             req.Tags,
		EstimatedMinutes: req.EstimatedMinutes,
	})
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.Status(fiber.StatusCreated).JSON(tutorial)
}

// ImportTutorial handles POST /api/tutorials/import. Returns 201 when a new
// tutorial was imported, 200 when the source URL was already imported.
func (s *Server) ImportTutorial(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var req struct {
		SourceURL string `json:"source_url"`
		Category  string `json:"category"`
	}
	if parseErr := c.BodyParser(&req); parseErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	tutorial, created, err := s.tutorialService.ImportFromGfG(c.Context(), service.ImportInput{
		UserID:    userID,
		SourceURL: req.SourceURL,
		Category:  req.Category,
	})
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	status := fiber.StatusOK
	if created {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(tutorial)
}

// UpdateTutorial handles PUT /api/tutorials/:id
func (s *Server) UpdateTutorial(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	tutorialID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Title       *string `json:"title,omitempty"`
		Description *string `json:"description,omitempty"`
		Content     *string `json:"content,omitempty"`
		Category    *string `json:"category,omitempty"`
		Difficulty  *string `json:"difficulty,omitempty"`
		Tags        *string `json:"tags,omitempty"`
	}
	if parseErr := c.BodyParser(&req); parseErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	tutorial, err := s.tutorialService.UpdateTutorial(c.Context(), service.UpdateTutorialInput{
		UserID:      userID,
		TutorialID:  tutorialID,
		Title:       req.Title,
		Description: req.Description,
		Content:     req.Content,
		Category:    req.Category,
		Difficulty:  req.Difficulty,
		Tags:        req.Tags,
	})
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(tutorial)
}

// DeleteTutorial handles DELETE /api/tutorials/:id
func (s *Server) DeleteTutorial(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	tutorialID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.tutorialService.DeleteTutorial(c.Context(), tutorialID, userID); err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(fiber.Map{"message": "Tutorial deleted"})
}

// UpdateTutorialProgress handles PUT /api/tutorials/:id/progress
func (s *Server) UpdateTutorialProgress(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	tutorialID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		CompletionRate int `json:"completion_rate"`
	}
	if parseErr := c.BodyParser(&req); parseErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	progress, err := s.tutorialService.UpdateProgress(c.Context(), tutorialID, userID, req.CompletionRate)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(progress)
}

// ToggleTutorialBookmark handles POST /api/tutorials/:id/bookmark
func (s *Server) ToggleTutorialBookmark(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	tutorialID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	progress, err := s.tutorialService.ToggleBookmark(c.Context(), tutorialID, userID)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(progress)
}

// GetMyTutorialProgress handles GET /api/tutorials/progress/mine
func (s *Server) GetMyTutorialProgress(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	progress, err := s.tutorialService.MyProgress(c.Context(), userID)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(progress)
}
