package server

import (
	"studentconnect/internal/models"
	"studentconnect/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetSkillCatalog handles GET /api/skills with optional category and search filters.
func (s *Server) GetSkillCatalog(c *fiber.Ctx) error {
	skills, err := s.skillService.Catalog(c.Context(), c.Query("category"), c.Query("search"))
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(skills)
}

// GetSkillCategories handles GET /api/skills/categories
func (s *Server) GetSkillCategories(c *fiber.Ctx) error {
	categories, err := s.skillService.Categories(c.Context())
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(categories)
}

// GetPopularSkills handles GET /api/skills/popular
func (s *Server) GetPopularSkills(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 10)
	if limit <= 0 || limit > maxPaginationLimit {
		limit = 10
	}

	skills, err := s.skillService.PopularSkills(c.Context(), limit)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(skills)
}

// GetSkillStats handles GET /api/skills/stats
func (s *Server) GetSkillStats(c *fiber.Ctx) error {
	stats, err := s.skillService.Stats(c.Context())
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(stats)
}

// SearchUsersBySkill handles GET /api/skills/:id/users with an optional
// proficiency query filter.
func (s *Server) SearchUsersBySkill(c *fiber.Ctx) error {
	skillID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	page := parsePagination(c, 20)
	proficiency := models.Proficiency(c.Query("proficiency"))
	userSkills, total, err := s.skillService.SearchUsers(c.Context(), skillID, proficiency, page.Limit, page.Offset)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(fiber.Map{
		"users": userSkills,
		"total": total,
	})
}

// GetUserSkills handles GET /api/users/:id/skills
func (s *Server) GetUserSkills(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	skills, err := s.skillService.UserSkills(c.Context(), userID)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(skills)
}

// GetUserEndorsements handles GET /api/users/:id/endorsements
func (s *Server) GetUserEndorsements(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	received, err := s.skillService.EndorsementsReceived(c.Context(), userID)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}
	given, err := s.skillService.EndorsementsGiven(c.Context(), userID)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(fiber.Map{
		"received": received,
		"given":    given,
	})
}

// AddMySkill handles POST /api/skills/mine
func (s *Server) AddMySkill(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var req struct {
		Name        string `json:"name"`
		Category    string `json:"category"`
		Proficiency string `json:"proficiency"`
	}
	if parseErr := c.BodyParser(&req); parseErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	userSkill, err := s.skillService.AddSkill(c.Context(), service.AddSkillInput{
		UserID:      userID,
		Name:        req.Name,
		Category:    req.Category,
		Proficiency: models.Proficiency(req.Proficiency),
	})
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.Status(fiber.StatusCreated).JSON(userSkill)
}

// UpdateMySkillProficiency handles PUT /api/skills/mine/:skillId
func (s *Server) UpdateMySkillProficiency(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	skillID, err := s.parseID(c, "skillId")
	if err != nil {
		return nil
	}

	var req struct {
		Proficiency string `json:"proficiency"`
	}
	if parseErr := c.BodyParser(&req); parseErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	userSkill, err := s.skillService.UpdateProficiency(c.Context(), userID, skillID, models.Proficiency(req.Proficiency))
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(userSkill)
}

// RemoveMySkill handles DELETE /api/skills/mine/:skillId
func (s *Server) RemoveMySkill(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	skillID, err := s.parseID(c, "skillId")
	if err != nil {
		return nil
	}

	if err := s.skillService.RemoveSkill(c.Context(), userID, skillID); err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(fiber.Map{"message": "Skill removed"})
}

// EndorseSkill handles POST /api/skills/:skillId/endorse/:userId
func (s *Server) EndorseSkill(c *fiber.Ctx) error {
	endorserID := c.Locals("userID").(uint)
	skillID, err := s.parseID(c, "skillId")
	if err != nil {
		return nil
	}
	endorsedID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}

	var req struct {
		Message string `json:"message"`
	}
	// Message body is optional on endorsements.
	_ = c.BodyParser(&req)

	endorsement, err := s.skillService.Endorse(c.Context(), service.EndorseInput{
		EndorserID: endorserID,
		EndorsedID: endorsedID,
		SkillID:    skillID,
		Message:    req.Message,
	})
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.Status(fiber.StatusCreated).JSON(endorsement)
}

// RemoveEndorsement handles DELETE /api/skills/:skillId/endorse/:userId
func (s *Server) RemoveEndorsement(c *fiber.Ctx) error {
	endorserID := c.Locals("userID").(uint)
	skillID, err := s.parseID(c, "skillId")
	if err != nil {
		return nil
	}
	endorsedID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}

	if err := s.skillService.RemoveEndorsement(c.Context(), endorserID, endorsedID, skillID); err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(fiber.Map{"message": "Endorsement removed"})
}
