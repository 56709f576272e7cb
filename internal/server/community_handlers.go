package server

import (
	"studentconnect/internal/models"
	"studentconnect/internal/repository"
	"studentconnect/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetCommunities handles GET /api/communities
func (s *Server) GetCommunities(c *fiber.Ctx) error {
	page := parsePagination(c, 20)
	filter := repository.CommunityFilter{
		Category: c.Query("category"),
		Search:   c.Query("search"),
		Featured: c.QueryBool("featured"),
	}

	communities, total, err := s.communityService.ListCommunities(c.Context(), filter, page.Limit, page.Offset)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(fiber.Map{
		"communities": communities,
		"total":       total,
	})
}

// GetFeaturedCommunities handles GET /api/communities/featured
func (s *Server) GetFeaturedCommunities(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 5)

	communities, err := s.communityService.FeaturedCommunities(c.Context(), limit)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(communities)
}

// GetCommunityStats handles GET /api/communities/stats
func (s *Server) GetCommunityStats(c *fiber.Ctx) error {
	stats, err := s.communityService.Stats(c.Context())
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(stats)
}

// GetCommunity handles GET /api/communities/:id
func (s *Server) GetCommunity(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	userID, _ := s.optionalUserID(c)

	community, err := s.communityService.GetCommunity(c.Context(), id, userID)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(community)
}

// GetCommunityMembers handles GET /api/communities/:id/members
func (s *Server) GetCommunityMembers(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	page := parsePagination(c, 50)

	members, total, err := s.communityService.Members(c.Context(), id, page.Limit, page.Offset)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(fiber.Map{
		"members": members,
		"total":   total,
	})
}

// CreateCommunity handles POST /api/communities
func (s *Server) CreateCommunity(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Category    string `json:"category"`
		Tags        string `json:"tags"`
		Rules       string `json:"rules"`
		IsPrivate   bool   `json:"is_private"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	community, err := s.communityService.CreateCommunity(c.Context(), service.CreateCommunityInput{
		UserID:      userID,
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Tags:        req.Tags,
		Rules:       req.Rules,
		IsPrivate:   req.IsPrivate,
	})
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.Status(fiber.StatusCreated).JSON(community)
}

// GetMyCommunities handles GET /api/communities/mine
func (s *Server) GetMyCommunities(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	memberships, err := s.communityService.MyCommunities(c.Context(), userID)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(memberships)
}

// UpdateCommunity handles PUT /api/communities/:id
func (s *Server) UpdateCommunity(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Description *string `json:"description"`
		Category    *string `json:"category"`
		Tags        *string `json:"tags"`
		Rules       *string `json:"rules"`
		IsPrivate   *bool   `json:"is_private"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	community, err := s.communityService.UpdateCommunity(c.Context(), service.UpdateCommunityInput{
		UserID:      userID,
		CommunityID: id,
		Description: req.Description,
		Category:    req.Category,
		Tags:        req.Tags,
		Rules:       req.Rules,
		IsPrivate:   req.IsPrivate,
	})
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(community)
}

// DeleteCommunity handles DELETE /api/communities/:id
func (s *Server) DeleteCommunity(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.communityService.DeleteCommunity(c.Context(), id, userID); err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(fiber.Map{"message": "Community deleted"})
}

// JoinCommunity handles POST /api/communities/:id/join
func (s *Server) JoinCommunity(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.communityService.Join(c.Context(), id, userID); err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Joined community"})
}

// LeaveCommunity handles DELETE /api/communities/:id/join
func (s *Server) LeaveCommunity(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.communityService.Leave(c.Context(), id, userID); err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(fiber.Map{"message": "Left community"})
}

// PromoteModerator handles POST /api/communities/:id/moderators/:userId
func (s *Server) PromoteModerator(c *fiber.Ctx) error {
	actorID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	targetID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}

	if err := s.communityService.PromoteModerator(c.Context(), id, actorID, targetID); err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(fiber.Map{"message": "Moderator added"})
}

// DemoteModerator handles DELETE /api/communities/:id/moderators/:userId
func (s *Server) DemoteModerator(c *fiber.Ctx) error {
	actorID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	targetID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}

	if err := s.communityService.DemoteModerator(c.Context(), id, actorID, targetID); err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(fiber.Map{"message": "Moderator removed"})
}
