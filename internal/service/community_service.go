package service

import (
	"context"
	"strings"

	"studentconnect/internal/models"
	"studentconnect/internal/repository"
	"studentconnect/internal/validation"
)

type CommunityService struct {
	communityRepo repository.CommunityRepository
	isAdmin       func(ctx context.Context, userID uint) (bool, error)
}

type CreateCommunityInput struct {
	UserID      uint
	Name        string
	Description string
	Category    string
	Tags        string
	Rules       string
	IsPrivate   bool
}

type UpdateCommunityInput struct {
	UserID      uint
	CommunityID uint
	Description *string
	Category    *string
	Tags        *string
	Rules       *string
	IsPrivate   *bool
}

func NewCommunityService(
	communityRepo repository.CommunityRepository,
	isAdmin func(ctx context.Context, userID uint) (bool, error),
) *CommunityService {
	return &CommunityService{communityRepo: communityRepo, isAdmin: isAdmin}
}

func (s *CommunityService) CreateCommunity(ctx context.Context, in CreateCommunityInput) (*models.Community, error) {
	name := strings.TrimSpace(in.Name)
	if err := validation.ValidateCommunityName(name); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	community := &models.Community{
		Name:        name,
		Description: in.Description,
		Category:    strings.TrimSpace(in.Category),
		Tags:        in.Tags,
		Rules:       in.Rules,
		IsPrivate:   in.IsPrivate,
		CreatorID:   in.UserID,
	}
	if err := s.communityRepo.Create(ctx, community); err != nil {
		return nil, err
	}
	return s.communityRepo.GetByID(ctx, community.ID)
}

func (s *CommunityService) GetCommunity(ctx context.Context, id, currentUserID uint) (*models.Community, error) {
	community, err := s.communityRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if currentUserID != 0 {
		membership, err := s.communityRepo.MembershipOf(ctx, id, currentUserID)
		if err != nil {
			return nil, err
		}
		if membership != nil {
			community.MyRole = membership.Role
		}
	}
	return community, nil
}

func (s *CommunityService) ListCommunities(ctx context.Context, filter repository.CommunityFilter, limit, offset int) ([]models.Community, int64, error) {
	return s.communityRepo.List(ctx, filter, limit, offset)
}

func (s *CommunityService) MyCommunities(ctx context.Context, userID uint) ([]models.CommunityMembership, error) {
	return s.communityRepo.ListByMember(ctx, userID)
}

func (s *CommunityService) FeaturedCommunities(ctx context.Context, limit int) ([]models.Community, error) {
	return s.communityRepo.ListFeatured(ctx, limit)
}

func (s *CommunityService) UpdateCommunity(ctx context.Context, in UpdateCommunityInput) (*models.Community, error) {
	community, err := s.communityRepo.GetByID(ctx, in.CommunityID)
	if err != nil {
		return nil, err
	}
	if err := s.requireManager(ctx, in.CommunityID, in.UserID, community.CreatorID); err != nil {
		return nil, err
	}

	if in.Description != nil {
		community.Description = *in.Description
	}
	if in.Category != nil {
		community.Category = *in.Category
	}
	if in.Tags != nil {
		community.Tags = *in.Tags
	}
	if in.Rules != nil {
		community.Rules = *in.Rules
	}
	if in.IsPrivate != nil {
		community.IsPrivate = *in.IsPrivate
	}

	if err := s.communityRepo.Update(ctx, community); err != nil {
		return nil, err
	}
	return community, nil
}

func (s *CommunityService) DeleteCommunity(ctx context.Context, communityID, userID uint) error {
	community, err := s.communityRepo.GetByID(ctx, communityID)
	if err != nil {
		return err
	}
	if community.CreatorID != userID {
		admin, err := s.checkAdmin(ctx, userID)
		if err != nil {
			return err
		}
		if !admin {
			return models.NewForbiddenError("Only the creator can delete a community")
		}
	}
	return s.communityRepo.Delete(ctx, communityID)
}

func (s *CommunityService) Join(ctx context.Context, communityID, userID uint) error {
	community, err := s.communityRepo.GetByID(ctx, communityID)
	if err != nil {
		return err
	}
	// Private communities cannot be joined directly.
	if community.IsPrivate {
		return models.NewForbiddenError("Invitation required to join this community")
	}
	return s.communityRepo.Join(ctx, communityID, userID, models.CommunityRoleMember)
}

func (s *CommunityService) Leave(ctx context.Context, communityID, userID uint) error {
	membership, err := s.communityRepo.MembershipOf(ctx, communityID, userID)
	if err != nil {
		return err
	}
	if membership == nil {
		return models.NewValidationError("Not a member of this community")
	}
	// The creator cannot walk away from their own community.
	if membership.Role == models.CommunityRoleCreator {
		return models.NewValidationError("The creator cannot leave; delete the community instead")
	}
	return s.communityRepo.Leave(ctx, communityID, userID)
}

func (s *CommunityService) Members(ctx context.Context, communityID uint, limit, offset int) ([]models.CommunityMembership, int64, error) {
	if _, err := s.communityRepo.GetByID(ctx, communityID); err != nil {
		return nil, 0, err
	}
	return s.communityRepo.Members(ctx, communityID, limit, offset)
}

// PromoteModerator grants the moderator role. Creator only.
func (s *CommunityService) PromoteModerator(ctx context.Context, communityID, actorID, targetID uint) error {
	community, err := s.communityRepo.GetByID(ctx, communityID)
	if err != nil {
		return err
	}
	if community.CreatorID != actorID {
		return models.NewForbiddenError("Only the creator can manage moderators")
	}
	if targetID == community.CreatorID {
		return models.NewValidationError("The creator already manages the community")
	}
	return s.communityRepo.SetRole(ctx, communityID, targetID, models.CommunityRoleModerator)
}

// DemoteModerator reverts a moderator to plain member. Creator only.
func (s *CommunityService) DemoteModerator(ctx context.Context, communityID, actorID, targetID uint) error {
	community, err := s.communityRepo.GetByID(ctx, communityID)
	if err != nil {
		return err
	}
	if community.CreatorID != actorID {
		return models.NewForbiddenError("Only the creator can manage moderators")
	}
	return s.communityRepo.SetRole(ctx, communityID, targetID, models.CommunityRoleMember)
}

func (s *CommunityService) Stats(ctx context.Context) (*repository.CommunityStats, error) {
	return s.communityRepo.Stats(ctx)
}

// requireManager allows the creator, a moderator, or a site admin.
func (s *CommunityService) requireManager(ctx context.Context, communityID, userID, creatorID uint) error {
	if userID == creatorID {
		return nil
	}
	membership, err := s.communityRepo.MembershipOf(ctx, communityID, userID)
	if err != nil {
		return err
	}
	if membership != nil && membership.Role == models.CommunityRoleModerator {
		return nil
	}
	admin, err := s.checkAdmin(ctx, userID)
	if err != nil {
		return err
	}
	if admin {
		return nil
	}
	return models.NewForbiddenError("Moderator access required")
}

func (s *CommunityService) checkAdmin(ctx context.Context, userID uint) (bool, error) {
	if s.isAdmin == nil {
		return false, nil
	}
	return s.isAdmin(ctx, userID)
}
