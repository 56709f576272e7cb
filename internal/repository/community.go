package repository

import (
	"context"
	"errors"

	"studentconnect/internal/cache"
	"studentconnect/internal/models"

	"gorm.io/gorm"
)

// CommunityFilter narrows community listings.
type CommunityFilter struct {
	Category string
	Search   string
	Featured bool
}

// CommunityStats is an aggregate snapshot of the community catalog.
type CommunityStats struct {
	TotalCommunities int64            `json:"total_communities"`
	TotalMembers     int64            `json:"total_members"`
	ByCategory       map[string]int64 `json:"by_category"`
}

// CommunityRepository defines persistence operations for communities.
type CommunityRepository interface {
	Create(ctx context.Context, community *models.Community) error
	GetByID(ctx context.Context, id uint) (*models.Community, error)
	List(ctx context.Context, filter CommunityFilter, limit, offset int) ([]models.Community, int64, error)
	ListByMember(ctx context.Context, userID uint) ([]models.CommunityMembership, error)
	ListFeatured(ctx context.Context, limit int) ([]models.Community, error)
	Update(ctx context.Context, community *models.Community) error
	Delete(ctx context.Context, id uint) error
	Join(ctx context.Context, communityID, userID uint, role models.CommunityRole) error
	Leave(ctx context.Context, communityID, userID uint) error
	MembershipOf(ctx context.Context, communityID, userID uint) (*models.CommunityMembership, error)
	Members(ctx context.Context, communityID uint, limit, offset int) ([]models.CommunityMembership, int64, error)
	SetRole(ctx context.Context, communityID, userID uint, role models.CommunityRole) error
	Stats(ctx context.Context) (*CommunityStats, error)
}

type communityRepository struct {
	db *gorm.DB
}

// NewCommunityRepository returns a new CommunityRepository implementation.
func NewCommunityRepository(db *gorm.DB) CommunityRepository {
	return &communityRepository{db: db}
}

func (r *communityRepository) Create(ctx context.Context, community *models.Community) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		community.MemberCount = 1
		if err := tx.Create(community).Error; err != nil {
			return err
		}
		// The creator is the first member.
		return tx.Create(&models.CommunityMembership{
			CommunityID: community.ID,
			UserID:      community.CreatorID,
			Role:        models.CommunityRoleCreator,
		}).Error
	})
	if err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("Community name already taken")
		}
		return models.NewInternalError(err)
	}
	cache.Invalidate(ctx, cache.StatsKey("communities"))
	return nil
}

func (r *communityRepository) GetByID(ctx context.Context, id uint) (*models.Community, error) {
	var community models.Community
	key := cache.CommunityKey(id)

	err := cache.Aside(ctx, key, &community, cache.CommunityTTL, func() error {
		if err := r.db.WithContext(ctx).Preload("Creator").First(&community, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Community", id)
			}
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &community, nil
}

func (r *communityRepository) List(ctx context.Context, filter CommunityFilter, limit, offset int) ([]models.Community, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Community{})
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR description ILIKE ?", like, like)
	}
	if filter.Featured {
		query = query.Where("is_featured = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	var communities []models.Community
	if err := query.
		Order("activity_score DESC, member_count DESC").
		Limit(limit).
		Offset(offset).
		Find(&communities).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return communities, total, nil
}

func (r *communityRepository) ListByMember(ctx context.Context, userID uint) ([]models.CommunityMembership, error) {
	var memberships []models.CommunityMembership
	err := r.db.WithContext(ctx).
		Preload("Community").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&memberships).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return memberships, nil
}

func (r *communityRepository) ListFeatured(ctx context.Context, limit int) ([]models.Community, error) {
	var communities []models.Community
	err := r.db.WithContext(ctx).
		Where("is_featured = ?", true).
		Order("activity_score DESC").
		Limit(limit).
		Find(&communities).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return communities, nil
}

func (r *communityRepository) Update(ctx context.Context, community *models.Community) error {
	if err := r.db.WithContext(ctx).Save(community).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("Community name already taken")
		}
		return models.NewInternalError(err)
	}
	cache.InvalidateCommunity(ctx, community.ID)
	return nil
}

func (r *communityRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("community_id = ?", id).Delete(&models.CommunityMembership{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Community{}, id).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateCommunity(ctx, id)
	return nil
}

// Join adds a membership row and bumps member_count in one transaction.
func (r *communityRepository) Join(ctx context.Context, communityID, userID uint, role models.CommunityRole) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&models.CommunityMembership{
			CommunityID: communityID,
			UserID:      userID,
			Role:        role,
		}).Error; err != nil {
			return err
		}
		return tx.Model(&models.Community{}).
			Where("id = ?", communityID).
			UpdateColumns(map[string]interface{}{
				"member_count":   gorm.Expr("member_count + 1"),
				"activity_score": gorm.Expr("activity_score + 1"),
			}).Error
	})
	if err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("Already a member of this community")
		}
		return models.NewInternalError(err)
	}
	cache.InvalidateCommunity(ctx, communityID)
	return nil
}

// Leave removes the membership row and decrements member_count in one transaction.
func (r *communityRepository) Leave(ctx context.Context, communityID, userID uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("community_id = ? AND user_id = ?", communityID, userID).
			Delete(&models.CommunityMembership{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return models.NewValidationError("Not a member of this community")
		}
		return tx.Model(&models.Community{}).
			Where("id = ? AND member_count > 0", communityID).
			UpdateColumn("member_count", gorm.Expr("member_count - 1")).Error
	})
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			return err
		}
		return models.NewInternalError(err)
	}
	cache.InvalidateCommunity(ctx, communityID)
	return nil
}

func (r *communityRepository) MembershipOf(ctx context.Context, communityID, userID uint) (*models.CommunityMembership, error) {
	var membership models.CommunityMembership
	err := r.db.WithContext(ctx).
		Where("community_id = ? AND user_id = ?", communityID, userID).
		First(&membership).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &membership, nil
}

func (r *communityRepository) Members(ctx context.Context, communityID uint, limit, offset int) ([]models.CommunityMembership, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.CommunityMembership{}).
		Where("community_id = ?", communityID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	var memberships []models.CommunityMembership
	if err := query.
		Preload("User").
		Order("created_at ASC").
		Limit(limit).
		Offset(offset).
		Find(&memberships).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return memberships, total, nil
}

func (r *communityRepository) SetRole(ctx context.Context, communityID, userID uint, role models.CommunityRole) error {
	result := r.db.WithContext(ctx).
		Model(&models.CommunityMembership{}).
		Where("community_id = ? AND user_id = ?", communityID, userID).
		Update("role", role)
	if result.Error != nil {
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("Membership", userID)
	}
	cache.InvalidateCommunity(ctx, communityID)
	return nil
}

func (r *communityRepository) Stats(ctx context.Context) (*CommunityStats, error) {
	var stats CommunityStats
	key := cache.StatsKey("communities")

	err := cache.Aside(ctx, key, &stats, cache.StatsTTL, func() error {
		if err := r.db.WithContext(ctx).Model(&models.Community{}).Count(&stats.TotalCommunities).Error; err != nil {
			return err
		}
		if err := r.db.WithContext(ctx).Model(&models.CommunityMembership{}).Count(&stats.TotalMembers).Error; err != nil {
			return err
		}

		type categoryCount struct {
			Category string
			Count    int64
		}
		var rows []categoryCount
		if err := r.db.WithContext(ctx).
			Model(&models.Community{}).
			Select("category, COUNT(*) as count").
			Group("category").
			Scan(&rows).Error; err != nil {
			return err
		}
		stats.ByCategory = make(map[string]int64, len(rows))
		for _, row := range rows {
			stats.ByCategory[row.Category] = row.Count
		}
		return nil
	})
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &stats, nil
}
