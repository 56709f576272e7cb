package repository

import (
	"context"
	"errors"
	"fmt"

	"studentconnect/internal/cache"
	"studentconnect/internal/models"
	"studentconnect/internal/observability"

	"gorm.io/gorm"
)

// SkillStats is an aggregate snapshot of the skill catalog.
type SkillStats struct {
	TotalSkills       int64            `json:"total_skills"`
	TotalUserSkills   int64            `json:"total_user_skills"`
	TotalEndorsements int64            `json:"total_endorsements"`
	ByCategory        map[string]int64 `json:"by_category"`
}

// SkillRepository defines persistence operations for the skill catalog,
// user skills and endorsements.
type SkillRepository interface {
	ListCatalog(ctx context.Context, category, search string) ([]models.Skill, error)
	Categories(ctx context.Context) ([]string, error)
	GetOrCreate(ctx context.Context, name, category string) (*models.Skill, error)
	GetByID(ctx context.Context, id uint) (*models.Skill, error)
	ListPopular(ctx context.Context, limit int) ([]models.Skill, error)

	UserSkills(ctx context.Context, userID uint) ([]models.UserSkill, error)
	AddUserSkill(ctx context.Context, userSkill *models.UserSkill) error
	UpdateUserSkill(ctx context.Context, userSkill *models.UserSkill) error
	GetUserSkill(ctx context.Context, userID, skillID uint) (*models.UserSkill, error)
	RemoveUserSkill(ctx context.Context, userID, skillID uint) error

	Endorse(ctx context.Context, endorsement *models.SkillEndorsement) error
	RemoveEndorsement(ctx context.Context, endorserID, endorsedID, skillID uint) error
	EndorsementsGiven(ctx context.Context, userID uint) ([]models.SkillEndorsement, error)
	EndorsementsReceived(ctx context.Context, userID uint) ([]models.SkillEndorsement, error)

	SearchUsersBySkill(ctx context.Context, skillID uint, proficiency models.Proficiency, limit, offset int) ([]models.UserSkill, int64, error)
	Stats(ctx context.Context) (*SkillStats, error)
}

type skillRepository struct {
	db *gorm.DB
}

// NewSkillRepository returns a new SkillRepository implementation.
func NewSkillRepository(db *gorm.DB) SkillRepository {
	return &skillRepository{db: db}
}

// user count subquery, filled into the Skill.UserCount computed column.
func (r *skillRepository) withUserCount(db *gorm.DB) *gorm.DB {
	return db.Select("skills.*, (SELECT COUNT(*) FROM user_skills WHERE user_skills.skill_id = skills.id) AS user_count")
}

func (r *skillRepository) ListCatalog(ctx context.Context, category, search string) ([]models.Skill, error) {
	var skills []models.Skill

	// The unfiltered catalog is hot and changes rarely.
	if category == "" && search == "" {
		err := cache.Aside(ctx, cache.SkillCatalogKey, &skills, cache.SkillCatalogTTL, func() error {
			query := r.withUserCount(r.db.WithContext(ctx).Model(&models.Skill{}))
			return query.Order("name ASC").Find(&skills).Error
		})
		if err != nil {
			return nil, models.NewInternalError(err)
		}
		return skills, nil
	}

	query := r.withUserCount(r.db.WithContext(ctx).Model(&models.Skill{}))
	if category != "" {
		query = query.Where("category = ?", category)
	}
	if search != "" {
		query = query.Where("name ILIKE ?", "%"+search+"%")
	}
	if err := query.Order("name ASC").Find(&skills).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return skills, nil
}

func (r *skillRepository) Categories(ctx context.Context) ([]string, error) {
	var categories []string
	err := r.db.WithContext(ctx).
		Model(&models.Skill{}).
		Distinct("category").
		Where("category != ''").
		Order("category ASC").
		Pluck("category", &categories).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return categories, nil
}

// GetOrCreate is idempotent on name: a duplicate insert falls back to a
// lookup of the existing row.
func (r *skillRepository) GetOrCreate(ctx context.Context, name, category string) (*models.Skill, error) {
	var skill models.Skill
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&skill).Error
	if err == nil {
		return &skill, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewInternalError(err)
	}

	skill = models.Skill{Name: name, Category: category}
	if err := r.db.WithContext(ctx).Create(&skill).Error; err != nil {
		if isUniqueConstraintError(err) {
			if err := r.db.WithContext(ctx).Where("name = ?", name).First(&skill).Error; err != nil {
				return nil, models.NewInternalError(err)
			}
			return &skill, nil
		}
		return nil, models.NewInternalError(err)
	}
	cache.InvalidateSkillCatalog(ctx)
	return &skill, nil
}

func (r *skillRepository) GetByID(ctx context.Context, id uint) (*models.Skill, error) {
	var skill models.Skill
	query := r.withUserCount(r.db.WithContext(ctx).Model(&models.Skill{}))
	err := query.First(&skill, "skills.id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Skill", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &skill, nil
}

func (r *skillRepository) ListPopular(ctx context.Context, limit int) ([]models.Skill, error) {
	var skills []models.Skill
	query := r.withUserCount(r.db.WithContext(ctx).Model(&models.Skill{}))
	err := query.Order("user_count DESC, name ASC").Limit(limit).Find(&skills).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return skills, nil
}

func (r *skillRepository) UserSkills(ctx context.Context, userID uint) ([]models.UserSkill, error) {
	var userSkills []models.UserSkill
	err := r.db.WithContext(ctx).
		Preload("Skill").
		Where("user_id = ?", userID).
		Order("endorsement_count DESC, created_at ASC").
		Find(&userSkills).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return userSkills, nil
}

func (r *skillRepository) AddUserSkill(ctx context.Context, userSkill *models.UserSkill) error {
	if err := r.db.WithContext(ctx).Create(userSkill).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("Skill already added to your profile")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *skillRepository) UpdateUserSkill(ctx context.Context, userSkill *models.UserSkill) error {
	if err := r.db.WithContext(ctx).Save(userSkill).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *skillRepository) GetUserSkill(ctx context.Context, userID, skillID uint) (*models.UserSkill, error) {
	var userSkill models.UserSkill
	err := r.db.WithContext(ctx).
		Preload("Skill").
		Where("user_id = ? AND skill_id = ?", userID, skillID).
		First(&userSkill).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &userSkill, nil
}

// RemoveUserSkill drops the user skill and its endorsements together.
func (r *skillRepository) RemoveUserSkill(ctx context.Context, userID, skillID uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("user_id = ? AND skill_id = ?", userID, skillID).
			Delete(&models.UserSkill{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return models.NewNotFoundError("User skill", skillID)
		}
		return tx.Where("endorsed_id = ? AND skill_id = ?", userID, skillID).
			Delete(&models.SkillEndorsement{}).Error
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

// Endorse inserts the endorsement, bumps the endorsed user's
// endorsement_count, and writes a notification, all in one transaction.
func (r *skillRepository) Endorse(ctx context.Context, endorsement *models.SkillEndorsement) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var userSkill models.UserSkill
		err := tx.Preload("Skill").
			Where("user_id = ? AND skill_id = ?", endorsement.EndorsedID, endorsement.SkillID).
			First(&userSkill).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewValidationError("User does not have this skill on their profile")
			}
			return err
		}

		if err := tx.Create(endorsement).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.UserSkill{}).
			Where("id = ?", userSkill.ID).
			UpdateColumn("endorsement_count", gorm.Expr("endorsement_count + 1")).Error; err != nil {
			return err
		}

		var endorser models.User
		if err := tx.First(&endorser, endorsement.EndorserID).Error; err != nil {
			return err
		}
		skillName := ""
		if userSkill.Skill != nil {
			skillName = userSkill.Skill.Name
		}
		return tx.Create(&models.Notification{
			UserID: endorsement.EndorsedID,
			Type:   models.NotificationTypeEndorsement,
			Title:  "New skill endorsement",
			Body:   fmt.Sprintf("%s endorsed your %s skill", endorser.Username, skillName),
		}).Error
	})
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			return err
		}
		if isUniqueConstraintError(err) {
			return models.NewConflictError("You have already endorsed this skill")
		}
		return models.NewInternalError(err)
	}
	observability.NotificationsWritten.WithLabelValues(string(models.NotificationTypeEndorsement)).Inc()
	return nil
}

func (r *skillRepository) RemoveEndorsement(ctx context.Context, endorserID, endorsedID, skillID uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("endorser_id = ? AND endorsed_id = ? AND skill_id = ?",
			endorserID, endorsedID, skillID).
			Delete(&models.SkillEndorsement{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return models.NewNotFoundError("Endorsement", skillID)
		}
		return tx.Model(&models.UserSkill{}).
			Where("user_id = ? AND skill_id = ? AND endorsement_count > 0", endorsedID, skillID).
			UpdateColumn("endorsement_count", gorm.Expr("endorsement_count - 1")).Error
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

func (r *skillRepository) EndorsementsGiven(ctx context.Context, userID uint) ([]models.SkillEndorsement, error) {
	var endorsements []models.SkillEndorsement
	err := r.db.WithContext(ctx).
		Preload("Endorsed").
		Preload("Skill").
		Where("endorser_id = ?", userID).
		Order("created_at DESC").
		Find(&endorsements).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return endorsements, nil
}

func (r *skillRepository) EndorsementsReceived(ctx context.Context, userID uint) ([]models.SkillEndorsement, error) {
	var endorsements []models.SkillEndorsement
	err := r.db.WithContext(ctx).
		Preload("Endorser").
		Preload("Skill").
		Where("endorsed_id = ?", userID).
		Order("created_at DESC").
		Find(&endorsements).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return endorsements, nil
}

func (r *skillRepository) SearchUsersBySkill(ctx context.Context, skillID uint, proficiency models.Proficiency, limit, offset int) ([]models.UserSkill, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.UserSkill{}).
		Where("skill_id = ?", skillID)
	if proficiency != "" {
		query = query.Where("proficiency = ?", proficiency)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	var userSkills []models.UserSkill
	if err := query.
		Preload("User").
		Preload("Skill").
		Order("endorsement_count DESC").
		Limit(limit).
		Offset(offset).
		Find(&userSkills).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return userSkills, total, nil
}

func (r *skillRepository) Stats(ctx context.Context) (*SkillStats, error) {
	var stats SkillStats
	db := r.db.WithContext(ctx)

	if err := db.Model(&models.Skill{}).Count(&stats.TotalSkills).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	if err := db.Model(&models.UserSkill{}).Count(&stats.TotalUserSkills).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	if err := db.Model(&models.SkillEndorsement{}).Count(&stats.TotalEndorsements).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	type categoryCount struct {
		Category string
		Count    int64
	}
	var rows []categoryCount
	if err := db.Model(&models.Skill{}).
		Select("category, COUNT(*) as count").
		Group("category").
		Scan(&rows).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	stats.ByCategory = make(map[string]int64, len(rows))
	for _, row := range rows {
		stats.ByCategory[row.Category] = row.Count
	}
	return &stats, nil
}
