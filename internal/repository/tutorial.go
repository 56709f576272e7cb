package repository

import (
	"context"
	"errors"
	"time"

	"studentconnect/internal/cache"
	"studentconnect/internal/models"

	"gorm.io/gorm"
)

// TutorialFilter narrows tutorial listings.
type TutorialFilter struct {
	Category   string
	Difficulty string
	Source     models.TutorialSource
	Search     string
}

// TutorialStats is an aggregate snapshot of the tutorial catalog.
type TutorialStats struct {
	TotalTutorials int64            `json:"total_tutorials"`
	ImportedCount  int64            `json:"imported_count"`
	TotalViews     int64            `json:"total_views"`
	TotalBookmarks int64            `json:"total_bookmarks"`
	ByCategory     map[string]int64 `json:"by_category"`
}

// TutorialRepository defines persistence operations for tutorials and
// per-user progress.
type TutorialRepository interface {
	Create(ctx context.Context, tutorial *models.Tutorial) error
	GetByID(ctx context.Context, id uint) (*models.Tutorial, error)
	GetBySourceURL(ctx context.Context, sourceURL string) (*models.Tutorial, error)
	List(ctx context.Context, filter TutorialFilter, limit, offset int) ([]models.Tutorial, int64, error)
	ListPopular(ctx context.Context, limit int) ([]models.Tutorial, error)
	ListRecent(ctx context.Context, limit int) ([]models.Tutorial, error)
	Categories(ctx context.Context) ([]string, error)
	Update(ctx context.Context, tutorial *models.Tutorial) error
	Delete(ctx context.Context, id uint) error
	IncrementView(ctx context.Context, id uint) error

	UpsertProgress(ctx context.Context, tutorialID, userID uint, completionRate int) (*models.TutorialProgress, error)
	ToggleBookmark(ctx context.Context, tutorialID, userID uint) (*models.TutorialProgress, error)
	GetProgress(ctx context.Context, tutorialID, userID uint) (*models.TutorialProgress, error)
	ProgressByUser(ctx context.Context, userID uint) ([]models.TutorialProgress, error)

	Stats(ctx context.Context) (*TutorialStats, error)
}

type tutorialRepository struct {
	db *gorm.DB
}

// NewTutorialRepository returns a new TutorialRepository implementation.
func NewTutorialRepository(db *gorm.DB) TutorialRepository {
	return &tutorialRepository{db: db}
}

func (r *tutorialRepository) Create(ctx context.Context, tutorial *models.Tutorial) error {
	if err := r.db.WithContext(ctx).Create(tutorial).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("Tutorial already imported from this URL")
		}
		return models.NewInternalError(err)
	}
	cache.Invalidate(ctx, cache.StatsKey("tutorials"))
	return nil
}

func (r *tutorialRepository) GetByID(ctx context.Context, id uint) (*models.Tutorial, error) {
	var tutorial models.Tutorial
	key := cache.TutorialKey(id)

	err := cache.Aside(ctx, key, &tutorial, cache.TutorialTTL, func() error {
		if err := r.db.WithContext(ctx).Preload("Author").First(&tutorial, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Tutorial", id)
			}
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &tutorial, nil
}

func (r *tutorialRepository) GetBySourceURL(ctx context.Context, sourceURL string) (*models.Tutorial, error) {
	var tutorial models.Tutorial
	err := r.db.WithContext(ctx).
		Where("source_url = ?", sourceURL).
		First(&tutorial).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &tutorial, nil
}

func (r *tutorialRepository) List(ctx context.Context, filter TutorialFilter, limit, offset int) ([]models.Tutorial, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Tutorial{})
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Difficulty != "" {
		query = query.Where("difficulty = ?", filter.Difficulty)
	}
	if filter.Source != "" {
		query = query.Where("source = ?", filter.Source)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("title ILIKE ? OR description ILIKE ? OR tags ILIKE ?", like, like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	var tutorials []models.Tutorial
	if err := query.
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&tutorials).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return tutorials, total, nil
}

func (r *tutorialRepository) ListPopular(ctx context.Context, limit int) ([]models.Tutorial, error) {
	var tutorials []models.Tutorial
	err := r.db.WithContext(ctx).
		Order("view_count DESC, bookmark_count DESC").
		Limit(limit).
		Find(&tutorials).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return tutorials, nil
}

func (r *tutorialRepository) ListRecent(ctx context.Context, limit int) ([]models.Tutorial, error) {
	var tutorials []models.Tutorial
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&tutorials).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return tutorials, nil
}

func (r *tutorialRepository) Categories(ctx context.Context) ([]string, error) {
	var categories []string
	err := r.db.WithContext(ctx).
		Model(&models.Tutorial{}).
		Distinct("category").
		Where("category != ''").
		Order("category ASC").
		Pluck("category", &categories).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return categories, nil
}

func (r *tutorialRepository) Update(ctx context.Context, tutorial *models.Tutorial) error {
	if err := r.db.WithContext(ctx).Save(tutorial).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("Tutorial already imported from this URL")
		}
		return models.NewInternalError(err)
	}
	cache.InvalidateTutorial(ctx, tutorial.ID)
	return nil
}

func (r *tutorialRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tutorial_id = ?", id).Delete(&models.TutorialProgress{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Tutorial{}, id).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateTutorial(ctx, id)
	return nil
}

// IncrementView bumps view_count without touching updated_at. Hot path,
// so the cached copy is left to expire rather than invalidated.
func (r *tutorialRepository) IncrementView(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).
		Model(&models.Tutorial{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + 1"))
	if result.Error != nil {
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("Tutorial", id)
	}
	return nil
}

func (r *tutorialRepository) UpsertProgress(ctx context.Context, tutorialID, userID uint, completionRate int) (*models.TutorialProgress, error) {
	var progress models.TutorialProgress
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("tutorial_id = ? AND user_id = ?", tutorialID, userID).
			First(&progress).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			progress = models.TutorialProgress{
				TutorialID:     tutorialID,
				UserID:         userID,
				CompletionRate: completionRate,
				LastAccessed:   time.Now(),
			}
			return tx.Create(&progress).Error
		}
		if err != nil {
			return err
		}
		progress.CompletionRate = completionRate
		progress.LastAccessed = time.Now()
		return tx.Save(&progress).Error
	})
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &progress, nil
}

// ToggleBookmark flips is_bookmarked and keeps the tutorial's
// bookmark_count in step, in one transaction.
func (r *tutorialRepository) ToggleBookmark(ctx context.Context, tutorialID, userID uint) (*models.TutorialProgress, error) {
	var progress models.TutorialProgress
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("tutorial_id = ? AND user_id = ?", tutorialID, userID).
			First(&progress).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			progress = models.TutorialProgress{
				TutorialID:   tutorialID,
				UserID:       userID,
				IsBookmarked: true,
				LastAccessed: time.Now(),
			}
			if err := tx.Create(&progress).Error; err != nil {
				return err
			}
			return tx.Model(&models.Tutorial{}).
				Where("id = ?", tutorialID).
				UpdateColumn("bookmark_count", gorm.Expr("bookmark_count + 1")).Error
		}
		if err != nil {
			return err
		}

		progress.IsBookmarked = !progress.IsBookmarked
		progress.LastAccessed = time.Now()
		if err := tx.Save(&progress).Error; err != nil {
			return err
		}
		if progress.IsBookmarked {
			return tx.Model(&models.Tutorial{}).
				Where("id = ?", tutorialID).
				UpdateColumn("bookmark_count", gorm.Expr("bookmark_count + 1")).Error
		}
		return tx.Model(&models.Tutorial{}).
			Where("id = ? AND bookmark_count > 0", tutorialID).
			UpdateColumn("bookmark_count", gorm.Expr("bookmark_count - 1")).Error
	})
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	cache.InvalidateTutorial(ctx, tutorialID)
	return &progress, nil
}

func (r *tutorialRepository) GetProgress(ctx context.Context, tutorialID, userID uint) (*models.TutorialProgress, error) {
	var progress models.TutorialProgress
	err := r.db.WithContext(ctx).
		Where("tutorial_id = ? AND user_id = ?", tutorialID, userID).
		First(&progress).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &progress, nil
}

func (r *tutorialRepository) ProgressByUser(ctx context.Context, userID uint) ([]models.TutorialProgress, error) {
	var entries []models.TutorialProgress
	err := r.db.WithContext(ctx).
		Preload("Tutorial").
		Where("user_id = ?", userID).
		Order("last_accessed DESC").
		Find(&entries).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return entries, nil
}

func (r *tutorialRepository) Stats(ctx context.Context) (*TutorialStats, error) {
	var stats TutorialStats
	key := cache.StatsKey("tutorials")

	err := cache.Aside(ctx, key, &stats, cache.StatsTTL, func() error {
		db := r.db.WithContext(ctx)
		if err := db.Model(&models.Tutorial{}).Count(&stats.TotalTutorials).Error; err != nil {
			return err
		}
		if err := db.Model(&models.Tutorial{}).
			Where("source = ?", models.TutorialSourceGeeksforGeeks).
			Count(&stats.ImportedCount).Error; err != nil {
			return err
		}

		type sums struct {
			Views     int64
			Bookmarks int64
		}
		var totals sums
		if err := db.Model(&models.Tutorial{}).
			Select("COALESCE(SUM(view_count), 0) as views, COALESCE(SUM(bookmark_count), 0) as bookmarks").
			Scan(&totals).Error; err != nil {
			return err
		}
		stats.TotalViews = totals.Views
		stats.TotalBookmarks = totals.Bookmarks

		type categoryCount struct {
			Category string
			Count    int64
		}
		var rows []categoryCount
		if err := db.Model(&models.Tutorial{}).
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
