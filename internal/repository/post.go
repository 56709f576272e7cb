package repository

import (
	"context"
	"errors"

	"studentconnect/internal/cache"
	"studentconnect/internal/models"

	"gorm.io/gorm"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint, currentUserID uint) (*models.Post, error)
	List(ctx context.Context, communityID *uint, limit, offset int, currentUserID uint) ([]*models.Post, int64, error)
	ListByAuthor(ctx context.Context, authorID uint, limit, offset int, currentUserID uint) ([]*models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id uint) error
	IsLiked(ctx context.Context, userID, postID uint) (bool, error)
	Like(ctx context.Context, userID, postID uint) error
	Unlike(ctx context.Context, userID, postID uint) error
	CountLikes(ctx context.Context, postID uint) (int64, error)
}

// postRepository implements PostRepository
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

// applyPostDetails adds subqueries to fetch counts and liked status in a single query.
func (r *postRepository) applyPostDetails(db *gorm.DB, currentUserID uint) *gorm.DB {
	selectQuery := "posts.*, " +
		"(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id AND comments.deleted_at IS NULL) as comments_count, " +
		"(SELECT COUNT(*) FROM likes WHERE likes.post_id = posts.id) as likes_count"

	if currentUserID != 0 {
		return db.Select(selectQuery+", EXISTS(SELECT 1 FROM likes WHERE likes.post_id = posts.id AND likes.user_id = ?) as liked", currentUserID)
	}

	return db.Select(selectQuery + ", false as liked")
}

// Create inserts the post and, for community posts, bumps the community's
// activity score in the same transaction.
func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(post).Error; err != nil {
			return err
		}
		if post.CommunityID == nil {
			return nil
		}
		return tx.Model(&models.Community{}).
			Where("id = ?", *post.CommunityID).
			UpdateColumn("activity_score", gorm.Expr("activity_score + 1")).Error
	})
}

func (r *postRepository) GetByID(ctx context.Context, id uint, currentUserID uint) (*models.Post, error) {
	var post models.Post
	key := cache.PostKey(id)

	var err error
	if currentUserID == 0 {
		err = cache.Aside(ctx, key, &post, cache.PostTTL, func() error {
			return r.applyPostDetails(r.db.WithContext(ctx), 0).
				Preload("Author").
				First(&post, id).Error
		})
	} else {
		err = r.applyPostDetails(r.db.WithContext(ctx), currentUserID).
			Preload("Author").
			First(&post, id).Error
	}

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) List(ctx context.Context, communityID *uint, limit, offset int, currentUserID uint) ([]*models.Post, int64, error) {
	countQuery := r.db.WithContext(ctx).Model(&models.Post{})
	if communityID != nil {
		countQuery = countQuery.Where("community_id = ?", *communityID)
	}
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := r.applyPostDetails(r.db.WithContext(ctx), currentUserID).
		Preload("Author")
	if communityID != nil {
		query = query.Where("community_id = ?", *communityID)
	}

	var posts []*models.Post
	err := query.
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	return posts, total, err
}

func (r *postRepository) ListByAuthor(ctx context.Context, authorID uint, limit, offset int, currentUserID uint) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.applyPostDetails(r.db.WithContext(ctx), currentUserID).
		Preload("Author").
		Where("author_id = ?", authorID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	return posts, err
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Save(post).Error; err != nil {
		return err
	}
	cache.Invalidate(ctx, cache.PostKey(post.ID))
	return nil
}

func (r *postRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Post{}, id).Error; err != nil {
		return err
	}
	cache.Invalidate(ctx, cache.PostKey(id))
	return nil
}

func (r *postRepository) IsLiked(ctx context.Context, userID, postID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *postRepository) Like(ctx context.Context, userID, postID uint) error {
	// Use INSERT ... ON CONFLICT DO NOTHING to handle race conditions
	// This is atomic and prevents duplicate key errors
	result := r.db.WithContext(ctx).Exec(
		`INSERT INTO likes (user_id, post_id, created_at)
		 VALUES (?, ?, NOW())
		 ON CONFLICT (user_id, post_id) DO NOTHING`,
		userID, postID,
	)
	if result.Error == nil {
		cache.Invalidate(ctx, cache.PostKey(postID))
	}
	return result.Error
}

func (r *postRepository) Unlike(ctx context.Context, userID, postID uint) error {
	err := r.db.WithContext(ctx).Where("user_id = ? AND post_id = ?", userID, postID).Delete(&models.Like{}).Error
	if err == nil {
		cache.Invalidate(ctx, cache.PostKey(postID))
	}
	return err
}

func (r *postRepository) CountLikes(ctx context.Context, postID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("post_id = ?", postID).
		Count(&count).Error
	return count, err
}
