package service

import (
	"context"
	"net/url"
	"strings"

	"studentconnect/internal/models"
	"studentconnect/internal/repository"
)

type PostService struct {
	postRepo      repository.PostRepository
	communityRepo repository.CommunityRepository
	isAdmin       func(ctx context.Context, userID uint) (bool, error)
}

type CreatePostInput struct {
	UserID      uint
	Content     string
	ImageURL    string
	CommunityID *uint
}

type ListPostsInput struct {
	Limit         int
	Offset        int
	CurrentUserID uint
	CommunityID   *uint
}

type UpdatePostInput struct {
	UserID   uint
	PostID   uint
	Content  string
	ImageURL string
}

type DeletePostInput struct {
	UserID uint
	PostID uint
}

func NewPostService(
	postRepo repository.PostRepository,
	communityRepo repository.CommunityRepository,
	isAdmin func(ctx context.Context, userID uint) (bool, error),
) *PostService {
	return &PostService{
		postRepo:      postRepo,
		communityRepo: communityRepo,
		isAdmin:       isAdmin,
	}
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	const maxContentLen = 10000

	if strings.TrimSpace(in.Content) == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if len(in.Content) > maxContentLen {
		return nil, models.NewValidationError("Content too long (max 10000 characters)")
	}
	if in.ImageURL != "" {
		if _, err := url.ParseRequestURI(in.ImageURL); err != nil {
			return nil, models.NewValidationError("image_url must be a valid URL")
		}
	}

	// Posting into a community requires membership.
	if in.CommunityID != nil {
		membership, err := s.communityRepo.MembershipOf(ctx, *in.CommunityID, in.UserID)
		if err != nil {
			return nil, err
		}
		if membership == nil {
			return nil, models.NewForbiddenError("Join the community before posting")
		}
	}

	post := &models.Post{
		Content:     in.Content,
		ImageURL:    in.ImageURL,
		AuthorID:    in.UserID,
		CommunityID: in.CommunityID,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, post.ID, in.UserID)
}

func (s *PostService) ListPosts(ctx context.Context, in ListPostsInput) ([]*models.Post, int64, error) {
	return s.postRepo.List(ctx, in.CommunityID, in.Limit, in.Offset, in.CurrentUserID)
}

func (s *PostService) GetPost(ctx context.Context, id uint, currentUserID uint) (*models.Post, error) {
	return s.postRepo.GetByID(ctx, id, currentUserID)
}

func (s *PostService) GetUserPosts(ctx context.Context, userID uint, limit, offset int, currentUserID uint) ([]*models.Post, error) {
	return s.postRepo.ListByAuthor(ctx, userID, limit, offset, currentUserID)
}

func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, in.PostID, in.UserID)
	if err != nil {
		return nil, err
	}

	if post.AuthorID != in.UserID {
		return nil, models.NewForbiddenError("You can only update your own posts")
	}

	if in.Content != "" {
		post.Content = in.Content
	}
	if in.ImageURL != "" {
		post.ImageURL = in.ImageURL
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *PostService) DeletePost(ctx context.Context, in DeletePostInput) error {
	post, err := s.postRepo.GetByID(ctx, in.PostID, in.UserID)
	if err != nil {
		return err
	}

	if post.AuthorID != in.UserID {
		if s.isAdmin == nil {
			return models.NewForbiddenError("You can only delete your own posts")
		}
		admin, err := s.isAdmin(ctx, in.UserID)
		if err != nil {
			return err
		}
		if !admin {
			return models.NewForbiddenError("You can only delete your own posts")
		}
	}

	return s.postRepo.Delete(ctx, in.PostID)
}

// ToggleLike likes the post if not yet liked, otherwise removes the like.
func (s *PostService) ToggleLike(ctx context.Context, userID, postID uint) (*models.Post, error) {
	if _, err := s.postRepo.GetByID(ctx, postID, userID); err != nil {
		return nil, err
	}

	isLiked, err := s.postRepo.IsLiked(ctx, userID, postID)
	if err != nil {
		return nil, err
	}

	if isLiked {
		if err := s.postRepo.Unlike(ctx, userID, postID); err != nil {
			return nil, err
		}
	} else {
		if err := s.postRepo.Like(ctx, userID, postID); err != nil {
			return nil, err
		}
	}

	return s.postRepo.GetByID(ctx, postID, userID)
}
