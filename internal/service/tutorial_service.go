package service

import (
	"context"
	"errors"
	"strings"

	"studentconnect/internal/featureflags"
	"studentconnect/internal/gfg"
	"studentconnect/internal/models"
	"studentconnect/internal/observability"
	"studentconnect/internal/repository"
)

type TutorialService struct {
	tutorialRepo repository.TutorialRepository
	scraper      *gfg.Scraper
	flags        *featureflags.Manager
	isAdmin      func(ctx context.Context, userID uint) (bool, error)
}

type CreateTutorialInput struct {
	UserID           uint
	Title            string
	Description      string
	Content          string
	Category         string
	Difficulty       string
	Tags             string
	EstimatedMinutes int
}

type UpdateTutorialInput struct {
	UserID      uint
	TutorialID  uint
	Title       *string
	Description *string
	Content     *string
	Category    *string
	Difficulty  *string
	Tags        *string
}

type ImportInput struct {
	UserID    uint
	SourceURL string
	Category  string
}

func NewTutorialService(
	tutorialRepo repository.TutorialRepository,
	scraper *gfg.Scraper,
	flags *featureflags.Manager,
	isAdmin func(ctx context.Context, userID uint) (bool, error),
) *TutorialService {
	return &TutorialService{
		tutorialRepo: tutorialRepo,
		scraper:      scraper,
		flags:        flags,
		isAdmin:      isAdmin,
	}
}

func (s *TutorialService) CreateTutorial(ctx context.Context, in CreateTutorialInput) (*models.Tutorial, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, models.NewValidationError("Title is required")
	}
	if strings.TrimSpace(in.Content) == "" {
		return nil, models.NewValidationError("Content is required")
	}

	authorID := in.UserID
	tutorial := &models.Tutorial{
		Title:            strings.TrimSpace(in.Title),
		Description:      in.Description,
		Content:          in.Content,
		Category:         in.Category,
		Difficulty:       in.Difficulty,
		Tags:             in.Tags,
		Source:           models.TutorialSourceManual,
		AuthorID:         &authorID,
		EstimatedMinutes: in.EstimatedMinutes,
	}
	if err := s.tutorialRepo.Create(ctx, tutorial); err != nil {
		return nil, err
	}
	return tutorial, nil
}

// ImportFromGfG scrapes a GeeksforGeeks article and stores it as a tutorial.
// Gated on the gfg_import feature flag; re-importing a URL returns the
// existing tutorial instead of a duplicate.
func (s *TutorialService) ImportFromGfG(ctx context.Context, in ImportInput) (*models.Tutorial, bool, error) {
	if s.flags == nil || !s.flags.Enabled(featureflags.FlagGfGImport, in.UserID) {
		return nil, false, models.NewForbiddenError("Tutorial import is not enabled")
	}
	if s.scraper == nil {
		return nil, false, models.NewInternalError(errors.New("tutorial importer is not configured"))
	}
	if strings.TrimSpace(in.SourceURL) == "" {
		return nil, false, models.NewValidationError("source_url is required")
	}
	if in.Category != "" {
		if _, ok := gfg.Categories[in.Category]; !ok {
			return nil, false, models.NewValidationError("Unknown import category")
		}
	}

	if err := s.scraper.ValidateURL(in.SourceURL); err != nil {
		return nil, false, models.NewValidationError(err.Error())
	}

	existing, err := s.tutorialRepo.GetBySourceURL(ctx, in.SourceURL)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		observability.TutorialImports.WithLabelValues("duplicate").Inc()
		return existing, false, nil
	}

	article, err := s.scraper.Fetch(ctx, in.SourceURL)
	if err != nil {
		observability.TutorialImports.WithLabelValues("fetch_error").Inc()
		return nil, false, models.NewValidationError("Could not import tutorial from the given URL")
	}

	sourceURL := article.SourceURL
	tutorial := &models.Tutorial{
		Title:       article.Title,
		Description: article.Description,
		Content:     article.Content,
		Category:    in.Category,
		Source:      models.TutorialSourceGeeksforGeeks,
		SourceURL:   &sourceURL,
	}
	if err := s.tutorialRepo.Create(ctx, tutorial); err != nil {
		// Concurrent import of the same URL: surface the winner.
		if existing, lookupErr := s.tutorialRepo.GetBySourceURL(ctx, in.SourceURL); lookupErr == nil && existing != nil {
			observability.TutorialImports.WithLabelValues("duplicate").Inc()
			return existing, false, nil
		}
		observability.TutorialImports.WithLabelValues("store_error").Inc()
		return nil, false, err
	}

	observability.TutorialImports.WithLabelValues("imported").Inc()
	return tutorial, true, nil
}

// GetTutorial returns the tutorial and counts the view.
func (s *TutorialService) GetTutorial(ctx context.Context, id uint) (*models.Tutorial, error) {
	tutorial, err := s.tutorialRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.tutorialRepo.IncrementView(ctx, id); err == nil {
		tutorial.ViewCount++
	}
	return tutorial, nil
}

func (s *TutorialService) ListTutorials(ctx context.Context, filter repository.TutorialFilter, limit, offset int) ([]models.Tutorial, int64, error) {
	return s.tutorialRepo.List(ctx, filter, limit, offset)
}

func (s *TutorialService) PopularTutorials(ctx context.Context, limit int) ([]models.Tutorial, error) {
	return s.tutorialRepo.ListPopular(ctx, limit)
}

func (s *TutorialService) RecentTutorials(ctx context.Context, limit int) ([]models.Tutorial, error) {
	return s.tutorialRepo.ListRecent(ctx, limit)
}

func (s *TutorialService) Categories(ctx context.Context) ([]string, error) {
	return s.tutorialRepo.Categories(ctx)
}

func (s *TutorialService) UpdateTutorial(ctx context.Context, in UpdateTutorialInput) (*models.Tutorial, error) {
	tutorial, err := s.tutorialRepo.GetByID(ctx, in.TutorialID)
	if err != nil {
		return nil, err
	}
	if err := s.requireAuthor(ctx, tutorial, in.UserID); err != nil {
		return nil, err
	}

	if in.Title != nil {
		if strings.TrimSpace(*in.Title) == "" {
			return nil, models.NewValidationError("Title cannot be empty")
		}
		tutorial.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		tutorial.Description = *in.Description
	}
	if in.Content != nil {
		tutorial.Content = *in.Content
	}
	if in.Category != nil {
		tutorial.Category = *in.Category
	}
	if in.Difficulty != nil {
		tutorial.Difficulty = *in.Difficulty
	}
	if in.Tags != nil {
		tutorial.Tags = *in.Tags
	}

	if err := s.tutorialRepo.Update(ctx, tutorial); err != nil {
		return nil, err
	}
	return tutorial, nil
}

func (s *TutorialService) DeleteTutorial(ctx context.Context, tutorialID, userID uint) error {
	tutorial, err := s.tutorialRepo.GetByID(ctx, tutorialID)
	if err != nil {
		return err
	}
	if err := s.requireAuthor(ctx, tutorial, userID); err != nil {
		return err
	}
	return s.tutorialRepo.Delete(ctx, tutorialID)
}

func (s *TutorialService) UpdateProgress(ctx context.Context, tutorialID, userID uint, completionRate int) (*models.TutorialProgress, error) {
	if completionRate < 0 || completionRate > 100 {
		return nil, models.NewValidationError("completion_rate must be between 0 and 100")
	}
	if _, err := s.tutorialRepo.GetByID(ctx, tutorialID); err != nil {
		return nil, err
	}
	return s.tutorialRepo.UpsertProgress(ctx, tutorialID, userID, completionRate)
}

func (s *TutorialService) ToggleBookmark(ctx context.Context, tutorialID, userID uint) (*models.TutorialProgress, error) {
	if _, err := s.tutorialRepo.GetByID(ctx, tutorialID); err != nil {
		return nil, err
	}
	return s.tutorialRepo.ToggleBookmark(ctx, tutorialID, userID)
}

func (s *TutorialService) MyProgress(ctx context.Context, userID uint) ([]models.TutorialProgress, error) {
	return s.tutorialRepo.ProgressByUser(ctx, userID)
}

func (s *TutorialService) Stats(ctx context.Context) (*repository.TutorialStats, error) {
	return s.tutorialRepo.Stats(ctx)
}

// requireAuthor allows the original author or a site admin. Imported
// tutorials have no author, so only admins may edit them.
func (s *TutorialService) requireAuthor(ctx context.Context, tutorial *models.Tutorial, userID uint) error {
	if tutorial.AuthorID != nil && *tutorial.AuthorID == userID {
		return nil
	}
	if s.isAdmin != nil {
		admin, err := s.isAdmin(ctx, userID)
		if err != nil {
			return err
		}
		if admin {
			return nil
		}
	}
	return models.NewForbiddenError("Only the author can modify a tutorial")
}
