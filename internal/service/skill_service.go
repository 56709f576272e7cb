package service

import (
	"context"
	"strings"

	"studentconnect/internal/models"
	"studentconnect/internal/repository"
)

type SkillService struct {
	skillRepo repository.SkillRepository
	userRepo  repository.UserRepository
}

type AddSkillInput struct {
	UserID      uint
	Name        string
	Category    string
	Proficiency models.Proficiency
}

type EndorseInput struct {
	EndorserID uint
	EndorsedID uint
	SkillID    uint
	Message    string
}

func NewSkillService(skillRepo repository.SkillRepository, userRepo repository.UserRepository) *SkillService {
	return &SkillService{skillRepo: skillRepo, userRepo: userRepo}
}

func (s *SkillService) Catalog(ctx context.Context, category, search string) ([]models.Skill, error) {
	return s.skillRepo.ListCatalog(ctx, category, search)
}

func (s *SkillService) Categories(ctx context.Context) ([]string, error) {
	return s.skillRepo.Categories(ctx)
}

func (s *SkillService) PopularSkills(ctx context.Context, limit int) ([]models.Skill, error) {
	return s.skillRepo.ListPopular(ctx, limit)
}

func (s *SkillService) UserSkills(ctx context.Context, userID uint) ([]models.UserSkill, error) {
	if _, err := s.userRepo.GetActiveByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.skillRepo.UserSkills(ctx, userID)
}

// AddSkill attaches a skill to the user's profile, creating the catalog
// entry on first use.
func (s *SkillService) AddSkill(ctx context.Context, in AddSkillInput) (*models.UserSkill, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, models.NewValidationError("Skill name is required")
	}
	if len(name) > 80 {
		return nil, models.NewValidationError("Skill name too long (max 80 characters)")
	}
	if in.Proficiency == "" {
		in.Proficiency = models.ProficiencyBeginner
	}
	if !models.ValidProficiency(in.Proficiency) {
		return nil, models.NewValidationError("Invalid proficiency level")
	}

	skill, err := s.skillRepo.GetOrCreate(ctx, name, strings.TrimSpace(in.Category))
	if err != nil {
		return nil, err
	}

	userSkill := &models.UserSkill{
		UserID:      in.UserID,
		SkillID:     skill.ID,
		Proficiency: in.Proficiency,
	}
	if err := s.skillRepo.AddUserSkill(ctx, userSkill); err != nil {
		return nil, err
	}
	userSkill.Skill = skill
	return userSkill, nil
}

func (s *SkillService) UpdateProficiency(ctx context.Context, userID, skillID uint, proficiency models.Proficiency) (*models.UserSkill, error) {
	if !models.ValidProficiency(proficiency) {
		return nil, models.NewValidationError("Invalid proficiency level")
	}
	userSkill, err := s.skillRepo.GetUserSkill(ctx, userID, skillID)
	if err != nil {
		return nil, err
	}
	if userSkill == nil {
		return nil, models.NewNotFoundError("User skill", skillID)
	}
	userSkill.Proficiency = proficiency
	if err := s.skillRepo.UpdateUserSkill(ctx, userSkill); err != nil {
		return nil, err
	}
	return userSkill, nil
}

func (s *SkillService) RemoveSkill(ctx context.Context, userID, skillID uint) error {
	return s.skillRepo.RemoveUserSkill(ctx, userID, skillID)
}

func (s *SkillService) Endorse(ctx context.Context, in EndorseInput) (*models.SkillEndorsement, error) {
	if in.EndorserID == in.EndorsedID {
		return nil, models.NewValidationError("You cannot endorse your own skill")
	}
	if len(in.Message) > 500 {
		return nil, models.NewValidationError("Endorsement message too long (max 500 characters)")
	}
	if _, err := s.userRepo.GetActiveByID(ctx, in.EndorsedID); err != nil {
		return nil, err
	}

	endorsement := &models.SkillEndorsement{
		EndorserID: in.EndorserID,
		EndorsedID: in.EndorsedID,
		SkillID:    in.SkillID,
		Message:    in.Message,
	}
	if err := s.skillRepo.Endorse(ctx, endorsement); err != nil {
		return nil, err
	}
	return endorsement, nil
}

func (s *SkillService) RemoveEndorsement(ctx context.Context, endorserID, endorsedID, skillID uint) error {
	return s.skillRepo.RemoveEndorsement(ctx, endorserID, endorsedID, skillID)
}

func (s *SkillService) EndorsementsGiven(ctx context.Context, userID uint) ([]models.SkillEndorsement, error) {
	return s.skillRepo.EndorsementsGiven(ctx, userID)
}

func (s *SkillService) EndorsementsReceived(ctx context.Context, userID uint) ([]models.SkillEndorsement, error) {
	return s.skillRepo.EndorsementsReceived(ctx, userID)
}

func (s *SkillService) SearchUsers(ctx context.Context, skillID uint, proficiency models.Proficiency, limit, offset int) ([]models.UserSkill, int64, error) {
	if proficiency != "" && !models.ValidProficiency(proficiency) {
		return nil, 0, models.NewValidationError("Invalid proficiency level")
	}
	if _, err := s.skillRepo.GetByID(ctx, skillID); err != nil {
		return nil, 0, err
	}
	return s.skillRepo.SearchUsersBySkill(ctx, skillID, proficiency, limit, offset)
}

func (s *SkillService) Stats(ctx context.Context) (*repository.SkillStats, error) {
	return s.skillRepo.Stats(ctx)
}
