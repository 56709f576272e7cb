package service

import (
	"context"
	"strings"
	"testing"

	"studentconnect/internal/models"
	"studentconnect/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// skillRepoStub is a stub for repository.SkillRepository.
type skillRepoStub struct {
	getOrCreateFn  func(context.Context, string, string) (*models.Skill, error)
	addUserSkillFn func(context.Context, *models.UserSkill) error
	getUserSkillFn func(context.Context, uint, uint) (*models.UserSkill, error)
	endorseFn      func(context.Context, *models.SkillEndorsement) error
}

func (s *skillRepoStub) ListCatalog(_ context.Context, _, _ string) ([]models.Skill, error) {
	return nil, nil
}
func (s *skillRepoStub) Categories(_ context.Context) ([]string, error) { return nil, nil }
func (s *skillRepoStub) GetOrCreate(ctx context.Context, name, category string) (*models.Skill, error) {
	if s.getOrCreateFn != nil {
		return s.getOrCreateFn(ctx, name, category)
	}
	return &models.Skill{ID: 1, Name: name, Category: category}, nil
}
func (s *skillRepoStub) GetByID(_ context.Context, id uint) (*models.Skill, error) {
	return &models.Skill{ID: id}, nil
}
func (s *skillRepoStub) ListPopular(_ context.Context, _ int) ([]models.Skill, error) {
	return nil, nil
}
func (s *skillRepoStub) UserSkills(_ context.Context, _ uint) ([]models.UserSkill, error) {
	return nil, nil
}
func (s *skillRepoStub) AddUserSkill(ctx context.Context, userSkill *models.UserSkill) error {
	if s.addUserSkillFn != nil {
		return s.addUserSkillFn(ctx, userSkill)
	}
	userSkill.ID = 1
	return nil
}
func (s *skillRepoStub) UpdateUserSkill(_ context.Context, _ *models.UserSkill) error { return nil }
func (s *skillRepoStub) GetUserSkill(ctx context.Context, userID, skillID uint) (*models.UserSkill, error) {
	if s.getUserSkillFn != nil {
		return s.getUserSkillFn(ctx, userID, skillID)
	}
	return &models.UserSkill{ID: 1, UserID: userID, SkillID: skillID, Proficiency: models.ProficiencyBeginner}, nil
}
func (s *skillRepoStub) RemoveUserSkill(_ context.Context, _, _ uint) error { return nil }
func (s *skillRepoStub) Endorse(ctx context.Context, endorsement *models.SkillEndorsement) error {
	if s.endorseFn != nil {
		return s.endorseFn(ctx, endorsement)
	}
	endorsement.ID = 1
	return nil
}
func (s *skillRepoStub) RemoveEndorsement(_ context.Context, _, _, _ uint) error { return nil }
func (s *skillRepoStub) EndorsementsGiven(_ context.Context, _ uint) ([]models.SkillEndorsement, error) {
	return nil, nil
}
func (s *skillRepoStub) EndorsementsReceived(_ context.Context, _ uint) ([]models.SkillEndorsement, error) {
	return nil, nil
}
func (s *skillRepoStub) SearchUsersBySkill(_ context.Context, _ uint, _ models.Proficiency, _, _ int) ([]models.UserSkill, int64, error) {
	return nil, 0, nil
}
func (s *skillRepoStub) Stats(_ context.Context) (*repository.SkillStats, error) {
	return &repository.SkillStats{}, nil
}

func TestSkillService_AddSkill(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("name is required", func(t *testing.T) {
		t.Parallel()
		svc := NewSkillService(&skillRepoStub{}, noopUserRepo())
		_, err := svc.AddSkill(ctx, AddSkillInput{UserID: 1, Name: "   "})
		assertValidationError(t, err)
	})

	t.Run("name too long", func(t *testing.T) {
		t.Parallel()
		svc := NewSkillService(&skillRepoStub{}, noopUserRepo())
		_, err := svc.AddSkill(ctx, AddSkillInput{UserID: 1, Name: strings.Repeat("x", 81)})
		assertValidationError(t, err)
	})

	t.Run("invalid proficiency", func(t *testing.T) {
		t.Parallel()
		svc := NewSkillService(&skillRepoStub{}, noopUserRepo())
		_, err := svc.AddSkill(ctx, AddSkillInput{UserID: 1, Name: "Go", Proficiency: "guru"})
		assertValidationError(t, err)
	})

	t.Run("defaults to beginner and attaches catalog skill", func(t *testing.T) {
		t.Parallel()
		svc := NewSkillService(&skillRepoStub{}, noopUserRepo())
		userSkill, err := svc.AddSkill(ctx, AddSkillInput{UserID: 1, Name: " Go ", Category: "languages"})
		require.NoError(t, err)
		assert.Equal(t, models.ProficiencyBeginner, userSkill.Proficiency)
		require.NotNil(t, userSkill.Skill)
		assert.Equal(t, "Go", userSkill.Skill.Name)
	})
}

func TestSkillService_Endorse(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("self endorsement is rejected", func(t *testing.T) {
		t.Parallel()
		svc := NewSkillService(&skillRepoStub{}, noopUserRepo())
		_, err := svc.Endorse(ctx, EndorseInput{EndorserID: 1, EndorsedID: 1, SkillID: 1})
		assertValidationError(t, err)
	})

	t.Run("message too long", func(t *testing.T) {
		t.Parallel()
		svc := NewSkillService(&skillRepoStub{}, noopUserRepo())
		_, err := svc.Endorse(ctx, EndorseInput{EndorserID: 1, EndorsedID: 2, SkillID: 1, Message: strings.Repeat("x", 501)})
		assertValidationError(t, err)
	})

	t.Run("deactivated user cannot be endorsed", func(t *testing.T) {
		t.Parallel()
		users := &userRepoStub{
			getActiveByIDFn: func(_ context.Context, id uint) (*models.User, error) {
				return nil, models.NewNotFoundError("User", id)
			},
		}
		svc := NewSkillService(&skillRepoStub{}, users)
		_, err := svc.Endorse(ctx, EndorseInput{EndorserID: 1, EndorsedID: 2, SkillID: 1})
		assertAppErrorCode(t, err, "NOT_FOUND")
	})

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		svc := NewSkillService(&skillRepoStub{}, noopUserRepo())
		endorsement, err := svc.Endorse(ctx, EndorseInput{EndorserID: 1, EndorsedID: 2, SkillID: 3, Message: "solid work"})
		require.NoError(t, err)
		assert.Equal(t, uint(1), endorsement.EndorserID)
		assert.Equal(t, uint(2), endorsement.EndorsedID)
	})
}

func TestSkillService_UpdateProficiency(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("invalid level", func(t *testing.T) {
		t.Parallel()
		svc := NewSkillService(&skillRepoStub{}, noopUserRepo())
		_, err := svc.UpdateProficiency(ctx, 1, 1, "wizard")
		assertValidationError(t, err)
	})

	t.Run("missing profile skill", func(t *testing.T) {
		t.Parallel()
		skills := &skillRepoStub{
			getUserSkillFn: func(_ context.Context, _, _ uint) (*models.UserSkill, error) {
				return nil, nil
			},
		}
		svc := NewSkillService(skills, noopUserRepo())
		_, err := svc.UpdateProficiency(ctx, 1, 1, models.ProficiencyExpert)
		assertAppErrorCode(t, err, "NOT_FOUND")
	})

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		svc := NewSkillService(&skillRepoStub{}, noopUserRepo())
		userSkill, err := svc.UpdateProficiency(ctx, 1, 1, models.ProficiencyAdvanced)
		require.NoError(t, err)
		assert.Equal(t, models.ProficiencyAdvanced, userSkill.Proficiency)
	})
}
