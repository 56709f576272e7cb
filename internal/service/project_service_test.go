package service

import (
	"context"
	"testing"

	"studentconnect/internal/models"
	"studentconnect/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// projectRepoStub is a stub for repository.ProjectRepository. Zero-value
// fields fall back to benign defaults.
type projectRepoStub struct {
	getByIDFn        func(context.Context, uint) (*models.Project, error)
	applyFn          func(context.Context, *models.ProjectApplication) error
	getApplicationFn func(context.Context, uint) (*models.ProjectApplication, error)
	acceptFn         func(context.Context, *models.ProjectApplication) error
	rejectFn         func(context.Context, uint) error
	isMemberFn       func(context.Context, uint, uint) (bool, error)
	getRoleFn        func(context.Context, uint) (*models.ProjectRole, error)
	removeMemberFn   func(context.Context, uint, uint) error
}

func (s *projectRepoStub) Create(_ context.Context, p *models.Project) error { p.ID = 1; return nil }
func (s *projectRepoStub) GetByID(ctx context.Context, id uint) (*models.Project, error) {
	if s.getByIDFn != nil {
		return s.getByIDFn(ctx, id)
	}
	return &models.Project{ID: id, CreatorID: 1, IsRecruiting: true, MaxTeamSize: 5, CurrentTeamSize: 1}, nil
}
func (s *projectRepoStub) List(_ context.Context, _ repository.ProjectFilter, _, _ int) ([]models.Project, int64, error) {
	return nil, 0, nil
}
func (s *projectRepoStub) ListByCreator(_ context.Context, _ uint) ([]models.Project, error) {
	return nil, nil
}
func (s *projectRepoStub) ListByMember(_ context.Context, _ uint) ([]models.ProjectMember, error) {
	return nil, nil
}
func (s *projectRepoStub) ListFeatured(_ context.Context, _ int) ([]models.Project, error) {
	return nil, nil
}
func (s *projectRepoStub) Update(_ context.Context, _ *models.Project) error { return nil }
func (s *projectRepoStub) Delete(_ context.Context, _ uint) error            { return nil }
func (s *projectRepoStub) AddRole(_ context.Context, role *models.ProjectRole) error {
	role.ID = 1
	return nil
}
func (s *projectRepoStub) Roles(_ context.Context, _ uint) ([]models.ProjectRole, error) {
	return nil, nil
}
func (s *projectRepoStub) GetRole(ctx context.Context, roleID uint) (*models.ProjectRole, error) {
	if s.getRoleFn != nil {
		return s.getRoleFn(ctx, roleID)
	}
	return &models.ProjectRole{ID: roleID, ProjectID: 1}, nil
}
func (s *projectRepoStub) DeleteRole(_ context.Context, _ uint) error { return nil }
func (s *projectRepoStub) Apply(ctx context.Context, application *models.ProjectApplication) error {
	if s.applyFn != nil {
		return s.applyFn(ctx, application)
	}
	application.ID = 1
	return nil
}
func (s *projectRepoStub) GetApplication(ctx context.Context, id uint) (*models.ProjectApplication, error) {
	if s.getApplicationFn != nil {
		return s.getApplicationFn(ctx, id)
	}
	return &models.ProjectApplication{ID: id, ProjectID: 1, ApplicantID: 2, Status: models.ApplicationStatusPending}, nil
}
func (s *projectRepoStub) Applications(_ context.Context, _ uint, _ models.ApplicationStatus) ([]models.ProjectApplication, error) {
	return nil, nil
}
func (s *projectRepoStub) ApplicationsByUser(_ context.Context, _ uint) ([]models.ProjectApplication, error) {
	return nil, nil
}
func (s *projectRepoStub) Accept(ctx context.Context, application *models.ProjectApplication) error {
	if s.acceptFn != nil {
		return s.acceptFn(ctx, application)
	}
	return nil
}
func (s *projectRepoStub) Reject(ctx context.Context, id uint) error {
	if s.rejectFn != nil {
		return s.rejectFn(ctx, id)
	}
	return nil
}
func (s *projectRepoStub) Members(_ context.Context, _ uint) ([]models.ProjectMember, error) {
	return nil, nil
}
func (s *projectRepoStub) IsMember(ctx context.Context, projectID, userID uint) (bool, error) {
	if s.isMemberFn != nil {
		return s.isMemberFn(ctx, projectID, userID)
	}
	return false, nil
}
func (s *projectRepoStub) RemoveMember(ctx context.Context, projectID, userID uint) error {
	if s.removeMemberFn != nil {
		return s.removeMemberFn(ctx, projectID, userID)
	}
	return nil
}
func (s *projectRepoStub) Stats(_ context.Context) (*repository.ProjectStats, error) {
	return &repository.ProjectStats{}, nil
}
func (s *projectRepoStub) Types(_ context.Context) ([]string, error)        { return nil, nil }
func (s *projectRepoStub) Technologies(_ context.Context) ([]string, error) { return nil, nil }

// notificationRepoStub records created notifications.
type notificationRepoStub struct {
	created []*models.Notification
}

func (s *notificationRepoStub) Create(_ context.Context, n *models.Notification) error {
	s.created = append(s.created, n)
	return nil
}
func (s *notificationRepoStub) ListByUser(_ context.Context, _ uint, _ bool, _, _ int) ([]models.Notification, int64, error) {
	return nil, 0, nil
}
func (s *notificationRepoStub) UnreadCount(_ context.Context, _ uint) (int64, error) { return 0, nil }
func (s *notificationRepoStub) MarkRead(_ context.Context, _, _ uint) error          { return nil }
func (s *notificationRepoStub) MarkAllRead(_ context.Context, _ uint) error          { return nil }

func TestProjectService_Apply(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("creator cannot apply to own project", func(t *testing.T) {
		t.Parallel()
		svc := NewProjectService(&projectRepoStub{}, nil, nil)
		_, err := svc.Apply(ctx, ApplyInput{UserID: 1, ProjectID: 1})
		assertValidationError(t, err)
	})

	t.Run("closed recruiting is rejected", func(t *testing.T) {
		t.Parallel()
		projects := &projectRepoStub{
			getByIDFn: func(_ context.Context, id uint) (*models.Project, error) {
				return &models.Project{ID: id, CreatorID: 1, IsRecruiting: false, MaxTeamSize: 5, CurrentTeamSize: 1}, nil
			},
		}
		svc := NewProjectService(projects, nil, nil)
		_, err := svc.Apply(ctx, ApplyInput{UserID: 2, ProjectID: 1})
		assertValidationError(t, err)
	})

	t.Run("existing member cannot apply", func(t *testing.T) {
		t.Parallel()
		projects := &projectRepoStub{
			isMemberFn: func(_ context.Context, _, _ uint) (bool, error) { return true, nil },
		}
		svc := NewProjectService(projects, nil, nil)
		_, err := svc.Apply(ctx, ApplyInput{UserID: 2, ProjectID: 1})
		assertAppErrorCode(t, err, "CONFLICT")
	})

	t.Run("filled role is rejected", func(t *testing.T) {
		t.Parallel()
		projects := &projectRepoStub{
			getRoleFn: func(_ context.Context, roleID uint) (*models.ProjectRole, error) {
				return &models.ProjectRole{ID: roleID, ProjectID: 1, IsFilled: true}, nil
			},
		}
		svc := NewProjectService(projects, nil, nil)
		roleID := uint(3)
		_, err := svc.Apply(ctx, ApplyInput{UserID: 2, ProjectID: 1, RoleID: &roleID})
		assertValidationError(t, err)
	})

	t.Run("success notifies the creator", func(t *testing.T) {
		t.Parallel()
		notifications := &notificationRepoStub{}
		svc := NewProjectService(&projectRepoStub{}, notifications, nil)
		application, err := svc.Apply(ctx, ApplyInput{UserID: 2, ProjectID: 1, Message: "I know Go"})
		require.NoError(t, err)
		assert.Equal(t, models.ApplicationStatusPending, application.Status)
		require.Len(t, notifications.created, 1)
		assert.Equal(t, uint(1), notifications.created[0].UserID)
		assert.Equal(t, models.NotificationTypeApplication, notifications.created[0].Type)
	})
}

func TestProjectService_ReviewApplication(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("only the creator reviews", func(t *testing.T) {
		t.Parallel()
		svc := NewProjectService(&projectRepoStub{}, nil, nil)
		_, err := svc.ReviewApplication(ctx, ReviewApplicationInput{ReviewerID: 2, ProjectID: 1, ApplicationID: 1, Accept: true})
		assertForbiddenError(t, err)
	})

	t.Run("already reviewed is rejected", func(t *testing.T) {
		t.Parallel()
		projects := &projectRepoStub{
			getApplicationFn: func(_ context.Context, id uint) (*models.ProjectApplication, error) {
				return &models.ProjectApplication{ID: id, ProjectID: 1, ApplicantID: 2, Status: models.ApplicationStatusAccepted}, nil
			},
		}
		svc := NewProjectService(projects, nil, nil)
		_, err := svc.ReviewApplication(ctx, ReviewApplicationInput{ReviewerID: 1, ProjectID: 1, ApplicationID: 1, Accept: true})
		assertValidationError(t, err)
	})

	t.Run("accept adds member and notifies applicant", func(t *testing.T) {
		t.Parallel()
		accepted := false
		projects := &projectRepoStub{
			acceptFn: func(_ context.Context, _ *models.ProjectApplication) error {
				accepted = true
				return nil
			},
		}
		notifications := &notificationRepoStub{}
		svc := NewProjectService(projects, notifications, nil)
		application, err := svc.ReviewApplication(ctx, ReviewApplicationInput{ReviewerID: 1, ProjectID: 1, ApplicationID: 1, Accept: true})
		require.NoError(t, err)
		assert.True(t, accepted)
		assert.Equal(t, models.ApplicationStatusAccepted, application.Status)
		require.Len(t, notifications.created, 1)
		assert.Equal(t, uint(2), notifications.created[0].UserID)
	})

	t.Run("reject updates status", func(t *testing.T) {
		t.Parallel()
		svc := NewProjectService(&projectRepoStub{}, &notificationRepoStub{}, nil)
		application, err := svc.ReviewApplication(ctx, ReviewApplicationInput{ReviewerID: 1, ProjectID: 1, ApplicationID: 1, Accept: false})
		require.NoError(t, err)
		assert.Equal(t, models.ApplicationStatusRejected, application.Status)
	})
}

func TestProjectService_Leave(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("creator cannot leave", func(t *testing.T) {
		t.Parallel()
		svc := NewProjectService(&projectRepoStub{}, nil, nil)
		err := svc.Leave(ctx, 1, 1)
		assertValidationError(t, err)
	})

	t.Run("member leaves", func(t *testing.T) {
		t.Parallel()
		removed := false
		projects := &projectRepoStub{
			removeMemberFn: func(_ context.Context, _, _ uint) error {
				removed = true
				return nil
			},
		}
		svc := NewProjectService(projects, nil, nil)
		require.NoError(t, svc.Leave(ctx, 1, 2))
		assert.True(t, removed)
	})
}

func TestProjectService_UpdateProject_RecruitingGuard(t *testing.T) {
	t.Parallel()

	projects := &projectRepoStub{
		getByIDFn: func(_ context.Context, id uint) (*models.Project, error) {
			return &models.Project{ID: id, CreatorID: 1, MaxTeamSize: 3, CurrentTeamSize: 3}, nil
		},
	}
	svc := NewProjectService(projects, nil, nil)
	recruiting := true
	_, err := svc.UpdateProject(context.Background(), UpdateProjectInput{UserID: 1, ProjectID: 1, IsRecruiting: &recruiting})
	assertValidationError(t, err)
}
