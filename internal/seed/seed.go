package seed

import (
	"fmt"
	"log"
	"time"

	"studentconnect/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options configure a seeding run.
type Options struct {
	NumUsers int
	NumPosts int
	Seed     int64
}

// Seeder populates the database with realistic demo data.
type Seeder struct {
	db      *gorm.DB
	factory *Factory
}

// NewSeeder creates a Seeder bound to the given database.
func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Seeder{db: db, factory: NewFactory(seed)}
}

// ClearAll removes all seeded data. Deletion order respects foreign keys.
func (s *Seeder) ClearAll() error {
	tables := []interface{}{
		&models.Notification{},
		&models.SkillEndorsement{},
		&models.UserSkill{},
		&models.TutorialProgress{},
		&models.Tutorial{},
		&models.ChatMessage{},
		&models.ChatRoomParticipant{},
		&models.ChatRoom{},
		&models.Message{},
		&models.EventRegistration{},
		&models.Event{},
		&models.ProjectMember{},
		&models.ProjectApplication{},
		&models.ProjectRole{},
		&models.Project{},
		&models.Like{},
		&models.Comment{},
		&models.Post{},
		&models.CommunityMembership{},
		&models.Community{},
		&models.User{},
	}
	for _, table := range tables {
		if err := s.db.Session(&gorm.Session{AllowGlobalUpdate: true}).Unscoped().Delete(table).Error; err != nil {
			return fmt.Errorf("clear %T: %w", table, err)
		}
	}
	return nil
}

// SeedCampus populates users, communities, posts, projects, events,
// tutorials and skills in one pass. All users share DefaultPassword.
func (s *Seeder) SeedCampus(opts Options) error {
	if opts.NumUsers <= 0 {
		opts.NumUsers = 50
	}
	if opts.NumPosts <= 0 {
		opts.NumPosts = 200
	}

	users, err := s.seedUsers(opts.NumUsers)
	if err != nil {
		return err
	}
	communities, err := s.seedCommunities(users)
	if err != nil {
		return err
	}
	if err := s.seedPosts(users, communities, opts.NumPosts); err != nil {
		return err
	}
	if err := s.seedProjects(users); err != nil {
		return err
	}
	if err := s.seedEvents(users); err != nil {
		return err
	}
	if err := s.seedTutorials(users); err != nil {
		return err
	}
	if err := s.seedUserSkills(users); err != nil {
		return err
	}

	log.Printf("Seeded %d users, %d communities, %d posts", len(users), len(communities), opts.NumPosts)
	return nil
}

func (s *Seeder) seedUsers(n int) ([]models.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.MinCost)
	if err != nil {
		return nil, fmt.Errorf("hash seed password: %w", err)
	}

	users := make([]models.User, 0, n)
	for i := 0; i < n; i++ {
		user := s.factory.BuildUser(i, string(hashed))
		if err := s.db.Create(user).Error; err != nil {
			return nil, fmt.Errorf("create user %d: %w", i, err)
		}
		users = append(users, *user)
	}
	return users, nil
}

func (s *Seeder) seedCommunities(users []models.User) ([]models.Community, error) {
	count := communityCount(len(users))
	communities := make([]models.Community, 0, count)

	for i := 0; i < count; i++ {
		creator := users[i%len(users)]
		community := s.factory.BuildCommunity(i, creator.ID)

		err := s.db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(community).Error; err != nil {
				return err
			}
			// Creator joins their own community.
			members := []models.CommunityMembership{{
				CommunityID: community.ID,
				UserID:      creator.ID,
				Role:        models.CommunityRoleCreator,
			}}
			for _, user := range users {
				if user.ID == creator.ID || s.factory.rng.Intn(3) != 0 {
					continue
				}
				members = append(members, models.CommunityMembership{
					CommunityID: community.ID,
					UserID:      user.ID,
					Role:        models.CommunityRoleMember,
				})
			}
			if err := tx.Create(&members).Error; err != nil {
				return err
			}
			return tx.Model(community).Updates(map[string]interface{}{
				"member_count":   len(members),
				"activity_score": len(members),
			}).Error
		})
		if err != nil {
			return nil, fmt.Errorf("create community %d: %w", i, err)
		}
		communities = append(communities, *community)
	}
	return communities, nil
}

func (s *Seeder) seedPosts(users []models.User, communities []models.Community, n int) error {
	for i := 0; i < n; i++ {
		author := users[s.factory.rng.Intn(len(users))]

		var communityID *uint
		// Roughly half the posts land in a community feed.
		if len(communities) > 0 && s.factory.rng.Intn(2) == 0 {
			id := communities[s.factory.rng.Intn(len(communities))].ID
			communityID = &id
		}

		post := s.factory.BuildPost(author.ID, communityID)
		if err := s.db.Create(post).Error; err != nil {
			return fmt.Errorf("create post %d: %w", i, err)
		}

		for _, user := range users {
			if s.factory.rng.Intn(5) != 0 {
				continue
			}
			like := models.Like{UserID: user.ID, PostID: post.ID}
			if err := s.db.Create(&like).Error; err != nil {
				return fmt.Errorf("create like: %w", err)
			}
		}

		for c := 0; c < s.factory.rng.Intn(4); c++ {
			commenter := users[s.factory.rng.Intn(len(users))]
			comment := models.Comment{
				Content:  s.factory.BuildPost(commenter.ID, nil).Content,
				AuthorID: commenter.ID,
				PostID:   post.ID,
			}
			if err := s.db.Create(&comment).Error; err != nil {
				return fmt.Errorf("create comment: %w", err)
			}
		}
	}
	return nil
}

func (s *Seeder) seedProjects(users []models.User) error {
	count := len(users) / 4
	for i := 0; i < count; i++ {
		creator := users[s.factory.rng.Intn(len(users))]
		project := s.factory.BuildProject(creator.ID)

		err := s.db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(project).Error; err != nil {
				return err
			}
			member := models.ProjectMember{
				ProjectID: project.ID,
				UserID:    creator.ID,
				RoleTitle: "Lead",
			}
			if err := tx.Create(&member).Error; err != nil {
				return err
			}
			role := models.ProjectRole{
				ProjectID:      project.ID,
				Title:          "Contributor",
				SkillsRequired: project.TechStack,
			}
			return tx.Create(&role).Error
		})
		if err != nil {
			return fmt.Errorf("create project %d: %w", i, err)
		}
	}
	return nil
}

func (s *Seeder) seedEvents(users []models.User) error {
	count := len(users) / 5
	for i := 0; i < count; i++ {
		creator := users[s.factory.rng.Intn(len(users))]
		event := s.factory.BuildEvent(creator.ID)
		if err := s.db.Create(event).Error; err != nil {
			return fmt.Errorf("create event %d: %w", i, err)
		}

		for _, user := range users {
			if user.ID == creator.ID || s.factory.rng.Intn(4) != 0 {
				continue
			}
			registration := models.EventRegistration{
				EventID:          event.ID,
				UserID:           user.ID,
				PaymentStatus:    models.PaymentStatusConfirmed,
				AttendanceStatus: models.AttendanceStatusRegistered,
			}
			if err := s.db.Create(&registration).Error; err != nil {
				return fmt.Errorf("create registration: %w", err)
			}
		}
	}
	return nil
}

func (s *Seeder) seedTutorials(users []models.User) error {
	count := len(users) / 5
	for i := 0; i < count; i++ {
		author := users[s.factory.rng.Intn(len(users))]
		tutorial := s.factory.BuildTutorial(author.ID)
		tutorial.ViewCount = s.factory.rng.Intn(500)
		if err := s.db.Create(tutorial).Error; err != nil {
			return fmt.Errorf("create tutorial %d: %w", i, err)
		}
	}
	return nil
}

func (s *Seeder) seedUserSkills(users []models.User) error {
	if err := Skills(s.db); err != nil {
		return fmt.Errorf("seed skill catalog: %w", err)
	}

	var skills []models.Skill
	if err := s.db.Find(&skills).Error; err != nil {
		return fmt.Errorf("load skill catalog: %w", err)
	}
	if len(skills) == 0 {
		return nil
	}

	for _, user := range users {
		picked := map[uint]bool{}
		for n := 0; n < 2+s.factory.rng.Intn(4); n++ {
			skill := skills[s.factory.rng.Intn(len(skills))]
			if picked[skill.ID] {
				continue
			}
			picked[skill.ID] = true
			userSkill := models.UserSkill{
				UserID:      user.ID,
				SkillID:     skill.ID,
				Proficiency: s.factory.Proficiency(),
			}
			if err := s.db.Create(&userSkill).Error; err != nil {
				return fmt.Errorf("create user skill: %w", err)
			}
		}
	}
	return nil
}

// communityCount derives how many communities to create for a user population.
// At least three, roughly one per ten users.
func communityCount(numUsers int) int {
	count := numUsers / 10
	if count < 3 {
		count = 3
	}
	return count
}
