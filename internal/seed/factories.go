// Package seed provides helpers to create demo data for development and
// testing. It is never invoked by the server itself outside of the
// built-in skill catalog.
package seed

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"studentconnect/internal/models"

	"github.com/brianvoe/gofakeit/v6"
)

// DefaultPassword is the password assigned to every generated user.
const DefaultPassword = "password123"

var (
	communityCategories = []string{
		"technology", "science", "arts", "sports", "gaming",
		"career", "music", "entrepreneurship", "volunteering",
	}

	projectTypes = []string{
		"web", "mobile", "ml", "game", "hardware", "research", "open-source",
	}

	difficulties = []string{"beginner", "intermediate", "advanced"}

	eventTypes = []string{"hackathon", "workshop", "meetup", "talk", "competition"}

	tutorialCategories = []string{
		"algorithms", "data-structures", "web-development",
		"machine-learning", "databases", "operating-systems",
	}

	techStacks = []string{
		"Go,PostgreSQL,Redis", "React,TypeScript,Node.js", "Python,PyTorch",
		"Flutter,Firebase", "Rust,WebAssembly", "Java,Spring,MySQL",
		"Vue,Django,PostgreSQL", "C++,OpenGL",
	}

	proficiencies = []models.Proficiency{
		models.ProficiencyBeginner,
		models.ProficiencyIntermediate,
		models.ProficiencyAdvanced,
		models.ProficiencyExpert,
	}
)

// Factory builds domain entities with realistic fake data. It does not
// persist anything itself.
type Factory struct {
	rng *rand.Rand
}

// NewFactory creates a Factory seeded from the given source. A fixed seed
// yields reproducible data.
func NewFactory(seed int64) *Factory {
	gofakeit.Seed(seed)
	return &Factory{rng: rand.New(rand.NewSource(seed))}
}

// pastTime returns a timestamp up to maxDays in the past.
func (f *Factory) pastTime(maxDays int) time.Time {
	if maxDays <= 0 {
		maxDays = 90
	}
	back := time.Duration(f.rng.Intn(maxDays*24*60)) * time.Minute
	return time.Now().Add(-back)
}

// BuildUser constructs a user with a unique username and email derived
// from the index.
func (f *Factory) BuildUser(index int, hashedPassword string) *models.User {
	first := gofakeit.FirstName()
	last := gofakeit.LastName()
	username := fmt.Sprintf("%s%s%d", strings.ToLower(first), strings.ToLower(last), index)

	return &models.User{
		Username:  username,
		Email:     fmt.Sprintf("%s@students.example.edu", username),
		Password:  hashedPassword,
		FirstName: first,
		LastName:  last,
		Bio:       gofakeit.Sentence(12),
		College:   gofakeit.Company() + " College",
		Major:     gofakeit.JobTitle(),
		Year:      1 + f.rng.Intn(5),
		AvatarURL: fmt.Sprintf("https://i.pravatar.cc/150?u=%s", username),
		GithubURL: "https://github.com/" + username,
		IsActive:  true,
		CreatedAt: f.pastTime(365),
	}
}

// BuildCommunity constructs a community owned by the given creator.
func (f *Factory) BuildCommunity(index int, creatorID uint) *models.Community {
	category := communityCategories[f.rng.Intn(len(communityCategories))]
	return &models.Community{
		Name:        fmt.Sprintf("%s %s %d", gofakeit.HackerAdjective(), titleCase(category), index),
		Description: gofakeit.Paragraph(1, 2, 8, " "),
		Category:    category,
		Tags:        strings.Join([]string{category, gofakeit.HackerNoun()}, ","),
		CreatorID:   creatorID,
		CreatedAt:   f.pastTime(180),
	}
}

// BuildPost constructs a post by the given author, optionally inside a community.
func (f *Factory) BuildPost(authorID uint, communityID *uint) *models.Post {
	post := &models.Post{
		Content:     gofakeit.Paragraph(1, 3, 10, "\n"),
		AuthorID:    authorID,
		CommunityID: communityID,
		CreatedAt:   f.pastTime(90),
	}
	if f.rng.Intn(4) == 0 {
		post.ImageURL = fmt.Sprintf("https://picsum.photos/seed/%s/800/600", gofakeit.UUID())
	}
	return post
}

// BuildProject constructs a recruiting project led by the given creator.
func (f *Factory) BuildProject(creatorID uint) *models.Project {
	return &models.Project{
		Title:       gofakeit.AppName(),
		Description: gofakeit.Paragraph(1, 3, 8, " "),
		TechStack:   techStacks[f.rng.Intn(len(techStacks))],
		ProjectType: projectTypes[f.rng.Intn(len(projectTypes))],
		Difficulty:  difficulties[f.rng.Intn(len(difficulties))],
		Status:      models.ProjectStatusActive,
		GithubURL:   "https://github.com/" + gofakeit.Username() + "/" + gofakeit.Word(),
		IsRecruiting: true,
		MaxTeamSize:  3 + f.rng.Intn(5),
		CurrentTeamSize: 1,
		CreatorID:   creatorID,
		CreatedAt:   f.pastTime(120),
	}
}

// BuildEvent constructs an upcoming event organized by the given creator.
func (f *Factory) BuildEvent(creatorID uint) *models.Event {
	start := time.Now().Add(time.Duration(2+f.rng.Intn(60*24)) * time.Hour)
	isOnline := f.rng.Intn(3) == 0
	event := &models.Event{
		Title:        gofakeit.Sentence(4),
		Description:  gofakeit.Paragraph(1, 2, 10, " "),
		EventType:    eventTypes[f.rng.Intn(len(eventTypes))],
		IsOnline:     isOnline,
		StartTime:    start,
		EndTime:      start.Add(time.Duration(1+f.rng.Intn(8)) * time.Hour),
		MaxAttendees: 20 + f.rng.Intn(180),
		CreatorID:    creatorID,
	}
	if isOnline {
		event.MeetingURL = "https://meet.example.com/" + gofakeit.UUID()
	} else {
		event.Location = gofakeit.Street() + ", " + gofakeit.City()
	}
	return event
}

// BuildTutorial constructs a manually authored tutorial.
func (f *Factory) BuildTutorial(authorID uint) *models.Tutorial {
	category := tutorialCategories[f.rng.Intn(len(tutorialCategories))]
	return &models.Tutorial{
		Title:            gofakeit.Sentence(5),
		Description:      gofakeit.Sentence(15),
		Content:          gofakeit.Paragraph(3, 5, 12, "\n\n"),
		Category:         category,
		Difficulty:       difficulties[f.rng.Intn(len(difficulties))],
		Tags:             category + "," + gofakeit.HackerNoun(),
		Source:           models.TutorialSourceManual,
		AuthorID:         &authorID,
		EstimatedMinutes: 5 + f.rng.Intn(55),
		CreatedAt:        f.pastTime(180),
	}
}

// Proficiency picks a random proficiency level.
func (f *Factory) Proficiency() models.Proficiency {
	return proficiencies[f.rng.Intn(len(proficiencies))]
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
