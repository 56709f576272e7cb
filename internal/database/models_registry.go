package database

import "studentconnect/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Community{},
		&models.CommunityMembership{},
		&models.Project{},
		&models.ProjectRole{},
		&models.ProjectApplication{},
		&models.ProjectMember{},
		&models.Post{},
		&models.Comment{},
		&models.Like{},
		&models.Event{},
		&models.EventRegistration{},
		&models.Tutorial{},
		&models.TutorialProgress{},
		&models.Message{},
		&models.ChatRoom{},
		&models.ChatRoomParticipant{},
		&models.ChatMessage{},
		&models.Skill{},
		&models.UserSkill{},
		&models.SkillEndorsement{},
		&models.Notification{},
	}
}
