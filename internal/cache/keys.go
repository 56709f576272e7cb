package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	UserKeyPrefix      = "user:%d"
	CommunityKeyPrefix = "community:%d"
	PostKeyPrefix      = "post:%d"
	EventKeyPrefix     = "event:%d"
	TutorialKeyPrefix  = "tutorial:%d"
	StatsKeyPrefix     = "stats:%s"
	SkillCatalogKey    = "skills:catalog"
)

const (
	UserTTL         = 5 * time.Minute
	CommunityTTL    = 10 * time.Minute
	PostTTL         = 30 * time.Minute
	EventTTL        = 10 * time.Minute
	TutorialTTL     = 30 * time.Minute
	StatsTTL        = 2 * time.Minute
	SkillCatalogTTL = time.Hour
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func CommunityKey(communityID uint) string {
	return fmt.Sprintf(CommunityKeyPrefix, communityID)
}

func PostKey(postID uint) string {
	return fmt.Sprintf(PostKeyPrefix, postID)
}

func EventKey(eventID uint) string {
	return fmt.Sprintf(EventKeyPrefix, eventID)
}

func TutorialKey(tutorialID uint) string {
	return fmt.Sprintf(TutorialKeyPrefix, tutorialID)
}

// StatsKey names a cached stats payload, e.g. StatsKey("communities").
func StatsKey(resource string) string {
	return fmt.Sprintf(StatsKeyPrefix, resource)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

func InvalidateCommunity(ctx context.Context, communityID uint) {
	Invalidate(ctx, CommunityKey(communityID))
	Invalidate(ctx, StatsKey("communities"))
}

func InvalidateEvent(ctx context.Context, eventID uint) {
	Invalidate(ctx, EventKey(eventID))
	Invalidate(ctx, StatsKey("events"))
}

func InvalidateTutorial(ctx context.Context, tutorialID uint) {
	Invalidate(ctx, TutorialKey(tutorialID))
	Invalidate(ctx, StatsKey("tutorials"))
}

func InvalidateSkillCatalog(ctx context.Context) {
	Invalidate(ctx, SkillCatalogKey)
}
