package events

import (
	"time"

	"github.com/anuragpatel/minisocial-service/internal/types"
)

// Publisher interface for publishing events
type Publisher interface {
	PublishPostLiked(postID, likerID, authorID string, likeCount int) error
}

// WebSocketHub is the subset of the hub the publisher needs.
type WebSocketHub interface {
	SendToUser(userID string, event *types.Event)
	IsUserConnected(userID string) bool
}

// EventPublisher implements the Publisher interface
type EventPublisher struct {
	hub WebSocketHub
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(hub WebSocketHub) *EventPublisher {
	return &EventPublisher{
		hub: hub,
	}
}

// PublishPostLiked notifies a post's author that someone liked their post.
// Self-likes and offline authors are skipped.
func (p *EventPublisher) PublishPostLiked(postID, likerID, authorID string, likeCount int) error {
	if likerID == authorID {
		return nil
	}

	if !p.hub.IsUserConnected(authorID) {
		return nil
	}

	eventData := &types.PostLikedEvent{
		PostID:    postID,
		UserID:    likerID,
		LikeCount: likeCount,
		LikedAt:   time.Now().UTC().Format(time.RFC3339),
	}

	p.hub.SendToUser(authorID, types.NewEvent(types.EventPostLiked, eventData))

	return nil
}
