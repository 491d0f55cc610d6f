package types

import "time"

// EventType represents the type of real-time event
type EventType string

const (
	EventPostLiked EventType = "post.liked"
)

// Event represents a real-time event that can be sent over WebSocket
type Event struct {
	Type      EventType   `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp string      `json:"timestamp"`
}

// PostLikedEvent is sent to a post's author when another user likes the post
type PostLikedEvent struct {
	PostID    string `json:"post_id"`
	UserID    string `json:"user_id"`
	LikeCount int    `json:"like_count"`
	LikedAt   string `json:"liked_at"`
}

// NewEvent creates a new event with the current timestamp
func NewEvent(eventType EventType, data interface{}) *Event {
	return &Event{
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}
