// Package models defines the data structures shared by the client core,
// its API bindings and the reference backend.
package models

import "time"

// Role gates admin-only screens.
type Role string

const (
	// RoleUser is a regular learner account.
	RoleUser Role = "user"
	// RoleAdmin can moderate content and see platform statistics.
	RoleAdmin Role = "admin"
)

// LearningLevel tailors content (chat tone, forum badges). It is independent of Role.
type LearningLevel string

const (
	Beginner     LearningLevel = "beginner"
	Intermediate LearningLevel = "intermediate"
	Advanced     LearningLevel = "advanced"
	Teacher      LearningLevel = "teacher"
)

// Valid reports whether l is one of the known levels.
func (l LearningLevel) Valid() bool {
	switch l {
	case Beginner, Intermediate, Advanced, Teacher:
		return true
	}
	return false
}

// Stats holds per-user usage counters.
type Stats struct {
	TotalChats       int `json:"totalChats"`
	TotalMessages    int `json:"totalMessages"`
	ReportsSubmitted int `json:"reportsSubmitted"`
}

// Identity is the authenticated principal as returned by the backend.
type Identity struct {
	// ID is the unique identifier for the user.
	ID string `json:"_id"`
	// Name is the display name.
	Name  string `json:"name"`
	Email string `json:"email"`
	// Role gates admin-only screens.
	Role Role `json:"role"`
	// LearningLevel only affects content tailoring.
	LearningLevel LearningLevel `json:"learningLevel"`
	Stats         Stats         `json:"stats"`
}

// IsAdmin reports whether the identity carries the admin role.
func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == RoleAdmin
}

// State is the in-memory session: the current identity (nil when signed out)
// and whether startup reconciliation is still running.
type State struct {
	Identity *Identity
	Loading  bool
}

// AuthResponse is the body returned by the login and register endpoints.
type AuthResponse struct {
	Token string    `json:"token"`
	User  *Identity `json:"user"`
}

// ProfileResponse is the body returned by the profile fetch and update endpoints.
type ProfileResponse struct {
	User *Identity `json:"user"`
}

// ProfileUpdate is a partial profile update; nil fields are left unchanged.
type ProfileUpdate struct {
	Name          *string        `json:"name,omitempty"`
	LearningLevel *LearningLevel `json:"learningLevel,omitempty"`
}

// VoteType is a viewer's vote on a forum post or reply.
// The empty value means no vote.
type VoteType string

const (
	VoteNone   VoteType = ""
	VoteUp     VoteType = "up"
	VoteDown   VoteType = "down"
	VoteRemove VoteType = "remove"
)

// VoteState is the votable part of a forum post or reply.
type VoteState struct {
	VoteScore int      `json:"voteScore"`
	UserVote  VoteType `json:"userVote"`
}

// LikeState is the likeable part of a short-form video.
type LikeState struct {
	Likes int  `json:"likes"`
	Liked bool `json:"liked"`
}

// Author is the public projection of a user attached to content.
type Author struct {
	ID            string        `json:"_id"`
	Name          string        `json:"name"`
	LearningLevel LearningLevel `json:"learningLevel"`
}

// Image is an uploaded attachment.
type Image struct {
	URL string `json:"url"`
}

// ForumPost is a community forum thread.
type ForumPost struct {
	ID        string    `json:"_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Category  string    `json:"category"`
	Tags      []string  `json:"tags,omitempty"`
	Author    Author    `json:"author"`
	Image     *Image    `json:"image,omitempty"`
	Views     int       `json:"views"`
	Pinned    bool      `json:"pinned"`
	Locked    bool      `json:"locked"`
	CreatedAt time.Time `json:"createdAt"`
	VoteState
}

// ForumReply is a reply inside a forum thread.
type ForumReply struct {
	ID        string    `json:"_id"`
	Content   string    `json:"content"`
	Author    Author    `json:"author"`
	CreatedAt time.Time `json:"createdAt"`
	VoteState
}

// ShortForm is a short educational video.
type ShortForm struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	VideoURL    string   `json:"video_url"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags,omitempty"`
	Views       int      `json:"views"`
	Status      string   `json:"status,omitempty"`
	LikeState
}

// NewsArticle is a published news item.
type NewsArticle struct {
	ID        string    `json:"_id"`
	Slug      string    `json:"slug"`
	Title     string    `json:"title"`
	Summary   string    `json:"summary"`
	Content   string    `json:"content"`
	Category  string    `json:"category"`
	Likes     int       `json:"likes"`
	CreatedAt time.Time `json:"createdAt"`
}

// Report is an incident report submitted by a user.
type Report struct {
	ID          string    `json:"_id"`
	ReportID    string    `json:"reportId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Location    string    `json:"location,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ChatMessage is one turn of a tutoring conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Friendship links two users.
type Friendship struct {
	ID     string `json:"_id"`
	Friend Author `json:"friend"`
	Status string `json:"status"`
}
