package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/atinyakov/civica/internal/models"
)

// ChatSession identifies a tutoring conversation.
type ChatSession struct {
	SessionID string               `json:"sessionId"`
	Level     models.LearningLevel `json:"level"`
}

// ChatReply is the tutor's answer to a message.
type ChatReply struct {
	SessionID string `json:"sessionId"`
	Response  string `json:"response"`
}

// CreateChatSession opens a conversation tuned to level.
func (c *Client) CreateChatSession(ctx context.Context, level models.LearningLevel) (*ChatSession, error) {
	if level == "" {
		level = models.Beginner
	}
	var out ChatSession
	if err := c.doer.Do(ctx, http.MethodPost, "/chat/session", map[string]models.LearningLevel{"level": level}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SendMessage sends one message. An empty sessionID starts a new session.
func (c *Client) SendMessage(ctx context.Context, message, sessionID string, level models.LearningLevel) (*ChatReply, error) {
	body := map[string]string{"message": message}
	if sessionID != "" {
		body["sessionId"] = sessionID
	}
	if level != "" {
		body["level"] = string(level)
	}
	var out ChatReply
	if err := c.doer.Do(ctx, http.MethodPost, "/chat/message", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ChatHistory returns the last limit messages of a session.
func (c *Client) ChatHistory(ctx context.Context, sessionID string, limit int) ([]models.ChatMessage, error) {
	if limit <= 0 {
		limit = 20
	}
	var out struct {
		Messages []models.ChatMessage `json:"messages"`
	}
	path := "/chat/session/" + esc(sessionID) + "/history?limit=" + strconv.Itoa(limit)
	if err := c.doer.Do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Messages, nil
}

// UpdateChatLevel changes the tone of an existing session.
func (c *Client) UpdateChatLevel(ctx context.Context, sessionID string, level models.LearningLevel) error {
	body := map[string]models.LearningLevel{"level": level}
	return c.doer.Do(ctx, http.MethodPut, "/chat/session/"+esc(sessionID)+"/level", body, nil)
}
