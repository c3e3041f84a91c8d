package storage

import (
	"strings"
	"time"

	"mic/model"
)

// MessageMatch is one message containing a search query.
type MessageMatch struct {
	MessageIndex int       `yaml:"index"`
	Role         string    `yaml:"role"`
	Content      string    `yaml:"-"`
	Preview      string    `yaml:"preview"`
	Timestamp    time.Time `yaml:"timestamp"`
}

type SessionMessageMatch struct {
	SessionID   string `yaml:"session_id"`
	SessionName string `yaml:"session_name"`
	MessageMatch `yaml:",inline"`
}

const previewLength = 100

func preview(content string) string {
	runes := []rune(content)
	if len(runes) > previewLength {
		return string(runes[:previewLength]) + "..."
	}
	return content
}

// SearchMessages returns the messages whose content contains query,
// case-insensitively. System messages are never matched.
func SearchMessages(messages []model.Message, query string) []MessageMatch {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return []MessageMatch{}
	}

	matches := []MessageMatch{}
	for i, msg := range messages {
		if msg.Role == model.RoleSystem {
			continue
		}
		if strings.Contains(strings.ToLower(msg.Content), query) {
			matches = append(matches, MessageMatch{
				MessageIndex: i,
				Role:         msg.Role,
				Content:      msg.Content,
				Preview:      preview(msg.Content),
				Timestamp:    msg.Timestamp,
			})
		}
	}
	return matches
}

// SearchIndex searches message content across every stored session.
type SearchIndex struct {
	storage *SessionStorage
}

func NewSearchIndex(storage *SessionStorage) *SearchIndex {
	return &SearchIndex{storage: storage}
}

// SearchAllSessions returns matches grouped by session, newest session
// first.
func (si *SearchIndex) SearchAllSessions(query string) ([]SessionMessageMatch, error) {
	if strings.TrimSpace(query) == "" {
		return []SessionMessageMatch{}, nil
	}

	sessionList, err := si.storage.List()
	if err != nil {
		return nil, err
	}

	matches := []SessionMessageMatch{}
	for _, meta := range sessionList {
		session, err := si.storage.Load(meta.ID)
		if err != nil {
			continue
		}
		for _, m := range SearchMessages(session.Conversation.History, query) {
			matches = append(matches, SessionMessageMatch{
				SessionID:    session.ID,
				SessionName:  session.Name,
				MessageMatch: m,
			})
		}
	}
	return matches, nil
}
