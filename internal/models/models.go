package models

import "time"

type SessionStatus string

const (
	StatusProcessing SessionStatus = "processing"
	StatusReady      SessionStatus = "ready"
	StatusFallback   SessionStatus = "fallback"
	StatusFailed     SessionStatus = "failed"
)

// Terminal reports whether a status ends the session lifecycle.
func (s SessionStatus) Terminal() bool {
	return s == StatusReady || s == StatusFallback || s == StatusFailed
}

type Orientation string

const (
	OrientationVertical   Orientation = "vertical"
	OrientationHorizontal Orientation = "horizontal"
	OrientationSquare     Orientation = "square"
)

type User struct {
	TelegramID  int64
	Username    string
	FullName    string
	Tokens      int
	HourlyLimit int
	IsAdmin     bool
	IsBlocked   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Face is a saved reference photo reusable across sessions. FileID is the
// Telegram file handle, FilePath the local copy (may be stale).
type Face struct {
	ID        int64
	UserID    int64
	Title     string
	FileID    string
	FilePath  string
	CreatedAt time.Time
}

type Session struct {
	ID          int64
	UserID      int64
	Style       string
	Prompt      string
	Orientation Orientation
	Status      SessionStatus
	TokensSpent int
	ResultPath  string
	ResultURL   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type PromptGeneration struct {
	ID          int64
	UserID      int64
	Prompt      string
	Template    string
	Status      SessionStatus
	TokensSpent int
	ResultPath  string
	CreatedAt   time.Time
}
