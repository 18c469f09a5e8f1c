package entities

import (
	"time"

	"gorm.io/datatypes"
)

// WordPart is one component of a word's written form, e.g. a kanji and its readings.
type WordPart struct {
	WrittenForm string   `json:"written_form" validate:"required"`
	Readings    []string `json:"readings" validate:"required,min=1,dive,required"`
}

// Word is a vocabulary entry, unique by written form.
type Word struct {
	ID           uint                          `gorm:"primaryKey" json:"id"`
	WrittenForm  string                        `gorm:"uniqueIndex;size:255;not null" json:"written_form"`
	Romanization string                        `gorm:"size:255;not null" json:"romanization"`
	Gloss        string                        `gorm:"size:512;not null" json:"gloss"`
	Parts        datatypes.JSONSlice[WordPart] `gorm:"not null" json:"parts"`

	// Review tallies, filled by listing queries only.
	CorrectCount int64 `gorm:"->;-:migration" json:"correct_count"`
	WrongCount   int64 `gorm:"->;-:migration" json:"wrong_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Group is a named study list of words.
type Group struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Name       string    `gorm:"uniqueIndex;size:255;not null" json:"name"`
	WordsCount int64     `gorm:"not null;default:0" json:"words_count"` // Always recomputed from memberships
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Membership links a word to a group. The composite primary key rejects duplicates.
type Membership struct {
	WordID    uint      `gorm:"primaryKey;autoIncrement:false" json:"word_id"`
	GroupID   uint      `gorm:"primaryKey;autoIncrement:false;index" json:"group_id"`
	Word      *Word     `gorm:"foreignKey:WordID;constraint:OnDelete:CASCADE" json:"-"`
	Group     *Group    `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// Activity is a kind of exercise a session runs.
type Activity struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;size:100;not null" json:"name"` // e.g., "flashcards"
	URL       string    `gorm:"size:2048" json:"url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Session is one run of an activity, optionally over a group. A nil GroupID
// is free-form practice.
type Session struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	GroupID    *uint     `gorm:"index" json:"group_id"`
	ActivityID uint      `gorm:"index;not null" json:"activity_id"`
	Group      *Group    `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE" json:"-"`
	Activity   *Activity `gorm:"foreignKey:ActivityID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`

	// Filled by listing queries only.
	GroupName        string `gorm:"->;-:migration" json:"group_name,omitempty"`
	ActivityName     string `gorm:"->;-:migration" json:"activity_name,omitempty"`
	ReviewItemsCount int64  `gorm:"->;-:migration" json:"review_items_count"`
}

// ReviewItem records one answer for a word within a session.
type ReviewItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	SessionID uint      `gorm:"index;not null" json:"session_id"`
	WordID    uint      `gorm:"index;not null" json:"word_id"`
	Correct   bool      `gorm:"not null" json:"correct"`
	Session   *Session  `gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE" json:"-"`
	Word      *Word     `gorm:"foreignKey:WordID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// WordStats is the review tally of a single word.
type WordStats struct {
	CorrectCount int64 `json:"correct_count"`
	WrongCount   int64 `json:"wrong_count"`
}

// SessionStats summarises the reviews recorded in one session.
type SessionStats struct {
	TotalReviews   int64   `json:"total_reviews"`
	CorrectReviews int64   `json:"correct_reviews"`
	Accuracy       float64 `json:"accuracy"` // 0.0 when there are no reviews
}

// Overview is the store-wide learning summary.
type Overview struct {
	TotalWords    int64      `json:"total_words"`
	StudiedWords  int64      `json:"studied_words"`
	TotalSessions int64      `json:"total_sessions"`
	ActiveGroups  int64      `json:"active_groups"`
	TotalReviews  int64      `json:"total_reviews"`
	SuccessRate   float64    `json:"success_rate"`
	LastSessionID *uint      `json:"last_session_id,omitempty"`
	LastSessionAt *time.Time `json:"last_session_at,omitempty"`
}

func (Word) TableName() string {
	return "words"
}

func (Group) TableName() string {
	return "study_groups"
}

func (Membership) TableName() string {
	return "study_group_words"
}

func (Activity) TableName() string {
	return "study_activities"
}

func (Session) TableName() string {
	return "study_sessions"
}

func (ReviewItem) TableName() string {
	return "word_review_items"
}

// StudyModels lists every model in migration order.
func StudyModels() []any {
	return []any{
		&Word{},
		&Group{},
		&Membership{},
		&Activity{},
		&Session{},
		&ReviewItem{},
	}
}
