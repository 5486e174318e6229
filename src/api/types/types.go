package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Post moderation states. A post is visible to ordinary users only when
// approved; admins may additionally see pending posts.
const (
	PostStatusPending  = "pending"
	PostStatusApproved = "approved"
	PostStatusRejected = "rejected"
)

// StringList stores a JSON-encoded string slice in a text column. The data
// model keeps the document-store shape of the original collections
// (likedBy, followingIds, joinedCommunities) instead of join tables.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	var b []byte
	switch v := value.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into StringList", value)
	}
	if len(b) == 0 {
		*l = nil
		return nil
	}
	return json.Unmarshal(b, l)
}

// Contains reports whether id is present in the list.
func (l StringList) Contains(id string) bool {
	for _, v := range l {
		if v == id {
			return true
		}
	}
	return false
}

// Without returns a copy of the list with id removed.
func (l StringList) Without(id string) StringList {
	out := make(StringList, 0, len(l))
	for _, v := range l {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

// Users
type User struct {
	ID                string     `gorm:"primaryKey;size:64" json:"id"`
	Email             string     `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash      string     `gorm:"size:128" json:"-"`
	Name              string     `gorm:"size:128" json:"name"`
	Username          string     `gorm:"size:64" json:"username"`
	AvatarURL         string     `gorm:"size:512" json:"avatarUrl"`
	Specialization    string     `gorm:"size:128" json:"specialization"`
	StudyYear         int        `json:"studyYear"`
	University        string     `gorm:"size:128" json:"university,omitempty"`
	Followers         int        `gorm:"default:0" json:"followers"`
	Following         int        `gorm:"default:0" json:"following"`
	IsActive          bool       `gorm:"default:true" json:"isActive"`
	IsAdmin           bool       `gorm:"default:false" json:"isAdmin"`
	FollowingIDs      StringList `gorm:"type:text" json:"followingIds"`
	BlockedUserIDs    StringList `gorm:"type:text" json:"blockedUserIds"`
	JoinedCommunities StringList `gorm:"type:text" json:"joinedCommunities"`

	// Moderation trust record. Mutated only by the trust ledger.
	CleanPostCount int  `gorm:"default:0" json:"cleanPostCount"`
	PostViolations int  `gorm:"default:0" json:"postViolations"`
	IsTrusted      bool `gorm:"default:false" json:"isTrusted"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Posts (course reviews and community posts)
type Post struct {
	ID              string     `gorm:"primaryKey;size:64" json:"id"`
	AuthorID        string     `gorm:"size:64;index;not null" json:"author"`
	CourseName      string     `gorm:"size:255" json:"courseName"`
	Review          string     `gorm:"type:text" json:"review"`
	Rating          int        `json:"rating"`
	Likes           int        `gorm:"default:0" json:"likes"`
	LikedBy         StringList `gorm:"type:text" json:"likedBy"`
	ImageURLs       StringList `gorm:"type:text" json:"imageUrls,omitempty"`
	LinkURL         string     `gorm:"size:512" json:"linkUrl,omitempty"`
	Field           string     `gorm:"size:64" json:"field"`
	IsCommunityPost bool       `gorm:"default:false" json:"isCommunityPost"`
	RepostOfID      string     `gorm:"size:64" json:"repostOf,omitempty"`

	Status           string     `gorm:"size:16;index;not null" json:"status"`
	ModerationReason string     `gorm:"size:512" json:"moderationReason,omitempty"`
	ApprovedBy       string     `gorm:"size:64" json:"approvedBy,omitempty"`
	RejectedBy       string     `gorm:"size:64" json:"rejectedBy,omitempty"`
	ApprovedAt       *time.Time `json:"approvedAt,omitempty"`
	RejectedAt       *time.Time `json:"rejectedAt,omitempty"`

	Timestamp time.Time `gorm:"index" json:"timestamp"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Comments []Comment `gorm:"foreignKey:PostID" json:"comments"`
}

// Comments on posts
type Comment struct {
	ID        string     `gorm:"primaryKey;size:64" json:"id"`
	PostID    string     `gorm:"size:64;index;not null" json:"-"`
	AuthorID  string     `gorm:"size:64;not null" json:"author"`
	Text      string     `gorm:"type:text;not null" json:"text"`
	Likes     int        `gorm:"default:0" json:"likes"`
	LikedBy   StringList `gorm:"type:text" json:"likedBy"`
	CreatedAt time.Time  `json:"timestamp"`
}

// Courses
type Course struct {
	ID          string    `gorm:"primaryKey;size:64" json:"id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Field       string    `gorm:"size:64" json:"field"`
	Rating      float64   `gorm:"default:0" json:"rating"`
	RatingCount int       `gorm:"default:0" json:"ratingCount"`
	Platform    string    `gorm:"size:128" json:"platform"`
	ImageURL    string    `gorm:"size:512" json:"imageUrl"`
	Description string    `gorm:"type:text" json:"description"`
	OwnerID     string    `gorm:"size:64" json:"ownerId,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Notification kinds delivered to users.
const (
	NotificationLike    = "like"
	NotificationComment = "comment"
	NotificationFollow  = "follow"
	NotificationRepost  = "repost"
)

// Notifications
type Notification struct {
	ID           string    `gorm:"primaryKey;size:64" json:"id"`
	Type         string    `gorm:"size:16;not null" json:"type"`
	UserID       string    `gorm:"size:64;index;not null" json:"userId"`
	SourceUserID string    `gorm:"size:64" json:"sourceUserId"`
	PostID       string    `gorm:"size:64" json:"postId,omitempty"`
	Read         bool      `gorm:"default:false" json:"read"`
	CreatedAt    time.Time `gorm:"index" json:"timestamp"`
}
