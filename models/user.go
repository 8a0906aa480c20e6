package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// Role enum
type Role string

const (
	RoleCitizen  Role = "citizen"
	RoleOfficial Role = "official"
	RoleAdmin    Role = "admin"
)

// NormalizeRole maps stored or submitted values onto a known role.
// The legacy value "user" and anything unknown become citizen.
func NormalizeRole(value string) Role {
	switch Role(value) {
	case RoleOfficial, RoleAdmin:
		return Role(value)
	default:
		return RoleCitizen
	}
}

// Privileged reports whether the role may read AI summaries and moderate comments.
func (r Role) Privileged() bool {
	return r == RoleOfficial || r == RoleAdmin
}

type User struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	DisplayName *string            `bson:"displayName,omitempty" json:"displayName,omitempty"`
	Email       string             `bson:"email" json:"email"`
	Password    string             `bson:"password,omitempty" json:"-"`
	Role        Role               `bson:"role" json:"role"`
	Language    string             `bson:"language,omitempty" json:"language,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func (u *User) HashPassword() error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashed)
	return nil
}

func (u *User) ComparePassword(candidate string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(candidate))
	return err == nil
}

// Author is the public profile joined onto issues and comments.
type Author struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	DisplayName *string            `bson:"displayName,omitempty" json:"displayName,omitempty"`
	Email       string             `bson:"email" json:"email"`
	Role        Role               `bson:"role" json:"role"`
}

// Label is the name shown next to content: display name, else email.
func (a Author) Label() string {
	if a.DisplayName != nil && *a.DisplayName != "" {
		return *a.DisplayName
	}
	return a.Email
}

// Viewer is the user looking at the feed. An empty UserID means anonymous.
type Viewer struct {
	UserID string
	Role   Role
}

// Authenticated reports whether the viewer is signed in.
func (v Viewer) Authenticated() bool {
	return v.UserID != ""
}

// CanViewSummaries gates AI summary generation.
func (v Viewer) CanViewSummaries() bool {
	return v.Authenticated() && v.Role.Privileged()
}

// CanDeleteComment reports whether the viewer may remove a comment written by authorID.
func (v Viewer) CanDeleteComment(authorID string) bool {
	if !v.Authenticated() {
		return false
	}
	return v.UserID == authorID || v.Role.Privileged()
}
