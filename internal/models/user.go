package models

import "go.mongodb.org/mongo-driver/bson/primitive"

const (
	RoleStudent  = "Student"
	RoleLecturer = "Lecturer"
	RoleAdmin    = "Admin"
)

type User struct {
	Base           `bson:",inline"`
	Name           string `bson:"name" json:"name"`
	Email          string `bson:"email" json:"email"`
	Password       string `bson:"password" json:"-"` // bcrypt hash, never serialised
	Role           string `bson:"role" json:"role"`
	ProfilePicture string `bson:"profilePicture,omitempty" json:"profilePicture,omitempty"`
	FirstLogin     bool   `bson:"firstLogin" json:"firstLogin"`
	PasswordReset  bool   `bson:"passwordReset" json:"passwordReset"`
}

// UserFilter narrows user listings. Empty fields match everything.
type UserFilter struct {
	Role string
	IDs  []primitive.ObjectID
}
