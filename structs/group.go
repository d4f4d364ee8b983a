package structs

import "time"

type GroupRole string

const (
	RoleOwner  GroupRole = "owner"
	RoleAdmin  GroupRole = "admin"
	RoleMember GroupRole = "member"
)

// GroupMember is the detailed entry kept alongside Group.MemberIDs.
type GroupMember struct {
	UserID   string    `json:"userId" bson:"userId"`
	Name     string    `json:"name,omitempty" bson:"name,omitempty"`
	Role     GroupRole `json:"role,omitempty" bson:"role,omitempty"`
	JoinedAt time.Time `json:"joinedAt,omitempty" bson:"joinedAt,omitempty"`
}

type GroupSettings struct {
	IsPublic bool `json:"isPublic" bson:"isPublic"`
}

// Group is a study group. MemberIDs is the queryable membership list and
// Members, when present, must mirror it.
type Group struct {
	ID          string        `json:"id,omitempty" bson:"_id,omitempty"`
	Name        string        `json:"name" bson:"name" validate:"notblank,max=200"`
	Owner       string        `json:"owner" bson:"owner" validate:"notblank"`
	Description string        `json:"description,omitempty" bson:"description,omitempty" validate:"max=2000"`
	MemberIDs   []string      `json:"memberIds" bson:"memberIds" validate:"min=1,max=100"`
	Members     []GroupMember `json:"members,omitempty" bson:"members,omitempty"`
	JoinCode    string        `json:"joinCode,omitempty" bson:"joinCode,omitempty" validate:"omitempty,len=6,alphanum"`
	Settings    GroupSettings `json:"settings" bson:"settings"`
	CreatedAt   time.Time     `json:"createdAt,omitempty" bson:"createdAt,omitempty"`
}
