package models

import (
	"time"
)

type ContextKey string

const (
	UserIDKey ContextKey = "user_id"
	RoleIDKey ContextKey = "role_id"
)
// Permission is an atomic named capability a role may grant.
// The Key doubles as the document id and follows the "category.action" form.
type Permission struct {
	Key               string    `bson:"_id" json:"key"`
	Name              string    `bson:"name" json:"name"`
	Description       string    `bson:"description" json:"description"`
	Category          string    `bson:"category" json:"category"`
	IsCustom          bool      `bson:"is_custom" json:"is_custom"`
	AutoAssignToRoles []string  `bson:"auto_assign_to_roles,omitempty" json:"auto_assign_to_roles,omitempty"`
	CreatedAt         time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt         time.Time `bson:"updated_at" json:"updated_at"`
}

// Role is a named permission bundle assignable to users. The slug id is the
// document key; Level is the hierarchy rank used for authorization
// comparisons (higher = more powerful).
type Role struct {
	ID          string    `bson:"_id" json:"id"`
	Name        string    `bson:"name" json:"name"`
	Description string    `bson:"description" json:"description"`
	Color       string    `bson:"color,omitempty" json:"color,omitempty"`
	IsSystem    bool      `bson:"is_system" json:"is_system"` // Prevent deletion of system roles
	Level       int       `bson:"level" json:"level"`
	Permissions []string  `bson:"permissions" json:"permissions"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updated_at"`
}

// User carries exactly one role reference plus a materialized copy of that
// role's permission set, so authorization checks never need a role lookup.
// The sync service keeps Permissions equal to the role's canonical set.
type User struct {
	ID          string     `bson:"_id" json:"id"`
	Email       string     `bson:"email" json:"email"`
	Name        string     `bson:"name" json:"name"`
	Password    string     `bson:"password" json:"-"`
	Status      string     `bson:"status" json:"status"` // active, inactive, suspended
	Role        string     `bson:"role" json:"role"`
	Permissions []string   `bson:"permissions" json:"permissions"`
	LastLogin   *time.Time `bson:"last_login,omitempty" json:"last_login,omitempty"`
	CreatedAt   time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `bson:"updated_at" json:"updated_at"`
}

type AuditAction string

const (
	AuditActionCreate AuditAction = "CREATE"
	AuditActionUpdate AuditAction = "UPDATE"
	AuditActionDelete AuditAction = "DELETE"
	AuditActionLogin  AuditAction = "LOGIN"
	AuditActionRepair AuditAction = "REPAIR"
)

type Change struct {
	Old interface{} `bson:"old" json:"old"`
	New interface{} `bson:"new" json:"new"`
}

type AuditLog struct {
	ID        string            `bson:"_id,omitempty" json:"id"`
	Action    AuditAction       `bson:"action" json:"action"`
	Entity    string            `bson:"entity" json:"entity"`       // permission, role, user, consistency
	EntityID  string            `bson:"entity_id" json:"entity_id"` // permission key, role id or user id
	ActorID   string            `bson:"actor_id" json:"actor_id"`
	Changes   map[string]Change `bson:"changes,omitempty" json:"changes,omitempty"`
	Timestamp time.Time         `bson:"timestamp" json:"timestamp"`
}

// Log is the document shape written by the async zap sink.
type Log struct {
	Message      string    `bson:"message" json:"message"`
	Caller       string    `bson:"caller" json:"caller"`
	AppID        string    `bson:"app_id" json:"app_id"`
	LogLevelId   int       `bson:"log_level_id" json:"log_level_id"`
	CreatedOnUtc time.Time `bson:"created_on_utc" json:"created_on_utc"`
}
