package model

import "github.com/secmon-lab/duesoon/pkg/domain/types"

// UserID is the authentication user ID of a CRM user
type UserID string

// User is a CRM staff member and potential notification recipient
type User struct {
	ID     UserID
	Name   string
	Email  string
	Phone  string
	Role   types.UserRole
	Status types.UserStatus
}

// IsActiveAdmin reports whether the user receives escalations for unowned work
func (u *User) IsActiveAdmin() bool {
	return u.ID != "" && u.Role == types.UserRoleAdmin && u.Status == types.UserStatusActive
}

// UniqueUserIDs removes empty and repeated IDs, keeping first occurrence order
func UniqueUserIDs(ids []UserID) []UserID {
	seen := make(map[UserID]struct{}, len(ids))
	result := make([]UserID, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}
	return result
}
