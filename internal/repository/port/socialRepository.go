package repository

import (
	"context"
	"errors"
)

var (
	ErrUserNotFound  = errors.New("social: user not found")
	ErrGroupNotFound = errors.New("social: group not found")
)

// Display carries the name/logo pair shown for a conversation counterpart.
type Display struct {
	Name string
	Logo string
}

// Social is the read-only view of the identity and relationship data owned
// by the CRUD layer. The chat core never writes through this port.
type Social interface {
	// UserDisplay resolves a user's nickname and avatar.
	UserDisplay(ctx context.Context, userID int64) (Display, error)

	// IsFriend reports whether friendID is in userID's friend list.
	IsFriend(ctx context.Context, userID, friendID int64) (bool, error)

	// FriendRemark returns userID's private remark name for friendID, or ""
	// when none is set.
	FriendRemark(ctx context.Context, userID, friendID int64) (string, error)

	// GroupDisplay resolves a group's name and logo.
	GroupDisplay(ctx context.Context, groupID int64) (Display, error)

	// GroupMembers returns the user ids of all members of the group.
	GroupMembers(ctx context.Context, groupID int64) ([]int64, error)
}
