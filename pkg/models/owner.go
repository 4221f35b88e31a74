package models

import (
	"fmt"

	"gorm.io/gorm"
)

type ownerKind uint8

const (
	ownerNone ownerKind = iota
	ownerUser
	ownerGuest
)

// Owner is either a registered user or a guest session, never both. The zero
// value is the missing identity.
type Owner struct {
	kind    ownerKind
	userID  uint
	guestID string
}

func UserOwner(id uint) Owner {
	if id == 0 {
		return Owner{}
	}
	return Owner{kind: ownerUser, userID: id}
}

func GuestOwner(sessionID string) Owner {
	if sessionID == "" {
		return Owner{}
	}
	return Owner{kind: ownerGuest, guestID: sessionID}
}

func (o Owner) IsZero() bool  { return o.kind == ownerNone }
func (o Owner) IsUser() bool  { return o.kind == ownerUser }
func (o Owner) IsGuest() bool { return o.kind == ownerGuest }

// UserID returns the user id and true for a registered owner.
func (o Owner) UserID() (uint, bool) { return o.userID, o.kind == ownerUser }

// GuestID returns the session id and true for a guest owner.
func (o Owner) GuestID() (string, bool) { return o.guestID, o.kind == ownerGuest }

func (o Owner) String() string {
	switch o.kind {
	case ownerUser:
		return fmt.Sprintf("user:%d", o.userID)
	case ownerGuest:
		return "guest:" + o.guestID
	default:
		return "none"
	}
}

// Scope restricts a query to rows owned by o. The missing identity matches
// nothing.
func (o Owner) Scope(db *gorm.DB) *gorm.DB {
	switch o.kind {
	case ownerUser:
		return db.Where("user_id = ?", o.userID)
	case ownerGuest:
		return db.Where("guest_session_id = ?", o.guestID)
	default:
		return db.Where("1 = 0")
	}
}

// columns returns the pair stored on owned rows.
func (o Owner) columns() (*uint, *string) {
	switch o.kind {
	case ownerUser:
		id := o.userID
		return &id, nil
	case ownerGuest:
		gid := o.guestID
		return nil, &gid
	default:
		return nil, nil
	}
}

func ownerFromColumns(userID *uint, guestID *string) Owner {
	if userID != nil {
		return UserOwner(*userID)
	}
	if guestID != nil {
		return GuestOwner(*guestID)
	}
	return Owner{}
}
