package domain

import (
	"github.com/google/uuid"

	dErrors "deales/pkg/domain-errors"
)

// UserID identifies an account.
type UserID uuid.UUID

// DealershipID identifies a dealership record.
type DealershipID uuid.UUID

// NewUserID returns a fresh random UserID.
func NewUserID() UserID { return UserID(uuid.New()) }

// NewDealershipID returns a fresh random DealershipID.
func NewDealershipID() DealershipID { return DealershipID(uuid.New()) }

func (id UserID) String() string       { return uuid.UUID(id).String() }
func (id DealershipID) String() string { return uuid.UUID(id).String() }

// IsNil reports whether the id is the zero UUID.
func (id UserID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

func parseUUID(s, kind string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" is required")
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+kind)
	}
	if parsed == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" cannot be nil")
	}
	return parsed, nil
}

// ParseUserID validates s at a trust boundary.
func ParseUserID(s string) (UserID, error) {
	id, err := parseUUID(s, "user ID")
	return UserID(id), err
}

// ParseDealershipID validates s at a trust boundary.
func ParseDealershipID(s string) (DealershipID, error) {
	id, err := parseUUID(s, "dealership ID")
	return DealershipID(id), err
}
