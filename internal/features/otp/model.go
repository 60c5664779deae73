package otp

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Purpose string

const (
	PurposeVerification    Purpose = "verification"
	PurposeOrder           Purpose = "order"
	PurposeOrderVerify     Purpose = "order_verification"
	PurposeLogin           Purpose = "login"
	PurposeDemo            Purpose = "demo"
	PurposeOrderHistory    Purpose = "order_history"
	PurposeFavoritesAccess Purpose = "favorites_access"
)

func ValidPurpose(p Purpose) bool {
	switch p {
	case PurposeVerification, PurposeOrder, PurposeOrderVerify,
		PurposeLogin, PurposeDemo, PurposeOrderHistory, PurposeFavoritesAccess:
		return true
	}
	return false
}

// OTP is a single-use verification code bound to (phone, purpose). The TTL
// index on expires_at reclaims records; no client-driven cleanup.
type OTP struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	PublicID    string             `bson:"public_id" json:"id"`
	PhoneNumber string             `bson:"phone_number" json:"phone_number"`
	Code        string             `bson:"code" json:"-"`
	Purpose     Purpose            `bson:"purpose" json:"purpose"`
	Attempts    int                `bson:"attempts" json:"attempts"`
	Verified    bool               `bson:"verified" json:"verified"`
	ExpiresAt   time.Time          `bson:"expires_at" json:"expires_at"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
}
