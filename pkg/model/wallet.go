package model

import "time"

type WalletRole string

const (
	RolePlatform WalletRole = "platform"
	RoleOwner    WalletRole = "owner"
	RoleCustomer WalletRole = "customer"
)

// PlatformOwnerID is the fixed owner identity of the single platform wallet,
// the clearing account every customer-money movement passes through.
const PlatformOwnerID = "platform"

// Wallet tracks four independent balance tiers for one (owner, role) pair.
// SystemBalance is only used on the platform wallet and holds all in-flight
// customer money; PendingBalance and AvailableBalance belong to resource
// owners; RefundBalance is customer credit from refunds. Wallets are created
// lazily on first balance movement and never deleted.
type Wallet struct {
	ID               string     `json:"id,omitempty" bson:"_id,omitempty"`
	OwnerID          string     `json:"owner_id" bson:"owner_id" validate:"required"`
	Role             WalletRole `json:"role" bson:"role" validate:"required,oneof=platform owner customer"`
	SystemBalance    int64      `json:"system_balance" bson:"system_balance"`
	PendingBalance   int64      `json:"pending_balance" bson:"pending_balance"`
	AvailableBalance int64      `json:"available_balance" bson:"available_balance"`
	RefundBalance    int64      `json:"refund_balance" bson:"refund_balance"`
	CreatedAt        time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at" bson:"updated_at"`
}
