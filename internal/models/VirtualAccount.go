package models

import "time"

type InterestType string

const (
	InterestSimple   InterestType = "simple"
	InterestCompound InterestType = "compound"
)

type AccountStatus string

const (
	AccountPending   AccountStatus = "pending"
	AccountActive    AccountStatus = "active"
	AccountSuspended AccountStatus = "suspended"
	AccountClosed    AccountStatus = "closed"
)

// VirtualAccount is the financial ledger account provisioned for every
// registered user.
type VirtualAccount struct {
	ID               uint          `gorm:"primaryKey" json:"id"`
	UserID           uint          `gorm:"uniqueIndex;not null" json:"user_id"`
	BranchCode       string        `gorm:"not null;size:16" json:"branch_code"`
	ProductScheme    string        `gorm:"not null" json:"product_scheme"`
	VoucherType      string        `gorm:"not null" json:"voucher_type"`
	Balance          float64       `gorm:"type:decimal(15,2);not null;default:0" json:"balance"`
	InterestRate     float64       `gorm:"type:decimal(5,2);not null" json:"interest_rate"`
	InterestType     InterestType  `gorm:"not null;default:simple" json:"interest_type"`
	Status           AccountStatus `gorm:"not null;default:pending" json:"status"`
	CBSAccountNumber string        `gorm:"uniqueIndex;not null;size:16" json:"cbs_account_number"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
