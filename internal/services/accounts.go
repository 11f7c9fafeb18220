package services

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"bscf_accounts/internal/models"
)

const (
	defaultProductScheme = "SAVINGS"
	defaultVoucherType   = "REGULAR"
	defaultInterestRate  = 2.5
)

// provisionVirtualAccount opens the pending savings account every new user
// receives. It must run inside the registration transaction.
func provisionVirtualAccount(tx *gorm.DB, userID uint) (*models.VirtualAccount, error) {
	branch, err := accountCode("VA")
	if err != nil {
		return nil, err
	}
	cbs, err := accountCode("CBS")
	if err != nil {
		return nil, err
	}

	va := models.VirtualAccount{
		UserID:           userID,
		BranchCode:       branch,
		ProductScheme:    defaultProductScheme,
		VoucherType:      defaultVoucherType,
		Balance:          0,
		InterestRate:     defaultInterestRate,
		InterestType:     models.InterestSimple,
		Status:           models.AccountPending,
		CBSAccountNumber: cbs,
	}
	if err := tx.Create(&va).Error; err != nil {
		return nil, fmt.Errorf("create virtual account: %w", err)
	}
	return &va, nil
}

// accountCode returns prefix followed by 8 random upper-case hex digits.
func accountCode(prefix string) (string, error) {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return prefix + strings.ToUpper(hex.EncodeToString(b)), nil
}
