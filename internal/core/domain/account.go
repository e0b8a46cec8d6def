package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// SmartAccount is the aggregate root every other entity refers to by address.
type SmartAccount struct {
	Address    string
	OwnerID    string
	ChainID    int64
	IsDeployed bool
	Nonce      uint64
	Balance    string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewSmartAccount returns a not yet deployed account with zero nonce and
// balance.
func NewSmartAccount(
	address, ownerID string, chainID int64, now time.Time,
) (*SmartAccount, error) {
	addr, err := NormalizeAddress(address)
	if err != nil {
		return nil, ErrAccountInvalidAddress
	}

	return &SmartAccount{
		Address:   addr,
		OwnerID:   ownerID,
		ChainID:   chainID,
		Balance:   "0",
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// ReserveNonce returns the current nonce and increments it.
func (a *SmartAccount) ReserveNonce(now time.Time) uint64 {
	nonce := a.Nonce
	a.Nonce++
	a.UpdatedAt = now
	return nonce
}

// MarkDeployed flags the account contract as deployed on chain. It returns
// false if it was already deployed.
func (a *SmartAccount) MarkDeployed(now time.Time) bool {
	if a.IsDeployed {
		return false
	}
	a.IsDeployed = true
	a.UpdatedAt = now
	return true
}

// UpdateBalance sets the informational balance of the account.
func (a *SmartAccount) UpdateBalance(balance string, now time.Time) error {
	value, err := ParseAmount(balance)
	if err != nil {
		return ErrAccountInvalidBalance
	}
	a.Balance = value.ToBig().String()
	a.UpdatedAt = now
	return nil
}

// NormalizeAddress validates the given hex address and returns its checksummed
// form.
func NormalizeAddress(address string) (string, error) {
	if !common.IsHexAddress(address) {
		return "", ErrAccountInvalidAddress
	}
	return common.HexToAddress(address).Hex(), nil
}

// ParseAmount parses a non negative base-10 amount that fits 256 bits. An empty
// string is parsed as zero.
func ParseAmount(amount string) (*uint256.Int, error) {
	if amount == "" {
		return uint256.NewInt(0), nil
	}
	if strings.HasPrefix(amount, "-") {
		return nil, fmt.Errorf("amount %s must not be negative", amount)
	}
	return uint256.FromDecimal(amount)
}
