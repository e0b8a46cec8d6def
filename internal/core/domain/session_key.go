package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
	"github.com/samber/lo"
)

// DenialReason tells why a session key refused to authorize a call.
type DenialReason string

const (
	DenialExpired               DenialReason = "Expired"
	DenialRevoked               DenialReason = "Revoked"
	DenialTargetNotAllowed      DenialReason = "TargetNotAllowed"
	DenialFunctionNotAllowed    DenialReason = "FunctionNotAllowed"
	DenialSpendingLimitExceeded DenialReason = "SpendingLimitExceeded"
)

// DeniedError is returned by SessionKey.Authorize. It matches
// ErrSessionKeyDenied with errors.Is.
type DeniedError struct {
	SessionID string
	Reason    DenialReason
}

func (e *DeniedError) Error() string {
	return fmt.Sprintf("session key %s denied: %s", e.SessionID, e.Reason)
}

func (e *DeniedError) Is(target error) bool {
	return target == ErrSessionKeyDenied
}

// Permission grants a session key the right to call the allowed functions of
// a target contract, moving at most SpendingLimit in total.
type Permission struct {
	Target           string
	AllowedFunctions []string
	SpendingLimit    string
}

// NewPermission validates and normalizes the given arguments. Functions can be
// plain names, full signatures or 4-byte selectors.
func NewPermission(
	target string, functions []string, spendingLimit string,
) (*Permission, error) {
	addr, err := NormalizeAddress(target)
	if err != nil {
		return nil, fmt.Errorf(
			"%w: target %s is not a valid address", ErrSessionKeyInvalidPermissions, target,
		)
	}

	fns := lo.Uniq(lo.Map(functions, func(f string, _ int) string {
		return strings.TrimSpace(f)
	}))
	if len(fns) <= 0 || lo.Contains(fns, "") {
		return nil, fmt.Errorf(
			"%w: allowed functions for %s must not be empty",
			ErrSessionKeyInvalidPermissions, addr,
		)
	}
	sort.Strings(fns)

	limit, err := ParseAmount(spendingLimit)
	if err != nil {
		return nil, fmt.Errorf(
			"%w: invalid spending limit %s", ErrSessionKeyInvalidPermissions, spendingLimit,
		)
	}

	return &Permission{
		Target:           addr,
		AllowedFunctions: fns,
		SpendingLimit:    limit.ToBig().String(),
	}, nil
}

// AllowsFunction returns whether the given function name, signature or
// selector is part of the allowed set.
func (p Permission) AllowsFunction(function string) bool {
	function = strings.TrimSpace(function)
	if function == "" {
		return false
	}
	selector := strings.ToLower(function)
	if isSignature(function) {
		selector = FunctionSelector(function)
	}

	for _, allowed := range p.AllowedFunctions {
		if allowed == function {
			return true
		}
		if isSignature(allowed) && FunctionSelector(allowed) == selector {
			return true
		}
		if strings.ToLower(allowed) == selector {
			return true
		}
	}
	return false
}

// Limit returns the parsed spending limit.
func (p Permission) Limit() *uint256.Int {
	limit, err := ParseAmount(p.SpendingLimit)
	if err != nil {
		return uint256.NewInt(0)
	}
	return limit
}

// SessionKey is a delegated credential bound to a smart account.
type SessionKey struct {
	ID             string
	AccountAddress string
	PublicKey      string
	Permissions    []Permission
	// Spent tracks the cumulative amount moved per target.
	Spent     map[string]string
	ExpiresAt time.Time
	CreatedAt time.Time
	IsActive  bool
	RevokedAt time.Time
}

// NewSessionKey returns an active session key. Permissions must be non empty
// and built with NewPermission.
func NewSessionKey(
	id, accountAddress, publicKey string, permissions []Permission,
	createdAt, expiresAt time.Time,
) (*SessionKey, error) {
	account, err := NormalizeAddress(accountAddress)
	if err != nil {
		return nil, err
	}
	if len(permissions) <= 0 {
		return nil, fmt.Errorf(
			"%w: at least one permission is required", ErrSessionKeyInvalidPermissions,
		)
	}
	targets := lo.Map(permissions, func(p Permission, _ int) string {
		return p.Target
	})
	if len(lo.Uniq(targets)) != len(targets) {
		return nil, fmt.Errorf(
			"%w: duplicated target", ErrSessionKeyInvalidPermissions,
		)
	}
	if publicKey != "" {
		if _, err := hexutil.Decode(publicKey); err != nil {
			return nil, ErrSessionKeyInvalidPublicKey
		}
	}
	if !expiresAt.After(createdAt) {
		return nil, ErrSessionKeyInvalidExpiry
	}

	return &SessionKey{
		ID:             id,
		AccountAddress: account,
		PublicKey:      publicKey,
		Permissions:    permissions,
		Spent:          make(map[string]string),
		ExpiresAt:      expiresAt,
		CreatedAt:      createdAt,
		IsActive:       true,
	}, nil
}

// IsEffectivelyActive returns whether the key is neither revoked nor expired
// at the given time.
func (k *SessionKey) IsEffectivelyActive(now time.Time) bool {
	return k.IsActive && now.Before(k.ExpiresAt)
}

// Revoke deactivates the key for good. Keys that are no longer effectively
// active are reported as not found.
func (k *SessionKey) Revoke(now time.Time) error {
	if !k.IsEffectivelyActive(now) {
		return ErrSessionKeyNotFound
	}
	k.IsActive = false
	k.RevokedAt = now
	return nil
}

// Permission returns the permission for the given target, if any.
func (k *SessionKey) Permission(target string) (*Permission, bool) {
	addr, err := NormalizeAddress(target)
	if err != nil {
		return nil, false
	}
	p, ok := lo.Find(k.Permissions, func(p Permission) bool {
		return p.Target == addr
	})
	if !ok {
		return nil, false
	}
	return &p, true
}

// SpentFor returns the cumulative amount moved to the given target.
func (k *SessionKey) SpentFor(target string) *uint256.Int {
	addr, err := NormalizeAddress(target)
	if err != nil {
		return uint256.NewInt(0)
	}
	spent, err := ParseAmount(k.Spent[addr])
	if err != nil {
		return uint256.NewInt(0)
	}
	return spent
}

// Authorize checks whether the key may call function on target moving amount.
// It does not record the spend, use Charge for that.
func (k *SessionKey) Authorize(
	now time.Time, target, function string, amount *uint256.Int,
) error {
	if !k.IsActive {
		return k.deny(DenialRevoked)
	}
	if !now.Before(k.ExpiresAt) {
		return k.deny(DenialExpired)
	}

	permission, ok := k.Permission(target)
	if !ok {
		return k.deny(DenialTargetNotAllowed)
	}
	if !permission.AllowsFunction(function) {
		return k.deny(DenialFunctionNotAllowed)
	}

	if amount == nil {
		amount = uint256.NewInt(0)
	}
	limit := permission.Limit()
	if limit.IsZero() && amount.IsZero() {
		return nil
	}
	spent := k.SpentFor(target)
	if !spent.Lt(limit) {
		return k.deny(DenialSpendingLimitExceeded)
	}
	total, overflow := new(uint256.Int).AddOverflow(spent, amount)
	if overflow || total.Gt(limit) {
		return k.deny(DenialSpendingLimitExceeded)
	}
	return nil
}

// Charge authorizes the call and, if allowed, adds amount to the cumulative
// spend for target.
func (k *SessionKey) Charge(
	now time.Time, target, function string, amount *uint256.Int,
) error {
	if err := k.Authorize(now, target, function, amount); err != nil {
		return err
	}
	if amount == nil || amount.IsZero() {
		return nil
	}

	permission, _ := k.Permission(target)
	spent := k.SpentFor(target)
	spent.Add(spent, amount)
	if k.Spent == nil {
		k.Spent = make(map[string]string)
	}
	k.Spent[permission.Target] = spent.ToBig().String()
	return nil
}

// Release gives back an amount previously charged for target.
func (k *SessionKey) Release(target string, amount *uint256.Int) {
	if amount == nil || amount.IsZero() {
		return
	}
	permission, ok := k.Permission(target)
	if !ok {
		return
	}
	spent := k.SpentFor(target)
	if spent.Lt(amount) {
		spent.Clear()
	} else {
		spent.Sub(spent, amount)
	}
	k.Spent[permission.Target] = spent.ToBig().String()
}

func (k *SessionKey) deny(reason DenialReason) error {
	return &DeniedError{SessionID: k.ID, Reason: reason}
}

// FunctionSelector returns the 0x-prefixed 4-byte selector of a function
// signature like transfer(address,uint256).
func FunctionSelector(signature string) string {
	sig := strings.ReplaceAll(signature, " ", "")
	return hexutil.Encode(crypto.Keccak256([]byte(sig))[:4])
}

func isSignature(function string) bool {
	return strings.Contains(function, "(") && strings.HasSuffix(function, ")")
}
