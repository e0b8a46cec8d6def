package domain

import "errors"

// Account errors
var (
	// ErrAccountInvalidAddress is returned when an account address is not a
	// valid hex address.
	ErrAccountInvalidAddress = errors.New("invalid account address")
	// ErrAccountNotFound ...
	ErrAccountNotFound = errors.New("account not found")
	// ErrAccountAlreadyExists ...
	ErrAccountAlreadyExists = errors.New("account already exists")
	// ErrAccountInvalidBalance is returned when the balance is not an unsigned
	// 256-bit decimal number.
	ErrAccountInvalidBalance = errors.New("invalid account balance")
)

// Session key errors
var (
	// ErrSessionKeyInvalidPermissions is returned when a session key is created
	// with an empty or malformed set of permissions.
	ErrSessionKeyInvalidPermissions = errors.New("invalid session key permissions")
	// ErrSessionKeyInvalidExpiry is returned when the expiration is not after
	// the creation time.
	ErrSessionKeyInvalidExpiry = errors.New("session key must expire after its creation")
	// ErrSessionKeyInvalidPublicKey ...
	ErrSessionKeyInvalidPublicKey = errors.New("invalid session key public key")
	// ErrSessionKeyNotFound is returned for unknown, revoked or expired keys.
	ErrSessionKeyNotFound = errors.New("session key not found")
	// ErrSessionKeyAlreadyExists ...
	ErrSessionKeyAlreadyExists = errors.New("session key already exists")
	// ErrSessionKeyDenied is matched by every DeniedError.
	ErrSessionKeyDenied = errors.New("session key denied")
)

// Recovery errors
var (
	// ErrRecoveryMissingRequiredFields is returned when the account, the
	// guardians or the threshold of a request are missing.
	ErrRecoveryMissingRequiredFields = errors.New("missing required fields")
	// ErrRecoveryInvalidGuardian ...
	ErrRecoveryInvalidGuardian = errors.New("invalid guardian address")
	// ErrRecoveryInvalidThreshold is returned when the threshold is lower than
	// 1 or greater than the number of guardians.
	ErrRecoveryInvalidThreshold = errors.New("invalid threshold")
	// ErrRecoveryNotAGuardian ...
	ErrRecoveryNotAGuardian = errors.New("not a guardian of the recovery request")
	// ErrRecoveryAlreadyApproved is returned when a guardian approves twice.
	// The request is left untouched.
	ErrRecoveryAlreadyApproved = errors.New("guardian has already approved")
	// ErrRecoveryInvalidState is returned for transitions that are not allowed
	// from the current status.
	ErrRecoveryInvalidState = errors.New("invalid recovery request state")
	// ErrRecoveryTooEarly is returned when executing before the delay elapsed.
	ErrRecoveryTooEarly = errors.New("recovery delay has not elapsed yet")
	// ErrRecoveryNotFound ...
	ErrRecoveryNotFound = errors.New("recovery request not found")
	// ErrRecoveryAlreadyExists ...
	ErrRecoveryAlreadyExists = errors.New("recovery request already exists")
)

// Operation errors
var (
	// ErrOperationInvalidTarget ...
	ErrOperationInvalidTarget = errors.New("invalid operation target address")
	// ErrOperationInvalidValue ...
	ErrOperationInvalidValue = errors.New("invalid operation value")
	// ErrOperationInvalidData ...
	ErrOperationInvalidData = errors.New("invalid operation calldata")
	// ErrOperationFunctionMismatch is returned when the function label of a
	// call is not the selector of its calldata or a signature hashing to it.
	ErrOperationFunctionMismatch = errors.New("function does not match operation calldata")
	// ErrOperationNotFound is returned for unknown operation hashes.
	ErrOperationNotFound = errors.New("operation not found")
	// ErrOperationAlreadyExists ...
	ErrOperationAlreadyExists = errors.New("operation already exists")
	// ErrOperationNotFailed is returned when retrying an operation that did not
	// fail.
	ErrOperationNotFailed = errors.New("only failed operations can be retried")
	// ErrOperationAlreadyRetried ...
	ErrOperationAlreadyRetried = errors.New("operation has already been retried")
	// ErrOperationInvalidStatus is returned when a terminal operation status is
	// changed.
	ErrOperationInvalidStatus = errors.New("operation status is already final")
)

// Provider errors
var (
	// ErrProviderInvalidKind ...
	ErrProviderInvalidKind = errors.New("invalid provider kind")
	// ErrProviderMissingCapabilities is returned when the capabilities do not
	// match the provider kind.
	ErrProviderMissingCapabilities = errors.New("provider capabilities do not match its kind")
	// ErrProviderMissingID ...
	ErrProviderMissingID = errors.New("provider id must not be empty")
	// ErrProviderNoChains ...
	ErrProviderNoChains = errors.New("provider must support at least one chain")
	// ErrProviderInvalidReliability ...
	ErrProviderInvalidReliability = errors.New("invalid provider reliability")
	// ErrProviderNotFound ...
	ErrProviderNotFound = errors.New("provider not found")
	// ErrProviderChainNotSupported ...
	ErrProviderChainNotSupported = errors.New("provider does not support chain")
	// ErrProviderNoGasEstimation is returned when neither the selected bundler
	// nor any other bundler of the chain can estimate gas.
	ErrProviderNoGasEstimation = errors.New("no bundler supports gas estimation")
)
