package application

import (
	"context"
	"errors"

	"github.com/tdex-network/aawalletd/internal/core/application/pubsub"
	"github.com/tdex-network/aawalletd/internal/core/application/relay"
	"github.com/tdex-network/aawalletd/internal/core/domain"
	"github.com/tdex-network/aawalletd/internal/core/ports"
)

// TransactionFailedError is returned by the relay when an operation could not
// be submitted.
type TransactionFailedError = relay.TransactionFailedError

var (
	// ErrServiceUnavailable is returned when a service is used before being
	// configured.
	ErrServiceUnavailable = errors.New("service is unavailable, try again later")
	// ErrWebhookManagerNotInitialized is returned when attempting to use
	// AddWebhook or RemoveWebhook without having initialized the manager.
	ErrWebhookManagerNotInitialized = pubsub.ErrWebhookManagerNotInitialized
)

// ErrorKind is the class of an error returned by the services. Outer layers
// map kinds to their own status codes.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindValidation
	KindState
	KindDenied
	KindProvider
	KindNotFound
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "Validation"
	case KindState:
		return "State"
	case KindDenied:
		return "Denied"
	case KindProvider:
		return "Provider"
	case KindNotFound:
		return "NotFound"
	default:
		return "Internal"
	}
}

var (
	validationErrors = []error{
		domain.ErrAccountInvalidAddress,
		domain.ErrAccountInvalidBalance,
		domain.ErrSessionKeyInvalidPermissions,
		domain.ErrSessionKeyInvalidExpiry,
		domain.ErrSessionKeyInvalidPublicKey,
		domain.ErrRecoveryMissingRequiredFields,
		domain.ErrRecoveryInvalidGuardian,
		domain.ErrRecoveryInvalidThreshold,
		domain.ErrOperationInvalidTarget,
		domain.ErrOperationInvalidValue,
		domain.ErrOperationInvalidData,
		domain.ErrOperationFunctionMismatch,
		domain.ErrProviderInvalidKind,
		domain.ErrProviderChainNotSupported,
		domain.ErrProviderNoGasEstimation,
		pubsub.ErrInvalidEvent,
	}
	stateErrors = []error{
		domain.ErrRecoveryAlreadyApproved,
		domain.ErrRecoveryInvalidState,
		domain.ErrRecoveryTooEarly,
		domain.ErrOperationNotFailed,
		domain.ErrOperationAlreadyRetried,
		domain.ErrOperationInvalidStatus,
		domain.ErrAccountAlreadyExists,
		domain.ErrSessionKeyAlreadyExists,
		domain.ErrRecoveryAlreadyExists,
		domain.ErrOperationAlreadyExists,
	}
	deniedErrors = []error{
		domain.ErrSessionKeyDenied,
		domain.ErrRecoveryNotAGuardian,
	}
	providerErrors = []error{
		ports.ErrProviderUnavailable,
		ports.ErrProviderRejected,
		context.DeadlineExceeded,
	}
	notFoundErrors = []error{
		domain.ErrAccountNotFound,
		domain.ErrSessionKeyNotFound,
		domain.ErrRecoveryNotFound,
		domain.ErrOperationNotFound,
		domain.ErrProviderNotFound,
	}
)

// KindOf classifies err. Denials win over provider failures, so a
// TransactionFailedError caused by a session key is KindDenied.
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindInternal
	}
	if isAny(err, deniedErrors) {
		return KindDenied
	}
	if isAny(err, notFoundErrors) {
		return KindNotFound
	}
	if isAny(err, validationErrors) {
		return KindValidation
	}
	if isAny(err, stateErrors) {
		return KindState
	}

	var txErr *TransactionFailedError
	if errors.As(err, &txErr) || isAny(err, providerErrors) {
		return KindProvider
	}
	return KindInternal
}

func isAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
