package domain

import (
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/google/uuid"
)

// OperationStatus is the status of a relayed operation.
type OperationStatus string

const (
	OperationStatusPending OperationStatus = "pending"
	OperationStatusSuccess OperationStatus = "success"
	OperationStatusFailed  OperationStatus = "failed"
)

// Operation is the record of a user operation relayed through a bundler. It
// is written once, after submission, and then only updated by status polling.
type Operation struct {
	ID             string
	AccountAddress string
	To             string
	Value          string
	Data           string
	Function       string
	SessionID      string
	BundlerID      string
	PaymasterID    string
	ChainID        int64
	Nonce          uint64
	Hash           string
	UserOpHash     string
	RetryOf        string
	Status         OperationStatus
	GasUsed        uint64
	FailureReason  string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Call is the validated intent of an operation before it gets relayed.
type Call struct {
	AccountAddress string
	To             string
	Value          string
	Data           string
}

// NewCall validates and normalizes the target, the value and the calldata.
func NewCall(accountAddress, to, value, data string) (*Call, error) {
	account, err := NormalizeAddress(accountAddress)
	if err != nil {
		return nil, err
	}
	target, err := NormalizeAddress(to)
	if err != nil {
		return nil, ErrOperationInvalidTarget
	}
	amount, err := ParseAmount(value)
	if err != nil {
		return nil, ErrOperationInvalidValue
	}
	if data == "" {
		data = "0x"
	}
	if _, err := hexutil.Decode(data); err != nil {
		return nil, ErrOperationInvalidData
	}

	return &Call{
		AccountAddress: account,
		To:             target,
		Value:          amount.ToBig().String(),
		Data:           data,
	}, nil
}

// ValueBig returns the value as a big integer.
func (c Call) ValueBig() *big.Int {
	v, _ := new(big.Int).SetString(c.Value, 10)
	if v == nil {
		return big.NewInt(0)
	}
	return v
}

// Selector returns the 0x-prefixed 4-byte function selector of the calldata,
// or an empty string for plain transfers.
func (c Call) Selector() string {
	data, err := hexutil.Decode(c.Data)
	if err != nil || len(data) < 4 {
		return ""
	}
	return hexutil.Encode(data[:4])
}

// CheckFunction returns an error unless the label describes the calldata,
// either as its selector or as a signature hashing to it. An empty label is
// always accepted. Plain names cannot be checked and are rejected.
func (c Call) CheckFunction(label string) error {
	label = strings.TrimSpace(label)
	if label == "" {
		return nil
	}
	selector := c.Selector()
	if selector == "" {
		return fmt.Errorf(
			"%w: %s given for a call without calldata",
			ErrOperationFunctionMismatch, label,
		)
	}

	got := strings.ToLower(label)
	if isSignature(label) {
		got = FunctionSelector(label)
	}
	if got != selector {
		return fmt.Errorf(
			"%w: %s is not selector %s", ErrOperationFunctionMismatch, label, selector,
		)
	}
	return nil
}

// NewOperation returns an operation for a call accepted by a bundler.
func NewOperation(
	call Call, chainID int64, nonce uint64, bundlerID, paymasterID string,
	hash, userOpHash string, status OperationStatus, now time.Time,
) *Operation {
	return &Operation{
		ID:             uuid.New().String(),
		AccountAddress: call.AccountAddress,
		To:             call.To,
		Value:          call.Value,
		Data:           call.Data,
		BundlerID:      bundlerID,
		PaymasterID:    paymasterID,
		ChainID:        chainID,
		Nonce:          nonce,
		Hash:           hash,
		UserOpHash:     userOpHash,
		Status:         status,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// Call returns the intent the operation was created for.
func (o *Operation) Call() Call {
	return Call{
		AccountAddress: o.AccountAddress,
		To:             o.To,
		Value:          o.Value,
		Data:           o.Data,
	}
}

// IsFinal ...
func (o *Operation) IsFinal() bool {
	return o.Status != OperationStatusPending
}

// Confirm moves a pending operation to success.
func (o *Operation) Confirm(gasUsed uint64, now time.Time) error {
	if o.IsFinal() {
		return ErrOperationInvalidStatus
	}
	o.Status = OperationStatusSuccess
	o.GasUsed = gasUsed
	o.UpdatedAt = now
	return nil
}

// Fail moves a pending operation to failed.
func (o *Operation) Fail(reason string, gasUsed uint64, now time.Time) error {
	if o.IsFinal() {
		return ErrOperationInvalidStatus
	}
	o.Status = OperationStatusFailed
	o.FailureReason = reason
	o.GasUsed = gasUsed
	o.UpdatedAt = now
	return nil
}
