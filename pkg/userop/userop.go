// Package userop implements the ERC-4337 (entry point v0.6) user operation
// encoding used to talk with bundlers and paymasters.
package userop

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// DefaultEntryPoint is the canonical v0.6 entry point contract.
const DefaultEntryPoint = "0x5FF137D4b0FDCD49DcA30c7CF57E578a026d2789"

var (
	addressType, _ = abi.NewType("address", "", nil)
	uint256Type, _ = abi.NewType("uint256", "", nil)
	bytes32Type, _ = abi.NewType("bytes32", "", nil)

	accountABI, _ = abi.JSON(strings.NewReader(`[{
		"type": "function",
		"name": "execute",
		"inputs": [
			{"name": "dest", "type": "address"},
			{"name": "value", "type": "uint256"},
			{"name": "func", "type": "bytes"}
		],
		"outputs": []
	}]`))
)

// UserOperation is the pseudo-transaction relayed to bundlers on behalf of a
// smart account.
type UserOperation struct {
	Sender               common.Address
	Nonce                *big.Int
	InitCode             []byte
	CallData             []byte
	CallGasLimit         *big.Int
	VerificationGasLimit *big.Int
	PreVerificationGas   *big.Int
	MaxFeePerGas         *big.Int
	MaxPriorityFeePerGas *big.Int
	PaymasterAndData     []byte
	Signature            []byte
}

// New returns a user operation executing the given call from sender. Gas
// fields are zeroed and must be filled after estimation.
func New(
	sender common.Address, nonce uint64, to common.Address, value *big.Int, data []byte,
) (*UserOperation, error) {
	callData, err := PackExecute(to, value, data)
	if err != nil {
		return nil, err
	}
	return &UserOperation{
		Sender:               sender,
		Nonce:                new(big.Int).SetUint64(nonce),
		InitCode:             []byte{},
		CallData:             callData,
		CallGasLimit:         big.NewInt(0),
		VerificationGasLimit: big.NewInt(0),
		PreVerificationGas:   big.NewInt(0),
		MaxFeePerGas:         big.NewInt(0),
		MaxPriorityFeePerGas: big.NewInt(0),
		PaymasterAndData:     []byte{},
		Signature:            []byte{},
	}, nil
}

// PackExecute encodes a call to the account execute(address,uint256,bytes)
// method.
func PackExecute(to common.Address, value *big.Int, data []byte) ([]byte, error) {
	if value == nil {
		value = big.NewInt(0)
	}
	if data == nil {
		data = []byte{}
	}
	return accountABI.Pack("execute", to, value, data)
}

// Pack returns the abi encoding of the operation without its signature.
func (op *UserOperation) Pack() []byte {
	args := abi.Arguments{
		{Name: "sender", Type: addressType},
		{Name: "nonce", Type: uint256Type},
		{Name: "initCode", Type: bytes32Type},
		{Name: "callData", Type: bytes32Type},
		{Name: "callGasLimit", Type: uint256Type},
		{Name: "verificationGasLimit", Type: uint256Type},
		{Name: "preVerificationGas", Type: uint256Type},
		{Name: "maxFeePerGas", Type: uint256Type},
		{Name: "maxPriorityFeePerGas", Type: uint256Type},
		{Name: "paymasterAndData", Type: bytes32Type},
	}
	packed, _ := args.Pack(
		op.Sender,
		bigOrZero(op.Nonce),
		crypto.Keccak256Hash(op.InitCode),
		crypto.Keccak256Hash(op.CallData),
		bigOrZero(op.CallGasLimit),
		bigOrZero(op.VerificationGasLimit),
		bigOrZero(op.PreVerificationGas),
		bigOrZero(op.MaxFeePerGas),
		bigOrZero(op.MaxPriorityFeePerGas),
		crypto.Keccak256Hash(op.PaymasterAndData),
	)
	return packed
}

// Hash returns the user operation hash as computed by the entry point.
func (op *UserOperation) Hash(entryPoint common.Address, chainID *big.Int) common.Hash {
	return crypto.Keccak256Hash(
		crypto.Keccak256(op.Pack()),
		common.LeftPadBytes(entryPoint.Bytes(), 32),
		common.LeftPadBytes(bigOrZero(chainID).Bytes(), 32),
	)
}

// Copy returns a deep copy of the operation.
func (op *UserOperation) Copy() *UserOperation {
	return &UserOperation{
		Sender:               op.Sender,
		Nonce:                copyBig(op.Nonce),
		InitCode:             common.CopyBytes(op.InitCode),
		CallData:             common.CopyBytes(op.CallData),
		CallGasLimit:         copyBig(op.CallGasLimit),
		VerificationGasLimit: copyBig(op.VerificationGasLimit),
		PreVerificationGas:   copyBig(op.PreVerificationGas),
		MaxFeePerGas:         copyBig(op.MaxFeePerGas),
		MaxPriorityFeePerGas: copyBig(op.MaxPriorityFeePerGas),
		PaymasterAndData:     common.CopyBytes(op.PaymasterAndData),
		Signature:            common.CopyBytes(op.Signature),
	}
}

// RPC is the JSON-RPC representation of a user operation.
type RPC struct {
	Sender               common.Address `json:"sender"`
	Nonce                *hexutil.Big   `json:"nonce"`
	InitCode             hexutil.Bytes  `json:"initCode"`
	CallData             hexutil.Bytes  `json:"callData"`
	CallGasLimit         *hexutil.Big   `json:"callGasLimit"`
	VerificationGasLimit *hexutil.Big   `json:"verificationGasLimit"`
	PreVerificationGas   *hexutil.Big   `json:"preVerificationGas"`
	MaxFeePerGas         *hexutil.Big   `json:"maxFeePerGas"`
	MaxPriorityFeePerGas *hexutil.Big   `json:"maxPriorityFeePerGas"`
	PaymasterAndData     hexutil.Bytes  `json:"paymasterAndData"`
	Signature            hexutil.Bytes  `json:"signature"`
}

// ToRPC ...
func (op *UserOperation) ToRPC() RPC {
	return RPC{
		Sender:               op.Sender,
		Nonce:                (*hexutil.Big)(bigOrZero(op.Nonce)),
		InitCode:             nonNil(op.InitCode),
		CallData:             nonNil(op.CallData),
		CallGasLimit:         (*hexutil.Big)(bigOrZero(op.CallGasLimit)),
		VerificationGasLimit: (*hexutil.Big)(bigOrZero(op.VerificationGasLimit)),
		PreVerificationGas:   (*hexutil.Big)(bigOrZero(op.PreVerificationGas)),
		MaxFeePerGas:         (*hexutil.Big)(bigOrZero(op.MaxFeePerGas)),
		MaxPriorityFeePerGas: (*hexutil.Big)(bigOrZero(op.MaxPriorityFeePerGas)),
		PaymasterAndData:     nonNil(op.PaymasterAndData),
		Signature:            nonNil(op.Signature),
	}
}

func bigOrZero(n *big.Int) *big.Int {
	if n == nil {
		return big.NewInt(0)
	}
	return n
}

func copyBig(n *big.Int) *big.Int {
	if n == nil {
		return nil
	}
	return new(big.Int).Set(n)
}

func nonNil(b []byte) []byte {
	if b == nil {
		return []byte{}
	}
	return b
}
