package contracts

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// InitiatorABI is the ABI of the intent initiator contract
const InitiatorABI = `[
	{
		"inputs": [
			{
				"internalType": "uint256",
				"name": "salt",
				"type": "uint256"
			}
		],
		"name": "getNextIntentId",
		"outputs": [
			{
				"internalType": "bytes32",
				"name": "",
				"type": "bytes32"
			}
		],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [
			{
				"internalType": "address",
				"name": "asset",
				"type": "address"
			},
			{
				"internalType": "uint256",
				"name": "amount",
				"type": "uint256"
			},
			{
				"internalType": "uint256",
				"name": "targetChain",
				"type": "uint256"
			},
			{
				"internalType": "bytes",
				"name": "receiver",
				"type": "bytes"
			},
			{
				"internalType": "uint256",
				"name": "tip",
				"type": "uint256"
			},
			{
				"internalType": "uint256",
				"name": "salt",
				"type": "uint256"
			}
		],
		"name": "initiate",
		"outputs": [],
		"stateMutability": "nonpayable",
		"type": "function"
	},
	{
		"inputs": [
			{
				"internalType": "address",
				"name": "asset",
				"type": "address"
			},
			{
				"internalType": "uint256",
				"name": "amount",
				"type": "uint256"
			},
			{
				"internalType": "uint256",
				"name": "targetChain",
				"type": "uint256"
			},
			{
				"internalType": "bytes",
				"name": "receiver",
				"type": "bytes"
			},
			{
				"internalType": "uint256",
				"name": "tip",
				"type": "uint256"
			},
			{
				"internalType": "uint256",
				"name": "salt",
				"type": "uint256"
			},
			{
				"internalType": "uint256",
				"name": "gasLimit",
				"type": "uint256"
			},
			{
				"internalType": "bytes",
				"name": "data",
				"type": "bytes"
			}
		],
		"name": "initiateCall",
		"outputs": [],
		"stateMutability": "nonpayable",
		"type": "function"
	},
	{
		"anonymous": false,
		"inputs": [
			{
				"indexed": true,
				"internalType": "bytes32",
				"name": "intentId",
				"type": "bytes32"
			},
			{
				"indexed": true,
				"internalType": "address",
				"name": "asset",
				"type": "address"
			},
			{
				"indexed": false,
				"internalType": "uint256",
				"name": "amount",
				"type": "uint256"
			},
			{
				"indexed": false,
				"internalType": "uint256",
				"name": "targetChain",
				"type": "uint256"
			},
			{
				"indexed": false,
				"internalType": "bytes",
				"name": "receiver",
				"type": "bytes"
			},
			{
				"indexed": false,
				"internalType": "uint256",
				"name": "tip",
				"type": "uint256"
			},
			{
				"indexed": false,
				"internalType": "uint256",
				"name": "salt",
				"type": "uint256"
			}
		],
		"name": "IntentInitiated",
		"type": "event"
	}
]`

// Initiator is an auto generated Go binding around an Ethereum contract.
type Initiator struct {
	InitiatorCaller     // Read-only binding to the contract
	InitiatorTransactor // Write-only binding to the contract
	InitiatorFilterer   // Log filterer for contract events
}

// InitiatorCaller is an auto generated read-only Go binding around an Ethereum contract.
type InitiatorCaller struct {
	contract *bind.BoundContract // Generic contract wrapper for the low level calls
}

// InitiatorTransactor is an auto generated write-only Go binding around an Ethereum contract.
type InitiatorTransactor struct {
	contract *bind.BoundContract // Generic contract wrapper for the low level calls
}

// InitiatorFilterer is an auto generated log filtering Go binding around an Ethereum contract events.
type InitiatorFilterer struct {
	contract *bind.BoundContract // Generic contract wrapper for the low level calls
}

// InitiatorSession is an auto generated Go binding around an Ethereum contract,
// with pre-set call and transact options.
type InitiatorSession struct {
	Contract     *Initiator        // Generic contract binding to set the session for
	CallOpts     bind.CallOpts     // Call options to use throughout this session
	TransactOpts bind.TransactOpts // Transaction auth options to use throughout this session
}

// NewInitiator creates a new instance of Initiator, bound to a specific deployed contract.
func NewInitiator(address common.Address, backend bind.ContractBackend) (*Initiator, error) {
	contract, err := bindInitiator(address, backend, backend, backend)
	if err != nil {
		return nil, err
	}
	return &Initiator{
		InitiatorCaller:     InitiatorCaller{contract: contract},
		InitiatorTransactor: InitiatorTransactor{contract: contract},
		InitiatorFilterer:   InitiatorFilterer{contract: contract},
	}, nil
}

// bindInitiator binds a generic wrapper to an already deployed contract.
func bindInitiator(address common.Address, caller bind.ContractCaller, transactor bind.ContractTransactor, filterer bind.ContractFilterer) (*bind.BoundContract, error) {
	parsed, err := abi.JSON(strings.NewReader(InitiatorABI))
	if err != nil {
		return nil, err
	}
	return bind.NewBoundContract(address, parsed, caller, transactor, filterer), nil
}

// GetNextIntentId is a free data retrieval call binding the contract method.
//
// Solidity: function getNextIntentId(uint256 salt) view returns(bytes32)
func (_Initiator *InitiatorCaller) GetNextIntentId(opts *bind.CallOpts, salt *big.Int) ([32]byte, error) {
	var out []interface{}
	err := _Initiator.contract.Call(opts, &out, "getNextIntentId", salt)
	if err != nil {
		return [32]byte{}, err
	}

	out0 := *abi.ConvertType(out[0], new([32]byte)).(*[32]byte)
	return out0, nil
}

// Initiate is a paid mutator transaction binding the contract method.
//
// Solidity: function initiate(address asset, uint256 amount, uint256 targetChain, bytes receiver, uint256 tip, uint256 salt) returns()
func (_Initiator *InitiatorTransactor) Initiate(opts *bind.TransactOpts, asset common.Address, amount *big.Int, targetChain *big.Int, receiver []byte, tip *big.Int, salt *big.Int) (*types.Transaction, error) {
	return _Initiator.contract.Transact(opts, "initiate", asset, amount, targetChain, receiver, tip, salt)
}

// InitiateCall is a paid mutator transaction binding the contract method.
//
// Solidity: function initiateCall(address asset, uint256 amount, uint256 targetChain, bytes receiver, uint256 tip, uint256 salt, uint256 gasLimit, bytes data) returns()
func (_Initiator *InitiatorTransactor) InitiateCall(opts *bind.TransactOpts, asset common.Address, amount *big.Int, targetChain *big.Int, receiver []byte, tip *big.Int, salt *big.Int, gasLimit *big.Int, data []byte) (*types.Transaction, error) {
	return _Initiator.contract.Transact(opts, "initiateCall", asset, amount, targetChain, receiver, tip, salt, gasLimit, data)
}

// InitiatorIntentInitiated represents an IntentInitiated event raised by the Initiator contract.
type InitiatorIntentInitiated struct {
	IntentId    [32]byte
	Asset       common.Address
	Amount      *big.Int
	TargetChain *big.Int
	Receiver    []byte
	Tip         *big.Int
	Salt        *big.Int
	Raw         types.Log // Blockchain specific contextual infos
}

// ParseIntentInitiated is a log parse operation binding the contract event.
//
// Solidity: event IntentInitiated(bytes32 indexed intentId, address indexed asset, uint256 amount, uint256 targetChain, bytes receiver, uint256 tip, uint256 salt)
func (_Initiator *InitiatorFilterer) ParseIntentInitiated(log types.Log) (*InitiatorIntentInitiated, error) {
	event := new(InitiatorIntentInitiated)
	if err := _Initiator.contract.UnpackLog(event, "IntentInitiated", log); err != nil {
		return nil, err
	}
	event.Raw = log
	return event, nil
}
