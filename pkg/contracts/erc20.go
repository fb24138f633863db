package contracts

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// ERC20ABI contains the ABI for the ERC20 token functions used by the harness
const ERC20ABI = `[
	{
		"constant": true,
		"inputs": [
			{
				"name": "_owner",
				"type": "address"
			},
			{
				"name": "_spender",
				"type": "address"
			}
		],
		"name": "allowance",
		"outputs": [
			{
				"name": "",
				"type": "uint256"
			}
		],
		"payable": false,
		"stateMutability": "view",
		"type": "function"
	},
	{
		"constant": false,
		"inputs": [
			{
				"name": "_spender",
				"type": "address"
			},
			{
				"name": "_value",
				"type": "uint256"
			}
		],
		"name": "approve",
		"outputs": [
			{
				"name": "",
				"type": "bool"
			}
		],
		"payable": false,
		"stateMutability": "nonpayable",
		"type": "function"
	},
	{
		"constant": true,
		"inputs": [
			{
				"name": "_owner",
				"type": "address"
			}
		],
		"name": "balanceOf",
		"outputs": [
			{
				"name": "",
				"type": "uint256"
			}
		],
		"payable": false,
		"stateMutability": "view",
		"type": "function"
	},
	{
		"constant": true,
		"inputs": [],
		"name": "decimals",
		"outputs": [
			{
				"name": "",
				"type": "uint8"
			}
		],
		"payable": false,
		"stateMutability": "view",
		"type": "function"
	}
]`

// ERC20 is a Go binding around the subset of the ERC20 standard used here.
type ERC20 struct {
	contract *bind.BoundContract
	address  common.Address
}

// NewERC20 creates a new instance of ERC20, bound to a specific deployed token.
func NewERC20(address common.Address, backend bind.ContractBackend) (*ERC20, error) {
	parsed, err := abi.JSON(strings.NewReader(ERC20ABI))
	if err != nil {
		return nil, err
	}
	contract := bind.NewBoundContract(address, parsed, backend, backend, backend)
	return &ERC20{contract: contract, address: address}, nil
}

// Address returns the token contract address.
func (e *ERC20) Address() common.Address {
	return e.address
}

// Allowance is a free data retrieval call binding the contract method.
//
// Solidity: function allowance(address _owner, address _spender) view returns(uint256)
func (e *ERC20) Allowance(opts *bind.CallOpts, owner common.Address, spender common.Address) (*big.Int, error) {
	var out []interface{}
	err := e.contract.Call(opts, &out, "allowance", owner, spender)
	if err != nil {
		return nil, err
	}

	out0 := *abi.ConvertType(out[0], new(*big.Int)).(**big.Int)
	return out0, nil
}

// BalanceOf is a free data retrieval call binding the contract method.
//
// Solidity: function balanceOf(address _owner) view returns(uint256)
func (e *ERC20) BalanceOf(opts *bind.CallOpts, owner common.Address) (*big.Int, error) {
	var out []interface{}
	err := e.contract.Call(opts, &out, "balanceOf", owner)
	if err != nil {
		return nil, err
	}

	out0 := *abi.ConvertType(out[0], new(*big.Int)).(**big.Int)
	return out0, nil
}

// Decimals is a free data retrieval call binding the contract method.
//
// Solidity: function decimals() view returns(uint8)
func (e *ERC20) Decimals(opts *bind.CallOpts) (uint8, error) {
	var out []interface{}
	err := e.contract.Call(opts, &out, "decimals")
	if err != nil {
		return 0, err
	}

	out0 := *abi.ConvertType(out[0], new(uint8)).(*uint8)
	return out0, nil
}

// Approve is a paid mutator transaction binding the contract method.
//
// Solidity: function approve(address _spender, uint256 _value) returns(bool)
func (e *ERC20) Approve(opts *bind.TransactOpts, spender common.Address, value *big.Int) (*types.Transaction, error) {
	return e.contract.Transact(opts, "approve", spender, value)
}
