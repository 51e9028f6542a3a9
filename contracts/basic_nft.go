package contracts

import (
	"github.com/chaintest/harness/chain"
	"github.com/holiman/uint256"
)

// BasicNFT method names.
const (
	NFTMintTo       = "mintTo"
	NFTOwnerOf      = "ownerOf"
	NFTBalanceOf    = "balanceOf"
	NFTTransferFrom = "transferFrom"
)

// ownerSlot returns the storage slot key holding the owner of the given token id.
func ownerSlot(tokenID *uint256.Int) string {
	return "owner/" + tokenID.String()
}

// balanceSlot returns the storage slot key holding the token balance of the given address.
func balanceSlot(addr chain.Address) string {
	return "balance/" + addr.String()
}

// NewBasicNFT returns the contract model for a minimal NFT: sequential token ids minted via mintTo, with ownership
// and balance queries and owner-gated transfers. Revert reasons follow common ERC721 library conventions.
func NewBasicNFT() *chain.ContractModel {
	return &chain.ContractModel{
		Name: "BasicNFT",
		Constructor: func(env *chain.CallEnv) error {
			env.State.SetWord("tokenCounter", uint256.NewInt(0))
			return nil
		},
		Methods: map[string]chain.MethodHandler{
			NFTMintTo: func(env *chain.CallEnv) ([]any, error) {
				to, err := env.AddressArg(0)
				if err != nil {
					return nil, err
				}
				if to == chain.ZeroAddress {
					return nil, env.Revert("INVALID_RECIPIENT")
				}

				// Assign the next sequential token id to the recipient.
				tokenID := env.State.Word("tokenCounter")
				env.State.SetValue(ownerSlot(tokenID), to)
				env.State.SetWord(balanceSlot(to), new(uint256.Int).AddUint64(env.State.Word(balanceSlot(to)), 1))
				env.State.SetWord("tokenCounter", new(uint256.Int).AddUint64(tokenID, 1))
				env.Log("Transfer(%s, %s, %s)", chain.ZeroAddress, to, tokenID.String())
				return []any{tokenID}, nil
			},
			NFTOwnerOf: func(env *chain.CallEnv) ([]any, error) {
				tokenID, err := env.WordArg(0)
				if err != nil {
					return nil, err
				}
				owner, ok := env.State.Value(ownerSlot(tokenID))
				if !ok {
					return nil, env.Revert("NOT_MINTED")
				}
				return []any{owner}, nil
			},
			NFTBalanceOf: func(env *chain.CallEnv) ([]any, error) {
				addr, err := env.AddressArg(0)
				if err != nil {
					return nil, err
				}
				if addr == chain.ZeroAddress {
					return nil, env.Revert("ZERO_ADDRESS")
				}
				return []any{env.State.Word(balanceSlot(addr))}, nil
			},
			NFTTransferFrom: func(env *chain.CallEnv) ([]any, error) {
				from, err := env.AddressArg(0)
				if err != nil {
					return nil, err
				}
				to, err := env.AddressArg(1)
				if err != nil {
					return nil, err
				}
				tokenID, err := env.WordArg(2)
				if err != nil {
					return nil, err
				}

				owner, minted := env.State.Value(ownerSlot(tokenID))
				if !minted || owner != from {
					return nil, env.Revert("WRONG_FROM")
				}
				if to == chain.ZeroAddress {
					return nil, env.Revert("INVALID_RECIPIENT")
				}
				// Approvals are not modeled, so only the owner itself may move a token.
				if env.Sender != from {
					return nil, env.Revert("NOT_AUTHORIZED")
				}

				env.State.SetWord(balanceSlot(from), new(uint256.Int).SubUint64(env.State.Word(balanceSlot(from)), 1))
				env.State.SetWord(balanceSlot(to), new(uint256.Int).AddUint64(env.State.Word(balanceSlot(to)), 1))
				env.State.SetValue(ownerSlot(tokenID), to)
				env.Log("Transfer(%s, %s, %s)", from, to, tokenID.String())
				return nil, nil
			},
		},
		ViewMethods: map[string]struct{}{
			NFTOwnerOf:   {},
			NFTBalanceOf: {},
		},
	}
}
