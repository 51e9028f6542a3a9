package contracts

import (
	"github.com/chaintest/harness/harness"
)

// Fixture keys stored by the tutorial suite's setup routine.
const (
	GreeterFixture = "greeter"
	NFTFixture     = "nft"
)

// TutorialSuite returns the example suite shipped with the harness. It deploys the Greeter and BasicNFT models
// fresh before every case and covers direct scenarios, prank-gated access control, and a fuzzed case with a
// shrinkable parameter.
func TutorialSuite() *harness.Suite {
	return &harness.Suite{
		Name: "tutorial",
		SetUp: func(tc *harness.TestContext) error {
			tc.SetValue(GreeterFixture, tc.MustDeploy(NewGreeter()))
			tc.SetValue(NFTFixture, tc.MustDeploy(NewBasicNFT()))
			return nil
		},
		Cases: []harness.TestCase{
			{
				Name: "test_mint_assigns_ownership",
				Body: func(tc *harness.TestContext) {
					nft := tc.AddressValue(NFTFixture)
					recipient := tc.Senders[1]

					minted := tc.MustDispatch(harness.Call{Target: nft, Method: NFTMintTo, Args: []any{recipient}})
					tokenID := minted.ReturnData[0]

					owner := tc.MustDispatch(harness.Call{Target: nft, Method: NFTOwnerOf, Args: []any{tokenID}})
					tc.Asserter.AssertEqual(recipient, owner.ReturnData[0])
				},
			},
			{
				Name: "test_transfer_requires_prank",
				Body: func(tc *harness.TestContext) {
					nft := tc.AddressValue(NFTFixture)
					holder := tc.Senders[1]
					receiver := tc.Senders[2]

					minted := tc.MustDispatch(harness.Call{Target: nft, Method: NFTMintTo, Args: []any{holder}})
					tokenID := minted.ReturnData[0]

					// Without a prank the dispatch runs as the default identity, not the holder.
					transfer := harness.Call{Target: nft, Method: NFTTransferFrom, Args: []any{holder, receiver, tokenID}}
					_, err := tc.Execution.Dispatch(transfer)
					tc.Asserter.AssertTrue(err != nil)

					tc.PrankOnce(holder)
					tc.MustDispatch(transfer)

					owner := tc.MustDispatch(harness.Call{Target: nft, Method: NFTOwnerOf, Args: []any{tokenID}})
					tc.Asserter.AssertEqual(receiver, owner.ReturnData[0])
				},
			},
			{
				Name: "test_balance_accounting",
				Body: func(tc *harness.TestContext) {
					nft := tc.AddressValue(NFTFixture)
					collector := tc.Senders[0]

					for i := 0; i < 3; i++ {
						tc.MustDispatch(harness.Call{Target: nft, Method: NFTMintTo, Args: []any{collector}})
					}
					balance := tc.MustDispatch(harness.Call{Target: nft, Method: NFTBalanceOf, Args: []any{collector}})
					tc.Asserter.AssertEqual(3, balance.ReturnData[0])
				},
			},
			{
				Name: "test_owner_gated_reset",
				Body: func(tc *harness.TestContext) {
					greeter := tc.AddressValue(GreeterFixture)
					stranger := tc.Senders[2]

					tc.MustDispatch(harness.Call{Target: greeter, Method: GreeterUpdateGreeting, Args: []any{"hello"}})

					tc.PrankOnce(stranger)
					_, err := tc.Execution.Dispatch(harness.Call{Target: greeter, Method: GreeterReset})
					tc.Asserter.AssertTrue(err != nil)

					// The deployer owns the contract and may reset it.
					tc.MustDispatch(harness.Call{Target: greeter, Method: GreeterReset})
					greeting := tc.MustDispatch(harness.Call{Target: greeter, Method: GreeterGreet})
					tc.Asserter.AssertEqual(DefaultGreeting, greeting.ReturnData[0])
				},
			},
			{
				Name:   "fuzz_update_greeting_round_trips",
				Params: harness.ParamSchema{{Kind: harness.ParamString}},
				Body: func(tc *harness.TestContext) {
					greeter := tc.AddressValue(GreeterFixture)
					greeting := tc.Inputs[0].(string)

					tc.MustDispatch(harness.Call{Target: greeter, Method: GreeterUpdateGreeting, Args: []any{greeting}})

					version := tc.MustDispatch(harness.Call{Target: greeter, Method: GreeterVersion})
					tc.Asserter.AssertEqual(1, version.ReturnData[0])

					readBack := tc.MustDispatch(harness.Call{Target: greeter, Method: GreeterGreet})
					tc.Asserter.AssertEqual(greeting, readBack.ReturnData[0])
				},
			},
		},
	}
}
