package keeper_test

import (
	"context"

	"github.com/provlabs/vault-standard/keeper"
	"github.com/provlabs/vault-standard/runner"
	"github.com/provlabs/vault-standard/simulator"
	"github.com/provlabs/vault-standard/types"
	"github.com/provlabs/vault-standard/utils"
	"github.com/provlabs/vault-standard/utils/mocks"

	sdkmath "cosmossdk.io/math"

	sdk "github.com/cosmos/cosmos-sdk/types"
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"
)

func (s *TestSuite) TestCreateVault() {
	cfg := s.vault.Config
	s.Assert().Equal(s.adminAddr, cfg.Admin, "admin defaults to the instantiator")
	s.Assert().Equal(mocks.BaseToken, cfg.BaseToken)
	s.Assert().Equal("factory/"+s.vault.Address+"/"+types.VaultTokenSubdenom, cfg.VaultToken)

	info, err := s.k.VaultStandardInfo.Get(s.ctx)
	s.Require().NoError(err, "standard info should be stored")
	s.Assert().Equal(types.VaultStandardVersion, info.Version)
	s.Assert().Equal([]string{types.ExtensionKeeper, types.ExtensionForceUnlock}, info.Extensions)

	s.assertTotalAssets(0)
	keepers, err := s.k.GetKeepers(s.ctx)
	s.Require().NoError(err)
	s.Assert().Equal([]string{s.keeperAddr}, keepers)

	has, err := s.k.LockupDuration.Has(s.ctx)
	s.Require().NoError(err)
	s.Assert().False(has, "lockup duration is only stored when lockup is enabled")

	fee := mocks.CreationFee()[0]
	s.assertBalance(s.adminAddr, fee.Denom, mocks.InitialBalance.AmountOf(fee.Denom).Sub(fee.Amount))
}

func (s *TestSuite) TestCreateVault_Failures() {
	tests := []struct {
		name  string
		msg   types.InstantiateMsg
		funds sdk.Coins
		err   error
	}{
		{
			name:  "invalid base token",
			msg:   types.InstantiateMsg{BaseToken: "1"},
			funds: mocks.CreationFee(),
			err:   types.ErrInvalidRequest,
		},
		{
			name: "keeper of another chain",
			msg: types.InstantiateMsg{BaseToken: mocks.BaseToken, Extensions: &types.InstantiateExtensions{
				Keeper: &types.KeeperConfig{Keepers: []string{utils.TestAddress().Bech32}},
			}},
			funds: mocks.CreationFee(),
			err:   types.ErrInvalidRequest,
		},
		{
			name: "zero lockup duration",
			msg: types.InstantiateMsg{BaseToken: mocks.BaseToken, Extensions: &types.InstantiateExtensions{
				Lockup: &types.LockupConfig{},
			}},
			funds: mocks.CreationFee(),
			err:   types.ErrInvalidRequest,
		},
		{
			name: "creation fee not attached",
			msg:  types.InstantiateMsg{BaseToken: mocks.BaseToken},
			err:  sdkerrors.ErrInsufficientFunds,
		},
	}

	for _, tc := range tests {
		s.Run(tc.name, func() {
			app, err := simulator.New(simulator.DefaultConfig(), nil)
			s.Require().NoError(err)
			signer, err := app.InitAccount(mocks.InitialBalance)
			s.Require().NoError(err)
			codeID, err := app.StoreCode(context.Background(), runner.InProcess(keeper.Contract{}), signer)
			s.Require().NoError(err)

			_, err = app.Instantiate(context.Background(), codeID, tc.msg, signer.Address, types.ContractLabel, tc.funds, signer)
			s.Assert().ErrorIs(err, tc.err)
		})
	}
}

func (s *TestSuite) TestDeposit() {
	depositor := s.CreateAndFundAccount(s.baseCoin(10_000))
	recipient := s.CreateAndFundAccount()

	tests := []msgServerTestCase{
		{
			name:   "first deposit mints at the share scalar",
			sender: depositor,
			funds:  baseCoins(1_000),
			msg:    types.NewDepositMsg(sdkmath.NewInt(1_000), ""),
			expectedEvents: sdk.Events{
				types.NewEventDeposit(depositor, depositor, s.baseCoin(1_000), s.shareCoin(1_000_000_000)),
			},
			postCheck: func() {
				s.assertTotalAssets(1_000)
				s.assertBalance(depositor, s.vault.Config.VaultToken, sdkmath.NewInt(1_000_000_000))
				s.assertBalance(depositor, mocks.BaseToken, sdkmath.NewInt(9_000))
			},
		},
		{
			name: "later deposit uses the virtual offsets",
			setup: func() {
				s.deposit(s.adminAddr, 1_000)
			},
			sender: depositor,
			funds:  baseCoins(500),
			msg:    types.NewDepositMsg(sdkmath.NewInt(500), recipient),
			expectedEvents: sdk.Events{
				types.NewEventDeposit(depositor, recipient, s.baseCoin(500), s.shareCoin(500_000_000)),
			},
			postCheck: func() {
				s.assertTotalAssets(1_500)
				s.assertBalance(recipient, s.vault.Config.VaultToken, sdkmath.NewInt(500_000_000))
				s.assertBalance(depositor, s.vault.Config.VaultToken, sdkmath.ZeroInt())
			},
		},
		{
			name: "deposit of transferred assets",
			setup: func() {
				s.Require().NoError(s.vault.App.Bank.SendCoins(s.ctx, depositor, s.vault.Address, baseCoins(300)))
			},
			sender: depositor,
			msg:    types.NewDepositMsg(sdkmath.NewInt(300), ""),
			postCheck: func() {
				s.assertTotalAssets(300)
				s.assertBalance(depositor, s.vault.Config.VaultToken, sdkmath.NewInt(300_000_000))
			},
		},
	}
	for _, tc := range tests {
		s.Run(tc.name, func() { s.runMsgServerTestCase(tc) })
	}
}

func (s *TestSuite) TestDeposit_Failures() {
	depositor := s.CreateAndFundAccount(s.baseCoin(10_000), sdk.NewInt64Coin("uother", 10_000))

	tests := []msgServerTestCase{
		{
			name:        "zero amount",
			funds:       baseCoins(1),
			msg:         types.NewDepositMsg(sdkmath.ZeroInt(), ""),
			expectedErr: types.ErrInvalidRequest,
		},
		{
			name:        "wrong denom",
			funds:       sdk.NewCoins(sdk.NewInt64Coin("uother", 100)),
			msg:         types.NewDepositMsg(sdkmath.NewInt(100), ""),
			expectedErr: types.ErrInvalidFunds,
		},
		{
			name:        "extra denom",
			funds:       sdk.NewCoins(sdk.NewInt64Coin("uother", 1), s.baseCoin(100)),
			msg:         types.NewDepositMsg(sdkmath.NewInt(100), ""),
			expectedErr: types.ErrInvalidFunds,
		},
		{
			name:        "more than the amount",
			funds:       baseCoins(101),
			msg:         types.NewDepositMsg(sdkmath.NewInt(100), ""),
			expectedErr: types.ErrInvalidFunds,
		},
		{
			name:        "less than the amount",
			funds:       baseCoins(99),
			msg:         types.NewDepositMsg(sdkmath.NewInt(100), ""),
			expectedErr: types.ErrInsufficientFunds,
		},
		{
			name:        "no funds and nothing transferred",
			msg:         types.NewDepositMsg(sdkmath.NewInt(100), ""),
			expectedErr: types.ErrInsufficientFunds,
		},
		{
			name:        "recipient of another chain",
			funds:       baseCoins(100),
			msg:         types.NewDepositMsg(sdkmath.NewInt(100), utils.TestAddress().Bech32),
			expectedErr: types.ErrInvalidRequest,
		},
		{
			name: "too small to mint a vault token",
			setup: func() {
				s.deposit(depositor, 1)
				s.Require().NoError(s.vault.App.Bank.SendCoins(s.ctx, s.adminAddr, s.vault.Address, baseCoins(10_000_000)))
				s.requireExecute(s.keeperAddr, nil, compoundMsg())
			},
			funds:       baseCoins(1),
			msg:         types.NewDepositMsg(sdkmath.NewInt(1), ""),
			expectedErr: types.ErrInvalidRequest,
		},
	}
	for _, tc := range tests {
		s.Run(tc.name, func() {
			tc.sender = depositor
			s.runMsgServerTestCase(tc)
		})
	}
}

func (s *TestSuite) TestRedeem() {
	holder := s.CreateAndFundAccount(s.baseCoin(10_000))
	recipient := s.CreateAndFundAccount()

	tests := []msgServerTestCase{
		{
			name: "partial redeem rounds down",
			setup: func() {
				s.deposit(s.adminAddr, 1_000)
				s.deposit(holder, 500)
			},
			sender: holder,
			funds:  s.shareCoins(500_000_000),
			msg:    types.NewRedeemMsg(sdkmath.NewInt(500_000_000), recipient),
			expectedEvents: sdk.Events{
				types.NewEventRedeem(types.EventTypeRedeem, holder, recipient, s.shareCoin(500_000_000), s.baseCoin(500)),
			},
			postCheck: func() {
				s.assertTotalAssets(1_000)
				s.assertBalance(recipient, mocks.BaseToken, sdkmath.NewInt(500))
				s.assertBalance(holder, s.vault.Config.VaultToken, sdkmath.ZeroInt())
			},
		},
		{
			name: "last redeemer takes all assets",
			setup: func() {
				s.deposit(holder, 1_000)
				s.Require().NoError(s.vault.App.Bank.SendCoins(s.ctx, s.adminAddr, s.vault.Address, baseCoins(1_000)))
				s.requireExecute(s.keeperAddr, nil, compoundMsg())
			},
			sender: holder,
			funds:  s.shareCoins(1_000_000_000),
			msg:    types.NewRedeemMsg(sdkmath.NewInt(1_000_000_000), ""),
			postCheck: func() {
				s.assertTotalAssets(0)
				s.assertBalance(holder, mocks.BaseToken, sdkmath.NewInt(11_000))
				s.assertBalance(s.vault.Address, mocks.BaseToken, sdkmath.ZeroInt())
				supply, err := s.vault.App.Bank.GetSupply(s.ctx, s.vault.Config.VaultToken)
				s.Require().NoError(err)
				s.Assert().True(supply.IsZero(), "vault token supply should be zero")
			},
		},
	}
	for _, tc := range tests {
		s.Run(tc.name, func() { s.runMsgServerTestCase(tc) })
	}
}

func (s *TestSuite) TestRedeem_Failures() {
	// The holder keeps 100 base tokens after depositing to attach them as the wrong denom.
	holder := s.CreateAndFundAccount(s.baseCoin(1_100))
	setup := func() { s.deposit(holder, 1_000) }

	tests := []msgServerTestCase{
		{
			name:        "no funds",
			msg:         types.NewRedeemMsg(sdkmath.NewInt(100), ""),
			expectedErr: types.ErrInvalidFunds,
		},
		{
			name:        "fewer vault tokens than the amount",
			funds:       s.shareCoins(99),
			msg:         types.NewRedeemMsg(sdkmath.NewInt(100), ""),
			expectedErr: types.ErrInsufficientShares,
		},
		{
			name:        "more vault tokens than the amount",
			funds:       s.shareCoins(101),
			msg:         types.NewRedeemMsg(sdkmath.NewInt(100), ""),
			expectedErr: types.ErrInvalidFunds,
		},
		{
			name:        "base tokens instead of vault tokens",
			funds:       baseCoins(100),
			msg:         types.NewRedeemMsg(sdkmath.NewInt(100), ""),
			expectedErr: types.ErrInvalidFunds,
		},
		{
			name:        "worth zero assets",
			funds:       s.shareCoins(100),
			msg:         types.NewRedeemMsg(sdkmath.NewInt(100), ""),
			expectedErr: types.ErrInvalidRequest,
		},
		{
			name:        "more vault tokens than held",
			funds:       s.shareCoins(2_000_000_000),
			msg:         types.NewRedeemMsg(sdkmath.NewInt(2_000_000_000), ""),
			expectedErr: sdkerrors.ErrInsufficientFunds,
		},
	}
	for _, tc := range tests {
		s.Run(tc.name, func() {
			tc.setup = setup
			tc.sender = holder
			s.runMsgServerTestCase(tc)
		})
	}
}
