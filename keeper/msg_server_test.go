package keeper_test

import (
	"github.com/provlabs/vault-standard/types"
	"github.com/provlabs/vault-standard/utils"

	sdkmath "cosmossdk.io/math"

	sdk "github.com/cosmos/cosmos-sdk/types"
)

// msgServerTestCase defines a single execute message test.
type msgServerTestCase struct {
	name           string
	setup          func()
	sender         string
	funds          sdk.Coins
	msg            types.ExecuteMsg
	expectedErr    error
	expectedEvents sdk.Events
	postCheck      func()
}

// runMsgServerTestCase executes tc against a cached context so cases do not
// affect each other.
func (s *vaultSuite) runMsgServerTestCase(tc msgServerTestCase) {
	s.T().Helper()

	origCtx := s.ctx
	defer func() { s.ctx = origCtx }()
	s.ctx, _ = s.ctx.CacheContext()

	if tc.setup != nil {
		tc.setup()
	}

	var events sdk.Events
	var err error
	s.Require().NotPanicsf(func() {
		_, events, err = s.execute(tc.sender, tc.funds, tc.msg)
	}, "%s panic", tc.msg.Variant())

	if tc.expectedErr != nil {
		s.Assert().ErrorIsf(err, tc.expectedErr, "%s error", tc.msg.Variant())
		return
	}
	s.Require().NoErrorf(err, "%s error", tc.msg.Variant())
	if tc.expectedEvents != nil {
		s.Assert().Equalf(normalizeEvents(tc.expectedEvents), normalizeEvents(events), "%s events", tc.msg.Variant())
	}
	if tc.postCheck != nil {
		tc.postCheck()
	}
}

func compoundMsg() types.ExecuteMsg {
	return types.ExecuteMsg{VaultExtension: &types.ExtensionExecuteMsg{
		Keeper: &types.KeeperExecuteMsg{Compound: &types.CompoundMsg{}},
	}}
}

func updateKeepersMsg(add, remove []string) types.ExecuteMsg {
	return types.ExecuteMsg{VaultExtension: &types.ExtensionExecuteMsg{
		Keeper: &types.KeeperExecuteMsg{UpdateKeepers: &types.UpdateKeepersMsg{Add: add, Remove: remove}},
	}}
}

func forceRedeemMsg(amount int64) types.ExecuteMsg {
	return types.ExecuteMsg{VaultExtension: &types.ExtensionExecuteMsg{
		ForceUnlock: &types.ForceUnlockExecuteMsg{ForceRedeem: &types.ForceRedeemMsg{Amount: sdkmath.NewInt(amount)}},
	}}
}

func updateWhitelistMsg(add, remove []string) types.ExecuteMsg {
	return types.ExecuteMsg{VaultExtension: &types.ExtensionExecuteMsg{
		ForceUnlock: &types.ForceUnlockExecuteMsg{UpdateForceWithdrawWhitelist: &types.UpdateForceWithdrawWhitelistMsg{
			AddAddresses: add, RemoveAddresses: remove,
		}},
	}}
}

func unlockMsg(amount int64) types.ExecuteMsg {
	return types.ExecuteMsg{VaultExtension: &types.ExtensionExecuteMsg{
		Lockup: &types.LockupExecuteMsg{Unlock: &types.UnlockMsg{Amount: sdkmath.NewInt(amount)}},
	}}
}

func withdrawUnlockedMsg(id uint64) types.ExecuteMsg {
	return types.ExecuteMsg{VaultExtension: &types.ExtensionExecuteMsg{
		Lockup: &types.LockupExecuteMsg{WithdrawUnlocked: &types.WithdrawUnlockedMsg{LockupID: id}},
	}}
}

func forceWithdrawUnlockingMsg(id uint64, amount *sdkmath.Int) types.ExecuteMsg {
	return types.ExecuteMsg{VaultExtension: &types.ExtensionExecuteMsg{
		ForceUnlock: &types.ForceUnlockExecuteMsg{ForceWithdrawUnlocking: &types.ForceWithdrawUnlockingMsg{LockupID: id, Amount: amount}},
	}}
}

func (s *TestSuite) TestMsgServer_Compound() {
	var depositor string
	tests := []msgServerTestCase{
		{
			name: "keeper compounds donated assets",
			setup: func() {
				depositor = s.CreateAndFundAccount(s.baseCoin(1_000))
				s.deposit(depositor, 1_000)
				s.Require().NoError(s.vault.App.Bank.SendCoins(s.ctx, s.adminAddr, s.vault.Address, baseCoins(1_000)))
			},
			sender: s.keeperAddr,
			msg:    compoundMsg(),
			expectedEvents: sdk.Events{
				types.NewEventCompound(s.keeperAddr, s.baseCoin(1_000)),
			},
			postCheck: func() {
				s.assertTotalAssets(2_000)
				assets, err := s.k.ConvertToAssets(s.ctx, s.vault.Config, sdkmath.NewInt(1_000_000_000))
				s.Require().NoError(err)
				s.Assert().Equal("2000", assets.Amount.String(), "the whole supply redeems all total assets")
				assets, err = s.k.ConvertToAssets(s.ctx, s.vault.Config, sdkmath.NewInt(500_000_000))
				s.Require().NoError(err)
				s.Assert().Equal("999", assets.Amount.String(), "half the supply gains half the donation, floored")
			},
		},
		{
			name: "nothing to compound is a no-op",
			setup: func() {
				depositor = s.CreateAndFundAccount(s.baseCoin(1_000))
				s.deposit(depositor, 1_000)
			},
			sender:         s.keeperAddr,
			msg:            compoundMsg(),
			expectedEvents: sdk.Events{},
			postCheck:      func() { s.assertTotalAssets(1_000) },
		},
		{
			name: "compound without vault tokens",
			setup: func() {
				s.Require().NoError(s.vault.App.Bank.SendCoins(s.ctx, s.adminAddr, s.vault.Address, baseCoins(10)))
			},
			sender:      s.keeperAddr,
			msg:         compoundMsg(),
			expectedErr: types.ErrInvalidRequest,
		},
	}

	for _, tc := range tests {
		s.Run(tc.name, func() { s.runMsgServerTestCase(tc) })
	}
}

func (s *TestSuite) TestMsgServer_Compound_Unauthorized() {
	s.runMsgServerTestCase(msgServerTestCase{
		name:        "admin is not a keeper",
		sender:      s.adminAddr,
		msg:         compoundMsg(),
		expectedErr: types.ErrUnauthorized,
	})
}

func (s *TestSuite) TestMsgServer_UpdateKeepers() {
	newKeeper := s.CreateAndFundAccount()
	tests := []msgServerTestCase{
		{
			name:   "admin rotates keepers",
			sender: s.adminAddr,
			msg:    updateKeepersMsg([]string{newKeeper}, []string{s.keeperAddr}),
			postCheck: func() {
				keepers, err := s.k.GetKeepers(s.ctx)
				s.Require().NoError(err)
				s.Assert().Equal([]string{newKeeper}, keepers)
			},
		},
		{
			name:        "non-admin",
			sender:      s.keeperAddr,
			msg:         updateKeepersMsg([]string{newKeeper}, nil),
			expectedErr: types.ErrUnauthorized,
		},
		{
			name:        "address of another chain",
			sender:      s.adminAddr,
			msg:         updateKeepersMsg([]string{utils.TestAddress().Bech32}, nil),
			expectedErr: types.ErrInvalidRequest,
		},
	}
	for _, tc := range tests {
		s.Run(tc.name, func() { s.runMsgServerTestCase(tc) })
	}
}

func (s *TestSuite) TestMsgServer_ForceRedeem() {
	var holder string
	setup := func() {
		holder = s.CreateAndFundAccount(s.baseCoin(1_000))
		s.deposit(s.whitelisted, 1_000)
		s.deposit(holder, 1_000)
	}
	tests := []msgServerTestCase{
		{
			name:   "whitelisted address redeems",
			setup:  setup,
			sender: s.whitelisted,
			funds:  s.shareCoins(500_000_000),
			msg:    forceRedeemMsg(500_000_000),
			expectedEvents: sdk.Events{
				types.NewEventRedeem(types.EventTypeForceRedeem, s.whitelisted, s.whitelisted, s.shareCoin(500_000_000), s.baseCoin(500)),
			},
			postCheck: func() { s.assertTotalAssets(1_500) },
		},
		{
			name:        "not whitelisted",
			setup:       setup,
			sender:      s.adminAddr,
			msg:         forceRedeemMsg(1),
			expectedErr: types.ErrUnauthorized,
		},
	}
	for _, tc := range tests {
		s.Run(tc.name, func() { s.runMsgServerTestCase(tc) })
	}
}

func (s *TestSuite) TestMsgServer_UpdateForceWithdrawWhitelist() {
	added := s.CreateAndFundAccount()
	tests := []msgServerTestCase{
		{
			name:   "admin updates whitelist",
			sender: s.adminAddr,
			msg:    updateWhitelistMsg([]string{added}, []string{s.whitelisted}),
			postCheck: func() {
				ok, err := s.k.ForceWithdrawWhitelist.Has(s.ctx, added)
				s.Require().NoError(err)
				s.Assert().True(ok, "added address should be whitelisted")
				ok, err = s.k.ForceWithdrawWhitelist.Has(s.ctx, s.whitelisted)
				s.Require().NoError(err)
				s.Assert().False(ok, "removed address should not be whitelisted")
			},
		},
		{
			name:        "non-admin",
			sender:      s.whitelisted,
			msg:         updateWhitelistMsg([]string{added}, nil),
			expectedErr: types.ErrUnauthorized,
		},
	}
	for _, tc := range tests {
		s.Run(tc.name, func() { s.runMsgServerTestCase(tc) })
	}
}

func (s *TestSuite) TestMsgServer_DisabledExtension() {
	s.runMsgServerTestCase(msgServerTestCase{
		name:        "lockup is not enabled",
		sender:      s.adminAddr,
		msg:         unlockMsg(1),
		expectedErr: types.ErrUnknownExtension,
	})
}
