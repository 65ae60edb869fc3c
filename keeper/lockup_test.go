package keeper_test

import (
	"encoding/json"
	"time"

	"github.com/provlabs/vault-standard/types"
	"github.com/provlabs/vault-standard/utils/mocks"

	sdkmath "cosmossdk.io/math"

	sdk "github.com/cosmos/cosmos-sdk/types"
)

// unlock escrows amount vault tokens of owner and returns the lockup id.
func (s *LockupTestSuite) unlock(owner string, amount int64) types.UnlockResponse {
	data := s.requireExecute(owner, s.shareCoins(amount), unlockMsg(amount))
	var resp types.UnlockResponse
	s.Require().NoError(json.Unmarshal(data, &resp), "unlock response")
	return resp
}

func (s *LockupTestSuite) TestCreateVault() {
	info, err := s.k.VaultStandardInfo.Get(s.ctx)
	s.Require().NoError(err)
	s.Assert().Equal([]string{types.ExtensionKeeper, types.ExtensionLockup, types.ExtensionForceUnlock}, info.Extensions)

	duration, err := s.k.LockupDuration.Get(s.ctx)
	s.Require().NoError(err)
	s.Assert().Equal(lockupDuration, duration)
}

func (s *LockupTestSuite) TestUnlock() {
	holder := s.CreateAndFundAccount(s.baseCoin(1_000))
	s.deposit(holder, 1_000)

	releaseAt := s.ctx.BlockTime().Add(time.Duration(lockupDuration) * time.Second)
	s.runMsgServerTestCase(msgServerTestCase{
		name:   "unlock escrows vault tokens",
		sender: holder,
		funds:  s.shareCoins(400_000_000),
		msg:    unlockMsg(400_000_000),
		expectedEvents: sdk.Events{
			types.NewEventUnlock(holder, 0, s.shareCoin(400_000_000), releaseAt),
		},
		postCheck: func() {
			pos, err := s.k.UnlockingQueue.Get(s.ctx, 0)
			s.Require().NoError(err, "position should exist")
			s.Assert().Equal(holder, pos.Owner)
			s.Assert().Equal("400000000", pos.VaultTokenAmount.String())
			s.Assert().True(releaseAt.Equal(pos.ReleaseAt), "release time")
			s.assertBalance(s.vault.Address, s.vault.Config.VaultToken, sdkmath.NewInt(400_000_000))
			s.assertTotalAssets(1_000)
		},
	})

	s.runMsgServerTestCase(msgServerTestCase{
		name:        "unlock without vault tokens",
		sender:      holder,
		msg:         unlockMsg(1),
		expectedErr: types.ErrInvalidFunds,
	})
}

func (s *LockupTestSuite) TestRedeem_RequiresUnlock() {
	holder := s.CreateAndFundAccount(s.baseCoin(1_000))
	s.deposit(holder, 1_000)

	s.runMsgServerTestCase(msgServerTestCase{
		name:        "vault tokens attached",
		sender:      holder,
		funds:       s.shareCoins(1_000),
		msg:         types.NewRedeemMsg(sdkmath.NewInt(1_000), ""),
		expectedErr: types.ErrInvalidFunds,
	})

	s.unlock(holder, 600_000_000)
	s.runMsgServerTestCase(msgServerTestCase{
		name:        "position not matured",
		sender:      holder,
		msg:         types.NewRedeemMsg(sdkmath.NewInt(600_000_000), ""),
		expectedErr: types.ErrInsufficientShares,
	})
}

func (s *LockupTestSuite) TestRedeem_ConsumesMaturedPositions() {
	holder := s.CreateAndFundAccount(s.baseCoin(1_000))
	s.deposit(holder, 1_000)

	first := s.unlock(holder, 300_000_000)
	second := s.unlock(holder, 300_000_000)
	s.advance(time.Duration(lockupDuration) * time.Second)
	third := s.unlock(holder, 100_000_000)

	s.runMsgServerTestCase(msgServerTestCase{
		name:        "only matured positions count",
		sender:      holder,
		msg:         types.NewRedeemMsg(sdkmath.NewInt(700_000_000), ""),
		expectedErr: types.ErrInsufficientShares,
	})

	s.requireExecute(holder, nil, types.NewRedeemMsg(sdkmath.NewInt(450_000_000), ""))
	s.assertBalance(holder, mocks.BaseToken, sdkmath.NewInt(450))

	_, err := s.k.UnlockingQueue.Get(s.ctx, first.LockupID)
	s.Assert().Error(err, "oldest position should be consumed")
	pos, err := s.k.UnlockingQueue.Get(s.ctx, second.LockupID)
	s.Require().NoError(err, "second position should remain")
	s.Assert().Equal("150000000", pos.VaultTokenAmount.String())
	pos, err = s.k.UnlockingQueue.Get(s.ctx, third.LockupID)
	s.Require().NoError(err, "immature position is untouched")
	s.Assert().Equal("100000000", pos.VaultTokenAmount.String())
}

func (s *LockupTestSuite) TestWithdrawUnlocked() {
	holder := s.CreateAndFundAccount(s.baseCoin(1_000))
	other := s.CreateAndFundAccount()
	s.deposit(holder, 1_000)
	resp := s.unlock(holder, 1_000_000_000)

	s.runMsgServerTestCase(msgServerTestCase{
		name:        "before release",
		sender:      holder,
		msg:         withdrawUnlockedMsg(resp.LockupID),
		expectedErr: types.ErrInvalidRequest,
	})

	s.advance(time.Duration(lockupDuration) * time.Second)
	s.runMsgServerTestCase(msgServerTestCase{
		name:        "not the owner",
		sender:      other,
		msg:         withdrawUnlockedMsg(resp.LockupID),
		expectedErr: types.ErrUnauthorized,
	})
	s.runMsgServerTestCase(msgServerTestCase{
		name:        "unknown lockup",
		sender:      holder,
		msg:         withdrawUnlockedMsg(resp.LockupID + 1),
		expectedErr: types.ErrNotFound,
	})
	s.runMsgServerTestCase(msgServerTestCase{
		name:   "owner withdraws the whole supply",
		sender: holder,
		msg:    withdrawUnlockedMsg(resp.LockupID),
		expectedEvents: sdk.Events{
			types.NewEventRedeem(types.EventTypeWithdrawUnlocked, holder, holder, s.shareCoin(1_000_000_000), s.baseCoin(1_000)),
		},
		postCheck: func() {
			s.assertBalance(holder, mocks.BaseToken, sdkmath.NewInt(1_000))
			s.assertTotalAssets(0)
			has, err := s.k.UnlockingQueue.IndexedMap.Has(s.ctx, resp.LockupID)
			s.Require().NoError(err)
			s.Assert().False(has, "withdrawn position should be removed")
		},
	})
}

func (s *LockupTestSuite) TestForceWithdrawUnlocking() {
	s.deposit(s.whitelisted, 1_000)
	data := s.requireExecute(s.whitelisted, s.shareCoins(1_000_000_000), unlockMsg(1_000_000_000))
	var resp types.UnlockResponse
	s.Require().NoError(json.Unmarshal(data, &resp))

	half := sdkmath.NewInt(500_000_000)
	tooMuch := sdkmath.NewInt(1_000_000_001)
	s.runMsgServerTestCase(msgServerTestCase{
		name:        "more than the position holds",
		sender:      s.whitelisted,
		msg:         forceWithdrawUnlockingMsg(resp.LockupID, &tooMuch),
		expectedErr: types.ErrInsufficientShares,
	})
	s.runMsgServerTestCase(msgServerTestCase{
		name:        "not whitelisted",
		sender:      s.adminAddr,
		msg:         forceWithdrawUnlockingMsg(resp.LockupID, nil),
		expectedErr: types.ErrUnauthorized,
	})
	s.runMsgServerTestCase(msgServerTestCase{
		name:   "part of an immature position",
		sender: s.whitelisted,
		msg:    forceWithdrawUnlockingMsg(resp.LockupID, &half),
		postCheck: func() {
			pos, err := s.k.UnlockingQueue.Get(s.ctx, resp.LockupID)
			s.Require().NoError(err)
			s.Assert().Equal(half.String(), pos.VaultTokenAmount.String())
			s.assertTotalAssets(500)
		},
	})
	s.runMsgServerTestCase(msgServerTestCase{
		name:   "whole position",
		sender: s.whitelisted,
		msg:    forceWithdrawUnlockingMsg(resp.LockupID, nil),
		postCheck: func() {
			has, err := s.k.UnlockingQueue.IndexedMap.Has(s.ctx, resp.LockupID)
			s.Require().NoError(err)
			s.Assert().False(has)
			s.assertTotalAssets(0)
		},
	})
}
