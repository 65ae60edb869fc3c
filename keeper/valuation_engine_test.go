package keeper_test

import (
	sdkmath "cosmossdk.io/math"
)

func (s *TestSuite) TestUnaccountedAssets() {
	unaccounted, err := s.k.UnaccountedAssets(s.ctx, s.vault.Env(s.ctx), s.vault.Config)
	s.Require().NoError(err)
	s.Assert().True(unaccounted.IsZero(), "new vault holds nothing")

	s.deposit(s.adminAddr, 1_000)
	s.Require().NoError(s.vault.App.Bank.SendCoins(s.ctx, s.adminAddr, s.vault.Address, baseCoins(250)))

	unaccounted, err = s.k.UnaccountedAssets(s.ctx, s.vault.Env(s.ctx), s.vault.Config)
	s.Require().NoError(err)
	s.Assert().Equal("250", unaccounted.String(), "donation is not accounted")
	s.assertTotalAssets(1_000)
}

func (s *TestSuite) TestTotals() {
	s.deposit(s.adminAddr, 1_000)
	totalAssets, totalShares, err := s.k.Totals(s.ctx, s.vault.Config)
	s.Require().NoError(err)
	s.Assert().Equal("1000", totalAssets.String())
	s.Assert().Equal("1000000000", totalShares.String())
}

func (s *TestSuite) TestPreviewMatchesConvert() {
	s.deposit(s.adminAddr, 12_345)
	s.Require().NoError(s.vault.App.Bank.SendCoins(s.ctx, s.adminAddr, s.vault.Address, baseCoins(678)))
	s.requireExecute(s.keeperAddr, nil, compoundMsg())

	for _, amount := range []int64{0, 1, 999, 1_000_000, 123_456_789} {
		amt := sdkmath.NewInt(amount)

		preview, err := s.k.PreviewDeposit(s.ctx, s.vault.Config, amt)
		s.Require().NoError(err)
		convert, err := s.k.ConvertToShares(s.ctx, s.vault.Config, amt)
		s.Require().NoError(err)
		s.Assert().Equal(convert.String(), preview.String(), "PreviewDeposit(%d)", amount)

		preview, err = s.k.PreviewRedeem(s.ctx, s.vault.Config, amt)
		s.Require().NoError(err)
		convert, err = s.k.ConvertToAssets(s.ctx, s.vault.Config, amt)
		s.Require().NoError(err)
		s.Assert().Equal(convert.String(), preview.String(), "PreviewRedeem(%d)", amount)
	}
}

// A deposit followed by a redeem of the minted shares never returns more
// than was deposited.
func (s *TestSuite) TestDepositRedeemNeverProfits() {
	s.deposit(s.adminAddr, 1_000_003)
	s.Require().NoError(s.vault.App.Bank.SendCoins(s.ctx, s.adminAddr, s.vault.Address, baseCoins(7_919)))
	s.requireExecute(s.keeperAddr, nil, compoundMsg())

	for _, amount := range []int64{1, 17, 4_242, 999_999} {
		shares, err := s.k.PreviewDeposit(s.ctx, s.vault.Config, sdkmath.NewInt(amount))
		s.Require().NoError(err)
		if shares.IsZero() {
			continue
		}
		assets, err := s.k.ConvertToAssets(s.ctx, s.vault.Config, shares.Amount)
		s.Require().NoError(err)
		s.Assert().True(assets.Amount.LTE(sdkmath.NewInt(amount)), "deposit %d redeems for %s", amount, assets)
	}
}
