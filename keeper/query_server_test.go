package keeper_test

import (
	"encoding/json"

	"github.com/provlabs/vault-standard/keeper"
	"github.com/provlabs/vault-standard/types"
	"github.com/provlabs/vault-standard/utils/mocks"
	"github.com/provlabs/vault-standard/utils/query"

	sdkmath "cosmossdk.io/math"

	sdk "github.com/cosmos/cosmos-sdk/types"
)

// amountQuery adapts an amount conversion endpoint to the query test runner.
func amountQuery(fn func(sdk.Context, sdkmath.Int) (sdkmath.Int, error)) func(sdk.Context, *sdkmath.Int) (*string, error) {
	return func(ctx sdk.Context, req *sdkmath.Int) (*string, error) {
		resp, err := fn(ctx, *req)
		if err != nil {
			return nil, err
		}
		out := resp.String()
		return &out, nil
	}
}

// amountDef defines an amount conversion endpoint together with its query message.
func amountDef(name string, fn func(sdk.Context, sdkmath.Int) (sdkmath.Int, error), msg func(sdkmath.Int) types.QueryMsg) query.TestDef[sdkmath.Int, string] {
	return query.TestDef[sdkmath.Int, string]{
		QueryName: name,
		Query:     amountQuery(fn),
		Msg:       func(req *sdkmath.Int) types.QueryMsg { return msg(*req) },
	}
}

func ptr[T any](v T) *T {
	return &v
}

func (s *TestSuite) TestQueryServer_VaultStandardInfo() {
	testDef := query.TestDef[struct{}, types.VaultStandardInfoResponse]{
		QueryName: "VaultStandardInfo",
		Query: func(ctx sdk.Context, _ *struct{}) (*types.VaultStandardInfoResponse, error) {
			resp, err := keeper.NewQueryServer(s.k).VaultStandardInfo(ctx)
			return &resp, err
		},
		Msg:   func(*struct{}) types.QueryMsg { return types.QueryMsg{VaultStandardInfo: &types.VaultStandardInfoQuery{}} },
		Smart: s.vault.Query,
	}
	query.RunTestCase(s, testDef, query.TestCase[struct{}, types.VaultStandardInfoResponse]{
		Name: "enabled extensions",
		Req:  &struct{}{},
		ExpectedResp: &types.VaultStandardInfoResponse{
			Version:    types.VaultStandardVersion,
			Extensions: []string{types.ExtensionKeeper, types.ExtensionForceUnlock},
		},
	})
}

func (s *TestSuite) TestQueryServer_Info() {
	testDef := query.TestDef[struct{}, types.VaultInfoResponse]{
		QueryName: "Info",
		Query: func(ctx sdk.Context, _ *struct{}) (*types.VaultInfoResponse, error) {
			resp, err := keeper.NewQueryServer(s.k).Info(ctx)
			return &resp, err
		},
		Msg:   func(*struct{}) types.QueryMsg { return types.QueryMsg{Info: &types.InfoQuery{}} },
		Smart: s.vault.Query,
	}
	query.RunTestCase(s, testDef, query.TestCase[struct{}, types.VaultInfoResponse]{
		Name:         "base and vault token",
		Req:          &struct{}{},
		ExpectedResp: &types.VaultInfoResponse{BaseToken: mocks.BaseToken, VaultToken: s.vault.Config.VaultToken},
	})
}

func (s *TestSuite) TestQueryServer_Conversions() {
	qs := keeper.NewQueryServer(s.k)
	setup := func() {
		s.deposit(s.adminAddr, 1_000)
		s.Require().NoError(s.vault.App.Bank.SendCoins(s.ctx, s.adminAddr, s.vault.Address, baseCoins(1_000)))
		s.requireExecute(s.keeperAddr, nil, compoundMsg())
	}

	tests := []struct {
		def query.TestDef[sdkmath.Int, string]
		tc  query.TestCase[sdkmath.Int, string]
	}{
		{
			def: amountDef("ConvertToShares", qs.ConvertToShares, func(a sdkmath.Int) types.QueryMsg { return types.QueryMsg{ConvertToShares: &types.ConvertToSharesQuery{Amount: a}} }),
			tc:  query.TestCase[sdkmath.Int, string]{Name: "empty vault", Req: ptr(sdkmath.NewInt(7)), ExpectedResp: ptr("7000000")},
		},
		{
			def: amountDef("ConvertToShares", qs.ConvertToShares, func(a sdkmath.Int) types.QueryMsg { return types.QueryMsg{ConvertToShares: &types.ConvertToSharesQuery{Amount: a}} }),
			tc:  query.TestCase[sdkmath.Int, string]{Name: "after compound", Setup: setup, Req: ptr(sdkmath.NewInt(2_000)), ExpectedResp: ptr("1000499750")},
		},
		{
			def: amountDef("PreviewDeposit", qs.PreviewDeposit, func(a sdkmath.Int) types.QueryMsg { return types.QueryMsg{PreviewDeposit: &types.PreviewDepositQuery{Amount: a}} }),
			tc:  query.TestCase[sdkmath.Int, string]{Name: "matches conversion", Setup: setup, Req: ptr(sdkmath.NewInt(2_000)), ExpectedResp: ptr("1000499750")},
		},
		{
			def: amountDef("ConvertToAssets", qs.ConvertToAssets, func(a sdkmath.Int) types.QueryMsg { return types.QueryMsg{ConvertToAssets: &types.ConvertToAssetsQuery{Amount: a}} }),
			tc:  query.TestCase[sdkmath.Int, string]{Name: "after compound", Setup: setup, Req: ptr(sdkmath.NewInt(500_000_000)), ExpectedResp: ptr("999")},
		},
		{
			def: amountDef("PreviewRedeem", qs.PreviewRedeem, func(a sdkmath.Int) types.QueryMsg { return types.QueryMsg{PreviewRedeem: &types.PreviewRedeemQuery{Amount: a}} }),
			tc:  query.TestCase[sdkmath.Int, string]{Name: "whole supply sweeps", Setup: setup, Req: ptr(sdkmath.NewInt(1_000_000_000)), ExpectedResp: ptr("2000")},
		},
		{
			def: amountDef("ConvertToAssets", qs.ConvertToAssets, func(a sdkmath.Int) types.QueryMsg { return types.QueryMsg{ConvertToAssets: &types.ConvertToAssetsQuery{Amount: a}} }),
			tc:  query.TestCase[sdkmath.Int, string]{Name: "nothing", Setup: setup, Req: ptr(sdkmath.ZeroInt()), ExpectedResp: ptr("0")},
		},
		{
			def: query.TestDef[sdkmath.Int, string]{QueryName: "TotalAssets", Query: func(ctx sdk.Context, _ *sdkmath.Int) (*string, error) {
				resp, err := qs.TotalAssets(ctx)
				return ptr(resp.String()), err
			}, Msg: func(*sdkmath.Int) types.QueryMsg { return types.QueryMsg{TotalAssets: &types.TotalAssetsQuery{}} }},
			tc: query.TestCase[sdkmath.Int, string]{Name: "accounted assets", Setup: setup, Req: ptr(sdkmath.ZeroInt()), ExpectedResp: ptr("2000")},
		},
		{
			def: query.TestDef[sdkmath.Int, string]{QueryName: "TotalVaultTokenSupply", Query: func(ctx sdk.Context, _ *sdkmath.Int) (*string, error) {
				resp, err := qs.TotalVaultTokenSupply(ctx)
				return ptr(resp.String()), err
			}, Msg: func(*sdkmath.Int) types.QueryMsg { return types.QueryMsg{TotalVaultTokenSupply: &types.TotalVaultTokenSupplyQuery{}} }},
			tc: query.TestCase[sdkmath.Int, string]{Name: "minted vault tokens", Setup: setup, Req: ptr(sdkmath.ZeroInt()), ExpectedResp: ptr("1000000000")},
		},
	}

	for _, tt := range tests {
		tt.def.Smart = s.vault.Query
		s.Run(tt.def.QueryName+" "+tt.tc.Name, func() {
			query.RunTestCase(s, tt.def, tt.tc)
		})
	}
}

func (s *TestSuite) TestQueryServer_DisabledExtension() {
	_, err := keeper.NewQueryServer(s.k).Query(s.ctx, s.vault.Env(s.ctx), types.QueryMsg{
		VaultExtension: &types.ExtensionQueryMsg{Lockup: &types.LockupQueryMsg{LockupDuration: &types.LockupDurationQuery{}}},
	})
	s.Assert().ErrorIs(err, types.ErrUnknownExtension)
}

func (s *TestSuite) TestQueryServer_Keepers() {
	resp, err := keeper.NewQueryServer(s.k).Query(s.ctx, s.vault.Env(s.ctx), types.QueryMsg{
		VaultExtension: &types.ExtensionQueryMsg{Keeper: &types.KeeperQueryMsg{Keepers: &types.KeepersQuery{}}},
	})
	s.Require().NoError(err)
	bz, err := json.Marshal(resp)
	s.Require().NoError(err)
	s.Assert().JSONEq(`["`+s.keeperAddr+`"]`, string(bz))
}

func (s *LockupTestSuite) TestQueryServer_UnlockingPositions() {
	holder := s.CreateAndFundAccount(s.baseCoin(1_000))
	s.deposit(holder, 1_000)
	for range 12 {
		s.unlock(holder, 1_000_000)
	}
	s.deposit(s.whitelisted, 1)
	s.unlock(s.whitelisted, 1)

	qs := keeper.NewQueryServer(s.k)
	positions, err := qs.GetUnlockingPositions(s.ctx, types.UnlockingPositionsQuery{Owner: holder})
	s.Require().NoError(err)
	s.Assert().Len(positions, keeper.DefaultUnlockingPositionsLimit, "default page size")

	positions, err = qs.GetUnlockingPositions(s.ctx, types.UnlockingPositionsQuery{Owner: holder, StartAfter: ptr(uint64(9)), Limit: ptr(uint32(100))})
	s.Require().NoError(err)
	s.Require().Len(positions, 2, "page after lockup 9")
	s.Assert().Equal(uint64(10), positions[0].ID)
	s.Assert().Equal(uint64(11), positions[1].ID)

	resp, err := qs.Query(s.ctx, s.vault.Env(s.ctx), types.QueryMsg{
		VaultExtension: &types.ExtensionQueryMsg{Lockup: &types.LockupQueryMsg{UnlockingPosition: &types.UnlockingPositionQuery{LockupID: 99}}},
	})
	s.Assert().Nil(resp)
	s.Assert().ErrorIs(err, types.ErrNotFound)

	resp, err = qs.Query(s.ctx, s.vault.Env(s.ctx), types.QueryMsg{
		VaultExtension: &types.ExtensionQueryMsg{Lockup: &types.LockupQueryMsg{LockupDuration: &types.LockupDurationQuery{}}},
	})
	s.Require().NoError(err)
	s.Assert().Equal(types.LockupDurationResponse{DurationSeconds: lockupDuration}, resp)
}
