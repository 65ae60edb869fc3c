package keeper_test

import (
	"context"
	"encoding/json"

	"github.com/provlabs/vault-standard/types"
)

func (s *TestSuite) TestContract_RejectsUnknownFields() {
	_, err := s.vault.App.Execute(context.Background(), s.vault.Address,
		json.RawMessage(`{"deposit":{"amount":"1","recipient":null,"memo":"x"}}`), baseCoins(1), s.vault.Admin)
	s.Assert().ErrorIs(err, types.ErrInvalidRequest)

	var resp json.RawMessage
	err = s.vault.App.QuerySmart(context.Background(), s.vault.Address, json.RawMessage(`{"info":{},"total_assets":{}}`), &resp)
	s.Assert().ErrorIs(err, types.ErrInvalidRequest)
}

func (s *TestSuite) TestContract_QueryJSON() {
	var resp json.RawMessage
	err := s.vault.App.QuerySmart(context.Background(), s.vault.Address, types.QueryMsg{Info: &types.InfoQuery{}}, &resp)
	s.Require().NoError(err)
	s.Assert().JSONEq(`{"base_token":"uusdc","vault_token":"`+s.vault.Config.VaultToken+`"}`, string(resp))

	err = s.vault.App.QuerySmart(context.Background(), s.vault.Address, types.QueryMsg{TotalAssets: &types.TotalAssetsQuery{}}, &resp)
	s.Require().NoError(err)
	s.Assert().JSONEq(`"0"`, string(resp), "amounts are encoded as strings")
}

func (s *TestSuite) TestContract_RawStandardInfo() {
	bz, err := s.vault.App.QueryRaw(context.Background(), s.vault.Address, types.VaultStandardInfoKey.Bytes())
	s.Require().NoError(err)
	s.Assert().JSONEq(`{"version":1,"extensions":["keeper","force-unlock"]}`, string(bz))
}
