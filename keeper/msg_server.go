package keeper

import (
	"encoding/json"

	"github.com/provlabs/vault-standard/runner"
	"github.com/provlabs/vault-standard/types"

	"cosmossdk.io/errors"

	sdk "github.com/cosmos/cosmos-sdk/types"
)

// MsgServer dispatches execute messages to the keeper.
type MsgServer struct {
	*Keeper
}

func NewMsgServer(keeper *Keeper) MsgServer {
	return MsgServer{Keeper: keeper}
}

// Execute handles a validated execute message and returns the response data.
func (k MsgServer) Execute(ctx sdk.Context, env runner.Env, info runner.MessageInfo, msg types.ExecuteMsg) ([]byte, error) {
	switch {
	case msg.Deposit != nil:
		_, err := k.Deposit(ctx, env, info, *msg.Deposit)
		return nil, err
	case msg.Redeem != nil:
		_, err := k.Redeem(ctx, env, info, *msg.Redeem)
		return nil, err
	case msg.VaultExtension != nil:
		return k.executeExtension(ctx, env, info, *msg.VaultExtension)
	}
	return nil, errors.Wrap(types.ErrInvalidRequest, "empty execute message")
}

func (k MsgServer) executeExtension(ctx sdk.Context, env runner.Env, info runner.MessageInfo, msg types.ExtensionExecuteMsg) ([]byte, error) {
	name := msg.Name()
	enabled, err := k.isExtensionEnabled(ctx, name)
	if err != nil {
		return nil, err
	}
	if !enabled {
		return nil, errors.Wrapf(types.ErrUnknownExtension, "%s is not enabled on this vault", name)
	}

	switch {
	case msg.Keeper != nil && msg.Keeper.Compound != nil:
		_, err := k.Compound(ctx, env, info)
		return nil, err
	case msg.Keeper != nil && msg.Keeper.UpdateKeepers != nil:
		return nil, k.UpdateKeepers(ctx, info, *msg.Keeper.UpdateKeepers)
	case msg.Lockup != nil && msg.Lockup.Unlock != nil:
		resp, err := k.Unlock(ctx, env, info, *msg.Lockup.Unlock)
		if err != nil {
			return nil, err
		}
		return json.Marshal(resp)
	case msg.Lockup != nil && msg.Lockup.WithdrawUnlocked != nil:
		_, err := k.WithdrawUnlocked(ctx, env, info, *msg.Lockup.WithdrawUnlocked)
		return nil, err
	case msg.ForceUnlock != nil && msg.ForceUnlock.ForceRedeem != nil:
		_, err := k.ForceRedeem(ctx, env, info, *msg.ForceUnlock.ForceRedeem)
		return nil, err
	case msg.ForceUnlock != nil && msg.ForceUnlock.ForceWithdrawUnlocking != nil:
		_, err := k.ForceWithdrawUnlocking(ctx, env, info, *msg.ForceUnlock.ForceWithdrawUnlocking)
		return nil, err
	case msg.ForceUnlock != nil && msg.ForceUnlock.UpdateForceWithdrawWhitelist != nil:
		return nil, k.UpdateForceWithdrawWhitelist(ctx, info, *msg.ForceUnlock.UpdateForceWithdrawWhitelist)
	}
	return nil, errors.Wrapf(types.ErrInvalidRequest, "empty %s extension message", name)
}
