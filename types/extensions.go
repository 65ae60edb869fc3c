package types

import (
	"cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"
)

// Extension names as reported by VaultStandardInfoResponse.Extensions.
const (
	ExtensionKeeper      = "keeper"
	ExtensionLockup      = "lockup"
	ExtensionForceUnlock = "force-unlock"
)

// AllExtensions lists the known extensions in canonical order.
var AllExtensions = []string{ExtensionKeeper, ExtensionLockup, ExtensionForceUnlock}

// ExtensionExecuteMsg carries the execute payload of one extension.
type ExtensionExecuteMsg struct {
	Keeper      *KeeperExecuteMsg      `json:"keeper,omitempty"`
	Lockup      *LockupExecuteMsg      `json:"lockup,omitempty"`
	ForceUnlock *ForceUnlockExecuteMsg `json:"force_unlock,omitempty"`
}

// ExtensionQueryMsg carries the query payload of one extension.
type ExtensionQueryMsg struct {
	Keeper *KeeperQueryMsg `json:"keeper,omitempty"`
	Lockup *LockupQueryMsg `json:"lockup,omitempty"`
}

// Name returns the extension the payload targets.
func (m ExtensionExecuteMsg) Name() string {
	switch {
	case m.Keeper != nil:
		return ExtensionKeeper
	case m.Lockup != nil:
		return ExtensionLockup
	case m.ForceUnlock != nil:
		return ExtensionForceUnlock
	}
	return ""
}

// Name returns the extension the payload targets.
func (m ExtensionQueryMsg) Name() string {
	switch {
	case m.Keeper != nil:
		return ExtensionKeeper
	case m.Lockup != nil:
		return ExtensionLockup
	}
	return ""
}

func (m ExtensionExecuteMsg) ValidateBasic() error {
	if err := exactlyOne("extension execute", m.Keeper != nil, m.Lockup != nil, m.ForceUnlock != nil); err != nil {
		return err
	}
	switch {
	case m.Keeper != nil:
		return m.Keeper.ValidateBasic()
	case m.Lockup != nil:
		return m.Lockup.ValidateBasic()
	default:
		return m.ForceUnlock.ValidateBasic()
	}
}

func (m ExtensionQueryMsg) ValidateBasic() error {
	if err := exactlyOne("extension query", m.Keeper != nil, m.Lockup != nil); err != nil {
		return err
	}
	if m.Keeper != nil {
		return exactlyOne("keeper query", m.Keeper.Keepers != nil)
	}
	return m.Lockup.ValidateBasic()
}

// KeeperExecuteMsg holds the keeper extension's execute variants.
type KeeperExecuteMsg struct {
	Compound      *CompoundMsg      `json:"compound,omitempty"`
	UpdateKeepers *UpdateKeepersMsg `json:"update_keepers,omitempty"`
}

// CompoundMsg folds base tokens held by the vault but not yet accounted for
// into the total assets. Only keepers may call it.
type CompoundMsg struct{}

// UpdateKeepersMsg changes the keeper set. Only the admin may call it.
type UpdateKeepersMsg struct {
	Add    []string `json:"add"`
	Remove []string `json:"remove"`
}

func (m KeeperExecuteMsg) ValidateBasic() error {
	if err := exactlyOne("keeper execute", m.Compound != nil, m.UpdateKeepers != nil); err != nil {
		return err
	}
	if m.UpdateKeepers != nil {
		if err := validateAddresses("keeper", m.UpdateKeepers.Add); err != nil {
			return err
		}
		return validateAddresses("keeper", m.UpdateKeepers.Remove)
	}
	return nil
}

// KeeperQueryMsg holds the keeper extension's query variants.
type KeeperQueryMsg struct {
	Keepers *KeepersQuery `json:"keepers,omitempty"`
}

type KeepersQuery struct{}

// LockupExecuteMsg holds the lockup extension's execute variants.
type LockupExecuteMsg struct {
	Unlock           *UnlockMsg           `json:"unlock,omitempty"`
	WithdrawUnlocked *WithdrawUnlockedMsg `json:"withdraw_unlocked,omitempty"`
}

// UnlockMsg escrows the attached vault tokens and starts an unlocking
// position that matures after the lockup duration.
type UnlockMsg struct {
	Amount sdkmath.Int `json:"amount"`
}

// WithdrawUnlockedMsg redeems a matured unlocking position.
type WithdrawUnlockedMsg struct {
	Recipient *string `json:"recipient"`
	LockupID  uint64  `json:"lockup_id"`
}

func (m LockupExecuteMsg) ValidateBasic() error {
	if err := exactlyOne("lockup execute", m.Unlock != nil, m.WithdrawUnlocked != nil); err != nil {
		return err
	}
	if m.Unlock != nil {
		return validateAmount("unlock amount", m.Unlock.Amount)
	}
	return validateOptionalAddress("recipient", m.WithdrawUnlocked.Recipient)
}

// LockupQueryMsg holds the lockup extension's query variants.
type LockupQueryMsg struct {
	UnlockingPositions *UnlockingPositionsQuery `json:"unlocking_positions,omitempty"`
	UnlockingPosition  *UnlockingPositionQuery  `json:"unlocking_position,omitempty"`
	LockupDuration     *LockupDurationQuery     `json:"lockup_duration,omitempty"`
}

// UnlockingPositionsQuery pages through the unlocking positions of an owner
// in lockup id order.
type UnlockingPositionsQuery struct {
	Owner      string  `json:"owner"`
	StartAfter *uint64 `json:"start_after"`
	Limit      *uint32 `json:"limit"`
}

type UnlockingPositionQuery struct {
	LockupID uint64 `json:"lockup_id"`
}

type LockupDurationQuery struct{}

func (m LockupQueryMsg) ValidateBasic() error {
	if err := exactlyOne("lockup query", m.UnlockingPositions != nil, m.UnlockingPosition != nil, m.LockupDuration != nil); err != nil {
		return err
	}
	if m.UnlockingPositions != nil {
		if err := ValidateAddress(m.UnlockingPositions.Owner); err != nil {
			return errors.Wrapf(ErrInvalidRequest, "invalid owner: %s", err)
		}
	}
	return nil
}

// ForceUnlockExecuteMsg holds the force-unlock extension's execute variants.
// All of them are restricted to whitelisted addresses, except the whitelist
// update which is restricted to the admin.
type ForceUnlockExecuteMsg struct {
	ForceRedeem                  *ForceRedeemMsg                  `json:"force_redeem,omitempty"`
	ForceWithdrawUnlocking       *ForceWithdrawUnlockingMsg       `json:"force_withdraw_unlocking,omitempty"`
	UpdateForceWithdrawWhitelist *UpdateForceWithdrawWhitelistMsg `json:"update_force_withdraw_whitelist,omitempty"`
}

// ForceRedeemMsg redeems the attached vault tokens immediately, ignoring any lockup.
type ForceRedeemMsg struct {
	Recipient *string  `json:"recipient"`
	Amount    sdkmath.Int `json:"amount"`
}

// ForceWithdrawUnlockingMsg withdraws from an unlocking position before it
// matures. A nil amount withdraws the whole position.
type ForceWithdrawUnlockingMsg struct {
	LockupID  uint64    `json:"lockup_id"`
	Amount    *sdkmath.Int `json:"amount"`
	Recipient *string   `json:"recipient"`
}

type UpdateForceWithdrawWhitelistMsg struct {
	AddAddresses    []string `json:"add_addresses"`
	RemoveAddresses []string `json:"remove_addresses"`
}

func (m ForceUnlockExecuteMsg) ValidateBasic() error {
	if err := exactlyOne("force unlock execute",
		m.ForceRedeem != nil,
		m.ForceWithdrawUnlocking != nil,
		m.UpdateForceWithdrawWhitelist != nil,
	); err != nil {
		return err
	}
	switch {
	case m.ForceRedeem != nil:
		if err := validateAmount("force redeem amount", m.ForceRedeem.Amount); err != nil {
			return err
		}
		return validateOptionalAddress("recipient", m.ForceRedeem.Recipient)
	case m.ForceWithdrawUnlocking != nil:
		if m.ForceWithdrawUnlocking.Amount != nil {
			if err := validateAmount("force withdraw amount", *m.ForceWithdrawUnlocking.Amount); err != nil {
				return err
			}
		}
		return validateOptionalAddress("recipient", m.ForceWithdrawUnlocking.Recipient)
	default:
		if err := validateAddresses("whitelist address", m.UpdateForceWithdrawWhitelist.AddAddresses); err != nil {
			return err
		}
		return validateAddresses("whitelist address", m.UpdateForceWithdrawWhitelist.RemoveAddresses)
	}
}
