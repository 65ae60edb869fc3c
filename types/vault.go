package types

import (
	"fmt"
	"slices"
	"time"

	"cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"

	sdk "github.com/cosmos/cosmos-sdk/types"
)

// InstantiateMsg instantiates a mock vault for BaseToken with the selected
// extensions enabled.
type InstantiateMsg struct {
	BaseToken  string                 `json:"base_token"`
	Admin      *string                `json:"admin"`
	Extensions *InstantiateExtensions `json:"extensions,omitempty"`
}

// InstantiateExtensions selects the capability set of the vault. A nil
// entry leaves the extension disabled.
type InstantiateExtensions struct {
	Keeper      *KeeperConfig      `json:"keeper,omitempty"`
	Lockup      *LockupConfig      `json:"lockup,omitempty"`
	ForceUnlock *ForceUnlockConfig `json:"force_unlock,omitempty"`
}

type KeeperConfig struct {
	Keepers []string `json:"keepers"`
}

type LockupConfig struct {
	DurationSeconds uint64 `json:"duration_seconds"`
}

type ForceUnlockConfig struct {
	Whitelist []string `json:"whitelist"`
}

// ValidateBasic performs stateless validation of the instantiate message.
func (m InstantiateMsg) ValidateBasic() error {
	if err := sdk.ValidateDenom(m.BaseToken); err != nil {
		return errors.Wrapf(ErrInvalidRequest, "invalid base token %q: %s", m.BaseToken, err)
	}
	if err := validateOptionalAddress("admin", m.Admin); err != nil {
		return err
	}
	if m.Extensions == nil {
		return nil
	}
	if m.Extensions.Keeper != nil {
		if err := validateAddresses("keeper", m.Extensions.Keeper.Keepers); err != nil {
			return err
		}
	}
	if m.Extensions.Lockup != nil && m.Extensions.Lockup.DurationSeconds == 0 {
		return errors.Wrap(ErrInvalidRequest, "lockup duration must be positive")
	}
	if m.Extensions.ForceUnlock != nil {
		if err := validateAddresses("whitelist address", m.Extensions.ForceUnlock.Whitelist); err != nil {
			return err
		}
	}
	return nil
}

// Enabled returns the enabled extension names in canonical order.
func (e *InstantiateExtensions) Enabled() []string {
	enabled := []string{}
	if e == nil {
		return enabled
	}
	if e.Keeper != nil {
		enabled = append(enabled, ExtensionKeeper)
	}
	if e.Lockup != nil {
		enabled = append(enabled, ExtensionLockup)
	}
	if e.ForceUnlock != nil {
		enabled = append(enabled, ExtensionForceUnlock)
	}
	return enabled
}

// Config is the persistent configuration of a mock vault.
type Config struct {
	Admin      string `json:"admin"`
	BaseToken  string `json:"base_token"`
	VaultToken string `json:"vault_token"`
}

// Validate performs basic validation on the config fields.
func (c Config) Validate() error {
	if err := ValidateAddress(c.Admin); err != nil {
		return fmt.Errorf("invalid admin address: %w", err)
	}
	if err := sdk.ValidateDenom(c.BaseToken); err != nil {
		return fmt.Errorf("invalid base token: %w", err)
	}
	if err := sdk.ValidateDenom(c.VaultToken); err != nil {
		return fmt.Errorf("invalid vault token: %w", err)
	}
	if c.BaseToken == c.VaultToken {
		return fmt.Errorf("base token and vault token must differ: %s", c.BaseToken)
	}
	return nil
}

// VaultStandardInfoResponse describes the standard version and the enabled
// extensions of a vault.
type VaultStandardInfoResponse struct {
	Version    uint16   `json:"version"`
	Extensions []string `json:"extensions"`
}

// HasExtension reports whether the named extension is enabled.
func (r VaultStandardInfoResponse) HasExtension(name string) bool {
	return slices.Contains(r.Extensions, name)
}

// VaultInfoResponse names the base and vault tokens of a vault.
type VaultInfoResponse struct {
	BaseToken  string `json:"base_token"`
	VaultToken string `json:"vault_token"`
}

// UnlockingPosition is vault tokens held in escrow until ReleaseAt.
type UnlockingPosition struct {
	ID               uint64    `json:"id"`
	Owner            string    `json:"owner"`
	ReleaseAt        time.Time `json:"release_at"`
	VaultTokenAmount sdkmath.Int  `json:"vault_token_amount"`
}

// Validate performs basic validation on the position fields.
func (p UnlockingPosition) Validate() error {
	if err := ValidateAddress(p.Owner); err != nil {
		return fmt.Errorf("invalid owner: %w", err)
	}
	if p.VaultTokenAmount.IsNil() || !p.VaultTokenAmount.IsPositive() {
		return fmt.Errorf("vault token amount must be positive: %s", p.VaultTokenAmount)
	}
	return nil
}

// IsMatured reports whether the position can be withdrawn at now.
func (p UnlockingPosition) IsMatured(now time.Time) bool {
	return !now.Before(p.ReleaseAt)
}

type LockupDurationResponse struct {
	DurationSeconds uint64 `json:"duration_seconds"`
}

// UnlockResponse is returned as data by an unlock.
type UnlockResponse struct {
	LockupID  uint64    `json:"lockup_id"`
	ReleaseAt time.Time `json:"release_at"`
}
