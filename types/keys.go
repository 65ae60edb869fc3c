package types

import (
	"cosmossdk.io/collections"
)

const (
	// ContractName is the name of the mock vault contract. Wasm artifacts are
	// looked up under this name with dashes replaced by underscores.
	ContractName = "mock-vault"

	// ContractLabel is the label the mock vault is instantiated with.
	ContractLabel = "mock_vault"

	// Codespace is the error codespace for the vault standard.
	Codespace = "vaultstandard"

	// VaultTokenSubdenom is the token factory subdenom of the mock vault token.
	VaultTokenSubdenom = "vault-token"

	// VaultStandardVersion is the version of the vault standard implemented here.
	VaultStandardVersion uint16 = 1
)

var (
	// VaultStandardInfoKey is the raw storage key holding the JSON encoded
	// VaultStandardInfoResponse. Clients read it with a raw query.
	VaultStandardInfoKey = collections.NewPrefix("vault_standard_info")
	// VaultStandardInfoName is a human-readable name for the standard info item.
	VaultStandardInfoName = "vault_standard_info"

	// ConfigKey is the prefix of the vault config item.
	ConfigKey = collections.NewPrefix("config")
	// ConfigName is a human-readable name for the config item.
	ConfigName = "config"

	// TotalAssetsKey is the prefix of the accounted total assets item.
	TotalAssetsKey = collections.NewPrefix("total_assets")
	// TotalAssetsName is a human-readable name for the total assets item.
	TotalAssetsName = "total_assets"

	// KeepersKeyPrefix is the prefix of the keeper address set.
	KeepersKeyPrefix = collections.NewPrefix("keepers")
	// KeepersName is a human-readable name for the keeper set.
	KeepersName = "keepers"

	// ForceWithdrawWhitelistKeyPrefix is the prefix of the force withdraw whitelist.
	ForceWithdrawWhitelistKeyPrefix = collections.NewPrefix("force_withdraw_whitelist")
	// ForceWithdrawWhitelistName is a human-readable name for the force withdraw whitelist.
	ForceWithdrawWhitelistName = "force_withdraw_whitelist"

	// LockupDurationKey is the prefix of the lockup duration item.
	LockupDurationKey = collections.NewPrefix("lockup_duration")
	// LockupDurationName is a human-readable name for the lockup duration item.
	LockupDurationName = "lockup_duration"

	// UnlockingPositionsKeyPrefix is the prefix of the unlocking positions map.
	UnlockingPositionsKeyPrefix = collections.NewPrefix("unlocking_positions")
	// UnlockingPositionsName is a human-readable name for the unlocking positions map.
	UnlockingPositionsName = "unlocking_positions"
	// UnlockingPositionsByOwnerPrefix is the prefix of the owner index over unlocking positions.
	UnlockingPositionsByOwnerPrefix = collections.NewPrefix("unlocking_by_owner")
	// UnlockingPositionsByOwnerName is a human-readable name for the owner index.
	UnlockingPositionsByOwnerName = "unlocking_by_owner"
	// UnlockingSequenceKey is the prefix of the lockup id sequence.
	UnlockingSequenceKey = collections.NewPrefix("unlocking_seq")
	// UnlockingSequenceName is a human-readable name for the lockup id sequence.
	UnlockingSequenceName = "unlocking_seq"
)
