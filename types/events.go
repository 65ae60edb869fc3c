package types

import (
	"strconv"
	"time"

	sdk "github.com/cosmos/cosmos-sdk/types"
)

const (
	EventTypeInstantiate      = "instantiate_vault"
	EventTypeDeposit          = "deposit"
	EventTypeRedeem           = "redeem"
	EventTypeUnlock           = "unlock"
	EventTypeWithdrawUnlocked = "withdraw_unlocked"
	EventTypeForceRedeem      = "force_redeem"
	EventTypeCompound         = "compound"

	AttributeKeySender     = "sender"
	AttributeKeyRecipient  = "recipient"
	AttributeKeyAssets     = "assets"
	AttributeKeyShares     = "shares"
	AttributeKeyLockupID   = "lockup_id"
	AttributeKeyReleaseAt  = "release_at"
	AttributeKeyBaseToken  = "base_token"
	AttributeKeyVaultToken = "vault_token"
	AttributeKeyExtensions = "extensions"
)

// NewEventInstantiate creates the event emitted when a vault is created.
func NewEventInstantiate(cfg Config, extensions []string) sdk.Event {
	attrs := []sdk.Attribute{
		sdk.NewAttribute(AttributeKeyBaseToken, cfg.BaseToken),
		sdk.NewAttribute(AttributeKeyVaultToken, cfg.VaultToken),
	}
	for _, ext := range extensions {
		attrs = append(attrs, sdk.NewAttribute(AttributeKeyExtensions, ext))
	}
	return sdk.NewEvent(EventTypeInstantiate, attrs...)
}

// NewEventDeposit creates the event emitted when base tokens are deposited.
func NewEventDeposit(sender, recipient string, assets, shares sdk.Coin) sdk.Event {
	return sdk.NewEvent(EventTypeDeposit,
		sdk.NewAttribute(AttributeKeySender, sender),
		sdk.NewAttribute(AttributeKeyRecipient, recipient),
		sdk.NewAttribute(AttributeKeyAssets, assets.String()),
		sdk.NewAttribute(AttributeKeyShares, shares.String()),
	)
}

// NewEventRedeem creates the event emitted when vault tokens are redeemed.
func NewEventRedeem(eventType, sender, recipient string, shares, assets sdk.Coin) sdk.Event {
	return sdk.NewEvent(eventType,
		sdk.NewAttribute(AttributeKeySender, sender),
		sdk.NewAttribute(AttributeKeyRecipient, recipient),
		sdk.NewAttribute(AttributeKeyShares, shares.String()),
		sdk.NewAttribute(AttributeKeyAssets, assets.String()),
	)
}

// NewEventUnlock creates the event emitted when an unlocking position starts.
func NewEventUnlock(owner string, id uint64, shares sdk.Coin, releaseAt time.Time) sdk.Event {
	return sdk.NewEvent(EventTypeUnlock,
		sdk.NewAttribute(AttributeKeySender, owner),
		sdk.NewAttribute(AttributeKeyLockupID, strconv.FormatUint(id, 10)),
		sdk.NewAttribute(AttributeKeyShares, shares.String()),
		sdk.NewAttribute(AttributeKeyReleaseAt, releaseAt.UTC().Format(time.RFC3339Nano)),
	)
}

// NewEventCompound creates the event emitted when a keeper compounds.
func NewEventCompound(keeper string, assets sdk.Coin) sdk.Event {
	return sdk.NewEvent(EventTypeCompound,
		sdk.NewAttribute(AttributeKeySender, keeper),
		sdk.NewAttribute(AttributeKeyAssets, assets.String()),
	)
}
