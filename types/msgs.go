package types

import (
	"bytes"
	"encoding/json"
	"fmt"

	"cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"

	"github.com/cosmos/cosmos-sdk/types/bech32"
)

// ExecuteMsg is the execute message of a vault standard contract. Exactly one
// variant is set.
type ExecuteMsg struct {
	Deposit        *DepositMsg          `json:"deposit,omitempty"`
	Redeem         *RedeemMsg           `json:"redeem,omitempty"`
	VaultExtension *ExtensionExecuteMsg `json:"vault_extension,omitempty"`
}

// DepositMsg deposits base tokens into the vault. When no funds are attached
// the vault consumes base tokens that were transferred to it beforehand.
type DepositMsg struct {
	Amount    sdkmath.Int `json:"amount"`
	Recipient *string  `json:"recipient"`
}

// RedeemMsg burns vault tokens and releases base tokens.
type RedeemMsg struct {
	Amount    sdkmath.Int `json:"amount"`
	Recipient *string  `json:"recipient"`
}

// QueryMsg is the query message of a vault standard contract. Exactly one
// variant is set.
type QueryMsg struct {
	VaultStandardInfo     *VaultStandardInfoQuery     `json:"vault_standard_info,omitempty"`
	Info                  *InfoQuery                  `json:"info,omitempty"`
	PreviewDeposit        *PreviewDepositQuery        `json:"preview_deposit,omitempty"`
	PreviewRedeem         *PreviewRedeemQuery         `json:"preview_redeem,omitempty"`
	TotalAssets           *TotalAssetsQuery           `json:"total_assets,omitempty"`
	TotalVaultTokenSupply *TotalVaultTokenSupplyQuery `json:"total_vault_token_supply,omitempty"`
	ConvertToShares       *ConvertToSharesQuery       `json:"convert_to_shares,omitempty"`
	ConvertToAssets       *ConvertToAssetsQuery       `json:"convert_to_assets,omitempty"`
	VaultExtension        *ExtensionQueryMsg          `json:"vault_extension,omitempty"`
}

type (
	VaultStandardInfoQuery     struct{}
	InfoQuery                  struct{}
	TotalAssetsQuery           struct{}
	TotalVaultTokenSupplyQuery struct{}
)

// PreviewDepositQuery returns the vault tokens a deposit of Amount base
// tokens would mint in the current block.
type PreviewDepositQuery struct {
	Amount sdkmath.Int `json:"amount"`
}

// PreviewRedeemQuery returns the base tokens a redeem of Amount vault
// tokens would release in the current block.
type PreviewRedeemQuery struct {
	Amount sdkmath.Int `json:"amount"`
}

// ConvertToSharesQuery is the idealized, fee-free conversion of base tokens to vault tokens.
type ConvertToSharesQuery struct {
	Amount sdkmath.Int `json:"amount"`
}

// ConvertToAssetsQuery is the idealized, fee-free conversion of vault tokens to base tokens.
type ConvertToAssetsQuery struct {
	Amount sdkmath.Int `json:"amount"`
}

// NewDepositMsg returns a deposit execute message. An empty recipient means the sender.
func NewDepositMsg(amount sdkmath.Int, recipient string) ExecuteMsg {
	return ExecuteMsg{Deposit: &DepositMsg{Amount: amount, Recipient: optional(recipient)}}
}

// NewRedeemMsg returns a redeem execute message. An empty recipient means the sender.
func NewRedeemMsg(amount sdkmath.Int, recipient string) ExecuteMsg {
	return ExecuteMsg{Redeem: &RedeemMsg{Amount: amount, Recipient: optional(recipient)}}
}

// ValidateBasic performs stateless validation of the execute message.
func (m ExecuteMsg) ValidateBasic() error {
	if err := exactlyOne("execute", m.Deposit != nil, m.Redeem != nil, m.VaultExtension != nil); err != nil {
		return err
	}
	switch {
	case m.Deposit != nil:
		return m.Deposit.ValidateBasic()
	case m.Redeem != nil:
		return m.Redeem.ValidateBasic()
	default:
		return m.VaultExtension.ValidateBasic()
	}
}

// Variant returns the wire name of the set variant.
func (m ExecuteMsg) Variant() string {
	switch {
	case m.Deposit != nil:
		return "deposit"
	case m.Redeem != nil:
		return "redeem"
	case m.VaultExtension != nil:
		return "vault_extension"
	}
	return ""
}

// ValidateBasic performs stateless validation of the deposit.
func (m DepositMsg) ValidateBasic() error {
	if err := validateAmount("deposit amount", m.Amount); err != nil {
		return err
	}
	return validateOptionalAddress("recipient", m.Recipient)
}

// ValidateBasic performs stateless validation of the redeem.
func (m RedeemMsg) ValidateBasic() error {
	if err := validateAmount("redeem amount", m.Amount); err != nil {
		return err
	}
	return validateOptionalAddress("recipient", m.Recipient)
}

// ValidateBasic performs stateless validation of the query message.
func (m QueryMsg) ValidateBasic() error {
	if err := exactlyOne("query",
		m.VaultStandardInfo != nil,
		m.Info != nil,
		m.PreviewDeposit != nil,
		m.PreviewRedeem != nil,
		m.TotalAssets != nil,
		m.TotalVaultTokenSupply != nil,
		m.ConvertToShares != nil,
		m.ConvertToAssets != nil,
		m.VaultExtension != nil,
	); err != nil {
		return err
	}
	switch {
	case m.PreviewDeposit != nil:
		return validateQueryAmount(m.PreviewDeposit.Amount)
	case m.PreviewRedeem != nil:
		return validateQueryAmount(m.PreviewRedeem.Amount)
	case m.ConvertToShares != nil:
		return validateQueryAmount(m.ConvertToShares.Amount)
	case m.ConvertToAssets != nil:
		return validateQueryAmount(m.ConvertToAssets.Amount)
	case m.VaultExtension != nil:
		return m.VaultExtension.ValidateBasic()
	}
	return nil
}

// DecodeExecuteMsg strictly decodes and validates an execute message.
// Unknown variants are rejected.
func DecodeExecuteMsg(bz []byte) (ExecuteMsg, error) {
	var msg ExecuteMsg
	if err := decodeStrict(bz, &msg); err != nil {
		return ExecuteMsg{}, err
	}
	return msg, msg.ValidateBasic()
}

// DecodeQueryMsg strictly decodes and validates a query message.
func DecodeQueryMsg(bz []byte) (QueryMsg, error) {
	var msg QueryMsg
	if err := decodeStrict(bz, &msg); err != nil {
		return QueryMsg{}, err
	}
	return msg, msg.ValidateBasic()
}

func decodeStrict(bz []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(bz))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Wrapf(ErrInvalidRequest, "failed to decode message: %s", err)
	}
	return nil
}

func exactlyOne(kind string, set ...bool) error {
	n := 0
	for _, s := range set {
		if s {
			n++
		}
	}
	if n != 1 {
		return errors.Wrapf(ErrInvalidRequest, "%s message must have exactly one variant set, got %d", kind, n)
	}
	return nil
}

func validateAmount(name string, amount sdkmath.Int) error {
	if amount.IsNil() || !amount.IsPositive() {
		return errors.Wrapf(ErrInvalidRequest, "%s must be positive: %s", name, amount)
	}
	return nil
}

// Queries accept zero: converting nothing yields nothing.
func validateQueryAmount(amount sdkmath.Int) error {
	if amount.IsNil() || amount.IsNegative() {
		return errors.Wrapf(ErrInvalidRequest, "amount must not be negative: %s", amount)
	}
	return nil
}

// ValidateAddress checks that addr is a well formed bech32 address of any prefix.
func ValidateAddress(addr string) error {
	if _, _, err := bech32.DecodeAndConvert(addr); err != nil {
		return fmt.Errorf("invalid address %q: %w", addr, err)
	}
	return nil
}

func validateOptionalAddress(field string, addr *string) error {
	if addr == nil {
		return nil
	}
	if err := ValidateAddress(*addr); err != nil {
		return errors.Wrapf(ErrInvalidRequest, "invalid %s: %s", field, err)
	}
	return nil
}

func validateAddresses(field string, addrs []string) error {
	for _, addr := range addrs {
		if err := ValidateAddress(addr); err != nil {
			return errors.Wrapf(ErrInvalidRequest, "invalid %s: %s", field, err)
		}
	}
	return nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// RecipientOr returns the recipient if set, otherwise fallback.
func RecipientOr(recipient *string, fallback string) string {
	if recipient == nil || *recipient == "" {
		return fallback
	}
	return *recipient
}

// DecodeInstantiateMsg strictly decodes and validates an instantiate message.
func DecodeInstantiateMsg(bz []byte) (InstantiateMsg, error) {
	var msg InstantiateMsg
	if err := decodeStrict(bz, &msg); err != nil {
		return InstantiateMsg{}, err
	}
	return msg, msg.ValidateBasic()
}
