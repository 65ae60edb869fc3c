// Package chain is a runner backed by a live wasmd chain. It signs with keys
// from a keyring, broadcasts wasm messages over RPC and waits for them to
// be committed.
package chain

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/provlabs/vault-standard/runner"

	"cosmossdk.io/log"
	"cosmossdk.io/math"

	"github.com/cosmos/cosmos-sdk/client"
	"github.com/cosmos/cosmos-sdk/client/tx"
	"github.com/cosmos/cosmos-sdk/crypto/keyring"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/cosmos/cosmos-sdk/types/tx/signing"
	authtypes "github.com/cosmos/cosmos-sdk/x/auth/types"
	banktypes "github.com/cosmos/cosmos-sdk/x/bank/types"

	wasmtypes "github.com/CosmWasm/wasmd/x/wasm/types"
	abci "github.com/cometbft/cometbft/abci/types"
	coretypes "github.com/cometbft/cometbft/rpc/core/types"
)

// Chain is a runner.Runner talking to a node.
type Chain struct {
	clientCtx client.Context
	opts      Options
	logger    log.Logger
}

var _ runner.Runner = (*Chain)(nil)

// New connects to the node in opts. Keys are read from the keyring in
// opts.KeyringDir.
func New(opts Options, logger log.Logger) (*Chain, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.NewNopLogger()
	}
	setAddressPrefixes(opts.Bech32Prefix)

	encCfg := MakeEncodingConfig(opts.Bech32Prefix)
	node, err := client.NewClientFromNode(opts.NodeURI)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", opts.NodeURI, err)
	}
	kr, err := keyring.New(sdk.KeyringServiceName(), opts.KeyringBackend, opts.KeyringDir, os.Stdin, encCfg.Codec)
	if err != nil {
		return nil, fmt.Errorf("failed to open keyring: %w", err)
	}

	clientCtx := client.Context{}.
		WithChainID(opts.ChainID).
		WithNodeURI(opts.NodeURI).
		WithClient(node).
		WithKeyring(kr).
		WithOutputFormat("json").
		WithInterfaceRegistry(encCfg.InterfaceRegistry).
		WithTxConfig(encCfg.TxConfig).
		WithCodec(encCfg.Codec).
		WithLegacyAmino(encCfg.Amino).
		WithAccountRetriever(authtypes.AccountRetriever{})

	return &Chain{
		clientCtx: clientCtx,
		opts:      opts,
		logger:    logger.With("module", "chain"),
	}, nil
}

// ClientContext returns the client context used to sign and query.
func (c *Chain) ClientContext() client.Context {
	return c.clientCtx
}

func (c *Chain) StoreCode(ctx context.Context, code runner.ContractType, signer runner.Account) (uint64, error) {
	if !code.IsArtifact() {
		return 0, fmt.Errorf("a chain can only store wasm artifacts")
	}
	wasm, err := os.ReadFile(code.WasmPath)
	if err != nil {
		return 0, fmt.Errorf("failed to read %s: %w", code.WasmPath, err)
	}

	res, err := c.broadcast(ctx, signer, func(sender string) sdk.Msg {
		return &wasmtypes.MsgStoreCode{Sender: sender, WASMByteCode: wasm}
	})
	if err != nil {
		return 0, err
	}
	codeID, err := GetCodeID(res.TxResult.Events)
	if err != nil {
		return 0, err
	}
	c.logger.Info("stored code", "code_id", codeID, "path", code.WasmPath, "tx", res.Hash.String())
	return codeID, nil
}

func (c *Chain) Instantiate(ctx context.Context, codeID uint64, msg any, admin, label string, funds sdk.Coins, signer runner.Account) (string, error) {
	bz, err := json.Marshal(msg)
	if err != nil {
		return "", err
	}
	res, err := c.broadcast(ctx, signer, func(sender string) sdk.Msg {
		return &wasmtypes.MsgInstantiateContract{
			Sender: sender,
			Admin:  admin,
			CodeID: codeID,
			Label:  label,
			Msg:    bz,
			Funds:  funds,
		}
	})
	if err != nil {
		return "", err
	}
	addr, err := GetContractAddress(res.TxResult.Events)
	if err != nil {
		return "", err
	}
	c.logger.Info("instantiated contract", "code_id", codeID, "address", addr, "label", label)
	return addr, nil
}

func (c *Chain) Execute(ctx context.Context, contract string, msg any, funds sdk.Coins, signer runner.Account) (*runner.ExecuteResponse, error) {
	bz, err := json.Marshal(msg)
	if err != nil {
		return nil, err
	}
	res, err := c.broadcast(ctx, signer, func(sender string) sdk.Msg {
		return &wasmtypes.MsgExecuteContract{Sender: sender, Contract: contract, Msg: bz, Funds: funds}
	})
	if err != nil {
		return nil, err
	}
	data, err := c.executeData(res.TxResult.Data)
	if err != nil {
		return nil, err
	}
	return &runner.ExecuteResponse{
		TxHash:  res.Hash.String(),
		GasUsed: res.TxResult.GasUsed,
		Data:    data,
		Events:  res.TxResult.Events,
	}, nil
}

func (c *Chain) QuerySmart(ctx context.Context, contract string, msg any, resp any) error {
	bz, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	res, err := wasmtypes.NewQueryClient(c.clientCtx).SmartContractState(ctx, &wasmtypes.QuerySmartContractStateRequest{
		Address:   contract,
		QueryData: bz,
	})
	if err != nil {
		return fmt.Errorf("failed to query %s: %w", contract, err)
	}
	return json.Unmarshal(res.Data, resp)
}

func (c *Chain) QueryRaw(ctx context.Context, contract string, key []byte) ([]byte, error) {
	res, err := wasmtypes.NewQueryClient(c.clientCtx).RawContractState(ctx, &wasmtypes.QueryRawContractStateRequest{
		Address:   contract,
		QueryData: key,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read raw state of %s: %w", contract, err)
	}
	if len(res.Data) == 0 {
		return nil, nil
	}
	return res.Data, nil
}

func (c *Chain) QueryBalance(ctx context.Context, addr, denom string) (sdk.Coin, error) {
	res, err := banktypes.NewQueryClient(c.clientCtx).Balance(ctx, &banktypes.QueryBalanceRequest{Address: addr, Denom: denom})
	if err != nil {
		return sdk.Coin{}, fmt.Errorf("failed to query balance of %s: %w", addr, err)
	}
	if res.Balance == nil {
		return sdk.NewCoin(denom, math.ZeroInt()), nil
	}
	return *res.Balance, nil
}

// broadcast signs the message built for signer's address, broadcasts it and
// waits for it to be committed. A transaction rejected at check or delivery
// is returned as a *TxError.
func (c *Chain) broadcast(ctx context.Context, signer runner.Account, build func(sender string) sdk.Msg) (*coretypes.ResultBroadcastTxCommit, error) {
	ctx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	clientCtx, err := c.withFrom(signer)
	if err != nil {
		return nil, err
	}
	msg := build(clientCtx.FromAddress.String())

	txf, err := c.txFactory(clientCtx).Prepare(clientCtx)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare tx: %w", err)
	}
	if txf.SimulateAndExecute() {
		_, adjusted, err := tx.CalculateGas(clientCtx, txf, msg)
		if err != nil {
			return nil, fmt.Errorf("failed to simulate tx: %w", err)
		}
		txf = txf.WithGas(adjusted)
	}

	txBuilder, err := txf.BuildUnsignedTx(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to build tx: %w", err)
	}
	if err := tx.Sign(ctx, txf, clientCtx.FromName, txBuilder, true); err != nil {
		return nil, fmt.Errorf("failed to sign tx: %w", err)
	}
	txBytes, err := clientCtx.TxConfig.TxEncoder()(txBuilder.GetTx())
	if err != nil {
		return nil, fmt.Errorf("failed to encode tx: %w", err)
	}

	node, err := clientCtx.GetNode()
	if err != nil {
		return nil, err
	}
	res, err := node.BroadcastTxCommit(ctx, txBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to broadcast tx: %w", err)
	}
	if res.CheckTx.Code != abci.CodeTypeOK {
		return nil, &TxError{Hash: res.Hash.String(), Codespace: res.CheckTx.Codespace, Code: res.CheckTx.Code, Log: res.CheckTx.Log}
	}
	if res.TxResult.Code != abci.CodeTypeOK {
		return nil, &TxError{Hash: res.Hash.String(), Codespace: res.TxResult.Codespace, Code: res.TxResult.Code, Log: res.TxResult.Log}
	}
	c.logger.Debug("tx committed", "hash", res.Hash.String(), "height", res.Height, "gas_used", res.TxResult.GasUsed)
	return res, nil
}

func (c *Chain) txFactory(clientCtx client.Context) tx.Factory {
	return tx.Factory{}.
		WithChainID(clientCtx.ChainID).
		WithKeybase(clientCtx.Keyring).
		WithTxConfig(clientCtx.TxConfig).
		WithAccountRetriever(clientCtx.AccountRetriever).
		WithSimulateAndExecute(c.opts.Simulate).
		WithSignMode(signing.SignMode_SIGN_MODE_DIRECT).
		WithGas(c.opts.Gas).
		WithGasAdjustment(c.opts.GasAdjustment).
		WithGasPrices(c.opts.GasPrice).
		WithFromName(clientCtx.FromName)
}

// withFrom resolves signer in the keyring, by key name when it has one and
// by address otherwise.
func (c *Chain) withFrom(signer runner.Account) (client.Context, error) {
	var record *keyring.Record
	var err error
	if signer.KeyName != "" {
		record, err = c.clientCtx.Keyring.Key(signer.KeyName)
	} else {
		var addr sdk.AccAddress
		addr, err = sdk.AccAddressFromBech32(signer.Address)
		if err != nil {
			return client.Context{}, fmt.Errorf("invalid signer address %q: %w", signer.Address, err)
		}
		record, err = c.clientCtx.Keyring.KeyByAddress(addr)
	}
	if err != nil {
		return client.Context{}, fmt.Errorf("signer %s not found in keyring: %w", signer.Address, err)
	}
	addr, err := record.GetAddress()
	if err != nil {
		return client.Context{}, err
	}
	return c.clientCtx.WithFrom(record.Name).WithFromName(record.Name).WithFromAddress(addr), nil
}

// executeData extracts the contract's response data from a committed
// MsgExecuteContract.
func (c *Chain) executeData(txData []byte) ([]byte, error) {
	var msgData sdk.TxMsgData
	if err := c.clientCtx.Codec.Unmarshal(txData, &msgData); err != nil {
		return nil, fmt.Errorf("failed to decode tx data: %w", err)
	}
	if len(msgData.MsgResponses) == 0 {
		return nil, nil
	}
	var resp wasmtypes.MsgExecuteContractResponse
	if err := resp.Unmarshal(msgData.MsgResponses[0].Value); err != nil {
		return nil, fmt.Errorf("failed to decode execute response: %w", err)
	}
	return resp.Data, nil
}

// TxError is a transaction the chain rejected.
type TxError struct {
	Hash      string
	Codespace string
	Code      uint32
	Log       string
}

func (e *TxError) Error() string {
	return fmt.Sprintf("tx %s failed with %s code %d: %s", e.Hash, e.Codespace, e.Code, e.Log)
}

// GetCodeID returns the code id of a committed MsgStoreCode.
func GetCodeID(events []abci.Event) (uint64, error) {
	value, ok := runner.FindAttribute(events, wasmtypes.EventTypeStoreCode, wasmtypes.AttributeKeyCodeID)
	if !ok {
		return 0, fmt.Errorf("%s not found in %s event", wasmtypes.AttributeKeyCodeID, wasmtypes.EventTypeStoreCode)
	}
	return strconv.ParseUint(value, 10, 64)
}

// GetContractAddress returns the address of a contract instantiated by a
// committed MsgInstantiateContract.
func GetContractAddress(events []abci.Event) (string, error) {
	value, ok := runner.FindAttribute(events, wasmtypes.EventTypeInstantiate, wasmtypes.AttributeKeyContractAddr)
	if !ok {
		return "", fmt.Errorf("%s not found in %s event", wasmtypes.AttributeKeyContractAddr, wasmtypes.EventTypeInstantiate)
	}
	return value, nil
}

func setAddressPrefixes(prefix string) {
	config := sdk.GetConfig()
	if config.GetBech32AccountAddrPrefix() == prefix {
		return
	}
	config.SetBech32PrefixForAccount(prefix, prefix+sdk.PrefixPublic)
	config.SetBech32PrefixForValidator(prefix+sdk.PrefixValidator+sdk.PrefixOperator, prefix+sdk.PrefixValidator+sdk.PrefixOperator+sdk.PrefixPublic)
	config.SetBech32PrefixForConsensusNode(prefix+sdk.PrefixValidator+sdk.PrefixConsensus, prefix+sdk.PrefixValidator+sdk.PrefixConsensus+sdk.PrefixPublic)
}
