package utils

import (
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/cometbft/cometbft/crypto/secp256k1"
)

type Address struct {
	Bytes  []byte
	Bech32 string
}

// NewAddress generates a fresh secp256k1 account address with the given
// bech32 prefix.
func NewAddress(prefix string) Address {
	key := secp256k1.GenPrivKey()
	bytes := key.PubKey().Address().Bytes()

	return Address{
		Bytes:  bytes,
		Bech32: generateAddress(prefix, bytes),
	}
}

func TestAddress() Address {
	return NewAddress("cosmos")
}

func TestOsmoAddress() Address {
	return NewAddress("osmo")
}

func generateAddress(prefix string, bytes []byte) string {
	address, err := sdk.Bech32ifyAddressBytes(prefix, bytes)
	if err != nil {
		panic("error during " + prefix + " address creation")
	}
	return address
}
