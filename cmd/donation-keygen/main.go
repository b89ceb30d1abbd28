package main

import (
	"encoding/hex"
	"fmt"
	"os"

	"donorchain/crypto"
)

// Generates a fresh keypair and prints the bech32 address alongside the hex
// private key, for bootstrapping an administrator identity.
func main() {
	key, err := crypto.GeneratePrivateKey()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to generate key: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("address:     %s\n", key.PubKey().Address().String())
	fmt.Printf("private key: %s\n", hex.EncodeToString(key.Bytes()))
}
