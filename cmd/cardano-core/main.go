// Cardano hardware-wallet signing core CLI, for exercising key
// derivation, address rendering and native script hashing without a
// physical device attached.
package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/study/cardano-hw-signer/pkgs/address"
	"github.com/study/cardano-hw-signer/pkgs/bip39"
	"github.com/study/cardano-hw-signer/pkgs/cardanokey"
	"github.com/study/cardano-hw-signer/pkgs/hashbuilder"
	"github.com/study/cardano-hw-signer/pkgs/path"
)

const usage = `Cardano signing core CLI

Usage:
  cardano-core <command> [options]

Commands:
  derive       Derive an extended key and public key from a mnemonic and path
  address      Derive a Shelley or Byron address
  script-hash  Compute a native script's BLAKE2b-224 hash
  parse        Classify a derivation path

Examples:
  cardano-core derive --mnemonic "abandon ... about" --path "m/1852'/1815'/0'/0/0"
  cardano-core address --mnemonic "abandon ... about" --path "m/1852'/1815'/0'/0/0" --type enterprise
  cardano-core parse --path "m/1852'/1815'/0'/2/0"
`

func main() {
	if len(os.Args) < 2 {
		fmt.Print(usage)
		os.Exit(1)
	}

	switch os.Args[1] {
	case "derive":
		cmdDerive(os.Args[2:])
	case "address":
		cmdAddress(os.Args[2:])
	case "script-hash":
		cmdScriptHash(os.Args[2:])
	case "parse":
		cmdParse(os.Args[2:])
	case "help", "-h", "--help":
		fmt.Print(usage)
	default:
		fmt.Printf("Unknown command: %s\n\n", os.Args[1])
		fmt.Print(usage)
		os.Exit(1)
	}
}

// parsePathFlag accepts both the conventional m/1852'/1815'/0'/0/0 form
// and a bare list of hardened/non-hardened decimal indices.
func parsePathFlag(s string) (path.Path, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "m")
	s = strings.TrimPrefix(s, "/")
	if s == "" {
		return path.Path{}, nil
	}
	parts := strings.Split(s, "/")
	p := make(path.Path, 0, len(parts))
	for _, part := range parts {
		hardened := strings.HasSuffix(part, "'")
		part = strings.TrimSuffix(part, "'")
		n, err := strconv.ParseUint(part, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid path component %q: %w", part, err)
		}
		idx := uint32(n)
		if hardened {
			idx = path.Hardened(idx)
		}
		p = append(p, idx)
	}
	return p, nil
}

func deriveFromMnemonic(mnemonic string, p path.Path) (*cardanokey.ExtendedKey, error) {
	entropy, err := bip39.MnemonicToEntropy(mnemonic)
	if err != nil {
		return nil, fmt.Errorf("mnemonic: %w", err)
	}
	root, err := cardanokey.NewRootKey(entropy)
	if err != nil {
		return nil, fmt.Errorf("root key: %w", err)
	}
	return cardanokey.DerivePath(root, p)
}

func cmdDerive(args []string) {
	fs := flag.NewFlagSet("derive", flag.ExitOnError)
	mnemonic := fs.String("mnemonic", "", "Mnemonic phrase")
	pathStr := fs.String("path", "m/1852'/1815'/0'/0/0", "Derivation path")
	fs.Parse(args)

	if *mnemonic == "" {
		fmt.Println("Error: --mnemonic is required")
		os.Exit(1)
	}
	p, err := parsePathFlag(*pathStr)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	key, err := deriveFromMnemonic(*mnemonic, p)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	pub, err := cardanokey.PublicKeyBytes(key)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Path:       %s\n", p.String())
	fmt.Printf("Kind:       %s\n", path.Classify(p))
	fmt.Printf("Extended:   %s\n", hex.EncodeToString(key.Bytes()))
	fmt.Printf("Public key: %s\n", hex.EncodeToString(pub))
	fmt.Printf("Chain code: %s\n", hex.EncodeToString(key.ChainCode[:]))
}

func cmdAddress(args []string) {
	fs := flag.NewFlagSet("address", flag.ExitOnError)
	mnemonic := fs.String("mnemonic", "", "Mnemonic phrase")
	pathStr := fs.String("path", "m/1852'/1815'/0'/0/0", "Payment derivation path")
	stakePathStr := fs.String("stake-path", "m/1852'/1815'/0'/2/0", "Staking derivation path (base addresses only)")
	addrType := fs.String("type", "base", "Address type: base, enterprise, reward, byron")
	mainnet := fs.Bool("mainnet", true, "Mainnet (false for testnet)")
	fs.Parse(args)

	if *mnemonic == "" {
		fmt.Println("Error: --mnemonic is required")
		os.Exit(1)
	}
	p, err := parsePathFlag(*pathStr)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	paymentKey, err := deriveFromMnemonic(*mnemonic, p)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	paymentPub, err := cardanokey.PublicKeyBytes(paymentKey)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	network := address.NetworkTestnet
	if *mainnet {
		network = address.NetworkMainnet
	}

	var raw []byte
	var rendered string
	switch strings.ToLower(*addrType) {
	case "byron":
		xpub := append(append([]byte{}, paymentPub...), paymentKey.ChainCode[:]...)
		rendered, err = address.ByronAddress(paymentPub, &p, xpub)
	case "enterprise":
		raw, err = address.EnterpriseAddress(network, address.KeyCredential(paymentPub))
	case "reward":
		raw, err = address.RewardAddress(network, address.KeyCredential(paymentPub))
	case "base":
		stakePath, perr := parsePathFlag(*stakePathStr)
		if perr != nil {
			err = perr
			break
		}
		stakeKey, derr := deriveFromMnemonic(*mnemonic, stakePath)
		if derr != nil {
			err = derr
			break
		}
		stakePub, perr2 := cardanokey.PublicKeyBytes(stakeKey)
		if perr2 != nil {
			err = perr2
			break
		}
		raw, err = address.BaseAddress(network, address.KeyCredential(paymentPub), address.StakingKeyHash, address.KeyCredential(stakePub))
	default:
		err = fmt.Errorf("unknown address type %q", *addrType)
	}
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	if raw != nil {
		rendered, err = address.HumanReadable(raw)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	}

	fmt.Printf("Type:    %s\n", *addrType)
	fmt.Printf("Path:    %s\n", p.String())
	fmt.Printf("Address: %s\n", rendered)
}

func cmdScriptHash(args []string) {
	fs := flag.NewFlagSet("script-hash", flag.ExitOnError)
	n := fs.Int("all-of", 2, "Build an ALL script over n dummy pubkey-hash leaves")
	fs.Parse(args)

	b, err := hashbuilder.NewNativeScriptHashBuilder()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	if err := b.OpenAll(*n); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	for i := 0; i < *n; i++ {
		var h [28]byte
		h[27] = byte(i)
		if err := b.AddPubkey(h); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	}
	hash, err := b.Finalize()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("ALL[%d] script hash: %s\n", *n, hex.EncodeToString(hash[:]))
}

func cmdParse(args []string) {
	fs := flag.NewFlagSet("parse", flag.ExitOnError)
	pathStr := fs.String("path", "", "Derivation path to parse")
	fs.Parse(args)

	if *pathStr == "" {
		fmt.Println("Error: --path is required")
		os.Exit(1)
	}
	p, err := parsePathFlag(*pathStr)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	kind := path.Classify(p)
	fmt.Println("=== Derivation Path Info ===")
	fmt.Println()
	fmt.Printf("Path:       %s\n", p.String())
	fmt.Printf("Kind:       %s\n", kind)
	fmt.Printf("Reasonable: %v\n", path.IsReasonable(p))
}
