package signer

import (
	"github.com/study/cardano-hw-signer/pkgs/address"
	"github.com/study/cardano-hw-signer/pkgs/apdu"
	"github.com/study/cardano-hw-signer/pkgs/bufview"
	"github.com/study/cardano-hw-signer/pkgs/cardanokey"
	"github.com/study/cardano-hw-signer/pkgs/path"
)

// handleDeriveAddress builds and renders one address from a payment
// path and, for the address types that need one, a staking credential.
// Unlike SIGN_TX, address derivation carries no session state across
// calls: each request is independent and is not subject to the
// single-account guard, since browsing addresses across accounts is a
// legitimate host operation that never touches a witness.
//
// Payload layout: addressType(1) network(1) stakingSource(1)
// paymentPath(wire) <rest depends on addressType/stakingSource>:
//   - base address, StakingKeyPath:    stakingPath(wire)
//   - base address, Staking*Hash:      28-byte credential hash
//   - pointer address:                 varlen slot, txIndex, certIndex
//   - enterprise/reward/Byron:         nothing further
func (s *Session) handleDeriveAddress(f apdu.Frame) (apdu.Response, error) {
	v := bufview.New(f.Payload)
	addrType, err := v.ReadU8()
	if err != nil {
		return apdu.Fail(apdu.ErrInvalidData), apdu.ErrInvalidData
	}
	network, err := v.ReadU8()
	if err != nil {
		return apdu.Fail(apdu.ErrInvalidData), apdu.ErrInvalidData
	}
	stakingSource, err := v.ReadU8()
	if err != nil {
		return apdu.Fail(apdu.ErrInvalidData), apdu.ErrInvalidData
	}

	paymentPath, err := path.Parse(v)
	if err != nil {
		return apdu.Fail(apdu.ErrInvalidPath), apdu.ErrInvalidPath
	}
	paymentKey, err := cardanokey.DerivePath(s.root, paymentPath)
	if err != nil {
		return apdu.Fail(err), err
	}
	paymentPub, err := cardanokey.PublicKeyBytes(paymentKey)
	if err != nil {
		return apdu.Fail(err), err
	}
	paymentCred := address.KeyCredential(paymentPub)

	switch address.AddressType(addrType) {
	case address.Byron:
		xpub := make([]byte, 0, 64)
		xpub = append(xpub, paymentPub...)
		xpub = append(xpub, paymentKey.ChainCode[:]...)
		addr, err := address.ByronAddress(paymentPub, &paymentPath, xpub)
		if err != nil {
			return apdu.Fail(err), err
		}
		return apdu.Success([]byte(addr)), nil

	case address.EnterpriseKey, address.EnterpriseScript:
		raw, err := address.EnterpriseAddress(network, paymentCred)
		if err != nil {
			return apdu.Fail(err), err
		}
		return s.renderShelley(raw)

	case address.RewardKey, address.RewardScript:
		raw, err := address.RewardAddress(network, paymentCred)
		if err != nil {
			return apdu.Fail(err), err
		}
		return s.renderShelley(raw)

	case address.PointerKey, address.PointerScript:
		slot, err := v.ReadVarLenUint()
		if err != nil {
			return apdu.Fail(apdu.ErrInvalidData), apdu.ErrInvalidData
		}
		txIndex, err := v.ReadVarLenUint()
		if err != nil {
			return apdu.Fail(apdu.ErrInvalidData), apdu.ErrInvalidData
		}
		certIndex, err := v.ReadVarLenUint()
		if err != nil {
			return apdu.Fail(apdu.ErrInvalidData), apdu.ErrInvalidData
		}
		raw, err := address.PointerAddress(network, paymentCred, address.Pointer{
			Slot: slot, TxIndex: txIndex, CertIndex: certIndex,
		})
		if err != nil {
			return apdu.Fail(err), err
		}
		return s.renderShelley(raw)

	default:
		stakeCred, err := s.resolveStakeCredential(v, address.StakingDataSource(stakingSource))
		if err != nil {
			return apdu.Fail(err), err
		}
		raw, err := address.BaseAddress(network, paymentCred, address.StakingDataSource(stakingSource), stakeCred)
		if err != nil {
			return apdu.Fail(err), err
		}
		return s.renderShelley(raw)
	}
}

func (s *Session) resolveStakeCredential(v *bufview.View, source address.StakingDataSource) (address.Credential, error) {
	switch source {
	case address.StakingKeyPath:
		stakingPath, err := path.Parse(v)
		if err != nil {
			return address.Credential{}, apdu.ErrInvalidPath
		}
		stakingKey, err := cardanokey.DerivePath(s.root, stakingPath)
		if err != nil {
			return address.Credential{}, err
		}
		pub, err := cardanokey.PublicKeyBytes(stakingKey)
		if err != nil {
			return address.Credential{}, err
		}
		return address.KeyCredential(pub), nil
	case address.StakingKeyHash:
		hash, err := v.ReadBytes(address.HashSize)
		if err != nil {
			return address.Credential{}, apdu.ErrInvalidData
		}
		var c address.Credential
		c.Kind = address.CredentialKeyHash
		copy(c.Hash[:], hash)
		return c, nil
	case address.StakingScriptHash:
		hash, err := v.ReadBytes(address.HashSize)
		if err != nil {
			return address.Credential{}, apdu.ErrInvalidData
		}
		var h [address.HashSize]byte
		copy(h[:], hash)
		return address.ScriptCredential(h), nil
	default:
		return address.Credential{}, apdu.ErrUnsupportedAddressType
	}
}

func (s *Session) renderShelley(raw []byte) (apdu.Response, error) {
	text, err := address.HumanReadable(raw)
	if err != nil {
		return apdu.Fail(err), err
	}
	return apdu.Success([]byte(text)), nil
}

// handleDeriveNativeScriptHash drives NativeScriptHashBuilder across
// one or more frames: P1 selects opening a compound level, adding a
// simple leaf, or finishing and returning the 28-byte script hash.
// A compound payload is a sub-tag then a big-endian u32 arity (N-of-K
// adds a second u32); a simple payload is a sub-tag then a 28-byte key
// hash or a big-endian u64 slot.
func (s *Session) handleDeriveNativeScriptHash(f apdu.Frame) (apdu.Response, error) {
	if s.nativeScript == nil {
		b, err := newNativeScriptBuilder()
		if err != nil {
			return apdu.Fail(err), err
		}
		s.nativeScript = b
	}

	v := bufview.New(f.Payload)
	switch f.P1 {
	case apdu.P1CompoundStart:
		if err := s.driveCompoundOpen(v); err != nil {
			return apdu.Fail(err), err
		}
		return apdu.Success(nil), nil
	case apdu.P1SimpleScript:
		if err := s.driveSimpleScript(v); err != nil {
			return apdu.Fail(err), err
		}
		return apdu.Success(nil), nil
	case apdu.P1Finish:
		hash, err := s.nativeScript.Finalize()
		if err != nil {
			return apdu.Fail(err), err
		}
		s.nativeScript = nil
		return apdu.Success(hash[:]), nil
	default:
		return apdu.Fail(apdu.ErrInvalidRequestParameters), apdu.ErrInvalidRequestParameters
	}
}
