package hashbuilder

import (
	"encoding/hex"
	"testing"
)

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	if err != nil {
		t.Fatalf("hex.DecodeString(%q): %v", s, err)
	}
	return b
}

func TestTxHashBuilderRejectsOutOfOrderStages(t *testing.T) {
	b, err := NewTxHashBuilder(3)
	if err != nil {
		t.Fatalf("NewTxHashBuilder: %v", err)
	}
	if err := b.WriteInputs([]byte{0x80}); err != nil {
		t.Fatalf("WriteInputs: %v", err)
	}
	if err := b.WriteFee(1000); err != nil {
		t.Fatalf("WriteFee: %v", err)
	}
	if err := b.WriteOutputsHeader(1); err != ErrIllegalTransition {
		t.Errorf("WriteOutputsHeader after WriteFee: err = %v, want ErrIllegalTransition", err)
	}
}

func TestTxHashBuilderAllowsSkippingOptionalStages(t *testing.T) {
	b, err := NewTxHashBuilder(2)
	if err != nil {
		t.Fatalf("NewTxHashBuilder: %v", err)
	}
	if err := b.WriteInputs([]byte{0x80}); err != nil {
		t.Fatalf("WriteInputs: %v", err)
	}
	if err := b.WriteOutputsHeader(0); err != nil {
		t.Fatalf("WriteOutputsHeader: %v", err)
	}
	if err := b.WriteFee(500); err != nil {
		t.Fatalf("WriteFee: %v", err)
	}
	if err := b.WriteDonation(42); err != nil {
		t.Fatalf("WriteDonation (skipping everything between fee and donation): %v", err)
	}
	hash, err := b.Finalize()
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	var zero [32]byte
	if hash == zero {
		t.Error("Finalize returned an all-zero hash")
	}
}

func TestTxHashBuilderFinalizeRequiresFee(t *testing.T) {
	b, err := NewTxHashBuilder(1)
	if err != nil {
		t.Fatalf("NewTxHashBuilder: %v", err)
	}
	if err := b.WriteInputs([]byte{0x80}); err != nil {
		t.Fatalf("WriteInputs: %v", err)
	}
	if _, err := b.Finalize(); err != ErrIllegalTransition {
		t.Errorf("Finalize before fee: err = %v, want ErrIllegalTransition", err)
	}
}

func TestNativeScriptHashBuilderNestingAndDepth(t *testing.T) {
	b, err := NewNativeScriptHashBuilder()
	if err != nil {
		t.Fatalf("NewNativeScriptHashBuilder: %v", err)
	}
	if err := b.OpenAll(2); err != nil {
		t.Fatalf("OpenAll: %v", err)
	}
	var h1, h2 [28]byte
	h1[0], h2[0] = 0x01, 0x02
	if err := b.AddPubkey(h1); err != nil {
		t.Fatalf("AddPubkey: %v", err)
	}
	if err := b.AddPubkey(h2); err != nil {
		t.Fatalf("AddPubkey: %v", err)
	}
	hash, err := b.Finalize()
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	var zero [28]byte
	if hash == zero {
		t.Error("Finalize returned an all-zero hash")
	}
}

func TestNativeScriptHashBuilderRejectsUnclosedStack(t *testing.T) {
	b, err := NewNativeScriptHashBuilder()
	if err != nil {
		t.Fatalf("NewNativeScriptHashBuilder: %v", err)
	}
	if err := b.OpenAny(2); err != nil {
		t.Fatalf("OpenAny: %v", err)
	}
	var h [28]byte
	if err := b.AddPubkey(h); err != nil {
		t.Fatalf("AddPubkey: %v", err)
	}
	if _, err := b.Finalize(); err != ErrStackNotEmpty {
		t.Errorf("Finalize with one child still missing: err = %v, want ErrStackNotEmpty", err)
	}
}

func TestNativeScriptHashBuilderMaxDepth(t *testing.T) {
	b, err := NewNativeScriptHashBuilder()
	if err != nil {
		t.Fatalf("NewNativeScriptHashBuilder: %v", err)
	}
	for i := 0; i < MaxDepth; i++ {
		if err := b.OpenAll(1); err != nil {
			t.Fatalf("OpenAll at depth %d: %v", i, err)
		}
	}
	if err := b.OpenAll(1); err != ErrMaxDepthExceeded {
		t.Errorf("OpenAll past MaxDepth: err = %v, want ErrMaxDepthExceeded", err)
	}
}

func TestAuxDataHashBuilderCIP15RejectsVotingPurpose(t *testing.T) {
	b, err := NewAuxDataHashBuilder(false)
	if err != nil {
		t.Fatalf("NewAuxDataHashBuilder: %v", err)
	}
	if err := b.BeginPayload(); err != nil {
		t.Fatalf("BeginPayload: %v", err)
	}
	if err := b.WriteVoteKey(make([]byte, 32)); err != nil {
		t.Fatalf("WriteVoteKey: %v", err)
	}
	if err := b.WriteStakingKey(make([]byte, 32)); err != nil {
		t.Fatalf("WriteStakingKey: %v", err)
	}
	if err := b.WritePaymentAddress([]byte{0x61}); err != nil {
		t.Fatalf("WritePaymentAddress: %v", err)
	}
	if err := b.WriteNonce(1); err != nil {
		t.Fatalf("WriteNonce: %v", err)
	}
	if err := b.WriteVotingPurpose(0); err != ErrIllegalTransition {
		t.Errorf("WriteVotingPurpose under CIP-15: err = %v, want ErrIllegalTransition", err)
	}
}

func TestAuxDataHashBuilderCIP36PayloadHashAndConfirm(t *testing.T) {
	b, err := NewAuxDataHashBuilder(true)
	if err != nil {
		t.Fatalf("NewAuxDataHashBuilder: %v", err)
	}
	if err := b.BeginPayload(); err != nil {
		t.Fatalf("BeginPayload: %v", err)
	}
	if err := b.WriteVoteKey(make([]byte, 32)); err != nil {
		t.Fatalf("WriteVoteKey: %v", err)
	}
	if err := b.WriteStakingKey(make([]byte, 32)); err != nil {
		t.Fatalf("WriteStakingKey: %v", err)
	}
	if err := b.WritePaymentAddress([]byte{0x61}); err != nil {
		t.Fatalf("WritePaymentAddress: %v", err)
	}
	if err := b.WriteNonce(7); err != nil {
		t.Fatalf("WriteNonce: %v", err)
	}
	if err := b.WriteVotingPurpose(0); err != nil {
		t.Fatalf("WriteVotingPurpose: %v", err)
	}

	payloadHash := b.PayloadHash()
	var zero [32]byte
	if payloadHash == zero {
		t.Error("PayloadHash returned all-zero digest")
	}

	if err := b.Confirm(make([]byte, 64)); err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	finalHash, err := b.Finalize()
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if finalHash == payloadHash {
		t.Error("full auxiliary-data hash should differ from the payload-only hash")
	}
}

// TestAuxDataHashBuilderCIP15VectorMatchesKnownHashes reproduces a
// literal CIP-15 vote registration vector: a fixed vote key, staking
// key, payment address, and nonce must hash to an exact known
// payload-only digest, and after appending the known signature and an
// empty auxiliary-scripts array, to an exact known full digest.
func TestAuxDataHashBuilderCIP15VectorMatchesKnownHashes(t *testing.T) {
	voteKey := mustHex(t, "3B40265111D8BB3C3C608D95B3A0BF83461ACE32D79336579A1939B3AAD1C0B7")
	stakingKey := mustHex(t, "BC65BE1B0B9D7531778A1317C2AA6DE936963C3F9AC7D5EE9E9EDA25E0C97C5E")
	paymentAddress := mustHex(t, "0180F9E2C88E6C817008F3A812ED889B4A4DA8E0BD103F86E7335422AA122A946B9AD3D2DDF029D3A828F0468AECE76895F15C9EFBD69B4277")
	signature := mustHex(t, "0EA4A424522DD485F16466CD5A754F3C8DBD4D1976C912624E3465C540B1D0776C92633FC64BE057F947AAC561012FE55ACD3C54EF7BECE0DA0B90CF02DC760D")
	const nonce = 22634813
	const wantPayloadHash = "2eea6a5168066bda411f80be10b50646378616c3414c711a61d363c7879b5cbc"
	const wantFullHash = "07cdec3a795626019739f275582433eabe32da80f82aeb74e4916b547c01a589"

	b, err := NewAuxDataHashBuilder(false)
	if err != nil {
		t.Fatalf("NewAuxDataHashBuilder: %v", err)
	}
	if err := b.BeginPayload(); err != nil {
		t.Fatalf("BeginPayload: %v", err)
	}
	if err := b.WriteVoteKey(voteKey); err != nil {
		t.Fatalf("WriteVoteKey: %v", err)
	}
	if err := b.WriteStakingKey(stakingKey); err != nil {
		t.Fatalf("WriteStakingKey: %v", err)
	}
	if err := b.WritePaymentAddress(paymentAddress); err != nil {
		t.Fatalf("WritePaymentAddress: %v", err)
	}
	if err := b.WriteNonce(nonce); err != nil {
		t.Fatalf("WriteNonce: %v", err)
	}

	if got := hex.EncodeToString(b.PayloadHash()[:]); got != wantPayloadHash {
		t.Errorf("PayloadHash = %s, want %s", got, wantPayloadHash)
	}

	if err := b.Confirm(signature); err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if err := b.WriteAuxiliaryScripts([]byte{0x80}); err != nil { // empty native-script array
		t.Fatalf("WriteAuxiliaryScripts: %v", err)
	}
	finalHash, err := b.Finalize()
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if got := hex.EncodeToString(finalHash[:]); got != wantFullHash {
		t.Errorf("Finalize = %s, want %s", got, wantFullHash)
	}
}

// TestNativeScriptHashBuilderKnownVectors reproduces two literal native
// script hashes: a bare pubkey script, and a three-level nested
// all[1]{any[1]{n_of_k(0,0)}} compound script.
func TestNativeScriptHashBuilderKnownVectors(t *testing.T) {
	t.Run("pubkey", func(t *testing.T) {
		keyHashBytes := mustHex(t, "3a55d9f68255dfbefa1efd711f82d005fae1be2e145d616c90cf0fa9")
		const want = "855228f5ecececf9c85618007cc3c2e5bdf5e6d41ef8d6fa793fe0eb"

		b, err := NewNativeScriptHashBuilder()
		if err != nil {
			t.Fatalf("NewNativeScriptHashBuilder: %v", err)
		}
		var keyHash [28]byte
		copy(keyHash[:], keyHashBytes)
		if err := b.AddPubkey(keyHash); err != nil {
			t.Fatalf("AddPubkey: %v", err)
		}
		hash, err := b.Finalize()
		if err != nil {
			t.Fatalf("Finalize: %v", err)
		}
		if got := hex.EncodeToString(hash[:]); got != want {
			t.Errorf("Finalize = %s, want %s", got, want)
		}
	})

	t.Run("nested all any n_of_k", func(t *testing.T) {
		const want = "1f292766b9b0db263f8ecc087478f6aeea3c9fe091674153084e5668"

		b, err := NewNativeScriptHashBuilder()
		if err != nil {
			t.Fatalf("NewNativeScriptHashBuilder: %v", err)
		}
		if err := b.OpenAll(1); err != nil {
			t.Fatalf("OpenAll: %v", err)
		}
		if err := b.OpenAny(1); err != nil {
			t.Fatalf("OpenAny: %v", err)
		}
		if err := b.OpenNOfK(0, 0); err != nil {
			t.Fatalf("OpenNOfK: %v", err)
		}
		hash, err := b.Finalize()
		if err != nil {
			t.Fatalf("Finalize: %v", err)
		}
		if got := hex.EncodeToString(hash[:]); got != want {
			t.Errorf("Finalize = %s, want %s", got, want)
		}
	})
}

func TestVotecastHashBuilderOrdering(t *testing.T) {
	b, err := NewVotecastHashBuilder()
	if err != nil {
		t.Fatalf("NewVotecastHashBuilder: %v", err)
	}
	if err := b.WriteGovActionID([]byte{0x80}); err != ErrIllegalTransition {
		t.Errorf("WriteGovActionID before WriteVoter: err = %v, want ErrIllegalTransition", err)
	}
	if err := b.WriteVoter([]byte{0x82, 0x00, 0x01}); err != nil {
		t.Fatalf("WriteVoter: %v", err)
	}
	if err := b.WriteGovActionID([]byte{0x82, 0x40, 0x00}); err != nil {
		t.Fatalf("WriteGovActionID: %v", err)
	}
	if err := b.WriteVote([]byte{0x01}); err != nil {
		t.Fatalf("WriteVote: %v", err)
	}
	hash, err := b.Finalize()
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	var zero [32]byte
	if hash == zero {
		t.Error("Finalize returned an all-zero hash")
	}
}
