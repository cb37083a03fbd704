package signer

import (
	"bytes"
	"testing"

	"github.com/study/cardano-hw-signer/pkgs/apdu"
	"github.com/study/cardano-hw-signer/pkgs/bip39"
	"github.com/study/cardano-hw-signer/pkgs/cardanokey"
	"github.com/study/cardano-hw-signer/pkgs/path"
	"github.com/study/cardano-hw-signer/pkgs/policy"
)

const zeroMnemonic24 = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon art"

func testSession(t *testing.T) *Session {
	t.Helper()
	entropy, err := bip39.MnemonicToEntropy(zeroMnemonic24)
	if err != nil {
		t.Fatalf("MnemonicToEntropy: %v", err)
	}
	root, err := cardanokey.NewRootKey(entropy)
	if err != nil {
		t.Fatalf("NewRootKey: %v", err)
	}
	return NewSession(root)
}

func frame(ins apdu.Instruction, p1, p2 byte, payload []byte) apdu.Frame {
	return apdu.Frame{Ins: ins, P1: p1, P2: p2, Payload: payload}
}

func initPayload(mode policy.SigningMode, bodyItemCount byte, mint, collateral, scriptData bool) []byte {
	b := func(v bool) byte {
		if v {
			return 1
		}
		return 0
	}
	return []byte{
		policy.NetworkIDMainnet,
		0x2d, 0x96, 0x4a, 0x09, // 764824073 big-endian
		byte(mode),
		bodyItemCount,
		b(mint), b(collateral), b(scriptData),
	}
}

func TestHandleAPDUGetVersionAndSerial(t *testing.T) {
	s := testSession(t)
	resp, err := s.HandleAPDU(frame(apdu.InsGetVersion, 0, 0, nil))
	if err != nil || resp.SW != apdu.SWSuccess || len(resp.Data) != 4 {
		t.Fatalf("GetVersion: resp=%+v err=%v", resp, err)
	}
	resp, err = s.HandleAPDU(frame(apdu.InsGetSerial, 0, 0, nil))
	if err != nil || resp.SW != apdu.SWSuccess || len(resp.Data) != 7 {
		t.Fatalf("GetSerial: resp=%+v err=%v", resp, err)
	}
}

func wirePath(p path.Path) []byte {
	return p.AppendWire(nil)
}

func TestHandleAPDUGetPublicKeys(t *testing.T) {
	s := testSession(t)
	p := path.Path{path.Hardened(1852), path.Hardened(1815), path.Hardened(0), 0, 0}
	resp, err := s.HandleAPDU(frame(apdu.InsGetPublicKeys, 0, 0, wirePath(p)))
	if err != nil {
		t.Fatalf("GetPublicKeys: %v", err)
	}
	if resp.SW != apdu.SWSuccess {
		t.Fatalf("SW = %x, want success", resp.SW)
	}
	if len(resp.Data) != 32+32 {
		t.Fatalf("response length = %d, want 64", len(resp.Data))
	}
}

func TestSignTxRejectsMainnetMagicMismatch(t *testing.T) {
	s := testSession(t)
	payload := initPayload(policy.ModeOrdinary, 3, false, false, false)
	payload[1], payload[2], payload[3], payload[4] = 0, 0, 0, 1 // magic = 1, wrong for mainnet
	resp, err := s.HandleAPDU(frame(apdu.InsSignTx, 0, 0, payload))
	if err != apdu.ErrRejectedByPolicy {
		t.Fatalf("err = %v, want ErrRejectedByPolicy", err)
	}
	if resp.SW != apdu.SWRejectedByPolicy {
		t.Fatalf("SW = %x, want SWRejectedByPolicy", resp.SW)
	}
}

func TestSignTxHappyPathToWitness(t *testing.T) {
	s := testSession(t)

	// Stage 0: INIT (3 body items: inputs, outputs, fee).
	if resp, err := s.HandleAPDU(frame(apdu.InsSignTx, 0, 0, initPayload(policy.ModeOrdinary, 3, false, false, false))); err != nil || resp.SW != apdu.SWSuccess {
		t.Fatalf("INIT: resp=%+v err=%v", resp, err)
	}

	// Stage 2: INPUTS (p2=2, since AUX_DATA is stage 1 and optional/skippable).
	inputsCBOR := []byte{0x81, 0x82, 0x58, 0x00, 0x00} // array(1) of a dummy input
	if resp, err := s.HandleAPDU(frame(apdu.InsSignTx, 0, 2, inputsCBOR)); err != nil || resp.SW != apdu.SWSuccess {
		t.Fatalf("INPUTS: resp=%+v err=%v", resp, err)
	}

	// Stage 3: OUTPUTS header, then one legacy-form output field by
	// field: begin (format + address), coin-only amount, finish.
	header := []byte{0, 0, 0, 0, 0, 0, 0, 1} // u64 count = 1
	if resp, err := s.HandleAPDU(frame(apdu.InsSignTx, p1Header, 3, header)); err != nil || resp.SW != apdu.SWSuccess {
		t.Fatalf("OUTPUTS header: resp=%+v err=%v", resp, err)
	}
	outputBegin := append([]byte{outputFormatLegacy}, 0xAA)
	if resp, err := s.HandleAPDU(frame(apdu.InsSignTx, p1OutputBegin, 3, outputBegin)); err != nil || resp.SW != apdu.SWSuccess {
		t.Fatalf("OUTPUTS begin: resp=%+v err=%v", resp, err)
	}
	outputAmount := []byte{0, 0, 0, 0, 0, 0, 0, 1} // coin = 1
	if resp, err := s.HandleAPDU(frame(apdu.InsSignTx, p1OutputAmount, 3, outputAmount)); err != nil || resp.SW != apdu.SWSuccess {
		t.Fatalf("OUTPUTS amount: resp=%+v err=%v", resp, err)
	}
	if resp, err := s.HandleAPDU(frame(apdu.InsSignTx, p1OutputFinish, 3, nil)); err != nil || resp.SW != apdu.SWSuccess {
		t.Fatalf("OUTPUTS finish: resp=%+v err=%v", resp, err)
	}

	// Stage 4: FEE.
	fee := []byte{0, 0, 0, 0, 0, 0, 0x04, 0x00} // 1024
	if resp, err := s.HandleAPDU(frame(apdu.InsSignTx, 0, 4, fee)); err != nil || resp.SW != apdu.SWSuccess {
		t.Fatalf("FEE: resp=%+v err=%v", resp, err)
	}

	// Stage 19 (StageConfirm relative p2): confirm and finalize.
	confirmP2 := byte(StageConfirm - StageInit)
	resp, err := s.HandleAPDU(frame(apdu.InsSignTx, 0, confirmP2, nil))
	if err != nil || resp.SW != apdu.SWSuccess || len(resp.Data) != 32 {
		t.Fatalf("CONFIRM: resp=%+v err=%v", resp, err)
	}

	// WITNESSES.
	witnessP2 := byte(StageWitnesses - StageInit)
	p := path.Path{path.Hardened(1852), path.Hardened(1815), path.Hardened(0), 0, 0}
	witnessPayload := append(wirePath(p), 0) // hashOnlyStakeCredential = false
	resp, err = s.HandleAPDU(frame(apdu.InsSignTx, 0, witnessP2, witnessPayload))
	if err != nil {
		t.Fatalf("WITNESSES: %v", err)
	}
	if resp.SW != apdu.SWSuccess || len(resp.Data) != cardanokey.SignatureSize {
		t.Fatalf("witness response = %+v, want a %d-byte signature", resp, cardanokey.SignatureSize)
	}
}

func TestSignTxRejectsOutOfOrderStage(t *testing.T) {
	s := testSession(t)
	if resp, err := s.HandleAPDU(frame(apdu.InsSignTx, 0, 0, initPayload(policy.ModeOrdinary, 3, false, false, false))); err != nil || resp.SW != apdu.SWSuccess {
		t.Fatalf("INIT: resp=%+v err=%v", resp, err)
	}
	// Jump straight to fee, skipping inputs/outputs: legal (a skip is a
	// forward move), and the TxHashBuilder accepts it too, since it only
	// enforces ordinal monotonicity and not "inputs first". What this
	// exercises is that a *backward* move is rejected.
	feeP2 := byte(StageFee - StageInit)
	if _, err := s.HandleAPDU(frame(apdu.InsSignTx, 0, feeP2, []byte{0, 0, 0, 0, 0, 0, 0, 1})); err != nil {
		t.Fatalf("forward skip to FEE should succeed, got %v", err)
	}
	inputsP2 := byte(StageInputs - StageInit)
	resp, err := s.HandleAPDU(frame(apdu.InsSignTx, 0, inputsP2, []byte{0x80}))
	if err != apdu.ErrBadState {
		t.Fatalf("backward move to INPUTS after FEE: err = %v, want ErrBadState", err)
	}
	if resp.SW != apdu.SWBadState {
		t.Fatalf("SW = %x, want SWBadState", resp.SW)
	}
}

func TestSignTxWitnessBeforeConfirmIsBadState(t *testing.T) {
	s := testSession(t)
	if resp, err := s.HandleAPDU(frame(apdu.InsSignTx, 0, 0, initPayload(policy.ModeOrdinary, 3, false, false, false))); err != nil || resp.SW != apdu.SWSuccess {
		t.Fatalf("INIT: resp=%+v err=%v", resp, err)
	}
	p := path.Path{path.Hardened(1852), path.Hardened(1815), path.Hardened(0), 0, 0}
	witnessP2 := byte(StageWitnesses - StageInit)
	resp, err := s.HandleAPDU(frame(apdu.InsSignTx, 0, witnessP2, append(wirePath(p), 0)))
	if err != apdu.ErrBadState {
		t.Fatalf("witness before confirm: err = %v, want ErrBadState", err)
	}
	if resp.SW != apdu.SWBadState {
		t.Fatalf("SW = %x, want SWBadState", resp.SW)
	}
}

func TestDeriveAddressEnterprise(t *testing.T) {
	s := testSession(t)
	p := path.Path{path.Hardened(1852), path.Hardened(1815), path.Hardened(0), 0, 0}
	payload := []byte{0x06, 0x01, 0x00} // addrType=EnterpriseKey, network=mainnet, stakingSource=0(unused)
	payload = append(payload, wirePath(p)...)
	resp, err := s.HandleAPDU(frame(apdu.InsDeriveAddress, apdu.P1ReturnAddress, 0, payload))
	if err != nil {
		t.Fatalf("DeriveAddress: %v", err)
	}
	if resp.SW != apdu.SWSuccess {
		t.Fatalf("SW = %x, want success", resp.SW)
	}
	if !bytes.HasPrefix(resp.Data, []byte("addr1")) {
		t.Errorf("address = %q, want addr1 prefix", resp.Data)
	}
}

func TestDeriveAddressByron(t *testing.T) {
	s := testSession(t)
	p := path.Path{path.Hardened(44), path.Hardened(1815), path.Hardened(0), 0, 0}
	payload := []byte{byte(0x08), 0x01, 0x00} // addrType=Byron
	payload = append(payload, wirePath(p)...)
	resp, err := s.HandleAPDU(frame(apdu.InsDeriveAddress, apdu.P1ReturnAddress, 0, payload))
	if err != nil {
		t.Fatalf("DeriveAddress (Byron): %v", err)
	}
	if resp.SW != apdu.SWSuccess || len(resp.Data) == 0 {
		t.Fatalf("resp = %+v", resp)
	}
}

func TestDeriveNativeScriptHashAllOfTwoPubkeys(t *testing.T) {
	s := testSession(t)
	openAll := []byte{compoundAll, 0, 0, 0, 2}
	if resp, err := s.HandleAPDU(frame(apdu.InsDeriveNativeScriptHash, apdu.P1CompoundStart, 0, openAll)); err != nil || resp.SW != apdu.SWSuccess {
		t.Fatalf("open ALL[2]: resp=%+v err=%v", resp, err)
	}
	leaf := append([]byte{simplePubkey}, make([]byte, 28)...)
	if resp, err := s.HandleAPDU(frame(apdu.InsDeriveNativeScriptHash, apdu.P1SimpleScript, 0, leaf)); err != nil || resp.SW != apdu.SWSuccess {
		t.Fatalf("leaf 1: resp=%+v err=%v", resp, err)
	}
	leaf2 := append([]byte{simplePubkey}, bytes.Repeat([]byte{0x01}, 28)...)
	if resp, err := s.HandleAPDU(frame(apdu.InsDeriveNativeScriptHash, apdu.P1SimpleScript, 0, leaf2)); err != nil || resp.SW != apdu.SWSuccess {
		t.Fatalf("leaf 2: resp=%+v err=%v", resp, err)
	}
	resp, err := s.HandleAPDU(frame(apdu.InsDeriveNativeScriptHash, apdu.P1Finish, 0, nil))
	if err != nil || resp.SW != apdu.SWSuccess || len(resp.Data) != 28 {
		t.Fatalf("finish: resp=%+v err=%v", resp, err)
	}
}

func TestSignMsg(t *testing.T) {
	s := testSession(t)
	p := path.Path{path.Hardened(1852), path.Hardened(1815), path.Hardened(0), 0, 0}
	payload := append(wirePath(p), []byte("hello cardano")...)
	resp, err := s.HandleAPDU(frame(apdu.InsSignMsg, 0, 0, payload))
	if err != nil || resp.SW != apdu.SWSuccess || len(resp.Data) != cardanokey.SignatureSize {
		t.Fatalf("SignMsg: resp=%+v err=%v", resp, err)
	}
}

func TestSignTxUserRejectsPromptedInit(t *testing.T) {
	s := testSession(t)
	s.UserDecision = func(prompt string) bool { return false }
	payload := initPayload(policy.ModeOrdinary, 3, false, false, false)
	resp, err := s.HandleAPDU(frame(apdu.InsSignTx, 0, 0, payload))
	if err != apdu.ErrRejectedByUser {
		t.Fatalf("err = %v, want ErrRejectedByUser", err)
	}
	if resp.SW != apdu.SWRejectedByUser {
		t.Fatalf("SW = %x, want SWRejectedByUser", resp.SW)
	}
}

func TestSignCVoteHappyPath(t *testing.T) {
	s := testSession(t)
	voter := []byte{0x82, 0x00, 0x58, 0x00} // dummy 2-element voter array
	if resp, err := s.HandleAPDU(frame(apdu.InsSignCVote, apdu.P1CVoteVoter, 0, voter)); err != nil || resp.SW != apdu.SWSuccess {
		t.Fatalf("voter: resp=%+v err=%v", resp, err)
	}
	govAction := []byte{0x82, 0x58, 0x00, 0x00} // dummy [tx_hash, index]
	if resp, err := s.HandleAPDU(frame(apdu.InsSignCVote, apdu.P1CVoteGovAction, 0, govAction)); err != nil || resp.SW != apdu.SWSuccess {
		t.Fatalf("gov action: resp=%+v err=%v", resp, err)
	}
	vote := []byte{0x01} // dummy vote tag
	if resp, err := s.HandleAPDU(frame(apdu.InsSignCVote, apdu.P1CVoteVote, 0, vote)); err != nil || resp.SW != apdu.SWSuccess {
		t.Fatalf("vote: resp=%+v err=%v", resp, err)
	}
	p := path.Path{path.Hardened(1852), path.Hardened(1815), path.Hardened(0), 0, 0}
	resp, err := s.HandleAPDU(frame(apdu.InsSignCVote, apdu.P1CVoteWitness, 0, wirePath(p)))
	if err != nil || resp.SW != apdu.SWSuccess || len(resp.Data) != cardanokey.SignatureSize {
		t.Fatalf("witness: resp=%+v err=%v", resp, err)
	}
}

func TestSignCVoteWitnessBeforeVoteIsBadState(t *testing.T) {
	s := testSession(t)
	p := path.Path{path.Hardened(1852), path.Hardened(1815), path.Hardened(0), 0, 0}
	resp, err := s.HandleAPDU(frame(apdu.InsSignCVote, apdu.P1CVoteWitness, 0, wirePath(p)))
	if err != apdu.ErrBadState {
		t.Fatalf("err = %v, want ErrBadState", err)
	}
	if resp.SW != apdu.SWBadState {
		t.Fatalf("SW = %x, want SWBadState", resp.SW)
	}
}

func TestSingleAccountGuardDeniesSecondAccountDuringWitness(t *testing.T) {
	s := testSession(t)
	if resp, err := s.HandleAPDU(frame(apdu.InsSignTx, 0, 0, initPayload(policy.ModeOrdinary, 3, false, false, false))); err != nil || resp.SW != apdu.SWSuccess {
		t.Fatalf("INIT: resp=%+v err=%v", resp, err)
	}
	confirmP2 := byte(StageConfirm - StageInit)
	if resp, err := s.HandleAPDU(frame(apdu.InsSignTx, 0, confirmP2, nil)); err != nil || resp.SW != apdu.SWSuccess {
		t.Fatalf("CONFIRM: resp=%+v err=%v", resp, err)
	}
	witnessP2 := byte(StageWitnesses - StageInit)
	p0 := path.Path{path.Hardened(1852), path.Hardened(1815), path.Hardened(0), 0, 0}
	if resp, err := s.HandleAPDU(frame(apdu.InsSignTx, 0, witnessP2, append(wirePath(p0), 0))); err != nil || resp.SW != apdu.SWSuccess {
		t.Fatalf("witness account 0: resp=%+v err=%v", resp, err)
	}
	p1 := path.Path{path.Hardened(1852), path.Hardened(1815), path.Hardened(1), 0, 0}
	resp, err := s.HandleAPDU(frame(apdu.InsSignTx, 0, witnessP2, append(wirePath(p1), 0)))
	if err != apdu.ErrRejectedByPolicy {
		t.Fatalf("witness account 1: err = %v, want ErrRejectedByPolicy", err)
	}
	if resp.SW != apdu.SWRejectedByPolicy {
		t.Fatalf("SW = %x, want SWRejectedByPolicy", resp.SW)
	}
}
