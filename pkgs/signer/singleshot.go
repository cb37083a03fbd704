package signer

import (
	"github.com/study/cardano-hw-signer/pkgs/apdu"
	"github.com/study/cardano-hw-signer/pkgs/bufview"
	"github.com/study/cardano-hw-signer/pkgs/cardanokey"
	"github.com/study/cardano-hw-signer/pkgs/path"
)

// opCertBodySize is the length of a stake pool operational certificate
// body: 32-byte hot KES vkey, 8-byte issue counter, 8-byte KES period.
const opCertBodySize = 32 + 8 + 8

// handleSignOpCert signs a stake pool operational certificate body with
// the pool cold key named by the leading path. Unlike SIGN_TX, this is
// a single frame, single response operation: the certificate body is
// small and fixed-size, so there is no stage machine to drive.
func (s *Session) handleSignOpCert(f apdu.Frame) (apdu.Response, error) {
	v := bufview.New(f.Payload)
	p, err := path.Parse(v)
	if err != nil {
		return apdu.Fail(apdu.ErrInvalidPath), apdu.ErrInvalidPath
	}
	key, err := cardanokey.DerivePath(s.root, p)
	if err != nil {
		return apdu.Fail(err), err
	}
	body, err := v.ReadBytes(opCertBodySize)
	if err != nil {
		return apdu.Fail(apdu.ErrInvalidData), apdu.ErrInvalidData
	}
	sig, err := cardanokey.Sign(key, body)
	if err != nil {
		return apdu.Fail(err), err
	}
	return apdu.Success(sig), nil
}

// handleSignMsg signs an arbitrary host-supplied message (CIP-8 style)
// with the key named by the leading path. The remainder of the payload
// after the path is the message verbatim; this device does not impose
// a maximum message length beyond the APDU frame's own 255-byte limit.
func (s *Session) handleSignMsg(f apdu.Frame) (apdu.Response, error) {
	v := bufview.New(f.Payload)
	p, err := path.Parse(v)
	if err != nil {
		return apdu.Fail(apdu.ErrInvalidPath), apdu.ErrInvalidPath
	}
	key, err := cardanokey.DerivePath(s.root, p)
	if err != nil {
		return apdu.Fail(err), err
	}
	message := v.ReadAll()
	sig, err := cardanokey.Sign(key, message)
	if err != nil {
		return apdu.Fail(err), err
	}
	return apdu.Success(sig), nil
}
