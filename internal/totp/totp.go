// Package totp generates Steam Guard one-time codes and the time-based
// hashes the mobile confirmation endpoints expect. Everything here is a pure
// function of its inputs so it stays testable without network access.
package totp

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
)

// Steam does not use RFC 6238 digits; codes are five characters drawn from
// this fixed alphabet.
const codeAlphabet = "23456789BCDFGHJKMNPQRTVWXY"

const (
	// Period is the code rotation window in seconds.
	Period = 30

	// SecretLength is the required decoded length of a shared or identity
	// secret.
	SecretLength = 20

	codeLength = 5
)

// ErrInvalidSecret indicates the secret is not base64 of exactly 20 bytes.
var ErrInvalidSecret = errors.New("secret must be base64 of exactly 20 bytes")

// ParseSecret decodes a base64 shared or identity secret and enforces the
// 20-byte invariant.
func ParseSecret(secretBase64 string) ([]byte, error) {
	secret, err := base64.StdEncoding.DecodeString(secretBase64)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSecret, err)
	}
	if len(secret) != SecretLength {
		return nil, fmt.Errorf("%w: decoded %d bytes", ErrInvalidSecret, len(secret))
	}
	return secret, nil
}

// ValidateSecret reports whether secretBase64 is a well-formed Steam secret.
func ValidateSecret(secretBase64 string) error {
	_, err := ParseSecret(secretBase64)
	return err
}

// GenerateCode produces the five-character Steam Guard code for the given
// shared secret at unixTime seconds. The 30-second truncation happens here;
// callers pass absolute time.
func GenerateCode(sharedSecretBase64 string, unixTime int64) (string, error) {
	secret, err := ParseSecret(sharedSecretBase64)
	if err != nil {
		return "", err
	}

	var counter [8]byte
	binary.BigEndian.PutUint64(counter[:], uint64(unixTime/Period))

	mac := hmac.New(sha1.New, secret)
	mac.Write(counter[:])
	sum := mac.Sum(nil)

	offset := sum[len(sum)-1] & 0x0F
	codePoint := int(sum[offset]&0x7F)<<24 |
		int(sum[offset+1])<<16 |
		int(sum[offset+2])<<8 |
		int(sum[offset+3])

	code := make([]byte, codeLength)
	for i := range code {
		code[i] = codeAlphabet[codePoint%len(codeAlphabet)]
		codePoint /= len(codeAlphabet)
	}
	return string(code), nil
}

// ConfirmationHash computes the base64 HMAC-SHA1 the mobileconf endpoints
// require, keyed by the identity secret over the timestamp and request tag.
func ConfirmationHash(identitySecretBase64, tag string, unixTime int64) (string, error) {
	secret, err := ParseSecret(identitySecretBase64)
	if err != nil {
		return "", err
	}

	if len(tag) > 32 {
		tag = tag[:32]
	}

	buf := make([]byte, 8, 8+len(tag))
	binary.BigEndian.PutUint64(buf, uint64(unixTime))
	buf = append(buf, tag...)

	mac := hmac.New(sha1.New, secret)
	mac.Write(buf)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil)), nil
}
