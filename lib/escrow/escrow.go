// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package escrow builds offline recovery bundles for vault records.
//
// A bundle is the disaster-recovery path: the plaintext record is
// wrapped in a versioned envelope, compressed, and encrypted to one or
// more X25519 recovery recipients with age. Anyone holding a matching
// recovery key can import the bundle without the vault password, the
// master key, or the storage backend, so recovery keys demand the same
// custody as the vault itself.
//
// Bundles are not storage blobs. They bypass the password KDF and the
// master key entirely, carry their own format version, and report
// failures descriptively: the writer of a bundle is trusted, so unlike
// the storage decryption path there is no reason to collapse errors
// into a single authentication failure.
package escrow

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"time"

	"filippo.io/age"
	"github.com/klauspost/compress/zstd"

	"github.com/bureau-foundation/vault/lib/codec"
	"github.com/bureau-foundation/vault/lib/secret"
	"github.com/bureau-foundation/vault/lib/vault"
)

// envelopeVersion is written into every bundle. The envelope field set
// is frozen; a version bump changes how the record payload is
// interpreted, never the envelope shape, so older and newer readers
// always get far enough to report a version mismatch by name.
const envelopeVersion = 1

// envelope is the compressed-then-encrypted payload of a bundle. The
// record is kept as raw bytes so the envelope decodes identically
// regardless of which record schema version it carries.
type envelope struct {
	Version   int              `cbor:"version"`
	CreatedAt time.Time        `cbor:"created_at"`
	Record    codec.RawMessage `cbor:"record"`
}

var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("escrow: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("escrow: zstd decoder initialization failed: " + err.Error())
	}
}

// GenerateRecoveryKey creates a fresh X25519 recovery keypair. The
// private half is returned in locked memory and is the only way to
// import bundles exported to the returned recipient, so the caller
// must arrange durable offline custody before using the recipient.
func GenerateRecoveryKey() (identity *secret.Buffer, recipient string, err error) {
	generated, err := age.GenerateX25519Identity()
	if err != nil {
		return nil, "", fmt.Errorf("escrow: generating recovery key: %w", err)
	}
	identity, err = secret.NewFromBytes([]byte(generated.String()))
	if err != nil {
		return nil, "", fmt.Errorf("escrow: protecting recovery key: %w", err)
	}
	return identity, generated.Recipient().String(), nil
}

// Export serializes the record into a recovery bundle encrypted to the
// given recipients. Any one matching recovery key can import the
// result. The bundle records now as its creation time; intermediate
// plaintext buffers are zeroed before returning.
func Export(rec *vault.Record, now time.Time, recipients ...string) (string, error) {
	if rec == nil {
		return "", fmt.Errorf("escrow: record is nil")
	}
	if len(recipients) == 0 {
		return "", fmt.Errorf("escrow: at least one recovery recipient is required")
	}
	parsed := make([]age.Recipient, 0, len(recipients))
	for _, key := range recipients {
		recipient, err := age.ParseX25519Recipient(key)
		if err != nil {
			return "", fmt.Errorf("escrow: parsing recovery recipient %q: %w", key, err)
		}
		parsed = append(parsed, recipient)
	}

	recordBytes, err := codec.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("escrow: encoding record: %w", err)
	}
	payload, err := codec.Marshal(envelope{
		Version:   envelopeVersion,
		CreatedAt: now.UTC(),
		Record:    codec.RawMessage(recordBytes),
	})
	secret.Zero(recordBytes)
	if err != nil {
		return "", fmt.Errorf("escrow: encoding envelope: %w", err)
	}

	compressed := zstdEncoder.EncodeAll(payload, nil)
	secret.Zero(payload)

	var ciphertext bytes.Buffer
	writer, err := age.Encrypt(&ciphertext, parsed...)
	if err != nil {
		secret.Zero(compressed)
		return "", fmt.Errorf("escrow: creating encryptor: %w", err)
	}
	_, writeErr := writer.Write(compressed)
	closeErr := writer.Close()
	secret.Zero(compressed)
	if writeErr != nil {
		return "", fmt.Errorf("escrow: encrypting bundle: %w", writeErr)
	}
	if closeErr != nil {
		return "", fmt.Errorf("escrow: finalizing bundle: %w", closeErr)
	}

	return base64.StdEncoding.EncodeToString(ciphertext.Bytes()), nil
}

// Import decrypts a recovery bundle with a private recovery key and
// returns the record it carries, upgraded to the current schema
// version, along with the bundle's creation time.
func Import(bundle string, identity *secret.Buffer) (*vault.Record, time.Time, error) {
	if identity == nil {
		return nil, time.Time{}, fmt.Errorf("escrow: recovery key is nil")
	}
	parsedIdentity, err := age.ParseX25519Identity(identity.String())
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("escrow: parsing recovery key: %w", err)
	}

	raw, err := base64.StdEncoding.DecodeString(bundle)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("escrow: decoding bundle: %w", err)
	}
	reader, err := age.Decrypt(bytes.NewReader(raw), parsedIdentity)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("escrow: decrypting bundle: %w", err)
	}
	compressed, err := io.ReadAll(reader)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("escrow: reading bundle: %w", err)
	}

	payload, err := zstdDecoder.DecodeAll(compressed, nil)
	secret.Zero(compressed)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("escrow: decompressing bundle: %w", err)
	}

	var env envelope
	err = codec.Unmarshal(payload, &env)
	secret.Zero(payload)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("escrow: decoding envelope: %w", err)
	}
	if env.Version != envelopeVersion {
		secret.Zero(env.Record)
		return nil, time.Time{}, fmt.Errorf("escrow: unsupported bundle version %d (this build reads version %d)", env.Version, envelopeVersion)
	}

	rec, err := vault.DecodeRecord(env.Record)
	secret.Zero(env.Record)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("escrow: decoding record: %w", err)
	}
	return rec, env.CreatedAt, nil
}
