package crypto

import (
	"context"
	"encoding/hex"
	"testing"

	schnorrkel "github.com/ChainSafe/go-schnorrkel"
)

func testKeypair(t *testing.T) (*schnorrkel.SecretKey, string) {
	t.Helper()
	var seed [32]byte
	for i := range seed {
		seed[i] = byte(i + 1)
	}
	miniSecret, err := schnorrkel.NewMiniSecretKeyFromRaw(seed)
	if err != nil {
		t.Fatalf("mini secret from raw failed: %v", err)
	}
	secretKey := miniSecret.ExpandEd25519()
	publicKey, err := secretKey.Public()
	if err != nil {
		t.Fatalf("derive public key failed: %v", err)
	}
	encoded := publicKey.Encode()
	return secretKey, "0x" + hex.EncodeToString(encoded[:])
}

func signMessage(t *testing.T, secretKey *schnorrkel.SecretKey, message []byte) []byte {
	t.Helper()
	signature, err := secretKey.Sign(schnorrkel.NewSigningContext(signingContext, message))
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	encoded := signature.Encode()
	return encoded[:]
}

func TestSr25519VerifierRoundTrip(t *testing.T) {
	secretKey, address := testKeypair(t)
	message := []byte("pollux-ledger/v1|pollux-test|alice|relay-1|asset-1|100|7|1772366400")
	signature := signMessage(t, secretKey, message)

	verifier := Sr25519Verifier{}
	valid, err := verifier.Verify(context.Background(), address, message, signature)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if !valid {
		t.Fatalf("expected signature to verify")
	}

	tampered := append([]byte(nil), message...)
	tampered[len(tampered)-1] ^= 1
	valid, err = verifier.Verify(context.Background(), address, tampered, signature)
	if err != nil {
		t.Fatalf("verify tampered failed: %v", err)
	}
	if valid {
		t.Fatalf("tampered message must not verify")
	}
}

func TestSr25519VerifierRejectsMalformedInput(t *testing.T) {
	secretKey, address := testKeypair(t)
	message := []byte("ticket")
	signature := signMessage(t, secretKey, message)

	verifier := Sr25519Verifier{}
	if valid, err := verifier.Verify(context.Background(), address, message, signature[:40]); err != nil || valid {
		t.Fatalf("short signature must be rejected without error, got %v %v", valid, err)
	}

	if _, err := verifier.Verify(context.Background(), "0xzz", message, signature); err == nil {
		t.Fatalf("expected error for malformed hex address")
	}
	if _, err := verifier.Verify(context.Background(), "0x"+hex.EncodeToString(make([]byte, 16)), message, signature); err == nil {
		t.Fatalf("expected error for short public key")
	}

	// Signing under a different key fails verification cleanly.
	var otherSeed [32]byte
	otherSeed[0] = 0x42
	otherMini, err := schnorrkel.NewMiniSecretKeyFromRaw(otherSeed)
	if err != nil {
		t.Fatalf("mini secret from raw failed: %v", err)
	}
	foreign := signMessage(t, otherMini.ExpandEd25519(), message)
	valid, err := verifier.Verify(context.Background(), address, message, foreign)
	if err != nil {
		t.Fatalf("verify foreign signature failed: %v", err)
	}
	if valid {
		t.Fatalf("foreign signature must not verify")
	}
}
