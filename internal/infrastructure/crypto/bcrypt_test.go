package crypto

import "testing"

func TestBcryptHasher_HashAndVerify(t *testing.T) {
	hasher := NewBcryptHasher(4) // min cost keeps the test fast

	hash, err := hasher.Hash("p@ss")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "p@ss" || hash == "" {
		t.Fatalf("expected salted hash, got %q", hash)
	}

	if !hasher.Verify("p@ss", hash) {
		t.Fatalf("verify should accept the original password")
	}
	if hasher.Verify("wrong", hash) {
		t.Fatalf("verify should reject a wrong password")
	}
	if hasher.Verify("p@ss", "not-a-hash") {
		t.Fatalf("verify should reject a malformed hash")
	}
}

func TestBcryptHasher_SaltedHashesDiffer(t *testing.T) {
	hasher := NewBcryptHasher(4)

	a, err := hasher.Hash("same")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	b, err := hasher.Hash("same")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if a == b {
		t.Fatalf("two hashes of the same password must differ")
	}
}

func TestBcryptHasher_CostFallback(t *testing.T) {
	hasher := NewBcryptHasher(99)

	hash, err := hasher.Hash("p")
	if err != nil {
		t.Fatalf("hash with fallback cost: %v", err)
	}
	if !hasher.Verify("p", hash) {
		t.Fatalf("verify failed after cost fallback")
	}
}
