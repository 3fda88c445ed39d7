package format

import "testing"

func TestIdentifierJSONPlainUTF8(t *testing.T) {
	if got := IdentifierJSON([]byte("amount")); got != "u8:amount" {
		t.Fatalf("IdentifierJSON(amount) = %q, want u8:amount", got)
	}
}

func TestIdentifierJSONInvalidUTF8FallsBackToHex(t *testing.T) {
	b := []byte{0xFF, 0xFE, 0x01}
	if got := IdentifierJSON(b); got != "hex:fffe01" {
		t.Fatalf("IdentifierJSON(invalid) = %q, want hex:fffe01", got)
	}
}

func TestIdentifierJSONControlByteFallsBackToHex(t *testing.T) {
	b := []byte("a\tb")
	if got := IdentifierJSON(b); got != "hex:610962" {
		t.Fatalf("IdentifierJSON(control byte) = %q, want hex:610962", got)
	}
}

func TestIdentifierHumanBarePrintsUnprefixed(t *testing.T) {
	if got := IdentifierHuman([]byte("id")); got != "id" {
		t.Fatalf("IdentifierHuman(id) = %q, want id", got)
	}
}

func TestIdentifierHumanDisambiguatesOwnPrefixes(t *testing.T) {
	if got := IdentifierHuman([]byte("u8:weird")); got != "u8:u8:weird" {
		t.Fatalf("IdentifierHuman(u8:weird) = %q, want u8:u8:weird", got)
	}
	if got := IdentifierHuman([]byte("hex:ab")); got != "u8:hex:ab" {
		t.Fatalf("IdentifierHuman(hex:ab) = %q, want u8:hex:ab", got)
	}
}

func TestIdentifierHumanInvalidFallsBackToHex(t *testing.T) {
	b := []byte{0xFF, 0xFE}
	if got := IdentifierHuman(b); got != "hex:fffe" {
		t.Fatalf("IdentifierHuman(invalid) = %q, want hex:fffe", got)
	}
}

func TestIdentifierRenderingIsInjectivePerForm(t *testing.T) {
	a := IdentifierJSON([]byte("foo"))
	b := IdentifierJSON([]byte("bar"))
	if a == b {
		t.Fatalf("distinct identifiers rendered identically: %q", a)
	}
}
