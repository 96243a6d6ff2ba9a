package httpapi

import "testing"

func TestSetMaxBodyBytesDefaultWhenNonPositive(t *testing.T) {
	SetMaxBodyBytes(-1)
	if maxBodyBytes != 16<<20 {
		t.Fatalf("expected default 16MiB, got %d", maxBodyBytes)
	}
	SetMaxBodyBytes(0)
	if maxBodyBytes != 16<<20 {
		t.Fatalf("expected default 16MiB on zero, got %d", maxBodyBytes)
	}
}

func TestSetMaxBodyBytesPositiveSetsValue(t *testing.T) {
	SetMaxBodyBytes(1234)
	if maxBodyBytes != 1234 {
		t.Fatalf("expected 1234, got %d", maxBodyBytes)
	}
	SetMaxBodyBytes(0)
}

func TestSetCORSOptionsCopiesSlices(t *testing.T) {
	origins := []string{"http://a"}
	SetCORSOptions(true, origins, nil, nil)
	defer SetCORSOptions(false, nil, nil, nil)

	origins[0] = "http://mutated"
	if corsAllowedOrigins[0] != "http://a" {
		t.Fatalf("origins aliased: %v", corsAllowedOrigins)
	}
}
