package utils

import "testing"

func TestPtr(t *testing.T) {
	temperature := Ptr(0.1)
	if temperature == nil || *temperature != 0.1 {
		t.Fatalf("Ptr(0.1) = %v", temperature)
	}

	// Each call copies its argument.
	n := 2048
	a, b := Ptr(n), Ptr(n)
	*a = 1
	if *b != 2048 || n != 2048 {
		t.Errorf("pointers share storage: a=%d b=%d n=%d", *a, *b, n)
	}
}
