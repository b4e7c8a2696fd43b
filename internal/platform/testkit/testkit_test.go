package testkit

import "testing"

var scorerURL = "http://scorer:9000"

func TestMustPanic(t *testing.T) {
	if v := MustPanic(t, func() { panic("repokit: nil Queryer") }); v != "repokit: nil Queryer" {
		t.Fatalf("recovered = %v", v)
	}
}

func TestMustContain(t *testing.T) {
	MustContain(t, `{"level":"warn","component":"pg"}`, `"level":"warn"`, `"component":"pg"`)
}

func TestSwap_RestoresAfterSubtest(t *testing.T) {
	t.Run("swapped", func(t *testing.T) {
		Swap(t, &scorerURL, "http://127.0.0.1:1")
		if scorerURL != "http://127.0.0.1:1" {
			t.Fatalf("swap did not apply: %s", scorerURL)
		}
	})
	if scorerURL != "http://scorer:9000" {
		t.Fatalf("swap not restored: %s", scorerURL)
	}
}
