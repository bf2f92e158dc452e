package main

import (
	"math"
	"strings"
	"testing"

	"github.com/minio/simdjson-go"
)

func TestBucketRecords(t *testing.T) {
	if !simdjson.SupportedCPU() {
		t.Skip("simdjson-go unsupported on this CPU")
	}
	input := strings.Join([]string{
		`{"id":1,"name":"a"}`,
		``,
		`{"id":2,"name":"b"}`,
		`{"id":3,"name":"c"}`,
	}, "\n")
	seed := uint32(42)
	counts, total, err := bucketRecords(strings.NewReader(input), 8, &seed)
	if err != nil {
		t.Fatal(err)
	}
	if total != 3 {
		t.Fatalf("total = %d, want 3 (blank lines skipped)", total)
	}
	sum := 0
	for _, c := range counts {
		sum += c
	}
	if sum != total {
		t.Fatalf("bucket counts sum to %d, want %d", sum, total)
	}

	// Same seed, same input, same distribution.
	again, _, err := bucketRecords(strings.NewReader(input), 8, &seed)
	if err != nil {
		t.Fatal(err)
	}
	for i := range counts {
		if counts[i] != again[i] {
			t.Fatal("distribution not reproducible for a fixed seed")
		}
	}
}

func TestBucketRecordsReportsLine(t *testing.T) {
	if !simdjson.SupportedCPU() {
		t.Skip("simdjson-go unsupported on this CPU")
	}
	seed := uint32(1)
	_, _, err := bucketRecords(strings.NewReader("{\"a\":1}\n{broken\n"), 4, &seed)
	if err == nil {
		t.Fatal("expected error for malformed line")
	}
	if !strings.Contains(err.Error(), "line 2") {
		t.Fatalf("error does not name the offending line: %v", err)
	}
}

func TestChiSquared(t *testing.T) {
	if got := chiSquared([]int{5, 5, 5, 5}, 20); got != 0 {
		t.Fatalf("uniform distribution: chi-squared = %v, want 0", got)
	}
	if got := chiSquared([]int{20, 0, 0, 0}, 20); math.Abs(got-60) > 1e-9 {
		t.Fatalf("degenerate distribution: chi-squared = %v, want 60", got)
	}
	if got := chiSquared([]int{0, 0}, 0); got != 0 {
		t.Fatalf("empty input: chi-squared = %v, want 0", got)
	}
}
