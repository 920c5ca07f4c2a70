package certcode

import (
	"testing"
)

func TestNormalize(t *testing.T) {
	cfg := Default()
	cases := []struct {
		input string
		want  string
	}{
		{"pbb-00012", "PBB-00012"},
		{"  pbb 00012 ", "PBB-00012"},
		{"PBB-00012", "PBB-00012"},
		{"\tpbb-0001 2\n", "PBB-00012"},
		{"", ""},
	}
	for _, c := range cases {
		if got := cfg.Normalize(c.input); got != c.want {
			t.Fatalf("Normalize(%q) = %q, want %q", c.input, got, c.want)
		}
	}
}

func TestToSerial(t *testing.T) {
	cfg := Default()
	cases := []struct {
		input string
		want  int64
	}{
		{"PBB-00055", 55},
		{"pbb00012", 12},
		{"55", 55},
		{"PBB-", 0},
		{"abc", 0},
		{"", 0},
		{"PBB-00000", 0},
	}
	for _, c := range cases {
		if got := cfg.ToSerial(c.input); got != c.want {
			t.Fatalf("ToSerial(%q) = %d, want %d", c.input, got, c.want)
		}
	}
}

func TestToCodeRoundTrip(t *testing.T) {
	cfg := Default()
	for _, serial := range []int64{1, 12, 55, 99999, 123456} {
		code := cfg.ToCode(serial)
		if got := cfg.ToSerial(code); got != serial {
			t.Fatalf("round trip failed: serial %d -> %q -> %d", serial, code, got)
		}
	}
	if code := cfg.ToCode(12); code != "PBB-00012" {
		t.Fatalf("unexpected canonical code: %q", code)
	}
	if code := cfg.ToCode(123456); code != "PBB-123456" {
		t.Fatalf("unexpected wide code: %q", code)
	}
}

func TestCanonicalFormConverges(t *testing.T) {
	cfg := Default()
	variants := []string{"pbb00012", "PBB-00012", "12", "0012", " pbb-12 "}
	for _, v := range variants {
		serial := cfg.ToSerial(v)
		if serial != 12 {
			t.Fatalf("variant %q parsed to serial %d", v, serial)
		}
		if code := cfg.ToCode(serial); code != "PBB-00012" {
			t.Fatalf("variant %q canonicalized to %q", v, code)
		}
	}
}

func TestCandidates(t *testing.T) {
	cfg := Default()
	got := cfg.Candidates(55, "pbb-55")
	want := []string{"55", "00055", "PBB-00055", "PBB-55"}
	if len(got) != len(want) {
		t.Fatalf("unexpected candidates: %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("candidate[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	// 规范输入与生成值重合时去重
	got = cfg.Candidates(12, "PBB-00012")
	if len(got) != 3 {
		t.Fatalf("expected deduplicated candidates, got %v", got)
	}

	if got := cfg.Candidates(0, "PBB-00000"); got != nil {
		t.Fatalf("expected nil candidates for invalid serial, got %v", got)
	}
}
