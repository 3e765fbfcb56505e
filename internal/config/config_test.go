package config

import (
	"testing"
	"time"
)

func TestEnvDefaults(t *testing.T) {
	t.Setenv("CFG_TEST_STR", "")
	if got := envStrDef("CFG_TEST_STR", "fallback"); got != "fallback" {
		t.Errorf("envStrDef empty = %q, want fallback", got)
	}
	t.Setenv("CFG_TEST_STR", "value")
	if got := envStrDef("CFG_TEST_STR", "fallback"); got != "value" {
		t.Errorf("envStrDef set = %q, want value", got)
	}

	t.Setenv("CFG_TEST_INT", "junk")
	if got := envIntDef("CFG_TEST_INT", 10); got != 10 {
		t.Errorf("envIntDef junk = %d, want 10", got)
	}
	t.Setenv("CFG_TEST_INT", "42")
	if got := envIntDef("CFG_TEST_INT", 10); got != 42 {
		t.Errorf("envIntDef set = %d, want 42", got)
	}
}

func TestEnvBool(t *testing.T) {
	cases := []struct {
		val  string
		def  bool
		want bool
	}{
		{"true", false, true},
		{"1", false, true},
		{"ON", false, true},
		{"false", true, false},
		{"0", true, false},
		{"off", true, false},
		{"", true, true},
		{"garbage", false, false},
	}
	for _, c := range cases {
		t.Setenv("CFG_TEST_BOOL", c.val)
		if got := envBool("CFG_TEST_BOOL", c.def); got != c.want {
			t.Errorf("envBool(%q, %v) = %v, want %v", c.val, c.def, got, c.want)
		}
	}
}

func TestEnvDur(t *testing.T) {
	t.Setenv("CFG_TEST_DUR", "90s")
	if got := envDur("CFG_TEST_DUR", time.Minute); got != 90*time.Second {
		t.Errorf("envDur = %v, want 90s", got)
	}
	t.Setenv("CFG_TEST_DUR", "not-a-duration")
	if got := envDur("CFG_TEST_DUR", time.Minute); got != time.Minute {
		t.Errorf("envDur junk = %v, want 1m", got)
	}
}

func TestParseMethods(t *testing.T) {
	m := parseMethods("get, head ,POST")
	for _, want := range []string{"GET", "HEAD", "POST"} {
		if !m[want] {
			t.Errorf("parseMethods missing %s", want)
		}
	}
	if len(m) != 3 {
		t.Errorf("parseMethods len = %d, want 3", len(m))
	}
}

func TestLoadRateLimitConfigFloors(t *testing.T) {
	t.Setenv("RATE_LIMIT_CAPACITY", "0")
	t.Setenv("RATE_LIMIT_REFILL_TOKENS", "0")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "10s")
	t.Setenv("RATE_LIMIT_TTL", "1s")

	cfg := LoadRateLimitConfig()
	if cfg.Capacity < 1 {
		t.Errorf("Capacity = %d, want >= 1", cfg.Capacity)
	}
	if cfg.RefillTokens < 1 {
		t.Errorf("RefillTokens = %d, want >= 1", cfg.RefillTokens)
	}
	// TTL below five refill intervals is raised so idle buckets do not
	// expire into a fresh burst.
	if cfg.TTL < 5*cfg.RefillInterval {
		t.Errorf("TTL = %v, want >= %v", cfg.TTL, 5*cfg.RefillInterval)
	}
}
