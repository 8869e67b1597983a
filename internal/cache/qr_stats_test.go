package cache

import (
	"context"
	"testing"
	"time"
)

func TestQRStatsKey(t *testing.T) {
	if got := QRStatsKey(" camp-1 "); got != "qr:stats:camp-1" {
		t.Fatalf("unexpected key: %s", got)
	}
	if got := QRStatsKey(""); got != "qr:stats:all" {
		t.Fatalf("unexpected global key: %s", got)
	}
}

func TestHelpersAreNoopWhenDisabled(t *testing.T) {
	if Enabled() {
		t.Skip("redis initialised by another test")
	}
	ctx := context.Background()
	if err := SetJSON(ctx, "k", map[string]int{"a": 1}, time.Minute); err != nil {
		t.Fatalf("set should be a no-op: %v", err)
	}
	var dest map[string]int
	found, err := GetJSON(ctx, "k", &dest)
	if err != nil || found {
		t.Fatalf("get should miss: found=%v err=%v", found, err)
	}
	if err := InvalidateQRStats(ctx, "camp"); err != nil {
		t.Fatalf("invalidate should be a no-op: %v", err)
	}
}
