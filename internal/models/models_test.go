package models

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestDecodeTags(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want int
	}{
		{"empty", "", 0},
		{"blank", "   ", 0},
		{"corrupt", "{not json", 0},
		{"null", "null", 0},
		{"wrong shape", `{"text":"a"}`, 0},
		{"two tags", `[{"text":"CN2 GIA","color":"blue"},{"text":"SSD","color":"gray"}]`, 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := DecodeTags(tc.raw)
			if got == nil {
				t.Fatalf("DecodeTags(%q) returned nil, want non-nil slice", tc.raw)
			}
			if len(got) != tc.want {
				t.Fatalf("DecodeTags(%q) len=%d want %d", tc.raw, len(got), tc.want)
			}
		})
	}
}

func TestEncodeTagsRoundTrip(t *testing.T) {
	if got := EncodeTags(nil); got != "[]" {
		t.Fatalf("EncodeTags(nil)=%q want []", got)
	}
	tags := []Tag{{Text: "GIA", Color: "blue"}}
	got := DecodeTags(EncodeTags(tags))
	if len(got) != 1 || got[0] != tags[0] {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestBandwidthLimitJSON(t *testing.T) {
	var r Report
	if err := json.Unmarshal([]byte(`{"id":"a","bandwidth_limit":1000}`), &r); err != nil {
		t.Fatalf("unmarshal numeric: %v", err)
	}
	if r.BandwidthLimit != "1000" || r.BandwidthLimit.Unlimited() {
		t.Fatalf("numeric limit=%q", r.BandwidthLimit)
	}
	if err := json.Unmarshal([]byte(`{"id":"a","bandwidth_limit":"unlimited"}`), &r); err != nil {
		t.Fatalf("unmarshal sentinel: %v", err)
	}
	if !r.BandwidthLimit.Unlimited() {
		t.Fatalf("expected unlimited, got %q", r.BandwidthLimit)
	}

	out, _ := json.Marshal(struct {
		A BandwidthLimit `json:"a"`
		B BandwidthLimit `json:"b"`
		C BandwidthLimit `json:"c"`
	}{"500", "unlimited", ""})
	if string(out) != `{"a":500,"b":"unlimited","c":null}` {
		t.Fatalf("marshal=%s", out)
	}
}

func TestReportTrafficAliases(t *testing.T) {
	var canonical, legacy, both, none Report
	mustDecode(t, `{"id":"n","net_in":1.5,"net_out":2.5,"traffic_used":30}`, &canonical)
	mustDecode(t, `{"id":"n","netIn":1.5,"netOut":2.5,"trafficUsed":30}`, &legacy)
	mustDecode(t, `{"id":"n","net_in":1,"netIn":9,"net_out":2,"netOut":9,"traffic_used":3,"trafficUsed":9}`, &both)
	mustDecode(t, `{"id":"n"}`, &none)

	if canonical.InboundRate() != legacy.InboundRate() ||
		canonical.OutboundRate() != legacy.OutboundRate() ||
		canonical.TrafficUsedTotal() != legacy.TrafficUsedTotal() {
		t.Fatalf("legacy names decoded differently: canonical=%v/%v/%v legacy=%v/%v/%v",
			canonical.InboundRate(), canonical.OutboundRate(), canonical.TrafficUsedTotal(),
			legacy.InboundRate(), legacy.OutboundRate(), legacy.TrafficUsedTotal())
	}
	if both.InboundRate() != 1 || both.OutboundRate() != 2 || both.TrafficUsedTotal() != 3 {
		t.Fatalf("canonical names must win: %v/%v/%v", both.InboundRate(), both.OutboundRate(), both.TrafficUsedTotal())
	}
	if none.InboundRate() != 0 || none.OutboundRate() != 0 || none.TrafficUsedTotal() != 0 {
		t.Fatal("absent traffic fields must default to zero")
	}
}

func TestLiveSnapshotOmitsMissingMetric(t *testing.T) {
	snap := LiveSnapshot{ID: "n1", Tags: []Tag{}, PingData: []PingResult{}}
	out, _ := json.Marshal(snap)
	if strings.Contains(string(out), `"cpu"`) {
		t.Fatalf("metric fields should be absent: %s", out)
	}
	snap.MetricSample = &MetricSample{NodeID: "n1", CreatedAt: 7, CPU: 50}
	out, _ = json.Marshal(snap)
	if !strings.Contains(string(out), `"cpu":50`) || !strings.Contains(string(out), `"created_at":7`) {
		t.Fatalf("metric fields should be flattened: %s", out)
	}
	if strings.Contains(string(out), "NodeID") {
		t.Fatalf("node id back-reference leaked: %s", out)
	}
}

func TestDecodePingTargets(t *testing.T) {
	if got := DecodePingTargets("[oops"); len(got) != 0 || got == nil {
		t.Fatalf("corrupt targets should decode to empty list, got %#v", got)
	}
	got := DecodePingTargets(DefaultSettings()[SettingPingTargets])
	if len(got) != 3 || got[1].Host != "1.1.1.1" {
		t.Fatalf("default targets=%+v", got)
	}
	if !KnownSetting(SettingBackgroundImage) || KnownSetting("nope") {
		t.Fatal("KnownSetting mismatch")
	}
}

func mustDecode(t *testing.T, raw string, v any) {
	t.Helper()
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		t.Fatalf("decode %s: %v", raw, err)
	}
}
