package export

import (
	"sort"
	"testing"
)

func TestNaturalCompare(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want int
	}{
		{name: "equal", a: "Ethernet4", b: "Ethernet4", want: 0},
		{name: "numeric by value", a: "Ethernet4", b: "Ethernet10", want: -1},
		{name: "numeric by value reversed", a: "Ethernet100", b: "Ethernet20", want: 1},
		{name: "text before number decides", a: "Ethernet4", b: "PortChannel1", want: -1},
		{name: "prefix is smaller", a: "Ethernet", b: "Ethernet0", want: -1},
		{name: "leading zeros equal value", a: "Ethernet007", b: "Ethernet7", want: 0},
		{name: "case insensitive text", a: "ethernet4", b: "Ethernet10", want: -1},
		{name: "breakout suffix", a: "Ethernet1/2", b: "Ethernet1/10", want: -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NaturalCompare(tt.a, tt.b); got != tt.want {
				t.Errorf("NaturalCompare(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestNaturalSortOrder(t *testing.T) {
	ports := []string{"Ethernet32", "Ethernet4", "Ethernet0", "Ethernet12", "Ethernet8"}
	sort.Slice(ports, func(i, j int) bool { return NaturalCompare(ports[i], ports[j]) < 0 })

	want := []string{"Ethernet0", "Ethernet4", "Ethernet8", "Ethernet12", "Ethernet32"}
	for i, p := range want {
		if ports[i] != p {
			t.Fatalf("sorted[%d] = %q, want %q (full: %v)", i, ports[i], p, ports)
		}
	}
}
