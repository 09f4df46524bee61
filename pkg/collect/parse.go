package collect

import (
	"strings"

	"github.com/nmaniam/topovis/pkg/snapshot"
)

// SONiC's show commands print tabulate-style tables: a header row, a
// separator row of dash runs, then data rows. Column boundaries are taken
// from the separator row, which is the only line whose layout is
// guaranteed, and each data row is sliced by those spans.

// tableRow maps column header to cell value for one data row.
type tableRow map[string]string

// parseTable extracts rows from a SONiC table. Lines before the separator
// (banners, capability legends) and summary lines after the table are
// skipped. Returns nil when no separator row is found.
func parseTable(output string) []tableRow {
	lines := strings.Split(output, "\n")

	sep := -1
	for i, line := range lines {
		if isSeparator(line) {
			sep = i
			break
		}
	}
	if sep <= 0 {
		return nil
	}

	spans := columnSpans(lines[sep])
	header := lines[sep-1]
	names := make([]string, len(spans))
	for i, s := range spans {
		names[i] = cell(header, s)
	}

	var rows []tableRow
	for _, line := range lines[sep+1:] {
		if strings.TrimSpace(line) == "" || isSeparator(line) {
			break
		}
		row := make(tableRow, len(spans))
		for i, s := range spans {
			row[names[i]] = cell(line, s)
		}
		rows = append(rows, row)
	}
	return rows
}

// span is a half-open column range in rune offsets.
type span struct{ start, end int }

// isSeparator reports whether a line consists of dash runs and spaces only.
func isSeparator(line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.Trim(trimmed, "- ") != "" {
		return false
	}
	return strings.Contains(trimmed, "-")
}

// columnSpans finds the dash runs of a separator line. The last column is
// extended to the end of the line so over-wide cells are not truncated.
func columnSpans(sep string) []span {
	var spans []span
	start := -1
	for i, r := range sep {
		switch {
		case r == '-' && start < 0:
			start = i
		case r != '-' && start >= 0:
			spans = append(spans, span{start, i})
			start = -1
		}
	}
	if start >= 0 {
		spans = append(spans, span{start, len(sep)})
	}
	if len(spans) > 0 {
		spans[len(spans)-1].end = 1 << 30
	}
	return spans
}

// cell slices one column out of a row, tolerating short lines.
func cell(line string, s span) string {
	if s.start >= len(line) {
		return ""
	}
	end := s.end
	if end > len(line) {
		end = len(line)
	}
	// Right-aligned cells bleed into the preceding gap; widen left by the
	// run of non-space characters touching the span start.
	start := s.start
	for start > 0 && line[start-1] != ' ' {
		start--
	}
	return strings.TrimSpace(line[start:end])
}

// parseInterfaceStatus converts `show interfaces status` output into the
// per-port interface table. The Vlan column's filler values ("routed",
// "trunk", "N/A", "") do not name a VLAN and map to nil.
func parseInterfaceStatus(output string) map[string]snapshot.Interface {
	rows := parseTable(output)
	if rows == nil {
		return map[string]snapshot.Interface{}
	}

	ifaces := make(map[string]snapshot.Interface, len(rows))
	for _, row := range rows {
		name := row["Interface"]
		if name == "" {
			continue
		}
		status := "down"
		if strings.EqualFold(row["Oper"], "up") {
			status = "up"
		}
		iface := snapshot.Interface{
			Alias:  row["Alias"],
			Status: status,
			Speed:  row["Speed"],
			MTU:    row["MTU"],
			FEC:    row["FEC"],
			Type:   row["Type"],
		}
		if vlan := row["Vlan"]; vlanNamesID(vlan) {
			iface.Vlan = &vlan
		}
		ifaces[name] = iface
	}
	return ifaces
}

// vlanNamesID reports whether a Vlan cell actually names a VLAN.
func vlanNamesID(v string) bool {
	switch v {
	case "", "N/A", "routed", "trunk":
		return false
	}
	return true
}

// parseLLDPTable converts `show lldp table` output into LLDP entries.
// RemotePortDescr is used as the remote port because it matches SONiC's
// logical interface names, where RemotePortID is usually a MAC address.
func parseLLDPTable(output string) []snapshot.LLDPEntry {
	rows := parseTable(output)
	entries := make([]snapshot.LLDPEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, snapshot.LLDPEntry{
			LocalPort:  row["LocalPort"],
			RemoteDev:  row["RemoteDevice"],
			RemotePort: row["RemotePortDescr"],
		})
	}
	return entries
}

// parseVlanConfig converts `show vlan config` output into the VLAN
// membership table: vlan id → member ports. Legacy ethN names are
// normalized to EthernetN.
func parseVlanConfig(output string) map[string][]string {
	rows := parseTable(output)
	membership := make(map[string][]string)
	for _, row := range rows {
		vid := row["VID"]
		member := row["Member"]
		if vid == "" || member == "" {
			continue
		}
		if !strings.HasPrefix(member, "Ethernet") {
			if rest, ok := strings.CutPrefix(member, "eth"); ok {
				member = "Ethernet" + rest
			} else {
				continue
			}
		}
		membership[vid] = append(membership[vid], member)
	}
	return membership
}
