package dataprocessing

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"clamser/pkg/contracts/domain"
)

// dataMarker terminates the header section of a CLAMS export.
const dataMarker = ":DATA"

// Header holds the metadata extracted from the header section of one export.
type Header struct {
	Parameter string
	CageMap   domain.CageMap
	DataStart int
}

// ParseHeader scans the header section of one uploaded file. It returns
// ok=false when no :DATA marker exists, meaning the file is not a CLAMS data
// file at all and must be skipped silently; many sibling files in an upload
// batch are non-data companions.
//
// Header keys are matched case-insensitively on the first delimited field.
// The instrument firmware literally misspells "parameter" as "paramter";
// that misspelling is part of the format.
func ParseHeader(lines []string) (Header, bool) {
	h := Header{CageMap: domain.CageMap{}, DataStart: -1}

	var pendingCage string
	var havePending bool

	for i, line := range lines {
		clean := strings.TrimSpace(line)
		if clean == "" {
			continue
		}

		if strings.Contains(line, dataMarker) {
			h.DataStart = i
			return h, true
		}

		parts := splitHeaderLine(clean)
		first := strings.ToLower(parts[0])

		switch {
		case strings.Contains(first, "paramter"):
			if len(parts) > 1 {
				name := parts[1]
				if p := strings.Index(name, "("); p >= 0 {
					name = name[:p]
				}
				h.Parameter = strings.TrimSpace(name)
			}

		case strings.Contains(first, "group/cage"):
			if len(parts) > 1 {
				pendingCage = strings.TrimLeft(parts[1], "0")
				havePending = true
			}

		case strings.Contains(first, "subject id") && havePending:
			if len(parts) > 1 {
				if n, err := strconv.Atoi(pendingCage); err == nil {
					h.CageMap[fmt.Sprintf("CAGE %04d", n)] = parts[1]
				} else {
					slog.Warn("skipping malformed cage number in header",
						slog.String("cage_number", pendingCage))
				}
			}
			// Always clear the pending value, success or failure, so a bad
			// entry cannot carry over to the next subject line.
			pendingCage = ""
			havePending = false
		}
	}

	return Header{}, false
}

// splitHeaderLine splits a header line on the first occurrence of its
// delimiter. Comma takes priority over tab when both occur; a line with
// neither is a single unsplit token.
func splitHeaderLine(line string) []string {
	var sep string
	switch {
	case strings.Contains(line, ","):
		sep = ","
	case strings.Contains(line, "\t"):
		sep = "\t"
	default:
		return []string{line}
	}

	parts := strings.SplitN(line, sep, 2)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
