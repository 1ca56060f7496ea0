package manifest

import (
	"strconv"
	"strings"

	"github.com/skybound-dev/ifconnect/pkg/protocol"
	"github.com/skybound-dev/ifconnect/pkg/wiretype"
)

// Parse decodes manifest catalog text into a list of Entry values. The text
// is lines of "command_id,type,name\n". A name may legitimately contain
// commas, so each line is split on only the first two commas — the
// remainder of the line, unsplit, is the name. Lines whose command_id field
// does not parse as an integer are ignored rather than rejected.
func Parse(text string) []Entry {
	lines := strings.Split(text, "\n")
	entries := make([]Entry, 0, len(lines))
	for _, line := range lines {
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, ",", 3)
		if len(parts) != 3 {
			continue
		}
		idRaw, err := strconv.ParseInt(strings.TrimSpace(parts[0]), 10, 32)
		if err != nil {
			continue
		}
		typeRaw, err := strconv.ParseInt(strings.TrimSpace(parts[1]), 10, 32)
		if err != nil {
			continue
		}
		entries = append(entries, Entry{
			ID:   protocol.CommandID(idRaw),
			Type: wiretype.ParseType(int32(typeRaw)),
			Name: parts[2],
		})
	}
	return entries
}
