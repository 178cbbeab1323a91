package app

import (
	"strings"

	"github.com/example/odkupload/internal/ports/primary"
)

// ResultTitle is the title of the notification shown after a pass.
const ResultTitle = "Upload results"

// FormatResultMessage joins "<display name> - <message>" for every outcome, in pass order,
// separated by blank lines.
func FormatResultMessage(outcomes []*primary.InstanceOutcome) string {
	blocks := make([]string, 0, len(outcomes))
	for _, o := range outcomes {
		name := o.DisplayName
		if name == "" {
			name = "?"
		}
		blocks = append(blocks, name+" - "+o.Message)
	}
	return strings.Join(blocks, "\n\n")
}
