package recommend

import (
	"strconv"
	"strings"

	"github.com/kailas-cloud/profilematch/internal/domain"
)

// RenderContext renders ranked profiles into the text block embedded in the system turn.
// Blocks keep the ranked order and are separated by a blank line.
func RenderContext(profiles []domain.Profile) string {
	blocks := make([]string, len(profiles))
	for i := range profiles {
		blocks[i] = renderProfile(&profiles[i])
	}
	return strings.Join(blocks, "\n\n")
}

func renderProfile(p *domain.Profile) string {
	var b strings.Builder
	line := func(label, value string) {
		b.WriteString(label)
		b.WriteString(": ")
		b.WriteString(value)
	}

	line("Name", p.Name)
	b.WriteString("\n")
	line("Handle", p.Handle)
	b.WriteString("\n")
	line("Bio", p.Bio)
	b.WriteString("\n")
	line("Description", p.Description)
	b.WriteString("\n")
	line("Tags", strings.Join(p.Tags, ", "))
	b.WriteString("\n")
	line("Followers", strconv.FormatInt(p.Stat(domain.StatFollowers), 10))
	b.WriteString("\n")
	line("Free items", strconv.FormatInt(p.Stat(domain.StatFreeItems), 10))
	b.WriteString("\n")
	line("Paid items", strconv.FormatInt(p.Stat(domain.StatPaidItems), 10))

	return b.String()
}
