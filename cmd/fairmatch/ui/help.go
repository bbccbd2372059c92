package ui

import (
	"github.com/charmbracelet/glamour"
)

const helpMarkdown = `# fairmatch

A skill-based matchmaking simulator. Players enter a queue ordered by
skill; every player keeps its best candidate game (two teams of *k*
drawn from a bounded skill window) in a min-heap, and creating a match
commits the heap minimum.

## Scoring

| term | meaning |
|------|---------|
| s_p(X) | p-norm team skill; p=inf takes the strongest player |
| d_p(X,Y) | fairness, the gap between team skills |
| v_q(Z) | uniformity, spread of all game players around their mean |
| f(X,Y) | imbalance = α·d_p + v_q |
| g(X,Y) | priority = f + β·min(enqueue time), time-sensitive mode |

Lower is better; the heap surfaces the cheapest candidate.

## Playback

The simulation page shows the queue (anchor, skill window, and found
teams highlighted), the candidate heap in array order, and the created
matches. The statistics page charts the recorded series per step.

Press **s** to persist the current run; load it later with
` + "`fairmatch runs show <id> --replay`" + `.
`

// viewHelp renders the help page through glamour, falling back to the raw
// markdown when the renderer cannot be built.
func (m Model) viewHelp(width int) string {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(min(width, 100)),
	)
	if err != nil {
		return helpMarkdown
	}
	out, err := renderer.Render(helpMarkdown)
	if err != nil {
		return helpMarkdown
	}
	return out
}
