package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/valter-silva-au/estimate-pro/internal/core"
)

// affirmatives are the inputs accepted as approval.
var affirmatives = map[string]bool{
	"y":       true,
	"yes":     true,
	"approve": true,
}

// negatives trigger a follow-up prompt for modification feedback.
var negatives = map[string]bool{
	"n":      true,
	"no":     true,
	"reject": true,
}

// consoleDecisionProvider reads approval decisions from an interactive
// terminal session. Any input that is neither approval nor rejection is
// taken as modification feedback directly.
type consoleDecisionProvider struct {
	in  *bufio.Reader
	out io.Writer
}

// NewConsoleDecisionProvider creates a DecisionProvider reading from in
// and prompting on out.
func NewConsoleDecisionProvider(in io.Reader, out io.Writer) core.DecisionProvider {
	return &consoleDecisionProvider{
		in:  bufio.NewReader(in),
		out: out,
	}
}

func (p *consoleDecisionProvider) Decide(st *core.WorkflowState) (core.Decision, error) {
	for {
		fmt.Fprint(p.out, "\nApprove this estimate? [y/n, or describe the changes you want]: ")
		line, err := p.readLine()
		if err != nil {
			// EOF or closed input ends the session cleanly.
			return core.Decision{}, err
		}
		if line == "" {
			continue
		}

		lowered := strings.ToLower(line)
		if affirmatives[lowered] {
			return core.Decision{Approved: true}, nil
		}
		if negatives[lowered] {
			fmt.Fprint(p.out, "Describe the changes you want: ")
			feedback, err := p.readLine()
			if err != nil {
				return core.Decision{}, err
			}
			if feedback == "" {
				continue
			}
			return core.Decision{Feedback: feedback}, nil
		}

		return core.Decision{Feedback: line}, nil
	}
}

func (p *consoleDecisionProvider) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
