package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/sean-lai-sh/agent-manager/internal/orchestrator"
)

// transitionOutput is the JSON shape printed for a handled intent when
// --json is set.
type transitionOutput struct {
	Applied bool   `json:"applied"`
	From    string `json:"from,omitempty"`
	To      string `json:"to,omitempty"`
	Version int    `json:"version"`
	Note    string `json:"note,omitempty"`
}

// printTransition summarizes one handled intent for the terminal.
func printTransition(res *orchestrator.Result) {
	if jsonOutput {
		printTransitionJSON(res)
		return
	}

	if res.Record == nil {
		fmt.Println("No change")
		return
	}
	if res.Record.From != res.Record.To {
		fmt.Printf("Phase: %s -> %s\n", res.Record.From, res.Record.To)
	} else {
		fmt.Printf("Phase: %s\n", res.Record.To)
	}
	fmt.Printf("Version: %d\n", res.State.Version)

	// Surface the freshest discussion note, which carries rejection and
	// failure explanations.
	if n := len(res.State.Discussion); n > 0 {
		fmt.Printf("Note: %s\n", res.State.Discussion[n-1].Message)
	}
}

func printTransitionJSON(res *orchestrator.Result) {
	out := transitionOutput{Version: res.State.Version}
	if res.Record != nil {
		out.Applied = true
		out.From = res.Record.From.String()
		out.To = res.Record.To.String()
		if n := len(res.State.Discussion); n > 0 {
			out.Note = res.State.Discussion[n-1].Message
		}
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		fmt.Println("{}")
		return
	}
	fmt.Println(string(data))
}
