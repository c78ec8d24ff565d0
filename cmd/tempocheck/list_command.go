package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"tempocheck/internal/testlist"
)

type listEntryPayload struct {
	Line        int     `json:"line"`
	Source      string  `json:"source,omitempty"`
	Label       string  `json:"label,omitempty"`
	ExpectedBPM float64 `json:"expected_bpm,omitempty"`
	Error       string  `json:"error,omitempty"`
	Raw         string  `json:"raw,omitempty"`
}

type listPayload struct {
	Path    string             `json:"path"`
	Entries []listEntryPayload `json:"entries"`
}

func newListCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show the parsed reference list",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			entries, err := testlist.ReadFile(cfg.Paths.List)
			if err != nil {
				return err
			}

			if asJSON {
				payload := listPayload{Path: cfg.Paths.List, Entries: make([]listEntryPayload, 0, len(entries))}
				for _, entry := range entries {
					item := listEntryPayload{Line: entry.Number}
					if entry.Err != nil {
						item.Error = entry.Err.Error()
						item.Raw = entry.Raw
					} else {
						item.Source = entry.Case.Source
						item.Label = entry.Case.Label
						item.ExpectedBPM = entry.Case.ExpectedBPM
					}
					payload.Entries = append(payload.Entries, item)
				}
				return writeJSON(cmd, payload)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Reference list: %s\n", cfg.Paths.List)
			if len(entries) == 0 {
				fmt.Fprintln(out, "No reference cases found")
				return nil
			}

			rows := make([][]string, 0, len(entries))
			malformed := 0
			for _, entry := range entries {
				if entry.Err != nil {
					malformed++
					continue
				}
				rows = append(rows, []string{
					strconv.Itoa(entry.Number),
					entry.Case.Source,
					entry.Case.Label,
					strconv.FormatFloat(entry.Case.ExpectedBPM, 'f', -1, 64),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Line", "Source", "Label", "BPM"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight},
			))
			if malformed > 0 {
				fmt.Fprintf(out, "%d line(s) did not match the entry grammar and will be skipped during runs\n", malformed)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the parsed list as JSON")
	return cmd
}
