package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/Chanu-03/Study-Mate/internal/app"
	"github.com/Chanu-03/Study-Mate/internal/domain"
	"github.com/Chanu-03/Study-Mate/internal/logging"
	"github.com/Chanu-03/Study-Mate/internal/service"
)

var errNoFiles = errors.New("no file could be processed")

type askOptions struct {
	files  []string
	output string
}

type sourceOutput struct {
	Rank       int     `json:"rank"`
	Score      float64 `json:"score"`
	Document   string  `json:"document"`
	ChunkIndex int     `json:"chunk_index"`
	Preview    string  `json:"preview"`
}

type fileOutput struct {
	Name  string `json:"name"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

type askOutput struct {
	Question string         `json:"question"`
	Answer   string         `json:"answer"`
	Error    string         `json:"error,omitempty"`
	NotFound bool           `json:"not_found"`
	Sources  []sourceOutput `json:"sources"`
	Files    []fileOutput   `json:"files"`
}

func newAskCmd(global *globalOptions) *cobra.Command {
	opts := &askOptions{}
	cmd := &cobra.Command{
		Use:   `ask --file <path> [--file <path>...] "question"`,
		Short: "Process files, answer one question and exit",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.output != "text" && opts.output != "json" {
				return fmt.Errorf("--output must be text or json, got %q", opts.output)
			}
			return runAsk(cmd, global, opts, strings.Join(args, " "))
		},
	}
	cmd.Flags().StringArrayVarP(&opts.files, "file", "f", nil, "File or glob to process (repeatable)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "text", "Output format: text or json")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func runAsk(cmd *cobra.Command, global *globalOptions, opts *askOptions, question string) error {
	cfg, err := global.load()
	if err != nil {
		return err
	}
	if err := logging.Init(logging.Options(cfg.Log, false)); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logging.Flush()

	session, err := app.Build(cfg)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	report := session.IngestPaths(ctx, opts.files)

	out := askOutput{Question: question, Sources: []sourceOutput{}, Files: fileOutputs(report)}
	var runErr error
	if report.Processed == 0 {
		runErr = errNoFiles
	} else {
		ans, err := session.Ask(ctx, question, cfg.Retrieval.TopK)
		if err != nil {
			runErr = err
		} else {
			out.Answer = ans.Text
			out.NotFound = ans.NotFound
			out.Sources = sourceOutputs(ans.Hits, cfg.Retrieval.PreviewLength)
			runErr = ans.Err
		}
	}
	if runErr != nil {
		out.Error = runErr.Error()
	}

	w := cmd.OutOrStdout()
	if opts.output == "json" {
		err = writeJSON(w, out)
	} else {
		err = writeText(w, out, report)
	}
	if err != nil {
		return err
	}
	return runErr
}

func fileOutputs(report service.BatchReport) []fileOutput {
	files := make([]fileOutput, 0, len(report.Results))
	for _, r := range report.Results {
		f := fileOutput{Name: r.Name, OK: r.OK()}
		if r.Err != nil {
			f.Error = r.Err.Error()
		}
		files = append(files, f)
	}
	return files
}

func sourceOutputs(hits []domain.Hit, previewLen int) []sourceOutput {
	sources := make([]sourceOutput, 0, len(hits))
	for i, h := range hits {
		sources = append(sources, sourceOutput{
			Rank:       i + 1,
			Score:      h.Score,
			Document:   h.Metadata.Document,
			ChunkIndex: h.Metadata.ChunkIndex,
			Preview:    domain.Preview(h.Metadata.Text, previewLen),
		})
	}
	return sources
}

func writeJSON(w io.Writer, out askOutput) error {
	data, err := sonic.ConfigStd.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func writeText(w io.Writer, out askOutput, report service.BatchReport) error {
	var b strings.Builder
	for _, r := range report.Results {
		switch {
		case r.OK():
			fmt.Fprintf(&b, "ok    %s (%s characters, %d chunks)\n", r.Name, humanize.Comma(int64(r.Record.Length)), r.Record.Chunks)
		case r.Warning():
			fmt.Fprintf(&b, "warn  %s: %v\n", r.Name, r.Err)
		default:
			fmt.Fprintf(&b, "error %s: %v\n", r.Name, r.Err)
		}
	}
	fmt.Fprintf(&b, "Processed %d/%d files\n", report.Processed, report.Total)
	if out.Answer != "" {
		fmt.Fprintf(&b, "\nQ: %s\n\n%s\n", out.Question, out.Answer)
	}
	if len(out.Sources) > 0 {
		b.WriteString("\nSources:\n")
		for _, s := range out.Sources {
			fmt.Fprintf(&b, "%d. %s — score %.3f (chunk %d)\n   %s\n", s.Rank, s.Document, s.Score, s.ChunkIndex, strings.ReplaceAll(s.Preview, "\n", "\n   "))
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}
