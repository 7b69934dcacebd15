package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	aztecgo "github.com/ericlevine/aztecgo"
)

const (
	outputFormatText = "text"
	outputFormatJSON = "json"
	outputFormatYAML = "yaml"
)

// fileReport is the outcome of one input file.
type fileReport struct {
	File    string            `json:"file" yaml:"file"`
	Symbols []*aztecgo.Result `json:"symbols" yaml:"symbols"`
	Stage   string            `json:"stage,omitempty" yaml:"stage,omitempty"`
	Error   string            `json:"error,omitempty" yaml:"error,omitempty"`
}

type decodeFunc func(cmd *cobra.Command, path string) ([]*aztecgo.Result, error)

// run decodes every path and prints the reports. Text output is streamed per
// file; json and yaml print one document after the last file.
func (a *app) run(cmd *cobra.Command, paths []string, decode decodeFunc) error {
	defer a.writeMetrics()

	printer := newTextPrinter(cmd.OutOrStdout(), cmd.ErrOrStderr(), !a.cfg.Output.NoColor, len(paths) > 1)
	reports := make([]fileReport, 0, len(paths))
	failed := 0
	for _, path := range paths {
		if err := cmd.Context().Err(); err != nil {
			return err
		}
		results, err := decode(cmd, path)
		a.metrics.ObserveFile(err)

		report := fileReport{File: path, Symbols: results}
		if report.Symbols == nil {
			report.Symbols = []*aztecgo.Result{}
		}
		if err != nil {
			failed++
			report.Stage = string(aztecgo.StageOf(err))
			report.Error = err.Error()
			a.logger.Debug("file failed", "file", path, "stage", report.Stage, "error", err)
		}
		if a.cfg.Output.Format == outputFormatText {
			printer.print(report)
		}
		reports = append(reports, report)
	}

	if err := writeReports(cmd.OutOrStdout(), a.cfg.Output.Format, reports); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(paths))
	}
	return nil
}

func writeReports(w io.Writer, format string, reports []fileReport) error {
	switch format {
	case outputFormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(reports)
	case outputFormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(reports); err != nil {
			return err
		}
		return enc.Close()
	}
	return nil
}

type textPrinter struct {
	out, errOut io.Writer
	prefix      bool
	meta, fail  *color.Color
}

func newTextPrinter(out, errOut io.Writer, colored, prefix bool) *textPrinter {
	p := &textPrinter{
		out:    out,
		errOut: errOut,
		prefix: prefix,
		meta:   color.New(color.FgCyan),
		fail:   color.New(color.FgRed, color.Bold),
	}
	if !colored {
		p.meta.DisableColor()
		p.fail.DisableColor()
	}
	return p
}

func (p *textPrinter) print(r fileReport) {
	if r.Error != "" {
		p.fail.Fprintf(p.errOut, "%s: error: %s\n", r.File, r.Error)
		return
	}
	for _, res := range r.Symbols {
		if p.prefix {
			fmt.Fprintf(p.out, "%s: ", r.File)
		}
		p.meta.Fprintf(p.out, "[%s]", res.Metadata.String())
		fmt.Fprintf(p.out, " %s\n", res.Text)
	}
}
