package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/KevinDennyII/crm-windshield-repair-sa-sub003/internal/invoice"
)

// ClassifyOptions defines available flags for the classify command.
type ClassifyOptions struct {
	File       string
	JSONOutput bool
	Stdout     io.Writer
	Stderr     io.Writer
}

// ClassifySummary describes the JSON response for classify.
type ClassifySummary struct {
	JobNumber   string          `json:"jobNumber"`
	Variant     invoice.Variant `json:"variant"`
	Signature   bool            `json:"signature"`
	Calibration bool            `json:"calibrationDisclaimer"`
}

// ClassifyCommand prints the document variant of a job file.
func ClassifyCommand(opts ClassifyOptions) int {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if opts.File == "" {
		_, _ = fmt.Fprintln(opts.Stderr, "classify: job file is required")
		return ExitUsage
	}
	job, err := ReadJob(opts.File)
	if err != nil {
		_, _ = fmt.Fprintf(opts.Stderr, "classify: %v\n", err)
		return ExitUsage
	}
	variant := invoice.Classify(job)
	summary := ClassifySummary{
		JobNumber:   job.JobNumber,
		Variant:     variant,
		Signature:   invoice.IncludesSignature(job, variant),
		Calibration: invoice.IncludesCalibrationDisclaimer(job, variant),
	}
	if opts.JSONOutput {
		if err := json.NewEncoder(opts.Stdout).Encode(summary); err != nil {
			_, _ = fmt.Fprintf(opts.Stderr, "classify: encode json: %v\n", err)
			return ExitUsage
		}
		return ExitOK
	}
	_, _ = fmt.Fprintln(opts.Stdout, variant)
	return ExitOK
}
