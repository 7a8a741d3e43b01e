/* ---------------------------------------------------------------------------
** This software is in the public domain, furnished "as is", without technical
** support, and with no warranty, express or implied, as to its usefulness for
** any purpose.
** -------------------------------------------------------------------------*/

package cmd

import (
	"encoding/base64"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/mpromonet/gin-postproc/internal/params"
	"github.com/mpromonet/gin-postproc/internal/processor"
)

var analyzeOpts struct {
	processor string
	engine    string
	input     string
	output    string
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Decode one raw float32 tensor file and print the result",
	RunE: func(cmd *cobra.Command, args []string) error {
		setupLogging(logLevel)
		out := cmd.OutOrStdout()
		if analyzeOpts.output != "" {
			f, err := os.Create(analyzeOpts.output)
			if err != nil {
				return err
			}
			defer f.Close()
			out = f
		}
		return analyze(out, analyzeOpts.processor, analyzeOpts.engine, analyzeOpts.input)
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeOpts.processor, "processor", processor.NameDetection, "processor to run (detection, posenet)")
	analyzeCmd.Flags().StringVar(&analyzeOpts.engine, "engine", "", "engine configuration document")
	analyzeCmd.Flags().StringVar(&analyzeOpts.input, "input", "", "raw little-endian float32 tensor")
	analyzeCmd.Flags().StringVar(&analyzeOpts.output, "output", "", "output file (default stdout)")
	_ = analyzeCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(analyzeCmd)
}

// analyze writes the serialized result of one tensor to w. Binary records
// are written base64 encoded.
func analyze(w io.Writer, name, enginePath, inputPath string) error {
	proc, err := processor.New(name)
	if err != nil {
		return err
	}
	if enginePath != "" {
		doc, err := os.ReadFile(enginePath)
		if err != nil {
			return fmt.Errorf("read engine configuration: %w", err)
		}
		answer, err := proc.Configure(doc)
		if err != nil {
			code := processor.CodeOf(err)
			corrected := code == processor.OutOfRange || code == processor.InvalidParam || code == processor.InvalidParamSetError
			if !corrected || isErrorDocument(answer) {
				return err
			}
			log.Warn().Err(err).RawJSON("corrected", answer).Msg("Engine configuration corrected")
		}
	}

	raw, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("read tensor: %w", err)
	}
	res, err := proc.AnalyzeBytesResult(raw)
	if err != nil {
		return err
	}
	out := res.Data
	if res.Format == params.FormatBase64 {
		out = []byte(base64.StdEncoding.EncodeToString(out) + "\n")
	}
	_, err = w.Write(out)
	return err
}

// isErrorDocument reports whether a Configure answer rejected the whole
// document rather than correcting fields.
func isErrorDocument(doc []byte) bool {
	root, err := params.ParseDocument(doc)
	if err != nil {
		return true
	}
	_, ok := root.Root().Object("res_info")
	return ok && !root.Root().Has("ai_models")
}
