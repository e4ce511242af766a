package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/james-see/acidstep/pkg/converter"
)

var outputFile string

var convertCmd = &cobra.Command{
	Use:   "convert <input>",
	Short: "Auto-detect and convert between formats",
	Long:  `Automatically detects input format and converts to the output format based on file extension.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runConvert,
}

// pairCommand builds one of the fixed-direction conversion commands
func pairCommand(from, to converter.Format) *cobra.Command {
	name := string(from) + "2" + string(to)
	cmd := &cobra.Command{
		Use:   fmt.Sprintf("%s <input%s>", name, from.Extension()),
		Short: fmt.Sprintf("Convert %s to %s format", from.Extension(), to.Extension()),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPair(args[0], from, to)
		},
	}
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", fmt.Sprintf("Output %s file path", to.Extension()))
	return cmd
}

func addConvertCommands(root *cobra.Command) {
	convertCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file path (required)")
	_ = convertCmd.MarkFlagRequired("output")
	root.AddCommand(convertCmd)

	pairs := [][2]converter.Format{
		{converter.FormatMIDI, converter.FormatSeq},
		{converter.FormatSeq, converter.FormatMIDI},
		{converter.FormatMIDI, converter.FormatSyx},
		{converter.FormatSyx, converter.FormatMIDI},
		{converter.FormatSeq, converter.FormatSyx},
		{converter.FormatSyx, converter.FormatSeq},
	}
	for _, p := range pairs {
		root.AddCommand(pairCommand(p[0], p[1]))
	}
}

func getOutputPath(input, defaultExt string) string {
	if outputFile != "" {
		return outputFile
	}
	return trimExt(input) + defaultExt
}

func runConvert(cmd *cobra.Command, args []string) error {
	input := args[0]
	conv, err := getConverter()
	if err != nil {
		return err
	}

	fmt.Printf("Converting %s -> %s\n", input, outputFile)
	if err := conv.ConvertFile(input, outputFile); err != nil {
		return err
	}
	fmt.Println("Conversion complete!")
	return nil
}

func runPair(input string, from, to converter.Format) error {
	output := getOutputPath(input, to.Extension())

	conv, err := getConverter()
	if err != nil {
		return err
	}
	data, err := os.ReadFile(input)
	if err != nil {
		return err
	}

	result, err := conv.Convert(from, to, data)
	if err != nil {
		return err
	}

	if err := os.WriteFile(output, result, 0644); err != nil {
		return err
	}

	logger.Info("converted", "input", input, "output", output, "from", from, "to", to)
	fmt.Printf("Converted %s -> %s\n", input, output)
	return nil
}
