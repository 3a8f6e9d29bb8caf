package cmd

import (
	"fmt"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/mrz1836/go-tidy-check/internal/config"
	"github.com/mrz1836/go-tidy-check/internal/discover"
	"github.com/mrz1836/go-tidy-check/internal/runner"
)

// BuildListCmd creates the list command
func (cb *CommandBuilder) BuildListCmd() *cobra.Command {
	flags := &discoveryFlags{}
	var table bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the files a run would check",
		Long: `List the Perl sources a run would check, in the order they would be
checked, after exclude rules are applied.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			if err := flags.apply(cmd, cfg); err != nil {
				return err
			}

			logger, err := cb.newLogger(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			files, err := runner.New(nil, logger).List(cfg.RunOptions())
			if err != nil {
				return err
			}

			if table {
				renderFileTable(cmd, files)
				return nil
			}
			for _, file := range files {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), file); err != nil {
					return err
				}
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVarP(&table, "table", "t", false, "Show files in a table with their type")

	return cmd
}

// renderFileTable prints files with their source type and a count footer
func renderFileTable(cmd *cobra.Command, files []string) {
	tw := tablewriter.NewWriter(cmd.OutOrStdout())
	tw.SetHeader([]string{"#", "File", "Type"})
	tw.SetAutoFormatHeaders(false)
	tw.SetAutoWrapText(false)
	tw.SetAlignment(tablewriter.ALIGN_LEFT)
	tw.SetFooter([]string{"", fmt.Sprintf("%d file(s)", len(files)), ""})

	for i, file := range files {
		tw.Append([]string{strconv.Itoa(i + 1), file, discover.SourceType(file)})
	}
	tw.Render()
}
