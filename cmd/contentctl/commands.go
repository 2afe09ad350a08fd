package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/tendant/contentitem/pkg/contentitem"
	"github.com/tendant/contentitem/pkg/contentitem/config"
	"github.com/tendant/contentitem/pkg/contentitem/scan"
)

type openFunc func(cmd *cobra.Command) (*config.Stack, error)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newMigrateCommand(open openFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the content item table (postgres only)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stack, err := open(cmd)
			if err != nil {
				return err
			}
			defer stack.Close()

			if err := stack.Migrate(cmd.Context()); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Migration complete")
			return nil
		},
	}
}

func newCreateCommand(open openFunc) *cobra.Command {
	var req contentitem.CreateItemRequest

	cmd := &cobra.Command{
		Use:   "create [id]",
		Short: "Register a content item without data",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				req.ID = args[0]
			}

			stack, err := open(cmd)
			if err != nil {
				return err
			}
			defer stack.Close()

			item, err := stack.Items.CreateItem(cmd.Context(), req)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), stack.Items.Formatter().Format(item))
		},
	}

	cmd.Flags().StringVar(&req.Name, "name", "", "item name")
	cmd.Flags().StringVar(&req.TenantID, "tenant", "", "tenant id")
	cmd.Flags().StringVar(&req.MimeType, "mime-type", "", "MIME type the data is served as")
	cmd.Flags().StringVar(&req.CreatedBy, "created-by", "", "creator recorded on the item")

	return cmd
}

func newPutCommand(open openFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "put <id> <file>",
		Short: "Replace the data of a content item with a file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, path := args[0], args[1]
			if _, err := os.Stat(path); err != nil {
				return fmt.Errorf("file does not exist: %s", path)
			}

			stack, err := open(cmd)
			if err != nil {
				return err
			}
			defer stack.Close()

			upload := contentitem.NewFileUpload("file", filepath.Base(path), func() (io.ReadCloser, error) {
				return os.Open(path)
			})
			rep, err := stack.Gateway.SaveData(cmd.Context(), id, upload)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), rep)
		},
	}
}

func newGetCommand(open openFunc) *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Write the data of a content item to a file or stdout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stack, err := open(cmd)
			if err != nil {
				return err
			}
			defer stack.Close()

			data, err := stack.Gateway.GetData(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer data.Close()

			out := cmd.OutOrStdout()
			if outputPath != "" && outputPath != "-" {
				f, err := os.Create(outputPath)
				if err != nil {
					return fmt.Errorf("failed to create output file: %w", err)
				}
				defer f.Close()
				out = f
			}

			n, err := io.Copy(out, data.Stream)
			if err != nil {
				return fmt.Errorf("failed to write data: %w", err)
			}
			if out != cmd.OutOrStdout() {
				fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d bytes (%s) to %s\n", n, data.MediaType, outputPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file (default: stdout)")

	return cmd
}

func newShowCommand(open openFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print a content item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stack, err := open(cmd)
			if err != nil {
				return err
			}
			defer stack.Close()

			item, err := stack.Items.GetItem(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), stack.Items.Formatter().Format(item))
		},
	}
}

func newListCommand(open openFunc) *cobra.Command {
	var tenantID string

	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List content items",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stack, err := open(cmd)
			if err != nil {
				return err
			}
			defer stack.Close()

			items, err := stack.Items.ListItems(cmd.Context(), tenantID)
			if err != nil {
				return err
			}
			for _, item := range items {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%t\t%d\n", item.ID, item.Name, item.ContentAvailable, item.ContentSize)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&tenantID, "tenant", "", "only list items of this tenant")

	return cmd
}

func newDeleteCommand(open openFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a content item and its data",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stack, err := open(cmd)
			if err != nil {
				return err
			}
			defer stack.Close()

			if err := stack.Items.DeleteItem(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		},
	}
}

func newVerifyCommand(open openFunc) *cobra.Command {
	var (
		tenantID string
		repair   bool
		dryRun   bool
	)

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check that every item marked as having data has a blob behind it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stack, err := open(cmd)
			if err != nil {
				return err
			}
			defer stack.Close()

			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelWarn}))
			scanner := scan.New(stack.Registry, logger)
			result, err := scanner.Scan(cmd.Context(), scan.Options{
				TenantID:  tenantID,
				Processor: scan.NewIntegrityChecker(stack.ContentStore, stack.Registry, repair),
				DryRun:    dryRun,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Checked %d items, %d ok, %d failed\n", result.TotalFound, result.TotalProcessed, result.TotalFailed)
			for _, id := range result.FailedIDs {
				fmt.Fprintln(out, id)
			}
			if result.TotalFailed > 0 {
				return fmt.Errorf("%d items failed verification", result.TotalFailed)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&tenantID, "tenant", "", "only verify items of this tenant")
	cmd.Flags().BoolVar(&repair, "repair", false, "mark items with a missing blob as having no content")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "list the items that would be checked")

	return cmd
}

func newEnvCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "env",
		Short: "Describe the environment variables used for configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			desc, err := config.EnvDescription()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), desc)
			return nil
		},
	}
}
