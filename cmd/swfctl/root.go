package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"serverless-workflow/backend/internal/config"
	"serverless-workflow/backend/internal/services"
	"serverless-workflow/backend/internal/views/jobs"
)

type cli struct {
	out     io.Writer
	backend string
	client  services.WorkflowAPI
}

func newRootCmd(out io.Writer) *cobra.Command {
	c := &cli{out: out}

	root := &cobra.Command{
		Use:           "swfctl",
		Short:         "Manage serverless workflows through the workflow backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			c.client = services.NewSwfClient(services.NewStaticDiscovery(c.backend))
		},
	}
	root.PersistentFlags().StringVar(&c.backend, "backend", config.DefaultBackendURL, "Base URL of the backend")

	root.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List workflows",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				res, err := c.client.ListWorkflows(cmd.Context())
				if err != nil {
					return err
				}
				return c.print(res)
			},
		},
		&cobra.Command{
			Use:   "get <workflow-id>",
			Short: "Show a workflow and its definition",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				item, err := c.client.GetWorkflow(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return c.print(item)
			},
		},
		&cobra.Command{
			Use:   "instances",
			Short: "List process instances",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				res, err := c.client.ListInstances(cmd.Context())
				if err != nil {
					return err
				}
				return c.print(res)
			},
		},
		&cobra.Command{
			Use:   "jobs <instance-id>",
			Short: "Show the timers of a process instance",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				list, err := c.client.GetInstanceJobs(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return c.printJobs(jobs.Rows(list, time.Now()))
			},
		},
		c.createCmd(),
		&cobra.Command{
			Use:   "delete <workflow-id>",
			Short: "Delete a workflow definition",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := c.client.DeleteWorkflowDefinition(cmd.Context(), args[0]); err != nil {
					return err
				}
				_, err := fmt.Fprintf(c.out, "deleted %s\n", args[0])
				return err
			},
		},
		&cobra.Command{
			Use:   "specs",
			Short: "List the API specification files used by workflows",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				res, err := c.client.GetSpecs(cmd.Context())
				if err != nil {
					return err
				}
				return c.print(res)
			},
		},
	)
	return root
}

func (c *cli) createCmd() *cobra.Command {
	var uri string
	cmd := &cobra.Command{
		Use:   "create <file>",
		Short: "Upload a workflow definition",
		Long: `Upload a workflow definition file. The stored file name defaults to
the base name of <file> and can be changed with --uri.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			if uri == "" {
				uri = filepath.Base(args[0])
			}
			item, err := c.client.CreateWorkflowDefinition(cmd.Context(), uri, string(content))
			if err != nil {
				return err
			}
			return c.print(item)
		},
	}
	cmd.Flags().StringVar(&uri, "uri", "", "File name to store the definition under")
	return cmd
}

func (c *cli) print(v any) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (c *cli) printJobs(rows []jobs.Row) error {
	w := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	for i, h := range jobs.Headers {
		if i > 0 {
			fmt.Fprint(w, "\t")
		}
		fmt.Fprint(w, h.Title)
	}
	fmt.Fprintln(w)
	for _, r := range rows {
		fmt.Fprintf(w, "%s\t%s\t%s\n", r.JobID, r.Status, r.ExpirationTime)
	}
	return w.Flush()
}
