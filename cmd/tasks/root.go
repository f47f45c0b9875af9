package main

import (
	"fmt"
	"net/http"

	"github.com/kalpovskii/taskboard/internal/client"
	"github.com/kalpovskii/taskboard/internal/config"
	"github.com/kalpovskii/taskboard/internal/sortintent"
	"github.com/spf13/cobra"
)

// session is what every subcommand works against, built once the flags are parsed.
type session struct {
	api     *client.Client
	toggler *sortintent.Toggler
}

func newRootCmd() *cobra.Command {
	var (
		apiURL    string
		stateFile string
		s         = &session{}
	)

	root := &cobra.Command{
		Use:           "tasks",
		Short:         "Task board client",
		Long:          "List, sort, create, edit and delete tasks through the task API.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("api") {
				apiURL = cfg.Client.BaseURL
			}
			if !cmd.Flags().Changed("state") {
				stateFile = cfg.Client.StateFile
			}
			if apiURL == "" {
				return fmt.Errorf("client.base_url is not configured")
			}

			s.api = client.New(apiURL, &http.Client{Timeout: cfg.Client.Timeout})
			s.toggler = sortintent.NewToggler(sortintent.NewFileStore(stateFile))
			return nil
		},
	}

	root.PersistentFlags().StringVar(&apiURL, "api", "", "base URL of the task API (default from TASKBOARD_CLIENT_BASE_URL)")
	root.PersistentFlags().StringVar(&stateFile, "state", "", "path of the sort state file (default from TASKBOARD_CLIENT_STATE_FILE)")

	root.AddCommand(
		newListCmd(s),
		newSortCmd(s),
		newShowCmd(s),
		newCreateCmd(s),
		newUpdateCmd(s),
		newDeleteCmd(s),
	)
	return root
}
