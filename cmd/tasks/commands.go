package main

import (
	"errors"
	"fmt"

	"github.com/kalpovskii/taskboard/internal/app/models"
	"github.com/spf13/cobra"
)

func newListCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List tasks in the stored sort order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return s.list(cmd)
		},
	}
}

func (s *session) list(cmd *cobra.Command) error {
	intent, err := s.toggler.Current()
	if err != nil {
		return err
	}
	tasks, err := s.api.List(cmd.Context(), intent)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Sort: %s\n", intent)
	return renderTable(cmd.OutOrStdout(), tasks)
}

func newSortCmd(s *session) *cobra.Command {
	var reset bool

	cmd := &cobra.Command{
		Use:   "sort <status|dueDate|createdAt>",
		Short: "Toggle the sort order for a field, then list",
		Long: "Each call on the same field moves through ascending, descending and back to the\n" +
			"default order. Choosing a different field starts again at ascending.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch {
			case reset:
				if err := s.toggler.Clear(); err != nil {
					return err
				}
			case len(args) == 1:
				if _, err := s.toggler.Toggle(args[0]); err != nil {
					return err
				}
			default:
				return errors.New("a field or --clear is required")
			}
			return s.list(cmd)
		},
	}
	cmd.Flags().BoolVar(&reset, "clear", false, "return to the default order")
	return cmd
}

func newShowCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			task, err := s.api.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return renderTask(cmd.OutOrStdout(), task)
		},
	}
}

type taskFlags struct {
	title       string
	description string
	due         string
	status      string
}

func (f *taskFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.title, "title", "", "task title")
	cmd.Flags().StringVar(&f.description, "description", "", "task description")
	cmd.Flags().StringVar(&f.due, "due", "", "due date, e.g. 2025-03-01 or 2025-03-01T17:00")
	cmd.Flags().StringVar(&f.status, "status", "", "PENDING, IN_PROGRESS or COMPLETED")
}

func newCreateCmd(s *session) *cobra.Command {
	var f taskFlags

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a task",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in := models.CreateTaskInput{Title: f.title}
			flags := cmd.Flags()
			if flags.Changed("description") {
				in.Description = models.NullableOf(f.description)
			}
			if flags.Changed("due") {
				in.DueDate = models.NullableOf(f.due)
			}
			if flags.Changed("status") {
				status := models.Status(f.status)
				in.Status = &status
			}

			task, err := s.api.Create(cmd.Context(), in)
			if err != nil {
				return err
			}
			return renderTask(cmd.OutOrStdout(), task)
		},
	}
	f.register(cmd)
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func newUpdateCmd(s *session) *cobra.Command {
	var f taskFlags

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change fields of a task",
		Long:  "Only the flags given are sent. An empty --due or --description clears the value.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var in models.UpdateTaskInput
			flags := cmd.Flags()
			if flags.Changed("title") {
				in.Title = &f.title
			}
			if flags.Changed("description") {
				in.Description = nullableOrClear(f.description)
			}
			if flags.Changed("due") {
				in.DueDate = nullableOrClear(f.due)
			}
			if flags.Changed("status") {
				status := models.Status(f.status)
				in.Status = &status
			}
			if in == (models.UpdateTaskInput{}) {
				return errors.New("nothing to update: pass at least one of --title, --description, --due, --status")
			}

			task, err := s.api.Update(cmd.Context(), args[0], in)
			if err != nil {
				return err
			}
			return renderTask(cmd.OutOrStdout(), task)
		},
	}
	f.register(cmd)
	return cmd
}

// nullableOrClear sends an explicit null for an empty value.
func nullableOrClear(v string) models.Nullable[string] {
	if v == "" {
		return models.Nullable[string]{Set: true}
	}
	return models.NullableOf(v)
}

func newDeleteCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := s.api.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		},
	}
}
