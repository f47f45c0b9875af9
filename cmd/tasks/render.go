package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/kalpovskii/taskboard/internal/app/models"
)

const (
	missing    = "—"
	timeLayout = "2006-01-02 15:04"
)

func renderTable(w io.Writer, tasks []models.Task) error {
	if len(tasks) == 0 {
		_, err := fmt.Fprintln(w, "No tasks.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tSTATUS\tDUE\tCREATED\tDESCRIPTION")
	for _, t := range tasks {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			t.ID, oneLine(t.Title), t.Status, formatTime(t.DueDate), t.CreatedAt.Local().Format(timeLayout), text(t.Description))
	}
	return tw.Flush()
}

func renderTask(w io.Writer, t *models.Task) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ID:\t%s\n", t.ID)
	fmt.Fprintf(tw, "Title:\t%s\n", t.Title)
	fmt.Fprintf(tw, "Status:\t%s\n", t.Status)
	fmt.Fprintf(tw, "Due:\t%s\n", formatTime(t.DueDate))
	fmt.Fprintf(tw, "Description:\t%s\n", text(t.Description))
	fmt.Fprintf(tw, "Created:\t%s\n", t.CreatedAt.Local().Format(timeLayout))
	fmt.Fprintf(tw, "Updated:\t%s\n", t.UpdatedAt.Local().Format(timeLayout))
	return tw.Flush()
}

func formatTime(t *time.Time) string {
	if t == nil {
		return missing
	}
	return t.Local().Format(timeLayout)
}

func text(s *string) string {
	if s == nil || *s == "" {
		return missing
	}
	return oneLine(*s)
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
