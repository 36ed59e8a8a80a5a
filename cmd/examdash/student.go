package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newStudentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "student",
		Short: "Manage students",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "add NAME",
		Short: "Register a student",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runStudentAddCmd,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List students",
		Args:  cobra.NoArgs,
		RunE:  runStudentListCmd,
	})
	return cmd
}

func runStudentAddCmd(cmd *cobra.Command, args []string) error {
	st, closeStore, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	student, err := st.CreateStudent(cmd.Context(), strings.Join(args, " "))
	if err != nil {
		return fmt.Errorf("failed to create student: %w", err)
	}
	log.Info("student created", "student", student.ID, "name", student.Name)
	if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Created student %s (%s)\n", student.Name, student.ID); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func runStudentListCmd(cmd *cobra.Command, _ []string) error {
	st, closeStore, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	students, err := st.ListStudents(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list students: %w", err)
	}
	out := cmd.OutOrStdout()
	if len(students) == 0 {
		_, err := fmt.Fprintln(out, "No students found.")
		return err
	}
	for _, s := range students {
		if _, err := fmt.Fprintf(out, "%s  %s\n", s.ID, s.Name); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}
