package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	assignmentSvc "collegefee_backend/internals/features/finance/assignments/service"
)

func newBulkAssignCmd(e *env) *cobra.Command {
	var (
		templateID string
		in         assignmentSvc.BulkInput
	)
	cmd := &cobra.Command{
		Use:   "bulk-assign",
		Short: "Assign a fee template to every matching student without an assignment",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(templateID)
			if err != nil {
				return fmt.Errorf("--template must be a uuid: %w", err)
			}
			in.TemplateID = id
			if err := e.open(); err != nil {
				return err
			}
			res, err := assignmentSvc.BulkAssign(cmd.Context(), e.db, in)
			if err != nil {
				return err
			}
			e.log.Info("bulk assign finished",
				zap.Bool("dry_run", res.DryRun),
				zap.Int("matched", res.Matched),
				zap.Int("assigned", res.Assigned),
				zap.Int("skipped", res.Skipped),
				zap.Int("failed", len(res.Failed)))
			return printJSON(cmd, res)
		},
	}
	f := cmd.Flags()
	f.StringVar(&templateID, "template", "", "fee template id")
	f.StringVar(&in.AcademicYear, "year", "", "academic year (defaults to the template's)")
	f.IntVar(&in.Semester, "semester", 0, "semester for semester invoices")
	f.StringVar(&in.AdmissionMode, "admission-mode", "", "override the template's admission mode")
	f.StringVar(&in.Department, "department", "", "override the template's department")
	f.BoolVar(&in.DryRun, "dry-run", false, "only report matching students")
	_ = cmd.MarkFlagRequired("template")
	return cmd
}
