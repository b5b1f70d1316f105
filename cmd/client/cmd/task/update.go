package task

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"gophtasks/cmd/client/cmd/output"
	"gophtasks/cmd/client/cmd/types"
	"gophtasks/internal/domain/task"
)

var (
	updateTitle            string
	updateDescription      string
	updateDue              string
	updatePriority         string
	updateClearDescription bool
	updateClearDue         bool
)

var UpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Изменить задачу",
	Long: `Изменение полей задачи. Меняются только переданные флаги.

Флаги --clear-description и --clear-due очищают необязательные поля.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}
		id, err := types.ParseID(args[0])
		if err != nil {
			return err
		}

		patch, err := buildPatch(cmd)
		if err != nil {
			return err
		}
		if patch.Empty() {
			return errors.New("не указано ни одного изменения")
		}

		t, err := app.Tasks().Update(cmd.Context(), id, patch)
		if err != nil {
			return fmt.Errorf("ошибка изменения задачи: %w", err)
		}
		return output.Task(cmd.OutOrStdout(), t)
	},
}

func buildPatch(cmd *cobra.Command) (task.Patch, error) {
	flags := cmd.Flags()
	var patch task.Patch

	if flags.Changed("title") {
		patch.Title = task.Some(updateTitle)
	}
	switch {
	case updateClearDescription && flags.Changed("description"):
		return patch, errors.New("флаги --description и --clear-description несовместимы")
	case updateClearDescription:
		patch.Description = task.Some[*string](nil)
	case flags.Changed("description"):
		patch.Description = task.Some(&updateDescription)
	}
	switch {
	case updateClearDue && flags.Changed("due"):
		return patch, errors.New("флаги --due и --clear-due несовместимы")
	case updateClearDue:
		patch.DueDate = task.Some[*string](nil)
	case flags.Changed("due"):
		patch.DueDate = task.Some(&updateDue)
	}
	if flags.Changed("priority") {
		p, err := task.ParsePriority(updatePriority)
		if err != nil {
			return patch, err
		}
		patch.Priority = task.Some(p)
	}
	return patch, nil
}

func init() {
	UpdateCmd.Flags().StringVarP(&updateTitle, "title", "t", "", "новое название")
	UpdateCmd.Flags().StringVarP(&updateDescription, "description", "d", "", "новое описание")
	UpdateCmd.Flags().StringVar(&updateDue, "due", "", "новый срок (ISO-8601)")
	UpdateCmd.Flags().StringVarP(&updatePriority, "priority", "p", "", "новый приоритет")
	UpdateCmd.Flags().BoolVar(&updateClearDescription, "clear-description", false, "очистить описание")
	UpdateCmd.Flags().BoolVar(&updateClearDue, "clear-due", false, "очистить срок")
}
