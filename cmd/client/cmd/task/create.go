package task

import (
	"fmt"

	"github.com/spf13/cobra"

	"gophtasks/cmd/client/cmd/output"
	"gophtasks/cmd/client/cmd/types"
	"gophtasks/internal/domain/task"
)

var (
	createTitle       string
	createDescription string
	createDue         string
	createPriority    string
)

var CreateCmd = &cobra.Command{
	Use:   "create [title]",
	Short: "Создать задачу",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		title := createTitle
		if len(args) == 1 {
			title = args[0]
		}

		priority, err := task.ParsePriority(createPriority)
		if err != nil {
			return err
		}

		in := task.CreateInput{Title: title, Priority: priority}
		if cmd.Flags().Changed("description") {
			in.Description = &createDescription
		}
		if cmd.Flags().Changed("due") {
			in.DueDate = &createDue
		}

		t, err := app.Tasks().Create(cmd.Context(), in)
		if err != nil {
			return fmt.Errorf("ошибка создания задачи: %w", err)
		}

		if !output.JSON {
			output.OK(cmd.OutOrStdout(), "Задача создана")
		}
		return output.Task(cmd.OutOrStdout(), t)
	},
}

func init() {
	CreateCmd.Flags().StringVarP(&createTitle, "title", "t", "", "название задачи")
	CreateCmd.Flags().StringVarP(&createDescription, "description", "d", "", "описание")
	CreateCmd.Flags().StringVar(&createDue, "due", "", "срок выполнения (ISO-8601)")
	CreateCmd.Flags().StringVarP(&createPriority, "priority", "p", "", "приоритет: low, medium, high")
}
