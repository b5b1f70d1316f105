// Package output печатает результаты команд в текстовом или JSON-виде.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/fatih/color"

	"gophtasks/internal/domain/task"
)

// JSON переключает вывод в формат JSON, задаётся флагом --json.
var JSON bool

var (
	okColor   = color.New(color.FgGreen)
	warnColor = color.New(color.FgYellow)
	errColor  = color.New(color.FgRed)
	dimColor  = color.New(color.Faint)
)

func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func OK(w io.Writer, format string, args ...any) {
	_, _ = okColor.Fprintf(w, "✓ "+format+"\n", args...)
}

func Warn(w io.Writer, format string, args ...any) {
	_, _ = warnColor.Fprintf(w, "⚠ "+format+"\n", args...)
}

// Status раскрашивает статус синхронизации.
func Status(s task.SyncStatus) string {
	switch s {
	case task.StatusSynced:
		return okColor.Sprint(s)
	case task.StatusSyncError:
		return errColor.Sprint(s)
	default:
		return warnColor.Sprint(s)
	}
}

// Task печатает задачу целиком или в JSON при --json.
func Task(w io.Writer, t *task.Task) error {
	if JSON {
		return WriteJSON(w, t)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ID:\t%d\n", t.ID)
	fmt.Fprintf(tw, "Название:\t%s\n", t.Title)
	if t.Description != nil {
		fmt.Fprintf(tw, "Описание:\t%s\n", *t.Description)
	}
	if t.DueDate != nil {
		fmt.Fprintf(tw, "Срок:\t%s\n", *t.DueDate)
	}
	fmt.Fprintf(tw, "Приоритет:\t%s\n", t.Priority)
	fmt.Fprintf(tw, "Выполнена:\t%s\n", yesNo(t.IsCompleted))
	fmt.Fprintf(tw, "Создана:\t%s\n", t.CreatedAt)
	fmt.Fprintf(tw, "Изменена:\t%s\n", t.UpdatedAt)
	fmt.Fprintf(tw, "Синхронизация:\t%s\n", Status(t.SyncStatus))
	if t.SyncErrorDetails != "" {
		fmt.Fprintf(tw, "Ошибка:\t%s\n", errColor.Sprint(t.SyncErrorDetails))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(t.Comments) > 0 {
		fmt.Fprintln(w, "\nКомментарии:")
		for _, c := range t.Comments {
			fmt.Fprintf(w, "  [%d] %s %s\n", c.ID, dimColor.Sprint(c.CreatedAt), c.Content)
		}
	}
	if len(t.Media) > 0 {
		fmt.Fprintln(w, "\nВложения:")
		for _, m := range t.Media {
			fmt.Fprintf(w, "  %s %s\n", m.Type, m.URL)
		}
	}
	return nil
}

// Tasks печатает список задач таблицей.
func Tasks(w io.Writer, tasks []task.Task) error {
	if JSON {
		return WriteJSON(w, tasks)
	}
	if len(tasks) == 0 {
		fmt.Fprintln(w, "Задач нет")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tГОТОВО\tПРИОРИТЕТ\tСРОК\tНАЗВАНИЕ\tСИНХРОНИЗАЦИЯ")
	for i := range tasks {
		t := &tasks[i]
		due := "-"
		if t.DueDate != nil {
			due = *t.DueDate
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			strconv.FormatInt(t.ID, 10), check(t.IsCompleted), t.Priority, due, t.Title, Status(t.SyncStatus))
	}
	return tw.Flush()
}

func yesNo(b bool) string {
	if b {
		return "да"
	}
	return "нет"
}

func check(b bool) string {
	if b {
		return "[x]"
	}
	return "[ ]"
}
