// Package help renders usage lines, task help text and task listings from
// the registered descriptors and documentation.
package help

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vk/cogs/internal/descriptor"
	"github.com/vk/cogs/internal/registry"
)

var (
	nameStyle  = lipgloss.NewStyle().Bold(true)
	hintStyle  = lipgloss.NewStyle().Faint(true)
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	titleStyle = lipgloss.NewStyle().Underline(true)
)

// ErrorPrefix is the styled prefix for user-facing error reports.
func ErrorPrefix() string {
	return errStyle.Render("error:")
}

// Usage builds the one-line usage string for a task: mandatory arguments
// as <arg>, optional ones as [<arg>], the plural one as <arg>..., and an
// [options] marker when the task declares options.
func Usage(t *registry.Task) string {
	parts := []string{"cogs", t.Name}
	for _, a := range t.Args {
		switch {
		case a.Plural:
			parts = append(parts, fmt.Sprintf("<%s>...", a.Name))
		case a.Mandatory():
			parts = append(parts, fmt.Sprintf("<%s>", a.Name))
		default:
			parts = append(parts, fmt.Sprintf("[<%s>]", a.Name))
		}
	}
	if len(t.Opts) > 0 {
		parts = append(parts, "[options]")
	}
	return strings.Join(parts, " ")
}

// Render writes a task's full help: usage line, hint, help body, and one
// line per option.
func Render(w io.Writer, t *registry.Task) {
	fmt.Fprintf(w, "%s %s\n", titleStyle.Render("usage:"), Usage(t))
	if t.Hint != "" {
		fmt.Fprintf(w, "\n%s\n", t.Hint)
	}
	if t.Help != "" {
		fmt.Fprintf(w, "\n%s\n", t.Help)
	}
	if len(t.Opts) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s\n", titleStyle.Render("options:"))
	rows := make([][2]string, 0, len(t.Opts))
	width := 0
	for _, o := range t.Opts {
		form := optionForm(o)
		if len(form) > width {
			width = len(form)
		}
		rows = append(rows, [2]string{form, o.Hint})
	}
	for _, row := range rows {
		fmt.Fprintf(w, "  %-*s  %s\n", width, row[0], hintStyle.Render(row[1]))
	}
}

// optionForm renders the long/short spelling of one option, with the
// value placeholder for valued options.
func optionForm(o descriptor.Option) string {
	form := "--" + o.Name
	if o.Key != 0 {
		form = fmt.Sprintf("--%s, -%c", o.Name, o.Key)
	}
	if !o.Toggle() {
		valueName := o.ValueName
		if valueName == "" {
			valueName = "VALUE"
		}
		form += " " + valueName
	}
	if o.Plural {
		form += " (repeatable)"
	}
	return form
}

// List writes one line per task: the name and its one-line hint, sorted
// by name.
func List(w io.Writer, tasks []*registry.Task) {
	width := 0
	for _, t := range tasks {
		if len(t.Name) > width {
			width = len(t.Name)
		}
	}
	for _, t := range tasks {
		name := fmt.Sprintf("%-*s", width, t.Name)
		fmt.Fprintf(w, "  %s  %s\n", nameStyle.Render(name), hintStyle.Render(t.Hint))
	}
}
