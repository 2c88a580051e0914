package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/goccy/go-json"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"mediaminder/internal/services"
)

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i, h := range headers {
		header[i] = h
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := range columns {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, 0, columns)
	for i := range columns {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		configs = append(configs, table.ColumnConfig{
			Number:           i + 1,
			Align:            align,
			AlignHeader:      text.AlignLeft,
			WidthMax:         48,
			WidthMaxEnforcer: text.WrapSoft,
		})
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}

type noticeKind int

const (
	noticeInfo noticeKind = iota
	noticeOK
	noticeWarn
	noticeError
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

func renderNotice(kind noticeKind, message string, colorize bool) string {
	line := fmt.Sprintf("[%s] %s", noticeLabel(kind), strings.TrimSpace(message))
	if colorize {
		if color := noticeColor(kind); color != "" {
			return color + line + ansiReset
		}
	}
	return line
}

// printNotice writes a one-line status message to stderr. When err is set its
// user-facing form is appended.
func printNotice(cmd *cobra.Command, kind noticeKind, message string, err error) {
	out := cmd.ErrOrStderr()
	if err != nil {
		if hint := services.UserMessage(err); hint != "" && hint != message {
			message = strings.TrimSpace(message + " (" + hint + ")")
		}
	}
	fmt.Fprintln(out, renderNotice(kind, message, shouldColorize(out)))
}

func noticeLabel(kind noticeKind) string {
	switch kind {
	case noticeOK:
		return "OK"
	case noticeWarn:
		return "WARN"
	case noticeError:
		return "ERROR"
	default:
		return "INFO"
	}
}

func noticeColor(kind noticeKind) string {
	switch kind {
	case noticeOK:
		return ansiGreen
	case noticeWarn:
		return ansiYellow
	case noticeError:
		return ansiRed
	case noticeInfo:
		return ansiBlue
	default:
		return ""
	}
}

func shouldColorize(writer io.Writer) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func stars(rating int) string {
	if rating <= 0 {
		return "-"
	}
	return strings.Repeat("*", rating)
}

func yearText(year int) string {
	if year <= 0 {
		return "-"
	}
	return fmt.Sprintf("%d", year)
}

func percentText(v float64) string {
	return fmt.Sprintf("%.0f%%", v*100)
}
