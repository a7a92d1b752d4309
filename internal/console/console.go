// Package console renders status lines, JSON panels, data tables and
// prompts for the command line.
package console

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/tidwall/pretty"
	"golang.org/x/term"
)

type Options struct {
	In      io.Reader
	Out     io.Writer
	Err     io.Writer
	Style   string
	NoColor bool
}

type Console struct {
	in       *bufio.Reader
	out      io.Writer
	err      io.Writer
	symbols  map[Symbol]string
	color    bool
	errColor bool
}

// New uses the process streams for any nil stream.  Each output stream is
// colored only when it is a terminal.
func New(opts Options) (*Console, error) {
	symbols, err := symbolSet(opts.Style)
	if err != nil {
		return nil, err
	}
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Err == nil {
		opts.Err = os.Stderr
	}
	return &Console{
		in:       bufio.NewReader(opts.In),
		out:      opts.Out,
		err:      opts.Err,
		symbols:  symbols,
		color:    !opts.NoColor && isTerminal(opts.Out),
		errColor: !opts.NoColor && isTerminal(opts.Err),
	}, nil
}

func (c *Console) Symbol(s Symbol) string {
	if value, ok := c.symbols[s]; ok {
		return value
	}
	return c.symbols[Info]
}

// Paint colors s for the output stream.
func (c *Console) Paint(s string, attrs ...color.Attribute) string {
	return paint(c.color, s, attrs...)
}

func paint(enabled bool, s string, attrs ...color.Attribute) string {
	col := color.New(attrs...)
	if enabled {
		col.EnableColor()
	} else {
		col.DisableColor()
	}
	return col.Sprint(s)
}

func (c *Console) line(symbol Symbol, message string, attrs ...color.Attribute) {
	fmt.Fprintln(c.out, paint(c.color, c.Symbol(symbol)+" "+message, attrs...))
}

func (c *Console) errLine(symbol Symbol, message string, attrs ...color.Attribute) {
	fmt.Fprintln(c.err, paint(c.errColor, c.Symbol(symbol)+" "+message, attrs...))
}

func (c *Console) Println(message string) {
	fmt.Fprintln(c.out, message)
}

func (c *Console) Loading(format string, args ...any) {
	c.line(Loading, fmt.Sprintf(format, args...))
}

func (c *Console) Success(format string, args ...any) {
	c.line(Success, fmt.Sprintf(format, args...), color.FgGreen, color.Bold)
}

func (c *Console) Empty(format string, args ...any) {
	c.line(Empty, fmt.Sprintf(format, args...), color.FgYellow)
}

func (c *Console) Info(format string, args ...any) {
	c.line(Info, fmt.Sprintf(format, args...), color.Faint)
}

func (c *Console) Item(symbol Symbol, format string, args ...any) {
	c.line(symbol, fmt.Sprintf(format, args...))
}

func (c *Console) Warn(format string, args ...any) {
	c.errLine(Warning, fmt.Sprintf(format, args...), color.FgYellow, color.Bold)
}

func (c *Console) Fail(format string, args ...any) {
	c.errLine(Failure, fmt.Sprintf(format, args...), color.FgRed, color.Bold)
}

// Error reports a failed operation as "Error <operation>: <message>".
func (c *Console) Error(operation string, err error) {
	c.Fail("Error %s: %s", operation, err)
}

// Panel draws body inside a rounded box with a left aligned title.
func (c *Console) Panel(title string, body string) {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleRounded)
	tbl.Style().Title.Align = text.AlignLeft
	tbl.SetTitle(c.Paint(title, color.FgGreen, color.Bold))
	if width := terminalWidth(c.out); width > 4 {
		tbl.SetColumnConfigs([]table.ColumnConfig{{
			Number:           1,
			WidthMax:         width - 4,
			WidthMaxEnforcer: text.WrapSoft,
		}})
	}
	tbl.AppendRow(table.Row{body})
	tbl.SetOutputMirror(c.out)
	tbl.Render()
	fmt.Fprintln(c.out)
}

// JSON renders v as indented JSON in a panel.
func (c *Console) JSON(title string, v any) error {
	data, err := encodeJSON(v)
	if err != nil {
		return err
	}
	if c.color {
		data = pretty.Color(data, nil)
	}
	c.Panel(title, string(data))
	return nil
}

func encodeJSON(v any) ([]byte, error) {
	buf := &bytes.Buffer{}
	encoder := json.NewEncoder(buf)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(v); err != nil {
		return nil, fmt.Errorf("failed to encode output: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Rows renders a simple table.
func (c *Console) Rows(header []string, rows [][]string) {
	tbl := c.newTable()
	tbl.AppendHeader(toRow(header))
	for _, row := range rows {
		tbl.AppendRow(toRow(row))
	}
	tbl.Render()
}

func (c *Console) newTable() table.Writer {
	tbl := table.NewWriter()
	if width := terminalWidth(c.out); width > 0 {
		tbl.SetAllowedRowLength(width)
	}
	tbl.SetStyle(table.StyleRounded)
	tbl.SetOutputMirror(c.out)
	return tbl
}

func toRow(values []string) table.Row {
	row := make(table.Row, len(values))
	for i, value := range values {
		row[i] = value
	}
	return row
}

// Prompt asks for a value until a non-empty line is entered.
func (c *Console) Prompt(label string) (string, error) {
	for {
		fmt.Fprintf(c.out, "%s: ", label)
		line, err := c.in.ReadString('\n')
		value := strings.TrimSpace(line)
		if value != "" {
			return value, nil
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return "", fmt.Errorf("no value entered for %s", strings.ToLower(label))
			}
			return "", err
		}
	}
}

// Confirm asks a yes or no question.  Anything but y or yes is a no.
func (c *Console) Confirm(question string) (bool, error) {
	fmt.Fprintf(c.out, "%s [y/N]: ", question)
	line, err := c.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}

func Count(n int64) string {
	return humanize.Comma(n)
}

func Size(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.Bytes(uint64(n))
}

var isTerminal = func(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func terminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return 0
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0
	}
	return width
}
