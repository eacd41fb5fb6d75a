package main

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/sirupsen/logrus"

	"github.com/vogtb/go-spreadsheet/packages/gridcalc"
)

const (
	errMarker = "#ERR"
	fileExt   = ".csv"
)

type command struct {
	name  string
	usage string
	help  string
	run   func(c *Console, args []string) error
}

var commands []command

func init() {
	commands = []command{
		{"print", "print", "print evaluated sheet", (*Console).print},
		{"set", "set <cell> <expression>", "set a cell, \"=\" prefix reads Excel syntax", (*Console).set},
		{"pull", "pull <cell> <cell>", "copy the first cell over the range between both cells", (*Console).pull},
		{"show", "show <cell>", "display formula, value and references of a cell", (*Console).show},
		{"new", "new <width> <height> [fill]", "create a new sheet", (*Console).newSheet},
		{"resize", "resize <width> <height> [fill]", "resize the current sheet", (*Console).resize},
		{"save", "save <file>", "write formulas as csv", (*Console).save},
		{"load", "load <file>", "read formulas from csv into a new sheet", (*Console).load},
		{"export", "export <file>", "write evaluated values as csv", (*Console).export},
		{"help", "help", "display available commands", (*Console).help},
		{"exit", "exit", "close program", (*Console).quit},
	}
}

// Console executes shell commands against the current sheet
type Console struct {
	sheet *gridcalc.Sheet
	out   io.Writer
	log   logrus.FieldLogger
	done  bool
}

func NewConsole(sheet *gridcalc.Sheet, out io.Writer, log logrus.FieldLogger) *Console {
	return &Console{
		sheet: sheet,
		out:   out,
		log:   log,
	}
}

// Sheet returns the sheet commands currently operate on
func (c *Console) Sheet() *gridcalc.Sheet {
	return c.sheet
}

// Done reports whether exit was requested
func (c *Console) Done() bool {
	return c.done
}

// Run reads commands from in until exit or end of input. command failures
// are printed and never stop the loop.
func (c *Console) Run(in io.Reader, prompt string) error {
	scanner := bufio.NewScanner(in)
	for !c.done {
		fmt.Fprint(c.out, prompt)
		if !scanner.Scan() {
			fmt.Fprintln(c.out)
			return scanner.Err()
		}
		if err := c.Execute(scanner.Text()); err != nil {
			c.log.WithError(err).WithField("command", scanner.Text()).Warn("command failed")
			fmt.Fprintf(c.out, "error: %v\n", err)
		}
	}
	return nil
}

// Execute runs a single command line
func (c *Console) Execute(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	for _, cmd := range commands {
		if cmd.name == fields[0] {
			return cmd.run(c, fields[1:])
		}
	}
	return gridcalc.NewApplicationError(gridcalc.Unimplemented, fmt.Sprintf("invalid command: %s", fields[0]))
}

// Help prints the command list
func (c *Console) Help() {
	w := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "Available commands:")
	for _, cmd := range commands {
		fmt.Fprintf(w, "\t%s\t%s\n", cmd.usage, cmd.help)
	}
	w.Flush()
}

func (c *Console) help(args []string) error {
	c.Help()
	return nil
}

func (c *Console) quit(args []string) error {
	c.done = true
	return nil
}

func (c *Console) print(args []string) error {
	w := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', tabwriter.AlignRight)
	for col := 1; col <= c.sheet.Width(); col++ {
		fmt.Fprintf(w, "\t%s", gridcalc.ColumnName(col))
	}
	fmt.Fprintln(w, "\t")
	for i, row := range c.sheet.Values() {
		fmt.Fprintf(w, "%d", i+1)
		for _, res := range row {
			fmt.Fprintf(w, "\t%s", formatResult(res))
		}
		fmt.Fprintln(w, "\t")
	}
	return w.Flush()
}

func (c *Console) set(args []string) error {
	if len(args) < 2 {
		return usageError("set")
	}
	id, err := gridcalc.ParseCellID(args[0])
	if err != nil {
		return err
	}
	if _, err := c.sheet.Index(id.Col, id.Row); err != nil {
		return err
	}

	text := strings.Join(args[1:], " ")
	if strings.HasPrefix(text, "=") {
		expr, err := gridcalc.ParseExcel(text, c.sheet)
		if err != nil {
			return err
		}
		return c.sheet.SetCell(id, expr)
	}
	return c.sheet.SetFormula(id, text)
}

func (c *Console) pull(args []string) error {
	if len(args) != 2 {
		return usageError("pull")
	}
	from, err := gridcalc.ParseCellID(args[0])
	if err != nil {
		return err
	}
	to, err := gridcalc.ParseCellID(args[1])
	if err != nil {
		return err
	}
	return c.sheet.Fill(from, from, to)
}

func (c *Console) show(args []string) error {
	if len(args) != 1 {
		return usageError("show")
	}
	id, err := gridcalc.ParseCellID(args[0])
	if err != nil {
		return err
	}
	expr, err := c.sheet.GetCell(id)
	if err != nil {
		return err
	}

	v, err := c.sheet.EvaluateCell(id)
	if err != nil {
		fmt.Fprintf(c.out, "%s = %s (%v)\n", expr, errMarker, err)
	} else {
		fmt.Fprintf(c.out, "%s = %s\n", expr, formatValue(v))
	}

	if refs := gridcalc.References(expr); len(refs) > 0 {
		names := make([]string, len(refs))
		for i, ref := range refs {
			names[i] = ref.String()
		}
		fmt.Fprintf(c.out, "references: %s\n", strings.Join(names, " "))
	}
	return nil
}

func (c *Console) newSheet(args []string) error {
	width, height, fill, err := parseDimensions("new", args)
	if err != nil {
		return err
	}
	sheet, err := gridcalc.NewSheet(width, height, fill)
	if err != nil {
		return err
	}
	c.sheet = sheet
	return nil
}

func (c *Console) resize(args []string) error {
	width, height, fill, err := parseDimensions("resize", args)
	if err != nil {
		return err
	}
	return c.sheet.Resize(width, height, fill)
}

func (c *Console) save(args []string) error {
	if len(args) != 1 {
		return usageError("save")
	}
	return writeCSV(csvPath(args[0]), c.sheet.Formulas())
}

func (c *Console) export(args []string) error {
	if len(args) != 1 {
		return usageError("export")
	}
	values := c.sheet.Values()
	records := make([][]string, len(values))
	for i, row := range values {
		records[i] = make([]string, len(row))
		for j, res := range row {
			records[i][j] = formatResult(res)
		}
	}
	return writeCSV(csvPath(args[0]), records)
}

// load replaces the sheet with one sized to the file. fields that fail to
// parse are left at 0.
func (c *Console) load(args []string) error {
	if len(args) != 1 {
		return usageError("load")
	}
	path := csvPath(args[0])
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	width := 0
	for _, record := range records {
		width = max(width, len(record))
	}
	sheet, err := gridcalc.NewSheet(width, len(records), 0)
	if err != nil {
		return err
	}

	for i, record := range records {
		for j, field := range record {
			if strings.TrimSpace(field) == "" {
				continue
			}
			id := gridcalc.CellID{Col: j + 1, Row: i + 1}
			if err := sheet.SetFormula(id, field); err != nil {
				c.log.WithError(err).WithField("cell", id.String()).Warn("skipping unparsable field")
			}
		}
	}

	c.sheet = sheet
	return nil
}

func parseDimensions(name string, args []string) (width, height int, fill float64, err error) {
	if len(args) != 2 && len(args) != 3 {
		return 0, 0, 0, usageError(name)
	}
	if width, err = strconv.Atoi(args[0]); err != nil {
		return 0, 0, 0, usageError(name)
	}
	if height, err = strconv.Atoi(args[1]); err != nil {
		return 0, 0, 0, usageError(name)
	}
	if len(args) == 3 {
		if fill, err = strconv.ParseFloat(args[2], 64); err != nil {
			return 0, 0, 0, usageError(name)
		}
	}
	return width, height, fill, nil
}

func usageError(name string) error {
	for _, cmd := range commands {
		if cmd.name == name {
			return gridcalc.NewApplicationError(gridcalc.InvalidArgument, "usage: "+cmd.usage)
		}
	}
	return gridcalc.NewApplicationError(gridcalc.InvalidArgument, "usage: "+name)
}

func csvPath(name string) string {
	if strings.HasSuffix(name, fileExt) {
		return name
	}
	return name + fileExt
}

func writeCSV(path string, records [][]string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()

	w := csv.NewWriter(f)
	if err := w.WriteAll(records); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func formatResult(res gridcalc.Result) string {
	if res.Err != nil {
		return errMarker
	}
	return formatValue(res.Value)
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
