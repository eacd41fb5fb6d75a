// gridcalc is an interactive shell over a single formula sheet.
//
// Usage:
//
//	gridcalc [-width n] [-height n] [-fill x] [-log-level level] [-prompt text]
//
// Commands are read from stdin one per line. Type "help" for the list.
package main

import (
	"flag"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/vogtb/go-spreadsheet/packages/gridcalc"
)

var (
	width    = flag.Int("width", 5, "initial sheet width")
	height   = flag.Int("height", 5, "initial sheet height")
	fill     = flag.Float64("fill", 0, "initial value of every cell")
	logLevel = flag.String("log-level", "warn", "log level (debug, info, warn, error)")
	prompt   = flag.String("prompt", "> ", "input prompt")
)

func main() {
	flag.Parse()

	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	level, err := logrus.ParseLevel(*logLevel)
	if err != nil {
		log.WithError(err).Fatal("invalid -log-level")
	}
	log.SetLevel(level)
	gridcalc.SetLogger(log)

	sheet, err := gridcalc.NewSheet(*width, *height, *fill)
	if err != nil {
		log.WithError(err).Fatal("creating sheet")
	}

	console := NewConsole(sheet, os.Stdout, log)
	console.Help()
	if err := console.Run(os.Stdin, *prompt); err != nil {
		log.WithError(err).Fatal("reading input")
	}
}
