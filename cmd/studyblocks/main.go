package main

import (
	"os"

	"github.com/ayoisaiah/studyblocks/app"
	"github.com/ayoisaiah/studyblocks/internal/osutil"
	"github.com/ayoisaiah/studyblocks/internal/pathutil"
	"github.com/ayoisaiah/studyblocks/report"
)

func run(args []string) error {
	if err := pathutil.Initialize(); err != nil {
		return err
	}

	return app.Get().Run(args)
}

func main() {
	if err := run(os.Args); err != nil {
		report.Quit(err, osutil.ExitError)
	}
}
