package main

import (
	"os"

	"github.com/spf13/pflag"

	"taskminder/internal/app"
	"taskminder/internal/config"
)

func main() {
	fs := pflag.NewFlagSet("taskminder", pflag.ExitOnError)
	config.Flags(fs)
	fs.Parse(os.Args[1:])

	app.ExitOnError(app.Run(fs))
}
