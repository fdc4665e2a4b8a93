package main

import (
	"currency-converter/internal/service"
	"flag"
	"log"
	"os"
)

type options struct {
	info   bool
	config string
}

func parseFlags(args []string) (options, error) {
	var opts options
	fs := flag.NewFlagSet("currency-converter", flag.ContinueOnError)
	fs.BoolVar(&opts.info, "v", false, "will display the version of the program")
	fs.StringVar(&opts.config, "config", "converter.ini", "path to the optional ini config file")
	err := fs.Parse(args)
	return opts, err
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		os.Exit(2)
	}
	if opts.info {
		service.Version()
		return
	}
	srv, err := service.New(opts.config)
	if err != nil {
		log.Fatalln("Init service:", err)
	}
	srv.Start()
}
