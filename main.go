package main

import (
	"log"
)

// Build details injected at compile time with -ldflags.
var (
	GitCommit string
	GitTag    string
	BuildTime string
)

//	@title			Books API
//	@version		1.0
//	@description	Books catalog keyed by ISBN and backed by Postgres.
//	@BasePath		/
func main() {
	app, err := NewApp()
	if err != nil {
		log.Fatal("application failed to initialized: ", err)
	}
	err = app.Run()
	if err != nil {
		log.Fatal("application exited. check logs for more details.", err)
	}
}
