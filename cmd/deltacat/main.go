package main

import (
	"os"

	"github.com/IvanPartsunev/deltacat-cli/cmd/deltacat/command"
	"github.com/joho/godotenv"
)

var (
	version = "development"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	// a missing .env is fine
	_ = godotenv.Load()

	os.Exit(command.Execute(os.Args[1:], &command.VersionInfo{
		Version: version,
		Commit:  commit,
		Date:    date,
	}))
}
