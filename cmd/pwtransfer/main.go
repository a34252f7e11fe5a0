package main

import (
	"fmt"
	"os"

	"github.com/MKhiriev/go-pass-transfer/internal/cli"
	"github.com/MKhiriev/go-pass-transfer/models"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	app := cli.NewApp(buildInfo())
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func buildInfo() models.AppBuildInfo {
	if buildVersion == "" {
		buildVersion = "N/A"
	}
	if buildDate == "" {
		buildDate = "N/A"
	}
	if buildCommit == "" {
		buildCommit = "N/A"
	}
	return models.NewAppBuildInfo(buildVersion, buildDate, buildCommit)
}
