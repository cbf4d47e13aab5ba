// Command lookgen generates LookML views and explores from dbt BigQuery
// artifacts.
package main

import (
	"os"

	"github.com/leapstack-labs/lookgen/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
