package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/donatewisely/donatewisely/internal"
	"github.com/donatewisely/donatewisely/internal/db"
	"github.com/donatewisely/donatewisely/internal/db/migrate"
	"github.com/donatewisely/donatewisely/migrations"
)

const helpText = `Usage: dbmigrate [-status] [sqlite_file]

Runs all pending migrations against the SQLite database. With -status
only the current version is printed.`

func main() {
	status := flag.Bool("status", false, "only print the current database version")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, helpText)
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(1)
	}

	os.Exit(run(flag.Arg(0), *status))
}

func run(dbFile string, status bool) int {
	sqlDB, err := db.OpenSQLite(dbFile, true)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open database: %v\n", err)
		return 1
	}
	defer sqlDB.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*60)
	defer cancel()

	if status {
		v, err := migrate.Version(ctx, sqlDB, migrations.FS)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to get database version: %v\n", err)
			return 1
		}

		fmt.Printf("version %d (build %s)\n", v, internal.Version())
		return 0
	}

	ran, err := migrate.RunFS(ctx, sqlDB, migrations.FS)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to run migrations: %v\n", err)
		return 1
	}

	for _, m := range ran {
		fmt.Printf("%d: %s\n", m.Version, m.Filename)
	}

	return 0
}
