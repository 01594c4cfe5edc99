package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lefilcompany/creator-leap-studio-sub000/internal/infra"
	"github.com/lefilcompany/creator-leap-studio-sub000/internal/sqlinline"
)

func main() {
	var (
		orgFlag   string
		unitsFlag int64
		noteFlag  string
		showFlag  bool
	)

	flag.StringVar(&orgFlag, "org", "", "organization ID (UUID)")
	flag.Int64Var(&unitsFlag, "units", 0, "credits to grant")
	flag.StringVar(&noteFlag, "note", "manual grant", "description recorded on the ledger entry")
	flag.BoolVar(&showFlag, "balance", false, "only print the current balance")
	flag.Parse()

	orgID := strings.TrimSpace(orgFlag)
	if orgID == "" {
		exitWithError(errors.New("-org is required"))
	}
	if !showFlag && unitsFlag <= 0 {
		exitWithError(errors.New("-units must be positive"))
	}

	dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if dbURL == "" {
		exitWithError(errors.New("DATABASE_URL is required"))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		exitWithError(fmt.Errorf("failed to connect database: %w", err))
	}
	defer pool.Close()

	logger := infra.NewLogger("cli").With().Str("cmd", "orgcredits").Logger()
	runner := infra.NewSQLRunner(pool, logger)

	if showFlag {
		var balance int64
		row := runner.QueryRow(ctx, sqlinline.QSelectCreditBalance, orgID)
		if err := row.Scan(&balance); err != nil {
			exitWithError(fmt.Errorf("failed to load balance: %w", err))
		}
		fmt.Printf("Organization %s balance=%d\n", orgID, balance)
		return
	}

	var before, after int64
	row := runner.QueryRow(ctx, sqlinline.QGrantCredits, orgID, unitsFlag, noteFlag)
	if err := row.Scan(&before, &after); err != nil {
		exitWithError(fmt.Errorf("failed to grant credits: %w", err))
	}

	fmt.Printf("Organization %s granted %d credits\n", orgID, unitsFlag)
	fmt.Printf("balance_before=%d\n", before)
	fmt.Printf("balance_after=%d\n", after)
}

func exitWithError(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
