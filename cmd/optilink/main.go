package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"optilink/internal/config"
	"optilink/internal/connectors"
	gmailconnector "optilink/internal/connectors/gmail"
	imapconnector "optilink/internal/connectors/imap"
	"optilink/internal/customers"
	"optilink/internal/listener"
	"optilink/internal/pipeline"
	"optilink/internal/sales"
	"optilink/internal/storage"
	"optilink/internal/zoho"
)

func main() {
	cfg, err := config.Load()
	must(err)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	db, err := storage.Open(cfg.DBPath)
	must(err)
	defer db.Close()

	cmd := os.Args[1]
	switch cmd {
	case "customers:import":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		input := fs.String("input", "", "customer dataset path")
		format := fs.String("format", "csv", "csv|xlsx")
		out := fs.String("out", "", "optional processed-customers csv path")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*input) == "" {
			must(fmt.Errorf("--input is required"))
		}

		var rows []customers.RawRow
		switch strings.ToLower(*format) {
		case "csv":
			rows, err = customers.LoadCSV(*input)
		case "xlsx":
			rows, err = customers.LoadXLSX(*input)
		default:
			err = fmt.Errorf("unsupported format: %s", *format)
		}
		must(err)

		records := customers.Process(rows)
		must(db.ReplaceCustomers(records))
		fmt.Printf("customers imported: %d\n", len(records))

		if strings.TrimSpace(*out) != "" {
			must(pipeline.ExportCustomersToCSV(records, *out))
			fmt.Printf("processed customers written to %s\n", *out)
		}
	case "emails:import":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		input := fs.String("input", "zoho_emails.json", "zoho export json path")
		_ = fs.Parse(os.Args[2:])

		svc := zoho.NewSyncService(db, cfg)
		extracted, skipped, err := svc.ImportFromFile(*input)
		must(err)
		fmt.Printf("emails imported: extracted=%d skipped=%d\n", extracted, skipped)
	case "zoho:sync":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		max := fs.Int("max", 0, "max messages, 0 for all")
		_ = fs.Parse(os.Args[2:])

		svc := zoho.NewSyncService(db, cfg)
		extracted, skipped, err := svc.SyncFromAPI(context.Background(), *max)
		must(err)
		fmt.Printf("zoho sync done: extracted=%d skipped=%d\n", extracted, skipped)
	case "mail:fetch":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		provider := fs.String("provider", "imap", "imap|gmail")
		label := fs.String("label", "INBOX", "mailbox/label")
		max := fs.Int("max", 50, "max messages")
		_ = fs.Parse(os.Args[2:])

		conn, err := makeConnector(cfg, *provider)
		must(err)
		fetch := connectors.NewFetchService(db, cfg.RawMailDir, conn)
		result, err := fetch.FetchAndStore(*label, *max)
		must(err)
		fmt.Printf("mail fetch done provider=%s fetched=%d stored=%d known=%d\n", *provider, result.Fetched, result.Stored, result.Known)
	case "mail:process":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		batch := fs.Int("batch", 50, "batch size")
		_ = fs.Parse(os.Args[2:])

		processor := pipeline.NewProcessingService(db, cfg)
		extracted, skipped, err := processor.ExtractPending(*batch)
		must(err)
		fmt.Printf("mail process done extracted=%d skipped=%d\n", extracted, skipped)
	case "match:run":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		threshold := fs.Float64("threshold", cfg.MatchThreshold, "minimum similarity score")
		batch := fs.Int("batch", 0, "batch size, 0 for all")
		_ = fs.Parse(os.Args[2:])

		cfg.MatchThreshold = *threshold
		processor := pipeline.NewProcessingService(db, cfg)
		res, err := processor.MatchExtracted(*batch)
		must(err)
		fmt.Printf("match run done emails=%d matched=%d\n", res.Emails, res.Matched)
		res.Report.Print()
	case "sales:link":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		input := fs.String("input", "", "sales csv path")
		out := fs.String("out", "", "linked output csv path")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*input) == "" {
			must(fmt.Errorf("--input is required"))
		}
		if strings.TrimSpace(*out) == "" {
			*out = filepath.Join(cfg.OutputDir, "sales_linked.csv")
		}

		records, err := db.ListCustomers()
		must(err)
		stats, err := sales.LinkFile(*input, *out, customers.BuildIndex(records))
		must(err)
		stats.Print()
		fmt.Printf("linked sales written to %s\n", *out)
	case "anonymize:run":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		out := fs.String("out", "", "alias mapping csv path")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*out) == "" {
			*out = filepath.Join(cfg.OutputDir, "business_aliases.csv")
		}

		businessIDs, err := db.ListBusinessIDs()
		must(err)
		if len(businessIDs) == 0 {
			must(fmt.Errorf("no business ids; run customers:import first"))
		}

		aliases := pipeline.GenerateAliases(businessIDs)
		must(pipeline.ExportAliasesToCSV(aliases, *out))
		fmt.Printf("alias mapping for %d businesses written to %s\n", len(aliases), *out)

		missing, err := db.ListEmailIDsMissingBusinessID()
		must(err)
		if len(missing) > 0 {
			used, err := db.ListUsedEmailBusinessIDs()
			must(err)
			assigned := pipeline.FillMissingBusinessIDs(missing, businessIDs, used)
			for emailID, businessID := range assigned {
				must(db.UpdateEmailBusinessID(emailID, businessID))
			}
			fmt.Printf("backfilled business ids for %d emails\n", len(assigned))
		}
	case "export:csv", "export:xlsx":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		out := fs.String("out", "", "output path")
		_ = fs.Parse(os.Args[2:])

		matches, err := db.ListMatches()
		must(err)
		if len(matches) == 0 {
			must(fmt.Errorf("no matches to export; run match:run first"))
		}

		if cmd == "export:csv" {
			if strings.TrimSpace(*out) == "" {
				*out = filepath.Join(cfg.OutputDir, "matches.csv")
			}
			must(pipeline.ExportMatchesToCSV(matches, *out))
		} else {
			if strings.TrimSpace(*out) == "" {
				*out = filepath.Join(cfg.OutputDir, "matches.xlsx")
			}
			must(pipeline.ExportMatchesToXLSX(matches, *out))
		}
		fmt.Printf("exported %d matches to %s\n", len(matches), *out)
	case "mail:listen":
		s := listener.NewService(db, cfg)
		must(s.Run(context.Background()))
	default:
		usage()
		os.Exit(1)
	}
}

func makeConnector(cfg config.Config, provider string) (connectors.MailConnector, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "gmail":
		return gmailconnector.NewConnector(cfg)
	case "imap":
		return imapconnector.NewConnector(cfg)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}

func usage() {
	fmt.Println("usage: optilink <command>")
	fmt.Println("commands:")
	fmt.Println("  customers:import --input=customers.csv [--format=csv|xlsx] [--out=processed.csv]")
	fmt.Println("  emails:import [--input=zoho_emails.json]")
	fmt.Println("  zoho:sync [--max=0]")
	fmt.Println("  mail:fetch --provider=imap|gmail --label=INBOX --max=50")
	fmt.Println("  mail:process [--batch=50]")
	fmt.Println("  match:run [--threshold=70] [--batch=0]")
	fmt.Println("  sales:link --input=sales.csv [--out=./out/sales_linked.csv]")
	fmt.Println("  anonymize:run [--out=./out/business_aliases.csv]")
	fmt.Println("  export:csv [--out=./out/matches.csv]")
	fmt.Println("  export:xlsx [--out=./out/matches.xlsx]")
	fmt.Println("  mail:listen")
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
