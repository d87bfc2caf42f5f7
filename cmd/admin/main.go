package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/shortlinkhq/shortlink/internal/config"
	"github.com/shortlinkhq/shortlink/internal/repository"
	"github.com/shortlinkhq/shortlink/internal/service"
)

// The admin CLI covers the operator actions that shouldn't require a
// running HTTP server: issuing/revoking API tokens and seeding domains
// (spec §4.11). It connects directly to Postgres using the same
// configuration the API process loads.
func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx := context.Background()
	db, err := repository.NewPostgres(ctx, cfg.DB)
	if err != nil {
		log.Fatalf("connect to postgres: %v", err)
	}
	defer db.Close()

	tokens := repository.NewTokenStore(db)
	domains := repository.NewDomainStore(db)
	links := repository.NewLinkStore(db)
	auth := service.NewAuthService(tokens, cfg.TokenSecret)
	domainService := service.NewDomainService(domains, links)

	switch os.Args[1] {
	case "token":
		runTokenCommand(ctx, auth, os.Args[2:])
	case "domain":
		runDomainCommand(ctx, domainService, os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("usage: admin <token|domain> <subcommand> [flags]")
	fmt.Println("  token create -name <name>")
	fmt.Println("  token revoke -id <id>")
	fmt.Println("  token list")
	fmt.Println("  domain create -name <name> [-default] [-description <text>]")
}

func runTokenCommand(ctx context.Context, auth *service.AuthService, args []string) {
	if len(args) < 1 {
		usage()
		os.Exit(1)
	}

	switch args[0] {
	case "create":
		fs := flag.NewFlagSet("token create", flag.ExitOnError)
		name := fs.String("name", "", "human-readable token name")
		fs.Parse(args[1:])
		if *name == "" {
			fs.PrintDefaults()
			os.Exit(1)
		}

		raw, record, err := auth.IssueToken(ctx, *name)
		if err != nil {
			log.Fatalf("issue token: %v", err)
		}
		fmt.Printf("token id=%d name=%s\n", record.ID, record.Name)
		fmt.Printf("%s\n", raw)
		fmt.Println("this value is shown only once; store it securely")

	case "revoke":
		fs := flag.NewFlagSet("token revoke", flag.ExitOnError)
		id := fs.Int64("id", 0, "token id")
		fs.Parse(args[1:])
		if *id == 0 {
			fs.PrintDefaults()
			os.Exit(1)
		}
		if err := auth.Revoke(ctx, *id); err != nil {
			log.Fatalf("revoke token: %v", err)
		}
		fmt.Printf("revoked token %d\n", *id)

	case "list":
		list, err := auth.List(ctx)
		if err != nil {
			log.Fatalf("list tokens: %v", err)
		}
		for _, t := range list {
			status := "active"
			if !t.Valid() {
				status = "revoked"
			}
			fmt.Printf("%d\t%s\t%s\n", t.ID, t.Name, status)
		}

	default:
		usage()
		os.Exit(1)
	}
}

func runDomainCommand(ctx context.Context, domains *service.DomainService, args []string) {
	if len(args) < 1 {
		usage()
		os.Exit(1)
	}

	switch args[0] {
	case "create":
		fs := flag.NewFlagSet("domain create", flag.ExitOnError)
		name := fs.String("name", "", "domain name")
		isDefault := fs.Bool("default", false, "make this the default domain")
		description := fs.String("description", "", "optional description")
		fs.Parse(args[1:])
		if *name == "" {
			fs.PrintDefaults()
			os.Exit(1)
		}

		var desc *string
		if *description != "" {
			desc = description
		}

		d, err := domains.Create(ctx, *name, *isDefault, desc)
		if err != nil {
			log.Fatalf("create domain: %v", err)
		}
		fmt.Printf("created domain id=%d name=%s default=%v\n", d.ID, d.Name, d.IsDefault)

	default:
		usage()
		os.Exit(1)
	}
}
