// Command invctl is an operator CLI for the stock ledger API.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/stockledger/internal/domain/models"
	"github.com/mamadbah2/stockledger/internal/service/ledger"
	"github.com/mamadbah2/stockledger/pkg/clients/inventory"
)

const usage = `usage: invctl [-server URL] [-token TOKEN] <command> [flags]

commands:
  login      -user ID -secret SECRET      print a bearer token
  add        -item -brand -qty -price -party
  remove     -item -brand -qty -price -party
  register   -item -brand -qty [-item-name] [-brand-name]
  delete     -item -brand                 delete a stock record
  logs       [-page-size N] [-cursor C] [-all]
  warehouse  [-item ID | -brand ID]
  invoice    -id LOG_ID [-out DIR]

INVCTL_SERVER and INVCTL_TOKEN provide defaults for -server and -token.
`

var errUsage = errors.New("invalid usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprint(os.Stderr, usage)
		}
		fmt.Fprintln(os.Stderr, "invctl:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	global := flag.NewFlagSet("invctl", flag.ContinueOnError)
	global.SetOutput(io.Discard)
	server := global.String("server", envOr("INVCTL_SERVER", "http://localhost:8080"), "server base URL")
	token := global.String("token", os.Getenv("INVCTL_TOKEN"), "bearer token")
	timeout := global.Duration("timeout", 15*time.Second, "request timeout")
	if err := global.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if global.NArg() == 0 {
		return errUsage
	}

	client := inventory.NewClient(*server, *timeout)
	if *token != "" {
		client.SetToken(*token)
	}

	cmd, rest := global.Arg(0), global.Args()[1:]
	switch cmd {
	case "login":
		return runLogin(ctx, client, rest, out)
	case "add":
		return runChange(ctx, client, models.OperationAdd, rest, out)
	case "remove":
		return runChange(ctx, client, models.OperationRemove, rest, out)
	case "register":
		return runRegister(ctx, client, rest, out)
	case "delete":
		return runDelete(ctx, client, rest, out)
	case "logs":
		return runLogs(ctx, client, rest, out)
	case "warehouse":
		return runWarehouse(ctx, client, rest, out)
	case "invoice":
		return runInvoice(ctx, client, rest, out)
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
}

func runLogin(ctx context.Context, c *inventory.Client, args []string, out io.Writer) error {
	fs := newFlagSet("login")
	user := fs.String("user", "", "user id")
	secret := fs.String("secret", "", "secret")
	if err := parse(fs, args); err != nil {
		return err
	}

	token, err := c.Login(ctx, *user, *secret)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, token.Value)
	return err
}

func runChange(ctx context.Context, c *inventory.Client, op models.Operation, args []string, out io.Writer) error {
	fs := newFlagSet(string(op))
	item := fs.String("item", "", "item id")
	brand := fs.String("brand", "", "brand id")
	qty := fs.Int64("qty", 0, "quantity")
	price := fs.String("price", "", "unit price")
	party := fs.String("party", "", "party name")
	if err := parse(fs, args); err != nil {
		return err
	}

	unitPrice, err := decimal.NewFromString(*price)
	if err != nil {
		return fmt.Errorf("%w: -price %q is not a number", errUsage, *price)
	}

	res, err := c.ApplyStockChange(ctx, ledger.StockChange{
		ItemID:    *item,
		BrandID:   *brand,
		Operation: op,
		Quantity:  *qty,
		UnitPrice: unitPrice,
		PartyName: *party,
	})
	if err != nil {
		return err
	}
	return printJSON(out, res)
}

func runRegister(ctx context.Context, c *inventory.Client, args []string, out io.Writer) error {
	fs := newFlagSet("register")
	item := fs.String("item", "", "item id")
	brand := fs.String("brand", "", "brand id")
	qty := fs.Int64("qty", 0, "initial quantity")
	itemName := fs.String("item-name", "", "item display name")
	brandName := fs.String("brand-name", "", "brand display name")
	if err := parse(fs, args); err != nil {
		return err
	}

	rec, err := c.RegisterItemBrand(ctx, ledger.Registration{
		ItemID:          *item,
		BrandID:         *brand,
		InitialQuantity: *qty,
		ItemName:        *itemName,
		BrandName:       *brandName,
	})
	if err != nil {
		return err
	}
	return printJSON(out, rec)
}

func runDelete(ctx context.Context, c *inventory.Client, args []string, out io.Writer) error {
	fs := newFlagSet("delete")
	item := fs.String("item", "", "item id")
	brand := fs.String("brand", "", "brand id")
	if err := parse(fs, args); err != nil {
		return err
	}

	removed, err := c.RemoveStockRecord(ctx, *item, *brand)
	if err != nil {
		return err
	}
	return printJSON(out, map[string]bool{"removed": removed})
}

func runLogs(ctx context.Context, c *inventory.Client, args []string, out io.Writer) error {
	fs := newFlagSet("logs")
	size := fs.Int("page-size", 0, "entries per page (server default when 0)")
	cursor := fs.String("cursor", "", "resume after this cursor")
	all := fs.Bool("all", false, "follow cursors to the oldest entry")
	if err := parse(fs, args); err != nil {
		return err
	}

	if *all {
		entries, err := c.AllLogs(ctx, *size)
		if err != nil {
			return err
		}
		return printJSON(out, entries)
	}

	page, err := c.FetchLogPage(ctx, *cursor, *size)
	if err != nil {
		return err
	}
	return printJSON(out, page)
}

func runWarehouse(ctx context.Context, c *inventory.Client, args []string, out io.Writer) error {
	fs := newFlagSet("warehouse")
	item := fs.String("item", "", "only this item")
	brand := fs.String("brand", "", "only this brand")
	if err := parse(fs, args); err != nil {
		return err
	}

	rows, err := c.Warehouse(ctx, models.StockFilter{ItemID: *item, BrandID: *brand})
	if err != nil {
		return err
	}
	return printJSON(out, rows)
}

func runInvoice(ctx context.Context, c *inventory.Client, args []string, out io.Writer) error {
	fs := newFlagSet("invoice")
	id := fs.String("id", "", "log entry id")
	dir := fs.String("out", ".", "output directory")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *id == "" {
		return fmt.Errorf("%w: -id is required", errUsage)
	}

	pdf, name, err := c.DownloadInvoice(ctx, *id)
	if err != nil {
		return err
	}

	path := filepath.Join(*dir, filepath.Base(name))
	if err := os.WriteFile(path, pdf, 0o644); err != nil {
		return fmt.Errorf("write invoice: %w", err)
	}
	_, err = fmt.Fprintln(out, path)
	return err
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %s: %v", errUsage, fs.Name(), err)
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("%w: %s: unexpected argument %q", errUsage, fs.Name(), fs.Arg(0))
	}
	return nil
}

func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
