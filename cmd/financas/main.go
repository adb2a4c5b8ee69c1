// Command financas is the local entrypoint for the personal-finance
// core: account registration, login, transaction recording and the
// aggregate reports, all against the configured SQLite database.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"financas/internal/cli"
	"financas/internal/core"
	"financas/internal/services"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	app := cli.Bootstrap()
	defer app.Close()

	ctx := context.Background()
	var err error
	switch os.Args[1] {
	case "register":
		err = runRegister(ctx, app, os.Args[2:])
	case "login":
		err = runLogin(ctx, app, os.Args[2:])
	case "add":
		err = runAdd(ctx, app, os.Args[2:])
	case "balance":
		err = runBalance(ctx, app, os.Args[2:])
	case "summary":
		err = runSummary(ctx, app, os.Args[2:])
	case "recent":
		err = runRecent(ctx, app, os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: financas <command> [flags]

commands:
  register  -name NAME -email EMAIL -password PASSWORD
  login     -email EMAIL -password PASSWORD
  add       -token TOKEN -amount 12.34 -type income|expense -date YYYY-MM-DD [-category ID] [-desc TEXT]
  balance   -token TOKEN [-asof YYYY-MM-DD]
  summary   -token TOKEN -year YYYY -month MM
  recent    -token TOKEN [-limit N]`)
}

func runRegister(ctx context.Context, app *cli.App, args []string) error {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	name := fs.String("name", "", "display name")
	email := fs.String("email", "", "email address")
	password := fs.String("password", "", "password")
	fs.Parse(args)

	id, err := app.Users.Register(ctx, services.RegisterInput{
		Name: *name, Email: *email, Password: *password,
	})
	if err != nil {
		return err
	}
	fmt.Printf("registered user %d\n", id)
	return nil
}

func runLogin(ctx context.Context, app *cli.App, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "email address")
	password := fs.String("password", "", "password")
	fs.Parse(args)

	session, err := app.Auth.Login(ctx, *email, *password)
	if err != nil {
		return err
	}
	fmt.Printf("welcome %s\n%s\n", session.User.Name, session.Token)
	return nil
}

// authenticate resolves a token to a live user id, rejecting tokens
// whose subject no longer exists.
func authenticate(ctx context.Context, app *cli.App, token string) (int64, error) {
	userID, ok := app.Auth.ValidateToken(token)
	if !ok {
		return 0, core.ErrInvalidCredentials
	}
	user, err := app.Users.FindByID(ctx, userID)
	if err != nil {
		return 0, err
	}
	if user == nil {
		return 0, core.ErrInvalidCredentials
	}
	return userID, nil
}

func runAdd(ctx context.Context, app *cli.App, args []string) error {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	token := fs.String("token", "", "session token")
	amount := fs.String("amount", "", "amount, e.g. 12.34")
	typ := fs.String("type", "", "income or expense")
	date := fs.String("date", "", "date YYYY-MM-DD")
	category := fs.Int64("category", 0, "category id (optional)")
	desc := fs.String("desc", "", "description (optional)")
	fs.Parse(args)

	userID, err := authenticate(ctx, app, *token)
	if err != nil {
		return err
	}
	money, err := core.ParseMoney(*amount)
	if err != nil {
		return err
	}
	day, err := core.ParseDate(*date)
	if err != nil {
		return err
	}
	in := services.RecordInput{
		Amount:      money,
		Type:        core.TransactionType(*typ),
		Date:        day,
		Description: *desc,
	}
	if *category > 0 {
		in.CategoryID = category
	}
	id, err := app.Ledger.Record(ctx, userID, in)
	if err != nil {
		return err
	}
	fmt.Printf("recorded transaction %d\n", id)
	return nil
}

func runBalance(ctx context.Context, app *cli.App, args []string) error {
	fs := flag.NewFlagSet("balance", flag.ExitOnError)
	token := fs.String("token", "", "session token")
	asof := fs.String("asof", "", "cutoff date YYYY-MM-DD (optional)")
	fs.Parse(args)

	userID, err := authenticate(ctx, app, *token)
	if err != nil {
		return err
	}
	var cutoff *core.Date
	if *asof != "" {
		d, err := core.ParseDate(*asof)
		if err != nil {
			return err
		}
		cutoff = &d
	}
	report, err := app.Ledger.Balance(ctx, userID, cutoff)
	if err != nil {
		return err
	}
	fmt.Printf("balance %s (income %s, expense %s)\n",
		report.Balance, report.TotalIncome, report.TotalExpense)
	return nil
}

func runSummary(ctx context.Context, app *cli.App, args []string) error {
	fs := flag.NewFlagSet("summary", flag.ExitOnError)
	token := fs.String("token", "", "session token")
	year := fs.Int("year", 0, "year")
	month := fs.Int("month", 0, "month 1-12")
	fs.Parse(args)

	userID, err := authenticate(ctx, app, *token)
	if err != nil {
		return err
	}
	summary, err := app.Ledger.MonthlySummary(ctx, userID, *year, *month)
	if err != nil {
		return err
	}
	fmt.Printf("%04d-%02d (%s .. %s)\n", summary.Year, summary.Month, summary.Start, summary.End)
	fmt.Printf("balance %s (income %s, expense %s)\n",
		summary.Balance.Balance, summary.Balance.TotalIncome, summary.Balance.TotalExpense)
	for _, c := range summary.Categories {
		fmt.Printf("  %s %s: +%s -%s\n", c.Icon, c.Name, c.Income, c.Expense)
	}
	for _, d := range summary.Days {
		fmt.Printf("  %s: +%s -%s\n", d.Date, d.Income, d.Expense)
	}
	return nil
}

func runRecent(ctx context.Context, app *cli.App, args []string) error {
	fs := flag.NewFlagSet("recent", flag.ExitOnError)
	token := fs.String("token", "", "session token")
	limit := fs.Int("limit", 10, "number of transactions")
	fs.Parse(args)

	userID, err := authenticate(ctx, app, *token)
	if err != nil {
		return err
	}
	transactions, err := app.Ledger.Recent(ctx, userID, *limit)
	if err != nil {
		return err
	}
	for _, t := range transactions {
		sign := "+"
		if t.Type == core.Expense {
			sign = "-"
		}
		label := t.Description
		if label == "" {
			label = t.CategoryName
		}
		fmt.Printf("%s %s%s %s\n", t.Date, sign, t.Amount, label)
	}
	return nil
}
