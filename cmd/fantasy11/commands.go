package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"time"

	fantasy11 "github.com/MrEthical07/fantasy11"
	"github.com/MrEthical07/fantasy11/session"
)

type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }

func usagef(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

type command struct {
	summary    string
	needsLogin bool
	run        func(ctx context.Context, c *fantasy11.Client, args []string) error
}

var stdout io.Writer = os.Stdout

var commands = map[string]command{
	"login":          {summary: "sign in with -email or -mobile and -password", run: cmdLogin},
	"register":       {summary: "create an account and sign in", run: cmdRegister},
	"logout":         {summary: "forget the stored session", run: cmdLogout},
	"whoami":         {summary: "show the stored session without contacting the backend", run: cmdWhoami},
	"verify":         {summary: "ask the backend whether the stored token is valid", needsLogin: true, run: cmdVerify},
	"profile":        {summary: "show the profile of the signed-in user", needsLogin: true, run: cmdProfile},
	"update-profile": {summary: "change -name, -email or -mobile", needsLogin: true, run: cmdUpdateProfile},
	"refresh":        {summary: "reload the profile into the stored session", needsLogin: true, run: cmdRefresh},
	"matches":        {summary: "list matches, optionally by -status", run: cmdMatches},
	"match":          {summary: "show one match by id", run: cmdMatch},
	"my-matches":     {summary: "list matches the user has joined", needsLogin: true, run: cmdMyMatches},
	"leagues":        {summary: "list leagues with optional -filter and -sort", run: cmdLeagues},
	"join":           {summary: "join a league by id", needsLogin: true, run: cmdJoin},
	"balance":        {summary: "show the wallet balance", needsLogin: true, run: cmdBalance},
	"transactions":   {summary: "list wallet transactions", needsLogin: true, run: cmdTransactions},
	"add-money":      {summary: "credit the wallet with an amount", needsLogin: true, run: cmdAddMoney},
}

func commandNames() []string {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return usagef("%v", err)
	}
	return nil
}

func cmdLogin(ctx context.Context, c *fantasy11.Client, args []string) error {
	fs := newFlagSet("login")
	email := fs.String("email", "", "account email")
	mobile := fs.String("mobile", "", "10-digit mobile number")
	password := fs.String("password", "", "account password")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	resp, err := c.Login(ctx, fantasy11.LoginRequest{Email: *email, Mobile: *mobile, Password: *password})
	if err != nil {
		return err
	}
	if err := c.PersistAuth(ctx, resp); err != nil {
		return err
	}

	fmt.Fprintf(stdout, "%s. Signed in as %s (wallet %s)\n", resp.Message, resp.User.Name, money(resp.User.WalletBalance))
	return nil
}

func cmdRegister(ctx context.Context, c *fantasy11.Client, args []string) error {
	fs := newFlagSet("register")
	var req fantasy11.RegisterRequest
	fs.StringVar(&req.Name, "name", "", "full name")
	fs.StringVar(&req.Email, "email", "", "email address")
	fs.StringVar(&req.Mobile, "mobile", "", "10-digit mobile number")
	fs.StringVar(&req.Password, "password", "", "password, at least 6 characters")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	resp, err := c.Register(ctx, req)
	if err != nil {
		return err
	}
	if err := c.PersistAuth(ctx, resp); err != nil {
		return err
	}

	fmt.Fprintf(stdout, "%s. Signed in as %s\n", resp.Message, resp.User.Name)
	return nil
}

func cmdLogout(ctx context.Context, c *fantasy11.Client, _ []string) error {
	if err := c.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(stdout, "Signed out")
	return nil
}

func cmdWhoami(ctx context.Context, c *fantasy11.Client, _ []string) error {
	store := c.SessionStore()
	if !store.Available() {
		fmt.Fprintln(stdout, "Session storage unavailable")
		return nil
	}

	sess, err := store.Load(ctx)
	switch {
	case errors.Is(err, session.ErrNoSession):
		fmt.Fprintln(stdout, "Not signed in")
		return nil
	case err != nil:
		return err
	}

	u := sess.User
	fmt.Fprintf(stdout, "%s <%s> id=%s wallet=%s\n", u.Name, u.Email, u.ID, money(u.Wallet))
	if info, ok := sess.Claims(); ok && !info.ExpiresAt.IsZero() {
		state := "valid until"
		if sess.Expired(time.Now()) {
			state = "expired at"
		}
		fmt.Fprintf(stdout, "token %s %s\n", state, info.ExpiresAt.Local().Format(time.RFC1123))
	}
	return nil
}

func cmdVerify(ctx context.Context, c *fantasy11.Client, _ []string) error {
	resp, err := c.VerifyToken(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "valid=%t user_id=%s\n", resp.Valid, resp.UserID)
	return nil
}

func cmdProfile(ctx context.Context, c *fantasy11.Client, _ []string) error {
	p, err := c.GetProfile(ctx)
	if err != nil {
		return err
	}
	printProfile(stdout, p)
	return nil
}

func cmdUpdateProfile(ctx context.Context, c *fantasy11.Client, args []string) error {
	fs := newFlagSet("update-profile")
	name := fs.String("name", "", "new name")
	email := fs.String("email", "", "new email")
	mobile := fs.String("mobile", "", "new mobile")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	var update fantasy11.ProfileUpdate
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "name":
			update.Name = name
		case "email":
			update.Email = email
		case "mobile":
			update.Mobile = mobile
		}
	})

	resp, err := c.UpdateProfile(ctx, update)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, resp.Message)
	return nil
}

func cmdRefresh(ctx context.Context, c *fantasy11.Client, _ []string) error {
	u, err := c.RefreshUser(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Session updated: %s wallet=%s\n", u.Name, money(u.Wallet))
	return nil
}

func cmdMatches(ctx context.Context, c *fantasy11.Client, args []string) error {
	return listMatches(ctx, args, "matches", c.ListMatches)
}

func cmdMyMatches(ctx context.Context, c *fantasy11.Client, args []string) error {
	return listMatches(ctx, args, "my-matches", c.ListMyMatches)
}

func listMatches(ctx context.Context, args []string, name string, list func(context.Context, fantasy11.MatchStatus) ([]fantasy11.Match, error)) error {
	fs := newFlagSet(name)
	status := fs.String("status", string(fantasy11.MatchAll), "all, upcoming, live or completed")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	matches, err := list(ctx, fantasy11.MatchStatus(*status))
	if err != nil {
		return err
	}
	printMatches(stdout, matches)
	return nil
}

func cmdMatch(ctx context.Context, c *fantasy11.Client, args []string) error {
	if len(args) != 1 {
		return usagef("expected exactly one match id")
	}
	m, err := c.GetMatch(ctx, args[0])
	if err != nil {
		return err
	}
	printMatches(stdout, []fantasy11.Match{*m})
	return nil
}

func cmdLeagues(ctx context.Context, c *fantasy11.Client, args []string) error {
	fs := newFlagSet("leagues")
	filter := fs.String("filter", "", "all, free, paid or popular")
	sortBy := fs.String("sort", "", "prize, teams or entry")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	leagues, err := c.ListLeagues(ctx, fantasy11.LeagueFilter(*filter), fantasy11.LeagueSort(*sortBy))
	if err != nil {
		return err
	}
	printLeagues(stdout, leagues)
	return nil
}

func cmdJoin(ctx context.Context, c *fantasy11.Client, args []string) error {
	if len(args) != 1 {
		return usagef("expected exactly one league id")
	}
	resp, err := c.JoinLeague(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, resp.Message)
	return nil
}

func cmdBalance(ctx context.Context, c *fantasy11.Client, _ []string) error {
	balance, err := c.WalletBalance(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, money(balance))
	return nil
}

func cmdTransactions(ctx context.Context, c *fantasy11.Client, _ []string) error {
	txs, err := c.Transactions(ctx)
	if err != nil {
		return err
	}
	printTransactions(stdout, txs)
	return nil
}

func cmdAddMoney(ctx context.Context, c *fantasy11.Client, args []string) error {
	if len(args) != 1 {
		return usagef("expected exactly one amount")
	}
	amount, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return usagef("invalid amount %q", args[0])
	}

	resp, err := c.AddMoney(ctx, amount)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, resp.Message)
	return nil
}
