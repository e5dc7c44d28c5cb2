package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/polkiloo/veo3store/internal/client"
	"github.com/polkiloo/veo3store/internal/server/http/dto"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

type globalFlags struct {
	api      string
	email    string
	password string
}

func run(ctx context.Context, args []string, getenv func(string) string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("veo3admin", flag.ContinueOnError)
	fs.SetOutput(stderr)
	g := globalFlags{}
	fs.StringVar(&g.api, "api", envOr(getenv, "VEO3_API", "http://localhost:8080"), "Storefront base URL")
	fs.StringVar(&g.email, "email", getenv("VEO3_ADMIN_EMAIL"), "Admin account email")
	fs.StringVar(&g.password, "password", getenv("VEO3_ADMIN_PASSWORD"), "Admin account password")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: veo3admin [flags] orders|approve|reject|stats|watch [command flags]")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return exitUsage
	}
	if g.email == "" || g.password == "" {
		fmt.Fprintln(stderr, "admin email and password are required (-email/-password or VEO3_ADMIN_EMAIL/VEO3_ADMIN_PASSWORD)")
		return exitUsage
	}

	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	c, err := client.New(g.api, client.WithLogger(logger))
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}
	login, err := c.Login(ctx, g.email, g.password)
	if err != nil {
		fmt.Fprintf(stderr, "login failed: %v\n", err)
		return exitError
	}
	if login.User.Role != "ADMIN" {
		fmt.Fprintf(stderr, "%s is not an admin account\n", login.User.Email)
		return exitError
	}
	review := client.NewAdminReview(c)

	cmd, rest := fs.Arg(0), fs.Args()[1:]
	switch cmd {
	case "orders":
		err = listOrders(ctx, review, rest, stdout, stderr)
	case "approve":
		err = approve(ctx, review, rest, stdout, stderr)
	case "reject":
		err = reject(ctx, review, rest, stdout, stderr)
	case "stats":
		err = stats(ctx, review, stdout)
	case "watch":
		err = watch(ctx, review, rest, stdout, stderr)
	default:
		fmt.Fprintf(stderr, "unknown command %q\n", cmd)
		return exitUsage
	}

	var usage usageError
	switch {
	case err == nil:
		return exitOK
	case errors.As(err, &usage):
		fmt.Fprintln(stderr, usage.msg)
		return exitUsage
	default:
		fmt.Fprintln(stderr, err)
		return exitError
	}
}

type usageError struct{ msg string }

func (e usageError) Error() string { return e.msg }

func envOr(getenv func(string) string, key, fallback string) string {
	if v := getenv(key); v != "" {
		return v
	}
	return fallback
}

func queryFlags(name string, stderr io.Writer) (*flag.FlagSet, *client.OrderQuery) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	q := &client.OrderQuery{}
	fs.StringVar(&q.Status, "status", "PROCESSING", "Order status filter, empty for all")
	fs.StringVar(&q.Search, "search", "", "Match order number, transfer memo or email")
	fs.IntVar(&q.Page, "page", 1, "Page number")
	fs.IntVar(&q.Limit, "limit", 20, "Page size")
	return fs, q
}

func listOrders(ctx context.Context, review *client.AdminReview, args []string, stdout, stderr io.Writer) error {
	fs, q := queryFlags("orders", stderr)
	if err := fs.Parse(args); err != nil {
		return usageError{msg: err.Error()}
	}
	list, _, err := review.Refresh(ctx, *q)
	if err != nil {
		return err
	}
	printOrders(stdout, list)
	return nil
}

func printOrders(w io.Writer, list *dto.OrderListResponse) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNUMBER\tSTATUS\tAMOUNT\tMEMO\tCUSTOMER\tCREATED")
	for _, o := range list.Orders {
		customer := ""
		if o.User != nil {
			customer = o.User.Email
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\t%s\n",
			o.ID, o.OrderNumber, o.Status, o.Amount, o.TransferContent, customer, o.CreatedAt.Format(time.DateTime))
	}
	_ = tw.Flush()
	p := list.Pagination
	fmt.Fprintf(w, "page %d/%d, %d orders\n", p.Page, p.TotalPages, p.Total)
}

// splitID accepts the order id before or after the command flags.
func splitID(args []string) (string, []string) {
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		return args[0], args[1:]
	}
	return "", args
}

func approve(ctx context.Context, review *client.AdminReview, args []string, stdout, stderr io.Writer) error {
	id, args := splitID(args)
	fs := flag.NewFlagSet("approve", flag.ContinueOnError)
	fs.SetOutput(stderr)
	req := dto.ApproveOrderRequest{}
	fs.IntVar(&req.MaxDevices, "devices", 0, "Devices allowed on the license, 0 for the package default")
	fs.StringVar(&req.DeliveryMethod, "method", "EMAIL", "Delivery channel: EMAIL, TELEGRAM or ZALO")
	fs.StringVar(&req.DeliveryContact, "contact", "", "Delivery address, defaults to the customer email")
	fs.StringVar(&req.AdminNotes, "notes", "", "Internal notes")
	if err := fs.Parse(args); err != nil {
		return usageError{msg: err.Error()}
	}
	if id == "" {
		id = fs.Arg(0)
	}
	if id == "" {
		return usageError{msg: "approve: order id is required"}
	}

	order, err := review.Approve(ctx, id, req)
	if err != nil {
		return err
	}
	key := ""
	if order.License != nil {
		key = order.License.LicenseKey
	}
	fmt.Fprintf(stdout, "order %s %s, license %s delivered via %s to %s\n",
		order.OrderNumber, order.Status, key, order.DeliveryMethod, order.DeliveryContact)
	return nil
}

func reject(ctx context.Context, review *client.AdminReview, args []string, stdout, stderr io.Writer) error {
	id, args := splitID(args)
	fs := flag.NewFlagSet("reject", flag.ContinueOnError)
	fs.SetOutput(stderr)
	reason := fs.String("reason", "", "Reason shown to the customer")
	if err := fs.Parse(args); err != nil {
		return usageError{msg: err.Error()}
	}
	if id == "" {
		id = fs.Arg(0)
	}
	if id == "" {
		return usageError{msg: "reject: order id is required"}
	}

	order, err := review.Reject(ctx, id, *reason)
	if err != nil {
		if errors.Is(err, client.ErrValidation) {
			return usageError{msg: err.Error()}
		}
		return err
	}
	fmt.Fprintf(stdout, "order %s %s: %s\n", order.OrderNumber, order.Status, order.RejectionReason)
	return nil
}

func stats(ctx context.Context, review *client.AdminReview, stdout io.Writer) error {
	s, err := review.Stats(ctx)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "users\t%d\n", s.TotalUsers)
	fmt.Fprintf(tw, "orders\t%d\n", s.TotalOrders)
	fmt.Fprintf(tw, "awaiting review\t%d\n", s.ProcessingOrders)
	fmt.Fprintf(tw, "pending\t%d\n", s.PendingOrders)
	fmt.Fprintf(tw, "completed\t%d\n", s.CompletedOrders)
	fmt.Fprintf(tw, "rejected\t%d\n", s.RejectedOrders)
	fmt.Fprintf(tw, "expired\t%d\n", s.ExpiredOrders)
	fmt.Fprintf(tw, "licenses\t%d active / %d\n", s.ActiveLicenses, s.TotalLicenses)
	fmt.Fprintf(tw, "revenue this month\t%d VND\n", s.MonthlyRevenue)
	return tw.Flush()
}

func watch(ctx context.Context, review *client.AdminReview, args []string, stdout, stderr io.Writer) error {
	fs, q := queryFlags("watch", stderr)
	interval := fs.Duration("interval", 10*time.Second, "Refresh interval")
	if err := fs.Parse(args); err != nil {
		return usageError{msg: err.Error()}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var sessionErr error
	review.Watch(ctx, *interval, *q, func(list *dto.OrderListResponse, err error) {
		if err != nil {
			fmt.Fprintf(stderr, "refresh failed: %v\n", err)
			if client.IsSessionInvalid(err) {
				sessionErr = err
				cancel()
			}
			return
		}
		fmt.Fprintf(stdout, "--- %s\n", time.Now().Format(time.DateTime))
		printOrders(stdout, list)
	})
	if sessionErr != nil {
		return fmt.Errorf("signed out: %w", sessionErr)
	}
	return nil
}
