package printing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kendall-kelly/restaurant-floor-api/config"
	"github.com/kendall-kelly/restaurant-floor-api/models"
	"golang.org/x/sync/errgroup"
)

// Food dishes whose names contain one of these go to the shashlik station
var shashlikKeywords = []string{"shashlik", "kabob", "kebab"}

const ticketRule = "---------------"

// EffectiveCategory returns the printer category for a dish.
// Food named like a grilled skewer is rerouted to shashlik.
func EffectiveCategory(name, base string) string {
	if base != models.CategoryFood {
		return base
	}
	lower := strings.ToLower(name)
	for _, keyword := range shashlikKeywords {
		if strings.Contains(lower, keyword) {
			return models.CategoryShashlik
		}
	}
	return base
}

// UnitFor labels quantities on kitchen tickets
func UnitFor(category string) string {
	if category == models.CategoryDrink {
		return "liter"
	}
	return "piece"
}

// TicketItem is one line sent to a kitchen station
type TicketItem struct {
	Name     string
	Quantity int
	Category string // dish category as recorded on the order
}

// Ticket carries everything a kitchen station prints for one order
type Ticket struct {
	OrderID     uint
	TableNumber int
	WaiterName  string
	Items       []TicketItem
}

// CategoryGroup is the run of items routed to one printer
type CategoryGroup struct {
	Category string
	Items    []TicketItem
}

// Partition groups items by effective category. Groups appear in the order their
// first item appears, and items keep their relative order within a group.
func Partition(items []TicketItem) []CategoryGroup {
	index := make(map[string]int)
	var groups []CategoryGroup
	for _, item := range items {
		category := EffectiveCategory(item.Name, item.Category)
		i, ok := index[category]
		if !ok {
			i = len(groups)
			index[category] = i
			groups = append(groups, CategoryGroup{Category: category})
		}
		groups[i].Items = append(groups[i].Items, item)
	}
	return groups
}

// KitchenDocument renders the ticket section for one category group
func KitchenDocument(t Ticket, group CategoryGroup) Document {
	var b strings.Builder
	b.WriteString(ticketRule + "\n")
	b.WriteString(fmt.Sprintf("Table: %d\n", t.TableNumber))
	b.WriteString(fmt.Sprintf("Waiter: %s\n", t.WaiterName))
	b.WriteString("Items:\n")
	for _, item := range group.Items {
		b.WriteString(fmt.Sprintf("%dx %s (%s)\n", item.Quantity, item.Name, UnitFor(group.Category)))
	}
	b.WriteString(ticketRule + "\n")
	return Document{Header: "ORDER", Body: b.String()}
}

// JobResult is the outcome of one category's print job
type JobResult struct {
	JobID    string `json:"job_id"`
	Category string `json:"category"`
	Endpoint string `json:"endpoint"`
	Items    int    `json:"items"`
	Code     string `json:"code,omitempty"`
	Error    string `json:"error,omitempty"`
	Err      error  `json:"-"`
}

// OK reports whether the job printed
func (r JobResult) OK() bool {
	return r.Err == nil
}

// DispatchReport lists the jobs issued for one order in category order
type DispatchReport struct {
	OrderID uint        `json:"order_id"`
	Jobs    []JobResult `json:"jobs"`
}

// Failed returns the jobs that did not print
func (r DispatchReport) Failed() []JobResult {
	var failed []JobResult
	for _, job := range r.Jobs {
		if !job.OK() {
			failed = append(failed, job)
		}
	}
	return failed
}

// Err joins the errors of all failed jobs, or returns nil
func (r DispatchReport) Err() error {
	var errs []error
	for _, job := range r.Failed() {
		errs = append(errs, job.Err)
	}
	return errors.Join(errs...)
}

// Dispatcher fans an order out to one print job per category
type Dispatcher struct {
	printer     Printer
	endpoints   map[string]config.PrinterEndpoint
	concurrency int
}

// NewDispatcher creates a dispatcher over the per-category endpoint table.
// concurrency bounds how many categories print at once; 1 prints them in turn.
func NewDispatcher(printer Printer, endpoints map[string]config.PrinterEndpoint, concurrency int) *Dispatcher {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Dispatcher{printer: printer, endpoints: endpoints, concurrency: concurrency}
}

// Dispatch prints every category group of the ticket. A failed job never
// stops the others; failures are recorded in the report.
func (d *Dispatcher) Dispatch(ctx context.Context, ticket Ticket) DispatchReport {
	groups := Partition(ticket.Items)
	report := DispatchReport{OrderID: ticket.OrderID, Jobs: make([]JobResult, len(groups))}

	var g errgroup.Group
	g.SetLimit(d.concurrency)
	for i, group := range groups {
		g.Go(func() error {
			report.Jobs[i] = d.runJob(ctx, ticket, group)
			return nil
		})
	}
	_ = g.Wait()

	return report
}

func (d *Dispatcher) runJob(ctx context.Context, ticket Ticket, group CategoryGroup) JobResult {
	result := JobResult{
		JobID:    uuid.NewString(),
		Category: group.Category,
		Items:    len(group.Items),
	}
	start := time.Now()

	endpoint, ok := d.endpoints[group.Category]
	var err error
	if !ok || !endpoint.Configured() {
		err = &PrinterError{Code: CodeNotConfigured, Category: group.Category, Endpoint: endpoint.String(), Err: ErrNotConfigured}
	} else {
		result.Endpoint = endpoint.Address()
		err = d.printer.Print(ctx, endpoint, KitchenDocument(ticket, group))
	}
	jobDurationMS.WithLabelValues(group.Category).Observe(float64(time.Since(start).Milliseconds()))

	if err != nil {
		var pe *PrinterError
		if errors.As(err, &pe) && pe.Category == "" {
			pe.Category = group.Category
		}
		result.Err = err
		result.Code = ErrorCode(err)
		result.Error = err.Error()
		jobsTotal.WithLabelValues(group.Category, "failed").Inc()
		slog.Error("print job failed",
			slog.String("action", "print_job"),
			slog.String("job_id", result.JobID),
			slog.Uint64("order_id", uint64(ticket.OrderID)),
			slog.String("category", group.Category),
			slog.String("endpoint", result.Endpoint),
			slog.Any("error", err))
		return result
	}

	jobsTotal.WithLabelValues(group.Category, "printed").Inc()
	slog.Info("print job sent",
		slog.String("action", "print_job"),
		slog.String("job_id", result.JobID),
		slog.Uint64("order_id", uint64(ticket.OrderID)),
		slog.String("category", group.Category),
		slog.String("endpoint", result.Endpoint),
		slog.Int("items", result.Items))
	return result
}
