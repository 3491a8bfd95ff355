package printing

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kendall-kelly/restaurant-floor-api/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEffectiveCategory(t *testing.T) {
	tests := []struct {
		name     string
		dish     string
		base     string
		expected string
	}{
		{"shashlik keyword reroutes food", "Shashlik Klassik", "food", "shashlik"},
		{"kabob keyword is case-insensitive", "Lamb KABOB", "food", "shashlik"},
		{"kebab keyword inside a word", "Doner-kebab", "food", "shashlik"},
		{"plain food stays food", "Osh", "food", "food"},
		{"drink is never rerouted", "Kebab Cola", "drink", "drink"},
		{"salad is never rerouted", "Shashlik salad", "salad", "salad"},
		{"stored shashlik stays shashlik", "Lula", "shashlik", "shashlik"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, EffectiveCategory(tt.dish, tt.base))
		})
	}
}

func TestUnitFor(t *testing.T) {
	assert.Equal(t, "liter", UnitFor("drink"))
	assert.Equal(t, "piece", UnitFor("food"))
	assert.Equal(t, "piece", UnitFor("shashlik"))
	assert.Equal(t, "piece", UnitFor("dessert"))
}

func TestPartitionPreservesOrder(t *testing.T) {
	items := []TicketItem{
		{Name: "Cola", Quantity: 1, Category: "drink"},
		{Name: "Osh", Quantity: 2, Category: "food"},
		{Name: "Shashlik Klassik", Quantity: 4, Category: "food"},
		{Name: "Choy", Quantity: 1, Category: "drink"},
		{Name: "Lagmon", Quantity: 1, Category: "food"},
	}

	groups := Partition(items)

	require.Len(t, groups, 3)
	assert.Equal(t, "drink", groups[0].Category)
	assert.Equal(t, []string{"Cola", "Choy"}, names(groups[0].Items))
	assert.Equal(t, "food", groups[1].Category)
	assert.Equal(t, []string{"Osh", "Lagmon"}, names(groups[1].Items))
	assert.Equal(t, "shashlik", groups[2].Category)
	assert.Equal(t, []string{"Shashlik Klassik"}, names(groups[2].Items))
}

func TestPartitionEmpty(t *testing.T) {
	assert.Empty(t, Partition(nil))
}

func TestKitchenDocument(t *testing.T) {
	ticket := Ticket{OrderID: 3, TableNumber: 12, WaiterName: "Aziz Karimov"}
	group := CategoryGroup{Category: "drink", Items: []TicketItem{{Name: "Cola", Quantity: 2, Category: "drink"}}}

	doc := KitchenDocument(ticket, group)

	assert.Equal(t, "ORDER", doc.Header)
	assert.Equal(t, "---------------\nTable: 12\nWaiter: Aziz Karimov\nItems:\n2x Cola (liter)\n---------------\n", doc.Body)
}

var (
	foodPrinter     = config.PrinterEndpoint{IP: "10.0.0.1", Port: 9100}
	drinkPrinter    = config.PrinterEndpoint{IP: "10.0.0.2", Port: 9100}
	shashlikPrinter = config.PrinterEndpoint{IP: "10.0.0.3", Port: 9100}
)

func testTicket() Ticket {
	return Ticket{
		OrderID:     42,
		TableNumber: 5,
		WaiterName:  "Aziz",
		Items: []TicketItem{
			{Name: "Osh", Quantity: 2, Category: "food"},
			{Name: "Cola", Quantity: 1, Category: "drink"},
			{Name: "Shashlik Klassik", Quantity: 3, Category: "food"},
			{Name: "Napoleon", Quantity: 1, Category: "dessert"},
		},
	}
}

func TestDispatch_OneJobPerCategory(t *testing.T) {
	printer := NewMockPrinter()
	endpoints := map[string]config.PrinterEndpoint{
		"food":     foodPrinter,
		"drink":    drinkPrinter,
		"shashlik": shashlikPrinter,
		"dessert":  {IP: "10.0.0.4", Port: 9100},
	}
	dispatcher := NewDispatcher(printer, endpoints, 1)

	report := dispatcher.Dispatch(context.Background(), testTicket())

	require.Len(t, report.Jobs, 4)
	assert.Equal(t, uint(42), report.OrderID)
	assert.Equal(t, []string{"food", "drink", "shashlik", "dessert"}, categories(report.Jobs))
	assert.Empty(t, report.Failed())
	assert.NoError(t, report.Err())

	jobs := printer.Jobs()
	require.Len(t, jobs, 4)
	assert.Equal(t, foodPrinter, jobs[0].Endpoint, "sequential dispatch prints in category order")

	shashlik := printer.JobsFor(shashlikPrinter)
	require.Len(t, shashlik, 1)
	assert.Contains(t, shashlik[0].Document.Body, "3x Shashlik Klassik (piece)")
	assert.NotContains(t, shashlik[0].Document.Body, "Osh")

	drink := printer.JobsFor(drinkPrinter)
	require.Len(t, drink, 1)
	assert.Contains(t, drink[0].Document.Body, "1x Cola (liter)")
}

func TestDispatch_MissingEndpointIsIsolated(t *testing.T) {
	printer := NewMockPrinter()
	endpoints := map[string]config.PrinterEndpoint{
		"food":     foodPrinter,
		"drink":    drinkPrinter,
		"shashlik": shashlikPrinter,
	}
	dispatcher := NewDispatcher(printer, endpoints, 1)

	report := dispatcher.Dispatch(context.Background(), testTicket())

	failed := report.Failed()
	require.Len(t, failed, 1)
	assert.Equal(t, "dessert", failed[0].Category)
	assert.Equal(t, CodeNotConfigured, failed[0].Code)
	assert.Contains(t, failed[0].Error, "dessert")
	assert.Len(t, printer.Jobs(), 3, "the other categories still print")
}

func TestDispatch_PrinterFailureIsIsolated(t *testing.T) {
	printer := NewMockPrinter()
	endpoints := map[string]config.PrinterEndpoint{
		"food":     foodPrinter,
		"drink":    drinkPrinter,
		"shashlik": shashlikPrinter,
		"dessert":  {IP: "10.0.0.4", Port: 9100},
	}

	for _, concurrency := range []int{1, 4} {
		printer.Reset()
		printer.FailEndpoint(drinkPrinter, &PrinterError{Code: CodeUnreachable, Endpoint: drinkPrinter.Address(), Attempts: 3, Err: errors.New("refused")})
		dispatcher := NewDispatcher(printer, endpoints, concurrency)

		report := dispatcher.Dispatch(context.Background(), testTicket())

		require.Len(t, report.Jobs, 4)
		assert.Equal(t, []string{"food", "drink", "shashlik", "dessert"}, categories(report.Jobs), "report keeps category order")
		failed := report.Failed()
		require.Len(t, failed, 1)
		assert.Equal(t, "drink", failed[0].Category)
		assert.Equal(t, CodeUnreachable, failed[0].Code)

		var pe *PrinterError
		require.True(t, errors.As(report.Err(), &pe))
		assert.Equal(t, "drink", pe.Category, "category is stamped onto the printer error")
		assert.Len(t, printer.Jobs(), 3)
	}
}

func TestNewDispatcherClampsConcurrency(t *testing.T) {
	d := NewDispatcher(NewMockPrinter(), nil, 0)
	assert.Equal(t, 1, d.concurrency)
}

func names(items []TicketItem) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.Name
	}
	return out
}

func categories(jobs []JobResult) []string {
	out := make([]string, len(jobs))
	for i, job := range jobs {
		out[i] = strings.ToLower(job.Category)
	}
	return out
}
