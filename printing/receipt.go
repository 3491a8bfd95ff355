package printing

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	// Currency is appended to every amount on a receipt
	Currency = "UZS"

	receiptNameWidth = 10
	receiptTimeFmt   = "1/2/06, 3:04 PM"
	receiptClosing   = "Thank you for your visit"
)

var receiptRule = strings.Repeat("-", 31)

var amountPrinter = message.NewPrinter(language.English)

// ReceiptLine is one dish on a consolidated receipt
type ReceiptLine struct {
	DishID    uint
	Name      string
	UnitPrice int64
	Quantity  int
}

// Amount is the line's unit price times its quantity
func (l ReceiptLine) Amount() int64 {
	return l.UnitPrice * int64(l.Quantity)
}

// AggregateLines merges lines for the same dish at the same unit price by
// summing quantities. A dish sold at two prices keeps one line per price.
// The first occurrence fixes the position and name.
func AggregateLines(lines []ReceiptLine) []ReceiptLine {
	type lineKey struct {
		dishID    uint
		unitPrice int64
	}
	index := make(map[lineKey]int, len(lines))
	out := make([]ReceiptLine, 0, len(lines))
	for _, line := range lines {
		key := lineKey{line.DishID, line.UnitPrice}
		if i, ok := index[key]; ok {
			out[i].Quantity += line.Quantity
			continue
		}
		index[key] = len(out)
		out = append(out, line)
	}
	return out
}

// FormatAmount renders n with thousands separators and the currency suffix
func FormatAmount(n int64) string {
	return amountPrinter.Sprintf("%d", n) + Currency
}

// FormatReceipt renders aggregated lines and the total as fixed-width receipt text
func FormatReceipt(lines []ReceiptLine, total int64, at time.Time) string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(at.Format(receiptTimeFmt) + "\n")
	b.WriteString(receiptRule + "\n")

	b.WriteString("Orders\n")
	aggregated := AggregateLines(lines)
	for i, line := range aggregated {
		b.WriteString(fmt.Sprintf("> %s%2d %s", receiptName(line.Name), line.Quantity, FormatAmount(line.Amount())))
		if i < len(aggregated)-1 {
			b.WriteString("\n\n")
		}
	}

	b.WriteString("\n" + receiptRule + "\n")
	b.WriteString("Total " + FormatAmount(total) + "\n")
	b.WriteString("\n" + receiptRule + "\n")
	b.WriteString(receiptClosing + "\n")
	b.WriteString("\n\n\n\n")

	return b.String()
}

// ReceiptDocument wraps receipt text under a title
func ReceiptDocument(title, text string) Document {
	return Document{Header: title, Body: text}
}

// receiptName truncates to the name column and pads it with spaces
func receiptName(name string) string {
	r := []rune(name)
	if len(r) > receiptNameWidth {
		r = r[:receiptNameWidth]
	}
	return fmt.Sprintf("%-*s", receiptNameWidth, string(r))
}
