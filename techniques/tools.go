package techniques

import (
	"context"
	"fmt"
	"time"

	"github.com/adityapatel143/GenAi-Prompt-Engineering/catalog"
)

// CustomerServiceTools exposes the catalog to a ReAct agent. now supplies the
// date for return-window checks; nil means time.Now.
func CustomerServiceTools(c *catalog.Catalog, now func() time.Time) *Toolbox {
	if now == nil {
		now = time.Now
	}
	tb, err := NewToolbox(
		Tool{
			Name:        "lookup_order",
			Params:      []string{"order_id"},
			Description: "Get order details, items and customer info",
			Run: func(_ context.Context, args []string) (any, error) {
				if err := wantArgs(args, 1); err != nil {
					return nil, err
				}
				return c.LookupOrder(args[0])
			},
		},
		Tool{
			Name:        "check_inventory",
			Params:      []string{"product_name"},
			Description: "Check product availability for a replacement",
			Run: func(_ context.Context, args []string) (any, error) {
				if err := wantArgs(args, 1); err != nil {
					return nil, err
				}
				return c.CheckInventory(args[0])
			},
		},
		Tool{
			Name:        "check_return_eligibility",
			Params:      []string{"order_id"},
			Description: "Check whether the order can still be returned",
			Run: func(_ context.Context, args []string) (any, error) {
				if err := wantArgs(args, 1); err != nil {
					return nil, err
				}
				return c.CheckReturnEligibility(args[0], now())
			},
		},
		Tool{
			Name:        "calculate_refund",
			Params:      []string{"order_id", "items"},
			Description: "Calculate the refund for returning the listed items",
			Run: func(_ context.Context, args []string) (any, error) {
				if len(args) < 2 {
					return nil, fmt.Errorf("expected order_id and items, got %d arguments", len(args))
				}
				var items []string
				for _, arg := range args[1:] {
					items = append(items, ListArg(arg)...)
				}
				return c.CalculateRefund(args[0], items)
			},
		},
	)
	if err != nil {
		panic(err)
	}
	return tb
}

func wantArgs(args []string, n int) error {
	if len(args) != n {
		return fmt.Errorf("expected %d argument(s), got %d", n, len(args))
	}
	return nil
}
