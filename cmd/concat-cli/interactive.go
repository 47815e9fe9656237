package main

import (
	"context"
	"fmt"

	"github.com/goliatone/go-concat/pkg/concat"
)

// runInteractive collects values until an empty answer, asks for the options
// and reports the joined result through the driver.
func runInteractive(ctx context.Context, driver promptDriver) (string, error) {
	var values []any
	for {
		value, err := driver.Input(ctx, inputConfig{
			Message: fmt.Sprintf("Value %d", len(values)+1),
			Help:    "Leave empty to finish.",
		})
		if err != nil {
			return "", err
		}
		if value == "" {
			break
		}
		values = append(values, value)
	}

	separator, err := driver.Input(ctx, inputConfig{
		Message: "Separator",
		Default: concat.DefaultSeparator,
	})
	if err != nil {
		return "", err
	}

	opts := concat.DefaultOptions()
	opts.Separator = separator

	if opts.Distinct, err = driver.Confirm(ctx, confirmConfig{Message: "Drop duplicates?"}); err != nil {
		return "", err
	}
	if opts.Quotes, err = driver.Confirm(ctx, confirmConfig{Message: "Quote values?"}); err != nil {
		return "", err
	}
	if opts.Quotes {
		if opts.SingleQuote, err = driver.Confirm(ctx, confirmConfig{Message: "Use single quotes?"}); err != nil {
			return "", err
		}
	}

	out, err := concat.Concatenate(values, opts, nil)
	if err != nil {
		return "", err
	}
	if err := driver.Info(ctx, out); err != nil {
		return "", err
	}
	return out, nil
}
