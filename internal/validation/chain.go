package validation

import "context"

// Rule is one precondition of a request. It returns nil when satisfied.
type Rule func(ctx context.Context) error

// Chain runs rules in order and returns the first failure.
// Rules after a failing one are not evaluated.
func Chain(ctx context.Context, rules ...Rule) error {
	for _, rule := range rules {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := rule(ctx); err != nil {
			return err
		}
	}
	return nil
}
