// This file translates the HCL schema structs into the format-agnostic
// configuration model.

package hcl

import (
	"fmt"
	"time"

	"github.com/hashicorp/hcl/v2"

	"github.com/vk/tickgraph/internal/config"
)

// translateRun applies a run block over the defaults. Leaving api_budget
// out keeps the budget unlimited; setting it negative is an error.
func translateRun(rb *runBlock) (config.Run, error) {
	run := config.DefaultRun
	if rb.DeadlineSeconds != nil {
		if *rb.DeadlineSeconds < 0 {
			return run, fmt.Errorf("deadline_seconds must not be negative")
		}
		run.Deadline = time.Duration(*rb.DeadlineSeconds) * time.Second
	}
	if rb.APIBudget != nil {
		if *rb.APIBudget < 0 {
			return run, fmt.Errorf("api_budget must not be negative")
		}
		run.APIBudget = *rb.APIBudget
	}
	return run, nil
}

func translateMigrator(mb *migratorBlock) (*config.Migrator, error) {
	if mb.DeadlineSeconds < 0 {
		return nil, fmt.Errorf("deadline_seconds must not be negative")
	}
	mig := &config.Migrator{
		Kind:     mb.Kind,
		Name:     mb.Name,
		Quota:    mb.Quota,
		Deadline: time.Duration(mb.DeadlineSeconds) * time.Second,
		Ordering: mb.Ordering,
	}
	if r := mb.Relevance; r != nil {
		mig.Relevance = config.Relevance{Requires: r.Requires, Include: r.Include, Exclude: r.Exclude}
	}

	var err error
	if mb.Arguments != nil {
		if mig.Arguments, err = attributes(mb.Arguments.Body); err != nil {
			return nil, fmt.Errorf("arguments: %w", err)
		}
	}
	for _, pb := range mb.Piggyback {
		args, err := attributes(pb.Body)
		if err != nil {
			return nil, fmt.Errorf("piggyback %q: %w", pb.Kind, err)
		}
		mig.Piggyback = append(mig.Piggyback, &config.Piggyback{Kind: pb.Kind, Arguments: args})
	}
	return mig, nil
}

// attributes returns the expressions of a block body that may only hold
// attributes.
func attributes(body hcl.Body) (map[string]hcl.Expression, error) {
	if body == nil {
		return nil, nil
	}
	attrs, diags := body.JustAttributes()
	if diags.HasErrors() {
		return nil, diags
	}
	exprs := make(map[string]hcl.Expression, len(attrs))
	for name, attr := range attrs {
		exprs[name] = attr.Expr
	}
	return exprs, nil
}
