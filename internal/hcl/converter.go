package hcl

import (
	"context"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"

	"github.com/vk/tickgraph/internal/ctxlog"
)

// Converter is the HCL-specific implementation of the config.Converter interface.
type Converter struct{}

// NewConverter creates a new HCL converter.
func NewConverter() *Converter {
	return &Converter{}
}

// DecodeBody evaluates each argument and stores it in the struct field whose
// `cfg` tag names it. Null values leave the field untouched.
func (c *Converter) DecodeBody(ctx context.Context, target any, args map[string]hcl.Expression) error {
	logger := ctxlog.FromContext(ctx)

	structVal := reflect.ValueOf(target)
	if structVal.Kind() != reflect.Pointer || structVal.IsNil() || structVal.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("target must be a non-nil pointer to a struct, got %T", target)
	}
	structVal = structVal.Elem()
	structType := structVal.Type()

	fields := make(map[string]reflect.Value, structType.NumField())
	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)
		tag := strings.Split(field.Tag.Get("cfg"), ",")[0]
		if !field.IsExported() || tag == "" || tag == "-" {
			continue
		}
		fields[tag] = structVal.Field(i)
	}

	names := make([]string, 0, len(args))
	for name := range args {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		field, ok := fields[name]
		if !ok {
			return fmt.Errorf("unsupported argument %q", name)
		}
		val, diags := args[name].Value(nil)
		if diags.HasErrors() {
			return diags
		}
		if val.IsNull() {
			continue
		}
		if err := c.decode(val, field.Addr().Interface()); err != nil {
			return fmt.Errorf("failed to decode argument %q: %w", name, err)
		}
		logger.Debug("Decoded argument", "argument", name, "type", val.Type().FriendlyName())
	}
	return nil
}

// decode converts val to the cty type implied by the Go target and stores it.
func (c *Converter) decode(val cty.Value, goVal any) error {
	implied, err := gocty.ImpliedType(reflect.ValueOf(goVal).Elem().Interface())
	if err != nil {
		return gocty.FromCtyValue(val, goVal)
	}
	converted, err := convert.Convert(val, implied)
	if err != nil {
		return fmt.Errorf("cannot convert %s to %s: %w", val.Type().FriendlyName(), implied.FriendlyName(), err)
	}
	return gocty.FromCtyValue(converted, goVal)
}
