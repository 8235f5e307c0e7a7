package utils

import (
	"fmt"
	"reflect"

	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"
)

// AttributeMap is a loosely typed set of attributes, usually decoded from JSON.
type AttributeMap map[string]interface{}

// Has returns whether the given attribute exists.
func (am AttributeMap) Has(name string) bool {
	_, has := am[name]
	return has
}

// String returns the string attribute or "" if missing. It panics on a non-string value.
func (am AttributeMap) String(name string) string {
	x := am[name]
	if x == nil {
		return ""
	}
	if s, ok := x.(string); ok {
		return s
	}
	panic(fmt.Errorf("wanted a string for (%s) but got (%v) %T", name, x, x))
}

// Float64 returns the numeric attribute as a float64 or def if missing.
func (am AttributeMap) Float64(name string, def float64) float64 {
	x, has := am[name]
	if !has {
		return def
	}
	switch v := x.(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	panic(fmt.Errorf("wanted a float64 for (%s) but got (%v) %T", name, x, x))
}

// Int returns the numeric attribute as an int or def if missing.
func (am AttributeMap) Int(name string, def int) int {
	x, has := am[name]
	if !has {
		return def
	}
	switch v := x.(type) {
	case int:
		return v
	case float64:
		// json decodes every number as float64
		return int(v)
	}
	panic(fmt.Errorf("wanted an int for (%s) but got (%v) %T", name, x, x))
}

// Bool returns the bool attribute or def if missing.
func (am AttributeMap) Bool(name string, def bool) bool {
	x, has := am[name]
	if !has {
		return def
	}
	if v, ok := x.(bool); ok {
		return v
	}
	panic(fmt.Errorf("wanted a bool for (%s) but got (%v) %T", name, x, x))
}

// A Defaulter fills in default values before attributes are decoded over it.
type Defaulter interface {
	SetDefaults()
}

// TransformAttributeMap uses an attribute map to transform attributes to the prescribed format.
// Keys are matched against json tags. If the target implements Defaulter, defaults are set first so
// that missing attributes keep them.
func TransformAttributeMap[T any](attributes AttributeMap) (T, error) {
	var out T

	var forResult interface{}

	toT := reflect.TypeOf(out)
	if toT == nil {
		// nothing to transform
		return out, nil
	}
	if toT.Kind() == reflect.Ptr {
		// needs to be allocated then
		var ok bool
		out, ok = reflect.New(toT.Elem()).Interface().(T)
		if !ok {
			return out, errors.Errorf("failed to allocate default config type %T", out)
		}
		forResult = out
	} else {
		forResult = &out
	}
	if d, ok := forResult.(Defaulter); ok {
		d.SetDefaults()
	}

	var md mapstructure.Metadata
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:  "json",
		Result:   forResult,
		Metadata: &md,
	})
	if err != nil {
		return out, err
	}
	if err := decoder.Decode(map[string]interface{}(attributes)); err != nil {
		return out, errors.Wrapf(err, "cannot decode attributes into %T", out)
	}
	if len(md.Unused) != 0 {
		return out, errors.Errorf("unknown attributes %q for %T", md.Unused, out)
	}
	return out, nil
}
