package validation

import (
	"fmt"
	"sort"

	"userhub/internal/domainerr"
)

// Consent checks prefs against template, where a true template value marks a
// mandatory consent that must be present and accepted. Every violation is
// reported, keyed by the consent name.
func Consent(prefs map[string]any, template map[string]bool) error {
	c := NewCollector()

	keys := make([]string, 0, len(template))
	for k := range template {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		mandatory := template[key]
		raw, present := prefs[key]
		if !present {
			if mandatory {
				c.AddField(key, fmt.Sprintf("missing mandatory consent %q", key))
			}
			continue
		}
		v, isBool := raw.(bool)
		if !isBool {
			c.AddField(key, fmt.Sprintf("consent %q must be a boolean value", key))
			continue
		}
		c.Check(key, v || !mandatory, fmt.Sprintf("mandatory consent %q must be accepted", key))
	}

	extra := make([]string, 0)
	for k := range prefs {
		if _, ok := template[k]; !ok {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	for _, k := range extra {
		c.AddField(k, fmt.Sprintf("unexpected consent key %q", k))
	}

	return c.Err()
}

// Collector aggregates violations from many rules into one Validation error.
type Collector struct {
	fields map[string][]string
}

func NewCollector() *Collector {
	return &Collector{fields: map[string][]string{}}
}

// Add merges err into the collector. Validation errors contribute their
// field map; any other error is kept under the message field.
func (c *Collector) Add(err error) {
	if err == nil {
		return
	}
	de, ok := domainerr.From(err)
	if !ok || de.Kind() != domainerr.KindValidation {
		c.AddField(domainerr.MessageField, err.Error())
		return
	}
	fields := de.Fields()
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		c.AddField(k, fields[k]...)
	}
}

// AddAt files every message of err under path, regardless of its own keys.
func (c *Collector) AddAt(path string, err error) {
	if err == nil {
		return
	}
	de, ok := domainerr.From(err)
	if !ok {
		c.AddField(path, err.Error())
		return
	}
	fields := de.Fields()
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		c.AddField(path, fields[k]...)
	}
}

// AddField appends messages to field.
func (c *Collector) AddField(field string, msgs ...string) {
	if len(msgs) == 0 {
		return
	}
	c.fields[field] = append(c.fields[field], msgs...)
}

// Check records msg against field when ok is false.
func (c *Collector) Check(field string, ok bool, msg string) {
	if !ok {
		c.AddField(field, msg)
	}
}

// Join merges the given errors into one Validation error, or nil.
func Join(errs ...error) error {
	c := NewCollector()
	for _, err := range errs {
		c.Add(err)
	}
	return c.Err()
}

// Err returns nil when nothing was collected.
func (c *Collector) Err() error {
	if len(c.fields) == 0 {
		return nil
	}
	return domainerr.WithFields(domainerr.KindValidation, "validation failed", c.fields)
}
