// Package dates extracts searchable date tokens from arbitrary metadata trees.
//
// A recognized date is emitted in many textual shapes (2025-12, 202512, dec15,
// december-15, ...) so that a substring or full-text query for any common
// phrasing hits the same stored value.
package dates

import (
	"encoding/json"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

type month struct {
	num   string
	full  string
	short string
}

var months = [12]month{
	{"01", "january", "jan"},
	{"02", "february", "feb"},
	{"03", "march", "mar"},
	{"04", "april", "apr"},
	{"05", "may", "may"},
	{"06", "june", "jun"},
	{"07", "july", "jul"},
	{"08", "august", "aug"},
	{"09", "september", "sep"},
	{"10", "october", "oct"},
	{"11", "november", "nov"},
	{"12", "december", "dec"},
}

// monthNames maps every accepted month spelling to its two-digit number.
var monthNames = func() map[string]string {
	m := make(map[string]string, 25)
	for _, mo := range months {
		m[mo.full] = mo.num
		m[mo.short] = mo.num
	}
	m["sept"] = "09"
	return m
}()

var (
	isoRe       = regexp.MustCompile(`^(\d{4})(?:[-/](\d{1,2})(?:[-/](\d{1,2}))?)?$`)
	compactRe   = regexp.MustCompile(`^(\d{4})(\d{2})(\d{2})$`)
	monthNameRe = regexp.MustCompile(`^([a-zA-Z]+)\s+(\d{1,2}),?\s+(\d{4})$`)
)

// MonthNumber returns the two-digit month for a full or abbreviated English
// month name. name must already be lowercase.
func MonthNumber(name string) (string, bool) {
	n, ok := monthNames[name]
	return n, ok
}

// Pad2 left-pads a one or two digit number with a zero.
func Pad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}

// Extract walks v and returns the deduplicated date tokens of every
// date-like leaf it finds. Object keys are visited in sorted order.
func Extract(v any) []string {
	c := &collector{seen: make(map[string]struct{})}
	c.visit(v)
	return c.out
}

type collector struct {
	seen map[string]struct{}
	out  []string
}

func (c *collector) add(t time.Time) {
	for _, tok := range Tokens(t) {
		if _, ok := c.seen[tok]; ok {
			continue
		}
		c.seen[tok] = struct{}{}
		c.out = append(c.out, tok)
	}
}

func (c *collector) visit(v any) {
	switch val := v.(type) {
	case nil, json.Number:
		return
	case time.Time:
		c.add(val)
	case *time.Time:
		if val != nil {
			c.add(*val)
		}
	case string:
		if t, ok := ParseString(val); ok {
			c.add(t)
		}
	case []any:
		for _, item := range val {
			c.visit(item)
		}
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			c.visit(val[k])
		}
	default:
		c.visitReflect(reflect.ValueOf(v))
	}
}

// visitReflect handles typed containers such as []string or map[string]time.Time.
// Structs and scalars other than strings are not date fragments.
func (c *collector) visitReflect(rv reflect.Value) {
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if !rv.IsNil() {
			c.visit(rv.Elem().Interface())
		}
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			c.visit(rv.Index(i).Interface())
		}
	case reflect.Map:
		keys := rv.MapKeys()
		sort.Slice(keys, func(i, j int) bool {
			return fmt.Sprint(keys[i].Interface()) < fmt.Sprint(keys[j].Interface())
		})
		for _, k := range keys {
			c.visit(rv.MapIndex(k).Interface())
		}
	case reflect.String:
		c.visit(rv.String())
	}
}

// ParseString recognizes the date shapes accepted in metadata strings:
// YYYY, YYYY-M, YYYY-M-D (or with slashes), YYYYMMDD, "December 15, 2025"
// and RFC 3339 timestamps. Missing month or day default to 01.
func ParseString(s string) (time.Time, bool) {
	clean := strings.TrimSpace(s)
	if clean == "" {
		return time.Time{}, false
	}

	if m := isoRe.FindStringSubmatch(clean); m != nil {
		mo, d := "01", "01"
		if m[2] != "" {
			mo = m[2]
		}
		if m[3] != "" {
			d = m[3]
		}
		return civil(m[1], mo, d)
	}

	if m := compactRe.FindStringSubmatch(clean); m != nil {
		return civil(m[1], m[2], m[3])
	}

	if m := monthNameRe.FindStringSubmatch(clean); m != nil {
		name := strings.ToLower(m[1])
		for _, mo := range months {
			if name == mo.full || name == mo.short {
				return civil(m[3], mo.num, m[2])
			}
		}
		return time.Time{}, false
	}

	if t, err := time.Parse(time.RFC3339Nano, clean); err == nil {
		return t.UTC(), true
	}

	return time.Time{}, false
}

// civil builds a UTC midnight date and rejects values time.Date would normalise
// (month 13, February 30).
func civil(year, mon, day string) (time.Time, bool) {
	y, err1 := strconv.Atoi(year)
	m, err2 := strconv.Atoi(mon)
	d, err3 := strconv.Atoi(day)
	if err1 != nil || err2 != nil || err3 != nil {
		return time.Time{}, false
	}
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	if t.Year() != y || int(t.Month()) != m || t.Day() != d {
		return time.Time{}, false
	}
	return t, true
}

// Tokens returns every searchable shape of t's UTC calendar date.
func Tokens(t time.Time) []string {
	t = t.UTC()
	y := fmt.Sprintf("%04d", t.Year())
	mo := months[t.Month()-1]
	m := mo.num
	d := fmt.Sprintf("%02d", t.Day())

	return []string{
		y,
		y + "-" + m,
		y + m,
		y + "-" + m + "-" + d,
		y + m + d,
		m,
		mo.full,
		mo.short,
		m + "-" + d,
		m + d,
		mo.full + "-" + d,
		mo.full + d,
		mo.short + "-" + d,
		mo.short + d,
		d,
	}
}
