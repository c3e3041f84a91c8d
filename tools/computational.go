package tools

import (
	"context"
	"crypto/rand"
	"fmt"
	"math"
	"math/big"
	"regexp"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"
)

// Names of the computational built-ins the planner may request.
const (
	MathSolverName    = "math_problem_solver"
	UnitConverterName = "unit_converter"
	TimezoneName      = "convert_timezone"
	PasswordName      = "generate_password"
)

// Computational returns the built-in tools that need no model or storage.
func Computational() map[string]Tool {
	return map[string]Tool{
		MathSolverName:    MathSolver{},
		UnitConverterName: UnitConverter{},
		TimezoneName:      TimezoneConverter{Now: time.Now},
		PasswordName:      PasswordGenerator{},
	}
}

// MathSolver evaluates the arithmetic expression in its query.
type MathSolver struct{}

func (MathSolver) Description() string {
	return "Evaluates an arithmetic expression such as '(3 + 4) * 2 ^ 3'. Input: the expression."
}

func (MathSolver) Execute(_ context.Context, args Args) Result {
	q, err := queryRequired(args)
	if err != nil {
		return Fail(MathSolverName, err)
	}
	v, err := Evaluate(q)
	if err != nil {
		return Fail(MathSolverName, fmt.Errorf("cannot evaluate %q: %w", q, err))
	}
	return OK(formatNumber(v))
}

type unit struct {
	dimension string
	factor    float64 // multiples of the dimension's base unit
	symbol    string
}

var units = func() map[string]unit {
	table := map[string]unit{}
	add := func(dimension string, factor float64, symbol string, aliases ...string) {
		u := unit{dimension: dimension, factor: factor, symbol: symbol}
		table[symbol] = u
		for _, a := range aliases {
			table[a] = u
		}
	}

	add("length", 0.001, "mm", "millimeter", "millimeters", "millimetre", "millimetres")
	add("length", 0.01, "cm", "centimeter", "centimeters", "centimetre", "centimetres")
	add("length", 1, "m", "meter", "meters", "metre", "metres")
	add("length", 1000, "km", "kilometer", "kilometers", "kilometre", "kilometres")
	add("length", 0.0254, "in", "inch", "inches")
	add("length", 0.3048, "ft", "foot", "feet")
	add("length", 0.9144, "yd", "yard", "yards")
	add("length", 1609.344, "mi", "mile", "miles")

	add("mass", 0.001, "mg", "milligram", "milligrams")
	add("mass", 1, "g", "gram", "grams")
	add("mass", 1000, "kg", "kilogram", "kilograms")
	add("mass", 1e6, "t", "tonne", "tonnes")
	add("mass", 28.349523125, "oz", "ounce", "ounces")
	add("mass", 453.59237, "lb", "lbs", "pound", "pounds")

	add("data", 1, "B", "b", "byte", "bytes")
	add("data", 1e3, "KB", "kb", "kilobyte", "kilobytes")
	add("data", 1e6, "MB", "mb", "megabyte", "megabytes")
	add("data", 1e9, "GB", "gb", "gigabyte", "gigabytes")
	add("data", 1e12, "TB", "tb", "terabyte", "terabytes")
	add("data", 1<<10, "KiB", "kib")
	add("data", 1<<20, "MiB", "mib")
	add("data", 1<<30, "GiB", "gib")

	add("temperature", 0, "°C", "c", "celsius", "degc")
	add("temperature", 0, "°F", "f", "fahrenheit", "degf")
	add("temperature", 0, "K", "k", "kelvin")
	return table
}()

func lookupUnit(name string) (unit, bool) {
	if u, ok := units[name]; ok {
		return u, true
	}
	u, ok := units[strings.ToLower(strings.TrimPrefix(name, "°"))]
	return u, ok
}

var conversionPattern = regexp.MustCompile(`(?i)^\s*(-?\d+(?:[.,]\d+)?)\s*(°?[a-z]+)\s+(?:to|in|into)\s+(°?[a-z]+)\s*$`)

// UnitConverter converts "<value> <from> to <to>" between length, mass,
// data size and temperature units. The value, from and to keyword
// arguments may be used instead.
type UnitConverter struct{}

func (UnitConverter) Description() string {
	return "Converts a value between units of length, mass, data size or temperature, e.g. '5 km to mi'."
}

func (UnitConverter) Execute(_ context.Context, args Args) Result {
	value, from, to, err := conversionArgs(args)
	if err != nil {
		return Fail(UnitConverterName, err)
	}

	src, ok := lookupUnit(from)
	if !ok {
		return Fail(UnitConverterName, fmt.Errorf("unknown unit %q", from))
	}
	dst, ok := lookupUnit(to)
	if !ok {
		return Fail(UnitConverterName, fmt.Errorf("unknown unit %q", to))
	}
	if src.dimension != dst.dimension {
		return Fail(UnitConverterName, fmt.Errorf("cannot convert %s to %s", src.dimension, dst.dimension))
	}

	var out float64
	if src.dimension == "temperature" {
		out = fromKelvin(toKelvin(value, src.symbol), dst.symbol)
	} else {
		out = value * src.factor / dst.factor
	}
	return OK(fmt.Sprintf("%s %s = %s %s", formatNumber(value), src.symbol, formatNumber(roundTo(out, 6)), dst.symbol))
}

func conversionArgs(args Args) (float64, string, string, error) {
	if v, ok, err := args.Float("value"); ok {
		from, _ := args.String("from")
		to, _ := args.String("to")
		if err != nil {
			return 0, "", "", err
		}
		if from == "" || to == "" {
			return 0, "", "", fmt.Errorf("from and to units are required")
		}
		return v, from, to, nil
	}

	q, err := queryRequired(args)
	if err != nil {
		return 0, "", "", err
	}
	m := conversionPattern.FindStringSubmatch(q)
	if m == nil {
		return 0, "", "", fmt.Errorf("expected '<value> <unit> to <unit>', got %q", q)
	}
	var v float64
	if _, err := fmt.Sscan(strings.ReplaceAll(m[1], ",", "."), &v); err != nil {
		return 0, "", "", fmt.Errorf("invalid value %q", m[1])
	}
	return v, m[2], m[3], nil
}

func toKelvin(v float64, symbol string) float64 {
	switch symbol {
	case "°C":
		return v + 273.15
	case "°F":
		return (v-32)*5/9 + 273.15
	}
	return v
}

func fromKelvin(v float64, symbol string) float64 {
	switch symbol {
	case "°C":
		return v - 273.15
	case "°F":
		return (v-273.15)*9/5 + 32
	}
	return v
}

func roundTo(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}

var timezonePattern = regexp.MustCompile(`(?i)^\s*(\d{1,2}:\d{2})\s*(am|pm)?\s+(\S+)\s+(?:to|in)\s+(\S+)\s*$`)

// zoneAliases maps common abbreviations to IANA names.
var zoneAliases = map[string]string{
	"utc": "UTC",
	"gmt": "UTC",
	"est": "America/New_York",
	"edt": "America/New_York",
	"cst": "America/Chicago",
	"pst": "America/Los_Angeles",
	"pdt": "America/Los_Angeles",
	"cet": "Europe/Paris",
	"bst": "Europe/London",
	"ist": "Asia/Kolkata",
	"jst": "Asia/Tokyo",
}

// TimezoneConverter converts a wall-clock time between IANA zones on the
// current date of the source zone.
type TimezoneConverter struct {
	Now func() time.Time
}

func (TimezoneConverter) Description() string {
	return "Converts a time between time zones, e.g. '09:30 America/New_York to Europe/London'."
}

func (c TimezoneConverter) Execute(_ context.Context, args Args) Result {
	clock, fromName, toName, err := timezoneArgs(args)
	if err != nil {
		return Fail(TimezoneName, err)
	}

	from, err := loadZone(fromName)
	if err != nil {
		return Fail(TimezoneName, err)
	}
	to, err := loadZone(toName)
	if err != nil {
		return Fail(TimezoneName, err)
	}

	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	day := now().In(from)
	src := time.Date(day.Year(), day.Month(), day.Day(), clock.Hour(), clock.Minute(), 0, 0, from)
	dst := src.In(to)

	out := fmt.Sprintf("%s %s = %s %s", src.Format("15:04"), from.String(), dst.Format("15:04"), to.String())
	srcDay := time.Date(src.Year(), src.Month(), src.Day(), 0, 0, 0, 0, time.UTC)
	dstDay := time.Date(dst.Year(), dst.Month(), dst.Day(), 0, 0, 0, 0, time.UTC)
	switch diff := int(dstDay.Sub(srcDay).Hours() / 24); {
	case diff == 1:
		out += " (next day)"
	case diff == -1:
		out += " (previous day)"
	}
	return OK(out)
}

func timezoneArgs(args Args) (time.Time, string, string, error) {
	var clockText, meridiem, from, to string
	if t, ok := args.String("time"); ok {
		clockText = t
		from, _ = args.String("from")
		to, _ = args.String("to")
	} else {
		q, err := queryRequired(args)
		if err != nil {
			return time.Time{}, "", "", err
		}
		m := timezonePattern.FindStringSubmatch(q)
		if m == nil {
			return time.Time{}, "", "", fmt.Errorf("expected '<HH:MM> <zone> to <zone>', got %q", q)
		}
		clockText, meridiem, from, to = m[1], m[2], m[3], m[4]
	}
	if from == "" || to == "" {
		return time.Time{}, "", "", fmt.Errorf("from and to zones are required")
	}

	layout, value := "15:04", clockText
	if meridiem != "" {
		layout, value = "3:04pm", clockText+strings.ToLower(meridiem)
	}
	clock, err := time.Parse(layout, value)
	if err != nil {
		return time.Time{}, "", "", fmt.Errorf("invalid time %q", clockText)
	}
	return clock, from, to, nil
}

func loadZone(name string) (*time.Location, error) {
	if alias, ok := zoneAliases[strings.ToLower(name)]; ok {
		name = alias
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("unknown time zone %q", name)
	}
	return loc, nil
}

const (
	passwordLetters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	passwordSymbols = "!@#$%^&*()-_=+[]{};:,.?"

	defaultPasswordLength = 16
	minPasswordLength     = 8
	maxPasswordLength     = 128
)

// PasswordGenerator draws a random password from crypto/rand. Keyword
// arguments: length (default 16) and symbols (default true).
type PasswordGenerator struct{}

func (PasswordGenerator) Description() string {
	return "Generates a random password. Options: length=<8-128>, symbols=true|false."
}

func (PasswordGenerator) Execute(_ context.Context, args Args) Result {
	length, err := args.Int("length", defaultPasswordLength)
	if err != nil {
		return Fail(PasswordName, err)
	}
	if _, given := args.Keyword["length"]; !given {
		if n, err := strconv.Atoi(args.Query()); err == nil {
			length = n
		}
	}
	if length < minPasswordLength || length > maxPasswordLength {
		return Fail(PasswordName, fmt.Errorf("length must be between %d and %d", minPasswordLength, maxPasswordLength))
	}
	symbols, err := args.Bool("symbols", true)
	if err != nil {
		return Fail(PasswordName, err)
	}

	alphabet := passwordLetters
	if symbols {
		alphabet += passwordSymbols
	}

	out := make([]byte, length)
	limit := big.NewInt(int64(len(alphabet)))
	for i := range out {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return Fail(PasswordName, fmt.Errorf("random source failed: %w", err))
		}
		out[i] = alphabet[n.Int64()]
	}
	return OK(string(out))
}
