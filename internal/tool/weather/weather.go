// Package weather provides the weather lookup tool.
package weather

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/Cyclone1070/termchat/internal/tool"
)

// Name is the tool name exposed to the model.
const Name = "weather"

const maxLocationLength = 100

var (
	ErrEmptyLocation   = errors.New("location is empty")
	ErrLocationTooLong = errors.New("location is too long")
	ErrInvalidLocation = errors.New("location contains control characters")
	ErrNotFound        = errors.New("no weather data for location")
)

// Report is a normalized weather observation.
type Report struct {
	Location    string
	Temperature string
	Condition   string
	Humidity    string
	Wind        string
}

// String renders the report in the form sent back to the model.
func (r Report) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Weather for %s:\n", r.Location)
	fmt.Fprintf(&sb, "  temperature: %s\n", r.Temperature)
	fmt.Fprintf(&sb, "  condition: %s\n", r.Condition)
	fmt.Fprintf(&sb, "  humidity: %s\n", r.Humidity)
	fmt.Fprintf(&sb, "  wind: %s\n", r.Wind)
	return sb.String()
}

// Source looks up current conditions for a location.
type Source interface {
	Lookup(ctx context.Context, location string) (Report, error)
}

// Request is the weather tool's input.
type Request struct {
	Location string `mapstructure:"location"`
}

// Validate implements tool.Validatable.
func (r Request) Validate() error {
	loc := strings.TrimSpace(r.Location)
	if loc == "" {
		return ErrEmptyLocation
	}
	if utf8.RuneCountInString(loc) > maxLocationLength {
		return ErrLocationTooLong
	}
	for _, c := range loc {
		if unicode.IsControl(c) {
			return ErrInvalidLocation
		}
	}
	return nil
}

// Declaration describes the weather tool to the model.
func Declaration() tool.Declaration {
	return tool.Declaration{
		Name:        Name,
		Description: "Get weather information for a location",
		Parameters: tool.ObjectSchema(map[string]*tool.Schema{
			"location": tool.StringProperty("City or location name"),
		}, "location"),
	}
}

// New creates the weather tool backed by src.
func New(src Source) tool.Tool {
	return tool.NewTypedTool(Declaration(), func(ctx context.Context, req Request) (string, error) {
		report, err := src.Lookup(ctx, strings.TrimSpace(req.Location))
		if err != nil {
			return "", err
		}
		return report.String(), nil
	})
}

// StaticSource returns the same fixed observation for every location.
type StaticSource struct{}

// Lookup implements Source.
func (StaticSource) Lookup(_ context.Context, location string) (Report, error) {
	return Report{
		Location:    location,
		Temperature: "22°C",
		Condition:   "Partly cloudy",
		Humidity:    "65%",
		Wind:        "10 km/h NE",
	}, nil
}
