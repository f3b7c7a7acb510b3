// Package location captures the device position reported by the client and
// enriches it with a human-readable address when a geocoder is available.
package location

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"todoList/internal/logger"
	"todoList/internal/models/task"

	"go.uber.org/zap"
)

const Header = "X-Device-Location"

// Locator returns nil when permission was denied or capture failed.
type Locator interface {
	CurrentLocation(ctx context.Context) *task.Location
}

type Geocoder interface {
	Reverse(ctx context.Context, lat, lon float64) (string, error)
}

// ParseHeader reads "<lat>,<lon>". An empty value means the client withheld it.
func ParseHeader(value string) (lat, lon float64, ok bool, err error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, 0, false, nil
	}

	parts := strings.Split(value, ",")
	if len(parts) != 2 {
		return 0, 0, false, fmt.Errorf("expected <lat>,<lon>, got %q", value)
	}
	lat, err = strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, false, fmt.Errorf("latitude: %w", err)
	}
	lon, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, false, fmt.Errorf("longitude: %w", err)
	}
	if !task.ValidCoordinates(lat, lon) {
		return 0, 0, false, fmt.Errorf("coordinates out of range: %v,%v", lat, lon)
	}
	return lat, lon, true, nil
}

// Device is a one-shot Locator for the position a client sent with a request.
type Device struct {
	header   string
	geocoder Geocoder
}

func NewDevice(header string, geocoder Geocoder) *Device {
	return &Device{header: header, geocoder: geocoder}
}

func (d *Device) CurrentLocation(ctx context.Context) *task.Location {
	lat, lon, ok, err := ParseHeader(d.header)
	if err != nil {
		logger.Warn("Location: could not read device position", zap.Error(err))
		return nil
	}
	if !ok {
		logger.Debug("Location: position not shared by client")
		return nil
	}

	loc := &task.Location{Latitude: lat, Longitude: lon}
	if d.geocoder == nil {
		return loc
	}

	address, err := d.geocoder.Reverse(ctx, lat, lon)
	if err != nil {
		logger.Warn("Location: reverse geocoding failed",
			zap.Float64("latitude", lat),
			zap.Float64("longitude", lon),
			zap.Error(err))
		return loc
	}
	loc.Address = address
	return loc
}

// JoinAddress keeps the non-empty parts in order.
func JoinAddress(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ", ")
}
