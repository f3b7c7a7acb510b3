package task

import (
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	MaxTitleLength    = 100
	MaxCommentsLength = 500
	MaxIDLength       = 64
)

type Location struct {
	Latitude  float64 `json:"latitude" yaml:"latitude"`
	Longitude float64 `json:"longitude" yaml:"longitude"`
	Address   string  `json:"address,omitempty" yaml:"address,omitempty"`
}

// Task is a to-do item exactly as it is persisted
type Task struct {
	ID        string    `json:"id" yaml:"id"`
	Title     string    `json:"title" yaml:"title"`
	Comments  string    `json:"comments,omitempty" yaml:"comments,omitempty"`
	PhotoURI  *string   `json:"photoUri" yaml:"photo_uri"`
	Location  *Location `json:"location" yaml:"location"`
	Completed bool      `json:"completed" yaml:"completed"`
	UserEmail string    `json:"userEmail" yaml:"user_email"`
	CreatedAt int64     `json:"createdAt" yaml:"created_at"`
}

// NewID returns a time-ordered id with a random tail.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// ValidID reports whether id is usable as a task id. Ids name photo files,
// so only letters, digits, '-' and '_' are accepted.
func ValidID(id string) bool {
	if id == "" || len(id) > MaxIDLength {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}

// ValidCoordinates reports whether lat and lon are finite and in range.
func ValidCoordinates(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lon) || math.IsInf(lat, 0) || math.IsInf(lon, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

func NowMillis(now time.Time) int64 {
	return now.UnixMilli()
}

func (t *Task) HasPhoto() bool {
	return t.PhotoURI != nil && *t.PhotoURI != ""
}

func (t *Task) Clone() *Task {
	c := *t
	if t.PhotoURI != nil {
		p := *t.PhotoURI
		c.PhotoURI = &p
	}
	if t.Location != nil {
		l := *t.Location
		c.Location = &l
	}
	return &c
}

// NormalizeTitle trims the title and reports whether it is acceptable.
func NormalizeTitle(title string) (string, bool) {
	title = strings.TrimSpace(title)
	if title == "" || utf8.RuneCountInString(title) > MaxTitleLength {
		return title, false
	}
	return title, true
}

func NormalizeComments(comments string) (string, bool) {
	comments = strings.TrimSpace(comments)
	return comments, utf8.RuneCountInString(comments) <= MaxCommentsLength
}

type Filter string

const (
	FilterAll       Filter = "all"
	FilterPending   Filter = "pending"
	FilterCompleted Filter = "completed"
)

func ParseFilter(s string) (Filter, bool) {
	switch Filter(strings.ToLower(strings.TrimSpace(s))) {
	case "", FilterAll:
		return FilterAll, true
	case FilterPending:
		return FilterPending, true
	case FilterCompleted:
		return FilterCompleted, true
	}
	return "", false
}

func (f Filter) Match(t *Task) bool {
	switch f {
	case FilterPending:
		return !t.Completed
	case FilterCompleted:
		return t.Completed
	default:
		return true
	}
}

type Stats struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Pending   int `json:"pending"`
}

func CountStats(tasks []*Task) Stats {
	s := Stats{Total: len(tasks)}
	for _, t := range tasks {
		if t.Completed {
			s.Completed++
		}
	}
	s.Pending = s.Total - s.Completed
	return s
}
