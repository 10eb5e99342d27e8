package chart

import (
	"fmt"
	"strings"
)

// Route names the endpoints of one day.
type Route struct {
	Start string
	End   string
}

// Routes maps a 1-based day index to its route.
type Routes map[int]Route

// Title returns "<prefix> <day>: <start> - <end>", dropping whatever route
// parts are missing. A non-positive day yields an empty title.
func (r Routes) Title(day int, prefix string) string {
	if day <= 0 {
		return ""
	}

	head := strings.TrimSpace(fmt.Sprintf("%s %d", prefix, day))

	route, ok := r[day]
	if !ok {
		return head
	}

	var names []string
	if s := strings.TrimSpace(route.Start); s != "" {
		names = append(names, s)
	}
	if e := strings.TrimSpace(route.End); e != "" {
		names = append(names, e)
	}
	if len(names) == 0 {
		return head
	}
	return head + ": " + strings.Join(names, " - ")
}

// EndName is the label placed at the end of a day's line: the route end when
// known, otherwise empty.
func (r Routes) EndName(day int) string {
	return strings.TrimSpace(r[day].End)
}
