package sim

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Garsondee/floorwalk/internal/movement"
)

// SimLogEntry is one recorded event during a headless run.
type SimLogEntry struct {
	Tick     int
	Agent    string  // label, or "--" for world events
	Floor    int     // floor the agent was on when the entry was written
	Category string  // move, node, elevator, state, chase, patrol, order
	Key      string  // specific event name within the category
	Value    string  // human-readable detail
	NumVal   float64 // optional numeric value for threshold checks
}

// String formats the entry as a fixed-width log line.
//
//	[T=042] courier  F2 elevator exit            Lift2 after 1s
func (e SimLogEntry) String() string {
	return fmt.Sprintf("[T=%03d] %-8s F%d %-8s %-16s %s",
		e.Tick, e.Agent, e.Floor, e.Category, e.Key, e.Value)
}

// SimLog collects structured events during a run. It is unbounded and meant
// for tests and the headless report.
type SimLog struct {
	entries []SimLogEntry
	verbose bool
}

// NewSimLog creates a SimLog. If verbose is true, per-tick position entries
// are also recorded.
func NewSimLog(verbose bool) *SimLog {
	return &SimLog{verbose: verbose}
}

// Add records a new entry.
func (sl *SimLog) Add(tick int, agent string, floor int, category, key, value string, numVal float64) {
	sl.entries = append(sl.entries, SimLogEntry{
		Tick:     tick,
		Agent:    agent,
		Floor:    floor,
		Category: category,
		Key:      key,
		Value:    value,
		NumVal:   numVal,
	})
}

// AddVerbose records an entry only when verbose mode is on.
func (sl *SimLog) AddVerbose(tick int, agent string, floor int, category, key, value string, numVal float64) {
	if !sl.verbose {
		return
	}
	sl.Add(tick, agent, floor, category, key, value, numVal)
}

func (sl *SimLog) Verbose() bool { return sl.verbose }

// Entries returns all recorded entries.
func (sl *SimLog) Entries() []SimLogEntry {
	return sl.entries
}

// Filter returns entries matching the given category and/or key.
// Pass empty string to match any value for that field.
func (sl *SimLog) Filter(category, key string) []SimLogEntry {
	var out []SimLogEntry
	for _, e := range sl.entries {
		if category != "" && e.Category != category {
			continue
		}
		if key != "" && e.Key != key {
			continue
		}
		out = append(out, e)
	}
	return out
}

// FilterAgent returns entries for one agent label.
func (sl *SimLog) FilterAgent(label string) []SimLogEntry {
	var out []SimLogEntry
	for _, e := range sl.entries {
		if e.Agent == label {
			out = append(out, e)
		}
	}
	return out
}

// FilterTickRange returns entries within [fromTick, toTick] inclusive.
func (sl *SimLog) FilterTickRange(fromTick, toTick int) []SimLogEntry {
	var out []SimLogEntry
	for _, e := range sl.entries {
		if e.Tick >= fromTick && e.Tick <= toTick {
			out = append(out, e)
		}
	}
	return out
}

// CountCategory returns how many entries match the given category and key.
func (sl *SimLog) CountCategory(category, key string) int {
	return len(sl.Filter(category, key))
}

// LastOf returns the most recent entry matching category+key, or false if none.
func (sl *SimLog) LastOf(category, key string) (SimLogEntry, bool) {
	entries := sl.Filter(category, key)
	if len(entries) == 0 {
		return SimLogEntry{}, false
	}
	return entries[len(entries)-1], true
}

// HasEntry returns true if at least one entry matches category, key, and value substring.
func (sl *SimLog) HasEntry(category, key, valueSubstr string) bool {
	for _, e := range sl.entries {
		if category != "" && e.Category != category {
			continue
		}
		if key != "" && e.Key != key {
			continue
		}
		if valueSubstr != "" && !strings.Contains(e.Value, valueSubstr) {
			continue
		}
		return true
	}
	return false
}

// Format returns the full log as a single string for t.Log output.
func (sl *SimLog) Format() string {
	return formatEntries(sl.entries)
}

// FormatRange returns a log string filtered to a tick range.
func (sl *SimLog) FormatRange(fromTick, toTick int) string {
	return formatEntries(sl.FilterTickRange(fromTick, toTick))
}

func formatEntries(entries []SimLogEntry) string {
	var sb strings.Builder
	for _, e := range entries {
		sb.WriteString(e.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Summary returns a short human-readable summary of the world at tick.
func (sl *SimLog) Summary(tick int, members []*Member) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "--- Summary at T=%03d ---\n", tick)

	states := map[movement.State]int{}
	floors := map[int]int{}
	for _, m := range members {
		states[m.Agent.State()]++
		floors[m.Agent.Floor()]++
	}
	fmt.Fprintf(&sb, "States: idle=%d  moving=%d  in_elevator=%d\n",
		states[movement.Idle], states[movement.Moving], states[movement.InElevator])

	keys := make([]int, 0, len(floors))
	for f := range floors {
		keys = append(keys, f)
	}
	sort.Ints(keys)
	sb.WriteString("Floors: ")
	for _, f := range keys {
		fmt.Fprintf(&sb, "F%d=%d  ", f, floors[f])
	}
	sb.WriteByte('\n')

	for _, m := range members {
		target := "-"
		if t := m.Agent.TargetNode(); t != nil {
			target = t.Name()
		}
		fmt.Fprintf(&sb, "%s: %s at %s → %s\n", m.Label, m.Agent.State(), m.Agent.CurrentNode().Name(), target)
	}
	fmt.Fprintf(&sb, "Rides: %d  Arrivals: %d  Rejections: %d\n",
		sl.CountCategory("elevator", "exit"),
		sl.CountCategory("move", "complete"),
		sl.CountCategory("move", "rejected"))
	return sb.String()
}
