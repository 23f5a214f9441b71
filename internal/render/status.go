package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Status is the inspector's view of a bridge session.
type Status struct {
	Version   string
	Running   bool
	StopCause string

	APIChannel uint64
	APILevel   uint64
	Channel    uint64
	Width      uint64
	Height     uint64
	MultiGrid  bool

	Title       string
	Mode        string
	EventCounts map[string]uint64
	Settings    map[string]any
	Channels    any
}

// StatusMarkdown lays the status out as markdown.
func StatusMarkdown(s Status) []byte {
	var b bytes.Buffer

	fmt.Fprintf(&b, "# xvim %s\n\n", s.Version)
	if s.Running {
		fmt.Fprintf(&b, "> [!NOTE]\n> Engine attached on channel %d (api level %d).\n\n", s.Channel, s.APILevel)
	} else {
		cause := s.StopCause
		if cause == "" {
			cause = "not started"
		}
		fmt.Fprintf(&b, "> [!WARNING]\n> Engine stopped: %s\n\n", cause)
	}

	b.WriteString("## Session\n\n| Field | Value |\n|---|---|\n")
	row(&b, "Grid", fmt.Sprintf("%dx%d", s.Width, s.Height))
	row(&b, "Multigrid", fmt.Sprint(s.MultiGrid))
	row(&b, "API channel", fmt.Sprint(s.APIChannel))
	row(&b, "Title", s.Title)
	row(&b, "Mode", s.Mode)
	b.WriteString("\n")

	if len(s.EventCounts) > 0 {
		b.WriteString("## Redraw events\n\n| Event | Count |\n|---|---|\n")
		names := make([]string, 0, len(s.EventCounts))
		for name := range s.EventCounts {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			row(&b, "`"+name+"`", fmt.Sprint(s.EventCounts[name]))
		}
		b.WriteString("\n")
	}

	jsonSection(&b, "Settings", s.Settings)
	if s.Channels != nil {
		jsonSection(&b, "Channels", s.Channels)
	}
	return b.Bytes()
}

func (r *Renderer) RenderStatus(s Status) (string, error) {
	return r.ConvertFragment(StatusMarkdown(s))
}

var cellEscaper = strings.NewReplacer("|", `\|`, "\n", " ")

func row(b *bytes.Buffer, field, value string) {
	if value == "" {
		value = "-"
	}
	fmt.Fprintf(b, "| %s | %s |\n", field, cellEscaper.Replace(value))
}

func jsonSection(b *bytes.Buffer, title string, v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		data = []byte(fmt.Sprintf("%q", err.Error()))
	}
	fmt.Fprintf(b, "## %s\n\n```json\n%s\n```\n\n", title, data)
}
