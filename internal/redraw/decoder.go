package redraw

import (
	"fmt"

	"github.com/go-logr/logr"
)

type parseFunc func(args []any) (Event, error)

// Decoder turns redraw batches into events. It is safe for concurrent use;
// the parser table is built once and never mutated.
type Decoder struct {
	log     logr.Logger
	parsers map[string]parseFunc
}

// NewDecoder builds the event-name dispatch table.
func NewDecoder(log logr.Logger) *Decoder {
	d := &Decoder{log: log}
	d.parsers = map[string]parseFunc{
		"set_title":            parseSetTitle,
		"mode_info_set":        d.parseModeInfoSet,
		"option_set":           parseOptionSet,
		"mode_change":          parseModeChange,
		"mouse_on":             emptyEvent(MouseOn{}),
		"mouse_off":            emptyEvent(MouseOff{}),
		"busy_start":           emptyEvent(BusyStart{}),
		"busy_stop":            emptyEvent(BusyStop{}),
		"flush":                emptyEvent(Flush{}),
		"grid_resize":          parseGridResize,
		"default_colors_set":   parseDefaultColorsSet,
		"hl_attr_define":       d.parseHighlightAttributesDefine,
		"grid_line":            parseGridLine,
		"grid_clear":           parseGridClear,
		"grid_destroy":         parseGridDestroy,
		"grid_cursor_goto":     parseCursorGoto,
		"grid_scroll":          parseGridScroll,
		"win_pos":              parseWindowPosition,
		"win_float_pos":        parseWindowFloatPosition,
		"win_external_pos":     parseWindowExternalPosition,
		"win_hide":             parseWindowHide,
		"win_close":            parseWindowClose,
		"msg_set_pos":          parseMessageSetPosition,
		"win_viewport":         parseWindowViewport,
		"cmdline_show":         parseCommandLineShow,
		"cmdline_pos":          parseCommandLinePosition,
		"cmdline_special_char": parseCommandLineSpecialCharacter,
		"cmdline_hide":         parseCommandLineHide,
		"cmdline_block_show":   parseCommandLineBlockShow,
		"cmdline_block_append": parseCommandLineBlockAppend,
		"cmdline_block_hide":   emptyEvent(CommandLineBlockHide{}),
		"msg_show":             parseMessageShow,
		"msg_clear":            emptyEvent(MessageClear{}),
		"msg_showmode":         contentEvent(func(c StyledContent) Event { return MessageShowMode{Content: c} }),
		"msg_showcmd":          contentEvent(func(c StyledContent) Event { return MessageShowCommand{Content: c} }),
		"msg_ruler":            contentEvent(func(c StyledContent) Event { return MessageRuler{Content: c} }),
		"msg_history_show":     parseMessageHistoryShow,
	}
	return d
}

// DecodeRedraw decodes one batch: an array whose first element is the event
// name and whose remaining elements are the argument arrays of each
// occurrence. Events come back in wire order. Names without a parser yield no
// events and no error.
func (d *Decoder) DecodeRedraw(batch any) ([]Event, error) {
	contents, err := toArray(batch)
	if err != nil {
		return nil, err
	}
	if len(contents) == 0 {
		return nil, formatError("(empty redraw batch)", batch)
	}
	name, err := toString(contents[0])
	if err != nil {
		return nil, err
	}

	parse, ok := d.parsers[name]
	if !ok {
		d.log.V(2).Info("un-parsed event", "name", name)
		return nil, nil
	}

	events := make([]Event, 0, len(contents)-1)
	for _, occurrence := range contents[1:] {
		args, err := toArray(occurrence)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		event, err := parse(args)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		events = append(events, event)
	}
	return events, nil
}

func emptyEvent(event Event) parseFunc {
	return func(args []any) (Event, error) {
		if _, err := extract(args, 0); err != nil {
			return nil, err
		}
		return event, nil
	}
}

func contentEvent(build func(StyledContent) Event) parseFunc {
	return func(args []any) (Event, error) {
		values, err := extract(args, 1)
		if err != nil {
			return nil, err
		}
		content, err := parseStyledContent(values[0])
		if err != nil {
			return nil, err
		}
		return build(content), nil
	}
}
