package redraw

func parseU64s(values ...any) ([]uint64, error) {
	out := make([]uint64, len(values))
	for i, v := range values {
		n, err := toU64(v)
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}

func parseSetTitle(args []any) (Event, error) {
	values, err := extract(args, 1)
	if err != nil {
		return nil, err
	}
	title, err := toString(values[0])
	if err != nil {
		return nil, err
	}
	return SetTitle{Title: title}, nil
}

func (d *Decoder) parseModeInfoSet(args []any) (Event, error) {
	values, err := extract(args, 2)
	if err != nil {
		return nil, err
	}
	if _, err := toBool(values[0]); err != nil {
		return nil, err
	}
	infos, err := toArray(values[1])
	if err != nil {
		return nil, err
	}
	modes := make([]CursorMode, 0, len(infos))
	for _, info := range infos {
		mode, err := d.parseCursorMode(info)
		if err != nil {
			return nil, err
		}
		modes = append(modes, mode)
	}
	return ModeInfoSet{CursorModes: modes}, nil
}

func (d *Decoder) parseCursorMode(info any) (CursorMode, error) {
	entries, err := toMap(info)
	if err != nil {
		return CursorMode{}, err
	}
	var mode CursorMode
	for _, entry := range entries {
		switch entry.Key {
		case "cursor_shape":
			name, err := toString(entry.Value)
			if err != nil {
				return CursorMode{}, err
			}
			if shape, ok := CursorShapeFromName(name); ok {
				mode.Shape = &shape
			} else {
				d.log.V(1).Info("unknown cursor shape", "shape", name)
			}
		case "cell_percentage":
			n, err := toF64(entry.Value)
			if err != nil {
				return CursorMode{}, err
			}
			pct := float32(n / 100)
			mode.CellPercentage = &pct
		case "blinkwait":
			if mode.BlinkWait, err = optionalU64(entry.Value); err != nil {
				return CursorMode{}, err
			}
		case "blinkon":
			if mode.BlinkOn, err = optionalU64(entry.Value); err != nil {
				return CursorMode{}, err
			}
		case "blinkoff":
			if mode.BlinkOff, err = optionalU64(entry.Value); err != nil {
				return CursorMode{}, err
			}
		case "attr_id":
			if mode.StyleID, err = optionalU64(entry.Value); err != nil {
				return CursorMode{}, err
			}
		default:
			d.log.V(2).Info("ignoring mode info key", "key", entry.Key)
		}
	}
	return mode, nil
}

func parseOptionSet(args []any) (Event, error) {
	values, err := extract(args, 2)
	if err != nil {
		return nil, err
	}
	name, err := toString(values[0])
	if err != nil {
		return nil, err
	}
	option, err := parseGuiOption(name, values[1])
	if err != nil {
		return nil, err
	}
	return OptionSet{Option: option}, nil
}

func parseGuiOption(name string, value any) (GuiOption, error) {
	switch name {
	case "ambiwidth", "guifont", "guifontset", "guifontwide":
		s, err := toString(value)
		if err != nil {
			return nil, err
		}
		switch name {
		case "ambiwidth":
			return AmbiWidth(s), nil
		case "guifont":
			return GuiFont(s), nil
		case "guifontset":
			return GuiFontSet(s), nil
		default:
			return GuiFontWide(s), nil
		}
	case "arabicshape", "emoji", "termguicolors":
		b, err := toBool(value)
		if err != nil {
			return nil, err
		}
		switch name {
		case "arabicshape":
			return ArabicShape(b), nil
		case "emoji":
			return Emoji(b), nil
		default:
			return TermGuiColors(b), nil
		}
	case "linespace":
		n, err := toI64(value)
		if err != nil {
			return nil, err
		}
		return LineSpace(n), nil
	case "pumblend", "showtabline":
		n, err := toU64(value)
		if err != nil {
			return nil, err
		}
		if name == "pumblend" {
			return PumBlend(n), nil
		}
		return ShowTabLine(n), nil
	default:
		return UnknownOption{Name: name, Value: value}, nil
	}
}

func parseModeChange(args []any) (Event, error) {
	values, err := extract(args, 2)
	if err != nil {
		return nil, err
	}
	name, err := toString(values[0])
	if err != nil {
		return nil, err
	}
	index, err := toU64(values[1])
	if err != nil {
		return nil, err
	}
	return ModeChange{Mode: parseEditorMode(name), ModeIndex: index}, nil
}

func parseGridResize(args []any) (Event, error) {
	values, err := extract(args, 3)
	if err != nil {
		return nil, err
	}
	n, err := parseU64s(values...)
	if err != nil {
		return nil, err
	}
	return Resize{Grid: n[0], Width: n[1], Height: n[2]}, nil
}

// parseRGB decodes a packed color where negative values mean "unset".
func parseRGB(v any) (*Color, error) {
	n, err := toI64(v)
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, nil
	}
	c := UnpackColor(uint64(n))
	return &c, nil
}

func parseDefaultColorsSet(args []any) (Event, error) {
	values, err := extract(args, 5)
	if err != nil {
		return nil, err
	}
	var colors Colors
	if colors.Foreground, err = parseRGB(values[0]); err != nil {
		return nil, err
	}
	if colors.Background, err = parseRGB(values[1]); err != nil {
		return nil, err
	}
	if colors.Special, err = parseRGB(values[2]); err != nil {
		return nil, err
	}
	return DefaultColorsSet{Colors: colors}, nil
}

func (d *Decoder) parseHighlightAttributesDefine(args []any) (Event, error) {
	values, err := extract(args, 4)
	if err != nil {
		return nil, err
	}
	id, err := toU64(values[0])
	if err != nil {
		return nil, err
	}
	style, err := d.parseStyle(values[1])
	if err != nil {
		return nil, err
	}
	return HighlightAttributesDefine{ID: id, Style: style}, nil
}

func (d *Decoder) parseStyle(v any) (Style, error) {
	entries, err := toMap(v)
	if err != nil {
		return Style{}, err
	}
	var style Style
	for _, entry := range entries {
		var flag *bool
		switch entry.Key {
		case "foreground":
			if style.Colors.Foreground, err = parseRGB(entry.Value); err != nil {
				return Style{}, err
			}
			continue
		case "background":
			if style.Colors.Background, err = parseRGB(entry.Value); err != nil {
				return Style{}, err
			}
			continue
		case "special":
			if style.Colors.Special, err = parseRGB(entry.Value); err != nil {
				return Style{}, err
			}
			continue
		case "blend":
			n, err := toU64(entry.Value)
			if err != nil {
				return Style{}, err
			}
			if n > 100 {
				n = 100
			}
			style.Blend = uint8(n)
			continue
		case "reverse":
			flag = &style.Reverse
		case "italic":
			flag = &style.Italic
		case "bold":
			flag = &style.Bold
		case "strikethrough":
			flag = &style.Strikethrough
		case "underline":
			flag = &style.Underline
		case "undercurl":
			flag = &style.Undercurl
		default:
			d.log.V(2).Info("ignoring highlight attribute", "key", entry.Key)
			continue
		}
		b, err := toBool(entry.Value)
		if err != nil {
			return Style{}, err
		}
		*flag = b
	}
	return style, nil
}

func parseGridLine(args []any) (Event, error) {
	// Newer engines append a wrap flag.
	values, err := extractRange(args, 4, 5)
	if err != nil {
		return nil, err
	}
	n, err := parseU64s(values[0], values[1], values[2])
	if err != nil {
		return nil, err
	}
	rawCells, err := toArray(values[3])
	if err != nil {
		return nil, err
	}
	cells := make([]GridLineCell, 0, len(rawCells))
	for _, raw := range rawCells {
		cell, err := parseGridLineCell(raw)
		if err != nil {
			return nil, err
		}
		cells = append(cells, cell)
	}
	return GridLine{Grid: n[0], Row: n[1], ColumnStart: n[2], Cells: cells}, nil
}

func parseGridLineCell(v any) (GridLineCell, error) {
	arr, err := toArray(v)
	if err != nil {
		return GridLineCell{}, err
	}
	values, err := extractRange(arr, 1, 3)
	if err != nil {
		return GridLineCell{}, err
	}
	var cell GridLineCell
	if cell.Text, err = toString(values[0]); err != nil {
		return GridLineCell{}, err
	}
	if cell.HighlightID, err = optionalU64(values[1]); err != nil {
		return GridLineCell{}, err
	}
	if cell.Repeat, err = optionalU64(values[2]); err != nil {
		return GridLineCell{}, err
	}
	return cell, nil
}

func parseGridClear(args []any) (Event, error) {
	grid, err := parseSingleGrid(args)
	if err != nil {
		return nil, err
	}
	return Clear{Grid: grid}, nil
}

func parseGridDestroy(args []any) (Event, error) {
	grid, err := parseSingleGrid(args)
	if err != nil {
		return nil, err
	}
	return Destroy{Grid: grid}, nil
}

func parseSingleGrid(args []any) (uint64, error) {
	values, err := extract(args, 1)
	if err != nil {
		return 0, err
	}
	return toU64(values[0])
}

func parseCursorGoto(args []any) (Event, error) {
	values, err := extract(args, 3)
	if err != nil {
		return nil, err
	}
	n, err := parseU64s(values...)
	if err != nil {
		return nil, err
	}
	return CursorGoto{Grid: n[0], Row: n[1], Column: n[2]}, nil
}

func parseGridScroll(args []any) (Event, error) {
	values, err := extract(args, 7)
	if err != nil {
		return nil, err
	}
	n, err := parseU64s(values[:5]...)
	if err != nil {
		return nil, err
	}
	rows, err := toI64(values[5])
	if err != nil {
		return nil, err
	}
	columns, err := toI64(values[6])
	if err != nil {
		return nil, err
	}
	return Scroll{
		Grid:    n[0],
		Top:     n[1],
		Bottom:  n[2],
		Left:    n[3],
		Right:   n[4],
		Rows:    rows,
		Columns: columns,
	}, nil
}

// Position 1 of the win_* events is the engine's window handle, which the
// grid id already identifies; it is not decoded.

func parseWindowPosition(args []any) (Event, error) {
	values, err := extract(args, 6)
	if err != nil {
		return nil, err
	}
	n, err := parseU64s(values[0], values[2], values[3], values[4], values[5])
	if err != nil {
		return nil, err
	}
	return WindowPosition{
		Grid:        n[0],
		StartRow:    n[1],
		StartColumn: n[2],
		Width:       n[3],
		Height:      n[4],
	}, nil
}

var windowAnchors = map[string]WindowAnchor{
	"NW": AnchorNorthWest,
	"NE": AnchorNorthEast,
	"SW": AnchorSouthWest,
	"SE": AnchorSouthEast,
}

func parseWindowAnchor(v any) (WindowAnchor, error) {
	name, err := toString(v)
	if err != nil {
		return 0, err
	}
	anchor, ok := windowAnchors[name]
	if !ok {
		return 0, newParseError(KindWindowAnchor, v)
	}
	return anchor, nil
}

func parseWindowFloatPosition(args []any) (Event, error) {
	values, err := extractRange(args, 7, 8)
	if err != nil {
		return nil, err
	}
	grid, err := toU64(values[0])
	if err != nil {
		return nil, err
	}
	anchor, err := parseWindowAnchor(values[2])
	if err != nil {
		return nil, err
	}
	anchorGrid, err := toU64(values[3])
	if err != nil {
		return nil, err
	}
	row, err := toF64(values[4])
	if err != nil {
		return nil, err
	}
	column, err := toF64(values[5])
	if err != nil {
		return nil, err
	}
	focusable, err := toBool(values[6])
	if err != nil {
		return nil, err
	}
	zindex, err := optionalU64(values[7])
	if err != nil {
		return nil, err
	}
	return WindowFloatPosition{
		Grid:         grid,
		Anchor:       anchor,
		AnchorGrid:   anchorGrid,
		AnchorRow:    row,
		AnchorColumn: column,
		Focusable:    focusable,
		ZIndex:       zindex,
	}, nil
}

func parseWindowExternalPosition(args []any) (Event, error) {
	values, err := extract(args, 2)
	if err != nil {
		return nil, err
	}
	grid, err := toU64(values[0])
	if err != nil {
		return nil, err
	}
	return WindowExternalPosition{Grid: grid}, nil
}

func parseWindowHide(args []any) (Event, error) {
	grid, err := parseSingleGrid(args)
	if err != nil {
		return nil, err
	}
	return WindowHide{Grid: grid}, nil
}

func parseWindowClose(args []any) (Event, error) {
	grid, err := parseSingleGrid(args)
	if err != nil {
		return nil, err
	}
	return WindowClose{Grid: grid}, nil
}

func parseMessageSetPosition(args []any) (Event, error) {
	values, err := extract(args, 4)
	if err != nil {
		return nil, err
	}
	n, err := parseU64s(values[0], values[1])
	if err != nil {
		return nil, err
	}
	scrolled, err := toBool(values[2])
	if err != nil {
		return nil, err
	}
	separator, err := toString(values[3])
	if err != nil {
		return nil, err
	}
	return MessageSetPosition{
		Grid:               n[0],
		Row:                n[1],
		Scrolled:           scrolled,
		SeparatorCharacter: separator,
	}, nil
}

func optionalF64(v any) (*float64, error) {
	if v == nil {
		return nil, nil
	}
	n, err := toF64(v)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func parseWindowViewport(args []any) (Event, error) {
	// line_count and scroll_delta were added by later engine versions.
	values, err := extractRange(args, 6, 8)
	if err != nil {
		return nil, err
	}
	grid, err := toU64(values[0])
	if err != nil {
		return nil, err
	}
	var f [4]float64
	for i := range f {
		if f[i], err = toF64(values[2+i]); err != nil {
			return nil, err
		}
	}
	lineCount, err := optionalF64(values[6])
	if err != nil {
		return nil, err
	}
	scrollDelta, err := optionalF64(values[7])
	if err != nil {
		return nil, err
	}
	return WindowViewport{
		Grid:          grid,
		TopLine:       f[0],
		BottomLine:    f[1],
		CurrentLine:   f[2],
		CurrentColumn: f[3],
		LineCount:     lineCount,
		ScrollDelta:   scrollDelta,
	}, nil
}

func parseStyledText(v any) (StyledText, error) {
	arr, err := toArray(v)
	if err != nil {
		return StyledText{}, err
	}
	// A trailing highlight group id was added by later engine versions.
	values, err := extractRange(arr, 2, 3)
	if err != nil {
		return StyledText{}, err
	}
	id, err := toU64(values[0])
	if err != nil {
		return StyledText{}, err
	}
	text, err := toString(values[1])
	if err != nil {
		return StyledText{}, err
	}
	return StyledText{HighlightID: id, Text: text}, nil
}

func parseStyledContent(v any) (StyledContent, error) {
	chunks, err := toArray(v)
	if err != nil {
		return nil, err
	}
	content := make(StyledContent, 0, len(chunks))
	for _, chunk := range chunks {
		text, err := parseStyledText(chunk)
		if err != nil {
			return nil, err
		}
		content = append(content, text)
	}
	return content, nil
}

func parseCommandLineShow(args []any) (Event, error) {
	values, err := extractRange(args, 6, 7)
	if err != nil {
		return nil, err
	}
	content, err := parseStyledContent(values[0])
	if err != nil {
		return nil, err
	}
	position, err := toU64(values[1])
	if err != nil {
		return nil, err
	}
	firstChar, err := toString(values[2])
	if err != nil {
		return nil, err
	}
	prompt, err := toString(values[3])
	if err != nil {
		return nil, err
	}
	n, err := parseU64s(values[4], values[5])
	if err != nil {
		return nil, err
	}
	return CommandLineShow{
		Content:        content,
		Position:       position,
		FirstCharacter: firstChar,
		Prompt:         prompt,
		Indent:         n[0],
		Level:          n[1],
	}, nil
}

func parseCommandLinePosition(args []any) (Event, error) {
	values, err := extract(args, 2)
	if err != nil {
		return nil, err
	}
	n, err := parseU64s(values...)
	if err != nil {
		return nil, err
	}
	return CommandLinePosition{Position: n[0], Level: n[1]}, nil
}

func parseCommandLineSpecialCharacter(args []any) (Event, error) {
	values, err := extract(args, 3)
	if err != nil {
		return nil, err
	}
	character, err := toString(values[0])
	if err != nil {
		return nil, err
	}
	shift, err := toBool(values[1])
	if err != nil {
		return nil, err
	}
	level, err := toU64(values[2])
	if err != nil {
		return nil, err
	}
	return CommandLineSpecialCharacter{Character: character, Shift: shift, Level: level}, nil
}

func parseCommandLineHide(args []any) (Event, error) {
	// Newer engines send the level being hidden.
	if _, err := extractRange(args, 0, 1); err != nil {
		return nil, err
	}
	return CommandLineHide{}, nil
}

func parseCommandLineBlockShow(args []any) (Event, error) {
	values, err := extract(args, 1)
	if err != nil {
		return nil, err
	}
	rawLines, err := toArray(values[0])
	if err != nil {
		return nil, err
	}
	lines := make([]StyledContent, 0, len(rawLines))
	for _, raw := range rawLines {
		line, err := parseStyledContent(raw)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return CommandLineBlockShow{Lines: lines}, nil
}

func parseCommandLineBlockAppend(args []any) (Event, error) {
	values, err := extract(args, 1)
	if err != nil {
		return nil, err
	}
	line, err := parseStyledContent(values[0])
	if err != nil {
		return nil, err
	}
	return CommandLineBlockAppend{Line: line}, nil
}

func parseMessageShow(args []any) (Event, error) {
	// history and append flags trail on newer engines.
	values, err := extractRange(args, 3, 5)
	if err != nil {
		return nil, err
	}
	kind, err := toString(values[0])
	if err != nil {
		return nil, err
	}
	content, err := parseStyledContent(values[1])
	if err != nil {
		return nil, err
	}
	replaceLast, err := toBool(values[2])
	if err != nil {
		return nil, err
	}
	return MessageShow{
		Kind:        parseMessageKind(kind),
		Content:     content,
		ReplaceLast: replaceLast,
	}, nil
}

func parseMessageHistoryShow(args []any) (Event, error) {
	values, err := extractRange(args, 1, 2)
	if err != nil {
		return nil, err
	}
	rawEntries, err := toArray(values[0])
	if err != nil {
		return nil, err
	}
	entries := make([]MessageHistoryEntry, 0, len(rawEntries))
	for _, raw := range rawEntries {
		arr, err := toArray(raw)
		if err != nil {
			return nil, err
		}
		entry, err := extractRange(arr, 2, 3)
		if err != nil {
			return nil, err
		}
		kind, err := toString(entry[0])
		if err != nil {
			return nil, err
		}
		content, err := parseStyledContent(entry[1])
		if err != nil {
			return nil, err
		}
		entries = append(entries, MessageHistoryEntry{Kind: parseMessageKind(kind), Content: content})
	}
	return MessageHistoryShow{Entries: entries}, nil
}
