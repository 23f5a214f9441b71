// Package redraw decodes the engine's "redraw" notifications into typed
// events and describes the RPC channels the engine reports.
package redraw

// Event is one screen-update instruction decoded from a redraw batch. The
// set of implementations is closed; consumers switch on the concrete type.
type Event interface {
	// EventName returns the engine event name the value was decoded from.
	EventName() string
}

type SetTitle struct {
	Title string
}

type ModeInfoSet struct {
	CursorModes []CursorMode
}

type OptionSet struct {
	Option GuiOption
}

type ModeChange struct {
	Mode      EditorMode
	ModeIndex uint64
}

type MouseOn struct{}

type MouseOff struct{}

type BusyStart struct{}

type BusyStop struct{}

type Flush struct{}

type Resize struct {
	Grid   uint64
	Width  uint64
	Height uint64
}

type DefaultColorsSet struct {
	Colors Colors
}

type HighlightAttributesDefine struct {
	ID    uint64
	Style Style
}

type GridLine struct {
	Grid        uint64
	Row         uint64
	ColumnStart uint64
	Cells       []GridLineCell
}

type Clear struct {
	Grid uint64
}

type Destroy struct {
	Grid uint64
}

type CursorGoto struct {
	Grid   uint64
	Row    uint64
	Column uint64
}

// Scroll moves the region [Top, Bottom) x [Left, Right) of Grid by Rows and
// Columns. Positive Rows scroll the content up.
type Scroll struct {
	Grid    uint64
	Top     uint64
	Bottom  uint64
	Left    uint64
	Right   uint64
	Rows    int64
	Columns int64
}

type WindowPosition struct {
	Grid        uint64
	StartRow    uint64
	StartColumn uint64
	Width       uint64
	Height      uint64
}

type WindowFloatPosition struct {
	Grid         uint64
	Anchor       WindowAnchor
	AnchorGrid   uint64
	AnchorRow    float64
	AnchorColumn float64
	Focusable    bool
	// ZIndex is nil for engines that do not send it.
	ZIndex *uint64
}

type WindowExternalPosition struct {
	Grid uint64
}

type WindowHide struct {
	Grid uint64
}

type WindowClose struct {
	Grid uint64
}

type MessageSetPosition struct {
	Grid               uint64
	Row                uint64
	Scrolled           bool
	SeparatorCharacter string
}

type WindowViewport struct {
	Grid          uint64
	TopLine       float64
	BottomLine    float64
	CurrentLine   float64
	CurrentColumn float64
	LineCount     *float64
	ScrollDelta   *float64
}

type CommandLineShow struct {
	Content        StyledContent
	Position       uint64
	FirstCharacter string
	Prompt         string
	Indent         uint64
	Level          uint64
}

type CommandLinePosition struct {
	Position uint64
	Level    uint64
}

type CommandLineSpecialCharacter struct {
	Character string
	Shift     bool
	Level     uint64
}

type CommandLineHide struct{}

type CommandLineBlockShow struct {
	Lines []StyledContent
}

type CommandLineBlockAppend struct {
	Line StyledContent
}

type CommandLineBlockHide struct{}

type MessageShow struct {
	Kind        MessageKind
	Content     StyledContent
	ReplaceLast bool
}

type MessageClear struct{}

type MessageShowMode struct {
	Content StyledContent
}

type MessageShowCommand struct {
	Content StyledContent
}

type MessageRuler struct {
	Content StyledContent
}

type MessageHistoryShow struct {
	Entries []MessageHistoryEntry
}

type MessageHistoryEntry struct {
	Kind    MessageKind
	Content StyledContent
}

func (SetTitle) EventName() string                    { return "set_title" }
func (ModeInfoSet) EventName() string                 { return "mode_info_set" }
func (OptionSet) EventName() string                   { return "option_set" }
func (ModeChange) EventName() string                  { return "mode_change" }
func (MouseOn) EventName() string                     { return "mouse_on" }
func (MouseOff) EventName() string                    { return "mouse_off" }
func (BusyStart) EventName() string                   { return "busy_start" }
func (BusyStop) EventName() string                    { return "busy_stop" }
func (Flush) EventName() string                       { return "flush" }
func (Resize) EventName() string                      { return "grid_resize" }
func (DefaultColorsSet) EventName() string            { return "default_colors_set" }
func (HighlightAttributesDefine) EventName() string   { return "hl_attr_define" }
func (GridLine) EventName() string                    { return "grid_line" }
func (Clear) EventName() string                       { return "grid_clear" }
func (Destroy) EventName() string                     { return "grid_destroy" }
func (CursorGoto) EventName() string                  { return "grid_cursor_goto" }
func (Scroll) EventName() string                      { return "grid_scroll" }
func (WindowPosition) EventName() string              { return "win_pos" }
func (WindowFloatPosition) EventName() string         { return "win_float_pos" }
func (WindowExternalPosition) EventName() string      { return "win_external_pos" }
func (WindowHide) EventName() string                  { return "win_hide" }
func (WindowClose) EventName() string                 { return "win_close" }
func (MessageSetPosition) EventName() string          { return "msg_set_pos" }
func (WindowViewport) EventName() string              { return "win_viewport" }
func (CommandLineShow) EventName() string             { return "cmdline_show" }
func (CommandLinePosition) EventName() string         { return "cmdline_pos" }
func (CommandLineSpecialCharacter) EventName() string { return "cmdline_special_char" }
func (CommandLineHide) EventName() string             { return "cmdline_hide" }
func (CommandLineBlockShow) EventName() string        { return "cmdline_block_show" }
func (CommandLineBlockAppend) EventName() string      { return "cmdline_block_append" }
func (CommandLineBlockHide) EventName() string        { return "cmdline_block_hide" }
func (MessageShow) EventName() string                 { return "msg_show" }
func (MessageClear) EventName() string                { return "msg_clear" }
func (MessageShowMode) EventName() string             { return "msg_showmode" }
func (MessageShowCommand) EventName() string          { return "msg_showcmd" }
func (MessageRuler) EventName() string                { return "msg_ruler" }
func (MessageHistoryShow) EventName() string          { return "msg_history_show" }

// GridLineCell is a run of cells sharing one highlight. A nil HighlightID
// reuses the highlight of the previous cell in the same line; Repeat applies
// the cell Repeat times.
type GridLineCell struct {
	Text        string
	HighlightID *uint64
	Repeat      *uint64
}

// StyledText is one highlighted chunk of a message line.
type StyledText struct {
	HighlightID uint64
	Text        string
}

// StyledContent is one logical message line.
type StyledContent []StyledText

// String joins the text of every chunk.
func (c StyledContent) String() string {
	n := 0
	for _, chunk := range c {
		n += len(chunk.Text)
	}
	buf := make([]byte, 0, n)
	for _, chunk := range c {
		buf = append(buf, chunk.Text...)
	}
	return string(buf)
}

type CursorShape int

const (
	CursorBlock CursorShape = iota
	CursorHorizontal
	CursorVertical
)

func (s CursorShape) String() string {
	switch s {
	case CursorHorizontal:
		return "horizontal"
	case CursorVertical:
		return "vertical"
	default:
		return "block"
	}
}

// CursorShapeFromName maps the engine's shape names; ok is false for names it
// does not know.
func CursorShapeFromName(name string) (CursorShape, bool) {
	switch name {
	case "block":
		return CursorBlock, true
	case "horizontal":
		return CursorHorizontal, true
	case "vertical":
		return CursorVertical, true
	default:
		return CursorBlock, false
	}
}

// CursorMode is one cursor style slot. Its position in ModeInfoSet is the
// index later referenced by ModeChange.ModeIndex. CellPercentage is already
// normalized to [0, 1].
type CursorMode struct {
	Shape          *CursorShape
	StyleID        *uint64
	CellPercentage *float32
	BlinkWait      *uint64
	BlinkOn        *uint64
	BlinkOff       *uint64
}

// EditorMode is the engine mode announced by mode_change.
type EditorMode struct {
	Kind ModeKind
	// Name is the raw mode name as sent by the engine.
	Name string
}

type ModeKind int

const (
	ModeUnknown ModeKind = iota
	ModeNormal
	ModeInsert
	ModeVisual
	ModeReplace
	ModeCmdLine
)

var editorModes = map[string]ModeKind{
	"normal":         ModeNormal,
	"insert":         ModeInsert,
	"visual":         ModeVisual,
	"replace":        ModeReplace,
	"cmdline_normal": ModeCmdLine,
}

func parseEditorMode(name string) EditorMode {
	return EditorMode{Kind: editorModes[name], Name: name}
}

// MessageKind classifies msg_show and history entries. Kinds the engine adds
// later decode as MessageUnknown with the raw name preserved.
type MessageKind struct {
	Kind MessageKindID
	Name string
}

type MessageKindID int

const (
	MessageUnknown MessageKindID = iota
	MessageConfirm
	MessageConfirmSubstitute
	MessageError
	MessageEcho
	MessageEchoMessage
	MessageEchoError
	MessageReturnPrompt
	MessageQuickFix
	MessageSearchCount
	MessageWarning
)

var messageKinds = map[string]MessageKindID{
	"confirm":       MessageConfirm,
	"confirm_sub":   MessageConfirmSubstitute,
	"emsg":          MessageError,
	"echo":          MessageEcho,
	"echomsg":       MessageEchoMessage,
	"echoerr":       MessageEchoError,
	"return_prompt": MessageReturnPrompt,
	"quickfix":      MessageQuickFix,
	"search_count":  MessageSearchCount,
	"wmsg":          MessageWarning,
}

func parseMessageKind(name string) MessageKind {
	return MessageKind{Kind: messageKinds[name], Name: name}
}

type WindowAnchor int

const (
	AnchorNorthWest WindowAnchor = iota
	AnchorNorthEast
	AnchorSouthWest
	AnchorSouthEast
)

func (a WindowAnchor) String() string {
	return [...]string{"NW", "NE", "SW", "SE"}[a]
}

// Color is a 24-bit RGB color.
type Color struct {
	R, G, B uint8
}

// UnpackColor splits a packed 0xRRGGBB value.
func UnpackColor(packed uint64) Color {
	return Color{
		R: uint8(packed >> 16),
		G: uint8(packed >> 8),
		B: uint8(packed),
	}
}

// Colors holds the optional colors of a highlight; nil means "use default".
type Colors struct {
	Foreground *Color
	Background *Color
	Special    *Color
}

type Style struct {
	Colors        Colors
	Reverse       bool
	Italic        bool
	Bold          bool
	Strikethrough bool
	Underline     bool
	Undercurl     bool
	Blend         uint8
}

// GuiOption is the value carried by option_set.
type GuiOption interface {
	OptionName() string
}

type (
	AmbiWidth     string
	ArabicShape   bool
	Emoji         bool
	GuiFont       string
	GuiFontSet    string
	GuiFontWide   string
	LineSpace     int64
	PumBlend      uint64
	ShowTabLine   uint64
	TermGuiColors bool
)

// UnknownOption carries options this build has no typed variant for.
type UnknownOption struct {
	Name  string
	Value any
}

func (AmbiWidth) OptionName() string     { return "ambiwidth" }
func (ArabicShape) OptionName() string   { return "arabicshape" }
func (Emoji) OptionName() string         { return "emoji" }
func (GuiFont) OptionName() string       { return "guifont" }
func (GuiFontSet) OptionName() string    { return "guifontset" }
func (GuiFontWide) OptionName() string   { return "guifontwide" }
func (LineSpace) OptionName() string     { return "linespace" }
func (PumBlend) OptionName() string      { return "pumblend" }
func (ShowTabLine) OptionName() string   { return "showtabline" }
func (TermGuiColors) OptionName() string { return "termguicolors" }
func (o UnknownOption) OptionName() string {
	return o.Name
}
