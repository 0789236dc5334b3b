package chessdto

// Reply is one outgoing message for a triggering command.
type Reply struct {
	Text     string
	Embed    *Embed
	Image    *Attachment
	Buttons  []Button
	Reaction string
}

// Empty reports whether there is nothing to send.
func (r *Reply) Empty() bool {
	return r == nil || (r.Text == "" && r.Embed == nil && r.Image == nil && r.Reaction == "")
}

type Embed struct {
	Title       string
	Description string
	Color       int
	ImageURL    string
	Fields      []Field
}

type Field struct {
	Name   string
	Value  string
	Inline bool
}

// ButtonStyle follows the usual chat-component palette.
type ButtonStyle string

const (
	ButtonPrimary   ButtonStyle = "primary"
	ButtonSecondary ButtonStyle = "secondary"
	ButtonSuccess   ButtonStyle = "success"
	ButtonDanger    ButtonStyle = "danger"
)

// Button is an interactive affordance. Command is the bot command a click
// dispatches, without prefix.
type Button struct {
	Label   string
	Emoji   string
	Style   ButtonStyle
	Command string
}

type Attachment struct {
	Filename string
	Data     []byte
}
