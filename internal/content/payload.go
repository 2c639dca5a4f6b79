package content

import "encoding/json"

// Payload is the typed view of a block's data, selected by the block type.
type Payload interface {
	Kind() BlockType
}

type TextPayload struct {
	Text   string `json:"text"`
	Format string `json:"format,omitempty"`
}

type HeadingPayload struct {
	Text  string `json:"text"`
	Level int    `json:"level,omitempty"`
}

type ImagePayload struct {
	URL     string `json:"url"`
	Alt     string `json:"alt,omitempty"`
	Caption string `json:"caption,omitempty"`
	Width   int    `json:"width,omitempty"`
	Height  int    `json:"height,omitempty"`
}

type VideoPayload struct {
	URL      string `json:"url"`
	Provider string `json:"provider,omitempty"`
	Autoplay bool   `json:"autoplay,omitempty"`
}

type CodePayload struct {
	Code     string `json:"code"`
	Language string `json:"language,omitempty"`
}

type CalloutPayload struct {
	Text    string `json:"text"`
	Variant string `json:"variant,omitempty"`
}

type ButtonPayload struct {
	Label string `json:"label"`
	URL   string `json:"url,omitempty"`
}

// UnknownPayload carries blocks of types this server does not recognise, untouched.
type UnknownPayload struct {
	Type BlockType
	Data map[string]any
}

func (TextPayload) Kind() BlockType    { return BlockText }
func (HeadingPayload) Kind() BlockType { return BlockHeading }
func (ImagePayload) Kind() BlockType   { return BlockImage }
func (VideoPayload) Kind() BlockType   { return BlockVideo }
func (CodePayload) Kind() BlockType    { return BlockCode }
func (CalloutPayload) Kind() BlockType { return BlockCallout }
func (ButtonPayload) Kind() BlockType  { return BlockButton }
func (p UnknownPayload) Kind() BlockType {
	return p.Type
}

// Payload decodes the block data into the variant matching its type. Data that does not
// fit the variant (wrong value types) yields an UnknownPayload rather than an error.
func (b Block) Payload() Payload {
	var target Payload
	switch b.Type {
	case BlockText:
		target = &TextPayload{}
	case BlockHeading:
		target = &HeadingPayload{}
	case BlockImage:
		target = &ImagePayload{}
	case BlockVideo:
		target = &VideoPayload{}
	case BlockCode:
		target = &CodePayload{}
	case BlockCallout:
		target = &CalloutPayload{}
	case BlockButton:
		target = &ButtonPayload{}
	default:
		return UnknownPayload{Type: b.Type, Data: cloneMap(b.Data)}
	}

	raw, err := json.Marshal(b.Data)
	if err != nil || json.Unmarshal(raw, target) != nil {
		return UnknownPayload{Type: b.Type, Data: cloneMap(b.Data)}
	}

	switch p := target.(type) {
	case *TextPayload:
		return *p
	case *HeadingPayload:
		return *p
	case *ImagePayload:
		return *p
	case *VideoPayload:
		return *p
	case *CodePayload:
		return *p
	case *CalloutPayload:
		return *p
	case *ButtonPayload:
		return *p
	}
	return UnknownPayload{Type: b.Type, Data: cloneMap(b.Data)}
}
