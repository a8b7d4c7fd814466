package domain

import (
	"encoding/base64"
	"encoding/json"
	"strings"
)

type ImageKind string

const (
	ImageRemote   ImageKind = "remote"
	ImageEmbedded ImageKind = "embedded"
)

const dataURLPrefix = "data:"

// ImageRef points at image content: a URL in the object store or a self-contained data URL.
// On the wire it is the bare string value.
type ImageRef struct {
	Kind  ImageKind
	Value string
}

func RemoteImage(url string) ImageRef {
	return ImageRef{Kind: ImageRemote, Value: url}
}

func EmbeddedImage(data []byte, mimeType string) ImageRef {
	return ImageRef{
		Kind:  ImageEmbedded,
		Value: dataURLPrefix + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data),
	}
}

// ParseImageRef classifies a wire value. Only used at the boundary; stored refs carry their kind.
func ParseImageRef(value string) ImageRef {
	if strings.HasPrefix(value, dataURLPrefix) {
		return ImageRef{Kind: ImageEmbedded, Value: value}
	}
	return RemoteImage(value)
}

func (r ImageRef) IsRemote() bool {
	return r.Kind == ImageRemote
}

func (r ImageRef) String() string {
	return r.Value
}

func (r ImageRef) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Value)
}

func (r *ImageRef) UnmarshalJSON(data []byte) error {
	var value string
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	*r = ParseImageRef(value)
	return nil
}
