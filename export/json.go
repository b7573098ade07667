package export

import (
	"context"

	"slidedeck/model"
	"slidedeck/native"
)

const mimeJSON = "application/json"

// JSONEncoder writes the lossless native document.
type JSONEncoder struct{}

// NewJSONEncoder creates a native-format encoder.
func NewJSONEncoder() *JSONEncoder {
	return &JSONEncoder{}
}

// Encode implements Encoder.
func (e *JSONEncoder) Encode(ctx context.Context, p model.Presentation, opts Options) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	opts = opts.normalized()
	data, err := native.EncodeAt(p, opts.Now())
	if err != nil {
		return Result{}, encodingError("json", err)
	}
	return Result{Data: data, Filename: opts.filename("json"), MIME: mimeJSON}, nil
}
