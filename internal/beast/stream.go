package beast

import (
	"context"
	"errors"
	"fmt"
	"io"

	"modes1090/internal/adsb"
)

// FrameDecoder turns a chunked byte stream into frames
type FrameDecoder interface {
	Decode(data []byte) ([]*adsb.Frame, error)
}

// Stream reads r until EOF or until ctx is done, passing each decoded frame
// to emit. A blocked Read is only interrupted by closing r.
func Stream(ctx context.Context, r io.Reader, dec FrameDecoder, emit func(*adsb.Frame)) error {
	buf := make([]byte, 4096)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		n, err := r.Read(buf)
		if n > 0 {
			frames, derr := dec.Decode(buf[:n])
			if derr != nil {
				return fmt.Errorf("decode frames: %w", derr)
			}
			for _, f := range frames {
				emit(f)
			}
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read frames: %w", err)
		}
	}
}
